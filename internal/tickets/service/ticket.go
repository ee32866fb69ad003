package service

import (
	"context"
	"errors"

	ticketserrors "roomsched/internal/tickets/errors"
	"roomsched/internal/tickets/repository"
	"roomsched/pkg/config"
	apperrors "roomsched/pkg/errors"
	"roomsched/pkg/lock"
	"roomsched/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type TicketService interface {
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
	Purchase(ctx context.Context, ticketID, userID string) (*model.Order, error)
}

type ticketService struct {
	repo  repository.TicketRepository
	locks lock.Client
	cfg   *config.Config
}

func NewTicketService(repo repository.TicketRepository, locks lock.Client, cfg *config.Config) TicketService {
	return &ticketService{
		repo:  repo,
		locks: locks,
		cfg:   cfg,
	}
}

func (s *ticketService) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Ticket ID cannot be empty")
	}

	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ticketserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Ticket", id)
		}
		return nil, apperrors.Internal("Failed to load ticket", err)
	}
	return ticket, nil
}

// Purchase takes one unit of stock and records the order, serialized per
// ticket by the distributed lock. The conditional decrement is the real
// guard against overselling, the lock just keeps contention off the
// database.
func (s *ticketService) Purchase(ctx context.Context, ticketID, userID string) (*model.Order, error) {
	if ticketID == "" {
		return nil, apperrors.InvalidInput("Ticket ID cannot be empty")
	}
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	if _, err := s.GetByID(ctx, ticketID); err != nil {
		return nil, err
	}

	lease, err := s.locks.Acquire(ctx, "ticket:"+ticketID, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, apperrors.LockUnavailable("ticket " + ticketID)
		}
		return nil, apperrors.Internal("Failed to acquire ticket lock", err)
	}
	defer lease.Release(ctx)

	order := &model.Order{
		UserID:   userID,
		TicketID: ticketID,
	}
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		ok, err := s.repo.DecrementRemaining(sessCtx, ticketID)
		if err != nil {
			return apperrors.Internal("Failed to reserve ticket stock", err)
		}
		if !ok {
			return apperrors.Conflict("Ticket is sold out")
		}
		if err := s.repo.CreateOrder(sessCtx, order); err != nil {
			return apperrors.Internal("Failed to record order", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to purchase ticket", "ticket_id", ticketID, "user_id", userID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Ticket purchased", "ticket_id", ticketID, "user_id", userID, "order_id", order.ID)
	return order, nil
}
