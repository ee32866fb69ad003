package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	ticketserrors "roomsched/internal/tickets/errors"
	"roomsched/pkg/config"
	mongotx "roomsched/pkg/db/mongo"
	"roomsched/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName      = "Tickets"
	OrderCollectionName = "Orders"
)

type TicketRepository interface {
	FindByID(ctx context.Context, id string) (*model.Ticket, error)
	FindByTitle(ctx context.Context, title string) (*model.Ticket, error)
	DecrementRemaining(ctx context.Context, id string) (bool, error)
	CreateOrder(ctx context.Context, order *model.Order) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoTicketRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	orders     *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoTicketRepository(cfg *config.Config) TicketRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTicketRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		orders:     db.Collection(OrderCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoTicketRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTicketRepository) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var ticket model.Ticket
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ticketserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return &ticket, nil
}

func (r *mongoTicketRepository) FindByTitle(ctx context.Context, title string) (*model.Ticket, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var ticket model.Ticket
	err := r.collection.FindOne(ctx, bson.M{"title": title}).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ticketserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ticket by title: %w", err)
	}
	return &ticket, nil
}

// DecrementRemaining takes one unit off the ticket, conditional on stock
// still being available, and reports whether the decrement happened.
func (r *mongoTicketRepository) DecrementRemaining(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "remaining": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"remaining": -1}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to decrement ticket stock: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *mongoTicketRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if order.ID == "" {
		order.ID = primitive.NewObjectID().Hex()
	}
	order.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.orders.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *mongoTicketRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
