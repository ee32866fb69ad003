package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "roomsched/internal/bookings/errors"
	"roomsched/internal/bookings/repository"
	"roomsched/internal/bookings/validator"
	meetings "roomsched/internal/meetings/service"
	roomserrors "roomsched/internal/rooms/errors"
	roomsrepo "roomsched/internal/rooms/repository"
	ticketserrors "roomsched/internal/tickets/errors"
	ticketsrepo "roomsched/internal/tickets/repository"
	"roomsched/pkg/config"
	apperrors "roomsched/pkg/errors"
	"roomsched/pkg/events"
	"roomsched/pkg/lock"
	"roomsched/pkg/model"
	"roomsched/pkg/notify"
	"roomsched/pkg/schedule"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, organizerID string, req *model.BookingRequest) (*model.BookingOutcome, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListForOrganizer(ctx context.Context, organizerID string, from, to *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	Calendar(ctx context.Context, day time.Time) (map[string][]*model.Booking, error)
	Cancel(ctx context.Context, id, organizerID string) (*model.Booking, error)
	CheckIn(ctx context.Context, id, organizerID string) (*model.Booking, error)
	ReleaseUnused(ctx context.Context) (int, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	rooms     roomsrepo.RoomRepository
	tickets   ticketsrepo.TicketRepository
	optimizer meetings.MeetingOptimizer
	locks     lock.Client
	publisher events.Publisher
	mailer    notify.Mailer
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	rooms roomsrepo.RoomRepository,
	tickets ticketsrepo.TicketRepository,
	optimizer meetings.MeetingOptimizer,
	locks lock.Client,
	publisher events.Publisher,
	mailer notify.Mailer,
	bookingValidator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		rooms:     rooms,
		tickets:   tickets,
		optimizer: optimizer,
		locks:     locks,
		publisher: publisher,
		mailer:    mailer,
		validator: bookingValidator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create allocates a room for the request. The room is resolved explicitly
// by name, or picked by the optimizer when no room is named. Mutual
// exclusion is layered: the distributed lock serializes creates per room,
// and the conflict re-check inside the transaction is the authoritative
// guard should the lock ever misbehave.
//
// The result is exactly one of: a committed booking, or a non-committal
// alternatives list when the slot is taken.
func (s *bookingService) Create(ctx context.Context, organizerID string, req *model.BookingRequest) (*model.BookingOutcome, error) {
	if organizerID == "" {
		return nil, apperrors.InvalidInput("Organizer ID cannot be empty")
	}
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	room, start, err := s.resolveRoomAndStart(ctx, req)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(req.Duration) * time.Minute)

	ticketID := ""
	if req.TicketTitle != "" {
		ticket, err := s.tickets.FindByTitle(ctx, req.TicketTitle)
		if err != nil {
			if errors.Is(err, ticketserrors.ErrNotFound) {
				return nil, apperrors.NotFoundWithID("Ticket", req.TicketTitle)
			}
			return nil, apperrors.Internal("Failed to resolve ticket", err)
		}
		ticketID = ticket.ID
	}

	lease, err := s.locks.Acquire(ctx, "room:"+room.ID, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, apperrors.LockUnavailable(room.Name)
		}
		return nil, apperrors.Internal("Failed to acquire room lock", err)
	}
	defer lease.Release(ctx)

	outcome := &model.BookingOutcome{}
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		conflict, err := s.findConflict(sessCtx, room.ID, start, end)
		if err != nil {
			return err
		}
		if conflict != nil {
			alternatives, err := s.findAlternatives(sessCtx, room.ID, req.AttendeesCount, start, end)
			if err != nil {
				return err
			}
			if len(alternatives) == 0 {
				return apperrors.Conflict("Time conflict: room already booked and no alternatives available")
			}
			outcome.Message = "Selected room is booked. Available alternatives:"
			outcome.Alternatives = alternatives
			return nil
		}

		autoReleaseAt := start.Add(s.cfg.AutoRelease())
		booking := &model.Booking{
			OrganizerID:       organizerID,
			RoomID:            room.ID,
			TicketID:          ticketID,
			TicketTitle:       req.TicketTitle,
			AttendeesCount:    req.AttendeesCount,
			Duration:          req.Duration,
			RequiredEquipment: req.RequiredEquipment,
			PreferredStart:    req.PreferredStart,
			Flexibility:       req.Flexibility,
			Priority:          req.Priority,
			StartTime:         start,
			EndTime:           end,
			Status:            model.StatusScheduled,
			AutoReleaseAt:     &autoReleaseAt,
			Cost:              room.HourlyRate * float64(req.Duration) / 60,
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		outcome.Booking = booking
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "room_id", room.ID, "error", err)
		return nil, err
	}

	if outcome.Booking != nil {
		s.notifyCreated(ctx, outcome.Booking, room)
		s.publisher.BookingUpdate(ctx, events.EventCreated, outcome.Booking)
		s.cfg.Log.Info("Booking created successfully",
			"id", outcome.Booking.ID,
			"room_id", room.ID,
			"organizer_id", organizerID,
			"start_time", start,
		)
	}
	return outcome, nil
}

func (s *bookingService) resolveRoomAndStart(ctx context.Context, req *model.BookingRequest) (*model.MeetingRoom, time.Time, error) {
	if req.RoomName != "" {
		room, err := s.rooms.FindByIDOrName(ctx, req.RoomName)
		if err != nil {
			if errors.Is(err, roomserrors.ErrNotFound) {
				return nil, time.Time{}, apperrors.NotFoundWithID("Room", req.RoomName)
			}
			return nil, time.Time{}, apperrors.Internal("Failed to resolve room", err)
		}
		return room, req.PreferredStart, nil
	}

	plan, err := s.optimizer.FindOptimalMeeting(ctx, req)
	if err != nil {
		return nil, time.Time{}, err
	}
	if plan.Recommended == nil {
		return nil, time.Time{}, apperrors.Conflict("No room satisfies the capacity and equipment requirements")
	}
	return plan.Recommended, *plan.SuggestedTime, nil
}

// findConflict returns the first SCHEDULED booking whose buffered interval
// intersects the candidate's. The fetch window is inflated by twice the
// buffer so no buffered neighbor escapes the range query.
func (s *bookingService) findConflict(ctx context.Context, roomID string, start, end time.Time) (*model.Booking, error) {
	buffer := s.cfg.Buffer()
	existing, err := s.repo.FindActiveByRoomInWindow(ctx, roomID, start.Add(-2*buffer), end.Add(2*buffer))
	if err != nil {
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}
	for _, b := range existing {
		if schedule.Overlaps(b.StartTime, b.EndTime, start, end, buffer) {
			return b, nil
		}
	}
	return nil, nil
}

// findAlternatives lists rooms with enough capacity that are free at the
// requested time, excluding the conflicting room.
func (s *bookingService) findAlternatives(ctx context.Context, excludeRoomID string, attendees int, start, end time.Time) ([]model.AlternativeRoom, error) {
	rooms, err := s.rooms.FindByMinCapacity(ctx, attendees)
	if err != nil {
		return nil, apperrors.Internal("Failed to load alternative rooms", err)
	}

	var available []model.AlternativeRoom
	for _, room := range rooms {
		if room.ID == excludeRoomID {
			continue
		}
		conflict, err := s.findConflict(ctx, room.ID, start, end)
		if err != nil {
			return nil, err
		}
		if conflict == nil {
			available = append(available, model.AlternativeRoom{
				ID:       room.ID,
				Name:     room.Name,
				Capacity: room.Capacity,
			})
		}
	}
	return available, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	return booking, nil
}

func (s *bookingService) ListForOrganizer(ctx context.Context, organizerID string, from, to *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if organizerID == "" {
		return nil, 0, apperrors.InvalidInput("Organizer ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	bookings, err := s.repo.FindByOrganizer(ctx, organizerID, from, to, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list bookings", err)
	}
	total, err := s.repo.CountByOrganizer(ctx, organizerID, from, to)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}
	return bookings, total, nil
}

// Calendar groups one day's non-cancelled bookings by room display name.
func (s *bookingService) Calendar(ctx context.Context, day time.Time) (map[string][]*model.Booking, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	bookings, err := s.repo.FindNonCancelledInWindow(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, apperrors.Internal("Failed to load calendar", err)
	}

	rooms, err := s.rooms.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to load rooms", err)
	}
	names := make(map[string]string, len(rooms))
	for _, room := range rooms {
		names[room.ID] = room.Name
	}

	grouped := make(map[string][]*model.Booking)
	for _, b := range bookings {
		name := names[b.RoomID]
		if name == "" {
			name = "Unassigned"
		}
		grouped[name] = append(grouped[name], b)
	}
	return grouped, nil
}

func (s *bookingService) Cancel(ctx context.Context, id, organizerID string) (*model.Booking, error) {
	booking, err := s.loadOwned(ctx, id, organizerID, "cancel")
	if err != nil {
		return nil, err
	}
	if booking.Terminal() {
		return nil, apperrors.InvalidState(fmt.Sprintf("Booking is already %s", booking.Status))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled)
	if err != nil {
		return nil, mapRepoError(err, id)
	}

	s.publisher.BookingUpdate(ctx, events.EventCancelled, updated)
	s.cfg.Log.Info("Booking cancelled", "id", id, "organizer_id", organizerID)
	return updated, nil
}

// CheckIn confirms the booking is claimed: the auto-release deadline is
// cleared, the schedule itself stays unchanged.
func (s *bookingService) CheckIn(ctx context.Context, id, organizerID string) (*model.Booking, error) {
	booking, err := s.loadOwned(ctx, id, organizerID, "check-in")
	if err != nil {
		return nil, err
	}
	if booking.Terminal() {
		return nil, apperrors.InvalidState(fmt.Sprintf("Booking is already %s", booking.Status))
	}

	updated, err := s.repo.ClearAutoRelease(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			// Lost a race with cancel or auto-release between read and write.
			return nil, apperrors.InvalidState("Booking is no longer claimable")
		}
		return nil, apperrors.Internal("Failed to check in booking", err)
	}

	s.publisher.BookingUpdate(ctx, events.EventCheckedIn, updated)
	s.cfg.Log.Info("Booking checked in", "id", id, "organizer_id", organizerID)
	return updated, nil
}

// ReleaseUnused reclaims SCHEDULED bookings past their claim deadline. Each
// write is conditional on the status and deadline observed at read time, so
// a check-in racing the sweep always wins. No distributed lock: the rows are
// uncontended by other creates, the conditional update is enough.
func (s *bookingService) ReleaseUnused(ctx context.Context) (int, error) {
	due, err := s.repo.FindDueForRelease(ctx, s.now())
	if err != nil {
		return 0, apperrors.Internal("Failed to find bookings due for release", err)
	}

	released := 0
	for _, booking := range due {
		if booking.AutoReleaseAt == nil {
			continue
		}
		ok, err := s.repo.ReleaseIfUnclaimed(ctx, booking.ID, *booking.AutoReleaseAt)
		if err != nil {
			s.cfg.Log.Error("Failed to release booking", "id", booking.ID, "error", err)
			continue
		}
		if !ok {
			// Checked in or cancelled after the scan read it.
			continue
		}

		booking.Status = model.StatusReleased
		s.publisher.BookingUpdate(ctx, events.EventReleased, booking)
		released++
	}

	if released > 0 {
		s.cfg.Log.Info("Released unclaimed bookings", "count", released)
	}
	return released, nil
}

func (s *bookingService) loadOwned(ctx context.Context, id, organizerID, action string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if organizerID == "" {
		return nil, apperrors.InvalidInput("Organizer ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	if booking.OrganizerID != organizerID {
		return nil, apperrors.Forbidden(fmt.Sprintf("Only the organizer can %s a booking", action))
	}
	return booking, nil
}

// notifyCreated sends the confirmation email. Best-effort: failures are
// logged and never affect the committed booking.
func (s *bookingService) notifyCreated(ctx context.Context, booking *model.Booking, room *model.MeetingRoom) {
	subject := "Booking Confirmation - Smart Room"
	body := fmt.Sprintf(
		"Booking Created\nRoom: %s\nStart: %s\nDuration: %d minutes\nAttendees: %d\nCost: %.2f\n",
		room.Name,
		booking.StartTime.Format(time.RFC3339),
		booking.Duration,
		booking.AttendeesCount,
		booking.Cost,
	)
	if err := s.mailer.Send(ctx, booking.OrganizerID, subject, body); err != nil {
		s.cfg.Log.Error("Failed to send booking email", "booking_id", booking.ID, "error", err)
	}
}

func mapRepoError(err error, id string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		return apperrors.Internal("Failed to access booking", err)
	}
}
