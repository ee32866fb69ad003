package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "roomsched/internal/bookings/errors"
	"roomsched/pkg/config"
	mongotx "roomsched/pkg/db/mongo"
	"roomsched/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Bookings"

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByOrganizer(ctx context.Context, organizerID string, from, to *time.Time, limit int, offset int64) ([]*model.Booking, error)
	CountByOrganizer(ctx context.Context, organizerID string, from, to *time.Time) (int64, error)
	FindActiveByRoomInWindow(ctx context.Context, roomID string, from, to time.Time) ([]*model.Booking, error)
	FindActiveInWindow(ctx context.Context, from, to time.Time) ([]*model.Booking, error)
	FindNonCancelledInWindow(ctx context.Context, from, to time.Time) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error)
	ClearAutoRelease(ctx context.Context, id string) (*model.Booking, error)
	FindDueForRelease(ctx context.Context, now time.Time) ([]*model.Booking, error)
	ReleaseIfUnclaimed(ctx context.Context, id string, observedDeadline time.Time) (bool, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless we are inside a
// transaction, where wrapping a SessionContext would break its semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if booking.ID == "" {
		booking.ID = primitive.NewObjectID().Hex()
	}
	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) FindByOrganizer(ctx context.Context, organizerID string, from, to *time.Time, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, organizerFilter(organizerID, from, to), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountByOrganizer(ctx context.Context, organizerID string, from, to *time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, organizerFilter(organizerID, from, to))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// organizerFilter applies each range bound independently so a one-sided
// query (only from, or only to) still narrows the result.
func organizerFilter(organizerID string, from, to *time.Time) bson.M {
	filter := bson.M{"organizer_id": organizerID}
	if from != nil {
		filter["start_time"] = bson.M{"$gte": *from}
	}
	if to != nil {
		filter["end_time"] = bson.M{"$lte": *to}
	}
	return filter
}

// FindActiveByRoomInWindow returns SCHEDULED bookings for one room whose
// interval intersects [from, to). Callers inflate the window by the buffer
// before querying so buffered conflicts are never missed.
func (r *mongoBookingRepository) FindActiveByRoomInWindow(ctx context.Context, roomID string, from, to time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_id":    roomID,
		"status":     model.StatusScheduled,
		"start_time": bson.M{"$lt": to},
		"end_time":   bson.M{"$gt": from},
	}
	return r.findSorted(ctx, filter)
}

func (r *mongoBookingRepository) FindActiveInWindow(ctx context.Context, from, to time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":     model.StatusScheduled,
		"start_time": bson.M{"$lt": to},
		"end_time":   bson.M{"$gt": from},
	}
	return r.findSorted(ctx, filter)
}

func (r *mongoBookingRepository) FindNonCancelledInWindow(ctx context.Context, from, to time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":     bson.M{"$ne": model.StatusCancelled},
		"start_time": bson.M{"$gte": from, "$lt": to},
	}
	return r.findSorted(ctx, filter)
}

func (r *mongoBookingRepository) findSorted(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated model.Booking
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &updated, nil
}

// ClearAutoRelease removes the claim deadline on check-in. Conditional on the
// booking still being SCHEDULED so a terminal booking is never revived.
func (r *mongoBookingRepository) ClearAutoRelease(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated model.Booking
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": model.StatusScheduled},
		bson.M{"$unset": bson.M{"auto_release_at": ""}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to clear auto-release deadline: %w", err)
	}
	return &updated, nil
}

func (r *mongoBookingRepository) FindDueForRelease(ctx context.Context, now time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":          model.StatusScheduled,
		"auto_release_at": bson.M{"$lt": now},
	}
	return r.findSorted(ctx, filter)
}

// ReleaseIfUnclaimed transitions one booking to RELEASED only if its status
// and deadline still match what the sweeper observed. A concurrent check-in
// clears the deadline, makes the filter miss, and the sweep becomes a no-op
// for that booking.
func (r *mongoBookingRepository) ReleaseIfUnclaimed(ctx context.Context, id string, observedDeadline time.Time) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":             id,
			"status":          model.StatusScheduled,
			"auto_release_at": observedDeadline,
		},
		bson.M{"$set": bson.M{"status": model.StatusReleased}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to release booking: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
