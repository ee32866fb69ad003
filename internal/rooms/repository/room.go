package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	roomserrors "roomsched/internal/rooms/errors"
	"roomsched/pkg/config"
	"roomsched/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "MeetingRooms"

// RoomRepository reads the room catalog. Room inventory is owned by an
// external system; this service never writes it.
type RoomRepository interface {
	FindAll(ctx context.Context) ([]*model.MeetingRoom, error)
	FindByIDOrName(ctx context.Context, idOrName string) (*model.MeetingRoom, error)
	FindByMinCapacity(ctx context.Context, capacity int) ([]*model.MeetingRoom, error)
}

type mongoRoomRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRoomRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// FindAll returns every room sorted by name. Name order is what makes the
// optimizer's equal-score tie-break deterministic.
func (r *mongoRoomRepository) FindAll(ctx context.Context) ([]*model.MeetingRoom, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*model.MeetingRoom
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

// FindByIDOrName resolves a room by ObjectID hex first, falling back to the
// unique display name. Clients send either interchangeably.
func (r *mongoRoomRepository) FindByIDOrName(ctx context.Context, idOrName string) (*model.MeetingRoom, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	// IDs are stored as ObjectID hex strings; names are unique. Either form
	// resolves the same room.
	filter := bson.M{"name": idOrName}
	if _, err := primitive.ObjectIDFromHex(idOrName); err == nil {
		filter = bson.M{"$or": []bson.M{
			{"_id": idOrName},
			{"name": idOrName},
		}}
	}

	var room model.MeetingRoom
	err := r.collection.FindOne(ctx, filter).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return &room, nil
}

func (r *mongoRoomRepository) FindByMinCapacity(ctx context.Context, capacity int) ([]*model.MeetingRoom, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"capacity": bson.M{"$gte": capacity}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms by capacity: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*model.MeetingRoom
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}
