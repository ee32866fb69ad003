package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepo "roomsched/internal/bookings/repository"
	"roomsched/internal/migrations/mongo/validators"
	roomsrepo "roomsched/internal/rooms/repository"
	ticketsrepo "roomsched/internal/tickets/repository"
	"roomsched/pkg/lock"
)

var (
	RoomsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "capacity", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		// Serves the per-room conflict window query.
		{Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		// Serves the auto-release scan.
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "auto_release_at", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "organizer_id", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	TicketsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	OrdersIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: 1},
		}},
	}

	// Lock takeover handles expiry itself; the TTL index only garbage-collects
	// abandoned leases well after they stopped mattering.
	LocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(60),
		},
	}
)

type collectionDefinition struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// collectionDefinitions keys every entry off the repository collection
// constants so the migration can never drift from what the service queries.
func collectionDefinitions() map[string]collectionDefinition {
	return map[string]collectionDefinition{
		roomsrepo.CollectionName: {
			Indexes:   RoomsIndexes,
			Validator: validators.RoomValidator,
		},
		bookingsrepo.CollectionName: {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		ticketsrepo.CollectionName: {
			Indexes: TicketsIndexes,
		},
		ticketsrepo.OrderCollectionName: {
			Indexes: OrdersIndexes,
		},
		lock.CollectionName: {
			Indexes: LocksIndexes,
		},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running Mongo migrations on database: %s\n", dbName)

	for name, def := range collectionDefinitions() {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator != nil {
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
