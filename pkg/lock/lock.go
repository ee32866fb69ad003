// Package lock implements a distributed mutual-exclusion lease on top of
// MongoDB's atomic upsert semantics. A lease is held by inserting a document
// keyed by the resource name; a duplicate key means another holder owns it.
// Expired leases are taken over atomically, so a crashed holder can stall a
// resource for at most one TTL.
//
// The lease is coordination state only. Callers must still re-check their
// own invariants inside a storage transaction; the lock narrows the race
// window, it does not replace the transactional check.
package lock

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"roomsched/pkg/config"
	"roomsched/pkg/logger"
	"roomsched/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/google/uuid"
)

const CollectionName = "Locks"

// ErrNotAcquired is returned when the retry budget is exhausted without
// obtaining the lease.
var ErrNotAcquired = errors.New("lock not acquired: resource is held")

// Client acquires time-bounded leases on named resources.
type Client interface {
	Acquire(ctx context.Context, resource string, ttl time.Duration) (*Lease, error)
}

// Lease is one held lock. Release is idempotent and never returns an error
// to the caller's main path; the TTL is the backstop if release fails.
type Lease struct {
	Resource  string
	Holder    string
	ExpiresAt time.Time

	collection *mongo.Collection
	log        *logger.Logger
}

type mongoLockClient struct {
	collection *mongo.Collection
	log        *logger.Logger

	retries     int
	retryDelay  time.Duration
	retryJitter time.Duration
}

func NewMongoLockClient(cfg *config.Config) Client {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLockClient{
		collection:  db.Collection(CollectionName),
		log:         cfg.Log,
		retries:     cfg.LockRetries,
		retryDelay:  cfg.LockRetryDelay,
		retryJitter: cfg.LockRetryJitter,
	}
}

// Acquire attempts to take the lease, retrying with jittered backoff until
// the budget runs out. The total wall-clock bound is roughly
// retries * (retryDelay + retryJitter), a couple of seconds with defaults.
func (c *mongoLockClient) Acquire(ctx context.Context, resource string, ttl time.Duration) (*Lease, error) {
	holder := uuid.NewString()

	for attempt := 0; ; attempt++ {
		lease, err := c.tryAcquire(ctx, resource, holder, ttl)
		if err == nil {
			if attempt > 0 {
				c.log.Debug("Lock acquired after retry", "resource", resource, "attempt", attempt)
			}
			return lease, nil
		}
		if !errors.Is(err, ErrNotAcquired) {
			return nil, err
		}
		if attempt >= c.retries {
			c.log.Warn("Lock retry budget exhausted", "resource", resource, "attempts", attempt+1)
			return nil, ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff()):
		}
	}
}

// tryAcquire performs one atomic acquisition round. The filter matches only
// an expired lease, so the upsert either replaces a stale document, inserts
// a fresh one, or fails with a duplicate key when the lease is live.
func (c *mongoLockClient) tryAcquire(ctx context.Context, resource, holder string, ttl time.Duration) (*Lease, error) {
	now := time.Now().UTC()
	lease := &model.LockLease{
		Resource:  resource,
		Holder:    holder,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	filter := bson.M{
		"_id":        resource,
		"expires_at": bson.M{"$lt": now},
	}
	opts := options.FindOneAndReplace().SetUpsert(true)

	err := c.collection.FindOneAndReplace(ctx, filter, lease, opts).Err()
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrNotAcquired
		}
		return nil, err
	}

	return &Lease{
		Resource:   resource,
		Holder:     holder,
		ExpiresAt:  lease.ExpiresAt,
		collection: c.collection,
		log:        c.log,
	}, nil
}

func (c *mongoLockClient) backoff() time.Duration {
	if c.retryJitter <= 0 {
		return c.retryDelay
	}
	return c.retryDelay + time.Duration(rand.Int63n(int64(c.retryJitter)))
}

// Release deletes the lease only if this holder still owns it, mirroring the
// compare-and-delete pattern so a takeover after expiry is never clobbered.
// Safe to call after the TTL already lapsed.
func (l *Lease) Release(ctx context.Context) {
	if l == nil || l.collection == nil {
		return
	}
	_, err := l.collection.DeleteOne(ctx, bson.M{"_id": l.Resource, "holder": l.Holder})
	if err != nil && l.log != nil {
		l.log.Warn("Failed to release lock", "resource", l.Resource, "error", err)
	}
}
