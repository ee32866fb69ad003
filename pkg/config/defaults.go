package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roomsched"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout  = 30 * time.Second
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Turnover buffer applied on both sides of every interval check.
	DefaultBufferMinutes = 15

	// A SCHEDULED booking not checked in within this window after its start
	// is reclaimed by the sweeper.
	DefaultAutoReleaseMinutes = 10
	DefaultSweepInterval      = time.Minute

	// Lock lease lifetime must exceed the longest expected critical section.
	DefaultLockTTL         = 5 * time.Second
	DefaultLockRetries     = 6
	DefaultLockRetryDelay  = 200 * time.Millisecond
	DefaultLockRetryJitter = 100 * time.Millisecond

	DefaultSearchStepMinutes = 5
	DefaultSearchHorizon     = 4 * time.Hour

	DefaultPaginationLimit = 100
)

// Candidate scoring weights. Priority dominates by construction: the spread
// between priority tiers times WeightPriority exceeds any realistic
// cost/capacity/drift penalty.
const (
	DefaultWeightPriority    = 10000.0
	DefaultWeightUtilization = 1.0
	DefaultWeightCost        = 50.0
	DefaultWeightShift       = 2.0
)
