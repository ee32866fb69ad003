package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBufferMinutes      = "BUFFER_MINUTES"
	EnvAutoReleaseMinutes = "AUTO_RELEASE_MINUTES"
	EnvSweepInterval      = "SWEEP_INTERVAL"

	EnvLockTTL         = "LOCK_TTL"
	EnvLockRetries     = "LOCK_RETRIES"
	EnvLockRetryDelay  = "LOCK_RETRY_DELAY"
	EnvLockRetryJitter = "LOCK_RETRY_JITTER"

	EnvSearchStepMinutes = "SEARCH_STEP_MINUTES"
	EnvSearchHorizon     = "SEARCH_HORIZON"

	EnvEmailHost = "EMAIL_HOST"
	EnvEmailPort = "EMAIL_PORT"
	EnvEmailUser = "EMAIL_USER"
	EnvEmailPass = "EMAIL_PASS"
	EnvEmailFrom = "EMAIL_FROM"
)
