package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"roomsched/pkg/client"
	"roomsched/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BufferMinutes      int
	AutoReleaseMinutes int
	SweepInterval      time.Duration

	LockTTL         time.Duration
	LockRetries     int
	LockRetryDelay  time.Duration
	LockRetryJitter time.Duration

	SearchStepMinutes int
	SearchHorizon     time.Duration

	WeightPriority    float64
	WeightUtilization float64
	WeightCost        float64
	WeightShift       float64

	EmailHost string
	EmailPort int
	EmailUser string
	EmailPass string
	EmailFrom string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		BufferMinutes:      getEnvNum(EnvBufferMinutes, DefaultBufferMinutes),
		AutoReleaseMinutes: getEnvNum(EnvAutoReleaseMinutes, DefaultAutoReleaseMinutes),
		SweepInterval:      getEnvDuration(EnvSweepInterval, DefaultSweepInterval),

		LockTTL:         getEnvDuration(EnvLockTTL, DefaultLockTTL),
		LockRetries:     getEnvNum(EnvLockRetries, DefaultLockRetries),
		LockRetryDelay:  getEnvDuration(EnvLockRetryDelay, DefaultLockRetryDelay),
		LockRetryJitter: getEnvDuration(EnvLockRetryJitter, DefaultLockRetryJitter),

		SearchStepMinutes: getEnvNum(EnvSearchStepMinutes, DefaultSearchStepMinutes),
		SearchHorizon:     getEnvDuration(EnvSearchHorizon, DefaultSearchHorizon),

		WeightPriority:    DefaultWeightPriority,
		WeightUtilization: DefaultWeightUtilization,
		WeightCost:        DefaultWeightCost,
		WeightShift:       DefaultWeightShift,

		EmailHost: getEnvStr(EnvEmailHost, ""),
		EmailPort: getEnvNum(EnvEmailPort, 587),
		EmailUser: getEnvStr(EnvEmailUser, ""),
		EmailPass: getEnvStr(EnvEmailPass, ""),
		EmailFrom: getEnvStr(EnvEmailFrom, "no-reply@roomsched.local"),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		problems = append(problems, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		problems = append(problems, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		problems = append(problems, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	for name, d := range map[string]time.Duration{
		"RequestTimeout":  cfg.RequestTimeout,
		"ReadTimeout":     cfg.ReadTimeout,
		"WriteTimeout":    cfg.WriteTimeout,
		"IdleTimeout":     cfg.IdleTimeout,
		"ShutdownTimeout": cfg.ShutdownTimeout,
		"SweepInterval":   cfg.SweepInterval,
		"LockTTL":         cfg.LockTTL,
		"LockRetryDelay":  cfg.LockRetryDelay,
		"SearchHorizon":   cfg.SearchHorizon,
	} {
		if d <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.BufferMinutes < 0 {
		problems = append(problems, fmt.Sprintf("BufferMinutes cannot be negative, got: %d", cfg.BufferMinutes))
	}
	if cfg.AutoReleaseMinutes <= 0 {
		problems = append(problems, fmt.Sprintf("AutoReleaseMinutes must be positive, got: %d", cfg.AutoReleaseMinutes))
	}
	if cfg.LockRetries < 0 {
		problems = append(problems, fmt.Sprintf("LockRetries cannot be negative, got: %d", cfg.LockRetries))
	}
	if cfg.LockRetryJitter < 0 {
		problems = append(problems, fmt.Sprintf("LockRetryJitter cannot be negative, got: %s", cfg.LockRetryJitter))
	}
	if cfg.SearchStepMinutes <= 0 {
		problems = append(problems, fmt.Sprintf("SearchStepMinutes must be positive, got: %d", cfg.SearchStepMinutes))
	}

	// The lock has to outlive its critical section, otherwise two creates can
	// run the conflict re-check concurrently on the same room.
	if cfg.LockTTL > 0 && cfg.LockTTL < time.Second {
		problems = append(problems, fmt.Sprintf("LockTTL must be at least 1s, got: %s", cfg.LockTTL))
	}

	if len(problems) > 0 {
		var b strings.Builder
		b.WriteString("Configuration validation failed:\n")
		for i, p := range problems {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", b.String())
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"buffer_minutes", cfg.BufferMinutes,
		"auto_release_minutes", cfg.AutoReleaseMinutes,
		"sweep_interval", cfg.SweepInterval,
		"lock_ttl", cfg.LockTTL,
		"lock_retries", cfg.LockRetries,
		"lock_retry_delay", cfg.LockRetryDelay,
		"lock_retry_jitter", cfg.LockRetryJitter,
		"search_step_minutes", cfg.SearchStepMinutes,
		"search_horizon", cfg.SearchHorizon,
		"email_host_set", cfg.EmailHost != "",
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

// Buffer returns the turnover buffer as a duration.
func (cfg *Config) Buffer() time.Duration {
	return time.Duration(cfg.BufferMinutes) * time.Minute
}

// AutoRelease returns the claim window as a duration.
func (cfg *Config) AutoRelease() time.Duration {
	return time.Duration(cfg.AutoReleaseMinutes) * time.Minute
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
