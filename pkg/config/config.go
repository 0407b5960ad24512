package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "ROAMIII"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Voting VotingConfig
	Cron   CronConfig
	Outbox OutboxConfig
	GCP    GCPConfig
	PubSub PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ROAMIII_APP_ENV" required:"true"`
	Port         string `envconfig:"ROAMIII_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ROAMIII_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ROAMIII_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ROAMIII_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"ROAMIII_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ROAMIII_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ROAMIII_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ROAMIII_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"ROAMIII_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ROAMIII_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ROAMIII_REDIS_ADDR"`
	Password     string        `envconfig:"ROAMIII_REDIS_PASSWORD"`
	DB           int           `envconfig:"ROAMIII_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ROAMIII_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ROAMIII_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ROAMIII_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ROAMIII_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ROAMIII_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ROAMIII_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ROAMIII_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ROAMIII_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"ROAMIII_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the redis session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type VotingConfig struct {
	// DeadlineBuffer is added to a voting deadline before the one-shot check
	// fires, so the timer lands just after the boundary instant.
	DeadlineBuffer time.Duration `envconfig:"ROAMIII_VOTING_DEADLINE_BUFFER" default:"2s"`
}

type CronConfig struct {
	Interval             time.Duration `envconfig:"ROAMIII_CRON_INTERVAL" default:"24h"`
	NotificationMaxAge   time.Duration `envconfig:"ROAMIII_CRON_NOTIFICATION_MAX_AGE" default:"2160h"`
	LockTTL              time.Duration `envconfig:"ROAMIII_CRON_LOCK_TTL" default:"1h"`
	DeadlineSweepEnabled bool          `envconfig:"ROAMIII_CRON_DEADLINE_SWEEP" default:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ROAMIII_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ROAMIII_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ROAMIII_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ROAMIII_GCP_PROJECT_ID" required:"true"`
}

type PubSubConfig struct {
	TripTopic        string `envconfig:"ROAMIII_PUBSUB_TRIP_TOPIC" default:"roamiii-trip-events"`
	TripSubscription string `envconfig:"ROAMIII_PUBSUB_TRIP_SUBSCRIPTION" required:"true"`
}
