package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Ledger       LedgerConfig
	Cron         CronConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HANDWERK_APP_ENV" required:"true"`
	Port         string `envconfig:"HANDWERK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HANDWERK_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"HANDWERK_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"HANDWERK_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"HANDWERK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"HANDWERK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"HANDWERK_DB_DSN"`
	Driver string `envconfig:"HANDWERK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HANDWERK_DB_HOST"`
	LegacyPort     int    `envconfig:"HANDWERK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HANDWERK_DB_USER"`
	LegacyPassword string `envconfig:"HANDWERK_DB_PASSWORD"`
	LegacyName     string `envconfig:"HANDWERK_DB_NAME"`
	LegacySSLMode  string `envconfig:"HANDWERK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HANDWERK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HANDWERK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HANDWERK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HANDWERK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"HANDWERK_REDIS_URL"`
	Address      string        `envconfig:"HANDWERK_REDIS_ADDR"`
	Password     string        `envconfig:"HANDWERK_REDIS_PASSWORD"`
	DB           int           `envconfig:"HANDWERK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HANDWERK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HANDWERK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HANDWERK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HANDWERK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HANDWERK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"HANDWERK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HANDWERK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HANDWERK_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseRedisLock bool `envconfig:"HANDWERK_USE_REDIS_LOCK" default:"false"`
	AutoMigrate  bool `envconfig:"HANDWERK_AUTO_MIGRATE" default:"false"`
}

// LedgerConfig tunes the credit ledger and the per-business lock.
type LedgerConfig struct {
	InitialGrant     int64         `envconfig:"HANDWERK_LEDGER_INITIAL_GRANT" default:"0"`
	LockWait         time.Duration `envconfig:"HANDWERK_LEDGER_LOCK_WAIT" default:"5s"`
	LockTTL          time.Duration `envconfig:"HANDWERK_LEDGER_LOCK_TTL" default:"30s"`
	MaxUnlocksListed int           `envconfig:"HANDWERK_LEDGER_MAX_UNLOCKS_LISTED" default:"500"`
}

func (l LedgerConfig) validate() error {
	if l.InitialGrant < 0 {
		return fmt.Errorf("%s must not be negative", EnvLedgerInitialGrant)
	}
	if l.LockWait <= 0 {
		return fmt.Errorf("%s must be positive", EnvLedgerLockWait)
	}
	if l.LockTTL > 0 && l.LockTTL < l.LockWait {
		return fmt.Errorf("%s must be at least %s", EnvLedgerLockTTL, EnvLedgerLockWait)
	}
	return nil
}

// RateLimitConfig caps ledger writes per account within a fixed window.
type RateLimitConfig struct {
	Window       time.Duration `envconfig:"HANDWERK_RATE_LIMIT_WINDOW" default:"1m"`
	WritesPerAcc int           `envconfig:"HANDWERK_RATE_LIMIT_WRITES" default:"30"`
}

type CronConfig struct {
	Interval       time.Duration `envconfig:"HANDWERK_CRON_INTERVAL" default:"1h"`
	AuditBatchSize int           `envconfig:"HANDWERK_CRON_AUDIT_BATCH_SIZE" default:"200"`
	JobTimeout     time.Duration `envconfig:"HANDWERK_CRON_JOB_TIMEOUT" default:"10m"`
	RetentionDays  int           `envconfig:"HANDWERK_CRON_OUTBOX_RETENTION_DAYS" default:"14"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"HANDWERK_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	LedgerTopic string `envconfig:"HANDWERK_PUBSUB_LEDGER_TOPIC" default:"handwerk-ledger-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"HANDWERK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"HANDWERK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"HANDWERK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
