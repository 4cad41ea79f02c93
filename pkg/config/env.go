package config

// EnvPrefix is handed to envconfig; every field carries an explicit key so the
// prefix only matters for unkeyed fields.
const EnvPrefix = "HANDWERK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "HANDWERK_APP_ENV"
	EnvPort     = "HANDWERK_APP_PORT"
	EnvLogLevel = "HANDWERK_LOG_LEVEL"

	EnvDBDSN    = "HANDWERK_DB_DSN"
	EnvDBDriver = "HANDWERK_DB_DRIVER"
	EnvDBHost   = "HANDWERK_DB_HOST"
	EnvDBUser   = "HANDWERK_DB_USER"
	EnvDBName   = "HANDWERK_DB_NAME"

	EnvRedisURL = "HANDWERK_REDIS_URL"

	EnvJWTSecret  = "HANDWERK_JWT_SECRET"
	EnvJWTIssuer  = "HANDWERK_JWT_ISSUER"
	EnvJWTExpMins = "HANDWERK_JWT_EXPIRATION_MINUTES"

	EnvLedgerInitialGrant = "HANDWERK_LEDGER_INITIAL_GRANT"
	EnvLedgerLockWait     = "HANDWERK_LEDGER_LOCK_WAIT"
	EnvLedgerLockTTL      = "HANDWERK_LEDGER_LOCK_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
