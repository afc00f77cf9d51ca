package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "COHORTIQ"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv          = "COHORTIQ_APP_ENV"
	EnvPort            = "COHORTIQ_APP_PORT"
	EnvLogLevel        = "COHORTIQ_LOG_LEVEL"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvDBSSLMode       = "PGSSLMODE"
	EnvDBMaxOpenConns  = "COHORTIQ_DB_MAX_OPEN_CONNS"
	EnvDBMaxIdleConns  = "COHORTIQ_DB_MAX_IDLE_CONNS"
	EnvDBPoolTimeout   = "COHORTIQ_DB_POOL_TIMEOUT"
	EnvCORSOrigins     = "COHORTIQ_CORS_ALLOWED_ORIGINS"
	EnvExperimentKey   = "COHORTIQ_EXPERIMENT_DEFAULT_KEY"
	EnvConnectTimeout  = "COHORTIQ_DB_CONNECT_TIMEOUT"
	EnvMigrationsTable = "COHORTIQ_MIGRATIONS_TABLE"
	EnvRateLimitReqs   = "COHORTIQ_RATE_LIMIT_REQUESTS"
)
