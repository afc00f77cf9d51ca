package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	DB          DBConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Experiments ExperimentsConfig
	Migrations  MigrationsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct-level constraints declared on each section.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"COHORTIQ_APP_ENV" default:"dev" validate:"required"`
	Port         string `envconfig:"COHORTIQ_APP_PORT" default:"8000" validate:"required,numeric"`
	LogLevel     string `envconfig:"COHORTIQ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COHORTIQ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig sizes the bounded pool used by every analytics query. Connections
// are dialed on first use and, up to MaxIdleConns, kept open between queries.
type DBConfig struct {
	DSN            string        `envconfig:"DATABASE_URL" validate:"required"`
	SSLMode        string        `envconfig:"PGSSLMODE" default:"require" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	ConnectTimeout time.Duration `envconfig:"COHORTIQ_DB_CONNECT_TIMEOUT" default:"3s"`

	MaxOpenConns    int           `envconfig:"COHORTIQ_DB_MAX_OPEN_CONNS" default:"5" validate:"min=1"`
	MaxIdleConns    int           `envconfig:"COHORTIQ_DB_MAX_IDLE_CONNS" default:"5" validate:"min=0"`
	PoolTimeout     time.Duration `envconfig:"COHORTIQ_DB_POOL_TIMEOUT" default:"5s" validate:"gt=0"`
	ConnMaxLifetime time.Duration `envconfig:"COHORTIQ_DB_CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `envconfig:"COHORTIQ_DB_CONN_MAX_IDLE_TIME" default:"5m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"COHORTIQ_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
}

// RateLimitConfig bounds requests per client IP. Zero disables limiting.
type RateLimitConfig struct {
	Requests int           `envconfig:"COHORTIQ_RATE_LIMIT_REQUESTS" default:"120" validate:"min=0"`
	Window   time.Duration `envconfig:"COHORTIQ_RATE_LIMIT_WINDOW" default:"1m"`
}

type ExperimentsConfig struct {
	DefaultKey string `envconfig:"COHORTIQ_EXPERIMENT_DEFAULT_KEY" default:"checkout_button" validate:"required"`
}

type MigrationsConfig struct {
	AutoMigrate bool   `envconfig:"COHORTIQ_AUTO_MIGRATE" default:"false"`
	Table       string `envconfig:"COHORTIQ_MIGRATIONS_TABLE" default:"cohortiq_db_version"`
}

// ensureDSN appends sslmode and connect_timeout to the DSN unless the caller
// already pinned them. Both URL and keyword/value connection strings are
// accepted.
func (db *DBConfig) ensureDSN() error {
	dsn := strings.TrimSpace(db.DSN)
	if dsn == "" {
		return fmt.Errorf("%s is required", EnvDatabaseURL)
	}

	if !strings.Contains(dsn, "://") {
		if !strings.Contains(dsn, "=") {
			return fmt.Errorf("%s must be a postgres URL or keyword/value string", EnvDatabaseURL)
		}
		db.DSN = db.appendKeywords(dsn)
		return nil
	}

	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("%s must be a postgres URL or keyword/value string", EnvDatabaseURL)
	}

	q := u.Query()
	if q.Get("sslmode") == "" && db.SSLMode != "" {
		q.Set("sslmode", db.SSLMode)
	}
	if q.Get("connect_timeout") == "" && db.ConnectTimeout > 0 {
		q.Set("connect_timeout", db.connectTimeoutSeconds())
	}
	u.RawQuery = q.Encode()

	db.DSN = u.String()
	return nil
}

var keywordPattern = regexp.MustCompile(`(?:^|\s)(sslmode|connect_timeout)\s*=`)

func (db *DBConfig) appendKeywords(dsn string) string {
	present := map[string]bool{}
	for _, m := range keywordPattern.FindAllStringSubmatch(dsn, -1) {
		present[m[1]] = true
	}
	if !present["sslmode"] && db.SSLMode != "" {
		dsn += " sslmode=" + db.SSLMode
	}
	if !present["connect_timeout"] && db.ConnectTimeout > 0 {
		dsn += " connect_timeout=" + db.connectTimeoutSeconds()
	}
	return dsn
}

// connectTimeoutSeconds renders the timeout in whole seconds, at least one.
func (db *DBConfig) connectTimeoutSeconds() string {
	seconds := int(db.ConnectTimeout.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
