package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/semaphore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/cohortiq-backend/pkg/config"
	"github.com/angelmondragon/cohortiq-backend/pkg/logger"
)

// Client wraps the shared GORM connection and gates access to it so that no
// caller waits longer than the configured pool timeout for a connection.
type Client struct {
	conn           *gorm.DB
	gate           *semaphore.Weighted
	acquireTimeout time.Duration
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New boots a GORM client using the provided configuration. Connections are
// opened lazily; nothing is dialed until the first query or Ping.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  cfg.DSN,
		PreferSimpleProtocol: true,
	})

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	gormCfg := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	}

	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}

	applyPoolSettings(sqlDB, cfg)

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"max_open_conns": cfg.MaxOpenConns,
			"pool_timeout":   cfg.PoolTimeout.String(),
		})
		logg.Info(ctx, "database pool configured")
	}

	return newClient(conn, cfg.MaxOpenConns, cfg.PoolTimeout), nil
}

func newClient(conn *gorm.DB, size int, acquireTimeout time.Duration) *Client {
	if size < 1 {
		size = 1
	}
	return &Client{
		conn:           conn,
		gate:           semaphore.NewWeighted(int64(size)),
		acquireTimeout: acquireTimeout,
	}
}

func applyPoolSettings(sqlDB *sql.DB, cfg config.DBConfig) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Select runs one read statement and scans every row into dest, which must be
// a pointer to a slice of structs (or a single struct). The pool slot is held
// only for the duration of this call.
func (c *Client) Select(ctx context.Context, dest any, query string, args ...any) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := c.conn.WithContext(ctx).Raw(query, args...).Scan(dest).Error; err != nil {
		return classify(err)
	}
	return nil
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Close shuts down the pooled connections.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *Client) acquire(ctx context.Context) (func(), error) {
	waitCtx := ctx
	if c.acquireTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.acquireTimeout)
		defer cancel()
	}

	if err := c.gate.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, classify(ctx.Err())
		}
		return nil, poolExhausted(c.acquireTimeout)
	}
	return func() { c.gate.Release(1) }, nil
}
