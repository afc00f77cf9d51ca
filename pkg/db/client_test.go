package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/cohortiq-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/cohortiq-backend/pkg/errors"
)

type dayCount struct {
	Day   string `gorm:"column:day"`
	Views int64  `gorm:"column:views"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`CREATE TABLE events (day TEXT NOT NULL, event_name TEXT NOT NULL)`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO events (day, event_name) VALUES
		('2024-01-01', 'view'), ('2024-01-01', 'view'), ('2024-01-02', 'view'), ('2024-01-02', 'purchase')`).Error)
	return conn
}

func TestSelectScansRows(t *testing.T) {
	client := newClient(newTestDB(t), 2, time.Second)

	var rows []dayCount
	err := client.Select(context.Background(), &rows,
		`SELECT day, COUNT(*) AS views FROM events WHERE event_name = ? GROUP BY day ORDER BY day`, "view")
	require.NoError(t, err)
	assert.Equal(t, []dayCount{{Day: "2024-01-01", Views: 2}, {Day: "2024-01-02", Views: 1}}, rows)
}

func TestSelectEmptyResult(t *testing.T) {
	client := newClient(newTestDB(t), 1, time.Second)

	var rows []dayCount
	err := client.Select(context.Background(), &rows,
		`SELECT day, COUNT(*) AS views FROM events WHERE event_name = ? GROUP BY day`, "add_to_cart")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSelectFailsFastWhenPoolExhausted(t *testing.T) {
	client := newClient(newTestDB(t), 1, 20*time.Millisecond)
	require.NoError(t, client.gate.Acquire(context.Background(), 1))
	defer client.gate.Release(1)

	start := time.Now()
	var rows []dayCount
	err := client.Select(context.Background(), &rows, `SELECT day, 1 AS views FROM events`)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, errors.Is(err, ErrPoolExhausted))
	assert.Equal(t, pkgerrors.CodePoolExhausted, pkgerrors.CodeOf(err))
	assert.Equal(t, ReasonPoolExhausted, Reason(err))
}

func TestSelectReleasesSlotOnQueryError(t *testing.T) {
	client := newClient(newTestDB(t), 1, 50*time.Millisecond)

	var rows []dayCount
	err := client.Select(context.Background(), &rows, `SELECT day FROM missing_table`)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	assert.Equal(t, ReasonUnavailable, Reason(err))

	// The slot must be free again for the next caller.
	err = client.Select(context.Background(), &rows, `SELECT day, COUNT(*) AS views FROM events GROUP BY day`)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSelectConcurrentCallersShareBoundedPool(t *testing.T) {
	client := newClient(newTestDB(t), 2, time.Second)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var rows []dayCount
			errs <- client.Select(context.Background(), &rows, `SELECT day, COUNT(*) AS views FROM events GROUP BY day`)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestSelectCanceledContext(t *testing.T) {
	client := newClient(newTestDB(t), 1, time.Second)
	require.NoError(t, client.gate.Acquire(context.Background(), 1))
	defer client.gate.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var rows []dayCount
	err := client.Select(ctx, &rows, `SELECT day, 1 AS views FROM events`)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPoolExhausted))
	assert.Equal(t, ReasonCanceled, Reason(err))
}

func TestPing(t *testing.T) {
	client := newClient(newTestDB(t), 1, time.Second)
	require.NoError(t, client.Ping(context.Background()))
}

func TestPoolKeepsIdleConnectionsBetweenQueries(t *testing.T) {
	conn := newTestDB(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	applyPoolSettings(sqlDB, config.DBConfig{MaxOpenConns: 5, MaxIdleConns: 5})

	client := newClient(conn, 5, time.Second)
	var rows []dayCount
	require.NoError(t, client.Select(context.Background(), &rows,
		`SELECT day, COUNT(*) AS views FROM events GROUP BY day ORDER BY day`))
	assert.GreaterOrEqual(t, sqlDB.Stats().Idle, 1)

	applyPoolSettings(sqlDB, config.DBConfig{MaxOpenConns: 5, MaxIdleConns: 0})
	assert.Zero(t, sqlDB.Stats().Idle)
}
