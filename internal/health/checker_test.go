package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkmaster-app/talkmaster/internal/infra/metrics"
	"github.com/talkmaster-app/talkmaster/internal/infra/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// ─── Checker Tests ──────────────────────────────────────────────────────────

func TestChecker_RunOnceHealthy(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(0, zerolog.Nop(), StoreCheck("sqlite", db), DataDirCheck(t.TempDir()))
	c.RunOnce(context.Background())

	statuses := c.Statuses()
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.True(t, s.Healthy, "check %q: %s", s.Name, s.Error)
		assert.False(t, s.CheckedAt.IsZero())
	}
	assert.True(t, c.IsHealthy())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HealthStatus.WithLabelValues("sqlite")))
}

func TestChecker_IsHealthy_BeforeRun(t *testing.T) {
	c := NewChecker(0, zerolog.Nop(), StoreCheck("sqlite", newTestDB(t)))

	// No statuses yet, vacuously healthy
	assert.True(t, c.IsHealthy())
	assert.Empty(t, c.Statuses())
}

func TestChecker_FailingStore(t *testing.T) {
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	c := NewChecker(0, zerolog.Nop(), StoreCheck("redis_test", down))
	c.RunOnce(context.Background())

	statuses := c.Statuses()
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Healthy)
	assert.Equal(t, "connection refused", statuses[0].Error)
	assert.False(t, c.IsHealthy())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.HealthStatus.WithLabelValues("redis_test")))
}

func TestChecker_ClosedDB(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	c := NewChecker(0, zerolog.Nop(), StoreCheck("sqlite", db))
	c.RunOnce(context.Background())
	assert.False(t, c.IsHealthy())
}

func TestChecker_DataDirRecovers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")
	c := NewChecker(0, zerolog.Nop(), DataDirCheck(dir))

	c.RunOnce(context.Background())
	assert.False(t, c.IsHealthy(), "missing dir fails the first run")

	info, err := os.Stat(dir)
	require.NoError(t, err, "recovery recreates the dir")
	assert.True(t, info.IsDir())

	c.RunOnce(context.Background())
	assert.True(t, c.IsHealthy())
}

func TestChecker_DataDirIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home")
	require.NoError(t, os.WriteFile(path, []byte("not a dir"), 0644))

	c := NewChecker(0, zerolog.Nop(), DataDirCheck(path))
	c.RunOnce(context.Background())

	statuses := c.Statuses()
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Healthy)
	assert.Contains(t, statuses[0].Error, "not a directory")
}

func TestChecker_StatusesCopy(t *testing.T) {
	c := NewChecker(0, zerolog.Nop(), StoreCheck("sqlite", newTestDB(t)))
	c.RunOnce(context.Background())

	s1 := c.Statuses()
	s2 := c.Statuses()
	require.NotEmpty(t, s1)
	s1[0].Healthy = false
	assert.True(t, s2[0].Healthy, "Statuses() should return a copy")
}

func TestChecker_RunStopsOnCancel(t *testing.T) {
	calls := 0
	c := NewChecker(0, zerolog.Nop(), Check{
		Name:    "counter",
		CheckFn: func(context.Context) error { calls++; return nil },
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Run(ctx)

	assert.Equal(t, 1, calls, "runs once immediately, then exits")
}
