// Package health provides periodic health checks with auto-recovery.
// The daemon registers one check per backing store plus the data directory.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/talkmaster-app/talkmaster/internal/infra/metrics"
)

// DefaultInterval is how often Run repeats the checks.
const DefaultInterval = 60 * time.Second

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

// NewChecker creates a health checker. A zero interval means DefaultInterval.
func NewChecker(interval time.Duration, logger zerolog.Logger, checks ...Check) *Checker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Checker{
		checks:   checks,
		interval: interval,
		timeout:  5 * time.Second,
		log:      logger.With().Str("component", "health").Logger(),
	}
}

// Pinger is anything that can report its own liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreCheck checks a backing store by pinging it.
func StoreCheck(name string, p Pinger) Check {
	return Check{
		Name:    name,
		CheckFn: p.Ping,
	}
}

// DataDirCheck verifies the data directory exists and recreates it when missing.
func DataDirCheck(dir string) Check {
	return Check{
		Name: "data_dir",
		CheckFn: func(ctx context.Context) error {
			return checkDir(dir)
		},
		RecoverFn: func(ctx context.Context) error {
			return os.MkdirAll(dir, 0700)
		},
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	// Run immediately on start
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce runs every check once and records the results.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}

		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := check.CheckFn(checkCtx)
		cancel()

		if err != nil {
			s.Error = err.Error()
			c.log.Warn().Err(err).Str("check", check.Name).Msg("health check failed")
			// Attempt recovery
			if check.RecoverFn != nil {
				if rerr := check.RecoverFn(ctx); rerr != nil {
					c.log.Error().Err(rerr).Str("check", check.Name).Msg("recovery failed")
				}
			}
		} else {
			s.Healthy = true
		}
		metrics.HealthStatus.WithLabelValues(check.Name).Set(boolGauge(s.Healthy))
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func boolGauge(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
