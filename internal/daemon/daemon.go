package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/talkmaster-app/talkmaster/internal/api"
	"github.com/talkmaster-app/talkmaster/internal/app/engagement"
	"github.com/talkmaster-app/talkmaster/internal/domain"
	"github.com/talkmaster-app/talkmaster/internal/health"
	"github.com/talkmaster-app/talkmaster/internal/infra/memstore"
	"github.com/talkmaster-app/talkmaster/internal/infra/redisstore"
	"github.com/talkmaster-app/talkmaster/internal/infra/sqlite"
)

// Daemon is the core TalkMaster runtime. It wires together all services.
type Daemon struct {
	Config  Config
	DB      *sqlite.DB
	Redis   *redisstore.Store // nil unless the redis backend is selected
	Session *engagement.Session
	Server  *api.Server
	Health  *health.Checker
	Logger  zerolog.Logger
	cancel  context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := NewLogger(cfg.Logging, os.Stderr)
	home := talkmasterHome()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// Open SQLite
	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &Daemon{
		Config: cfg,
		DB:     db,
		Logger: logger,
	}
	checks := []health.Check{
		health.DataDirCheck(home),
		health.StoreCheck("sqlite", db),
	}

	// Progress records
	var kv domain.KVStore
	switch cfg.Store.Backend {
	case BackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rs, err := redisstore.Open(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		}, logger)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		d.Redis = rs
		kv = rs
		checks = append(checks, health.StoreCheck("redis", rs))
	case BackendMemory:
		kv = memstore.New()
		logger.Warn().Msg("memory store backend: progress is lost on exit")
	default:
		kv = db
	}

	env := engagement.Env{Clock: time.Now, Location: loc, Logger: &logger}
	session, err := engagement.NewSession(engagement.SessionDeps{
		Store:         kv,
		Vocabulary:    db,
		Reviews:       db,
		History:       db,
		Notifications: db,
	}, env, engagement.SchedulerConfig{
		PerDay: cfg.Progress.QuestsPerDay,
		Seed:   cfg.Progress.QuestSeed,
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("create session: %w", err)
	}
	d.Session = session

	d.Health = health.NewChecker(health.DefaultInterval, logger, checks...)

	// Initialize API server
	d.Server = api.NewServer(session, d.Health, logger)
	d.Server.SetCORSOrigins(cfg.API.CORSOrigins)

	// Enable Prometheus /metrics if configured
	if cfg.Telemetry.Prometheus {
		d.Server.EnableMetrics()
	}

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// App start: expire a stale streak before the first request.
	stats := d.Session.Start(ctx)

	// Health checker (always runs)
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		d.Logger.Info().Msg("shutting down")
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	d.Logger.Info().
		Str("addr", addr).
		Str("backend", d.Config.Store.Backend).
		Int("streak", stats.Streak).
		Msg("talkmaster serving")
	if d.Config.Telemetry.Prometheus {
		d.Logger.Info().Str("url", fmt.Sprintf("http://%s/metrics", addr)).Msg("metrics enabled")
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
