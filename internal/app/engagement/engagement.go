// Package engagement implements the TalkMaster progress engine.
// The Ledger keeps cumulative stats and unlocked achievements, the
// Scheduler runs the daily quests, and Session sequences both for the
// app shell.
package engagement

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/talkmaster-app/talkmaster/internal/domain"
	"github.com/talkmaster-app/talkmaster/internal/infra/metrics"
)

// Storage keys. Values are JSON documents except the date marker.
const (
	KeyStats           = "talkmaster_stats"
	KeyUnlocked        = "talkmaster_unlocked_achievements"
	KeyQuests          = "talkmaster_daily_quests"
	KeyQuestsDate      = "talkmaster_quests_date"
	KeyCustomScenarios = "talkmaster_custom_scenarios"
	KeyUserProfile     = "talkmaster_user_profile"
	KeyTheme           = "theme"
)

// Env carries the ambient collaborators shared by the engine components.
// Zero fields fall back to time.Now, time.Local and a no-op logger.
type Env struct {
	Clock    domain.Clock
	Location *time.Location
	Logger   *zerolog.Logger
}

func (e Env) withDefaults() Env {
	if e.Clock == nil {
		e.Clock = time.Now
	}
	if e.Location == nil {
		e.Location = time.Local
	}
	if e.Logger == nil {
		nop := zerolog.Nop()
		e.Logger = &nop
	}
	return e
}

// today returns the current calendar date in the user's timezone.
func (e Env) today() civil.Date {
	return domain.Today(e.Clock(), e.Location)
}

// loadJSON decodes the document under key into dst.
// Returns false when the key is absent or unreadable; failures are logged.
func loadJSON(ctx context.Context, store domain.KVStore, log zerolog.Logger, key string, dst any) bool {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		storeFailure(log, "get", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		storeFailure(log, "decode", key, err)
		return false
	}
	return true
}

// saveJSON encodes v under key. Failures are logged and reported.
func saveJSON(ctx context.Context, store domain.KVStore, log zerolog.Logger, key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		storeFailure(log, "encode", key, err)
		return false
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		storeFailure(log, "set", key, err)
		return false
	}
	return true
}

func storeFailure(log zerolog.Logger, op, key string, err error) {
	metrics.StoreErrors.WithLabelValues(op).Inc()
	log.Warn().Err(err).Str("op", op).Str("key", key).Msg("progress store failure, using defaults")
}
