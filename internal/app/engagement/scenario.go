package engagement

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

// ScenarioCatalog merges the built-in scenarios with user-created ones.
// Custom scenarios are listed first, newest first.
type ScenarioCatalog struct {
	mu      sync.Mutex
	store   domain.KVStore
	builtin []domain.Scenario
	log     zerolog.Logger
}

// NewScenarioCatalog creates a catalog over the built-in scenarios.
func NewScenarioCatalog(store domain.KVStore, env Env) *ScenarioCatalog {
	env = env.withDefaults()
	return &ScenarioCatalog{
		store:   store,
		builtin: domain.BuiltinScenarios(),
		log:     env.Logger.With().Str("component", "scenarios").Logger(),
	}
}

// Builtin returns the shipped scenarios in journey order.
func (c *ScenarioCatalog) Builtin() []domain.Scenario {
	return c.builtin
}

// All returns custom scenarios followed by the built-in ones.
func (c *ScenarioCatalog) All(ctx context.Context) []domain.Scenario {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(c.loadCustom(ctx), c.builtin...)
}

// Get looks a scenario up by id.
func (c *ScenarioCatalog) Get(ctx context.Context, id string) (domain.Scenario, bool) {
	for _, sc := range c.All(ctx) {
		if sc.ID == id {
			return sc, true
		}
	}
	return domain.Scenario{}, false
}

// AddCustom stores a user-created scenario. An empty id gets a generated one.
func (c *ScenarioCatalog) AddCustom(ctx context.Context, sc domain.Scenario) (domain.Scenario, error) {
	sc.Title = strings.TrimSpace(sc.Title)
	if sc.Title == "" {
		return domain.Scenario{}, fmt.Errorf("%w: title is required", domain.ErrInvalidScenario)
	}
	if sc.ID == "" {
		sc.ID = "custom-" + uuid.NewString()
	}
	if sc.Emoji == "" {
		sc.Emoji = "✨"
	}
	sc.IsCustom = true

	c.mu.Lock()
	defer c.mu.Unlock()

	custom := c.loadCustom(ctx)
	for _, existing := range append(custom, c.builtin...) {
		if existing.ID == sc.ID {
			return domain.Scenario{}, fmt.Errorf("%w: %s", domain.ErrScenarioExists, sc.ID)
		}
	}

	updated := append([]domain.Scenario{sc}, custom...)
	if !saveJSON(ctx, c.store, c.log, KeyCustomScenarios, updated) {
		return domain.Scenario{}, fmt.Errorf("save custom scenario %s: store unavailable", sc.ID)
	}
	c.log.Info().Str("scenario", sc.ID).Msg("custom scenario added")
	return sc, nil
}

// NextInJourney returns the first built-in scenario not yet practiced,
// or nil once every one has been completed.
func (c *ScenarioCatalog) NextInJourney(stats domain.UserStats) *domain.Scenario {
	for _, sc := range c.builtin {
		if !stats.HasScenario(sc.ID) {
			return &sc
		}
	}
	return nil
}

func (c *ScenarioCatalog) loadCustom(ctx context.Context) []domain.Scenario {
	var custom []domain.Scenario
	if !loadJSON(ctx, c.store, c.log, KeyCustomScenarios, &custom) {
		return []domain.Scenario{}
	}
	return custom
}
