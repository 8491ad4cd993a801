package engagement

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/talkmaster-app/talkmaster/internal/domain"
	"github.com/talkmaster-app/talkmaster/internal/infra/metrics"
)

// DefaultQuestsPerDay is the size of a daily quest set.
const DefaultQuestsPerDay = 3

// StatsSource supplies the stats quest eligibility is judged on.
type StatsSource interface {
	Stats(ctx context.Context) domain.UserStats
}

// SchedulerConfig tunes quest generation.
type SchedulerConfig struct {
	PerDay int   // quests per day, DefaultQuestsPerDay when 0
	Seed   int64 // shuffle seed, clock-derived when 0
}

// Scheduler manages the daily quest set.
// A set is generated at most once per calendar day and replaced wholesale
// on the first read of a new day; incomplete quests do not carry over.
type Scheduler struct {
	mu      sync.Mutex
	store   domain.KVStore
	stats   StatsSource
	catalog []domain.QuestDefinition
	perDay  int
	rng     *rand.Rand
	env     Env
	log     zerolog.Logger
}

// NewScheduler creates a scheduler. Every catalog entry is validated up
// front so generation cannot fail later.
func NewScheduler(store domain.KVStore, stats StatsSource, catalog []domain.QuestDefinition, env Env, cfg SchedulerConfig) (*Scheduler, error) {
	env = env.withDefaults()

	probe := civil.Date{Year: 2000, Month: 1, Day: 1}
	for i, def := range catalog {
		if _, err := domain.NewQuest(def, probe, i); err != nil {
			return nil, fmt.Errorf("quest catalog entry %d (%q): %w", i, def.Description, err)
		}
	}

	perDay := cfg.PerDay
	if perDay <= 0 {
		perDay = DefaultQuestsPerDay
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = env.Clock().UnixNano()
	}

	return &Scheduler{
		store:   store,
		stats:   stats,
		catalog: catalog,
		perDay:  perDay,
		rng:     rand.New(rand.NewSource(seed)),
		env:     env,
		log:     env.Logger.With().Str("component", "quests").Logger(),
	}, nil
}

// Quests returns today's quests, generating them if today has no set yet
// or the stored set cannot be read.
func (s *Scheduler) Quests(ctx context.Context) []domain.Quest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(ctx)
}

// UpdateProgress advances every incomplete quest the event matches and
// returns today's quests plus those this event completed.
// Completed quests are never touched again.
func (s *Scheduler) UpdateProgress(ctx context.Context, ev domain.ProgressEvent) (quests, completed []domain.Quest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quests = s.current(ctx)
	changed := false
	for i := range quests {
		q := &quests[i]
		if q.IsCompleted || q.Type != ev.Type {
			continue
		}
		inc := increment(*q, ev)
		if inc <= 0 {
			continue
		}

		// Saturate before adding so huge amounts cannot wrap.
		if inc > q.Goal-q.CurrentProgress {
			inc = q.Goal - q.CurrentProgress
		}
		q.CurrentProgress += inc
		if q.CurrentProgress >= q.Goal {
			q.IsCompleted = true
			completed = append(completed, *q)
			metrics.QuestsCompleted.WithLabelValues(string(q.Type)).Inc()
			s.log.Info().Str("quest", q.ID).Str("type", string(q.Type)).Msg("quest completed")
		}
		changed = true
	}

	if changed {
		metrics.QuestProgress.WithLabelValues(string(ev.Type)).Inc()
		saveJSON(ctx, s.store, s.log, KeyQuests, quests)
	}
	return quests, completed
}

// ClaimReward marks a completed quest as claimed and returns its XP.
// Claiming an unknown, incomplete or already claimed quest gains 0 and
// leaves state unchanged. A claim that cannot be persisted gains 0 too.
func (s *Scheduler) ClaimReward(ctx context.Context, questID string) domain.ClaimResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	quests := s.current(ctx)
	for i := range quests {
		if quests[i].ID != questID || !quests[i].Claimable() {
			continue
		}

		updated := make([]domain.Quest, len(quests))
		copy(updated, quests)
		updated[i].IsClaimed = true
		if !saveJSON(ctx, s.store, s.log, KeyQuests, updated) {
			return domain.ClaimResult{Quests: quests}
		}

		metrics.RewardsClaimed.Inc()
		metrics.XPClaimed.Add(float64(updated[i].XP))
		s.log.Info().Str("quest", questID).Int("xp", updated[i].XP).Msg("quest reward claimed")
		return domain.ClaimResult{XPGained: updated[i].XP, Quests: updated}
	}
	return domain.ClaimResult{Quests: quests}
}

// current loads today's set or generates a new one. Caller holds s.mu.
func (s *Scheduler) current(ctx context.Context) []domain.Quest {
	today := s.env.today()

	marker, ok, err := s.store.Get(ctx, KeyQuestsDate)
	if err != nil {
		storeFailure(s.log, "get", KeyQuestsDate, err)
		return s.generate(ctx, today)
	}
	day, valid := domain.ParseDate(marker)
	if !ok || !valid || !domain.IsToday(day, today) {
		return s.generate(ctx, today)
	}

	var quests []domain.Quest
	if !loadJSON(ctx, s.store, s.log, KeyQuests, &quests) {
		return s.generate(ctx, today)
	}
	if quests == nil {
		quests = []domain.Quest{}
	}
	for i := range quests {
		quests[i] = sanitizeQuest(quests[i])
	}
	return quests
}

// sanitizeQuest repairs a stored quest: progress is clamped to [0, goal],
// completion follows progress and only completed quests can be claimed.
func sanitizeQuest(q domain.Quest) domain.Quest {
	q.CurrentProgress = max(0, min(q.CurrentProgress, q.Goal))
	q.IsCompleted = q.Goal > 0 && q.CurrentProgress >= q.Goal
	q.IsClaimed = q.IsClaimed && q.IsCompleted
	return q
}

// generate picks today's quests from the eligible catalog entries and
// persists them with the date marker.
func (s *Scheduler) generate(ctx context.Context, today civil.Date) []domain.Quest {
	stats := s.stats.Stats(ctx)

	eligible := make([]domain.QuestDefinition, 0, len(s.catalog))
	for _, def := range s.catalog {
		if isEligible(def, stats) {
			eligible = append(eligible, def)
		}
	}
	s.rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	n := min(s.perDay, len(eligible))
	quests := make([]domain.Quest, 0, n)
	for i, def := range eligible[:n] {
		q, err := domain.NewQuest(def, today, i)
		if err != nil {
			// Catalog was validated at construction; only a bad date gets here.
			s.log.Error().Err(err).Msg("build quest")
			continue
		}
		quests = append(quests, q)
	}

	if saveJSON(ctx, s.store, s.log, KeyQuests, quests) {
		if err := s.store.Set(ctx, KeyQuestsDate, today.String()); err != nil {
			storeFailure(s.log, "set", KeyQuestsDate, err)
		}
	}
	metrics.QuestsGenerated.Inc()
	s.log.Info().Str("date", today.String()).Int("count", len(quests)).Int("eligible", len(eligible)).Msg("daily quests generated")
	return quests
}

// isEligible keeps harder quests away from new users.
func isEligible(def domain.QuestDefinition, stats domain.UserStats) bool {
	switch {
	case def.Type == domain.QuestCompleteSpecificScenario && stats.ConversationsCompleted < 1:
		return false
	case def.Type == domain.QuestConverseForMinutes && def.Goal > 120 && stats.ConversationsCompleted < 3:
		return false
	}
	return true
}

// increment returns how far ev advances q.
func increment(q domain.Quest, ev domain.ProgressEvent) int {
	switch q.Type {
	case domain.QuestCompleteSpecificScenario:
		if q.Meta != nil && q.Meta.ScenarioID == ev.ScenarioID {
			return 1
		}
	case domain.QuestCompleteAnyScenario, domain.QuestSaveVocabWords:
		return 1
	case domain.QuestConverseForMinutes:
		return ev.Amount
	case domain.QuestUseSpecificWord:
		if q.Meta != nil && strings.EqualFold(strings.TrimSpace(ev.Word), strings.TrimSpace(q.Meta.Word)) {
			return 1
		}
	}
	return 0
}

// ─── Quest Catalog ──────────────────────────────────────────────────────────

// DefaultQuestCatalog returns the general quests plus one
// complete-the-scenario quest per scenario.
func DefaultQuestCatalog(scenarios []domain.Scenario) []domain.QuestDefinition {
	defs := []domain.QuestDefinition{
		{Type: domain.QuestCompleteAnyScenario, Description: "Complete any scenario", Goal: 1, XP: 20},
		{Type: domain.QuestSaveVocabWords, Description: "Save 3 new words", Goal: 3, XP: 15},
		{Type: domain.QuestSaveVocabWords, Description: "Save your first new word", Goal: 1, XP: 10},
		{Type: domain.QuestConverseForMinutes, Description: "Practice for 2 minutes", Goal: 120, XP: 25},
		{Type: domain.QuestConverseForMinutes, Description: "Practice for 5 minutes", Goal: 300, XP: 40},
	}
	for _, sc := range scenarios {
		defs = append(defs, domain.QuestDefinition{
			Type:        domain.QuestCompleteSpecificScenario,
			Description: fmt.Sprintf("Complete the %q scenario", sc.Title),
			Goal:        1,
			XP:          30,
			Meta:        &domain.QuestMeta{ScenarioID: sc.ID},
		})
	}
	return defs
}
