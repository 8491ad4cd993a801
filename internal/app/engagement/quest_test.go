package engagement_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkmaster-app/talkmaster/internal/app/engagement"
	"github.com/talkmaster-app/talkmaster/internal/domain"
	"github.com/talkmaster-app/talkmaster/internal/infra/memstore"
)

// fixedStats is a StatsSource that always reports the same stats.
type fixedStats domain.UserStats

func (f fixedStats) Stats(context.Context) domain.UserStats { return domain.UserStats(f) }

var (
	anyScenarioDef  = domain.QuestDefinition{Type: domain.QuestCompleteAnyScenario, Description: "Complete any scenario", Goal: 1, XP: 20}
	practiceDef     = domain.QuestDefinition{Type: domain.QuestConverseForMinutes, Description: "Practice for 2 minutes", Goal: 120, XP: 25}
	longPracticeDef = domain.QuestDefinition{Type: domain.QuestConverseForMinutes, Description: "Practice for 5 minutes", Goal: 300, XP: 40}
)

var (
	airportDef = domain.QuestDefinition{
		Type: domain.QuestCompleteSpecificScenario, Description: "Complete the airport scenario", Goal: 1, XP: 30,
		Meta: &domain.QuestMeta{ScenarioID: "airport"},
	}
	wordDef = domain.QuestDefinition{
		Type: domain.QuestUseSpecificWord, Description: "Use the word \"itinerary\"", Goal: 1, XP: 10,
		Meta: &domain.QuestMeta{Word: "itinerary"},
	}
)

func newScheduler(t *testing.T, store domain.KVStore, stats domain.UserStats, clock *fakeClock, catalog []domain.QuestDefinition) *engagement.Scheduler {
	t.Helper()
	s, err := engagement.NewScheduler(store, fixedStats(stats), catalog, testEnv(clock), engagement.SchedulerConfig{Seed: 42})
	require.NoError(t, err)
	return s
}

func questOfType(quests []domain.Quest, typ domain.QuestType) (domain.Quest, bool) {
	for _, q := range quests {
		if q.Type == typ {
			return q, true
		}
	}
	return domain.Quest{}, false
}

// ═══════════════════════════════════════════════════════════════════════════
// Generation Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestQuests_IdempotentWithinDay(t *testing.T) {
	ctx := context.Background()
	clock := newClock(2025, 7, 1)
	s := newScheduler(t, memstore.New(), domain.DefaultUserStats(), clock,
		engagement.DefaultQuestCatalog(domain.BuiltinScenarios()))

	first := s.Quests(ctx)
	require.Len(t, first, engagement.DefaultQuestsPerDay)
	clock.now = clock.now.Add(6 * time.Hour)
	assert.Equal(t, first, s.Quests(ctx))

	for i, q := range first {
		assert.Equal(t, fmt.Sprintf("2025-07-01-%d", i), q.ID)
		assert.Zero(t, q.CurrentProgress)
		assert.False(t, q.IsCompleted)
		assert.False(t, q.IsClaimed)
	}
}

func TestQuests_NewUserEligibility(t *testing.T) {
	ctx := context.Background()
	catalog := engagement.DefaultQuestCatalog(domain.BuiltinScenarios())

	for day := 1; day <= 20; day++ {
		clock := newClock(2025, 7, day)
		s := newScheduler(t, memstore.New(), domain.DefaultUserStats(), clock, catalog)
		for _, q := range s.Quests(ctx) {
			assert.NotEqual(t, domain.QuestCompleteSpecificScenario, q.Type, "day %d", day)
			if q.Type == domain.QuestConverseForMinutes {
				assert.LessOrEqual(t, q.Goal, 120, "day %d", day)
			}
		}
	}
}

func TestQuests_SpecificScenarioAfterFirstConversation(t *testing.T) {
	ctx := context.Background()
	s := newScheduler(t, memstore.New(), domain.UserStats{ConversationsCompleted: 1}, newClock(2025, 7, 1),
		[]domain.QuestDefinition{airportDef, longPracticeDef})

	quests := s.Quests(ctx)
	require.Len(t, quests, 1, "long practice needs three conversations")
	assert.Equal(t, domain.QuestCompleteSpecificScenario, quests[0].Type)
	assert.Equal(t, "airport", quests[0].Meta.ScenarioID)
}

func TestQuests_FewerEligibleThanPerDay(t *testing.T) {
	ctx := context.Background()
	s := newScheduler(t, memstore.New(), domain.DefaultUserStats(), newClock(2025, 7, 1),
		[]domain.QuestDefinition{anyScenarioDef, airportDef})

	quests := s.Quests(ctx)
	require.Len(t, quests, 1)
	assert.Equal(t, domain.QuestCompleteAnyScenario, quests[0].Type)
}

func TestQuests_NoneEligible(t *testing.T) {
	ctx := context.Background()
	s := newScheduler(t, memstore.New(), domain.DefaultUserStats(), newClock(2025, 7, 1),
		[]domain.QuestDefinition{airportDef})

	quests := s.Quests(ctx)
	assert.NotNil(t, quests)
	assert.Empty(t, quests)
}

func TestQuests_PerDayConfig(t *testing.T) {
	ctx := context.Background()
	s, err := engagement.NewScheduler(memstore.New(), fixedStats(domain.DefaultUserStats()),
		engagement.DefaultQuestCatalog(domain.BuiltinScenarios()), testEnv(newClock(2025, 7, 1)),
		engagement.SchedulerConfig{PerDay: 2, Seed: 7})
	require.NoError(t, err)
	assert.Len(t, s.Quests(ctx), 2)
}

func TestQuests_NewDayReplacesSet(t *testing.T) {
	ctx := context.Background()
	clock := newClock(2025, 7, 1)
	s := newScheduler(t, memstore.New(), domain.DefaultUserStats(), clock, []domain.QuestDefinition{anyScenarioDef})

	quests, completed := s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestCompleteAnyScenario})
	require.Len(t, completed, 1)
	require.True(t, quests[0].IsCompleted)

	clock.AddDays(1)
	fresh := s.Quests(ctx)
	require.Len(t, fresh, 1)
	assert.Equal(t, "2025-07-02-0", fresh[0].ID)
	assert.False(t, fresh[0].IsCompleted, "nothing carries over")
}

func TestQuests_InvalidCatalog(t *testing.T) {
	bad := []domain.QuestDefinition{
		{Type: domain.QuestCompleteSpecificScenario, Description: "no scenario", Goal: 1, XP: 5},
	}
	_, err := engagement.NewScheduler(memstore.New(), fixedStats{}, bad, testEnv(newClock(2025, 7, 1)), engagement.SchedulerConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidQuestDefinition)

	zeroGoal := []domain.QuestDefinition{{Type: domain.QuestCompleteAnyScenario, Description: "zero", XP: 5}}
	_, err = engagement.NewScheduler(memstore.New(), fixedStats{}, zeroGoal, testEnv(newClock(2025, 7, 1)), engagement.SchedulerConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidQuestDefinition)
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestQuests_ProgressClampsAndCompletesOnce(t *testing.T) {
	ctx := context.Background()
	s := newScheduler(t, memstore.New(), domain.DefaultUserStats(), newClock(2025, 7, 1),
		[]domain.QuestDefinition{anyScenarioDef, practiceDef})

	_, completed := s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestConverseForMinutes, Amount: 90})
	assert.Empty(t, completed)
	q, _ := questOfType(s.Quests(ctx), domain.QuestConverseForMinutes)
	assert.Equal(t, 90, q.CurrentProgress)

	_, completed = s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestConverseForMinutes, Amount: 90})
	require.Len(t, completed, 1)
	q, _ = questOfType(s.Quests(ctx), domain.QuestConverseForMinutes)
	assert.Equal(t, 120, q.CurrentProgress)
	assert.True(t, q.IsCompleted)

	_, completed = s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestConverseForMinutes, Amount: 500})
	assert.Empty(t, completed, "completed quests are never touched again")

	other, _ := questOfType(s.Quests(ctx), domain.QuestCompleteAnyScenario)
	assert.Zero(t, other.CurrentProgress, "other types are untouched")
}

func TestQuests_HugeAmountSaturates(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	s := newScheduler(t, store, domain.DefaultUserStats(), newClock(2025, 7, 1),
		[]domain.QuestDefinition{practiceDef})

	s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestConverseForMinutes, Amount: 1})
	quests, completed := s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestConverseForMinutes, Amount: math.MaxInt})
	require.Len(t, completed, 1)
	require.Len(t, quests, 1)
	assert.Equal(t, 120, quests[0].CurrentProgress)
	assert.True(t, quests[0].IsCompleted)

	reloaded := newScheduler(t, store, domain.DefaultUserStats(), newClock(2025, 7, 1),
		[]domain.QuestDefinition{practiceDef})
	assert.Equal(t, 120, reloaded.Quests(ctx)[0].CurrentProgress, "persisted value is in range")
}

func TestQuests_SpecificScenarioMatch(t *testing.T) {
	ctx := context.Background()
	s := newScheduler(t, memstore.New(), domain.UserStats{ConversationsCompleted: 1}, newClock(2025, 7, 1),
		[]domain.QuestDefinition{airportDef})

	_, completed := s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestCompleteSpecificScenario, ScenarioID: "hotel"})
	assert.Empty(t, completed)

	_, completed = s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestCompleteSpecificScenario, ScenarioID: "airport"})
	require.Len(t, completed, 1)
	assert.Equal(t, "airport", completed[0].Meta.ScenarioID)
}

func TestQuests_SpecificWordIgnoresCase(t *testing.T) {
	ctx := context.Background()
	s := newScheduler(t, memstore.New(), domain.DefaultUserStats(), newClock(2025, 7, 1),
		[]domain.QuestDefinition{wordDef})

	_, completed := s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestUseSpecificWord, Word: "passport"})
	assert.Empty(t, completed)

	_, completed = s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestUseSpecificWord, Word: " Itinerary "})
	assert.Len(t, completed, 1)
}

func TestQuests_ProgressPersists(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	clock := newClock(2025, 7, 1)
	s := newScheduler(t, store, domain.DefaultUserStats(), clock, []domain.QuestDefinition{practiceDef})
	s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestConverseForMinutes, Amount: 45})

	reopened := newScheduler(t, store, domain.DefaultUserStats(), clock, []domain.QuestDefinition{practiceDef})
	quests := reopened.Quests(ctx)
	require.Len(t, quests, 1)
	assert.Equal(t, 45, quests[0].CurrentProgress)
}

// ═══════════════════════════════════════════════════════════════════════════
// Claim Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestQuests_ClaimReward(t *testing.T) {
	ctx := context.Background()
	s := newScheduler(t, memstore.New(), domain.DefaultUserStats(), newClock(2025, 7, 1),
		[]domain.QuestDefinition{anyScenarioDef})
	id := s.Quests(ctx)[0].ID

	res := s.ClaimReward(ctx, id)
	assert.Zero(t, res.XPGained, "incomplete quest")
	assert.False(t, res.Quests[0].IsClaimed)

	s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestCompleteAnyScenario})
	res = s.ClaimReward(ctx, id)
	assert.Equal(t, 20, res.XPGained)
	assert.True(t, res.Quests[0].IsClaimed)

	res = s.ClaimReward(ctx, id)
	assert.Zero(t, res.XPGained, "double claim")
	assert.True(t, s.Quests(ctx)[0].IsClaimed)

	assert.Zero(t, s.ClaimReward(ctx, "2025-07-01-9").XPGained)
}

func TestQuests_ClaimNotPersistedGainsNothing(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	s := newScheduler(t, store, domain.DefaultUserStats(), newClock(2025, 7, 1),
		[]domain.QuestDefinition{anyScenarioDef})
	quests, _ := s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestCompleteAnyScenario})

	store.Fail = func(op, key string) error {
		if op == "set" && key == engagement.KeyQuests {
			return assert.AnError
		}
		return nil
	}
	res := s.ClaimReward(ctx, quests[0].ID)
	assert.Zero(t, res.XPGained)
	assert.False(t, res.Quests[0].IsClaimed)

	store.Fail = nil
	assert.Equal(t, 20, s.ClaimReward(ctx, quests[0].ID).XPGained, "still claimable")
}

// ═══════════════════════════════════════════════════════════════════════════
// Storage Tolerance Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestQuests_CorruptSetRegenerates(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Set(ctx, engagement.KeyQuestsDate, "2025-07-01"))
	require.NoError(t, store.Set(ctx, engagement.KeyQuests, "[{broken"))
	s := newScheduler(t, store, domain.DefaultUserStats(), newClock(2025, 7, 1),
		[]domain.QuestDefinition{anyScenarioDef, practiceDef})

	quests := s.Quests(ctx)
	assert.Len(t, quests, 2)

	raw, ok, err := store.Get(ctx, engagement.KeyQuests)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(raw, "[{"), "regenerated set is written back")
	assert.NotEqual(t, "[{broken", raw)
}

func TestQuests_StoredSetIsRepaired(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	stored := []domain.Quest{
		{ID: "2025-07-01-0", Type: domain.QuestConverseForMinutes, Goal: 120, XP: 25, CurrentProgress: -40, IsCompleted: true, IsClaimed: true},
		{ID: "2025-07-01-1", Type: domain.QuestSaveVocabWords, Goal: 3, XP: 15, CurrentProgress: 9},
		{ID: "2025-07-01-2", Type: domain.QuestCompleteAnyScenario, Goal: 1, XP: 20, CurrentProgress: 1, IsCompleted: true, IsClaimed: true},
	}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, engagement.KeyQuestsDate, "2025-07-01"))
	require.NoError(t, store.Set(ctx, engagement.KeyQuests, string(raw)))
	s := newScheduler(t, store, domain.DefaultUserStats(), newClock(2025, 7, 1),
		[]domain.QuestDefinition{anyScenarioDef, practiceDef})

	quests := s.Quests(ctx)
	require.Len(t, quests, 3)

	assert.Zero(t, quests[0].CurrentProgress)
	assert.False(t, quests[0].IsCompleted, "completion follows progress")
	assert.False(t, quests[0].IsClaimed, "incomplete quests are not claimed")

	assert.Equal(t, 3, quests[1].CurrentProgress)
	assert.True(t, quests[1].IsCompleted)
	assert.Equal(t, 15, s.ClaimReward(ctx, quests[1].ID).XPGained)

	assert.True(t, quests[2].IsClaimed, "consistent quests are kept as stored")
}

func TestQuests_UnreadableMarkerRegenerates(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Set(ctx, engagement.KeyQuestsDate, "Tue Jul 01 2025"))
	s := newScheduler(t, store, domain.DefaultUserStats(), newClock(2025, 7, 1),
		[]domain.QuestDefinition{anyScenarioDef})

	require.Len(t, s.Quests(ctx), 1)
	marker, _, _ := store.Get(ctx, engagement.KeyQuestsDate)
	assert.Equal(t, "2025-07-01", marker)
}

func TestQuests_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	store.Fail = func(string, string) error { return assert.AnError }
	s := newScheduler(t, store, domain.DefaultUserStats(), newClock(2025, 7, 1),
		engagement.DefaultQuestCatalog(domain.BuiltinScenarios()))

	assert.Len(t, s.Quests(ctx), engagement.DefaultQuestsPerDay)
	quests, _ := s.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestSaveVocabWords, Amount: 1})
	assert.Len(t, quests, engagement.DefaultQuestsPerDay)
}
