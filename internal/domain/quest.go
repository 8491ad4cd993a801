package domain

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// ─── Quest Types ────────────────────────────────────────────────────────────

// QuestType categorizes the kind of quest and the unit of its goal.
type QuestType string

const (
	QuestCompleteAnyScenario      QuestType = "COMPLETE_ANY_SCENARIO"
	QuestCompleteSpecificScenario QuestType = "COMPLETE_SPECIFIC_SCENARIO"
	QuestConverseForMinutes       QuestType = "CONVERSE_FOR_MINUTES" // goal in seconds
	QuestSaveVocabWords           QuestType = "SAVE_VOCAB_WORDS"
	QuestUseSpecificWord          QuestType = "USE_SPECIFIC_WORD"
)

// Valid reports whether t is a known quest type.
func (t QuestType) Valid() bool {
	switch t {
	case QuestCompleteAnyScenario, QuestCompleteSpecificScenario,
		QuestConverseForMinutes, QuestSaveVocabWords, QuestUseSpecificWord:
		return true
	}
	return false
}

// QuestMeta disambiguates quests of the same type.
type QuestMeta struct {
	ScenarioID string `json:"scenarioId,omitempty"`
	Word       string `json:"word,omitempty"`
}

// QuestDefinition is a catalog entry quests are instantiated from.
type QuestDefinition struct {
	Type        QuestType  `json:"type"`
	Description string     `json:"description"`
	Goal        int        `json:"goal"`
	XP          int        `json:"xp"`
	Meta        *QuestMeta `json:"meta,omitempty"`
}

// Quest is one of the day's challenges.
type Quest struct {
	ID              string     `json:"id"`
	Description     string     `json:"description"`
	Type            QuestType  `json:"type"`
	Goal            int        `json:"goal"`
	CurrentProgress int        `json:"currentProgress"`
	XP              int        `json:"xp"`
	IsCompleted     bool       `json:"isCompleted"`
	IsClaimed       bool       `json:"isClaimed"`
	Meta            *QuestMeta `json:"meta,omitempty"`
}

// Claimable reports whether the reward can still be collected.
func (q Quest) Claimable() bool {
	return q.IsCompleted && !q.IsClaimed
}

// NewQuest builds the index-th quest of day from def.
// The id is "{YYYY-MM-DD}-{index}", stable for the day.
func NewQuest(def QuestDefinition, day civil.Date, index int) (Quest, error) {
	if !def.Type.Valid() {
		return Quest{}, fmt.Errorf("%w: unknown type %q", ErrInvalidQuestDefinition, def.Type)
	}
	if def.Goal <= 0 {
		return Quest{}, fmt.Errorf("%w: goal must be positive, got %d", ErrInvalidQuestDefinition, def.Goal)
	}
	if def.XP <= 0 {
		return Quest{}, fmt.Errorf("%w: xp must be positive, got %d", ErrInvalidQuestDefinition, def.XP)
	}
	if def.Type == QuestCompleteSpecificScenario && (def.Meta == nil || def.Meta.ScenarioID == "") {
		return Quest{}, fmt.Errorf("%w: %s needs a scenario id", ErrInvalidQuestDefinition, def.Type)
	}
	if def.Type == QuestUseSpecificWord && (def.Meta == nil || strings.TrimSpace(def.Meta.Word) == "") {
		return Quest{}, fmt.Errorf("%w: %s needs a word", ErrInvalidQuestDefinition, def.Type)
	}
	if !day.IsValid() {
		return Quest{}, fmt.Errorf("%w: invalid date %v", ErrInvalidQuestDefinition, day)
	}

	q := Quest{
		ID:          fmt.Sprintf("%s-%d", day, index),
		Description: def.Description,
		Type:        def.Type,
		Goal:        def.Goal,
		XP:          def.XP,
	}
	if def.Meta != nil {
		meta := *def.Meta
		q.Meta = &meta
	}
	return q, nil
}

// ProgressEvent is a discrete app event that may advance quests.
// Amount is seconds for CONVERSE_FOR_MINUTES and ignored elsewhere.
type ProgressEvent struct {
	Type       QuestType `json:"type"`
	Amount     int       `json:"amount,omitempty"`
	ScenarioID string    `json:"scenario_id,omitempty"`
	Word       string    `json:"word,omitempty"`
}

// ClaimResult is returned by a reward claim. XPGained is 0 when nothing was claimed.
type ClaimResult struct {
	XPGained int     `json:"xpGained"`
	Quests   []Quest `json:"quests"`
}
