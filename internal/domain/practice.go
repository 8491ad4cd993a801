package domain

import "time"

// MaxConversationDuration bounds a single reported conversation.
const MaxConversationDuration = 24 * time.Hour

// ConversationOutcome is reported by the app shell when a conversation ends.
type ConversationOutcome struct {
	ScenarioID string        `json:"scenario_id"`
	Flawless   bool          `json:"flawless"`
	Duration   time.Duration `json:"duration"`
}

// Seconds returns the practiced time rounded to the nearest second, never negative.
func (o ConversationOutcome) Seconds() int {
	if o.Duration <= 0 {
		return 0
	}
	return int(o.Duration.Round(time.Second) / time.Second)
}

// ConversationRecord is one entry of the practice history.
type ConversationRecord struct {
	ID          string    `json:"id"`
	ScenarioID  string    `json:"scenario_id"`
	Flawless    bool      `json:"flawless"`
	DurationSec int       `json:"duration_seconds"`
	CompletedAt time.Time `json:"completed_at"`
}

// VocabularyItem is a word the user saved from a conversation.
type VocabularyItem struct {
	Word       string    `json:"word"`
	Definition string    `json:"definition"`
	Example    string    `json:"example"`
	SavedAt    time.Time `json:"saved_at"`
}

// ReviewItem is a grammar correction kept for later review.
type ReviewItem struct {
	ID         string    `json:"id"`
	Original   string    `json:"original"`
	Correction string    `json:"correction"`
	CreatedAt  time.Time `json:"created_at"`
}
