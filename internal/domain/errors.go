package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure: no infrastructure dependency.

var (
	// Catalog errors
	ErrInvalidQuestDefinition = errors.New("invalid quest definition")
	ErrInvalidScenario        = errors.New("invalid scenario")
	ErrScenarioExists         = errors.New("scenario already exists")

	// Input errors
	ErrInvalidOutcome = errors.New("invalid conversation outcome")
	ErrInvalidEvent   = errors.New("invalid progress event")
	ErrEmptyWord      = errors.New("word must not be empty")
	ErrEmptyReview    = errors.New("review item needs original and correction text")
	ErrUnknownPref    = errors.New("unknown preference")

	// Lookup errors
	ErrQuestNotFound        = errors.New("quest not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrConversationNotFound = errors.New("conversation not found")

	// Configuration errors
	ErrUnknownBackend = errors.New("unknown store backend")
)
