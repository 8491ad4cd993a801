package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

// ─── Progress API (/api/progress/*) ─────────────────────────────────────────
// Stats, achievements and quests never fail on storage errors; the engine
// falls back to defaults, so these handlers only report input errors.

// --- /api/progress/stats ---

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Ledger.Stats(r.Context()))
}

// --- /api/progress/start (app launch) ---

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := s.session.Start(ctx)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":  stats,
		"quests": s.session.Quests.Quests(ctx),
		"next":   s.session.Scenarios.NextInJourney(stats),
	})
}

// --- /api/progress/summary ---

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Summary(r.Context()))
}

// --- DELETE /api/progress ---

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Reset(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- /api/progress/conversations ---

type completeConversationRequest struct {
	ScenarioID      string `json:"scenario_id"`
	Flawless        bool   `json:"flawless"`
	DurationSeconds int    `json:"duration_seconds"`
}

func (s *Server) handleCompleteConversation(w http.ResponseWriter, r *http.Request) {
	var req completeConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DurationSeconds > int(domain.MaxConversationDuration/time.Second) {
		writeError(w, http.StatusBadRequest, "duration_seconds exceeds "+domain.MaxConversationDuration.String())
		return
	}

	res, err := s.session.CompleteConversation(r.Context(), domain.ConversationOutcome{
		ScenarioID: req.ScenarioID,
		Flawless:   req.Flawless,
		Duration:   time.Duration(req.DurationSeconds) * time.Second,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, err := s.session.History(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if recs == nil {
		recs = []domain.ConversationRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": recs,
	})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.session.Conversation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// --- /api/progress/achievements ---

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": s.session.Ledger.AchievementsWithProgress(r.Context()),
	})
}

// --- /api/progress/quests ---

func (s *Server) handleQuests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quests": s.session.Quests.Quests(r.Context()),
	})
}

func (s *Server) handleQuestEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.ProgressEvent
	if err := decodeJSON(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quests, completed, err := s.session.RecordProgress(r.Context(), ev)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if completed == nil {
		completed = []domain.Quest{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quests":    quests,
		"completed": completed,
	})
}

func (s *Server) handleClaimQuest(w http.ResponseWriter, r *http.Request) {
	res, err := s.session.ClaimQuest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
