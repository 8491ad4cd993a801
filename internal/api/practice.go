package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

// ─── Scenarios (/api/scenarios) ─────────────────────────────────────────────

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": s.session.Scenarios.All(r.Context()),
	})
}

func (s *Server) handleAddScenario(w http.ResponseWriter, r *http.Request) {
	var sc domain.Scenario
	if err := decodeJSON(r, &sc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.session.Scenarios.AddCustom(r.Context(), sc)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleNextScenario(w http.ResponseWriter, r *http.Request) {
	next := s.session.Scenarios.NextInJourney(s.session.Ledger.Stats(r.Context()))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenario": next, // null once every scenario was practiced
	})
}

// ─── Vocabulary (/api/vocabulary) ───────────────────────────────────────────

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	words, err := s.session.Vocabulary(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if words == nil {
		words = []domain.VocabularyItem{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"words": words,
	})
}

func (s *Server) handleSaveWord(w http.ResponseWriter, r *http.Request) {
	var item domain.VocabularyItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.session.SaveVocabularyWord(r.Context(), item)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if !res.Saved {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

func (s *Server) handleClearVocabulary(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ClearVocabulary(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Review Items (/api/review) ─────────────────────────────────────────────

type reviewRequest struct {
	Original   string `json:"original"`
	Correction string `json:"correction"`
}

func (s *Server) handleReviewItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.session.ReviewItems(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []domain.ReviewItem{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

func (s *Server) handleAddReviewItem(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := s.session.AddReviewItem(r.Context(), req.Original, req.Correction)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if !added {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]bool{"added": added})
}

func (s *Server) handleClearReviewItems(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ClearReviewItems(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Notifications (/api/notifications) ─────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	notifs, err := s.session.Notifications.Pending(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if notifs == nil {
		notifs = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifs,
	})
}

func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := s.session.Notifications.MarkShown(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─── Preferences (/api/preferences/{name}) ──────────────────────────────────
// Values are opaque to the engine; the body is stored verbatim.

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	value, ok, err := s.session.Preference(r.Context(), name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "preference "+name+" not set")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "value": value})
}

func (s *Server) handleSetPreference(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.session.SetPreference(r.Context(), chi.URLParam(r, "name"), string(body)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearPreference(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ClearPreference(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
