// Package api provides the HTTP server for TalkMaster.
// It exposes the progress engine to the app shell as a local REST API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/talkmaster-app/talkmaster/internal/app/engagement"
	"github.com/talkmaster-app/talkmaster/internal/domain"
	"github.com/talkmaster-app/talkmaster/internal/health"
)

// Server is the TalkMaster HTTP API server.
type Server struct {
	session        *engagement.Session
	health         *health.Checker // nil disables detailed /health output
	log            zerolog.Logger
	corsOrigins    []string
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(session *engagement.Session, checker *health.Checker, logger zerolog.Logger) *Server {
	return &Server{
		session:     session,
		health:      checker,
		log:         logger.With().Str("component", "api").Logger(),
		corsOrigins: []string{"*"},
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetCORSOrigins restricts which browser origins may call the API.
// An empty list or one containing "*" allows any origin.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/progress", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Post("/start", s.handleStart)
		r.Get("/summary", s.handleSummary)
		r.Delete("/", s.handleReset)

		r.Post("/conversations", s.handleCompleteConversation)
		r.Get("/conversations", s.handleHistory)
		r.Get("/conversations/{id}", s.handleConversation)

		r.Get("/achievements", s.handleAchievements)

		r.Get("/quests", s.handleQuests)
		r.Post("/quests/events", s.handleQuestEvent)
		r.Post("/quests/{id}/claim", s.handleClaimQuest)
	})

	r.Route("/api/scenarios", func(r chi.Router) {
		r.Get("/", s.handleScenarios)
		r.Post("/", s.handleAddScenario)
		r.Get("/next", s.handleNextScenario)
	})

	r.Route("/api/vocabulary", func(r chi.Router) {
		r.Get("/", s.handleVocabulary)
		r.Post("/", s.handleSaveWord)
		r.Delete("/", s.handleClearVocabulary)
	})

	r.Route("/api/review", func(r chi.Router) {
		r.Get("/", s.handleReviewItems)
		r.Post("/", s.handleAddReviewItem)
		r.Delete("/", s.handleClearReviewItems)
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/", s.handleNotifications)
		r.Post("/{id}/shown", s.handleNotificationShown)
	})

	r.Get("/api/preferences/{name}", s.handleGetPreference)
	r.Put("/api/preferences/{name}", s.handleSetPreference)
	r.Delete("/api/preferences/{name}", s.handleClearPreference)

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps engine errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidOutcome),
		errors.Is(err, domain.ErrInvalidEvent),
		errors.Is(err, domain.ErrInvalidScenario),
		errors.Is(err, domain.ErrEmptyWord),
		errors.Is(err, domain.ErrEmptyReview),
		errors.Is(err, domain.ErrUnknownPref):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrQuestNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrScenarioExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// corsMiddleware adds CORS headers for the app shell.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowAll := len(s.corsOrigins) == 0 || slices.Contains(s.corsOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allowAll {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin := r.Header.Get("Origin"); origin != "" && slices.Contains(s.corsOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request. Health and metrics scrapes are skipped.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = s.log.Error()
		case status >= http.StatusBadRequest:
			ev = s.log.Warn()
		default:
			ev = s.log.Debug()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
