// Package server exposes scoring and lead browsing over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/model"
	"github.com/bioleads/bioleads-cli/internal/scorer"
	"github.com/bioleads/bioleads-cli/internal/store"
)

// Server scores lead batches on request and serves the most recent ranked
// batch for browsing.
type Server struct {
	engine *scorer.Engine
	store  store.Store

	mu      sync.RWMutex
	current []model.ScoredLead
}

// New creates a Server. st may be nil to disable persistence.
func New(engine *scorer.Engine, st store.Store) *Server {
	return &Server{engine: engine, store: st}
}

// Router builds the HTTP handler with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/score", s.handleScore)
	r.Get("/api/leads", s.handleLeads)
	r.Get("/api/summary", s.handleSummary)
	r.Get("/api/runs", s.handleRuns)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScore ranks the posted lead batch. With ?save=true the batch is also
// persisted as a run (label from ?label=).
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	leads, err := model.DecodeLeads(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	scored := s.engine.Rank(leads)

	s.mu.Lock()
	s.current = scored
	s.mu.Unlock()

	if r.URL.Query().Get("save") == "true" {
		if s.store == nil {
			writeError(w, http.StatusBadRequest, "no store configured")
			return
		}
		run, err := s.store.SaveRun(r.Context(), r.URL.Query().Get("label"), scored)
		if err != nil {
			zap.L().Error("save run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "save failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"run": run, "leads": scored})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"leads": scored})
}

// handleLeads filters the current batch by case-insensitive substring match
// on name and company (?q=) and by minimum score (?min_score=).
func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	q := strings.ToLower(r.URL.Query().Get("q"))

	minScore := 0
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		var err error
		minScore, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_score must be an integer")
			return
		}
	}

	filtered := make([]model.ScoredLead, 0, len(current))
	for _, sl := range current {
		if sl.ProbabilityScore < minScore {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(sl.Name), q) &&
			!strings.Contains(strings.ToLower(sl.Company), q) {
			continue
		}
		filtered = append(filtered, sl)
	}

	writeJSON(w, http.StatusOK, map[string]any{"leads": filtered, "total": len(current)})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	avg, tiers := model.Summarize(current)
	writeJSON(w, http.StatusOK, map[string]any{
		"lead_count":  len(current),
		"avg_score":   avg,
		"tier_counts": tiers,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusBadRequest, "no store configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
	}

	runs, err := s.store.ListRuns(r.Context(), store.RunFilter{Limit: limit})
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}
