package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/history"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/storage"
)

// Server is the HTTP API server
type Server struct {
	session *history.Session
	store   storage.SessionStorage
	profile *profile.Profile
	hub     *Hub
	server  *http.Server
}

// NewServer creates a new API server. store may be nil when persistence is
// disabled; hub may be nil when live streaming is disabled.
func NewServer(session *history.Session, store storage.SessionStorage, prof *profile.Profile, hub *Hub, addr string) *Server {
	s := &Server{
		session: session,
		store:   store,
		profile: prof,
		hub:     hub,
	}

	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	// Metric endpoints
	mux.HandleFunc("/v1/metrics/current", s.handleCurrent)
	mux.HandleFunc("/v1/metrics/history", s.handleHistory)

	// Session endpoints
	mux.HandleFunc("/v1/session", s.handleSession)
	mux.HandleFunc("/v1/recommendations", s.handleRecommendations)
	mux.HandleFunc("/v1/interventions", s.handleInterventions)

	// Profile endpoint
	mux.HandleFunc("/v1/profile", s.handleProfile)

	// Live stream endpoint. The upgrade handshake must not sit behind the
	// write timeout, so websocket traffic bypasses the JSON handlers' limits.
	if hub != nil {
		mux.HandleFunc("/ws", hub.handleWS)
	}

	s.server = &http.Server{
		Addr:        addr,
		Handler:     loggingMiddleware(mux),
		ReadTimeout: 10 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")
	return s.server.Shutdown(ctx)
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleReady handles GET /readyz. Ready means at least one cycle has
// completed, so /v1/metrics/current has something to serve.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := s.session.Stats()

	ready := stats.Cycles > 0
	reasons := []string{}
	if !ready {
		reasons = append(reasons, "no cycles completed yet")
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, ReadyResponse{
		Ready:   ready,
		Cycles:  stats.Cycles,
		Reasons: reasons,
	})
}

// handleCurrent handles GET /v1/metrics/current
func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	latest, ok := s.session.Latest()
	if !ok {
		respondError(w, http.StatusNotFound, "no cycles completed yet")
		return
	}

	respondJSON(w, http.StatusOK, CurrentResponse{
		Sample: latest,
		Stats:  s.session.Stats(),
	})
}

// handleHistory handles GET /v1/metrics/history?window=10m
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	windowStr := r.URL.Query().Get("window")
	var window time.Duration
	if windowStr != "" {
		parsed, err := time.ParseDuration(windowStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid window: %v", err))
			return
		}
		if parsed < 0 {
			respondError(w, http.StatusBadRequest, "window must be positive")
			return
		}
		window = parsed
	}

	samples := s.session.Samples(window, time.Now())

	respondJSON(w, http.StatusOK, HistoryResponse{
		Window:  windowStr,
		Samples: samples,
	})
}

// handleSession handles GET /v1/session
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, http.StatusOK, SessionResponse{
		Stats:  s.session.Stats(),
		Events: s.session.Events(),
	})
}

// handleRecommendations handles GET /v1/recommendations
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recs := s.session.Recommendations()

	latest := ""
	if len(recs) > 0 {
		latest = recs[len(recs)-1].Message
	}

	respondJSON(w, http.StatusOK, RecommendationsResponse{
		Latest:          latest,
		Recommendations: recs,
	})
}

// handleInterventions handles GET /v1/interventions. Backed by persistent
// storage; unavailable when the server runs without a database.
func (s *Server) handleInterventions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "persistent storage not configured")
		return
	}

	query := r.URL.Query()
	filter := storage.InterventionFilter{
		SessionID: query.Get("sessionId"),
		Kind:      query.Get("kind"),
	}
	if filter.SessionID == "" {
		filter.SessionID = s.session.ID()
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	if startTimeStr := query.Get("startTime"); startTimeStr != "" {
		if startTime, err := time.Parse(time.RFC3339, startTimeStr); err == nil {
			filter.StartTime = &startTime
		}
	}

	if endTimeStr := query.Get("endTime"); endTimeStr != "" {
		if endTime, err := time.Parse(time.RFC3339, endTimeStr); err == nil {
			filter.EndTime = &endTime
		}
	}

	records, err := s.store.QueryInterventions(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to query interventions: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, InterventionsResponse{
		Records: records,
		Total:   len(records),
	})
}

// handleProfile handles GET /v1/profile
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, http.StatusOK, s.profile)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
