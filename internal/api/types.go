package api

import (
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/history"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/pipeline"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/storage"
)

// CurrentResponse is the latest cycle snapshot.
type CurrentResponse struct {
	Sample history.Sample `json:"sample"`
	Stats  history.Stats  `json:"stats"`
}

// HistoryResponse carries a windowed metric series.
type HistoryResponse struct {
	Window  string           `json:"window"`
	Samples []history.Sample `json:"samples"`
}

// SessionResponse carries session statistics and the event log.
type SessionResponse struct {
	Stats  history.Stats   `json:"stats"`
	Events []history.Event `json:"events"`
}

// RecommendationsResponse carries the rescue-plan log.
type RecommendationsResponse struct {
	Latest          string          `json:"latest,omitempty"`
	Recommendations []history.Event `json:"recommendations"`
}

// InterventionsResponse carries persisted intervention records.
type InterventionsResponse struct {
	Records []storage.InterventionRecord `json:"records"`
	Total   int                          `json:"total"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents readiness check response
type ReadyResponse struct {
	Ready   bool     `json:"ready"`
	Cycles  int64    `json:"cycles"`
	Reasons []string `json:"reasons,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StreamMessage is one WebSocket frame sent to dashboard clients.
type StreamMessage struct {
	Type      string                 `json:"type"` // "cycle"
	Timestamp time.Time              `json:"timestamp"`
	Metrics   *pipeline.CycleMetrics `json:"metrics,omitempty"`
	Stats     *history.Stats         `json:"stats,omitempty"`
}
