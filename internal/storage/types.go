package storage

import (
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/pipeline"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/regulate"
)

// SessionStorage persists monitoring sessions. Optional: a nil storage
// disables persistence and every write failure is a logged warning, never
// a pipeline error.
type SessionStorage interface {
	// StartSession registers a new session with its active profile ID.
	StartSession(sessionID, profileID string, startedAt time.Time) error

	// StoreCycle persists one cycle record.
	StoreCycle(sessionID string, metrics *pipeline.CycleMetrics) error

	// StoreIntervention persists one executed regulation action.
	StoreIntervention(sessionID string, outcome *regulate.Outcome) error

	// QueryCycles retrieves cycle records with optional filtering.
	QueryCycles(filter CycleFilter) ([]CycleRecord, error)

	// QueryInterventions retrieves intervention records with optional
	// filtering.
	QueryInterventions(filter InterventionFilter) ([]InterventionRecord, error)

	// Close closes the storage connection.
	Close() error
}

// CycleFilter narrows cycle queries.
type CycleFilter struct {
	SessionID string
	Zone      string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// InterventionFilter narrows intervention queries.
type InterventionFilter struct {
	SessionID string
	Kind      string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// CycleRecord is one persisted cycle row.
type CycleRecord struct {
	ID            int64     `json:"id"`
	SessionID     string    `json:"sessionId"`
	BlinkRate     float64   `json:"blinkRate"`
	HeadForward   bool      `json:"headForward"`
	BreathingRate float64   `json:"breathingRate"`
	LoadScore     float64   `json:"loadScore"`
	Zone          string    `json:"zone"`
	FaceDetected  bool      `json:"faceDetected"`
	Timestamp     time.Time `json:"timestamp"`
	CreatedAt     time.Time `json:"createdAt"`
}

// InterventionRecord is one persisted intervention row.
type InterventionRecord struct {
	ID             int64     `json:"id"`
	SessionID      string    `json:"sessionId"`
	Kind           string    `json:"kind"`
	Recommendation string    `json:"recommendation"`
	UsedFallback   bool      `json:"usedFallback"`
	Timestamp      time.Time `json:"timestamp"`
	CreatedAt      time.Time `json:"createdAt"`
}
