// Package history keeps the in-memory session record the dashboard reads:
// bounded time series of past metrics, session statistics, and the
// recommendation/event logs.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/score"
)

// DefaultMaxPoints keeps roughly ten minutes of data at one cycle per
// second.
const DefaultMaxPoints = 600

const maxLogEntries = 200

// Sample is one time-series point.
type Sample struct {
	Timestamp     time.Time  `json:"timestamp"`
	BlinkRate     float64    `json:"blinkRate"`
	BreathingRate float64    `json:"breathingRate"`
	LoadScore     float64    `json:"loadScore"`
	HeadForward   bool       `json:"headForward"`
	Zone          score.Zone `json:"zone"`
}

// Event is one entry in the session event log.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
}

// Stats is a snapshot of the session counters.
type Stats struct {
	SessionID         string    `json:"sessionId"`
	StartedAt         time.Time `json:"startedAt"`
	Cycles            int64     `json:"cycles"`
	PeakLoad          float64   `json:"peakLoad"`
	PeakBlinkRate     float64   `json:"peakBlinkRate"`
	AlertCount        int64     `json:"alertCount"`
	DeepFlowSeconds   float64   `json:"deepFlowSeconds"`
	NormalSeconds     float64   `json:"normalSeconds"`
	BrainFriedSeconds float64   `json:"brainFriedSeconds"`
	AverageLoad       float64   `json:"averageLoad"`
}

// Session accumulates one monitoring session. All accessors return copies;
// the monitor loop is the only writer.
type Session struct {
	mu sync.RWMutex

	id        string
	startedAt time.Time
	maxPoints int

	samples         []Sample
	recommendations []Event
	events          []Event

	cycles         int64
	loadSum        float64
	peakLoad       float64
	peakBlinkRate  float64
	alertCount     int64
	zoneSeconds    map[score.Zone]float64
	lastTick       time.Time
	lastRecSeen    string
}

// NewSession starts an empty session record.
func NewSession(startedAt time.Time, maxPoints int) *Session {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	return &Session{
		id:          uuid.NewString(),
		startedAt:   startedAt,
		maxPoints:   maxPoints,
		zoneSeconds: make(map[score.Zone]float64),
		lastTick:    startedAt,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Record appends one cycle sample, updating peaks, averages, and per-zone
// elapsed time.
func (s *Session) Record(sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = append(s.samples, sample)
	if len(s.samples) > s.maxPoints {
		s.samples = s.samples[1:]
	}

	s.cycles++
	s.loadSum += sample.LoadScore
	if sample.LoadScore > s.peakLoad {
		s.peakLoad = sample.LoadScore
	}
	if sample.BlinkRate > s.peakBlinkRate {
		s.peakBlinkRate = sample.BlinkRate
	}

	dt := sample.Timestamp.Sub(s.lastTick).Seconds()
	if dt > 0 {
		s.zoneSeconds[sample.Zone] += dt
	}
	s.lastTick = sample.Timestamp
}

// AddRecommendation logs a rescue plan if it differs from the last one
// seen. Returns true when the entry was appended.
func (s *Session) AddRecommendation(text string, at time.Time) bool {
	if text == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if text == s.lastRecSeen {
		return false
	}
	s.lastRecSeen = text

	s.recommendations = appendBounded(s.recommendations, Event{
		Timestamp: at,
		Kind:      "recommendation",
		Message:   text,
	})
	s.alertCount++
	return true
}

// AddEvent logs a threshold alert or other session event.
func (s *Session) AddEvent(kind, message string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = appendBounded(s.events, Event{Timestamp: at, Kind: kind, Message: message})
	s.alertCount++
}

func appendBounded(log []Event, e Event) []Event {
	log = append(log, e)
	if len(log) > maxLogEntries {
		log = log[1:]
	}
	return log
}

// Samples returns the series no older than the given window. A zero
// window returns everything retained.
func (s *Session) Samples(window time.Duration, now time.Time) []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if window <= 0 {
		out := make([]Sample, len(s.samples))
		copy(out, s.samples)
		return out
	}

	cutoff := now.Add(-window)
	out := []Sample{}
	for _, sample := range s.samples {
		if sample.Timestamp.After(cutoff) {
			out = append(out, sample)
		}
	}
	return out
}

// Latest returns the most recent sample, or false when none exists yet.
func (s *Session) Latest() (Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.samples) == 0 {
		return Sample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Recommendations returns the recommendation log, oldest first.
func (s *Session) Recommendations() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.recommendations))
	copy(out, s.recommendations)
	return out
}

// Events returns the event log, oldest first.
func (s *Session) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Stats snapshots the session counters.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	avg := 0.0
	if s.cycles > 0 {
		avg = s.loadSum / float64(s.cycles)
	}

	return Stats{
		SessionID:         s.id,
		StartedAt:         s.startedAt,
		Cycles:            s.cycles,
		PeakLoad:          s.peakLoad,
		PeakBlinkRate:     s.peakBlinkRate,
		AlertCount:        s.alertCount,
		DeepFlowSeconds:   s.zoneSeconds[score.ZoneDeepFlow],
		NormalSeconds:     s.zoneSeconds[score.ZoneNormal],
		BrainFriedSeconds: s.zoneSeconds[score.ZoneBrainFried],
		AverageLoad:       avg,
	}
}
