package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/history"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/regulate"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/score"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision"
)

// Blink rate above which an eye-strain alert is raised on the dashboard.
const highBlinkAlertRate = 30.0

// Minimum spacing between batches of newly raised threshold alerts.
const alertLogCooldown = 5 * time.Second

// CycleSink receives persisted per-cycle data. Implemented by the SQLite
// session store; nil disables persistence.
type CycleSink interface {
	StoreCycle(sessionID string, metrics *CycleMetrics) error
	StoreIntervention(sessionID string, outcome *regulate.Outcome) error
}

// Broadcaster pushes live snapshots to connected dashboard clients.
type Broadcaster interface {
	BroadcastCycle(metrics *CycleMetrics, stats history.Stats)
}

// Monitor drives the pipeline at a fixed cadence and fans each cycle out
// to the regulation controller, the session history, storage, and the
// live stream. The camera is exclusively owned here and released exactly
// once on shutdown.
type Monitor struct {
	orchestrator *Orchestrator
	controller   *regulate.Controller
	session      *history.Session
	sink         CycleSink
	broadcaster  Broadcaster
	spec         profile.Spec
	interval     time.Duration

	prevAlerts   map[string]bool
	lastAlertAt  time.Time
	failedCycles int
}

// NewMonitor assembles the cycle loop. sink and broadcaster may be nil.
func NewMonitor(orchestrator *Orchestrator, controller *regulate.Controller, session *history.Session, sink CycleSink, broadcaster Broadcaster, p *profile.Profile, interval time.Duration) *Monitor {
	return &Monitor{
		orchestrator: orchestrator,
		controller:   controller,
		session:      session,
		sink:         sink,
		broadcaster:  broadcaster,
		spec:         p.Spec,
		interval:     interval,
		prevAlerts:   make(map[string]bool),
	}
}

// Run executes cycles until the context is cancelled or the camera source
// ends. Capture failures are fatal to their cycle only: the loop logs and
// keeps going. Cancellation happens between cycles; there is no mid-cycle
// cancellation.
func (m *Monitor) Run(ctx context.Context) error {
	defer func() {
		if err := m.orchestrator.Release(); err != nil {
			log.Printf("Warning: camera release: %v", err)
		}
	}()

	// Initial cycle, then the ticker cadence.
	if stop := m.cycleOnce(ctx); stop {
		return nil
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if stop := m.cycleOnce(ctx); stop {
				return nil
			}
		}
	}
}

// cycleOnce runs one cycle and fans out its record. Returns true when the
// source is exhausted and the loop should stop.
func (m *Monitor) cycleOnce(ctx context.Context) bool {
	now := time.Now()

	metrics, err := m.orchestrator.RunCycle(now)
	if err != nil {
		if errors.Is(err, vision.ErrEndOfStream) {
			log.Printf("Camera stream ended, stopping monitor")
			return true
		}
		m.failedCycles++
		log.Printf("Error running cycle (%d consecutive): %v", m.failedCycles, err)
		return false
	}
	m.failedCycles = 0

	// Regulation side effects (alert / rescue plan / hotkey).
	outcome := m.controller.Apply(ctx, metrics.LoadScore, metrics.HeadForward, now)

	// A new recommendation is detected by value inequality with the last
	// one recorded, since plans can repeat in content across the session.
	if m.session.AddRecommendation(m.controller.LastRecommendation(), now) {
		log.Printf("Recommendation recorded (load=%.1f)", metrics.LoadScore)
	}

	m.session.Record(history.Sample{
		Timestamp:     metrics.Timestamp,
		BlinkRate:     metrics.BlinkRate,
		BreathingRate: metrics.BreathingRate,
		LoadScore:     metrics.LoadScore,
		HeadForward:   metrics.HeadForward,
		Zone:          metrics.Zone,
	})

	m.logThresholdAlerts(metrics, now)

	if m.sink != nil {
		if err := m.sink.StoreCycle(m.session.ID(), metrics); err != nil {
			log.Printf("Warning: failed to store cycle: %v", err)
		}
		if outcome != nil {
			if err := m.sink.StoreIntervention(m.session.ID(), outcome); err != nil {
				log.Printf("Warning: failed to store intervention: %v", err)
			}
		}
	}

	if m.broadcaster != nil {
		m.broadcaster.BroadcastCycle(metrics, m.session.Stats())
	}

	return false
}

// logThresholdAlerts turns per-cycle threshold crossings into event-log
// entries. Only alerts that are newly active since the previous cycle are
// logged, and batches are spaced by a short cooldown so a boundary-riding
// signal does not flood the log.
func (m *Monitor) logThresholdAlerts(metrics *CycleMetrics, now time.Time) {
	active := make(map[string]bool)
	messages := make(map[string]string)

	switch metrics.Zone {
	case score.ZoneBrainFried:
		active["load_critical"] = true
		messages["load_critical"] = fmt.Sprintf("Cognitive load exceeded %.0f (%.0f)", m.spec.Zones.BrainFriedAt, metrics.LoadScore)
	case score.ZoneNormal:
		active["load_warning"] = true
		messages["load_warning"] = fmt.Sprintf("Cognitive load rising (%.0f)", metrics.LoadScore)
	}

	if metrics.BlinkRate > highBlinkAlertRate {
		active["blink_high"] = true
		messages["blink_high"] = fmt.Sprintf("High blink rate: %.0f/min", metrics.BlinkRate)
	}

	if metrics.BreathingRate < m.spec.Scoring.BreathingBandLow || metrics.BreathingRate > m.spec.Scoring.BreathingBandHigh {
		active["breathing_abnormal"] = true
		messages["breathing_abnormal"] = fmt.Sprintf("Breathing abnormal: %.1f bpm", metrics.BreathingRate)
	}

	if metrics.HeadForward {
		active["posture_forward"] = true
		messages["posture_forward"] = "Poor posture: head leaning forward"
	}

	hasNew := false
	for name := range active {
		if !m.prevAlerts[name] {
			hasNew = true
			break
		}
	}

	if hasNew && now.Sub(m.lastAlertAt) > alertLogCooldown {
		for name := range active {
			if !m.prevAlerts[name] {
				m.session.AddEvent("alert", messages[name], now)
			}
		}
		m.lastAlertAt = now
	}

	m.prevAlerts = active
}
