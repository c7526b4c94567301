package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/history"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/regulate"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision/synthetic"
)

type recordingSink struct {
	mu            sync.Mutex
	cycles        int
	interventions []*regulate.Outcome
}

func (r *recordingSink) StoreCycle(sessionID string, metrics *CycleMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles++
	return nil
}

func (r *recordingSink) StoreIntervention(sessionID string, outcome *regulate.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interventions = append(r.interventions, outcome)
	return nil
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls int
}

func (r *recordingBroadcaster) BroadcastCycle(metrics *CycleMetrics, stats history.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
}

type noopSummarizer struct{}

func (noopSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return "- plan", nil
}

func TestMonitor_RunUntilStreamEnds(t *testing.T) {
	prof := profile.Default()

	scenario, err := synthetic.NewScenario(synthetic.ScenarioFixture{
		Width:  640,
		Height: 480,
		Steps: []synthetic.Step{
			{Face: true, EAR: 0.30, NoseZ: -0.12},
			{Face: true, EAR: 0.30, NoseZ: -0.12},
			{Face: true, EAR: 0.30, NoseZ: -0.02},
		},
	})
	if err != nil {
		t.Fatalf("NewScenario returned error: %v", err)
	}

	start := time.Now()
	orchestrator, err := NewOrchestrator(scenario.Camera(), scenario.Model(), prof, start)
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	controller, err := regulate.NewController(prof.Spec.Regulation, regulate.LogExecutor{}, noopSummarizer{})
	if err != nil {
		t.Fatalf("NewController returned error: %v", err)
	}

	session := history.NewSession(start, 0)
	sink := &recordingSink{}
	broadcaster := &recordingBroadcaster{}

	monitor := NewMonitor(orchestrator, controller, session, sink, broadcaster, prof, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The scenario does not loop, so the run stops on its own.
	if err := monitor.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if stats := session.Stats(); stats.Cycles != 3 {
		t.Errorf("cycles = %d, want 3", stats.Cycles)
	}
	if sink.cycles != 3 {
		t.Errorf("stored cycles = %d, want 3", sink.cycles)
	}
	if broadcaster.calls != 3 {
		t.Errorf("broadcasts = %d, want 3", broadcaster.calls)
	}

	// The head-forward cycle triggers exactly one zoom action; the cooldown
	// swallows the second forward cycle.
	if len(sink.interventions) != 1 {
		t.Fatalf("interventions = %d, want 1", len(sink.interventions))
	}
	if sink.interventions[0].Kind != regulate.ActionZoomIn {
		t.Errorf("intervention kind = %s, want ZOOM_IN", sink.interventions[0].Kind)
	}

	// The forward posture raised an alert event.
	events := session.Events()
	if len(events) == 0 {
		t.Fatal("expected posture alert events")
	}
}

func TestMonitor_StopsOnContextCancel(t *testing.T) {
	prof := profile.Default()

	scenario, err := synthetic.NewScenario(synthetic.ScenarioFixture{
		Width:  640,
		Height: 480,
		Loop:   true,
		Steps:  []synthetic.Step{{Face: true, EAR: 0.30, NoseZ: -0.02}},
	})
	if err != nil {
		t.Fatalf("NewScenario returned error: %v", err)
	}

	start := time.Now()
	orchestrator, err := NewOrchestrator(scenario.Camera(), scenario.Model(), prof, start)
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}

	controller, err := regulate.NewController(prof.Spec.Regulation, regulate.LogExecutor{}, noopSummarizer{})
	if err != nil {
		t.Fatalf("NewController returned error: %v", err)
	}

	session := history.NewSession(start, 0)
	monitor := NewMonitor(orchestrator, controller, session, nil, nil, prof, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- monitor.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}

	if stats := session.Stats(); stats.Cycles == 0 {
		t.Error("expected at least one cycle before cancellation")
	}
}
