package sqlite

import (
	"os"
	"testing"
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/pipeline"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/regulate"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/score"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/storage"
)

func setupTestDB(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create temp database file
	tmpfile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpfile.Close()

	store, err := NewStore(tmpfile.Name())
	if err != nil {
		os.Remove(tmpfile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.Remove(tmpfile.Name())
	}

	return store, cleanup
}

func testMetrics(load float64, zone score.Zone, at time.Time) *pipeline.CycleMetrics {
	return &pipeline.CycleMetrics{
		BlinkRate:     14,
		HeadForward:   false,
		BreathingRate: 17.5,
		LoadScore:     load,
		Zone:          zone,
		FaceDetected:  true,
		Timestamp:     at,
	}
}

func TestStore_StartSessionIdempotent(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	startedAt := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	if err := store.StartSession("session-1", "default", startedAt); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	// Re-registering the same session must not fail.
	if err := store.StartSession("session-1", "default", startedAt); err != nil {
		t.Fatalf("re-registering session failed: %v", err)
	}
}

func TestStore_StoreAndQueryCycles(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	startedAt := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	if err := store.StartSession("session-1", "default", startedAt); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	cycles := []*pipeline.CycleMetrics{
		testMetrics(20, score.ZoneDeepFlow, startedAt.Add(1*time.Second)),
		testMetrics(50, score.ZoneNormal, startedAt.Add(2*time.Second)),
		testMetrics(85, score.ZoneBrainFried, startedAt.Add(3*time.Second)),
	}
	for _, c := range cycles {
		if err := store.StoreCycle("session-1", c); err != nil {
			t.Fatalf("failed to store cycle: %v", err)
		}
	}

	records, err := store.QueryCycles(storage.CycleFilter{SessionID: "session-1"})
	if err != nil {
		t.Fatalf("failed to query cycles: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// Newest first.
	if records[0].LoadScore != 85 {
		t.Errorf("first record loadScore = %.1f, want 85", records[0].LoadScore)
	}
	if records[0].Zone != string(score.ZoneBrainFried) {
		t.Errorf("first record zone = %s, want BRAIN_FRIED", records[0].Zone)
	}

	// Zone filter.
	fried, err := store.QueryCycles(storage.CycleFilter{SessionID: "session-1", Zone: string(score.ZoneBrainFried)})
	if err != nil {
		t.Fatalf("failed to query by zone: %v", err)
	}
	if len(fried) != 1 {
		t.Errorf("expected 1 BRAIN_FRIED record, got %d", len(fried))
	}

	// Limit and offset.
	limited, err := store.QueryCycles(storage.CycleFilter{SessionID: "session-1", Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("failed to query with limit: %v", err)
	}
	if len(limited) != 1 || limited[0].LoadScore != 50 {
		t.Errorf("expected the middle record, got %+v", limited)
	}
}

func TestStore_QueryCyclesTimeRange(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	startedAt := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	if err := store.StartSession("session-1", "default", startedAt); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	for i := 0; i < 5; i++ {
		c := testMetrics(float64(i*10), score.ZoneDeepFlow, startedAt.Add(time.Duration(i)*time.Minute))
		if err := store.StoreCycle("session-1", c); err != nil {
			t.Fatalf("failed to store cycle: %v", err)
		}
	}

	from := startedAt.Add(1 * time.Minute)
	to := startedAt.Add(3 * time.Minute)
	records, err := store.QueryCycles(storage.CycleFilter{
		SessionID: "session-1",
		StartTime: &from,
		EndTime:   &to,
	})
	if err != nil {
		t.Fatalf("failed to query cycles: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 records in range, got %d", len(records))
	}
}

func TestStore_StoreAndQueryInterventions(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	startedAt := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	if err := store.StartSession("session-1", "default", startedAt); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	outcomes := []*regulate.Outcome{
		{
			Kind:           regulate.ActionRescuePlan,
			Recommendation: "- Take a break\n- Stretch\n- Resume",
			UsedFallback:   false,
			Timestamp:      startedAt.Add(10 * time.Second),
		},
		{
			Kind:      regulate.ActionZoomIn,
			Timestamp: startedAt.Add(25 * time.Second),
		},
	}
	for _, o := range outcomes {
		if err := store.StoreIntervention("session-1", o); err != nil {
			t.Fatalf("failed to store intervention: %v", err)
		}
	}

	records, err := store.QueryInterventions(storage.InterventionFilter{SessionID: "session-1"})
	if err != nil {
		t.Fatalf("failed to query interventions: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	// Newest first.
	if records[0].Kind != string(regulate.ActionZoomIn) {
		t.Errorf("first record kind = %s, want ZOOM_IN", records[0].Kind)
	}

	plans, err := store.QueryInterventions(storage.InterventionFilter{
		SessionID: "session-1",
		Kind:      string(regulate.ActionRescuePlan),
	})
	if err != nil {
		t.Fatalf("failed to query by kind: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("expected 1 RESCUE_PLAN record, got %d", len(plans))
	}
	if plans[0].Recommendation == "" {
		t.Error("expected the rescue text to be persisted")
	}
}

func TestStore_QueryEmpty(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	records, err := store.QueryCycles(storage.CycleFilter{SessionID: "missing"})
	if err != nil {
		t.Fatalf("query on empty store failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}
