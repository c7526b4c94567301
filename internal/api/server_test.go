package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/history"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/pipeline"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/regulate"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/score"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/storage"
)

// fakeStore is an in-memory SessionStorage for handler tests.
type fakeStore struct {
	interventions []storage.InterventionRecord
}

func (f *fakeStore) StartSession(sessionID, profileID string, startedAt time.Time) error {
	return nil
}

func (f *fakeStore) StoreCycle(sessionID string, metrics *pipeline.CycleMetrics) error {
	return nil
}

func (f *fakeStore) StoreIntervention(sessionID string, outcome *regulate.Outcome) error {
	f.interventions = append(f.interventions, storage.InterventionRecord{
		SessionID:      sessionID,
		Kind:           string(outcome.Kind),
		Recommendation: outcome.Recommendation,
		UsedFallback:   outcome.UsedFallback,
		Timestamp:      outcome.Timestamp,
	})
	return nil
}

func (f *fakeStore) QueryCycles(filter storage.CycleFilter) ([]storage.CycleRecord, error) {
	return nil, nil
}

func (f *fakeStore) QueryInterventions(filter storage.InterventionFilter) ([]storage.InterventionRecord, error) {
	var out []storage.InterventionRecord
	for _, r := range f.interventions {
		if filter.Kind != "" && r.Kind != filter.Kind {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) Close() error { return nil }

func setupTestServer(t *testing.T, store storage.SessionStorage) (*Server, *history.Session) {
	t.Helper()

	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	session := history.NewSession(start, 0)

	server := NewServer(session, store, profile.Default(), nil, ":0")
	return server, session
}

func recordSample(session *history.Session, load float64, zone score.Zone, at time.Time) {
	session.Record(history.Sample{
		Timestamp:     at,
		BlinkRate:     14,
		BreathingRate: 17.5,
		LoadScore:     load,
		Zone:          zone,
	})
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	server.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("expected status=ok, got %s", resp.Status)
	}
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		recordCycle    bool
		expectedStatus int
		expectedReady  bool
	}{
		{
			name:           "ready after first cycle",
			recordCycle:    true,
			expectedStatus: http.StatusOK,
			expectedReady:  true,
		},
		{
			name:           "not ready before first cycle",
			recordCycle:    false,
			expectedStatus: http.StatusServiceUnavailable,
			expectedReady:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, session := setupTestServer(t, nil)

			if tt.recordCycle {
				recordSample(session, 20, score.ZoneDeepFlow, time.Now())
			}

			req := httptest.NewRequest("GET", "/readyz", nil)
			w := httptest.NewRecorder()

			server.handleReady(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var resp ReadyResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Ready != tt.expectedReady {
				t.Errorf("expected ready=%v, got %v", tt.expectedReady, resp.Ready)
			}
		})
	}
}

func TestCurrentEndpoint(t *testing.T) {
	server, session := setupTestServer(t, nil)

	// No cycles yet.
	req := httptest.NewRequest("GET", "/v1/metrics/current", nil)
	w := httptest.NewRecorder()
	server.handleCurrent(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 before the first cycle, got %d", w.Code)
	}

	recordSample(session, 42, score.ZoneNormal, time.Now())

	w = httptest.NewRecorder()
	server.handleCurrent(w, httptest.NewRequest("GET", "/v1/metrics/current", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp CurrentResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Sample.LoadScore != 42 {
		t.Errorf("loadScore = %.1f, want 42", resp.Sample.LoadScore)
	}
	if resp.Stats.Cycles != 1 {
		t.Errorf("cycles = %d, want 1", resp.Stats.Cycles)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	server, session := setupTestServer(t, nil)

	now := time.Now()
	for i := 0; i < 20; i++ {
		recordSample(session, float64(i), score.ZoneDeepFlow, now.Add(time.Duration(i-20)*time.Minute))
	}

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{"no window returns everything", "", http.StatusOK, 20},
		{"windowed", "?window=10m", http.StatusOK, 9},
		{"invalid window", "?window=tomorrow", http.StatusBadRequest, 0},
		{"negative window", "?window=-5m", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/metrics/history"+tt.query, nil)
			w := httptest.NewRecorder()

			server.handleHistory(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp HistoryResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Samples) != tt.expectedCount {
				t.Errorf("expected %d samples, got %d", tt.expectedCount, len(resp.Samples))
			}
		})
	}
}

func TestSessionEndpoint(t *testing.T) {
	server, session := setupTestServer(t, nil)

	now := time.Now()
	recordSample(session, 80, score.ZoneBrainFried, now)
	session.AddEvent("alert", "Cognitive load exceeded 70 (80)", now)

	req := httptest.NewRequest("GET", "/v1/session", nil)
	w := httptest.NewRecorder()

	server.handleSession(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp SessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Stats.PeakLoad != 80 {
		t.Errorf("peakLoad = %.1f, want 80", resp.Stats.PeakLoad)
	}
	if len(resp.Events) != 1 {
		t.Errorf("expected 1 event, got %d", len(resp.Events))
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	server, session := setupTestServer(t, nil)

	now := time.Now()
	session.AddRecommendation("- Take a break", now)
	session.AddRecommendation("- Stretch and refocus", now.Add(time.Minute))

	req := httptest.NewRequest("GET", "/v1/recommendations", nil)
	w := httptest.NewRecorder()

	server.handleRecommendations(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp RecommendationsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(resp.Recommendations))
	}
	if resp.Latest != "- Stretch and refocus" {
		t.Errorf("latest = %q, want the most recent plan", resp.Latest)
	}
}

func TestInterventionsEndpoint(t *testing.T) {
	store := &fakeStore{}
	server, _ := setupTestServer(t, store)

	now := time.Now()
	store.StoreIntervention("s1", &regulate.Outcome{
		Kind:           regulate.ActionRescuePlan,
		Recommendation: "- plan",
		Timestamp:      now,
	})
	store.StoreIntervention("s1", &regulate.Outcome{
		Kind:      regulate.ActionZoomIn,
		Timestamp: now.Add(time.Minute),
	})

	req := httptest.NewRequest("GET", "/v1/interventions?kind=RESCUE_PLAN", nil)
	w := httptest.NewRecorder()

	server.handleInterventions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp InterventionsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("expected 1 record, got %d", resp.Total)
	}
	if resp.Records[0].Kind != "RESCUE_PLAN" {
		t.Errorf("kind = %s, want RESCUE_PLAN", resp.Records[0].Kind)
	}
}

func TestInterventionsEndpoint_NoStorage(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/v1/interventions", nil)
	w := httptest.NewRecorder()

	server.handleInterventions(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without storage, got %d", w.Code)
	}
}

func TestProfileEndpoint(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/v1/profile", nil)
	w := httptest.NewRecorder()

	server.handleProfile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp profile.Profile
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Metadata.ID != "default" {
		t.Errorf("profile id = %s, want default", resp.Metadata.ID)
	}
	if resp.Spec.Regulation.HighLoadThreshold != 70 {
		t.Errorf("highLoadThreshold = %.1f, want 70", resp.Spec.Regulation.HighLoadThreshold)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("POST", "/v1/metrics/current", nil)
	w := httptest.NewRecorder()

	server.handleCurrent(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
