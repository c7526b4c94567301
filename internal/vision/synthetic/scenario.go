// Package synthetic provides fixture-driven camera and landmark-model
// implementations for tests and camera-less runs. A scenario script
// controls, per frame, whether a face is present, the eye-aspect-ratio the
// landmarks should produce, and the nose-tip depth.
package synthetic

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision"
)

// Step describes one scripted frame.
type Step struct {
	Face     bool    `json:"face"`
	EAR      float64 `json:"ear,omitempty"`
	NoseZ    float64 `json:"noseZ,omitempty"`
	FailRead bool    `json:"failRead,omitempty"`
}

// ScenarioFixture is the on-disk scenario format.
type ScenarioFixture struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Loop   bool   `json:"loop"`
	Steps  []Step `json:"steps"`
}

// Scenario replays a scripted frame sequence. The camera and model views
// share a cursor: the pipeline reads a frame, then detects on that same
// frame, so the step advanced by Read is the one Detect answers for.
type Scenario struct {
	fixture  ScenarioFixture
	cursor   int
	current  Step
	released bool
	pixels   []byte // shared zeroed buffer, reused across frames
}

// NewScenario builds a scenario from an in-memory fixture.
func NewScenario(fixture ScenarioFixture) (*Scenario, error) {
	if fixture.Width <= 0 || fixture.Height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", fixture.Width, fixture.Height)
	}
	if len(fixture.Steps) == 0 {
		return nil, errors.New("scenario has no steps")
	}

	return &Scenario{
		fixture: fixture,
		pixels:  make([]byte, fixture.Width*fixture.Height*3),
	}, nil
}

// LoadScenario reads a scenario fixture from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	var fixture ScenarioFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	return NewScenario(fixture)
}

// Camera returns the scenario's camera view.
func (s *Scenario) Camera() vision.CameraSource { return (*camera)(s) }

// Model returns the scenario's landmark-model view.
func (s *Scenario) Model() vision.LandmarkModel { return (*model)(s) }

type camera Scenario

// Read advances the script and returns the next frame.
func (c *camera) Read() (*vision.Frame, error) {
	s := (*Scenario)(c)
	if s.released {
		return nil, &vision.CaptureError{Op: "read", Err: errors.New("camera released")}
	}

	if s.cursor >= len(s.fixture.Steps) {
		if !s.fixture.Loop {
			return nil, &vision.CaptureError{Op: "read", Err: vision.ErrEndOfStream}
		}
		s.cursor = 0
	}

	s.current = s.fixture.Steps[s.cursor]
	s.cursor++

	if s.current.FailRead {
		return nil, &vision.CaptureError{Op: "read", Err: errors.New("scripted read failure")}
	}

	return &vision.Frame{
		Width:      s.fixture.Width,
		Height:     s.fixture.Height,
		Pixels:     s.pixels,
		CapturedAt: time.Now(),
	}, nil
}

// Release marks the scenario camera closed. Idempotent.
func (c *camera) Release() error {
	(*Scenario)(c).released = true
	return nil
}

type model Scenario

// Detect answers for the step the camera last produced.
func (m *model) Detect(frame *vision.Frame) (*vision.Face, error) {
	s := (*Scenario)(m)
	if !s.current.Face {
		return nil, nil
	}
	return BuildFace(s.current.EAR, s.current.NoseZ, frame.Width, frame.Height), nil
}

// BuildFace constructs a full landmark set whose eye geometry produces the
// requested averaged EAR after de-normalization, with the nose tip at the
// given depth. Eye width is fixed at a tenth of the frame; the vertical
// point spread is solved from EAR = (|p2-p6|+|p3-p5|)/(2|p1-p4|).
func BuildFace(ear, noseZ float64, width, height int) *vision.Face {
	landmarks := make([]vision.Landmark, vision.MeshSize)

	const eyeWidth = 0.1 // normalized horizontal |p1-p4|
	// Pixel-space: horizontal = eyeWidth*W, each vertical pair = spread*H.
	// EAR = 2*(spread*H) / (2*eyeWidth*W) => spread = ear*eyeWidth*W/H.
	spread := ear * eyeWidth * float64(width) / float64(height)

	placeEye(landmarks, vision.LeftEyeIndexes, 0.3, 0.4, eyeWidth, spread)
	placeEye(landmarks, vision.RightEyeIndexes, 0.6, 0.4, eyeWidth, spread)

	landmarks[vision.NoseTipIndex] = vision.Landmark{X: 0.5, Y: 0.55, Z: noseZ}

	return &vision.Face{Landmarks: landmarks}
}

// placeEye writes six eye points in p1..p6 order: corners on the midline,
// the upper pair (p2,p3) above it and the lower pair (p6,p5) below it.
func placeEye(landmarks []vision.Landmark, idx [6]int, x, y, width, spread float64) {
	half := spread / 2

	landmarks[idx[0]] = vision.Landmark{X: x, Y: y}                          // p1
	landmarks[idx[1]] = vision.Landmark{X: x + width/3, Y: y - half}         // p2
	landmarks[idx[2]] = vision.Landmark{X: x + 2*width/3, Y: y - half}       // p3
	landmarks[idx[3]] = vision.Landmark{X: x + width, Y: y}                  // p4
	landmarks[idx[4]] = vision.Landmark{X: x + 2*width/3, Y: y + half}       // p5
	landmarks[idx[5]] = vision.Landmark{X: x + width/3, Y: y + half}         // p6
}
