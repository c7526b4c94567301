package signal

import (
	"math"
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision"
)

// EyeState is the hysteresis state of the blink detector.
type EyeState int

const (
	EyesOpen EyeState = iota
	EyesClosed
)

func (s EyeState) String() string {
	if s == EyesClosed {
		return "CLOSED"
	}
	return "OPEN"
}

// BlinkTracker turns a per-frame eye-aspect-ratio stream into a rolling
// blink rate. Two thresholds with hysteresis suppress flicker around a
// single boundary; a debounce interval stops one physical blink from being
// counted twice. The timestamp queue is monotonic and pruned eagerly, so
// its length is the rate for the trailing window (blinks/min with the
// 60 s reference window).
type BlinkTracker struct {
	closedThreshold float64
	openThreshold   float64
	debounce        time.Duration
	window          time.Duration

	state       EyeState
	lastBlinkAt time.Time
	blinkTimes  []time.Time
}

// NewBlinkTracker builds a tracker from a profile's blink section.
func NewBlinkTracker(spec profile.BlinkSpec) (*BlinkTracker, error) {
	window, err := profile.ParseDuration(spec.Window)
	if err != nil {
		return nil, err
	}

	return &BlinkTracker{
		closedThreshold: spec.ClosedThreshold,
		openThreshold:   spec.OpenThreshold,
		debounce:        time.Duration(spec.DebounceSeconds * float64(time.Second)),
		window:          window,
		state:           EyesOpen,
	}, nil
}

// Observe feeds one frame's averaged EAR into the state machine and
// returns the rolling blink rate as of now.
//
// Transitions:
//   - OPEN -> CLOSED when ear < closedThreshold.
//   - CLOSED -> OPEN when ear > openThreshold AND the debounce interval has
//     elapsed since the last counted blink; this counts one blink.
//   - otherwise no transition. A blink can be debounced away but the state
//     still waits in CLOSED until the open threshold is exceeded.
func (t *BlinkTracker) Observe(ear float64, now time.Time) float64 {
	switch t.state {
	case EyesOpen:
		if ear < t.closedThreshold {
			t.state = EyesClosed
		}
	case EyesClosed:
		if ear > t.openThreshold {
			if t.lastBlinkAt.IsZero() || now.Sub(t.lastBlinkAt) >= t.debounce {
				t.blinkTimes = append(t.blinkTimes, now)
				t.lastBlinkAt = now
			}
			t.state = EyesOpen
		}
	}

	return t.Rate(now)
}

// Rate prunes entries older than the rolling window and returns the count
// of those remaining. Called on every cycle, including no-face frames.
func (t *BlinkTracker) Rate(now time.Time) float64 {
	cutoff := now.Add(-t.window)

	keep := 0
	for keep < len(t.blinkTimes) && t.blinkTimes[keep].Before(cutoff) {
		keep++
	}
	if keep > 0 {
		t.blinkTimes = append(t.blinkTimes[:0], t.blinkTimes[keep:]...)
	}

	return float64(len(t.blinkTimes))
}

// State exposes the current hysteresis state.
func (t *BlinkTracker) State() EyeState { return t.state }

// AverageEAR computes the mean eye-aspect-ratio of both eyes from a full
// landmark set, de-normalizing coordinates by the frame dimensions first.
// A nil or truncated landmark set yields 0.
func AverageEAR(face *vision.Face, width, height int) float64 {
	if face == nil || len(face.Landmarks) < vision.MeshSize {
		return 0
	}
	left := eyePoints(face, vision.LeftEyeIndexes, width, height)
	right := eyePoints(face, vision.RightEyeIndexes, width, height)
	return (eyeAspectRatio(left) + eyeAspectRatio(right)) / 2.0
}

func eyePoints(face *vision.Face, idx [6]int, width, height int) [6]vision.Point {
	var pts [6]vision.Point
	for i, li := range idx {
		pts[i] = vision.PixelPoint(face.Landmarks[li], width, height)
	}
	return pts
}

// eyeAspectRatio computes EAR = (|p2-p6| + |p3-p5|) / (2*|p1-p4|) from six
// eye points in p1..p6 order. Low values mean the eye is closed.
func eyeAspectRatio(p [6]vision.Point) float64 {
	horizontal := dist(p[0], p[3])
	if horizontal == 0 {
		return 0
	}
	vertical := dist(p[1], p[5]) + dist(p[2], p[4])
	return vertical / (2.0 * horizontal)
}

func dist(a, b vision.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
