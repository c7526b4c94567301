// Package pipeline sequences the per-cycle signal flow: frame acquisition,
// feature extraction, score computation. One cycle is one synchronous call
// chain with no internal parallelism.
package pipeline

import (
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/score"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/signal"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision"
)

// CycleMetrics is the normalized per-cycle record. Ephemeral: produced once
// per cycle, consumed immediately by the regulation controller and the
// presentation layer.
type CycleMetrics struct {
	Frame         *vision.Frame `json:"-"`
	BlinkRate     float64       `json:"blinkRate"`
	HeadForward   bool          `json:"headForward"`
	BreathingRate float64       `json:"breathingRate"`
	LoadScore     float64       `json:"loadScore"`
	Zone          score.Zone    `json:"zone"`
	FaceDetected  bool          `json:"faceDetected"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Orchestrator owns the per-cycle unit of work. Callers drive cadence and
// rendering; the orchestrator imposes no rate limit of its own.
type Orchestrator struct {
	camera     vision.CameraSource
	model      vision.LandmarkModel
	blinks     *signal.BlinkTracker
	oscillator *signal.BreathingOscillator
	spec       profile.Spec
}

// NewOrchestrator wires the pipeline components. The camera handle is
// exclusively owned by the orchestrator's caller.
func NewOrchestrator(camera vision.CameraSource, model vision.LandmarkModel, p *profile.Profile, epoch time.Time) (*Orchestrator, error) {
	blinks, err := signal.NewBlinkTracker(p.Spec.Blink)
	if err != nil {
		return nil, err
	}

	oscillator, err := signal.NewBreathingOscillator(p.Spec.Breathing, epoch)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		camera:     camera,
		model:      model,
		blinks:     blinks,
		oscillator: oscillator,
		spec:       p.Spec,
	}, nil
}

// RunCycle reads one frame and produces the cycle record. A camera read
// failure is fatal for the cycle and surfaced as *vision.CaptureError; it
// is not retried here. A frame with no face is a normal outcome: the blink
// window still ages out and posture defaults to upright.
func (o *Orchestrator) RunCycle(now time.Time) (*CycleMetrics, error) {
	frame, err := o.camera.Read()
	if err != nil {
		if capErr, ok := err.(*vision.CaptureError); ok {
			return nil, capErr
		}
		return nil, &vision.CaptureError{Op: "read", Err: err}
	}

	face, err := o.model.Detect(frame)
	if err != nil {
		return nil, err
	}

	var blinkRate float64
	headForward := false
	if face != nil {
		ear := signal.AverageEAR(face, frame.Width, frame.Height)
		blinkRate = o.blinks.Observe(ear, now)
		headForward = signal.HeadForward(face, o.spec.Posture)
	} else {
		blinkRate = o.blinks.Rate(now)
	}

	breathingRate := o.oscillator.RateAt(now)
	loadScore := score.ComputeLoadScore(blinkRate, headForward, breathingRate, o.spec.Scoring)

	return &CycleMetrics{
		Frame:         frame,
		BlinkRate:     blinkRate,
		HeadForward:   headForward,
		BreathingRate: breathingRate,
		LoadScore:     loadScore,
		Zone:          score.ClassifyZone(loadScore, o.spec.Zones),
		FaceDetected:  face != nil,
		Timestamp:     now,
	}, nil
}

// Release releases the camera. Idempotent; called exactly once per
// shutdown path by the monitor.
func (o *Orchestrator) Release() error {
	return o.camera.Release()
}
