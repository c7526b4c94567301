package signal

import (
	"math"
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
)

// BreathingOscillator produces a deterministic synthetic breathing rate:
// bpm = baseline + amplitude*sin(2π·elapsed/period), clamped to
// [min, max]. It stands in for a future sensor-derived estimator and keeps
// the exact waveform parameters so the signal stays testable.
type BreathingOscillator struct {
	baseline  float64
	amplitude float64
	period    time.Duration
	min       float64
	max       float64
	epoch     time.Time
}

// NewBreathingOscillator builds an oscillator anchored at epoch.
func NewBreathingOscillator(spec profile.BreathingSpec, epoch time.Time) (*BreathingOscillator, error) {
	period, err := profile.ParseDuration(spec.Period)
	if err != nil {
		return nil, err
	}

	return &BreathingOscillator{
		baseline:  spec.BaselineBPM,
		amplitude: spec.AmplitudeBPM,
		period:    period,
		min:       spec.MinBPM,
		max:       spec.MaxBPM,
		epoch:     epoch,
	}, nil
}

// RateAt returns the breathing rate in BPM at the given instant.
func (o *BreathingOscillator) RateAt(now time.Time) float64 {
	elapsed := now.Sub(o.epoch).Seconds()
	phase := 2 * math.Pi * elapsed / o.period.Seconds()
	bpm := o.baseline + o.amplitude*math.Sin(phase)

	if bpm < o.min {
		return o.min
	}
	if bpm > o.max {
		return o.max
	}
	return bpm
}
