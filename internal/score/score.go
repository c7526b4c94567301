// Package score computes the rule-based cognitive-load score. No machine
// learning: the score is a sum of three heuristic components normalized
// into [0,100].
package score

import "github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"

// Zone is a load band used for classification and session time accounting.
type Zone string

const (
	ZoneDeepFlow   Zone = "DEEP_FLOW"
	ZoneNormal     Zone = "NORMAL"
	ZoneBrainFried Zone = "BRAIN_FRIED"
)

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// BlinkComponent maps blink rate to a load component: zero at or below the
// ramp low, maximum at or above the ramp high, linear in between.
func BlinkComponent(blinkRate float64, spec profile.ScoringSpec) float64 {
	normalized := (blinkRate - spec.BlinkRampLow) / (spec.BlinkRampHigh - spec.BlinkRampLow)
	return clamp(normalized, 0, 1) * spec.BlinkMax
}

// PostureComponent adds a fixed penalty when the head leans forward.
func PostureComponent(headForward bool, spec profile.ScoringSpec) float64 {
	if headForward {
		return spec.PostureWeight
	}
	return 0
}

// BreathingComponent penalizes deviation from the normal band. Inside the
// band the component is zero; outside it grows linearly with the distance
// from the nearest boundary and saturates once the distance reaches the
// configured saturation point.
func BreathingComponent(breathingRate float64, spec profile.ScoringSpec) float64 {
	var deviation float64
	switch {
	case breathingRate < spec.BreathingBandLow:
		deviation = spec.BreathingBandLow - breathingRate
	case breathingRate > spec.BreathingBandHigh:
		deviation = breathingRate - spec.BreathingBandHigh
	default:
		return 0
	}

	return clamp(deviation/spec.BreathingSaturate, 0, 1) * spec.BreathingMax
}

// ComputeLoadScore combines the three signals into a [0,100] score. Inputs
// outside their expected ranges are absorbed by the component clamps; the
// function never fails.
func ComputeLoadScore(blinkRate float64, headForward bool, breathingRate float64, spec profile.ScoringSpec) float64 {
	total := BlinkComponent(blinkRate, spec) +
		PostureComponent(headForward, spec) +
		BreathingComponent(breathingRate, spec)
	return clamp(total, 0, 100)
}

// ClassifyZone maps a load score to its band: below deepFlowBelow is deep
// flow, at or above brainFriedAt is brain fried, normal in between.
func ClassifyZone(loadScore float64, spec profile.ZoneSpec) Zone {
	if loadScore >= spec.BrainFriedAt {
		return ZoneBrainFried
	}
	if loadScore >= spec.DeepFlowBelow {
		return ZoneNormal
	}
	return ZoneDeepFlow
}
