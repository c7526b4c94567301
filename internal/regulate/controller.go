// Package regulate applies threshold-gated interventions from per-cycle
// load and posture signals.
package regulate

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
)

// Summarizer produces a short rescue plan from captured screen text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Controller is the regulation state machine. One cooldown timestamp gates
// every action kind: no two executed interventions are ever closer than
// the cooldown interval, regardless of kind.
type Controller struct {
	cooldown  time.Duration
	highLoad  float64
	executor  Executor
	summarize Summarizer

	mu                 sync.Mutex
	lastActionAt       time.Time // zero until the first executed action
	lastRecommendation string
}

// NewController builds a controller from a profile's regulation section.
func NewController(spec profile.RegulationSpec, executor Executor, summarizer Summarizer) (*Controller, error) {
	cooldown, err := profile.ParseDuration(spec.Cooldown)
	if err != nil {
		return nil, fmt.Errorf("invalid cooldown: %w", err)
	}

	return &Controller{
		cooldown:  cooldown,
		highLoad:  spec.HighLoadThreshold,
		executor:  executor,
		summarize: summarizer,
	}, nil
}

// Apply runs one regulation step. Exactly one branch fires per call, first
// match wins:
//  1. still cooling down -> no-op
//  2. load above the high-load threshold -> capture screen context,
//     summarize it into a rescue plan (fixed fallback on any failure),
//     store the recommendation, raise the alert, re-arm the cooldown
//  3. head leaning forward -> zoom-in hotkey, re-arm the cooldown
//  4. otherwise no-op
//
// A failed summarization still re-arms the cooldown: the alert fires with
// the fallback text, so the intervention itself happened.
func (c *Controller) Apply(ctx context.Context, loadScore float64, headForward bool, now time.Time) *Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastActionAt.IsZero() && now.Sub(c.lastActionAt) < c.cooldown {
		return nil
	}

	if loadScore > c.highLoad {
		rescue, usedFallback := c.buildRescuePlan(ctx)
		c.lastRecommendation = rescue

		message := fmt.Sprintf("High cognitive load detected.\n\nHere is a quick rescue plan:\n\n%s", rescue)
		if err := c.executor.ShowAlert(message); err != nil {
			log.Printf("Warning: alert failed: %v", err)
		}

		c.lastActionAt = now
		return &Outcome{
			Kind:           ActionRescuePlan,
			Recommendation: rescue,
			UsedFallback:   usedFallback,
			Timestamp:      now,
		}
	}

	if headForward {
		if err := c.executor.SendHotkey("ctrl", "+"); err != nil {
			log.Printf("Warning: hotkey failed: %v", err)
		}

		c.lastActionAt = now
		return &Outcome{Kind: ActionZoomIn, Timestamp: now}
	}

	return nil
}

// buildRescuePlan captures screen context and summarizes it. Any failure
// along the way degrades to the fixed fallback plan.
func (c *Controller) buildRescuePlan(ctx context.Context) (plan string, usedFallback bool) {
	text, err := c.executor.CaptureScreenText()
	if err != nil {
		log.Printf("Warning: screen capture failed, using fallback plan: %v", err)
		return FallbackRescuePlan, true
	}

	rescue, err := c.summarize.Summarize(ctx, text)
	if err != nil {
		log.Printf("Warning: summarization failed, using fallback plan: %v", err)
		return FallbackRescuePlan, true
	}

	return rescue, false
}

// LastRecommendation returns the most recent rescue plan, or "" when none
// has been generated yet. Callers detect new recommendations by value
// inequality with their own last-seen copy.
func (c *Controller) LastRecommendation() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRecommendation
}
