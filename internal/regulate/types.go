package regulate

import "time"

// ActionKind identifies an executed intervention.
type ActionKind string

const (
	ActionRescuePlan ActionKind = "RESCUE_PLAN"
	ActionZoomIn     ActionKind = "ZOOM_IN"
)

// Outcome records one executed intervention for history and storage.
type Outcome struct {
	Kind           ActionKind
	Recommendation string // rescue text; empty for hotkey actions
	UsedFallback   bool
	Timestamp      time.Time
}

// Executor is the capability surface for the controller's side effects.
// Isolating it keeps the branching logic testable without real I/O.
type Executor interface {
	// CaptureScreenText grabs the full screen and returns recognized text.
	// May be slow; may fail.
	CaptureScreenText() (string, error)

	// ShowAlert raises a user-facing notification carrying the rescue text.
	ShowAlert(message string) error

	// SendHotkey injects a keyboard shortcut.
	SendHotkey(keys ...string) error
}

// FallbackRescuePlan is shown when screen capture or summarization fails.
// The alert still fires and the cooldown still re-arms.
const FallbackRescuePlan = "- Take a 2 minute break\n- Write down your next small step\n- Resume with focus"
