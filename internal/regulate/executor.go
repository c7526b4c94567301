package regulate

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExecConfig names the OS commands the system executor shells out to.
type ExecConfig struct {
	ScreenshotCmd string // writes a PNG to the path given as last arg
	OCRCmd        string // prints recognized text for an image path
	NotifyCmd     string // shows a desktop notification
	HotkeyCmd     string // injects a key chord
}

// DefaultExecConfig targets common Linux desktop tooling.
func DefaultExecConfig() ExecConfig {
	return ExecConfig{
		ScreenshotCmd: "scrot",
		OCRCmd:        "tesseract",
		NotifyCmd:     "notify-send",
		HotkeyCmd:     "xdotool",
	}
}

// ExecExecutor performs interventions through OS commands. All calls block
// inline on the regulation path, matching the synchronous pipeline model.
type ExecExecutor struct {
	config ExecConfig
}

// NewExecExecutor creates a command-backed executor.
func NewExecExecutor(config ExecConfig) *ExecExecutor {
	return &ExecExecutor{config: config}
}

// CaptureScreenText screenshots the full screen and runs OCR over it,
// normalizing all whitespace into single spaces.
func (e *ExecExecutor) CaptureScreenText() (string, error) {
	dir, err := os.MkdirTemp("", "aura-capture-")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	shot := filepath.Join(dir, "screen.png")
	if out, err := exec.Command(e.config.ScreenshotCmd, "--overwrite", shot).CombinedOutput(); err != nil {
		return "", fmt.Errorf("screenshot: %v (%s)", err, strings.TrimSpace(string(out)))
	}

	// tesseract <image> stdout
	out, err := exec.Command(e.config.OCRCmd, shot, "stdout").Output()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}

	return strings.Join(strings.Fields(string(out)), " "), nil
}

// ShowAlert raises a desktop notification with the rescue text.
func (e *ExecExecutor) ShowAlert(message string) error {
	if out, err := exec.Command(e.config.NotifyCmd, "--urgency=critical", "AURA", message).CombinedOutput(); err != nil {
		return fmt.Errorf("notify: %v (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// SendHotkey injects a key chord, joining keys xdotool-style.
func (e *ExecExecutor) SendHotkey(keys ...string) error {
	chord := strings.Join(keys, "+")
	if out, err := exec.Command(e.config.HotkeyCmd, "key", chord).CombinedOutput(); err != nil {
		return fmt.Errorf("hotkey %s: %v (%s)", chord, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// LogExecutor logs interventions instead of performing them. Used for
// synthetic and headless runs.
type LogExecutor struct{}

func (LogExecutor) CaptureScreenText() (string, error) {
	return "", fmt.Errorf("screen capture unavailable in headless mode")
}

func (LogExecutor) ShowAlert(message string) error {
	log.Printf("[alert] %s", strings.ReplaceAll(message, "\n", " | "))
	return nil
}

func (LogExecutor) SendHotkey(keys ...string) error {
	log.Printf("[hotkey] %s", strings.Join(keys, "+"))
	return nil
}
