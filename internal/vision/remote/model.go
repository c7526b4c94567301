package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision"
	"golang.org/x/sync/semaphore"
)

// ModelConfig holds landmark-service client configuration.
type ModelConfig struct {
	URL            string
	Timeout        time.Duration
	MaxConcurrency int64
	RetryCount     int
	RetryDelay     time.Duration
	JPEGQuality    int
}

// DefaultModelConfig returns landmark client defaults.
func DefaultModelConfig(serviceURL string) ModelConfig {
	return ModelConfig{
		URL:            serviceURL,
		Timeout:        5 * time.Second,
		MaxConcurrency: 4,
		RetryCount:     1,
		RetryDelay:     100 * time.Millisecond,
		JPEGQuality:    80,
	}
}

// Model detects faces through a FaceMesh sidecar service: the frame is
// POSTed as JPEG, the service answers with normalized landmarks for at
// most one face.
type Model struct {
	config ModelConfig
	client *http.Client
	sem    *semaphore.Weighted
}

// NewModel creates a landmark-service client.
func NewModel(config ModelConfig) *Model {
	return &Model{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		sem:    semaphore.NewWeighted(config.MaxConcurrency),
	}
}

// detectResponse is the sidecar's response shape.
type detectResponse struct {
	Faces []vision.Face `json:"faces"`
	Error string        `json:"error,omitempty"`
}

// Detect implements the LandmarkModel interface. An empty face list is a
// normal no-face outcome, not an error.
func (m *Model) Detect(frame *vision.Frame) (*vision.Face, error) {
	body, err := encodeJPEG(frame, m.config.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
	defer cancel()

	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("semaphore acquire: %w", err)
	}
	defer m.sem.Release(1)

	var lastErr error
	for attempt := 0; attempt <= m.config.RetryCount; attempt++ {
		if attempt > 0 {
			time.Sleep(m.config.RetryDelay)
		}

		result, err := m.detectOnce(ctx, body)
		if err == nil {
			if len(result.Faces) == 0 {
				return nil, nil
			}
			face := result.Faces[0]
			if got := len(face.Landmarks); got != vision.MeshSize {
				return nil, fmt.Errorf("malformed detection: %d landmarks, want %d", got, vision.MeshSize)
			}
			return &face, nil
		}

		lastErr = err
	}

	return nil, fmt.Errorf("detect failed after %d attempts: %w", m.config.RetryCount+1, lastErr)
}

// detectOnce performs a single detection request.
func (m *Model) detectOnce(ctx context.Context, jpegBytes []byte) (*detectResponse, error) {
	url := strings.TrimSuffix(m.config.URL, "/") + "/v1/landmarks"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jpegBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed detectResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if parsed.Error != "" {
		return nil, fmt.Errorf("landmark service error: %s", parsed.Error)
	}

	return &parsed, nil
}

// encodeJPEG serializes a BGR frame as JPEG for the wire.
func encodeJPEG(frame *vision.Frame, quality int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))

	i := 0
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			offset := img.PixOffset(x, y)
			img.Pix[offset] = frame.Pixels[i+2]   // R
			img.Pix[offset+1] = frame.Pixels[i+1] // G
			img.Pix[offset+2] = frame.Pixels[i]   // B
			img.Pix[offset+3] = 0xff
			i += 3
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
