// Package remote provides network-backed camera and landmark-model
// adapters for live operation: an MJPEG-over-HTTP camera client (e.g. a
// mjpg-streamer sidecar in front of the webcam) and an HTTP client for a
// FaceMesh landmark sidecar service.
package remote

import (
	"fmt"
	"image"
	"image/jpeg"
	"mime"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision"
)

// CameraConfig holds MJPEG camera client settings.
type CameraConfig struct {
	URL            string
	ConnectTimeout time.Duration
}

// DefaultCameraConfig returns camera client defaults.
func DefaultCameraConfig(url string) CameraConfig {
	return CameraConfig{
		URL:            url,
		ConnectTimeout: 10 * time.Second,
	}
}

// Camera reads frames from an MJPEG multipart stream. The stream is a
// single exclusively-owned resource: opened lazily on the first Read,
// released exactly once.
type Camera struct {
	config CameraConfig

	mu       sync.Mutex
	resp     *http.Response
	reader   *multipart.Reader
	released bool
}

// NewCamera creates an MJPEG camera client.
func NewCamera(config CameraConfig) *Camera {
	return &Camera{config: config}
}

// Read returns the next decoded frame from the stream.
func (c *Camera) Read() (*vision.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil, &vision.CaptureError{Op: "read", Err: fmt.Errorf("camera released")}
	}

	if c.reader == nil {
		if err := c.connect(); err != nil {
			return nil, &vision.CaptureError{Op: "open", Err: err}
		}
	}

	part, err := c.reader.NextPart()
	if err != nil {
		c.teardown()
		return nil, &vision.CaptureError{Op: "read", Err: err}
	}
	defer part.Close()

	img, err := jpeg.Decode(part)
	if err != nil {
		return nil, &vision.CaptureError{Op: "decode", Err: err}
	}

	return frameFromImage(img, time.Now()), nil
}

// connect opens the MJPEG stream and positions the multipart reader.
// Caller holds the mutex.
func (c *Camera) connect() error {
	client := &http.Client{Timeout: 0} // streaming response, no overall deadline

	req, err := http.NewRequest(http.MethodGet, c.config.URL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/x-mixed-replace" {
		resp.Body.Close()
		return fmt.Errorf("not an MJPEG stream (content-type %q)", resp.Header.Get("Content-Type"))
	}

	boundary, ok := params["boundary"]
	if !ok {
		resp.Body.Close()
		return fmt.Errorf("MJPEG stream missing boundary")
	}

	c.resp = resp
	c.reader = multipart.NewReader(resp.Body, boundary)
	return nil
}

func (c *Camera) teardown() {
	if c.resp != nil {
		c.resp.Body.Close()
		c.resp = nil
	}
	c.reader = nil
}

// Release closes the stream. Idempotent.
func (c *Camera) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil
	}
	c.released = true
	c.teardown()
	return nil
}

// frameFromImage converts a decoded image to the pipeline's BGR frame
// layout.
func frameFromImage(img image.Image, at time.Time) *vision.Frame {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	pixels := make([]byte, width*height*3)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels[i] = byte(b >> 8)
			pixels[i+1] = byte(g >> 8)
			pixels[i+2] = byte(r >> 8)
			i += 3
		}
	}

	return &vision.Frame{
		Width:      width,
		Height:     height,
		Pixels:     pixels,
		CapturedAt: at,
	}
}
