package vision

import (
	"errors"
	"fmt"
	"time"
)

// Frame is a single captured camera image: a 3-channel (BGR) pixel buffer
// plus its dimensions and capture time.
type Frame struct {
	Width      int
	Height     int
	Pixels     []byte // len = Width*Height*3, row-major BGR
	CapturedAt time.Time
}

// Landmark is a normalized 3-D facial landmark. X and Y are fractions of
// frame width/height; Z grows more negative as the point moves toward the
// camera (FaceMesh depth convention).
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Face is the landmark set for a single detected face. The slice is a
// fixed-size ordered set; indexes follow the FaceMesh topology.
type Face struct {
	Landmarks []Landmark `json:"landmarks"`
}

// FaceMesh landmark indexes used by the signal extractors. Six points per
// eye in EAR order (p1..p6), plus the nose tip for posture.
var (
	LeftEyeIndexes  = [6]int{33, 160, 158, 133, 153, 144}
	RightEyeIndexes = [6]int{362, 385, 387, 263, 373, 380}
)

// NoseTipIndex is the FaceMesh nose-tip landmark.
const NoseTipIndex = 1

// MeshSize is the number of landmarks a full FaceMesh detection carries.
const MeshSize = 468

// CameraSource is an exclusively-owned frame producer. Read blocks until a
// frame is available and returns *CaptureError on device failure. Release
// is idempotent.
type CameraSource interface {
	Read() (*Frame, error)
	Release() error
}

// LandmarkModel detects at most one face per frame. A nil Face with a nil
// error means no face was present, which is a normal outcome.
type LandmarkModel interface {
	Detect(frame *Frame) (*Face, error)
}

// ErrEndOfStream is returned by finite camera sources once exhausted.
var ErrEndOfStream = errors.New("vision: end of stream")

// CaptureError reports a camera open or read failure. It is fatal for the
// cycle it occurs in and is never retried inside the pipeline.
type CaptureError struct {
	Op  string
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Op, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Point is a de-normalized 2-D pixel-space coordinate.
type Point struct {
	X float64
	Y float64
}

// PixelPoint converts a normalized landmark to pixel space for the given
// frame dimensions.
func PixelPoint(lm Landmark, width, height int) Point {
	return Point{X: lm.X * float64(width), Y: lm.Y * float64(height)}
}
