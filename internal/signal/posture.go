package signal

import (
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision"
)

// HeadForward classifies forward lean from the nose-tip depth coordinate.
// More negative z means closer to the camera. A nil face yields false.
func HeadForward(face *vision.Face, spec profile.PostureSpec) bool {
	if face == nil || len(face.Landmarks) <= vision.NoseTipIndex {
		return false
	}
	return face.Landmarks[vision.NoseTipIndex].Z < spec.NoseForwardZ
}
