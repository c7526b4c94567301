package signal

import (
	"testing"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision"
)

func faceWithNoseZ(z float64) *vision.Face {
	landmarks := make([]vision.Landmark, vision.MeshSize)
	landmarks[vision.NoseTipIndex] = vision.Landmark{X: 0.5, Y: 0.55, Z: z}
	return &vision.Face{Landmarks: landmarks}
}

func TestHeadForward(t *testing.T) {
	spec := profile.Default().Spec.Posture

	tests := []struct {
		name string
		face *vision.Face
		want bool
	}{
		{"upright", faceWithNoseZ(-0.02), false},
		{"at threshold", faceWithNoseZ(-0.08), false},
		{"leaning forward", faceWithNoseZ(-0.12), true},
		{"no face defaults upright", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeadForward(tt.face, spec)
			if got != tt.want {
				t.Errorf("HeadForward = %v, want %v", got, tt.want)
			}
		})
	}
}
