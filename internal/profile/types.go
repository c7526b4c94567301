package profile

// Profile is a parsed monitor profile definition. A profile declares the
// tunable constants of the signal pipeline; the built-in default carries
// the reference values.
type Profile struct {
	APIVersion string   `yaml:"apiVersion" json:"apiVersion"`
	Kind       string   `yaml:"kind" json:"kind"`
	Metadata   Metadata `yaml:"metadata" json:"metadata"`
	Spec       Spec     `yaml:"spec" json:"spec"`
}

// Metadata identifies a profile.
type Metadata struct {
	ID          string `yaml:"id" json:"id"`
	Owner       string `yaml:"owner,omitempty" json:"owner,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Spec holds the pipeline tuning sections.
type Spec struct {
	Blink      BlinkSpec      `yaml:"blink" json:"blink"`
	Posture    PostureSpec    `yaml:"posture" json:"posture"`
	Breathing  BreathingSpec  `yaml:"breathing" json:"breathing"`
	Scoring    ScoringSpec    `yaml:"scoring" json:"scoring"`
	Regulation RegulationSpec `yaml:"regulation" json:"regulation"`
	Zones      ZoneSpec       `yaml:"zones" json:"zones"`
}

// BlinkSpec tunes the eye-blink detector.
type BlinkSpec struct {
	ClosedThreshold float64 `yaml:"closedThreshold" json:"closedThreshold"`
	OpenThreshold   float64 `yaml:"openThreshold" json:"openThreshold"`
	DebounceSeconds float64 `yaml:"debounceSeconds" json:"debounceSeconds"`
	Window          string  `yaml:"window" json:"window"`
}

// PostureSpec tunes the forward-lean classifier.
type PostureSpec struct {
	NoseForwardZ float64 `yaml:"noseForwardZ" json:"noseForwardZ"`
}

// BreathingSpec tunes the simulated breathing oscillator.
type BreathingSpec struct {
	BaselineBPM  float64 `yaml:"baselineBpm" json:"baselineBpm"`
	AmplitudeBPM float64 `yaml:"amplitudeBpm" json:"amplitudeBpm"`
	Period       string  `yaml:"period" json:"period"`
	MinBPM       float64 `yaml:"minBpm" json:"minBpm"`
	MaxBPM       float64 `yaml:"maxBpm" json:"maxBpm"`
}

// ScoringSpec tunes the load-score components.
type ScoringSpec struct {
	BlinkRampLow      float64 `yaml:"blinkRampLow" json:"blinkRampLow"`
	BlinkRampHigh     float64 `yaml:"blinkRampHigh" json:"blinkRampHigh"`
	BlinkMax          float64 `yaml:"blinkMax" json:"blinkMax"`
	PostureWeight     float64 `yaml:"postureWeight" json:"postureWeight"`
	BreathingBandLow  float64 `yaml:"breathingBandLow" json:"breathingBandLow"`
	BreathingBandHigh float64 `yaml:"breathingBandHigh" json:"breathingBandHigh"`
	BreathingSaturate float64 `yaml:"breathingSaturate" json:"breathingSaturate"`
	BreathingMax      float64 `yaml:"breathingMax" json:"breathingMax"`
}

// RegulationSpec tunes the intervention controller.
type RegulationSpec struct {
	Cooldown          string  `yaml:"cooldown" json:"cooldown"`
	HighLoadThreshold float64 `yaml:"highLoadThreshold" json:"highLoadThreshold"`
}

// ZoneSpec defines the load bands used for classification and time
// accounting.
type ZoneSpec struct {
	DeepFlowBelow float64 `yaml:"deepFlowBelow" json:"deepFlowBelow"`
	BrainFriedAt  float64 `yaml:"brainFriedAt" json:"brainFriedAt"`
}

// ProfileWithFile pairs a profile with its source file path.
type ProfileWithFile struct {
	Profile *Profile
	File    string
}

// ValidationError reports a problem with a specific profile file.
type ValidationError struct {
	File    string
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return e.File + ": " + e.Path + ": " + e.Message
	}
	return e.File + ": " + e.Message
}

// Default returns the built-in reference profile. The server runs with it
// whenever no profile directory is configured.
func Default() *Profile {
	return &Profile{
		APIVersion: "aura/v1",
		Kind:       "MonitorProfile",
		Metadata: Metadata{
			ID:          "default",
			Description: "reference tuning",
		},
		Spec: Spec{
			Blink: BlinkSpec{
				ClosedThreshold: 0.22,
				OpenThreshold:   0.25,
				DebounceSeconds: 0.15,
				Window:          "60s",
			},
			Posture: PostureSpec{NoseForwardZ: -0.08},
			Breathing: BreathingSpec{
				BaselineBPM:  17.5,
				AmplitudeBPM: 7.5,
				Period:       "45s",
				MinBPM:       10,
				MaxBPM:       25,
			},
			Scoring: ScoringSpec{
				BlinkRampLow:      10,
				BlinkRampHigh:     40,
				BlinkMax:          50,
				PostureWeight:     20,
				BreathingBandLow:  12,
				BreathingBandHigh: 20,
				BreathingSaturate: 8,
				BreathingMax:      30,
			},
			Regulation: RegulationSpec{
				Cooldown:          "10s",
				HighLoadThreshold: 70,
			},
			Zones: ZoneSpec{
				DeepFlowBelow: 35,
				BrainFriedAt:  70,
			},
		},
	}
}
