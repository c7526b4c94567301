package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server configuration
type Config struct {
	// Server settings
	Port int
	Host string

	// Profile settings
	ProfileDirectory string
	ProfileID        string

	// Vision adapter settings
	CameraType  string // "mjpeg" or "synthetic"
	CameraURL   string
	ModelType   string // "remote" or "synthetic"
	ModelURL    string
	ScenarioFile string

	// Pipeline settings
	CycleInterval time.Duration

	// Regulation settings
	Headless bool // log interventions instead of performing them

	// Assistant settings (API key comes from the environment)
	AssistantAPIKey  string
	AssistantBaseURL string
	AssistantModel   string

	// Storage settings
	DatabasePath string // empty disables persistence

	// Operational settings
	GracefulShutdownTimeout time.Duration
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.CameraType != "mjpeg" && c.CameraType != "synthetic" {
		return fmt.Errorf("camera type must be 'mjpeg' or 'synthetic'")
	}

	if c.CameraType == "mjpeg" && c.CameraURL == "" {
		return fmt.Errorf("camera URL required when camera type is 'mjpeg'")
	}

	if c.ModelType != "remote" && c.ModelType != "synthetic" {
		return fmt.Errorf("model type must be 'remote' or 'synthetic'")
	}

	if c.ModelType == "remote" && c.ModelURL == "" {
		return fmt.Errorf("landmark service URL required when model type is 'remote'")
	}

	if c.CameraType == "synthetic" && c.ScenarioFile == "" {
		return fmt.Errorf("scenario file required when camera type is 'synthetic'")
	}

	if c.CycleInterval <= 0 {
		return fmt.Errorf("cycle interval must be positive")
	}

	return nil
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Port:                    8080,
		Host:                    "0.0.0.0",
		ProfileID:               "default",
		CameraType:              "synthetic",
		ModelType:               "synthetic",
		CycleInterval:           time.Second,
		AssistantBaseURL:        "https://api.openai.com/v1",
		AssistantModel:          "gpt-4.1-mini",
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// LoadEnv pulls credential settings from a .env file (if present) and the
// process environment. Flags keep the final word on everything except
// secrets, which are only read here.
func (c *Config) LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	c.AssistantAPIKey = os.Getenv("OPENAI_API_KEY")
	if v := os.Getenv("AURA_ASSISTANT_BASE_URL"); v != "" {
		c.AssistantBaseURL = v
	}
	if v := os.Getenv("AURA_ASSISTANT_MODEL"); v != "" {
		c.AssistantModel = v
	}
}
