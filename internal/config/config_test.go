package config

import "testing"

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default with scenario is valid",
			mutate:  func(c *Config) { c.ScenarioFile = "fixtures/scenarios/calm.json" },
			wantErr: false,
		},
		{
			name:    "synthetic camera requires scenario",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name: "mjpeg camera requires URL",
			mutate: func(c *Config) {
				c.CameraType = "mjpeg"
				c.ModelType = "remote"
				c.ModelURL = "http://localhost:9090"
			},
			wantErr: true,
		},
		{
			name: "remote model requires URL",
			mutate: func(c *Config) {
				c.CameraType = "mjpeg"
				c.CameraURL = "http://localhost:8081/stream"
				c.ModelType = "remote"
			},
			wantErr: true,
		},
		{
			name: "live setup is valid",
			mutate: func(c *Config) {
				c.CameraType = "mjpeg"
				c.CameraURL = "http://localhost:8081/stream"
				c.ModelType = "remote"
				c.ModelURL = "http://localhost:9090"
			},
			wantErr: false,
		},
		{
			name: "unknown camera type",
			mutate: func(c *Config) {
				c.CameraType = "v4l2"
				c.ScenarioFile = "x.json"
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			mutate: func(c *Config) {
				c.Port = 0
				c.ScenarioFile = "x.json"
			},
			wantErr: true,
		},
		{
			name: "non-positive cycle interval",
			mutate: func(c *Config) {
				c.CycleInterval = 0
				c.ScenarioFile = "x.json"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
