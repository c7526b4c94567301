package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/api"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/assistant"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/config"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/history"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/pipeline"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/regulate"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/storage"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/storage/sqlite"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision/remote"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/vision/synthetic"
)

func main() {
	// Parse flags
	cfg := parseFlags()
	cfg.LoadEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting AURA server...")
	log.Printf("Config: port=%d, camera=%s, model=%s, profile=%s", cfg.Port, cfg.CameraType, cfg.ModelType, cfg.ProfileID)

	// Resolve the active profile
	prof := loadProfile(cfg)

	// Create vision adapters
	camera, model := buildVision(cfg)

	startedAt := time.Now()

	orchestrator, err := pipeline.NewOrchestrator(camera, model, prof, startedAt)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	// Create regulation controller
	var executor regulate.Executor
	if cfg.Headless {
		executor = regulate.LogExecutor{}
		log.Printf("Running headless: interventions are logged, not performed")
	} else {
		executor = regulate.NewExecExecutor(regulate.DefaultExecConfig())
	}

	summarizer := assistant.NewClient(assistant.Config{
		BaseURL: cfg.AssistantBaseURL,
		APIKey:  cfg.AssistantAPIKey,
		Model:   cfg.AssistantModel,
		Timeout: 20 * time.Second,
	})
	if cfg.AssistantAPIKey == "" {
		log.Printf("Warning: no assistant API key configured, rescue plans will use the fallback text")
	}

	controller, err := regulate.NewController(prof.Spec.Regulation, executor, summarizer)
	if err != nil {
		log.Fatalf("Failed to build regulation controller: %v", err)
	}

	// Create session record and optional persistent storage
	session := history.NewSession(startedAt, history.DefaultMaxPoints)

	var store storage.SessionStorage
	if cfg.DatabasePath != "" {
		sqliteStore, err := sqlite.NewStore(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer sqliteStore.Close()

		if err := sqliteStore.StartSession(session.ID(), prof.Metadata.ID, startedAt); err != nil {
			log.Fatalf("Failed to register session: %v", err)
		}
		store = sqliteStore
		log.Printf("Persisting session %s to %s", session.ID(), cfg.DatabasePath)
	} else {
		log.Printf("No database configured, session %s is in-memory only", session.ID())
	}

	// Assemble the monitor loop and the API server
	hub := api.NewHub()
	monitor := pipeline.NewMonitor(orchestrator, controller, session, store, hub, prof, cfg.CycleInterval)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	apiServer := api.NewServer(session, store, prof, hub, addr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return monitor.Run(gctx)
	})

	g.Go(func() error {
		return apiServer.Start()
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
		defer shutdownCancel()

		return apiServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Shutdown complete")
}

func parseFlags() config.Config {
	cfg := config.DefaultConfig()

	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.Host, "host", cfg.Host, "HTTP server host")
	flag.StringVar(&cfg.ProfileDirectory, "profile-dir", cfg.ProfileDirectory, "Directory containing monitor profile YAML files (empty uses the built-in default)")
	flag.StringVar(&cfg.ProfileID, "profile", cfg.ProfileID, "ID of the profile to run")
	flag.StringVar(&cfg.CameraType, "camera", cfg.CameraType, "Camera source type (mjpeg|synthetic)")
	flag.StringVar(&cfg.CameraURL, "camera-url", cfg.CameraURL, "MJPEG stream URL (required for mjpeg camera)")
	flag.StringVar(&cfg.ModelType, "model", cfg.ModelType, "Landmark model type (remote|synthetic)")
	flag.StringVar(&cfg.ModelURL, "model-url", cfg.ModelURL, "Landmark service URL (required for remote model)")
	flag.StringVar(&cfg.ScenarioFile, "scenario", cfg.ScenarioFile, "Scenario fixture for synthetic runs")
	flag.DurationVar(&cfg.CycleInterval, "interval", cfg.CycleInterval, "Monitoring cycle interval")
	flag.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Log interventions instead of performing them")
	flag.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path (empty disables persistence)")

	flag.Parse()

	return cfg
}

// loadProfile resolves the configured profile: from the profile directory
// when one is set, otherwise the built-in default.
func loadProfile(cfg config.Config) *profile.Profile {
	if cfg.ProfileDirectory == "" {
		prof := profile.Default()
		if errs := profile.ValidateProfile(prof); len(errs) > 0 {
			log.Fatalf("Built-in profile invalid: %v", errs[0])
		}
		log.Printf("Using built-in default profile")
		return prof
	}

	profiles, errs := profile.LoadFromDirectory(cfg.ProfileDirectory)
	if len(errs) > 0 {
		for _, e := range errs {
			log.Printf("Profile error: %v", e)
		}
		log.Fatalf("Failed to load profiles from %s", cfg.ProfileDirectory)
	}

	for _, pf := range profiles {
		if pf.Profile.Metadata.ID == cfg.ProfileID {
			if verrs := profile.ValidateProfile(pf.Profile); len(verrs) > 0 {
				log.Fatalf("Profile %s invalid: %v", cfg.ProfileID, verrs[0])
			}
			log.Printf("Using profile %s from %s", cfg.ProfileID, pf.File)
			return pf.Profile
		}
	}

	log.Fatalf("Profile not found: %s (searched %s)", cfg.ProfileID, cfg.ProfileDirectory)
	return nil
}

// buildVision creates the camera source and landmark model from config. A
// synthetic camera and a synthetic model always share one scenario so that
// Detect answers for the frame Read just produced.
func buildVision(cfg config.Config) (vision.CameraSource, vision.LandmarkModel) {
	if cfg.CameraType == "synthetic" || cfg.ModelType == "synthetic" {
		if cfg.CameraType != cfg.ModelType {
			log.Fatalf("Camera and model must both be synthetic or both be live")
		}

		scenario, err := synthetic.LoadScenario(cfg.ScenarioFile)
		if err != nil {
			log.Fatalf("Failed to load scenario: %v", err)
		}
		log.Printf("Using synthetic vision from scenario %s", cfg.ScenarioFile)
		return scenario.Camera(), scenario.Model()
	}

	camera := remote.NewCamera(remote.DefaultCameraConfig(cfg.CameraURL))
	model := remote.NewModel(remote.DefaultModelConfig(cfg.ModelURL))
	log.Printf("Using MJPEG camera %s and landmark service %s", cfg.CameraURL, cfg.ModelURL)
	return camera, model
}
