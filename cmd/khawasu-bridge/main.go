// Khawasu Cloud Bridge
//
// This is the main entry point for the bridge that connects a Khawasu
// home-automation mesh to a cloud voice-assistant smart-home API:
// OAuth account linking, device discovery, state queries and commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/khawasu/cloud-bridge/migrations"

	"github.com/khawasu/cloud-bridge/internal/api"
	"github.com/khawasu/cloud-bridge/internal/auth"
	"github.com/khawasu/cloud-bridge/internal/infrastructure/config"
	"github.com/khawasu/cloud-bridge/internal/infrastructure/database"
	"github.com/khawasu/cloud-bridge/internal/infrastructure/influxdb"
	"github.com/khawasu/cloud-bridge/internal/infrastructure/logging"
	"github.com/khawasu/cloud-bridge/internal/infrastructure/mqtt"
	"github.com/khawasu/cloud-bridge/internal/khawasu"
	"github.com/khawasu/cloud-bridge/internal/translate"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// codeSweepInterval is how often unexchanged authorization codes are
// purged from storage.
const codeSweepInterval = time.Minute

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Khawasu cloud bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Auth service over the user and token stores
	users := auth.NewUserRepository(db.DB)
	tokens := auth.NewTokenRepository(db.DB)
	authService := auth.NewService(users, tokens,
		cfg.OAuth.CodeLength, cfg.OAuth.AccessTokenLength, cfg.OAuth.CodeTTL,
		log.Logger.With("component", "auth"),
	)

	if cfg.OAuth.Seed.Enabled {
		if seedErr := auth.EnsureSeedUser(ctx, users,
			cfg.OAuth.Seed.Username, cfg.OAuth.Seed.Password,
			log.Logger); seedErr != nil {
			return fmt.Errorf("seeding user: %w", seedErr)
		}
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Khawasu driver over the MQTT link
	qos := byte(cfg.MQTT.QoS) // #nosec G115 -- validated to 0..2 by config
	driver, err := khawasu.NewClient(mqttClient, qos, cfg.Directory.DriverTimeout)
	if err != nil {
		return fmt.Errorf("starting khawasu driver: %w", err)
	}
	driver.SetLogger(log)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	var recorder translate.Recorder
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		recorder = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Device directory and translator
	directory := translate.NewDirectory(driver, cfg.Directory.RefreshTTL,
		log.Logger.With("component", "directory"))
	translator := translate.New(driver, recorder,
		log.Logger.With("component", "translate"))

	// Warm the directory; the mesh may still be coming up, so a failed
	// first load is not fatal.
	if warmErr := directory.Refresh(ctx); warmErr != nil {
		log.Warn("initial device directory load failed", "error", warmErr)
	}

	// Start the HTTP API
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		OAuth:      cfg.OAuth,
		Logger:     log,
		Auth:       authService,
		Directory:  directory,
		Translator: translator,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Periodically purge authorization codes that were never exchanged
	go sweepCodes(ctx, authService, log)

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("Khawasu cloud bridge stopped")
	return nil
}

// sweepCodes purges stale authorization codes until ctx is cancelled.
func sweepCodes(ctx context.Context, authService *auth.Service, log *logging.Logger) {
	ticker := time.NewTicker(codeSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authService.Sweep(ctx); err != nil {
				log.Warn("sweeping expired codes failed", "error", err)
			}
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses KHAWASU_BRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("KHAWASU_BRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
