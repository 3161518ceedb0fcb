// viera2mqtt - MQTT bridge for Panasonic Viera televisions.
//
// The bridge subscribes to an MQTT command topic, forwards payloads to
// the TV as remote control operations, and publishes the TV's status,
// app list, and device info back to MQTT. A small HTTP API exposes the
// live status, the command history, and the key catalogue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/devbar/viera2mqtt/migrations"

	"github.com/devbar/viera2mqtt/internal/api"
	"github.com/devbar/viera2mqtt/internal/bridges/viera"
	"github.com/devbar/viera2mqtt/internal/history"
	"github.com/devbar/viera2mqtt/internal/infrastructure/config"
	"github.com/devbar/viera2mqtt/internal/infrastructure/database"
	"github.com/devbar/viera2mqtt/internal/infrastructure/influxdb"
	"github.com/devbar/viera2mqtt/internal/infrastructure/logging"
	"github.com/devbar/viera2mqtt/internal/infrastructure/mqtt"
	"github.com/devbar/viera2mqtt/internal/remote"
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

// History retention settings.
const (
	historyRetention     = 30 * 24 * time.Hour
	historyPruneInterval = 24 * time.Hour
)

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
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting viera2mqtt",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration (an empty path means environment-only)
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if configPath != "" {
		log.Info("configuration loaded", "path", configPath)
	} else {
		log.Info("configuration loaded from environment")
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
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

	historyRepo := history.NewRepository(db.DB)
	go pruneHistoryLoop(ctx, historyRepo, log)

	// Connect to MQTT broker
	topics := mqtt.NewTopics(cfg.TopicPrefix())
	mqttClient, err := mqtt.Connect(cfg.MQTT, topics)
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
		"command_topic", topics.Command(),
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Create the TV client and probe it. An unreachable TV is not fatal:
	// the bridge reports it as switched off and keeps probing.
	tv := remote.New(cfg.TV.Host, cfg.TV.Port, cfg.GetCommandTimeout())
	probeTV(ctx, tv, log)

	// Start the Viera bridge
	bridge, err := startBridge(ctx, cfg, tv, mqttClient, historyRepo, influxClient, log)
	if err != nil {
		return fmt.Errorf("starting Viera bridge: %w", err)
	}
	defer func() {
		log.Info("stopping Viera bridge")
		bridge.Stop()
	}()

	// Start the HTTP API (if enabled)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:  cfg.API,
			Logger:  log,
			TV:      tv,
			History: historyRepo,
			MQTT:    mqttClient,
			Version: version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if apiErr := apiServer.Start(ctx); apiErr != nil {
			return fmt.Errorf("starting API server: %w", apiErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API server disabled")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server (if enabled)
	// 2. Viera bridge
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("viera2mqtt stopped")
	return nil
}

// getConfigPath returns the configuration file path.
//
// VIERA2MQTT_CONFIG wins when set. Otherwise the default path is used
// if the file exists, falling back to environment-only configuration
// (the container deployment case).
func getConfigPath() string {
	if path := os.Getenv("VIERA2MQTT_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

// probeTV checks whether the TV is reachable and whether it requires
// encrypted pairing. Both findings are informational.
func probeTV(ctx context.Context, tv *remote.Client, log *logging.Logger) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	encrypted, err := tv.CheckEncryption(probeCtx)
	switch {
	case err != nil:
		log.Warn("TV not reachable at startup, will keep probing",
			"host", tv.Host(),
			"error", err,
		)
	case encrypted:
		log.Warn("TV requires encrypted pairing; commands will be rejected",
			"host", tv.Host(),
		)
	default:
		log.Info("TV reachable", "host", tv.Host(), "port", tv.Port())
	}
}

// startBridge wires up and starts the Viera bridge.
func startBridge(
	ctx context.Context,
	cfg *config.Config,
	tv *remote.Client,
	mqttClient *mqtt.Client,
	historyRepo *history.Repository,
	influxClient *influxdb.Client,
	log *logging.Logger,
) (*viera.Bridge, error) {
	opts := viera.BridgeOptions{
		MQTTClient:     &mqttBridgeAdapter{client: mqttClient},
		TV:             tv,
		Topics:         mqtt.NewTopics(cfg.TopicPrefix()),
		QoS:            byte(cfg.MQTT.QoS), // #nosec G115 -- validated 0-2 by config
		StatusInterval: cfg.GetStatusInterval(),
		Logger:         log,
		Recorder:       &historyRecorder{repo: historyRepo},
	}
	// Assign only when non-nil: a typed nil pointer in the interface
	// would defeat the bridge's nil checks.
	if influxClient != nil {
		opts.Telemetry = influxClient
	}

	bridge, err := viera.NewBridge(opts)
	if err != nil {
		return nil, fmt.Errorf("creating Viera bridge: %w", err)
	}

	if err := bridge.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting Viera bridge: %w", err)
	}
	log.Info("Viera bridge started", "tv", cfg.TV.Host)

	return bridge, nil
}

// pruneHistoryLoop deletes old command history entries once a day.
func pruneHistoryLoop(ctx context.Context, repo *history.Repository, log *logging.Logger) {
	ticker := time.NewTicker(historyPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.Prune(ctx, historyRetention)
			if err != nil {
				log.Error("history prune failed", "error", err)
				continue
			}
			if deleted > 0 {
				log.Info("pruned command history", "deleted", deleted)
			}
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// mqttBridgeAdapter adapts the infrastructure MQTT client to the Viera
// bridge's MQTTClient interface. The difference is the Subscribe handler
// signature:
//   - Infrastructure mqtt: func(topic string, payload []byte) error
//   - Viera bridge expects: func(topic string, payload []byte)
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

// Publish implements viera.MQTTClient.
func (a *mqttBridgeAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements viera.MQTTClient.
func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	return a.client.Subscribe(topic, qos, func(t string, p []byte) error {
		handler(t, p)
		return nil
	})
}

// IsConnected implements viera.MQTTClient.
func (a *mqttBridgeAdapter) IsConnected() bool {
	return a.client.IsConnected()
}

// historyRecorder adapts the history repository to the bridge's
// CommandRecorder interface.
type historyRecorder struct {
	repo *history.Repository
}

// RecordCommand implements viera.CommandRecorder.
func (r *historyRecorder) RecordCommand(ctx context.Context, topic, payload, operation, outcome, errText string) error {
	return r.repo.Record(ctx, history.Entry{
		Topic:     topic,
		Payload:   payload,
		Operation: operation,
		Outcome:   outcome,
		Error:     errText,
	})
}
