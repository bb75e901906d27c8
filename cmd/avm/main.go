// AVM Core - Automatic Volume Mixer
//
// This is the main entry point for the AVM Core application.
// AVM is a rule-based automation engine for audio mixing:
//   - Audio adapters publish session state snapshots over MQTT
//   - Behaviours (triggers + conditions + actions) evaluate each snapshot
//   - Matching behaviours publish volume/mute commands back to the adapters
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomarikawa/avm-core/migrations"

	"github.com/tomarikawa/avm-core/internal/audio"
	"github.com/tomarikawa/avm-core/internal/behaviour"
	"github.com/tomarikawa/avm-core/internal/counter"
	"github.com/tomarikawa/avm-core/internal/infrastructure/config"
	"github.com/tomarikawa/avm-core/internal/infrastructure/database"
	"github.com/tomarikawa/avm-core/internal/infrastructure/influxdb"
	"github.com/tomarikawa/avm-core/internal/infrastructure/logging"
	"github.com/tomarikawa/avm-core/internal/infrastructure/mqtt"
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

// persistTimeout bounds database writes triggered by engine callbacks.
const persistTimeout = 5 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	// This is the Go pattern for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the application
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting AVM Core",
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

	repo := behaviour.NewSQLiteRepository(db.DB)

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

	// Set up MQTT logging callbacks
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

		// Set up InfluxDB error callback
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the behaviour engine: type registry, last-fired tracker,
	// and the outbound command path for actions.
	codec := behaviour.NewCodec()
	codec.SetLogger(log)

	qos := byte(cfg.MQTT.QoS)
	commander := audio.NewMQTTCommander(mqttClient, cfg.Engine.CommandTopic, qos)
	if err := audio.Register(codec, commander); err != nil {
		return fmt.Errorf("registering behaviour types: %w", err)
	}

	tracker := counter.NewMemoryTracker()
	engine := behaviour.NewEngine(tracker, codec, log)
	engine.SetEnabled(cfg.Engine.Enabled)
	engine.SetFiringObserver(&firingRecorder{
		repo:   repo,
		influx: influxClient,
		log:    log,
	})

	// Restore the persisted behaviour document, if any
	if doc, loadErr := repo.LoadDocument(ctx); loadErr == nil {
		if decodeErr := engine.Load(doc, true); decodeErr != nil {
			log.Error("persisted behaviour document is invalid, starting empty", "error", decodeErr)
		} else {
			log.Info("behaviours restored", "count", engine.Count())
		}
	} else if !errors.Is(loadErr, behaviour.ErrDocumentNotFound) {
		return fmt.Errorf("loading behaviour document: %w", loadErr)
	}

	// Persist the document whenever the behaviour set changes
	engine.OnChange(func() {
		doc, saveErr := engine.Save(true)
		if saveErr != nil {
			log.Error("encoding behaviour document", "error", saveErr)
			return
		}
		saveCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if saveErr := repo.SaveDocument(saveCtx, doc); saveErr != nil {
			log.Error("persisting behaviour document", "error", saveErr)
		}
	})

	// Feed session state snapshots into the engine. The paho handler
	// goroutine serialises evaluation; actions run asynchronously.
	err = mqttClient.Subscribe(cfg.Engine.StateTopic, qos, func(topic string, payload []byte) error {
		update, decodeErr := audio.DecodeStateUpdate(payload)
		if decodeErr != nil {
			return fmt.Errorf("decoding state update: %w", decodeErr)
		}

		if influxClient != nil {
			for _, s := range update.Sessions {
				influxClient.WriteSessionLevel(s.Process, s.Volume, s.Peak, update.Time)
			}
		}

		engine.Process(update)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribing to state topic: %w", err)
	}
	log.Info("engine listening",
		"state_topic", cfg.Engine.StateTopic,
		"command_topic", cfg.Engine.CommandTopic,
		"enabled", cfg.Engine.Enabled,
	)

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
	// 1. InfluxDB (if enabled)
	// 2. MQTT
	// 3. Database

	log.Info("AVM Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses AVM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("AVM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// firingRecorder fans firing notifications out to SQLite and InfluxDB.
// Notifications arrive from action-execution goroutines, so both sinks
// must be safe for concurrent use (they are).
type firingRecorder struct {
	repo   behaviour.Repository
	influx *influxdb.Client
	log    *logging.Logger
}

func (r *firingRecorder) BehaviourFired(b *behaviour.Behaviour, at time.Time, actionsRun, actionsFailed int) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	err := r.repo.CreateFiring(ctx, &behaviour.Firing{
		BehaviourID:   b.ID,
		BehaviourName: b.Name,
		Group:         b.Group,
		EventTime:     at,
		ActionsRun:    actionsRun,
		ActionsFailed: actionsFailed,
	})
	if err != nil {
		r.log.Error("recording firing", "behaviour", b.Name, "error", err)
	}

	if r.influx != nil {
		r.influx.WriteFiring(b.ID, b.Name, b.Group, actionsRun, actionsFailed, at)
	}
}
