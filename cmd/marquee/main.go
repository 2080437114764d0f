// Marquee - MQTT-driven LED matrix ticker
//
// This is the main entry point for the marquee daemon. It drives a HUB75
// LED matrix panel with scrolling text received over MQTT, and exposes a
// small HTTP API with a live preview for headless operation.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/marquee/internal/api"
	"github.com/nerrad567/marquee/internal/display"
	"github.com/nerrad567/marquee/internal/display/hub75"
	"github.com/nerrad567/marquee/internal/infrastructure/config"
	"github.com/nerrad567/marquee/internal/infrastructure/influxdb"
	"github.com/nerrad567/marquee/internal/infrastructure/logging"
	"github.com/nerrad567/marquee/internal/infrastructure/mqtt"
	"github.com/nerrad567/marquee/internal/marquee"
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

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
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
	log.Info("starting marquee",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

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

	// Framebuffer: the render target for the engine, the scan source for
	// the hardware driver, and the source of the HTTP preview.
	fb, err := display.NewFramebuffer(cfg.Display.Width, cfg.Display.Height)
	if err != nil {
		return fmt.Errorf("creating framebuffer: %w", err)
	}
	log.Info("framebuffer created",
		"width", cfg.Display.Width,
		"height", cfg.Display.Height,
	)

	// Hardware driver (optional, headless runs serve the preview only)
	if cfg.Display.Hardware.Driver == config.DriverHUB75 {
		driver, driverErr := hub75.New(cfg.Display.Hardware, fb)
		if driverErr != nil {
			return fmt.Errorf("initialising HUB75 driver: %w", driverErr)
		}
		defer func() {
			log.Info("closing HUB75 driver")
			if closeErr := driver.Close(); closeErr != nil {
				log.Error("error closing HUB75 driver", "error", closeErr)
			}
		}()

		go func() {
			if scanErr := driver.Run(ctx); scanErr != nil && !errors.Is(scanErr, context.Canceled) {
				log.Error("HUB75 scan loop stopped", "error", scanErr)
			}
		}()
		log.Info("HUB75 driver started",
			"chip", cfg.Display.Hardware.GPIOChip,
			"refresh_hz", cfg.Display.Hardware.RefreshHz,
		)
	} else {
		log.Info("hardware driver disabled, running headless")
	}

	// The engine owns all display state; everything below feeds it.
	engine := marquee.NewEngine(fb, cfg.Display, log)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT, cfg.Device.ID)
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
	mqttClient.SetOnConnect(engine.ConnectionUp)
	mqttClient.SetOnDisconnect(engine.ConnectionDown)

	if err := subscribeTopics(mqttClient, cfg, engine, log); err != nil {
		return fmt.Errorf("subscribing to topics: %w", err)
	}

	// The initial connect happened before the callbacks were wired.
	if mqttClient.IsConnected() {
		engine.ConnectionUp()
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB, cfg.Device.ID)
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

	// Start the API server (optional)
	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer, err = api.New(api.Deps{
			Config:      cfg.API,
			WS:          cfg.WebSocket,
			Logger:      log,
			Engine:      engine,
			Framebuffer: fb,
			Version:     version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			log.Info("stopping API server")
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
		log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)
	} else {
		log.Info("API server disabled")
	}

	wireEngineEvents(engine, mqttClient, influxClient, apiServer, log)

	if err := healthCheck(ctx, mqttClient, influxClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, engine running")

	// The engine loop blocks until the context is cancelled; deferred
	// Close() calls then run in reverse order.
	if err := engine.Run(ctx); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	log.Info("marquee stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses MARQUEE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MARQUEE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// subscribeTopics wires the message and brightness topics to the engine.
// Topic overrides from configuration win; otherwise the standard hierarchy
// applies, with the message subscription on the device wildcard so one
// feed can drive a fleet of panels.
func subscribeTopics(client *mqtt.Client, cfg *config.Config, engine *marquee.Engine, log *logging.Logger) error {
	topics := client.Topics()

	messageTopic := cfg.MQTT.Topics.Message
	if messageTopic == "" {
		messageTopic = topics.AllDevices()
	}
	brightnessTopic := cfg.MQTT.Topics.Brightness
	if brightnessTopic == "" {
		brightnessTopic = topics.Brightness()
	}

	qos := byte(cfg.MQTT.QoS)
	if err := client.Subscribe(messageTopic, qos, engine.HandleMessage); err != nil {
		return fmt.Errorf("message topic: %w", err)
	}
	if err := client.Subscribe(brightnessTopic, qos, engine.HandleBrightness); err != nil {
		return fmt.Errorf("brightness topic: %w", err)
	}

	log.Info("subscribed to control topics",
		"message", messageTopic,
		"brightness", brightnessTopic,
	)
	return nil
}

// wireEngineEvents fans engine notifications out to MQTT events, the
// WebSocket hub and InfluxDB telemetry. All callbacks run on the engine
// goroutine, so they only hand off and never block.
func wireEngineEvents(engine *marquee.Engine, mqttClient *mqtt.Client, influxClient *influxdb.Client, apiServer *api.Server, log *logging.Logger) {
	hub := func() *api.Hub {
		if apiServer == nil {
			return nil
		}
		return apiServer.Hub()
	}

	engine.SetOnStateChange(func(old, next marquee.State) {
		payload, err := json.Marshal(map[string]string{
			"from": old.String(),
			"to":   next.String(),
		})
		if err == nil {
			if pubErr := mqttClient.PublishEvent("state_changed", payload); pubErr != nil {
				log.Debug("state event publish failed", "error", pubErr)
			}
		}
		if h := hub(); h != nil {
			h.Broadcast(api.ChannelState, map[string]string{
				"from": old.String(),
				"to":   next.String(),
			})
		}
		if influxClient != nil {
			influxClient.WriteConnectionEvent(next == marquee.StateRunning)
		}
	})

	engine.SetOnMessage(func(msg marquee.Message) {
		if h := hub(); h != nil {
			h.Broadcast(api.ChannelMessage, map[string]any{
				"text":  msg.Raw,
				"lines": msg.Lines,
				"tone":  msg.Tone.String(),
			})
		}
		if influxClient != nil {
			influxClient.WriteMessageMetric(len(msg.Lines), len(msg.Raw))
		}
	})

	engine.SetOnBrightness(func(level int) {
		if h := hub(); h != nil {
			h.Broadcast(api.ChannelBrightness, map[string]int{"level": level})
		}
		if influxClient != nil {
			influxClient.WriteBrightnessMetric(level)
		}
	})

	engine.SetOnFrameSample(func(frames int, avgDraw time.Duration) {
		if influxClient != nil {
			influxClient.WriteFrameMetric(frames, avgDraw)
		}
	})
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client, apiServer *api.Server) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if apiServer != nil {
		if err := apiServer.HealthCheck(ctx); err != nil {
			return fmt.Errorf("api: %w", err)
		}
	}

	return nil
}
