package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the marquee daemon.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Display   DisplayConfig   `yaml:"display"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig identifies this marquee instance.
type DeviceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DisplayConfig contains LED matrix geometry and rendering settings.
//
// Geometry is configuration, not an invariant: a 64x32 HUB75 panel is the
// default, but any width/height the driver supports is accepted.
type DisplayConfig struct {
	Width      int            `yaml:"width"`
	Height     int            `yaml:"height"`
	Brightness int            `yaml:"brightness"` // initial brightness, 0-100
	Scroll     ScrollConfig   `yaml:"scroll"`
	Hardware   HardwareConfig `yaml:"hardware"`
}

// ScrollConfig tunes the scroll animation.
type ScrollConfig struct {
	// StepPixels is how far the text advances per tick.
	StepPixels int `yaml:"step_pixels"`

	// IntervalMs is the tick interval in milliseconds.
	IntervalMs int `yaml:"interval_ms"`

	// HoldMs is how long a new message is held static before scrolling starts.
	HoldMs int `yaml:"hold_ms"`

	// BlankMs is how long the screen stays blank after a full scroll cycle.
	// 0 keeps the text cycling continuously.
	BlankMs int `yaml:"blank_ms"`

	// GapPixels is the blank gap between the end of the text and its
	// wrapped-around start.
	GapPixels int `yaml:"gap_pixels"`
}

// Supported display driver names.
const (
	DriverHUB75 = "hub75"
	DriverNone  = "none"
)

// HardwareConfig selects and configures the physical display driver.
type HardwareConfig struct {
	// Driver is "hub75" for a GPIO-driven panel or "none" for headless
	// operation (framebuffer only, still visible via the WebSocket preview).
	Driver string `yaml:"driver"`

	// GPIOChip is the character device name, e.g. "gpiochip0".
	GPIOChip string `yaml:"gpio_chip"`

	// Pins maps the HUB75 lines to BCM pin numbers.
	Pins HUB75PinConfig `yaml:"pins"`

	// RefreshHz is the panel scan rate.
	RefreshHz int `yaml:"refresh_hz"`
}

// HUB75PinConfig holds the BCM pin assignment for a HUB75 interface.
// Defaults follow the Adafruit RGB Matrix Bonnet layout.
type HUB75PinConfig struct {
	R1  int `yaml:"r1"`
	G1  int `yaml:"g1"`
	B1  int `yaml:"b1"`
	R2  int `yaml:"r2"`
	G2  int `yaml:"g2"`
	B2  int `yaml:"b2"`
	CLK int `yaml:"clk"`
	OE  int `yaml:"oe"`
	LAT int `yaml:"lat"`
	A   int `yaml:"a"`
	B   int `yaml:"b"`
	C   int `yaml:"c"`
	D   int `yaml:"d"`
	E   int `yaml:"e"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
	Topics    MQTTTopicConfig     `yaml:"topics"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// MQTTTopicConfig contains the topics the marquee subscribes to.
// Empty values fall back to the standard marquee/{device}/... hierarchy.
type MQTTTopicConfig struct {
	Message    string `yaml:"message"`
	Brightness string `yaml:"brightness"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	// Path is the full route serving the event stream.
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MARQUEE_SECTION_KEY
// For example: MARQUEE_MQTT_HOST, MARQUEE_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:   "marquee-01",
			Name: "Marquee",
		},
		Display: DisplayConfig{
			Width:      64,
			Height:     32,
			Brightness: 100,
			Scroll: ScrollConfig{
				StepPixels: 1,
				IntervalMs: 40,
				HoldMs:     2000,
				BlankMs:    3000,
				GapPixels:  16,
			},
			Hardware: HardwareConfig{
				Driver:    DriverNone,
				GPIOChip:  "gpiochip0",
				RefreshHz: 200,
				// Adafruit RGB Matrix Bonnet pin layout
				Pins: HUB75PinConfig{
					R1: 5, G1: 13, B1: 6,
					R2: 12, G2: 16, B2: 23,
					CLK: 17, OE: 4, LAT: 21,
					A: 22, B: 26, C: 27, D: 20, E: 24,
				},
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "marquee-01",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/api/v1/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: MARQUEE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("MARQUEE_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}

	// MQTT
	if v := os.Getenv("MARQUEE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MARQUEE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("MARQUEE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MARQUEE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("MARQUEE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("MARQUEE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("MARQUEE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}

	// Display validation
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, "display.width and display.height must be positive")
	}
	if c.Display.Brightness < 0 || c.Display.Brightness > 100 {
		errs = append(errs, "display.brightness must be between 0 and 100")
	}
	if c.Display.Scroll.StepPixels < 1 {
		errs = append(errs, "display.scroll.step_pixels must be at least 1")
	}
	if c.Display.Scroll.IntervalMs < 1 {
		errs = append(errs, "display.scroll.interval_ms must be at least 1")
	}
	switch c.Display.Hardware.Driver {
	case DriverHUB75:
		// Five row-select lines (A-E) address 32 row pairs.
		if c.Display.Height > 64 {
			errs = append(errs, "display.height must be 64 or less for the hub75 driver")
		}
	case DriverNone:
	default:
		errs = append(errs, `display.hardware.driver must be "hub75" or "none"`)
	}

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.WebSocket.Path != "" && !strings.HasPrefix(c.WebSocket.Path, "/") {
		errs = append(errs, "websocket.path must begin with /")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ScrollInterval returns the scroll tick interval as a Duration.
func (c *DisplayConfig) ScrollInterval() time.Duration {
	return time.Duration(c.Scroll.IntervalMs) * time.Millisecond
}

// HoldTime returns the pre-scroll hold time as a Duration.
func (c *ScrollConfig) HoldTime() time.Duration {
	return time.Duration(c.HoldMs) * time.Millisecond
}

// BlankTime returns the post-scroll blank time as a Duration.
func (c *ScrollConfig) BlankTime() time.Duration {
	return time.Duration(c.BlankMs) * time.Millisecond
}
