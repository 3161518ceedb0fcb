package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for viera2mqtt.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Bridge   BridgeConfig   `yaml:"bridge"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	TV       TVConfig       `yaml:"tv"`
	Database DatabaseConfig `yaml:"database"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BridgeConfig contains bridge identity and operational settings.
type BridgeConfig struct {
	// ID uniquely identifies this bridge instance.
	// Used in the MQTT client ID and status reporting.
	ID string `yaml:"id"`

	// StatusInterval is how often to probe the TV and publish status (seconds).
	StatusInterval int `yaml:"status_interval"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// CommandTopic is the topic the bridge subscribes to for commands.
	// When empty, it defaults to panasonic/viera/{tv.host}/command.
	// Sibling topics (status, apps, device_info, result) share its prefix.
	CommandTopic string `yaml:"command_topic"`
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

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// TVConfig contains Panasonic Viera television settings.
type TVConfig struct {
	// Host is the IP address or hostname of the television.
	Host string `yaml:"host"`

	// Port is the remote-control API port. Vieras listen on 55000.
	Port int `yaml:"port"`

	// AppID and EncryptionKey are pairing credentials for encrypted models.
	// Accepted for forward compatibility; encrypted command transport is
	// detected and reported but not driven.
	AppID         string `yaml:"app_id"`
	EncryptionKey string `yaml:"encryption_key"`

	// CommandTimeout is the per-request timeout for TV calls (seconds).
	CommandTimeout int `yaml:"command_timeout"`
}

// DatabaseConfig contains SQLite database settings for the command audit trail.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings for TV telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
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
// An empty path skips the file stage entirely, allowing pure
// environment-driven deployment (the container entrypoint case).
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for env-only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// The defaults match the original bridge service: anonymous broker on
// localhost:1883 at QoS 0, TV on port 55000.
func defaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			ID:             "viera2mqtt",
			StatusInterval: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "viera2mqtt",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		TV: TVConfig{
			Host:           "127.0.0.1",
			Port:           55000,
			CommandTimeout: 5,
		},
		Database: DatabaseConfig{
			Path:        "./data/viera2mqtt.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		InfluxDB: InfluxDBConfig{
			Enabled:       false,
			BatchSize:     100,
			FlushInterval: 10,
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
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
//
// The MQTT_* and TV_* names are the documented deployment interface and
// match the original service script; VIERA2MQTT_* names follow the
// section_key pattern for the remaining settings.
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := envInt("MQTT_PORT"); v != nil {
		cfg.MQTT.Broker.Port = *v
	}
	if v := os.Getenv("MQTT_TOPIC"); v != "" {
		cfg.MQTT.CommandTopic = v
	}
	if v := envInt("MQTT_QOS"); v != nil {
		cfg.MQTT.QoS = *v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.Broker.ClientID = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// TV
	if v := os.Getenv("TV_HOST"); v != "" {
		cfg.TV.Host = v
	}
	if v := envInt("TV_PORT"); v != nil {
		cfg.TV.Port = *v
	}
	if v := os.Getenv("TV_APP_ID"); v != "" {
		cfg.TV.AppID = v
	}
	if v := os.Getenv("TV_ENC_KEY"); v != "" {
		cfg.TV.EncryptionKey = v
	}

	// Logging
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// Database
	if v := os.Getenv("VIERA2MQTT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// InfluxDB
	if v := os.Getenv("VIERA2MQTT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// envInt reads an integer environment variable.
// Returns nil when unset, empty, or unparsable (the override is skipped).
func envInt(name string) *int {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Bridge.ID == "" {
		errs = append(errs, "bridge.id is required")
	}
	if c.Bridge.StatusInterval < 1 {
		errs = append(errs, "bridge.status_interval must be at least 1 second")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.TV.Host == "" {
		errs = append(errs, "tv.host is required")
	}
	if c.TV.Port < 1 || c.TV.Port > 65535 {
		errs = append(errs, "tv.port must be between 1 and 65535")
	}
	if c.TV.CommandTimeout < 1 {
		errs = append(errs, "tv.command_timeout must be at least 1 second")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level %q is invalid (use debug, info, warn, or error)", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format %q is invalid (use json or text)", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// CommandTopic returns the topic the bridge subscribes to for commands.
// Defaults to panasonic/viera/{tv.host}/command when not configured.
func (c *Config) CommandTopic() string {
	if c.MQTT.CommandTopic != "" {
		return c.MQTT.CommandTopic
	}
	return fmt.Sprintf("panasonic/viera/%s/command", c.TV.Host)
}

// TopicPrefix returns the shared prefix for all bridge topics.
// A trailing /command segment on the configured command topic is stripped,
// so MQTT_TOPIC=panasonic/viera/tv1/command yields prefix panasonic/viera/tv1.
func (c *Config) TopicPrefix() string {
	topic := c.CommandTopic()
	if prefix, ok := strings.CutSuffix(topic, "/command"); ok {
		return prefix
	}
	return topic
}

// GetCommandTimeout returns the TV command timeout as a Duration.
func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.TV.CommandTimeout) * time.Second
}

// GetStatusInterval returns the status reporting interval as a Duration.
func (c *Config) GetStatusInterval() time.Duration {
	return time.Duration(c.Bridge.StatusInterval) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
