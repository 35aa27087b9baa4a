package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Khawasu cloud bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	Directory DirectoryConfig `yaml:"directory"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains broker connection settings for the Khawasu driver link.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
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

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// InfluxDBConfig contains optional state-telemetry settings.
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

// OAuthConfig contains the voice-assistant platform OAuth settings.
//
// ClientID and ClientSecret identify the assistant platform itself — they are
// checked on the authorize and token endpoints before any user credentials
// are considered.
type OAuthConfig struct {
	ClientID          string        `yaml:"client_id"`
	ClientSecret      string        `yaml:"client_secret"`
	CodeLength        int           `yaml:"code_length"`
	AccessTokenLength int           `yaml:"access_token_length"`
	CodeTTL           time.Duration `yaml:"code_ttl"`
	Seed              SeedConfig    `yaml:"seed"`
}

// SeedConfig optionally creates an initial user account on startup.
type SeedConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DirectoryConfig controls the translated-device directory cache.
type DirectoryConfig struct {
	// RefreshTTL is how long a built directory stays fresh. Zero means the
	// directory is rebuilt only on explicit refresh.
	RefreshTTL time.Duration `yaml:"refresh_ttl"`

	// DriverTimeout bounds individual calls to the Khawasu driver.
	DriverTimeout time.Duration `yaml:"driver_timeout"`
}

// Load reads configuration from a YAML file and applies environment variable
// overrides.
//
// The loading order is: hardcoded defaults, then YAML file values, then
// environment variables of the form KHAWASU_BRIDGE_SECTION_KEY
// (e.g. KHAWASU_BRIDGE_DATABASE_PATH, KHAWASU_BRIDGE_OAUTH_CLIENT_SECRET).
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default token value lengths and code lifetime, matching the assistant
// platform's expectations for the authorization code flow.
const (
	defaultCodeLength        = 8
	defaultAccessTokenLength = 32
	defaultCodeTTL           = 10 * time.Second
)

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "./data/bridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "khawasu-bridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 1111,
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
		OAuth: OAuthConfig{
			CodeLength:        defaultCodeLength,
			AccessTokenLength: defaultAccessTokenLength,
			CodeTTL:           defaultCodeTTL,
		},
		Directory: DirectoryConfig{
			RefreshTTL:    5 * time.Minute,
			DriverTimeout: 10 * time.Second,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: KHAWASU_BRIDGE_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KHAWASU_BRIDGE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("KHAWASU_BRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("KHAWASU_BRIDGE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("KHAWASU_BRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("KHAWASU_BRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("KHAWASU_BRIDGE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("KHAWASU_BRIDGE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("KHAWASU_BRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// OAuth client credentials should come from the environment in production.
	if v := os.Getenv("KHAWASU_BRIDGE_OAUTH_CLIENT_ID"); v != "" {
		cfg.OAuth.ClientID = v
	}
	if v := os.Getenv("KHAWASU_BRIDGE_OAUTH_CLIENT_SECRET"); v != "" {
		cfg.OAuth.ClientSecret = v
	}
	if v := os.Getenv("KHAWASU_BRIDGE_SEED_PASSWORD"); v != "" {
		cfg.OAuth.Seed.Password = v
	}
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// The token endpoint is reachable from the public internet once the
	// assistant platform is linked. An unset client secret would let anyone
	// exchange stolen authorization codes.
	if c.OAuth.ClientID == "" {
		errs = append(errs, "oauth.client_id is required (set KHAWASU_BRIDGE_OAUTH_CLIENT_ID)")
	}
	if c.OAuth.ClientSecret == "" {
		errs = append(errs, "oauth.client_secret is required (set KHAWASU_BRIDGE_OAUTH_CLIENT_SECRET)")
	}

	if c.OAuth.CodeLength < 1 {
		errs = append(errs, "oauth.code_length must be positive")
	}
	if c.OAuth.AccessTokenLength < 1 {
		errs = append(errs, "oauth.access_token_length must be positive")
	}
	if c.OAuth.CodeTTL <= 0 {
		errs = append(errs, "oauth.code_ttl must be positive")
	}

	if c.Directory.DriverTimeout <= 0 {
		errs = append(errs, "directory.driver_timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
