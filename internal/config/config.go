package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration, loaded from YAML. A missing or malformed
// file falls back to Default(); the process prefers starting degraded over
// refusing to start.
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Sensor  SensorConfig  `yaml:"sensor"`
	HTTP    HTTPConfig    `yaml:"http"`
	SQLite  SQLiteConfig  `yaml:"sqlite"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Logging LoggingConfig `yaml:"logging"`
}

type DeviceConfig struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

// SensorConfig holds the I2C wiring and calibration for the BME280.
// Offsets are additive and applied per field on every read.
type SensorConfig struct {
	I2CBus            int     `yaml:"i2c_bus"`
	I2CAddress        uint16  `yaml:"i2c_address"`
	SeaLevelPressure  float64 `yaml:"sea_level_pressure"`
	ReadInterval      int     `yaml:"read_interval"`
	TemperatureOffset float64 `yaml:"temperature_offset"`
	HumidityOffset    float64 `yaml:"humidity_offset"`
	PressureOffset    float64 `yaml:"pressure_offset"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type SQLiteConfig struct {
	Path            string `yaml:"path"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration used when no file is available.
func Default() Config {
	return Config{
		Device: DeviceConfig{
			Name:     "raspberry-pi-climate",
			Location: "office",
		},
		Sensor: SensorConfig{
			I2CBus:           1,
			I2CAddress:       0x76,
			SeaLevelPressure: 1013.25,
			ReadInterval:     10,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		SQLite: SQLiteConfig{
			Path:         "sensor_data.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		MQTT: MQTTConfig{
			Enabled:  false,
			Broker:   "localhost",
			Port:     1883,
			ClientID: "thermal-station",
			Topic:    "climate/readings",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path and validates it. On any failure it logs a
// warning and returns Default(); the error is informational only.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("config file unavailable, using built-in defaults", "path", path, "error", err)
		return Default(), err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		slog.Warn("config file malformed, using built-in defaults", "path", path, "error", err)
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		slog.Warn("config invalid, using built-in defaults", "path", path, "error", err)
		return Default(), err
	}

	return cfg, nil
}

// Validate checks constraints the rest of the system assumes.
func (c Config) Validate() error {
	if c.Sensor.ReadInterval <= 0 {
		return fmt.Errorf("sensor.read_interval must be > 0, got %d", c.Sensor.ReadInterval)
	}
	if c.Sensor.I2CAddress == 0 {
		return fmt.Errorf("sensor.i2c_address must be set")
	}
	if c.Sensor.SeaLevelPressure <= 0 {
		return fmt.Errorf("sensor.sea_level_pressure must be > 0, got %f", c.Sensor.SeaLevelPressure)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr must be set")
	}
	if c.SQLite.Path == "" {
		return fmt.Errorf("sqlite.path must be set")
	}
	if c.SQLite.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.SQLite.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid sqlite.conn_max_lifetime %q: %w", c.SQLite.ConnMaxLifetime, err)
		}
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker must be set when mqtt is enabled")
		}
		if c.MQTT.Port <= 0 || c.MQTT.Port > 65535 {
			return fmt.Errorf("invalid mqtt.port %d", c.MQTT.Port)
		}
		if c.MQTT.Topic == "" {
			return fmt.Errorf("mqtt.topic must be set when mqtt is enabled")
		}
	}
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// ReadIntervalDuration returns the sample interval as a time.Duration.
func (c SensorConfig) ReadIntervalDuration() time.Duration {
	return time.Duration(c.ReadInterval) * time.Second
}

// ConnMaxLifetimeDuration returns the parsed lifetime, or zero when unset.
func (c SQLiteConfig) ConnMaxLifetimeDuration() time.Duration {
	if c.ConnMaxLifetime == "" {
		return 0
	}
	d, err := time.ParseDuration(c.ConnMaxLifetime)
	if err != nil {
		return 0
	}
	return d
}

// ParseLogLevel converts a config level string to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid logging.level %q (allowed: debug, info, warn, error)", s)
	}
}
