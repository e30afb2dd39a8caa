package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Race          RaceConfig          `yaml:"race"`
	EventBus      EventBusConfig      `yaml:"event_bus"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// RaceConfig holds race settings.
type RaceConfig struct {
	// Seed fixes the random source. Zero draws a fresh seed per run.
	Seed int64 `yaml:"seed" env:"RACE_SEED"`
	// RoundInterval paces how fast rounds are printed. Zero prints immediately.
	RoundInterval time.Duration `yaml:"round_interval" env:"RACE_ROUND_INTERVAL"`
}

// EventBusConfig holds in-process event bus settings.
type EventBusConfig struct {
	OutputBuffer int64 `yaml:"output_buffer" env:"EVENT_BUS_OUTPUT_BUFFER"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL"`   // debug|info|warn|error
	LogFormat      string `yaml:"log_format" env:"LOG_FORMAT"` // text|json
	MetricsEnabled bool   `yaml:"metrics_enabled" env:"METRICS_ENABLED"`
	TracingEnabled bool   `yaml:"tracing_enabled" env:"TRACING_ENABLED"`
	Environment    string `yaml:"environment" env:"ENV"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Race: RaceConfig{},
		EventBus: EventBusConfig{
			OutputBuffer: 64,
		},
		Observability: ObservabilityConfig{
			LogLevel:    "warn",
			LogFormat:   "text",
			Environment: "development",
		},
	}
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file falls back to Default.
func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults plus environment.
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot act on.
func (c *Config) Validate() error {
	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Observability.LogLevel)
	}
	switch c.Observability.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Observability.LogFormat)
	}
	if c.Race.RoundInterval < 0 {
		return fmt.Errorf("round interval must not be negative: %s", c.Race.RoundInterval)
	}
	if c.EventBus.OutputBuffer < 0 {
		return fmt.Errorf("event bus output buffer must not be negative: %d", c.EventBus.OutputBuffer)
	}
	return nil
}
