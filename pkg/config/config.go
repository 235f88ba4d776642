package config

import (
	"fmt"
	"os"
	"time"

	"ovenctrl/pkg/validation"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Web struct {
		// AssetsDir is served under /dist when set (player JS and CSS).
		AssetsDir string `yaml:"assets_dir"`
	} `yaml:"web"`

	// Host and TLS flag viewers use to reach the media server.
	ExternalHost string `yaml:"external_host"`
	ExternalTLS  bool   `yaml:"external_tls"`

	// Streamer name to ingest key.
	Streamers map[string]string `yaml:"streamers"`
	// Streamer name to the rooms it may publish into.
	AllowedStreams map[string][]string `yaml:"allowed_streams"`
	// Viewer room to join password.
	Rooms map[string]string `yaml:"rooms"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	// Authorization table
	for name, secret := range c.Streamers {
		if err := validation.ValidateStreamerID(name); err != nil {
			return fmt.Errorf("streamers.%s: %w", name, err)
		}
		if secret == "" {
			return fmt.Errorf("streamers.%s: key must not be empty", name)
		}
	}
	for name, rooms := range c.AllowedStreams {
		if err := validation.ValidateStreamerID(name); err != nil {
			return fmt.Errorf("allowed_streams.%s: %w", name, err)
		}
		for _, room := range rooms {
			if err := validation.ValidateRoomName(room); err != nil {
				return fmt.Errorf("allowed_streams.%s: %w", name, err)
			}
		}
	}

	// Join page
	for room, password := range c.Rooms {
		if err := validation.ValidateRoomName(room); err != nil {
			return fmt.Errorf("rooms.%s: %w", room, err)
		}
		if password == "" {
			return fmt.Errorf("rooms.%s: password must not be empty", room)
		}
	}
	if len(c.Rooms) > 0 {
		if err := validation.ValidateExternalHost(c.ExternalHost); err != nil {
			return fmt.Errorf("external_host: %w", err)
		}
	}

	return nil
}

// Load reads the configuration file, applies defaults and OVEN_CTRL_*
// environment overrides, then validates the result.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("missing configuration path")
	}

	path, format, err := resolvePath(configPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := decode(format, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyEnvOverrides(os.Environ())
	cfg.ensureMaps()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults. The authorization
// maps start empty: no streamer may publish unless configured.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":3000"
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 10 * time.Second
	cfg.Server.ShutdownTimeout = 15 * time.Second

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.ensureMaps()
	return cfg
}

func (c *Config) ensureMaps() {
	if c.Streamers == nil {
		c.Streamers = make(map[string]string)
	}
	if c.AllowedStreams == nil {
		c.AllowedStreams = make(map[string][]string)
	}
	if c.Rooms == nil {
		c.Rooms = make(map[string]string)
	}
}
