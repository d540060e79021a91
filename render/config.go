package render

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the domfill service configuration.
type Config struct {
	Addr     string `yaml:"addr"`
	DB       string `yaml:"db"`
	Engine   string `yaml:"engine"`   // css | htmlquery, default for rule sets that name none
	Sanitize bool   `yaml:"sanitize"` // force bluemonday on every html rule
	LogLevel string `yaml:"log_level"`
}

// LoadConfig reads a YAML configuration file. An empty path yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("render: config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("render: config: %w", err)
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8086"
	}
	if c.DB == "" {
		c.DB = "data/domfill.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
