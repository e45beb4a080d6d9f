// Package config loads unalias settings from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v8"
)

// Config holds every environment-driven setting. Command-line flags override
// the matching fields after Load.
type Config struct {
	LogLevel  string `env:"UNALIAS_LOG_LEVEL" envDefault:"info" json:"logLevel" jsonschema:"title=Log Level,description=Minimum log level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	LogPrefix string `env:"UNALIAS_LOG_PREFIX" envDefault:"unalias " json:"logPrefix" jsonschema:"title=Log Prefix,description=Prefix for log messages"`
	LogToFile bool   `env:"UNALIAS_LOG_TO_FILE" json:"logToFile" jsonschema:"title=Log To File,description=Write logs to a timestamped file instead of stderr"`
	NoColor   bool   `env:"UNALIAS_NO_COLOR" json:"noColor" jsonschema:"title=No Color,description=Disable colorized listings and markdown rendering"`
	Profile   bool   `env:"UNALIAS_PROFILE" json:"profile" jsonschema:"title=Profile,description=Serve pprof on localhost:6060"`
	Prefix    string `env:"UNALIAS_PREFIX" envDefault:"ALIAS__" json:"prefix" jsonschema:"title=Name Prefix,description=Prefix for renamed alias stubs"`
	Segment   string `env:"UNALIAS_SEGMENT" envDefault:"__TEXT" json:"segment" jsonschema:"title=Segment,description=Segment whose procedures are scanned"`
	Arch      string `env:"UNALIAS_ARCH" json:"arch,omitempty" jsonschema:"title=Architecture,description=Slice to analyze in universal binaries (default: first arm64 slice)"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom parses the given environment instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes and checks the settings.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	case "":
		c.LogLevel = "info"
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.Prefix == "" {
		return fmt.Errorf("name prefix must not be empty")
	}
	if c.Segment == "" {
		return fmt.Errorf("segment must not be empty")
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}
