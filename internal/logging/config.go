package logging

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level emitted: debug, info, warn, error.
	Level string `koanf:"level"`
	// Format selects the encoder: json or console.
	Format string `koanf:"format"`
	// Fields are constant fields attached to every entry.
	Fields map[string]string `koanf:"fields"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	// zapcore.ParseLevel treats "" as info; an empty level here means a
	// misconfigured config source, so reject it.
	if c.Level == "" {
		return fmt.Errorf("level must not be empty")
	}
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid level %q: %w", c.Level, err)
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid format %q (expected json or console)", c.Format)
	}
	return nil
}
