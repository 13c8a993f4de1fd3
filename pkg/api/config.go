package api

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jingkaihe/p4gate/internal/errx"
)

const (
	DefaultBinary         = "p4"
	DefaultCommandTimeout = 60 * time.Second
)

// Config is the process-level configuration of p4gate. Connections and
// preferences are not part of it; they live in the settings store.
type Config struct {
	// Binary is the p4 executable name or path.
	Binary string `mapstructure:"binary" json:"binary,omitempty"`

	// CommandTimeout bounds every p4 invocation. Values <= 0 use
	// DefaultCommandTimeout.
	CommandTimeout time.Duration `mapstructure:"timeout" json:"timeout,omitempty"`

	// StorePath is the sqlite settings database.
	StorePath string `mapstructure:"store_path" json:"store_path,omitempty"`

	// EventsPath enables a JSON-L audit log of p4 commands and
	// interception decisions when set.
	EventsPath string `mapstructure:"events_path" json:"events_path,omitempty"`

	// AssumeYes answers every confirmation with yes.
	AssumeYes bool `mapstructure:"yes" json:"yes,omitempty"`
}

// GetBinary returns the configured p4 binary or the default.
func (c *Config) GetBinary() string {
	if c != nil && strings.TrimSpace(c.Binary) != "" {
		return c.Binary
	}
	return DefaultBinary
}

// GetCommandTimeout returns the configured timeout or the default.
func (c *Config) GetCommandTimeout() time.Duration {
	if c != nil && c.CommandTimeout > 0 {
		return c.CommandTimeout
	}
	return DefaultCommandTimeout
}

// GetStorePath returns the settings database path, defaulting to the user
// config directory.
func (c *Config) GetStorePath() (string, error) {
	if c != nil && c.StorePath != "" {
		return c.StorePath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errx.Wrap(ErrInvalidConfig, err)
	}
	return filepath.Join(dir, "p4gate", "settings.db"), nil
}

// Validate checks config invariants.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.CommandTimeout < 0 {
		return errx.With(ErrInvalidConfig, ": p4.timeout cannot be negative")
	}
	if c.EventsPath != "" && !filepath.IsAbs(c.EventsPath) {
		return errx.With(ErrInvalidConfig, ": events.path must be absolute, got %q", c.EventsPath)
	}
	return nil
}
