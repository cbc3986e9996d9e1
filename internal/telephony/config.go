package telephony

import (
	"fmt"
	"os"
	"time"

	"github.com/fieldscope/verity/pkg/formatting"
)

// Config holds call provider connection parameters.
type Config struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"`
	// MaxRecordingSize caps how much recording audio is buffered per fetch,
	// e.g. "50MB". Larger provider payloads are rejected.
	MaxRecordingSize string `toml:"max_recording_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL          string
	APIKey           string
	Timeout          string
	MaxRecordingSize string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// MaxRecordingSizeBytes returns MaxRecordingSize as a byte count.
func (c *Config) MaxRecordingSizeBytes() int64 {
	n, _ := formatting.ParseBytes(c.MaxRecordingSize)
	return n
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxRecordingSize != "" {
		c.MaxRecordingSize = overlay.MaxRecordingSize
	}
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.MaxRecordingSize == "" {
		c.MaxRecordingSize = "50MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.MaxRecordingSize != "" {
		if v := os.Getenv(env.MaxRecordingSize); v != "" {
			c.MaxRecordingSize = v
		}
	}
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if _, err := formatting.ParseBytes(c.MaxRecordingSize); err != nil {
		return fmt.Errorf("invalid max_recording_size: %w", err)
	}
	return nil
}
