package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvReviewLeaseTTL     = "VERITY_REVIEW_LEASE_TTL"
	EnvReviewTickInterval = "VERITY_REVIEW_TICK_INTERVAL"
	EnvReviewSweepEvery   = "VERITY_REVIEW_SWEEP_EVERY"
)

// ReviewConfig holds verification workflow timing parameters.
type ReviewConfig struct {
	// LeaseTTL is how long a reviewer holds exclusive access to a response.
	LeaseTTL string `toml:"lease_ttl"`
	// TickInterval is the cadence at which session countdowns are recomputed.
	TickInterval string `toml:"tick_interval"`
	// SweepEvery is the cadence at which expired lease rows are purged.
	SweepEvery string `toml:"sweep_every"`
}

// LeaseTTLDuration returns LeaseTTL as a time.Duration.
func (c *ReviewConfig) LeaseTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.LeaseTTL)
	return d
}

// TickIntervalDuration returns TickInterval as a time.Duration.
func (c *ReviewConfig) TickIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.TickInterval)
	return d
}

// SweepEveryDuration returns SweepEvery as a time.Duration.
func (c *ReviewConfig) SweepEveryDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepEvery)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ReviewConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ReviewConfig) Merge(overlay *ReviewConfig) {
	if overlay.LeaseTTL != "" {
		c.LeaseTTL = overlay.LeaseTTL
	}
	if overlay.TickInterval != "" {
		c.TickInterval = overlay.TickInterval
	}
	if overlay.SweepEvery != "" {
		c.SweepEvery = overlay.SweepEvery
	}
}

func (c *ReviewConfig) loadDefaults() {
	if c.LeaseTTL == "" {
		c.LeaseTTL = "30m"
	}
	if c.TickInterval == "" {
		c.TickInterval = "1s"
	}
	if c.SweepEvery == "" {
		c.SweepEvery = "1m"
	}
}

func (c *ReviewConfig) loadEnv() {
	if v := os.Getenv(EnvReviewLeaseTTL); v != "" {
		c.LeaseTTL = v
	}
	if v := os.Getenv(EnvReviewTickInterval); v != "" {
		c.TickInterval = v
	}
	if v := os.Getenv(EnvReviewSweepEvery); v != "" {
		c.SweepEvery = v
	}
}

func (c *ReviewConfig) validate() error {
	for name, val := range map[string]string{
		"lease_ttl":     c.LeaseTTL,
		"tick_interval": c.TickInterval,
		"sweep_every":   c.SweepEvery,
	} {
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
