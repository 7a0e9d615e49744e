// Package config loads the daemon configuration from YAML. Every field has
// a working default; an absent file yields the default configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration. Coarse intervals are in seconds,
// query-level timings in milliseconds.
type Config struct {
	// VendorID/ProductID select the device. ProductID 0 means the first
	// battery-capable product found.
	VendorID  uint16 `yaml:"vendor_id"`
	ProductID uint16 `yaml:"product_id"`

	PollIntervalS  int `yaml:"poll_interval_s"`
	FastIntervalS  int `yaml:"fast_interval_s"`
	FastMaxS       int `yaml:"fast_max_s"`
	WakeSettleMs   int `yaml:"wake_settle_ms"`
	StalenessS     int `yaml:"staleness_s"`
	AttemptTimeout int `yaml:"attempt_timeout_ms"`
	AttemptsPerIf  int `yaml:"attempts_per_interface"`
	BackoffBaseMs  int `yaml:"backoff_base_ms"`
	BackoffMaxMs   int `yaml:"backoff_max_ms"`

	LowBatteryThreshold int  `yaml:"low_battery_threshold"`
	LowBatteryNotify    bool `yaml:"low_battery_notify"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		VendorID:            0x1532,
		PollIntervalS:       300,
		FastIntervalS:       30,
		FastMaxS:            300,
		WakeSettleMs:        2000,
		StalenessS:          600,
		AttemptTimeout:      600,
		AttemptsPerIf:       2,
		BackoffBaseMs:       200,
		BackoffMaxMs:        2000,
		LowBatteryThreshold: 20,
		LowBatteryNotify:    true,
	}
}

// Load reads a YAML file over the defaults. A missing file is not an
// error; anything else is.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks configuration correctness. It does not mutate.
func Validate(cfg *Config) error {
	if cfg.VendorID == 0 {
		return errors.New("vendor_id must be set")
	}
	positives := map[string]int{
		"poll_interval_s":        cfg.PollIntervalS,
		"fast_interval_s":        cfg.FastIntervalS,
		"fast_max_s":             cfg.FastMaxS,
		"wake_settle_ms":         cfg.WakeSettleMs,
		"staleness_s":            cfg.StalenessS,
		"attempt_timeout_ms":     cfg.AttemptTimeout,
		"attempts_per_interface": cfg.AttemptsPerIf,
		"backoff_base_ms":        cfg.BackoffBaseMs,
		"backoff_max_ms":         cfg.BackoffMaxMs,
	}
	for name, v := range positives {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if cfg.FastIntervalS > cfg.FastMaxS {
		return fmt.Errorf("fast_interval_s (%d) exceeds fast_max_s (%d)", cfg.FastIntervalS, cfg.FastMaxS)
	}
	if cfg.BackoffBaseMs > cfg.BackoffMaxMs {
		return fmt.Errorf("backoff_base_ms (%d) exceeds backoff_max_ms (%d)", cfg.BackoffBaseMs, cfg.BackoffMaxMs)
	}
	if cfg.LowBatteryThreshold < 0 || cfg.LowBatteryThreshold > 100 {
		return fmt.Errorf("low_battery_threshold must be within 0-100, got %d", cfg.LowBatteryThreshold)
	}
	return nil
}

// Duration accessors.

func (c *Config) PollInterval() time.Duration   { return time.Duration(c.PollIntervalS) * time.Second }
func (c *Config) FastInterval() time.Duration   { return time.Duration(c.FastIntervalS) * time.Second }
func (c *Config) FastMax() time.Duration        { return time.Duration(c.FastMaxS) * time.Second }
func (c *Config) WakeSettle() time.Duration     { return time.Duration(c.WakeSettleMs) * time.Millisecond }
func (c *Config) Staleness() time.Duration      { return time.Duration(c.StalenessS) * time.Second }
func (c *Config) AttemptDeadline() time.Duration {
	return time.Duration(c.AttemptTimeout) * time.Millisecond
}
func (c *Config) BackoffBase() time.Duration { return time.Duration(c.BackoffBaseMs) * time.Millisecond }
func (c *Config) BackoffMax() time.Duration  { return time.Duration(c.BackoffMaxMs) * time.Millisecond }
