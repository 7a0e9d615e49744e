package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval())
	assert.Equal(t, uint16(0x1532), cfg.VendorID)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "razerbatt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"product_id: 0x007B\npoll_interval_s: 60\nlow_battery_threshold: 15\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x007B), cfg.ProductID)
	assert.Equal(t, time.Minute, cfg.PollInterval())
	assert.Equal(t, 15, cfg.LowBatteryThreshold)
	// Untouched fields keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.FastInterval())
	assert.True(t, cfg.LowBatteryNotify)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll_interval_s: [nope"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero interval", func(c *Config) { c.PollIntervalS = 0 }, false},
		{"negative timeout", func(c *Config) { c.AttemptTimeout = -1 }, false},
		{"fast above cap", func(c *Config) { c.FastIntervalS = 600 }, false},
		{"backoff above cap", func(c *Config) { c.BackoffBaseMs = 5000 }, false},
		{"threshold out of range", func(c *Config) { c.LowBatteryThreshold = 101 }, false},
		{"zero vendor", func(c *Config) { c.VendorID = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
