package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE", StoreMemory)
	t.Setenv("TIMEZONE", "")
	t.Setenv("RECAP_CRON", "")
	t.Setenv("WEEK_START", "")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
	assert.Equal(t, "0 7 * * *", cfg.RecapCron)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "Europe/Paris", cfg.Location().String())
}

func TestValidate(t *testing.T) {
	base := Config{Store: StoreMemory, WeekStart: "monday", Timezone: "UTC"}
	require.NoError(t, base.Validate())

	tests := map[string]func(c *Config){
		"unknown store":     func(c *Config) { c.Store = "sqlite" },
		"week start":        func(c *Config) { c.WeekStart = "friday" },
		"timezone":          func(c *Config) { c.Timezone = "Mars/Olympus" },
		"postgres needs db": func(c *Config) { c.Store = StorePostgres },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLocationFallback(t *testing.T) {
	c := Config{Timezone: "Nowhere/Invalid"}
	assert.Equal(t, time.Local, c.Location())
}
