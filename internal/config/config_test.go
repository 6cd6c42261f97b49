package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("URLS", "[https://api.example.com/price?symbol=BTCUSDT],[https://api.example.com/price?symbol=ETHUSDT]")
	t.Setenv("INTERVAL", "500")
	t.Setenv("SMA_N", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://api.example.com/price?symbol=BTCUSDT",
		"https://api.example.com/price?symbol=ETHUSDT",
	}, cfg.URLs)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)
	assert.Equal(t, 10, cfg.SMAWindow)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, defaultIP, cfg.IP)
	assert.Equal(t, defaultPort, cfg.Port)
}

func TestLoadMissingRequiredAggregatesErrors(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URLS")
	assert.Contains(t, err.Error(), "INTERVAL")
	assert.Contains(t, err.Error(), "SMA_N")
}

func TestLoadOverridesOptional(t *testing.T) {
	t.Setenv("URLS", "https://api.example.com/price?symbol=BTCUSDT")
	t.Setenv("INTERVAL", "1000")
	t.Setenv("SMA_N", "5")
	t.Setenv("TIME_OUT", "2500")
	t.Setenv("IP", "0.0.0.0")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "0.0.0.0", cfg.IP)
	assert.Equal(t, 9090, cfg.Port)
}
