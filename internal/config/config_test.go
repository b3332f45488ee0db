package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValues(t *testing.T) {
	config := Default()

	assert.Equal(t, "BTCUSDT", config.Trading.Symbol)
	assert.Equal(t, 900, config.Analysis.IntervalSeconds)
	assert.Equal(t, 0.02, config.Analysis.Estimator.MinActualFraction)
	assert.Equal(t, 100, config.Analysis.Estimator.MinTradeCount)
	assert.Equal(t, 50.0, config.Analysis.BuyZone.MinBucketValue)
	assert.Equal(t, 50000.0, config.Analysis.Signal.HighVolumeValue)
	assert.InDelta(t, 1.0/3.0, config.Analysis.Signal.WeakRatio, 1e-12)
}

func TestDefaultSharesCoverAllWindows(t *testing.T) {
	shares := Default().Analysis.Estimator.Shares

	for _, window := range []string{"15m", "30m", "1h", "4h"} {
		share, ok := shares[window]
		require.True(t, ok, "окно %s", window)
		assert.Greater(t, share.Up, share.Down, "окно %s: рост должен давать больший оборот", window)
	}
}

func TestShareFallsBackToDefaults(t *testing.T) {
	// В конфиге задано только одно окно, остальные берутся из умолчаний
	estimator := EstimatorConfig{
		Shares: map[string]WindowShare{
			"1h": {Up: 0.1, Down: 0.08},
		},
	}

	assert.Equal(t, WindowShare{Up: 0.1, Down: 0.08}, estimator.Share("1h"))
	assert.Equal(t, WindowShare{Up: 0.015, Down: 0.011}, estimator.Share("15m"))
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("trading:\n  symbol: ETHUSDT\nanalysis:\n  interval_seconds: 300\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", config.Trading.Symbol)
	assert.Equal(t, 300, config.Analysis.IntervalSeconds)
	// Незатронутые файлом значения остаются дефолтными
	assert.Equal(t, 100, config.Analysis.Estimator.MinTradeCount)
}

func TestEnvOverridesSecrets(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("BINANCE_API_KEY", "test-key")

	config := Default()
	applyEnvOverrides(config)

	assert.Equal(t, "test-token", config.Telegram.Token)
	assert.Equal(t, "test-key", config.Binance.APIKey)
}
