package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBacktestYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "bt.yaml", `
symbol: ETHUSDT
interval: 1h
candles: 500
initial_balance: 25000
strategy:
  name: rsi_trend
  lower: 35
  upper: 65
  trend_ma: 30
stop_loss_pct: 0.03
take_profit_pct: 0.06
fee_rate: 0.001
`)

	cfg, err := LoadBacktest(path)
	assert.NoError(t, err)
	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, "1h", cfg.Interval)
	assert.Equal(t, 500, cfg.Candles)
	assert.Equal(t, "rsi_trend", cfg.Strategy.Name)
	assert.Equal(t, 30, cfg.Strategy.TrendMA)
	assert.Equal(t, 0.03, cfg.StopLossPct)
}

func TestLoadBacktestJSON(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "bt.json",
		`{"symbol": "BTCUSDT", "interval": "15m", "candles": 300, "initial_balance": 1000, "strategy": {"name": "sma_cross", "fast": 5, "slow": 30}}`)

	cfg, err := LoadBacktest(path)
	assert.NoError(t, err)
	assert.Equal(t, "sma_cross", cfg.Strategy.Name)
	assert.Equal(t, 5, cfg.Strategy.Fast)
	// defaults fill unset fields
	assert.Equal(t, 0.0004, cfg.FeeRate)
}

func TestLoadBacktestInvalid(t *testing.T) {
	t.Parallel()

	_, err := LoadBacktest(writeConfig(t, "bad.yaml", "symbol: ''\ninterval: 15m\n"))
	assert.Error(t, err)

	_, err = LoadBacktest(writeConfig(t, "bad2.yaml", "symbol: BTCUSDT\ninterval: 3m\n"))
	assert.Error(t, err)

	_, err = LoadBacktest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBacktestValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultBacktest()
	assert.NoError(t, cfg.Validate())

	neg := DefaultBacktest()
	neg.FeeRate = -0.1
	assert.Error(t, neg.Validate())

	noStrategy := DefaultBacktest()
	noStrategy.Strategy.Name = ""
	assert.Error(t, noStrategy.Validate())
}
