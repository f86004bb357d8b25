package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/cryptobot/market"
)

// Backtest is the file-based configuration for a backtest run.
type Backtest struct {
	Symbol         string  `json:"symbol" yaml:"symbol"`
	Interval       string  `json:"interval" yaml:"interval"`
	Candles        int     `json:"candles" yaml:"candles"`
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`

	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`

	StopLossPct   float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	TakeProfitPct float64 `json:"take_profit_pct" yaml:"take_profit_pct"`
	FeeRate       float64 `json:"fee_rate" yaml:"fee_rate"`
}

// StrategyConfig selects a strategy variant and its thresholds.
type StrategyConfig struct {
	Name     string  `json:"name" yaml:"name"`
	EntryRSI float64 `json:"entry_rsi,omitempty" yaml:"entry_rsi,omitempty"`
	ExitRSI  float64 `json:"exit_rsi,omitempty" yaml:"exit_rsi,omitempty"`
	Lower    float64 `json:"lower,omitempty" yaml:"lower,omitempty"`
	Upper    float64 `json:"upper,omitempty" yaml:"upper,omitempty"`
	TrendMA  int     `json:"trend_ma,omitempty" yaml:"trend_ma,omitempty"`
	Fast     int     `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow     int     `json:"slow,omitempty" yaml:"slow,omitempty"`
}

// DefaultBacktest mirrors the defaults of the dashboard's backtest form.
func DefaultBacktest() Backtest {
	return Backtest{
		Symbol:         "BTCUSDT",
		Interval:       "15m",
		Candles:        1000,
		InitialBalance: 10_000,
		Strategy:       StrategyConfig{Name: "rsi_v1"},
		TakeProfitPct:  0.04,
		FeeRate:        0.0004,
	}
}

// LoadBacktest reads a backtest configuration file. YAML is tried first,
// then JSON.
func LoadBacktest(path string) (Backtest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Backtest{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultBacktest()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		cfg = DefaultBacktest()
		if jsonErr := json.Unmarshal(data, &cfg); jsonErr != nil {
			return Backtest{}, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Backtest{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration before any run starts.
func (c Backtest) Validate() error {
	if strings.TrimSpace(c.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if _, err := market.ParseInterval(c.Interval); err != nil {
		return err
	}
	if c.Candles <= 0 {
		return fmt.Errorf("candles must be positive, got %d", c.Candles)
	}
	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial_balance must be positive, got %v", c.InitialBalance)
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.StopLossPct < 0 || c.TakeProfitPct < 0 || c.FeeRate < 0 {
		return fmt.Errorf("stop_loss_pct, take_profit_pct and fee_rate must not be negative")
	}
	return nil
}
