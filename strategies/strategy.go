// Package strategies contains the signal generators selectable by
// configuration. Every variant implements the same Strategy interface; the
// engine does not know which one is driving it.
package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/cryptobot/indicators"
)

// Signal is the per-bar decision of a strategy.
type Signal int

const (
	None Signal = iota
	EnterLong
	Exit
)

func (s Signal) String() string {
	switch s {
	case EnterLong:
		return "enter_long"
	case Exit:
		return "exit"
	default:
		return "none"
	}
}

// Strategy evaluates one annotated candle row at a time. Evaluate must be
// pure: it may read the current and previous row but never anything later
// (no lookahead).
type Strategy interface {
	// Name returns the configuration name of the strategy, e.g. "rsi_v1".
	Name() string

	// Indicators returns the indicators whose columns Evaluate reads.
	// The caller annotates candle rows with exactly these.
	Indicators() []indicators.Indicator

	// Evaluate returns the signal for cur. prev is the zero Row for the
	// first bar of a series.
	Evaluate(prev, cur indicators.Row) Signal
}

// Params carries the tunable thresholds for the built-in strategies. Zero
// values fall back to the defaults of the selected variant.
type Params struct {
	EntryRSI float64 // rsi_v1: buy below
	ExitRSI  float64 // rsi_v1: sell above

	Lower float64 // rsi_reversal, rsi_trend: buy below
	Upper float64 // rsi_reversal, rsi_trend: sell above

	TrendMA int // rsi_trend: SMA period for the trend filter

	Fast int // sma_cross: fast SMA period
	Slow int // sma_cross: slow SMA period
}

// ByName builds a strategy from its configuration name.
func ByName(name string, p Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rsi_v1", "rsiv1":
		return NewRSIV1(p.EntryRSI, p.ExitRSI), nil

	case "rsi_reversal":
		return NewRSIReversal(p.Lower, p.Upper), nil

	case "rsi_trend":
		return NewRSITrend(p.Lower, p.Upper, p.TrendMA)

	case "sma_cross", "sma_crossover":
		return NewSMACross(p.Fast, p.Slow)

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: rsi_v1, rsi_reversal, rsi_trend, sma_cross)", name)
	}
}

// Require returns the column names a strategy needs on every evaluated row.
func Require(s Strategy) []string {
	inds := s.Indicators()
	names := make([]string, len(inds))
	for i, ind := range inds {
		names[i] = ind.Name()
	}
	return names
}

// MaxWarmup returns the longest warmup among the strategy's indicators.
func MaxWarmup(s Strategy) int {
	warmup := 0
	for _, ind := range s.Indicators() {
		if w := ind.Warmup(); w > warmup {
			warmup = w
		}
	}
	return warmup
}
