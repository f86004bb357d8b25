// Package backtest replays historical candles through a strategy and the
// position engine, producing performance statistics.
package backtest

import (
	"fmt"

	"github.com/rustyeddy/cryptobot/engine"
	"github.com/rustyeddy/cryptobot/indicators"
	"github.com/rustyeddy/cryptobot/journal"
	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/strategies"
)

// Options controls runner behavior.
type Options struct {
	// CloseEnd closes any open position at the final close with a manual
	// exit, so the report reflects realized results only.
	CloseEnd bool
}

// Runner drives the engine over a candle feed. Bars are processed strictly
// in time order, one at a time; each step depends on the position carried
// from the previous one.
type Runner struct {
	Strategy strategies.Strategy
	Config   engine.Config
	Journal  journal.Journal // optional; completed trades are recorded here
	Options  Options
}

// Result of one backtest run.
type Result struct {
	Stats       engine.Stats
	Trades      []engine.Trade
	EquityCurve []engine.EquityPoint
}

// Run replays the feed. Configuration problems (bad series, not enough
// history for the strategy's indicators) fail before any step is processed.
func (r *Runner) Run(feed CandleFeed) (Result, error) {
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	if feed == nil {
		return Result{}, fmt.Errorf("backtest: feed is required")
	}
	defer feed.Close()

	var candles []market.Candle
	for {
		c, ok, err := feed.Next()
		if err != nil {
			return Result{}, fmt.Errorf("backtest: read candles: %w", err)
		}
		if !ok {
			break
		}
		candles = append(candles, c)
	}

	if err := market.ValidateSeries(candles); err != nil {
		return Result{}, fmt.Errorf("backtest: %w", err)
	}

	if warmup := strategies.MaxWarmup(r.Strategy); len(candles) <= warmup {
		return Result{}, fmt.Errorf(
			"backtest: %d candles is not enough history for %s (needs more than %d to warm up %v)",
			len(candles), r.Strategy.Name(), warmup, strategies.Require(r.Strategy))
	}

	rows := indicators.Annotate(candles, r.Strategy.Indicators())

	// every required column must be present once warmup has passed
	if last := rows[len(rows)-1]; !last.Has(strategies.Require(r.Strategy)...) {
		return Result{}, fmt.Errorf(
			"backtest: strategy %s requires columns %v that the indicators never produced",
			r.Strategy.Name(), strategies.Require(r.Strategy))
	}

	eng := engine.New(r.Config)

	var prev indicators.Row
	for _, row := range rows {
		sig := strategies.None
		if row.Has(strategies.Require(r.Strategy)...) {
			sig = r.Strategy.Evaluate(prev, row)
		}

		if trade := eng.Step(row.Candle, sig); trade != nil && r.Journal != nil {
			if err := r.Journal.RecordTrade(journal.FromTrade(*trade)); err != nil {
				return Result{}, fmt.Errorf("backtest: record trade: %w", err)
			}
		}
		prev = row
	}

	if r.Options.CloseEnd {
		last := candles[len(candles)-1]
		if trade := eng.CloseAt(last.Close, last.Time, engine.ExitManual); trade != nil && r.Journal != nil {
			if err := r.Journal.RecordTrade(journal.FromTrade(*trade)); err != nil {
				return Result{}, fmt.Errorf("backtest: record trade: %w", err)
			}
		}
	}

	return Result{
		Stats:       engine.ComputeStats(r.Config.InitialBalance, eng.Trades(), eng.EquityCurve()),
		Trades:      eng.Trades(),
		EquityCurve: eng.EquityCurve(),
	}, nil
}
