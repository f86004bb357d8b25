// Package live runs the polling trade loop against a real exchange. Unlike
// the backtest engine it never simulates a fill: exchange state only changes
// when an order actually went through, so a failed buy leaves the bot flat
// and a failed sell leaves it long.
package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/cryptobot/binance"
	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/indicators"
	"github.com/rustyeddy/cryptobot/internal/id"
	"github.com/rustyeddy/cryptobot/journal"
	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/risk"
	"github.com/rustyeddy/cryptobot/strategies"
)

// BarSource supplies recent candles for a symbol. *binance.Client satisfies it.
type BarSource interface {
	Candles(ctx context.Context, symbol string, interval market.Interval, limit int) ([]market.Candle, error)
}

// OrderSubmitter places market orders. *binance.Client satisfies it.
type OrderSubmitter interface {
	SubmitMarketOrder(ctx context.Context, symbol string, side binance.Side, quantity float64) (binance.Fill, error)
}

// position is the trader's in-memory open position. The venue holds the
// asset; this only remembers what we paid so exits can be judged.
type position struct {
	Symbol     string
	Size       float64
	EntryPrice float64
	EntryTime  time.Time
}

// Trader is the polling loop. Each cycle re-reads the runtime state, fetches
// history, evaluates the RSI strategy on the latest bar and, when warranted,
// submits one market order. A cycle always runs to completion; cancellation
// is honored between cycles.
type Trader struct {
	Source  BarSource
	Orders  OrderSubmitter
	States  *config.StateStore
	Journal journal.Journal // optional; completed trades are appended here
	Log     *zap.Logger    // optional; nil means no-op
	Poll    time.Duration  // sleep between cycles, default one minute

	pos *position
}

// New wires a trader. source and orders are required; states carries the
// operator-editable runtime document.
func New(source BarSource, orders OrderSubmitter, states *config.StateStore) (*Trader, error) {
	if source == nil || orders == nil || states == nil {
		return nil, errors.New("live: source, orders and state store are all required")
	}
	return &Trader{
		Source: source,
		Orders: orders,
		States: states,
		Poll:   time.Minute,
	}, nil
}

// Run cycles until the context is canceled. Cycle errors are logged and the
// loop continues; a dead exchange or a bad config should not kill the bot.
func (t *Trader) Run(ctx context.Context) error {
	log := t.log()
	log.Info("live trader starting", zap.Duration("poll", t.pollInterval()))

	for {
		if err := t.Cycle(ctx); err != nil {
			log.Warn("cycle failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			log.Info("live trader stopping")
			return ctx.Err()
		case <-time.After(t.pollInterval()):
		}
	}
}

// Cycle executes one poll: read state, fetch bars, evaluate, maybe trade.
func (t *Trader) Cycle(ctx context.Context) error {
	log := t.log()

	state := t.States.Load()
	if !state.BotEnabled {
		log.Debug("bot disabled, idling")
		return nil
	}

	interval, err := market.ParseInterval(state.Interval)
	if err != nil {
		return fmt.Errorf("runtime state: %w", err)
	}

	strat := strategies.NewRSIV1(state.EntryRSI, state.ExitRSI)

	candles, err := t.Source.Candles(ctx, state.Symbol, interval, state.HistoryCandles)
	if err != nil {
		return fmt.Errorf("fetch candles: %w", err)
	}
	if len(candles) <= strategies.MaxWarmup(strat) {
		return fmt.Errorf("only %d candles for %s, need more than %d",
			len(candles), state.Symbol, strategies.MaxWarmup(strat))
	}

	rows := indicators.Annotate(candles, strat.Indicators())
	cur := rows[len(rows)-1]
	prev := rows[len(rows)-2]
	if !cur.Has(strategies.Require(strat)...) {
		return fmt.Errorf("indicators not ready after %d candles", len(candles))
	}

	sig := strat.Evaluate(prev, cur)
	rsi, _ := cur.Column(strategies.Require(strat)[0])

	log.Info("cycle",
		zap.String("symbol", state.Symbol),
		zap.Float64("close", cur.Close),
		zap.Float64("rsi", rsi),
		zap.String("signal", sig.String()),
		zap.Bool("in_position", t.pos != nil))

	if t.pos != nil {
		return t.manageLong(ctx, state, cur, sig)
	}
	if sig == strategies.EnterLong {
		return t.enter(ctx, state, cur)
	}
	return nil
}

// InPosition reports whether the trader currently holds the asset.
func (t *Trader) InPosition() bool { return t.pos != nil }

// manageLong decides whether the open position exits this cycle. Take-profit
// on the latest close outranks the strategy's exit signal.
func (t *Trader) manageLong(ctx context.Context, state config.RuntimeState, cur indicators.Row, sig strategies.Signal) error {
	log := t.log()

	var reason string
	switch {
	case state.TakeProfitPct > 0 && cur.Close >= t.pos.EntryPrice*(1+state.TakeProfitPct):
		reason = "take_profit"
	case sig == strategies.Exit:
		reason = "signal"
	default:
		log.Info("holding",
			zap.String("symbol", t.pos.Symbol),
			zap.Float64("entry", t.pos.EntryPrice),
			zap.Float64("close", cur.Close),
			zap.Float64("unrealized_pct", risk.ReturnPct(t.pos.EntryPrice, cur.Close)))
		return nil
	}

	fill, err := t.Orders.SubmitMarketOrder(ctx, t.pos.Symbol, binance.Sell, t.pos.Size)
	if err != nil {
		// Still long. The next cycle re-evaluates and tries again.
		return fmt.Errorf("exit %s: %w", t.pos.Symbol, err)
	}
	if fill.Skipped {
		log.Warn("exit below lot minimum, position held",
			zap.String("symbol", t.pos.Symbol),
			zap.Float64("size", t.pos.Size))
		return nil
	}

	exitPrice := fill.Price
	if exitPrice == 0 {
		exitPrice = cur.Close
	}

	rec := journal.TradeRecord{
		TradeID:    id.New(),
		Time:       cur.Time.UTC(),
		Symbol:     t.pos.Symbol,
		Side:       "LONG",
		Size:       t.pos.Size,
		EntryPrice: t.pos.EntryPrice,
		ExitPrice:  exitPrice,
		ReturnPct:  risk.ReturnPct(t.pos.EntryPrice, exitPrice),
		ExitReason: reason,
	}

	log.Info("closed position",
		zap.String("symbol", rec.Symbol),
		zap.Float64("entry", rec.EntryPrice),
		zap.Float64("exit", rec.ExitPrice),
		zap.Float64("return_pct", rec.ReturnPct),
		zap.String("reason", rec.ExitReason))

	t.pos = nil

	if t.Journal != nil {
		if err := t.Journal.RecordTrade(rec); err != nil {
			// The venue trade happened either way; losing a ledger row is
			// worth a loud log, not a dead loop.
			log.Error("journal write failed", zap.Error(err))
		}
	}
	return nil
}

// enter buys position_size_usdt worth at the latest close.
func (t *Trader) enter(ctx context.Context, state config.RuntimeState, cur indicators.Row) error {
	log := t.log()

	qty := risk.SizeFromNotional(state.PositionSizeUSDT, cur.Close)
	if qty <= 0 {
		return fmt.Errorf("bad close price %v for %s", cur.Close, state.Symbol)
	}

	fill, err := t.Orders.SubmitMarketOrder(ctx, state.Symbol, binance.Buy, qty)
	if err != nil {
		// Still flat.
		return fmt.Errorf("enter %s: %w", state.Symbol, err)
	}
	if fill.Skipped {
		log.Info("entry below lot minimum, skipped",
			zap.String("symbol", state.Symbol),
			zap.Float64("quantity", qty))
		return nil
	}

	size := fill.Quantity
	if size == 0 {
		size = qty
	}
	entry := fill.Price
	if entry == 0 {
		entry = cur.Close
	}

	t.pos = &position{
		Symbol:     state.Symbol,
		Size:       size,
		EntryPrice: entry,
		EntryTime:  cur.Time.UTC(),
	}

	log.Info("opened position",
		zap.String("symbol", state.Symbol),
		zap.Float64("size", size),
		zap.Float64("entry", entry))
	return nil
}

func (t *Trader) pollInterval() time.Duration {
	if t.Poll <= 0 {
		return time.Minute
	}
	return t.Poll
}

func (t *Trader) log() *zap.Logger {
	if t.Log == nil {
		return zap.NewNop()
	}
	return t.Log
}
