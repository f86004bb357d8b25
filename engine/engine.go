// Package engine implements the position lifecycle: a single FLAT/LONG
// position per symbol, bar-by-bar exit rules with fixed precedence, and
// mark-to-market equity accounting. The backtester drives it directly; the
// live trader applies the same rules with order confirmation in between.
package engine

import (
	"time"

	"github.com/rustyeddy/cryptobot/internal/id"
	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/risk"
	"github.com/rustyeddy/cryptobot/strategies"
)

// State of the position. There is no short side.
type State int

const (
	Flat State = iota
	Long
)

func (s State) String() string {
	if s == Long {
		return "LONG"
	}
	return "FLAT"
}

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitTakeProfit ExitReason = "take_profit"
	ExitStopLoss   ExitReason = "stop_loss"
	ExitSignal     ExitReason = "signal"
	ExitManual     ExitReason = "manual"
)

// Position is the mutable state of the one open position. Entry fields are
// set iff State == Long.
type Position struct {
	State      State
	EntryPrice float64
	EntryTime  time.Time
	Size       float64 // base asset units
}

// Trade is one completed round trip. Immutable once emitted.
type Trade struct {
	ID         string
	Symbol     string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Size       float64
	ReturnPct  float64
	ExitReason ExitReason
}

// EquityPoint is one mark-to-market sample of account value.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Config fixes the parameters of one engine run.
type Config struct {
	Symbol         string
	InitialBalance float64
	Risk           risk.Params
}

// Engine owns the position and the cash balance. It is not safe for
// concurrent use; both the backtester and the live loop are single drivers.
type Engine struct {
	cfg     Config
	balance float64
	pos     Position
	trades  []Trade
	curve   []EquityPoint
}

func New(cfg Config) *Engine {
	return &Engine{
		cfg:     cfg,
		balance: cfg.InitialBalance,
	}
}

// Step consumes one closed candle and its signal. Exits are evaluated before
// entries, in strict precedence: stop-loss on the bar low, then take-profit
// on the bar high, then signal exit at the close. If the stop and the target
// are both inside the bar's range, the stop wins; a single bar cannot be
// assumed to have reached the better price first. A bar that exits never
// re-enters in the same step.
//
// Step returns the completed trade if this bar closed the position, else nil.
func (e *Engine) Step(c market.Candle, sig strategies.Signal) *Trade {
	var closed *Trade

	if e.pos.State == Long {
		if stop := e.cfg.Risk.StopLevel(e.pos.EntryPrice); stop > 0 && c.Low <= stop {
			closed = e.close(stop, c.Time, ExitStopLoss)
		} else if take := e.cfg.Risk.TakeLevel(e.pos.EntryPrice); take > 0 && c.High >= take {
			closed = e.close(take, c.Time, ExitTakeProfit)
		} else if sig == strategies.Exit {
			closed = e.close(c.Close, c.Time, ExitSignal)
		}
	}

	if e.pos.State == Flat && closed == nil && sig == strategies.EnterLong {
		e.pos = Position{
			State:      Long,
			EntryPrice: c.Close,
			EntryTime:  c.Time,
			Size:       risk.SizeAllIn(e.balance, e.cfg.Risk.FeeRate, c.Close),
		}
		e.balance = 0
	}

	e.curve = append(e.curve, EquityPoint{Time: c.Time, Equity: e.equityAt(c.Close)})

	return closed
}

// CloseAt force-closes an open position at the given price, e.g. at the end
// of a replay or on live shutdown. Returns nil if the position is flat.
func (e *Engine) CloseAt(price float64, t time.Time, reason ExitReason) *Trade {
	if e.pos.State != Long {
		return nil
	}
	if reason == "" {
		reason = ExitManual
	}
	return e.close(price, t, reason)
}

func (e *Engine) close(price float64, t time.Time, reason ExitReason) *Trade {
	p := e.pos

	// Proceeds land in cash with the exit fee taken out. ReturnPct is the raw
	// price move so it matches the SL/TP thresholds it is compared against.
	e.balance = p.Size * price * (1 - e.cfg.Risk.FeeRate)

	trade := Trade{
		ID:         id.New(),
		Symbol:     e.cfg.Symbol,
		EntryTime:  p.EntryTime,
		ExitTime:   t,
		EntryPrice: p.EntryPrice,
		ExitPrice:  price,
		Size:       p.Size,
		ReturnPct:  risk.ReturnPct(p.EntryPrice, price),
		ExitReason: reason,
	}
	e.trades = append(e.trades, trade)
	e.pos = Position{}

	return &e.trades[len(e.trades)-1]
}

func (e *Engine) equityAt(price float64) float64 {
	if e.pos.State == Long {
		return e.pos.Size * price
	}
	return e.balance
}

// Position returns a copy of the current position.
func (e *Engine) Position() Position { return e.pos }

// Balance returns the cash balance (zero while a position is open).
func (e *Engine) Balance() float64 { return e.balance }

// Equity returns the mark-to-market account value at the given price.
func (e *Engine) Equity(price float64) float64 { return e.equityAt(price) }

// Trades returns all completed trades in close order.
func (e *Engine) Trades() []Trade { return e.trades }

// EquityCurve returns one point per processed step.
func (e *Engine) EquityCurve() []EquityPoint { return e.curve }
