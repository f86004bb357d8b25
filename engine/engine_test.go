package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/risk"
	"github.com/rustyeddy/cryptobot/strategies"
)

var base = time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

// flatCandles builds candles where open=high=low=close, one minute apart.
func flatCandles(closes ...float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{
			Open: c, High: c, Low: c, Close: c,
			Time: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func newEngine(t *testing.T, p risk.Params) *Engine {
	t.Helper()
	return New(Config{
		Symbol:         "BTCUSDT",
		InitialBalance: 10_000,
		Risk:           p,
	})
}

func TestFlatNoSignalNoDrift(t *testing.T) {
	t.Parallel()

	e := newEngine(t, risk.Params{})
	for _, c := range flatCandles(100, 105, 95, 120) {
		trade := e.Step(c, strategies.None)
		assert.Nil(t, trade)
	}

	curve := e.EquityCurve()
	assert.Len(t, curve, 4)
	for _, p := range curve {
		assert.Equal(t, 10_000.0, p.Equity)
	}
	assert.Equal(t, Flat, e.Position().State)
}

func TestEntrySetsPosition(t *testing.T) {
	t.Parallel()

	fee := 0.0004
	e := newEngine(t, risk.Params{FeeRate: fee})
	c := flatCandles(100)[0]

	trade := e.Step(c, strategies.EnterLong)
	assert.Nil(t, trade)

	pos := e.Position()
	assert.Equal(t, Long, pos.State)
	assert.Equal(t, 100.0, pos.EntryPrice)
	assert.Equal(t, c.Time, pos.EntryTime)
	assert.InDelta(t, 10_000*(1-fee)/100, pos.Size, 1e-9)
	assert.Equal(t, 0.0, e.Balance())

	// equity marks to the close, entry fee already paid
	assert.InDelta(t, 10_000*(1-fee), e.EquityCurve()[0].Equity, 1e-9)
}

func TestSignalExitFeeSymmetry(t *testing.T) {
	t.Parallel()

	fee := 0.001
	e := newEngine(t, risk.Params{FeeRate: fee})
	candles := flatCandles(100, 110)

	assert.Nil(t, e.Step(candles[0], strategies.EnterLong))
	trade := e.Step(candles[1], strategies.Exit)

	assert.NotNil(t, trade)
	assert.Equal(t, ExitSignal, trade.ExitReason)
	assert.Equal(t, 100.0, trade.EntryPrice)
	assert.Equal(t, 110.0, trade.ExitPrice)
	assert.InDelta(t, 10.0, trade.ReturnPct, 1e-9)

	// both legs pay the fee
	wantBalance := 10_000 * (1 - fee) / 100 * 110 * (1 - fee)
	assert.InDelta(t, wantBalance, e.Balance(), 1e-9)
	assert.Equal(t, Flat, e.Position().State)
}

func TestTakeProfitScenario(t *testing.T) {
	// closes [100, 90, 95, 130, 120], enter at bar 0, TP 10%:
	// exit at bar 3 when the high reaches 110.
	t.Parallel()

	e := newEngine(t, risk.Params{TakeProfitPct: 0.10})
	candles := flatCandles(100, 90, 95, 130, 120)

	var trades []Trade
	for i, c := range candles {
		sig := strategies.None
		if i == 0 {
			sig = strategies.EnterLong
		}
		if tr := e.Step(c, sig); tr != nil {
			trades = append(trades, *tr)
		}
	}

	assert.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, ExitTakeProfit, tr.ExitReason)
	assert.Equal(t, candles[3].Time, tr.ExitTime)
	assert.Equal(t, 110.0, tr.ExitPrice)
	assert.InDelta(t, 10.0, tr.ReturnPct, 1e-9)
}

func TestStopLossPreemptsLaterTakeProfit(t *testing.T) {
	// same closes with SL 5%: bar 1 low 90 <= 95 stops out first.
	t.Parallel()

	e := newEngine(t, risk.Params{StopLossPct: 0.05, TakeProfitPct: 0.10})
	candles := flatCandles(100, 90, 95, 130, 120)

	var trades []Trade
	for i, c := range candles {
		sig := strategies.None
		if i == 0 {
			sig = strategies.EnterLong
		}
		if tr := e.Step(c, sig); tr != nil {
			trades = append(trades, *tr)
		}
	}

	assert.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, ExitStopLoss, tr.ExitReason)
	assert.Equal(t, candles[1].Time, tr.ExitTime)
	assert.Equal(t, 95.0, tr.ExitPrice)
	assert.InDelta(t, -5.0, tr.ReturnPct, 1e-9)
}

func TestStopLossWinsWhenBothHitSameBar(t *testing.T) {
	t.Parallel()

	e := newEngine(t, risk.Params{StopLossPct: 0.05, TakeProfitPct: 0.05})
	entry := flatCandles(100)[0]
	assert.Nil(t, e.Step(entry, strategies.EnterLong))

	// one wide bar spanning both levels (low 90 <= 95, high 110 >= 105)
	wide := market.Candle{
		Open: 100, High: 110, Low: 90, Close: 100,
		Time: base.Add(time.Minute),
	}
	tr := e.Step(wide, strategies.None)

	assert.NotNil(t, tr)
	assert.Equal(t, ExitStopLoss, tr.ExitReason)
	assert.Equal(t, 95.0, tr.ExitPrice)
}

func TestExitBarNeverReenters(t *testing.T) {
	t.Parallel()

	e := newEngine(t, risk.Params{StopLossPct: 0.05})
	assert.Nil(t, e.Step(flatCandles(100)[0], strategies.EnterLong))

	// bar stops out and simultaneously signals a fresh entry; one position
	// event per step, so the entry waits.
	crash := market.Candle{
		Open: 100, High: 100, Low: 90, Close: 92,
		Time: base.Add(time.Minute),
	}
	tr := e.Step(crash, strategies.EnterLong)
	assert.NotNil(t, tr)
	assert.Equal(t, ExitStopLoss, tr.ExitReason)
	assert.Equal(t, Flat, e.Position().State)
}

func TestSignalExitOnlyWhenNoRiskExit(t *testing.T) {
	t.Parallel()

	e := newEngine(t, risk.Params{TakeProfitPct: 0.10})
	assert.Nil(t, e.Step(flatCandles(100)[0], strategies.EnterLong))

	// Exit signal and a TP breach on the same bar: TP precedes signal,
	// exit price is the target level, not the close.
	c := market.Candle{
		Open: 100, High: 112, Low: 99, Close: 108,
		Time: base.Add(time.Minute),
	}
	tr := e.Step(c, strategies.Exit)
	assert.NotNil(t, tr)
	assert.Equal(t, ExitTakeProfit, tr.ExitReason)
	assert.Equal(t, 110.0, tr.ExitPrice)
}

func TestCloseAt(t *testing.T) {
	t.Parallel()

	e := newEngine(t, risk.Params{})
	assert.Nil(t, e.CloseAt(100, base, ExitManual))

	assert.Nil(t, e.Step(flatCandles(100)[0], strategies.EnterLong))
	tr := e.CloseAt(104, base.Add(time.Hour), "")
	assert.NotNil(t, tr)
	assert.Equal(t, ExitManual, tr.ExitReason)
	assert.InDelta(t, 4.0, tr.ReturnPct, 1e-9)
	assert.Equal(t, Flat, e.Position().State)
}

func TestDeterministicReplay(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		{Open: 100, High: 102, Low: 98, Close: 101, Time: base},
		{Open: 101, High: 103, Low: 95, Close: 96, Time: base.Add(time.Minute)},
		{Open: 96, High: 108, Low: 96, Close: 107, Time: base.Add(2 * time.Minute)},
		{Open: 107, High: 110, Low: 101, Close: 103, Time: base.Add(3 * time.Minute)},
	}
	signals := []strategies.Signal{strategies.EnterLong, strategies.None, strategies.Exit, strategies.EnterLong}

	run := func() ([]Trade, []EquityPoint) {
		e := newEngine(t, risk.Params{StopLossPct: 0.04, TakeProfitPct: 0.06, FeeRate: 0.0004})
		for i, c := range candles {
			e.Step(c, signals[i])
		}
		trades := make([]Trade, len(e.Trades()))
		copy(trades, e.Trades())
		for i := range trades {
			trades[i].ID = "" // ULIDs differ between runs by design
		}
		return trades, e.EquityCurve()
	}

	t1, c1 := run()
	t2, c2 := run()
	assert.Equal(t, t1, t2)
	assert.Equal(t, c1, c2)
}
