// Package risk holds position sizing and exit level arithmetic.
package risk

// Params are the risk settings for a single run. They are immutable for the
// duration of a backtest or live session.
type Params struct {
	// StopLossPct is the loss fraction that forces an exit, e.g. 0.05 for 5%.
	// Zero disables the stop.
	StopLossPct float64

	// TakeProfitPct is the gain fraction that locks in profit, e.g. 0.04 for 4%.
	// Zero disables the target.
	TakeProfitPct float64

	// FeeRate is the fee fraction charged per fill, e.g. 0.0004 for 0.04%.
	FeeRate float64
}

// StopLevel returns the price at which the stop-loss triggers for a long
// entered at entry, or 0 if no stop is configured.
func (p Params) StopLevel(entry float64) float64 {
	if p.StopLossPct <= 0 {
		return 0
	}
	return entry * (1 - p.StopLossPct)
}

// TakeLevel returns the price at which the take-profit triggers for a long
// entered at entry, or 0 if no target is configured.
func (p Params) TakeLevel(entry float64) float64 {
	if p.TakeProfitPct <= 0 {
		return 0
	}
	return entry * (1 + p.TakeProfitPct)
}

// SizeAllIn converts a cash balance into base asset units at the given price,
// with the entry fee taken off the top. Used by the backtester, which trades
// the whole balance per position.
func SizeAllIn(balance, feeRate, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return balance * (1 - feeRate) / price
}

// SizeFromNotional converts a fixed quote currency notional (e.g. 100 USDT)
// into base asset units at the given price. Used by the live trader.
func SizeFromNotional(notional, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return notional / price
}

// ReturnPct is the percent return of a round trip, before fees.
func ReturnPct(entry, exit float64) float64 {
	if entry == 0 {
		return 0
	}
	return (exit - entry) / entry * 100
}
