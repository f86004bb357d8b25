package indicators

import (
	"fmt"

	"github.com/rustyeddy/cryptobot/market"
)

// RSI is a streaming Relative Strength Index using a simple rolling average
// of gains and losses (not Wilder smoothing), so a backtest over the same
// candles reproduces the same values as the live poll.
type RSI struct {
	period  int
	deltas  []float64
	last    float64
	hasLast bool
}

// NewRSI creates an RSI indicator with the given period.
func NewRSI(period int) *RSI {
	return &RSI{
		period: period,
		deltas: make([]float64, 0, period),
	}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

// Warmup is period+1 candles: the first close only seeds the delta series.
func (r *RSI) Warmup() int {
	return r.period + 1
}

func (r *RSI) Reset() {
	r.deltas = r.deltas[:0]
	r.last = 0
	r.hasLast = false
}

func (r *RSI) Update(c market.Candle) {
	if !r.hasLast {
		r.last = c.Close
		r.hasLast = true
		return
	}

	r.deltas = append(r.deltas, c.Close-r.last)
	r.last = c.Close
	if len(r.deltas) > r.period {
		r.deltas = r.deltas[1:]
	}
}

func (r *RSI) Ready() bool {
	return len(r.deltas) >= r.period
}

func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}

	var gain, loss float64
	for _, d := range r.deltas {
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	gain /= float64(r.period)
	loss /= float64(r.period)

	if loss == 0 {
		if gain == 0 {
			// flat window, no direction either way
			return 50
		}
		return 100
	}

	rs := gain / loss
	return 100 - 100/(1+rs)
}
