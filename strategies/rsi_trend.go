package strategies

import (
	"fmt"

	"github.com/rustyeddy/cryptobot/indicators"
)

// RSITrend is an RSI band with a trend filter: oversold entries are taken
// only while the close is above a moving average, so the bot buys dips in an
// uptrend rather than falling knives.
type RSITrend struct {
	lower float64
	upper float64
	rsi   *indicators.RSI
	trend *indicators.SMA
}

// NewRSITrend creates an rsi_trend strategy. Defaults: lower 30, upper 60,
// trend SMA 20.
func NewRSITrend(lower, upper float64, trendMA int) (*RSITrend, error) {
	if lower <= 0 {
		lower = 30
	}
	if upper <= 0 {
		upper = 60
	}
	if trendMA == 0 {
		trendMA = 20
	}
	if trendMA < 0 {
		return nil, fmt.Errorf("rsi_trend: trend MA period must be positive, got %d", trendMA)
	}

	return &RSITrend{
		lower: lower,
		upper: upper,
		rsi:   indicators.NewRSI(rsiPeriod),
		trend: indicators.NewSMA(trendMA),
	}, nil
}

func (s *RSITrend) Name() string { return "rsi_trend" }

func (s *RSITrend) Indicators() []indicators.Indicator {
	return []indicators.Indicator{s.rsi, s.trend}
}

func (s *RSITrend) Evaluate(_, cur indicators.Row) Signal {
	rsi, ok := cur.Column(s.rsi.Name())
	if !ok {
		return None
	}
	trend, ok := cur.Column(s.trend.Name())
	if !ok {
		return None
	}

	switch {
	case rsi < s.lower && cur.Close > trend:
		return EnterLong
	case rsi > s.upper:
		return Exit
	default:
		return None
	}
}
