package strategies

import "github.com/rustyeddy/cryptobot/indicators"

const rsiPeriod = 14

// RSIBand buys when RSI drops below a lower bound and exits when it rises
// above an upper bound. Both rsi_v1 and rsi_reversal are band strategies;
// they differ only in their default thresholds.
type RSIBand struct {
	name  string
	lower float64
	upper float64
	rsi   *indicators.RSI
}

// NewRSIV1 is the recommended 15m variant: enter below 25, exit above 80,
// paired with a take-profit and no stop-loss.
func NewRSIV1(entryRSI, exitRSI float64) *RSIBand {
	if entryRSI <= 0 {
		entryRSI = 25
	}
	if exitRSI <= 0 {
		exitRSI = 80
	}
	return &RSIBand{
		name:  "rsi_v1",
		lower: entryRSI,
		upper: exitRSI,
		rsi:   indicators.NewRSI(rsiPeriod),
	}
}

// NewRSIReversal is the classic oversold/overbought reversal: enter below 30,
// exit above 70.
func NewRSIReversal(lower, upper float64) *RSIBand {
	if lower <= 0 {
		lower = 30
	}
	if upper <= 0 {
		upper = 70
	}
	return &RSIBand{
		name:  "rsi_reversal",
		lower: lower,
		upper: upper,
		rsi:   indicators.NewRSI(rsiPeriod),
	}
}

func (s *RSIBand) Name() string { return s.name }

func (s *RSIBand) Indicators() []indicators.Indicator {
	return []indicators.Indicator{s.rsi}
}

func (s *RSIBand) Evaluate(_, cur indicators.Row) Signal {
	rsi, ok := cur.Column(s.rsi.Name())
	if !ok {
		return None
	}

	switch {
	case rsi < s.lower:
		return EnterLong
	case rsi > s.upper:
		return Exit
	default:
		return None
	}
}
