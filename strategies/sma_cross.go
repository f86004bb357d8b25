package strategies

import (
	"fmt"

	"github.com/rustyeddy/cryptobot/indicators"
)

// SMACross enters when the fast SMA crosses above the slow SMA and exits on
// the cross back below. Crossover detection needs the previous bar, so the
// first evaluated bar of a series never signals.
type SMACross struct {
	fast *indicators.SMA
	slow *indicators.SMA
}

// NewSMACross creates an sma_cross strategy. Defaults: fast 10, slow 20.
func NewSMACross(fast, slow int) (*SMACross, error) {
	if fast == 0 {
		fast = 10
	}
	if slow == 0 {
		slow = 20
	}
	if fast >= slow {
		return nil, fmt.Errorf("sma_cross: fast period %d must be smaller than slow period %d", fast, slow)
	}

	return &SMACross{
		fast: indicators.NewSMA(fast),
		slow: indicators.NewSMA(slow),
	}, nil
}

func (s *SMACross) Name() string { return "sma_cross" }

func (s *SMACross) Indicators() []indicators.Indicator {
	return []indicators.Indicator{s.fast, s.slow}
}

func (s *SMACross) Evaluate(prev, cur indicators.Row) Signal {
	curFast, ok := cur.Column(s.fast.Name())
	if !ok {
		return None
	}
	curSlow, ok := cur.Column(s.slow.Name())
	if !ok {
		return None
	}
	prevFast, ok := prev.Column(s.fast.Name())
	if !ok {
		return None
	}
	prevSlow, ok := prev.Column(s.slow.Name())
	if !ok {
		return None
	}

	switch {
	case prevFast <= prevSlow && curFast > curSlow:
		return EnterLong
	case prevFast >= prevSlow && curFast < curSlow:
		return Exit
	default:
		return None
	}
}
