package engine

// Stats summarizes a completed trade set and equity curve.
type Stats struct {
	NumTrades int
	Wins      int
	Losses    int

	WinRatePct     float64
	AvgReturnPct   float64
	AvgWinPct      float64
	AvgLossPct     float64
	MaxDrawdownPct float64 // always <= 0

	ExitReasons map[ExitReason]int

	InitialBalance float64
	FinalEquity    float64
	TotalReturnPct float64
}

// ComputeStats derives aggregate statistics from trades and the equity curve.
// Empty subsets produce 0.0, never NaN; an empty curve leaves final equity at
// the initial balance.
func ComputeStats(initial float64, trades []Trade, curve []EquityPoint) Stats {
	s := Stats{
		NumTrades:      len(trades),
		ExitReasons:    make(map[ExitReason]int),
		InitialBalance: initial,
		FinalEquity:    initial,
	}

	var sumAll, sumWin, sumLoss float64
	for _, t := range trades {
		s.ExitReasons[t.ExitReason]++
		sumAll += t.ReturnPct
		if t.ReturnPct > 0 {
			s.Wins++
			sumWin += t.ReturnPct
		} else {
			s.Losses++
			sumLoss += t.ReturnPct
		}
	}

	if s.NumTrades > 0 {
		s.WinRatePct = float64(s.Wins) / float64(s.NumTrades) * 100
		s.AvgReturnPct = sumAll / float64(s.NumTrades)
	}
	if s.Wins > 0 {
		s.AvgWinPct = sumWin / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLossPct = sumLoss / float64(s.Losses)
	}

	if len(curve) > 0 {
		s.FinalEquity = curve[len(curve)-1].Equity

		runningMax := curve[0].Equity
		for _, p := range curve {
			if p.Equity > runningMax {
				runningMax = p.Equity
			}
			if runningMax > 0 {
				dd := (p.Equity - runningMax) / runningMax * 100
				if dd < s.MaxDrawdownPct {
					s.MaxDrawdownPct = dd
				}
			}
		}
	}

	if initial > 0 {
		s.TotalReturnPct = (s.FinalEquity/initial - 1) * 100
	}

	return s
}
