// Package indicators provides streaming technical indicators and the
// annotated candle rows consumed by strategies.
package indicators

import "github.com/rustyeddy/cryptobot/market"

// Indicator computes a single streaming value from closed candles.
// It is deterministic and safe to use in live polling and backtests.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)" or "RSI(14)".
	// Strategies reference indicator columns by this name.
	Name() string

	// Warmup returns how many candles are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* candle.
	Update(c market.Candle)

	// Ready reports whether Value() is meaningful.
	Ready() bool

	// Value returns the current indicator value. Callers must check Ready().
	Value() float64
}

// Row is one candle annotated with indicator columns. Columns are present
// only once the producing indicator has warmed up.
type Row struct {
	market.Candle
	Columns map[string]float64
}

// Has reports whether every named column is present on the row.
func (r Row) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := r.Columns[n]; !ok {
			return false
		}
	}
	return true
}

// Column returns a named indicator value.
func (r Row) Column(name string) (float64, bool) {
	v, ok := r.Columns[name]
	return v, ok
}

// Annotate resets the given indicators and streams every candle through them,
// producing one row per candle. Rows before an indicator's warmup simply lack
// that column.
func Annotate(candles []market.Candle, inds []Indicator) []Row {
	for _, ind := range inds {
		ind.Reset()
	}

	rows := make([]Row, len(candles))
	for i, c := range candles {
		cols := make(map[string]float64, len(inds))
		for _, ind := range inds {
			ind.Update(c)
			if ind.Ready() {
				cols[ind.Name()] = ind.Value()
			}
		}
		rows[i] = Row{Candle: c, Columns: cols}
	}
	return rows
}
