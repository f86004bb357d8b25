package binance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// LotSize is the venue's quantity constraint for one symbol.
type LotSize struct {
	MinQty decimal.Decimal
	MaxQty decimal.Decimal
	Step   decimal.Decimal
}

// ParseLotSize builds a LotSize from the exchange filter's string fields.
func ParseLotSize(minQty, maxQty, step string) (LotSize, error) {
	var (
		l   LotSize
		err error
	)
	if l.MinQty, err = decimal.NewFromString(minQty); err != nil {
		return LotSize{}, fmt.Errorf("lot size minQty %q: %w", minQty, err)
	}
	if l.MaxQty, err = decimal.NewFromString(maxQty); err != nil {
		return LotSize{}, fmt.Errorf("lot size maxQty %q: %w", maxQty, err)
	}
	if l.Step, err = decimal.NewFromString(step); err != nil {
		return LotSize{}, fmt.Errorf("lot size stepSize %q: %w", step, err)
	}
	return l, nil
}

// Normalize adjusts a raw order quantity to satisfy the filter: capped at
// MaxQty, floored to the nearest Step multiple, and zeroed when the result
// falls below MinQty. A zero result means the order should be skipped, not
// that normalization failed; a too-small quantity is a sizing artifact.
func (l LotSize) Normalize(qty float64) decimal.Decimal {
	d := decimal.NewFromFloat(qty)

	if d.Sign() <= 0 {
		return decimal.Zero
	}
	if l.MaxQty.Sign() > 0 && d.GreaterThan(l.MaxQty) {
		d = l.MaxQty
	}
	if l.Step.Sign() > 0 {
		d = d.Div(l.Step).Floor().Mul(l.Step)
	}
	if d.LessThan(l.MinQty) {
		return decimal.Zero
	}
	return d
}

// LotSizeFor fetches the LOT_SIZE filter for a symbol from exchange info.
// Symbols without the filter get a zero LotSize, which Normalize treats as
// unconstrained.
func (c *Client) LotSizeFor(ctx context.Context, symbol string) (LotSize, error) {
	info, err := c.api.NewExchangeInfoService().Symbol(symbol).Do(ctx)
	if err != nil {
		return LotSize{}, fmt.Errorf("fetch %s exchange info: %w", symbol, err)
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		f := s.LotSizeFilter()
		if f == nil {
			return LotSize{}, nil
		}
		return ParseLotSize(f.MinQuantity, f.MaxQuantity, f.StepSize)
	}
	return LotSize{}, fmt.Errorf("symbol %s not in exchange info", symbol)
}
