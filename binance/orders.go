package binance

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2"
)

// Side of a market order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Fill reports the outcome of a submission. Skipped fills are no-ops where
// the normalized quantity came out at zero; nothing reached the exchange.
type Fill struct {
	Symbol   string
	Side     Side
	Quantity float64 // executed quantity in base asset
	Price    float64 // average fill price, 0 if the venue reported none
	OrderID  int64
	Skipped  bool
}

// SubmitMarketOrder normalizes the desired quantity against the symbol's lot
// size and submits a market order. The live safety gate is checked on every
// call; failures are returned without retry, because a prior attempt may
// have partially filled and blind resubmission is not safe. The caller must
// treat a failed entry as "still flat" and a failed exit as "still long".
func (c *Client) SubmitMarketOrder(ctx context.Context, symbol string, side Side, quantity float64) (Fill, error) {
	if err := c.creds.EnsureLiveAllowed(); err != nil {
		return Fill{}, err
	}

	lot, err := c.LotSizeFor(ctx, symbol)
	if err != nil {
		return Fill{}, err
	}

	qty := lot.Normalize(quantity)
	if qty.Sign() <= 0 {
		return Fill{Symbol: symbol, Side: side, Skipped: true}, nil
	}

	res, err := c.api.NewCreateOrderService().
		Symbol(symbol).
		Side(binance.SideType(side)).
		Type(binance.OrderTypeMarket).
		Quantity(qty.String()).
		Do(ctx)
	if err != nil {
		return Fill{}, fmt.Errorf("%s %s %s order: %w", side, qty, symbol, err)
	}

	fill := Fill{
		Symbol:  symbol,
		Side:    side,
		OrderID: res.OrderID,
	}

	if res.ExecutedQuantity != "" {
		if v, err := strconv.ParseFloat(res.ExecutedQuantity, 64); err == nil {
			fill.Quantity = v
		}
	}
	if fill.Quantity == 0 {
		fill.Quantity, _ = qty.Float64()
	}
	fill.Price = averageFillPrice(res.Fills)

	return fill, nil
}

// averageFillPrice is quantity-weighted over the venue's partial fills.
func averageFillPrice(fills []*binance.Fill) float64 {
	var notional, qty float64
	for _, f := range fills {
		p, err1 := strconv.ParseFloat(f.Price, 64)
		q, err2 := strconv.ParseFloat(f.Quantity, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		notional += p * q
		qty += q
	}
	if qty == 0 {
		return 0
	}
	return notional / qty
}
