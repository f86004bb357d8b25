// Package binance wraps the exchange client: candle retrieval, account
// balances and gated market order submission.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"

	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/market"
)

// Client talks to Binance spot, testnet or live depending on credentials.
type Client struct {
	api   *binance.Client
	creds config.Credentials
}

// NewClient builds a client for the environment in creds. The global testnet
// switch must be set before the underlying client is constructed.
func NewClient(creds config.Credentials) *Client {
	binance.UseTestnet = creds.Env == config.Testnet

	return &Client{
		api:   binance.NewClient(creds.APIKey, creds.APISecret),
		creds: creds,
	}
}

// Env returns the trading environment this client submits to.
func (c *Client) Env() config.Env { return c.creds.Env }

// Candles fetches the most recent limit candles for symbol at the given
// interval, ordered by open time.
func (c *Client) Candles(ctx context.Context, symbol string, interval market.Interval, limit int) ([]market.Candle, error) {
	klines, err := c.api.NewKlinesService().
		Symbol(symbol).
		Interval(interval.String()).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s klines: %w", symbol, interval, err)
	}

	candles, err := candlesFromKlines(klines)
	if err != nil {
		return nil, fmt.Errorf("parse %s klines: %w", symbol, err)
	}
	if err := market.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("%s klines out of order: %w", symbol, err)
	}
	return candles, nil
}

func candlesFromKlines(klines []*binance.Kline) ([]market.Candle, error) {
	out := make([]market.Candle, 0, len(klines))
	for _, k := range klines {
		c := market.Candle{Time: time.UnixMilli(k.OpenTime).UTC()}

		for _, field := range []struct {
			dst *float64
			src string
		}{
			{&c.Open, k.Open},
			{&c.High, k.High},
			{&c.Low, k.Low},
			{&c.Close, k.Close},
			{&c.Volume, k.Volume},
		} {
			v, err := strconv.ParseFloat(field.src, 64)
			if err != nil {
				return nil, fmt.Errorf("kline field %q: %w", field.src, err)
			}
			*field.dst = v
		}
		out = append(out, c)
	}
	return out, nil
}

// Balances returns the free balance for each requested asset. Assets absent
// from the account report as zero.
func (c *Client) Balances(ctx context.Context, assets ...string) (map[string]float64, error) {
	acct, err := c.api.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}

	out := make(map[string]float64, len(assets))
	for _, a := range assets {
		out[a] = 0
	}
	for _, b := range acct.Balances {
		if _, wanted := out[b.Asset]; !wanted {
			continue
		}
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			return nil, fmt.Errorf("balance %s %q: %w", b.Asset, b.Free, err)
		}
		out[b.Asset] = free
	}
	return out, nil
}
