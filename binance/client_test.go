package binance

import (
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
)

func TestCandlesFromKlines(t *testing.T) {
	t.Parallel()

	klines := []*binance.Kline{
		{OpenTime: 1767312000000, Open: "100.5", High: "102", Low: "99.1", Close: "101", Volume: "12.5"},
		{OpenTime: 1767312060000, Open: "101", High: "103", Low: "100", Close: "102.25", Volume: "8"},
	}

	candles, err := candlesFromKlines(klines)
	assert.NoError(t, err)
	assert.Len(t, candles, 2)

	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), candles[0].Time)
	assert.Equal(t, 100.5, candles[0].Open)
	assert.Equal(t, 102.0, candles[0].High)
	assert.Equal(t, 99.1, candles[0].Low)
	assert.Equal(t, 101.0, candles[0].Close)
	assert.Equal(t, 12.5, candles[0].Volume)
	assert.Equal(t, 102.25, candles[1].Close)
}

func TestCandlesFromKlinesBadField(t *testing.T) {
	t.Parallel()

	klines := []*binance.Kline{
		{OpenTime: 1767312000000, Open: "oops", High: "102", Low: "99", Close: "101", Volume: "1"},
	}

	_, err := candlesFromKlines(klines)
	assert.Error(t, err)
}

func TestAverageFillPrice(t *testing.T) {
	t.Parallel()

	fills := []*binance.Fill{
		{Price: "100", Quantity: "1"},
		{Price: "110", Quantity: "3"},
	}
	assert.InDelta(t, 107.5, averageFillPrice(fills), 1e-9)

	assert.Equal(t, 0.0, averageFillPrice(nil))
}
