// Package market defines the core market data types shared by the
// backtester, the live trader and the exchange client.
package market

import (
	"fmt"
	"time"
)

// Candle represents one OHLCV candlestick for a fixed time interval.
type Candle struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Time   time.Time
}

// Interval is a candle granularity supported by the exchange.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

var intervalDurations = map[Interval]time.Duration{
	Interval1m:  time.Minute,
	Interval5m:  5 * time.Minute,
	Interval15m: 15 * time.Minute,
	Interval1h:  time.Hour,
	Interval4h:  4 * time.Hour,
	Interval1d:  24 * time.Hour,
}

// ParseInterval validates a candle interval string.
func ParseInterval(s string) (Interval, error) {
	iv := Interval(s)
	if _, ok := intervalDurations[iv]; !ok {
		return "", fmt.Errorf("unsupported interval %q (supported: 1m, 5m, 15m, 1h, 4h, 1d)", s)
	}
	return iv, nil
}

// Duration returns the wall-clock length of one candle.
func (i Interval) Duration() time.Duration {
	return intervalDurations[i]
}

func (i Interval) String() string { return string(i) }

// ValidateSeries checks that candles are strictly ordered by time with no
// duplicate timestamps.
func ValidateSeries(candles []Candle) error {
	for n := 1; n < len(candles); n++ {
		if !candles[n].Time.After(candles[n-1].Time) {
			return fmt.Errorf("candle %d (%s) is not after candle %d (%s)",
				n, candles[n].Time.Format(time.RFC3339),
				n-1, candles[n-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}
