package backtest

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/cryptobot/market"
)

// CandleFeed yields candles one at a time in time order. Implementations
// must be deterministic and return (ok=false, err=nil) at EOF.
type CandleFeed interface {
	Next() (c market.Candle, ok bool, err error)
	Close() error
}

// CSVFeed reads candle rows:
//
//	time,open,high,low,close,volume
//
// where time is RFC3339 or epoch milliseconds (the Binance kline dump
// format). A header row is allowed. Files ending in .gz or .xz are
// decompressed transparently. Rows must be strictly increasing in time.
type CSVFeed struct {
	f   *os.File
	dec io.ReadCloser // nil when the file is plain CSV
	r   *csv.Reader

	sawFirst bool
	lastTime time.Time
}

func NewCSVFeed(path string) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	feed := &CSVFeed{f: f}

	var src io.Reader = f
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip candle file: %w", err)
		}
		feed.dec = zr
		src = zr
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open xz candle file: %w", err)
		}
		src = xr
	}

	feed.r = csv.NewReader(src)
	feed.r.FieldsPerRecord = -1

	return feed, nil
}

func (f *CSVFeed) Close() error {
	if f.dec != nil {
		_ = f.dec.Close()
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

func (f *CSVFeed) Next() (market.Candle, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return market.Candle{}, false, nil
		}
		if err != nil {
			return market.Candle{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		// allow a single header row
		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") ||
				strings.EqualFold(strings.TrimSpace(row[0]), "open_time") {
				continue
			}
		}

		c, ok, err := parseCandleRow(row)
		if err != nil {
			return market.Candle{}, false, err
		}
		if !ok {
			continue
		}

		if !f.lastTime.IsZero() && !c.Time.After(f.lastTime) {
			return market.Candle{}, false, fmt.Errorf(
				"candle at %s is not after previous candle %s",
				c.Time.Format(time.RFC3339), f.lastTime.Format(time.RFC3339))
		}
		f.lastTime = c.Time

		return c, true, nil
	}
}

func parseCandleRow(row []string) (market.Candle, bool, error) {
	// need at least time,open,high,low,close (volume optional)
	if len(row) < 5 {
		return market.Candle{}, false, nil
	}

	ts, err := parseTime(strings.TrimSpace(row[0]))
	if err != nil {
		return market.Candle{}, false, fmt.Errorf("candle time %q: %w", row[0], err)
	}

	var vals [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return market.Candle{}, false, fmt.Errorf("candle field %q: %w", row[i+1], err)
		}
		vals[i] = v
	}

	c := market.Candle{
		Time:  ts,
		Open:  vals[0],
		High:  vals[1],
		Low:   vals[2],
		Close: vals[3],
	}

	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		if err != nil {
			return market.Candle{}, false, fmt.Errorf("candle volume %q: %w", row[5], err)
		}
		c.Volume = v
	}

	return c, true, nil
}

func parseTime(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("not RFC3339 or epoch milliseconds")
}

// SliceFeed replays an in-memory candle slice. Used in tests and by the
// backtest command when candles are fetched from the exchange.
type SliceFeed struct {
	candles []market.Candle
	idx     int
}

func NewSliceFeed(candles []market.Candle) *SliceFeed {
	return &SliceFeed{candles: candles}
}

func (s *SliceFeed) Next() (market.Candle, bool, error) {
	if s.idx >= len(s.candles) {
		return market.Candle{}, false, nil
	}
	c := s.candles[s.idx]
	s.idx++
	return c, true, nil
}

func (s *SliceFeed) Close() error { return nil }
