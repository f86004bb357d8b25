package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"
)

var csvHeader = []string{
	"time", "symbol", "side", "size",
	"entry_price", "exit_price", "return_pct", "exit_reason",
}

// CSVJournal appends trades to a CSV file, writing the header first if the
// file does not exist yet. Appends are serialized; the live loop is the sole
// writer but dashboards may read the file at any time.
type CSVJournal struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *csv.Writer
}

// NewCSV opens (or creates) the ledger file at path for appending.
func NewCSV(path string) (*CSVJournal, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trade ledger: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat trade ledger: %w", err)
	}

	w := csv.NewWriter(f)
	if fi.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write ledger header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &CSVJournal{path: path, f: f, w: w}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.w.Write([]string{
		t.Time.UTC().Format(time.RFC3339),
		t.Symbol,
		t.Side,
		f(t.Size),
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.ReturnPct),
		t.ExitReason,
	})
	if err != nil {
		return err
	}

	j.w.Flush()
	return j.w.Error()
}

// ListTrades reads every row back from the ledger file. A missing file is
// not an error; it means zero trades.
func (j *CSVJournal) ListTrades() ([]TradeRecord, error) {
	return ReadCSV(j.path)
}

func (j *CSVJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

// ReadCSV loads a ledger file without opening it for writing. Consumers must
// tolerate the file not existing yet.
func ReadCSV(path string) ([]TradeRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open trade ledger: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	var out []TradeRecord
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trade ledger: %w", err)
		}

		if first {
			first = false
			if len(row) > 0 && row[0] == "time" {
				continue
			}
		}
		if len(row) < 8 {
			continue
		}

		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("trade ledger row: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(row []string) (TradeRecord, error) {
	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return TradeRecord{}, err
	}

	nums := make([]float64, 4)
	for i, col := range []int{3, 4, 5, 6} {
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			return TradeRecord{}, err
		}
		nums[i] = v
	}

	return TradeRecord{
		Time:       ts,
		Symbol:     row[1],
		Side:       row[2],
		Size:       nums[0],
		EntryPrice: nums[1],
		ExitPrice:  nums[2],
		ReturnPct:  nums[3],
		ExitReason: row[7],
	}, nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
