package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/cryptobot/internal/id"
)

// SQLiteJournal stores trades in a SQLite database for the journal CLI.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	if t.TradeID == "" {
		t.TradeID = id.New()
	}

	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, time, symbol, side, size, entry_price, exit_price, return_pct, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Time.UTC(), t.Symbol, t.Side, t.Size,
		t.EntryPrice, t.ExitPrice, t.ReturnPct, t.ExitReason,
	)
	return err
}

// ListTrades returns every trade in time order.
func (j *SQLiteJournal) ListTrades() ([]TradeRecord, error) {
	return j.list(`
		SELECT trade_id, time, symbol, side, size, entry_price, exit_price, return_pct, exit_reason
		FROM trades
		ORDER BY time ASC, trade_id ASC`)
}

// ListTradesBetween returns trades whose exit time is within [start, end).
func (j *SQLiteJournal) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	return j.list(`
		SELECT trade_id, time, symbol, side, size, entry_price, exit_price, return_pct, exit_reason
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, trade_id ASC`, start.UTC(), end.UTC())
}

func (j *SQLiteJournal) list(query string, args ...any) ([]TradeRecord, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.Time,
			&rec.Symbol,
			&rec.Side,
			&rec.Size,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.ReturnPct,
			&rec.ExitReason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
