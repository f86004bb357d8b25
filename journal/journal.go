// Package journal is the append-only ledger of completed trades. The CSV
// journal is the live trader's durable record; the SQLite journal backs the
// query CLI.
package journal

import (
	"time"

	"github.com/rustyeddy/cryptobot/engine"
)

// TradeRecord is one row of the ledger. Column order is fixed:
// time, symbol, side, size, entry_price, exit_price, return_pct, exit_reason.
type TradeRecord struct {
	TradeID    string // not part of the CSV row; SQLite primary key
	Time       time.Time
	Symbol     string
	Side       string
	Size       float64
	EntryPrice float64
	ExitPrice  float64
	ReturnPct  float64
	ExitReason string
}

// Journal records completed trades. Records are never mutated or deleted.
type Journal interface {
	RecordTrade(TradeRecord) error
	ListTrades() ([]TradeRecord, error)
	Close() error
}

// FromTrade converts a completed engine trade into a ledger row. The row is
// stamped with the exit time; the bot only trades the long side.
func FromTrade(t engine.Trade) TradeRecord {
	return TradeRecord{
		TradeID:    t.ID,
		Time:       t.ExitTime.UTC(),
		Symbol:     t.Symbol,
		Side:       "LONG",
		Size:       t.Size,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		ReturnPct:  t.ReturnPct,
		ExitReason: string(t.ExitReason),
	}
}
