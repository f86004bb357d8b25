package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/cryptobot/engine"
)

func newTestSQLite(t *testing.T) (*SQLiteJournal, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	_, path := newTestSQLite(t)

	db, err := sql.Open("sqlite3", path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='trades'`).Scan(&name)
	assert.NoError(t, err)
	assert.Equal(t, "trades", name)
}

func TestSQLiteRecordAndList(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Hour)

	// insert out of order; listing sorts by time
	assert.NoError(t, j.RecordTrade(TradeRecord{
		Time: t2, Symbol: "BTCUSDT", Side: "LONG",
		Size: 0.01, EntryPrice: 60_000, ExitPrice: 58_800,
		ReturnPct: -2.0, ExitReason: "stop_loss",
	}))
	assert.NoError(t, j.RecordTrade(TradeRecord{
		Time: t1, Symbol: "BTCUSDT", Side: "LONG",
		Size: 0.01, EntryPrice: 59_000, ExitPrice: 61_360,
		ReturnPct: 4.0, ExitReason: "take_profit",
	}))

	recs, err := j.ListTrades()
	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, "take_profit", recs[0].ExitReason)
	assert.Equal(t, "stop_loss", recs[1].ExitReason)
	assert.NotEmpty(t, recs[0].TradeID)

	between, err := j.ListTradesBetween(t1, t1.Add(time.Hour))
	assert.NoError(t, err)
	assert.Len(t, between, 1)
	assert.Equal(t, "take_profit", between[0].ExitReason)
}

func TestFromTrade(t *testing.T) {
	t.Parallel()

	entry := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	exit := entry.Add(45 * time.Minute)

	rec := FromTrade(engine.Trade{
		ID:         "01TRADE",
		Symbol:     "ETHUSDT",
		EntryTime:  entry,
		ExitTime:   exit,
		EntryPrice: 2000,
		ExitPrice:  2080,
		Size:       0.05,
		ReturnPct:  4.0,
		ExitReason: engine.ExitTakeProfit,
	})

	assert.Equal(t, "01TRADE", rec.TradeID)
	assert.Equal(t, exit, rec.Time)
	assert.Equal(t, "ETHUSDT", rec.Symbol)
	assert.Equal(t, "LONG", rec.Side)
	assert.Equal(t, "take_profit", rec.ExitReason)
}
