package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateStoreMissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	s := NewStateStore(filepath.Join(t.TempDir(), "runtime_state.json"))
	state := s.Load()
	assert.Equal(t, DefaultRuntimeState(), state)
	assert.False(t, state.BotEnabled)
	assert.Equal(t, "ETHUSDT", state.Symbol)
}

func TestStateStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStateStore(filepath.Join(t.TempDir(), "state", "runtime_state.json"))

	state := DefaultRuntimeState()
	state.BotEnabled = true
	state.Symbol = "BTCUSDT"
	state.TakeProfitPct = 0.02
	assert.NoError(t, s.Save(state))

	got := s.Load()
	assert.True(t, got.BotEnabled)
	assert.Equal(t, "BTCUSDT", got.Symbol)
	assert.Equal(t, 0.02, got.TakeProfitPct)
}

func TestStateStorePartialDocumentMergesOverDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runtime_state.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"symbol": "SOLUSDT"}`), 0o644))

	got := NewStateStore(path).Load()
	assert.Equal(t, "SOLUSDT", got.Symbol)
	// absent fields keep the baseline
	assert.Equal(t, 200, got.HistoryCandles)
	assert.Equal(t, 0.04, got.TakeProfitPct)
}

func TestStateStoreCorruptFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runtime_state.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got := NewStateStore(path).Load()
	assert.Equal(t, DefaultRuntimeState(), got)
}

func TestSetEnabled(t *testing.T) {
	t.Parallel()

	s := NewStateStore(filepath.Join(t.TempDir(), "runtime_state.json"))
	assert.NoError(t, s.SetEnabled(true))
	assert.True(t, s.Load().BotEnabled)
	assert.NoError(t, s.SetEnabled(false))
	assert.False(t, s.Load().BotEnabled)
}
