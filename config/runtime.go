package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RuntimeState is the flat document the live loop re-reads at the start of
// every cycle. Operators (or a dashboard) may rewrite it between cycles;
// whole-document replacement with last-writer-wins is fine.
type RuntimeState struct {
	BotEnabled       bool    `json:"bot_enabled"`
	Symbol           string  `json:"symbol"`
	Interval         string  `json:"interval"`
	HistoryCandles   int     `json:"history_candles"`
	PositionSizeUSDT float64 `json:"position_size_usdt"`
	EntryRSI         float64 `json:"entry_rsi"`
	ExitRSI          float64 `json:"exit_rsi"`
	TakeProfitPct    float64 `json:"take_profit_pct"`
	InitialEquityUSDT float64 `json:"initial_equity_usdt"`
}

// DefaultRuntimeState is the known baseline; absent fields default from it.
func DefaultRuntimeState() RuntimeState {
	return RuntimeState{
		BotEnabled:        false,
		Symbol:            "ETHUSDT",
		Interval:          "15m",
		HistoryCandles:    200,
		PositionSizeUSDT:  100.0,
		EntryRSI:          25.0,
		ExitRSI:           80.0,
		TakeProfitPct:     0.04,
		InitialEquityUSDT: 10_000.0,
	}
}

// StateStore reads and writes the runtime state file. Load and Save take the
// same lock so a concurrent update cannot race the live loop's read.
type StateStore struct {
	mu   sync.Mutex
	path string
}

func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Load returns the current runtime state. A missing or unreadable file
// yields the defaults; a readable file is merged over them so any subset of
// fields may be absent.
func (s *StateStore) Load() RuntimeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := DefaultRuntimeState()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return state
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return DefaultRuntimeState()
	}
	return state
}

// Save replaces the runtime state document.
func (s *StateStore) Save(state RuntimeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal runtime state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write runtime state: %w", err)
	}
	return nil
}

// SetEnabled flips the bot_enabled flag, preserving the rest of the document.
func (s *StateStore) SetEnabled(enabled bool) error {
	state := s.Load()
	state.BotEnabled = enabled
	return s.Save(state)
}
