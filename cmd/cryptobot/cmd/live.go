package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/cryptobot/binance"
	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/journal"
	"github.com/rustyeddy/cryptobot/live"
	"github.com/rustyeddy/cryptobot/logger"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Run the live polling trader",
	Long: `Live polls the exchange on an interval and trades the RSI strategy
described by the runtime state file. Edit the state file between cycles to
retune thresholds or disable the bot; every cycle re-reads it.

Orders go to the Binance testnet unless TRADING_ENV=live is set AND
LIVE_TRADING_CONFIRMATION carries the exact confirmation sentinel.

Example:
  cryptobot live --state runtime_state.json --ledger trades.csv --poll 1m`,
	RunE: runLive,
}

var (
	lvStatePath string
	lvLedger    string
	lvPoll      time.Duration
	lvEnable    bool
)

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().StringVar(&lvStatePath, "state", "runtime_state.json", "path to the runtime state file")
	liveCmd.Flags().StringVar(&lvLedger, "ledger", "trades.csv", "CSV ledger for completed trades")
	liveCmd.Flags().DurationVar(&lvPoll, "poll", time.Minute, "sleep between polling cycles")
	liveCmd.Flags().BoolVar(&lvEnable, "enable", false, "set bot_enabled=true in the state file before starting")
}

func runLive(cmd *cobra.Command, args []string) error {
	creds, err := config.FromEnv()
	if err != nil {
		return err
	}
	// Fail before the first cycle, not on the first order.
	if err := creds.EnsureLiveAllowed(); err != nil {
		return err
	}

	log, err := logger.New()
	if err != nil {
		return err
	}
	defer log.Sync()

	states := config.NewStateStore(lvStatePath)
	if lvEnable {
		if err := states.SetEnabled(true); err != nil {
			return fmt.Errorf("enable bot: %w", err)
		}
	}

	ledger, err := journal.NewCSV(lvLedger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	client := binance.NewClient(creds)

	trader, err := live.New(client, client, states)
	if err != nil {
		return err
	}
	trader.Journal = ledger
	trader.Log = log.Logger
	trader.Poll = lvPoll

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting",
		zap.String("env", string(creds.Env)),
		zap.String("state", lvStatePath),
		zap.String("ledger", lvLedger))

	if err := trader.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
