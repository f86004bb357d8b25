package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/cryptobot/backtest"
	"github.com/rustyeddy/cryptobot/binance"
	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/engine"
	"github.com/rustyeddy/cryptobot/journal"
	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/risk"
	"github.com/rustyeddy/cryptobot/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical candles through a strategy",
	Long: `Backtest replays candle data through a strategy and the position engine.

Candles come from a CSV file (plain, .gz or .xz) or, when no file is given,
are fetched from the exchange for the configured symbol and interval.

Supported strategies:
  - rsi_v1: buy when RSI drops below a floor, sell above a ceiling
  - rsi_reversal: rsi_v1 with classic 30/70 bands
  - rsi_trend: oversold entries only above a trend SMA
  - sma_cross: fast/slow SMA crossover

Example:
  cryptobot backtest --data data/ETHUSDT-15m-2026-01.csv --strategy rsi_v1 --take-profit 0.04`,
	RunE: runBacktest,
}

var (
	btData     string
	btConfig   string
	btSymbol   string
	btInterval string
	btCandles  int
	btBalance  float64
	btStrategy string
	btStopLoss float64
	btTakePct  float64
	btFeeRate  float64
	btDBPath   string
	btLedger   string
	btCloseEnd bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btData, "data", "f", "", "path to candle CSV (time,open,high,low,close,volume); fetches from the exchange when empty")
	backtestCmd.Flags().StringVarP(&btConfig, "config", "c", "", "path to a YAML or JSON backtest config")
	backtestCmd.Flags().StringVar(&btSymbol, "symbol", "BTCUSDT", "trading pair symbol")
	backtestCmd.Flags().StringVar(&btInterval, "interval", "15m", "candle interval (1m, 5m, 15m, 1h, 4h, 1d)")
	backtestCmd.Flags().IntVar(&btCandles, "candles", 1000, "number of candles to fetch when no data file is given")
	backtestCmd.Flags().Float64VarP(&btBalance, "balance", "b", 10_000, "starting balance in quote currency")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "rsi_v1", "strategy name (rsi_v1, rsi_reversal, rsi_trend, sma_cross)")
	backtestCmd.Flags().Float64Var(&btStopLoss, "stop-loss", 0, "stop loss fraction per trade (0.02 = 2%, 0 disables)")
	backtestCmd.Flags().Float64Var(&btTakePct, "take-profit", 0.04, "take profit fraction per trade (0 disables)")
	backtestCmd.Flags().Float64Var(&btFeeRate, "fee", 0.0004, "taker fee fraction applied on entry and exit")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "record trades to this SQLite journal")
	backtestCmd.Flags().StringVar(&btLedger, "ledger", "", "record trades to this CSV ledger")
	backtestCmd.Flags().BoolVar(&btCloseEnd, "close-end", false, "close any open position at the final candle")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := backtestConfig(cmd)
	if err != nil {
		return err
	}

	strat, err := strategyFromConfig(cfg.Strategy)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	feed, err := backtestFeed(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	ledger, err := backtestJournal()
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close()
	}

	runner := &backtest.Runner{
		Strategy: strat,
		Config: engine.Config{
			Symbol:         cfg.Symbol,
			InitialBalance: cfg.InitialBalance,
			Risk: risk.Params{
				StopLossPct:   cfg.StopLossPct,
				TakeProfitPct: cfg.TakeProfitPct,
				FeeRate:       cfg.FeeRate,
			},
		},
		Journal: ledger,
		Options: backtest.Options{CloseEnd: btCloseEnd},
	}

	fmt.Printf("Running backtest with strategy: %s\n", strat.Name())
	fmt.Printf("  Symbol: %s @ %s\n\n", cfg.Symbol, cfg.Interval)

	res, err := runner.Run(feed)
	if err != nil {
		return err
	}

	printStats(res.Stats)
	return nil
}

// backtestConfig merges the config file (or defaults) with any flags the
// user set explicitly. Flags win.
func backtestConfig(cmd *cobra.Command) (config.Backtest, error) {
	cfg := config.DefaultBacktest()
	if btConfig != "" {
		loaded, err := config.LoadBacktest(btConfig)
		if err != nil {
			return config.Backtest{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("symbol") {
		cfg.Symbol = btSymbol
	}
	if flags.Changed("interval") {
		cfg.Interval = btInterval
	}
	if flags.Changed("candles") {
		cfg.Candles = btCandles
	}
	if flags.Changed("balance") {
		cfg.InitialBalance = btBalance
	}
	if flags.Changed("strategy") {
		cfg.Strategy = config.StrategyConfig{Name: btStrategy}
	}
	if flags.Changed("stop-loss") {
		cfg.StopLossPct = btStopLoss
	}
	if flags.Changed("take-profit") {
		cfg.TakeProfitPct = btTakePct
	}
	if flags.Changed("fee") {
		cfg.FeeRate = btFeeRate
	}

	if err := cfg.Validate(); err != nil {
		return config.Backtest{}, err
	}
	return cfg, nil
}

func backtestFeed(ctx context.Context, cfg config.Backtest) (backtest.CandleFeed, error) {
	if btData != "" {
		feed, err := backtest.NewCSVFeed(btData)
		if err != nil {
			return nil, fmt.Errorf("open data file: %w", err)
		}
		return feed, nil
	}

	creds, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("no --data file and no exchange credentials: %w", err)
	}
	interval, err := market.ParseInterval(cfg.Interval)
	if err != nil {
		return nil, err
	}

	client := binance.NewClient(creds)
	candles, err := client.Candles(ctx, cfg.Symbol, interval, cfg.Candles)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	return backtest.NewSliceFeed(candles), nil
}

func backtestJournal() (journal.Journal, error) {
	var ledgers []journal.Journal

	if btDBPath != "" {
		j, err := journal.NewSQLite(btDBPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		ledgers = append(ledgers, j)
	}
	if btLedger != "" {
		j, err := journal.NewCSV(btLedger)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		ledgers = append(ledgers, j)
	}

	switch len(ledgers) {
	case 0:
		return nil, nil
	case 1:
		return ledgers[0], nil
	default:
		return teeJournal(ledgers), nil
	}
}

// teeJournal fans trade records out to every underlying journal.
type teeJournal []journal.Journal

func (t teeJournal) RecordTrade(rec journal.TradeRecord) error {
	for _, j := range t {
		if err := j.RecordTrade(rec); err != nil {
			return err
		}
	}
	return nil
}

func (t teeJournal) ListTrades() ([]journal.TradeRecord, error) {
	if len(t) == 0 {
		return nil, nil
	}
	return t[0].ListTrades()
}

func (t teeJournal) Close() error {
	var first error
	for _, j := range t {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func strategyFromConfig(sc config.StrategyConfig) (strategies.Strategy, error) {
	return strategies.ByName(sc.Name, strategies.Params{
		EntryRSI: sc.EntryRSI,
		ExitRSI:  sc.ExitRSI,
		Lower:    sc.Lower,
		Upper:    sc.Upper,
		TrendMA:  sc.TrendMA,
		Fast:     sc.Fast,
		Slow:     sc.Slow,
	})
}

func printStats(s engine.Stats) {
	fmt.Printf("\nBacktest Complete!\n")
	fmt.Printf("  Trades: %d (%d wins, %d losses)\n", s.NumTrades, s.Wins, s.Losses)
	fmt.Printf("  Win Rate: %.1f%%\n", s.WinRatePct)
	fmt.Printf("  Avg Return: %.2f%% (wins %.2f%%, losses %.2f%%)\n", s.AvgReturnPct, s.AvgWinPct, s.AvgLossPct)
	fmt.Printf("  Max Drawdown: %.2f%%\n", s.MaxDrawdownPct)
	fmt.Printf("  Final Equity: $%.2f (%.2f%% total)\n", s.FinalEquity, s.TotalReturnPct)
	if len(s.ExitReasons) > 0 {
		fmt.Printf("  Exits:")
		for reason, n := range s.ExitReasons {
			fmt.Printf(" %s=%d", reason, n)
		}
		fmt.Println()
	}
}
