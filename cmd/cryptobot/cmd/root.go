package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cryptobot",
	Short: "An RSI-driven crypto trading bot for Binance spot markets",
	Long: `Cryptobot backtests and live-trades simple RSI strategies on Binance spot.

It provides tools for:
  - Backtesting strategies against historical candle data (CSV or exchange)
  - Running the live polling trader on testnet or, explicitly confirmed, live
  - Querying the trade journal (SQLite and CSV ledgers)
  - Downloading monthly kline archives from Binance Vision
  - Checking account balances

Credentials are read from the environment; see TRADING_ENV, the
BINANCE_*_API_KEY pairs and LIVE_TRADING_CONFIRMATION.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
