package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/cryptobot/binance"
	"github.com/rustyeddy/cryptobot/config"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [asset...]",
	Short: "Show account balances",
	Long: `Balance queries the exchange account for free balances. With no
arguments it shows USDT, BTC and ETH.

Example:
  cryptobot balance USDT ETH`,
	RunE: runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	creds, err := config.FromEnv()
	if err != nil {
		return err
	}

	assets := args
	if len(assets) == 0 {
		assets = []string{"USDT", "BTC", "ETH"}
	}

	client := binance.NewClient(creds)
	balances, err := client.Balances(cmd.Context(), assets...)
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}

	fmt.Printf("Account (%s):\n", creds.Env)
	for _, asset := range assets {
		fmt.Printf("  %-6s %.8f\n", asset, balances[asset])
	}
	return nil
}
