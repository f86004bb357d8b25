package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/cryptobot/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the trade ledger",
	Long: `Query and display completed trades from the SQLite journal or the
CSV ledger the live trader appends to.

Examples:
  cryptobot journal list --db ./cryptobot.sqlite
  cryptobot journal today --ledger trades.csv
  cryptobot journal day 2026-08-14 --db ./cryptobot.sqlite`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every recorded trade",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades closed today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var (
	jnDBPath string
	jnLedger string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&jnDBPath, "db", "d", "", "path to the SQLite journal")
	journalCmd.PersistentFlags().StringVar(&jnLedger, "ledger", "", "path to the CSV ledger")
}

func runJournalList(cmd *cobra.Command, args []string) error {
	recs, err := loadTrades()
	if err != nil {
		return err
	}
	printTrades(recs)
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listDay(time.Now().UTC().Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(args[0])
}

func listDay(day string) error {
	start, end, err := dayBounds(day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := loadTrades()
	if err != nil {
		return err
	}

	var out []journal.TradeRecord
	for _, r := range recs {
		if !r.Time.Before(start) && r.Time.Before(end) {
			out = append(out, r)
		}
	}
	printTrades(out)
	return nil
}

// loadTrades reads from the SQLite journal when --db is set, otherwise
// from the CSV ledger.
func loadTrades() ([]journal.TradeRecord, error) {
	switch {
	case jnDBPath != "":
		j, err := journal.NewSQLite(jnDBPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		defer j.Close()
		return j.ListTrades()

	case jnLedger != "":
		return journal.ReadCSV(jnLedger)

	default:
		return nil, fmt.Errorf("either --db or --ledger is required")
	}
}

func printTrades(recs []journal.TradeRecord) {
	if len(recs) == 0 {
		fmt.Println("no trades")
		return
	}

	fmt.Printf("%-20s  %-10s  %-5s  %12s  %12s  %12s  %8s  %s\n",
		"TIME", "SYMBOL", "SIDE", "SIZE", "ENTRY", "EXIT", "RET%", "REASON")
	for _, r := range recs {
		fmt.Printf("%-20s  %-10s  %-5s  %12.6f  %12.4f  %12.4f  %+8.2f  %s\n",
			r.Time.UTC().Format("2006-01-02 15:04:05"),
			r.Symbol, r.Side, r.Size, r.EntryPrice, r.ExitPrice, r.ReturnPct, r.ExitReason)
	}
	fmt.Printf("\n%d trades\n", len(recs))
}

func dayBounds(day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour), nil
}
