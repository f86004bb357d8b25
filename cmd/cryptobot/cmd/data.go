package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/artdarek/go-unzip"
)

const visionBase = "https://data.binance.vision/data/spot/monthly/klines"

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Manage historical candle data",
}

var dataImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Download monthly kline archives from Binance Vision",
	Long: `Import downloads monthly kline zip archives from Binance Vision and
extracts the CSV inside. The extracted files feed straight into
"cryptobot backtest --data".

Example:
  cryptobot data import --symbol ETHUSDT --interval 15m --start 2026-01 --end 2026-06 --out ./data`,
	RunE: runDataImport,
}

var (
	diSymbol   string
	diInterval string
	diStart    string
	diEnd      string
	diOut      string
	diBase     string
	diWorkers  int
	diTimeout  time.Duration
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataImportCmd)

	dataImportCmd.Flags().StringVar(&diSymbol, "symbol", "ETHUSDT", "trading pair symbol")
	dataImportCmd.Flags().StringVar(&diInterval, "interval", "15m", "candle interval")
	dataImportCmd.Flags().StringVar(&diStart, "start", "", "first month (YYYY-MM) (required)")
	dataImportCmd.Flags().StringVar(&diEnd, "end", "", "last month (YYYY-MM), inclusive; defaults to --start")
	dataImportCmd.Flags().StringVarP(&diOut, "out", "o", "./data", "output directory")
	dataImportCmd.Flags().StringVar(&diBase, "base", visionBase, "Binance Vision base URL")
	dataImportCmd.Flags().IntVar(&diWorkers, "workers", 4, "parallel downloads")
	dataImportCmd.Flags().DurationVar(&diTimeout, "timeout", 45*time.Second, "HTTP timeout per archive")

	dataImportCmd.MarkFlagRequired("start")
}

type archiveJob struct {
	url string
	zip string
}

func runDataImport(cmd *cobra.Command, args []string) error {
	sym := strings.ToUpper(strings.TrimSpace(diSymbol))
	if sym == "" {
		return fmt.Errorf("symbol required")
	}

	first, err := time.Parse("2006-01", diStart)
	if err != nil {
		return fmt.Errorf("bad --start: %w", err)
	}
	last := first
	if diEnd != "" {
		last, err = time.Parse("2006-01", diEnd)
		if err != nil {
			return fmt.Errorf("bad --end: %w", err)
		}
	}
	if last.Before(first) {
		return fmt.Errorf("--end must not be before --start")
	}

	if err := os.MkdirAll(diOut, 0o755); err != nil {
		return err
	}

	var jobs []archiveJob
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		name := fmt.Sprintf("%s-%s-%s.zip", sym, diInterval, m.Format("2006-01"))
		jobs = append(jobs, archiveJob{
			url: fmt.Sprintf("%s/%s/%s/%s", diBase, sym, diInterval, name),
			zip: filepath.Join(diOut, name),
		})
	}

	fmt.Printf("Symbol: %s @ %s\nMonths: %s -> %s (%d archives)\nOut:    %s\n\n",
		sym, diInterval, first.Format("2006-01"), last.Format("2006-01"), len(jobs), diOut)

	client := &http.Client{Timeout: diTimeout}

	jobCh := make(chan archiveJob)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, miss, fail int

	for i := 0; i < diWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				status, err := fetchArchive(client, j)
				mu.Lock()
				switch {
				case err != nil:
					fail++
					fmt.Printf("FAIL  %s  (%v)\n", j.url, err)
				case status == http.StatusNotFound:
					miss++
					fmt.Printf("404   %s\n", j.url)
				default:
					ok++
					fmt.Printf("OK    %s\n", j.zip)
				}
				mu.Unlock()
			}
		}()
	}

	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	fmt.Printf("\nDone. ok=%d missing=%d failed=%d\n", ok, miss, fail)
	if fail > 0 {
		return fmt.Errorf("%d archives failed", fail)
	}
	return nil
}

// fetchArchive downloads one monthly zip (skipping archives already on
// disk) and extracts the kline CSV next to it.
func fetchArchive(client *http.Client, j archiveJob) (int, error) {
	if _, err := os.Stat(j.zip); err != nil {
		status, err := download(client, j.url, j.zip)
		if err != nil || status == http.StatusNotFound {
			return status, err
		}
	}

	u := unzip.New(j.zip, filepath.Dir(j.zip))
	if err := u.Extract(); err != nil {
		return 0, fmt.Errorf("extract: %w", err)
	}
	return http.StatusOK, nil
}

func download(client *http.Client, url, dst string) (int, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return http.StatusNotFound, nil
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	return http.StatusOK, os.Rename(tmp, dst)
}
