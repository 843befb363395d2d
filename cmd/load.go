package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/viktsys/tradestore/client"
	"github.com/viktsys/tradestore/ingest"
	"github.com/viktsys/tradestore/logger"
)

const defaultAPIURL = "http://localhost:5000"

var (
	apiURL      string
	loadClear   bool
	loadWorkers int
)

var loadCMD = &cobra.Command{
	Use:   "load FILE...",
	Short: "Load sample trades into a running API",
	Long: `Read trades from JSON, YAML or CSV files and create them through the API
using a pool of concurrent workers. Exits non-zero when any trade is rejected.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := cliLogger()
		ctx := cmd.Context()
		c := client.New(apiURL)

		if err := checkHealth(ctx, c, cmd.OutOrStdout()); err != nil {
			log.Fatalf("API health check failed: %v", err)
		}

		processor := ingest.NewProcessor(c, loadWorkers, log)

		if loadClear {
			n, err := processor.Clear(ctx)
			if err != nil {
				log.Errorf("Failed to clear all trades: %v", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d trades\n", n)
		}

		summary, err := processor.LoadFiles(ctx, args...)
		if err != nil {
			log.Fatalf("Failed to load trades: %v", err)
		}

		printSummary(cmd.OutOrStdout(), summary)

		if trades, err := c.ListTrades(ctx); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Total trades in system: %d\n", len(trades))
		} else {
			log.Warnf("Failed to verify total trades: %v", err)
		}

		if !summary.OK() {
			log.Fatal("Data loading failed")
		}
	},
}

func init() {
	loadCMD.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API base URL")
	loadCMD.Flags().BoolVar(&loadClear, "clear", false, "delete all existing trades first")
	loadCMD.Flags().IntVarP(&loadWorkers, "workers", "w", ingest.DefaultWorkerCount, "concurrent requests")
}

func printSummary(w io.Writer, s ingest.Summary) {
	fmt.Fprintf(w, "Successfully created: %d trades\n", len(s.Created))
	fmt.Fprintf(w, "Failed to create: %d trades\n", len(s.Failed))

	if len(s.Failed) > 0 {
		fmt.Fprintln(w, "\nFailed trades:")
		for _, f := range s.Failed {
			fmt.Fprintf(w, "  - Trade %d (%s): %v\n", f.Index, f.Symbol, f.Err)
		}
	}
	if len(s.Created) > 0 {
		fmt.Fprintln(w, "\nCreated trade IDs:")
		for _, id := range s.Created {
			fmt.Fprintf(w, "  - %s\n", id)
		}
	}
}

func checkHealth(ctx context.Context, c *client.Client, w io.Writer) error {
	h, err := c.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "API is %s: %s (%s)\n", h.Status, h.Message, h.Timestamp)
	return nil
}

// cliLogger reads only the LOG_* variables; client commands need no server
// configuration.
func cliLogger() *logrus.Logger {
	var cfg logger.Config
	if err := env.Parse(&cfg); err != nil {
		logrus.Fatalf("Failed to load logging configuration: %v", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}
	return log
}
