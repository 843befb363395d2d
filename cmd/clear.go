package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viktsys/tradestore/client"
	"github.com/viktsys/tradestore/ingest"
)

var clearCMD = &cobra.Command{
	Use:   "clear",
	Short: "Delete every trade through the API",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := cliLogger()

		processor := ingest.NewProcessor(client.New(apiURL), ingest.DefaultWorkerCount, log)
		n, err := processor.Clear(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d trades\n", n)
		if err != nil {
			log.Fatalf("Failed to clear all trades: %v", err)
		}
	},
}

func init() {
	clearCMD.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API base URL")
}
