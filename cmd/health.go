package cmd

import (
	"github.com/spf13/cobra"

	"github.com/viktsys/tradestore/client"
)

var healthCMD = &cobra.Command{
	Use:   "health",
	Short: "Check that the API is running",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkHealth(cmd.Context(), client.New(apiURL), cmd.OutOrStdout()); err != nil {
			cliLogger().Fatalf("API health check failed: %v", err)
		}
	},
}

func init() {
	healthCMD.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API base URL")
}
