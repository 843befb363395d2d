package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCMD = &cobra.Command{
	Use:   "tradestore",
	Short: "Trade record management API",
	Long: `A CLI application for storing and managing trade records.
It serves a REST API that creates, reads, updates and deletes trades,
and can load sample trades into a running server.`,
}

func Execute() {
	err := rootCMD.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCMD.AddCommand(serverCMD, loadCMD, clearCMD, healthCMD)
}
