package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relayo-sync",
	Short: "Relayo calendar sync",
	Long:  `Reconciles connected Google Calendars into reservations and mirrors them to Sheets.`,
}

// Execute runs the root command. It is called once by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
