// Package main is the entry point for the traycast daemon and CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "traycast",
	Short: "Weather companion docked beside the desktop tray",
	Long: `traycast keeps a small weather window docked next to the panel's
system tray, following the panel as it moves, hides or rescales.`,
	SilenceUsage: true,
}

// configPath overrides the XDG config location for every subcommand.
var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.config/traycast/config.yaml)")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(detailCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
