package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "tourneyprobe",
	Short: "End-to-end smoke harness for the tournament API",
	Long: `Tourneyprobe exercises a running tournament API end to end:
it builds a chain of dependent resources (users, a tournament,
registrations, participants, a match), probes the self-service and
admin endpoints plus the realtime WebSocket, and tears everything
down again in exact reverse creation order.

Credentials come from the environment:
  TOURNEYPROBE_AUTH_TOKEN    pre-issued user session token
  TOURNEYPROBE_ADMIN_SECRET  shared admin secret`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "Configuration directory (default: ~/.config/tourneyprobe)")

	rootCmd.AddCommand(
		versionCmd,
		runCmd,
		planCmd,
		cleanupCmd,
		logsCmd,
	)
}

func getConfigDir() string {
	if configDir != "" {
		return configDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tourneyprobe")
}
