// Package cli provides the beadhub-server command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set by the release build via -ldflags; empty in dev builds.
var Version string

// exitCode is set by a RunE before returning so Execute can report the
// precise code from spec.md §6 even when cobra itself only ever sees
// "error or no error". 0 clean shutdown, 1 fatal config/startup error, 2
// dependency unreachable after boot retries, 130 SIGINT.
var exitCode int

var rootCmd = &cobra.Command{
	Use:          "beadhub-server",
	Short:        "BeadHub coordination server",
	Version:      Version,
	SilenceUsage: true,
	Long: `beadhub-server runs the multi-tenant coordination backend for
autonomous coding-agent teams: bead sync, claims, chat, mail, reservations,
policy, and escalations over one HTTP API.`,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	exitCode = 0
	if err := rootCmd.Execute(); err != nil && exitCode == 0 {
		exitCode = 1
	}
	return exitCode
}
