// Package cmd implements the pairline CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pairline",
	Short: "pairline — anonymous two-party matchmaking service",
	Long: `pairline pairs anonymous callers into two-party real-time channels,
assigns each pairing a conversation topic, and mints join credentials
for the underlying media transport.`,
}

// Execute runs the CLI.
func Execute() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(topicsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
