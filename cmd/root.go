// Package cmd holds the command-line entry points for EchoFM's developer
// tooling. The audio engine itself is a library; these commands exercise it
// against an in-memory catalog or a live Redis/MySQL backend.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"EchoFM/config"
	"EchoFM/logger"
)

var rootCmd = &cobra.Command{
	Use:   "echofm",
	Short: "EchoFM is a client-side audio engine with mood-aware playback.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogPath,
		})
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
