// Package cmd wires the optimization core to a thin CLI. CSV ingestion
// here is a minimal demonstration loader only — full ingestion/validation
// is out of the core's scope and belongs to an external collaborator.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	rosterPath string
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "classalloc",
	Short: "Class roster assignment optimization engine",
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rosterPath, "roster", "", "path to a student roster CSV")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config overriding the defaults")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(optimizeCmd)
}
