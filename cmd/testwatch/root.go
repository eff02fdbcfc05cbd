package main

import (
	"github.com/spf13/cobra"

	"testwatch/internal/version"
)

var (
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "testwatch",
	Short: "testwatch - change-impact analysis and test watch supervision",
	Long: `testwatch analyzes uncommitted changes in JavaScript/TypeScript repositories,
predicts which test files are affected and how they are likely to fail, and
supervises test runners in continuous watch mode with a bounded failure
resolution protocol.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("testwatch version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default: from config)")
}
