package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"testwatch/internal/config"
	"testwatch/internal/logging"
	"testwatch/internal/runner"
	"testwatch/internal/vcs"
)

// getRepoRoot returns the repository root directory.
func getRepoRoot() (string, error) {
	return os.Getwd()
}

// mustGetRepoRoot returns the repository root or exits on error.
func mustGetRepoRoot() string {
	repoRoot, err := getRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return repoRoot
}

// loadConfig loads the repository configuration, falling back to defaults
// when no config file exists or the file is unreadable. A nil logger is
// allowed for commands that build their logger from the loaded config.
func loadConfig(repoRoot string, logger *logging.Logger) *config.Config {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		logger.Warn("Failed to load config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return config.DefaultConfig()
	}
	return cfg
}

// newLogger creates a logger honoring the config and the --log-level flag.
func newLogger(cfg *config.Config) *logging.Logger {
	format := logging.HumanFormat
	if cfg.Logging.Format == "json" {
		format = logging.JSONFormat
	}
	level := logging.LogLevel(cfg.Logging.Level)
	if logLevelFlag != "" {
		level = logging.LogLevel(logLevelFlag)
	}
	if level == "" {
		level = logging.InfoLevel
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  level,
	})
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}

// newInspector wires a git inspector with the default exec runner.
func newInspector(repoRoot string, logger *logging.Logger) *vcs.Inspector {
	return vcs.NewInspector(repoRoot, runner.NewRealRunner(10*time.Second), logger)
}
