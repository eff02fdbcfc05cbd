package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"testwatch/internal/history"
	"testwatch/internal/runner"
	"testwatch/internal/watch"
)

var (
	watchSkipInitial bool
	watchFormat      string
)

var watchCmd = &cobra.Command{
	Use:   "watch [target]",
	Short: "Run a test tool in continuous mode under supervision",
	Long: `Spawn the configured test command in continuous watch mode and supervise it.

Before entering continuous mode a single-shot run is performed so broken
setups fail fast. Completed test cycles are detected in the runner output;
on the first failing cycle the failure is classified as test-code or
application-code and resolved via the fix-test/fix-app/skip/stop protocol.
Interrupt (Ctrl-C) stops the session and kills the child process.

Examples:
  testwatch watch                  # Default target from config
  testwatch watch integration      # Named target
  testwatch watch --skip-initial   # Go straight to continuous mode`,
	Args: cobra.MaximumNArgs(1),
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchSkipInitial, "skip-initial", false, "Skip the single-shot run before continuous mode")
	watchCmd.Flags().StringVar(&watchFormat, "format", "human", "Result format (json, yaml, human)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := loadConfig(repoRoot, nil)
	logger := newLogger(cfg)

	target := cfg.Watch.DefaultTarget
	if len(args) > 0 {
		target = args[0]
	}

	initialTimeout := watch.InitialRunTimeout(cfg.Watch)
	supervisor := watch.NewSupervisor(
		repoRoot,
		cfg.Watch,
		nil, // built-in heuristic analyzer
		nil, // default resolution
		watch.NewPermissionStore(),
		runner.NewRealRunner(initialTimeout),
		logger,
	)

	if !watchSkipInitial {
		ctx, cancel := context.WithTimeout(context.Background(), initialTimeout)
		output, err := supervisor.RunInitial(ctx, target)
		cancel()
		if err != nil {
			if output != "" {
				fmt.Fprintln(os.Stderr, output)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	// History is best-effort; a broken database never blocks watching
	var (
		store     *history.Store
		sessionID string
	)
	if cfg.History.Enabled {
		s, err := history.Open(repoRoot, cfg.History.Path, logger)
		if err != nil {
			logger.Warn("Session history unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			store = s
			defer store.Close()
			if id, err := store.RecordStart(target, time.Now()); err == nil {
				sessionID = id
			} else {
				logger.Warn("Failed to record session start", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := supervisor.Watch(ctx, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if store != nil && sessionID != "" {
		if err := store.RecordEnd(sessionID, time.Now(), result.Cycles, result.FailedCycles, result.Stopped, result.Success); err != nil {
			logger.Warn("Failed to record session end", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if err := printResponse(result, watchFormat, func() string {
		return formatWatchHuman(result)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	if !result.Success {
		os.Exit(1)
	}
}

func formatWatchHuman(result *watch.WatchModeResult) string {
	status := "failed"
	switch {
	case result.Stopped:
		status = "stopped"
	case result.Success:
		status = "passed"
	}

	out := fmt.Sprintf("Watch session %s (%d cycle(s), %d failed)", status, result.Cycles, result.FailedCycles)
	for _, e := range result.Errors {
		out += fmt.Sprintf("\n  [%s/%s] %s", e.ErrorType, e.Confidence, e.Recommendation)
	}
	return out
}
