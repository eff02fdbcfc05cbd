package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"testwatch/internal/activation"
)

var (
	detectWindow     int
	detectSessionLog string
	detectFormat     string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Decide whether continuous watch mode should engage",
	Long: `Sample the three activation signals (recent file modifications, uncommitted
git changes, test-related session context) and report whether watch mode
should be enabled.

When no signal fires, the result carries a reason stating that a fallback
prompt is required; the decision to watch is then the operator's.

Examples:
  testwatch detect                           # Default 30-minute window
  testwatch detect --window=10               # Tighter modification window
  testwatch detect --session-log=session.txt # Scan a session transcript`,
	Run: runDetect,
}

func init() {
	detectCmd.Flags().IntVar(&detectWindow, "window", 0, "File-modification window in minutes (default: from config)")
	detectCmd.Flags().StringVar(&detectSessionLog, "session-log", "", "Path to a session transcript to scan for test-related keywords")
	detectCmd.Flags().StringVar(&detectFormat, "format", "human", "Output format (json, yaml, human)")

	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := loadConfig(repoRoot, nil)
	logger := newLogger(cfg)
	ctx := newContext()

	sessionLog := ""
	if detectSessionLog != "" {
		data, err := os.ReadFile(detectSessionLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading session log: %v\n", err)
			os.Exit(1)
		}
		sessionLog = string(data)
	}

	windowMinutes := cfg.Activation.WindowMinutes
	if detectWindow > 0 {
		windowMinutes = detectWindow
	}

	detector := activation.NewDetector(
		repoRoot,
		cfg.SourceRoots,
		cfg.Activation.Keywords,
		newInspector(repoRoot, logger),
		logger,
	)

	result := detector.ShouldActivate(ctx, sessionLog, time.Duration(windowMinutes)*time.Minute)

	if err := printResponse(result, detectFormat, func() string {
		return formatDetectHuman(result)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}

func formatDetectHuman(result activation.DetectionResult) string {
	var b strings.Builder

	if result.Enabled {
		b.WriteString("Watch mode: recommended\n")
	} else {
		b.WriteString("Watch mode: not recommended\n")
	}
	fmt.Fprintf(&b, "Reason: %s\n", result.Reason)
	fmt.Fprintf(&b, "Signals: fileModification=%t gitStatus=%t sessionContext=%t",
		result.Signals.FileModification, result.Signals.GitStatus, result.Signals.SessionContext)

	return b.String()
}
