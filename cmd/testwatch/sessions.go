package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"testwatch/internal/history"
)

var (
	sessionsLimit  int
	sessionsFormat string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent watch sessions",
	Run:   runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "Maximum number of sessions to list")
	sessionsCmd.Flags().StringVar(&sessionsFormat, "format", "human", "Output format (json, yaml, human)")

	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := loadConfig(repoRoot, nil)
	logger := newLogger(cfg)

	store, err := history.Open(repoRoot, cfg.History.Path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session history: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	sessions, err := store.ListRecent(sessionsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing sessions: %v\n", err)
		os.Exit(1)
	}

	if err := printResponse(sessions, sessionsFormat, func() string {
		return formatSessionsHuman(sessions)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}

func formatSessionsHuman(sessions []history.Session) string {
	if len(sessions) == 0 {
		return "No recorded sessions."
	}

	var b strings.Builder
	for _, s := range sessions {
		status := "failed"
		switch {
		case s.EndedAt == nil:
			status = "running"
		case s.Stopped:
			status = "stopped"
		case s.Success:
			status = "passed"
		}
		fmt.Fprintf(&b, "%s  %-12s %-7s cycles=%d failed=%d  %s\n",
			s.StartedAt.Format("2006-01-02 15:04"), s.Target, status, s.Cycles, s.Failures, s.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}
