package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"testwatch/internal/classify"
	"testwatch/internal/predict"
	"testwatch/internal/testpath"
)

var (
	impactUncommitted bool
	impactDetailed    bool
	impactFormat      string
)

var impactCmd = &cobra.Command{
	Use:   "impact [files...]",
	Short: "Predict which tests are affected by changed files",
	Long: `Analyze changed source files, resolve their conventional test files, and
predict how those tests are likely to fail.

With --detailed, uncommitted diffs are retrieved from git and classified
line-by-line into change kinds (signature, rename, remove). Without it only
the source-to-test mapping is computed.

Examples:
  testwatch impact src/api.ts                 # Map one file to its tests
  testwatch impact --uncommitted              # Include everything git reports as changed
  testwatch impact --uncommitted --detailed   # Classify diffs and predict failures
  testwatch impact --format=list              # Output just test paths (for CI)`,
	Run: runImpact,
}

func init() {
	impactCmd.Flags().BoolVar(&impactUncommitted, "uncommitted", false, "Union input files with uncommitted git changes")
	impactCmd.Flags().BoolVar(&impactDetailed, "detailed", false, "Retrieve and classify diffs per file")
	impactCmd.Flags().StringVar(&impactFormat, "format", "human", "Output format (json, yaml, human, list)")

	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) {
	start := time.Now()
	repoRoot := mustGetRepoRoot()
	cfg := loadConfig(repoRoot, nil)
	logger := newLogger(cfg)
	ctx := newContext()

	if len(args) == 0 && !impactUncommitted {
		fmt.Fprintln(os.Stderr, "Error: no files given; pass file paths or --uncommitted")
		os.Exit(1)
	}

	predictor := predict.NewPredictor(
		newInspector(repoRoot, logger),
		classify.NewRegexClassifier(),
		testpath.NewResolver(),
		logger,
	)

	analysis := predictor.Analyze(ctx, args, predict.Options{
		IncludeUncommitted: impactUncommitted,
		DetailedAnalysis:   impactDetailed,
	})

	if impactFormat == "list" {
		for _, test := range analysis.AffectedTests {
			fmt.Println(test)
		}
	} else if err := printResponse(analysis, impactFormat, func() string {
		return formatImpactHuman(analysis)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	logger.Debug("Impact analysis completed", map[string]interface{}{
		"affectedTests": len(analysis.AffectedTests),
		"duration":      time.Since(start).Milliseconds(),
	})
}

func formatImpactHuman(analysis *predict.TestImpactAnalysis) string {
	var b strings.Builder

	b.WriteString(analysis.Summary + "\n")
	fmt.Fprintf(&b, "Change type: %s (confidence: %s)\n", analysis.ChangeType, analysis.Confidence)

	if len(analysis.AffectedTests) > 0 {
		b.WriteString("\nAffected tests:\n")
		for _, test := range analysis.AffectedTests {
			fmt.Fprintf(&b, "  %s\n", test)
		}
	}

	for _, p := range analysis.Predictions {
		fmt.Fprintf(&b, "\n%s\n", p.TestFile)
		fmt.Fprintf(&b, "  reason: %s\n", p.Reason)
		for _, f := range p.LikelyFailures {
			fmt.Fprintf(&b, "  likely: %s\n", f)
		}
		fmt.Fprintf(&b, "  action: %s\n", p.SuggestedAction)
	}

	if analysis.ShouldPromptBeforeRunning {
		b.WriteString("\nPrompt before running: tests may legitimately need updating.\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
