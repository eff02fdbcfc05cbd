package predict

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"testwatch/internal/classify"
	"testwatch/internal/logging"
	"testwatch/internal/runner"
	"testwatch/internal/testpath"
	"testwatch/internal/vcs"
)

// fakeStat builds a Stat function that reports the given paths as files
func fakeStat(existing ...string) func(string) (os.FileInfo, error) {
	set := make(map[string]bool, len(existing))
	for _, p := range existing {
		set[p] = true
	}
	return func(path string) (os.FileInfo, error) {
		if set[path] {
			return fakeFileInfo{name: path}, nil
		}
		return nil, os.ErrNotExist
	}
}

type fakeFileInfo struct{ name string }

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() os.FileMode  { return 0644 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() interface{}   { return nil }

func newTestPredictor(mock *runner.MockRunner, existing ...string) *Predictor {
	logger := logging.NewNopLogger()
	return NewPredictor(
		vcs.NewInspector("/repo", mock, logger),
		classify.NewRegexClassifier(),
		&testpath.Resolver{Stat: fakeStat(existing...)},
		logger,
	)
}

func TestAnalyzeMapsSourcesToExistingTests(t *testing.T) {
	p := newTestPredictor(runner.NewMockRunner(), "src/math.test.ts")

	result := p.Analyze(context.Background(), []string{"src/math.ts", "src/untested.ts"}, Options{})

	if len(result.AffectedTests) != 1 || result.AffectedTests[0] != "src/math.test.ts" {
		t.Errorf("expected [src/math.test.ts], got %+v", result.AffectedTests)
	}
	if result.ChangeType != classify.UnknownChange || result.Confidence != classify.LowConfidence {
		t.Errorf("without detailed analysis classification must stay unknown/low, got %s/%s",
			result.ChangeType, result.Confidence)
	}
	if result.ShouldPromptBeforeRunning {
		t.Errorf("unknown change type must not prompt")
	}
}

func TestAnalyzeDeduplicatesAndSorts(t *testing.T) {
	p := newTestPredictor(runner.NewMockRunner(), "src/b.test.ts", "src/a.test.ts")

	result := p.Analyze(context.Background(),
		[]string{"src/b.ts", "src/a.ts", "src/b.ts"}, Options{})

	want := []string{"src/a.test.ts", "src/b.test.ts"}
	if len(result.AffectedTests) != 2 {
		t.Fatalf("expected 2 tests, got %+v", result.AffectedTests)
	}
	for i := range want {
		if result.AffectedTests[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, result.AffectedTests[i], want[i])
		}
	}
}

func TestAnalyzeDetailedBreakingChange(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetCommand("git diff HEAD -- src/api.ts",
		"-export function fetchUser(id: string) {\n+export function fetchUser(id: string, opts: Options) {", "", nil)

	p := newTestPredictor(mock, "src/api.test.ts")

	result := p.Analyze(context.Background(), []string{"src/api.ts"}, Options{DetailedAnalysis: true})

	if result.ChangeType != classify.Breaking {
		t.Fatalf("expected breaking, got %s", result.ChangeType)
	}
	if result.Confidence != classify.HighConfidence {
		t.Errorf("expected high confidence, got %s", result.Confidence)
	}
	if !result.ShouldPromptBeforeRunning {
		t.Errorf("breaking/high must prompt before running")
	}
	if !strings.Contains(result.Summary, "WARNING") {
		t.Errorf("summary must warn on breaking changes: %q", result.Summary)
	}

	if len(result.Predictions) != 1 {
		t.Fatalf("expected one prediction, got %+v", result.Predictions)
	}
	pred := result.Predictions[0]
	if pred.TestFile != "src/api.test.ts" {
		t.Errorf("prediction targets %s, want src/api.test.ts", pred.TestFile)
	}
	if pred.SuggestedAction != "Update test call sites to match the new signature" {
		t.Errorf("unexpected action: %q", pred.SuggestedAction)
	}
}

func TestAnalyzeIncludesUncommitted(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetCommand("git status --porcelain", " M src/extra.ts\n?? README.md", "", nil)

	p := newTestPredictor(mock, "src/extra.test.ts")

	result := p.Analyze(context.Background(), nil, Options{IncludeUncommitted: true})

	if len(result.AffectedTests) != 1 || result.AffectedTests[0] != "src/extra.test.ts" {
		t.Errorf("expected uncommitted source to contribute, got %+v", result.AffectedTests)
	}
}

func TestAnalyzeGitFailureDegradesGracefully(t *testing.T) {
	// No mock commands configured: every git call fails
	p := newTestPredictor(runner.NewMockRunner(), "src/api.test.ts")

	result := p.Analyze(context.Background(), []string{"src/api.ts"},
		Options{IncludeUncommitted: true, DetailedAnalysis: true})

	if len(result.AffectedTests) != 1 {
		t.Errorf("mapping must survive git failure, got %+v", result.AffectedTests)
	}
	if len(result.DetectedChanges) != 0 {
		t.Errorf("no diffs means no detected changes, got %+v", result.DetectedChanges)
	}
	if result.Summary == "" {
		t.Errorf("summary must always be populated")
	}
}

func TestAnalyzeSkipsTestAndConfigInputs(t *testing.T) {
	p := newTestPredictor(runner.NewMockRunner(), "src/api.test.test.ts")

	result := p.Analyze(context.Background(),
		[]string{"src/api.test.ts", "vitest.config.ts", "node_modules/x/y.js"}, Options{})

	if len(result.AffectedTests) != 0 {
		t.Errorf("non-source inputs must be filtered, got %+v", result.AffectedTests)
	}
}

func TestBuildPredictionActionPriority(t *testing.T) {
	changes := []classify.Change{
		{Kind: classify.KindRename, Details: "renamed"},
		{Kind: classify.KindSignature, Details: "sig changed"},
	}

	pred := buildPrediction("src/x.test.ts", changes)
	if pred.SuggestedAction != "Update test call sites to match the new signature" {
		t.Errorf("signature action must win over rename: %q", pred.SuggestedAction)
	}
	if len(pred.LikelyFailures) != 2 {
		t.Errorf("expected one failure mode per distinct kind, got %+v", pred.LikelyFailures)
	}
	if !strings.Contains(pred.Reason, "renamed") || !strings.Contains(pred.Reason, "sig changed") {
		t.Errorf("reason must join all details: %q", pred.Reason)
	}
}
