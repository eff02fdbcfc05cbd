package activation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"testwatch/internal/logging"
	"testwatch/internal/runner"
	"testwatch/internal/vcs"
)

var defaultKeywords = []string{"test", "vitest", "failing", "tdd"}

func newTestDetector(repoRoot string, mock *runner.MockRunner) *Detector {
	logger := logging.NewNopLogger()
	return NewDetector(repoRoot, []string{"src"}, defaultKeywords,
		vcs.NewInspector(repoRoot, mock, logger), logger)
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("export const x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestShouldActivateOnRecentFileModification(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "api.ts"))

	d := newTestDetector(dir, runner.NewMockRunner())
	result := d.ShouldActivate(context.Background(), "", 30*time.Minute)

	if !result.Enabled {
		t.Fatalf("freshly written source file must activate: %+v", result)
	}
	if !result.Signals.FileModification {
		t.Errorf("file modification signal must fire")
	}
	if !strings.Contains(result.Reason, "modified within the window") {
		t.Errorf("reason must carry probe evidence: %q", result.Reason)
	}
}

func TestShouldActivateIgnoresOldFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src", "api.ts")
	writeFile(t, path)
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	d := newTestDetector(dir, runner.NewMockRunner())
	result := d.ShouldActivate(context.Background(), "", 30*time.Minute)

	if result.Signals.FileModification {
		t.Errorf("file outside the window must not fire: %+v", result)
	}
}

func TestShouldActivateIgnoresDependencyDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "node_modules", "pkg", "index.ts"))
	writeFile(t, filepath.Join(dir, "src", "notes.md"))

	d := newTestDetector(dir, runner.NewMockRunner())
	result := d.ShouldActivate(context.Background(), "", 30*time.Minute)

	if result.Signals.FileModification {
		t.Errorf("dependency and non-code files must not fire: %+v", result)
	}
}

func TestShouldActivateOnGitStatus(t *testing.T) {
	dir := t.TempDir()
	mock := runner.NewMockRunner()
	mock.SetCommand("git status --porcelain", " M src/api.ts", "", nil)

	d := newTestDetector(dir, mock)
	result := d.ShouldActivate(context.Background(), "", 30*time.Minute)

	if !result.Enabled || !result.Signals.GitStatus {
		t.Fatalf("uncommitted source file must activate: %+v", result)
	}
}

func TestShouldActivateGitFailureIsNoSignal(t *testing.T) {
	dir := t.TempDir()
	// No commands configured: git calls fail, which must read as quiet
	d := newTestDetector(dir, runner.NewMockRunner())
	result := d.ShouldActivate(context.Background(), "", 30*time.Minute)

	if result.Signals.GitStatus {
		t.Errorf("git failure must degrade to no signal: %+v", result)
	}
}

func TestShouldActivateOnSessionContext(t *testing.T) {
	dir := t.TempDir()
	d := newTestDetector(dir, runner.NewMockRunner())

	log := "user: my vitest run keeps failing\nassistant: let's look at the test"
	result := d.ShouldActivate(context.Background(), log, 30*time.Minute)

	if !result.Enabled || !result.Signals.SessionContext {
		t.Fatalf("test-related session log must activate: %+v", result)
	}
}

func TestShouldActivateQuietSessionLog(t *testing.T) {
	dir := t.TempDir()
	d := newTestDetector(dir, runner.NewMockRunner())

	result := d.ShouldActivate(context.Background(), "discussing deployment pipelines", 30*time.Minute)

	if result.Signals.SessionContext {
		t.Errorf("keyword-free log must not fire: %+v", result)
	}
}

func TestShouldActivateAllQuietRequiresFallbackPrompt(t *testing.T) {
	dir := t.TempDir()
	d := newTestDetector(dir, runner.NewMockRunner())

	result := d.ShouldActivate(context.Background(), "", 30*time.Minute)

	if result.Enabled {
		t.Fatalf("no signals must mean disabled: %+v", result)
	}
	if !strings.Contains(result.Reason, "fallback prompt") {
		t.Errorf("reason must demand the fallback prompt: %q", result.Reason)
	}
}

func TestShouldActivateJoinsMultipleEvidences(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "api.ts"))
	mock := runner.NewMockRunner()
	mock.SetCommand("git status --porcelain", " M src/api.ts", "", nil)

	d := newTestDetector(dir, mock)
	result := d.ShouldActivate(context.Background(), "fixing a failing test", 30*time.Minute)

	if !result.Enabled {
		t.Fatalf("expected activation: %+v", result)
	}
	if strings.Count(result.Reason, ";") < 2 {
		t.Errorf("all three evidences should be joined: %q", result.Reason)
	}
}
