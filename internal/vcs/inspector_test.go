package vcs

import (
	"context"
	"errors"
	"testing"

	"testwatch/internal/logging"
	"testwatch/internal/runner"
)

func TestDiffReturnsOutput(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetCommand("git diff HEAD -- src/api.ts", "-old line\n+new line", "", nil)

	inspector := NewInspector("/repo", mock, logging.NewNopLogger())
	got := inspector.Diff(context.Background(), "src/api.ts")
	if got != "-old line\n+new line" {
		t.Errorf("unexpected diff output: %q", got)
	}
}

func TestDiffDegradesToEmptyOnFailure(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetCommand("git", "", "fatal: not a git repository", errors.New("exit status 128"))

	inspector := NewInspector("/repo", mock, logging.NewNopLogger())
	if got := inspector.Diff(context.Background(), "src/api.ts"); got != "" {
		t.Errorf("expected empty diff on git failure, got %q", got)
	}
}

func TestUncommittedFilesDegradesToNil(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetCommand("git", "", "", errors.New("git not found"))

	inspector := NewInspector("/repo", mock, logging.NewNopLogger())
	if got := inspector.UncommittedFiles(context.Background()); got != nil {
		t.Errorf("expected nil on git failure, got %+v", got)
	}
}

func TestIsRepository(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetCommand("git rev-parse --git-dir", ".git", "", nil)

	inspector := NewInspector("/repo", mock, logging.NewNopLogger())
	if !inspector.IsRepository(context.Background()) {
		t.Errorf("expected repository detection to succeed")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []StatusEntry
	}{
		{
			name:   "empty output",
			output: "",
			want:   nil,
		},
		{
			name:   "modified and untracked",
			output: " M src/api.ts\n?? src/new.ts",
			want: []StatusEntry{
				{Status: " M", Path: "src/api.ts"},
				{Status: "??", Path: "src/new.ts"},
			},
		},
		{
			name:   "rename reports the new path",
			output: "R  src/old.ts -> src/new.ts",
			want: []StatusEntry{
				{Status: "R ", Path: "src/new.ts"},
			},
		},
		{
			name:   "quoted path",
			output: `?? "src/with space.ts"`,
			want: []StatusEntry{
				{Status: "??", Path: "src/with space.ts"},
			},
		},
		{
			name:   "short garbage lines skipped",
			output: " M src/api.ts\nxx\n",
			want: []StatusEntry{
				{Status: " M", Path: "src/api.ts"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStatus(tt.output)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
