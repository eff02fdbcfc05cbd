// Package vcs retrieves diffs and working-tree status from git.
//
// Every operation degrades to an empty result when git is missing, the
// directory is not a repository, or a command fails. Classification has to
// keep going on a best-effort basis, so nothing here returns a hard error
// for those cases.
package vcs

import (
	"context"
	"strings"

	"testwatch/internal/logging"
	"testwatch/internal/runner"
)

// StatusEntry represents one line of porcelain status output
type StatusEntry struct {
	// Status is the two-character XY status code (e.g. " M", "??", "A ")
	Status string `json:"status"`
	// Path is the workspace-relative file path
	Path string `json:"path"`
}

// Inspector retrieves diffs and uncommitted state for a repository
type Inspector struct {
	repoRoot string
	runner   runner.ExecRunner
	logger   *logging.Logger
}

// NewInspector creates an Inspector rooted at repoRoot
func NewInspector(repoRoot string, run runner.ExecRunner, logger *logging.Logger) *Inspector {
	return &Inspector{
		repoRoot: repoRoot,
		runner:   run,
		logger:   logger,
	}
}

// IsRepository reports whether repoRoot is inside a git repository
func (i *Inspector) IsRepository(ctx context.Context) bool {
	_, _, err := i.runner.Run(ctx, i.repoRoot, "git", "rev-parse", "--git-dir")
	return err == nil
}

// Diff returns the unified diff of file against its last committed revision.
// New, untracked, and never-committed files yield an empty string, as does
// any git failure.
func (i *Inspector) Diff(ctx context.Context, file string) string {
	stdout, stderr, err := i.runner.Run(ctx, i.repoRoot, "git", "diff", "HEAD", "--", file)
	if err != nil {
		i.logger.Debug("git diff failed, treating as no diff", map[string]interface{}{
			"file":   file,
			"stderr": stderr,
			"error":  err.Error(),
		})
		return ""
	}
	return stdout
}

// UncommittedFiles returns the porcelain status entries for the repository.
// Failures yield an empty slice.
func (i *Inspector) UncommittedFiles(ctx context.Context) []StatusEntry {
	stdout, stderr, err := i.runner.Run(ctx, i.repoRoot, "git", "status", "--porcelain")
	if err != nil {
		i.logger.Warn("git status failed, assuming clean tree", map[string]interface{}{
			"stderr": stderr,
			"error":  err.Error(),
		})
		return nil
	}

	return ParseStatus(stdout)
}

// ParseStatus parses porcelain status output ("XY <path>" per line).
// Rename entries ("XY old -> new") report the new path.
func ParseStatus(output string) []StatusEntry {
	if strings.TrimSpace(output) == "" {
		return nil
	}

	var entries []StatusEntry
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 4 {
			continue
		}

		status := line[:2]
		path := strings.TrimSpace(line[3:])
		if path == "" {
			continue
		}

		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+4:]
		}

		// Porcelain quotes paths containing special characters
		path = strings.Trim(path, `"`)

		entries = append(entries, StatusEntry{Status: status, Path: path})
	}

	return entries
}
