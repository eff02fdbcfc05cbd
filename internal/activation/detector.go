// Package activation decides whether continuous watch mode should engage.
//
// Three independent signals are sampled: recently modified code files,
// uncommitted git entries, and test-related keywords in a free-text session
// log. Each probe is failure-tolerant; a probe that errors is simply "no
// signal". The probes have no ordering dependency and run concurrently.
package activation

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"testwatch/internal/logging"
	"testwatch/internal/testpath"
	"testwatch/internal/vcs"
)

// Signals records which probes fired
type Signals struct {
	FileModification bool `json:"fileModification"`
	GitStatus        bool `json:"gitStatus"`
	SessionContext   bool `json:"sessionContext"`
}

// DetectionResult is the outcome of one heuristic pass
type DetectionResult struct {
	Enabled bool    `json:"enabled"`
	Reason  string  `json:"reason"`
	Signals Signals `json:"signals"`
}

// recentLineWindow is how many trailing session-log lines are scanned
// separately to weight recent activity.
const recentLineWindow = 50

// Detector samples activation signals for a repository
type Detector struct {
	repoRoot    string
	sourceRoots []string
	keywords    []string
	inspector   *vcs.Inspector
	logger      *logging.Logger

	// now is injectable for tests
	now func() time.Time
}

// NewDetector creates a Detector. sourceRoots are workspace-relative
// directories walked by the file-modification probe.
func NewDetector(repoRoot string, sourceRoots, keywords []string, inspector *vcs.Inspector, logger *logging.Logger) *Detector {
	return &Detector{
		repoRoot:    repoRoot,
		sourceRoots: sourceRoots,
		keywords:    keywords,
		inspector:   inspector,
		logger:      logger,
		now:         time.Now,
	}
}

type probeResult struct {
	fired    bool
	evidence string
}

// ShouldActivate samples all three signals and ORs them together.
// sessionLog is free text supplied by the caller; it may be empty.
func (d *Detector) ShouldActivate(ctx context.Context, sessionLog string, window time.Duration) DetectionResult {
	var fileRes, gitRes, sessionRes probeResult

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		fileRes = d.probeFileModifications(window)
	}()
	go func() {
		defer wg.Done()
		gitRes = d.probeGitStatus(ctx)
	}()
	go func() {
		defer wg.Done()
		sessionRes = d.probeSessionContext(sessionLog)
	}()
	wg.Wait()

	result := DetectionResult{
		Enabled: fileRes.fired || gitRes.fired || sessionRes.fired,
		Signals: Signals{
			FileModification: fileRes.fired,
			GitStatus:        gitRes.fired,
			SessionContext:   sessionRes.fired,
		},
	}

	var parts []string
	for _, res := range []probeResult{fileRes, gitRes, sessionRes} {
		if res.fired {
			parts = append(parts, res.evidence)
		}
	}
	if len(parts) > 0 {
		result.Reason = strings.Join(parts, "; ")
	} else {
		result.Reason = "no activation signals detected (file modifications, git status, and session context are all quiet); a mandatory fallback prompt is required to enable watch mode"
	}

	d.logger.Debug("Activation heuristic evaluated", map[string]interface{}{
		"enabled":          result.Enabled,
		"fileModification": fileRes.fired,
		"gitStatus":        gitRes.fired,
		"sessionContext":   sessionRes.fired,
	})

	return result
}

// probeFileModifications walks the source roots for code files whose mtime
// falls within the window. Walk errors are skipped, not surfaced.
func (d *Detector) probeFileModifications(window time.Duration) probeResult {
	cutoff := d.now().Add(-window)
	count := 0

	for _, root := range d.sourceRoots {
		rootPath := filepath.Join(d.repoRoot, root)
		_ = filepath.WalkDir(rootPath, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable entries are no signal
			}
			if entry.IsDir() {
				if testpath.IsIgnoredDirName(entry.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			rel, relErr := filepath.Rel(d.repoRoot, path)
			if relErr != nil {
				rel = path
			}
			if !testpath.IsSourceFile(rel) && !testpath.IsTestFile(rel) {
				return nil
			}

			info, infoErr := entry.Info()
			if infoErr != nil {
				return nil
			}
			if info.ModTime().After(cutoff) {
				count++
			}
			return nil
		})
	}

	if count == 0 {
		return probeResult{}
	}
	return probeResult{
		fired:    true,
		evidence: fmt.Sprintf("%d code file(s) modified within the window", count),
	}
}

// probeGitStatus flags any uncommitted test or application code file
func (d *Detector) probeGitStatus(ctx context.Context) probeResult {
	count := 0
	for _, entry := range d.inspector.UncommittedFiles(ctx) {
		if testpath.IsSourceFile(entry.Path) || testpath.IsTestFile(entry.Path) {
			count++
		}
	}

	if count == 0 {
		return probeResult{}
	}
	return probeResult{
		fired:    true,
		evidence: fmt.Sprintf("%d uncommitted test/app file(s)", count),
	}
}

// probeSessionContext scans the session log for test-related keywords, over
// the whole log and again over its trailing lines to weight recent activity
func (d *Detector) probeSessionContext(sessionLog string) probeResult {
	if strings.TrimSpace(sessionLog) == "" || len(d.keywords) == 0 {
		return probeResult{}
	}

	lowered := strings.ToLower(sessionLog)
	lines := strings.Split(lowered, "\n")
	recentStart := len(lines) - recentLineWindow
	if recentStart < 0 {
		recentStart = 0
	}
	recent := strings.Join(lines[recentStart:], "\n")

	total := 0
	recentHits := 0
	for _, kw := range d.keywords {
		kwLower := strings.ToLower(kw)
		total += strings.Count(lowered, kwLower)
		recentHits += strings.Count(recent, kwLower)
	}

	if total == 0 {
		return probeResult{}
	}
	return probeResult{
		fired:    true,
		evidence: fmt.Sprintf("session log references testing (%d keyword hit(s), %d recent)", total, recentHits),
	}
}
