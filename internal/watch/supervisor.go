// Package watch supervises a long-running test process in continuous mode.
//
// One supervised child process per session. All stream and lifecycle events
// are funneled through a single ordered channel per session, so the rolling
// output buffer has exactly one writer and resolution callbacks never run
// concurrently with buffer mutation.
package watch

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"testwatch/internal/config"
	twerrors "testwatch/internal/errors"
	"testwatch/internal/logging"
	"testwatch/internal/runner"
)

// chunkSize is the read size for stdout/stderr chunks
const chunkSize = 4096

// Supervisor spawns and supervises test tool processes
type Supervisor struct {
	repoRoot string
	cfg      config.WatchConfig
	logger   *logging.Logger
	analyzer ErrorAnalyzer
	resolve  ResolutionFunc
	perms    *PermissionStore
	runner   runner.ExecRunner
}

// NewSupervisor creates a Supervisor.
//
// analyzer may be nil, in which case the built-in HeuristicAnalyzer is used.
// resolve may be nil, in which case DefaultResolution applies. perms is the
// session's permission store; it is cleared when a watch session starts and
// must not be shared across concurrent sessions.
func NewSupervisor(repoRoot string, cfg config.WatchConfig, analyzer ErrorAnalyzer, resolve ResolutionFunc, perms *PermissionStore, run runner.ExecRunner, logger *logging.Logger) *Supervisor {
	if analyzer == nil {
		analyzer = NewHeuristicAnalyzer()
	}
	if resolve == nil {
		resolve = DefaultResolution
	}
	if perms == nil {
		perms = NewPermissionStore()
	}
	return &Supervisor{
		repoRoot: repoRoot,
		cfg:      cfg,
		logger:   logger,
		analyzer: analyzer,
		resolve:  resolve,
		perms:    perms,
		runner:   run,
	}
}

// CommandFor returns the continuous-mode command for a target. Unknown
// targets fall back to the default target.
func (s *Supervisor) CommandFor(target string) (string, string, error) {
	if cmd, ok := s.cfg.Targets[target]; ok {
		return cmd, target, nil
	}

	s.logger.Warn("Unknown watch target, falling back to default", map[string]interface{}{
		"target":  target,
		"default": s.cfg.DefaultTarget,
	})

	if cmd, ok := s.cfg.Targets[s.cfg.DefaultTarget]; ok {
		return cmd, s.cfg.DefaultTarget, nil
	}
	return "", "", twerrors.New(
		twerrors.TargetUnknown,
		fmt.Sprintf("no command configured for target %q or default %q", target, s.cfg.DefaultTarget),
		nil,
		twerrors.GetSuggestedFixes(twerrors.TargetUnknown),
	)
}

// RunInitial performs the single-shot test run used to fail fast before
// committing to a long-lived child process. The watch command's --watch flag
// is swapped for --run; tools without that convention just run their watch
// command once under the timeout.
func (s *Supervisor) RunInitial(ctx context.Context, target string) (string, error) {
	watchCmd, effective, err := s.CommandFor(target)
	if err != nil {
		return "", err
	}
	singleShot := strings.TrimSpace(strings.ReplaceAll(watchCmd, "--watch", "--run"))

	s.logger.Info("Running initial test pass", map[string]interface{}{
		"target":  effective,
		"command": singleShot,
	})

	stdout, stderr, runErr := s.runner.Run(ctx, s.repoRoot, "sh", "-c", singleShot)
	output := stdout
	if stderr != "" {
		output += "\n" + stderr
	}

	if runErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return output, twerrors.New(twerrors.Timeout, "initial test run timed out", runErr, nil)
		}
		return output, twerrors.New(
			twerrors.SpawnFailed,
			fmt.Sprintf("initial test run failed for target %q", effective),
			runErr,
			twerrors.GetSuggestedFixes(twerrors.SpawnFailed),
		)
	}
	return output, nil
}

type eventKind int

const (
	evChunk eventKind = iota
	evExit
)

type event struct {
	kind     eventKind
	chunk    string
	exitCode int
	waitErr  error
}

// Watch spawns the continuous-mode test command for target and supervises it
// until it exits, the context is cancelled, or a stop resolution is issued.
// The call resolves exactly once; spawn failures are reported in the result,
// not as an error.
func (s *Supervisor) Watch(ctx context.Context, target string) (*WatchModeResult, error) {
	cmdStr, effective, err := s.CommandFor(target)
	if err != nil {
		return nil, err
	}

	// Permission state is per session
	s.perms.Clear()

	s.logger.Info("Starting watch session", map[string]interface{}{
		"target":  effective,
		"command": cmdStr,
	})

	cmd := exec.Command("sh", "-c", cmdStr)
	cmd.Dir = s.repoRoot

	stdout, pipeErr := cmd.StdoutPipe()
	if pipeErr != nil {
		return spawnFailure(pipeErr), nil
	}
	stderr, pipeErr := cmd.StderrPipe()
	if pipeErr != nil {
		return spawnFailure(pipeErr), nil
	}

	if startErr := cmd.Start(); startErr != nil {
		s.logger.Error("Failed to spawn test tool", map[string]interface{}{
			"command": cmdStr,
			"error":   startErr.Error(),
		})
		return spawnFailure(startErr), nil
	}

	events := make(chan event, 16)
	var readers sync.WaitGroup
	readers.Add(2)
	go readChunks(stdout, events, &readers)
	go readChunks(stderr, events, &readers)

	go func() {
		readers.Wait()
		waitErr := cmd.Wait()
		code := 0
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else if waitErr != nil {
			code = -1
		}
		events <- event{kind: evExit, exitCode: code, waitErr: waitErr}
		close(events)
	}()

	sess := &session{
		logger:   s.logger,
		analyzer: s.analyzer,
		resolve:  s.resolve,
		perms:    s.perms,
		parser:   NewCycleParser(),
		kill:     func() { _ = cmd.Process.Kill() },
	}

	result := sess.run(events, ctx.Done())

	if result.Stopped {
		// Drain remaining events so the wait goroutine can finish
		go func() {
			for range events {
			}
		}()
	}

	s.logger.Info("Watch session finished", map[string]interface{}{
		"target":  effective,
		"success": result.Success,
		"stopped": result.Stopped,
		"errors":  len(result.Errors),
	})

	return result, nil
}

func spawnFailure(err error) *WatchModeResult {
	return &WatchModeResult{
		Success: false,
		Output:  fmt.Sprintf("failed to start test tool: %v", err),
		Stopped: false,
	}
}

// readChunks forwards raw output chunks to the session's event channel
func readChunks(r io.Reader, events chan<- event, wg *sync.WaitGroup) {
	defer wg.Done()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			events <- event{kind: evChunk, chunk: string(buf[:n])}
		}
		if err != nil {
			return
		}
	}
}

// session owns one watch session's rolling buffer and failure state.
// It is driven exclusively by its event channel.
type session struct {
	logger   *logging.Logger
	analyzer ErrorAnalyzer
	resolve  ResolutionFunc
	perms    *PermissionStore
	parser   *CycleParser
	kill     func()

	buffer         strings.Builder
	failureSeen    bool
	failureHandled bool
	cycles         int
	failedCycles   int
	errors         []*TestErrorAnalysis
}

// run is the session's single ordered event loop. It returns exactly once:
// on a stop resolution, on external cancellation, or when the child exits.
func (s *session) run(events <-chan event, done <-chan struct{}) *WatchModeResult {
	for {
		select {
		case <-done:
			s.kill()
			return s.stoppedResult()

		case ev, ok := <-events:
			if !ok {
				// Channel closed without an exit event; treat as crash
				return s.exitResult(-1)
			}
			switch ev.kind {
			case evChunk:
				s.buffer.WriteString(ev.chunk)
				if stop := s.checkCycle(); stop {
					s.kill()
					return s.stoppedResult()
				}
			case evExit:
				return s.exitResult(ev.exitCode)
			}
		}
	}
}

// checkCycle parses the buffer for a completed cycle and, on the first
// failed cycle of the session, runs the resolution protocol. Subsequent
// failures do not re-trigger resolution; the file is likely still being
// edited and the runner's own watch mode will re-run on the next save.
// Returns true when the resolution is stop.
func (s *session) checkCycle() bool {
	outcome, completed := s.parser.Scan(s.buffer.String())
	if !completed {
		return false
	}

	s.logger.Debug("Test cycle completed", map[string]interface{}{
		"passed": outcome.Passed,
		"failed": outcome.Failed,
	})

	s.cycles++
	if outcome.Failed == 0 {
		return false
	}

	s.failedCycles++
	s.failureSeen = true
	if s.failureHandled {
		return false
	}
	s.failureHandled = true

	return s.resolveFailure() == ResolutionStop
}

func (s *session) resolveFailure() Resolution {
	output := s.buffer.String()
	testFiles, appFiles := ExtractFiles(output)

	analysis, err := s.analyzer.Analyze(output, testFiles, appFiles)
	if err != nil {
		s.logger.Warn("Error analyzer failed, using unclassified verdict", map[string]interface{}{
			"error": err.Error(),
		})
		analysis = &TestErrorAnalysis{
			IsTestCodeError: false,
			ErrorType:       "unknown",
			Confidence:      "low",
			Recommendation:  "Analyzer unavailable; inspect the failure output manually",
		}
	}
	s.errors = append(s.errors, analysis)

	resolution := s.resolve(analysis)
	s.logger.Info("Failure resolution", map[string]interface{}{
		"resolution":      string(resolution),
		"isTestCodeError": analysis.IsTestCodeError,
		"errorType":       analysis.ErrorType,
	})

	if resolution == ResolutionFixTest {
		// A fix-test verdict legitimizes editing the failing tests
		for _, f := range testFiles {
			s.perms.Grant(f)
		}
	}

	return resolution
}

func (s *session) exitResult(exitCode int) *WatchModeResult {
	return &WatchModeResult{
		Success:      exitCode == 0 && !s.failureSeen,
		Output:       s.buffer.String(),
		Errors:       s.errors,
		Stopped:      false,
		Cycles:       s.cycles,
		FailedCycles: s.failedCycles,
	}
}

func (s *session) stoppedResult() *WatchModeResult {
	return &WatchModeResult{
		Success:      false,
		Output:       s.buffer.String(),
		Errors:       s.errors,
		Stopped:      true,
		Cycles:       s.cycles,
		FailedCycles: s.failedCycles,
	}
}

// InitialRunTimeout converts the configured millisecond budget to a duration
func InitialRunTimeout(cfg config.WatchConfig) time.Duration {
	if cfg.InitialRunTimeoutMs <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(cfg.InitialRunTimeoutMs) * time.Millisecond
}
