package watch

import (
	"regexp"
	"strconv"
)

var (
	passedRe = regexp.MustCompile(`(\d+)\s+passed`)
	failedRe = regexp.MustCompile(`(\d+)\s+failed`)
)

// CycleOutcome summarizes one completed test cycle as seen in the buffer
type CycleOutcome struct {
	Passed int
	Failed int
}

// CycleParser detects completed pass/fail cycles in a rolling output buffer.
// It is framework-agnostic: "N passed" / "N failed" substrings are the only
// markers it understands, and the counts it reports are the most recent
// markers in the buffer, which may mix adjacent cycles when a runner
// interleaves summaries. That imprecision is acceptable for triage.
type CycleParser struct {
	seenMarkers int
}

// NewCycleParser creates a CycleParser for one session's buffer
func NewCycleParser() *CycleParser {
	return &CycleParser{}
}

// Scan checks the buffer after a new chunk was appended. It reports a
// completed cycle whenever a new pass/fail marker has appeared since the
// previous scan.
func (p *CycleParser) Scan(buffer string) (CycleOutcome, bool) {
	passed := passedRe.FindAllStringSubmatch(buffer, -1)
	failed := failedRe.FindAllStringSubmatch(buffer, -1)

	total := len(passed) + len(failed)
	if total == p.seenMarkers {
		return CycleOutcome{}, false
	}
	p.seenMarkers = total

	var outcome CycleOutcome
	if len(passed) > 0 {
		outcome.Passed = atoi(passed[len(passed)-1][1])
	}
	if len(failed) > 0 {
		outcome.Failed = atoi(failed[len(failed)-1][1])
	}
	return outcome, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
