// Package classify turns a unified diff into a typed change taxonomy.
//
// Classification is textual pattern matching over diff line pairs, not AST
// diffing. False positives and negatives are expected and bounded by the
// documented heuristics; the DiffClassifier interface exists so a semantic
// implementation can be swapped in without touching aggregation or
// prediction.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// ChangeKind represents the type of a single detected change
type ChangeKind string

const (
	// KindSignature indicates a function/export signature changed
	KindSignature ChangeKind = "signature"
	// KindRename indicates a declared symbol vanished (rename candidate)
	KindRename ChangeKind = "rename"
	// KindAdd indicates added-only code (reserved, not emitted by the regex classifier)
	KindAdd ChangeKind = "add"
	// KindRemove indicates an export disappeared
	KindRemove ChangeKind = "remove"
	// KindModify indicates a pure content change (reserved, not emitted by the regex classifier)
	KindModify ChangeKind = "modify"
)

// Change represents one detected change in a diff
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Location string     `json:"location"` // file path
	Details  string     `json:"details"`  // human-readable description
}

// DiffClassifier scans diff text for structural markers
type DiffClassifier interface {
	// Classify returns the changes detected in diffText for filePath.
	// An unparseable or empty diff yields no changes, never an error.
	Classify(diffText, filePath string) []Change
}

// RegexClassifier is the shipped DiffClassifier: regex heuristics over
// removed/added line pairs
type RegexClassifier struct{}

// NewRegexClassifier creates a RegexClassifier
func NewRegexClassifier() *RegexClassifier {
	return &RegexClassifier{}
}

var (
	functionRe   = regexp.MustCompile(`\bfunction\s+\w+\s*\(`)
	arrowConstRe = regexp.MustCompile(`\bconst\s+\w+\s*=\s*(?:async\s+)?(?:\([^)]*\)|\w+)\s*=>`)
	exportRe     = regexp.MustCompile(`\bexport\b`)
	declRe       = regexp.MustCompile(`\b(?:function|const|class|interface|type)\s+(\w+)`)
)

// Classify implements DiffClassifier.
func (c *RegexClassifier) Classify(diffText, filePath string) []Change {
	if strings.TrimSpace(diffText) == "" {
		return nil
	}

	lines := diffBodyLines(diffText)

	var changes []Change
	for i := 0; i < len(lines)-1; i++ {
		if !strings.HasPrefix(lines[i], "-") || !strings.HasPrefix(lines[i+1], "+") {
			continue
		}

		removed := strings.TrimSpace(strings.TrimPrefix(lines[i], "-"))
		added := strings.TrimSpace(strings.TrimPrefix(lines[i+1], "+"))
		changes = append(changes, classifyPair(removed, added, filePath)...)
	}

	return changes
}

// classifyPair applies the three independent rules to one removed/added pair.
// Rules are not mutually exclusive: a single pair may yield several changes.
func classifyPair(removed, added, filePath string) []Change {
	var changes []Change

	// Rule 1: the removed line looks like a function/export signature
	if functionRe.MatchString(removed) || arrowConstRe.MatchString(removed) || exportRe.MatchString(removed) {
		changes = append(changes, Change{
			Kind:     KindSignature,
			Location: filePath,
			Details:  fmt.Sprintf("Signature changed: %s", truncateLine(removed)),
		})
	}

	// Rule 2: an export disappeared
	if exportRe.MatchString(removed) && !exportRe.MatchString(added) {
		changes = append(changes, Change{
			Kind:     KindRemove,
			Location: filePath,
			Details:  fmt.Sprintf("Export removed: %s", truncateLine(removed)),
		})
	}

	// Rule 3: a declared symbol vanished. Without AST diffing this cannot
	// distinguish a true rename from an unrelated deletion; it is a
	// candidate signal, not a certainty.
	if m := declRe.FindStringSubmatch(removed); m != nil {
		name := m[1]
		if !strings.Contains(added, name) {
			changes = append(changes, Change{
				Kind:     KindRename,
				Location: filePath,
				Details:  fmt.Sprintf("Declaration '%s' no longer present; possible rename", name),
			})
		}
	}

	return changes
}

// diffBodyLines extracts hunk body lines from unified diff text, preferring
// a structured parse so that file headers ("--- a/x", "+++ b/x") never leak
// into the removed/added pairing.
func diffBodyLines(diffText string) []string {
	fileDiffs, err := diff.ParseMultiFileDiff([]byte(diffText))
	if err != nil || len(fileDiffs) == 0 {
		return rawBodyLines(diffText)
	}

	var lines []string
	for _, fd := range fileDiffs {
		for _, hunk := range fd.Hunks {
			lines = append(lines, strings.Split(strings.TrimRight(string(hunk.Body), "\n"), "\n")...)
		}
	}
	return lines
}

// rawBodyLines is the fallback for diff fragments that the structured parser
// rejects (e.g. a bare hunk with no headers).
func rawBodyLines(diffText string) []string {
	var lines []string
	for _, line := range strings.Split(diffText, "\n") {
		if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") {
			continue
		}
		if strings.HasPrefix(line, "diff ") || strings.HasPrefix(line, "index ") || strings.HasPrefix(line, "@@") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func truncateLine(line string) string {
	const max = 80
	if len(line) <= max {
		return line
	}
	return line[:max] + "..."
}
