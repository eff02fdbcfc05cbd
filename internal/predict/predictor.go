// Package predict combines diff inspection, change classification, and test
// path resolution into per-test failure predictions.
package predict

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"testwatch/internal/classify"
	"testwatch/internal/logging"
	"testwatch/internal/testpath"
	"testwatch/internal/vcs"
)

// Predictor orchestrates one impact analysis pass. It holds no state between
// calls; every analysis is a fresh, single pass.
type Predictor struct {
	inspector  *vcs.Inspector
	classifier classify.DiffClassifier
	resolver   *testpath.Resolver
	logger     *logging.Logger
}

// NewPredictor creates a Predictor
func NewPredictor(inspector *vcs.Inspector, classifier classify.DiffClassifier, resolver *testpath.Resolver, logger *logging.Logger) *Predictor {
	return &Predictor{
		inspector:  inspector,
		classifier: classifier,
		resolver:   resolver,
		logger:     logger,
	}
}

// Analyze produces a TestImpactAnalysis for the given changed files.
// It never fails the caller's workflow: unexpected panics degrade to a
// best-effort result with an error summary.
func (p *Predictor) Analyze(ctx context.Context, changedFiles []string, opts Options) (result *TestImpactAnalysis) {
	result = &TestImpactAnalysis{
		AffectedTests:   []string{},
		ChangeType:      classify.UnknownChange,
		Confidence:      classify.LowConfidence,
		Predictions:     []TestFailurePrediction{},
		DetectedChanges: []classify.Change{},
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Impact analysis panicked", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			result.Summary = "Error analyzing impact"
		}
	}()

	// Step 1: optionally union with uncommitted files
	files := append([]string{}, changedFiles...)
	if opts.IncludeUncommitted {
		for _, entry := range p.inspector.UncommittedFiles(ctx) {
			files = append(files, entry.Path)
		}
	}

	// Step 2: source files only, de-duplicated
	sourceFiles := uniqueSourceFiles(files)

	// Step 3: resolve test paths; existence of the mapping marks a test affected
	testsByFile := make(map[string]string, len(sourceFiles))
	seen := make(map[string]bool)
	for _, file := range sourceFiles {
		testFile := p.resolver.ResolveTestPath(file)
		if testFile == "" || !p.resolver.Exists(testFile) {
			continue
		}
		testsByFile[file] = testFile
		if !seen[testFile] {
			seen[testFile] = true
			result.AffectedTests = append(result.AffectedTests, testFile)
		}
	}
	sort.Strings(result.AffectedTests)

	// Step 4: detailed analysis classifies each file's diff
	changesByFile := make(map[string][]classify.Change)
	if opts.DetailedAnalysis {
		for _, file := range sourceFiles {
			changes := p.classifyFile(ctx, file)
			if len(changes) > 0 {
				changesByFile[file] = changes
				result.DetectedChanges = append(result.DetectedChanges, changes...)
			}
		}
	}

	// Step 5: predictions for files with both a resolved test and changes
	for _, file := range sourceFiles {
		testFile, hasTest := testsByFile[file]
		changes := changesByFile[file]
		if !hasTest || len(changes) == 0 {
			continue
		}
		result.Predictions = append(result.Predictions, buildPrediction(testFile, changes))
	}
	sort.Slice(result.Predictions, func(i, j int) bool {
		return result.Predictions[i].TestFile < result.Predictions[j].TestFile
	})

	// Step 6: aggregate classification and summary
	result.ChangeType, result.Confidence = classify.Aggregate(result.DetectedChanges)
	result.ShouldPromptBeforeRunning = result.ChangeType == classify.Breaking &&
		result.Confidence == classify.HighConfidence
	result.Summary = p.renderSummary(len(sourceFiles), result)

	return result
}

// classifyFile retrieves and classifies one file's diff. A failure in either
// step degrades to "no changes detected" for that file.
func (p *Predictor) classifyFile(ctx context.Context, file string) (changes []classify.Change) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("Classification failed for file", map[string]interface{}{
				"file":  file,
				"panic": fmt.Sprintf("%v", r),
			})
			changes = nil
		}
	}()

	diffText := p.inspector.Diff(ctx, file)
	if diffText == "" {
		return nil
	}
	return p.classifier.Classify(diffText, file)
}

var likelyFailureByKind = map[classify.ChangeKind]string{
	classify.KindSignature: "Tests calling the modified function signature",
	classify.KindRemove:    "Tests importing the removed export",
	classify.KindRename:    "Tests referencing the renamed symbol",
	classify.KindAdd:       "New behavior not yet covered by existing tests",
	classify.KindModify:    "Tests asserting on the modified behavior",
}

var suggestedActionByKind = []struct {
	kind   classify.ChangeKind
	action string
}{
	{classify.KindSignature, "Update test call sites to match the new signature"},
	{classify.KindRemove, "Remove or update tests importing the deleted export"},
	{classify.KindRename, "Update test references to the new symbol name"},
}

const defaultSuggestedAction = "Review the change and re-run the affected tests"

func buildPrediction(testFile string, changes []classify.Change) TestFailurePrediction {
	kinds := make(map[classify.ChangeKind]bool, len(changes))
	var failures []string
	var reasons []string
	for _, ch := range changes {
		if !kinds[ch.Kind] {
			kinds[ch.Kind] = true
			if msg, ok := likelyFailureByKind[ch.Kind]; ok {
				failures = append(failures, msg)
			}
		}
		reasons = append(reasons, ch.Details)
	}

	action := defaultSuggestedAction
	for _, candidate := range suggestedActionByKind {
		if kinds[candidate.kind] {
			action = candidate.action
			break
		}
	}

	return TestFailurePrediction{
		TestFile:        testFile,
		LikelyFailures:  failures,
		Reason:          strings.Join(reasons, "; "),
		SuggestedAction: action,
	}
}

func (p *Predictor) renderSummary(sourceCount int, result *TestImpactAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyzed %d source file(s); %d affected test file(s); change type: %s (%s confidence).",
		sourceCount, len(result.AffectedTests), result.ChangeType, result.Confidence)

	if result.ShouldPromptBeforeRunning {
		b.WriteString("\nWARNING: breaking change detected - affected tests are expected to fail.")
		b.WriteString("\nTest modifications are permitted for this class of change.")
	}

	return b.String()
}

// uniqueSourceFiles filters to source files and de-duplicates, preserving
// first-seen order
func uniqueSourceFiles(files []string) []string {
	seen := make(map[string]bool, len(files))
	var out []string
	for _, f := range files {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		if testpath.IsSourceFile(f) {
			out = append(out, f)
		}
	}
	return out
}
