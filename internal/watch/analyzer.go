package watch

import (
	"fmt"
	"strings"
)

// HeuristicAnalyzer is the built-in fallback ErrorAnalyzer used when the
// caller supplies no external analyzer. It reads nothing but the raw output:
// failure lines pointing into test files suggest a test-code error, failure
// lines pointing into application files suggest an application bug.
type HeuristicAnalyzer struct{}

// NewHeuristicAnalyzer creates a HeuristicAnalyzer
func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

// Analyze implements ErrorAnalyzer.
func (a *HeuristicAnalyzer) Analyze(rawOutput string, testFiles, appFiles []string) (*TestErrorAnalysis, error) {
	testHits := 0
	appHits := 0

	for _, line := range strings.Split(rawOutput, "\n") {
		lowered := strings.ToLower(line)
		if !strings.Contains(lowered, "fail") && !strings.Contains(lowered, "error") &&
			!strings.Contains(strings.TrimSpace(line), "at ") {
			continue
		}
		for _, f := range testFiles {
			if strings.Contains(line, f) {
				testHits++
			}
		}
		for _, f := range appFiles {
			if strings.Contains(line, f) {
				appHits++
			}
		}
	}

	isTestCodeError := testHits > appHits && testHits > 0

	analysis := &TestErrorAnalysis{
		IsTestCodeError: isTestCodeError,
		ErrorType:       classifyErrorType(rawOutput),
		Confidence:      "medium",
	}
	if testHits == 0 && appHits == 0 {
		analysis.Confidence = "low"
	}

	if isTestCodeError {
		analysis.AffectedFiles = testFiles
		analysis.Recommendation = fmt.Sprintf("Failure output points at test code (%d test-file reference(s)); update the failing test", testHits)
	} else {
		analysis.AffectedFiles = appFiles
		analysis.Recommendation = fmt.Sprintf("Failure output points at application code (%d app-file reference(s)); fix the application and keep the test", appHits)
	}

	return analysis, nil
}

func classifyErrorType(output string) string {
	switch {
	case strings.Contains(output, "SyntaxError"):
		return "syntax"
	case strings.Contains(output, "TypeError"):
		return "type"
	case strings.Contains(output, "Cannot find module"):
		return "import"
	case strings.Contains(output, "AssertionError") || strings.Contains(output, "expect("):
		return "assertion"
	case strings.Contains(strings.ToLower(output), "timeout"):
		return "timeout"
	default:
		return "unknown"
	}
}
