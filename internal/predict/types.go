package predict

import (
	"testwatch/internal/classify"
)

// TestFailurePrediction predicts how a single test file is likely to fail
type TestFailurePrediction struct {
	TestFile        string   `json:"testFile"`
	LikelyFailures  []string `json:"likelyFailures"`
	Reason          string   `json:"reason"`
	SuggestedAction string   `json:"suggestedAction"`
}

// TestImpactAnalysis is the aggregate result of one analysis pass
type TestImpactAnalysis struct {
	// AffectedTests is the de-duplicated union of every test file that
	// exists on disk and maps from at least one input source file. Existence
	// of the mapping is sufficient; only the subset whose source file also
	// has detected changes gets a prediction.
	AffectedTests             []string                `json:"affectedTests"`
	ChangeType                classify.ChangeType     `json:"changeType"`
	Confidence                classify.ConfidenceLevel `json:"confidence"`
	Predictions               []TestFailurePrediction `json:"predictions"`
	ShouldPromptBeforeRunning bool                    `json:"shouldPromptBeforeRunning"`
	Summary                   string                  `json:"summary"`
	DetectedChanges           []classify.Change       `json:"detectedChanges"`
}

// Options controls a single analysis pass
type Options struct {
	// IncludeUncommitted unions the input files with everything git reports
	// as uncommitted
	IncludeUncommitted bool

	// DetailedAnalysis runs diff retrieval and classification per file.
	// Without it, only the source-to-test mapping is computed.
	DetailedAnalysis bool
}
