package watch

// Resolution is the bounded decision made once per detected failure cycle
type Resolution string

const (
	// ResolutionFixTest directs the failure at the test code
	ResolutionFixTest Resolution = "fix-test"
	// ResolutionFixApp directs the failure at the application code
	ResolutionFixApp Resolution = "fix-app"
	// ResolutionSkip leaves the failure alone and keeps watching
	ResolutionSkip Resolution = "skip"
	// ResolutionStop kills the watch session
	ResolutionStop Resolution = "stop"
)

// TestErrorAnalysis is the verdict shape consumed from the external error
// analyzer. The supervisor treats it as opaque.
type TestErrorAnalysis struct {
	IsTestCodeError bool     `json:"isTestCodeError"`
	ErrorType       string   `json:"errorType"`
	Confidence      string   `json:"confidence"`
	AffectedFiles   []string `json:"affectedFiles"`
	Recommendation  string   `json:"recommendation"`
}

// ErrorAnalyzer turns raw test-runner output into a structured verdict.
// Implementations are external collaborators; the supervisor only depends on
// this contract.
type ErrorAnalyzer interface {
	Analyze(rawOutput string, testFiles, appFiles []string) (*TestErrorAnalysis, error)
}

// ResolutionFunc decides how to handle a failure verdict. Implementations
// that keep state across calls must not be shared between concurrent watch
// sessions.
type ResolutionFunc func(*TestErrorAnalysis) Resolution

// DefaultResolution is the deterministic mapping used when the caller
// supplies no callback
func DefaultResolution(analysis *TestErrorAnalysis) Resolution {
	if analysis != nil && analysis.IsTestCodeError {
		return ResolutionFixTest
	}
	return ResolutionFixApp
}

// WatchModeResult is the terminal outcome of one supervised watch session
type WatchModeResult struct {
	Success bool                 `json:"success"`
	Output  string               `json:"output"`
	Errors  []*TestErrorAnalysis `json:"errors,omitempty"`
	Stopped bool                 `json:"stopped"`

	// Cycles and FailedCycles count completed test cycles observed during
	// the session; they feed the session-history record.
	Cycles       int `json:"cycles"`
	FailedCycles int `json:"failedCycles"`
}
