// Package errors defines coded errors for testwatch with suggested fixes.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// GitUnavailable indicates git is missing or this is not a repository
	GitUnavailable ErrorCode = "GIT_UNAVAILABLE"
	// SpawnFailed indicates the test tool process could not be started
	SpawnFailed ErrorCode = "SPAWN_FAILED"
	// TargetUnknown indicates an unconfigured watch target was requested
	TargetUnknown ErrorCode = "TARGET_UNKNOWN"
	// Timeout indicates a subprocess exceeded its deadline
	Timeout ErrorCode = "TIMEOUT"
	// HistoryUnavailable indicates the session history store could not be opened
	HistoryUnavailable ErrorCode = "HISTORY_UNAVAILABLE"
	// AnalyzerFailed indicates the external error analyzer returned an error
	AnalyzerFailed ErrorCode = "ANALYZER_FAILED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests editing the testwatch configuration
	EditConfig FixActionType = "edit-config"
	// InstallTool suggests installing a tool
	InstallTool FixActionType = "install-tool"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	Tool        string        `json:"tool,omitempty"`
}

// TwError represents a testwatch error with code, message, and suggestions
type TwError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new TwError
func New(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *TwError {
	return &TwError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// Error implements the error interface
func (e *TwError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *TwError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *TwError) WithDetails(details interface{}) *TwError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	GitUnavailable: {
		{
			Type:        RunCommand,
			Command:     "git status",
			Safe:        true,
			Description: "Verify you're in a git repository",
		},
	},
	SpawnFailed: {
		{
			Type:        RunCommand,
			Command:     "npx vitest --version",
			Safe:        true,
			Description: "Verify the test tool is installed",
		},
		{
			Type:        EditConfig,
			Description: "Check the watch.targets command table in .testwatch/config.yaml",
		},
	},
	TargetUnknown: {
		{
			Type:        EditConfig,
			Description: "Add the target to watch.targets in .testwatch/config.yaml",
		},
	},
	HistoryUnavailable: {
		{
			Type:        RunCommand,
			Command:     "rm -rf .testwatch/history.db",
			Safe:        false,
			Description: "Remove a corrupted history database (history is rebuilt empty)",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
