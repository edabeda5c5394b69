package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// SourceMissing indicates a declared source file is absent from the workspace
	SourceMissing ErrorCode = "SOURCE_MISSING"
	// FetchFailed indicates a source download did not complete
	FetchFailed ErrorCode = "FETCH_FAILED"
	// ParseFailed indicates a source file could not be decoded
	ParseFailed ErrorCode = "PARSE_FAILED"
	// TransformFailed indicates the expanded schema could not be processed
	TransformFailed ErrorCode = "TRANSFORM_FAILED"
	// ElementNotFound indicates no element matches the requested identifier
	ElementNotFound ErrorCode = "ELEMENT_NOT_FOUND"
	// KindInvalid indicates an element kind outside class/enum/slot/type/variable
	KindInvalid ErrorCode = "KIND_INVALID"
	// SnapshotMissing indicates no loaded snapshot exists yet
	SnapshotMissing ErrorCode = "SNAPSHOT_MISSING"
	// StorageFailed indicates the index database rejected an operation
	StorageFailed ErrorCode = "STORAGE_FAILED"
	// TokenInvalid indicates a missing or unrecognized API token
	TokenInvalid ErrorCode = "TOKEN_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// Drilldown represents a suggested follow-up query
type Drilldown struct {
	Label string `json:"label"`
	Query string `json:"query"`
}

// ModelError represents a modeldocs error with code, message, and suggestions
type ModelError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	Drilldowns     []Drilldown `json:"drilldowns,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// NewModelError creates a new ModelError
func NewModelError(code ErrorCode, message string, cause error, suggestedFixes []FixAction, drilldowns []Drilldown) *ModelError {
	return &ModelError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
		Drilldowns:     drilldowns,
	}
}

// Error implements the error interface
func (e *ModelError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ModelError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ModelError) WithDetails(details interface{}) *ModelError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	SourceMissing: {
		{
			Type:        RunCommand,
			Command:     "modeldocs fetch",
			Safe:        true,
			Description: "Download the schema and variable sources declared in sources.toml",
		},
	},
	SnapshotMissing: {
		{
			Type:        RunCommand,
			Command:     "modeldocs load",
			Safe:        true,
			Description: "Build the model index from the processed schema",
		},
	},
	FetchFailed: {
		{
			Type:        RunCommand,
			Command:     "modeldocs doctor",
			Safe:        true,
			Description: "Check source configuration and network reachability",
		},
	},
	TransformFailed: {
		{
			Type:        RunCommand,
			Command:     "modeldocs doctor",
			Safe:        true,
			Description: "Inspect the expanded schema for structural problems",
		},
	},
	TokenInvalid: {
		{
			Type:        RunCommand,
			Command:     "modeldocs token create",
			Safe:        false,
			Description: "Create an API token for mutating endpoints",
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
