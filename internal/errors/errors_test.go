package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	cause := errors.New("underlying error")
	fixes := []FixAction{{Type: RunCommand, Command: "modeldocs doctor"}}
	drilldowns := []Drilldown{{Label: "Check", Query: "status"}}

	err := NewModelError(SnapshotMissing, "no snapshot loaded", cause, fixes, drilldowns)

	if err.Code != SnapshotMissing {
		t.Errorf("Code = %v, want %v", err.Code, SnapshotMissing)
	}
	if err.Message != "no snapshot loaded" {
		t.Errorf("Message = %q, want %q", err.Message, "no snapshot loaded")
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
	if len(err.Drilldowns) != 1 {
		t.Errorf("len(Drilldowns) = %d, want 1", len(err.Drilldowns))
	}
}

func TestModelError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      FetchFailed,
			message:   "could not download bdchm.yaml",
			cause:     errors.New("connection refused"),
			wantParts: []string{"FETCH_FAILED", "could not download bdchm.yaml", "connection refused"},
		},
		{
			name:      "without cause",
			code:      ElementNotFound,
			message:   "element 'Specimen' not found",
			cause:     nil,
			wantParts: []string{"ELEMENT_NOT_FOUND", "element 'Specimen' not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.code, tt.message, tt.cause, nil, nil)
			got := err.Error()

			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestModelError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewModelError(InternalError, "something went wrong", cause, nil, nil)

	unwrapped := err.Unwrap()
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test nil cause
	errNoCause := NewModelError(StorageFailed, "index write failed", nil, nil, nil)
	if errNoCause.Unwrap() != nil {
		t.Errorf("Unwrap() on error without cause should return nil")
	}
}

func TestModelError_WithDetails(t *testing.T) {
	err := NewModelError(ParseFailed, "bad TSV row", nil, nil, nil)
	details := map[string]int{"line": 42, "columns": 3}

	result := err.WithDetails(details)

	// Check that it returns the same error (for chaining)
	if result != err {
		t.Error("WithDetails should return the same error for chaining")
	}

	// Check details are set
	if err.Details == nil {
		t.Error("Details should be set")
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	tests := []struct {
		code    ErrorCode
		wantNil bool
		wantLen int
	}{
		{SourceMissing, false, 1},
		{SnapshotMissing, false, 1},
		{FetchFailed, false, 1},
		{TransformFailed, false, 1},
		{TokenInvalid, false, 1},
		{ElementNotFound, true, 0}, // No predefined fixes
		{KindInvalid, true, 0},     // No predefined fixes
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			fixes := GetSuggestedFixes(tt.code)

			if tt.wantNil && fixes != nil {
				t.Errorf("GetSuggestedFixes(%v) = %v, want nil", tt.code, fixes)
			}
			if !tt.wantNil && len(fixes) != tt.wantLen {
				t.Errorf("GetSuggestedFixes(%v) len = %d, want %d", tt.code, len(fixes), tt.wantLen)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	// Ensure all error codes are unique
	codes := []ErrorCode{
		SourceMissing,
		FetchFailed,
		ParseFailed,
		TransformFailed,
		ElementNotFound,
		KindInvalid,
		SnapshotMissing,
		StorageFailed,
		TokenInvalid,
		InternalError,
	}

	seen := make(map[ErrorCode]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %v", code)
		}
		seen[code] = true

		// Ensure each code is a non-empty string
		if string(code) == "" {
			t.Error("Error code should not be empty")
		}
	}
}

func TestFixActionStructure(t *testing.T) {
	action := FixAction{
		Type:        RunCommand,
		Command:     "modeldocs fetch",
		Safe:        true,
		Description: "Download declared sources",
		URL:         "https://example.com",
	}

	if action.Type != RunCommand {
		t.Errorf("Type = %v, want %v", action.Type, RunCommand)
	}
	if !action.Safe {
		t.Error("Safe should be true")
	}
}

func TestDrilldownStructure(t *testing.T) {
	dd := Drilldown{
		Label: "View usage",
		Query: "usage --id=enum:SpecimenTypeEnum",
	}

	if dd.Label != "View usage" {
		t.Errorf("Label = %q, want %q", dd.Label, "View usage")
	}
	if dd.Query != "usage --id=enum:SpecimenTypeEnum" {
		t.Errorf("Query = %q, want %q", dd.Query, "usage --id=enum:SpecimenTypeEnum")
	}
}

func TestErrorActionsMap(t *testing.T) {
	// Verify ErrorActions map has expected entries
	expectedCodes := []ErrorCode{
		SourceMissing,
		SnapshotMissing,
		FetchFailed,
		TransformFailed,
		TokenInvalid,
	}

	for _, code := range expectedCodes {
		if _, ok := ErrorActions[code]; !ok {
			t.Errorf("ErrorActions missing entry for %v", code)
		}
	}

	// Verify each entry has valid fix actions
	for code, fixes := range ErrorActions {
		if len(fixes) == 0 {
			t.Errorf("ErrorActions[%v] has no fix actions", code)
		}
		for i, fix := range fixes {
			if fix.Type == "" {
				t.Errorf("ErrorActions[%v][%d].Type is empty", code, i)
			}
		}
	}
}
