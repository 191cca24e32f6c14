//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// FixtureError represents a fatal failure during fixture construction.
// An unexpected status from a fixture-building call aborts the run;
// teardown still unwinds whatever was already created.
type FixtureError struct {
	Base Error `json:"error"`

	// Step is the name of the fixture step that failed.
	Step string `json:"step"`

	// Expected lists the status codes accepted for this step.
	Expected []int `json:"expected,omitempty"`

	// Got is the status code the call actually returned.
	Got int `json:"got,omitempty"`
}

// NewUnexpectedStatusError creates a FixtureError for an unexpected status code.
func NewUnexpectedStatusError(step string, expected []int, got int) *FixtureError {
	return &FixtureError{
		Base: Error{
			Category: CategoryFixture,
			Code:     CodeUnexpectedStatus,
			Message:  fmt.Sprintf("fixture step %q returned HTTP %d, expected %s", step, got, formatStatusList(expected)),
		},
		Step:     step,
		Expected: expected,
		Got:      got,
	}
}

// NewMissingIDError creates a FixtureError for a response body that does not
// expose the created resource id at the expected JSON path.
func NewMissingIDError(step, path string, cause error) *FixtureError {
	return &FixtureError{
		Base: Error{
			Category: CategoryFixture,
			Code:     CodeMissingID,
			Message:  fmt.Sprintf("fixture step %q response has no id at %q", step, path),
			Cause:    cause,
		},
		Step: step,
	}
}

// Error implements the error interface.
func (e *FixtureError) Error() string {
	return e.Base.Error()
}

// Unwrap returns the underlying error.
func (e *FixtureError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *FixtureError) Is(target error) bool {
	t, ok := target.(*FixtureError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}

// formatStatusList renders a status code list like "201" or "201 or 409".
func formatStatusList(codes []int) string {
	if len(codes) == 0 {
		return "2xx"
	}
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, " or ")
}
