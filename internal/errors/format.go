//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats errors for CLI output.
type Formatter struct {
	NoColor bool
	Writer  io.Writer

	// Colors
	errorColor    *color.Color
	codeColor     *color.Color
	resourceColor *color.Color
	hintColor     *color.Color
	expectedColor *color.Color
	gotColor      *color.Color
	dimColor      *color.Color
}

// NewFormatter creates a new Formatter.
func NewFormatter(w io.Writer, noColor bool) *Formatter {
	if noColor {
		color.NoColor = true
	}

	return &Formatter{
		NoColor:       noColor,
		Writer:        w,
		errorColor:    color.New(color.FgRed, color.Bold),
		codeColor:     color.New(color.FgRed),
		resourceColor: color.New(color.FgCyan),
		hintColor:     color.New(color.FgGreen),
		expectedColor: color.New(color.FgYellow),
		gotColor:      color.New(color.FgRed),
		dimColor:      color.New(color.FgHiBlack),
	}
}

// formatErrorHeader writes the error header with code.
// Format: "Error [E101]: message" or "Error: message" if no code.
func (f *Formatter) formatErrorHeader(sb *strings.Builder, code Code, message string) {
	sb.WriteString(f.errorColor.Sprint("Error"))
	if code != "" {
		sb.WriteString(" ")
		sb.WriteString(f.codeColor.Sprintf("[%s]", code))
	}
	sb.WriteString(f.errorColor.Sprint(": "))
	sb.WriteString(message)
	sb.WriteString("\n")
}

// Format formats an error for CLI display.
func (f *Formatter) Format(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	var fixtureErr *FixtureError
	var networkErr *NetworkError
	var baseErr *Error

	switch {
	case errors.As(err, &fixtureErr):
		f.formatFixtureError(&sb, fixtureErr)
	case errors.As(err, &networkErr):
		f.formatNetworkError(&sb, networkErr)
	case errors.As(err, &baseErr):
		f.formatBaseError(&sb, baseErr)
	default:
		// Fallback for non-tourneyprobe errors
		sb.WriteString(f.errorColor.Sprint("Error: "))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatJSON formats an error as JSON.
func (f *Formatter) FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return nil, nil
	}

	var fixtureErr *FixtureError
	var networkErr *NetworkError
	var baseErr *Error

	switch {
	case errors.As(err, &fixtureErr):
		return json.MarshalIndent(fixtureErr, "", "  ")
	case errors.As(err, &networkErr):
		return json.MarshalIndent(networkErr, "", "  ")
	case errors.As(err, &baseErr):
		return json.MarshalIndent(baseErr, "", "  ")
	default:
		return json.MarshalIndent(map[string]string{"error": err.Error()}, "", "  ")
	}
}

func (f *Formatter) formatFixtureError(sb *strings.Builder, err *FixtureError) {
	f.formatErrorHeader(sb, err.Base.Code, err.Base.Message)
	sb.WriteString("\n")

	if err.Step != "" {
		sb.WriteString("  ")
		sb.WriteString(f.dimColor.Sprint("Step:     "))
		sb.WriteString(f.resourceColor.Sprint(err.Step))
		sb.WriteString("\n")
	}

	if len(err.Expected) > 0 {
		sb.WriteString("  ")
		sb.WriteString(f.dimColor.Sprint("Expected: "))
		sb.WriteString(f.expectedColor.Sprint(formatStatusList(err.Expected)))
		sb.WriteString("\n")
	}

	if err.Got > 0 {
		sb.WriteString("  ")
		sb.WriteString(f.dimColor.Sprint("Got:      "))
		sb.WriteString(f.gotColor.Sprintf("%d", err.Got))
		sb.WriteString("\n")
	}

	if err.Base.Cause != nil {
		sb.WriteString("\n  ")
		sb.WriteString(f.dimColor.Sprint("Cause: "))
		sb.WriteString(err.Base.Cause.Error())
		sb.WriteString("\n")
	}

	f.formatHint(sb, &err.Base)
}

func (f *Formatter) formatNetworkError(sb *strings.Builder, err *NetworkError) {
	f.formatErrorHeader(sb, err.Base.Code, err.Base.Message)
	sb.WriteString("\n")

	if err.URL != "" {
		sb.WriteString("  ")
		sb.WriteString(f.dimColor.Sprint("URL:    "))
		sb.WriteString(err.URL)
		sb.WriteString("\n")
	}

	if err.StatusCode > 0 {
		sb.WriteString("  ")
		sb.WriteString(f.dimColor.Sprint("Status: "))
		sb.WriteString(f.gotColor.Sprintf("%d", err.StatusCode))
		sb.WriteString("\n")
	}

	if err.Base.Cause != nil {
		sb.WriteString("\n  ")
		sb.WriteString(f.dimColor.Sprint("Cause: "))
		sb.WriteString(err.Base.Cause.Error())
		sb.WriteString("\n")
	}

	f.formatHint(sb, &err.Base)
}

func (f *Formatter) formatBaseError(sb *strings.Builder, err *Error) {
	f.formatErrorHeader(sb, err.Code, err.Message)

	for key, value := range err.Details {
		sb.WriteString("  ")
		sb.WriteString(f.dimColor.Sprintf("%s: ", key))
		fmt.Fprintf(sb, "%v", value)
		sb.WriteString("\n")
	}

	if err.Cause != nil {
		sb.WriteString("\n  ")
		sb.WriteString(f.dimColor.Sprint("Cause: "))
		sb.WriteString(err.Cause.Error())
		sb.WriteString("\n")
	}

	f.formatHint(sb, err)
}

func (f *Formatter) formatHint(sb *strings.Builder, err *Error) {
	if err.Hint == "" {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(f.hintColor.Sprint("Hint: "))
	// Handle multi-line hints
	lines := strings.Split(err.Hint, "\n")
	sb.WriteString(lines[0])
	sb.WriteString("\n")
	for _, line := range lines[1:] {
		sb.WriteString("      ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}
