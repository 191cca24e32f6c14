// Package report renders the run for humans and CI logs: the call-by-call
// transcript, a progress bar while the fixture builds, and the final
// pass/fail summary. The transcript is the primary product of a run; it is
// written both to the console and to a session file under the data dir.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/arenalab/tourneyprobe/internal/api"
)

// Style holds common output styling for the transcript.
type Style struct {
	SuccessMark string
	FailMark    string
	WarnMark    string
	Header      *color.Color
	CallName    *color.Color
	Status      *color.Color
	Step        *color.Color
}

// NewStyle creates a new Style with standard colors. noColor disables all
// escape codes, for CI logs and the session file.
func NewStyle(noColor bool) *Style {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)
	header := color.New(color.FgCyan, color.Bold)
	status := color.New(color.FgYellow)
	step := color.New(color.FgYellow)
	if noColor {
		for _, c := range []*color.Color{green, red, yellow, cyan, header, status, step} {
			c.DisableColor()
		}
	}
	return &Style{
		SuccessMark: green.Sprint("✓"),
		FailMark:    red.Sprint("✗"),
		WarnMark:    yellow.Sprint("⚠"),
		Header:      header,
		CallName:    cyan,
		Status:      status,
		Step:        step,
	}
}

// Reporter writes the run transcript. It satisfies the Transcript
// interfaces of the fixture, probe, and teardown packages.
type Reporter struct {
	w     io.Writer
	style *Style
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer, noColor bool) *Reporter {
	return &Reporter{w: w, style: NewStyle(noColor)}
}

// Section prints a banner separating the phases of a run.
func (r *Reporter) Section(title string) {
	bar := strings.Repeat("=", 10)
	fmt.Fprintf(r.w, "\n%s\n", r.style.Header.Sprintf("%s %s %s", bar, title, bar))
}

// Stepf prints a one-line step annotation.
func (r *Reporter) Stepf(format string, args ...any) {
	fmt.Fprintf(r.w, "%s %s\n", r.style.Step.Sprint("=>"), fmt.Sprintf(format, args...))
}

// Call dumps one request/response pair: name, method and path, status, and
// the pretty-printed body.
func (r *Reporter) Call(name string, resp *api.Response) {
	fmt.Fprintf(r.w, "--- %s ---\n", r.style.CallName.Sprint(name))
	fmt.Fprintf(r.w, "%s %s\n", resp.Method, resp.Path)
	fmt.Fprintf(r.w, "Status Code: %s\n", r.style.Status.Sprint(resp.Status))
	fmt.Fprintln(r.w, resp.Pretty())
	fmt.Fprintln(r.w, strings.Repeat("-", len(name)+8))
}

// Warnf prints a warning line.
func (r *Reporter) Warnf(format string, args ...any) {
	fmt.Fprintf(r.w, "%s %s\n", r.style.WarnMark, fmt.Sprintf(format, args...))
}
