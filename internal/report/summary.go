package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/arenalab/tourneyprobe/internal/probe"
	"github.com/arenalab/tourneyprobe/internal/teardown"
)

var (
	passMarkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))   // green
	failMarkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))   // red
	summaryHeadStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")) // light cyan
	detailStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))           // gray
	leakStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))             // yellow
)

// Summary is the final account of one run.
type Summary struct {
	// FixtureError is empty when the fixture built completely.
	FixtureError string `json:"fixtureError,omitempty"`
	// Created is the number of remote resources the run recorded.
	Created int `json:"created"`
	// Probes lists the probe outcomes; empty when probes were skipped.
	Probes []probe.Result `json:"probes,omitempty"`
	// ProbesSkipped is true when --skip-probes was set or the fixture failed.
	ProbesSkipped bool `json:"probesSkipped,omitempty"`
	// Teardown lists the delete outcomes in deletion order.
	Teardown []teardown.Outcome `json:"teardown,omitempty"`
	// Kept is true when --keep left the fixture in place.
	Kept bool `json:"kept,omitempty"`
}

// Leaked returns the resources teardown could not remove.
func (s *Summary) Leaked() []teardown.Outcome {
	var leaked []teardown.Outcome
	for _, o := range s.Teardown {
		if !o.OK {
			leaked = append(leaked, o)
		}
	}
	return leaked
}

// Passed reports whether the run as a whole succeeded: the fixture built,
// every probe passed, and nothing leaked.
func (s *Summary) Passed() bool {
	if s.FixtureError != "" {
		return false
	}
	for _, p := range s.Probes {
		if !p.Passed {
			return false
		}
	}
	return len(s.Leaked()) == 0
}

// Print renders the human-readable summary.
func (s *Summary) Print(w io.Writer) {
	pass := passMarkStyle.Render("✓")
	fail := failMarkStyle.Render("✗")

	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryHeadStyle.Render("Summary"))

	if s.FixtureError != "" {
		fmt.Fprintf(w, "  %s fixture: %s\n", fail, s.FixtureError)
	} else {
		fmt.Fprintf(w, "  %s fixture: %d resources created\n", pass, s.Created)
	}

	switch {
	case s.ProbesSkipped:
		fmt.Fprintf(w, "  - probes skipped\n")
	default:
		for _, p := range s.Probes {
			mark := pass
			if !p.Passed {
				mark = fail
			}
			line := fmt.Sprintf("  %s %s", mark, p.Name)
			if p.Detail != "" {
				line += " " + detailStyle.Render("("+p.Detail+")")
			}
			fmt.Fprintln(w, line)
		}
	}

	switch {
	case s.Kept:
		fmt.Fprintln(w, leakStyle.Render("  ⚠ teardown skipped (--keep); run `tourneyprobe cleanup` to remove the fixture"))
	case len(s.Teardown) > 0:
		leaked := s.Leaked()
		if len(leaked) == 0 {
			fmt.Fprintf(w, "  %s teardown: %d resources removed\n", pass, len(s.Teardown))
		} else {
			fmt.Fprintf(w, "  %s teardown: %d of %d resources leaked\n", fail, len(leaked), len(s.Teardown))
			for _, o := range leaked {
				fmt.Fprintln(w, leakStyle.Render(fmt.Sprintf("    leaked %s %d: %s", o.Kind, o.ID, o.Detail)))
			}
		}
	}

	if s.Passed() {
		fmt.Fprintf(w, "%s all checks passed\n", pass)
	} else {
		fmt.Fprintf(w, "%s run failed\n", fail)
	}
}

// WriteJSON renders the machine-readable summary.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
