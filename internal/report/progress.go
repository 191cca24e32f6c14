package report

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// FixtureProgress shows a bar over the fixture steps on interactive
// terminals; on non-TTY output the transcript lines are enough.
type FixtureProgress struct {
	progress *mpb.Progress
	bar      *mpb.Bar
}

// NewFixtureProgress creates a progress bar over total fixture steps. It
// renders only when stderr is a terminal, keeping the bar away from the
// transcript on stdout.
func NewFixtureProgress(total int) *FixtureProgress {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return &FixtureProgress{}
	}
	p := mpb.New(mpb.WithOutput(os.Stderr), mpb.WithWidth(40))
	bar := p.AddBar(int64(total),
		mpb.BarFillerClearOnComplete(),
		mpb.PrependDecorators(
			decor.Name("fixture ", decor.WC{W: 10, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(), "done"),
		),
	)
	return &FixtureProgress{progress: p, bar: bar}
}

// Step marks one fixture step complete.
func (f *FixtureProgress) Step() {
	if f.bar != nil {
		f.bar.Increment()
	}
}

// Done waits for the bar to flush. Safe to call after a partial build.
func (f *FixtureProgress) Done() {
	if f.progress == nil {
		return
	}
	f.bar.Abort(true)
	f.progress.Wait()
}
