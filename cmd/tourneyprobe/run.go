package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/arenalab/tourneyprobe/internal/api"
	"github.com/arenalab/tourneyprobe/internal/config"
	probeErrors "github.com/arenalab/tourneyprobe/internal/errors"
	"github.com/arenalab/tourneyprobe/internal/fixture"
	"github.com/arenalab/tourneyprobe/internal/probe"
	"github.com/arenalab/tourneyprobe/internal/report"
	"github.com/arenalab/tourneyprobe/internal/runstate"
	"github.com/arenalab/tourneyprobe/internal/teardown"
)

// keepSessions bounds the number of stored transcript sessions.
const keepSessions = 20

type runConfig struct {
	skipProbes bool
	keep       bool
	strict     bool
	noColor    bool
	output     string
	logLevel   string
}

var runCfg runConfig

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the fixture, run the probes, and tear everything down",
	Long: `Run one harness pass against the configured API.

The fixture is built step by step; on the first unexpected status the
build aborts, and whatever was already created is still deleted. The
probes never abort the run, and only a fixture abort fails the exit
status; probe failures and teardown leaks are reported in the summary
(use --strict to fail on those too). Teardown always happens unless
--keep is set, in which case the fixture stays and "tourneyprobe
cleanup" removes it later.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runCfg.skipProbes, "skip-probes", false, "Build and tear down the fixture without probing")
	runCmd.Flags().BoolVar(&runCfg.keep, "keep", false, "Leave the fixture in place (clean up with `tourneyprobe cleanup`)")
	runCmd.Flags().BoolVar(&runCfg.strict, "strict", false, "Exit non-zero when a probe fails or teardown leaks a resource")
	runCmd.Flags().BoolVar(&runCfg.noColor, "no-color", false, "Disable colored output")
	runCmd.Flags().StringVarP(&runCfg.output, "output", "o", "text", "Summary format (text, json)")
	runCmd.Flags().StringVar(&runCfg.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

func runRun(cmd *cobra.Command, _ []string) error {
	if runCfg.noColor {
		color.NoColor = true
	}
	if runCfg.output != "text" && runCfg.output != "json" {
		return probeErrors.New(probeErrors.CategoryConfig,
			fmt.Sprintf("unknown output format %q", runCfg.output)).
			WithHint("use -o text or -o json")
	}

	prevLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(runCfg.logLevel)})))
	defer slog.SetDefault(prevLogger)

	cfg, err := config.LoadConfig(getConfigDir())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dataDir := config.ExpandHome(cfg.DataDir)
	store, err := runstate.NewStore(dataDir)
	if err != nil {
		return err
	}
	if err := store.Lock(); err != nil {
		return err
	}
	defer store.Unlock()

	if store.Exists() {
		return probeErrors.New(probeErrors.CategoryState,
			"a previous run left resources behind").
			WithDetail("run file", store.RunPath()).
			WithHint("run `tourneyprobe cleanup` before starting a new run")
	}

	session, err := report.NewSessionStore(dataDir)
	if err != nil {
		return err
	}
	defer session.Close()

	// In JSON mode stdout carries only the summary document; the
	// transcript still lands in the session file.
	var transcriptOut io.Writer = io.MultiWriter(cmd.OutOrStdout(), session.Writer())
	if runCfg.output == "json" {
		transcriptOut = session.Writer()
	}
	noColor := runCfg.noColor || !isatty.IsTerminal(os.Stdout.Fd())
	reporter := report.NewReporter(transcriptOut, noColor)

	client := api.NewClient(cfg)
	rec := runstate.NewRecord()
	summary := &report.Summary{}

	buildAndProbe(cmd.Context(), client, cfg, store, rec, reporter, summary)
	summary.Created = rec.Len()

	if runCfg.keep {
		summary.Kept = true
		if rec.Len() > 0 {
			if err := store.Save(rec); err != nil {
				return err
			}
		}
	} else {
		runTeardown(cmd.Context(), client, store, rec, reporter, summary)
	}

	if err := printSummary(cmd.OutOrStdout(), session, summary); err != nil {
		return err
	}
	if err := report.CleanupSessions(dataDir, keepSessions); err != nil {
		slog.Warn("failed to prune old transcripts", "error", err)
	}

	if ferr := runFailure(summary, runCfg.strict); ferr != nil {
		return ferr.WithDetail("transcript", session.Writer().Name())
	}
	return nil
}

// runFailure decides the exit status. Only a fixture abort fails the run;
// probe failures and teardown leaks are reported in the summary and
// swallowed unless --strict is set.
func runFailure(summary *report.Summary, strict bool) *probeErrors.Error {
	if summary.FixtureError != "" {
		return probeErrors.New(probeErrors.CategoryFixture, "fixture build failed").
			WithDetail("cause", summary.FixtureError)
	}
	if strict && !summary.Passed() {
		return probeErrors.New(probeErrors.CategoryProbe, "run failed under --strict")
	}
	return nil
}

// buildAndProbe runs the fixture build and, when it succeeds, the probes.
// A panic anywhere in here is converted into a fixture error so the
// caller's teardown still runs with the record intact.
func buildAndProbe(
	ctx context.Context,
	client *api.Client,
	cfg *config.Config,
	store *runstate.Store,
	rec *runstate.Record,
	reporter *report.Reporter,
	summary *report.Summary,
) {
	defer func() {
		if r := recover(); r != nil {
			summary.FixtureError = fmt.Sprintf("panic: %v", r)
			summary.ProbesSkipped = true
		}
	}()

	reporter.Section("Building Fixture")
	progress := report.NewFixtureProgress(fixture.StepCount())
	builder := fixture.NewBuilder(client, rec, stepCounter{reporter, progress}, cfg.Visibility)
	builder.SetPersist(store.Save)
	buildErr := builder.Build(ctx)
	progress.Done()

	if buildErr != nil {
		summary.FixtureError = buildErr.Error()
		summary.ProbesSkipped = true
		reporter.Warnf("fixture build aborted: %v", buildErr)
		return
	}

	if runCfg.skipProbes {
		summary.ProbesSkipped = true
		return
	}

	reporter.Section("Running Probes")
	runner := probe.NewRunner(client, rec, reporter, cfg)
	runner.SetPersist(store.Save)
	summary.Probes = runner.RunAll(ctx)
}

// runTeardown unwinds the record and reconciles the persisted state: a
// clean teardown removes the run file, a partial one keeps only the
// leaked resources for a later cleanup.
func runTeardown(
	ctx context.Context,
	client *api.Client,
	store *runstate.Store,
	rec *runstate.Record,
	reporter *report.Reporter,
	summary *report.Summary,
) {
	reporter.Section("Cleaning Up")
	outcomes := teardown.NewSequencer(client, reporter).Teardown(ctx, rec)
	summary.Teardown = outcomes

	if teardown.Failed(outcomes) == 0 {
		if err := store.Remove(); err != nil {
			slog.Warn("failed to remove run file", "error", err)
		}
		return
	}
	if err := store.Save(leakedRecord(rec, outcomes)); err != nil {
		slog.Warn("failed to persist leaked resources", "error", err)
	}
}

// leakedRecord keeps only the resources whose delete failed, preserving
// creation order so a later cleanup unwinds them correctly.
func leakedRecord(rec *runstate.Record, outcomes []teardown.Outcome) *runstate.Record {
	failed := make(map[runstate.Kind]map[int64]bool)
	for _, o := range outcomes {
		if o.OK {
			continue
		}
		if failed[o.Kind] == nil {
			failed[o.Kind] = make(map[int64]bool)
		}
		failed[o.Kind][o.ID] = true
	}

	out := &runstate.Record{StartedAt: rec.StartedAt}
	for _, res := range rec.Resources {
		if failed[res.Kind][res.ID] {
			out.Resources = append(out.Resources, res)
		}
	}
	return out
}

func printSummary(w io.Writer, session *report.SessionStore, summary *report.Summary) error {
	if runCfg.output == "json" {
		if err := summary.WriteJSON(session.Writer()); err != nil {
			slog.Warn("failed to store summary", "error", err)
		}
		return summary.WriteJSON(w)
	}
	summary.Print(io.MultiWriter(w, session.Writer()))
	return nil
}

// stepCounter feeds the transcript and advances the progress bar on each
// fixture step.
type stepCounter struct {
	*report.Reporter
	progress *report.FixtureProgress
}

func (s stepCounter) Stepf(format string, args ...any) {
	s.Reporter.Stepf(format, args...)
	s.progress.Step()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
