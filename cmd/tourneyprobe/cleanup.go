package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/arenalab/tourneyprobe/internal/api"
	"github.com/arenalab/tourneyprobe/internal/config"
	probeErrors "github.com/arenalab/tourneyprobe/internal/errors"
	"github.com/arenalab/tourneyprobe/internal/report"
	"github.com/arenalab/tourneyprobe/internal/runstate"
	"github.com/arenalab/tourneyprobe/internal/teardown"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete the resources a previous run left behind",
	Long: `Delete the resources recorded by a previous run that was aborted,
crashed, or used --keep. Deletes happen in exact reverse creation
order; the run file is removed only when nothing is left.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(getConfigDir())
	if err != nil {
		return err
	}
	if err := cfg.ValidateAdmin(); err != nil {
		return err
	}

	store, err := runstate.NewStore(config.ExpandHome(cfg.DataDir))
	if err != nil {
		return err
	}
	if err := store.Lock(); err != nil {
		return err
	}
	defer store.Unlock()

	rec, err := store.Load()
	if err != nil {
		return err
	}
	if rec.Len() == 0 {
		cmd.Println("nothing to clean up")
		return store.Remove()
	}

	noColor := !isatty.IsTerminal(os.Stdout.Fd())
	reporter := report.NewReporter(cmd.OutOrStdout(), noColor)
	reporter.Section("Cleaning Up")

	outcomes := teardown.NewSequencer(api.NewClient(cfg), reporter).Teardown(cmd.Context(), rec)

	summary := &report.Summary{Created: rec.Len(), ProbesSkipped: true, Teardown: outcomes}
	summary.Print(cmd.OutOrStdout())

	if teardown.Failed(outcomes) > 0 {
		if err := store.Save(leakedRecord(rec, outcomes)); err != nil {
			return err
		}
		return probeErrors.New(probeErrors.CategoryTeardown,
			"some resources could not be removed").
			WithDetail("run file", store.RunPath()).
			WithHint("fix the API and run `tourneyprobe cleanup` again")
	}
	return store.Remove()
}
