package main

import (
	"github.com/spf13/cobra"

	"github.com/arenalab/tourneyprobe/internal/config"
	"github.com/arenalab/tourneyprobe/internal/report"
)

var logsList bool

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the transcript of the most recent run",
	Args:  cobra.NoArgs,
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().BoolVar(&logsList, "list", false, "List stored transcript sessions instead")
}

func runLogs(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(getConfigDir())
	if err != nil {
		return err
	}
	dataDir := config.ExpandHome(cfg.DataDir)

	if logsList {
		sessions, err := report.ListSessions(dataDir)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			cmd.Println("no stored transcripts")
			return nil
		}
		for _, s := range sessions {
			cmd.Printf("%s  %s\n", s.Timestamp.Format("2006-01-02 15:04:05"), s.Path)
		}
		return nil
	}

	info, data, err := report.ReadLatest(dataDir)
	if err != nil {
		return err
	}
	cmd.Printf("session %s\n\n", info.ID)
	cmd.OutOrStdout().Write(data)
	return nil
}
