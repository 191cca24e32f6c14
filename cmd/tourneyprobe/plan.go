package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arenalab/tourneyprobe/internal/fixture"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the fixture steps and teardown order without touching the API",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, _ []string) error {
	steps := fixture.PlanSteps()

	cmd.Println("Fixture steps:")
	for i, s := range steps {
		expect := make([]string, len(s.Expect))
		for j, code := range s.Expect {
			expect[j] = strconv.Itoa(code)
		}
		line := "  " + strconv.Itoa(i+1) + ". " + s.Name +
			"  (" + s.Method + " " + s.Path + ", expect " + strings.Join(expect, " or ") + ")"
		cmd.Println(line)
	}

	cmd.Println("\nProbes:")
	for _, p := range []string{
		"register for tournament",
		"my registration status",
		"admin: list registrations",
		"admin: confirm participants",
		"admin: start vote (records the vote event for teardown)",
		"websocket echo",
	} {
		cmd.Println("  - " + p)
	}

	cmd.Println("\nTeardown deletes every recorded resource in exact reverse")
	cmd.Println("creation order: vote event, match, participants, registrations,")
	cmd.Println("tournament, users.")
	return nil
}
