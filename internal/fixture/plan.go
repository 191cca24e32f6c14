package fixture

import "github.com/arenalab/tourneyprobe/internal/runstate"

// StepInfo describes one fixture step for dry-run output.
type StepInfo struct {
	Name    string
	Method  string
	Path    string
	Expect  []int
	Records runstate.Kind
}

// PlanSteps returns the fixture steps in execution order, without
// touching the network.
func PlanSteps() []StepInfo {
	return []StepInfo{
		{Name: "create user 1", Method: "POST", Path: "/admin/users", Expect: []int{201}, Records: runstate.KindUser},
		{Name: "create user 2", Method: "POST", Path: "/admin/users", Expect: []int{201}, Records: runstate.KindUser},
		{Name: "create tournament", Method: "POST", Path: "/admin/tournaments", Expect: []int{201}, Records: runstate.KindTournament},
		{Name: "register user 1", Method: "POST", Path: "/tournaments/{id}/register", Expect: []int{201, 409}},
		{Name: "lookup registration 1", Method: "GET", Path: "/admin/registrations/user/{uid}/tournament/{tid}", Expect: []int{200}, Records: runstate.KindRegistration},
		{Name: "create registration 2", Method: "POST", Path: "/admin/registrations", Expect: []int{201}, Records: runstate.KindRegistration},
		{Name: "create participant 1", Method: "POST", Path: "/admin/participants", Expect: []int{201}, Records: runstate.KindParticipant},
		{Name: "create participant 2", Method: "POST", Path: "/admin/participants", Expect: []int{201}, Records: runstate.KindParticipant},
		{Name: "create match", Method: "POST", Path: "/admin/matches", Expect: []int{201}, Records: runstate.KindMatch},
	}
}
