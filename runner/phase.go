package runner

// Phase is the lifecycle position of an agent between run cycles.
type Phase string

const (
	// PhaseIdle means no cycle is in progress and the agent accepts work.
	PhaseIdle Phase = "idle"
	// PhasePlanning means planning input is being normalized and enqueued.
	PhasePlanning Phase = "planning"
	// PhaseRunning means an instruction is executing.
	PhaseRunning Phase = "running"
	// PhaseApplyingDirectives means returned directives are being applied.
	PhaseApplyingDirectives Phase = "applying_directives"
	// PhaseFailed means the last cycle ended with an unrecovered error.
	PhaseFailed Phase = "failed"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:               {PhasePlanning, PhaseRunning},
	PhasePlanning:           {PhaseIdle, PhaseRunning, PhaseFailed},
	PhaseRunning:            {PhaseApplyingDirectives, PhaseIdle, PhaseFailed},
	PhaseApplyingDirectives: {PhaseIdle, PhaseFailed},
	PhaseFailed:             {PhasePlanning, PhaseIdle},
}

// CanTransition reports whether moving from p to next is a legal phase
// transition. A failed agent re-enters the loop through planning or an
// explicit reset to idle.
func (p Phase) CanTransition(next Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}
