package types

// Phase represents a state of the batch processing state machine
type Phase string

const (
	PhaseFetch      Phase = "fetch"
	PhaseProcessOne Phase = "process_one"
	PhaseRetrieve   Phase = "retrieve"
	PhaseGenerate   Phase = "generate"
	PhaseSend       Phase = "send"
	PhaseAdvance    Phase = "advance"
	PhaseFinalize   Phase = "finalize"
	PhaseDone       Phase = "done"
)

// AllPhases returns all valid phases
func AllPhases() []Phase {
	return []Phase{
		PhaseFetch,
		PhaseProcessOne,
		PhaseRetrieve,
		PhaseGenerate,
		PhaseSend,
		PhaseAdvance,
		PhaseFinalize,
		PhaseDone,
	}
}

// IsValid checks if the phase is valid
func (p Phase) IsValid() bool {
	switch p {
	case PhaseFetch,
		PhaseProcessOne,
		PhaseRetrieve,
		PhaseGenerate,
		PhaseSend,
		PhaseAdvance,
		PhaseFinalize,
		PhaseDone:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the phase ends a run
func (p Phase) IsTerminal() bool {
	return p == PhaseDone
}

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}
