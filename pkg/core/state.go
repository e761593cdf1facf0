package core

// RunState is the optimization loop's lifecycle state.
type RunState int

const (
	Uninitialized RunState = iota
	Ready
	Running
	Converged
	Stopped
	Failed
)

func (s RunState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Converged:
		return "converged"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is sticky: no transition leaves a
// terminal state without a fresh initialize.
func (s RunState) Terminal() bool {
	return s == Converged || s == Stopped || s == Failed
}
