package core

// MemberView is the display projection of one member: position, activity
// and last solved force. Views are copies, so report consumers never alias
// the live arena.
type MemberView struct {
	P1     Point
	P2     Point
	Active bool
	Force  float64
}

// IterationReport is the per-iteration snapshot handed to rendering and
// export layers.
type IterationReport struct {
	Iteration   int
	Members     []MemberView
	MaxForce    float64 // largest force among active members, for proportional rendering
	ActiveCount int
	Removed     int // members deactivated this iteration, mirrors included
	TotalEnergy float64
	State       string // current RunState string
}

// ReportSink receives iteration reports as they are produced.
type ReportSink interface {
	Report(r *IterationReport)
}
