package core

import "context"

// SupportKind enumerates the support conditions the engine understands.
type SupportKind int

const (
	// Fixed constrains both translations and the rotation.
	Fixed SupportKind = iota
	// Pinned constrains both translations, rotation stays free.
	Pinned
	// Roller constrains the vertical translation only.
	Roller
)

func (k SupportKind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Pinned:
		return "pinned"
	case Roller:
		return "roller"
	default:
		return "unknown"
	}
}

// Support attaches a support condition to a node.
type Support struct {
	Node int // arena index of the supported node
	Kind SupportKind
}

// PointLoad is a nodal force in global coordinates (Newtons).
type PointLoad struct {
	Node int
	FX   float64
	FY   float64
}

// MemberSpec describes one member of the topology handed to the engine:
// endpoint node indices plus axial (EA) and bending (EI) stiffness.
type MemberSpec struct {
	ID    int
	NodeI int
	NodeJ int
	EA    float64
	EI    float64
}

// Topology is the full structural model submitted to an analysis engine.
type Topology struct {
	Nodes    []Point
	Members  []MemberSpec
	Supports []Support
	Loads    []PointLoad
}

// MemberForce holds the internal force diagrams of one member, sampled at
// stations along its axis. A single-element slice is the scalar case, an
// empty slice means the engine reported no value.
type MemberForce struct {
	Axial  []float64
	Shear  []float64
	Moment []float64
}

// Solution is the result of one static solve.
type Solution struct {
	// Displacements and Reactions are indexed by node arena index; each
	// entry is (ux, uy, rz) respectively (fx, fy, mz) for reactions.
	Displacements [][3]float64
	Reactions     [][3]float64

	// Forces maps member ID to its internal force diagrams.
	Forces map[int]MemberForce
}

// AnalysisEngine is the narrow capability interface the optimizer depends
// on. Any conforming linear-elastic static engine can stand behind it.
type AnalysisEngine interface {
	// LoadTopology replaces the engine's current model with the given one.
	LoadTopology(t Topology) error

	// ScaleMemberStiffness multiplies the stored EA and EI of one member.
	// Soft-kill calls this with a small factor; the member stays part of
	// the topology so the system matrix keeps its structure.
	ScaleMemberStiffness(id int, factor float64) error

	// Solve runs a static analysis of the current model. It is a
	// synchronous, blocking call; cancellation is honored before the
	// solve starts, never mid-solve.
	Solve(ctx context.Context) (*Solution, error)
}
