package core

import "math"

// Point is a 2D location in domain coordinates (meters).
type Point struct {
	X float64
	Y float64
}

// Hypot returns the Euclidean distance between two points.
func (p Point) Hypot(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Node is a grid point of the ground structure. Nodes are created once at
// mesh-build time and never move.
type Node struct {
	Index int // position in the structure's node arena
	Pos   Point
}

// Member is a candidate structural connector between two nodes.
//
// Geometry is immutable after the build: "removing" a member only flips
// Active and attenuates its engine-side stiffness, it never deletes the
// member or mutates its endpoints.
type Member struct {
	ID     int // 1-based, assigned in build order
	NodeI  int // arena index of the first endpoint
	NodeJ  int // arena index of the second endpoint
	P1     Point
	P2     Point
	Mid    Point
	Length float64

	Active       bool
	MirrorID     int     // ID of the right-side twin, 0 = no mirror
	StrainEnergy float64 // symmetrized ranking metric, recomputed each iteration
	ForceVal     float64 // last solved internal force magnitude
}

// Structure is the single owned arena of nodes and members for one
// optimization run. Members are addressed by ID (index+1) so mirror
// references stay valid for the lifetime of the run.
type Structure struct {
	Nodes   []Node
	Members []Member

	Span       float64
	Height     float64
	Centerline float64 // Span / 2
}

// Member returns the member with the given ID, or nil if the ID is out of
// range. IDs are 1-based build order, so the lookup is a direct index.
func (s *Structure) Member(id int) *Member {
	if id < 1 || id > len(s.Members) {
		return nil
	}
	return &s.Members[id-1]
}

// ActiveCount returns the number of currently active members.
func (s *Structure) ActiveCount() int {
	count := 0
	for i := range s.Members {
		if s.Members[i].Active {
			count++
		}
	}
	return count
}

// NearestNode returns the arena index of the node closest to (x, y).
// Used to place supports and the point load on the generated grid.
func (s *Structure) NearestNode(x, y float64) int {
	best := -1
	minDist := math.Inf(1)
	target := Point{X: x, Y: y}
	for i := range s.Nodes {
		if d := s.Nodes[i].Pos.Hypot(target); d < minDist {
			minDist = d
			best = i
		}
	}
	return best
}
