// Package ground builds the dense candidate-member mesh ("ground structure")
// an optimization run starts from, and computes the left/right symmetry
// pairing over it.
package ground

import (
	"math"

	"github.com/StructKit/beso-go/pkg/core"
	"github.com/StructKit/beso-go/pkg/errors"
)

const (
	// minLength excludes degenerate zero-length candidates.
	minLength = 1e-3

	// reachFactor scales the horizontal grid spacing into the connection
	// cutoff: direct, diagonal and near-diagonal neighbors qualify,
	// longer spans do not.
	reachFactor = 1.6
)

// Build generates the rectangular node grid and connects every pair of
// nodes whose distance falls within (minLength, reachFactor*dx]. Exactly
// one member is created per qualifying unordered node pair, with IDs
// assigned in construction order, so the result is deterministic for fixed
// inputs.
func Build(span, height float64, xDivs, yDivs int) (*core.Structure, error) {
	if span <= 0 || height <= 0 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidGeometry, "span and height must be positive"),
			errors.Fields{"span": span, "height": height},
		)
	}
	if xDivs < 1 || yDivs < 1 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidGeometry, "grid divisions must be at least 1"),
			errors.Fields{"x_divs": xDivs, "y_divs": yDivs},
		)
	}

	dx := span / float64(xDivs)
	dy := height / float64(yDivs)

	s := &core.Structure{
		Span:       span,
		Height:     height,
		Centerline: span / 2,
		Nodes:      make([]core.Node, 0, (xDivs+1)*(yDivs+1)),
	}

	// Coordinates are rounded to 3 decimals so reflection targets and
	// nearest-node lookups are stable across float noise.
	for i := 0; i <= xDivs; i++ {
		for j := 0; j <= yDivs; j++ {
			s.Nodes = append(s.Nodes, core.Node{
				Index: len(s.Nodes),
				Pos: core.Point{
					X: round3(float64(i) * dx),
					Y: round3(float64(j) * dy),
				},
			})
		}
	}

	maxDist := dx * reachFactor

	for i := 0; i < len(s.Nodes); i++ {
		for j := i + 1; j < len(s.Nodes); j++ {
			p1 := s.Nodes[i].Pos
			p2 := s.Nodes[j].Pos
			dist := p1.Hypot(p2)

			if dist <= minLength || dist > maxDist {
				continue
			}

			s.Members = append(s.Members, core.Member{
				ID:     len(s.Members) + 1,
				NodeI:  i,
				NodeJ:  j,
				P1:     p1,
				P2:     p2,
				Mid:    core.Point{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2},
				Length: dist,
				Active: true,
			})
		}
	}

	return s, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
