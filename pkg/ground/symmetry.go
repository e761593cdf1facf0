package ground

import (
	"github.com/StructKit/beso-go/pkg/core"
)

// mirrorTolerance bounds how far a candidate twin's geometry may sit from
// the exact reflection and still be accepted.
const mirrorTolerance = 0.1

// MapSymmetry assigns MirrorID for every member whose midpoint lies
// strictly left of the centerline: the candidate twins are the right-side
// members whose midpoint falls within tolerance of the reflected midpoint,
// and the FIRST one in arena order whose endpoints also match the
// reflected endpoints is accepted. Members at or right of the centerline
// keep MirrorID 0; symmetry is enforced one-directionally and propagated
// to the twin during evaluation.
//
// The endpoint check is load-bearing: the two crossing diagonals of a
// grid cell share a midpoint, so the midpoint alone cannot tell a member's
// reflection from its crossing mate's. Matching on endpoints keeps the
// pairing one-to-one.
//
// The first-match acceptance is deliberate: it preserves arena-order
// determinism instead of guaranteeing the globally nearest candidate.
func MapSymmetry(s *core.Structure) {
	for i := range s.Members {
		el := &s.Members[i]
		if el.Mid.X >= s.Centerline {
			continue
		}

		target := core.Point{X: s.Span - el.Mid.X, Y: el.Mid.Y}

		for j := range s.Members {
			candidate := &s.Members[j]
			if candidate.Mid.X <= s.Centerline {
				continue
			}
			if candidate.Mid.Hypot(target) >= mirrorTolerance {
				continue
			}
			if !reflectsOnto(el, candidate, s.Span) {
				continue
			}
			el.MirrorID = candidate.ID
			break
		}
	}
}

// reflectsOnto reports whether candidate's endpoints coincide with the
// reflection of el's endpoints about the centerline, in either endpoint
// order.
func reflectsOnto(el, candidate *core.Member, span float64) bool {
	r1 := core.Point{X: span - el.P1.X, Y: el.P1.Y}
	r2 := core.Point{X: span - el.P2.X, Y: el.P2.Y}

	straight := candidate.P1.Hypot(r1) < mirrorTolerance &&
		candidate.P2.Hypot(r2) < mirrorTolerance
	flipped := candidate.P1.Hypot(r2) < mirrorTolerance &&
		candidate.P2.Hypot(r1) < mirrorTolerance
	return straight || flipped
}
