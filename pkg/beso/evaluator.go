package beso

import (
	"math"

	"github.com/StructKit/beso-go/pkg/core"
)

// iterationStats carries the run diagnostics of one evaluation pass.
type iterationStats struct {
	TotalEnergy float64 // sum of strain energy over active members
	MaxForce    float64 // largest force magnitude observed this solve
}

// forceMagnitude extracts the ranking force from a member's solved force
// diagrams: zero when the engine reported no value, the absolute value for
// a scalar result, the maximum absolute value across the distribution
// otherwise.
func forceMagnitude(mf core.MemberForce) float64 {
	maxAbs := 0.0
	for _, v := range mf.Axial {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	return maxAbs
}

// evaluateEnergies recomputes the strain-energy proxy (force^2 * length)
// for every active member from the given solution, then enforces the
// symmetry constraint by averaging each active mirror pair's energies so
// both twins rank identically.
func evaluateEnergies(s *core.Structure, sol *core.Solution) iterationStats {
	var stats iterationStats

	for i := range s.Members {
		m := &s.Members[i]
		if !m.Active {
			continue
		}

		force := forceMagnitude(sol.Forces[m.ID])
		m.ForceVal = force
		if force > stats.MaxForce {
			stats.MaxForce = force
		}

		m.StrainEnergy = force * force * m.Length
		stats.TotalEnergy += m.StrainEnergy
	}

	// Symmetrize: the physical solve is not symmetry-constrained, the
	// ranking metric is.
	for i := range s.Members {
		m := &s.Members[i]
		if !m.Active || m.MirrorID == 0 {
			continue
		}
		twin := s.Member(m.MirrorID)
		if twin == nil || !twin.Active {
			continue
		}

		avg := (m.StrainEnergy + twin.StrainEnergy) / 2
		m.StrainEnergy = avg
		twin.StrainEnergy = avg
	}

	return stats
}
