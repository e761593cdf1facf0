package beso

import (
	"sort"

	"github.com/StructKit/beso-go/pkg/core"
)

// pruneWeakest ranks active members ascending by symmetrized strain energy
// and soft-kills the weakest fraction: Active flips to false and the
// engine-side stiffness is attenuated, never deleted, so the system matrix
// keeps its structure.
//
// Removal count is max(1, floor(active*ratio)), forced to zero when the
// active count is already below the safety floor (convergence-hold). A
// victim's active mirror is force-killed in the same step regardless of its
// own rank, which keeps the topology exactly symmetric.
//
// Returns the number of members deactivated (mirrors included) and whether
// the safety floor held this iteration.
func pruneWeakest(s *core.Structure, engine core.AnalysisEngine, ratio float64, safetyFloor int, reduction float64) (removed int, held bool, err error) {
	active := make([]*core.Member, 0, len(s.Members))
	for i := range s.Members {
		if s.Members[i].Active {
			active = append(active, &s.Members[i])
		}
	}

	// Stable sort: equal energies (every symmetrized pair) keep arena
	// order, so a left member always precedes its twin and the pair is
	// removed together.
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].StrainEnergy < active[j].StrainEnergy
	})

	count := int(float64(len(active)) * ratio)
	if count < 1 {
		count = 1
	}
	if len(active) < safetyFloor {
		return 0, true, nil
	}

	kill := func(m *core.Member) error {
		m.Active = false
		if err := engine.ScaleMemberStiffness(m.ID, reduction); err != nil {
			return err
		}
		removed++
		return nil
	}

	for i := 0; i < count && i < len(active); i++ {
		target := active[i]
		if !target.Active {
			// Already force-killed as an earlier victim's mirror.
			continue
		}
		if err := kill(target); err != nil {
			return removed, false, err
		}

		if target.MirrorID != 0 {
			twin := s.Member(target.MirrorID)
			if twin != nil && twin.Active {
				if err := kill(twin); err != nil {
					return removed, false, err
				}
			}
		}
	}

	return removed, false, nil
}
