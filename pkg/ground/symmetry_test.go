package ground

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StructKit/beso-go/pkg/core"
)

func TestMapSymmetryReflectionBound(t *testing.T) {
	s, err := Build(16, 5, 8, 3)
	require.NoError(t, err)
	MapSymmetry(s)

	mapped := 0
	for _, m := range s.Members {
		if m.MirrorID == 0 {
			continue
		}
		mapped++

		twin := s.Member(m.MirrorID)
		require.NotNil(t, twin)

		// The twin's midpoint lies within tolerance of the exact
		// reflection of the member's midpoint about the centerline.
		target := core.Point{X: s.Span - m.Mid.X, Y: m.Mid.Y}
		assert.Less(t, twin.Mid.Hypot(target), 0.1)
	}
	assert.Greater(t, mapped, 0, "expected left-side members to find twins")
}

func TestMapSymmetryNoSelfMirror(t *testing.T) {
	s, err := Build(16, 5, 8, 3)
	require.NoError(t, err)
	MapSymmetry(s)

	for _, m := range s.Members {
		assert.NotEqual(t, m.ID, m.MirrorID, "member %d mirrors itself", m.ID)
	}
}

func TestMapSymmetryOnlyLeftSideMapped(t *testing.T) {
	s, err := Build(16, 5, 8, 3)
	require.NoError(t, err)
	MapSymmetry(s)

	for _, m := range s.Members {
		if m.Mid.X >= s.Centerline {
			assert.Zero(t, m.MirrorID,
				"member %d at mid.x=%v should have no mirror", m.ID, m.Mid.X)
		}
	}
}

func TestMapSymmetryTwinIsRightSide(t *testing.T) {
	s, err := Build(16, 5, 8, 3)
	require.NoError(t, err)
	MapSymmetry(s)

	for _, m := range s.Members {
		if m.MirrorID == 0 {
			continue
		}
		twin := s.Member(m.MirrorID)
		require.NotNil(t, twin)
		assert.Greater(t, twin.Mid.X, s.Centerline)
	}
}

func TestMapSymmetryPairingIsInjective(t *testing.T) {
	// Every grid cell carries two crossing diagonals with the same
	// midpoint, so an aliased match would hand two left members the same
	// right twin. Each right member may be claimed exactly once.
	s, err := Build(16, 5, 8, 3)
	require.NoError(t, err)
	MapSymmetry(s)

	claimedBy := make(map[int]int)
	for _, m := range s.Members {
		if m.MirrorID == 0 {
			continue
		}
		if prev, taken := claimedBy[m.MirrorID]; taken {
			t.Errorf("right member %d is the recorded mirror of both %d and %d",
				m.MirrorID, prev, m.ID)
		}
		claimedBy[m.MirrorID] = m.ID
	}
}

func TestMapSymmetryTwinMatchesReflectedEndpoints(t *testing.T) {
	// The twin must be the member's actual reflection, not its crossing
	// mate: endpoints reflect onto endpoints.
	s, err := Build(16, 5, 8, 3)
	require.NoError(t, err)
	MapSymmetry(s)

	for _, m := range s.Members {
		if m.MirrorID == 0 {
			continue
		}
		twin := s.Member(m.MirrorID)
		require.NotNil(t, twin)

		r1 := core.Point{X: s.Span - m.P1.X, Y: m.P1.Y}
		r2 := core.Point{X: s.Span - m.P2.X, Y: m.P2.Y}

		straight := twin.P1.Hypot(r1) < 0.1 && twin.P2.Hypot(r2) < 0.1
		flipped := twin.P1.Hypot(r2) < 0.1 && twin.P2.Hypot(r1) < 0.1
		assert.True(t, straight || flipped,
			"member %d (%v-%v) paired with %d (%v-%v), not its reflection",
			m.ID, m.P1, m.P2, twin.ID, twin.P1, twin.P2)
	}
}

func TestMapSymmetryDisambiguatesCrossingDiagonals(t *testing.T) {
	// One X-braced cell per side: the left cell's rising and falling
	// diagonals share a midpoint but must pair with their own
	// reflections in the right cell.
	s, err := Build(4, 2, 2, 1)
	require.NoError(t, err)
	MapSymmetry(s)

	findMember := func(p1, p2 core.Point) *core.Member {
		for i := range s.Members {
			m := &s.Members[i]
			if (m.P1 == p1 && m.P2 == p2) || (m.P1 == p2 && m.P2 == p1) {
				return m
			}
		}
		return nil
	}

	rising := findMember(core.Point{X: 0, Y: 0}, core.Point{X: 2, Y: 2})
	falling := findMember(core.Point{X: 0, Y: 2}, core.Point{X: 2, Y: 0})
	require.NotNil(t, rising)
	require.NotNil(t, falling)
	require.NotZero(t, rising.MirrorID)
	require.NotZero(t, falling.MirrorID)
	require.NotEqual(t, rising.MirrorID, falling.MirrorID)

	// Reflection of (0,0)-(2,2) about x=2 is (4,0)-(2,2).
	risingWant := findMember(core.Point{X: 2, Y: 2}, core.Point{X: 4, Y: 0})
	require.NotNil(t, risingWant)
	assert.Equal(t, risingWant.ID, rising.MirrorID)

	fallingWant := findMember(core.Point{X: 2, Y: 0}, core.Point{X: 4, Y: 2})
	require.NotNil(t, fallingWant)
	assert.Equal(t, fallingWant.ID, falling.MirrorID)
}

func TestMapSymmetryOnSymmetricGridIsTotal(t *testing.T) {
	// On an even, symmetric grid every strictly-left member has an exact
	// reflected twin.
	s, err := Build(16, 5, 8, 3)
	require.NoError(t, err)
	MapSymmetry(s)

	for _, m := range s.Members {
		if m.Mid.X < s.Centerline {
			assert.NotZero(t, m.MirrorID, "left member %d found no twin", m.ID)
		}
	}
}
