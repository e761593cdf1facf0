package beso

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/StructKit/beso-go/internal/testutil"
	"github.com/StructKit/beso-go/pkg/core"
)

func permissiveEngine() *testutil.MockEngine {
	engine := &testutil.MockEngine{}
	engine.On("ScaleMemberStiffness", mock.Anything, mock.Anything).Return(nil)
	return engine
}

// rankedStructure builds n active members with strictly increasing energy
// and no mirrors.
func rankedStructure(n int) *core.Structure {
	s := &core.Structure{Members: make([]core.Member, n)}
	for i := range s.Members {
		s.Members[i] = core.Member{
			ID:           i + 1,
			Length:       1,
			Active:       true,
			StrainEnergy: float64(i + 1),
		}
	}
	return s
}

func TestPruneRemovesWeakestFirst(t *testing.T) {
	s := rankedStructure(100)
	engine := permissiveEngine()

	removed, held, err := pruneWeakest(s, engine, 0.02, 15, 1e-6)
	require.NoError(t, err)
	assert.False(t, held)
	assert.Equal(t, 2, removed)

	// The two lowest-energy members are gone, everything else survives.
	assert.False(t, s.Member(1).Active)
	assert.False(t, s.Member(2).Active)
	assert.True(t, s.Member(3).Active)
	assert.Equal(t, 98, s.ActiveCount())
}

func TestPruneRemovesAtLeastOne(t *testing.T) {
	// 2% of 20 rounds down to 0; removal is forced up to 1 so the run
	// cannot stall above the safety floor.
	s := rankedStructure(20)
	engine := permissiveEngine()

	removed, held, err := pruneWeakest(s, engine, 0.02, 15, 1e-6)
	require.NoError(t, err)
	assert.False(t, held)
	assert.Equal(t, 1, removed)
	assert.False(t, s.Member(1).Active)
}

func TestPruneSafetyFloorHold(t *testing.T) {
	s := rankedStructure(14)
	engine := &testutil.MockEngine{}

	removed, held, err := pruneWeakest(s, engine, 0.02, 15, 1e-6)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Zero(t, removed)
	assert.Equal(t, 14, s.ActiveCount())
	// Holding means no stiffness was touched.
	assert.Empty(t, engine.Scaled())
}

func TestPruneKillsMirrorPairTogether(t *testing.T) {
	s := rankedStructure(20)
	// Member 1 (weakest) mirrors member 18, whose own rank would never
	// select it.
	s.Member(1).MirrorID = 18
	s.Member(18).StrainEnergy = 1e9

	engine := permissiveEngine()

	removed, held, err := pruneWeakest(s, engine, 0.02, 15, 1e-6)
	require.NoError(t, err)
	assert.False(t, held)
	assert.Equal(t, 2, removed)
	assert.False(t, s.Member(1).Active)
	assert.False(t, s.Member(18).Active)

	// Both soft-kills reached the engine with the attenuation factor.
	calls := engine.Scaled()
	require.Len(t, calls, 2)
	assert.Equal(t, testutil.ScaleCall{ID: 1, Factor: 1e-6}, calls[0])
	assert.Equal(t, testutil.ScaleCall{ID: 18, Factor: 1e-6}, calls[1])
}

func TestPruneSkipsAlreadyKilledTwin(t *testing.T) {
	// Members 1 and 2 are a symmetrized pair with equal (lowest) energy;
	// removing member 1 force-kills member 2, and the ranking loop must
	// not double-count it.
	s := rankedStructure(60)
	s.Member(1).MirrorID = 2
	s.Member(2).StrainEnergy = s.Member(1).StrainEnergy

	engine := permissiveEngine()

	removed, held, err := pruneWeakest(s, engine, 0.05, 15, 1e-6)
	require.NoError(t, err)
	assert.False(t, held)

	// floor(60*0.05)=3 victims: pair (1,2) plus the next weakest, 3.
	assert.Equal(t, 3, removed)
	assert.False(t, s.Member(1).Active)
	assert.False(t, s.Member(2).Active)
	assert.False(t, s.Member(3).Active)
	assert.True(t, s.Member(4).Active)
}

func TestPrunePropagatesEngineError(t *testing.T) {
	s := rankedStructure(20)
	engine := &testutil.MockEngine{}
	engine.On("ScaleMemberStiffness", mock.Anything, mock.Anything).
		Return(assert.AnError)

	_, _, err := pruneWeakest(s, engine, 0.02, 15, 1e-6)
	assert.Error(t, err)
}

func TestPruneStableTieBreakKeepsArenaOrder(t *testing.T) {
	s := rankedStructure(30)
	// Give everyone the same energy: the stable sort must keep arena
	// order, so the removal starts at the lowest IDs.
	for i := range s.Members {
		s.Members[i].StrainEnergy = 7.0
	}

	engine := permissiveEngine()

	removed, _, err := pruneWeakest(s, engine, 0.1, 15, 1e-6)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.False(t, s.Member(1).Active)
	assert.False(t, s.Member(2).Active)
	assert.False(t, s.Member(3).Active)
	assert.True(t, s.Member(4).Active)
}
