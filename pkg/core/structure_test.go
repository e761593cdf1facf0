package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructureMemberLookup(t *testing.T) {
	s := &Structure{
		Members: []Member{
			{ID: 1, Active: true},
			{ID: 2, Active: false},
			{ID: 3, Active: true},
		},
	}

	t.Run("valid ID returns arena element", func(t *testing.T) {
		m := s.Member(2)
		require.NotNil(t, m)
		assert.Equal(t, 2, m.ID)

		// Lookup returns a pointer into the arena, not a copy.
		m.StrainEnergy = 5.0
		assert.Equal(t, 5.0, s.Members[1].StrainEnergy)
	})

	t.Run("out of range IDs return nil", func(t *testing.T) {
		assert.Nil(t, s.Member(0))
		assert.Nil(t, s.Member(4))
		assert.Nil(t, s.Member(-1))
	})
}

func TestStructureActiveCount(t *testing.T) {
	s := &Structure{
		Members: []Member{
			{ID: 1, Active: true},
			{ID: 2, Active: false},
			{ID: 3, Active: true},
		},
	}
	assert.Equal(t, 2, s.ActiveCount())

	s.Members[0].Active = false
	assert.Equal(t, 1, s.ActiveCount())
}

func TestStructureNearestNode(t *testing.T) {
	s := &Structure{
		Nodes: []Node{
			{Index: 0, Pos: Point{X: 0, Y: 0}},
			{Index: 1, Pos: Point{X: 2, Y: 0}},
			{Index: 2, Pos: Point{X: 2, Y: 1.667}},
			{Index: 3, Pos: Point{X: 4, Y: 0}},
		},
	}

	assert.Equal(t, 0, s.NearestNode(0, 0))
	assert.Equal(t, 3, s.NearestNode(4.1, -0.2))
	// Off-grid query snaps to the closest grid node.
	assert.Equal(t, 2, s.NearestNode(1.9, 1.5))
}

func TestRunStateTerminal(t *testing.T) {
	assert.False(t, Uninitialized.Terminal())
	assert.False(t, Ready.Terminal())
	assert.False(t, Running.Terminal())
	assert.True(t, Converged.Terminal())
	assert.True(t, Stopped.Terminal())
	assert.True(t, Failed.Terminal())
}

func TestRunStateString(t *testing.T) {
	assert.Equal(t, "converged", Converged.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "unknown", RunState(99).String())
}
