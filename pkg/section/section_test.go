package section

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StructKit/beso-go/pkg/errors"
)

func TestProperties(t *testing.T) {
	t.Run("standard 150x300 section", func(t *testing.T) {
		// B=150mm, D=300mm, tw=8mm, tf=12mm
		area, inertia, err := Properties(0.15, 0.3, 0.008, 0.012)
		require.NoError(t, err)

		wantArea := 2*0.15*0.012 + (0.3-2*0.012)*0.008
		wantInertia := 0.15*math.Pow(0.3, 3)/12 - (0.15-0.008)*math.Pow(0.3-2*0.012, 3)/12

		assert.InDelta(t, wantArea, area, 1e-12)
		assert.InDelta(t, wantInertia, inertia, 1e-12)
		assert.Greater(t, area, 0.0)
		assert.Greater(t, inertia, 0.0)
	})

	t.Run("solid rectangle limit", func(t *testing.T) {
		// With tw == B the section degenerates toward a solid rectangle,
		// which the web-thickness rule rejects.
		_, _, err := Properties(0.1, 0.2, 0.1, 0.02)
		assert.Error(t, err)
	})
}

func TestPropertiesInvalidGeometry(t *testing.T) {
	tests := []struct {
		name         string
		b, d, tw, tf float64
	}{
		{name: "zero flange width", b: 0, d: 0.3, tw: 0.008, tf: 0.012},
		{name: "negative depth", b: 0.15, d: -0.3, tw: 0.008, tf: 0.012},
		{name: "zero web thickness", b: 0.15, d: 0.3, tw: 0, tf: 0.012},
		{name: "flange thickness at half depth", b: 0.15, d: 0.3, tw: 0.008, tf: 0.15},
		{name: "flange thickness above half depth", b: 0.15, d: 0.3, tw: 0.008, tf: 0.2},
		{name: "web as wide as flange", b: 0.15, d: 0.3, tw: 0.15, tf: 0.012},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Properties(tt.b, tt.d, tt.tw, tt.tf)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.New(errors.InvalidGeometry, "")),
				"expected InvalidGeometry, got %v", err)
		})
	}
}
