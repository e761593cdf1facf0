package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	params := Default()
	assert.NoError(t, Validate(&params))
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunParams)
		field  string
	}{
		{
			name:   "non-positive span",
			mutate: func(p *RunParams) { p.Span = 0 },
			field:  "Span",
		},
		{
			name:   "negative load",
			mutate: func(p *RunParams) { p.Load = -100 },
			field:  "Load",
		},
		{
			name:   "unknown support selector",
			mutate: func(p *RunParams) { p.Support = "cantilever" },
			field:  "Support",
		},
		{
			name:   "removal ratio of one",
			mutate: func(p *RunParams) { p.RemovalRatio = 1.0 },
			field:  "RemovalRatio",
		},
		{
			name:   "zero grid divisions",
			mutate: func(p *RunParams) { p.XDivs = 0 },
			field:  "XDivs",
		},
		{
			name:   "zero section depth",
			mutate: func(p *RunParams) { p.Section.Depth = 0 },
			field:  "Depth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := Default()
			tt.mutate(&params)

			err := Validate(&params)
			require.Error(t, err)

			verrs, ok := err.(ValidationErrors)
			require.True(t, ok)

			found := false
			for _, ve := range verrs {
				if ve.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected a validation error on %s, got %v", tt.field, err)
		})
	}
}

func TestValidateCustomSectionRules(t *testing.T) {
	t.Run("flange thickness at half depth", func(t *testing.T) {
		params := Default()
		params.Section.FlangeThickness = params.Section.Depth / 2

		err := Validate(&params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flange thickness")
	})

	t.Run("web thicker than flange width", func(t *testing.T) {
		params := Default()
		params.Section.WebThickness = params.Section.FlangeWidth

		err := Validate(&params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "web thickness")
	})

	t.Run("convergence floor below safety floor", func(t *testing.T) {
		params := Default()
		params.ConvergenceFloor = params.SafetyFloor

		err := Validate(&params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "convergence floor")
	})
}

func TestValidateNilParams(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "params is nil")
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := []byte("span: 20\nload: 500000\nsupport: fixed-fixed\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	params, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20.0, params.Span)
	assert.Equal(t, 500_000.0, params.Load)
	assert.Equal(t, SupportFixedFixed, params.Support)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5.0, params.Height)
	assert.Equal(t, 0.02, params.RemovalRatio)
	assert.Equal(t, 8, params.XDivs)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("span: [not a number"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("span: -4\n"), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.IsType(t, ValidationErrors{}, err)
	})
}
