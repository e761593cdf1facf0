package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/StructKit/beso-go/pkg/errors"
)

// Support condition selectors accepted by RunParams.Support.
const (
	SupportPinnedRoller = "pinned-roller"
	SupportFixedFixed   = "fixed-fixed"
	SupportPinnedPinned = "pinned-pinned"
)

// SectionParams describes a symmetric I-shaped cross-section, dimensions in
// meters.
type SectionParams struct {
	FlangeWidth     float64 `yaml:"flange_width" validate:"gt=0"`
	Depth           float64 `yaml:"depth" validate:"gt=0"`
	WebThickness    float64 `yaml:"web_thickness" validate:"gt=0"`
	FlangeThickness float64 `yaml:"flange_thickness" validate:"gt=0"`
}

// RunParams carries the full parameter set of one optimization run: domain
// geometry, load, supports, material, section, grid resolution and the
// pruning policy knobs.
type RunParams struct {
	Span   float64 `yaml:"span" validate:"gt=0"`   // meters
	Height float64 `yaml:"height" validate:"gt=0"` // meters
	Load   float64 `yaml:"load" validate:"gt=0"`   // Newtons, applied downward at midspan top

	Support    string        `yaml:"support" validate:"oneof=pinned-roller fixed-fixed pinned-pinned"`
	ModulusGPa float64       `yaml:"modulus_gpa" validate:"gt=0"`
	Section    SectionParams `yaml:"section"`

	RemovalRatio     float64 `yaml:"removal_ratio" validate:"gt=0,lt=1"`
	SafetyFloor      int     `yaml:"safety_floor" validate:"min=1"`
	ConvergenceFloor int     `yaml:"convergence_floor" validate:"min=1"`

	XDivs int `yaml:"x_divs" validate:"min=1"`
	YDivs int `yaml:"y_divs" validate:"min=1"`
}

// Default returns the standard run parameters: a 16 m x 5 m domain under an
// 800 kN midspan load on pinned-roller supports, steel 150x300 I-section,
// 2% removal per iteration with floors at 15 and 25 members.
func Default() RunParams {
	return RunParams{
		Span:       16,
		Height:     5,
		Load:       800_000,
		Support:    SupportPinnedRoller,
		ModulusGPa: 200,
		Section: SectionParams{
			FlangeWidth:     0.15,
			Depth:           0.3,
			WebThickness:    0.008,
			FlangeThickness: 0.012,
		},
		RemovalRatio:     0.02,
		SafetyFloor:      15,
		ConvergenceFloor: 25,
		XDivs:            8,
		YDivs:            3,
	}
}

// Load reads a YAML file and overlays it onto the defaults, then validates
// the result. Fields absent from the file keep their default values.
func Load(path string) (RunParams, error) {
	params := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return params, errors.Wrap(err, errors.ConfigurationError, "failed to read run parameters")
	}

	if err := yaml.Unmarshal(data, &params); err != nil {
		return params, errors.Wrap(err, errors.ConfigurationError, "failed to parse run parameters")
	}

	if err := Validate(&params); err != nil {
		return params, err
	}

	return params, nil
}
