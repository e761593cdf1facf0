// Package section derives cross-sectional properties from section
// dimensions.
package section

import (
	"github.com/StructKit/beso-go/pkg/errors"
)

// Properties returns the area and moment of inertia of a symmetric I-shaped
// cross-section by rectangle subtraction. All dimensions in meters: b is the
// flange width, d the total depth, tw the web thickness, tf the flange
// thickness.
func Properties(b, d, tw, tf float64) (area, inertia float64, err error) {
	if b <= 0 || d <= 0 || tw <= 0 || tf <= 0 {
		return 0, 0, errors.WithFields(
			errors.New(errors.InvalidGeometry, "section dimensions must be positive"),
			errors.Fields{"flange_width": b, "depth": d, "web_thickness": tw, "flange_thickness": tf},
		)
	}
	if tf >= d/2 {
		return 0, 0, errors.WithFields(
			errors.New(errors.InvalidGeometry, "flange thickness must be less than half the depth"),
			errors.Fields{"depth": d, "flange_thickness": tf},
		)
	}
	if tw >= b {
		return 0, 0, errors.WithFields(
			errors.New(errors.InvalidGeometry, "web thickness must be less than the flange width"),
			errors.Fields{"flange_width": b, "web_thickness": tw},
		)
	}

	area = 2*b*tf + (d-2*tf)*tw

	// Outer rectangle minus the two side rectangles flanking the web.
	h := d - 2*tf
	inertia = b*d*d*d/12 - (b-tw)*h*h*h/12

	return area, inertia, nil
}
