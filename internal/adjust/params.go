// Package adjust implements the non-destructive adjustment stage: tunable
// parameters that are re-applied to a working copy of the stored buffer on
// every redraw.
package adjust

import (
	"fmt"
	"math"

	pximage "pixedit/internal/image"
)

// Slider ranges exposed to UI layers. Render accepts values outside them.
const (
	MinFactor = 0.0
	MaxFactor = 2.0
	MinScale  = 0.1
	MaxScale  = 3.0
	MinOffset = -255
	MaxOffset = 255
)

// DefaultOpacity is the overlay opacity used when none is given.
const DefaultOpacity = 0.5

// Params holds the adjustment parameters.
type Params struct {
	Brightness float64 // sample multiplier, 1 = unchanged
	Saturation float64 // HSV saturation multiplier, 1 = unchanged
	Scale      float64 // output resize factor, 1 = unchanged

	// Per-channel offsets; nominally [-255, 255]
	Red   int
	Green int
	Blue  int

	Overlay     *pximage.Buffer   // optional image composited on top
	Opacity     float64           // overlay weight in [0, 1]
	OverlayMode pximage.BlendMode // how the overlay is combined
}

// DefaultParams returns identity parameters.
func DefaultParams() Params {
	return Params{
		Brightness: 1.0,
		Saturation: 1.0,
		Scale:      1.0,
		Opacity:    DefaultOpacity,
	}
}

// IsIdentity reports whether rendering with p is a plain copy.
func (p Params) IsIdentity() bool {
	return p.Brightness == 1 &&
		p.Saturation == 1 &&
		p.Scale == 1 &&
		p.Red == 0 && p.Green == 0 && p.Blue == 0 &&
		!p.hasOverlay()
}

func (p Params) hasOverlay() bool {
	return !p.Overlay.Empty() && p.Opacity > 0
}

// ValidateFactor checks a brightness or saturation factor.
func ValidateFactor(name string, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return fmt.Errorf("%s must be a finite value >= 0, got %v", name, f)
	}
	return nil
}

// ValidateScale checks a scale factor.
func ValidateScale(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return fmt.Errorf("scale must be a finite value > 0, got %v", f)
	}
	return nil
}

// ClampOpacity limits an overlay opacity to [0, 1]. NaN becomes 0.
func ClampOpacity(a float64) float64 {
	if math.IsNaN(a) || a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}
