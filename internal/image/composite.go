package image

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// BlendMode specifies how an overlay is combined with the base image.
type BlendMode int

const (
	// BlendAdd computes base + overlay*opacity, saturating at 255.
	BlendAdd BlendMode = iota
	// BlendNormal computes base*(1-opacity) + overlay*opacity.
	BlendNormal
)

func (m BlendMode) String() string {
	switch m {
	case BlendAdd:
		return "Add"
	case BlendNormal:
		return "Normal"
	default:
		return "Unknown"
	}
}

// Composite blends overlay onto base and returns a new buffer the size of
// base. The overlay is resampled bilinearly to base's dimensions first.
// Opacity is clamped to [0, 1].
func Composite(base, overlay *Buffer, opacity float64, mode BlendMode) (*Buffer, error) {
	if base.Empty() {
		return nil, fmt.Errorf("composite: empty base")
	}
	if overlay.Empty() {
		return base.Clone(), nil
	}
	opacity = clamp(opacity, 0, 1)

	baseMat, err := base.ToMat()
	if err != nil {
		return nil, err
	}
	defer baseMat.Close()

	overMat, err := overlay.ToMat()
	if err != nil {
		return nil, err
	}
	defer overMat.Close()

	src := overMat
	if overlay.Width != base.Width || overlay.Height != base.Height {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(overMat, &resized, image.Pt(base.Width, base.Height), 0, 0, gocv.InterpolationLinear)
		src = resized
	}

	baseWeight := 1.0
	if mode == BlendNormal {
		baseWeight = 1 - opacity
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.AddWeighted(baseMat, baseWeight, src, opacity, 0, &dst)

	return FromMat(dst)
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
