// Package colorutil provides shared color utilities for the image editor.
package colorutil

import (
	"image/color"
	"math"
)

// Common colors.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Blue  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
)

// ClampInt clamps v to [0, 255] and returns it as a sample value.
func ClampInt(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ClampFloat rounds v to the nearest integer and clamps it to [0, 255].
func ClampFloat(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// Luma returns the BT.601 luma of an RGB triple (0.299 R + 0.587 G + 0.114 B),
// using OpenCV's 14-bit fixed point weights so results match BGR2GRAY.
func Luma(r, g, b uint8) uint8 {
	const (
		shift = 14
		rw    = 4899
		gw    = 9617
		bw    = 1868
	)
	v := (int(r)*rw + int(g)*gw + int(b)*bw + (1 << (shift - 1))) >> shift
	return ClampInt(v)
}

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC * 255.0 // V in 0-255

	if maxC == 0 {
		s = 0
	} else {
		s = (diff / maxC) * 255.0 // S in 0-255
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	h = h / 2 // Convert to OpenCV's 0-180 range

	return h, s, v
}
