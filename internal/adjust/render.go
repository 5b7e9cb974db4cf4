package adjust

import (
	"fmt"
	"image"
	"math"

	pximage "pixedit/internal/image"
	"pixedit/pkg/colorutil"

	"gocv.io/x/gocv"
)

// Render computes the display buffer for buf under p. buf is never modified.
// Steps run in a fixed order: brightness, saturation, channel offsets,
// overlay, scale. Steps at their identity value are skipped, so identity
// parameters return an exact copy.
func Render(buf *pximage.Buffer, p Params) (*pximage.Buffer, error) {
	if buf.Empty() {
		return &pximage.Buffer{}, nil
	}
	if err := ValidateFactor("brightness", p.Brightness); err != nil {
		return nil, err
	}
	if err := ValidateFactor("saturation", p.Saturation); err != nil {
		return nil, err
	}
	if err := ValidateScale(p.Scale); err != nil {
		return nil, err
	}

	out := buf.Clone()
	var err error

	if p.Brightness != 1 {
		if out, err = brightness(out, p.Brightness); err != nil {
			return nil, fmt.Errorf("brightness: %w", err)
		}
	}
	if p.Saturation != 1 {
		if out, err = saturation(out, p.Saturation); err != nil {
			return nil, fmt.Errorf("saturation: %w", err)
		}
	}
	if p.Red != 0 || p.Green != 0 || p.Blue != 0 {
		offsetChannels(out, p.Red, p.Green, p.Blue)
	}
	if p.hasOverlay() {
		if out, err = pximage.Composite(out, p.Overlay, ClampOpacity(p.Opacity), p.OverlayMode); err != nil {
			return nil, fmt.Errorf("overlay: %w", err)
		}
	}
	if p.Scale != 1 {
		if out, err = scale(out, p.Scale); err != nil {
			return nil, fmt.Errorf("scale: %w", err)
		}
	}
	return out, nil
}

// brightness multiplies every sample by factor, saturating to [0, 255].
func brightness(buf *pximage.Buffer, factor float64) (*pximage.Buffer, error) {
	src, err := buf.ToMat()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	src.ConvertToWithParams(&dst, gocv.MatTypeCV8UC3, float32(factor), 0)

	return pximage.FromMat(dst)
}

// saturation scales the S channel in HSV space. Hue and value are copied
// through untouched.
func saturation(buf *pximage.Buffer, factor float64) (*pximage.Buffer, error) {
	src, err := buf.ToMat()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	channels := gocv.Split(hsv)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()
	if len(channels) != 3 {
		return nil, fmt.Errorf("expected 3 HSV channels, got %d", len(channels))
	}

	sat := gocv.NewMat()
	defer sat.Close()
	channels[1].ConvertToWithParams(&sat, gocv.MatTypeCV8U, float32(factor), 0)

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge([]gocv.Mat{channels[0], sat, channels[2]}, &merged)

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.CvtColor(merged, &dst, gocv.ColorHSVToBGR)

	return pximage.FromMat(dst)
}

// offsetChannels adds signed per-channel offsets in place. Arithmetic is
// done in int so out-of-range offsets clamp instead of wrapping.
func offsetChannels(buf *pximage.Buffer, r, g, b int) {
	for i := 0; i < len(buf.Pix); i += pximage.Channels {
		buf.Pix[i+0] = colorutil.ClampInt(int(buf.Pix[i+0]) + b)
		buf.Pix[i+1] = colorutil.ClampInt(int(buf.Pix[i+1]) + g)
		buf.Pix[i+2] = colorutil.ClampInt(int(buf.Pix[i+2]) + r)
	}
}

// ScaledSize returns the output dimensions for a scale factor, never below 1x1.
func ScaledSize(width, height int, factor float64) (int, int) {
	w := int(math.Round(float64(width) * factor))
	h := int(math.Round(float64(height) * factor))
	return max(w, 1), max(h, 1)
}

// scale resizes buf by factor with bicubic interpolation.
func scale(buf *pximage.Buffer, factor float64) (*pximage.Buffer, error) {
	w, h := ScaledSize(buf.Width, buf.Height, factor)
	if w == buf.Width && h == buf.Height {
		return buf, nil
	}

	src, err := buf.ToMat()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationCubic)

	return pximage.FromMat(dst)
}
