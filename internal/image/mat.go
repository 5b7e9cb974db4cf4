package image

import (
	"fmt"

	"gocv.io/x/gocv"
)

// ToMat copies the buffer into a new 8UC3 BGR Mat. The caller owns the Mat
// and must Close it.
func (b *Buffer) ToMat() (gocv.Mat, error) {
	if b.Empty() {
		return gocv.NewMat(), fmt.Errorf("cannot convert empty buffer to Mat")
	}
	if !b.Valid() {
		return gocv.NewMat(), fmt.Errorf("buffer %s has %d samples, want %d",
			b, len(b.Pix), b.Width*b.Height*Channels)
	}

	// NewMatFromBytes wraps Go memory; clone so OpenCV owns its own copy.
	view, err := gocv.NewMatFromBytes(b.Height, b.Width, gocv.MatTypeCV8UC3, b.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap buffer: %w", err)
	}
	defer view.Close()

	return view.Clone(), nil
}

// FromMat copies an 8-bit Mat into a new buffer. Single-channel Mats are
// broadcast to three channels and 4-channel Mats drop alpha.
func FromMat(mat gocv.Mat) (*Buffer, error) {
	if mat.Empty() {
		return &Buffer{}, nil
	}

	src := mat
	switch mat.Channels() {
	case 3:
	case 1:
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(mat, &bgr, gocv.ColorGrayToBGR)
		src = bgr
	case 4:
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(mat, &bgr, gocv.ColorBGRAToBGR)
		src = bgr
	default:
		return nil, fmt.Errorf("unsupported channel count %d", mat.Channels())
	}
	if src.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("unsupported Mat type %v", src.Type())
	}

	data := src.ToBytes()
	w, h := src.Cols(), src.Rows()
	if len(data) != w*h*Channels {
		return nil, fmt.Errorf("Mat %dx%d returned %d bytes", w, h, len(data))
	}
	return &Buffer{Width: w, Height: h, Pix: data}, nil
}
