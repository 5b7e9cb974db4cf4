// Package filter provides the destructive one-shot filters applied to the
// editor's stored buffer.
package filter

import (
	"fmt"
	"image"
	"strings"

	pximage "pixedit/internal/image"

	"gocv.io/x/gocv"
)

// Kind identifies a filter.
type Kind int

const (
	Grayscale Kind = iota
	Blur
	Sharpen
	Invert
	Mirror
)

// BlurKernelSize is the Gaussian kernel extent used by Blur.
const BlurKernelSize = 15

func (k Kind) String() string {
	switch k {
	case Grayscale:
		return "grayscale"
	case Blur:
		return "blur"
	case Sharpen:
		return "sharpen"
	case Invert:
		return "invert"
	case Mirror:
		return "mirror"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Kinds returns every filter in menu order.
func Kinds() []Kind {
	return []Kind{Grayscale, Blur, Sharpen, Invert, Mirror}
}

// ParseKind looks up a filter by name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q", name)
}

// Apply runs the filter over buf and returns the result as a new buffer.
// buf is not modified. Callers must not pass an empty buffer.
func Apply(kind Kind, buf *pximage.Buffer) (*pximage.Buffer, error) {
	if buf.Empty() {
		return nil, fmt.Errorf("%s: empty buffer", kind)
	}

	src, err := buf.ToMat()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	switch kind {
	case Grayscale:
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
		gocv.CvtColor(gray, &dst, gocv.ColorGrayToBGR)

	case Blur:
		sigma := AutoSigma(BlurKernelSize)
		gocv.GaussianBlur(src, &dst, image.Pt(BlurKernelSize, BlurKernelSize), sigma, sigma, gocv.BorderDefault)

	case Sharpen:
		kernel, err := kernelMat(SharpenKernel())
		if err != nil {
			return nil, err
		}
		defer kernel.Close()
		gocv.Filter2D(src, &dst, -1, kernel, image.Pt(-1, -1), 0, gocv.BorderReplicate)

	case Invert:
		gocv.BitwiseNot(src, &dst)

	case Mirror:
		gocv.Flip(src, &dst, 1)

	default:
		return nil, fmt.Errorf("unknown filter %s", kind)
	}

	return pximage.FromMat(dst)
}
