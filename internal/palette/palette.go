// Package palette extracts a small set of representative colors from a
// buffer by clustering its pixels.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strings"

	pximage "pixedit/internal/image"
	"pixedit/pkg/colorutil"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"
)

// Clustering parameters for the default method.
const (
	Attempts      = 3
	MaxIterations = 10
	Epsilon       = 1.0
)

var (
	// ErrInvalidImage is returned for empty or non 3-channel buffers.
	ErrInvalidImage = errors.New("invalid image for palette extraction")
	// ErrInvalidCount is returned when fewer than one color is requested.
	ErrInvalidCount = errors.New("color count must be at least 1")
)

// Method selects the clustering algorithm.
type Method int

const (
	// KMeansPP runs OpenCV k-means with k-means++ seeding, keeping the
	// most compact of several attempts.
	KMeansPP Method = iota
	// KMeans runs a pure Go Lloyd k-means with random seeding.
	KMeans
	// Dominant uses dominant-color detection over a downsampled image.
	Dominant
)

func (m Method) String() string {
	switch m {
	case KMeansPP:
		return "kmeans++"
	case KMeans:
		return "kmeans"
	case Dominant:
		return "dominant"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod looks up a method by name.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "kmeans++", "kmeanspp":
		return KMeansPP, nil
	case "kmeans":
		return KMeans, nil
	case "dominant", "dominantcolor":
		return Dominant, nil
	}
	return 0, fmt.Errorf("unknown palette method %q", name)
}

// Color is a palette entry.
type Color struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}.RGBA()
}

// Colorful converts c to a go-colorful color.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return c.Colorful().Hex()
}

func (c Color) String() string {
	return c.Hex()
}

// Palette is an ordered set of colors. Order carries no meaning unless the
// palette has been sorted.
type Palette []Color

// Hex returns the palette as hex strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.Hex()
	}
	return out
}

// Extract returns exactly n representative colors of buf using KMeansPP.
func Extract(buf *pximage.Buffer, n int) (Palette, error) {
	return ExtractWith(buf, n, KMeansPP)
}

// ExtractWith returns exactly n representative colors of buf using method.
// buf is read, never modified.
func ExtractWith(buf *pximage.Buffer, n int, method Method) (Palette, error) {
	if buf.Empty() || buf.Channels() != pximage.Channels || !buf.Valid() {
		return nil, ErrInvalidImage
	}
	if n < 1 {
		return nil, ErrInvalidCount
	}

	switch method {
	case KMeansPP:
		return extractKMeansPP(buf, n)
	case KMeans:
		return extractKMeans(buf, n)
	case Dominant:
		return extractDominant(buf, n)
	default:
		return nil, fmt.Errorf("unknown palette method %s", method)
	}
}

// extractKMeansPP clusters every pixel as a 3-D point with OpenCV.
func extractKMeansPP(buf *pximage.Buffer, n int) (Palette, error) {
	numPixels := buf.Width * buf.Height

	// OpenCV requires at least k samples; repeat pixels for tiny images.
	rows := max(numPixels, n)
	samples := gocv.NewMatWithSize(rows, 3, gocv.MatTypeCV32F)
	defer samples.Close()
	for i := 0; i < rows; i++ {
		off := (i % numPixels) * pximage.Channels
		samples.SetFloatAt(i, 0, float32(buf.Pix[off+0]))
		samples.SetFloatAt(i, 1, float32(buf.Pix[off+1]))
		samples.SetFloatAt(i, 2, float32(buf.Pix[off+2]))
	}

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, MaxIterations, Epsilon)
	gocv.KMeans(samples, n, &labels, criteria, Attempts, gocv.KMeansPPCenters, &centers)

	if centers.Rows() != n || centers.Cols() != 3 {
		return nil, fmt.Errorf("kmeans returned %dx%d centers, want %dx3", centers.Rows(), centers.Cols(), n)
	}

	out := make(Palette, n)
	for i := 0; i < n; i++ {
		out[i] = Color{
			B: colorutil.ClampFloat(float64(centers.GetFloatAt(i, 0))),
			G: colorutil.ClampFloat(float64(centers.GetFloatAt(i, 1))),
			R: colorutil.ClampFloat(float64(centers.GetFloatAt(i, 2))),
		}
	}
	return out, nil
}

// SortByBrightness orders colors from darkest to brightest by relative
// luminance in linear RGB.
func SortByBrightness(p Palette) {
	slices.SortStableFunc(p, func(a, b Color) int {
		ya, yb := luminance(a), luminance(b)
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return 0
	})
}

func luminance(c Color) float64 {
	r, g, b := c.Colorful().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// fromColorful converts a go-colorful color back to 8-bit samples.
func fromColorful(c colorful.Color) Color {
	c = c.Clamped()
	return Color{
		R: colorutil.ClampFloat(c.R * 255),
		G: colorutil.ClampFloat(c.G * 255),
		B: colorutil.ClampFloat(c.B * 255),
	}
}
