package palette

import (
	"fmt"
	"math"
	"slices"

	pximage "pixedit/internal/image"
	"pixedit/pkg/colorutil"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// maxSamples bounds the pixels fed to the pure Go methods.
const maxSamples = 12000

type weightedColor struct {
	col    Color
	weight float64
}

// extractKMeans runs Lloyd k-means from muesli/kmeans over a subsample.
func extractKMeans(buf *pximage.Buffer, n int) (Palette, error) {
	w, h := buf.Width, buf.Height
	step := 1
	if w*h > maxSamples {
		step = int(math.Sqrt(float64(w*h)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(w*h, maxSamples))
	for y := 0; y < h; y += step {
		for x := 0; x < w; x += step {
			off := (y*w + x) * pximage.Channels
			dataset = append(dataset, clusters.Coordinates{
				float64(buf.Pix[off+2]),
				float64(buf.Pix[off+1]),
				float64(buf.Pix[off+0]),
			})
		}
	}
	// Partition needs at least k observations.
	for i := 0; len(dataset) < n; i++ {
		dataset = append(dataset, dataset[i])
	}

	km, err := kmeans.NewWithOptions(0.01, nil)
	if err != nil {
		return nil, err
	}
	cc, err := km.Partition(dataset, n)
	if err != nil {
		return nil, fmt.Errorf("kmeans: %w", err)
	}

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		weighted = append(weighted, weightedColor{
			col: Color{
				R: colorutil.ClampFloat(c.Center[0]),
				G: colorutil.ClampFloat(c.Center[1]),
				B: colorutil.ClampFloat(c.Center[2]),
			},
			weight: float64(len(c.Observations)),
		})
	}
	return padToCount(weighted, n)
}

// extractDominant uses cenkalti/dominantcolor, which may find fewer than n
// distinct colors; the result is padded with the heaviest one.
func extractDominant(buf *pximage.Buffer, n int) (Palette, error) {
	found := dominantcolor.FindWeight(buf.ToImage(), n)

	weighted := make([]weightedColor, 0, len(found))
	for _, c := range found {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{col: fromColorful(col), weight: c.Weight})
	}
	if len(weighted) == 0 {
		// Fall back to the mean color.
		weighted = append(weighted, weightedColor{col: meanColor(buf), weight: 1})
	}
	return padToCount(weighted, n)
}

// padToCount orders colors by weight, heaviest first, and trims or pads the
// result to exactly n entries.
func padToCount(weighted []weightedColor, n int) (Palette, error) {
	if len(weighted) == 0 {
		return nil, fmt.Errorf("no colors found")
	}
	slices.SortStableFunc(weighted, func(a, b weightedColor) int {
		switch {
		case a.weight > b.weight:
			return -1
		case a.weight < b.weight:
			return 1
		}
		return 0
	})

	out := make(Palette, 0, n)
	for _, wc := range weighted {
		if len(out) == n {
			break
		}
		out = append(out, wc.col)
	}
	for len(out) < n {
		out = append(out, weighted[0].col)
	}
	return out, nil
}

func meanColor(buf *pximage.Buffer) Color {
	var sum [3]float64
	for i := 0; i < len(buf.Pix); i += pximage.Channels {
		sum[0] += float64(buf.Pix[i+0])
		sum[1] += float64(buf.Pix[i+1])
		sum[2] += float64(buf.Pix[i+2])
	}
	count := float64(buf.Width * buf.Height)
	return Color{
		B: colorutil.ClampFloat(sum[0] / count),
		G: colorutil.ClampFloat(sum[1] / count),
		R: colorutil.ClampFloat(sum[2] / count),
	}
}
