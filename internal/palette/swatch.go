package palette

import (
	"image"
	"image/color"
	"image/draw"
)

// DefaultTileSize is the swatch edge length used when none is given.
const DefaultTileSize = 64

// Swatch renders the palette as a horizontal strip of square tiles.
// An empty palette yields an empty image.
func Swatch(p Palette, tileSize int) *image.RGBA {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	if len(p) == 0 {
		return image.NewRGBA(image.Rectangle{})
	}

	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(p), tileSize))
	for i, c := range p {
		tile := image.Rect(i*tileSize, 0, (i+1)*tileSize, tileSize)
		fill := color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
		draw.Draw(img, tile, &image.Uniform{C: fill}, image.Point{}, draw.Src)
	}
	return img
}
