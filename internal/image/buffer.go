// Package image provides the editor's pixel buffer, image loading and saving,
// and overlay compositing.
package image

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

// Channels is the number of samples per pixel. Buffers are always 3-channel
// B,G,R, matching OpenCV's default layout.
const Channels = 3

// Buffer is an owned, contiguous 8-bit BGR pixel grid.
// A buffer with zero width or height is the "no image loaded" state.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8 // B,G,R interleaved, len = Width*Height*Channels
}

// New creates a zeroed (black) buffer of the given size.
func New(width, height int) *Buffer {
	if width <= 0 || height <= 0 {
		return &Buffer{}
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}
}

// NewSolid creates a buffer filled with a single color.
func NewSolid(width, height int, c color.Color) *Buffer {
	b := New(width, height)
	r, g, bl, _ := c.RGBA()
	for i := 0; i < len(b.Pix); i += Channels {
		b.Pix[i+0] = uint8(bl >> 8)
		b.Pix[i+1] = uint8(g >> 8)
		b.Pix[i+2] = uint8(r >> 8)
	}
	return b
}

// Empty reports whether the buffer holds no image.
func (b *Buffer) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0
}

// Channels returns the number of samples per pixel, or 0 for an empty buffer.
func (b *Buffer) Channels() int {
	if b.Empty() {
		return 0
	}
	if len(b.Pix) != b.Width*b.Height*Channels {
		return len(b.Pix) / (b.Width * b.Height)
	}
	return Channels
}

// Valid reports whether the sample array length matches the dimensions.
func (b *Buffer) Valid() bool {
	if b.Empty() {
		return true
	}
	return len(b.Pix) == b.Width*b.Height*Channels
}

// Clone returns a deep copy of the buffer. Cloning nil yields an empty buffer.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return &Buffer{}
	}
	c := &Buffer{Width: b.Width, Height: b.Height}
	if b.Pix != nil {
		c.Pix = make([]uint8, len(b.Pix))
		copy(c.Pix, b.Pix)
	}
	return c
}

// Equal reports whether two buffers have the same size and samples.
func (b *Buffer) Equal(o *Buffer) bool {
	if b.Empty() || o.Empty() {
		return b.Empty() && o.Empty()
	}
	return b.Width == o.Width && b.Height == o.Height && bytes.Equal(b.Pix, o.Pix)
}

// Bounds returns the buffer rectangle anchored at the origin.
func (b *Buffer) Bounds() image.Rectangle {
	if b.Empty() {
		return image.Rectangle{}
	}
	return image.Rect(0, 0, b.Width, b.Height)
}

func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * Channels
}

// At returns the color at (x, y). Out of range coordinates return black.
func (b *Buffer) At(x, y int) color.RGBA {
	if b.Empty() || x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return color.RGBA{A: 255}
	}
	off := b.offset(x, y)
	return color.RGBA{R: b.Pix[off+2], G: b.Pix[off+1], B: b.Pix[off], A: 255}
}

// Set stores c at (x, y). Out of range coordinates are ignored.
func (b *Buffer) Set(x, y int, c color.RGBA) {
	if b.Empty() || x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	off := b.offset(x, y)
	b.Pix[off+0] = c.B
	b.Pix[off+1] = c.G
	b.Pix[off+2] = c.R
}

// FromImage converts any image.Image into a BGR buffer. Alpha is discarded.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	b := New(w, h)
	if b.Empty() {
		return b
	}

	// Fast paths for the decoders' common output types
	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < w; x++ {
				off := b.offset(x, y)
				b.Pix[off+0] = row[x*4+2]
				b.Pix[off+1] = row[x*4+1]
				b.Pix[off+2] = row[x*4+0]
			}
		}
		return b
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < w; x++ {
				off := b.offset(x, y)
				b.Pix[off+0] = row[x*4+2]
				b.Pix[off+1] = row[x*4+1]
				b.Pix[off+2] = row[x*4+0]
			}
		}
		return b
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := b.offset(x, y)
			b.Pix[off+0] = uint8(bl >> 8)
			b.Pix[off+1] = uint8(g >> 8)
			b.Pix[off+2] = uint8(r >> 8)
		}
	}
	return b
}

// ToImage converts the buffer to an opaque RGBA image for display or encoding.
func (b *Buffer) ToImage() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	if b.Empty() {
		return img
	}
	for y := 0; y < b.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Width; x++ {
			off := b.offset(x, y)
			row[x*4+0] = b.Pix[off+2] // R
			row[x*4+1] = b.Pix[off+1] // G
			row[x*4+2] = b.Pix[off+0] // B
			row[x*4+3] = 255          // A
		}
	}
	return img
}

// String describes the buffer dimensions.
func (b *Buffer) String() string {
	if b.Empty() {
		return "empty"
	}
	return fmt.Sprintf("%dx%d", b.Width, b.Height)
}
