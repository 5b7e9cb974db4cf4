package image

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// DefaultJPEGQuality is used when SaveOptions leaves the quality unset.
const DefaultJPEGQuality = 95

// ErrUnsupportedFormat is returned by Save for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrEmptyBuffer is returned by Save when there is nothing to encode.
var ErrEmptyBuffer = errors.New("empty buffer")

// SaveOptions controls encoding.
type SaveOptions struct {
	JPEGQuality int // 1-100, 0 = DefaultJPEGQuality
}

// Load decodes the image at path into a 3-channel buffer.
func Load(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	buf := FromImage(img)
	if buf.Empty() {
		return nil, fmt.Errorf("failed to decode image: %s has no pixels", filepath.Base(path))
	}
	return buf, nil
}

// Save encodes buf to path using the format implied by the extension.
func Save(buf *Buffer, path string, opts SaveOptions) error {
	if buf.Empty() {
		return ErrEmptyBuffer
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupportedFormat(path) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}

	img := buf.ToImage()
	switch ext {
	case ".png":
		err = png.Encode(file, img)
	case ".jpg", ".jpeg":
		quality := opts.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: quality})
	case ".bmp":
		err = bmp.Encode(file, img)
	case ".tif", ".tiff":
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
