package classifier

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
)

// DefaultMaxPixels caps decoded images at 40 megapixels.
const DefaultMaxPixels = 40_000_000

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrImageTooLarge     = errors.New("image dimensions too large")
)

// Decode reads a JPEG or PNG from r. The header is checked first so an image
// whose width×height exceeds maxPixels is rejected before any pixel buffer is
// allocated. maxPixels <= 0 means DefaultMaxPixels.
func Decode(r io.ReadSeeker, maxPixels int64) (image.Image, string, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if format != "jpeg" && format != "png" {
		return nil, format, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, format, fmt.Errorf("%w: empty image %dx%d", ErrUnsupportedFormat, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, format, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, format, err
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, format, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return img, format, nil
}
