package maskpaint

import (
	"errors"
	"fmt"
)

var (
	// ErrImageDimensions is returned when an image axis is outside
	// [1, MaxDimension].
	ErrImageDimensions = errors.New("maskpaint: image dimensions out of range")

	// ErrUnsupportedSource is returned for image sources that are neither
	// a path, a file:// or http(s):// URL, nor a data: URL.
	ErrUnsupportedSource = errors.New("maskpaint: unsupported image source")

	// ErrDecode is returned when image bytes cannot be decoded.
	ErrDecode = errors.New("maskpaint: cannot decode image")

	// ErrNotLoaded is returned by operations that need an image.
	ErrNotLoaded = errors.New("maskpaint: no image loaded")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("maskpaint: canvas closed")

	// ErrMaskSize is returned when an imported mask does not match the
	// image.
	ErrMaskSize = errors.New("maskpaint: mask size does not match image")

	// ErrInvalidStroke is returned for strokes without points or with a
	// non-positive brush size.
	ErrInvalidStroke = errors.New("maskpaint: invalid stroke")
)

// ImageError describes a failed image load or import. It is fatal to the
// call; retry with a different image.
type ImageError struct {
	// Op is the operation: "load", "decode" or "import".
	Op string

	// Source identifies the image, shortened for data: URLs.
	Source string

	Err error
}

func (e *ImageError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("maskpaint: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("maskpaint: %s %q: %v", e.Op, e.Source, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// maxSourceLen bounds how much of a source string is kept in errors.
const maxSourceLen = 64

func shortSource(src string) string {
	if len(src) <= maxSourceLen {
		return src
	}
	return src[:maxSourceLen] + "..."
}
