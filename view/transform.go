// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package view

import (
	"image"
	"math"
)

// ViewTransform is the zoom/pan state of the view.
type ViewTransform struct {
	// Scale is the user zoom, a multiplier on the base scale.
	Scale float64

	// TranslateX and TranslateY shift the image in view pixels.
	TranslateX float64
	TranslateY float64

	baseScale float64
}

// NewViewTransform returns an unzoomed, centred transform with the given
// contain-fit base scale.
func NewViewTransform(baseScale float64) ViewTransform {
	if baseScale <= 0 || math.IsNaN(baseScale) || math.IsInf(baseScale, 0) {
		baseScale = 1
	}
	return ViewTransform{Scale: 1, baseScale: baseScale}
}

// BaseScale returns the contain-fit scale computed for the current image
// and view sizes.
func (v ViewTransform) BaseScale() float64 {
	if v.baseScale <= 0 {
		return 1
	}
	return v.baseScale
}

// EffectiveScale returns view pixels per image pixel.
func (v ViewTransform) EffectiveScale() float64 {
	s := v.Scale
	if s <= 0 {
		s = 1
	}
	return v.BaseScale() * s
}

// WithBaseScale returns a copy of v with a new base scale.
func (v ViewTransform) WithBaseScale(base float64) ViewTransform {
	v.baseScale = NewViewTransform(base).baseScale
	return v
}

// ContainScale returns the largest scale at which an imgW×imgH image fits
// inside the view with padding on every side. Degenerate sizes yield 1.
func ContainScale(imgW, imgH int, viewW, viewH, padding float64) float64 {
	if imgW <= 0 || imgH <= 0 {
		return 1
	}
	availW := viewW - 2*padding
	availH := viewH - 2*padding
	if availW <= 0 || availH <= 0 {
		return 1
	}
	return math.Min(availW/float64(imgW), availH/float64(imgH))
}

// Transform composes image size, view geometry and the view transform into
// a bidirectional coordinate mapping.
type Transform struct {
	ImageWidth, ImageHeight int

	// ViewWidth and ViewHeight are the size of the drawing surface.
	ViewWidth, ViewHeight float64

	// OriginX and OriginY locate the surface's top-left corner in the
	// coordinate space of incoming events.
	OriginX, OriginY float64

	View ViewTransform
}

// ScreenToImageF maps an event position to fractional image coordinates
// without flooring or bounds checks. Strokes use it so that a gesture may
// start outside the image and enter it.
func (t Transform) ScreenToImageF(sx, sy float64) (x, y float64) {
	s := t.View.EffectiveScale()
	rx := sx - t.OriginX - t.ViewWidth/2
	ry := sy - t.OriginY - t.ViewHeight/2
	x = (rx-t.View.TranslateX)/s + float64(t.ImageWidth)/2
	y = (ry-t.View.TranslateY)/s + float64(t.ImageHeight)/2
	return x, y
}

// ScreenToImage maps an event position to the image pixel under it.
// It reports false when the position falls outside the image.
func (t Transform) ScreenToImage(sx, sy float64) (image.Point, bool) {
	fx, fy := t.ScreenToImageF(sx, sy)
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return image.Point{}, false
	}
	fx = math.Floor(fx)
	fy = math.Floor(fy)
	if fx < 0 || fy < 0 || fx >= float64(t.ImageWidth) || fy >= float64(t.ImageHeight) {
		return image.Point{}, false
	}
	return image.Pt(int(fx), int(fy)), true
}

// ImageToScreen maps image coordinates to an event position. It is the
// exact inverse of ScreenToImageF; pass x+0.5, y+0.5 for a pixel centre.
func (t Transform) ImageToScreen(x, y float64) (sx, sy float64) {
	s := t.View.EffectiveScale()
	sx = (x-float64(t.ImageWidth)/2)*s + t.View.TranslateX + t.ViewWidth/2 + t.OriginX
	sy = (y-float64(t.ImageHeight)/2)*s + t.View.TranslateY + t.ViewHeight/2 + t.OriginY
	return sx, sy
}

// ImageRect returns the view-space rectangle covered by the whole image,
// rounded outwards.
func (t Transform) ImageRect() image.Rectangle {
	x0, y0 := t.ImageToScreen(0, 0)
	x1, y1 := t.ImageToScreen(float64(t.ImageWidth), float64(t.ImageHeight))
	return image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
}

// BrushRadiusOnScreen returns the on-screen radius of a brush of the given
// size, used for the cursor preview.
func (t Transform) BrushRadiusOnScreen(size int) float64 {
	return float64(size) / 2 * t.View.EffectiveScale()
}
