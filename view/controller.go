// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package view

import (
	"math"
	"slices"
)

// Modifier is a bit set of keyboard modifiers held during an event.
type Modifier uint8

// ModNone as a requirement means the wheel always zooms.
const ModNone Modifier = 0

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModMeta
)

// GestureState is the state of the gesture state machine.
type GestureState uint8

const (
	// Idle means no navigation gesture is in progress.
	Idle GestureState = iota

	// Gesturing means pointers or the wheel are driving the view.
	Gesturing
)

func (s GestureState) String() string {
	if s == Gesturing {
		return "gesturing"
	}
	return "idle"
}

// Config configures a Controller.
type Config struct {
	// MinZoom and MaxZoom bound ViewTransform.Scale.
	MinZoom, MaxZoom float64

	// Padding is how far, in view pixels, the image may be panned past the
	// point where its edge meets the view edge.
	Padding float64

	// FitPadding is the margin kept around the image by the contain fit.
	FitPadding float64

	// WheelModifier is the modifier required for wheel zoom.
	WheelModifier Modifier

	// WheelZoomFactor is the zoom multiplier per wheel notch.
	WheelZoomFactor float64

	// ZoomStep is the multiplier used by ZoomIn and ZoomOut.
	ZoomStep float64
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		MinZoom:         0.25,
		MaxZoom:         16,
		Padding:         100,
		WheelModifier:   ModNone,
		WheelZoomFactor: 1.1,
		ZoomStep:        1.25,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.MinZoom <= 0 {
		c.MinZoom = d.MinZoom
	}
	if c.MaxZoom < c.MinZoom {
		c.MaxZoom = max(d.MaxZoom, c.MinZoom)
	}
	if c.Padding < 0 {
		c.Padding = 0
	}
	if c.FitPadding < 0 {
		c.FitPadding = 0
	}
	if c.WheelZoomFactor <= 1 {
		c.WheelZoomFactor = d.WheelZoomFactor
	}
	if c.ZoomStep <= 1 {
		c.ZoomStep = d.ZoomStep
	}
	return c
}

type pointerPos struct {
	x, y float64
}

// Controller is the zoom/pan gesture state machine. Pointer positions are
// view-relative. A Controller is not safe for concurrent use.
type Controller struct {
	cfg Config

	imgW, imgH   int
	viewW, viewH float64
	vt           ViewTransform

	state    GestureState
	pointers map[int]pointerPos
	panMode  bool

	// Reference values from the previous pointer event.
	prevDist     float64
	prevCentroid pointerPos

	onStart  func()
	onEnd    func(ViewTransform)
	onChange func(ViewTransform)
}

// NewController returns an idle controller.
func NewController(cfg Config) *Controller {
	return &Controller{
		cfg:      cfg.normalized(),
		vt:       NewViewTransform(1),
		pointers: make(map[int]pointerPos),
	}
}

// Config returns the controller configuration.
func (c *Controller) Config() Config { return c.cfg }

// SetGeometry records the image and view sizes, recomputes the base scale
// and re-clamps the translation.
func (c *Controller) SetGeometry(imgW, imgH int, viewW, viewH float64) {
	c.imgW, c.imgH = imgW, imgH
	c.viewW, c.viewH = viewW, viewH
	c.vt = c.vt.WithBaseScale(ContainScale(imgW, imgH, viewW, viewH, c.cfg.FitPadding))
	c.clamp()
	c.changed()
}

// ViewTransform returns the current view transform.
func (c *Controller) ViewTransform() ViewTransform { return c.vt }

// Transform returns the coordinate mapping for the current state.
func (c *Controller) Transform() Transform {
	return Transform{
		ImageWidth:  c.imgW,
		ImageHeight: c.imgH,
		ViewWidth:   c.viewW,
		ViewHeight:  c.viewH,
		View:        c.vt,
	}
}

// State returns the gesture state.
func (c *Controller) State() GestureState { return c.state }

// Gesturing reports whether a navigation gesture is in progress. While it
// is, pointer input must not paint.
func (c *Controller) Gesturing() bool { return c.state == Gesturing }

// OnTransformStart registers the callback fired on Idle → Gesturing.
func (c *Controller) OnTransformStart(fn func()) { c.onStart = fn }

// OnTransformEnd registers the callback fired on Gesturing → Idle.
func (c *Controller) OnTransformEnd(fn func(ViewTransform)) { c.onEnd = fn }

// OnChange registers the callback fired after every transform mutation.
func (c *Controller) OnChange(fn func(ViewTransform)) { c.onChange = fn }

// SetPanMode makes a single pointer pan the view (space-drag or middle
// button in hosts that support it).
func (c *Controller) SetPanMode(on bool) {
	c.panMode = on
	if on && len(c.pointers) == 1 {
		c.begin()
		c.resetReference()
	}
}

// ActivePointers returns the number of pointers currently down.
func (c *Controller) ActivePointers() int { return len(c.pointers) }

// PointerDown registers a pointer. A second pointer, or any pointer in pan
// mode, starts a gesture. It reports whether the controller took over the
// input.
func (c *Controller) PointerDown(id int, x, y float64) bool {
	c.pointers[id] = pointerPos{x, y}
	if len(c.pointers) >= 2 || c.panMode {
		c.begin()
	}
	c.resetReference()
	return c.state == Gesturing
}

// PointerMove updates a pointer. During a gesture two pointers pinch or
// pan and a single pointer pans. It reports whether the move was consumed.
func (c *Controller) PointerMove(id int, x, y float64) bool {
	if _, ok := c.pointers[id]; !ok {
		return false
	}
	c.pointers[id] = pointerPos{x, y}
	if c.state != Gesturing {
		return false
	}

	if len(c.pointers) >= 2 {
		a, b := c.firstTwo()
		dist := math.Hypot(b.x-a.x, b.y-a.y)
		centroid := pointerPos{(a.x + b.x) / 2, (a.y + b.y) / 2}
		dx := centroid.x - c.prevCentroid.x
		dy := centroid.y - c.prevCentroid.y

		if c.prevDist > 0 && math.Abs(dist-c.prevDist) > math.Hypot(dx, dy) {
			c.zoomAt(centroid.x, centroid.y, c.vt.Scale*dist/c.prevDist)
		} else {
			c.pan(dx, dy)
		}
		c.prevDist = dist
		c.prevCentroid = centroid
		return true
	}

	p := c.pointers[id]
	c.pan(p.x-c.prevCentroid.x, p.y-c.prevCentroid.y)
	c.prevCentroid = p
	return true
}

// PointerUp removes a pointer. Lifting the last pointer ends the gesture.
func (c *Controller) PointerUp(id int) {
	if _, ok := c.pointers[id]; !ok {
		return
	}
	delete(c.pointers, id)
	if len(c.pointers) == 0 {
		c.end()
		return
	}
	c.resetReference()
}

// PointerCancel is PointerUp for pointers whose input was interrupted.
func (c *Controller) PointerCancel(id int) { c.PointerUp(id) }

// Wheel zooms toward (x, y). deltaY < 0 zooms in. The wheel is ignored
// unless the configured modifier is held. It reports whether the event was
// consumed.
func (c *Controller) Wheel(x, y, deltaY float64, mods Modifier) bool {
	if c.cfg.WheelModifier != ModNone && mods&c.cfg.WheelModifier == 0 {
		return false
	}
	if deltaY == 0 || math.IsNaN(deltaY) {
		return false
	}
	factor := c.cfg.WheelZoomFactor
	if deltaY > 0 {
		factor = 1 / factor
	}

	c.begin()
	c.zoomAt(x, y, c.vt.Scale*factor)
	if len(c.pointers) == 0 {
		c.end()
	}
	return true
}

// ZoomAt sets the zoom to scale, keeping the view point (x, y) fixed.
func (c *Controller) ZoomAt(x, y, scale float64) { c.zoomAt(x, y, scale) }

// ZoomIn zooms one step about the view centre.
func (c *Controller) ZoomIn() { c.zoomAt(c.viewW/2, c.viewH/2, c.vt.Scale*c.cfg.ZoomStep) }

// ZoomOut zooms out one step about the view centre.
func (c *Controller) ZoomOut() { c.zoomAt(c.viewW/2, c.viewH/2, c.vt.Scale/c.cfg.ZoomStep) }

// SetScale sets the zoom about the view centre.
func (c *Controller) SetScale(scale float64) { c.zoomAt(c.viewW/2, c.viewH/2, scale) }

// Pan shifts the view by (dx, dy) view pixels.
func (c *Controller) Pan(dx, dy float64) { c.pan(dx, dy) }

// SetTransform replaces zoom and translation, keeping the base scale.
func (c *Controller) SetTransform(v ViewTransform) {
	base := c.vt.BaseScale()
	c.vt = v.WithBaseScale(base)
	c.vt.Scale = c.clampScale(v.Scale)
	c.clamp()
	c.changed()
}

// Fit recomputes the contain fit for the current geometry and resets zoom
// and translation to it.
func (c *Controller) Fit() {
	c.vt = c.vt.WithBaseScale(ContainScale(c.imgW, c.imgH, c.viewW, c.viewH, c.cfg.FitPadding))
	c.Reset()
}

// Reset returns to the centred contain fit.
func (c *Controller) Reset() {
	c.vt = NewViewTransform(c.vt.BaseScale())
	c.clamp()
	c.changed()
}

func (c *Controller) begin() {
	if c.state == Gesturing {
		return
	}
	c.state = Gesturing
	if c.onStart != nil {
		c.onStart()
	}
}

func (c *Controller) end() {
	if c.state != Gesturing {
		return
	}
	c.state = Idle
	c.prevDist = 0
	if c.onEnd != nil {
		c.onEnd(c.vt)
	}
}

// firstTwo returns the two lowest-id pointers so the pair is stable while
// more fingers come and go.
func (c *Controller) firstTwo() (pointerPos, pointerPos) {
	ids := make([]int, 0, len(c.pointers))
	for id := range c.pointers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return c.pointers[ids[0]], c.pointers[ids[1]]
}

func (c *Controller) resetReference() {
	switch len(c.pointers) {
	case 0:
		c.prevDist = 0
	case 1:
		for _, p := range c.pointers {
			c.prevCentroid = p
		}
		c.prevDist = 0
	default:
		a, b := c.firstTwo()
		c.prevDist = math.Hypot(b.x-a.x, b.y-a.y)
		c.prevCentroid = pointerPos{(a.x + b.x) / 2, (a.y + b.y) / 2}
	}
}

func (c *Controller) clampScale(s float64) float64 {
	if math.IsNaN(s) || s <= 0 {
		return c.vt.Scale
	}
	return math.Min(math.Max(s, c.cfg.MinZoom), c.cfg.MaxZoom)
}

// zoomAt converts the view point to image space, rescales, and re-derives
// the translation so the same image point lands back on (x, y).
func (c *Controller) zoomAt(x, y, scale float64) {
	scale = c.clampScale(scale)
	oldS := c.vt.EffectiveScale()
	px := x - c.viewW/2
	py := y - c.viewH/2
	wx := (px - c.vt.TranslateX) / oldS
	wy := (py - c.vt.TranslateY) / oldS

	c.vt.Scale = scale
	newS := c.vt.EffectiveScale()
	c.vt.TranslateX = px - wx*newS
	c.vt.TranslateY = py - wy*newS
	c.clamp()
	c.changed()
}

func (c *Controller) pan(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	c.vt.TranslateX += dx
	c.vt.TranslateY += dy
	c.clamp()
	c.changed()
}

// clamp bounds the translation on each axis to
// max((scaled-view)/2, 0) + Padding.
func (c *Controller) clamp() {
	s := c.vt.EffectiveScale()
	limit := func(imgSize int, viewSize float64) float64 {
		scaled := float64(imgSize) * s
		return math.Max((scaled-viewSize)/2, 0) + c.cfg.Padding
	}
	lx := limit(c.imgW, c.viewW)
	ly := limit(c.imgH, c.viewH)
	c.vt.TranslateX = math.Min(math.Max(c.vt.TranslateX, -lx), lx)
	c.vt.TranslateY = math.Min(math.Max(c.vt.TranslateY, -ly), ly)
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange(c.vt)
	}
}
