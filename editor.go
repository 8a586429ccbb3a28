// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package maskpaint

import (
	"context"
	"image"

	"github.com/gogpu/maskpaint/input"
	"github.com/gogpu/maskpaint/render"
	"github.com/gogpu/maskpaint/view"
)

// HoverInfo describes the brush cursor position.
type HoverInfo struct {
	// X and Y are view coordinates.
	X, Y float64

	// Pixel is the image pixel under the cursor; OverImage reports whether
	// there is one.
	Pixel     image.Point
	OverImage bool

	// Inside reports whether the cursor is within the view.
	Inside bool

	// Radius is the brush radius in view pixels.
	Radius float64
}

// Editor routes raw pointer and wheel events to a canvas. Pointer events
// go to the view controller first; while it is gesturing, drawing is
// cancelled and drawing events are ignored. Drawing events are mapped to
// image coordinates and drive the canvas brush stroke.
//
// An Editor is not safe for concurrent use.
type Editor struct {
	canvas *Canvas
	ctrl   *view.Controller
	input  *input.Engine
	hover  func(HoverInfo)

	// ctx and err carry the HandlePointer call through the input callbacks.
	ctx context.Context
	err error
}

// NewEditor creates an editor for c. A nil session gets a fresh one; pass
// a session only if nothing else tracks pointers on it.
func NewEditor(c *Canvas, s *input.Session) *Editor {
	e := &Editor{
		canvas: c,
		ctrl:   c.View(),
		input:  input.NewEngine(s),
	}
	e.input.SetHandler(e.onDraw)
	e.input.OnHover(e.onHover)
	e.ctrl.OnTransformStart(func() { e.input.Cancel(input.ReasonGesture) })
	if c.viewW > 0 && c.viewH > 0 {
		e.input.SetBounds(c.viewW, c.viewH)
	}
	return e
}

// Input returns the drawing input engine.
func (e *Editor) Input() *input.Engine { return e.input }

// Canvas returns the edited canvas.
func (e *Editor) Canvas() *Canvas { return e.canvas }

// OnHover registers the brush cursor callback.
func (e *Editor) OnHover(fn func(HoverInfo)) { e.hover = fn }

// SetPanMode makes a single pointer pan instead of paint.
func (e *Editor) SetPanMode(on bool) { e.ctrl.SetPanMode(on) }

// HandleResize resizes the view.
func (e *Editor) HandleResize(width, height float64) {
	e.canvas.HandleResize(width, height)
	e.input.SetBounds(width, height)
}

// HandleWheel zooms toward (x, y). It reports whether the event was
// consumed.
func (e *Editor) HandleWheel(x, y, deltaY float64, mods view.Modifier) bool {
	return e.ctrl.Wheel(x, y, deltaY, mods)
}

// HandlePointer processes one raw pointer event. The error is from
// recording a finished stroke.
func (e *Editor) HandlePointer(ctx context.Context, ev input.RawEvent) error {
	e.ctx, e.err = ctx, nil
	defer func() { e.ctx = nil }()

	id := int(ev.PointerID)
	switch ev.Kind {
	case input.RawDown:
		if !e.ctrl.PointerDown(id, ev.X, ev.Y) {
			e.input.Handle(ev)
		}
	case input.RawMove:
		if !e.ctrl.PointerMove(id, ev.X, ev.Y) {
			e.input.Handle(ev)
		}
	case input.RawUp:
		e.ctrl.PointerUp(id)
		e.input.Handle(ev)
	case input.RawCancel, input.RawCaptureLost:
		e.ctrl.PointerCancel(id)
		e.input.Handle(ev)
	default:
		e.input.Handle(ev)
	}
	return e.err
}

func (e *Editor) onDraw(ev input.Event) {
	x, y := e.canvas.Transform().ScreenToImageF(ev.X, ev.Y)
	switch ev.Type {
	case input.Start:
		e.canvas.StartBrushStroke(x, y)
	case input.Move:
		e.canvas.ContinueBrushStroke(x, y)
	case input.End:
		e.canvas.ContinueBrushStroke(x, y)
		ctx := e.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		if _, err := e.canvas.EndBrushStroke(ctx); err != nil {
			e.err = err
		}
	case input.Cancel:
		e.canvas.CancelBrushStroke()
	}
}

func (e *Editor) onHover(x, y float64, inside bool) {
	t := e.canvas.Transform()
	px, over := e.canvas.ScreenToImage(x, y)
	info := HoverInfo{
		X:         x,
		Y:         y,
		Pixel:     px,
		OverImage: over,
		Inside:    inside,
		Radius:    t.BrushRadiusOnScreen(e.canvas.BrushSize()),
	}
	e.canvas.Scheduler().Schedule(render.Operation{
		Type:     render.OpCursor,
		Priority: render.PriorityHigh,
		Data:     info,
	})
	if e.hover != nil {
		e.hover(info)
	}
}
