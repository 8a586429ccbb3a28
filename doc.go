// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package maskpaint is an engine for painting binary inclusion masks over
// an image, for use as the mask input of an inpainting step.
//
// A Canvas owns the loaded image, a byte mask of the same size where every
// byte is 0 (excluded) or 255 (included), the undo history and the view
// transform. Brush strokes stamp discs into the mask; bulk edits (clear,
// fill, invert, import) operate on the whole mask. Every pixel change
// marks the canvas dirty and schedules a redraw of the affected region on
// the canvas's render.Scheduler.
//
// # Quick start
//
//	c := maskpaint.NewCanvas(ctx, maskpaint.WithBrushSize(24))
//	defer c.Close()
//
//	if err := c.LoadImage(ctx, "photo.png"); err != nil {
//		var ie *maskpaint.ImageError
//		if errors.As(err, &ie) { ... }
//	}
//	c.StartBrushStroke(10, 10)
//	c.ContinueBrushStroke(200, 120)
//	c.EndBrushStroke(ctx)
//
//	overlay, _ := c.ExportMaskImageData(ctx) // alpha channel == mask
//
// # Interactive use
//
// Editor routes raw pointer and wheel events to the drawing input engine
// and the zoom/pan controller, cancelling any stroke in progress when a
// navigation gesture begins.
//
// # Concurrency
//
// Canvas and Editor are single-writer: call them from one goroutine. Pixel
// work handed to the worker package runs on copies, so the live mask is
// never shared.
//
// # Logging
//
// maskpaint is silent by default. Call SetLogger to receive diagnostics
// from the canvas and every sub-package.
package maskpaint
