// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render coalesces redraw requests into one dispatch per frame.
//
// Producers call Schedule (or ScheduleRedraw / ScheduleFull) as often as
// they like; the Scheduler keeps at most one pending operation per
// (type, priority) pair and accumulates every dirty rectangle. Tick, called
// once per display refresh by the host or by Run, hands each registered
// handler a Frame carrying its merged dirty regions.
//
// # Dirty regions
//
// Rectangles within one pixel of each other are unioned. When a type
// accumulates more than MaxRegions disjoint regions, or any operation asks
// for the full surface, the frame escalates to a full redraw.
//
// # Ordering and failure isolation
//
// Types are dispatched in order of their highest pending priority, ties
// broken by which type was queued first. Every queued operation is
// delivered exactly once. A handler that returns an error or panics is
// logged and counted; the remaining handlers still run.
//
// Example:
//
//	s := render.NewScheduler(render.WithSurface(image.Rect(0, 0, w, h)))
//	s.Register(render.OpMask, func(f render.Frame) error {
//		for _, r := range f.Regions {
//			redrawMask(r)
//		}
//		return nil
//	})
//	s.ScheduleRedraw(render.OpMask, stampBounds)
//	s.Tick()
package render
