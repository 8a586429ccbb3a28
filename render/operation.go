// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"time"
)

// OpType names a class of redraw work. Each type has at most one handler.
type OpType string

// Operation types used by the mask editor.
const (
	OpImage   OpType = "image"
	OpMask    OpType = "mask"
	OpCursor  OpType = "cursor"
	OpOverlay OpType = "overlay"
)

// Priority orders dispatch within a frame. Higher runs first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

// Operation is one unit of scheduled redraw work.
type Operation struct {
	Type     OpType
	Priority Priority

	// Rect is the dirty region in surface pixels. An empty Rect marks no
	// region unless Full is set.
	Rect image.Rectangle

	// Full requests a redraw of the whole surface.
	Full bool

	// Data is an opaque payload passed through to the handler.
	Data any

	// Timestamp is when the operation was scheduled. Schedule fills it
	// when zero.
	Timestamp time.Time
}

// Frame is what a handler receives for one type on one tick.
type Frame struct {
	Type OpType

	// Regions are the merged dirty rectangles. When Full is set it holds
	// the surface bounds, or is empty if no surface was configured.
	Regions []image.Rectangle
	Full    bool

	// Ops are the collapsed operations of this type, highest priority
	// first.
	Ops []Operation
}

// Handler processes one frame's worth of work for a type.
type Handler func(Frame) error
