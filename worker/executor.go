// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package worker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/history"
)

var (
	// ErrClosed is returned for calls made after, or in flight during,
	// Close.
	ErrClosed = errors.New("worker: executor closed")

	// ErrBackgroundFailure wraps any error or panic raised by the
	// background executor.
	ErrBackgroundFailure = errors.New("worker: background execution failed")

	// ErrBadRequest is returned when a mask does not match its dimensions.
	ErrBadRequest = errors.New("worker: invalid request")
)

// Executor is one strategy for running mask operations. Implementations
// never retain or modify request buffers.
type Executor interface {
	// Name identifies the strategy in logs.
	Name() string

	// Ping performs a trivial round trip.
	Ping(ctx context.Context) error

	// ProcessStroke applies a recorded stroke to a copy of the mask.
	ProcessStroke(ctx context.Context, req StrokeRequest) (StrokeResult, error)

	// ApplyStrokePath applies a raw brush path to a copy of the mask.
	ApplyStrokePath(ctx context.Context, req PathRequest) (StrokeResult, error)

	// CreateCheckpoint snapshots the mask into a tiled checkpoint.
	CreateCheckpoint(ctx context.Context, req CheckpointRequest) (history.Checkpoint, error)

	// ExportMask renders the mask as a colour overlay whose alpha channel
	// equals the mask.
	ExportMask(ctx context.Context, req ExportRequest) (*image.NRGBA, error)

	// ValidateMask checks the binary invariant.
	ValidateMask(ctx context.Context, mask []byte) (Validation, error)

	// Close releases resources and rejects in-flight calls.
	Close() error
}

// Mask is a mask buffer with its dimensions.
type Mask struct {
	Data          []byte
	Width, Height int
}

func (m Mask) check() error {
	if m.Width <= 0 || m.Height <= 0 || len(m.Data) != m.Width*m.Height {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrBadRequest, len(m.Data), m.Width, m.Height)
	}
	return nil
}

func (m Mask) clone() Mask {
	data := make([]byte, len(m.Data))
	copy(data, m.Data)
	m.Data = data
	return m
}

// StrokeRequest asks for a recorded stroke to be applied.
type StrokeRequest struct {
	Mask   Mask
	Stroke history.Stroke
}

// PathRequest asks for a brush path to be applied.
type PathRequest struct {
	Mask    Mask
	Points  []brush.Point
	Size    int
	Mode    brush.Mode
	Spacing float64
}

// StrokeResult is the mask after a stroke.
type StrokeResult struct {
	// Mask is a new buffer; the request buffer is untouched.
	Mask    []byte
	Changed bool
	Bounds  image.Rectangle
}

// CheckpointRequest asks for a checkpoint of the mask taken after the
// stroke at StrokeIndex.
type CheckpointRequest struct {
	Mask        Mask
	StrokeIndex int

	// TileSize of the snapshot; zero selects history.DefaultTileSize.
	TileSize int
}

// ExportRequest asks for a colour overlay of the mask.
type ExportRequest struct {
	Mask  Mask
	Color color.NRGBA
}

// Validation reports the binary state of a mask.
type Validation struct {
	Valid bool

	// FirstInvalid is the index of the first byte that is neither 0 nor
	// 255, or -1.
	FirstInvalid int

	// Painted is the number of 255 bytes.
	Painted int
}
