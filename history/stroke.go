package history

import (
	"image"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/maskpaint/brush"
)

// Per-entry accounting constants.
const (
	bytesPerPoint = 16
	entryOverhead = 64
)

// Stroke is one committed brush gesture. Treat it as immutable: the
// Manager and replay code share Points without copying.
type Stroke struct {
	ID        string
	Points    []brush.Point
	BrushSize int
	Mode      brush.Mode

	// Spacing is the stamp spacing used when the stroke was drawn; zero
	// means brush.DefaultSpacing.
	Spacing float64

	Timestamp time.Time
}

// NewStroke returns a stroke with a fresh id, copying points.
func NewStroke(points []brush.Point, size int, mode brush.Mode, spacing float64) Stroke {
	return Stroke{
		ID:        uuid.NewString(),
		Points:    slices.Clone(points),
		BrushSize: size,
		Mode:      mode,
		Spacing:   spacing,
		Timestamp: time.Now(),
	}
}

// MemoryBytes returns the accounted size of the stroke.
func (s Stroke) MemoryBytes() int64 {
	return int64(len(s.Points))*bytesPerPoint + entryOverhead
}

// Apply stamps the stroke into buf. It returns whether any pixel changed
// and the bounding box of the stamps.
func (s Stroke) Apply(buf []byte, width, height int) (bool, image.Rectangle) {
	return brush.ApplyStrokePath(buf, width, height, s.Points, s.BrushSize, s.Mode, s.Spacing)
}

// Checkpoint is a mask snapshot taken after the stroke at StrokeIndex was
// applied. StrokeIndex -1 is the state before any stroke.
type Checkpoint struct {
	ID          string
	StrokeIndex int
	Snapshot    Snapshot
	Timestamp   time.Time
}

// NewCheckpoint returns a checkpoint with a fresh id.
func NewCheckpoint(strokeIndex int, snap Snapshot) Checkpoint {
	return Checkpoint{
		ID:          uuid.NewString(),
		StrokeIndex: strokeIndex,
		Snapshot:    snap,
		Timestamp:   time.Now(),
	}
}

// MemoryBytes returns the accounted size of the checkpoint.
func (c Checkpoint) MemoryBytes() int64 {
	var n int64
	if c.Snapshot != nil {
		n = int64(c.Snapshot.Bytes())
	}
	return n + entryOverhead
}
