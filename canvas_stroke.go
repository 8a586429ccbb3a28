package maskpaint

import (
	"context"
	"fmt"

	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/history"
	"github.com/gogpu/maskpaint/worker"
)

// StartBrushStroke begins a live stroke at image coordinates (x, y) and
// stamps the first point. It reports false if no image is loaded or a
// stroke is already in progress.
func (c *Canvas) StartBrushStroke(x, y float64) bool {
	if c.closed || !c.loaded || c.stroker != nil {
		return false
	}
	p := brush.Point{X: x, Y: y}
	c.stroker = brush.NewStroker(c.mask, c.width, c.height, c.brushSize, c.mode, c.opts.spacing)
	c.strokePts = append(c.strokePts[:0], p)
	if c.stroker.Begin(p) {
		c.markDirty(brush.StampBounds(c.width, c.height, x, y, c.brushSize))
	}
	return true
}

// ContinueBrushStroke extends the live stroke to (x, y). It reports
// whether any pixel changed.
func (c *Canvas) ContinueBrushStroke(x, y float64) bool {
	if c.stroker == nil {
		return false
	}
	prev := c.stroker.Last()
	p := brush.Point{X: x, Y: y}
	c.strokePts = append(c.strokePts, p)
	if !c.stroker.Continue(p) {
		return false
	}
	next := c.stroker.Last()
	r := brush.StampBounds(c.width, c.height, prev.X, prev.Y, c.brushSize).
		Union(brush.StampBounds(c.width, c.height, next.X, next.Y, c.brushSize))
	c.markDirty(r)
	return true
}

// Stroking reports whether a live stroke is in progress.
func (c *Canvas) Stroking() bool { return c.stroker != nil }

// EndBrushStroke finishes the live stroke and records it in the history.
// A stroke that changed no pixel is not recorded. It reports whether a
// stroke was recorded.
func (c *Canvas) EndBrushStroke(ctx context.Context) (bool, error) {
	if c.stroker == nil {
		return false, nil
	}
	changed := c.stroker.Changed()
	pts := c.strokePts
	c.stroker = nil
	c.strokePts = c.strokePts[:0]
	if !changed {
		return false, nil
	}

	s := history.NewStroke(pts, c.brushSize, c.mode, c.opts.spacing)
	if err := c.record(ctx, s, nil); err != nil {
		// The pixels are already stamped; treat them like a cancelled stroke.
		c.residue = true
		return false, err
	}
	return true, nil
}

// CancelBrushStroke abandons the live stroke. Pixels already stamped stay
// in the mask but no stroke is recorded; the next Undo restores the state
// before the stroke. It reports whether a stroke was in progress.
func (c *Canvas) CancelBrushStroke() bool {
	if c.stroker == nil {
		return false
	}
	if c.stroker.Changed() {
		c.residue = true
	}
	Logger().Debug("maskpaint: stroke cancelled", "points", len(c.strokePts), "changed", c.stroker.Changed())
	c.stroker = nil
	c.strokePts = c.strokePts[:0]
	return true
}

// ApplyBrushStroke applies a recorded stroke through the executor and
// records it in the history. A stroke without an id is given one. The
// result is validated and repaired if it is not binary. It reports
// whether any pixel changed; unchanged strokes are not recorded.
func (c *Canvas) ApplyBrushStroke(ctx context.Context, s history.Stroke) (bool, error) {
	if c.closed {
		return false, ErrClosed
	}
	if !c.loaded {
		return false, ErrNotLoaded
	}
	if len(s.Points) == 0 || s.BrushSize < MinBrushSize || s.BrushSize > MaxBrushSize {
		return false, fmt.Errorf("%w: %d points, size %d", ErrInvalidStroke, len(s.Points), s.BrushSize)
	}
	c.CancelBrushStroke()
	if s.ID == "" {
		ts := s.Timestamp
		s = history.NewStroke(s.Points, s.BrushSize, s.Mode, s.Spacing)
		if !ts.IsZero() {
			s.Timestamp = ts
		}
	}

	res, err := c.exec.ProcessStroke(ctx, worker.StrokeRequest{Mask: c.maskRef(), Stroke: s})
	if err != nil {
		return false, fmt.Errorf("maskpaint: apply stroke: %w", err)
	}
	if !res.Changed {
		return false, nil
	}
	v, err := c.exec.ValidateMask(ctx, res.Mask)
	if err != nil {
		return false, fmt.Errorf("maskpaint: validate stroke: %w", err)
	}
	if !v.Valid {
		brush.EnforceBinaryMask(res.Mask)
	}
	if err := c.record(ctx, s, func() { copy(c.mask, res.Mask) }); err != nil {
		return false, err
	}
	c.markDirty(res.Bounds)
	return true, nil
}

// record appends s to the history and then runs commit, which writes the
// stroke's pixels if they are not in the mask yet. A rejected stroke
// leaves the mask untouched. Afterwards a checkpoint is taken if strokes
// were evicted or the checkpoint interval elapsed.
func (c *Canvas) record(ctx context.Context, s history.Stroke, commit func()) error {
	if err := c.hist.AddStroke(s); err != nil {
		return fmt.Errorf("maskpaint: record stroke: %w", err)
	}
	if commit != nil {
		commit()
	}
	if c.hist.LastEviction().StrokesEvicted > 0 {
		c.evicted = true
		c.checkpoint(ctx)
		return nil
	}
	c.sinceCheckpoint++
	if c.sinceCheckpoint >= c.opts.checkpointInterval {
		c.checkpoint(ctx)
	}
	return nil
}

// checkpoint snapshots the state at the history cursor. Failures are
// logged; checkpoints only shorten replays.
func (c *Canvas) checkpoint(ctx context.Context) {
	c.sinceCheckpoint = 0
	idx := c.hist.CurrentIndex()
	src := c.mask
	if c.residue {
		buf, err := c.rebuild(idx)
		if err != nil {
			Logger().Warn("maskpaint: checkpoint skipped", "index", idx, "err", err)
			return
		}
		src = buf
	}
	cp, err := c.exec.CreateCheckpoint(ctx, worker.CheckpointRequest{
		Mask:        worker.Mask{Data: src, Width: c.width, Height: c.height},
		StrokeIndex: idx,
		TileSize:    c.opts.tileSize,
	})
	if err != nil {
		Logger().Warn("maskpaint: checkpoint failed", "index", idx, "err", err)
		return
	}
	if err := c.hist.AddCheckpoint(cp); err != nil {
		Logger().Warn("maskpaint: checkpoint rejected", "index", idx, "err", err)
		return
	}
	Logger().Debug("maskpaint: checkpoint", "index", idx, "bytes", cp.Snapshot.Bytes())
}

func (c *Canvas) maskRef() worker.Mask {
	return worker.Mask{Data: c.mask, Width: c.width, Height: c.height}
}

