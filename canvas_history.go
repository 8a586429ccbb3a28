package maskpaint

import (
	"context"
	"fmt"

	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/history"
)

// Undo steps the history back one stroke and rebuilds the mask from the
// nearest checkpoint. If a cancelled stroke left pixels behind, the first
// Undo only removes them. It reports whether the mask was rebuilt.
func (c *Canvas) Undo(ctx context.Context) (bool, error) {
	if c.closed || !c.loaded {
		return false, nil
	}
	c.CancelBrushStroke()
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !c.residue {
		if _, ok := c.hist.Undo(); !ok {
			return false, nil
		}
	}
	if err := c.reconstruct(c.hist.CurrentIndex()); err != nil {
		return false, err
	}
	return true, nil
}

// Redo re-applies the next stroke. It reports whether there was one.
func (c *Canvas) Redo(ctx context.Context) (bool, error) {
	if c.closed || !c.loaded {
		return false, nil
	}
	c.CancelBrushStroke()
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s, ok := c.hist.Redo()
	if !ok {
		return false, nil
	}
	if c.residue {
		if err := c.reconstruct(c.hist.CurrentIndex()); err != nil {
			return false, err
		}
		return true, nil
	}
	if changed, r := s.Apply(c.mask, c.width, c.height); changed {
		c.markDirty(r)
	}
	return true, nil
}

// CanUndo reports whether Undo would change the mask.
func (c *Canvas) CanUndo() bool {
	return c.loaded && (c.residue || c.stroker != nil && c.stroker.Changed() || c.hist.State().CanUndo)
}

// CanRedo reports whether Redo has a stroke to re-apply.
func (c *Canvas) CanRedo() bool { return c.loaded && c.hist.State().CanRedo }

// History returns the stroke history.
func (c *Canvas) History() *history.Manager { return c.hist }

// reconstruct replaces the mask with the state after stroke target.
func (c *Canvas) reconstruct(target int) error {
	buf, err := c.rebuild(target)
	if err != nil {
		return err
	}
	copy(c.mask, buf)
	c.residue = false
	c.markAllDirty()
	return nil
}

// rebuild computes the mask after stroke target from the nearest
// checkpoint at or before it. Without one, the strokes still in the
// history are replayed onto the baseline; strokes evicted earlier are
// then lost from the result.
func (c *Canvas) rebuild(target int) ([]byte, error) {
	buf := make([]byte, c.width*c.height)
	var strokes []history.Stroke
	if cp, ok := c.hist.NearestCheckpoint(target); ok {
		if err := cp.Snapshot.Restore(buf); err != nil {
			return nil, fmt.Errorf("maskpaint: restore checkpoint %d: %w", cp.StrokeIndex, err)
		}
		strokes = c.hist.StrokesFromCheckpoint(cp, target)
	} else {
		if c.baseline != nil {
			if err := c.baseline.Restore(buf); err != nil {
				return nil, fmt.Errorf("maskpaint: restore baseline: %w", err)
			}
		}
		if c.evicted {
			Logger().Warn("maskpaint: undo past evicted strokes, replaying onto baseline", "target", target)
		} else {
			Logger().Debug("maskpaint: replaying from baseline", "target", target)
		}
		strokes = c.hist.StrokesThrough(target)
	}
	for _, s := range strokes {
		s.Apply(buf, c.width, c.height)
	}
	if !brush.ValidateBinaryMask(buf) {
		brush.EnforceBinaryMask(buf)
	}
	return buf, nil
}

// resetHistory discards all strokes and makes the current mask the
// baseline.
func (c *Canvas) resetHistory() error {
	snap, err := history.NewTiledSnapshot(c.mask, c.width, c.height, c.opts.tileSize)
	if err != nil {
		return err
	}
	c.baseline = snap
	c.residue = false
	c.evicted = false
	c.sinceCheckpoint = 0
	return c.hist.Reset(snap)
}

// bulk runs a whole-mask edit. The history cannot express it, so it is
// discarded and the result becomes the new baseline.
func (c *Canvas) bulk(op string, edit func(mask []byte)) bool {
	if c.closed || !c.loaded {
		return false
	}
	c.CancelBrushStroke()
	edit(c.mask)
	if n := c.hist.Len(); n > 0 {
		Logger().Warn("maskpaint: history discarded", "op", op, "strokes", n)
	}
	if err := c.resetHistory(); err != nil {
		Logger().Error("maskpaint: reset history", "op", op, "err", err)
	}
	c.markAllDirty()
	return true
}

// ClearMask sets every pixel to 0 (keep).
func (c *Canvas) ClearMask() bool {
	return c.bulk("clear", func(m []byte) { clear(m) })
}

// FillMask sets every pixel to 255 (inpaint).
func (c *Canvas) FillMask() bool {
	return c.bulk("fill", func(m []byte) {
		for i := range m {
			m[i] = 255
		}
	})
}

// InvertMask swaps kept and inpainted pixels.
func (c *Canvas) InvertMask() bool {
	return c.bulk("invert", func(m []byte) {
		for i, v := range m {
			m[i] = 255 - brush.Binarize(v)
		}
	})
}
