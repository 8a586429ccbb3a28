// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package maskpaint

import (
	"context"
	"image"

	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/history"
	"github.com/gogpu/maskpaint/render"
	"github.com/gogpu/maskpaint/view"
	"github.com/gogpu/maskpaint/worker"
)

// Canvas is the mask painting orchestrator. It owns the image, the mask
// buffer, the stroke history and the view controller, and schedules
// redraws on its render.Scheduler.
//
// Mask redraw regions are in image pixel coordinates; view changes
// schedule full redraws.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	opts options

	exec     worker.Executor
	ownsExec bool
	sched    *render.Scheduler
	hist     *history.Manager
	ctrl     *view.Controller

	img           image.Image
	width, height int
	mask          []byte
	loaded        bool
	dirty         bool
	closed        bool

	brushSize int
	mode      brush.Mode

	// Live stroke state.
	stroker   *brush.Stroker
	strokePts []brush.Point

	// residue is set when a cancelled stroke left pixels in the mask that
	// no recorded stroke accounts for.
	residue bool

	sinceCheckpoint int

	// baseline is the mask the history starts from. It outlives the
	// history's own baseline checkpoint, which memory pressure may evict.
	baseline history.Snapshot

	// evicted is set once strokes were evicted since the last reset.
	evicted bool

	viewW, viewH float64
}

// NewCanvas creates an empty canvas. Without WithExecutor it starts a
// worker.Manager, which probes background execution under ctx.
func NewCanvas(ctx context.Context, opts ...Option) *Canvas {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Canvas{
		opts:      o,
		exec:      o.executor,
		sched:     o.scheduler,
		brushSize: o.brushSize,
		mode:      o.mode,
		viewW:     o.viewW,
		viewH:     o.viewH,
	}
	if c.exec == nil {
		c.exec = worker.NewManager(ctx, o.workerOpts...)
		c.ownsExec = true
	}
	if c.sched == nil {
		c.sched = render.NewScheduler()
	}
	c.hist = history.NewManager(
		history.WithMemoryLimitMB(o.memoryLimitMB),
		history.WithStrokeFloor(o.strokeFloor),
	)
	c.ctrl = view.NewController(o.view)
	c.ctrl.OnChange(func(view.ViewTransform) {
		if c.loaded {
			c.sched.ScheduleFull(render.OpImage)
			c.sched.ScheduleFull(render.OpMask)
		}
	})
	Logger().Info("maskpaint: canvas created", "executor", c.exec.Name())
	return c
}

// LoadImage loads an image from a local path, a file:// or http(s)://
// URL, or a data: URL, and resets the mask and history. Failures are
// returned as *ImageError.
func (c *Canvas) LoadImage(ctx context.Context, src string) error {
	if c.closed {
		return ErrClosed
	}
	data, err := readSource(ctx, c.opts.httpClient, src)
	if err != nil {
		return &ImageError{Op: "load", Source: shortSource(src), Err: err}
	}
	img, format, err := decodeImage(data)
	if err != nil {
		return &ImageError{Op: "decode", Source: shortSource(src), Err: err}
	}
	if err := c.setImage(img); err != nil {
		return &ImageError{Op: "load", Source: shortSource(src), Err: err}
	}
	Logger().Info("maskpaint: image loaded", "source", shortSource(src), "format", format,
		"width", c.width, "height", c.height)
	return nil
}

// LoadImageData installs an already decoded image.
func (c *Canvas) LoadImageData(img image.Image) error {
	if c.closed {
		return ErrClosed
	}
	if img == nil {
		return &ImageError{Op: "load", Err: ErrDecode}
	}
	if err := c.setImage(img); err != nil {
		return &ImageError{Op: "load", Err: err}
	}
	return nil
}

func (c *Canvas) setImage(img image.Image) error {
	b := img.Bounds()
	if err := checkDimensions(b.Dx(), b.Dy()); err != nil {
		return err
	}
	c.CancelBrushStroke()

	c.img = img
	c.width, c.height = b.Dx(), b.Dy()
	c.mask = make([]byte, c.width*c.height)
	c.loaded = true
	c.dirty = false
	c.residue = false
	c.sinceCheckpoint = 0
	if err := c.resetHistory(); err != nil {
		return err
	}

	c.sched.SetSurface(image.Rect(0, 0, c.width, c.height))
	vw, vh := c.viewSize()
	c.ctrl.SetGeometry(c.width, c.height, vw, vh)
	c.ctrl.Reset()
	c.sched.ScheduleFull(render.OpImage)
	c.sched.ScheduleFull(render.OpMask)
	return nil
}

func (c *Canvas) viewSize() (float64, float64) {
	if c.viewW > 0 && c.viewH > 0 {
		return c.viewW, c.viewH
	}
	return float64(c.width), float64(c.height)
}

// Loaded reports whether an image is loaded.
func (c *Canvas) Loaded() bool { return c.loaded }

// Image returns the loaded image, or nil.
func (c *Canvas) Image() image.Image { return c.img }

// Size returns the image dimensions.
func (c *Canvas) Size() (width, height int) { return c.width, c.height }

// GetMaskValue returns the mask byte at (x, y). It reports false outside
// the image or before a load.
func (c *Canvas) GetMaskValue(x, y int) (byte, bool) {
	if !c.inBounds(x, y) {
		return 0, false
	}
	return c.mask[y*c.width+x], true
}

// UpdateMaskData sets one mask pixel, binarizing v, and reports whether
// the pixel changed. The edit is outside the stroke history: checkpoints
// never capture it and the next Undo removes it, like the pixels of a
// cancelled stroke.
func (c *Canvas) UpdateMaskData(x, y int, v byte) bool {
	if c.closed || !c.inBounds(x, y) {
		return false
	}
	i := y*c.width + x
	v = brush.Binarize(v)
	if c.mask[i] == v {
		return false
	}
	c.mask[i] = v
	c.residue = true
	c.markDirty(image.Rect(x, y, x+1, y+1))
	return true
}

func (c *Canvas) inBounds(x, y int) bool {
	return c.loaded && x >= 0 && y >= 0 && x < c.width && y < c.height
}

// markDirty flags unsaved changes and schedules a mask redraw of r.
func (c *Canvas) markDirty(r image.Rectangle) {
	if r.Empty() {
		return
	}
	c.dirty = true
	c.sched.ScheduleRedraw(render.OpMask, r)
}

func (c *Canvas) markAllDirty() {
	c.dirty = true
	c.sched.ScheduleFull(render.OpMask)
}

// MarkClean clears the dirty flag, typically after the host saved the
// mask.
func (c *Canvas) MarkClean() { c.dirty = false }

// Dirty reports whether the mask changed since load or MarkClean.
func (c *Canvas) Dirty() bool { return c.dirty }

// SetBrushSize sets the brush diameter, clamped to
// [MinBrushSize, MaxBrushSize]. It applies from the next stroke.
func (c *Canvas) SetBrushSize(size int) {
	c.brushSize = clampBrush(size)
	c.sched.Schedule(render.Operation{Type: render.OpCursor, Priority: render.PriorityHigh})
}

// BrushSize returns the brush diameter.
func (c *Canvas) BrushSize() int { return c.brushSize }

// SetMode selects paint or erase from the next stroke.
func (c *Canvas) SetMode(m brush.Mode) {
	c.mode = m
	c.sched.Schedule(render.Operation{Type: render.OpCursor, Priority: render.PriorityHigh})
}

// Mode returns the brush mode.
func (c *Canvas) Mode() brush.Mode { return c.mode }

// HandleResize sets the view size. The fit scale follows the new size;
// zoom and pan are kept and re-clamped.
func (c *Canvas) HandleResize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	c.viewW, c.viewH = width, height
	if !c.loaded {
		return
	}
	c.ctrl.SetGeometry(c.width, c.height, width, height)
	c.sched.ScheduleFull(render.OpImage)
	c.sched.ScheduleFull(render.OpMask)
}

// View returns the zoom/pan controller.
func (c *Canvas) View() *view.Controller { return c.ctrl }

// Transform returns the current screen/image mapping.
func (c *Canvas) Transform() view.Transform { return c.ctrl.Transform() }

// ScreenToImage maps a view position to the image pixel under it.
func (c *Canvas) ScreenToImage(sx, sy float64) (image.Point, bool) {
	if !c.loaded {
		return image.Point{}, false
	}
	return c.ctrl.Transform().ScreenToImage(sx, sy)
}

// ImageToScreen maps image coordinates to a view position.
func (c *Canvas) ImageToScreen(x, y float64) (float64, float64) {
	return c.ctrl.Transform().ImageToScreen(x, y)
}

// Scheduler returns the render scheduler redraws are queued on.
func (c *Canvas) Scheduler() *render.Scheduler { return c.sched }

// Executor returns the pixel executor.
func (c *Canvas) Executor() worker.Executor { return c.exec }

// Close cancels any stroke in progress and releases the executor if the
// canvas created it. Close is safe to call more than once.
func (c *Canvas) Close() error {
	if c.closed {
		return nil
	}
	c.CancelBrushStroke()
	c.closed = true
	if c.ownsExec {
		return c.exec.Close()
	}
	return nil
}
