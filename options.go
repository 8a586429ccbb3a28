package maskpaint

import (
	"image/color"
	"net/http"
	"time"

	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/history"
	"github.com/gogpu/maskpaint/render"
	"github.com/gogpu/maskpaint/view"
	"github.com/gogpu/maskpaint/worker"
)

// Limits and defaults.
const (
	// MaxDimension is the largest accepted image width or height.
	MaxDimension = 8192

	MinBrushSize     = 1
	MaxBrushSize     = 512
	DefaultBrushSize = 20

	// DefaultCheckpointInterval is how many strokes pass between
	// checkpoints.
	DefaultCheckpointInterval = 10
)

// Option configures a Canvas during creation.
//
// Example:
//
//	c := maskpaint.NewCanvas(ctx,
//		maskpaint.WithBrushSize(32),
//		maskpaint.WithMemoryLimitMB(64),
//		maskpaint.WithWheelModifier(view.ModCtrl),
//	)
type Option func(*options)

// options holds optional configuration for Canvas creation.
type options struct {
	view view.Config

	brushSize int
	mode      brush.Mode
	spacing   float64

	memoryLimitMB      float64
	strokeFloor        int
	checkpointInterval int
	tileSize           int

	executor   worker.Executor
	workerOpts []worker.Option
	scheduler  *render.Scheduler
	httpClient *http.Client
	overlay    color.NRGBA

	viewW, viewH float64
}

// defaultOptions returns the default canvas options.
func defaultOptions() options {
	return options{
		view:               view.DefaultConfig(),
		brushSize:          DefaultBrushSize,
		mode:               brush.Paint,
		spacing:            brush.DefaultSpacing,
		memoryLimitMB:      history.DefaultMemoryLimitMB,
		strokeFloor:        history.DefaultStrokeFloor,
		checkpointInterval: DefaultCheckpointInterval,
		tileSize:           history.DefaultTileSize,
		httpClient:         &http.Client{Timeout: 30 * time.Second},
		overlay:            color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// WithViewConfig replaces the zoom/pan controller configuration.
func WithViewConfig(cfg view.Config) Option {
	return func(o *options) { o.view = cfg }
}

// WithMinZoom sets the smallest zoom multiplier.
func WithMinZoom(z float64) Option {
	return func(o *options) { o.view.MinZoom = z }
}

// WithMaxZoom sets the largest zoom multiplier.
func WithMaxZoom(z float64) Option {
	return func(o *options) { o.view.MaxZoom = z }
}

// WithPanPadding sets how far past its edges the image may be panned.
func WithPanPadding(px float64) Option {
	return func(o *options) { o.view.Padding = px }
}

// WithFitPadding sets the margin kept around the image by the initial fit.
func WithFitPadding(px float64) Option {
	return func(o *options) { o.view.FitPadding = px }
}

// WithWheelModifier sets the modifier required for wheel zoom.
func WithWheelModifier(m view.Modifier) Option {
	return func(o *options) { o.view.WheelModifier = m }
}

// WithBrushSize sets the initial brush diameter in image pixels.
func WithBrushSize(size int) Option {
	return func(o *options) { o.brushSize = clampBrush(size) }
}

// WithMode sets the initial brush mode.
func WithMode(m brush.Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithSpacing sets stamp spacing as a fraction of the brush size.
func WithSpacing(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.spacing = s
		}
	}
}

// WithMemoryLimitMB sets the undo history budget.
func WithMemoryLimitMB(mb float64) Option {
	return func(o *options) { o.memoryLimitMB = mb }
}

// WithStrokeFloor sets how many strokes history eviction always keeps.
func WithStrokeFloor(n int) Option {
	return func(o *options) { o.strokeFloor = n }
}

// WithCheckpointInterval sets how many strokes pass between checkpoints.
func WithCheckpointInterval(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.checkpointInterval = n
		}
	}
}

// WithTileSize sets the tile edge length of checkpoint snapshots.
func WithTileSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.tileSize = n
		}
	}
}

// WithExecutor injects the pixel executor. The canvas does not close an
// injected executor.
func WithExecutor(e worker.Executor) Option {
	return func(o *options) { o.executor = e }
}

// WithWorkerOptions passes options to the default worker.Manager.
func WithWorkerOptions(opts ...worker.Option) Option {
	return func(o *options) { o.workerOpts = append(o.workerOpts, opts...) }
}

// WithScheduler injects the render scheduler, for hosts that share one
// frame loop between several canvases.
func WithScheduler(s *render.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithHTTPClient sets the client used to fetch http(s) image sources.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithOverlayColor sets the RGB of exported overlays. Alpha is ignored;
// the overlay alpha is always the mask.
func WithOverlayColor(c color.NRGBA) Option {
	return func(o *options) { o.overlay = c }
}

// WithViewSize sets the initial view size. Until set, the view matches the
// image size.
func WithViewSize(w, h float64) Option {
	return func(o *options) { o.viewW, o.viewH = w, h }
}

func clampBrush(size int) int {
	return min(max(size, MinBrushSize), MaxBrushSize)
}
