// Command maskpaint replays a stroke script onto an image and writes the
// resulting inpainting mask and an overlay preview.
//
// Usage:
//
//	maskpaint -image photo.jpg -script strokes.json -mask mask.png -overlay preview.png
//
// The script is a JSON array of steps. A step is either a stroke
//
//	{"points": [[10, 10], [120, 40]], "size": 24, "mode": "paint"}
//
// or an operation: {"op": "undo"}, "redo", "clear", "fill" or "invert".
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/image/draw"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/maskpaint"
	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/history"
	"github.com/gogpu/maskpaint/worker"
)

type step struct {
	Op      string       `json:"op,omitempty"`
	Points  [][2]float64 `json:"points,omitempty"`
	Size    int          `json:"size,omitempty"`
	Mode    brush.Mode   `json:"mode,omitempty"`
	Spacing float64      `json:"spacing,omitempty"`
}

// config holds the command-line settings.
type config struct {
	src, script       string
	maskOut, overlay  string
	preview           int
	tint              string
	opacity           float64
	size              int
	lang              string
	verbose, syncOnly bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.src, "image", "", "image path, URL or data: URL")
	flag.StringVar(&cfg.script, "script", "-", "stroke script, - for stdin")
	flag.StringVar(&cfg.maskOut, "mask", "mask.png", "mask output file")
	flag.StringVar(&cfg.overlay, "overlay", "", "overlay preview output file")
	flag.IntVar(&cfg.preview, "preview", 1024, "longest side of the overlay preview, 0 for full size")
	flag.StringVar(&cfg.tint, "color", "#ff3050", "overlay colour")
	flag.Float64Var(&cfg.opacity, "opacity", 0.5, "overlay opacity")
	flag.IntVar(&cfg.size, "size", maskpaint.DefaultBrushSize, "default brush size")
	flag.StringVar(&cfg.lang, "lang", "en", "language for the summary")
	flag.BoolVar(&cfg.verbose, "v", false, "log diagnostics to stderr")
	flag.BoolVar(&cfg.syncOnly, "sync", false, "run pixel work synchronously")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, cfg, os.Stdout)
	stop()
	if err != nil {
		log.Fatalf("maskpaint: %v", err)
	}
}

// run does the work of main. Every exit path closes the canvas.
func run(ctx context.Context, cfg config, out io.Writer) (err error) {
	if cfg.src == "" {
		return errors.New("-image is required")
	}
	if cfg.verbose {
		maskpaint.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	col, err := parseColor(cfg.tint)
	if err != nil {
		return err
	}

	opts := []maskpaint.Option{maskpaint.WithBrushSize(cfg.size), maskpaint.WithOverlayColor(col)}
	if cfg.syncOnly {
		opts = append(opts, maskpaint.WithWorkerOptions(worker.WithSyncOnly()))
	}
	c := maskpaint.NewCanvas(ctx, opts...)
	defer func() { err = errors.Join(err, c.Close()) }()

	if err := c.LoadImage(ctx, cfg.src); err != nil {
		return err
	}
	steps, err := readScript(cfg.script)
	if err != nil {
		return err
	}
	if err := replay(ctx, c, steps, cfg.size); err != nil {
		return err
	}

	if err := writePNG(cfg.maskOut, c.MaskImage()); err != nil {
		return err
	}
	if cfg.overlay != "" {
		img, err := composite(ctx, c, cfg.opacity, cfg.preview)
		if err != nil {
			return err
		}
		if err := writePNG(cfg.overlay, img); err != nil {
			return err
		}
	}

	st := c.State()
	painted := brush.CountPainted(c.MaskImage().Pix)
	total := st.Width * st.Height
	p := message.NewPrinter(language.Make(cfg.lang))
	_, err = p.Fprintf(out, "%dx%d image, %d strokes, %d of %d pixels masked (%.1f%%), executor %s\n",
		st.Width, st.Height, st.History.StrokeCount, painted, total,
		100*float64(painted)/float64(total), st.Executor)
	return err
}

func readScript(path string) ([]step, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var steps []step
	if err := json.NewDecoder(r).Decode(&steps); err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	return steps, nil
}

func replay(ctx context.Context, c *maskpaint.Canvas, steps []step, defaultSize int) error {
	for i, s := range steps {
		var err error
		switch s.Op {
		case "", "stroke":
			pts := make([]brush.Point, len(s.Points))
			for j, p := range s.Points {
				pts[j] = brush.Point{X: p[0], Y: p[1]}
			}
			size := s.Size
			if size == 0 {
				size = defaultSize
			}
			_, err = c.ApplyBrushStroke(ctx, history.Stroke{Points: pts, BrushSize: size, Mode: s.Mode, Spacing: s.Spacing})
		case "undo":
			_, err = c.Undo(ctx)
		case "redo":
			_, err = c.Redo(ctx)
		case "clear":
			c.ClearMask()
		case "fill":
			c.FillMask()
		case "invert":
			c.InvertMask()
		default:
			err = fmt.Errorf("unknown op %q", s.Op)
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// composite blends the mask overlay onto the image and scales the result
// so its longest side is at most maxSide.
func composite(ctx context.Context, c *maskpaint.Canvas, opacity float64, maxSide int) (image.Image, error) {
	ov, err := c.ExportMaskImageData(ctx)
	if err != nil {
		return nil, err
	}

	b := ov.Bounds()
	dst := image.NewRGBA(b)
	img := c.Image()
	draw.Draw(dst, b, img, img.Bounds().Min, draw.Src)
	a := uint8(min(max(opacity, 0), 1) * 255)
	draw.DrawMask(dst, b, ov, image.Point{}, image.NewUniform(color.Alpha{A: a}), image.Point{}, draw.Over)

	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || max(w, h) <= maxSide {
		return dst, nil
	}
	scale := float64(maxSide) / float64(max(w, h))
	out := image.NewRGBA(image.Rect(0, 0, max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))))
	draw.CatmullRom.Scale(out, out.Bounds(), dst, b, draw.Src, nil)
	return out, nil
}

func parseColor(s string) (color.NRGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("bad colour %q: %w", s, err)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
