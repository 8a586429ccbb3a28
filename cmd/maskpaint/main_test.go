package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/maskpaint"
	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/worker"
)

func TestReplay(t *testing.T) {
	var steps []step
	script := `[
		{"points": [[2, 8], [30, 8]], "size": 4},
		{"points": [[2, 20], [30, 20]], "size": 4},
		{"op": "undo"},
		{"points": [[16, 0], [16, 31]], "size": 2, "mode": "erase"}
	]`
	if err := json.Unmarshal([]byte(script), &steps); err != nil {
		t.Fatal(err)
	}
	if steps[3].Mode != brush.Erase {
		t.Fatalf("mode = %v, want erase", steps[3].Mode)
	}

	ctx := context.Background()
	c := maskpaint.NewCanvas(ctx, maskpaint.WithExecutor(worker.NewSyncExecutor()))
	defer c.Close()
	if err := c.LoadImageData(image.NewGray(image.Rect(0, 0, 32, 32))); err != nil {
		t.Fatal(err)
	}
	if err := replay(ctx, c, steps, 10); err != nil {
		t.Fatal(err)
	}

	at := func(x, y int) byte {
		v, _ := c.GetMaskValue(x, y)
		return v
	}
	if at(8, 8) != 255 || at(16, 8) != 0 || at(8, 20) != 0 {
		t.Errorf("mask at (8,8)=%d (16,8)=%d (8,20)=%d", at(8, 8), at(16, 8), at(8, 20))
	}
	if err := replay(ctx, c, []step{{Op: "explode"}}, 10); err == nil {
		t.Error("unknown op accepted")
	}
}

func TestParseColor(t *testing.T) {
	got, err := parseColor("#ff3050")
	if err != nil || got != (color.NRGBA{R: 0xff, G: 0x30, B: 0x50, A: 0xff}) {
		t.Errorf("parseColor = %v, %v", got, err)
	}
	if _, err := parseColor("red"); err == nil {
		t.Error("parseColor accepted a name")
	}
}

func TestCompositeScalesPreview(t *testing.T) {
	ctx := context.Background()
	c := maskpaint.NewCanvas(ctx, maskpaint.WithExecutor(worker.NewSyncExecutor()))
	defer c.Close()
	if err := c.LoadImageData(image.NewGray(image.Rect(0, 0, 200, 100))); err != nil {
		t.Fatal(err)
	}
	c.FillMask()

	img, err := composite(ctx, c, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("preview size = %v, want 50x25", b)
	}
	full, _ := composite(ctx, c, 1, 0)
	if r, _, _, _ := full.At(10, 10).RGBA(); r>>8 != 255 {
		t.Errorf("opaque white overlay red = %d", r>>8)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "in.png")
	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 40, 20))); err != nil {
		t.Fatal(err)
	}
	f.Close()
	scriptPath := filepath.Join(dir, "s.json")
	if err := os.WriteFile(scriptPath, []byte(`[{"points": [[2, 10], [38, 10]], "size": 4}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config{
		src:      imgPath,
		script:   scriptPath,
		maskOut:  filepath.Join(dir, "mask.png"),
		overlay:  filepath.Join(dir, "overlay.png"),
		tint:     "#ffffff",
		opacity:  0.5,
		size:     10,
		lang:     "en",
		syncOnly: true,
	}
	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "40x20 image, 1 strokes") {
		t.Errorf("summary = %q", out.String())
	}
	for _, p := range []string{cfg.maskOut, cfg.overlay} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("output missing: %v", err)
		}
	}

	cfg.script = filepath.Join(dir, "missing.json")
	if err := run(context.Background(), cfg, &out); err == nil {
		t.Error("run with a missing script succeeded")
	}
	if err := run(context.Background(), config{}, &out); err == nil {
		t.Error("run without -image succeeded")
	}
}
