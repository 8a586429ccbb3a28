package worker

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/history"
)

func randomStroke(rng *rand.Rand, w, h int) history.Stroke {
	pts := make([]brush.Point, 2+rng.IntN(6))
	for i := range pts {
		pts[i] = brush.Point{X: rng.Float64() * float64(w), Y: rng.Float64() * float64(h)}
	}
	mode := brush.Paint
	if rng.IntN(3) == 0 {
		mode = brush.Erase
	}
	return history.NewStroke(pts, 1+rng.IntN(25), mode, 0)
}

func restore(t *testing.T, cp history.Checkpoint, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	if err := cp.Snapshot.Restore(buf); err != nil {
		t.Fatal(err)
	}
	return buf
}

// =============================================================================
// Output contract
// =============================================================================

func TestExecutors_ByteIdentical(t *testing.T) {
	ctx := context.Background()
	se := NewSyncExecutor()
	bg := NewBackgroundExecutor(4)
	defer bg.Close()

	rng := rand.New(rand.NewPCG(9, 9))
	const w, h = 150, 201
	live := make([]byte, w*h)
	for i := range 25 {
		s := randomStroke(rng, w, h)
		req := StrokeRequest{Mask: Mask{Data: live, Width: w, Height: h}, Stroke: s}
		before := bytes.Clone(live)

		a, err := se.ProcessStroke(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		b, err := bg.ProcessStroke(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a.Mask, b.Mask) || a.Changed != b.Changed || a.Bounds != b.Bounds {
			t.Fatalf("stroke %d: results differ", i)
		}
		if !bytes.Equal(live, before) {
			t.Fatalf("stroke %d: request buffer modified", i)
		}

		preq := PathRequest{Mask: req.Mask, Points: s.Points, Size: s.BrushSize, Mode: s.Mode}
		pa, _ := se.ApplyStrokePath(ctx, preq)
		pb, _ := bg.ApplyStrokePath(ctx, preq)
		if !bytes.Equal(pa.Mask, pb.Mask) || !bytes.Equal(pa.Mask, a.Mask) {
			t.Fatalf("stroke %d: path results differ", i)
		}
		copy(live, a.Mask)
	}

	creq := CheckpointRequest{Mask: Mask{Data: live, Width: w, Height: h}, StrokeIndex: 24, TileSize: 32}
	ca, err := se.CreateCheckpoint(ctx, creq)
	if err != nil {
		t.Fatal(err)
	}
	cb, err := bg.CreateCheckpoint(ctx, creq)
	if err != nil {
		t.Fatal(err)
	}
	if ca.StrokeIndex != 24 || cb.StrokeIndex != 24 {
		t.Errorf("checkpoint indices = %d, %d", ca.StrokeIndex, cb.StrokeIndex)
	}
	if ca.Snapshot.Bytes() != cb.Snapshot.Bytes() {
		t.Errorf("snapshot sizes %d vs %d", ca.Snapshot.Bytes(), cb.Snapshot.Bytes())
	}
	if ra, rb := restore(t, ca, w*h), restore(t, cb, w*h); !bytes.Equal(ra, rb) || !bytes.Equal(ra, live) {
		t.Error("checkpoint contents differ")
	}

	ereq := ExportRequest{Mask: creq.Mask, Color: color.NRGBA{R: 255, G: 0, B: 0}}
	ea, _ := se.ExportMask(ctx, ereq)
	eb, err := bg.ExportMask(ctx, ereq)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ea.Pix, eb.Pix) {
		t.Error("exports differ")
	}

	va, _ := se.ValidateMask(ctx, live)
	vb, _ := bg.ValidateMask(ctx, live)
	if va != vb || !va.Valid || va.FirstInvalid != -1 {
		t.Errorf("validations %+v vs %+v", va, vb)
	}
}

func TestExportMask_AlphaIsMask(t *testing.T) {
	mask := []byte{0, 0, 0, 0, 255, 0, 0, 0, 0}
	for _, e := range []Executor{NewSyncExecutor(), NewBackgroundExecutor(2)} {
		img, err := e.ExportMask(context.Background(), ExportRequest{
			Mask:  Mask{Data: mask, Width: 3, Height: 3},
			Color: color.NRGBA{R: 1, G: 2, B: 3},
		})
		if err != nil {
			t.Fatalf("%s: %v", e.Name(), err)
		}
		for i, want := range mask {
			px := img.Pix[i*4 : i*4+4]
			if px[3] != want || px[0] != 1 || px[1] != 2 || px[2] != 3 {
				t.Errorf("%s: pixel %d = %v", e.Name(), i, px)
			}
		}
		_ = e.Close()
	}
}

func TestValidateMask_ReportsFirstInvalid(t *testing.T) {
	v, _ := NewSyncExecutor().ValidateMask(context.Background(), []byte{0, 255, 7, 255})
	if v.Valid || v.FirstInvalid != 2 || v.Painted != 2 {
		t.Errorf("Validation = %+v", v)
	}
}

func TestExecutors_BadRequest(t *testing.T) {
	bad := Mask{Data: make([]byte, 5), Width: 2, Height: 2}
	for _, e := range []Executor{NewSyncExecutor(), NewBackgroundExecutor(1)} {
		if _, err := e.ProcessStroke(context.Background(), StrokeRequest{Mask: bad}); !errors.Is(err, ErrBadRequest) {
			t.Errorf("%s: err = %v, want ErrBadRequest", e.Name(), err)
		}
		_ = e.Close()
	}
}

// =============================================================================
// Background message handling
// =============================================================================

func TestBackground_PingAndPending(t *testing.T) {
	b := NewBackgroundExecutor(1)
	defer b.Close()
	if err := b.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	if b.Pending() != 0 {
		t.Errorf("Pending = %d after reply", b.Pending())
	}
}

func TestBackground_RecoversPanic(t *testing.T) {
	b := NewBackgroundExecutor(1)
	defer b.Close()
	_, err := b.call(context.Background(), func() (any, error) { panic("bad tile") })
	if !errors.Is(err, ErrBackgroundFailure) {
		t.Errorf("err = %v, want ErrBackgroundFailure", err)
	}
	if err := b.Ping(context.Background()); err != nil {
		t.Errorf("executor unusable after panic: %v", err)
	}
}

func TestBackground_ContextCancel(t *testing.T) {
	b := NewBackgroundExecutor(1)
	block := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := b.call(ctx, func() (any, error) { <-block; return nil, nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
	if b.Pending() != 0 {
		t.Errorf("Pending = %d after cancel", b.Pending())
	}
	close(block)
	_ = b.Close()
}

func TestBackground_CloseRejectsInFlight(t *testing.T) {
	b := NewBackgroundExecutor(1)
	block := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		_, err := b.call(context.Background(), func() (any, error) { <-block; return nil, nil })
		errc <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for b.Pending() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("call never became pending")
		}
		time.Sleep(time.Millisecond)
	}

	closed := make(chan struct{})
	go func() {
		_ = b.Close()
		close(closed)
	}()
	if err := <-errc; !errors.Is(err, ErrClosed) {
		t.Errorf("in-flight err = %v, want ErrClosed", err)
	}
	close(block)
	<-closed

	if err := b.Ping(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping after Close = %v, want ErrClosed", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}
