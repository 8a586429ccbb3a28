package worker

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/history"
)

// flakyExecutor behaves like SyncExecutor except where told to fail.
type flakyExecutor struct {
	SyncExecutor
	pingErr   error
	pingBlock bool
	failOps   bool
	calls     atomic.Int32
	closed    atomic.Bool
}

func (f *flakyExecutor) Name() string { return "flaky" }

func (f *flakyExecutor) Ping(ctx context.Context) error {
	if f.pingBlock {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.pingErr
}

func (f *flakyExecutor) ProcessStroke(ctx context.Context, req StrokeRequest) (StrokeResult, error) {
	f.calls.Add(1)
	if f.failOps {
		return StrokeResult{}, errors.New("device lost")
	}
	return f.SyncExecutor.ProcessStroke(ctx, req)
}

func (f *flakyExecutor) Close() error {
	f.closed.Store(true)
	return nil
}

func strokeRequest() StrokeRequest {
	return StrokeRequest{
		Mask:   Mask{Data: make([]byte, 32*32), Width: 32, Height: 32},
		Stroke: history.NewStroke([]brush.Point{{X: 5, Y: 5}, {X: 25, Y: 20}}, 6, brush.Paint, 0),
	}
}

// =============================================================================
// Probe
// =============================================================================

func TestManager_ProbeSuccessUsesBackground(t *testing.T) {
	m := NewManager(context.Background(), WithWorkers(2))
	defer m.Close()
	if !m.BackgroundEnabled() || m.Name() != "background" {
		t.Fatalf("background not selected: %s", m.Name())
	}
	if err := m.Ping(context.Background()); err != nil {
		t.Error(err)
	}
}

func TestManager_ProbeFailureFallsBack(t *testing.T) {
	tests := []struct {
		name string
		exec *flakyExecutor
	}{
		{"ping error", &flakyExecutor{pingErr: errors.New("no worker")}},
		{"ping timeout", &flakyExecutor{pingBlock: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			m := NewManager(context.Background(), WithBackground(tt.exec), WithProbeTimeout(20*time.Millisecond))
			defer m.Close()
			if time.Since(start) > 2*time.Second {
				t.Error("probe ignored its timeout")
			}
			if m.BackgroundEnabled() || m.Name() != "sync" {
				t.Errorf("background still enabled: %s", m.Name())
			}
			if !tt.exec.closed.Load() {
				t.Error("rejected executor not closed")
			}

			res, err := m.ProcessStroke(context.Background(), strokeRequest())
			if err != nil || !res.Changed {
				t.Errorf("sync path failed: %v", err)
			}
			if tt.exec.calls.Load() != 0 {
				t.Error("call reached the rejected executor")
			}
		})
	}
}

func TestManager_SyncOnly(t *testing.T) {
	m := NewManager(context.Background(), WithSyncOnly())
	defer m.Close()
	if m.BackgroundEnabled() {
		t.Error("WithSyncOnly left background enabled")
	}
}

// =============================================================================
// Per-call fallback
// =============================================================================

func TestManager_CallFailureFallsBackThenDisables(t *testing.T) {
	flaky := &flakyExecutor{failOps: true}
	m := NewManager(context.Background(), WithBackground(flaky), WithMaxFailures(2))
	defer m.Close()
	if !m.BackgroundEnabled() {
		t.Fatal("probe should pass")
	}

	want, _ := NewSyncExecutor().ProcessStroke(context.Background(), strokeRequest())
	for i := range 3 {
		got, err := m.ProcessStroke(context.Background(), strokeRequest())
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if !bytes.Equal(got.Mask, want.Mask) {
			t.Fatalf("call %d: fallback result differs", i)
		}
	}
	if n := flaky.calls.Load(); n != 2 {
		t.Errorf("background calls = %d, want 2 before disabling", n)
	}
	if m.BackgroundEnabled() || !flaky.closed.Load() {
		t.Error("background not disabled after repeated failures")
	}
}

func TestManager_SuccessResetsFailureStreak(t *testing.T) {
	flaky := &flakyExecutor{}
	m := NewManager(context.Background(), WithBackground(flaky), WithMaxFailures(2))
	defer m.Close()

	flaky.failOps = true
	_, _ = m.ProcessStroke(context.Background(), strokeRequest())
	flaky.failOps = false
	_, _ = m.ProcessStroke(context.Background(), strokeRequest())
	flaky.failOps = true
	_, _ = m.ProcessStroke(context.Background(), strokeRequest())
	if !m.BackgroundEnabled() {
		t.Error("non-consecutive failures disabled background")
	}
}

func TestManager_BadRequestNotRetried(t *testing.T) {
	m := NewManager(context.Background())
	defer m.Close()
	_, err := m.ProcessStroke(context.Background(), StrokeRequest{Mask: Mask{Width: 4, Height: 4}})
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
	if !m.BackgroundEnabled() {
		t.Error("bad request counted as a background failure")
	}
}

func TestManager_CallerCancellation(t *testing.T) {
	m := NewManager(context.Background())
	defer m.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.ValidateMask(ctx, []byte{0}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want Canceled", err)
	}
}

func TestManager_Close(t *testing.T) {
	m := NewManager(context.Background())
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ProcessStroke(context.Background(), strokeRequest()); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestManager_ImplementsExecutor(t *testing.T) {
	var _ Executor = (*Manager)(nil)
	var _ Executor = (*BackgroundExecutor)(nil)
	var _ Executor = (*SyncExecutor)(nil)
}
