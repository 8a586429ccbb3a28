package worker

import (
	"context"
	"image"

	"github.com/gogpu/maskpaint/history"
)

// SyncExecutor runs every operation on the calling goroutine.
type SyncExecutor struct{}

// NewSyncExecutor returns the synchronous executor.
func NewSyncExecutor() *SyncExecutor { return &SyncExecutor{} }

// Name implements Executor.
func (*SyncExecutor) Name() string { return "sync" }

// Ping implements Executor.
func (*SyncExecutor) Ping(ctx context.Context) error { return ctx.Err() }

// ProcessStroke implements Executor.
func (*SyncExecutor) ProcessStroke(ctx context.Context, req StrokeRequest) (StrokeResult, error) {
	if err := ready(ctx, req.Mask); err != nil {
		return StrokeResult{}, err
	}
	return applyStroke(req.Mask.clone(), req.Stroke), nil
}

// ApplyStrokePath implements Executor.
func (*SyncExecutor) ApplyStrokePath(ctx context.Context, req PathRequest) (StrokeResult, error) {
	if err := ready(ctx, req.Mask); err != nil {
		return StrokeResult{}, err
	}
	req.Mask = req.Mask.clone()
	return applyPath(req), nil
}

// CreateCheckpoint implements Executor.
func (*SyncExecutor) CreateCheckpoint(ctx context.Context, req CheckpointRequest) (history.Checkpoint, error) {
	if err := ready(ctx, req.Mask); err != nil {
		return history.Checkpoint{}, err
	}
	return checkpoint(nil, req)
}

// ExportMask implements Executor.
func (*SyncExecutor) ExportMask(ctx context.Context, req ExportRequest) (*image.NRGBA, error) {
	if err := ready(ctx, req.Mask); err != nil {
		return nil, err
	}
	return export(nil, req), nil
}

// ValidateMask implements Executor.
func (*SyncExecutor) ValidateMask(ctx context.Context, mask []byte) (Validation, error) {
	if err := ctx.Err(); err != nil {
		return Validation{}, err
	}
	return validate(mask), nil
}

// Close implements Executor.
func (*SyncExecutor) Close() error { return nil }

func ready(ctx context.Context, m Mask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.check()
}
