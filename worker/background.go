// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package worker

import (
	"context"
	"fmt"
	"image"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/maskpaint/history"
	"github.com/gogpu/maskpaint/internal/parallel"
)

const pong = "pong"

// response is the reply to one request, matched by id.
type response struct {
	id    uint64
	value any
	err   error
}

// BackgroundExecutor runs operations on goroutines owned by the executor.
// Each call is a message with a unique id; the reply is routed back to
// the waiting caller through a pending table. Requests and replies carry
// copies, never the caller's buffers.
type BackgroundExecutor struct {
	// jobs runs one request at a time, like a dedicated worker thread.
	jobs *parallel.WorkerPool

	// scan parallelises tile scans and exports inside a job. It is
	// separate from jobs so a job never waits on its own pool.
	scan *parallel.WorkerPool

	mu      sync.Mutex
	pending map[uint64]chan response
	nextID  atomic.Uint64
	closed  atomic.Bool
}

// NewBackgroundExecutor starts a background executor using up to workers
// goroutines for parallel scans. workers <= 0 selects GOMAXPROCS.
func NewBackgroundExecutor(workers int) *BackgroundExecutor {
	return &BackgroundExecutor{
		jobs:    parallel.NewWorkerPool(1),
		scan:    parallel.NewWorkerPool(workers),
		pending: make(map[uint64]chan response),
	}
}

// Name implements Executor.
func (*BackgroundExecutor) Name() string { return "background" }

// Pending returns the number of calls awaiting a reply.
func (b *BackgroundExecutor) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// call posts fn as a message and waits for its reply or ctx.
func (b *BackgroundExecutor) call(ctx context.Context, fn func() (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.closed.Load() {
		return nil, ErrClosed
	}

	id := b.nextID.Add(1)
	reply := make(chan response, 1)
	b.mu.Lock()
	b.pending[id] = reply
	b.mu.Unlock()

	ok := b.jobs.Submit(func() {
		v, err := recovered(fn)
		b.resolve(response{id: id, value: v, err: err})
	})
	if !ok {
		b.forget(id)
		return nil, ErrClosed
	}

	select {
	case r := <-reply:
		return r.value, r.err
	case <-ctx.Done():
		b.forget(id)
		return nil, ctx.Err()
	}
}

func (b *BackgroundExecutor) resolve(r response) {
	b.mu.Lock()
	reply, ok := b.pending[r.id]
	delete(b.pending, r.id)
	b.mu.Unlock()
	if ok {
		reply <- r
	}
}

func (b *BackgroundExecutor) forget(id uint64) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

func recovered(fn func() (any, error)) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("%w: panic: %v", ErrBackgroundFailure, r)
		}
	}()
	return fn()
}

// Ping implements Executor.
func (b *BackgroundExecutor) Ping(ctx context.Context) error {
	v, err := b.call(ctx, func() (any, error) { return pong, nil })
	if err != nil {
		return err
	}
	if v != pong {
		return fmt.Errorf("%w: unexpected ping reply %v", ErrBackgroundFailure, v)
	}
	return nil
}

// ProcessStroke implements Executor.
func (b *BackgroundExecutor) ProcessStroke(ctx context.Context, req StrokeRequest) (StrokeResult, error) {
	if err := req.Mask.check(); err != nil {
		return StrokeResult{}, err
	}
	m := req.Mask.clone()
	s := req.Stroke
	s.Points = slices.Clone(s.Points)
	v, err := b.call(ctx, func() (any, error) { return applyStroke(m, s), nil })
	if err != nil {
		return StrokeResult{}, err
	}
	return v.(StrokeResult), nil
}

// ApplyStrokePath implements Executor.
func (b *BackgroundExecutor) ApplyStrokePath(ctx context.Context, req PathRequest) (StrokeResult, error) {
	if err := req.Mask.check(); err != nil {
		return StrokeResult{}, err
	}
	req.Mask = req.Mask.clone()
	req.Points = slices.Clone(req.Points)
	v, err := b.call(ctx, func() (any, error) { return applyPath(req), nil })
	if err != nil {
		return StrokeResult{}, err
	}
	return v.(StrokeResult), nil
}

// CreateCheckpoint implements Executor. The tile occupancy scan is split
// across the scan pool.
func (b *BackgroundExecutor) CreateCheckpoint(ctx context.Context, req CheckpointRequest) (history.Checkpoint, error) {
	if err := req.Mask.check(); err != nil {
		return history.Checkpoint{}, err
	}
	req.Mask = req.Mask.clone()
	v, err := b.call(ctx, func() (any, error) { return checkpoint(b.scan, req) })
	if err != nil {
		return history.Checkpoint{}, err
	}
	return v.(history.Checkpoint), nil
}

// ExportMask implements Executor.
func (b *BackgroundExecutor) ExportMask(ctx context.Context, req ExportRequest) (*image.NRGBA, error) {
	if err := req.Mask.check(); err != nil {
		return nil, err
	}
	req.Mask = req.Mask.clone()
	v, err := b.call(ctx, func() (any, error) { return export(b.scan, req), nil })
	if err != nil {
		return nil, err
	}
	return v.(*image.NRGBA), nil
}

// ValidateMask implements Executor.
func (b *BackgroundExecutor) ValidateMask(ctx context.Context, mask []byte) (Validation, error) {
	data := slices.Clone(mask)
	v, err := b.call(ctx, func() (any, error) { return validate(data), nil })
	if err != nil {
		return Validation{}, err
	}
	return v.(Validation), nil
}

// Close rejects every pending call with ErrClosed and stops the pools.
// It is safe to call more than once.
func (b *BackgroundExecutor) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	b.mu.Lock()
	for id, reply := range b.pending {
		reply <- response{id: id, err: ErrClosed}
		delete(b.pending, id)
	}
	b.mu.Unlock()
	b.jobs.Close()
	b.scan.Close()
	return nil
}
