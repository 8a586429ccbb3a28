// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package worker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/maskpaint/history"
	"github.com/gogpu/maskpaint/internal/logging"
)

// Defaults for NewManager.
const (
	DefaultProbeTimeout = 2 * time.Second
	DefaultMaxFailures  = 3
	DefaultCallTimeout  = 10 * time.Second
)

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	probeTimeout time.Duration
	callTimeout  time.Duration
	maxFailures  int
	workers      int
	background   Executor
	syncOnly     bool
}

func defaultManagerOptions() managerOptions {
	return managerOptions{
		probeTimeout: DefaultProbeTimeout,
		callTimeout:  DefaultCallTimeout,
		maxFailures:  DefaultMaxFailures,
	}
}

// WithProbeTimeout bounds the startup capability probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(o *managerOptions) {
		if d > 0 {
			o.probeTimeout = d
		}
	}
}

// WithCallTimeout bounds each background call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(o *managerOptions) {
		if d >= 0 {
			o.callTimeout = d
		}
	}
}

// WithMaxFailures sets how many consecutive background failures disable
// background dispatch.
func WithMaxFailures(n int) Option {
	return func(o *managerOptions) {
		if n > 0 {
			o.maxFailures = n
		}
	}
}

// WithWorkers sets the scan parallelism of the default background
// executor.
func WithWorkers(n int) Option {
	return func(o *managerOptions) { o.workers = n }
}

// WithBackground replaces the default background executor.
func WithBackground(e Executor) Option {
	return func(o *managerOptions) { o.background = e }
}

// WithSyncOnly disables background execution entirely.
func WithSyncOnly() Option {
	return func(o *managerOptions) { o.syncOnly = true }
}

// Manager dispatches operations to the background executor when it is
// available and to the synchronous executor otherwise. Manager itself
// implements Executor. Its methods are safe for concurrent use.
type Manager struct {
	opts managerOptions
	syncExec *SyncExecutor

	mu         sync.Mutex
	background Executor
	failures   int
	closed     bool
}

// NewManager creates a manager and probes background capability under
// the probe timeout. A failed probe is not an error: the manager simply
// runs everything synchronously.
func NewManager(ctx context.Context, opts ...Option) *Manager {
	o := defaultManagerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	m := &Manager{opts: o, syncExec: NewSyncExecutor()}
	if o.syncOnly {
		return m
	}

	bg := o.background
	if bg == nil {
		bg = NewBackgroundExecutor(o.workers)
	}
	pctx, cancel := context.WithTimeout(ctx, o.probeTimeout)
	defer cancel()
	start := time.Now()
	if err := bg.Ping(pctx); err != nil {
		logging.Logger().Info("worker: background execution unavailable, using synchronous path",
			"executor", bg.Name(), "err", err)
		_ = bg.Close()
		return m
	}
	logging.Logger().Debug("worker: background probe succeeded",
		"executor", bg.Name(), "elapsed", time.Since(start))
	m.background = bg
	return m
}

// Name implements Executor; it reports the active strategy.
func (m *Manager) Name() string {
	if bg := m.active(); bg != nil {
		return bg.Name()
	}
	return m.syncExec.Name()
}

// BackgroundEnabled reports whether calls are currently dispatched to the
// background executor.
func (m *Manager) BackgroundEnabled() bool { return m.active() != nil }

func (m *Manager) active() Executor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	return m.background
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// succeeded resets the failure streak.
func (m *Manager) succeeded() {
	m.mu.Lock()
	m.failures = 0
	m.mu.Unlock()
}

// failed records a background failure and disables background dispatch
// after too many in a row.
func (m *Manager) failed(op string, err error) {
	m.mu.Lock()
	m.failures++
	disable := m.background != nil && m.failures >= m.opts.maxFailures
	var bg Executor
	if disable {
		bg = m.background
		m.background = nil
	}
	failures := m.failures
	m.mu.Unlock()

	log := logging.Logger()
	log.Warn("worker: background call failed, falling back to synchronous execution",
		"op", op, "failures", failures, "err", err)
	if disable {
		log.Warn("worker: background execution disabled for this session", "failures", failures)
		_ = bg.Close()
	}
}

// dispatch runs fn on the background executor if it is enabled, falling
// back to the synchronous executor on failure.
func dispatch[T any](ctx context.Context, m *Manager, op string, fn func(context.Context, Executor) (T, error)) (T, error) {
	var zero T
	if m.isClosed() {
		return zero, ErrClosed
	}

	if bg := m.active(); bg != nil {
		cctx, cancel := ctx, context.CancelFunc(func() {})
		if m.opts.callTimeout > 0 {
			cctx, cancel = context.WithTimeout(ctx, m.opts.callTimeout)
		}
		v, err := fn(cctx, bg)
		cancel()
		switch {
		case err == nil:
			m.succeeded()
			return v, nil
		case ctx.Err() != nil:
			return zero, ctx.Err()
		case errors.Is(err, ErrBadRequest):
			return zero, err
		case errors.Is(err, ErrClosed) && m.isClosed():
			return zero, ErrClosed
		}
		if !errors.Is(err, ErrBackgroundFailure) {
			err = fmt.Errorf("%w: %w", ErrBackgroundFailure, err)
		}
		m.failed(op, err)
	}
	return fn(ctx, m.syncExec)
}

// Ping implements Executor.
func (m *Manager) Ping(ctx context.Context) error {
	_, err := dispatch(ctx, m, "ping", func(ctx context.Context, e Executor) (struct{}, error) {
		return struct{}{}, e.Ping(ctx)
	})
	return err
}

// ProcessStroke implements Executor.
func (m *Manager) ProcessStroke(ctx context.Context, req StrokeRequest) (StrokeResult, error) {
	return dispatch(ctx, m, "process-stroke", func(ctx context.Context, e Executor) (StrokeResult, error) {
		return e.ProcessStroke(ctx, req)
	})
}

// ApplyStrokePath implements Executor.
func (m *Manager) ApplyStrokePath(ctx context.Context, req PathRequest) (StrokeResult, error) {
	return dispatch(ctx, m, "apply-stroke-path", func(ctx context.Context, e Executor) (StrokeResult, error) {
		return e.ApplyStrokePath(ctx, req)
	})
}

// CreateCheckpoint implements Executor.
func (m *Manager) CreateCheckpoint(ctx context.Context, req CheckpointRequest) (history.Checkpoint, error) {
	return dispatch(ctx, m, "create-checkpoint", func(ctx context.Context, e Executor) (history.Checkpoint, error) {
		return e.CreateCheckpoint(ctx, req)
	})
}

// ExportMask implements Executor.
func (m *Manager) ExportMask(ctx context.Context, req ExportRequest) (*image.NRGBA, error) {
	return dispatch(ctx, m, "export-mask", func(ctx context.Context, e Executor) (*image.NRGBA, error) {
		return e.ExportMask(ctx, req)
	})
}

// ValidateMask implements Executor.
func (m *Manager) ValidateMask(ctx context.Context, mask []byte) (Validation, error) {
	return dispatch(ctx, m, "validate-mask", func(ctx context.Context, e Executor) (Validation, error) {
		return e.ValidateMask(ctx, mask)
	})
}

// Close shuts down the background executor, rejecting in-flight calls
// with ErrClosed. Later calls fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	bg := m.background
	m.background = nil
	m.mu.Unlock()
	if bg != nil {
		return bg.Close()
	}
	return nil
}
