// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"sync"
	"time"

	"github.com/gogpu/maskpaint/internal/logging"
)

// Defaults for NewScheduler.
const (
	// DefaultFrameBudget is one 60 Hz refresh.
	DefaultFrameBudget = time.Second / 60

	// DefaultMaxRegions is the number of disjoint regions after which a
	// type escalates to a full redraw.
	DefaultMaxRegions = 10
)

// ErrHandlerPanic wraps a panic recovered from a handler.
var ErrHandlerPanic = errors.New("render: handler panicked")

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	budget       time.Duration
	maxRegions   int
	surface      image.Rectangle
	now          func() time.Time
	requestFrame func()
}

func defaultOptions() options {
	return options{
		budget:     DefaultFrameBudget,
		maxRegions: DefaultMaxRegions,
		now:        time.Now,
	}
}

// WithFrameBudget sets the processing time after which Tick logs an
// overrun.
func WithFrameBudget(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.budget = d
		}
	}
}

// WithMaxRegions sets the escalation threshold.
func WithMaxRegions(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRegions = n
		}
	}
}

// WithSurface sets the surface bounds reported for full redraws.
func WithSurface(r image.Rectangle) Option {
	return func(o *options) { o.surface = r }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRequestFrame sets a hook called once when the first operation of a
// frame is queued, so hosts with an on-demand frame loop can wake up.
func WithRequestFrame(fn func()) Option {
	return func(o *options) { o.requestFrame = fn }
}

// Stats counts scheduler activity since creation.
type Stats struct {
	// Frames is the number of ticks that dispatched at least one type.
	Frames uint64

	// Ops is the number of Schedule calls.
	Ops uint64

	// Coalesced is the number of Schedule calls absorbed by an existing
	// operation of the same type and priority.
	Coalesced uint64

	// Escalations counts per-type full redraws caused by region overflow.
	Escalations uint64

	// Overruns counts ticks that exceeded the frame budget.
	Overruns uint64

	// Failures counts handler errors and panics.
	Failures uint64
}

// pendingType is the accumulated state of one type in the current frame.
type pendingType struct {
	order   int // first-queued position, for priority ties
	ops     []Operation
	byKey   map[Priority]int // priority -> index in ops
	regions []image.Rectangle
	full    bool
}

// Scheduler coalesces redraw operations and dispatches them once per tick.
// Schedule may be called from any goroutine; handlers run on the goroutine
// calling Tick.
type Scheduler struct {
	opts options

	mu       sync.Mutex
	handlers map[OpType]Handler
	pending  map[OpType]*pendingType
	seq      int
	stats    Stats
}

// NewScheduler returns an idle scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Scheduler{
		opts:     o,
		handlers: make(map[OpType]Handler),
		pending:  make(map[OpType]*pendingType),
	}
}

// SetSurface updates the surface bounds, typically after a resize.
func (s *Scheduler) SetSurface(r image.Rectangle) {
	s.mu.Lock()
	s.opts.surface = r
	s.mu.Unlock()
}

// Surface returns the surface bounds.
func (s *Scheduler) Surface() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.surface
}

// Register installs h as the handler for t, replacing any previous one.
// A nil h removes the handler.
func (s *Scheduler) Register(t OpType, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h == nil {
		delete(s.handlers, t)
		return
	}
	s.handlers[t] = h
}

// Schedule queues op for the next tick. An operation with the same type
// and priority as a pending one replaces it; its rectangle is still added
// to the type's dirty region.
func (s *Scheduler) Schedule(op Operation) {
	s.mu.Lock()
	if op.Timestamp.IsZero() {
		op.Timestamp = s.opts.now()
	}
	first := len(s.pending) == 0
	s.stats.Ops++

	pt, ok := s.pending[op.Type]
	if !ok {
		pt = &pendingType{order: s.seq, byKey: make(map[Priority]int)}
		s.seq++
		s.pending[op.Type] = pt
	}
	if i, dup := pt.byKey[op.Priority]; dup {
		pt.ops[i] = op
		s.stats.Coalesced++
	} else {
		pt.byKey[op.Priority] = len(pt.ops)
		pt.ops = append(pt.ops, op)
	}
	if op.Full {
		pt.full = true
	} else if !op.Rect.Empty() {
		pt.regions = append(pt.regions, op.Rect)
	}
	hook := s.opts.requestFrame
	s.mu.Unlock()

	if first && hook != nil {
		hook()
	}
}

// ScheduleRedraw queues a normal-priority redraw of rect for t.
func (s *Scheduler) ScheduleRedraw(t OpType, rect image.Rectangle) {
	s.Schedule(Operation{Type: t, Priority: PriorityNormal, Rect: rect})
}

// ScheduleFull queues a normal-priority full-surface redraw for t.
func (s *Scheduler) ScheduleFull(t OpType) {
	s.Schedule(Operation{Type: t, Priority: PriorityNormal, Full: true})
}

// HasPending reports whether any operation is queued.
func (s *Scheduler) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) > 0
}

// Stats returns a copy of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

type dispatch struct {
	frame    Frame
	handler  Handler
	priority Priority
	order    int
}

// Tick dispatches everything queued since the previous tick and clears
// the pending state. It returns the number of types dispatched.
func (s *Scheduler) Tick() int {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return 0
	}
	start := s.opts.now()
	pending := s.pending
	s.pending = make(map[OpType]*pendingType)
	s.seq = 0
	surface := s.opts.surface
	maxRegions := s.opts.maxRegions

	work := make([]dispatch, 0, len(pending))
	var escalations int
	for t, pt := range pending {
		slices.SortStableFunc(pt.ops, func(a, b Operation) int { return cmp.Compare(b.Priority, a.Priority) })
		f := Frame{Type: t, Ops: pt.ops, Full: pt.full}
		if !f.Full {
			f.Regions = MergeRegions(pt.regions)
			if len(f.Regions) > maxRegions {
				f.Full = true
				escalations++
			}
		}
		if f.Full {
			f.Regions = nil
			if !surface.Empty() {
				f.Regions = []image.Rectangle{surface}
			}
		}
		work = append(work, dispatch{
			frame:    f,
			handler:  s.handlers[t],
			priority: pt.ops[0].Priority,
			order:    pt.order,
		})
	}
	s.stats.Escalations += uint64(escalations)
	s.mu.Unlock()

	slices.SortFunc(work, func(a, b dispatch) int {
		if c := cmp.Compare(b.priority, a.priority); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})

	log := logging.Logger()
	var failures uint64
	dispatched := 0
	for _, d := range work {
		if d.handler == nil {
			log.Debug("render: no handler registered", "type", string(d.frame.Type))
			continue
		}
		dispatched++
		if err := invoke(d.handler, d.frame); err != nil {
			failures++
			log.Error("render: handler failed", "type", string(d.frame.Type), "err", err)
		}
	}

	elapsed := s.opts.now().Sub(start)

	s.mu.Lock()
	s.stats.Failures += failures
	if dispatched > 0 {
		s.stats.Frames++
	}
	overrun := elapsed > s.opts.budget
	if overrun {
		s.stats.Overruns++
	}
	budget := s.opts.budget
	s.mu.Unlock()

	if overrun {
		log.Warn("render: frame over budget", "elapsed", elapsed, "budget", budget, "types", len(work))
	}
	return dispatched
}

func invoke(h Handler, f Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h(f)
}

// Run calls Tick every interval until ctx is done, for hosts without their
// own frame loop. It returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultFrameBudget
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
}
