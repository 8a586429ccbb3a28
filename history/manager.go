// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package history

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/maskpaint/internal/logging"
)

// Defaults for NewManager.
const (
	DefaultMemoryLimitMB = 100
	DefaultStrokeFloor   = 50
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	limitMB     float64
	strokeFloor int
}

func defaultOptions() options {
	return options{
		limitMB:     DefaultMemoryLimitMB,
		strokeFloor: DefaultStrokeFloor,
	}
}

// WithMemoryLimitMB sets the budget enforced after every AddStroke.
// A non-positive limit disables automatic enforcement.
func WithMemoryLimitMB(mb float64) Option {
	return func(o *options) { o.limitMB = mb }
}

// WithStrokeFloor sets how many strokes eviction always keeps.
func WithStrokeFloor(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.strokeFloor = n
		}
	}
}

// State is a read-only summary of the history.
type State struct {
	CanUndo         bool
	CanRedo         bool
	StrokeCount     int
	CurrentIndex    int
	CheckpointCount int
	MemoryBytes     int64
}

// EvictionReport describes what ManageMemory removed.
type EvictionReport struct {
	CheckpointsEvicted int
	StrokesEvicted     int
	BytesBefore        int64
	BytesAfter         int64
}

// Evicted reports whether anything was removed.
func (r EvictionReport) Evicted() bool {
	return r.CheckpointsEvicted > 0 || r.StrokesEvicted > 0
}

// Manager is the undo/redo history. It is not safe for concurrent use.
type Manager struct {
	opts options

	strokes     []Stroke
	checkpoints []Checkpoint
	current     int
	ids         map[string]struct{}

	lastEviction EvictionReport
}

// NewManager returns an empty history.
func NewManager(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager{
		opts:    o,
		current: -1,
		ids:     make(map[string]struct{}),
	}
}

// AddStroke appends s after the cursor. Strokes beyond the cursor (the
// redo branch) are discarded along with checkpoints taken inside it, so an
// undone stroke may be added again with its id. Nothing changes if s is
// rejected. The memory budget is enforced afterwards; see LastEviction.
func (m *Manager) AddStroke(s Stroke) error {
	if s.ID == "" || len(s.Points) == 0 {
		return ErrInvalidStroke
	}
	if _, dup := m.ids[s.ID]; dup && !m.inRedoBranch(s.ID) {
		return fmt.Errorf("%w: stroke %s", ErrDuplicateID, s.ID)
	}

	if m.current < len(m.strokes)-1 {
		for _, d := range m.strokes[m.current+1:] {
			delete(m.ids, d.ID)
		}
		clear(m.strokes[m.current+1:])
		m.strokes = m.strokes[:m.current+1]
		m.dropCheckpoints(func(cp Checkpoint) bool { return cp.StrokeIndex > m.current })
	}

	m.strokes = append(m.strokes, s)
	m.ids[s.ID] = struct{}{}
	m.current = len(m.strokes) - 1

	m.lastEviction = EvictionReport{}
	if m.opts.limitMB > 0 {
		m.lastEviction = m.ManageMemory(m.opts.limitMB)
	}
	return nil
}

// inRedoBranch reports whether id belongs to a stroke after the cursor,
// which AddStroke discards before appending.
func (m *Manager) inRedoBranch(id string) bool {
	for _, s := range m.strokes[m.current+1:] {
		if s.ID == id {
			return true
		}
	}
	return false
}

// LastEviction returns what the budget enforcement of the most recent
// AddStroke removed.
func (m *Manager) LastEviction() EvictionReport { return m.lastEviction }

// Undo moves the cursor back and returns the stroke that was undone.
func (m *Manager) Undo() (Stroke, bool) {
	if m.current < 0 {
		return Stroke{}, false
	}
	s := m.strokes[m.current]
	m.current--
	return s, true
}

// Redo moves the cursor forward and returns the stroke to re-apply.
func (m *Manager) Redo() (Stroke, bool) {
	if m.current >= len(m.strokes)-1 {
		return Stroke{}, false
	}
	m.current++
	return m.strokes[m.current], true
}

// AddCheckpoint inserts cp in stroke-index order, replacing any
// checkpoint at the same index.
func (m *Manager) AddCheckpoint(cp Checkpoint) error {
	if cp.StrokeIndex < -1 || cp.StrokeIndex > len(m.strokes)-1 {
		return fmt.Errorf("%w: %d not in [-1, %d]", ErrCheckpointRange, cp.StrokeIndex, len(m.strokes)-1)
	}
	if cp.ID == "" || cp.Snapshot == nil {
		return ErrInvalidCheckpoint
	}
	i, found := slices.BinarySearchFunc(m.checkpoints, cp.StrokeIndex, func(c Checkpoint, idx int) int {
		return c.StrokeIndex - idx
	})
	for j, c := range m.checkpoints {
		if c.ID == cp.ID && !(found && j == i) {
			return fmt.Errorf("%w: checkpoint %s", ErrDuplicateID, cp.ID)
		}
	}
	if found {
		m.checkpoints[i] = cp
		return nil
	}
	m.checkpoints = slices.Insert(m.checkpoints, i, cp)
	return nil
}

// NearestCheckpoint returns the checkpoint with the largest stroke index
// not above idx.
func (m *Manager) NearestCheckpoint(idx int) (Checkpoint, bool) {
	i, found := slices.BinarySearchFunc(m.checkpoints, idx, func(c Checkpoint, idx int) int {
		return c.StrokeIndex - idx
	})
	if found {
		return m.checkpoints[i], true
	}
	if i == 0 {
		return Checkpoint{}, false
	}
	return m.checkpoints[i-1], true
}

// StrokesFromCheckpoint returns the strokes in (cp.StrokeIndex, target]
// in order, for replay on top of the checkpoint's snapshot.
func (m *Manager) StrokesFromCheckpoint(cp Checkpoint, target int) []Stroke {
	return m.strokeRange(cp.StrokeIndex+1, target)
}

// StrokesThrough returns strokes [0, target], for replay from an empty
// mask when no checkpoint is available.
func (m *Manager) StrokesThrough(target int) []Stroke {
	return m.strokeRange(0, target)
}

func (m *Manager) strokeRange(from, to int) []Stroke {
	from = max(from, 0)
	to = min(to, len(m.strokes)-1)
	if from > to {
		return nil
	}
	return slices.Clone(m.strokes[from : to+1])
}

// MemoryUsage returns the accounted history size in bytes.
func (m *Manager) MemoryUsage() int64 {
	var n int64
	for _, s := range m.strokes {
		n += s.MemoryBytes()
	}
	for _, c := range m.checkpoints {
		n += c.MemoryBytes()
	}
	return n
}

// ManageMemory evicts history until usage fits in limitMB megabytes.
// Checkpoints go first, oldest first, always keeping the newest one. Then
// the oldest strokes go, never below the stroke floor; the cursor and all
// checkpoint indices shift down by the number evicted and checkpoints
// left below -1 are dropped. Undo past evicted strokes is lost.
func (m *Manager) ManageMemory(limitMB float64) EvictionReport {
	limit := int64(limitMB * 1024 * 1024)
	usage := m.MemoryUsage()
	r := EvictionReport{BytesBefore: usage, BytesAfter: usage}
	if usage <= limit {
		return r
	}

	for usage > limit && len(m.checkpoints) > 1 {
		usage -= m.checkpoints[0].MemoryBytes()
		clear(m.checkpoints[:1])
		m.checkpoints = m.checkpoints[1:]
		r.CheckpointsEvicted++
	}

	evictable := len(m.strokes) - m.opts.strokeFloor
	n := 0
	for usage > limit && n < evictable {
		usage -= m.strokes[n].MemoryBytes()
		n++
	}
	if n > 0 {
		for _, s := range m.strokes[:n] {
			delete(m.ids, s.ID)
		}
		m.strokes = slices.Delete(m.strokes, 0, n)
		m.current = max(m.current-n, -1)
		for i := range m.checkpoints {
			m.checkpoints[i].StrokeIndex -= n
		}
		before := len(m.checkpoints)
		m.dropCheckpoints(func(cp Checkpoint) bool { return cp.StrokeIndex < -1 })
		r.CheckpointsEvicted += before - len(m.checkpoints)
		r.StrokesEvicted = n
		usage = m.MemoryUsage()
	}
	r.BytesAfter = usage

	log := logging.Logger()
	if r.StrokesEvicted > 0 {
		log.Warn("history: oldest strokes evicted, undo past them is no longer possible",
			"strokes", r.StrokesEvicted, "checkpoints", r.CheckpointsEvicted,
			"bytes", r.BytesAfter, "limit", limit)
	} else if r.CheckpointsEvicted > 0 {
		log.Debug("history: checkpoints evicted", "count", r.CheckpointsEvicted, "bytes", r.BytesAfter)
	}
	return r
}

func (m *Manager) dropCheckpoints(drop func(Checkpoint) bool) {
	m.checkpoints = slices.DeleteFunc(m.checkpoints, drop)
}

// CheckIntegrity verifies the cursor range, id uniqueness, checkpoint
// ranges and checkpoint ordering. All failures are joined and wrap
// ErrIntegrity.
func (m *Manager) CheckIntegrity() error {
	var errs []error
	if m.current < -1 || m.current > len(m.strokes)-1 {
		errs = append(errs, fmt.Errorf("%w: current index %d not in [-1, %d]", ErrIntegrity, m.current, len(m.strokes)-1))
	}
	seen := make(map[string]struct{}, len(m.strokes))
	for i, s := range m.strokes {
		if _, dup := seen[s.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate stroke id %s at %d", ErrIntegrity, s.ID, i))
		}
		seen[s.ID] = struct{}{}
	}
	clear(seen)
	for i, c := range m.checkpoints {
		if _, dup := seen[c.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate checkpoint id %s", ErrIntegrity, c.ID))
		}
		seen[c.ID] = struct{}{}
		if c.StrokeIndex < -1 || c.StrokeIndex > len(m.strokes)-1 {
			errs = append(errs, fmt.Errorf("%w: checkpoint %s index %d out of range", ErrIntegrity, c.ID, c.StrokeIndex))
		}
		if i > 0 && m.checkpoints[i-1].StrokeIndex >= c.StrokeIndex {
			errs = append(errs, fmt.Errorf("%w: checkpoints out of order at %d", ErrIntegrity, i))
		}
	}
	return errors.Join(errs...)
}

// State returns a summary of the history.
func (m *Manager) State() State {
	return State{
		CanUndo:         m.current >= 0,
		CanRedo:         m.current < len(m.strokes)-1,
		StrokeCount:     len(m.strokes),
		CurrentIndex:    m.current,
		CheckpointCount: len(m.checkpoints),
		MemoryBytes:     m.MemoryUsage(),
	}
}

// CurrentIndex returns the index of the last applied stroke, or -1.
func (m *Manager) CurrentIndex() int { return m.current }

// Len returns the number of recorded strokes.
func (m *Manager) Len() int { return len(m.strokes) }

// Stroke returns the stroke at index i.
func (m *Manager) Stroke(i int) (Stroke, bool) {
	if i < 0 || i >= len(m.strokes) {
		return Stroke{}, false
	}
	return m.strokes[i], true
}

// Strokes returns a copy of the stroke list.
func (m *Manager) Strokes() []Stroke { return slices.Clone(m.strokes) }

// Checkpoints returns a copy of the checkpoint list.
func (m *Manager) Checkpoints() []Checkpoint { return slices.Clone(m.checkpoints) }

// Clear forgets all strokes and checkpoints.
func (m *Manager) Clear() {
	m.strokes = nil
	m.checkpoints = nil
	m.current = -1
	clear(m.ids)
	m.lastEviction = EvictionReport{}
}

// Reset clears the history and installs baseline as the checkpoint at
// index -1.
func (m *Manager) Reset(baseline Snapshot) error {
	m.Clear()
	if baseline == nil {
		return nil
	}
	return m.AddCheckpoint(NewCheckpoint(-1, baseline))
}
