// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package history records brush strokes and mask checkpoints for undo and
// redo.
//
// A Manager keeps an ordered list of immutable strokes, a cursor
// (CurrentIndex) into it, and checkpoints sorted by the stroke index they
// were taken at. It never touches pixel data: to rebuild the mask for an
// index, restore NearestCheckpoint and replay StrokesFromCheckpoint.
//
// Checkpoints hold a Snapshot, either a full copy of the mask or a tiled
// snapshot that stores only tiles containing painted pixels in one byte
// arena. Memory is accounted exactly as
//
//	Σ(len(points)*16 + 64) over strokes + Σ(snapshot bytes + 64) over checkpoints
//
// and ManageMemory evicts checkpoints, then strokes, to stay within a
// budget. Evicting strokes forfeits undo past the eviction point.
package history
