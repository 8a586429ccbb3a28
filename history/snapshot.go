// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package history

import "fmt"

// DefaultTileSize is the edge length of tiled snapshot tiles.
const DefaultTileSize = 64

// Snapshot is an immutable copy of a mask buffer.
type Snapshot interface {
	// Restore overwrites dst with the snapshot contents. dst must have the
	// snapshot's width*height length.
	Restore(dst []byte) error

	// Bytes returns the accounted pixel storage of the snapshot.
	Bytes() int
}

// FullSnapshot stores every byte of the mask.
type FullSnapshot struct {
	width, height int
	data          []byte
}

// NewFullSnapshot copies mask into a new snapshot.
func NewFullSnapshot(mask []byte, width, height int) (*FullSnapshot, error) {
	if width <= 0 || height <= 0 || len(mask) != width*height {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrSnapshotSize, len(mask), width, height)
	}
	data := make([]byte, len(mask))
	copy(data, mask)
	return &FullSnapshot{width: width, height: height, data: data}, nil
}

// Restore implements Snapshot.
func (s *FullSnapshot) Restore(dst []byte) error {
	if len(dst) != len(s.data) {
		return fmt.Errorf("%w: restore %d bytes into %d", ErrSnapshotSize, len(s.data), len(dst))
	}
	copy(dst, s.data)
	return nil
}

// Bytes implements Snapshot.
func (s *FullSnapshot) Bytes() int { return len(s.data) }

// TiledSnapshot stores only tiles that contain a non-zero byte. Tiles are
// packed row by row into a single arena; offsets maps a tile index
// (ty*tilesX+tx) to its arena offset, or -1 for an all-zero tile. Edge
// tiles are stored at their exact clipped size, so Bytes is the number of
// mask bytes actually retained.
type TiledSnapshot struct {
	width, height  int
	tileSize       int
	tilesX, tilesY int
	offsets        []int32
	arena          []byte
}

// NewTiledSnapshot scans mask for occupied tiles and snapshots them.
// A non-positive tileSize selects DefaultTileSize.
func NewTiledSnapshot(mask []byte, width, height, tileSize int) (*TiledSnapshot, error) {
	return BuildTiledSnapshot(mask, width, height, tileSize, nil)
}

// BuildTiledSnapshot snapshots mask using a precomputed occupancy list, as
// produced by a parallel tile scan. occupied is indexed ty*tilesX+tx; nil
// means scan here. Tiles marked unoccupied are treated as all zero.
func BuildTiledSnapshot(mask []byte, width, height, tileSize int, occupied []bool) (*TiledSnapshot, error) {
	if width <= 0 || height <= 0 || len(mask) != width*height {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrSnapshotSize, len(mask), width, height)
	}
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	s := &TiledSnapshot{
		width:    width,
		height:   height,
		tileSize: tileSize,
		tilesX:   (width + tileSize - 1) / tileSize,
		tilesY:   (height + tileSize - 1) / tileSize,
	}
	n := s.tilesX * s.tilesY
	if occupied != nil && len(occupied) != n {
		return nil, fmt.Errorf("%w: occupancy has %d tiles, want %d", ErrSnapshotSize, len(occupied), n)
	}

	s.offsets = make([]int32, n)
	size := 0
	for i := range s.offsets {
		tx, ty := i%s.tilesX, i/s.tilesX
		var occ bool
		if occupied != nil {
			occ = occupied[i]
		} else {
			occ = s.tileOccupied(mask, tx, ty)
		}
		if !occ {
			s.offsets[i] = -1
			continue
		}
		w, h := s.tileDims(tx, ty)
		s.offsets[i] = int32(size)
		size += w * h
	}

	s.arena = make([]byte, size)
	for i, off := range s.offsets {
		if off < 0 {
			continue
		}
		tx, ty := i%s.tilesX, i/s.tilesX
		w, h := s.tileDims(tx, ty)
		x0, y0 := tx*tileSize, ty*tileSize
		dst := s.arena[off:]
		for row := range h {
			src := (y0+row)*width + x0
			copy(dst[row*w:row*w+w], mask[src:src+w])
		}
	}
	return s, nil
}

func (s *TiledSnapshot) tileDims(tx, ty int) (w, h int) {
	w = min(s.tileSize, s.width-tx*s.tileSize)
	h = min(s.tileSize, s.height-ty*s.tileSize)
	return w, h
}

func (s *TiledSnapshot) tileOccupied(mask []byte, tx, ty int) bool {
	w, h := s.tileDims(tx, ty)
	x0, y0 := tx*s.tileSize, ty*s.tileSize
	for row := range h {
		start := (y0+row)*s.width + x0
		for _, v := range mask[start : start+w] {
			if v != 0 {
				return true
			}
		}
	}
	return false
}

// Restore implements Snapshot.
func (s *TiledSnapshot) Restore(dst []byte) error {
	if len(dst) != s.width*s.height {
		return fmt.Errorf("%w: restore %dx%d into %d bytes", ErrSnapshotSize, s.width, s.height, len(dst))
	}
	clear(dst)
	for i, off := range s.offsets {
		if off < 0 {
			continue
		}
		tx, ty := i%s.tilesX, i/s.tilesX
		w, h := s.tileDims(tx, ty)
		x0, y0 := tx*s.tileSize, ty*s.tileSize
		src := s.arena[off:]
		for row := range h {
			d := (y0+row)*s.width + x0
			copy(dst[d:d+w], src[row*w:row*w+w])
		}
	}
	return nil
}

// Bytes implements Snapshot.
func (s *TiledSnapshot) Bytes() int { return len(s.arena) }

// TileSize returns the tile edge length.
func (s *TiledSnapshot) TileSize() int { return s.tileSize }

// Tiles returns the tile grid dimensions.
func (s *TiledSnapshot) Tiles() (x, y int) { return s.tilesX, s.tilesY }

// OccupiedTiles returns how many tiles are stored.
func (s *TiledSnapshot) OccupiedTiles() int {
	n := 0
	for _, off := range s.offsets {
		if off >= 0 {
			n++
		}
	}
	return n
}
