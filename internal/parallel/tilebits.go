package parallel

import (
	"math/bits"
	"sync/atomic"
)

// TileBitmap records one bit per tile, packed into atomic uint64 words.
// Bit index = ty*tilesX + tx. All methods are lock-free.
type TileBitmap struct {
	words  []atomic.Uint64
	tilesX int
	tilesY int
}

// NewTileBitmap creates an all-clear bitmap for the given tile grid.
// Returns nil if either dimension is not positive.
func NewTileBitmap(tilesX, tilesY int) *TileBitmap {
	if tilesX <= 0 || tilesY <= 0 {
		return nil
	}
	total := tilesX * tilesY
	return &TileBitmap{
		words:  make([]atomic.Uint64, (total+63)/64),
		tilesX: tilesX,
		tilesY: tilesY,
	}
}

// Mark sets the bit for tile (tx, ty). Out-of-range tiles are ignored.
func (b *TileBitmap) Mark(tx, ty int) {
	if tx < 0 || tx >= b.tilesX || ty < 0 || ty >= b.tilesY {
		return
	}
	idx := ty*b.tilesX + tx
	b.words[idx/64].Or(1 << (idx & 63))
}

// IsSet reports whether tile (tx, ty) is marked.
func (b *TileBitmap) IsSet(tx, ty int) bool {
	if tx < 0 || tx >= b.tilesX || ty < 0 || ty >= b.tilesY {
		return false
	}
	idx := ty*b.tilesX + tx
	return b.words[idx/64].Load()&(1<<(idx&63)) != 0
}

// Count returns the number of marked tiles.
func (b *TileBitmap) Count() int {
	n := 0
	for i := range b.words {
		n += bits.OnesCount64(b.words[i].Load())
	}
	return n
}

// Clear unmarks every tile.
func (b *TileBitmap) Clear() {
	for i := range b.words {
		b.words[i].Store(0)
	}
}

// Bools returns the bitmap as a row-major []bool of length tilesX*tilesY.
// A nil bitmap yields nil.
func (b *TileBitmap) Bools() []bool {
	if b == nil {
		return nil
	}
	out := make([]bool, b.tilesX*b.tilesY)
	for wordIdx := range b.words {
		word := b.words[wordIdx].Load()
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			if idx := wordIdx*64 + bit; idx < len(out) {
				out[idx] = true
			}
			word &^= 1 << bit
		}
	}
	return out
}

// TilesX returns the number of tile columns.
func (b *TileBitmap) TilesX() int { return b.tilesX }

// TilesY returns the number of tile rows.
func (b *TileBitmap) TilesY() int { return b.tilesY }
