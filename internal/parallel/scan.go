package parallel

// ScanOccupied marks every tileSize×tileSize tile of mask that contains at
// least one non-zero byte. Each tile row is scanned as a separate job on
// pool; with a nil pool the scan runs on the calling goroutine.
func ScanOccupied(pool *WorkerPool, mask []byte, width, height, tileSize int) *TileBitmap {
	if tileSize <= 0 || width <= 0 || height <= 0 || len(mask) < width*height {
		return nil
	}
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize
	bm := NewTileBitmap(tilesX, tilesY)

	scanRow := func(ty int) {
		y0 := ty * tileSize
		y1 := min(y0+tileSize, height)
		for tx := range tilesX {
			x0 := tx * tileSize
			x1 := min(x0+tileSize, width)
			if regionOccupied(mask, width, x0, y0, x1, y1) {
				bm.Mark(tx, ty)
			}
		}
	}

	if pool == nil {
		for ty := range tilesY {
			scanRow(ty)
		}
		return bm
	}

	work := make([]func(), tilesY)
	for ty := range tilesY {
		work[ty] = func() { scanRow(ty) }
	}
	pool.ExecuteAll(work)
	return bm
}

func regionOccupied(mask []byte, width, x0, y0, x1, y1 int) bool {
	for y := y0; y < y1; y++ {
		row := mask[y*width+x0 : y*width+x1]
		for _, v := range row {
			if v != 0 {
				return true
			}
		}
	}
	return false
}
