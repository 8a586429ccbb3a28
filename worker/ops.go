package worker

import (
	"image"

	"github.com/gogpu/maskpaint/brush"
	"github.com/gogpu/maskpaint/history"
	"github.com/gogpu/maskpaint/internal/parallel"
)

// The functions below are the single implementation of every operation.
// Executors differ only in where they run them. Inputs are already
// copied by the caller.

func applyStroke(m Mask, s history.Stroke) StrokeResult {
	changed, bounds := s.Apply(m.Data, m.Width, m.Height)
	return StrokeResult{Mask: m.Data, Changed: changed, Bounds: bounds}
}

func applyPath(req PathRequest) StrokeResult {
	m := req.Mask
	changed, bounds := brush.ApplyStrokePath(m.Data, m.Width, m.Height, req.Points, req.Size, req.Mode, req.Spacing)
	return StrokeResult{Mask: m.Data, Changed: changed, Bounds: bounds}
}

// checkpoint snapshots the mask. A non-nil pool parallelises the tile
// occupancy scan.
func checkpoint(pool *parallel.WorkerPool, req CheckpointRequest) (history.Checkpoint, error) {
	m := req.Mask
	tile := req.TileSize
	if tile <= 0 {
		tile = history.DefaultTileSize
	}
	var occupied []bool
	if pool != nil {
		occupied = parallel.ScanOccupied(pool, m.Data, m.Width, m.Height, tile).Bools()
	}
	snap, err := history.BuildTiledSnapshot(m.Data, m.Width, m.Height, tile, occupied)
	if err != nil {
		return history.Checkpoint{}, err
	}
	return history.NewCheckpoint(req.StrokeIndex, snap), nil
}

// exportRows fills rows [y0, y1) of dst from the mask.
func exportRows(dst *image.NRGBA, req ExportRequest, y0, y1 int) {
	m := req.Mask
	c := req.Color
	for y := y0; y < y1; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+m.Width*4]
		src := m.Data[y*m.Width : (y+1)*m.Width]
		for x, v := range src {
			px := row[x*4 : x*4+4 : x*4+4]
			px[0], px[1], px[2], px[3] = c.R, c.G, c.B, v
		}
	}
}

// export renders the overlay. A non-nil pool splits the rows into bands.
func export(pool *parallel.WorkerPool, req ExportRequest) *image.NRGBA {
	m := req.Mask
	dst := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	if pool == nil || m.Height < exportBand*2 {
		exportRows(dst, req, 0, m.Height)
		return dst
	}
	work := make([]func(), 0, (m.Height+exportBand-1)/exportBand)
	for y0 := 0; y0 < m.Height; y0 += exportBand {
		y1 := min(y0+exportBand, m.Height)
		work = append(work, func() { exportRows(dst, req, y0, y1) })
	}
	pool.ExecuteAll(work)
	return dst
}

// exportBand is the number of rows per parallel export job.
const exportBand = 64

func validate(mask []byte) Validation {
	first := brush.FirstNonBinary(mask)
	return Validation{
		Valid:        first < 0,
		FirstInvalid: first,
		Painted:      brush.CountPainted(mask),
	}
}
