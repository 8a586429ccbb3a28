package brush

import (
	"image"
	"math"
)

// Radius returns the stamp radius for a brush size.
func Radius(size int) int {
	if size < 1 {
		return 0
	}
	return size / 2
}

// center rounds a stamp centre and reports whether the disc can touch the
// image at all. Non-finite and far-away centres are rejected before any
// float-to-int conversion.
func center(width, height int, cx, cy float64, r int) (ix, iy int, ok bool) {
	if math.IsNaN(cx) || math.IsNaN(cy) {
		return 0, 0, false
	}
	fr := float64(r) + 1
	if cx < -fr || cy < -fr || cx > float64(width)+fr || cy > float64(height)+fr {
		return 0, 0, false
	}
	return int(math.Round(cx)), int(math.Round(cy)), true
}

// StampBounds returns the bounding box of the pixels a stamp may cover,
// clipped to the image. The result is empty when the stamp misses the image.
func StampBounds(width, height int, cx, cy float64, size int) image.Rectangle {
	if size < 1 {
		return image.Rectangle{}
	}
	r := Radius(size)
	ix, iy, ok := center(width, height, cx, cy, r)
	if !ok {
		return image.Rectangle{}
	}
	return image.Rect(ix-r, iy-r, ix+r+1, iy+r+1).Intersect(image.Rect(0, 0, width, height))
}

// ApplyStamp stamps a disc of the given brush size centred on (cx, cy).
// Every in-bounds pixel within the disc is set to the mode's value if it
// differs. It reports whether any pixel changed. Invalid sizes, short
// buffers and off-image centres change nothing and return false.
func ApplyStamp(buf []byte, width, height int, cx, cy float64, size int, mode Mode) bool {
	if size < 1 || width <= 0 || height <= 0 || len(buf) < width*height {
		return false
	}
	r := Radius(size)
	ix, iy, ok := center(width, height, cx, cy, r)
	if !ok {
		return false
	}

	value := mode.Value()
	spans := discSpans(r)
	changed := false

	for dy := -r; dy <= r; dy++ {
		y := iy + dy
		if y < 0 || y >= height {
			continue
		}
		hw := spans[dy+r]
		x0 := max(ix-hw, 0)
		x1 := min(ix+hw, width-1)
		if x0 > x1 {
			continue
		}
		row := buf[y*width+x0 : y*width+x1+1]
		for i, v := range row {
			if v != value {
				row[i] = value
				changed = true
			}
		}
	}
	return changed
}
