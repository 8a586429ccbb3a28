package brush

import "github.com/gogpu/maskpaint/internal/cache"

// discCache holds the row half-widths of a disc per radius.
var discCache = cache.New[int, []int](64)

// discSpans returns, for dy in [-r, r], the largest dx with dx²+dy² <= r².
// Index dy+r. The computation is purely integral.
func discSpans(r int) []int {
	return discCache.GetOrCreate(r, func() []int {
		spans := make([]int, 2*r+1)
		rr := r * r
		dx := r
		for dy := 0; dy <= r; dy++ {
			for dx > 0 && dx*dx+dy*dy > rr {
				dx--
			}
			spans[r+dy] = dx
			spans[r-dy] = dx
		}
		return spans
	})
}
