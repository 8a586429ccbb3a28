// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import "image"

// mergeTolerance is how far apart two rectangles may be and still merge.
const mergeTolerance = 1

// near reports whether a and b overlap or lie within mergeTolerance
// pixels of each other.
func near(a, b image.Rectangle) bool {
	return a.Inset(-mergeTolerance).Overlaps(b.Inset(-mergeTolerance))
}

// MergeRegions unions rectangles that overlap or nearly touch until no two
// remaining rectangles are near each other. Empty rectangles are dropped.
// The input slice is not modified.
func MergeRegions(rects []image.Rectangle) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(rects))
	for _, r := range rects {
		if r.Empty() {
			continue
		}
		out = append(out, r)
	}

	for merged := true; merged; {
		merged = false
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); j++ {
				if !near(out[i], out[j]) {
					continue
				}
				out[i] = out[i].Union(out[j])
				out[j] = out[len(out)-1]
				out = out[:len(out)-1]
				merged = true
				j = i
			}
		}
	}
	return out
}
