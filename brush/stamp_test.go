package brush

import (
	"image"
	"math"
	"math/rand/v2"
	"testing"
)

func newMask(w, h int) []byte { return make([]byte, w*h) }

func countValue(buf []byte, v byte) int {
	n := 0
	for _, b := range buf {
		if b == v {
			n++
		}
	}
	return n
}

// =============================================================================
// ApplyStamp Tests
// =============================================================================

func TestApplyStamp_DiscShape(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{1, 1},  // radius 0: the centre pixel only
		{2, 5},  // radius 1: plus shape
		{3, 5},  // radius floor(3/2) = 1
		{5, 13}, // radius 2
		{7, 29}, // radius 3
	}
	for _, tt := range tests {
		buf := newMask(21, 21)
		if !ApplyStamp(buf, 21, 21, 10, 10, tt.size, Paint) {
			t.Fatalf("size %d: ApplyStamp reported no change", tt.size)
		}
		if got := countValue(buf, 255); got != tt.want {
			t.Errorf("size %d: painted %d pixels, want %d", tt.size, got, tt.want)
		}
	}
}

func TestApplyStamp_RoundsCentre(t *testing.T) {
	buf := newMask(5, 5)
	ApplyStamp(buf, 5, 5, 2.4, 1.6, 1, Paint)
	if buf[2*5+2] != 255 {
		t.Errorf("stamp at (2.4, 1.6) should land on pixel (2, 2)")
	}
	if countValue(buf, 255) != 1 {
		t.Errorf("size 1 stamp painted %d pixels, want 1", countValue(buf, 255))
	}
}

func TestApplyStamp_Idempotent(t *testing.T) {
	buf := newMask(32, 32)
	if !ApplyStamp(buf, 32, 32, 16, 16, 9, Paint) {
		t.Fatal("first stamp should change pixels")
	}
	before := append([]byte(nil), buf...)
	if ApplyStamp(buf, 32, 32, 16, 16, 9, Paint) {
		t.Error("second identical stamp reported a change")
	}
	for i := range buf {
		if buf[i] != before[i] {
			t.Fatalf("buffer changed at %d on re-stamp", i)
		}
	}

	empty := newMask(32, 32)
	if ApplyStamp(empty, 32, 32, 16, 16, 9, Erase) {
		t.Error("erasing an empty region reported a change")
	}
}

func TestApplyStamp_ClipsAtEdges(t *testing.T) {
	buf := newMask(4, 4)
	if !ApplyStamp(buf, 4, 4, 0, 0, 5, Paint) {
		t.Fatal("corner stamp should change pixels")
	}
	// Quarter of the radius-2 disc: (0,0) (1,0) (2,0) (0,1) (1,1) (0,2)
	if got := countValue(buf, 255); got != 6 {
		t.Errorf("corner stamp painted %d pixels, want 6", got)
	}
}

func TestApplyStamp_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		buf    []byte
		cx, cy float64
		size   int
	}{
		{"zero size", newMask(4, 4), 1, 1, 0},
		{"short buffer", make([]byte, 3), 1, 1, 3},
		{"far away", newMask(4, 4), 1e9, 1, 3},
		{"negative far", newMask(4, 4), -50, -50, 3},
		{"nan", newMask(4, 4), math.NaN(), 1, 3},
		{"inf", newMask(4, 4), math.Inf(1), 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ApplyStamp(tt.buf, 4, 4, tt.cx, tt.cy, tt.size, Paint) {
				t.Error("ApplyStamp reported a change")
			}
			if countValue(tt.buf, 255) != 0 {
				t.Error("pixels changed")
			}
		})
	}
}

func TestStampBounds(t *testing.T) {
	tests := []struct {
		name   string
		cx, cy float64
		size   int
		want   image.Rectangle
	}{
		{"interior", 10, 10, 5, image.Rect(8, 8, 13, 13)},
		{"clipped", 0, 19, 5, image.Rect(0, 17, 3, 20)},
		{"outside", -40, 0, 5, image.Rectangle{}},
		{"zero size", 5, 5, 0, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StampBounds(20, 20, tt.cx, tt.cy, tt.size); got != tt.want {
				t.Errorf("StampBounds = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Invariant Properties
// =============================================================================

func TestBinaryInvariant_RandomOperations(t *testing.T) {
	const w, h = 64, 48
	rng := rand.New(rand.NewPCG(1, 2))
	buf := newMask(w, h)

	for i := range 500 {
		mode := Paint
		if rng.IntN(2) == 0 {
			mode = Erase
		}
		size := 1 + rng.IntN(20)
		if rng.IntN(3) == 0 {
			pts := make([]Point, 2+rng.IntN(5))
			for j := range pts {
				pts[j] = Point{X: rng.Float64()*90 - 10, Y: rng.Float64()*70 - 10}
			}
			ApplyStrokePath(buf, w, h, pts, size, mode, DefaultSpacing)
		} else {
			ApplyStamp(buf, w, h, rng.Float64()*w, rng.Float64()*h, size, mode)
		}
		if idx := FirstNonBinary(buf); idx >= 0 {
			t.Fatalf("operation %d left byte %d = %d", i, idx, buf[idx])
		}
	}
}

func TestModeValueDomains(t *testing.T) {
	const w, h = 40, 40
	buf := newMask(w, h)
	ApplyStamp(buf, w, h, 20, 20, 15, Paint)
	painted := append([]byte(nil), buf...)

	// Paint never produces anything but 255 or a pre-existing 0.
	ApplyStamp(buf, w, h, 25, 25, 11, Paint)
	for i := range buf {
		if buf[i] != 255 && !(buf[i] == 0 && painted[i] == 0) {
			t.Fatalf("paint produced %d at %d", buf[i], i)
		}
	}

	// Erase never produces anything but 0 or a pre-existing 255.
	before := append([]byte(nil), buf...)
	ApplyStamp(buf, w, h, 18, 18, 9, Erase)
	for i := range buf {
		if buf[i] != 0 && !(buf[i] == 255 && before[i] == 255) {
			t.Fatalf("erase produced %d at %d", buf[i], i)
		}
	}

	ApplyStamp(buf, w, h, 19, 19, 7, Paint)
	if !ValidateBinaryMask(buf) {
		t.Fatal("paint-erase-paint broke the binary invariant")
	}
}

func BenchmarkApplyStamp(b *testing.B) {
	const w, h = 2048, 2048
	buf := newMask(w, h)
	mode := Paint
	for i := 0; b.Loop(); i++ {
		ApplyStamp(buf, w, h, float64(i%w), float64((i*7)%h), 64, mode)
	}
}
