package brush

import (
	"image"
	"math"
)

// DefaultSpacing is the stamp spacing as a fraction of the brush size.
const DefaultSpacing = 0.35

// minStep bounds the stamp step from below so tiny brushes still advance.
const minStep = 0.5

// Point is a stroke position in image pixel coordinates.
type Point struct {
	X, Y float64
}

// StepFor returns the arc-length distance between interpolated stamps.
// A non-positive spacing selects DefaultSpacing.
func StepFor(size int, spacing float64) float64 {
	if spacing <= 0 || math.IsNaN(spacing) {
		spacing = DefaultSpacing
	}
	return max(spacing*float64(size), minStep)
}

// Stroker stamps a path incrementally. It remembers the last stamped
// position and walks each new point from there in fixed steps, so calling
// Begin and Continue point by point stamps exactly what ApplyStrokePath
// stamps for the whole path.
//
// A Stroker writes into the buffer it was created with and is not safe for
// concurrent use.
type Stroker struct {
	buf           []byte
	width, height int
	size          int
	mode          Mode
	step          float64

	last    Point
	started bool
	changed bool
	bounds  image.Rectangle
	stamps  int
}

// NewStroker returns a Stroker writing into buf.
func NewStroker(buf []byte, width, height, size int, mode Mode, spacing float64) *Stroker {
	return &Stroker{
		buf:    buf,
		width:  width,
		height: height,
		size:   size,
		mode:   mode,
		step:   StepFor(size, spacing),
	}
}

// Begin stamps the first point of the path.
func (s *Stroker) Begin(p Point) bool {
	s.last = p
	s.started = true
	return s.stamp(p)
}

// Continue walks from the last stamped position towards p, stamping every
// step. Nothing is stamped if the segment is shorter than one step; the
// distance then carries over to the next call. Continue before Begin acts
// as Begin. It reports whether any pixel changed.
func (s *Stroker) Continue(p Point) bool {
	if !s.started {
		return s.Begin(p)
	}
	dx := p.X - s.last.X
	dy := p.Y - s.last.Y
	dist := math.Hypot(dx, dy)
	if dist < s.step || math.IsNaN(dist) || math.IsInf(dist, 0) {
		return false
	}

	n := int(dist / s.step)
	ux := dx / dist
	uy := dy / dist
	changed := false
	for i := 1; i <= n; i++ {
		t := s.step * float64(i)
		if s.stamp(Point{X: s.last.X + ux*t, Y: s.last.Y + uy*t}) {
			changed = true
		}
	}
	t := s.step * float64(n)
	s.last = Point{X: s.last.X + ux*t, Y: s.last.Y + uy*t}
	return changed
}

func (s *Stroker) stamp(p Point) bool {
	s.stamps++
	if !ApplyStamp(s.buf, s.width, s.height, p.X, p.Y, s.size, s.mode) {
		return false
	}
	s.changed = true
	s.bounds = s.bounds.Union(StampBounds(s.width, s.height, p.X, p.Y, s.size))
	return true
}

// Changed reports whether any stamp so far changed a pixel.
func (s *Stroker) Changed() bool { return s.changed }

// Bounds returns the union of the bounding boxes of stamps that changed
// pixels.
func (s *Stroker) Bounds() image.Rectangle { return s.bounds }

// Last returns the last stamped position.
func (s *Stroker) Last() Point { return s.last }

// Stamps returns the number of stamps placed, including ones that changed
// nothing.
func (s *Stroker) Stamps() int { return s.stamps }

// ApplyStrokePath stamps an ordered path: the first point, then
// interpolated stamps every StepFor(size, spacing) pixels along each
// segment. It returns whether any pixel changed and the bounding box of the
// changed stamps.
func ApplyStrokePath(buf []byte, width, height int, points []Point, size int, mode Mode, spacing float64) (bool, image.Rectangle) {
	if len(points) == 0 {
		return false, image.Rectangle{}
	}
	s := NewStroker(buf, width, height, size, mode, spacing)
	s.Begin(points[0])
	for _, p := range points[1:] {
		s.Continue(p)
	}
	return s.Changed(), s.Bounds()
}
