package render

import (
	"iter"
	"math"

	"github.com/taigrr/phong/pkg/math3d"
)

// Sample is one pixel inside a triangle together with its
// perspective-correct surface attributes.
type Sample struct {
	X, Y     int
	Depth    float64 // reciprocal camera depth, larger is nearer
	Position math3d.Vec3
	Normal   math3d.Vec3
}

const (
	// depthEpsilon is the smallest reciprocal-depth difference for which
	// perspective correction is applied; below it attributes blend
	// linearly.
	depthEpsilon = 1e-5

	// rejectMargin is how many viewport widths (or heights) a vertex may
	// lie beyond the viewport before the whole triangle is skipped.
	rejectMargin = 2
)

// edgeRecord is one non-horizontal triangle edge in the edge table. It
// covers the scanlines lower.Y < y ≤ higher.Y.
type edgeRecord struct {
	yMin, yMax int     // first and last scanline, inclusive
	x          float64 // edge x at the current scanline
	slope      float64 // dx per scanline
	lower      Vertex  // endpoint with the smaller screen y
	higher     Vertex
	invHeight  float64 // 1 / (higher.Y - lower.Y)
	start      float64 // yMin - lower.Y
	steps      int     // scanlines advanced since yMin
}

// boundary returns the interpolated vertex where the edge crosses the
// current scanline.
func (e *edgeRecord) boundary() Vertex {
	return interpolate(e.lower, e.higher, (e.start+float64(e.steps))*e.invHeight)
}

// Scanline is a single active-edge-table pass over one projected triangle.
// Samples walks the interior once; a pass cannot be restarted, so a new
// Scanline is created per triangle per frame.
//
// Only pixels strictly inside the triangle are produced: a scanline row is
// covered by an edge when lower.Y < y ≤ higher.Y, and a column when
// left.X < x < right.X. Rows and columns are clipped to the viewport, so
// every sample addresses a valid pixel.
type Scanline struct {
	edges  [3]edgeRecord // ordered by yMin
	count  int
	width  int
	height int
	used   bool
}

// NewScanline builds the edge table for tri on a width×height viewport.
// Triangles with a vertex far outside the viewport, or with fewer than two
// non-horizontal edges, produce an empty pass.
func NewScanline(tri [3]Vertex, width, height int) *Scanline {
	s := &Scanline{width: width, height: height}
	if width <= 0 || height <= 0 || outsideMargin(tri, width, height) {
		return s
	}

	for i := range 3 {
		s.addEdge(tri[i], tri[(i+1)%3])
	}
	if s.count < 2 {
		s.count = 0
		return s
	}

	for i := 1; i < s.count; i++ {
		for j := i; j > 0 && s.edges[j].yMin < s.edges[j-1].yMin; j-- {
			s.edges[j], s.edges[j-1] = s.edges[j-1], s.edges[j]
		}
	}
	return s
}

// Empty reports whether the pass can produce no samples at all.
func (s *Scanline) Empty() bool {
	return s.count == 0
}

// Samples returns the interior pixels in scanline order. Ranging over the
// sequence a second time yields nothing.
func (s *Scanline) Samples() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		if s.used {
			return
		}
		s.used = true
		s.sweep(yield)
	}
}

func outsideMargin(tri [3]Vertex, width, height int) bool {
	w, h := float64(width), float64(height)
	for _, v := range tri {
		x, y := v.Screen.X, v.Screen.Y
		if !v.Screen.IsFinite() ||
			x < -rejectMargin*w || x > (rejectMargin+1)*w ||
			y < -rejectMargin*h || y > (rejectMargin+1)*h {
			return true
		}
	}
	return false
}

// addEdge records the edge a-b unless both endpoints fall on the same
// pixel row.
func (s *Scanline) addEdge(a, b Vertex) {
	lower, higher := a, b
	if lower.Screen.Y > higher.Screen.Y {
		lower, higher = higher, lower
	}

	yMin := int(math.Floor(lower.Screen.Y)) + 1
	yMax := int(math.Floor(higher.Screen.Y))
	if yMin > yMax {
		return
	}

	dy := higher.Screen.Y - lower.Screen.Y
	slope := (higher.Screen.X - lower.Screen.X) / dy
	start := float64(yMin) - lower.Screen.Y
	s.edges[s.count] = edgeRecord{
		yMin:      yMin,
		yMax:      yMax,
		x:         lower.Screen.X + start*slope,
		slope:     slope,
		lower:     lower,
		higher:    higher,
		invHeight: 1 / dy,
		start:     start,
	}
	s.count++
}

func (s *Scanline) sweep(yield func(Sample) bool) {
	if s.count == 0 {
		return
	}

	last := s.edges[0].yMax
	for _, e := range s.edges[1:s.count] {
		last = max(last, e.yMax)
	}
	last = min(last, s.height-1)

	var active [3]int
	n, next := 0, 0
	for y := s.edges[0].yMin; y <= last; y++ {
		for next < s.count && s.edges[next].yMin <= y {
			active[n] = next
			n++
			next++
		}
		s.sortActive(active[:n])

		if n >= 2 && y >= 0 {
			left := s.edges[active[0]].boundary()
			right := s.edges[active[n-1]].boundary()
			if !s.span(y, left, right, yield) {
				return
			}
		}

		kept := 0
		for _, idx := range active[:n] {
			e := &s.edges[idx]
			e.x += e.slope
			e.steps++
			if e.yMax > y {
				active[kept] = idx
				kept++
			}
		}
		n = kept
		if n == 0 && next == s.count {
			return
		}
	}
}

// sortActive orders active edges by their current x, breaking ties by
// slope so the edge that turns left first is on the left.
func (s *Scanline) sortActive(active []int) {
	for i := 1; i < len(active); i++ {
		for j := i; j > 0 && s.less(active[j], active[j-1]); j-- {
			active[j], active[j-1] = active[j-1], active[j]
		}
	}
}

func (s *Scanline) less(a, b int) bool {
	ea, eb := &s.edges[a], &s.edges[b]
	if ea.x != eb.x {
		return ea.x < eb.x
	}
	return ea.slope < eb.slope
}

// span emits the columns strictly between left and right on row y. It
// reports false when the consumer stopped early.
func (s *Scanline) span(y int, left, right Vertex, yield func(Sample) bool) bool {
	lx, rx := left.Screen.X, right.Screen.X
	width := rx - lx
	if !(width > 0) {
		return true
	}

	x0 := max(int(math.Floor(lx))+1, 0)
	x1 := min(int(math.Ceil(rx))-1, s.width-1)
	for x := x0; x <= x1; x++ {
		v := interpolate(left, right, (float64(x)-lx)/width)
		if !yield(Sample{X: x, Y: y, Depth: v.Screen.Z, Position: v.Position, Normal: v.Normal}) {
			return false
		}
	}
	return true
}

// interpolate blends two projected vertices at screen-space fraction t.
// Screen coordinates, including the reciprocal depth, blend linearly.
// Position and normal blend at the fraction u of camera-space depth that
// t corresponds to, which undoes the perspective foreshortening.
func interpolate(a, b Vertex, t float64) Vertex {
	screen := a.Screen.Lerp(b.Screen, t)
	u := t
	if math.Abs(a.Screen.Z-b.Screen.Z) >= depthEpsilon {
		za, zb := 1/a.Screen.Z, 1/b.Screen.Z
		u = (1/screen.Z - za) / (zb - za)
	}
	return Vertex{
		Position: a.Position.Lerp(b.Position, u),
		Normal:   a.Normal.Lerp(b.Normal, u).Normalize(),
		Screen:   screen,
	}
}
