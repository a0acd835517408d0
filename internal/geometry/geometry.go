package geometry

import "math"

// Shape identifies a traceable outline.
type Shape int

// Supported shapes.
const (
	Square Shape = iota
	Circle
)

// String implements fmt.Stringer.
func (s Shape) String() string {
	switch s {
	case Square:
		return "square"
	case Circle:
		return "circle"
	}
	return "unknown"
}

// ParseShape converts a shape name to its Shape value.
func ParseShape(name string) (Shape, bool) {
	switch name {
	case "square":
		return Square, true
	case "circle":
		return Circle, true
	}
	return Square, false
}

// Geometry constants shared by sampling and classification.
const (
	// InsetMargin is the gap between the canvas edge and the outline.
	InsetMargin = 20.0
	// Resolution is the number of sample intervals along the outline.
	Resolution = 100
)

// Default classification bands, in canvas units.
const (
	DefaultPathTolerance   = 40.0
	DefaultProximityRadius = 80.0
	DefaultCornerRadius    = 30.0
)

// Bands holds the tolerance bands for analytic touch classification.
// On-path, near-path, and near-corner are tuned independently.
type Bands struct {
	PathTolerance   float64
	ProximityRadius float64
	CornerRadius    float64
}

// DefaultBands returns the standard classification bands.
func DefaultBands() Bands {
	return Bands{
		PathTolerance:   DefaultPathTolerance,
		ProximityRadius: DefaultProximityRadius,
		CornerRadius:    DefaultCornerRadius,
	}
}

// BoundaryPath samples the outline of shape inside rect as an ordered,
// closed sequence of points. The outline is inset by InsetMargin.
//
// A square yields Resolution/4+1 points per side traversed clockwise from
// the top-left corner, so corner points repeat between adjacent sides. A
// circle yields Resolution+1 points over a full turn with the first and
// last point coinciding. Degenerate rectangles collapse every sample onto
// a single point instead of failing.
func BoundaryPath(shape Shape, rect Rect) []Point {
	inset := rect.Inset(InsetMargin)
	switch shape {
	case Circle:
		return circlePath(inset)
	default:
		return squarePath(inset)
	}
}

func squarePath(inset Rect) []Point {
	perSide := Resolution / 4
	corners := [4]Point{
		{X: inset.MinX, Y: inset.MinY},
		{X: inset.MaxX(), Y: inset.MinY},
		{X: inset.MaxX(), Y: inset.MaxY()},
		{X: inset.MinX, Y: inset.MaxY()},
	}
	path := make([]Point, 0, 4*(perSide+1))
	for side := 0; side < 4; side++ {
		from := corners[side]
		to := corners[(side+1)%4]
		for i := 0; i <= perSide; i++ {
			path = append(path, from.Lerp(to, float64(i)/float64(perSide)))
		}
	}
	return path
}

func circlePath(inset Rect) []Point {
	c := inset.Center()
	r := math.Min(inset.Width, inset.Height) / 2
	path := make([]Point, 0, Resolution+1)
	for i := 0; i <= Resolution; i++ {
		a := 2 * math.Pi * float64(i) / float64(Resolution)
		path = append(path, Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)})
	}
	return path
}

// NearPath reports whether p lies within tolerance of any sampled point
// of the path. The bound is inclusive: a point exactly at tolerance, or
// coincident with a sample at tolerance zero, counts as near.
//
// This is point-to-sample distance, not point-to-segment distance; a
// sparse sampling under-detects proximity between samples, so callers
// pick resolution and tolerance together.
func NearPath(p Point, path []Point, tolerance float64) bool {
	for _, q := range path {
		if p.Distance(q) <= tolerance {
			return true
		}
	}
	return false
}

// NearestPathPoint returns the sampled path point closest to p. The
// second result is false for an empty path.
func NearestPathPoint(p Point, path []Point) (Point, bool) {
	if len(path) == 0 {
		return Point{}, false
	}
	best := path[0]
	bestDist := p.Distance(best)
	for _, q := range path[1:] {
		if d := p.Distance(q); d < bestDist {
			best = q
			bestDist = d
		}
	}
	return best, true
}

// Vertices returns the inset corner points of rect in the order
// top-left, top-right, bottom-right, bottom-left.
func Vertices(rect Rect) [4]Point {
	inset := rect.Inset(InsetMargin)
	return [4]Point{
		{X: inset.MinX, Y: inset.MinY},
		{X: inset.MaxX(), Y: inset.MinY},
		{X: inset.MaxX(), Y: inset.MaxY()},
		{X: inset.MinX, Y: inset.MaxY()},
	}
}

// NearestVertex returns the first inset corner within radius of p,
// testing corners in Vertices order. Only squares expose vertices; a
// circle always reports none. Corners sit farther apart than any sane
// radius, so at most one can match, but the test order keeps the result
// deterministic regardless.
func NearestVertex(p Point, shape Shape, rect Rect, radius float64) (Point, bool) {
	if shape != Square {
		return Point{}, false
	}
	for _, v := range Vertices(rect) {
		if p.Distance(v) <= radius {
			return v, true
		}
	}
	return Point{}, false
}

// Classification is the analytic judgment of one touch position against
// a shape outline. OnPath implies NearPath; NearCorner only ever holds
// for squares.
type Classification struct {
	OnCanvas   bool
	OnPath     bool
	NearPath   bool
	NearCorner bool
	// Vertex is the matched corner when NearCorner is true.
	Vertex Point
	// OutlineDistance is the analytic distance from the touch to the
	// outline (edge lines for a square, ring for a circle).
	OutlineDistance float64
}

// Classify judges p against the outline of shape in rect using the given
// bands. Unlike NearPath this works analytically on the rectangle or
// circle itself, independent of the sampled boundary: a square measures
// the distance to the nearest of its four inset edge lines, a circle the
// distance to its ring. All band comparisons are inclusive.
func Classify(p Point, shape Shape, rect Rect, b Bands) Classification {
	var c Classification
	c.OnCanvas = rect.Contains(p)
	c.OutlineDistance = OutlineDistance(p, shape, rect)
	c.OnPath = c.OutlineDistance <= b.PathTolerance
	c.NearPath = c.OutlineDistance <= b.ProximityRadius
	if v, ok := NearestVertex(p, shape, rect, b.CornerRadius); ok {
		c.NearCorner = true
		c.Vertex = v
	}
	return c
}

// OutlineDistance returns the analytic distance from p to the shape
// outline: the nearest of the four inset edge lines for a square, or
// |distance-from-center - radius| for a circle.
func OutlineDistance(p Point, shape Shape, rect Rect) float64 {
	inset := rect.Inset(InsetMargin)
	if shape == Circle {
		r := math.Min(inset.Width, inset.Height) / 2
		return math.Abs(p.Distance(inset.Center()) - r)
	}
	top := math.Abs(p.Y - inset.MinY)
	bottom := math.Abs(p.Y - inset.MaxY())
	left := math.Abs(p.X - inset.MinX)
	right := math.Abs(p.X - inset.MaxX())
	return math.Min(math.Min(top, bottom), math.Min(left, right))
}

// guidanceDeadZone is the per-axis offset below which no direction is
// suggested for that axis.
const guidanceDeadZone = 10.0

// GuidanceDirection describes how to move from one point toward another
// as a short spoken phrase ("up", "down and to the left", ...). It
// returns "" when the points are within the dead zone on both axes.
func GuidanceDirection(from, to Point) string {
	dx := to.X - from.X
	dy := to.Y - from.Y
	var vertical, horizontal string
	if dy <= -guidanceDeadZone {
		vertical = "up"
	} else if dy >= guidanceDeadZone {
		vertical = "down"
	}
	if dx <= -guidanceDeadZone {
		horizontal = "left"
	} else if dx >= guidanceDeadZone {
		horizontal = "right"
	}
	switch {
	case vertical != "" && horizontal != "":
		return vertical + " and to the " + horizontal
	case vertical != "":
		return vertical
	case horizontal != "":
		return horizontal
	}
	return ""
}
