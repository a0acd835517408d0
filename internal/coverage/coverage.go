// Package coverage tracks which parts of a shape outline a trace has
// visited and decides when an attempt counts as complete.
package coverage

import (
	"math"
	"strings"

	"github.com/verte-zerg/tracer/internal/geometry"
)

// Segment partition sizes. The partition is fixed and independent of the
// sampled boundary path: a square splits into 10 buckets per side, a
// circle into 6-degree wedges.
const (
	SquareSegments = 40
	CircleSegments = 60

	segmentsPerSide     = 10
	segmentsPerQuadrant = 15
)

// Completion thresholds.
const (
	// CompletionRatio is the minimum fraction of segments that must be
	// visited before an attempt can complete.
	CompletionRatio = 0.98
	// MinPerSide is the minimum visited segments per square side.
	MinPerSide = 7
	// MinPerQuadrant is the minimum visited segments per circle quadrant.
	MinPerQuadrant = 11
)

var squareRegions = [4]string{"top side", "right side", "bottom side", "left side"}

var circleRegions = [4]string{"upper right", "lower right", "lower left", "upper left"}

// Tracker records visited outline segments for one trace attempt. The
// visited set only grows; Reset starts a fresh attempt.
type Tracker struct {
	shape   geometry.Shape
	rect    geometry.Rect
	visited map[int]struct{}
}

// NewTracker creates a tracker for the shape outline inside rect.
func NewTracker(shape geometry.Shape, rect geometry.Rect) *Tracker {
	return &Tracker{
		shape:   shape,
		rect:    rect,
		visited: map[int]struct{}{},
	}
}

// Shape returns the tracked shape.
func (t *Tracker) Shape() geometry.Shape { return t.shape }

// TotalSegments returns the size of the segment partition for the shape.
func (t *Tracker) TotalSegments() int {
	if t.shape == geometry.Circle {
		return CircleSegments
	}
	return SquareSegments
}

// SegmentID maps a touch position to its outline segment.
//
// Square segments run clockwise from the top-left: 0-9 along the top,
// 10-19 down the right, 20-29 right-to-left along the bottom, 30-39
// bottom-to-top up the left. Circle segments are 6-degree wedges with 0
// at the top, increasing clockwise.
func (t *Tracker) SegmentID(p geometry.Point) int {
	if t.shape == geometry.Circle {
		return t.circleSegment(p)
	}
	return t.squareSegment(p)
}

func (t *Tracker) squareSegment(p geometry.Point) int {
	inset := t.rect.Inset(geometry.InsetMargin)
	top := math.Abs(p.Y - inset.MinY)
	right := math.Abs(p.X - inset.MaxX())
	bottom := math.Abs(p.Y - inset.MaxY())
	left := math.Abs(p.X - inset.MinX)

	side := 0
	nearest := top
	if right < nearest {
		side, nearest = 1, right
	}
	if bottom < nearest {
		side, nearest = 2, bottom
	}
	if left < nearest {
		side = 3
	}

	// Fractional position along the side, measured in the clockwise
	// traversal direction (bottom and left run backwards).
	var frac float64
	switch side {
	case 0:
		frac = fraction(p.X-inset.MinX, inset.Width)
	case 1:
		frac = fraction(p.Y-inset.MinY, inset.Height)
	case 2:
		frac = fraction(inset.MaxX()-p.X, inset.Width)
	default:
		frac = fraction(inset.MaxY()-p.Y, inset.Height)
	}
	bucket := int(frac * segmentsPerSide)
	if bucket > segmentsPerSide-1 {
		bucket = segmentsPerSide - 1
	}
	return side*segmentsPerSide + bucket
}

func (t *Tracker) circleSegment(p geometry.Point) int {
	inset := t.rect.Inset(geometry.InsetMargin)
	c := inset.Center()
	// atan2 puts zero at the right; rotate so zero sits at the top. With
	// the Y axis growing downward, increasing angle is clockwise on
	// screen.
	deg := math.Atan2(p.Y-c.Y, p.X-c.X) * 180 / math.Pi
	deg += 90
	for deg < 0 {
		deg += 360
	}
	for deg >= 360 {
		deg -= 360
	}
	wedge := int(deg / 6)
	if wedge > CircleSegments-1 {
		wedge = CircleSegments - 1
	}
	return wedge
}

func fraction(offset, span float64) float64 {
	if span <= 0 {
		return 0
	}
	f := offset / span
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// RecordVisit marks the segment under p as visited and reports whether
// it was previously unvisited. First visits gate one-shot milestone
// announcements.
func (t *Tracker) RecordVisit(p geometry.Point) bool {
	id := t.SegmentID(p)
	if _, ok := t.visited[id]; ok {
		return false
	}
	t.visited[id] = struct{}{}
	return true
}

// VisitedCount returns the number of distinct visited segments.
func (t *Tracker) VisitedCount() int { return len(t.visited) }

// Ratio returns the visited fraction of the segment partition.
func (t *Tracker) Ratio() float64 {
	return float64(len(t.visited)) / float64(t.TotalSegments())
}

// regionCounts returns visited segments per region: square sides in
// clockwise order, or circle quadrants starting at the upper right.
func (t *Tracker) regionCounts() [4]int {
	var counts [4]int
	per := segmentsPerSide
	if t.shape == geometry.Circle {
		per = segmentsPerQuadrant
	}
	for id := range t.visited {
		counts[id/per]++
	}
	return counts
}

// regionMinimum returns the per-region visit floor for the shape.
func (t *Tracker) regionMinimum() int {
	if t.shape == geometry.Circle {
		return MinPerQuadrant
	}
	return MinPerSide
}

// RegionNames returns the region names for the shape, index-aligned with
// the per-region counts.
func (t *Tracker) RegionNames() [4]string {
	if t.shape == geometry.Circle {
		return circleRegions
	}
	return squareRegions
}

// RegionCoverage is the visited/total tally for one outline region.
type RegionCoverage struct {
	Region  string
	Visited int
	Total   int
}

// Regions returns the per-region coverage tallies.
func (t *Tracker) Regions() []RegionCoverage {
	names := t.RegionNames()
	counts := t.regionCounts()
	per := segmentsPerSide
	if t.shape == geometry.Circle {
		per = segmentsPerQuadrant
	}
	out := make([]RegionCoverage, 4)
	for i := range out {
		out[i] = RegionCoverage{Region: names[i], Visited: counts[i], Total: per}
	}
	return out
}

// QualityComplete reports whether the attempt satisfies both the
// aggregate coverage threshold and every region's minimum. Repeatedly
// tracing one side or arc never completes an attempt on its own.
func (t *Tracker) QualityComplete() bool {
	if t.Ratio() < CompletionRatio {
		return false
	}
	minimum := t.regionMinimum()
	for _, n := range t.regionCounts() {
		if n < minimum {
			return false
		}
	}
	return true
}

// MissingRegions returns the names of regions still below their minimum,
// in partition order.
func (t *Tracker) MissingRegions() []string {
	names := t.RegionNames()
	counts := t.regionCounts()
	minimum := t.regionMinimum()
	var missing []string
	for i, n := range counts {
		if n < minimum {
			missing = append(missing, names[i])
		}
	}
	return missing
}

// MissingRegionsHint phrases the below-threshold regions for speech, or
// returns "" when every region has met its minimum.
func (t *Tracker) MissingRegionsHint() string {
	missing := t.MissingRegions()
	if len(missing) == 0 {
		return ""
	}
	return "Trace more of the " + joinNaturally(missing)
}

func joinNaturally(parts []string) string {
	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
}

// Reset clears the visited set for a fresh attempt.
func (t *Tracker) Reset() {
	t.visited = map[int]struct{}{}
}
