// Package geometry defines shape outlines and touch classification.
package geometry

import "math"

// Point represents a 2D point or vector in canvas coordinates.
// The Y axis grows downward, matching touch input coordinates.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Length returns the length of the vector.
func (p Point) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// Lerp interpolates between two points. t=0 returns p, t=1 returns q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}

// Rect is an axis-aligned rectangle in canvas coordinates.
type Rect struct {
	MinX, MinY    float64
	Width, Height float64
}

// R is a convenience function to create a Rect.
func R(minX, minY, width, height float64) Rect {
	return Rect{MinX: minX, MinY: minY, Width: width, Height: height}
}

// MaxX returns the right edge of the rectangle.
func (r Rect) MaxX() float64 { return r.MinX + r.Width }

// MaxY returns the bottom edge of the rectangle.
func (r Rect) MaxY() float64 { return r.MinY + r.Height }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.MinX + r.Width/2, Y: r.MinY + r.Height/2}
}

// Contains reports whether p lies inside the rectangle, edges inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX() && p.Y >= r.MinY && p.Y <= r.MaxY()
}

// Inset shrinks the rectangle by m on every side. A rectangle too small
// to inset collapses to a zero-size rectangle at its center rather than
// producing negative dimensions.
func (r Rect) Inset(m float64) Rect {
	w := r.Width - 2*m
	h := r.Height - 2*m
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := r.Center()
	return Rect{MinX: c.X - w/2, MinY: c.Y - h/2, Width: w, Height: h}
}
