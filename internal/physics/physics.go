// Package physics provides the small amount of geometry the game needs:
// deciding whether a pointer landed on the round button.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(DistanceSquared(x1, y1, x2, y2))
}

// DistanceSquared avoids the square root when only comparisons are needed.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// Circle is a hit area in logical coordinates.
type Circle struct {
	X, Y   float64 // Centre
	Radius float64
}

// Contains reports whether the point lies inside or on the circle.
func (c Circle) Contains(px, py float64) bool {
	return DistanceSquared(px, py, c.X, c.Y) <= c.Radius*c.Radius
}

// Grow returns the circle with its radius extended by margin. Pointer
// positions are quantised to terminal cells, so hit tests use a margin.
func (c Circle) Grow(margin float64) Circle {
	c.Radius += margin
	if c.Radius < 0 {
		c.Radius = 0
	}
	return c
}

// PointInCircle checks if a point is inside a circle.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return Circle{X: cx, Y: cy, Radius: radius}.Contains(px, py)
}
