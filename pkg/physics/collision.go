// pkg/physics/collision.go
package physics

import "math"

// Collision aggregates every line-pair intersection found by one pairwise
// object test.
type Collision struct {
	Intersections []Intersection
	// UseSelfLinesNormal selects the contact normal source: the reversed
	// normals of the self object's lines when true, the other object's line
	// normals otherwise.
	UseSelfLinesNormal bool
}

// Collided reports whether any intersection was found.
func (c Collision) Collided() bool {
	return len(c.Intersections) > 0
}

// ContactPoint returns the mean of all intersection points.
func (c Collision) ContactPoint() Vector2D {
	if !c.Collided() {
		return Vector2D{}
	}
	var sum Vector2D
	for _, in := range c.Intersections {
		sum = sum.Add(in.Point)
	}
	return sum.Scale(1 / float64(len(c.Intersections)))
}

// Normal returns the mean contact normal from the side selected by
// UseSelfLinesNormal, normalized. It may be zero when normals cancel.
func (c Collision) Normal() Vector2D {
	var sum Vector2D
	for _, in := range c.Intersections {
		if c.UseSelfLinesNormal {
			sum = sum.Add(in.SelfLine.Normal.Negate())
		} else {
			sum = sum.Add(in.OtherLine.Normal)
		}
	}
	return sum.Normalize()
}

// collide tests every self line against every other line and gathers all
// intersecting pairs. There is no early exit: resting contact on several
// points needs all of them.
func collide(self, other []Line) Collision {
	var c Collision
	selfLines := make(map[int]struct{})
	otherLines := make(map[int]struct{})

	for i, sl := range self {
		for j, ol := range other {
			in := sl.IsIntersecting(ol)
			if !in.Exists {
				continue
			}
			c.Intersections = append(c.Intersections, in)
			selfLines[i] = struct{}{}
			otherLines[j] = struct{}{}
		}
	}

	// A single face crossed by several edges is the face being penetrated.
	c.UseSelfLinesNormal = len(selfLines) < len(otherLines)
	return c
}

// Rect represents an axis-aligned rectangular area
type Rect struct {
	Center Vector2D
	Width  float64
	Height float64
}

// Bounds returns the smallest Rect containing every endpoint of lines.
func Bounds(lines []Line) Rect {
	if len(lines) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, l := range lines {
		for _, p := range [2]Vector2D{l.Start, l.End} {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	return Rect{
		Center: Vector2D{X: (minX + maxX) / 2, Y: (minY + maxY) / 2},
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Contains reports whether point lies inside the rectangle, edges included.
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Center.X-r.Width/2 &&
		point.X <= r.Center.X+r.Width/2 &&
		point.Y >= r.Center.Y-r.Height/2 &&
		point.Y <= r.Center.Y+r.Height/2
}

// Overlaps reports whether two rectangles share any point, with Epsilon
// tolerance so touching bounds never reject a real contact.
func (r Rect) Overlaps(area Rect) bool {
	return !(area.Center.X-area.Width/2 > r.Center.X+r.Width/2+Epsilon ||
		area.Center.X+area.Width/2 < r.Center.X-r.Width/2-Epsilon ||
		area.Center.Y-area.Height/2 > r.Center.Y+r.Height/2+Epsilon ||
		area.Center.Y+area.Height/2 < r.Center.Y-r.Height/2-Epsilon)
}
