package physics

import "math"

// Line is an immutable line segment carrying the surface properties of the
// object it belongs to.
type Line struct {
	Start      Vector2D `json:"start"`
	End        Vector2D `json:"end"`
	Elasticity float64  `json:"elasticity"`
	// Normal is unit length and perpendicular to the segment.
	Normal Vector2D `json:"normal"`
}

// Intersection is the outcome of testing one line against another.
type Intersection struct {
	SelfLine  Line
	OtherLine Line
	Exists    bool
	Point     Vector2D
}

// NewLine creates a segment whose normal is (end-start) rotated by +90° and
// normalized. For a segment from (0,0) to (1,0) the normal is (0,1).
func NewLine(start, end Vector2D, elasticity float64) Line {
	return Line{
		Start:      start,
		End:        end,
		Elasticity: elasticity,
		Normal:     end.Sub(start).Perpendicular().Normalize(),
	}
}

// NewLineWithNormal creates a segment with an explicit normal, used for
// axis-aligned ground faces whose facing must not depend on winding.
func NewLineWithNormal(start, end Vector2D, elasticity float64, normal Vector2D) Line {
	return Line{
		Start:      start,
		End:        end,
		Elasticity: elasticity,
		Normal:     normal.Normalize(),
	}
}

// Direction returns End - Start.
func (l Line) Direction() Vector2D {
	return l.End.Sub(l.Start)
}

// Length returns the segment length.
func (l Line) Length() float64 {
	return l.Direction().Length()
}

// Midpoint returns the point halfway between Start and End.
func (l Line) Midpoint() Vector2D {
	return l.Start.Add(l.End).Scale(0.5)
}

// Offset translates the segment. The normal is unchanged.
func (l Line) Offset(by Vector2D) Line {
	l.Start = l.Start.Add(by)
	l.End = l.End.Add(by)
	return l
}

// Rotate rotates the segment about the origin and rotates its normal with it.
func (l Line) Rotate(angle float64) Line {
	l.Start = l.Start.Rotate(angle)
	l.End = l.End.Rotate(angle)
	l.Normal = l.Normal.Rotate(angle)
	return l
}

// FlipX mirrors the segment across the y axis. Endpoints are swapped so the
// winding, and with it the outward side of the normal, is preserved.
func (l Line) FlipX() Line {
	start := Vector2D{X: -l.End.X, Y: l.End.Y}
	end := Vector2D{X: -l.Start.X, Y: l.Start.Y}
	l.Start, l.End = start, end
	l.Normal = Vector2D{X: -l.Normal.X, Y: l.Normal.Y}
	return l
}

// FlipY mirrors the segment across the x axis, preserving winding.
func (l Line) FlipY() Line {
	start := Vector2D{X: l.End.X, Y: -l.End.Y}
	end := Vector2D{X: l.Start.X, Y: -l.Start.Y}
	l.Start, l.End = start, end
	l.Normal = Vector2D{X: l.Normal.X, Y: -l.Normal.Y}
	return l
}

// Reversed returns the segment with its normal pointing the other way.
func (l Line) Reversed() Line {
	l.Normal = l.Normal.Negate()
	return l
}

// implicit returns A, B, C of the line equation A·x + B·y = C.
func (l Line) implicit() (a, b, c float64) {
	a = l.End.Y - l.Start.Y
	b = l.Start.X - l.End.X
	c = a*l.Start.X + b*l.Start.Y
	return a, b, c
}

// contains reports whether p lies inside the segment's bounding box,
// inclusive, with Epsilon tolerance.
func (l Line) contains(p Vector2D) bool {
	return p.X >= math.Min(l.Start.X, l.End.X)-Epsilon &&
		p.X <= math.Max(l.Start.X, l.End.X)+Epsilon &&
		p.Y >= math.Min(l.Start.Y, l.End.Y)-Epsilon &&
		p.Y <= math.Max(l.Start.Y, l.End.Y)+Epsilon
}

// IsIntersecting tests two segments by solving their implicit line equations
// and checking the solution against both bounding boxes. Parallel or
// degenerate pairs (|det| <= Epsilon) never intersect.
//
// This is not a parametric clip test: for long, nearly parallel segments the
// bounding-box check can misreport at the tolerance boundary.
func (l Line) IsIntersecting(other Line) Intersection {
	result := Intersection{SelfLine: l, OtherLine: other}

	a1, b1, c1 := l.implicit()
	a2, b2, c2 := other.implicit()

	det := a1*b2 - a2*b1
	if math.Abs(det) <= Epsilon {
		return result
	}

	p := Vector2D{
		X: (b2*c1 - b1*c2) / det,
		Y: (a1*c2 - a2*c1) / det,
	}
	if !l.contains(p) || !other.contains(p) {
		return result
	}

	result.Exists = true
	result.Point = p
	return result
}

// PointDistance returns the distance from p to the segment. When the
// projection of p falls outside the segment the distance to the nearest
// endpoint is returned.
func (l Line) PointDistance(p Vector2D) float64 {
	d := l.Direction()
	lengthSquared := d.LengthSquared()
	if lengthSquared == 0 {
		return p.Distance(l.Start)
	}

	rel := p.Sub(l.Start)
	t := rel.Dot(d) / lengthSquared
	switch {
	case t < 0:
		return p.Distance(l.Start)
	case t > 1:
		return p.Distance(l.End)
	}

	// twice the signed area of (start, end, p) over the base length
	return math.Abs(d.Cross(rel)) / math.Sqrt(lengthSquared)
}
