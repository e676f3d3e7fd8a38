package physics

import "math"

// Polyline joins consecutive points into lines. When closed is set the last
// point is joined back to the first.
func Polyline(points []Vector2D, closed bool, elasticity float64) []Line {
	if len(points) < 2 {
		return nil
	}
	lines := make([]Line, 0, len(points))
	for i := 0; i+1 < len(points); i++ {
		lines = append(lines, NewLine(points[i], points[i+1], elasticity))
	}
	if closed && len(points) > 2 {
		lines = append(lines, NewLine(points[len(points)-1], points[0], elasticity))
	}
	return lines
}

// RegularPolygon returns a closed n-gon of the given circumradius centred on
// the origin, with its first vertex at angle 0.
func RegularPolygon(sides int, radius, elasticity float64) []Line {
	points := make([]Vector2D, sides)
	for k := range points {
		points[k] = FromAngle(2*math.Pi*float64(k)/float64(sides), radius)
	}
	return Polyline(points, true, elasticity)
}

// Box returns a closed width×height rectangle with its top-left corner at
// the origin.
func Box(width, height, elasticity float64) []Line {
	return Polyline([]Vector2D{
		{X: 0, Y: 0},
		{X: 0, Y: height},
		{X: width, Y: height},
		{X: width, Y: 0},
	}, true, elasticity)
}
