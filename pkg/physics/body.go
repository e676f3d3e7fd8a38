package physics

import "math"

// Body is the immutable rigid-body state shared by every simulated object.
// Lines are stored in body-local coordinates centred on the centre of mass;
// Position is the centre of mass in world space.
type Body struct {
	Position        Vector2D `json:"position"`
	Velocity        Vector2D `json:"velocity"`
	Angle           float64  `json:"angle"`
	AngularVelocity float64  `json:"angularVelocity"`
	Mass            float64  `json:"mass"`
	Inertia         float64  `json:"inertia"`
	// CenterOfMass is the offset removed from the lines at construction.
	CenterOfMass Vector2D `json:"centerOfMass"`
	Lines        []Line   `json:"lines"`
}

// NewBody builds a body from lines given relative to position. The centre of
// mass is taken as the mean of the line midpoints; the lines are re-centred
// on it and position is moved onto it.
func NewBody(position Vector2D, lines []Line, mass, inertia float64) Body {
	com := centroid(lines)
	local := make([]Line, len(lines))
	for i, l := range lines {
		local[i] = l.Offset(com.Negate())
	}
	return Body{
		Position:     position.Add(com),
		Mass:         mass,
		Inertia:      inertia,
		CenterOfMass: com,
		Lines:        local,
	}
}

// NewStaticBody builds an immovable body with infinite mass and inertia.
func NewStaticBody(position Vector2D, lines []Line) Body {
	return NewBody(position, lines, math.Inf(1), math.Inf(1))
}

func centroid(lines []Line) Vector2D {
	if len(lines) == 0 {
		return Vector2D{}
	}
	var sum Vector2D
	for _, l := range lines {
		sum = sum.Add(l.Midpoint())
	}
	return sum.Scale(1 / float64(len(lines)))
}

// IsStatic reports whether the body has infinite mass.
func (b Body) IsStatic() bool {
	return math.IsInf(b.Mass, 1)
}

// InverseMass returns 1/Mass, or 0 for infinite or non-positive mass.
func (b Body) InverseMass() float64 {
	if math.IsInf(b.Mass, 1) || b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}

// InverseInertia returns 1/Inertia, or 0 for infinite or non-positive inertia.
func (b Body) InverseInertia() float64 {
	if math.IsInf(b.Inertia, 1) || b.Inertia <= 0 {
		return 0
	}
	return 1 / b.Inertia
}

// WorldLines projects the local lines into world space: rotate by Angle,
// then translate by Position.
func (b Body) WorldLines() []Line {
	world := make([]Line, len(b.Lines))
	for i, l := range b.Lines {
		world[i] = l.Rotate(b.Angle).Offset(b.Position)
	}
	return world
}

// Bounds returns the world-space bounding rectangle of the body.
func (b Body) Bounds() Rect {
	return Bounds(b.WorldLines())
}

// Delta returns the displacement and rotation the body covers in dt seconds.
func (b Body) Delta(dt float64) (Vector2D, float64) {
	return b.Velocity.Scale(dt), b.AngularVelocity * dt
}

// Advanced returns the body moved by fraction f of its dt delta.
func (b Body) Advanced(dt, f float64) Body {
	move, turn := b.Delta(dt)
	return b.Moved(move.Scale(f)).Rotated(turn * f)
}

// Moved returns the body translated by offset.
func (b Body) Moved(offset Vector2D) Body {
	b.Position = b.Position.Add(offset)
	return b
}

// Rotated returns the body turned by angle radians.
func (b Body) Rotated(angle float64) Body {
	b.Angle += angle
	return b
}

// WithPosition returns a copy with Position replaced.
func (b Body) WithPosition(p Vector2D) Body {
	b.Position = p
	return b
}

// WithVelocity returns a copy with Velocity replaced.
func (b Body) WithVelocity(v Vector2D) Body {
	b.Velocity = v
	return b
}

// WithAngularVelocity returns a copy with AngularVelocity replaced.
func (b Body) WithAngularVelocity(w float64) Body {
	b.AngularVelocity = w
	return b
}

// WithAngle returns a copy with Angle replaced.
func (b Body) WithAngle(a float64) Body {
	b.Angle = a
	return b
}

// WithLines returns a copy with new local lines. The lines are used as
// given; no re-centring happens.
func (b Body) WithLines(lines []Line) Body {
	b.Lines = lines
	return b
}

// ApplyForce adds the velocity change of force acting for dt seconds.
func (b Body) ApplyForce(force Vector2D, dt float64) Body {
	if b.IsStatic() {
		return b
	}
	b.Velocity = b.Velocity.Add(force.Scale(b.InverseMass() * dt))
	return b
}

// ApplyTorque adds the angular velocity change of torque acting for dt seconds.
func (b Body) ApplyTorque(torque, dt float64) Body {
	if b.IsStatic() {
		return b
	}
	b.AngularVelocity += torque * b.InverseInertia() * dt
	return b
}

// CollisionWith tests every world line of b against every world line of
// other. Bodies whose bounds are disjoint are rejected without the line test.
func (b Body) CollisionWith(other Body) Collision {
	self := b.WorldLines()
	them := other.WorldLines()
	if !Bounds(self).Overlaps(Bounds(them)) {
		return Collision{}
	}
	return collide(self, them)
}

// Integrate applies gravity and drag to the velocities. Position and angle
// are left for the collision stage to commit.
func (b Body) Integrate(p Params, dt float64) Body {
	if b.IsStatic() {
		return b
	}
	b.Velocity = b.Velocity.Add(p.Gravity.Scale(dt)).Scale(1 - p.LinearDrag*dt)
	b.AngularVelocity *= 1 - p.AngularDrag*dt
	return b
}
