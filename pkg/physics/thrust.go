package physics

// ApplyThrust accelerates b along heading by thrust for dt seconds. Unlike a
// force, thrust is an acceleration and ignores mass.
func ApplyThrust(b Body, heading, thrust, dt float64) Body {
	if b.IsStatic() || thrust == 0 {
		return b
	}
	return b.WithVelocity(b.Velocity.Add(FromAngle(heading, thrust*dt)))
}

// ClampSpeed limits the length of b's velocity to maxSpeed. A non-positive
// maxSpeed disables the limit.
func ClampSpeed(b Body, maxSpeed float64) Body {
	if maxSpeed <= 0 || b.Velocity.Length() <= maxSpeed {
		return b
	}
	return b.WithVelocity(b.Velocity.Normalize().Scale(maxSpeed))
}
