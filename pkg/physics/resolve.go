package physics

// Contact correction tuning per resolution path.
const (
	GroundCorrectionMax       = 50.0
	GroundCorrectionAmplifier = 1.0
	PairCorrectionMax         = 10.0
	PairCorrectionAmplifier   = 1.6
)

// ResolveGround resolves a dynamic body against a static one. The static
// body never changes. Each intersection contributes an impulse along the
// static line's normal, weighted 1/N over N intersections and computed from
// the velocities a had before any of them was applied, so the N weighted
// impulses add up to one full impulse. A velocity correction along the
// summed contact normal then keeps a from sinking into the ground on its
// next step.
//
// Restitution is the mean of the two lines' elasticities.
func ResolveGround(a, ground Body, dt float64) (Body, Collision) {
	c, ah, _, _ := TimeOfImpact(a, ground, dt)
	if !c.Collided() {
		return a, c
	}

	invM, invI := a.InverseMass(), a.InverseInertia()
	v, w := a.Velocity, a.AngularVelocity
	weight := 1 / float64(len(c.Intersections))

	type contact struct {
		r, n Vector2D
		j    float64
	}
	contacts := make([]contact, 0, len(c.Intersections))
	var dir Vector2D

	for _, in := range c.Intersections {
		n := in.OtherLine.Normal
		if n.Dot(ah.Position.Sub(in.Point)) < 0 {
			n = n.Negate()
		}
		dir = dir.Add(n)

		r := in.Point.Sub(ah.Position)
		vn := v.Add(r.CrossScalar(w)).Dot(n)
		if vn >= 0 {
			continue
		}
		e := (in.SelfLine.Elasticity + in.OtherLine.Elasticity) / 2
		rn := r.Cross(n)
		denom := invM + rn*rn*invI
		if denom == 0 {
			continue
		}
		contacts = append(contacts, contact{r: r, n: n, j: (1 + e) * vn / denom * weight})
	}

	for _, ct := range contacts {
		impulse := ct.n.Scale(ct.j)
		a.Velocity = a.Velocity.Sub(impulse.Scale(invM))
		a.AngularVelocity -= ct.r.Cross(impulse) * invI
	}

	dir = dir.Normalize()
	if dir.IsZero() {
		dir = ah.Position.Sub(c.ContactPoint()).Normalize()
	}
	x := ContactSearch(func(x float64) bool {
		probe := a.WithVelocity(a.Velocity.Add(dir.Scale(x)))
		return probe.Advanced(dt, 1).CollisionWith(ground).Collided()
	}, GroundCorrectionMax, SearchIterations)
	a.Velocity = a.Velocity.Add(dir.Scale(x * GroundCorrectionAmplifier))

	return a, c
}

// ResolvePair resolves two dynamic bodies with a single impulse at the mean
// intersection point, then pushes them apart along the centre-to-centre
// direction, split by mass, until their next steps no longer overlap.
//
// Restitution is the smaller elasticity of the first intersecting pair.
func ResolvePair(a, b Body, dt float64) (Body, Body, Collision) {
	c, ah, bh, _ := TimeOfImpact(a, b, dt)
	if !c.Collided() {
		return a, b, c
	}

	apart := ah.Position.Sub(bh.Position).Normalize()
	n := c.Normal()
	if n.IsZero() {
		n = apart
	} else if n.Dot(apart) < 0 {
		n = n.Negate()
	}

	p := c.ContactPoint()
	rA, rB := p.Sub(ah.Position), p.Sub(bh.Position)
	invMA, invIA := a.InverseMass(), a.InverseInertia()
	invMB, invIB := b.InverseMass(), b.InverseInertia()

	vAP := a.Velocity.Add(rA.CrossScalar(a.AngularVelocity))
	vBP := b.Velocity.Add(rB.CrossScalar(b.AngularVelocity))
	vn := vAP.Sub(vBP).Dot(n)

	first := c.Intersections[0]
	e := min(first.SelfLine.Elasticity, first.OtherLine.Elasticity)

	rAn, rBn := rA.Cross(n), rB.Cross(n)
	denom := invMA + invMB + rAn*rAn*invIA + rBn*rBn*invIB
	if vn < 0 && denom > 0 {
		impulse := n.Scale((1 + e) * vn / denom)
		a.Velocity = a.Velocity.Sub(impulse.Scale(invMA))
		a.AngularVelocity -= rA.Cross(impulse) * invIA
		b.Velocity = b.Velocity.Add(impulse.Scale(invMB))
		b.AngularVelocity += rB.Cross(impulse) * invIB
	}

	wA, wB := 0.5, 0.5
	if total := a.Mass + b.Mass; total > 0 {
		wA, wB = b.Mass/total, a.Mass/total
	}
	if apart.IsZero() {
		apart = n
	}
	x := ContactSearch(func(x float64) bool {
		pa := a.WithVelocity(a.Velocity.Add(apart.Scale(x * wA)))
		pb := b.WithVelocity(b.Velocity.Sub(apart.Scale(x * wB)))
		return pa.Advanced(dt, 1).CollisionWith(pb.Advanced(dt, 1)).Collided()
	}, PairCorrectionMax, SearchIterations)
	a.Velocity = a.Velocity.Add(apart.Scale(x * wA * PairCorrectionAmplifier))
	b.Velocity = b.Velocity.Sub(apart.Scale(x * wB * PairCorrectionAmplifier))

	return a, b, c
}
