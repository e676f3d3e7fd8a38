package physics

// SearchIterations bounds every binary search in the solver.
const SearchIterations = 10

// ContactSearch returns the smallest magnitude in [0, max] for which
// colliding reports false, to within max/2^iterations. It returns 0 when
// the bodies are already clear and max when even max does not separate
// them. colliding must be monotonic: true below some threshold, false above.
func ContactSearch(colliding func(x float64) bool, max float64, iterations int) float64 {
	if !colliding(0) {
		return 0
	}
	if colliding(max) {
		return max
	}
	lo, hi := 0.0, max
	for i := 0; i < iterations; i++ {
		mid := (lo + hi) / 2
		if colliding(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}

// TimeOfImpact finds the earliest fraction of the frame at which a and b,
// each advanced by that fraction of its dt delta, collide. It returns the
// collision at that fraction together with the advanced bodies. A pair that
// already collides is reported at fraction 0; a pair that never collides
// within the frame returns an empty collision and fraction 1.
func TimeOfImpact(a, b Body, dt float64) (Collision, Body, Body, float64) {
	if c := a.CollisionWith(b); c.Collided() {
		return c, a, b, 0
	}

	at := func(f float64) (Collision, Body, Body) {
		af, bf := a.Advanced(dt, f), b.Advanced(dt, f)
		return af.CollisionWith(bf), af, bf
	}

	c, ah, bh := at(1)
	if !c.Collided() {
		return c, ah, bh, 1
	}

	lo, hi := 0.0, 1.0
	for i := 0; i < SearchIterations; i++ {
		mid := (lo + hi) / 2
		mc, ma, mb := at(mid)
		if mc.Collided() {
			hi, c, ah, bh = mid, mc, ma, mb
		} else {
			lo = mid
		}
	}
	return c, ah, bh, hi
}
