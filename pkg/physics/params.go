package physics

// Params holds the world constants used by the integrator.
type Params struct {
	Gravity     Vector2D `json:"gravity" yaml:"gravity"`
	LinearDrag  float64  `json:"linearDrag" yaml:"linearDrag"`
	AngularDrag float64  `json:"angularDrag" yaml:"angularDrag"`
	// TimeScale multiplies every frame's step after the ms-to-seconds
	// conversion.
	TimeScale float64 `json:"timeScale" yaml:"timeScale"`
}

// DefaultParams returns the tuning the built-in levels are designed for.
func DefaultParams() Params {
	return Params{
		Gravity:     Vector2D{X: 0, Y: 9.8},
		LinearDrag:  0.02,
		AngularDrag: 0.1,
		TimeScale:   2.6,
	}
}

// Step converts a frame duration in milliseconds to simulation seconds.
func (p Params) Step(timeUnitMS float64) float64 {
	return timeUnitMS / 1000 * p.TimeScale
}
