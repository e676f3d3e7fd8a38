package entity

import (
	"math"

	"github.com/opd-ai/go-roadball/pkg/physics"
	"github.com/opd-ai/go-roadball/pkg/pipeline"
)

// FlyingState distinguishes free flight from a dodge in progress.
type FlyingState int

const (
	Flying FlyingState = iota
	Dodging
)

// JumpState latches the jump key so a held key triggers only once.
type JumpState int

const (
	Station JumpState = iota
	Jumping
)

// ToggleState latches a held key for edge-triggered actions.
type ToggleState int

const (
	Idle ToggleState = iota
	Active
)

// CarTuning holds the car's shape and handling constants. Thrusts and
// torque are accelerations; impulses are velocity changes.
type CarTuning struct {
	Width          float64 `json:"width" yaml:"width"`
	Height         float64 `json:"height" yaml:"height"`
	Mass           float64 `json:"mass" yaml:"mass"`
	Elasticity     float64 `json:"elasticity" yaml:"elasticity"`
	GroundThrust   float64 `json:"groundThrust" yaml:"groundThrust"`
	NitroThrust    float64 `json:"nitroThrust" yaml:"nitroThrust"`
	AirTorque      float64 `json:"airTorque" yaml:"airTorque"`
	MaxSpeed       float64 `json:"maxSpeed" yaml:"maxSpeed"`
	JumpImpulse    float64 `json:"jumpImpulse" yaml:"jumpImpulse"`
	JumpDuration   int     `json:"jumpDuration" yaml:"jumpDuration"`
	DodgeImpulse   float64 `json:"dodgeImpulse" yaml:"dodgeImpulse"`
	DodgeSpin      float64 `json:"dodgeSpin" yaml:"dodgeSpin"`
	DodgeDuration  int     `json:"dodgeDuration" yaml:"dodgeDuration"`
	TireRadius     float64 `json:"tireRadius" yaml:"tireRadius"`
	GroundDistance float64 `json:"groundDistance" yaml:"groundDistance"`
}

// DefaultCarTuning returns the handling the built-in levels are tuned for.
func DefaultCarTuning() CarTuning {
	return CarTuning{
		Width:          60,
		Height:         20,
		Mass:           50,
		Elasticity:     0.2,
		GroundThrust:   40,
		NitroThrust:    60,
		AirTorque:      8,
		MaxSpeed:       90,
		JumpImpulse:    12,
		JumpDuration:   5,
		DodgeImpulse:   25,
		DodgeSpin:      8,
		DodgeDuration:  10,
		TireRadius:     5,
		GroundDistance: 1,
	}
}

// Car is the player-controlled vehicle.
type Car struct {
	Base
	Tuning CarTuning

	Flying FlyingState
	Jump   JumpState
	Nitro  ToggleState
	FlipX  ToggleState
	FlipY  ToggleState

	// JumpTimer counts frames since the last jump started.
	JumpTimer int
	// FlipTimer counts frames since the current dodge started.
	FlipTimer int
	JumpCount int

	TouchingGround bool
	Mirrored       bool
	UpsideDown     bool
	TireAngle      float64
	DodgeDirection physics.Vector2D

	// Tires are the two contact points in body-local coordinates.
	Tires [2]physics.Vector2D
}

// NewCar builds a car whose bounding box has its top-left corner at
// position.
func NewCar(id ID, position physics.Vector2D, tuning CarTuning) Car {
	w, h := tuning.Width, tuning.Height
	outline := []physics.Vector2D{
		{X: 0, Y: h * 0.4},
		{X: 0, Y: h},
		{X: w, Y: h},
		{X: w, Y: h * 0.5},
		{X: w * 0.75, Y: h * 0.4},
		{X: w * 0.6, Y: 0},
		{X: w * 0.3, Y: 0},
		{X: w * 0.2, Y: h * 0.4},
	}
	body := physics.NewBody(position, physics.Polyline(outline, true, tuning.Elasticity),
		tuning.Mass, tuning.Mass*(w*w+h*h)/12)

	com := body.CenterOfMass
	return Car{
		Base:      Base{id: id, body: body},
		Tuning:    tuning,
		JumpTimer: tuning.JumpDuration,
		Tires: [2]physics.Vector2D{
			physics.Vec(w*0.2, h).Sub(com),
			physics.Vec(w*0.8, h).Sub(com),
		},
	}
}

func (c Car) Kind() Kind { return KindCar }

func (c Car) WithBody(body physics.Body) Object {
	c.body = body
	return c
}

func (c Car) Render(r Renderer) { r.RenderCar(c) }

// Heading is the unit vector the car drives towards.
func (c Car) Heading() physics.Vector2D {
	h := physics.FromAngle(c.body.Angle, 1)
	if c.Mirrored {
		h = h.Negate()
	}
	return h
}

// Up is the unit vector out of the car's roof.
func (c Car) Up() physics.Vector2D {
	up := physics.Vec(0, -1).Rotate(c.body.Angle)
	if c.UpsideDown {
		up = up.Negate()
	}
	return up
}

// WorldTires returns the tire contact points in world space.
func (c Car) WorldTires() [2]physics.Vector2D {
	var out [2]physics.Vector2D
	for i, t := range c.Tires {
		out[i] = c.body.Position.Add(t.Rotate(c.body.Angle))
	}
	return out
}

// UpdatedBeforeCollision runs the input and force stages in their fixed
// order.
func (c Car) UpdatedBeforeCollision(f Frame) Object {
	return c.stages(f).Apply(c)
}

func (c Car) stages(f Frame) pipeline.Pipeline[Car] {
	in, dt := f.Input, f.DT
	return pipeline.New[Car](
		func(c Car) Car { return c.flipped(in) },
		func(c Car) Car { return c.boosted(in, dt) },
		func(c Car) Car { return c.driven(in, dt) },
		func(c Car) Car { return c.WithGroundContact(f.Grounds) },
		func(c Car) Car { return c.landed() },
		func(c Car) Car { return c.jumped(in) },
		func(c Car) Car { return c.dodged() },
		func(c Car) Car { return c.torqued(in, dt) },
		func(c Car) Car { return c.tiresSpun(dt) },
		func(c Car) Car {
			c.body = physics.ClampSpeed(c.body.Integrate(f.Params, dt), c.Tuning.MaxSpeed)
			return c
		},
	)
}

// flipped mirrors the car on the rising edge of S (horizontal) or D
// (vertical).
func (c Car) flipped(in Input) Car {
	if in.Pressed(ActionS) {
		if c.FlipX == Idle {
			c = c.mirrored(physics.Line.FlipX, func(v physics.Vector2D) physics.Vector2D {
				return physics.Vec(-v.X, v.Y)
			})
			c.Mirrored = !c.Mirrored
		}
		c.FlipX = Active
	} else {
		c.FlipX = Idle
	}

	if in.Pressed(ActionD) {
		if c.FlipY == Idle {
			c = c.mirrored(physics.Line.FlipY, func(v physics.Vector2D) physics.Vector2D {
				return physics.Vec(v.X, -v.Y)
			})
			c.UpsideDown = !c.UpsideDown
		}
		c.FlipY = Active
	} else {
		c.FlipY = Idle
	}
	return c
}

func (c Car) mirrored(flipLine func(physics.Line) physics.Line, flipPoint func(physics.Vector2D) physics.Vector2D) Car {
	lines := make([]physics.Line, len(c.body.Lines))
	for i, l := range c.body.Lines {
		lines[i] = flipLine(l)
	}
	c.body = c.body.WithLines(lines)
	for i, t := range c.Tires {
		c.Tires[i] = flipPoint(t)
	}
	return c
}

func (c Car) boosted(in Input, dt float64) Car {
	if !in.Pressed(ActionNitro) {
		c.Nitro = Idle
		return c
	}
	c.Nitro = Active
	c.body = physics.ApplyThrust(c.body, c.Heading().Angle(), c.Tuning.NitroThrust, dt)
	return c
}

// driven accelerates along the car's floor while both tires are down.
func (c Car) driven(in Input, dt float64) Car {
	if !c.TouchingGround {
		return c
	}
	x, _ := in.Axis()
	c.body = physics.ApplyThrust(c.body, c.body.Angle, x*c.Tuning.GroundThrust, dt)
	return c
}

// WithGroundContact sets TouchingGround when both tires lie within
// GroundDistance of some ground line.
func (c Car) WithGroundContact(grounds []physics.Line) Car {
	touching := true
	for _, tire := range c.WorldTires() {
		if !nearAny(tire, grounds, c.Tuning.GroundDistance) {
			touching = false
			break
		}
	}
	c.TouchingGround = touching
	return c
}

func nearAny(p physics.Vector2D, lines []physics.Line, distance float64) bool {
	for _, l := range lines {
		if l.PointDistance(p) <= distance {
			return true
		}
	}
	return false
}

func (c Car) jumpPhaseOver() bool {
	return c.JumpTimer >= c.Tuning.JumpDuration
}

func (c Car) landed() Car {
	if c.TouchingGround && c.jumpPhaseOver() {
		c.JumpCount = 0
	}
	return c
}

// jumped starts a jump or queues a dodge on the rising edge of A and keeps
// pushing for JumpDuration frames with a 1/2^k falloff.
func (c Car) jumped(in Input) Car {
	if !in.Pressed(ActionA) {
		c.Jump = Station
	} else if c.Jump == Station {
		c.Jump = Jumping
		x, y := in.Axis()
		switch {
		case !c.TouchingGround && c.JumpCount == 1 && (x != 0 || y != 0):
			c.Flying = Dodging
			c.FlipTimer = 0
			c.DodgeDirection = physics.Vec(x, y).Normalize()
		case c.JumpCount < 2 && c.Flying != Dodging:
			c.JumpTimer = 0
			c.JumpCount++
		}
	}

	if c.Flying != Dodging && !c.jumpPhaseOver() {
		impulse := c.Tuning.JumpImpulse / math.Pow(2, float64(c.JumpTimer))
		c.body = c.body.WithVelocity(c.body.Velocity.Add(c.Up().Scale(impulse)))
		c.JumpTimer++
	}
	return c
}

// dodged fires the dodge impulse on its first frame and ends the dodge after
// DodgeDuration frames. A dodge uses up the remaining jump.
func (c Car) dodged() Car {
	if c.Flying != Dodging {
		return c
	}
	if c.FlipTimer == 0 {
		c.JumpCount = 2
		c.JumpTimer = c.Tuning.JumpDuration
		c.body = c.body.WithVelocity(c.body.Velocity.Add(c.DodgeDirection.Scale(c.Tuning.DodgeImpulse)))
		spin := c.DodgeDirection.X
		if spin == 0 {
			spin = c.DodgeDirection.Y
		}
		if c.Mirrored {
			spin = -spin
		}
		c.body = c.body.WithAngularVelocity(math.Copysign(c.Tuning.DodgeSpin, spin))
	}
	c.FlipTimer++
	if c.FlipTimer >= c.Tuning.DodgeDuration {
		c.Flying = Flying
	}
	return c
}

// torqued turns the car while airborne.
func (c Car) torqued(in Input, dt float64) Car {
	if c.TouchingGround || c.Flying == Dodging {
		return c
	}
	x, _ := in.Axis()
	c.body = c.body.WithAngularVelocity(c.body.AngularVelocity + x*c.Tuning.AirTorque*dt)
	return c
}

func (c Car) tiresSpun(dt float64) Car {
	if c.Tuning.TireRadius <= 0 {
		return c
	}
	c.TireAngle = math.Mod(c.TireAngle+c.body.Velocity.Dot(c.Heading())/c.Tuning.TireRadius*dt, 2*math.Pi)
	return c
}

// UpdatedWithCollisions stops vertical motion during a dodge, and stops
// spin and upward drift while resting on the ground.
func (c Car) UpdatedWithCollisions([]Object) Object {
	v := c.body.Velocity
	if c.Flying == Dodging {
		v.Y = 0
	}
	if c.TouchingGround && c.jumpPhaseOver() {
		c.body = c.body.WithAngularVelocity(0)
		if v.Y < 0 {
			v.Y = 0
		}
	}
	c.body = c.body.WithVelocity(v)
	return c
}
