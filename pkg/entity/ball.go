package entity

import "github.com/opd-ai/go-roadball/pkg/physics"

// BallSides is the number of edges approximating the ball's circle.
const BallSides = 16

// Ball is a dynamic regular polygon approximating a disc.
type Ball struct {
	Base
	Radius float64
}

// NewBall creates a ball centred on center with the inertia of a solid disc.
func NewBall(id ID, center physics.Vector2D, radius, mass, elasticity float64) Ball {
	lines := physics.RegularPolygon(BallSides, radius, elasticity)
	return Ball{
		Base:   Base{id: id, body: physics.NewBody(center, lines, mass, mass*radius*radius/2)},
		Radius: radius,
	}
}

func (b Ball) Kind() Kind { return KindBall }

func (b Ball) WithBody(body physics.Body) Object {
	b.body = body
	return b
}

// UpdatedBeforeCollision applies gravity and drag.
func (b Ball) UpdatedBeforeCollision(f Frame) Object {
	b.body = b.body.Integrate(f.Params, f.DT)
	return b
}

func (b Ball) UpdatedWithCollisions([]Object) Object { return b }

func (b Ball) Render(r Renderer) { r.RenderBall(b) }
