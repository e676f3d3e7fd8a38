package entity

import "github.com/opd-ai/go-roadball/pkg/physics"

// Target is static geometry that records being touched by the ball or the
// car. An obstacle hit loses the level, a goal hit wins it.
type Target struct {
	Base
	kind Kind
	Hit  bool
}

// NewObstacle creates an obstacle from world-space lines.
func NewObstacle(id ID, lines []physics.Line) Target {
	return Target{Base: Base{id: id, body: physics.NewStaticBody(physics.Vector2D{}, lines)}, kind: KindObstacle}
}

// NewGoal creates a goal from world-space lines.
func NewGoal(id ID, lines []physics.Line) Target {
	t := NewObstacle(id, lines)
	t.kind = KindGoal
	return t
}

func (t Target) Kind() Kind { return t.kind }

func (t Target) WithBody(body physics.Body) Object {
	t.body = body
	return t
}

func (t Target) UpdatedBeforeCollision(Frame) Object { return t }

// UpdatedWithCollisions latches Hit once a ball or car has touched the target.
func (t Target) UpdatedWithCollisions(collided []Object) Object {
	if containsKind(collided, KindBall, KindCar) {
		t.Hit = true
	}
	return t
}

func (t Target) Render(r Renderer) { r.RenderTarget(t) }
