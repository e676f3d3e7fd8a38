package entity

import "github.com/opd-ai/go-roadball/pkg/physics"

// Ground is immovable level geometry. Custom objects share the type and
// only differ in kind.
type Ground struct {
	Base
	kind Kind
}

// NewGround creates terrain from world-space lines.
func NewGround(id ID, lines []physics.Line) Ground {
	return Ground{Base: Base{id: id, body: physics.NewStaticBody(physics.Vector2D{}, lines)}, kind: KindGround}
}

// NewCustomObject creates free-standing static geometry such as a ramp or
// platform.
func NewCustomObject(id ID, lines []physics.Line) Ground {
	g := NewGround(id, lines)
	g.kind = KindCustom
	return g
}

func (g Ground) Kind() Kind { return g.kind }

func (g Ground) WithBody(body physics.Body) Object {
	g.body = body
	return g
}

func (g Ground) UpdatedBeforeCollision(Frame) Object { return g }

func (g Ground) UpdatedWithCollisions([]Object) Object { return g }

func (g Ground) Render(r Renderer) { r.RenderGround(g) }
