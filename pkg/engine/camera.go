package engine

import (
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/physics"
)

// Camera follows one object. Offset is where the target should appear in
// view space, usually half the viewport.
type Camera struct {
	Target entity.ID        `json:"target"`
	Offset physics.Vector2D `json:"offset"`
}

// Coordinates returns the world point drawn at the view origin. Renderers
// subtract it from world coordinates.
func (c Camera) Coordinates(l Layer) (physics.Vector2D, error) {
	o, err := l.Object(c.Target)
	if err != nil {
		return physics.Vector2D{}, err
	}
	return o.Body().Position.Sub(c.Offset), nil
}
