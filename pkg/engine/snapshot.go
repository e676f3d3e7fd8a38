package engine

import (
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/physics"
)

// ObjectSnapshot is the render-ready state of one object.
type ObjectSnapshot struct {
	ID       entity.ID        `json:"id"`
	Kind     string           `json:"kind"`
	Layer    int              `json:"layer"`
	Position physics.Vector2D `json:"position"`
	Velocity physics.Vector2D `json:"velocity"`
	Angle    float64          `json:"angle"`
	Lines    []physics.Line   `json:"lines"`
	Hit      bool             `json:"hit,omitempty"`
	// Tires holds the car's world-space tire points.
	Tires          []physics.Vector2D `json:"tires,omitempty"`
	TireAngle      float64            `json:"tireAngle,omitempty"`
	TouchingGround bool               `json:"touchingGround,omitempty"`
}

// Snapshot is a copy of everything a render sink needs for one frame. It
// shares no memory with the running game.
type Snapshot struct {
	SessionID   string           `json:"sessionId"`
	Frame       uint64           `json:"frame"`
	Level       int              `json:"level"`
	LevelName   string           `json:"levelName"`
	Won         bool             `json:"won"`
	Lost        bool             `json:"lost"`
	Completed   bool             `json:"completed"`
	Camera      physics.Vector2D `json:"camera"`
	Objects     []ObjectSnapshot `json:"objects"`
	Fingerprint uint64           `json:"fingerprint"`
}

// NewObjectSnapshot captures o as it sits in layer index layer.
func NewObjectSnapshot(o entity.Object, layer int) ObjectSnapshot {
	b := o.Body()
	s := ObjectSnapshot{
		ID:       o.ID(),
		Kind:     o.Kind().String(),
		Layer:    layer,
		Position: b.Position,
		Velocity: b.Velocity,
		Angle:    b.Angle,
		Lines:    b.WorldLines(),
	}
	switch obj := o.(type) {
	case entity.Target:
		s.Hit = obj.Hit
	case entity.Car:
		tires := obj.WorldTires()
		s.Tires = tires[:]
		s.TireAngle = obj.TireAngle
		s.TouchingGround = obj.TouchingGround
	}
	return s
}

// levelObjects snapshots every object of every layer, layer by layer.
func levelObjects(lv Level) []ObjectSnapshot {
	var out []ObjectSnapshot
	for i, l := range lv.layers {
		for _, o := range l.Objects() {
			out = append(out, NewObjectSnapshot(o, i))
		}
	}
	return out
}
