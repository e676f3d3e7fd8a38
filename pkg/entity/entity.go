// pkg/entity/entity.go
package entity

import (
	"github.com/opd-ai/go-roadball/pkg/physics"
)

// ID is a unique identifier for an object within a level
type ID uint64

// Kind tags the closed set of object variants.
type Kind int

const (
	KindBall Kind = iota
	KindCar
	KindGround
	KindCustom
	KindObstacle
	KindGoal
)

var kindNames = map[Kind]string{
	KindBall:     "ball",
	KindCar:      "car",
	KindGround:   "ground",
	KindCustom:   "custom",
	KindObstacle: "obstacle",
	KindGoal:     "goal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a lowercase kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// IsGroundLike reports whether objects of this kind count as ground for the
// car's tire contact test.
func (k Kind) IsGroundLike() bool {
	return k == KindGround || k == KindCustom
}

// Frame carries everything an object needs to advance by one step.
type Frame struct {
	// DT is the step in simulation seconds.
	DT     float64
	Input  Input
	Params physics.Params
	// Grounds are the world lines of every ground-like object.
	Grounds []physics.Line
}

// Object is the interface for every simulated game object. Implementations
// are values: each method returns a new Object instead of mutating the
// receiver.
type Object interface {
	ID() ID
	Kind() Kind
	Body() physics.Body
	WithBody(b physics.Body) Object
	// UpdatedBeforeCollision applies forces and input. It must not move the
	// object; position and angle are committed after collision resolution.
	UpdatedBeforeCollision(f Frame) Object
	// UpdatedWithCollisions receives every object that collided with this
	// one during the frame.
	UpdatedWithCollisions(collided []Object) Object
	Render(r Renderer)
}

// Base contains the state common to all objects
type Base struct {
	id   ID
	body physics.Body
}

// ID returns the object's unique identifier
func (b Base) ID() ID {
	return b.id
}

// Body returns the object's rigid-body state
func (b Base) Body() physics.Body {
	return b.body
}

// Position returns the centre of mass in world space
func (b Base) Position() physics.Vector2D {
	return b.body.Position
}

// WorldLines returns the object's outline in world space
func (b Base) WorldLines() []physics.Line {
	return b.body.WorldLines()
}

func containsKind(objects []Object, kinds ...Kind) bool {
	for _, o := range objects {
		for _, k := range kinds {
			if o.Kind() == k {
				return true
			}
		}
	}
	return false
}
