// pkg/engine/layer.go
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/physics"
	"github.com/opd-ai/go-roadball/pkg/pipeline"
)

var (
	// ErrObjectNotFound is returned when an id is not present in a layer.
	ErrObjectNotFound = errors.New("object not found")
	// ErrDuplicateObject is returned when an id is added to a layer twice.
	ErrDuplicateObject = errors.New("duplicate object id")
)

// Contact records that two objects touched during a frame.
type Contact struct {
	A, B entity.ID
}

// FrameReport summarises what a frame did.
type FrameReport struct {
	Contacts []Contact
	Duration time.Duration
}

// Layer is an immutable set of objects simulated together. Objects are kept
// in insertion order, which is also the resolution order of every frame.
// Updated never changes the receiver; it returns a new Layer.
type Layer struct {
	name      string
	params    physics.Params
	order     []entity.ID
	objects   map[entity.ID]entity.Object
	telemetry Telemetry
}

// NewLayer creates a layer holding objects in the given order.
func NewLayer(name string, params physics.Params, objects ...entity.Object) (Layer, error) {
	l := Layer{
		name:    name,
		params:  params,
		objects: make(map[entity.ID]entity.Object, len(objects)),
	}
	for _, o := range objects {
		var err error
		if l, err = l.With(o); err != nil {
			return Layer{}, err
		}
	}
	return l, nil
}

// Name returns the layer's name.
func (l Layer) Name() string { return l.name }

// Params returns the physics constants of the layer.
func (l Layer) Params() physics.Params { return l.params }

// Telemetry returns the frame timing window.
func (l Layer) Telemetry() Telemetry { return l.telemetry }

// Len returns the number of objects.
func (l Layer) Len() int { return len(l.order) }

// With returns a layer with o appended.
func (l Layer) With(o entity.Object) (Layer, error) {
	if _, ok := l.objects[o.ID()]; ok {
		return Layer{}, fmt.Errorf("%w: %d in layer %q", ErrDuplicateObject, o.ID(), l.name)
	}
	objects := l.cloneObjects()
	objects[o.ID()] = o
	l.objects = objects
	l.order = append(l.order[:len(l.order):len(l.order)], o.ID())
	return l, nil
}

// Replaced returns a layer with the object of the same id swapped for o.
func (l Layer) Replaced(o entity.Object) (Layer, error) {
	if _, ok := l.objects[o.ID()]; !ok {
		return Layer{}, fmt.Errorf("%w: %d in layer %q", ErrObjectNotFound, o.ID(), l.name)
	}
	objects := l.cloneObjects()
	objects[o.ID()] = o
	l.objects = objects
	return l, nil
}

// Object looks up an object by id.
func (l Layer) Object(id entity.ID) (entity.Object, error) {
	o, ok := l.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d in layer %q", ErrObjectNotFound, id, l.name)
	}
	return o, nil
}

// Objects returns the objects in insertion order.
func (l Layer) Objects() []entity.Object {
	out := make([]entity.Object, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.objects[id])
	}
	return out
}

// GroundLines returns the world lines of every ground-like object.
func (l Layer) GroundLines() []physics.Line {
	return pipeline.Reduce(l.Objects(), []physics.Line(nil), func(acc []physics.Line, o entity.Object) []physics.Line {
		if !o.Kind().IsGroundLike() {
			return acc
		}
		return append(acc, o.Body().WorldLines()...)
	})
}

func (l Layer) cloneObjects() map[entity.ID]entity.Object {
	objects := make(map[entity.ID]entity.Object, len(l.objects)+1)
	for id, o := range l.objects {
		objects[id] = o
	}
	return objects
}

// frameState is the working copy a single frame transforms. The layer's own
// map is never written; a frame starts from a clone.
type frameState struct {
	frame    entity.Frame
	order    []entity.ID
	objects  map[entity.ID]entity.Object
	collided map[entity.ID][]entity.ID
	contacts []Contact
	err      error
}

// Updated advances the layer by one frame of timeUnitMS milliseconds.
func (l Layer) Updated(timeUnitMS float64, in entity.Input) (Layer, FrameReport, error) {
	started := time.Now()

	state := frameState{
		frame: entity.Frame{
			DT:      l.params.Step(timeUnitMS),
			Input:   in,
			Params:  l.params,
			Grounds: l.GroundLines(),
		},
		order:    l.order,
		objects:  l.cloneObjects(),
		collided: make(map[entity.ID][]entity.ID),
	}

	state = pipeline.New[frameState](
		integrated,
		resolved,
		staticHooksRun,
	).Apply(state)
	if state.err != nil {
		return l, FrameReport{}, state.err
	}

	elapsed := time.Since(started)
	next := l
	next.objects = state.objects
	next.telemetry = l.telemetry.Record(elapsed)
	return next, FrameReport{Contacts: state.contacts, Duration: elapsed}, nil
}

// integrated runs every dynamic object's force and input model.
func integrated(s frameState) frameState {
	for _, id := range s.order {
		o := s.objects[id]
		if o.Body().IsStatic() {
			continue
		}
		s.objects[id] = o.UpdatedBeforeCollision(s.frame)
	}
	return s
}

// resolved resolves each dynamic object against every other object, then
// runs its collision hook and commits its displacement. Objects resolved
// earlier in the frame are seen at their new state by later ones.
func resolved(s frameState) frameState {
	if s.err != nil {
		return s
	}
	dt := s.frame.DT
	for _, id := range s.order {
		self, err := s.lookup(id)
		if err != nil {
			s.err = err
			return s
		}
		if self.Body().IsStatic() {
			continue
		}

		for _, otherID := range s.order {
			if otherID == id {
				continue
			}
			other, err := s.lookup(otherID)
			if err != nil {
				s.err = err
				return s
			}

			a, b := self.Body(), other.Body()
			if !a.Advanced(dt, 1).CollisionWith(b.Advanced(dt, 1)).Collided() {
				continue
			}

			var c physics.Collision
			if b.IsStatic() {
				a, c = physics.ResolveGround(a, b, dt)
			} else {
				a, b, c = physics.ResolvePair(a, b, dt)
				s.objects[otherID] = other.WithBody(b)
			}
			if !c.Collided() {
				continue
			}
			self = self.WithBody(a)
			s.touch(id, otherID)
		}

		self = self.UpdatedWithCollisions(s.collidedWith(id))
		move, turn := self.Body().Delta(dt)
		s.objects[id] = self.WithBody(self.Body().Moved(move).Rotated(turn))
	}
	return s
}

// staticHooksRun lets static objects react to what touched them.
func staticHooksRun(s frameState) frameState {
	if s.err != nil {
		return s
	}
	for _, id := range s.order {
		o := s.objects[id]
		if !o.Body().IsStatic() || len(s.collided[id]) == 0 {
			continue
		}
		s.objects[id] = o.UpdatedWithCollisions(s.collidedWith(id))
	}
	return s
}

func (s *frameState) lookup(id entity.ID) (entity.Object, error) {
	o, ok := s.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrObjectNotFound, id)
	}
	return o, nil
}

func (s *frameState) touch(a, b entity.ID) {
	s.contacts = append(s.contacts, Contact{A: a, B: b})
	s.collided[a] = appendUnique(s.collided[a], b)
	s.collided[b] = appendUnique(s.collided[b], a)
}

func (s *frameState) collidedWith(id entity.ID) []entity.Object {
	ids := s.collided[id]
	out := make([]entity.Object, 0, len(ids))
	for _, other := range ids {
		out = append(out, s.objects[other])
	}
	return out
}

func appendUnique(ids []entity.ID, id entity.ID) []entity.ID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
