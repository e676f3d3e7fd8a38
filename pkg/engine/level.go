package engine

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/physics"
)

// ErrNoLayers is returned when a level is built without any layer.
var ErrNoLayers = errors.New("level has no layers")

// Level groups the layers that make up one playable stage together with its
// win and loss conditions. A Level is a value; Updated and Reset return new
// levels.
type Level struct {
	Name string
	// SeaLevel is the y coordinate below which a car or ball is lost. With
	// y pointing down, "below" means greater than.
	SeaLevel float64
	Camera   Camera
	Won      bool
	Lost     bool

	layers  []Layer
	initial []Layer
}

// NewLevel creates a level from its layers. The layers as given are kept as
// the configuration Reset returns to.
func NewLevel(name string, seaLevel float64, camera Camera, layers ...Layer) (Level, error) {
	if len(layers) == 0 {
		return Level{}, fmt.Errorf("%w: %q", ErrNoLayers, name)
	}
	initial := append([]Layer(nil), layers...)
	return Level{
		Name:     name,
		SeaLevel: seaLevel,
		Camera:   camera,
		layers:   append([]Layer(nil), layers...),
		initial:  initial,
	}, nil
}

// Layers returns the current layers in order.
func (lv Level) Layers() []Layer {
	return append([]Layer(nil), lv.layers...)
}

// Finished reports whether the level reached a terminal state.
func (lv Level) Finished() bool {
	return lv.Won || lv.Lost
}

// Reset returns the level in its original configuration.
func (lv Level) Reset() Level {
	lv.layers = append([]Layer(nil), lv.initial...)
	lv.Won, lv.Lost = false, false
	return lv
}

// Updated advances every layer by one frame and evaluates the terminal
// conditions. Telemetry carries over from the layers that were updated.
func (lv Level) Updated(timeUnitMS float64, in entity.Input) (Level, []Contact, error) {
	layers := make([]Layer, 0, len(lv.layers))
	var contacts []Contact
	for _, l := range lv.layers {
		next, report, err := l.Updated(timeUnitMS, in)
		if err != nil {
			return lv, nil, fmt.Errorf("level %q: %w", lv.Name, err)
		}
		layers = append(layers, next)
		contacts = append(contacts, report.Contacts...)
	}
	lv.layers = layers
	lv.Won, lv.Lost = lv.evaluate()
	return lv, contacts, nil
}

// evaluate checks goals, obstacles and sea level. A loss outranks a win
// reached in the same frame.
func (lv Level) evaluate() (won, lost bool) {
	for _, l := range lv.layers {
		for _, o := range l.Objects() {
			switch obj := o.(type) {
			case entity.Target:
				if !obj.Hit {
					continue
				}
				if obj.Kind() == entity.KindGoal {
					won = true
				} else {
					lost = true
				}
			case entity.Car, entity.Ball:
				if obj.Body().Position.Y > lv.SeaLevel {
					lost = true
				}
			}
		}
	}
	return won && !lost, lost
}

// Object finds id in any layer.
func (lv Level) Object(id entity.ID) (entity.Object, error) {
	for _, l := range lv.layers {
		if o, err := l.Object(id); err == nil {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %d in level %q", ErrObjectNotFound, id, lv.Name)
}

// CameraPosition returns the view origin for the level camera, searching
// every layer for its target.
func (lv Level) CameraPosition() (physics.Vector2D, error) {
	for _, l := range lv.layers {
		if p, err := lv.Camera.Coordinates(l); err == nil {
			return p, nil
		}
	}
	return physics.Vector2D{}, fmt.Errorf("camera: %w: %d", ErrObjectNotFound, lv.Camera.Target)
}

// hitTargets returns the targets hit in after but not in before.
func hitTargets(before, after Level) []entity.Target {
	wasHit := make(map[entity.ID]bool)
	for _, l := range before.layers {
		for _, o := range l.Objects() {
			if t, ok := o.(entity.Target); ok && t.Hit {
				wasHit[t.ID()] = true
			}
		}
	}
	var hits []entity.Target
	for _, l := range after.layers {
		for _, o := range l.Objects() {
			if t, ok := o.(entity.Target); ok && t.Hit && !wasHit[t.ID()] {
				hits = append(hits, t)
			}
		}
	}
	return hits
}
