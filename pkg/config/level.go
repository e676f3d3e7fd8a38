package config

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/physics"
)

var (
	// ErrUnknownObjectKind is returned for an object kind with no builder.
	ErrUnknownObjectKind = errors.New("unknown object kind")
	// ErrInvalidGeometry is returned for objects or levels without usable
	// geometry.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// LevelConfig describes one level as plain data.
type LevelConfig struct {
	Name string `json:"name" yaml:"name"`
	// SeaLevel is the y coordinate past which the car or ball is lost.
	SeaLevel float64       `json:"seaLevel" yaml:"seaLevel"`
	Camera   CameraConfig  `json:"camera" yaml:"camera"`
	Layers   []LayerConfig `json:"layers" yaml:"layers"`
}

// CameraConfig names the object the view follows.
type CameraConfig struct {
	Target uint64           `json:"target" yaml:"target"`
	Offset physics.Vector2D `json:"offset" yaml:"offset"`
}

// LayerConfig is a group of objects simulated together.
type LayerConfig struct {
	Name    string         `json:"name" yaml:"name"`
	Objects []ObjectConfig `json:"objects" yaml:"objects"`
}

// ObjectConfig describes one object. Static kinds use Points; balls and cars
// use Position.
type ObjectConfig struct {
	ID   uint64 `json:"id" yaml:"id"`
	Kind string `json:"kind" yaml:"kind"`

	Points     []physics.Vector2D `json:"points,omitempty" yaml:"points,omitempty"`
	Closed     bool               `json:"closed,omitempty" yaml:"closed,omitempty"`
	Elasticity *float64           `json:"elasticity,omitempty" yaml:"elasticity,omitempty"`
	// Normal overrides the computed normal of every segment.
	Normal *physics.Vector2D `json:"normal,omitempty" yaml:"normal,omitempty"`

	Position physics.Vector2D `json:"position" yaml:"position"`
	Radius   float64          `json:"radius,omitempty" yaml:"radius,omitempty"`
	Mass     float64          `json:"mass,omitempty" yaml:"mass,omitempty"`
}

// Validate checks that every object has a known kind and enough geometry.
func (l LevelConfig) Validate() error {
	if len(l.Layers) == 0 {
		return fmt.Errorf("%w: level %q has no layers", ErrInvalidGeometry, l.Name)
	}
	seen := make(map[uint64]bool)
	for _, layer := range l.Layers {
		if len(layer.Objects) == 0 {
			return fmt.Errorf("%w: layer %q of level %q is empty", ErrInvalidGeometry, layer.Name, l.Name)
		}
		for _, o := range layer.Objects {
			if seen[o.ID] {
				return fmt.Errorf("%w: duplicate object id %d in level %q", ErrInvalidConfig, o.ID, l.Name)
			}
			seen[o.ID] = true
			if err := o.validate(); err != nil {
				return fmt.Errorf("level %q: %w", l.Name, err)
			}
		}
	}
	return nil
}

func (o ObjectConfig) validate() error {
	kind, ok := entity.ParseKind(o.Kind)
	if !ok {
		return fmt.Errorf("%w: %q (object %d)", ErrUnknownObjectKind, o.Kind, o.ID)
	}
	if o.Elasticity != nil {
		if err := checkElasticity(fmt.Sprintf("object %d", o.ID), *o.Elasticity); err != nil {
			return err
		}
	}
	switch kind {
	case entity.KindBall, entity.KindCar:
		return nil
	}
	if len(o.Points) < 2 {
		return fmt.Errorf("%w: object %d needs at least two points", ErrInvalidGeometry, o.ID)
	}
	return nil
}

// BuildObjects turns a layer description into objects, in order. Balls fall
// back to the ball defaults in game; cars use game's car tuning.
func BuildObjects(layer LayerConfig, game *GameConfig) ([]entity.Object, error) {
	objects := make([]entity.Object, 0, len(layer.Objects))
	for _, o := range layer.Objects {
		obj, err := BuildObject(o, game)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// BuildObject creates a single object.
func BuildObject(o ObjectConfig, game *GameConfig) (entity.Object, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	kind, _ := entity.ParseKind(o.Kind)
	id := entity.ID(o.ID)

	switch kind {
	case entity.KindBall:
		radius := valueOr(o.Radius, game.Ball.Radius)
		mass := valueOr(o.Mass, game.Ball.Mass)
		return entity.NewBall(id, o.Position, radius, mass, o.elasticity(game.Ball.Elasticity)), nil
	case entity.KindCar:
		tuning := game.Car
		if o.Mass > 0 {
			tuning.Mass = o.Mass
		}
		tuning.Elasticity = o.elasticity(tuning.Elasticity)
		return entity.NewCar(id, o.Position, tuning), nil
	}

	lines := o.lines()
	switch kind {
	case entity.KindGround:
		return entity.NewGround(id, lines), nil
	case entity.KindCustom:
		return entity.NewCustomObject(id, lines), nil
	case entity.KindObstacle:
		return entity.NewObstacle(id, lines), nil
	case entity.KindGoal:
		return entity.NewGoal(id, lines), nil
	}
	return nil, fmt.Errorf("%w: %q (object %d)", ErrUnknownObjectKind, o.Kind, o.ID)
}

func (o ObjectConfig) elasticity(fallback float64) float64 {
	if o.Elasticity == nil {
		return fallback
	}
	return *o.Elasticity
}

// DefaultSurfaceElasticity applies to static geometry without its own value.
const DefaultSurfaceElasticity = 0.5

// lines builds world-space segments for static geometry.
func (o ObjectConfig) lines() []physics.Line {
	e := o.elasticity(DefaultSurfaceElasticity)
	if o.Normal == nil {
		return physics.Polyline(o.Points, o.Closed, e)
	}
	lines := make([]physics.Line, 0, len(o.Points))
	for _, l := range physics.Polyline(o.Points, o.Closed, e) {
		lines = append(lines, physics.NewLineWithNormal(l.Start, l.End, e, *o.Normal))
	}
	return lines
}

func valueOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
