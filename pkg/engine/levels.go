package engine

import (
	"fmt"

	"github.com/opd-ai/go-roadball/pkg/config"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/logging"
)

// BuildLevel creates a level from its description.
func BuildLevel(lc config.LevelConfig, game *config.GameConfig) (Level, error) {
	if err := lc.Validate(); err != nil {
		return Level{}, err
	}
	layers := make([]Layer, 0, len(lc.Layers))
	for _, layerConfig := range lc.Layers {
		objects, err := config.BuildObjects(layerConfig, game)
		if err != nil {
			return Level{}, fmt.Errorf("level %q: %w", lc.Name, err)
		}
		layer, err := NewLayer(layerConfig.Name, game.Physics, objects...)
		if err != nil {
			return Level{}, fmt.Errorf("level %q: %w", lc.Name, err)
		}
		layers = append(layers, layer)
	}
	camera := Camera{Target: entity.ID(lc.Camera.Target), Offset: lc.Camera.Offset}
	return NewLevel(lc.Name, lc.SeaLevel, camera, layers...)
}

// BuildLevels creates every level of game, in order.
func BuildLevels(game *config.GameConfig) ([]Level, error) {
	levels := make([]Level, 0, len(game.Levels))
	for _, lc := range game.Levels {
		lv, err := BuildLevel(lc, game)
		if err != nil {
			return nil, err
		}
		levels = append(levels, lv)
	}
	if len(levels) == 0 {
		return nil, ErrNoLevels
	}
	return levels, nil
}

// NewGameFromConfig builds the levels of game and a manager to run them.
func NewGameFromConfig(game *config.GameConfig, logger *logging.Logger) (*GameManager, error) {
	levels, err := BuildLevels(game)
	if err != nil {
		return nil, err
	}
	return NewGameManager(levels, game.Frame.TimeStepMS, logger)
}
