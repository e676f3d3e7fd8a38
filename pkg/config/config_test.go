// pkg/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/physics"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	require.NoError(t, config.Validate())
	assert.Equal(t, physics.DefaultParams(), config.Physics)
	assert.Equal(t, entity.DefaultCarTuning(), config.Car)
	assert.Equal(t, 25.0, config.Frame.TimeStepMS)
	assert.Equal(t, "localhost:4566", config.Network.Address())
	assert.Len(t, config.Levels, 2)
}

func TestSaveAndLoadConfig(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "game"+ext)
			original := DefaultConfig()
			original.Ball.Radius = 12
			original.Physics.Gravity = physics.Vec(0, 4.9)

			require.NoError(t, SaveConfig(original, path))
			loaded, err := LoadConfig(path)
			require.NoError(t, err)

			assert.Equal(t, original, loaded)
		})
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("frame:\n  timeStepMs: 16\n"), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 16.0, config.Frame.TimeStepMS)
	assert.Equal(t, physics.DefaultParams(), config.Physics)
	assert.Equal(t, DefaultLevels(), config.Levels)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.json")},
		{name: "malformed json", path: broken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestLoadLevels(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "levels.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
levels:
  - name: flat
    seaLevel: 500
    camera:
      target: 1
    layers:
      - name: main
        objects:
          - id: 1
            kind: ball
            position: {x: 0, y: 0}
          - id: 2
            kind: ground
            points: [{x: -100, y: 50}, {x: 100, y: 50}]
            normal: {x: 0, y: -1}
`), 0o644))
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"levels": []}`), 0o644))

	levels, err := LoadLevels(good)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, "flat", levels[0].Name)
	require.NoError(t, levels[0].Validate())
	objects := levels[0].Layers[0].Objects
	require.Len(t, objects, 2)
	assert.Equal(t, physics.Vec(0, -1), *objects[1].Normal)

	_, err = LoadLevels(empty)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestGameConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr error
	}{
		{name: "defaults", mutate: func(*GameConfig) {}},
		{name: "zero time step", mutate: func(c *GameConfig) { c.Frame.TimeStepMS = 0 }, wantErr: ErrInvalidConfig},
		{name: "negative time scale", mutate: func(c *GameConfig) { c.Physics.TimeScale = -1 }, wantErr: ErrInvalidConfig},
		{name: "negative drag", mutate: func(c *GameConfig) { c.Physics.LinearDrag = -0.1 }, wantErr: ErrInvalidConfig},
		{name: "ball elasticity above one", mutate: func(c *GameConfig) { c.Ball.Elasticity = 1.5 }, wantErr: ErrInvalidConfig},
		{name: "car without mass", mutate: func(c *GameConfig) { c.Car.Mass = 0 }, wantErr: ErrInvalidConfig},
		{name: "no levels", mutate: func(c *GameConfig) { c.Levels = nil }, wantErr: ErrInvalidConfig},
		{name: "level without layers", mutate: func(c *GameConfig) { c.Levels[0].Layers = nil }, wantErr: ErrInvalidGeometry},
		{
			name: "unknown kind",
			mutate: func(c *GameConfig) {
				c.Levels[0].Layers[0].Objects[0].Kind = "rocket"
			},
			wantErr: ErrUnknownObjectKind,
		},
		{
			name: "duplicate id",
			mutate: func(c *GameConfig) {
				objects := c.Levels[0].Layers[0].Objects
				objects[1].ID = objects[0].ID
			},
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuildObject(t *testing.T) {
	game := DefaultConfig()
	bouncy := 0.9

	tests := []struct {
		name     string
		object   ObjectConfig
		wantKind entity.Kind
		wantErr  error
		check    func(t *testing.T, o entity.Object)
	}{
		{
			name:     "ball uses defaults",
			object:   ObjectConfig{ID: 1, Kind: "ball", Position: physics.Vec(5, 6)},
			wantKind: entity.KindBall,
			check: func(t *testing.T, o entity.Object) {
				ball := o.(entity.Ball)
				assert.Equal(t, game.Ball.Radius, ball.Radius)
				assert.Equal(t, game.Ball.Mass, ball.Body().Mass)
				assert.Equal(t, physics.Vec(5, 6), ball.Body().Position)
				assert.Equal(t, game.Ball.Elasticity, ball.Body().Lines[0].Elasticity)
			},
		},
		{
			name:     "ball overrides",
			object:   ObjectConfig{ID: 1, Kind: "ball", Radius: 4, Mass: 2, Elasticity: &bouncy},
			wantKind: entity.KindBall,
			check: func(t *testing.T, o entity.Object) {
				assert.Equal(t, 4.0, o.(entity.Ball).Radius)
				assert.Equal(t, 2.0, o.Body().Mass)
				assert.Equal(t, bouncy, o.Body().Lines[0].Elasticity)
			},
		},
		{
			name:     "car uses tuning",
			object:   ObjectConfig{ID: 2, Kind: "car", Mass: 80},
			wantKind: entity.KindCar,
			check: func(t *testing.T, o entity.Object) {
				car := o.(entity.Car)
				assert.Equal(t, 80.0, car.Tuning.Mass)
				assert.Equal(t, game.Car.Width, car.Tuning.Width)
			},
		},
		{
			name:     "ground with explicit normal",
			object:   ObjectConfig{ID: 3, Kind: "ground", Points: pts(0, 0, 10, 0, 20, 0), Normal: upward()},
			wantKind: entity.KindGround,
			check: func(t *testing.T, o entity.Object) {
				lines := o.Body().WorldLines()
				require.Len(t, lines, 2)
				for _, l := range lines {
					assert.Equal(t, physics.Vec(0, -1), l.Normal)
					assert.Equal(t, DefaultSurfaceElasticity, l.Elasticity)
				}
			},
		},
		{
			name:     "closed goal",
			object:   ObjectConfig{ID: 4, Kind: "goal", Points: pts(0, 0, 0, 10, 10, 10), Closed: true},
			wantKind: entity.KindGoal,
			check: func(t *testing.T, o entity.Object) {
				assert.Len(t, o.Body().Lines, 3)
				assert.True(t, o.Body().IsStatic())
			},
		},
		{name: "custom", object: ObjectConfig{ID: 5, Kind: "custom", Points: pts(0, 0, 1, 1)}, wantKind: entity.KindCustom},
		{name: "obstacle", object: ObjectConfig{ID: 6, Kind: "obstacle", Points: pts(0, 0, 1, 1)}, wantKind: entity.KindObstacle},
		{name: "unknown kind", object: ObjectConfig{ID: 7, Kind: "rocket"}, wantErr: ErrUnknownObjectKind},
		{name: "single point", object: ObjectConfig{ID: 8, Kind: "ground", Points: pts(0, 0)}, wantErr: ErrInvalidGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := BuildObject(tt.object, game)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, o.Kind())
			assert.Equal(t, entity.ID(tt.object.ID), o.ID())
			if tt.check != nil {
				tt.check(t, o)
			}
		})
	}
}

func TestBuildObjects_DefaultLevels(t *testing.T) {
	game := DefaultConfig()
	for _, level := range DefaultLevels() {
		t.Run(level.Name, func(t *testing.T) {
			require.NoError(t, level.Validate())
			for _, layer := range level.Layers {
				objects, err := BuildObjects(layer, game)
				require.NoError(t, err)
				assert.Len(t, objects, len(layer.Objects))
			}
		})
	}
}
