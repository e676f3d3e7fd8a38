package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-roadball/pkg/config"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/logging"
)

func TestBuildLevels_Defaults(t *testing.T) {
	game := config.DefaultConfig()

	levels, err := BuildLevels(game)
	require.NoError(t, err)
	require.Len(t, levels, len(game.Levels))

	for i, lv := range levels {
		assert.Equal(t, game.Levels[i].Name, lv.Name)
		car, err := lv.Object(1)
		require.NoError(t, err)
		assert.Equal(t, entity.KindCar, car.Kind())
		_, err = lv.CameraPosition()
		assert.NoError(t, err)
	}
}

func TestBuildLevels_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.GameConfig)
		wantErr error
	}{
		{name: "no levels", mutate: func(c *config.GameConfig) { c.Levels = nil }, wantErr: ErrNoLevels},
		{
			name:    "unknown kind",
			mutate:  func(c *config.GameConfig) { c.Levels[1].Layers[0].Objects[2].Kind = "lava" },
			wantErr: config.ErrUnknownObjectKind,
		},
		{
			name:    "empty layer",
			mutate:  func(c *config.GameConfig) { c.Levels[0].Layers[0].Objects = nil },
			wantErr: config.ErrInvalidGeometry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := config.DefaultConfig()
			tt.mutate(game)
			_, err := BuildLevels(game)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewGameFromConfig_RunsDefaultLevel(t *testing.T) {
	game := config.DefaultConfig()
	g, err := NewGameFromConfig(game, logging.NewNopLogger())
	require.NoError(t, err)

	for frame := 0; frame < 100; frame++ {
		require.NoError(t, g.Update(context.Background(), entity.Input{}))
	}

	snap := g.Snapshot()
	assert.Equal(t, uint64(100), snap.Frame)
	assert.False(t, snap.Lost)
	require.NotEmpty(t, snap.Objects)
	assert.Equal(t, "car", snap.Objects[0].Kind)
	assert.Len(t, snap.Objects[0].Tires, 2)
}
