package health

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-roadball/pkg/config"
	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/logging"
)

// TestHealthCheckIntegration wires the frame checks to a real game.
func TestHealthCheckIntegration(t *testing.T) {
	game, err := engine.NewGameFromConfig(config.DefaultConfig(), logging.NewNopLogger())
	require.NoError(t, err)

	hc := NewHealthChecker()
	hc.AddCheck(NewFrameLoopHealthCheck(func() time.Time { return game.Stats().LastUpdate }, time.Minute))
	hc.AddCheck(NewFrameBudgetHealthCheck(func() time.Duration { return game.Stats().Average }, time.Minute))

	t.Run("before the first frame", func(t *testing.T) {
		w := serve(hc, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "frame loop has not run")
	})

	t.Run("after frames ran", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			require.NoError(t, game.Update(context.Background(), entity.Input{}))
		}
		w := serve(hc, "/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
