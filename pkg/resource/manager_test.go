// pkg/resource/manager_test.go
package resource

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-roadball/pkg/config"
)

func testEnv(maxSessions int) *config.EnvironmentConfig {
	return &config.EnvironmentConfig{
		MaxMemoryMB:           500,
		MaxSessions:           maxSessions,
		ShutdownTimeout:       2 * time.Second,
		ResourceCheckInterval: 10 * time.Millisecond,
	}
}

func TestNewResourceManager(t *testing.T) {
	rm := NewResourceManager(testEnv(100), nil)

	assert.Equal(t, int64(500), rm.maxMemoryMB)
	assert.Equal(t, int64(100), rm.maxSessions)
	assert.Equal(t, 2*time.Second, rm.shutdownTimeout)
	assert.NoError(t, rm.Shutdown(context.Background()))
}

func TestResourceManager_StartSessionLimit(t *testing.T) {
	rm := NewResourceManager(testEnv(3), nil)
	defer rm.Shutdown(context.Background())

	release := make(chan struct{})
	var started sync.WaitGroup
	for i := 0; i < 3; i++ {
		started.Add(1)
		err := rm.StartSession(context.Background(), "player", func(ctx context.Context) {
			started.Done()
			<-release
		})
		require.NoError(t, err)
	}
	started.Wait()
	assert.Equal(t, int64(3), rm.SessionCount())

	err := rm.StartSession(context.Background(), "one too many", func(context.Context) {})
	assert.ErrorIs(t, err, ErrSessionLimit)
	assert.Equal(t, int64(3), rm.SessionCount())

	close(release)
	assert.Eventually(t, func() bool { return rm.SessionCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestResourceManager_PanicFreesSlot(t *testing.T) {
	rm := NewResourceManager(testEnv(1), nil)
	defer rm.Shutdown(context.Background())

	require.NoError(t, rm.StartSession(context.Background(), "panicky", func(context.Context) {
		panic("boom")
	}))
	assert.Eventually(t, func() bool { return rm.SessionCount() == 0 }, time.Second, 5*time.Millisecond)

	assert.NoError(t, rm.StartSession(context.Background(), "next", func(context.Context) {}))
}

func TestResourceManager_ShutdownCancelsSessions(t *testing.T) {
	rm := NewResourceManager(testEnv(4), nil)
	require.NoError(t, rm.Start())
	assert.ErrorIs(t, rm.Start(), ErrAlreadyRunning)

	for i := 0; i < 2; i++ {
		require.NoError(t, rm.StartSession(context.Background(), "loop", func(ctx context.Context) {
			<-ctx.Done()
		}))
	}

	require.NoError(t, rm.Shutdown(context.Background()))
	assert.Equal(t, int64(0), rm.SessionCount())
}

func TestResourceManager_ShutdownTimeout(t *testing.T) {
	env := testEnv(1)
	env.ShutdownTimeout = 20 * time.Millisecond
	rm := NewResourceManager(env, nil)

	block := make(chan struct{})
	defer close(block)
	require.NoError(t, rm.StartSession(context.Background(), "stuck", func(context.Context) {
		<-block
	}))

	err := rm.Shutdown(context.Background())
	assert.ErrorContains(t, err, "shutdown timeout")
}

func TestResourceManager_MemoryMonitoring(t *testing.T) {
	rm := NewResourceManager(testEnv(1), nil)
	before := rm.Stats().LastMemoryCheck
	require.NoError(t, rm.Start())
	defer rm.Shutdown(context.Background())

	assert.Eventually(t, func() bool {
		return rm.Stats().LastMemoryCheck.After(before)
	}, time.Second, 5*time.Millisecond)

	stats := rm.Stats()
	assert.Equal(t, int64(500), stats.MaxMemoryMB)
	assert.Equal(t, int64(1), stats.MaxSessions)
}

func TestResourceManager_ConcurrentStarts(t *testing.T) {
	rm := NewResourceManager(testEnv(10), nil)
	defer rm.Shutdown(context.Background())

	release := make(chan struct{})
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := rm.StartSession(context.Background(), "racer", func(context.Context) { <-release })
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, accepted)
	close(release)
}
