package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-roadball/pkg/config"
	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/event"
	"github.com/opd-ai/go-roadball/pkg/resource"
)

const waitFor = 2 * time.Second

func testEnv(maxSessions int) *config.EnvironmentConfig {
	return &config.EnvironmentConfig{
		MaxSessions:                       maxSessions,
		ReadTimeout:                       5 * time.Second,
		WriteTimeout:                      5 * time.Second,
		TimeStepMS:                        25,
		TimeScale:                         2.6,
		InputRate:                         1000,
		MaxInputBytes:                     1024,
		CircuitBreakerMaxRequests:         1,
		CircuitBreakerInterval:            time.Minute,
		CircuitBreakerTimeout:             time.Second,
		CircuitBreakerMaxConsecutiveFails: 50,
		MaxMemoryMB:                       1024,
		ShutdownTimeout:                   2 * time.Second,
		ResourceCheckInterval:             time.Second,
	}
}

func defaultGame() (*engine.GameManager, error) {
	return engine.NewGameFromConfig(config.DefaultConfig(), nil)
}

type streamFixture struct {
	env       *config.EnvironmentConfig
	server    *StreamServer
	resources *resource.ResourceManager
	url       string
}

func newStreamFixture(t *testing.T, maxSessions int, factory GameFactory) *streamFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := testEnv(maxSessions)
	rm := resource.NewResourceManager(env, nil)
	srv := NewStreamServer(factory, rm, env, nil)

	router := gin.New()
	srv.Register(router)
	hs := httptest.NewServer(router)

	t.Cleanup(func() {
		_ = rm.Shutdown(context.Background())
		hs.Close()
		srv.Close()
	})

	return &streamFixture{
		env:       env,
		server:    srv,
		resources: rm,
		url:       "ws" + strings.TrimPrefix(hs.URL, "http") + StreamPath,
	}
}

func (f *streamFixture) dial(t *testing.T) (*StreamClient, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()

	c, err := DialStream(ctx, f.url, f.env, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()
	t.Cleanup(func() { _ = c.Close() })
	return c, done
}

func nextSnapshot(t *testing.T, c *StreamClient) engine.Snapshot {
	t.Helper()
	select {
	case s, ok := <-c.Snapshots():
		require.True(t, ok, "stream ended")
		return s
	case <-time.After(waitFor):
		t.Fatal("no snapshot received")
	}
	return engine.Snapshot{}
}

func TestStreamServer_StreamsSnapshots(t *testing.T) {
	f := newStreamFixture(t, 4, defaultGame)
	c, _ := f.dial(t)

	first := nextSnapshot(t, c)
	second := nextSnapshot(t, c)

	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Greater(t, second.Frame, first.Frame)
	assert.Equal(t, "warm-up", first.LevelName)
	assert.NotEmpty(t, first.Objects)
	assert.Equal(t, 1, f.server.Sessions())
}

func TestStreamServer_ForwardsEventsForInput(t *testing.T) {
	f := newStreamFixture(t, 4, defaultGame)
	c, _ := f.dial(t)
	nextSnapshot(t, c)

	require.NoError(t, c.SendInput(entity.Input{}.Press(entity.ActionReset)))

	deadline := time.After(waitFor)
	for {
		select {
		case e := <-c.Events():
			if e.Type != event.LevelReset {
				continue
			}
			assert.Equal(t, "warm-up", e.Name)
			assert.Equal(t, 0, e.Level)
			return
		case <-c.Snapshots():
		case <-deadline:
			t.Fatal("no reset event received")
		}
	}
}

func TestStreamServer_ReportsInvalidInput(t *testing.T) {
	f := newStreamFixture(t, 4, defaultGame)

	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"input","keys":{"jump":1}}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(waitFor)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == ErrorMessage {
			assert.Contains(t, msg.Error, "jump")
			return
		}
	}
}

func TestStreamServer_RejectsBeyondSessionLimit(t *testing.T) {
	f := newStreamFixture(t, 1, defaultGame)
	c, _ := f.dial(t)
	nextSnapshot(t, c)

	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(waitFor)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ErrorMessage, msg.Type)
	assert.Contains(t, msg.Error, resource.ErrSessionLimit.Error())

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater), "got %v", err)
}

func TestStreamServer_ClientCloseEndsSession(t *testing.T) {
	f := newStreamFixture(t, 4, defaultGame)
	c, done := f.dial(t)
	nextSnapshot(t, c)
	require.Equal(t, 1, f.server.Sessions())

	require.NoError(t, c.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("client did not stop")
	}

	assert.Eventually(t, func() bool {
		return f.server.Sessions() == 0 && f.resources.SessionCount() == 0
	}, waitFor, 10*time.Millisecond)
	assert.ErrorIs(t, c.SendInput(entity.Input{}), ErrNotConnected)
}

func TestStreamServer_ShutdownClosesClients(t *testing.T) {
	f := newStreamFixture(t, 4, defaultGame)
	c, done := f.dial(t)
	nextSnapshot(t, c)

	require.NoError(t, f.resources.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("client did not see the close")
	}
}

func TestStreamServer_FactoryError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := testEnv(4)
	srv := NewStreamServer(func() (*engine.GameManager, error) {
		return nil, errors.New("no levels")
	}, resource.NewResourceManager(env, nil), env, nil)
	defer srv.Close()

	router := gin.New()
	srv.Register(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, StreamPath, nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStreamServer_SessionBreakersAreIndependent(t *testing.T) {
	f := newStreamFixture(t, 4, defaultGame)
	ctx := context.Background()

	sessions := make([]*session, 2)
	for i := range sessions {
		game, err := defaultGame()
		require.NoError(t, err)
		sessions[i] = f.server.newSession(game, nil, "test")
	}
	failing, healthy := sessions[0], sessions[1]
	require.NotSame(t, failing.breaker, healthy.breaker)

	for i := 0; i < f.env.CircuitBreakerMaxConsecutiveFails; i++ {
		_ = failing.breaker.Execute(ctx, func() error { return errors.New("peer gone") })
	}
	require.Equal(t, gobreaker.StateOpen, failing.breaker.GetState())

	called := false
	err := healthy.breaker.Execute(ctx, func() error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, gobreaker.StateClosed, healthy.breaker.GetState())
}

func TestStreamServer_DroppedPeersDoNotEndOtherStreams(t *testing.T) {
	f := newStreamFixture(t, 8, defaultGame)

	for i := 0; i < 3; i++ {
		dropped, _ := f.dial(t)
		nextSnapshot(t, dropped)
		require.NoError(t, dropped.Close())
	}

	c, done := f.dial(t)
	first := nextSnapshot(t, c)
	for i := 0; i < 10; i++ {
		nextSnapshot(t, c)
	}
	select {
	case err := <-done:
		t.Fatalf("healthy stream ended: %v", err)
	default:
	}
	assert.Greater(t, nextSnapshot(t, c).Frame, first.Frame)
}

func TestNewEventPayload(t *testing.T) {
	tests := []struct {
		name string
		in   event.Event
		want EventPayload
	}{
		{"collision", event.NewCollisionEvent(nil, 1, 2), EventPayload{Type: event.ObjectCollision, ObjectA: 1, ObjectB: 2}},
		{"target", event.NewTargetEvent(nil, 5, "goal"), EventPayload{Type: event.TargetHit, TargetID: 5, Kind: "goal"}},
		{"level", event.NewLevelEvent(event.LevelWon, nil, 1, "gap"), EventPayload{Type: event.LevelWon, Level: 1, Name: "gap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewEventPayload(tt.in))
		})
	}
}
