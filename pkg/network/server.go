// pkg/network/server.go
package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-roadball/pkg/config"
	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/event"
	"github.com/opd-ai/go-roadball/pkg/logging"
	"github.com/opd-ai/go-roadball/pkg/resource"
	"github.com/opd-ai/go-roadball/pkg/validation"
)

// StreamPath is the route the stream is served on.
const StreamPath = "/ws"

const (
	noticeBuffer      = 8
	defaultFrameDelay = 25 * time.Millisecond
)

var errPeerClosed = errors.New("peer closed the stream")

// GameFactory creates the game a new connection plays.
type GameFactory func() (*engine.GameManager, error)

// StreamServer runs one game per WebSocket connection. Each frame it steps
// the game with the latest input the client sent and writes a snapshot.
type StreamServer struct {
	newGame   GameFactory
	resources *resource.ResourceManager
	validator *validation.MessageValidator
	upgrader  websocket.Upgrader
	env       *config.EnvironmentConfig
	logger    *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewStreamServer creates a server. Sessions are started through resources,
// which bounds how many run at once.
func NewStreamServer(newGame GameFactory, resources *resource.ResourceManager, env *config.EnvironmentConfig, logger *logging.Logger) *StreamServer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &StreamServer{
		newGame:   newGame,
		resources: resources,
		validator: validation.NewMessageValidator(env.MaxInputBytes, env.InputRate),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		env:      env,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// Register adds the stream route.
func (s *StreamServer) Register(r gin.IRoutes) {
	r.GET(StreamPath, s.HandleStream)
}

// Close releases the input validator.
func (s *StreamServer) Close() {
	s.validator.Close()
}

// Sessions returns the number of connected games.
func (s *StreamServer) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// AverageFrame returns the mean frame compute time over connected games,
// or zero with none connected.
func (s *StreamServer) AverageFrame() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.sessions) == 0 {
		return 0
	}
	var total time.Duration
	for _, sess := range s.sessions {
		total += sess.game.Stats().Average
	}
	return total / time.Duration(len(s.sessions))
}

// HandleStream upgrades the request and starts a game session on it.
func (s *StreamServer) HandleStream(c *gin.Context) {
	game, err := s.newGame()
	if err != nil {
		s.logger.Error(c.Request.Context(), "failed to create game", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create game"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn(c.Request.Context(), "websocket upgrade failed", "error", err.Error())
		return
	}
	conn.SetReadLimit(int64(4 * s.env.MaxInputBytes))

	ctx := logging.WithCorrelationID(context.Background(), game.SessionID)
	sess := s.newSession(game, conn, conn.RemoteAddr().String())

	if err := s.resources.StartSession(ctx, sess.id, sess.run); err != nil {
		s.logger.Warn(ctx, "rejecting stream", "error", err.Error())
		deadline := time.Now().Add(s.env.WriteTimeout)
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.WriteJSON(Message{Type: ErrorMessage, Error: err.Error()})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server full"), deadline)
		_ = conn.Close()
	}
}

// newSession wires a connection to its game. Each session trips its own
// breaker, so one failing peer never stops the writes of another.
func (s *StreamServer) newSession(game *engine.GameManager, conn *websocket.Conn, remote string) *session {
	logger := s.logger.With("session_id", game.SessionID, "remote", remote)
	return &session{
		id:      game.SessionID,
		conn:    conn,
		game:    game,
		server:  s,
		breaker: NewNetworkService("snapshot-stream "+game.SessionID, s.env, logger),
		logger:  logger,
		notices: make(chan Message, noticeBuffer),
	}
}

func (s *StreamServer) add(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess
}

func (s *StreamServer) remove(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.validator.Forget(sess.id)
}

// session is one connection and the game it plays.
type session struct {
	id      string
	conn    *websocket.Conn
	game    *engine.GameManager
	server  *StreamServer
	breaker *NetworkService
	logger  *logging.Logger

	mu      sync.Mutex
	input   entity.Input
	pending []Message

	notices chan Message
}

func (sess *session) run(ctx context.Context) {
	sess.server.add(sess)
	defer sess.server.remove(sess)
	defer sess.conn.Close()

	for _, t := range StreamedEvents() {
		sub := sess.game.EventBus.Subscribe(t, func(e event.Event) {
			sess.queue(Message{Type: EventMessage, Event: ptr(NewEventPayload(e))})
		})
		defer sub.Cancel()
	}

	sess.logger.Info(ctx, "stream started")

	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, func() {
		_ = sess.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(time.Second))
		_ = sess.conn.Close()
	})
	defer stop()

	g.Go(func() error { return sess.readLoop(gctx) })
	g.Go(func() error { return sess.frameLoop(gctx) })

	err := g.Wait()
	switch {
	case err == nil, errors.Is(err, errPeerClosed):
		sess.logger.Info(ctx, "stream ended", "frames", sess.game.Stats().Frames)
	default:
		sess.logger.Error(ctx, "stream failed", err, "frames", sess.game.Stats().Frames)
	}
}

func (sess *session) readLoop(ctx context.Context) error {
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errPeerClosed
			}
			return fmt.Errorf("read: %w", err)
		}

		in, err := sess.server.validator.ValidateMessage(data, sess.id)
		switch {
		case errors.Is(err, validation.ErrRateLimited):
			sess.logger.Debug(ctx, "input dropped", "error", err.Error())
			continue
		case err != nil:
			sess.logger.Warn(ctx, "invalid input", "error", err.Error())
			select {
			case sess.notices <- Message{Type: ErrorMessage, Error: err.Error()}:
			default:
			}
			continue
		}

		sess.mu.Lock()
		sess.input = in
		sess.mu.Unlock()
	}
}

func (sess *session) frameLoop(ctx context.Context) error {
	delay := time.Duration(sess.game.TimeUnitMS() * float64(time.Millisecond))
	if delay <= 0 {
		delay = defaultFrameDelay
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		sess.mu.Lock()
		in := sess.input
		sess.mu.Unlock()

		if err := sess.game.Update(ctx, in); err != nil {
			return err
		}

		snapshot := sess.game.Snapshot()
		out := sess.drain()
		out = append(out, Message{Type: SnapshotMessage, Snapshot: &snapshot})
		for _, m := range out {
			err := sess.write(ctx, m)
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				sess.logger.Debug(ctx, "frame skipped", "frame", snapshot.Frame)
				break
			}
			if err != nil {
				return err
			}
		}
	}
}

// queue holds an event message until the end of the frame.
func (sess *session) queue(m Message) {
	sess.mu.Lock()
	sess.pending = append(sess.pending, m)
	sess.mu.Unlock()
}

// drain returns the queued notices and events.
func (sess *session) drain() []Message {
	var out []Message
	for len(sess.notices) > 0 {
		out = append(out, <-sess.notices)
	}
	sess.mu.Lock()
	out = append(out, sess.pending...)
	sess.pending = nil
	sess.mu.Unlock()
	return out
}

func (sess *session) write(ctx context.Context, m Message) error {
	return sess.breaker.Execute(ctx, func() error {
		if err := sess.conn.SetWriteDeadline(time.Now().Add(sess.server.env.WriteTimeout)); err != nil {
			return err
		}
		return sess.conn.WriteJSON(m)
	})
}

func ptr[T any](v T) *T {
	return &v
}
