// pkg/network/client.go
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-roadball/pkg/config"
	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/logging"
	"github.com/opd-ai/go-roadball/pkg/validation"
)

// ErrNotConnected is returned when sending on a closed client.
var ErrNotConnected = errors.New("stream client not connected")

const eventBuffer = 32

// StreamClient plays a game hosted by a StreamServer: it sends input states
// and receives snapshots and events.
type StreamClient struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	logger       *logging.Logger

	writeMu sync.Mutex
	closed  bool

	snapshots chan engine.Snapshot
	events    chan EventPayload
	errors    chan string
}

// DialStream connects to url, retrying through a circuit breaker configured
// from env.
func DialStream(ctx context.Context, url string, env *config.EnvironmentConfig, logger *logging.Logger) (*StreamClient, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	service := NewNetworkService("stream-dial", env, logger)

	var conn *websocket.Conn
	err := service.ExecuteWithRetry(ctx, func() error {
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	logger.Info(ctx, "connected to stream", "url", url)
	return &StreamClient{
		conn:         conn,
		writeTimeout: env.WriteTimeout,
		logger:       logger,
		snapshots:    make(chan engine.Snapshot, 1),
		events:       make(chan EventPayload, eventBuffer),
		errors:       make(chan string, eventBuffer),
	}, nil
}

// Snapshots delivers the newest snapshot. Older ones are dropped when the
// reader falls behind.
func (c *StreamClient) Snapshots() <-chan engine.Snapshot {
	return c.snapshots
}

// Events delivers game events in order. Events are dropped when the buffer
// is full.
func (c *StreamClient) Events() <-chan EventPayload {
	return c.events
}

// Errors delivers input rejections reported by the server.
func (c *StreamClient) Errors() <-chan string {
	return c.errors
}

// SendInput sends the full input state.
func (c *StreamClient) SendInput(in entity.Input) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return ErrNotConnected
	}
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	msg := validation.InputMessage{Type: validation.InputMessageType, Keys: in.Map()}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send input: %w", err)
	}
	return nil
}

// Run reads messages until the stream ends or ctx is done. The channels
// are closed when it returns. A stream closed by either side returns nil.
func (c *StreamClient) Run(ctx context.Context) error {
	defer close(c.snapshots)
	defer close(c.events)
	defer close(c.errors)

	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || c.isClosed() ||
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn(ctx, "malformed message", "error", err.Error())
			continue
		}
		c.dispatch(ctx, msg)
	}
}

func (c *StreamClient) dispatch(ctx context.Context, msg Message) {
	switch msg.Type {
	case SnapshotMessage:
		if msg.Snapshot == nil {
			return
		}
		select {
		case <-c.snapshots:
		default:
		}
		c.snapshots <- *msg.Snapshot
	case EventMessage:
		if msg.Event == nil {
			return
		}
		select {
		case c.events <- *msg.Event:
		default:
			c.logger.Debug(ctx, "event dropped", "type", msg.Event.Type)
		}
	case ErrorMessage:
		select {
		case c.errors <- msg.Error:
		default:
		}
	default:
		c.logger.Debug(ctx, "unknown message type", "type", msg.Type)
	}
}

func (c *StreamClient) isClosed() bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.closed
}

// Close sends a close frame and closes the connection. It is safe to call
// more than once.
func (c *StreamClient) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
