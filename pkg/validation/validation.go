// Package validation checks input messages arriving from render clients.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/go-roadball/pkg/entity"
)

// Message limits
const (
	DefaultMaxMessageSize = 1024
	DefaultMessagesPerSec = 120
)

// InputMessageType is the only message type clients send.
const InputMessageType = "input"

var (
	// ErrInvalidInput is returned for messages that are not a well-formed
	// input state.
	ErrInvalidInput = errors.New("invalid input message")
	// ErrRateLimited is returned when a client sends faster than allowed.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// InputMessage is the wire form of an input state: action name to 0 or 1.
// Actions left out are released.
type InputMessage struct {
	Type string         `json:"type"`
	Keys map[string]int `json:"keys"`
}

// MessageValidator validates and rate-limits input messages per client.
type MessageValidator struct {
	maxSize     int
	rateLimiter *RateLimiter
}

// NewMessageValidator creates a validator accepting messages up to maxSize
// bytes and perSecond messages per client.
func NewMessageValidator(maxSize, perSecond int) *MessageValidator {
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}
	if perSecond <= 0 {
		perSecond = DefaultMessagesPerSec
	}
	return &MessageValidator{
		maxSize:     maxSize,
		rateLimiter: NewRateLimiter(perSecond, time.Second),
	}
}

// Close releases resources used by the message validator
func (v *MessageValidator) Close() {
	if v.rateLimiter != nil {
		v.rateLimiter.Close()
	}
}

// Forget drops the rate-limit state of a disconnected client.
func (v *MessageValidator) Forget(clientID string) {
	v.rateLimiter.Forget(clientID)
}

// ValidateMessage checks size, rate and content, and returns the decoded
// input state.
func (v *MessageValidator) ValidateMessage(data []byte, clientID string) (entity.Input, error) {
	if len(data) > v.maxSize {
		return entity.Input{}, fmt.Errorf("%w: %d bytes (max %d)", ErrInvalidInput, len(data), v.maxSize)
	}
	if !v.rateLimiter.Allow(clientID) {
		return entity.Input{}, fmt.Errorf("%w: client %s", ErrRateLimited, clientID)
	}
	return ParseInput(data)
}

// ParseInput decodes an input message. Unknown actions and values other
// than 0 and 1 are rejected.
func ParseInput(data []byte) (entity.Input, error) {
	var msg InputMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return entity.Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if msg.Type != InputMessageType {
		return entity.Input{}, fmt.Errorf("%w: unexpected type %q", ErrInvalidInput, msg.Type)
	}
	return InputFromMap(msg.Keys)
}

// InputFromMap converts an action-name map into an input state.
func InputFromMap(keys map[string]int) (entity.Input, error) {
	var in entity.Input
	for name, value := range keys {
		action, ok := entity.ParseAction(name)
		if !ok {
			return entity.Input{}, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, name)
		}
		if value != 0 && value != 1 {
			return entity.Input{}, fmt.Errorf("%w: action %q has value %d (want 0 or 1)", ErrInvalidInput, name, value)
		}
		in = in.With(action, value == 1)
	}
	return in, nil
}
