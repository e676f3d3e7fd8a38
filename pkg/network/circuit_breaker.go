// Package network streams game snapshots to render clients over WebSocket
// and carries their input back. Writes go through a circuit breaker so a
// run of failing peers does not keep frame loops busy.
package network

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap/zapcore"

	"github.com/opd-ai/go-roadball/pkg/config"
	"github.com/opd-ai/go-roadball/pkg/logging"
)

// Retry defaults for ExecuteWithRetry
const (
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = time.Second
)

// NetworkService wraps network operations with a circuit breaker and
// linear-backoff retries.
type NetworkService struct {
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger

	attempts  int
	baseDelay time.Duration
}

// NetworkOperation is a single network call.
type NetworkOperation func() error

// NewNetworkService creates a service whose breaker is configured from the
// environment. name tells breakers apart in logs.
func NewNetworkService(name string, env *config.EnvironmentConfig, logger *logging.Logger) *NetworkService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	maxFails := uint32(env.CircuitBreakerMaxConsecutiveFails)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(env.CircuitBreakerMaxRequests),
		Interval:    env.CircuitBreakerInterval,
		Timeout:     env.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &NetworkService{
		breaker:   gobreaker.NewCircuitBreaker(settings),
		logger:    logger,
		attempts:  DefaultRetryAttempts,
		baseDelay: DefaultRetryBaseDelay,
	}
}

// WithRetry returns the service with a different retry policy.
func (ns *NetworkService) WithRetry(attempts int, baseDelay time.Duration) *NetworkService {
	if attempts < 1 {
		attempts = 1
	}
	ns.attempts = attempts
	ns.baseDelay = baseDelay
	return ns
}

// Execute runs operation through the circuit breaker. An open breaker fails
// immediately with gobreaker.ErrOpenState.
func (ns *NetworkService) Execute(ctx context.Context, operation NetworkOperation) error {
	_, err := ns.breaker.Execute(func() (interface{}, error) {
		return nil, operation()
	})
	if err != nil {
		ns.logger.LogWithContext(ctx, zapcore.DebugLevel, "circuit breaker execution failed",
			"error", err.Error(),
			"state", ns.breaker.State().String(),
		)
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return nil
}

// ExecuteWithRetry runs operation until it succeeds, the breaker opens, the
// attempts run out or ctx is done. The n-th retry waits n × base delay.
func (ns *NetworkService) ExecuteWithRetry(ctx context.Context, operation NetworkOperation) error {
	for attempt := 0; attempt < ns.attempts; attempt++ {
		err := ns.Execute(ctx, operation)
		if err == nil {
			return nil
		}

		if ns.breaker.State() == gobreaker.StateOpen {
			ns.logger.Warn(ctx, "circuit breaker is open, skipping retries",
				"attempt", attempt+1,
				"max_retries", ns.attempts,
			)
			return err
		}

		if attempt == ns.attempts-1 {
			ns.logger.Error(ctx, "all retry attempts failed", err, "attempts", ns.attempts)
			return fmt.Errorf("max retries (%d) exceeded: %w", ns.attempts, err)
		}

		delay := time.Duration(attempt+1) * ns.baseDelay
		ns.logger.Warn(ctx, "operation failed, retrying",
			"attempt", attempt+1,
			"max_retries", ns.attempts,
			"delay", delay,
			"error", err.Error(),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}

	return fmt.Errorf("unexpected exit from retry loop")
}

// GetState returns the current state of the circuit breaker.
func (ns *NetworkService) GetState() gobreaker.State {
	return ns.breaker.State()
}

// GetCounts returns the breaker's failure and success counts.
func (ns *NetworkService) GetCounts() gobreaker.Counts {
	return ns.breaker.Counts()
}
