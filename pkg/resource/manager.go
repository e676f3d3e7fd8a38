// pkg/resource/manager.go
package resource

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-roadball/pkg/config"
	"github.com/opd-ai/go-roadball/pkg/logging"
)

var (
	// ErrSessionLimit is returned when every session slot is taken.
	ErrSessionLimit = errors.New("session limit reached")
	// ErrAlreadyRunning is returned by Start on a running manager.
	ErrAlreadyRunning = errors.New("resource manager already running")
)

// ResourceManager bounds the number of concurrent game sessions, each of
// which runs its own frame loop goroutine, and watches memory use.
type ResourceManager struct {
	maxMemoryMB     int64
	maxSessions     int64
	shutdownTimeout time.Duration
	checkInterval   time.Duration

	sessionCount  atomic.Int64
	memoryUsageMB atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.RWMutex
	running bool
	logger  *logging.Logger

	lastMemoryCheck time.Time
}

// NewResourceManager creates a resource manager from environment settings.
func NewResourceManager(env *config.EnvironmentConfig, logger *logging.Logger) *ResourceManager {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &ResourceManager{
		maxMemoryMB:     env.MaxMemoryMB,
		maxSessions:     int64(env.MaxSessions),
		shutdownTimeout: env.ShutdownTimeout,
		checkInterval:   env.ResourceCheckInterval,
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
		logger:          logger,
		lastMemoryCheck: time.Now(),
	}
}

// Start begins the memory monitoring loop.
func (rm *ResourceManager) Start() error {
	rm.mu.Lock()
	if rm.running {
		rm.mu.Unlock()
		return ErrAlreadyRunning
	}
	rm.running = true
	rm.mu.Unlock()

	go rm.monitoringLoop()

	rm.logger.Info(rm.ctx, "resource manager started",
		"max_memory_mb", rm.maxMemoryMB,
		"max_sessions", rm.maxSessions,
		"check_interval", rm.checkInterval,
	)
	return nil
}

// StartSession runs fn on a new goroutine if a session slot is free. The
// context passed to fn is cancelled when ctx is or when the manager shuts
// down. A panic in fn is logged and frees the slot.
func (rm *ResourceManager) StartSession(ctx context.Context, name string, fn func(context.Context)) error {
	if rm.sessionCount.Add(1) > rm.maxSessions {
		current := rm.sessionCount.Add(-1)
		rm.logger.Warn(ctx, "session limit reached",
			"current", current,
			"limit", rm.maxSessions,
			"name", name,
		)
		return fmt.Errorf("%w: %d/%d", ErrSessionLimit, current, rm.maxSessions)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(rm.ctx, cancel)

	go func() {
		defer rm.sessionCount.Add(-1)
		defer stop()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				rm.logger.Error(ctx, "session panic", fmt.Errorf("panic: %v", r), "name", name)
			}
		}()

		fn(sessionCtx)
	}()

	return nil
}

// CheckMemoryUsage checks current memory usage against limits.
func (rm *ResourceManager) CheckMemoryUsage() error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	currentMB := int64(m.Alloc / 1024 / 1024)
	rm.memoryUsageMB.Store(currentMB)
	rm.mu.Lock()
	rm.lastMemoryCheck = time.Now()
	rm.mu.Unlock()

	if currentMB > rm.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, rm.maxMemoryMB)
	}
	return nil
}

// SessionCount returns the number of running sessions.
func (rm *ResourceManager) SessionCount() int64 {
	return rm.sessionCount.Load()
}

// MemoryUsage returns the last measured memory usage in MB.
func (rm *ResourceManager) MemoryUsage() int64 {
	return rm.memoryUsageMB.Load()
}

// ResourceStats contains resource usage statistics.
type ResourceStats struct {
	SessionCount    int64     `json:"session_count"`
	MaxSessions     int64     `json:"max_sessions"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}

// Stats returns current resource usage statistics.
func (rm *ResourceManager) Stats() ResourceStats {
	rm.mu.RLock()
	last := rm.lastMemoryCheck
	rm.mu.RUnlock()
	return ResourceStats{
		SessionCount:    rm.SessionCount(),
		MaxSessions:     rm.maxSessions,
		MemoryUsageMB:   rm.MemoryUsage(),
		MaxMemoryMB:     rm.maxMemoryMB,
		LastMemoryCheck: last,
	}
}

// Shutdown cancels every session and waits for them to return, up to the
// configured shutdown timeout.
func (rm *ResourceManager) Shutdown(ctx context.Context) error {
	rm.mu.Lock()
	wasRunning := rm.running
	rm.running = false
	rm.mu.Unlock()

	rm.logger.Info(ctx, "shutting down resource manager")
	rm.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, rm.shutdownTimeout)
	defer cancel()

	if wasRunning {
		select {
		case <-rm.done:
		case <-shutdownCtx.Done():
			rm.logger.Warn(ctx, "resource monitoring loop did not stop in time")
		}
	}

	return rm.waitForSessions(shutdownCtx)
}

func (rm *ResourceManager) waitForSessions(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		count := rm.SessionCount()
		if count == 0 {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			remaining := rm.SessionCount()
			rm.logger.Warn(ctx, "shutdown timeout exceeded with sessions still running",
				"remaining", remaining,
			)
			return fmt.Errorf("shutdown timeout: %d sessions still running", remaining)
		}
	}
}

func (rm *ResourceManager) monitoringLoop() {
	defer close(rm.done)

	ticker := time.NewTicker(rm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := rm.CheckMemoryUsage(); err != nil {
				rm.logger.Error(rm.ctx, "memory limit exceeded", err,
					"current_mb", rm.MemoryUsage(),
					"limit_mb", rm.maxMemoryMB,
				)
			}
			rm.logger.Debug(rm.ctx, "resource usage",
				"sessions", rm.SessionCount(),
				"memory_mb", rm.MemoryUsage(),
			)
		case <-rm.ctx.Done():
			return
		}
	}
}
