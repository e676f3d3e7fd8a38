// Package health provides liveness and readiness probes for the game server.
package health

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck defines the interface for individual health checks.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ReadinessTimeout bounds a single readiness probe.
const ReadinessTimeout = 5 * time.Second

// HealthChecker manages and executes health checks for the application.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a health check, replacing any check with the same name.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// Names returns the registered check names, sorted.
func (hc *HealthChecker) Names() []string {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckHealth executes all registered health checks and returns the aggregated status.
// The overall status is "healthy" only if all individual checks pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
			continue
		}
		status.Checks[name] = ComponentHealth{Status: "healthy"}
	}

	return status
}

// Register mounts /health and /ready on r.
func (hc *HealthChecker) Register(r gin.IRoutes) {
	r.GET("/health", hc.LivenessHandler)
	r.GET("/ready", hc.ReadinessHandler)
}

// LivenessHandler reports that the process is serving requests.
func (hc *HealthChecker) LivenessHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// ReadinessHandler runs every check and answers 503 if any fails.
func (hc *HealthChecker) ReadinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ReadinessTimeout)
	defer cancel()

	health := hc.CheckHealth(ctx)
	code := http.StatusOK
	if health.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, health)
}

// FrameLoopHealthCheck fails when no frame has completed recently.
type FrameLoopHealthCheck struct {
	lastFrame func() time.Time
	maxAge    time.Duration
	now       func() time.Time
}

// NewFrameLoopHealthCheck creates a check that fails once lastFrame is older
// than maxAge. A zero lastFrame means the loop never ran.
func NewFrameLoopHealthCheck(lastFrame func() time.Time, maxAge time.Duration) *FrameLoopHealthCheck {
	return &FrameLoopHealthCheck{lastFrame: lastFrame, maxAge: maxAge, now: time.Now}
}

// Name returns the name of this health check.
func (f *FrameLoopHealthCheck) Name() string {
	return "frame_loop"
}

// Check verifies that the frame loop is advancing.
func (f *FrameLoopHealthCheck) Check(ctx context.Context) error {
	last := f.lastFrame()
	if last.IsZero() {
		return fmt.Errorf("frame loop has not run")
	}
	if age := f.now().Sub(last); age > f.maxAge {
		return fmt.Errorf("last frame %v ago exceeds %v", age.Round(time.Millisecond), f.maxAge)
	}
	return nil
}

// FrameBudgetHealthCheck fails when frames take longer to compute than the
// time they simulate.
type FrameBudgetHealthCheck struct {
	average func() time.Duration
	budget  time.Duration
}

// NewFrameBudgetHealthCheck creates a frame compute time check.
func NewFrameBudgetHealthCheck(average func() time.Duration, budget time.Duration) *FrameBudgetHealthCheck {
	return &FrameBudgetHealthCheck{average: average, budget: budget}
}

// Name returns the name of this health check.
func (f *FrameBudgetHealthCheck) Name() string {
	return "frame_budget"
}

// Check verifies the mean frame compute time.
func (f *FrameBudgetHealthCheck) Check(ctx context.Context) error {
	if avg := f.average(); avg > f.budget {
		return fmt.Errorf("average frame time %v exceeds budget %v", avg, f.budget)
	}
	return nil
}

// NetworkHealthCheck implements HealthCheck for network connectivity.
type NetworkHealthCheck struct {
	listenerAddr func() string
}

// NewNetworkHealthCheck creates a health check for network connectivity.
func NewNetworkHealthCheck(listenerAddr func() string) *NetworkHealthCheck {
	return &NetworkHealthCheck{
		listenerAddr: listenerAddr,
	}
}

// Name returns the name of this health check.
func (n *NetworkHealthCheck) Name() string {
	return "network"
}

// Check verifies that the network listener is active.
func (n *NetworkHealthCheck) Check(ctx context.Context) error {
	if n.listenerAddr() == "" {
		return fmt.Errorf("network listener is not active")
	}
	return nil
}

// MemoryHealthCheck implements HealthCheck for memory usage monitoring.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}
