package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockHealthCheck implements HealthCheck for testing
type mockHealthCheck struct {
	name string
	err  error
}

func (m *mockHealthCheck) Name() string { return m.name }

func (m *mockHealthCheck) Check(ctx context.Context) error { return m.err }

// slowHealthCheck blocks until its delay passes or the context ends
type slowHealthCheck struct {
	name  string
	delay time.Duration
}

func (s *slowHealthCheck) Name() string { return s.name }

func (s *slowHealthCheck) Check(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func serve(hc *HealthChecker, path string) *httptest.ResponseRecorder {
	router := gin.New()
	hc.Register(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthChecker_AddRemove(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&mockHealthCheck{name: "b"})
	hc.AddCheck(&mockHealthCheck{name: "a"})
	hc.AddCheck(&mockHealthCheck{name: "a", err: errors.New("replaced")})

	assert.Equal(t, []string{"a", "b"}, hc.Names())
	assert.Equal(t, "unhealthy", hc.CheckHealth(context.Background()).Checks["a"].Status)

	hc.RemoveCheck("a")
	assert.Equal(t, []string{"b"}, hc.Names())
}

func TestHealthChecker_CheckHealth(t *testing.T) {
	tests := []struct {
		name       string
		checks     []HealthCheck
		wantStatus string
	}{
		{name: "no checks", wantStatus: "healthy"},
		{
			name:       "all healthy",
			checks:     []HealthCheck{&mockHealthCheck{name: "one"}, &mockHealthCheck{name: "two"}},
			wantStatus: "healthy",
		},
		{
			name: "one failing",
			checks: []HealthCheck{
				&mockHealthCheck{name: "one"},
				&mockHealthCheck{name: "two", err: errors.New("broken")},
			},
			wantStatus: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			for _, c := range tt.checks {
				hc.AddCheck(c)
			}
			status := hc.CheckHealth(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Len(t, status.Checks, len(tt.checks))
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&mockHealthCheck{name: "down", err: errors.New("down")})

	w := serve(hc, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "ready", wantCode: http.StatusOK},
		{name: "not ready", err: errors.New("frame loop stalled"), wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			hc.AddCheck(&mockHealthCheck{name: "engine", err: tt.err})

			w := serve(hc, "/ready")
			require.Equal(t, tt.wantCode, w.Code)

			var status HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			if tt.err != nil {
				assert.Equal(t, tt.err.Error(), status.Checks["engine"].Message)
			}
		})
	}
}

func TestCheckHealth_RespectsContext(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&slowHealthCheck{name: "slow", delay: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	status := hc.CheckHealth(ctx)
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, context.DeadlineExceeded.Error(), status.Checks["slow"].Message)
}

func TestFrameLoopHealthCheck(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		last    time.Time
		wantErr bool
	}{
		{name: "never ran", last: time.Time{}, wantErr: true},
		{name: "recent", last: now.Add(-50 * time.Millisecond)},
		{name: "stalled", last: now.Add(-2 * time.Second), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewFrameLoopHealthCheck(func() time.Time { return tt.last }, time.Second)
			check.now = func() time.Time { return now }

			err := check.Check(context.Background())
			assert.Equal(t, tt.wantErr, err != nil, "err: %v", err)
			assert.Equal(t, "frame_loop", check.Name())
		})
	}
}

func TestFrameBudgetHealthCheck(t *testing.T) {
	budget := 25 * time.Millisecond
	tests := []struct {
		name    string
		average time.Duration
		wantErr bool
	}{
		{name: "idle", average: 0},
		{name: "within budget", average: 3 * time.Millisecond},
		{name: "at budget", average: budget},
		{name: "over budget", average: 40 * time.Millisecond, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewFrameBudgetHealthCheck(func() time.Duration { return tt.average }, budget)
			err := check.Check(context.Background())
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestNetworkAndMemoryHealthChecks(t *testing.T) {
	assert.Error(t, NewNetworkHealthCheck(func() string { return "" }).Check(context.Background()))
	assert.NoError(t, NewNetworkHealthCheck(func() string { return "127.0.0.1:4566" }).Check(context.Background()))

	assert.NoError(t, NewMemoryHealthCheck(100, func() int64 { return 50 }).Check(context.Background()))
	assert.Error(t, NewMemoryHealthCheck(100, func() int64 { return 150 }).Check(context.Background()))
}
