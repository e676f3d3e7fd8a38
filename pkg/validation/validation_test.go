package validation

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-roadball/pkg/entity"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    entity.Input
		wantErr bool
	}{
		{
			name: "pressed and released keys",
			data: `{"type":"input","keys":{"left":1,"nitro":1,"A":0}}`,
			want: entity.Input{}.Press(entity.ActionLeft, entity.ActionNitro),
		},
		{
			name: "every action",
			data: `{"type":"input","keys":{"left":1,"right":1,"up":1,"down":1,"A":1,"S":1,"D":1,"nitro":1,"start":1,"reset":1}}`,
			want: entity.Input{}.Press(entity.Actions()...),
		},
		{name: "no keys", data: `{"type":"input"}`, want: entity.Input{}},
		{name: "unknown action", data: `{"type":"input","keys":{"fire":1}}`, wantErr: true},
		{name: "value out of range", data: `{"type":"input","keys":{"left":2}}`, wantErr: true},
		{name: "negative value", data: `{"type":"input","keys":{"up":-1}}`, wantErr: true},
		{name: "wrong type", data: `{"type":"chat","keys":{}}`, wantErr: true},
		{name: "not json", data: `left=1`, wantErr: true},
		{name: "non-integer value", data: `{"type":"input","keys":{"left":"yes"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInput([]byte(tt.data))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInputFromMap_RoundTripsWireForm(t *testing.T) {
	in := entity.Input{}.Press(entity.ActionRight, entity.ActionA)

	got, err := InputFromMap(in.Map())
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestMessageValidator_ValidateMessage(t *testing.T) {
	v := NewMessageValidator(64, 1000)
	defer v.Close()

	_, err := v.ValidateMessage([]byte(`{"type":"input","keys":{"left":1}}`), "client")
	assert.NoError(t, err)

	big := fmt.Sprintf(`{"type":"input","keys":{},"pad":%q}`, strings.Repeat("x", 100))
	_, err = v.ValidateMessage([]byte(big), "client")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = v.ValidateMessage([]byte(`{"type":"input","keys":{"jump":1}}`), "client")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMessageValidator_RateLimit(t *testing.T) {
	v := NewMessageValidator(0, 3)
	defer v.Close()
	msg := []byte(`{"type":"input","keys":{}}`)

	for i := 0; i < 3; i++ {
		_, err := v.ValidateMessage(msg, "fast")
		require.NoError(t, err)
	}
	_, err := v.ValidateMessage(msg, "fast")
	assert.ErrorIs(t, err, ErrRateLimited)

	_, err = v.ValidateMessage(msg, "other")
	assert.NoError(t, err, "limits are per client")
}

func TestRateLimiter_TokenRefill(t *testing.T) {
	rl := NewRateLimiter(4, time.Second)
	defer rl.Close()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 4; i++ {
		require.True(t, rl.Allow("c"))
	}
	assert.False(t, rl.Allow("c"))

	now = now.Add(500 * time.Millisecond)
	assert.True(t, rl.Allow("c"))
	assert.True(t, rl.Allow("c"))
	assert.False(t, rl.Allow("c"))

	now = now.Add(10 * time.Second)
	for i := 0; i < 4; i++ {
		assert.True(t, rl.Allow("c"), "bucket refills to capacity only")
	}
	assert.False(t, rl.Allow("c"))
}

func TestRateLimiter_RemovesIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	defer rl.Close()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("idle")
	now = now.Add(time.Second)
	rl.Allow("active")
	now = now.Add(1500 * time.Millisecond)

	rl.removeInactiveClients()
	assert.Equal(t, 1, rl.Clients())

	rl.Forget("active")
	assert.Equal(t, 0, rl.Clients())
	rl.Close()
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(100, time.Hour)
	defer rl.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if rl.Allow("shared") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, allowed)
}
