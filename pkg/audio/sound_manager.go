package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/opd-ai/go-roadball/pkg/event"
	"github.com/opd-ai/go-roadball/pkg/logging"
)

const (
	sampleRate = beep.SampleRate(44100)

	// collisionGap is the shortest time between two collision clicks.
	collisionGap = 80 * time.Millisecond
)

// SoundManager mixes event tones into the speaker.
type SoundManager struct {
	mu            sync.Mutex
	mixer         *beep.Mixer
	initialized   bool
	lastCollision time.Time
	now           func() time.Time
	logger        *logging.Logger
	subs          []*event.Subscription
}

// NewSoundManager creates a sound manager. Nothing plays until Initialize.
func NewSoundManager(logger *logging.Logger) *SoundManager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SoundManager{
		mixer:  &beep.Mixer{},
		now:    time.Now,
		logger: logger,
	}
}

// Initialize opens the speaker.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return logging.WrapError(err, "failed to open speaker")
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Subscribe plays a tone for every sounding event published on bus.
func (sm *SoundManager) Subscribe(bus *event.Bus) {
	types := []event.Type{
		event.ObjectCollision, event.TargetHit, event.LevelStarted,
		event.LevelWon, event.LevelLost, event.GameCompleted,
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, t := range types {
		sm.subs = append(sm.subs, bus.Subscribe(t, sm.handle))
	}
}

func (sm *SoundManager) handle(e event.Event) {
	tone, ok := ToneFor(e)
	if !ok {
		return
	}
	if e.GetType() == event.ObjectCollision && !sm.collisionDue() {
		return
	}
	sm.Play(tone)
}

func (sm *SoundManager) collisionDue() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	now := sm.now()
	if now.Sub(sm.lastCollision) < collisionGap {
		return false
	}
	sm.lastCollision = now
	return true
}

// Play mixes in a tone. It reports false before Initialize.
func (sm *SoundManager) Play(t Tone) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return false
	}
	speaker.Lock()
	sm.mixer.Add(t.Streamer(sampleRate))
	speaker.Unlock()
	sm.logger.Debug(context.Background(), "tone", "freq", t.Freq)
	return true
}

// Cleanup cancels the subscriptions and silences the mixer.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, s := range sm.subs {
		s.Cancel()
	}
	sm.subs = nil
	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}
