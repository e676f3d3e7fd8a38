// Package audio plays short synthesized tones for game events.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/opd-ai/go-roadball/pkg/event"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
)

// Tone is one note.
type Tone struct {
	Freq     float64
	Duration time.Duration
	Wave     WaveType
	Volume   float64
}

// Tones for each event kind.
var (
	CollisionTone = Tone{Freq: 180, Duration: 40 * time.Millisecond, Wave: WaveSquare, Volume: 0.15}
	GoalTone      = Tone{Freq: 880, Duration: 200 * time.Millisecond, Wave: WaveSine, Volume: 0.5}
	ObstacleTone  = Tone{Freq: 140, Duration: 250 * time.Millisecond, Wave: WaveSquare, Volume: 0.4}
	StartTone     = Tone{Freq: 440, Duration: 120 * time.Millisecond, Wave: WaveSine, Volume: 0.4}
	WonTone       = Tone{Freq: 660, Duration: 300 * time.Millisecond, Wave: WaveSine, Volume: 0.5}
	LostTone      = Tone{Freq: 110, Duration: 400 * time.Millisecond, Wave: WaveSquare, Volume: 0.4}
	CompletedTone = Tone{Freq: 1320, Duration: 500 * time.Millisecond, Wave: WaveSine, Volume: 0.5}
)

// ToneFor picks the tone for an event. Resets are silent.
func ToneFor(e event.Event) (Tone, bool) {
	switch e.GetType() {
	case event.ObjectCollision:
		return CollisionTone, true
	case event.TargetHit:
		if te, ok := e.(*event.TargetEvent); ok && te.Kind == "goal" {
			return GoalTone, true
		}
		return ObstacleTone, true
	case event.LevelStarted:
		return StartTone, true
	case event.LevelWon:
		return WonTone, true
	case event.LevelLost:
		return LostTone, true
	case event.GameCompleted:
		return CompletedTone, true
	}
	return Tone{}, false
}

// oscillator generates a fixed number of samples of one wave.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

func newOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) *oscillator {
	return &oscillator{freq: freq, duration: rate.N(duration), wave: wave, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSquare:
			val = -1
			if o.phase < 0.5 {
				val = 1
			}
		default:
			val = math.Sin(2 * math.Pi * o.phase)
		}
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// fade applies a linear release over the last samples of a stream so tones
// end without a click.
type fade struct {
	streamer beep.Streamer
	position int
	total    int
	release  int
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)
	start := f.total - f.release
	for i := 0; i < n; i++ {
		if f.position >= start && f.release > 0 {
			vol := float64(f.total-f.position) / float64(f.release)
			if vol < 0 {
				vol = 0
			}
			samples[i][0] *= vol
			samples[i][1] *= vol
		}
		f.position++
	}
	return n, ok
}

func (f *fade) Err() error { return f.streamer.Err() }

// Streamer renders t at rate.
func (t Tone) Streamer(rate beep.SampleRate) beep.Streamer {
	total := rate.N(t.Duration)
	shaped := &fade{
		streamer: newOscillator(t.Freq, t.Duration, t.Wave, rate),
		total:    total,
		release:  total / 4,
	}
	return newVolume(shaped, t.Volume)
}

// math.Log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
