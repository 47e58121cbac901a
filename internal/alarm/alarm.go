// Package alarm plays an audible tone when a metric crosses its limit.
package alarm

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Defaults for the warning tone.
const (
	DefaultSampleRate = 44100
	DefaultQueueSize  = 8
	FramesPerBuffer   = 1024 // ~23ms at 44100Hz
)

// Tone describes a pulsed sine beep.
type Tone struct {
	Frequency float64 // Hz
	Pulse     time.Duration
	Gap       time.Duration
	Pulses    int
	Volume    float64 // 0..1
}

// DefaultTone is three short 880Hz beeps.
func DefaultTone() Tone {
	return Tone{Frequency: 880, Pulse: 180 * time.Millisecond, Gap: 90 * time.Millisecond, Pulses: 3, Volume: 0.5}
}

// Generate renders t as mono float32 samples. Each pulse is faded in and out
// over a few milliseconds to avoid clicks.
func Generate(t Tone, sampleRate int) []float32 {
	pulse := int(t.Pulse.Seconds() * float64(sampleRate))
	gap := int(t.Gap.Seconds() * float64(sampleRate))
	if pulse <= 0 || t.Pulses <= 0 {
		return nil
	}
	fade := min(pulse/4, sampleRate/200)
	vol := math.Max(0, math.Min(1, t.Volume))

	out := make([]float32, 0, t.Pulses*(pulse+gap))
	for p := 0; p < t.Pulses; p++ {
		for i := 0; i < pulse; i++ {
			env := 1.0
			if fade > 0 {
				env = math.Min(1, math.Min(float64(i)/float64(fade), float64(pulse-1-i)/float64(fade)))
			}
			v := vol * env * math.Sin(2*math.Pi*t.Frequency*float64(i)/float64(sampleRate))
			out = append(out, float32(v))
		}
		if p < t.Pulses-1 {
			out = append(out, make([]float32, gap)...)
		}
	}
	return out
}

// Player renders samples on an output device.
type Player interface {
	Play(samples []float32) error
	Close() error
}

// Request is one queued alarm.
type Request struct {
	Metric string
	Value  int
	At     time.Time
}

// Alarm queues threshold warnings and plays them on a worker goroutine.
type Alarm struct {
	player  Player
	samples []float32
	queue   chan Request
	played  atomic.Int64
	dropped atomic.Int64

	closeOnce sync.Once
}

// New creates an alarm that plays tone through player.
func New(player Player, tone Tone, sampleRate int) *Alarm {
	return &Alarm{
		player:  player,
		samples: Generate(tone, sampleRate),
		queue:   make(chan Request, DefaultQueueSize),
	}
}

// Trigger queues an alarm without blocking. When the queue is full the
// request is dropped; a tone is already pending.
func (a *Alarm) Trigger(metric string, value int) {
	select {
	case a.queue <- Request{Metric: metric, Value: value, At: time.Now()}:
	default:
		a.dropped.Add(1)
		slog.Debug("alarm queue full, dropping", "metric", metric, "value", value)
	}
}

// Run plays queued alarms until ctx is done.
func (a *Alarm) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-a.queue:
			if err := a.player.Play(a.samples); err != nil {
				slog.Warn("alarm playback failed", "metric", req.Metric, "error", err)
				continue
			}
			a.played.Add(1)
		}
	}
}

// Played returns how many alarms were played.
func (a *Alarm) Played() int64 { return a.played.Load() }

// Dropped returns how many alarms were dropped on a full queue.
func (a *Alarm) Dropped() int64 { return a.dropped.Load() }

// Close releases the output device.
func (a *Alarm) Close() error {
	var err error
	a.closeOnce.Do(func() { err = a.player.Close() })
	return err
}
