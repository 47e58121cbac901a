package alarm

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

type fakePlayer struct {
	mu     sync.Mutex
	plays  int
	err    error
	closed int
	gate   chan struct{}
}

func (f *fakePlayer) Play([]float32) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
	return f.err
}

func (f *fakePlayer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func TestGenerateLength(t *testing.T) {
	tone := Tone{Frequency: 440, Pulse: 100 * time.Millisecond, Gap: 50 * time.Millisecond, Pulses: 3, Volume: 1}
	got := Generate(tone, 1000)

	// three 100-sample pulses, two 50-sample gaps
	if len(got) != 400 {
		t.Fatalf("len = %d, want 400", len(got))
	}
	for i := 100; i < 150; i++ {
		if got[i] != 0 {
			t.Fatalf("sample %d in gap = %v, want 0", i, got[i])
		}
	}
}

func TestGenerateAmplitude(t *testing.T) {
	tone := DefaultTone()
	tone.Volume = 0.25
	samples := Generate(tone, DefaultSampleRate)

	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	if peak > 0.25+1e-6 || peak < 0.2 {
		t.Errorf("peak = %v, want about 0.25", peak)
	}
	if samples[0] != 0 {
		t.Errorf("first sample = %v, want faded to 0", samples[0])
	}
}

func TestGenerateEmpty(t *testing.T) {
	if got := Generate(Tone{Frequency: 440}, 1000); got != nil {
		t.Errorf("Generate(zero pulse) = %d samples, want nil", len(got))
	}
}

func TestAlarmPlaysTriggers(t *testing.T) {
	p := &fakePlayer{}
	a := New(p, DefaultTone(), 8000)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { a.Run(ctx); close(done) }()

	a.Trigger("strike_rate", 125)
	a.Trigger("cpu_usage", 85)

	deadline := time.After(time.Second)
	for a.Played() < 2 {
		select {
		case <-deadline:
			t.Fatalf("played = %d, want 2", a.Played())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestAlarmTriggerNeverBlocks(t *testing.T) {
	p := &fakePlayer{gate: make(chan struct{})}
	a := New(p, DefaultTone(), 8000)

	done := make(chan struct{})
	go func() {
		for i := 0; i < DefaultQueueSize+5; i++ {
			a.Trigger("cpu_usage", 90)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Trigger blocked")
	}
	if a.Dropped() != 5 {
		t.Errorf("Dropped() = %d, want 5", a.Dropped())
	}
}

func TestAlarmPlaybackErrorIsNotCounted(t *testing.T) {
	p := &fakePlayer{err: errors.New("device busy")}
	a := New(p, DefaultTone(), 8000)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	a.Trigger("strike_rate", 130)
	time.Sleep(20 * time.Millisecond)
	if a.Played() != 0 {
		t.Errorf("Played() = %d, want 0", a.Played())
	}
}

func TestAlarmCloseOnce(t *testing.T) {
	p := &fakePlayer{}
	a := New(p, DefaultTone(), 8000)
	_ = a.Close()
	_ = a.Close()
	if p.closed != 1 {
		t.Errorf("closed = %d, want 1", p.closed)
	}
}
