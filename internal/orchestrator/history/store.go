// Package history keeps recent monitor events and fans them out to
// subscribers such as WebSocket clients and the terminal dashboard.
package history

import (
	"sync"
	"time"
)

// Event kinds beyond the monitor's notification kinds.
const (
	KindSnapshot  = "snapshot"
	KindSample    = "sample"
	KindOCRError  = "ocr_error"
	KindSurface   = "surface"
	KindLifecycle = "lifecycle"
)

// Event is one entry of the run's event history.
type Event struct {
	Time    time.Time `json:"time"`
	Kind    string    `json:"kind"`
	Metric  string    `json:"metric,omitempty"`
	Value   int       `json:"value,omitempty"`
	Message string    `json:"message"`
}

// Store is a bounded in-memory event history with non-blocking fan-out.
type Store struct {
	mu      sync.RWMutex
	entries []Event
	maxSize int
	subs    map[int]chan Event
	nextID  int
}

// NewStore creates a store keeping the last maxEntries events.
func NewStore(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Store{
		entries: make([]Event, 0, maxEntries),
		maxSize: maxEntries,
		subs:    make(map[int]chan Event),
	}
}

// Add records an event and delivers it to subscribers. Slow subscribers
// miss events rather than block the caller.
func (s *Store) Add(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	if len(s.entries) > s.maxSize {
		s.entries = s.entries[len(s.entries)-s.maxSize:]
	}
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Recent returns up to n of the latest events, oldest first. n <= 0 returns all.
func (s *Store) Recent(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if n > 0 && n < len(s.entries) {
		start = len(s.entries) - n
	}
	out := make([]Event, len(s.entries)-start)
	copy(out, s.entries[start:])
	return out
}

// Since returns events strictly after t, oldest first.
func (s *Store) Since(t time.Time) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.entries {
		if e.Time.After(t) {
			out = append(out, e)
		}
	}
	return out
}

// Subscribe returns a channel receiving new events and a cancel func that
// closes it.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
