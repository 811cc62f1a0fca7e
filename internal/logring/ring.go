// Package logring implements the bounded, timestamped message store that backs
// the console log pane. Oldest entries are evicted first once capacity is reached.
package logring

import (
	"fmt"
	"sync"
	"time"
)

// DefaultCapacity is the number of entries kept when no capacity is configured.
const DefaultCapacity = 50

// Entry is one immutable log line.
type Entry struct {
	Timestamp time.Time
	Message   string
}

// Clock renders the timestamp as HH:MM:SS (24h).
func (e Entry) Clock() string {
	return e.Timestamp.Format("15:04:05")
}

// String renders the entry the way the console prints it.
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Clock(), e.Message)
}

// EventKind distinguishes ring mutations delivered to subscribers.
type EventKind int

const (
	EventAppend EventKind = iota
	EventClear
)

// Event describes a single mutation. Entry is zero for EventClear.
type Event struct {
	Kind  EventKind
	Entry Entry
	Len   int
}

// Option configures a Ring.
type Option func(*Ring)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Ring) {
		if now != nil {
			r.now = now
		}
	}
}

// Ring is a fixed-capacity FIFO of entries. Safe for concurrent use.
type Ring struct {
	mu      sync.RWMutex
	buf     []Entry
	head    int
	size    int
	now     func() time.Time
	subs    map[int]func(Event)
	nextSub int
}

// New creates a ring holding at most capacity entries.
// A non-positive capacity falls back to DefaultCapacity.
func New(capacity int, opts ...Option) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r := &Ring{
		buf:  make([]Entry, capacity),
		now:  time.Now,
		subs: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Append stores message stamped with the current time, evicting the oldest
// entry when full.
func (r *Ring) Append(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := Entry{Timestamp: r.now(), Message: message}
	if r.size == len(r.buf) {
		r.buf[r.head] = e
		r.head = (r.head + 1) % len(r.buf)
	} else {
		r.buf[(r.head+r.size)%len(r.buf)] = e
		r.size++
	}
	r.publish(Event{Kind: EventAppend, Entry: e, Len: r.size})
}

// Clear empties the ring unconditionally.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.buf {
		r.buf[i] = Entry{}
	}
	r.head = 0
	r.size = 0
	r.publish(Event{Kind: EventClear})
}

// Entries returns a copy of the stored entries, oldest first.
func (r *Ring) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Lines renders every entry with its timestamp prefix.
func (r *Ring) Lines() []string {
	entries := r.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines
}

// Len returns the number of stored entries.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Cap returns the configured capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Subscribe registers fn to be called after every mutation, in mutation order.
// fn runs while the ring is locked and must not call back into the ring.
func (r *Ring) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

func (r *Ring) publish(ev Event) {
	for _, fn := range r.subs {
		fn(ev)
	}
}
