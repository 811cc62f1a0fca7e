// Package scroll turns a continuous viewport-offset signal into sparse log
// entries. Only moves larger than the threshold, measured from the last
// logged position, produce a line.
package scroll

import (
	"fmt"
	"sync"
)

// DefaultThreshold is the minimum offset change that gets logged.
const DefaultThreshold = 500

// Sink receives operator-visible log lines.
type Sink interface {
	Append(message string)
}

// Source emits vertical offsets. Subscribe returns the matching unsubscribe.
type Source interface {
	Subscribe(fn func(position int)) (unsubscribe func())
}

// Instrument is the thresholded observer. Not safe for concurrent use; callers serialize.
type Instrument struct {
	threshold  int
	lastLogged int
	sink       Sink
}

// New creates an instrument with lastLogged at 0. A non-positive threshold uses DefaultThreshold.
func New(sink Sink, threshold int) *Instrument {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Instrument{threshold: threshold, sink: sink}
}

// Observe handles one signal update and reports whether it was logged.
func (i *Instrument) Observe(position int) bool {
	delta := position - i.lastLogged
	if delta < 0 {
		delta = -delta
	}
	if delta <= i.threshold {
		return false
	}
	i.sink.Append(fmt.Sprintf("User scrolled to Y:%d", position))
	i.lastLogged = position
	return true
}

// LastLogged returns the position of the most recent logged update.
func (i *Instrument) LastLogged() int { return i.lastLogged }

// Threshold returns the current threshold.
func (i *Instrument) Threshold() int { return i.threshold }

// SetThreshold replaces the threshold; non-positive values are ignored.
func (i *Instrument) SetThreshold(threshold int) {
	if threshold > 0 {
		i.threshold = threshold
	}
}

// Feed is an in-process Source. Publish delivers to every subscriber while
// holding a read lock, so an unsubscribe returns only after in-flight
// deliveries to that subscriber have finished.
type Feed struct {
	mu   sync.RWMutex
	subs map[int]func(int)
	next int
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]func(int))}
}

// Subscribe implements Source.
func (f *Feed) Subscribe(fn func(position int)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Publish sends position to all subscribers.
func (f *Feed) Publish(position int) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, fn := range f.subs {
		fn(position)
	}
}

// Subscribers returns the number of active subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
