package entropy

import (
	"context"
	"sync"
	"time"

	"neuralterm/internal/logging"
)

// DefaultPeriod is the interval between entropy ticks.
const DefaultPeriod = 5 * time.Second

// Scheduler runs a tick function on a fixed period until stopped.
// The loop goroutine is owned by the scheduler; Stop waits for it to exit.
type Scheduler struct {
	mu      sync.Mutex
	period  time.Duration
	tick    func()
	cancel  context.CancelFunc
	doneCh  chan struct{}
	running bool
}

// NewScheduler creates a stopped scheduler. A non-positive period uses DefaultPeriod.
func NewScheduler(period time.Duration, tick func()) *Scheduler {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Scheduler{period: period, tick: tick}
}

// Period returns the tick interval.
func (s *Scheduler) Period() time.Duration { return s.period }

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start begins ticking. It is non-blocking and a no-op if already running.
// Cancelling ctx stops the loop as well, but Stop must still be called to reap it.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.doneCh = make(chan struct{})
	go s.run(loopCtx, s.doneCh)

	logging.Entropy("scheduler started: period=%s", s.period)
}

// Stop cancels the loop and waits for it to exit. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.doneCh
	s.cancel, s.doneCh = nil, nil
	s.mu.Unlock()

	cancel()
	<-done
	logging.Entropy("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}
