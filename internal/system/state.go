// Package system owns the single ambient state of a running instance: the
// log ring, entropy engine and scheduler, blueprint flag, scroll
// instrumentation and command console.
//
// A State is constructed with New, brought up with Init and released with
// Teardown. Every handler (tick, reset, toggle, scroll update, console
// submit, boot sequence) runs under one lock, so a mutation and the log lines
// it produces are never interleaved with another handler. Observers are
// notified after the handler has released the lock.
//
// Using a State before Init or after Teardown panics with an error wrapping
// ErrNotInitialized or ErrTornDown.
package system

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"neuralterm/internal/blueprint"
	"neuralterm/internal/config"
	"neuralterm/internal/console"
	"neuralterm/internal/entropy"
	"neuralterm/internal/logging"
	"neuralterm/internal/logring"
	"neuralterm/internal/scroll"
)

var (
	ErrNotInitialized = errors.New("system: state accessed before Init")
	ErrTornDown       = errors.New("system: state accessed after Teardown")
)

// ReloadMessage is appended when a new config has been applied.
const ReloadMessage = "Configuration reloaded."

// DefaultBootMessages is the scripted startup sequence.
var DefaultBootMessages = []string{
	"OpenSyntaxHQ System Initialized...",
	"Loading modules... [OK]",
}

type phase int

const (
	phaseNew phase = iota
	phaseRunning
	phaseClosed
)

// Options wires a State. Zero values fall back to package defaults.
type Options struct {
	Capacity        int
	TickPeriod      time.Duration
	Params          entropy.Params
	Random          entropy.Source
	ScrollThreshold int
	ScrollSource    scroll.Source
	BootDelay       time.Duration
	BootMessages    []string
	RepoURL         string
	ConsoleOpen     bool
	Theme           console.Theme
	Linker          console.Linker
	Clock           func() time.Time
}

// OptionsFromConfig maps a loaded config onto Options. Collaborators
// (theme, linker, scroll source, random source) are left for the caller.
func OptionsFromConfig(cfg *config.Config) Options {
	params := entropy.DefaultParams()
	params.Max = cfg.Entropy.Max
	params.BlurStart = cfg.Entropy.BlurStart
	params.BlurDivisor = cfg.Entropy.BlurDivisor

	opts := Options{
		Capacity:        cfg.Logs.Capacity,
		TickPeriod:      cfg.GetTickPeriod(),
		Params:          params,
		ScrollThreshold: cfg.Scroll.Threshold,
		BootDelay:       cfg.GetBootDelay(),
		BootMessages:    cfg.Boot.Messages,
		RepoURL:         cfg.Console.RepoURL,
		ConsoleOpen:     cfg.Console.StartOpen,
	}
	if cfg.Entropy.Seed != 0 {
		opts.Random = entropy.NewSeededSource(cfg.Entropy.Seed)
	}
	return opts
}

// State is the process-wide ambient state.
type State struct {
	mu    sync.Mutex
	phase phase

	ring      *logring.Ring
	engine    *entropy.Engine
	mode      *blueprint.Flag
	scroll    *scroll.Instrument
	console   *console.Console
	theme     console.Theme
	scheduler *entropy.Scheduler

	source            scroll.Source
	unsubscribeScroll func()
	unsubscribeRing   func()
	logSeq            uint64
	bootDelay         time.Duration
	bootMessages      []string

	cancel       context.CancelFunc
	wg           sync.WaitGroup
	teardownOnce sync.Once

	obsMu     sync.Mutex
	observers map[int]func()
	nextObs   int
}

// New builds a State that has not been initialized yet.
func New(opts Options) *State {
	var ringOpts []logring.Option
	if opts.Clock != nil {
		ringOpts = append(ringOpts, logring.WithClock(opts.Clock))
	}
	ring := logring.New(opts.Capacity, ringOpts...)

	theme := opts.Theme
	if theme == nil {
		theme = console.NewMemoryTheme(console.ThemeDark)
	}
	linker := opts.Linker
	if linker == nil {
		linker = console.DiscardLinker{}
	}
	bootMessages := opts.BootMessages
	if bootMessages == nil {
		bootMessages = DefaultBootMessages
	}
	bootDelay := opts.BootDelay
	if bootDelay < 0 {
		bootDelay = 0
	}

	s := &State{
		ring:         ring,
		engine:       entropy.NewEngine(ring, opts.Random, opts.Params),
		theme:        theme,
		source:       opts.ScrollSource,
		bootDelay:    bootDelay,
		bootMessages: bootMessages,
		observers:    make(map[int]func()),
	}
	s.unsubscribeRing = ring.Subscribe(s.onLogEvent)
	s.mode = blueprint.New(ring)
	s.scroll = scroll.New(ring, opts.ScrollThreshold)
	s.console = console.New(ring, s.mode, theme, linker, opts.RepoURL)
	if opts.ConsoleOpen {
		s.console.Open()
	}
	s.scheduler = entropy.NewScheduler(opts.TickPeriod, s.Tick)
	return s
}

// Init brings the state up: announces the initial blueprint mode, starts the
// entropy scheduler, subscribes to the scroll source and schedules the boot
// sequence. Calling Init twice, or after Teardown, panics.
func (s *State) Init(ctx context.Context) {
	s.mu.Lock()
	switch s.phase {
	case phaseRunning:
		s.mu.Unlock()
		panic(errors.New("system: Init called twice"))
	case phaseClosed:
		s.mu.Unlock()
		panic(fmt.Errorf("%w: Init", ErrTornDown))
	}
	s.phase = phaseRunning
	s.mode.Announce()
	s.mu.Unlock()
	s.notify()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.scheduler.Start(runCtx)
	if s.source != nil {
		s.unsubscribeScroll = s.source.Subscribe(s.ObserveScroll)
	}

	s.wg.Add(1)
	go s.bootSequence(runCtx)

	logging.Boot("state initialized: tick=%s boot_delay=%s capacity=%d",
		s.scheduler.Period(), s.bootDelay, s.ring.Cap())
}

// Teardown cancels the scheduler, the pending boot sequence and the scroll
// subscription, then closes the state. Repeated calls are no-ops.
func (s *State) Teardown() {
	s.teardownOnce.Do(s.teardown)
}

func (s *State) teardown() {
	s.mu.Lock()
	switch s.phase {
	case phaseClosed:
		s.mu.Unlock()
		return
	case phaseNew:
		s.phase = phaseClosed
		s.unsubscribeRing()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// Reverse acquisition order. In-flight handlers still see phaseRunning.
	if s.unsubscribeScroll != nil {
		s.unsubscribeScroll()
		s.unsubscribeScroll = nil
	}
	s.cancel()
	s.scheduler.Stop()
	s.wg.Wait()

	s.mu.Lock()
	s.phase = phaseClosed
	s.unsubscribeRing()
	s.mu.Unlock()
	logging.Boot("state torn down")
}

// Running reports whether the state is between Init and Teardown.
func (s *State) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == phaseRunning
}

// Observe registers fn to be called after every handler. fn must not block.
func (s *State) Observe(fn func()) (cancel func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *State) notify() {
	s.obsMu.Lock()
	fns := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// onLogEvent runs inside the ring mutation, which always happens under s.mu.
func (s *State) onLogEvent(ev logring.Event) {
	s.logSeq++
	if ev.Kind == logring.EventClear {
		logging.Get(logging.CategoryConsole).Debug("log ring cleared")
	}
}

// checkLocked reports misuse outside Init/Teardown. Caller holds s.mu.
func (s *State) checkLocked(op string) error {
	switch s.phase {
	case phaseNew:
		return fmt.Errorf("%w: %s", ErrNotInitialized, op)
	case phaseClosed:
		return fmt.Errorf("%w: %s", ErrTornDown, op)
	}
	return nil
}

// do runs fn as one atomic handler and then notifies observers.
func (s *State) do(op string, fn func()) {
	s.mu.Lock()
	if err := s.checkLocked(op); err != nil {
		s.mu.Unlock()
		panic(err)
	}
	fn()
	s.mu.Unlock()
	s.notify()
}

func (s *State) bootSequence(ctx context.Context) {
	defer s.wg.Done()

	timer := time.NewTimer(s.bootDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	s.do("boot", func() {
		for _, msg := range s.bootMessages {
			s.ring.Append(msg)
		}
	})
	logging.Boot("boot sequence logged %d messages", len(s.bootMessages))
}
