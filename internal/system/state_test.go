package system

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"neuralterm/internal/config"
	"neuralterm/internal/console"
	"neuralterm/internal/entropy"
	"neuralterm/internal/scroll"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// HELPERS
// =============================================================================

// quietOptions disables the scheduler in practice and makes boot immediate.
func quietOptions() Options {
	return Options{
		TickPeriod: time.Hour,
		BootDelay:  time.Hour,
	}
}

func startState(t *testing.T, opts Options) *State {
	t.Helper()
	s := New(opts)
	s.Init(context.Background())
	t.Cleanup(s.Teardown)
	return s
}

func messages(s *State) []string {
	snap := s.Snapshot()
	out := make([]string, len(snap.Logs))
	for i, e := range snap.Logs {
		out[i] = e.Message
	}
	return out
}

func count(lines []string, substr string) int {
	n := 0
	for _, l := range lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

func recoverErr(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		e, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		err = e
	}()
	fn()
	return nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestLifecycle_AccessBeforeInitPanics(t *testing.T) {
	s := New(quietOptions())
	err := recoverErr(t, func() { s.Snapshot() })
	assert.True(t, errors.Is(err, ErrNotInitialized))

	err = recoverErr(t, func() { s.Submit("help") })
	assert.True(t, errors.Is(err, ErrNotInitialized))
	s.Teardown()
}

func TestLifecycle_AccessAfterTeardownPanics(t *testing.T) {
	s := New(quietOptions())
	s.Init(context.Background())
	s.Teardown()

	assert.False(t, s.Running())
	err := recoverErr(t, func() { s.Tick() })
	assert.True(t, errors.Is(err, ErrTornDown))
	err = recoverErr(t, func() { s.ToggleBlueprint() })
	assert.True(t, errors.Is(err, ErrTornDown))

	assert.NotPanics(t, s.Teardown, "teardown is idempotent")
}

func TestLifecycle_InitTwicePanics(t *testing.T) {
	s := startState(t, quietOptions())
	assert.Panics(t, func() { s.Init(context.Background()) })
}

func TestLifecycle_InitAfterTeardownPanics(t *testing.T) {
	s := New(quietOptions())
	s.Teardown()
	err := recoverErr(t, func() { s.Init(context.Background()) })
	assert.True(t, errors.Is(err, ErrTornDown))
}

func TestLifecycle_InitAnnouncesModeAndBoots(t *testing.T) {
	opts := quietOptions()
	opts.BootDelay = 5 * time.Millisecond
	s := startState(t, opts)

	require.Eventually(t, func() bool { return len(messages(s)) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{
		"System state changed: Blueprint Mode DISABLED",
		"OpenSyntaxHQ System Initialized...",
		"Loading modules... [OK]",
	}, messages(s))
}

func TestLifecycle_TeardownCancelsPendingBoot(t *testing.T) {
	s := New(quietOptions())
	s.Init(context.Background())
	s.Teardown()
	// goleak in TestMain asserts the boot goroutine and scheduler are gone.
}

func TestLifecycle_SchedulerDrivesEntropy(t *testing.T) {
	opts := quietOptions()
	opts.TickPeriod = 2 * time.Millisecond
	s := startState(t, opts)

	require.Eventually(t, func() bool { return s.Snapshot().Entropy >= 3 }, time.Second, 2*time.Millisecond)
	s.Teardown()
	assert.False(t, s.Running())
}

func TestLifecycle_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := quietOptions()
	opts.TickPeriod = time.Millisecond
	s := New(opts)
	s.Init(ctx)
	cancel()
	s.Teardown()
}

// =============================================================================
// ENTROPY
// =============================================================================

func TestEntropy_ResetZeroesAndLogs(t *testing.T) {
	s := startState(t, quietOptions())
	s.Advance(73)

	s.ResetEntropy()
	snap := s.Snapshot()
	assert.Zero(t, snap.Entropy)
	assert.True(t, snap.Perturbation.IsZero())

	s.ResetEntropy()
	assert.Equal(t, 2, count(messages(s), entropy.ResetMessage))
}

func TestEntropy_CrossingAt40(t *testing.T) {
	s := startState(t, quietOptions())
	s.Advance(39)
	before := len(messages(s))

	s.Tick()
	msgs := messages(s)
	require.Len(t, msgs, before+1)
	assert.Equal(t, "Entropy Critical: 40% visual degradation imminent.", msgs[len(msgs)-1])
}

func TestEntropy_BlurScenario(t *testing.T) {
	s := startState(t, quietOptions())
	s.Advance(45)
	s.Tick()
	assert.Equal(t, 46, s.Snapshot().Entropy)
	assert.Zero(t, s.Snapshot().Perturbation.BlurPx)

	s.Advance(5)
	assert.InDelta(t, 1.0/35, s.Snapshot().Perturbation.BlurPx, 1e-9)
}

func TestEntropy_SaturatesAt100(t *testing.T) {
	s := startState(t, quietOptions())
	assert.Equal(t, 100, s.Advance(500))
	assert.Equal(t, 0, s.Advance(3))
	assert.Equal(t, 100, s.Snapshot().Entropy)
	assert.Equal(t, 10, count(messages(s), "Entropy Critical"))
}

// =============================================================================
// CONSOLE, MODE, SCROLL
// =============================================================================

type recordingLinker struct {
	mu   sync.Mutex
	urls []string
}

func (l *recordingLinker) OpenExternal(url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, url)
	return nil
}

func TestConsole_ClosedByDefault(t *testing.T) {
	s := startState(t, quietOptions())
	before := len(messages(s))
	assert.Equal(t, console.KindNone, s.Submit("help"))
	assert.Len(t, messages(s), before)

	assert.True(t, s.ToggleConsole())
	assert.True(t, s.Snapshot().ConsoleOpen)
	assert.Equal(t, console.KindHelp, s.Submit("  HELP  "))
	assert.Zero(t, count(messages(s), "Unknown command"))
}

func TestConsole_CommandsReachState(t *testing.T) {
	links := &recordingLinker{}
	theme := console.NewMemoryTheme(console.ThemeDark)
	opts := quietOptions()
	opts.ConsoleOpen = true
	opts.Linker = links
	opts.Theme = theme
	opts.RepoURL = "https://example.com/org"
	s := startState(t, opts)

	s.Submit("blueprint")
	snap := s.Snapshot()
	assert.True(t, snap.Blueprint)
	assert.Equal(t, "BLUEPRINT_MODE_ACTIVE", snap.Header())

	s.Submit("theme")
	assert.Equal(t, console.ThemeLight, s.Snapshot().Theme)

	s.Submit("repo")
	assert.Equal(t, []string{"https://example.com/org"}, links.urls)

	s.Submit("xyz")
	assert.Equal(t, 1, count(messages(s), "Unknown command: xyz"))

	s.Submit("clear")
	assert.Empty(t, messages(s))

	s.CloseConsole()
	assert.False(t, s.Snapshot().ConsoleOpen)
	s.OpenConsole()
	assert.True(t, s.Snapshot().ConsoleOpen)
}

func TestMode_ToggleTwice(t *testing.T) {
	s := startState(t, quietOptions())
	assert.True(t, s.ToggleBlueprint())
	assert.False(t, s.ToggleBlueprint())

	msgs := messages(s)
	assert.Equal(t, 1, count(msgs, "Blueprint Mode ENABLED"))
	// One from the mount announcement, one from the second toggle.
	assert.Equal(t, 2, count(msgs, "Blueprint Mode DISABLED"))
	assert.Equal(t, "NEURAL_TERMINAL", s.Snapshot().Header())
}

func TestScroll_ThroughFeed(t *testing.T) {
	feed := scroll.NewFeed()
	opts := quietOptions()
	opts.ScrollSource = feed
	s := startState(t, opts)
	require.Equal(t, 1, feed.Subscribers())

	feed.Publish(0)
	feed.Publish(400)
	feed.Publish(801)
	assert.Equal(t, 1, count(messages(s), "User scrolled to Y:"))
	assert.Equal(t, 1, count(messages(s), "User scrolled to Y:801"))

	s.Teardown()
	assert.Zero(t, feed.Subscribers(), "teardown must unsubscribe from the scroll source")
	assert.NotPanics(t, func() { feed.Publish(5000) })
}

// =============================================================================
// OBSERVERS, CAPACITY, CONFIG
// =============================================================================

func TestObserve_CalledAfterEachHandler(t *testing.T) {
	s := New(quietOptions())
	var calls atomic.Int32
	cancel := s.Observe(func() { calls.Add(1) })
	s.Init(context.Background())
	defer s.Teardown()

	base := calls.Load()
	s.Tick()
	s.ToggleBlueprint()
	s.Append("hello")
	assert.Equal(t, base+3, calls.Load())

	cancel()
	s.Tick()
	assert.Equal(t, base+3, calls.Load())
}

func TestObserve_CanReadSnapshot(t *testing.T) {
	s := startState(t, quietOptions())
	var seen atomic.Int32
	s.Observe(func() { seen.Store(int32(s.Snapshot().Entropy)) })
	s.Advance(7)
	assert.Equal(t, int32(7), seen.Load())
}

func TestCapacity_Bounded(t *testing.T) {
	opts := quietOptions()
	opts.Capacity = 50
	s := startState(t, opts)
	for i := 0; i < 120; i++ {
		s.Append("line")
	}
	assert.Len(t, s.Snapshot().Logs, 50)
}

func TestApplyConfig(t *testing.T) {
	feed := scroll.NewFeed()
	links := &recordingLinker{}
	opts := quietOptions()
	opts.ScrollSource = feed
	opts.Linker = links
	opts.ConsoleOpen = true
	s := startState(t, opts)

	cfg := config.DefaultConfig()
	cfg.Scroll.Threshold = 50
	cfg.Console.RepoURL = "https://example.net"
	s.ApplyConfig(cfg)

	feed.Publish(60)
	s.Submit("repo")

	msgs := messages(s)
	assert.Equal(t, 1, count(msgs, ReloadMessage))
	assert.Equal(t, 1, count(msgs, "User scrolled to Y:60"))
	assert.Equal(t, []string{"https://example.net"}, links.urls)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Entropy.Seed = 9
	cfg.Console.StartOpen = true
	opts := OptionsFromConfig(cfg)

	assert.Equal(t, 50, opts.Capacity)
	assert.Equal(t, 5*time.Second, opts.TickPeriod)
	assert.Equal(t, entropy.DefaultParams(), opts.Params)
	assert.Equal(t, 500, opts.ScrollThreshold)
	assert.Equal(t, 100*time.Millisecond, opts.BootDelay)
	assert.Equal(t, DefaultBootMessages, opts.BootMessages)
	assert.True(t, opts.ConsoleOpen)
	assert.NotNil(t, opts.Random)
}

func TestSnapshot_LinesFormat(t *testing.T) {
	t0 := time.Date(2026, 10, 18, 9, 5, 7, 0, time.UTC)
	opts := quietOptions()
	opts.Clock = func() time.Time { return t0 }
	s := startState(t, opts)

	lines := s.Snapshot().Lines()
	require.NotEmpty(t, lines)
	assert.Equal(t, "[09:05:07] System state changed: Blueprint Mode DISABLED", lines[0])
}

func TestSnapshot_LogSeqFollowsRing(t *testing.T) {
	opts := quietOptions()
	opts.ConsoleOpen = true
	s := startState(t, opts)

	start := s.Snapshot().LogSeq
	assert.Equal(t, uint64(1), start, "the mount announcement is the first append")

	s.Advance(5)
	assert.Equal(t, start, s.Snapshot().LogSeq, "ticks below a critical level log nothing")

	s.Advance(5)
	afterCritical := s.Snapshot().LogSeq
	assert.Equal(t, start+1, afterCritical)

	s.Submit("clear")
	snap := s.Snapshot()
	assert.Empty(t, snap.Logs)
	assert.Equal(t, afterCritical+2, snap.LogSeq, "echo then clear")
}

func TestEntropy_ConfigMaxAboveCeiling(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Entropy.Max = 250
	opts := OptionsFromConfig(cfg)
	opts.TickPeriod = time.Hour
	opts.BootDelay = time.Hour
	s := startState(t, opts)

	s.Advance(200)
	assert.Equal(t, entropy.Ceiling, s.Snapshot().Entropy)
}
