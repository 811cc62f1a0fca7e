package entropy

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScheduler_TicksUntilStopped(t *testing.T) {
	var ticks atomic.Int32
	s := NewScheduler(10*time.Millisecond, func() { ticks.Add(1) })

	s.Start(context.Background())
	assert.True(t, s.Running())
	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.Running())
	after := ticks.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no ticks after Stop")
}

func TestScheduler_StartTwiceStopTwice(t *testing.T) {
	var ticks atomic.Int32
	s := NewScheduler(time.Hour, func() { ticks.Add(1) })

	s.Start(context.Background())
	s.Start(context.Background())
	s.Stop()
	s.Stop()
	assert.Zero(t, ticks.Load())
}

func TestScheduler_ContextCancelEndsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(5*time.Millisecond, func() {})
	s.Start(ctx)
	cancel()
	// Stop still reaps the goroutine after the parent context ended it.
	s.Stop()
}

func TestScheduler_Restart(t *testing.T) {
	var ticks atomic.Int32
	s := NewScheduler(5*time.Millisecond, func() { ticks.Add(1) })

	s.Start(context.Background())
	s.Stop()
	s.Start(context.Background())
	assert.Eventually(t, func() bool { return ticks.Load() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestNewScheduler_DefaultPeriod(t *testing.T) {
	assert.Equal(t, DefaultPeriod, NewScheduler(0, func() {}).Period())
	assert.Equal(t, 2*time.Second, NewScheduler(2*time.Second, func() {}).Period())
}
