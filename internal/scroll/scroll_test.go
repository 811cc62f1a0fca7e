package scroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct{ lines []string }

func (r *recorder) Append(msg string) { r.lines = append(r.lines, msg) }

func TestObserve_ThresholdFromLastLogged(t *testing.T) {
	rec := &recorder{}
	in := New(rec, DefaultThreshold)

	assert.False(t, in.Observe(400))
	assert.True(t, in.Observe(801))

	assert.Equal(t, []string{"User scrolled to Y:801"}, rec.lines)
	assert.Equal(t, 801, in.LastLogged())
}

func TestObserve_ExactThresholdIsNotLogged(t *testing.T) {
	rec := &recorder{}
	in := New(rec, 500)
	assert.False(t, in.Observe(500))
	assert.True(t, in.Observe(501))
	assert.Len(t, rec.lines, 1)
}

func TestObserve_ScrollingBackUp(t *testing.T) {
	rec := &recorder{}
	in := New(rec, 500)
	in.Observe(1200)
	assert.False(t, in.Observe(800))
	assert.True(t, in.Observe(600))
	assert.Equal(t, []string{"User scrolled to Y:1200", "User scrolled to Y:600"}, rec.lines)
}

func TestObserve_HighFrequencyBelowThreshold(t *testing.T) {
	rec := &recorder{}
	in := New(rec, 500)
	for y := 0; y <= 500; y += 3 {
		in.Observe(y)
	}
	assert.Empty(t, rec.lines)
}

func TestSetThreshold(t *testing.T) {
	in := New(&recorder{}, 0)
	assert.Equal(t, DefaultThreshold, in.Threshold())
	in.SetThreshold(-1)
	assert.Equal(t, DefaultThreshold, in.Threshold())
	in.SetThreshold(100)
	assert.Equal(t, 100, in.Threshold())
}

func TestFeed_SubscribeUnsubscribe(t *testing.T) {
	f := NewFeed()
	var got []int
	unsub := f.Subscribe(func(p int) { got = append(got, p) })
	assert.Equal(t, 1, f.Subscribers())

	f.Publish(10)
	f.Publish(20)
	unsub()
	unsub()
	f.Publish(30)

	assert.Equal(t, []int{10, 20}, got)
	assert.Zero(t, f.Subscribers())
}

func TestFeed_DrivesInstrument(t *testing.T) {
	rec := &recorder{}
	in := New(rec, DefaultThreshold)
	f := NewFeed()
	unsub := f.Subscribe(func(p int) { in.Observe(p) })
	defer unsub()

	for _, y := range []int{0, 400, 801} {
		f.Publish(y)
	}
	assert.Equal(t, []string{"User scrolled to Y:801"}, rec.lines)
}
