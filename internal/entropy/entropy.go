// Package entropy implements the bounded decay counter and the perturbation
// parameters derived from it.
//
// Entropy only rises, one step per tick, until it saturates at the ceiling.
// Reset is the single way back down. Perturbation is recomputed after every
// change and is noise scaled by the current level, so identical levels do not
// produce identical perturbations unless the random Source is deterministic.
package entropy

import (
	"fmt"
	"math/rand"
	"time"
)

// Message templates appended to the log sink.
const (
	ResetMessage = "System entropy reset. Codebase refactored."
	criticalFmt  = "Entropy Critical: %d%% visual degradation imminent."
)

// CriticalMessage renders the threshold-crossing log line for level.
func CriticalMessage(level int) string {
	return fmt.Sprintf(criticalFmt, level)
}

// Source supplies uniform draws from [0,1).
type Source interface {
	Float64() float64
}

// NewRandomSource returns a time-seeded Source.
func NewRandomSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededSource returns a reproducible Source.
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Sink receives operator-visible log lines.
type Sink interface {
	Append(message string)
}

// Params bounds the counter and shapes the perturbation.
type Params struct {
	Max          int     // ceiling, inclusive, at most Ceiling
	CriticalStep int     // announce every multiple of this, itself a multiple of 10
	BlurStart    int     // blur is zero at or below this level
	BlurDivisor  float64 // blur = (level - BlurStart) / BlurDivisor
}

// Ceiling is the highest level any Params may allow.
const Ceiling = 100

// DefaultParams returns the standard 0..100 scale.
func DefaultParams() Params {
	return Params{
		Max:          Ceiling,
		CriticalStep: 10,
		BlurStart:    50,
		BlurDivisor:  35,
	}
}

func (p Params) normalized() Params {
	d := DefaultParams()
	if p.Max <= 0 {
		p.Max = d.Max
	}
	if p.Max > Ceiling {
		p.Max = Ceiling
	}
	if p.CriticalStep <= 0 || p.CriticalStep%10 != 0 {
		p.CriticalStep = d.CriticalStep
	}
	if p.BlurDivisor <= 0 {
		p.BlurDivisor = d.BlurDivisor
	}
	if p.BlurStart < 0 {
		p.BlurStart = 0
	}
	return p
}

// Perturbation holds the derived visual distortion values.
type Perturbation struct {
	RotationDeg float64
	OffsetX     float64
	OffsetY     float64
	BlurPx      float64
}

// IsZero reports whether every field is zero.
func (p Perturbation) IsZero() bool {
	return p == Perturbation{}
}

// Blur is the deterministic part of the perturbation.
func Blur(level int, p Params) float64 {
	p = p.normalized()
	if level <= p.BlurStart {
		return 0
	}
	return float64(level-p.BlurStart) / p.BlurDivisor
}

// Compute derives a perturbation for level, drawing rotation then X then Y from src.
func Compute(level int, src Source, p Params) Perturbation {
	l := float64(level)
	return Perturbation{
		RotationDeg: (src.Float64() - 0.5) * (l / 20),
		OffsetX:     (src.Float64() - 0.5) * (l / 2),
		OffsetY:     (src.Float64() - 0.5) * (l / 2),
		BlurPx:      Blur(level, p),
	}
}

// Engine owns the counter. Not safe for concurrent use; callers serialize.
type Engine struct {
	level        int
	lastCritical int
	perturbation Perturbation
	src          Source
	sink         Sink
	params       Params
}

// NewEngine creates an engine at level zero. A nil src uses NewRandomSource.
func NewEngine(sink Sink, src Source, params Params) *Engine {
	if src == nil {
		src = NewRandomSource()
	}
	return &Engine{
		src:    src,
		sink:   sink,
		params: params.normalized(),
	}
}

// Level returns the current entropy.
func (e *Engine) Level() int { return e.level }

// Perturbation returns the most recently computed perturbation.
func (e *Engine) Perturbation() Perturbation { return e.perturbation }

// Params returns the effective parameters.
func (e *Engine) Params() Params { return e.params }

// Tick advances entropy by one. It reports false, changing nothing, once saturated.
func (e *Engine) Tick() bool {
	if e.level >= e.params.Max {
		return false
	}
	e.level++
	e.perturbation = Compute(e.level, e.src, e.params)

	if e.level%e.params.CriticalStep == 0 && e.level != e.lastCritical {
		e.lastCritical = e.level
		e.sink.Append(CriticalMessage(e.level))
	}
	return true
}

// Advance applies up to n ticks and returns how many changed the level.
func (e *Engine) Advance(n int) int {
	applied := 0
	for i := 0; i < n; i++ {
		if !e.Tick() {
			break
		}
		applied++
	}
	return applied
}

// Reset returns entropy to zero and always logs, even when already zero.
func (e *Engine) Reset() {
	e.level = 0
	e.lastCritical = 0
	e.perturbation = Perturbation{}
	e.sink.Append(ResetMessage)
}
