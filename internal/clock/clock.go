// Package clock provides the millisecond time sources the scheduler samples
// once at the start of every transaction.
package clock

import (
	"sync/atomic"
	"time"

	"github.com/vk/xodrun/internal/node"
)

// Source is a monotonic millisecond clock.
type Source interface {
	NowMs() node.TimeMs
}

// System counts milliseconds since it was created, using the monotonic
// reading of time.Now. Like millis() on a board it starts near zero.
type System struct {
	start time.Time
}

// NewSystem returns a clock starting at zero now.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// NowMs implements Source.
func (s *System) NowMs() node.TimeMs {
	return node.TimeMs(time.Since(s.start).Milliseconds())
}

// Manual is a clock advanced explicitly, for tests and simulations.
type Manual struct {
	now atomic.Uint64
}

// NewManual returns a manual clock set to t.
func NewManual(t node.TimeMs) *Manual {
	m := &Manual{}
	m.now.Store(uint64(t))
	return m
}

// NowMs implements Source.
func (m *Manual) NowMs() node.TimeMs {
	return node.TimeMs(m.now.Load())
}

// Set moves the clock to t.
func (m *Manual) Set(t node.TimeMs) {
	m.now.Store(uint64(t))
}

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d time.Duration) node.TimeMs {
	return node.TimeMs(m.now.Add(uint64(d.Milliseconds())))
}
