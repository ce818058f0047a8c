package core

import (
	"time"

	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

const (
	clockEN = iota
	clockIVAL
	clockRST
)

type clockState struct {
	nextTick node.TimeMs
}

// evalClock emits TICK every IVAL seconds while EN is true. Ticks are
// scheduled against the previous deadline rather than the current time, so a
// late transaction does not shift the phase. RST, or a change of IVAL or EN,
// restarts the period.
func evalClock(c *engine.Context) error {
	st := engine.StateOf[clockState](c)
	t := c.TransactionTime()

	if !truthy(c.Value(clockEN)) {
		c.ClearTimeout()
		return nil
	}
	interval := seconds(c.Value(clockIVAL))
	if interval <= 0 {
		c.ClearTimeout()
		return nil
	}
	ms := node.TimeMs(interval.Milliseconds())
	if ms == 0 {
		ms = 1
	}

	restart := c.IsInputDirty(clockRST) || c.IsInputDirty(clockIVAL) || c.IsInputDirty(clockEN)
	switch {
	case restart:
		st.nextTick = t + ms
	case c.IsTimedOut():
		c.Emit(0, cty.True)
		st.nextTick += ms
		if st.nextTick <= t {
			st.nextTick = t + ms
		}
	default:
		return nil
	}
	c.SetTimeout(time.Duration(st.nextTick-t) * time.Millisecond)
	return nil
}

func registerClock(r *registry.Registry) {
	r.RegisterPatch(&registry.Patch{
		Path: "xod/core/clock",
		Inputs: []node.PinSpec{
			node.In("EN", node.Boolean).WithDefault(cty.True),
			node.In("IVAL", node.Number).WithDefault(numVal(1)),
			node.In("RST", node.Pulse),
		},
		Outputs:      []node.PinSpec{node.Out("TICK", node.Pulse).Selective()},
		NewState:     func() any { return &clockState{} },
		Evaluate:     evalClock,
		UsesTimeouts: true,
	})
}
