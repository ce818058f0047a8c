package core

import (
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

const (
	delayT = iota
	delaySET
	delayRST
)

const (
	delayDONE = iota
	delayACT
)

// evalDelay fires DONE once T seconds after SET. A new SET restarts the
// countdown, RST cancels it. ACT is true while the countdown runs.
func evalDelay(c *engine.Context) error {
	switch {
	case c.IsInputDirty(delayRST):
		c.ClearTimeout()
		setActive(c, false)
	case c.IsInputDirty(delaySET):
		c.SetTimeout(seconds(c.Value(delayT)))
		setActive(c, true)
	case c.IsTimedOut():
		c.Emit(delayDONE, cty.True)
		setActive(c, false)
	}
	return nil
}

func setActive(c *engine.Context, active bool) {
	if truthy(c.Output(delayACT)) != active {
		c.Emit(delayACT, cty.BoolVal(active))
	}
}

func registerDelay(r *registry.Registry) {
	r.RegisterPatch(&registry.Patch{
		Path: "xod/core/delay",
		Inputs: []node.PinSpec{
			node.In("T", node.Number).WithDefault(numVal(1)),
			node.In("SET", node.Pulse),
			node.In("RST", node.Pulse),
		},
		Outputs: []node.PinSpec{
			node.Out("DONE", node.Pulse).Selective(),
			node.Out("ACT", node.Boolean),
		},
		Evaluate:     evalDelay,
		UsesTimeouts: true,
	})
}
