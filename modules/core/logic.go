package core

import (
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

const (
	ffSET = iota
	ffTGL
	ffRST
)

func registerLogic(r *registry.Registry) {
	r.RegisterPatch(&registry.Patch{
		Path:    "xod/core/not",
		Inputs:  []node.PinSpec{node.In("IN", node.Boolean)},
		Outputs: []node.PinSpec{node.Out("OUT", node.Boolean)},
		Evaluate: func(c *engine.Context) error {
			c.Emit(0, cty.BoolVal(!truthy(c.Value(0))))
			return nil
		},
	})

	// Reset wins over set, set wins over toggle. The output only changes on
	// an actual state change, except on the first transaction.
	r.RegisterPatch(&registry.Patch{
		Path: "xod/core/flip-flop",
		Inputs: []node.PinSpec{
			node.In("SET", node.Pulse),
			node.In("TGL", node.Pulse),
			node.In("RST", node.Pulse),
		},
		Outputs: []node.PinSpec{node.Out("MEM", node.Boolean)},
		Evaluate: func(c *engine.Context) error {
			old := truthy(c.Output(0))
			state := old
			switch {
			case c.IsInputDirty(ffRST):
				state = false
			case c.IsInputDirty(ffSET):
				state = true
			case c.IsInputDirty(ffTGL):
				state = !old
			}
			if state == old && !c.IsSettingUp() {
				return nil
			}
			c.Emit(0, cty.BoolVal(state))
			return nil
		},
	})
}
