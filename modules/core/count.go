package core

import (
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/registry"
)

const (
	countINC = iota
	countSTEP
	countRST
)

func registerCount(r *registry.Registry) {
	r.RegisterPatch(&registry.Patch{
		Path: "xod/core/count",
		Inputs: []node.PinSpec{
			node.In("INC", node.Pulse),
			node.In("STEP", node.Number).WithDefault(numVal(1)),
			node.In("RST", node.Pulse),
		},
		Outputs: []node.PinSpec{node.Out("OUT", node.Number)},
		Evaluate: func(c *engine.Context) error {
			switch {
			case c.IsInputDirty(countRST):
				c.Emit(0, numVal(0))
			case c.IsInputDirty(countINC):
				c.Emit(0, numVal(num(c.Output(0))+num(c.Value(countSTEP))))
			}
			return nil
		},
	})
}
