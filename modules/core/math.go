package core

import (
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/registry"
)

func binaryNumber(path string, op func(x, y float64) float64) *registry.Patch {
	return &registry.Patch{
		Path:    path,
		Inputs:  []node.PinSpec{node.In("X", node.Number), node.In("Y", node.Number)},
		Outputs: []node.PinSpec{node.Out("OUT", node.Number)},
		Evaluate: func(c *engine.Context) error {
			c.Emit(0, numVal(op(num(c.Value(0)), num(c.Value(1)))))
			return nil
		},
	}
}

func registerMath(r *registry.Registry) {
	r.RegisterPatch(binaryNumber("xod/core/add", func(x, y float64) float64 { return x + y }))
	r.RegisterPatch(binaryNumber("xod/core/subtract", func(x, y float64) float64 { return x - y }))
	r.RegisterPatch(binaryNumber("xod/core/multiply", func(x, y float64) float64 { return x * y }))
}
