package core

import (
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/registry"
)

// evalDefer postpones its input by one transaction. A fresh input arms an
// immediate timeout; when it fires the node runs in the defer pre-pass, where
// inputs read clean, and re-emits the input value.
func evalDefer(c *engine.Context) error {
	if c.IsInputDirty(0) {
		c.SetImmediate()
		return nil
	}
	if c.IsTimedOut() {
		c.Emit(0, c.Value(0))
	}
	return nil
}

func deferPatch(path string, t node.PinType) *registry.Patch {
	out := node.Out("OUT", t)
	if t == node.Pulse {
		out = out.Selective()
	} else {
		out.DirtyOnBoot = false
	}
	return &registry.Patch{
		Path:         path,
		Inputs:       []node.PinSpec{node.In("IN", t)},
		Outputs:      []node.PinSpec{out},
		Evaluate:     evalDefer,
		UsesTimeouts: true,
		Defer:        true,
	}
}

func registerDefer(r *registry.Registry) {
	r.RegisterPatch(deferPatch("xod/core/defer-number", node.Number))
	r.RegisterPatch(deferPatch("xod/core/defer-boolean", node.Boolean))
	r.RegisterPatch(deferPatch("xod/core/defer-pulse", node.Pulse))
}
