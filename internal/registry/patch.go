package registry

import (
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/tweak"
)

// Patch is the compiled definition of a node type.
type Patch struct {
	Path    string
	Inputs  []node.PinSpec
	Outputs []node.PinSpec

	// NewState returns a fresh state for every node instance. It may be nil
	// for stateless patches.
	NewState func() any
	Evaluate engine.EvalFunc

	UsesTimeouts bool
	// Defer marks a node that may feed nodes before it in evaluation order.
	// Defer nodes must also use timeouts.
	Defer bool
	// Tweak is set on tweak nodes. Their only output is the tweak target.
	Tweak tweak.Spec
}

// InputIndex returns the position of input pin key.
func (p *Patch) InputIndex(key string) (int, bool) {
	return pinIndex(p.Inputs, key)
}

// OutputIndex returns the position of output pin key.
func (p *Patch) OutputIndex(key string) (int, bool) {
	return pinIndex(p.Outputs, key)
}

func pinIndex(pins []node.PinSpec, key string) (int, bool) {
	for i, pin := range pins {
		if pin.Key == key {
			return i, true
		}
	}
	return -1, false
}

// Instantiate returns the engine node spec for one instance of p.
func (p *Patch) Instantiate(id node.ID) engine.NodeSpec {
	var state any
	if p.NewState != nil {
		state = p.NewState()
	}
	return engine.NodeSpec{
		ID:           id,
		Patch:        p.Path,
		Evaluate:     p.Evaluate,
		State:        state,
		Inputs:       p.Inputs,
		Outputs:      p.Outputs,
		UsesTimeouts: p.UsesTimeouts,
		Defer:        p.Defer,
	}
}
