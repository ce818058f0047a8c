package debug

import (
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/registry"
	"github.com/vk/xodrun/internal/tweak"
)

// evalTweak does nothing: the injector writes the output slot directly and
// marks it dirty, and this evaluation only lets the value propagate.
func evalTweak(*engine.Context) error {
	return nil
}

func tweakPatch(path string, spec tweak.Spec) *registry.Patch {
	out := node.Out("OUT", spec.Type.PinType())
	if spec.Type == tweak.Pulse {
		out = out.Selective()
	}
	return &registry.Patch{
		Path:     path,
		Outputs:  []node.PinSpec{out},
		Evaluate: evalTweak,
		Tweak:    spec,
	}
}

func registerTweaks(r *registry.Registry) {
	r.RegisterPatch(tweakPatch("xod/debug/tweak-number", tweak.Spec{Type: tweak.Number}))
	r.RegisterPatch(tweakPatch("xod/debug/tweak-byte", tweak.Spec{Type: tweak.Byte}))
	r.RegisterPatch(tweakPatch("xod/debug/tweak-pulse", tweak.Spec{Type: tweak.Pulse}))
	r.RegisterPatch(tweakPatch("xod/debug/tweak-boolean", tweak.Spec{Type: tweak.Boolean}))
	r.RegisterPatch(tweakPatch("xod/debug/tweak-string-16", tweak.Spec{Type: tweak.String, StringLength: 16}))
	r.RegisterPatch(tweakPatch("xod/debug/tweak-string-64", tweak.Spec{Type: tweak.String, StringLength: 64}))
}
