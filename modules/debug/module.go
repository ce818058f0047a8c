// Package debug registers the patches that talk to the debug channel: tweak
// nodes, whose output an external tool overwrites through '+XOD:' commands,
// and watch nodes, which report values back in the same line format.
package debug

import (
	"io"

	"github.com/vk/xodrun/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives watch lines. Watch nodes are silent when it is nil.
	Out io.Writer
}

// Register registers the tweak and watch patches.
func (m *Module) Register(r *registry.Registry) {
	registerTweaks(r)
	r.RegisterPatch(m.watchPatch())
}
