// Package core registers the core patch library: arithmetic and logic,
// flip-flop and counter state holders, clock and delay timers, and the defer
// nodes that let a value travel backwards in evaluation order.
package core

import "github.com/vk/xodrun/internal/registry"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every core patch.
func (m *Module) Register(r *registry.Registry) {
	registerMath(r)
	registerLogic(r)
	registerCount(r)
	registerClock(r)
	registerDelay(r)
	registerDefer(r)
}
