package testutil

import (
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/registry"
)

// SimpleModule is a test helper that registers the patches it is given.
type SimpleModule struct {
	Patches []*registry.Patch
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	for _, p := range m.Patches {
		r.RegisterPatch(p)
	}
}

// Recorder is a patch evaluation that remembers what its first input looked
// like on every evaluation.
type Recorder struct {
	Dirty []bool
	Times []uint64
}

// Evaluate implements engine.EvalFunc.
func (r *Recorder) Evaluate(c *engine.Context) error {
	r.Dirty = append(r.Dirty, c.IsInputDirty(0))
	r.Times = append(r.Times, uint64(c.TransactionTime()))
	return nil
}
