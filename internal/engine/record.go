package engine

import (
	"github.com/vk/xodrun/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// EvalFunc is a node's evaluation logic. It is bound to the record when the
// program is built; the scheduler calls it with the record's context.
type EvalFunc func(ctx *Context) error

// Record is the mutable storage of one non-constant node.
type Record struct {
	ID    node.ID
	Patch string

	// State belongs to the node's evaluation logic; the scheduler never reads it.
	State any
	// Outputs holds the last emitted value of every output pin.
	Outputs []cty.Value
	Dirty   node.DirtyFlags
	// TimeoutAt is the wake-up deadline, or node.NoTimeout.
	TimeoutAt node.TimeMs

	UsesTimeouts bool
	Defer        bool

	// Err is the error returned by the most recent evaluation.
	Err error

	eval          EvalFunc
	inputDefaults []cty.Value
}

// TimedOut reports whether the record's deadline has been reached at time t.
func (r *Record) TimedOut(t node.TimeMs) bool {
	return r.TimeoutAt != node.NoTimeout && t >= r.TimeoutAt
}

// NodeSpec describes one node handed to NewProgram.
type NodeSpec struct {
	ID       node.ID
	Patch    string
	Evaluate EvalFunc
	State    any
	Inputs   []node.PinSpec
	Outputs  []node.PinSpec

	UsesTimeouts bool
	Defer        bool
}
