package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vk/xodrun/internal/graph"
	"github.com/vk/xodrun/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// Context is what a node's EvalFunc sees while it evaluates: its inputs, its
// own outputs, state and timeout, and the current transaction. The runtime
// reuses one Context for every evaluation, so a node must not keep it past
// the call.
type Context struct {
	rt          *Runtime
	idx         int
	rec         *Record
	ins         []graph.Binding
	outs        []graph.Fanout
	inputsClean bool
	logger      *slog.Logger
}

func (c *Context) bind(rt *Runtime, idx int, inputsClean bool, logger *slog.Logger) {
	c.rt = rt
	c.idx = idx
	c.rec = &rt.prog.records[idx]
	c.ins = rt.prog.table.Inputs(idx)
	c.outs = rt.prog.table.Outputs(idx)
	c.inputsClean = inputsClean
	c.logger = logger
}

func (c *Context) unbind() {
	*c = Context{}
}

// NodeID returns the id of the evaluating node.
func (c *Context) NodeID() node.ID {
	return c.rec.ID
}

// TransactionTime returns the time sampled at the start of the transaction.
func (c *Context) TransactionTime() node.TimeMs {
	return c.rt.txTime
}

// IsSettingUp reports whether this is the first transaction since start.
func (c *Context) IsSettingUp() bool {
	return c.rt.settingUp
}

// Logger returns the transaction's logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Value returns the current value of input pin.
func (c *Context) Value(pin int) cty.Value {
	b := c.ins[pin]
	switch b.Kind {
	case graph.FromOutput:
		return c.rt.prog.records[b.From.Node].Outputs[b.From.Pin]
	case graph.FromConstant:
		return c.rt.prog.constants[b.Constant]
	}
	return c.rec.inputDefaults[pin]
}

// IsInputDirty reports whether input pin carries a fresh value in this
// transaction. Inputs are never dirty during the defer pre-pass.
func (c *Context) IsInputDirty(pin int) bool {
	if c.inputsClean {
		return false
	}
	b := c.ins[pin]
	switch b.Kind {
	case graph.FromConstant:
		return c.rt.settingUp
	case graph.FromOutput:
		if !b.Dirtyable {
			return true
		}
		return c.rt.prog.records[b.From.Node].Dirty&b.Bit != 0
	}
	return false
}

// Output returns the last value emitted on output pin out.
func (c *Context) Output(out int) cty.Value {
	return c.rec.Outputs[out]
}

// Emit stores v in output pin out and marks the pin dirty when it is dirtyable.
func (c *Context) Emit(out int, v cty.Value) {
	c.rec.Outputs[out] = v
	if fan := c.outs[out]; fan.Dirtyable {
		c.rec.Dirty |= fan.Bit
	}
}

// IsOutputDirty reports whether output pin out was marked dirty in this
// transaction.
func (c *Context) IsOutputDirty(out int) bool {
	fan := c.outs[out]
	return fan.Dirtyable && c.rec.Dirty&fan.Bit != 0
}

// State returns the node's state as handed to NewProgram.
func (c *Context) State() any {
	return c.rec.State
}

// StateOf returns the node's state as *S. It panics if the state has another
// type, which the runtime reports as a node-scoped error.
func StateOf[S any](c *Context) *S {
	return c.rec.State.(*S)
}

// SetTimeout asks for the node to be evaluated again once d has elapsed from
// the current transaction time. Delays below one millisecond are rounded up,
// so the deadline always lies after the current transaction.
func (c *Context) SetTimeout(d time.Duration) {
	c.mustUseTimeouts("SetTimeout")
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	c.rec.TimeoutAt = c.rt.txTime + node.TimeMs(ms)
}

// SetImmediate asks for the node to be evaluated on the next transaction
// that starts at least one millisecond later.
func (c *Context) SetImmediate() {
	c.SetTimeout(0)
}

// ClearTimeout drops a pending timeout.
func (c *Context) ClearTimeout() {
	c.mustUseTimeouts("ClearTimeout")
	c.rec.TimeoutAt = node.NoTimeout
}

// IsTimedOut reports whether the node's deadline has been reached, that is
// whether a timeout is what woke it up.
func (c *Context) IsTimedOut() bool {
	return c.rec.TimedOut(c.rt.txTime)
}

func (c *Context) mustUseTimeouts(op string) {
	if !c.rec.UsesTimeouts {
		panic(fmt.Sprintf("engine: %s called by node %s (%s) which does not use timeouts", op, c.rec.ID, c.rec.Patch))
	}
}
