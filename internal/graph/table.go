package graph

import (
	"errors"
	"fmt"

	"github.com/vk/xodrun/internal/node"
)

var (
	// ErrFrozen is returned when a frozen table is modified.
	ErrFrozen = errors.New("edge table is frozen")
	// ErrNoSuchPin is returned for pin references outside the table's shape.
	ErrNoSuchPin = errors.New("no such pin")
	// ErrInputBound is returned when an input pin is bound a second time.
	ErrInputBound = errors.New("input pin already bound")
	// ErrTooManyOutputs is returned when a node declares more dirtyable
	// outputs than DirtyFlags can address.
	ErrTooManyOutputs = errors.New("too many dirtyable outputs")
)

// PinRef addresses one pin of one node. Node is the node's position in the
// program's evaluation order.
type PinRef struct {
	Node int
	Pin  int
}

func (r PinRef) String() string {
	return fmt.Sprintf("%d:%d", r.Node, r.Pin)
}

// SourceKind tells where an input pin reads its value from.
type SourceKind uint8

const (
	// Unlinked inputs read their pin default and are never dirty.
	Unlinked SourceKind = iota
	// FromConstant inputs read a compile-time literal.
	FromConstant
	// FromOutput inputs read another node's output slot.
	FromOutput
)

// Binding is the source of one input pin.
type Binding struct {
	Kind     SourceKind
	Constant int
	From     PinRef
	// Dirtyable mirrors the Dirtyable flag of the source output; Bit is the
	// source's dirty bit when it is dirtyable.
	Dirtyable bool
	Bit       node.DirtyFlags
}

// Fanout is the downstream side of one output pin.
type Fanout struct {
	Dirtyable bool
	Bit       node.DirtyFlags
	To        []PinRef
}

// Shape describes the pins of one node as the table needs them.
type Shape struct {
	Inputs int
	// Dirtyable has one entry per output pin.
	Dirtyable []bool
}

// Table is the edge table of a program.
type Table struct {
	outs   [][]Fanout
	ins    [][]Binding
	frozen bool
}

// NewTable allocates a table for nodes of the given shapes, assigning dirty
// bits to dirtyable outputs in declaration order.
func NewTable(shapes []Shape) (*Table, error) {
	t := &Table{
		outs: make([][]Fanout, len(shapes)),
		ins:  make([][]Binding, len(shapes)),
	}
	for n, s := range shapes {
		t.ins[n] = make([]Binding, s.Inputs)
		t.outs[n] = make([]Fanout, len(s.Dirtyable))
		k := 0
		for p, dirtyable := range s.Dirtyable {
			if !dirtyable {
				continue
			}
			if k >= node.MaxDirtyableOutputs {
				return nil, fmt.Errorf("node %d: %w (max %d)", n, ErrTooManyOutputs, node.MaxDirtyableOutputs)
			}
			t.outs[n][p] = Fanout{Dirtyable: true, Bit: node.OutputBit(k)}
			k++
		}
	}
	return t, nil
}

// Link connects an output pin to an input pin.
func (t *Table) Link(from, to PinRef) error {
	if t.frozen {
		return ErrFrozen
	}
	if !t.hasOutput(from) {
		return fmt.Errorf("output %s: %w", from, ErrNoSuchPin)
	}
	if !t.hasInput(to) {
		return fmt.Errorf("input %s: %w", to, ErrNoSuchPin)
	}
	b := &t.ins[to.Node][to.Pin]
	if b.Kind != Unlinked {
		return fmt.Errorf("input %s: %w", to, ErrInputBound)
	}
	fan := &t.outs[from.Node][from.Pin]
	fan.To = append(fan.To, to)
	*b = Binding{Kind: FromOutput, From: from, Dirtyable: fan.Dirtyable, Bit: fan.Bit}
	return nil
}

// BindConstant binds an input pin to constant number c.
func (t *Table) BindConstant(to PinRef, c int) error {
	if t.frozen {
		return ErrFrozen
	}
	if !t.hasInput(to) {
		return fmt.Errorf("input %s: %w", to, ErrNoSuchPin)
	}
	b := &t.ins[to.Node][to.Pin]
	if b.Kind != Unlinked {
		return fmt.Errorf("input %s: %w", to, ErrInputBound)
	}
	*b = Binding{Kind: FromConstant, Constant: c}
	return nil
}

// Freeze makes the table read-only.
func (t *Table) Freeze() {
	t.frozen = true
}

// Frozen reports whether Freeze was called.
func (t *Table) Frozen() bool {
	return t.frozen
}

// Len returns the number of nodes the table was shaped for.
func (t *Table) Len() int {
	return len(t.outs)
}

// Outputs returns the fan-out of every output pin of node n.
func (t *Table) Outputs(n int) []Fanout {
	return t.outs[n]
}

// Inputs returns the binding of every input pin of node n.
func (t *Table) Inputs(n int) []Binding {
	return t.ins[n]
}

// Downstream returns the input pins fed by an output pin.
func (t *Table) Downstream(from PinRef) []PinRef {
	if !t.hasOutput(from) {
		return nil
	}
	return t.outs[from.Node][from.Pin].To
}

func (t *Table) hasOutput(r PinRef) bool {
	return r.Node >= 0 && r.Node < len(t.outs) && r.Pin >= 0 && r.Pin < len(t.outs[r.Node])
}

func (t *Table) hasInput(r PinRef) bool {
	return r.Node >= 0 && r.Node < len(t.ins) && r.Pin >= 0 && r.Pin < len(t.ins[r.Node])
}
