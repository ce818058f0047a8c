package engine

import (
	"errors"
	"fmt"

	"github.com/vk/xodrun/internal/graph"
	"github.com/vk/xodrun/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// LinkSpec connects output From to input To. Node numbers are positions in
// ProgramSpec.Nodes.
type LinkSpec struct {
	From graph.PinRef
	To   graph.PinRef
}

// ConstantSpec binds input To to ProgramSpec.Constants[Constant].
type ConstantSpec struct {
	To       graph.PinRef
	Constant int
}

// ProgramSpec is the compiled form of a program: nodes in evaluation order,
// constants and the wiring between them.
type ProgramSpec struct {
	Nodes     []NodeSpec
	Constants []cty.Value
	Links     []LinkSpec
	Bindings  []ConstantSpec
}

// Program is a built program: node records plus a frozen edge table.
type Program struct {
	records   []Record
	constants []cty.Value
	table     *graph.Table
	byID      map[node.ID]int

	deferred []int
	timed    []int
}

// NewProgram validates spec and allocates every record in its boot state: node
// bit set, dirty-on-boot output bits set, outputs at their defaults.
func NewProgram(spec ProgramSpec) (*Program, error) {
	shapes := make([]graph.Shape, len(spec.Nodes))
	for i, n := range spec.Nodes {
		dirtyable := make([]bool, len(n.Outputs))
		for k, out := range n.Outputs {
			dirtyable[k] = out.Dirtyable
		}
		shapes[i] = graph.Shape{Inputs: len(n.Inputs), Dirtyable: dirtyable}
	}
	table, err := graph.NewTable(shapes)
	if err != nil {
		return nil, err
	}

	p := &Program{
		records:   make([]Record, len(spec.Nodes)),
		constants: spec.Constants,
		table:     table,
		byID:      make(map[node.ID]int, len(spec.Nodes)),
	}

	var errs []error
	for i, n := range spec.Nodes {
		if prev, dup := p.byID[n.ID]; dup {
			errs = append(errs, fmt.Errorf("node %s at positions %d and %d: %w", n.ID, prev, i, ErrDuplicateID))
		}
		p.byID[n.ID] = i
		if n.Evaluate == nil {
			errs = append(errs, fmt.Errorf("node %s (%s): %w", n.ID, n.Patch, ErrNoEvaluate))
		}
	}
	for _, l := range spec.Links {
		if err := p.checkOrder(spec.Nodes, l); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := table.Link(l.From, l.To); err != nil {
			errs = append(errs, err)
		}
	}
	for _, b := range spec.Bindings {
		if b.Constant < 0 || b.Constant >= len(spec.Constants) {
			errs = append(errs, fmt.Errorf("input %s: constant %d: %w", b.To, b.Constant, ErrUnknownConstant))
			continue
		}
		if err := table.BindConstant(b.To, b.Constant); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	table.Freeze()

	for i, n := range spec.Nodes {
		rec := &p.records[i]
		*rec = Record{
			ID:            n.ID,
			Patch:         n.Patch,
			State:         n.State,
			Outputs:       make([]cty.Value, len(n.Outputs)),
			Dirty:         node.NodeDirty,
			UsesTimeouts:  n.UsesTimeouts,
			Defer:         n.Defer,
			eval:          n.Evaluate,
			inputDefaults: make([]cty.Value, len(n.Inputs)),
		}
		fans := table.Outputs(i)
		for k, out := range n.Outputs {
			rec.Outputs[k] = out.Default
			if fans[k].Dirtyable && out.DirtyOnBoot {
				rec.Dirty |= fans[k].Bit
			}
		}
		for k, in := range n.Inputs {
			rec.inputDefaults[k] = in.Default
		}
		if n.Defer {
			p.deferred = append(p.deferred, i)
		}
		if n.UsesTimeouts {
			p.timed = append(p.timed, i)
		}
	}
	return p, nil
}

func (p *Program) checkOrder(nodes []NodeSpec, l LinkSpec) error {
	if l.From.Node < 0 || l.From.Node >= len(nodes) || l.To.Node < 0 || l.To.Node >= len(nodes) {
		return fmt.Errorf("link %s -> %s: %w", l.From, l.To, graph.ErrNoSuchPin)
	}
	if nodes[l.From.Node].Defer || l.From.Node < l.To.Node {
		return nil
	}
	return fmt.Errorf("link %s (%s) -> %s (%s): %w",
		nodes[l.From.Node].ID, nodes[l.From.Node].Patch,
		nodes[l.To.Node].ID, nodes[l.To.Node].Patch, ErrBackwardLink)
}

// Len returns the number of records.
func (p *Program) Len() int {
	return len(p.records)
}

// Record returns the record at evaluation position i.
func (p *Program) Record(i int) *Record {
	return &p.records[i]
}

// Lookup returns the record of node id.
func (p *Program) Lookup(id node.ID) (*Record, bool) {
	i, ok := p.byID[id]
	if !ok {
		return nil, false
	}
	return &p.records[i], true
}

// Index returns the evaluation position of node id.
func (p *Program) Index(id node.ID) (int, bool) {
	i, ok := p.byID[id]
	return i, ok
}

// Output returns the current value of output pin out of node id.
func (p *Program) Output(id node.ID, out int) (cty.Value, bool) {
	rec, ok := p.Lookup(id)
	if !ok || out < 0 || out >= len(rec.Outputs) {
		return cty.NilVal, false
	}
	return rec.Outputs[out], true
}

// Constants returns the constant list. Callers must not modify it.
func (p *Program) Constants() []cty.Value {
	return p.constants
}

// Table returns the program's frozen edge table.
func (p *Program) Table() *graph.Table {
	return p.table
}

// Tweak overwrites output out of node id and marks that output and the node
// dirty, so the value flows through the next propagation like an emitted one.
func (p *Program) Tweak(id node.ID, out int, v cty.Value) error {
	i, ok := p.byID[id]
	if !ok {
		return fmt.Errorf("node %s: %w", id, ErrUnknownNode)
	}
	rec := &p.records[i]
	if out < 0 || out >= len(rec.Outputs) {
		return fmt.Errorf("node %s output %d: %w", id, out, ErrNoSuchOutput)
	}
	rec.Outputs[out] = v
	if fan := p.table.Outputs(i)[out]; fan.Dirtyable {
		rec.Dirty |= fan.Bit
	}
	rec.Dirty |= node.NodeDirty
	return nil
}
