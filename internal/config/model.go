package config

import (
	"fmt"

	"github.com/vk/xodrun/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// Program is the unified representation of a loaded program. Nodes keep their
// declaration order, which is also the evaluation order.
type Program struct {
	Constants []*Constant
	Nodes     []*Node
}

// Constant is a named, typed value that node inputs can refer to.
type Constant struct {
	Name  string
	Type  node.PinType
	Value cty.Value
	// Source locates the declaration for error messages.
	Source string
}

// Node is one instance of a patch.
type Node struct {
	Patch string
	Name  string
	// ID is the explicit node id, or nil to use the declaration index.
	ID     *node.ID
	Inputs map[string]Input
	Source string
}

// InputKind tells what an input is bound to.
type InputKind int

const (
	// LinkInput reads another node's output.
	LinkInput InputKind = iota + 1
	// ConstantInput reads a named constant.
	ConstantInput
	// LiteralInput reads a value written in place.
	LiteralInput
)

// Input is the binding of one node input pin.
type Input struct {
	Kind InputKind
	// Node and Pin name the linked output for LinkInput.
	Node string
	Pin  string
	// Constant names the constant for ConstantInput.
	Constant string
	// Value is the literal for LiteralInput.
	Value  cty.Value
	Source string
}

func (in Input) String() string {
	switch in.Kind {
	case LinkInput:
		return fmt.Sprintf("node.%s.%s", in.Node, in.Pin)
	case ConstantInput:
		return "constant." + in.Constant
	case LiteralInput:
		return in.Value.GoString()
	}
	return "unbound"
}

// Link returns a link input.
func Link(nodeName, pin string) Input {
	return Input{Kind: LinkInput, Node: nodeName, Pin: pin}
}

// Ref returns a constant reference input.
func Ref(constant string) Input {
	return Input{Kind: ConstantInput, Constant: constant}
}

// Literal returns a literal input.
func Literal(v cty.Value) Input {
	return Input{Kind: LiteralInput, Value: v}
}
