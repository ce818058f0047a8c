// Package schema holds the gohcl decoding targets for program files.
package schema

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Inputs represents the 'inputs' block of a node. Its attributes are pin
// bindings and are interpreted by the loader, not by gohcl.
type Inputs struct {
	Body hcl.Body `hcl:",remain"`
}

// Node represents a `node` block: one instance of a patch.
type Node struct {
	Patch  string  `hcl:"patch,label"`
	Name   string  `hcl:"name,label"`
	ID     *int64  `hcl:"id,optional"`
	Inputs *Inputs `hcl:"inputs,block"`
}

// Constant represents a `constant` block.
type Constant struct {
	Name  string    `hcl:"name,label"`
	Type  string    `hcl:"type"`
	Value cty.Value `hcl:"value"`
}

// File represents the top-level structure of a program file.
type File struct {
	Constants []*Constant `hcl:"constant,block"`
	Nodes     []*Node     `hcl:"node,block"`
}
