package tweak

import (
	"fmt"

	"github.com/vk/xodrun/internal/node"
)

// Type is the payload type of a tweak node.
type Type int

const (
	Number Type = iota + 1
	Byte
	Pulse
	Boolean
	String
)

var typeNames = map[Type]string{
	Number:  "number",
	Byte:    "byte",
	Pulse:   "pulse",
	Boolean: "boolean",
	String:  "string",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// PinType returns the pin type of the tweak node's output.
func (t Type) PinType() node.PinType {
	switch t {
	case Number:
		return node.Number
	case Byte:
		return node.Byte
	case Pulse:
		return node.Pulse
	case Boolean:
		return node.Boolean
	case String:
		return node.String
	}
	return node.Any
}

// Spec declares that a patch is a tweak node. The zero Spec means the patch
// cannot be tweaked.
type Spec struct {
	Type Type
	// StringLength bounds string payloads, in bytes.
	StringLength int
}

// Tweakable reports whether s declares a tweak node.
func (s Spec) Tweakable() bool {
	return s.Type != 0
}

// Targets maps node ids to the tweak nodes they address.
type Targets map[node.ID]Spec
