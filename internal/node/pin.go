package node

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// PinType is the data type carried by a pin.
type PinType uint8

const (
	Pulse PinType = iota
	Boolean
	Number
	Byte
	String
	// Custom pins carry a patch-defined cty capsule type.
	Custom
	// Any is accepted on input pins only and binds to an output of any type.
	Any
)

var pinTypeNames = map[PinType]string{
	Pulse:   "pulse",
	Boolean: "boolean",
	Number:  "number",
	Byte:    "byte",
	String:  "string",
	Custom:  "custom",
	Any:     "any",
}

func (t PinType) String() string {
	if name, ok := pinTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PinType(%d)", uint8(t))
}

// ParsePinType maps a program-file type name to a PinType. Custom types are
// not nameable from program files.
func ParsePinType(s string) (PinType, error) {
	switch strings.ToLower(s) {
	case "pulse":
		return Pulse, nil
	case "boolean", "bool":
		return Boolean, nil
	case "number":
		return Number, nil
	case "byte":
		return Byte, nil
	case "string":
		return String, nil
	case "any":
		return Any, nil
	}
	return 0, fmt.Errorf("unknown pin type %q", s)
}

// CtyType returns the cty type values of this pin type are stored as.
// Pulses are stored as booleans: true once emitted.
func (t PinType) CtyType() cty.Type {
	switch t {
	case Pulse, Boolean:
		return cty.Bool
	case Number, Byte:
		return cty.Number
	case String:
		return cty.String
	}
	return cty.DynamicPseudoType
}

// PinSpec declares one input or output pin of a patch.
type PinSpec struct {
	Key  string
	Type PinType
	// CustomType is the capsule type of a Custom pin.
	CustomType cty.Type
	// Default is the initial output value, or the value an unlinked input reads.
	Default cty.Value
	// Dirtyable outputs are selectively fresh: downstream nodes only become
	// dirty when the owning node marks the pin dirty during evaluation.
	Dirtyable bool
	// DirtyOnBoot sets the pin's dirty bit in the initial record.
	DirtyOnBoot bool
}

// In declares an input pin with the zero value of its type as default.
func In(key string, t PinType) PinSpec {
	return PinSpec{Key: key, Type: t, Default: Zero(t)}
}

// Out declares an output pin. Value pins are dirtyable and dirty on boot;
// pulse pins are not dirtyable, so every evaluation reaches their consumers.
func Out(key string, t PinType) PinSpec {
	return PinSpec{
		Key:         key,
		Type:        t,
		Default:     Zero(t),
		Dirtyable:   t != Pulse,
		DirtyOnBoot: t != Pulse,
	}
}

// CustomOut declares an output pin of a capsule type. Its default is null.
func CustomOut(key string, ty cty.Type) PinSpec {
	return PinSpec{
		Key:         key,
		Type:        Custom,
		CustomType:  ty,
		Default:     cty.NullVal(ty),
		Dirtyable:   true,
		DirtyOnBoot: true,
	}
}

// CustomIn declares an input pin of a capsule type.
func CustomIn(key string, ty cty.Type) PinSpec {
	return PinSpec{Key: key, Type: Custom, CustomType: ty, Default: cty.NullVal(ty)}
}

// WithDefault returns a copy of p with a different default value.
func (p PinSpec) WithDefault(v cty.Value) PinSpec {
	p.Default = v
	return p
}

// Selective returns a copy of p that is dirtyable but not dirty on boot. It is
// how pulse outputs that only fire on an explicit emit are declared.
func (p PinSpec) Selective() PinSpec {
	p.Dirtyable = true
	p.DirtyOnBoot = false
	return p
}

// ValueType is the cty type values on this pin have.
func (p PinSpec) ValueType() cty.Type {
	if p.Type == Custom {
		return p.CustomType
	}
	return p.Type.CtyType()
}

// Accepts reports whether an output declared as src may feed this input.
func (p PinSpec) Accepts(src PinSpec) bool {
	switch {
	case p.Type == Any:
		return true
	case p.Type != src.Type:
		return false
	case p.Type == Custom:
		return p.CustomType.Equals(src.CustomType)
	}
	return true
}

// Zero returns the default value of a pin type.
func Zero(t PinType) cty.Value {
	switch t {
	case Pulse, Boolean:
		return cty.False
	case Number, Byte:
		return cty.Zero
	case String:
		return cty.StringVal("")
	}
	return cty.NullVal(cty.DynamicPseudoType)
}
