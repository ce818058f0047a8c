// Package node holds the fixed-layout primitives shared by every node record:
// node identifiers, transaction time, the dirty-flag bitset and pin declarations.
package node

import (
	"fmt"
	"math/bits"
)

// ID is the numeric identifier a node carries in the compiled program. It is
// the id addressed by the debug tweak protocol and reported by watch nodes.
type ID uint32

// String returns the id in the "#<n>" form used in trace output.
func (id ID) String() string {
	return fmt.Sprintf("#%d", uint32(id))
}

// TimeMs is a monotonic millisecond timestamp. Zero doubles as the
// "no pending timeout" sentinel in node records.
type TimeMs uint64

// NoTimeout is the sentinel stored in a record that has no pending timeout.
const NoTimeout TimeMs = 0

// MaxDirtyableOutputs is the number of dirtyable output pins a single node may
// declare. Bit 0 of DirtyFlags is reserved for the node itself.
const MaxDirtyableOutputs = 31

// DirtyFlags is the per-node dirtiness bitset: bit 0 marks the node itself,
// bits 1..31 mark its dirtyable output pins in declaration order.
type DirtyFlags uint32

// NodeDirty is the "node itself dirty" bit.
const NodeDirty DirtyFlags = 1

// OutputBit returns the flag of the k-th dirtyable output pin.
func OutputBit(k int) DirtyFlags {
	if k < 0 || k >= MaxDirtyableOutputs {
		panic(fmt.Sprintf("node: dirtyable output index %d out of range", k))
	}
	return DirtyFlags(1) << (k + 1)
}

// Has reports whether every bit of mask is set.
func (f DirtyFlags) Has(mask DirtyFlags) bool {
	return mask != 0 && f&mask == mask
}

// IsNodeDirty reports whether the node bit is set.
func (f DirtyFlags) IsNodeDirty() bool {
	return f&NodeDirty != 0
}

// Count returns the number of set bits.
func (f DirtyFlags) Count() int {
	return bits.OnesCount32(uint32(f))
}

// String renders the bitset as "node+out0+out3" for trace output.
func (f DirtyFlags) String() string {
	if f == 0 {
		return "clean"
	}
	s := ""
	if f.IsNodeDirty() {
		s = "node"
	}
	for k := 0; k < MaxDirtyableOutputs; k++ {
		if f&OutputBit(k) == 0 {
			continue
		}
		if s != "" {
			s += "+"
		}
		s += fmt.Sprintf("out%d", k)
	}
	return s
}
