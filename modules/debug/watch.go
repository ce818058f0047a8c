package debug

import (
	"fmt"
	"strconv"

	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// watchPatch reports its input as
//
//	+XOD:<transactionTime>:<nodeId>:<value>\r\n
//
// every time the input carries a fresh value.
func (m *Module) watchPatch() *registry.Patch {
	return &registry.Patch{
		Path:   "xod/debug/watch",
		Inputs: []node.PinSpec{node.In("IN", node.Any)},
		Evaluate: func(c *engine.Context) error {
			if m.Out == nil || !c.IsInputDirty(0) {
				return nil
			}
			_, err := fmt.Fprintf(m.Out, "+XOD:%d:%d:%s\r\n", c.TransactionTime(), uint32(c.NodeID()), FormatValue(c.Value(0)))
			if err != nil {
				return fmt.Errorf("write watch line: %w", err)
			}
			return nil
		},
	}
}

// FormatValue renders a pin value the way watch lines carry it.
func FormatValue(v cty.Value) string {
	switch {
	case v.IsNull():
		return "null"
	case !v.IsKnown():
		return "unknown"
	}
	switch ty := v.Type(); {
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return strconv.FormatFloat(f, 'f', -1, 64)
	case ty == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case ty == cty.String:
		return v.AsString()
	case ty.IsCapsuleType():
		return fmt.Sprintf("%v", v.EncapsulatedValue())
	}
	return v.GoString()
}
