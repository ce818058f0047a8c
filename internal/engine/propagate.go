package engine

import "github.com/vk/xodrun/internal/node"

// propagate marks the consumers of node i's outputs dirty. Dirtyable outputs
// only reach their consumers when the node marked them dirty; the others
// reach them unconditionally.
func (r *Runtime) propagate(i int) {
	records := r.prog.records
	dirty := records[i].Dirty
	for _, fan := range r.prog.table.Outputs(i) {
		if fan.Dirtyable && dirty&fan.Bit == 0 {
			continue
		}
		for _, to := range fan.To {
			records[to.Node].Dirty |= node.NodeDirty
		}
	}
}
