package engine

import "github.com/vk/xodrun/internal/node"

// checkTimeouts makes every record whose deadline has been reached node-dirty
// and returns how many there were. The deadline stays in place so the node can
// see IsTimedOut while it evaluates.
func (r *Runtime) checkTimeouts() int {
	fired := 0
	for _, i := range r.prog.timed {
		rec := &r.prog.records[i]
		if rec.TimedOut(r.txTime) {
			rec.Dirty |= node.NodeDirty
			fired++
		}
	}
	return fired
}

// clearStaleTimeouts drops deadlines that are not in the future any more. A
// node that re-armed its timeout during this transaction has a later deadline
// and keeps it.
func (r *Runtime) clearStaleTimeouts() {
	for _, i := range r.prog.timed {
		rec := &r.prog.records[i]
		if rec.TimedOut(r.txTime) {
			rec.TimeoutAt = node.NoTimeout
		}
	}
}
