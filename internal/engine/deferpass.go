package engine

import (
	"context"
	"log/slog"

	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/node"
)

// runDeferPass evaluates dirty defer nodes before everything else. Defer nodes
// sit at the bottom of the graph, so nothing would receive what they emit in
// the main pass until the next transaction. Their inputs are reported clean so
// leftover dirtiness is not taken for a new trigger. Afterwards only the output
// bits stay set: the node runs again in the main pass only if an upstream node
// pushes a new value to it.
func (r *Runtime) runDeferPass(ctx context.Context, logger *slog.Logger, tracing bool, rep *Report) {
	for _, i := range r.prog.deferred {
		rec := &r.prog.records[i]
		if !rec.Dirty.IsNodeDirty() {
			continue
		}
		if tracing {
			logger.Log(ctx, ctxlog.LevelTrace, "Trigger defer node", "node_id", rec.ID, "patch", rec.Patch)
		}
		if r.evaluate(ctx, logger, i, true) != nil {
			rep.Failed++
		}
		rep.Deferred++
		r.propagate(i)
		rec.Dirty &^= node.NodeDirty
		rec.TimeoutAt = node.NoTimeout
	}
}
