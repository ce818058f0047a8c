package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vk/xodrun/internal/clock"
	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/node"
)

// Injector applies pending debug tweaks at the start of a transaction. It
// reports whether a tweak was applied.
type Injector interface {
	Inject(ctx context.Context, p *Program) bool
}

// Observer receives the report of every completed transaction.
type Observer interface {
	ObserveTransaction(r Report)
}

// Report summarises one transaction.
type Report struct {
	Tick      uint64
	Time      node.TimeMs
	Tweaked   bool
	TimedOut  int
	Deferred  int
	Evaluated int
	Failed    int
	Elapsed   time.Duration
}

// Options configures a Runtime.
type Options struct {
	// Clock defaults to clock.NewSystem().
	Clock    clock.Source
	Injector Injector
	Observer Observer
}

// Runtime drives a Program one transaction at a time.
type Runtime struct {
	prog     *Program
	clock    clock.Source
	injector Injector
	observer Observer

	txTime    node.TimeMs
	settingUp bool
	ticks     uint64

	busy atomic.Bool
	ctx  Context
}

// New returns a runtime for p. The runtime takes ownership of p's records.
func New(p *Program, opts Options) *Runtime {
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}
	return &Runtime{
		prog:      p,
		clock:     opts.Clock,
		injector:  opts.Injector,
		observer:  opts.Observer,
		settingUp: true,
	}
}

// Program returns the program the runtime drives.
func (r *Runtime) Program() *Program {
	return r.prog
}

// TransactionTime returns the time sampled by the latest transaction.
func (r *Runtime) TransactionTime() node.TimeMs {
	return r.txTime
}

// SettingUp reports whether the next transaction is the first one.
func (r *Runtime) SettingUp() bool {
	return r.settingUp
}

// Ticks returns the number of completed transactions.
func (r *Runtime) Ticks() uint64 {
	return r.ticks
}

// RunTransaction runs one full tick and returns its report. A transaction
// cannot be cancelled once started; ctx only carries the logger.
func (r *Runtime) RunTransaction(ctx context.Context) Report {
	if !r.busy.CompareAndSwap(false, true) {
		panic("engine: RunTransaction called while a transaction is running")
	}
	defer r.busy.Store(false)

	start := time.Now()
	logger := ctxlog.FromContext(ctx)
	tracing := logger.Enabled(ctx, ctxlog.LevelTrace)

	r.sampleTime()
	rep := Report{Tick: r.ticks, Time: r.txTime}
	if tracing {
		logger.Log(ctx, ctxlog.LevelTrace, "Transaction started", "t", r.txTime, "tick", r.ticks)
	}

	if r.injector != nil {
		rep.Tweaked = r.injector.Inject(ctx, r.prog)
	}
	rep.TimedOut = r.checkTimeouts()
	r.runDeferPass(ctx, logger, tracing, &rep)
	r.runMainPass(ctx, logger, tracing, &rep)
	r.reset()

	r.settingUp = false
	r.ticks++
	rep.Elapsed = time.Since(start)
	if tracing {
		logger.Log(ctx, ctxlog.LevelTrace, "Transaction completed",
			"t", r.txTime, "evaluated", rep.Evaluated, "deferred", rep.Deferred, "elapsed", rep.Elapsed)
	}
	if r.observer != nil {
		r.observer.ObserveTransaction(rep)
	}
	return rep
}

// sampleTime reads the clock once. A clock reading behind the previous
// transaction is ignored so the transaction time never decreases.
func (r *Runtime) sampleTime() {
	if now := r.clock.NowMs(); now > r.txTime {
		r.txTime = now
	}
}

func (r *Runtime) runMainPass(ctx context.Context, logger *slog.Logger, tracing bool, rep *Report) {
	for i := range r.prog.records {
		rec := &r.prog.records[i]
		if !rec.Dirty.IsNodeDirty() {
			continue
		}
		if tracing {
			logger.Log(ctx, ctxlog.LevelTrace, "Eval node", "node_id", rec.ID, "patch", rec.Patch)
		}
		if r.evaluate(ctx, logger, i, false) != nil {
			rep.Failed++
		}
		rep.Evaluated++
		r.propagate(i)
	}
}

// evaluate runs the node at position i. The returned error is also stored on
// the record.
func (r *Runtime) evaluate(ctx context.Context, logger *slog.Logger, i int, inputsClean bool) (err error) {
	rec := &r.prog.records[i]
	c := &r.ctx
	c.bind(r, i, inputsClean, logger)
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Node: rec.ID, Value: v}
		}
		c.unbind()
		rec.Err = err
		if err != nil {
			logger.WarnContext(ctx, "Node evaluation failed.", "node_id", rec.ID, "patch", rec.Patch, "error", err)
		}
	}()
	return rec.eval(c)
}

// reset clears every dirty flag and drops timeouts that were not re-armed.
func (r *Runtime) reset() {
	for i := range r.prog.records {
		r.prog.records[i].Dirty = 0
	}
	r.clearStaleTimeouts()
}
