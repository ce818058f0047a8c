package engine

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/xodrun/internal/clock"
	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/graph"
	"github.com/vk/xodrun/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// seen captures what a node observed during one evaluation.
type seen struct {
	tick  uint64
	value cty.Value
	dirty bool
	t     node.TimeMs
}

// probe is a node whose behaviour is scripted by the test.
type probe struct {
	evals []seen
	fn    func(c *Context) error
}

func (p *probe) eval(rt **Runtime) EvalFunc {
	return func(c *Context) error {
		s := seen{tick: (*rt).Ticks(), t: c.TransactionTime()}
		if len(c.ins) > 0 {
			s.value = c.Value(0)
			s.dirty = c.IsInputDirty(0)
		}
		p.evals = append(p.evals, s)
		if p.fn != nil {
			return p.fn(c)
		}
		return nil
	}
}

func (p *probe) count() int {
	return len(p.evals)
}

func (p *probe) last() seen {
	return p.evals[len(p.evals)-1]
}

// fixture assembles small programs out of probes.
type fixture struct {
	t      *testing.T
	spec   ProgramSpec
	probes []*probe
	rt     *Runtime
	clock  *clock.Manual
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, clock: clock.NewManual(0)}
}

func (f *fixture) add(n NodeSpec) (int, *probe) {
	p := &probe{}
	if n.ID == 0 {
		n.ID = node.ID(len(f.spec.Nodes) + 1)
	}
	if n.Patch == "" {
		n.Patch = "test/probe"
	}
	n.Evaluate = p.eval(&f.rt)
	f.spec.Nodes = append(f.spec.Nodes, n)
	f.probes = append(f.probes, p)
	return len(f.spec.Nodes) - 1, p
}

func (f *fixture) link(from, fromPin, to, toPin int) {
	f.spec.Links = append(f.spec.Links, LinkSpec{
		From: graph.PinRef{Node: from, Pin: fromPin},
		To:   graph.PinRef{Node: to, Pin: toPin},
	})
}

func (f *fixture) constant(v cty.Value, to, toPin int) {
	f.spec.Constants = append(f.spec.Constants, v)
	f.spec.Bindings = append(f.spec.Bindings, ConstantSpec{
		To:       graph.PinRef{Node: to, Pin: toPin},
		Constant: len(f.spec.Constants) - 1,
	})
}

func (f *fixture) build(opts Options) *Runtime {
	f.t.Helper()
	p, err := NewProgram(f.spec)
	require.NoError(f.t, err)
	if opts.Clock == nil {
		opts.Clock = f.clock
	}
	f.rt = New(p, opts)
	return f.rt
}

func (f *fixture) tick() Report {
	return f.rt.RunTransaction(ctxlog.WithLogger(context.Background(), ctxlog.Discard()))
}

func numOut() []node.PinSpec {
	return []node.PinSpec{node.Out("OUT", node.Number)}
}

func pulseOut() []node.PinSpec {
	return []node.PinSpec{node.Out("OUT", node.Pulse)}
}

func numIn() []node.PinSpec {
	return []node.PinSpec{node.In("IN", node.Number)}
}

func num(v float64) cty.Value {
	return cty.NumberFloatVal(v)
}

type safeBuffer struct {
	b []byte
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.b = append(s.b, p...)
	return len(p), nil
}

func (s *safeBuffer) String() string {
	return string(s.b)
}

func slogTo(w *safeBuffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       ctxlog.LevelTrace,
		ReplaceAttr: ctxlog.ReplaceLevel,
	}))
}
