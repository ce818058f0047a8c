package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/node"
	"github.com/zclconf/go-cty/cty"
)

func TestRunTransaction_SettledChainDoesNotReevaluate(t *testing.T) {
	// --- Arrange ---
	// A emits 5 on its dirtyable output whenever it evaluates; B consumes it.
	f := newFixture(t)
	a, pa := f.add(NodeSpec{Outputs: numOut()})
	b, pb := f.add(NodeSpec{Inputs: numIn(), Outputs: numOut()})
	f.link(a, 0, b, 0)
	pa.fn = func(c *Context) error { c.Emit(0, num(5)); return nil }
	pb.fn = func(c *Context) error { c.Emit(0, c.Value(0)); return nil }
	rt := f.build(Options{})

	// --- Act ---
	first := f.tick()
	second := f.tick()

	// --- Assert ---
	assert.Equal(t, 2, first.Evaluated)
	require.Equal(t, 1, pb.count())
	assert.True(t, pb.last().value.RawEquals(num(5)))
	assert.True(t, pb.last().dirty)

	assert.Zero(t, second.Evaluated, "nothing upstream changed")
	assert.Equal(t, 1, pa.count())
	assert.Equal(t, 1, pb.count())
	out, ok := rt.Program().Output(2, 0)
	require.True(t, ok)
	assert.True(t, out.RawEquals(num(5)), "B keeps its last output")
}

func TestPropagate_DirtyableOutputOnlyWhenMarked(t *testing.T) {
	// --- Arrange ---
	f := newFixture(t)
	src, psrc := f.add(NodeSpec{Outputs: numOut()})
	dst, pdst := f.add(NodeSpec{Inputs: numIn()})
	f.link(src, 0, dst, 0)
	emit := false
	psrc.fn = func(c *Context) error {
		if emit {
			c.Emit(0, num(1))
		}
		return nil
	}
	rt := f.build(Options{})
	f.tick() // boot: everything evaluates

	// --- Act & Assert ---
	// src evaluates without emitting: dst stays clean.
	rt.Program().Record(src).Dirty = node.NodeDirty
	f.tick()
	assert.Equal(t, 2, psrc.count())
	assert.Equal(t, 1, pdst.count())

	// src evaluates and emits: dst evaluates and sees a dirty input.
	emit = true
	rt.Program().Record(src).Dirty = node.NodeDirty
	f.tick()
	assert.Equal(t, 3, psrc.count())
	require.Equal(t, 2, pdst.count())
	assert.True(t, pdst.last().dirty)
}

func TestPropagate_NonDirtyableOutputAlwaysReachesConsumers(t *testing.T) {
	// --- Arrange ---
	f := newFixture(t)
	src, psrc := f.add(NodeSpec{UsesTimeouts: true, Outputs: pulseOut()})
	d1, pd1 := f.add(NodeSpec{Inputs: []node.PinSpec{node.In("IN", node.Pulse)}})
	d2, pd2 := f.add(NodeSpec{Inputs: []node.PinSpec{node.In("IN", node.Pulse)}})
	f.link(src, 0, d1, 0)
	f.link(src, 0, d2, 0)
	// src never emits; it only wakes itself up every 10ms.
	psrc.fn = func(c *Context) error { c.SetTimeout(10 * time.Millisecond); return nil }
	f.build(Options{})
	f.tick()

	// --- Act ---
	f.clock.Set(10)
	rep := f.tick()

	// --- Assert ---
	assert.Equal(t, 1, rep.TimedOut)
	assert.Equal(t, 2, psrc.count())
	require.Equal(t, 2, pd1.count())
	require.Equal(t, 2, pd2.count())
	assert.True(t, pd1.last().dirty)
	assert.True(t, pd2.last().dirty)
}

func TestReset_ClearsAllDirtyFlags(t *testing.T) {
	f := newFixture(t)
	a, pa := f.add(NodeSpec{Outputs: []node.PinSpec{node.Out("A", node.Number), node.Out("B", node.Pulse)}})
	b, _ := f.add(NodeSpec{Inputs: numIn(), Outputs: numOut()})
	f.link(a, 0, b, 0)
	pa.fn = func(c *Context) error { c.Emit(0, num(1)); c.Emit(1, cty.True); return nil }
	rt := f.build(Options{})

	f.tick()

	for i := 0; i < rt.Program().Len(); i++ {
		assert.Zero(t, rt.Program().Record(i).Dirty, "record %d", i)
	}
	rep := f.tick()
	assert.Zero(t, rep.Evaluated, "a freshly reset program has nothing to do")
}

func TestBoot_AllNodesEvaluateAndDirtyOnBootOutputsAreVisible(t *testing.T) {
	// --- Arrange ---
	// The source never emits; its output is dirty on boot only.
	f := newFixture(t)
	src, _ := f.add(NodeSpec{Outputs: numOut()})
	dst, pdst := f.add(NodeSpec{Inputs: numIn()})
	f.link(src, 0, dst, 0)
	rt := f.build(Options{})
	assert.True(t, rt.SettingUp())

	// --- Act ---
	f.tick()

	// --- Assert ---
	require.Equal(t, 1, pdst.count())
	assert.True(t, pdst.last().dirty)
	assert.False(t, rt.SettingUp())
}

func TestConstantInput_DirtyOnlyOnFirstTick(t *testing.T) {
	// --- Arrange ---
	f := newFixture(t)
	n, p := f.add(NodeSpec{UsesTimeouts: true, Inputs: numIn()})
	f.constant(num(42), n, 0)
	p.fn = func(c *Context) error { c.SetTimeout(time.Millisecond); return nil }
	f.build(Options{})

	// --- Act ---
	for i := 0; i < 4; i++ {
		f.tick()
		f.clock.Advance(time.Millisecond)
	}

	// --- Assert ---
	require.Equal(t, 4, p.count())
	assert.True(t, p.evals[0].dirty)
	for _, s := range p.evals[1:] {
		assert.False(t, s.dirty)
		assert.True(t, s.value.RawEquals(num(42)))
	}
}

func TestUnlinkedInput_ReadsDefaultAndIsNeverDirty(t *testing.T) {
	f := newFixture(t)
	_, p := f.add(NodeSpec{Inputs: []node.PinSpec{node.In("IN", node.Number).WithDefault(num(7))}})
	f.build(Options{})

	f.tick()

	require.Equal(t, 1, p.count())
	assert.False(t, p.last().dirty)
	assert.True(t, p.last().value.RawEquals(num(7)))
}

func TestTransactionTime_SampledOncePerTickAndNeverDecreases(t *testing.T) {
	f := newFixture(t)
	_, p1 := f.add(NodeSpec{})
	_, p2 := f.add(NodeSpec{})
	p1.fn = func(c *Context) error { f.clock.Advance(time.Second); return nil }
	rt := f.build(Options{})
	f.clock.Set(100)

	f.tick()

	assert.Equal(t, node.TimeMs(100), p1.last().t)
	assert.Equal(t, node.TimeMs(100), p2.last().t, "time moved mid-tick but the sample is fixed")

	f.clock.Set(50)
	rep := f.tick()
	assert.Equal(t, node.TimeMs(100), rep.Time, "a clock going backwards is ignored")
	assert.Equal(t, node.TimeMs(100), rt.TransactionTime())
}

func TestEvaluationErrors_AreNodeScoped(t *testing.T) {
	// --- Arrange ---
	f := newFixture(t)
	bad, pbad := f.add(NodeSpec{Outputs: numOut()})
	_, ppanic := f.add(NodeSpec{})
	_, pok := f.add(NodeSpec{})
	initErr := errors.New("device did not answer")
	pbad.fn = func(c *Context) error { return initErr }
	ppanic.fn = func(c *Context) error { panic("boom") }
	rt := f.build(Options{})

	// --- Act ---
	rep := f.tick()

	// --- Assert ---
	assert.Equal(t, 3, rep.Evaluated)
	assert.Equal(t, 2, rep.Failed)
	assert.Equal(t, 1, pok.count(), "the tick carried on after the failures")
	assert.ErrorIs(t, rt.Program().Record(bad).Err, initErr)

	var pe *PanicError
	require.ErrorAs(t, rt.Program().Record(1).Err, &pe)
	assert.Equal(t, node.ID(2), pe.Node)
	assert.Equal(t, "boom", pe.Value)
	assert.Nil(t, rt.Program().Record(2).Err)
}

func TestSetTimeout_WithoutDeclarationIsANodeError(t *testing.T) {
	f := newFixture(t)
	_, p := f.add(NodeSpec{})
	p.fn = func(c *Context) error { c.SetTimeout(time.Second); return nil }
	rt := f.build(Options{})

	rep := f.tick()

	assert.Equal(t, 1, rep.Failed)
	var pe *PanicError
	assert.ErrorAs(t, rt.Program().Record(0).Err, &pe)
}

func TestRunTransaction_PanicsWhenReentered(t *testing.T) {
	f := newFixture(t)
	_, p := f.add(NodeSpec{})
	var inner any
	p.fn = func(c *Context) error {
		func() {
			defer func() { inner = recover() }()
			f.rt.RunTransaction(context.Background())
		}()
		return nil
	}
	f.build(Options{})

	f.tick()

	assert.NotNil(t, inner)
}

type recordingObserver struct {
	reports []Report
}

func (o *recordingObserver) ObserveTransaction(r Report) {
	o.reports = append(o.reports, r)
}

func TestObserver_ReceivesEveryReport(t *testing.T) {
	f := newFixture(t)
	f.add(NodeSpec{})
	obs := &recordingObserver{}
	f.build(Options{Observer: obs})

	f.tick()
	f.tick()

	require.Len(t, obs.reports, 2)
	assert.Equal(t, uint64(0), obs.reports[0].Tick)
	assert.Equal(t, 1, obs.reports[0].Evaluated)
	assert.Equal(t, uint64(1), obs.reports[1].Tick)
}

func TestRunTransaction_TracesAtTraceLevel(t *testing.T) {
	var buf safeBuffer
	f := newFixture(t)
	f.add(NodeSpec{})
	rt := f.build(Options{})
	logger := slogTo(&buf)

	rt.RunTransaction(ctxlog.WithLogger(context.Background(), logger))

	out := buf.String()
	assert.Contains(t, out, "Transaction started")
	assert.Contains(t, out, "Eval node")
	assert.Contains(t, out, "Transaction completed")
}
