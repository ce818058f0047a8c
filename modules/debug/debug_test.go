package debug_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/registry"
	"github.com/vk/xodrun/internal/testutil"
	"github.com/vk/xodrun/internal/tweak"
	"github.com/vk/xodrun/modules/debug"
	"github.com/zclconf/go-cty/cty"
)

func TestWatch_ReportsTweakedValues(t *testing.T) {
	// --- Arrange ---
	h := testutil.Program(t, `
		node "xod/debug/tweak-number" "knob" {
		  id = 7
		}
		node "xod/core/add" "sum" {
		  inputs {
		    X = node.knob.OUT
		    Y = 1
		  }
		}
		node "xod/debug/watch" "w" {
		  id = 9
		  inputs {
		    IN = node.sum.OUT
		  }
		}
	`)

	// --- Act ---
	h.TickAt(0)
	h.Send("+XOD:7:3.5")
	rep := h.TickAt(20)
	h.TickAt(30)

	// --- Assert ---
	assert.True(t, rep.Tweaked)
	assert.Equal(t, "+XOD:0:9:1\r\n+XOD:20:9:4.5\r\n", h.Watch.String())
}

func TestTweaks_AllTypes(t *testing.T) {
	h := testutil.Program(t, `
		node "xod/debug/tweak-byte" "b" {
		  id = 1
		}
		node "xod/debug/tweak-boolean" "flag" {
		  id = 2
		}
		node "xod/debug/tweak-string-16" "s" {
		  id = 3
		}
		node "xod/debug/tweak-string-64" "long" {
		  id = 4
		}
	`)
	h.Tick()

	for _, line := range []string{
		"+XOD:1:258",
		"+XOD:2:5",
		"+XOD:3:hello world, this is long",
		"+XOD:4:short",
	} {
		h.Send(line)
		rep := h.Tick()
		require.True(t, rep.Tweaked, line)
	}

	assert.Equal(t, 2.0, h.Number("b", 0))
	assert.True(t, h.Bool("flag", 0))
	assert.Equal(t, "hello world, thi", h.Output("s", 0).AsString())
	assert.Equal(t, "short", h.Output("long", 0).AsString())
	assert.Equal(t, tweak.Targets{
		1: {Type: tweak.Byte},
		2: {Type: tweak.Boolean},
		3: {Type: tweak.String, StringLength: 16},
		4: {Type: tweak.String, StringLength: 64},
	}, h.Result.Targets)
}

func TestTweak_IgnoredForNonTweakNodes(t *testing.T) {
	h := testutil.Program(t, `
		node "xod/core/add" "sum" {
		  id = 5
		}
	`)
	h.Tick()

	h.Send("+XOD:5:1")
	rep := h.Tick()

	assert.False(t, rep.Tweaked)
	assert.Zero(t, rep.Evaluated)
}

func TestWatch_SilentWithoutWriter(t *testing.T) {
	r := registry.New()
	(&debug.Module{}).Register(r)
	require.NoError(t, r.Validate(context.Background()))
	p, _ := r.Patch("xod/debug/watch")

	prog, err := engine.NewProgram(engine.ProgramSpec{
		Nodes:     []engine.NodeSpec{p.Instantiate(1)},
		Constants: []cty.Value{cty.NumberIntVal(1)},
		Bindings:  []engine.ConstantSpec{{Constant: 0}},
	})
	require.NoError(t, err)

	rep := engine.New(prog, engine.Options{}).RunTransaction(context.Background())
	assert.Zero(t, rep.Failed)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, assert.AnError
}

func TestWatch_WriteErrorIsANodeError(t *testing.T) {
	r := registry.New()
	(&debug.Module{Out: failingWriter{}}).Register(r)
	p, _ := r.Patch("xod/debug/watch")
	prog, err := engine.NewProgram(engine.ProgramSpec{
		Nodes:     []engine.NodeSpec{p.Instantiate(1)},
		Constants: []cty.Value{cty.True},
		Bindings:  []engine.ConstantSpec{{Constant: 0}},
	})
	require.NoError(t, err)

	rep := engine.New(prog, engine.Options{}).RunTransaction(context.Background())

	assert.Equal(t, 1, rep.Failed)
	rec, _ := prog.Lookup(1)
	assert.ErrorIs(t, rec.Err, assert.AnError)
}

func TestFormatValue(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(debug.FormatValue(cty.NumberFloatVal(0.25)))
	buf.WriteString(" " + debug.FormatValue(cty.NumberIntVal(-3)))
	buf.WriteString(" " + debug.FormatValue(cty.True))
	buf.WriteString(" " + debug.FormatValue(cty.StringVal("hi")))
	buf.WriteString(" " + debug.FormatValue(cty.NullVal(cty.Number)))

	assert.Equal(t, "0.25 -3 true hi null", buf.String())
}
