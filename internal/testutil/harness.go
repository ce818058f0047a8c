package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/xodrun/internal/builder"
	"github.com/vk/xodrun/internal/clock"
	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/hcl"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/registry"
	"github.com/vk/xodrun/internal/tweak"
	"github.com/vk/xodrun/modules/core"
	"github.com/vk/xodrun/modules/debug"
	"github.com/zclconf/go-cty/cty"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Reset empties the buffer.
func (b *SafeBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.b.Reset()
}

// Harness runs a program written in HCL on a manual clock, with the core and
// debug patch libraries registered.
type Harness struct {
	t       *testing.T
	ctx     context.Context
	Clock   *clock.Manual
	Runtime *engine.Runtime
	Result  *builder.Result
	// Watch receives the lines written by watch nodes.
	Watch *SafeBuffer
	// Logs receives every log record at trace level.
	Logs   *SafeBuffer
	Tweaks *tweak.LineBuffer
}

// Load writes files into a temporary directory, loads and builds the program
// they form and returns a harness for it. Extra modules are registered after
// the standard ones.
func Load(t *testing.T, files map[string]string, modules ...registry.Module) (*Harness, error) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(Unindent(content)), 0o644))
	}

	h := &Harness{
		t:      t,
		Clock:  clock.NewManual(0),
		Watch:  &SafeBuffer{},
		Logs:   &SafeBuffer{},
		Tweaks: tweak.NewLineBuffer(16),
	}
	logger := slog.New(slog.NewTextHandler(h.Logs, &slog.HandlerOptions{
		Level:       ctxlog.LevelTrace,
		ReplaceAttr: ctxlog.ReplaceLevel,
	}))
	h.ctx = ctxlog.WithLogger(context.Background(), logger)

	r := registry.New()
	all := append([]registry.Module{&core.Module{}, &debug.Module{Out: h.Watch}}, modules...)
	for _, m := range all {
		m.Register(r)
	}
	if err := r.Validate(h.ctx); err != nil {
		return nil, err
	}

	prog, err := hcl.NewLoader().Load(h.ctx, dir)
	if err != nil {
		return nil, err
	}
	res, err := builder.Build(h.ctx, prog, r)
	if err != nil {
		return nil, err
	}
	h.Result = res
	h.Runtime = engine.New(res.Program, engine.Options{
		Clock:    h.Clock,
		Injector: tweak.NewInjector(h.Tweaks, res.Targets, nil),
	})
	return h, nil
}

// MustLoad is Load that fails the test on error.
func MustLoad(t *testing.T, files map[string]string, modules ...registry.Module) *Harness {
	t.Helper()
	h, err := Load(t, files, modules...)
	require.NoError(t, err)
	return h
}

// Program returns a harness for a single-file program.
func Program(t *testing.T, src string, modules ...registry.Module) *Harness {
	t.Helper()
	return MustLoad(t, map[string]string{"main.hcl": src}, modules...)
}

// Tick runs one transaction at the current clock time.
func (h *Harness) Tick() engine.Report {
	return h.Runtime.RunTransaction(h.ctx)
}

// TickAt sets the clock to ms and runs one transaction.
func (h *Harness) TickAt(ms node.TimeMs) engine.Report {
	h.Clock.Set(ms)
	return h.Tick()
}

// Send queues a tweak command for the next transaction.
func (h *Harness) Send(line string) {
	_, _ = h.Tweaks.Write([]byte(line + "\r\n"))
}

// Output returns the value of output pin of the node called name.
func (h *Harness) Output(name string, pin int) cty.Value {
	h.t.Helper()
	id, ok := h.Result.IDs[name]
	require.True(h.t, ok, "no node named %q", name)
	v, ok := h.Result.Program.Output(id, pin)
	require.True(h.t, ok, "node %q has no output %d", name, pin)
	return v
}

// Number returns a numeric output as float64.
func (h *Harness) Number(name string, pin int) float64 {
	h.t.Helper()
	f, _ := h.Output(name, pin).AsBigFloat().Float64()
	return f
}

// Bool returns a boolean output.
func (h *Harness) Bool(name string, pin int) bool {
	h.t.Helper()
	return h.Output(name, pin).True()
}
