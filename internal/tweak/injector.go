package tweak

import (
	"context"

	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
)

// Observer is told about every polled command.
type Observer interface {
	TweakApplied(id node.ID, t Type)
	TweakIgnored(reason string)
}

// Injector applies queued commands to a program. It implements
// engine.Injector.
type Injector struct {
	buf      *LineBuffer
	targets  Targets
	observer Observer
}

var _ engine.Injector = (*Injector)(nil)

// NewInjector returns an injector reading from buf. observer may be nil.
func NewInjector(buf *LineBuffer, targets Targets, observer Observer) *Injector {
	return &Injector{buf: buf, targets: targets, observer: observer}
}

// Inject applies at most one queued command and reports whether it did.
func (in *Injector) Inject(ctx context.Context, p *engine.Program) bool {
	line, ok := in.buf.Poll()
	if !ok {
		return false
	}
	logger := ctxlog.FromContext(ctx)

	cmd, err := Decode(line, in.targets)
	if err == nil {
		err = p.Tweak(cmd.Node, 0, cmd.Value)
	}
	if err != nil {
		logger.Debug("Tweak ignored.", "line", string(line), "error", err)
		if in.observer != nil {
			in.observer.TweakIgnored(Reason(err))
		}
		return false
	}

	logger.Log(ctx, ctxlog.LevelTrace, "Tweak applied", "node_id", cmd.Node, "type", cmd.Type, "value", cmd.Value.GoString())
	if in.observer != nil {
		in.observer.TweakApplied(cmd.Node, cmd.Type)
	}
	return true
}
