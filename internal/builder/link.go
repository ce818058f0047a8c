package builder

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/xodrun/internal/config"
	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/graph"
	"github.com/vk/xodrun/internal/node"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

func pinRef(pos, pin int) graph.PinRef {
	return graph.PinRef{Node: pos, Pin: pin}
}

func (b *build) bindInput(ctx context.Context, inst *instance, k int, pin node.PinSpec, in config.Input, bound bool) error {
	logger := ctxlog.FromContext(ctx)

	if !bound {
		switch pin.Type {
		case node.Pulse, node.Custom, node.Any:
			logger.Debug("Input left unlinked.", "node", inst.cfg.Name, "input", pin.Key)
			return nil
		}
		b.bindConstant(inst, k, b.addConstant(pin.Default))
		return nil
	}

	switch in.Kind {
	case config.LinkInput:
		return b.bindLink(inst, k, pin, in)

	case config.ConstantInput:
		idx, ok := b.constants[in.Constant]
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownConstant, in.Constant)
		}
		v := b.spec.Constants[idx]
		converted, err := coerce(v, pin)
		if err != nil {
			return fmt.Errorf("constant %q: %w", in.Constant, err)
		}
		if !converted.RawEquals(v) {
			idx = b.addConstant(converted)
		}
		b.bindConstant(inst, k, idx)
		return nil

	case config.LiteralInput:
		v, err := coerce(in.Value, pin)
		if err != nil {
			return err
		}
		b.bindConstant(inst, k, b.addConstant(v))
		return nil
	}
	return fmt.Errorf("input binding of kind %d is not supported", in.Kind)
}

func (b *build) bindLink(inst *instance, k int, pin node.PinSpec, in config.Input) error {
	src, ok := b.byName[in.Node]
	if !ok {
		return fmt.Errorf("%s: %w %q", in, ErrUnknownNode, in.Node)
	}
	out, ok := src.patch.OutputIndex(in.Pin)
	if !ok {
		return fmt.Errorf("%s: %w %q on %s", in, ErrUnknownPin, in.Pin, src.patch.Path)
	}
	outPin := src.patch.Outputs[out]
	if !pin.Accepts(outPin) {
		return fmt.Errorf("%s: %w: %s output into %s input", in, ErrTypeMismatch, outPin.Type, pin.Type)
	}
	b.spec.Links = append(b.spec.Links, engine.LinkSpec{
		From: pinRef(src.pos, out),
		To:   pinRef(inst.pos, k),
	})
	return nil
}

// coerce converts a constant or literal to the storage type of pin.
func coerce(v cty.Value, pin node.PinSpec) (cty.Value, error) {
	switch pin.Type {
	case node.Any:
		return v, nil
	case node.Custom:
		return cty.NilVal, fmt.Errorf("%w: %s pins cannot take constants", ErrTypeMismatch, pin.ValueType().FriendlyName())
	}
	out, err := convert.Convert(v, pin.ValueType())
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: cannot use %s as %s: %v", ErrTypeMismatch, v.Type().FriendlyName(), pin.Type, err)
	}
	if pin.Type == node.Byte {
		if f, _ := out.AsBigFloat().Float64(); f < 0 || f > math.MaxUint8 || f != math.Trunc(f) {
			return cty.NilVal, fmt.Errorf("%w: %v is not a byte", ErrTypeMismatch, f)
		}
	}
	return out, nil
}
