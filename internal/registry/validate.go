package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/node"
)

// Validate checks every registered patch for consistency: an evaluation
// function, unique pin keys, no more dirtyable outputs than a record can
// track, defer nodes using timeouts and tweak nodes with a single output of
// the tweaked type.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, path := range r.Paths() {
		p := r.patches[path]
		if p.Evaluate == nil {
			errs = append(errs, fmt.Sprintf("patch '%s': no evaluation function", path))
		}
		errs = append(errs, checkKeys(path, "input", p.Inputs)...)
		errs = append(errs, checkKeys(path, "output", p.Outputs)...)

		dirtyable := 0
		for _, out := range p.Outputs {
			if out.Dirtyable {
				dirtyable++
			}
			if out.DirtyOnBoot && !out.Dirtyable {
				errs = append(errs, fmt.Sprintf("patch '%s', output '%s': dirty on boot but not dirtyable", path, out.Key))
			}
		}
		if dirtyable > node.MaxDirtyableOutputs {
			errs = append(errs, fmt.Sprintf("patch '%s': %d dirtyable outputs, at most %d allowed", path, dirtyable, node.MaxDirtyableOutputs))
		}

		if p.Defer && !p.UsesTimeouts {
			errs = append(errs, fmt.Sprintf("patch '%s': defer nodes must use timeouts", path))
		}

		if p.Tweak.Tweakable() {
			switch {
			case len(p.Outputs) != 1:
				errs = append(errs, fmt.Sprintf("patch '%s': tweak nodes need exactly one output, found %d", path, len(p.Outputs)))
			case p.Outputs[0].Type != p.Tweak.Type.PinType():
				errs = append(errs, fmt.Sprintf("patch '%s': tweak type '%s' does not match output type '%s'", path, p.Tweak.Type, p.Outputs[0].Type))
			}
		}

		for _, in := range p.Inputs {
			if in.Type == node.Any {
				logger.Debug("Patch has an input of type any, which disables link type checking.", "patch", path, "input", in.Key)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func checkKeys(path, kind string, pins []node.PinSpec) []string {
	var errs []string
	seen := make(map[string]bool, len(pins))
	for _, pin := range pins {
		if pin.Key == "" {
			errs = append(errs, fmt.Sprintf("patch '%s': %s pin without a key", path, kind))
			continue
		}
		if seen[pin.Key] {
			errs = append(errs, fmt.Sprintf("patch '%s': duplicate %s pin '%s'", path, kind, pin.Key))
		}
		seen[pin.Key] = true
	}
	return errs
}
