package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/xodrun/internal/config"
	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/registry"
	"github.com/vk/xodrun/internal/tweak"
	"github.com/zclconf/go-cty/cty"
)

// Result is a built program with the lookup tables the application needs
// around it.
type Result struct {
	Program *engine.Program
	// Targets lists the tweak nodes by id.
	Targets tweak.Targets
	// IDs maps node names to ids.
	IDs map[string]node.ID
}

// instance is a node under construction.
type instance struct {
	cfg   *config.Node
	patch *registry.Patch
	id    node.ID
	pos   int
}

type build struct {
	reg       *registry.Registry
	prog      *config.Program
	spec      engine.ProgramSpec
	instances []*instance
	byName    map[string]*instance
	constants map[string]int
}

// Build compiles prog against r.
func Build(ctx context.Context, prog *config.Program, r *registry.Registry) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting program construction.", "nodes", len(prog.Nodes), "constants", len(prog.Constants))

	b := &build{
		reg:       r,
		prog:      prog,
		byName:    make(map[string]*instance, len(prog.Nodes)),
		constants: make(map[string]int, len(prog.Constants)),
	}

	// First pass: resolve patches and ids.
	if err := b.createNodes(); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(b.instances))

	// Second pass: resolve every input binding.
	if err := b.linkNodes(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node linking complete.", "links", len(b.spec.Links), "constants", len(b.spec.Constants))

	p, err := engine.NewProgram(b.spec)
	if err != nil {
		return nil, fmt.Errorf("error validating program: %w", err)
	}

	res := &Result{
		Program: p,
		Targets: make(tweak.Targets),
		IDs:     make(map[string]node.ID, len(b.instances)),
	}
	for _, inst := range b.instances {
		res.IDs[inst.cfg.Name] = inst.id
		if inst.patch.Tweak.Tweakable() {
			res.Targets[inst.id] = inst.patch.Tweak
		}
	}

	logger.Info("Build: Program construction successful.", "nodes", p.Len(), "tweak_targets", len(res.Targets))
	return res, nil
}

func (b *build) createNodes() error {
	var errs []error
	ids := make(map[node.ID]string, len(b.prog.Nodes))

	// Explicit ids are claimed first so an implicit id never takes one that a
	// later node asks for.
	for _, n := range b.prog.Nodes {
		if n.ID == nil {
			continue
		}
		if other, dup := ids[*n.ID]; dup {
			errs = append(errs, fmt.Errorf("%s: node %q: id %s already used by %q: %w", n.Source, n.Name, *n.ID, other, ErrDuplicateName))
			continue
		}
		ids[*n.ID] = n.Name
	}

	for i, n := range b.prog.Nodes {
		patch, ok := b.reg.Patch(n.Patch)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: node %q: %w %q", n.Source, n.Name, ErrUnknownPatch, n.Patch))
			continue
		}
		if _, dup := b.byName[n.Name]; dup {
			errs = append(errs, fmt.Errorf("%s: node %q: %w", n.Source, n.Name, ErrDuplicateName))
			continue
		}
		var id node.ID
		if n.ID != nil {
			id = *n.ID
		} else {
			id = nextFreeID(ids, node.ID(i))
			ids[id] = n.Name
		}

		inst := &instance{cfg: n, patch: patch, id: id, pos: len(b.instances)}
		b.instances = append(b.instances, inst)
		b.byName[n.Name] = inst
		b.spec.Nodes = append(b.spec.Nodes, patch.Instantiate(id))
	}
	return errors.Join(errs...)
}

func (b *build) linkNodes(ctx context.Context) error {
	var errs []error

	for _, c := range b.prog.Constants {
		if _, dup := b.constants[c.Name]; dup {
			errs = append(errs, fmt.Errorf("%s: constant %q: %w", c.Source, c.Name, ErrDuplicateName))
			continue
		}
		b.constants[c.Name] = b.addConstant(c.Value)
	}

	for _, inst := range b.instances {
		for key := range inst.cfg.Inputs {
			if _, ok := inst.patch.InputIndex(key); !ok {
				errs = append(errs, fmt.Errorf("%s: node %q: input %q on %s: %w", inst.cfg.Source, inst.cfg.Name, key, inst.patch.Path, ErrUnknownPin))
			}
		}
		for k, pin := range inst.patch.Inputs {
			in, bound := inst.cfg.Inputs[pin.Key]
			if err := b.bindInput(ctx, inst, k, pin, in, bound); err != nil {
				errs = append(errs, fmt.Errorf("%s: node %q input %s: %w", inst.cfg.Source, inst.cfg.Name, pin.Key, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (b *build) addConstant(v cty.Value) int {
	b.spec.Constants = append(b.spec.Constants, v)
	return len(b.spec.Constants) - 1
}

func (b *build) bindConstant(inst *instance, k, constant int) {
	b.spec.Bindings = append(b.spec.Bindings, engine.ConstantSpec{
		To:       pinRef(inst.pos, k),
		Constant: constant,
	})
}

// nextFreeID returns from, or the first id above it that is not taken.
func nextFreeID(taken map[node.ID]string, from node.ID) node.ID {
	for {
		if _, ok := taken[from]; !ok {
			return from
		}
		from++
	}
}
