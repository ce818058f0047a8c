package hcl

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/xodrun/internal/config"
	"github.com/vk/xodrun/internal/ctxlog"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translateConstant converts a constant block into the model, converting its
// value to the declared type.
func translateConstant(file string, c *schema.Constant) (*config.Constant, error) {
	t, err := node.ParsePinType(c.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: constant %q: %w", file, c.Name, err)
	}
	v, err := convertLiteral(c.Value, t)
	if err != nil {
		return nil, fmt.Errorf("%s: constant %q: %w", file, c.Name, err)
	}
	return &config.Constant{
		Name:   c.Name,
		Type:   t,
		Value:  v,
		Source: file,
	}, nil
}

// convertLiteral converts v to the storage type of t.
func convertLiteral(v cty.Value, t node.PinType) (cty.Value, error) {
	if t == node.Any {
		return v, nil
	}
	if v.IsNull() || !v.IsKnown() {
		return cty.NilVal, fmt.Errorf("value must be known and not null")
	}
	out, err := convert.Convert(v, t.CtyType())
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot use %s as %s: %w", v.Type().FriendlyName(), t, err)
	}
	if t == node.Byte {
		f, _ := out.AsBigFloat().Float64()
		if f < 0 || f > math.MaxUint8 || f != math.Trunc(f) {
			return cty.NilVal, fmt.Errorf("%v is not a byte", f)
		}
	}
	return out, nil
}

func translateNode(ctx context.Context, file string, n *schema.Node) (*config.Node, error) {
	logger := ctxlog.FromContext(ctx)
	out := &config.Node{
		Patch:  n.Patch,
		Name:   n.Name,
		Inputs: make(map[string]config.Input),
		Source: file,
	}
	if n.ID != nil {
		if *n.ID < 0 || *n.ID > math.MaxUint32 {
			return nil, fmt.Errorf("%s: node %q: id %d out of range", file, n.Name, *n.ID)
		}
		id := node.ID(*n.ID)
		out.ID = &id
	}
	if n.Inputs == nil {
		return out, nil
	}

	attrs, diags := n.Inputs.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: node %q inputs: %w", file, n.Name, diags)
	}
	for key, attr := range attrs {
		in, err := translateInput(attr)
		if err != nil {
			return nil, fmt.Errorf("%s: node %q input %s: %w", file, n.Name, key, err)
		}
		logger.Debug("Translated node input.", "node", n.Name, "input", key, "binding", in.String())
		out.Inputs[key] = in
	}
	return out, nil
}

// translateInput classifies one input attribute as a link, a constant
// reference or a literal.
func translateInput(attr *hcl.Attribute) (config.Input, error) {
	source := attr.Range.String()

	// true, false and null parse as traversals too, so anything without
	// variables is a literal.
	if len(attr.Expr.Variables()) == 0 {
		return translateLiteral(attr.Expr, source)
	}

	if trav, diags := hcl.AbsTraversalForExpr(attr.Expr); !diags.HasErrors() {
		names, err := traversalNames(trav)
		if err != nil {
			return config.Input{}, err
		}
		switch {
		case names[0] == "node" && len(names) == 3:
			in := config.Link(names[1], names[2])
			in.Source = source
			return in, nil
		case names[0] == "constant" && len(names) == 2:
			in := config.Ref(names[1])
			in.Source = source
			return in, nil
		}
		return config.Input{}, fmt.Errorf("unsupported reference %q: expected node.<name>.<pin> or constant.<name>", strings.Join(names, "."))
	}

	return config.Input{}, fmt.Errorf("unsupported expression: expected a literal, node.<name>.<pin> or constant.<name>")
}

func translateLiteral(expr hcl.Expression, source string) (config.Input, error) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return config.Input{}, diags
	}
	if v.IsNull() {
		return config.Input{}, fmt.Errorf("literal must not be null")
	}
	in := config.Literal(v)
	in.Source = source
	return in, nil
}

func traversalNames(trav hcl.Traversal) ([]string, error) {
	names := make([]string, 0, len(trav))
	for _, step := range trav {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			names = append(names, s.Name)
		case hcl.TraverseAttr:
			names = append(names, s.Name)
		default:
			return nil, fmt.Errorf("unsupported traversal step %T in reference", step)
		}
	}
	return names, nil
}
