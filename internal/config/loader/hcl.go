package loader

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// decodeHCL reads HCL native syntax. Top-level attributes are global keys
// and each block becomes a section named by its type and labels joined
// with dots. Expressions are evaluated without variables or functions.
func decodeHCL(source string, data []byte) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, source)
	if diags.HasErrors() {
		return nil, hclError(source, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, &ParseError{Path: source, Message: "unexpected HCL body type"}
	}
	return hclBody(source, body)
}

func hclBody(source string, body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, hclError(source, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, &ParseError{
				Path:    source,
				Line:    attr.SrcRange.Start.Line,
				Column:  attr.SrcRange.Start.Column,
				Message: fmt.Sprintf("attribute %s: %v", name, err),
				Err:     err,
			}
		}
		out[name] = native
	}

	for _, block := range body.Blocks {
		name := strings.Join(append([]string{block.Type}, block.Labels...), ".")
		inner, err := hclBody(source, block.Body)
		if err != nil {
			return nil, err
		}
		if existing, ok := out[name].(map[string]any); ok {
			out[name] = DeepMerge(existing, inner)
			continue
		}
		out[name] = inner
	}

	return out, nil
}

// ctyToNative converts a cty value to the tree representation. Numbers
// keep full precision as text.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		return number(v.AsBigFloat().Text('g', -1)), nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		list := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, native)
		}
		return list, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}

func hclError(source string, diags hcl.Diagnostics) error {
	perr := &ParseError{
		Path:    source,
		Message: diags.Error(),
		Err:     diags,
	}
	for _, d := range diags {
		if d.Severity == hcl.DiagError && d.Subject != nil {
			perr.Line = d.Subject.Start.Line
			perr.Column = d.Subject.Start.Column
			perr.Message = d.Summary
			if d.Detail != "" {
				perr.Message += ": " + d.Detail
			}
			break
		}
	}
	return perr
}
