// Package hclutil holds small helpers shared by code that decodes HCL.
package hclutil

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/partsegnet/internal/ctxlog"
)

// FindUniqueBlock searches a slice of blocks for all blocks of a given type.
// It returns a diagnostic error for every repeat after the first. If no block
// is found, it returns nil.
func FindUniqueBlock(blocks hcl.Blocks, typeName string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type != typeName {
			continue
		}
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + typeName + "\" block",
				Detail:   "Only one \"" + typeName + "\" block is allowed; the first is at " + found.DefRange.String() + ".",
				Subject:  &block.DefRange,
			})
			continue
		}
		found = block
	}

	return found, diags
}

// IsExprDefined reports whether an optional attribute was present in the
// source. gohcl fills omitted optional hcl.Expression fields with a
// zero-width placeholder, so a nil check is not enough.
func IsExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}
