package cli

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// parseDatasetParams reads each value as an HCL literal so numbers and
// booleans keep their type. A value that is not a constant expression, such
// as a bare path, is taken as a string.
func parseDatasetParams(raw map[string]string) (map[string]cty.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]cty.Value, len(raw))
	for k, v := range raw {
		if k == "" {
			return nil, fmt.Errorf("dataset param %q has an empty key", k+"="+v)
		}
		expr, diags := hclsyntax.ParseExpression([]byte(v), k, hcl.InitialPos)
		if diags.HasErrors() {
			out[k] = cty.StringVal(v)
			continue
		}
		val, diags := expr.Value(nil)
		if diags.HasErrors() || !val.IsWhollyKnown() {
			out[k] = cty.StringVal(v)
			continue
		}
		out[k] = val
	}
	return out, nil
}
