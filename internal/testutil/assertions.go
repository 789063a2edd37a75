package testutil

import (
	"strings"
	"testing"

	"github.com/specialistvlad/partsegnet/internal/netspec"
	"github.com/stretchr/testify/require"
)

// AssertLogged checks that the captured log output contains every
// substring, e.g. `msg="Emitted block."` or `index=3`.
func AssertLogged(t *testing.T, logs *SafeBuffer, substrings ...string) {
	t.Helper()
	out := logs.String()
	for _, s := range substrings {
		require.True(t, strings.Contains(out, s), "expected %q in log output:\n%s", s, out)
	}
}

// LayerTypes returns "name:Type" for every layer of n, which keeps layer
// order assertions readable.
func LayerTypes(n *netspec.Net) []string {
	out := make([]string, 0, n.Len())
	for _, l := range n.Layers() {
		out = append(out, l.Name+":"+l.Type)
	}
	return out
}
