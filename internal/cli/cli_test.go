package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/partsegnet/internal/archspec"
	"github.com/specialistvlad/partsegnet/internal/partseg"
	"github.com/specialistvlad/partsegnet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), &out, &errOut, args)
	if os.Getenv("PARTSEGNET_TEST_LOGS") == "true" {
		t.Logf("--- stderr for %s ---\n%s", t.Name(), errOut.String())
	}
	return out.String(), errOut.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "want *ExitError, got %T: %v", err, err)
	return exitErr.Code
}

func TestExecute_ExitCodes(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "help", args: []string{"--help"}},
		{name: "unknown flag", args: []string{"generate", "--no-such-flag"}, wantCode: ExitUsage, wantErr: "unknown flag"},
		{name: "unknown command", args: []string{"frobnicate"}, wantCode: ExitUsage, wantErr: "unknown command"},
		{name: "bad log level", args: []string{"categories", "--log-level", "loud"}, wantCode: ExitUsage, wantErr: "log level"},
		{name: "bad log format", args: []string{"categories", "--log-format", "xml"}, wantCode: ExitUsage, wantErr: "log format"},
		{name: "build without paths", args: []string{"build"}, wantCode: ExitUsage},
		{name: "inspect without file", args: []string{"inspect"}, wantCode: ExitUsage},
		{name: "generate with args", args: []string{"generate", "extra"}, wantCode: ExitUsage},
		{name: "bad arch", args: []string{"generate", "--arch", "64__128"}, wantCode: ExitFailure, wantErr: "archspec"},
		{name: "inspect missing file", args: []string{"inspect", "/no/such/file.prototxt"}, wantCode: ExitFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			assert.Equal(t, tc.wantCode, exitCode(t, err))
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestGenerate_Stdout(t *testing.T) {
	out, _, err := execute(t, "generate", "--arch", "c64_b128", "--lattice", "x*4_y*4_z*4", "--skip", "2_1_a", "--category", "chair")
	require.NoError(t, err)

	ctx, _ := testutil.LogContext(t)
	opts := partseg.DefaultOptions()
	opts.Arch = "c64_b128"
	opts.Lattices = []string{"x*4_y*4_z*4"}
	opts.Skips = []string{"2_1_a"}
	opts.Category = "chair"
	net, err := partseg.Build(ctx, opts)
	require.NoError(t, err)

	assert.Equal(t, string(net.Bytes()), out)
}

func TestGenerate_Files(t *testing.T) {
	dir := t.TempDir()
	proto := filepath.Join(dir, "nets", "all.prototxt")
	page := filepath.Join(dir, "nets", "all.html")

	out, stderr, err := execute(t, "generate", "--name", "all", "--combined", "--renorm-class", "--renorm-head",
		"--arch", "32_64", "-o", proto, "--render", page, "--log-format", "json")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, `"level":"INFO"`)
	assert.Contains(t, stderr, "Network generated.")

	got, err := os.ReadFile(proto)
	require.NoError(t, err)
	assert.Contains(t, string(got), "name: \"all\"\n")
	assert.Contains(t, string(got), `layer: "ProbRenorm"`)
	assert.FileExists(t, page)
}

func TestGenerate_InvalidCombination(t *testing.T) {
	_, _, err := execute(t, "generate", "--combined", "--renorm-head")
	assert.Equal(t, ExitFailure, exitCode(t, err))
	assert.ErrorIs(t, err, partseg.ErrInvalidOptions)
}

func TestGenerate_BadArchUnwraps(t *testing.T) {
	_, _, err := execute(t, "generate", "--arch", "x64")
	assert.ErrorIs(t, err, archspec.ErrSyntax)
}

func TestBuild(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"a.hcl":  `network "a" { arch = "16" }`,
		"b.yaml": "networks:\n  - name: b\n    arch: '32'\n",
	})

	out, _, err := execute(t, "build", dir, "--network", "b")
	require.NoError(t, err)
	assert.Contains(t, out, "name: \"b\"\n")
	assert.NotContains(t, out, "name: \"a\"\n")

	_, _, err = execute(t, "build", filepath.Join(dir, "a.hcl"), "-n", "missing")
	assert.Equal(t, ExitFailure, exitCode(t, err))
}

func TestInspect_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	proto := filepath.Join(dir, "net.prototxt")
	_, _, err := execute(t, "generate", "--arch", "16", "--deploy", "-o", proto)
	require.NoError(t, err)

	out, _, err := execute(t, "inspect", proto)
	require.NoError(t, err)
	assert.Regexp(t, `0\s+data\s+Input`, out)
	assert.Contains(t, out, "Softmax")
}

func TestCategories(t *testing.T) {
	out, _, err := execute(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "03790512")
	assert.Contains(t, out, "motorbike")
}

func TestParseDatasetParams(t *testing.T) {
	got, err := parseDatasetParams(map[string]string{
		"jitter_xyz": "0.01",
		"shuffle":    "true",
		"root":       "/data/shapenet",
		"split":      "val",
		"quoted":     `"a b"`,
	})
	require.NoError(t, err)

	want := map[string]cty.Value{
		"jitter_xyz": cty.MustParseNumberVal("0.01"),
		"shuffle":    cty.True,
		"root":       cty.StringVal("/data/shapenet"),
		"split":      cty.StringVal("val"),
		"quoted":     cty.StringVal("a b"),
	}
	require.Len(t, got, len(want))
	for k, v := range want {
		assert.True(t, v.RawEquals(got[k]), "%s: got %#v", k, got[k])
	}

	none, err := parseDatasetParams(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}
