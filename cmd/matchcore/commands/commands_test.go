package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/matchcore/internal/testutil"
)

func testdataPath(t *testing.T, name string) string {
	t.Helper()
	return testutil.Path(t, "internal", "driver", "testdata", name)
}

func execute(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestCheckCommand(t *testing.T) {
	code, stdout, stderr := execute("check", testdataPath(t, "simple.yaml"))
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "case 1: int(n)\n")
	assert.Contains(t, stdout, "exhaustive: yes\n")
}

func TestCheckCommandExitsOnDiagnostics(t *testing.T) {
	code, stdout, stderr := execute("check", testdataPath(t, "duplicate.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "[duplicate-capture]")
	assert.Contains(t, stderr, "Error: pattern diagnostics reported: 1")
}

func TestLowerCommand(t *testing.T) {
	code, stdout, stderr := execute("lower", testdataPath(t, "simple.yaml"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "entry:\n")
	assert.Contains(t, stdout, "exec ints\n")
	assert.Contains(t, stdout, "; join\n")
}

func TestDumpFlag(t *testing.T) {
	_, plain, _ := execute("lower", testdataPath(t, "simple.yaml"))
	code, dumped, stderr := execute("lower", "--dump", testdataPath(t, "simple.yaml"))
	require.Equal(t, 0, code, stderr)
	assert.True(t, len(dumped) > len(plain))
	assert.Contains(t, dumped, "ir.Graph")
}

func TestVerboseFlag(t *testing.T) {
	code, _, stderr := execute("check", "--verbose", testdataPath(t, "simple.yaml"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "config: 11 self-matching")
	assert.Contains(t, stderr, "loaded ")
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matchcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("self_match_types: [builtins.int]\n"), 0o644))

	code, _, stderr := execute("check", "--verbose", "--config", path, testdataPath(t, "simple.yaml"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "config: 1 self-matching")

	code, _, stderr = execute("check", "--config", filepath.Join(dir, "missing.yaml"), testdataPath(t, "simple.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: config: open")
}

func TestMissingFixture(t *testing.T) {
	code, _, stderr := execute("check", "nope.yaml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "[FixtureError]")
}

func TestVersionCommand(t *testing.T) {
	code, stdout, _ := execute("version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "matchcore version dev\n", stdout)
}

func TestCheckCommandSeveralFixtures(t *testing.T) {
	simple := testdataPath(t, "simple.yaml")
	duplicate := testdataPath(t, "duplicate.yaml")
	code, stdout, stderr := execute("check", "-j", "2", simple, duplicate)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "== "+simple+" ==\n")
	assert.Contains(t, stdout, "\n\n== "+duplicate+" ==\n")
	assert.Contains(t, stderr, "Error: pattern diagnostics reported: 1")
}
