package driver_test

import (
	"bytes"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/matchcore/internal/config"
	"martianoff/matchcore/internal/driver"
	"martianoff/matchcore/internal/fixture"
	"martianoff/matchcore/internal/testutil"
	"martianoff/matchcore/matcherr"
)

func testdataPath(t *testing.T, name string) string {
	t.Helper()
	return testutil.Path(t, "internal", "driver", "testdata", name)
}

func TestCheckReport(t *testing.T) {
	res, err := driver.New(nil).Check(testdataPath(t, "simple.yaml"))
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	assert.Nil(t, res.Graph)
	assert.True(t, res.Report.Exhaustive())

	var out bytes.Buffer
	require.NoError(t, driver.WriteReport(&out, res))
	expected := `case 1: int(n)
  subject:  int
  captures: n: int
  rest:     str
case 2: str()
  subject:  str
  rest:     Never
residual: Never
exhaustive: yes
bindings:
  n: int
`
	assert.Equal(t, expected, out.String())
}

func TestLowerSimple(t *testing.T) {
	res, err := driver.New(nil).Lower(testdataPath(t, "simple.yaml"))
	require.NoError(t, err)
	require.NotNil(t, res.Graph)
	assert.Equal(t, []string{"ints", "strs"}, res.Graph.ReachableBodies())
}

func TestDiagnosticsBlockLowering(t *testing.T) {
	p := driver.New(nil)
	res, err := p.Check(testdataPath(t, "duplicate.yaml"))
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, matcherr.KindDuplicateCapture, d.Kind)
	assert.Equal(t, 3, d.Line)
	assert.Equal(t, 45, d.Column)

	var out bytes.Buffer
	require.NoError(t, driver.WriteReport(&out, res))
	assert.Contains(t, out.String(), "diagnostics:\n  3:45 Multiple assignments to name \"d\" in pattern [duplicate-capture]\n")

	res, err = p.Lower(testdataPath(t, "duplicate.yaml"))
	var multi *matcherr.MultiError
	require.True(t, errors.As(err, &multi), "got %v", err)
	assert.Len(t, multi.Errors, 1)
	assert.Nil(t, res.Graph)
}

func TestLowerInvariantError(t *testing.T) {
	p := driver.New(nil)
	res, err := p.Check(testdataPath(t, "dynamic.yaml"))
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)

	_, err = p.Lower(testdataPath(t, "dynamic.yaml"))
	var invariant *matcherr.InvariantError
	assert.True(t, errors.As(err, &invariant), "got %v", err)
}

func TestLoaderErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	p := driver.NewWithLoader(driver.LoaderFunc(func(string) (*fixture.Fixture, error) {
		return nil, boom
	}), nil)
	_, err := p.Check("any.yaml")
	assert.ErrorIs(t, err, boom)
	_, err = p.Lower("any.yaml")
	assert.ErrorIs(t, err, boom)
}

func TestVerboseTracing(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})

	cfg := config.DefaultConfig()
	cfg.Verbose = true
	_, err := driver.New(cfg).Lower(testdataPath(t, "simple.yaml"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "loaded ")
	assert.Contains(t, buf.String(), "checked ")
	assert.Contains(t, buf.String(), "lowered ")
}

func TestCheckAll(t *testing.T) {
	paths := []string{
		testdataPath(t, "simple.yaml"),
		testdataPath(t, "missing.yaml"),
		testdataPath(t, "duplicate.yaml"),
		testdataPath(t, "dynamic.yaml"),
	}
	results, err := driver.New(nil).CheckAll(paths, 3)

	var multi *matcherr.MultiError
	require.True(t, errors.As(err, &multi), "got %v", err)
	require.Len(t, multi.Errors, 1)
	var fixtureErr *matcherr.FixtureError
	assert.True(t, errors.As(multi.Errors[0], &fixtureErr))

	require.Len(t, results, 4)
	assert.Nil(t, results[1])
	assert.Empty(t, results[0].Diagnostics)
	assert.Len(t, results[2].Diagnostics, 1)
	assert.Equal(t, paths[3], results[3].Fixture.Path)
}

func TestCheckAllRecoversPanics(t *testing.T) {
	p := driver.NewWithLoader(driver.LoaderFunc(func(path string) (*fixture.Fixture, error) {
		panic("loader exploded")
	}), nil)
	results, err := p.CheckAll([]string{"a.yaml", "b.yaml"}, 0)
	require.Error(t, err)
	assert.Equal(t, []*driver.Result{nil, nil}, results)

	var panicErr driver.PanicError
	require.True(t, errors.As(err.(*matcherr.MultiError).Errors[0], &panicErr))
	assert.Equal(t, "a.yaml: panic: loader exploded", panicErr.Error())
}
