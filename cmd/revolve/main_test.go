package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gorevolve"
	"github.com/njchilds90/gorevolve/history"
	"github.com/njchilds90/gorevolve/scan"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd, release := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	require.NoError(t, release())
	return out.String(), err
}

func TestCompute_JSON(t *testing.T) {
	out, err := run(t, "compute", "x", "--lower", "0", "--upper", "1", "--json")
	require.NoError(t, err)
	var res gorevolve.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "1", res.Derivative)
	assert.InDelta(t, 1.41421, res.ArcLength, 1e-4)
	assert.InDelta(t, 4.44288, res.SurfaceArea, 0.01)
}

func TestCompute_Styled(t *testing.T) {
	out, err := run(t, "compute", "x^2", "--upper", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "f(x) = x^2 on [0, 2]")
	assert.Contains(t, out, "2*x")
	assert.Contains(t, out, "volume")
}

func TestCompute_ValidationErrors(t *testing.T) {
	_, err := run(t, "compute", "x", "--lower", "abc")
	require.EqualError(t, err, `bounds must be numbers: "abc"`)

	_, err = run(t, "compute", "x", "--lower", "2", "--upper", "1", "--locale", "id")
	require.EqualError(t, err, "Batas atas harus lebih besar dari batas bawah")

	_, err = run(t, "compute", "")
	require.EqualError(t, err, "function must not be empty")
}

func TestDerive(t *testing.T) {
	out, err := run(t, "derive", "x^3")
	require.NoError(t, err)
	assert.Equal(t, "3*x^2\n", out)

	out, err = run(t, "derive", "x^3", "--second")
	require.NoError(t, err)
	assert.Equal(t, "6*x\n", out)
}

func TestScan(t *testing.T) {
	out, err := run(t, "scan", "x^3", "--json")
	require.NoError(t, err)
	var ps []scan.Point
	require.NoError(t, json.Unmarshal([]byte(out), &ps))
	assert.Contains(t, ps, scan.Point{X: 0, Kind: scan.Inflection})

	out, err = run(t, "scan", "x^2", "--at", "1")
	require.NoError(t, err)
	assert.Equal(t, "at x=1: concave up, increasing\n", out)
}

func TestSolid(t *testing.T) {
	out, err := run(t, "solid", "x", "--points", "8")
	require.NoError(t, err)
	assert.Equal(t, "8 x 8 points, max radius 1.00000\n", out)
}

func TestConvertAndPresets(t *testing.T) {
	out, err := run(t, "convert", "length", "1", "km", "m")
	require.NoError(t, err)
	assert.Equal(t, "1000 m\n", out)

	_, err = run(t, "convert", "length", "1", "km", "parsec")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known: cm, ft")

	out, err = run(t, "presets", "--json")
	require.NoError(t, err)
	var ps []gorevolve.Preset
	require.NoError(t, json.Unmarshal([]byte(out), &ps))
	assert.Len(t, ps, 12)
}

func TestHistory_Persistent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")
	_, err := run(t, "--history", dir, "compute", "x", "--upper", "3")
	require.NoError(t, err)

	out, err := run(t, "--history", dir, "history", "list", "--json")
	require.NoError(t, err)
	var recs []history.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, 3.0, recs[0].UpperBound)

	_, err = run(t, "--history", dir, "history", "clear")
	require.NoError(t, err)
	out, err = run(t, "--history", dir, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no history")
}

func TestBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jobs:
  - function: x
    lower: 0
    upper: 1
  - function: x^2
    lower: 0
    upper: 2
  - function: ""
    lower: 0
    upper: 1
  - function: x
    lower: 1
    upper: 0
`), 0o644))

	out, err := run(t, "batch", path, "--json", "--concurrency", "2")
	require.NoError(t, err)
	var results []batchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 4)
	require.NotNil(t, results[0].Result)
	assert.InDelta(t, 1.41421, results[0].Result.ArcLength, 1e-4)
	require.NotNil(t, results[1].Result)
	assert.Equal(t, "x^2", results[1].Result.Function)
	assert.Equal(t, "function must not be empty", results[2].Error)
	assert.Equal(t, "upper bound must be greater than lower bound", results[3].Error)
}

func TestBatch_Errors(t *testing.T) {
	_, err := run(t, "batch", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs: {"), 0o644))
	_, err = run(t, "batch", path)
	require.Error(t, err)

	_, err = run(t, "batch", path, "--concurrency", "0")
	require.Error(t, err)
}

func TestBatch_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	data := append([]byte("jobs: []\n#"), bytes.Repeat([]byte("x"), maxBatchBytes)...)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	_, err := run(t, "batch", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestRoot_InvalidOverrides(t *testing.T) {
	_, err := run(t, "--evaluator", "mathjs", "presets")
	require.Error(t, err)
	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "presets")
	require.Error(t, err)
}
