package gorevolve_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gorevolve"
	"github.com/njchilds90/gorevolve/config"
	"github.com/njchilds90/gorevolve/solid"
	"github.com/njchilds90/gorevolve/symbolic"
)

func call(tool string, params map[string]interface{}) gorevolve.ToolResponse {
	return gorevolve.HandleToolCall(gorevolve.ToolRequest{Tool: tool, Params: params})
}

// exprObject returns the decoded JSON tree of s, as a client would send it.
func exprObject(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	raw, err := symbolic.ToJSON(symbolic.MustParse(s))
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestTool_Derive(t *testing.T) {
	resp := call("derive", map[string]interface{}{"expr": "x^2"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "2*x", resp.String)
	assert.Equal(t, "2 x", resp.LaTeX)

	resp = call("derive", map[string]interface{}{"expr": exprObject(t, "sin(x)")})
	require.Empty(t, resp.Error)
	assert.Equal(t, "cos(x)", resp.String)

	resp = call("derive2", map[string]interface{}{"expr": "x^3"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "6*x", resp.String)
}

func TestTool_Validate(t *testing.T) {
	resp := call("validate", map[string]interface{}{"expr": "x ** 2"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x^2", resp.String)

	resp = call("validate", map[string]interface{}{"expr": "  "})
	assert.Equal(t, "empty_expression", resp.Code)
	assert.Equal(t, "function must not be empty", resp.Error)
}

func TestTool_LocalizedErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Locale = "id"
	e, err := gorevolve.New(cfg)
	require.NoError(t, err)
	resp := e.HandleToolCall(gorevolve.ToolRequest{
		Tool:   "compute_all",
		Params: map[string]interface{}{"expr": "x", "lower": 2.0, "upper": 1.0},
	})
	assert.Equal(t, "inverted_bounds", resp.Code)
	assert.Equal(t, "Batas atas harus lebih besar dari batas bawah", resp.Error)
}

func TestTool_ComputeAll(t *testing.T) {
	resp := call("compute_all", map[string]interface{}{"expr": "x", "lower": 0.0, "upper": 1.0})
	require.Empty(t, resp.Error)
	res, ok := resp.Result.(gorevolve.Result)
	require.True(t, ok)
	assert.Equal(t, "1", res.Derivative)
	assert.InDelta(t, 1.41421, res.ArcLength, 1e-4)
	assert.Equal(t, "x", resp.LaTeX)
}

func TestTool_Numbers(t *testing.T) {
	resp := call("evaluate", map[string]interface{}{"expr": "x^2 + 1", "x": 2})
	require.Empty(t, resp.Error)
	assert.Equal(t, 5.0, resp.Result)

	resp = call("integrate", map[string]interface{}{"expr": "x", "lower": 0.0, "upper": 1.0})
	require.Empty(t, resp.Error)
	assert.InDelta(t, 0.4995, resp.Result.(float64), 1e-9)

	resp = call("area_between", map[string]interface{}{"f1": "x", "f2": "x^2", "lower": 0.0, "upper": 1.0})
	require.Empty(t, resp.Error)
	assert.InDelta(t, 1.0/6, resp.Result.(float64), 0.01)

	resp = call("evaluate", map[string]interface{}{"expr": "ln(x)", "x": -1.0})
	assert.NotEmpty(t, resp.Error)
}

func TestTool_Scan(t *testing.T) {
	resp := call("critical_points", map[string]interface{}{"expr": "x^2"})
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.Result, 0.0)

	resp = call("inflection_points", map[string]interface{}{"expr": "x^3"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "0", resp.String)

	resp = call("concavity", map[string]interface{}{"expr": "-x^2", "x": 0.0})
	assert.Equal(t, "down", resp.String)

	resp = call("monotonicity", map[string]interface{}{"expr": "x", "x": 3.0})
	assert.Equal(t, "increasing", resp.String)
}

func TestTool_Solid(t *testing.T) {
	resp := call("solid", map[string]interface{}{"expr": "x", "lower": 0.0, "upper": 1.0, "steps": 4.0})
	require.Empty(t, resp.Error)
	p, ok := resp.Result.(solid.Profile)
	require.True(t, ok)
	assert.Len(t, p.X, 4)

	resp = call("solid", map[string]interface{}{"expr": "x", "lower": 0.0, "upper": 1.0, "steps": 1.0})
	assert.Contains(t, resp.Error, "steps must be at least 2")
}

func TestTool_ConvertUnitsAndPresets(t *testing.T) {
	resp := call("convert_units", map[string]interface{}{"kind": "length", "value": 1.0, "from": "m", "to": "cm"})
	require.Empty(t, resp.Error)
	assert.InDelta(t, 100.0, resp.Result.(float64), 1e-9)

	resp = call("convert_units", map[string]interface{}{"kind": "length", "value": 1.0, "from": "m", "to": "m2"})
	assert.NotEmpty(t, resp.Error)

	resp = call("presets", nil)
	require.Empty(t, resp.Error)
	assert.Len(t, resp.Result, 12)
}

func TestTool_Errors(t *testing.T) {
	resp := call("derive", map[string]interface{}{})
	assert.Equal(t, "missing param: expr", resp.Error)

	resp = call("derive", map[string]interface{}{"expr": 3.0})
	assert.Contains(t, resp.Error, "must be a string or expression object")

	resp = call("integrate", map[string]interface{}{"expr": "x", "lower": "zero", "upper": 1.0})
	assert.Equal(t, "param lower must be a number", resp.Error)

	resp = call("frobnicate", nil)
	assert.Equal(t, "unknown tool: frobnicate", resp.Error)
}

func TestMCPToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(gorevolve.MCPToolSpec()), &spec))
	names := make([]string, len(spec.Tools))
	for i, tool := range spec.Tools {
		names[i] = tool.Name
	}
	assert.Len(t, names, 15)
	assert.Contains(t, names, "compute_all")
	assert.Contains(t, names, "convert_units")

	resp := call("mcp_spec", nil)
	assert.Equal(t, gorevolve.MCPToolSpec(), resp.Result)
}
