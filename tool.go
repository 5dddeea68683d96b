package gorevolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/njchilds90/gorevolve/metrics"
	"github.com/njchilds90/gorevolve/solid"
	"github.com/njchilds90/gorevolve/symbolic"
	"github.com/njchilds90/gorevolve/validate"
)

// ============================================================
// Tool API
// ============================================================

// ToolRequest is one tool invocation. Function parameters may be given
// as strings or as expression trees in the symbolic JSON form.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse carries the result of a tool call. Code is set for
// validation failures; Error is then localized.
type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
	Code   string      `json:"code,omitempty"`
}

// HandleToolCall runs req on an Engine with the default configuration.
func HandleToolCall(req ToolRequest) ToolResponse {
	return Default().HandleToolCall(req)
}

// HandleToolCall dispatches req to the matching engine operation.
func (e *Engine) HandleToolCall(req ToolRequest) ToolResponse {
	resp := e.handleTool(req)
	result := "ok"
	if resp.Error != "" {
		result = "error"
	}
	if _, known := toolNames[req.Tool]; !known {
		req.Tool = "unknown"
	}
	metrics.ToolCalls.WithLabelValues(req.Tool, result).Inc()
	return resp
}

func (e *Engine) handleTool(req ToolRequest) ToolResponse {
	getExpr := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		switch val := v.(type) {
		case string:
			return val, nil
		case map[string]interface{}:
			ex, err := symbolic.FromJSON(val)
			if err != nil {
				return "", err
			}
			return ex.String(), nil
		}
		return "", fmt.Errorf("param %s must be a string or expression object", key)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getNumber := func(key string) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case json.Number:
			return n.Float64()
		}
		return 0, fmt.Errorf("param %s must be a number", key)
	}
	getBounds := func() (float64, float64, error) {
		a, err := getNumber("lower")
		if err != nil {
			return 0, 0, err
		}
		b, err := getNumber("upper")
		if err != nil {
			return 0, 0, err
		}
		return a, b, nil
	}
	fail := func(err error) ToolResponse {
		var ve *validate.Error
		if errors.As(err, &ve) {
			msg := ve.Message(e.locale)
			if ve.Detail != "" {
				msg += ": " + ve.Detail
			}
			return ToolResponse{Error: msg, Code: string(ve.Code)}
		}
		return ToolResponse{Error: err.Error()}
	}
	respondExpr := func(s string) ToolResponse {
		resp := ToolResponse{Result: s, String: s}
		if ex, err := symbolic.Parse(s); err == nil {
			resp.LaTeX = ex.LaTeX()
		}
		return resp
	}
	respondNumber := func(v float64) ToolResponse {
		return ToolResponse{Result: v, String: fmt.Sprintf("%g", v)}
	}
	respondPoints := func(xs []float64) ToolResponse {
		strs := make([]string, len(xs))
		for i, x := range xs {
			strs[i] = fmt.Sprintf("%g", x)
		}
		return ToolResponse{Result: xs, String: strings.Join(strs, ", ")}
	}

	switch req.Tool {
	case "validate":
		fn, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		r := e.Validate(fn)
		if !r.Valid {
			resp := fail(r.Err)
			resp.Result = r
			return resp
		}
		resp := respondExpr(r.Canonical)
		resp.Result = r
		return resp

	case "derive", "derive2":
		fn, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		derive := e.Derive
		if req.Tool == "derive2" {
			derive = e.Derive2
		}
		d, err := derive(fn)
		if err != nil {
			return fail(err)
		}
		return respondExpr(d)

	case "evaluate":
		fn, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		x, err := getNumber("x")
		if err != nil {
			return fail(err)
		}
		v, err := e.Evaluate(fn, x)
		if err != nil {
			return fail(err)
		}
		return respondNumber(v)

	case "integrate":
		fn, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		a, b, err := getBounds()
		if err != nil {
			return fail(err)
		}
		v, err := e.Integrate(fn, a, b)
		if err != nil {
			return fail(err)
		}
		return respondNumber(v)

	case "compute_all":
		fn, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		a, b, err := getBounds()
		if err != nil {
			return fail(err)
		}
		res, err := e.ComputeAll(fn, a, b)
		if err != nil {
			return fail(err)
		}
		resp := ToolResponse{
			Result: res,
			String: fmt.Sprintf("arc length %g, surface area %g, volume %g", res.ArcLength, res.SurfaceArea, res.Volume),
			Error:  res.Error,
		}
		if ex, err := symbolic.Parse(res.Function); err == nil {
			resp.LaTeX = ex.LaTeX()
		}
		return resp

	case "area_between":
		f1, err := getExpr("f1")
		if err != nil {
			return fail(err)
		}
		f2, err := getExpr("f2")
		if err != nil {
			return fail(err)
		}
		a, b, err := getBounds()
		if err != nil {
			return fail(err)
		}
		v, err := e.AreaBetween(f1, f2, a, b)
		if err != nil {
			return fail(err)
		}
		return respondNumber(v)

	case "critical_points", "inflection_points":
		fn, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		find := e.CriticalPoints
		if req.Tool == "inflection_points" {
			find = e.InflectionPoints
		}
		xs, err := find(fn)
		if err != nil {
			return fail(err)
		}
		return respondPoints(xs)

	case "concavity":
		fn, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		x, err := getNumber("x")
		if err != nil {
			return fail(err)
		}
		c, err := e.Concavity(fn, x)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: c, String: string(c)}

	case "monotonicity":
		fn, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		x, err := getNumber("x")
		if err != nil {
			return fail(err)
		}
		m, err := e.Monotonicity(fn, x)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: m, String: string(m)}

	case "solid":
		fn, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		a, b, err := getBounds()
		if err != nil {
			return fail(err)
		}
		steps := 0
		if _, ok := req.Params["steps"]; ok {
			n, err := getNumber("steps")
			if err != nil {
				return fail(err)
			}
			steps = int(n)
			if steps < 2 {
				return fail(fmt.Errorf("%w: steps must be at least 2, got %d", solid.ErrInvalidSample, steps))
			}
		}
		p, err := e.Solid(fn, a, b, steps)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{
			Result: p,
			String: fmt.Sprintf("%dx%d surface, max radius %g", len(p.X), len(p.Theta), p.MaxRadius()),
		}

	case "convert_units":
		kind, err := getString("kind")
		if err != nil {
			return fail(err)
		}
		v, err := getNumber("value")
		if err != nil {
			return fail(err)
		}
		from, err := getString("from")
		if err != nil {
			return fail(err)
		}
		to, err := getString("to")
		if err != nil {
			return fail(err)
		}
		out, err := ConvertUnits(UnitKind(kind), v, from, to)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: out, String: fmt.Sprintf("%g %s", out, to)}

	case "presets":
		ps := Presets()
		names := make([]string, len(ps))
		for i, p := range ps {
			names[i] = p.Name + ": " + p.Function
		}
		return ToolResponse{Result: ps, String: strings.Join(names, ", ")}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ============================================================
// MCP spec
// ============================================================

var toolSpecs = []map[string]interface{}{
	ts("validate", "Validate and canonicalize f(x)", []string{"expr"}, map[string]string{"expr": "string"}),
	ts("derive", "First derivative d/dx", []string{"expr"}, map[string]string{"expr": "string"}),
	ts("derive2", "Second derivative d²/dx²", []string{"expr"}, map[string]string{"expr": "string"}),
	ts("evaluate", "Evaluate f at x", []string{"expr", "x"}, map[string]string{"expr": "string", "x": "number"}),
	ts("integrate", "Fixed-step numerical ∫_lower^upper f dx", []string{"expr", "lower", "upper"}, map[string]string{"expr": "string", "lower": "number", "upper": "number"}),
	ts("compute_all", "Arc length, surface area and volume of revolution about the x-axis", []string{"expr", "lower", "upper"}, map[string]string{"expr": "string", "lower": "number", "upper": "number"}),
	ts("area_between", "Area between two curves", []string{"f1", "f2", "lower", "upper"}, map[string]string{"f1": "string", "f2": "string", "lower": "number", "upper": "number"}),
	ts("critical_points", "Points where f'(x) ≈ 0 on the scan domain", []string{"expr"}, map[string]string{"expr": "string"}),
	ts("inflection_points", "Points where f''(x) ≈ 0 on the scan domain", []string{"expr"}, map[string]string{"expr": "string"}),
	ts("concavity", "Concavity of f at x (up, down, none)", []string{"expr", "x"}, map[string]string{"expr": "string", "x": "number"}),
	ts("monotonicity", "Monotonicity of f at x (increasing, decreasing, constant)", []string{"expr", "x"}, map[string]string{"expr": "string", "x": "number"}),
	ts("solid", "Sample the surface of revolution. Optional: steps (integer >= 2)", []string{"expr", "lower", "upper"}, map[string]string{"expr": "string", "lower": "number", "upper": "number", "steps": "integer"}),
	ts("convert_units", "Convert a length, area or volume", []string{"kind", "value", "from", "to"}, map[string]string{"kind": "string", "value": "number", "from": "string", "to": "string"}),
	ts("presets", "List the example functions", []string{}, map[string]string{}),
	ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
}

var toolNames = func() map[string]struct{} {
	m := make(map[string]struct{}, len(toolSpecs))
	for _, t := range toolSpecs {
		m[t["name"].(string)] = struct{}{}
	}
	return m
}()

// MCPToolSpec returns the JSON schema of every tool.
func MCPToolSpec() string {
	spec := map[string]interface{}{"tools": toolSpecs}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
