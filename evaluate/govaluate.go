package evaluate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/njchilds90/gorevolve/symbolic"
)

// Govaluate parses with the symbolic grammar, then hands a fully
// parenthesized rendering of the tree to govaluate. Functions are
// registered with the same domain checks as the tree walker.
type Govaluate struct{}

var govaluateFuncs = func() map[string]govaluate.ExpressionFunction {
	fns := make(map[string]govaluate.ExpressionFunction)
	for _, name := range symbolic.FuncNames() {
		name := name
		fns[name] = func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s: want 1 argument, got %d", name, len(args))
			}
			v, err := toFloat(args[0])
			if err != nil {
				return nil, err
			}
			return symbolic.EvalFunc(name, v)
		}
	}
	return fns
}()

func (Govaluate) Compile(expr string) (Func, error) {
	tree, err := symbolic.Parse(expr)
	if err != nil {
		return nil, err
	}
	src, err := Render(tree)
	if err != nil {
		return nil, err
	}
	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(src, govaluateFuncs)
	if err != nil {
		return nil, fmt.Errorf("evaluate: govaluate rejected %q: %w", src, err)
	}
	return func(x float64) (float64, error) {
		params := map[string]interface{}{"x": x, "pi": math.Pi, "e": math.E}
		out, err := parsed.Evaluate(params)
		if err != nil {
			var ee *symbolic.EvalError
			if errors.As(err, &ee) {
				return 0, ee
			}
			return 0, &symbolic.EvalError{Op: "govaluate", Arg: x, Reason: err.Error()}
		}
		v, err := toFloat(out)
		if err != nil {
			return 0, &symbolic.EvalError{Op: "govaluate", Arg: x, Reason: err.Error()}
		}
		switch {
		case math.IsNaN(v):
			return 0, &symbolic.EvalError{Op: "govaluate", Arg: x, Reason: "not a real number"}
		case math.IsInf(v, 0):
			return 0, &symbolic.EvalError{Op: "govaluate", Arg: x, Reason: "result is infinite"}
		}
		return v, nil
	}, nil
}

func (g Govaluate) Evaluate(expr string, x float64) (float64, error) {
	f, err := g.Compile(expr)
	if err != nil {
		return 0, err
	}
	return f(x)
}

// Render writes e in govaluate syntax: every compound node is wrapped in
// parentheses and powers use **.
func Render(e symbolic.Expr) (string, error) {
	var sb strings.Builder
	if err := render(&sb, e); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func render(sb *strings.Builder, e symbolic.Expr) error {
	switch v := e.(type) {
	case *symbolic.Num:
		sb.WriteString("(" + strconv.FormatFloat(v.Float64(), 'f', -1, 64) + ")")
	case *symbolic.Sym:
		sb.WriteString(v.Name())
	case *symbolic.Const:
		sb.WriteString(v.Name())
	case *symbolic.Add:
		return renderJoined(sb, v.Terms(), " + ")
	case *symbolic.Mul:
		return renderJoined(sb, v.Factors(), " * ")
	case *symbolic.Pow:
		return renderJoined(sb, []symbolic.Expr{v.Base(), v.ExpExpr()}, " ** ")
	case *symbolic.Func:
		sb.WriteString(v.FuncName() + "(")
		if err := render(sb, v.Arg()); err != nil {
			return err
		}
		sb.WriteString(")")
	default:
		return fmt.Errorf("evaluate: cannot render %T", e)
	}
	return nil
}

func renderJoined(sb *strings.Builder, parts []symbolic.Expr, sep string) error {
	sb.WriteString("(")
	for i, p := range parts {
		if i > 0 {
			sb.WriteString(sep)
		}
		if err := render(sb, p); err != nil {
			return err
		}
	}
	sb.WriteString(")")
	return nil
}

func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	}
	return 0, fmt.Errorf("non-numeric value %v (%T)", v, v)
}
