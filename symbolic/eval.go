package symbolic

import (
	"errors"
	"fmt"
	"math"
)

// ErrUndefined is wrapped by every EvalError: the expression has no real
// value at the requested point.
var ErrUndefined = errors.New("symbolic: expression undefined")

// EvalError reports a domain violation during float evaluation.
type EvalError struct {
	Op     string
	Arg    float64
	Reason string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("symbolic: %s undefined at %g: %s", e.Op, e.Arg, e.Reason)
}

func (e *EvalError) Unwrap() error { return ErrUndefined }

// finite turns NaN and ±Inf results into an EvalError.
func finite(op string, arg, v float64) (float64, error) {
	switch {
	case math.IsNaN(v):
		return 0, &EvalError{Op: op, Arg: arg, Reason: "not a real number"}
	case math.IsInf(v, 0):
		return 0, &EvalError{Op: op, Arg: arg, Reason: "result is infinite"}
	}
	return v, nil
}

// EvalAt evaluates e with x bound to v.
func EvalAt(e Expr, v float64) (float64, error) { return e.Eval(At(v)) }
