package symbolic

import (
	"errors"
	"fmt"
)

// ErrDifferentiation is wrapped by every failure of Derive and Derive2.
var ErrDifferentiation = errors.New("symbolic: differentiation failed")

// Differentiator turns an expression string into the string form of its
// derivative with respect to x. Implementations must be safe for
// concurrent use.
type Differentiator interface {
	Derive(expr string) (string, error)
}

// Symbolic differentiates by parsing into a tree and applying the sum,
// product, power and chain rules.
type Symbolic struct{}

var _ Differentiator = Symbolic{}

func (Symbolic) Derive(expr string) (string, error) { return Derive(expr) }

// Derive returns d/dx of expr in canonical ASCII form.
func Derive(expr string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("%w: %v", ErrDifferentiation, r)
		}
	}()
	e, perr := Parse(expr)
	if perr != nil {
		return "", fmt.Errorf("%w: %w", ErrDifferentiation, perr)
	}
	return e.Diff(Var).Simplify().String(), nil
}

// Derive2 is the derivative of the derivative.
func Derive2(expr string) (string, error) {
	d, err := Derive(expr)
	if err != nil {
		return "", err
	}
	return Derive(d)
}

// DiffExpr differentiates an already parsed tree.
func DiffExpr(e Expr) (out Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrDifferentiation, r)
		}
	}()
	return e.Diff(Var).Simplify(), nil
}
