// Package evaluate computes float64 values of expression strings at a
// point. Every backend reports undefined points as errors wrapping
// symbolic.ErrUndefined and never returns a NaN or an infinity.
package evaluate

import (
	"fmt"

	"github.com/njchilds90/gorevolve/symbolic"
)

// Func is a compiled single-variable function.
type Func func(x float64) (float64, error)

// Evaluator compiles and evaluates expressions in x. Implementations hold
// no per-call state and are safe for concurrent use.
type Evaluator interface {
	Compile(expr string) (Func, error)
	Evaluate(expr string, x float64) (float64, error)
}

// Backend names accepted by New.
const (
	BackendTree      = "tree"
	BackendGovaluate = "govaluate"
)

// New returns the named backend. An empty name selects the tree walker.
func New(backend string) (Evaluator, error) {
	switch backend {
	case "", BackendTree:
		return Tree{}, nil
	case BackendGovaluate:
		return Govaluate{}, nil
	}
	return nil, fmt.Errorf("evaluate: unknown backend %q", backend)
}

// Tree walks the parsed symbolic tree directly.
type Tree struct{}

func (Tree) Compile(expr string) (Func, error) {
	e, err := symbolic.Parse(expr)
	if err != nil {
		return nil, err
	}
	return func(x float64) (float64, error) { return e.Eval(symbolic.At(x)) }, nil
}

func (t Tree) Evaluate(expr string, x float64) (float64, error) {
	f, err := t.Compile(expr)
	if err != nil {
		return 0, err
	}
	return f(x)
}
