// Package integrate approximates definite integrals with fixed-step
// composite rules. There is no error estimate and no adaptivity.
package integrate

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/njchilds90/gorevolve/evaluate"
	"github.com/njchilds90/gorevolve/metrics"
)

// DefaultSteps is the subinterval count used when Steps is zero.
const DefaultSteps = 1000

// ErrInvalidInterval is returned for non-finite bounds or a step count
// below one.
var ErrInvalidInterval = errors.New("integrate: invalid interval")

// Rule selects the composite quadrature rule.
type Rule int

const (
	// LeftRiemann sums f(a + i*dx)*dx for i in [0, steps).
	LeftRiemann Rule = iota
	// Trapezoid weights the two end samples by one half.
	Trapezoid
)

func (r Rule) String() string {
	switch r {
	case LeftRiemann:
		return "left_riemann"
	case Trapezoid:
		return "trapezoid"
	}
	return fmt.Sprintf("Rule(%d)", int(r))
}

// ParseRule maps a config name to a Rule. Empty selects LeftRiemann.
func ParseRule(s string) (Rule, error) {
	switch s {
	case "", "left_riemann":
		return LeftRiemann, nil
	case "trapezoid":
		return Trapezoid, nil
	}
	return 0, fmt.Errorf("integrate: unknown rule %q", s)
}

// Integrator evaluates integrands through Evaluator. The zero value uses
// the tree evaluator, the left Riemann rule and DefaultSteps.
type Integrator struct {
	Evaluator evaluate.Evaluator
	Rule      Rule
	Steps     int
	Logger    *slog.Logger
}

func (in *Integrator) evaluator() evaluate.Evaluator {
	if in.Evaluator == nil {
		return evaluate.Tree{}
	}
	return in.Evaluator
}

func (in *Integrator) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.Default()
	}
	return in.Logger
}

func (in *Integrator) steps() int {
	if in.Steps == 0 {
		return DefaultSteps
	}
	return in.Steps
}

// Integrate approximates the integral of expr over [lower, upper]. Any
// failure yields 0 and a logged diagnostic.
func (in *Integrator) Integrate(expr string, lower, upper float64) float64 {
	return in.IntegrateSteps(expr, lower, upper, in.steps())
}

// IntegrateSteps is Integrate with an explicit subinterval count.
func (in *Integrator) IntegrateSteps(expr string, lower, upper float64, steps int) float64 {
	v, err := in.integrate(expr, lower, upper, steps)
	if err != nil {
		in.logger().Warn("integration failed",
			"integrand", expr,
			"lower", lower,
			"upper", upper,
			"steps", steps,
			"error", err)
		metrics.SoftFailures.WithLabelValues(metrics.StageIntegrate).Inc()
		return 0
	}
	return v
}

// IntegrateE is Integrate with the failure returned instead of absorbed.
func (in *Integrator) IntegrateE(expr string, lower, upper float64) (float64, error) {
	return in.integrate(expr, lower, upper, in.steps())
}

func (in *Integrator) integrate(expr string, lower, upper float64, steps int) (float64, error) {
	if steps < 1 {
		return 0, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidInterval, steps)
	}
	if math.IsNaN(lower) || math.IsNaN(upper) || math.IsInf(lower, 0) || math.IsInf(upper, 0) {
		return 0, fmt.Errorf("%w: bounds [%g, %g] must be finite", ErrInvalidInterval, lower, upper)
	}
	f, err := in.evaluator().Compile(expr)
	if err != nil {
		return 0, err
	}
	return Sum(f, lower, upper, steps, in.Rule)
}

// Sum applies rule to a compiled function. The first evaluation failure
// aborts the sum.
func Sum(f evaluate.Func, lower, upper float64, steps int, rule Rule) (float64, error) {
	dx := (upper - lower) / float64(steps)
	sum := 0.0
	switch rule {
	case Trapezoid:
		fa, err := f(lower)
		if err != nil {
			return 0, err
		}
		fb, err := f(upper)
		if err != nil {
			return 0, err
		}
		sum = (fa + fb) / 2
		for i := 1; i < steps; i++ {
			v, err := f(lower + float64(i)*dx)
			if err != nil {
				return 0, err
			}
			sum += v
		}
	default:
		for i := 0; i < steps; i++ {
			v, err := f(lower + float64(i)*dx)
			if err != nil {
				return 0, err
			}
			sum += v
		}
	}
	return sum * dx, nil
}
