// Package scan locates critical and inflection points by sampling the
// first and second derivatives on a fixed grid, and classifies
// concavity and monotonicity at a point.
package scan

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/njchilds90/gorevolve/evaluate"
	"github.com/njchilds90/gorevolve/metrics"
	"github.com/njchilds90/gorevolve/symbolic"
)

// Defaults applied to zero-valued Scanner fields.
const (
	DefaultMin       = -10.0
	DefaultMax       = 10.0
	DefaultStep      = 0.1
	DefaultTolerance = 0.01
)

// bisectTolerance is the bracket width at which Bisection mode stops.
const bisectTolerance = 1e-9

// Mode selects how zeros of a derivative are detected.
type Mode int

const (
	// Threshold reports every sample where |d(x)| < Tolerance.
	Threshold Mode = iota
	// Bisection refines each sign change between adjacent samples.
	Bisection
)

func (m Mode) String() string {
	switch m {
	case Threshold:
		return "threshold"
	case Bisection:
		return "bisection"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a config name to a Mode. Empty selects Threshold.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "threshold":
		return Threshold, nil
	case "bisection":
		return Bisection, nil
	}
	return 0, fmt.Errorf("scan: unknown mode %q", s)
}

type Concavity string

const (
	ConcaveUp   Concavity = "up"
	ConcaveDown Concavity = "down"
	ConcaveNone Concavity = "none"
)

type Monotonicity string

const (
	Increasing Monotonicity = "increasing"
	Decreasing Monotonicity = "decreasing"
	Constant   Monotonicity = "constant"
)

type Kind string

const (
	Critical   Kind = "critical"
	Inflection Kind = "inflection"
)

// Point is a reported location, rounded to two decimals.
type Point struct {
	X    float64 `json:"x"`
	Kind Kind    `json:"kind"`
}

// Domain is the closed sampling interval.
type Domain struct {
	Min, Max float64
}

// Scanner samples derivatives over Domain. The zero value scans [-10, 10]
// in steps of 0.1 with tolerance 0.01.
type Scanner struct {
	Evaluator      evaluate.Evaluator
	Differentiator symbolic.Differentiator
	Domain         Domain
	Step           float64
	Tolerance      float64
	Mode           Mode
	Logger         *slog.Logger
}

func (s *Scanner) evaluator() evaluate.Evaluator {
	if s.Evaluator == nil {
		return evaluate.Tree{}
	}
	return s.Evaluator
}

func (s *Scanner) differentiator() symbolic.Differentiator {
	if s.Differentiator == nil {
		return symbolic.Symbolic{}
	}
	return s.Differentiator
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Scanner) domain() Domain {
	if s.Domain == (Domain{}) {
		return Domain{Min: DefaultMin, Max: DefaultMax}
	}
	return s.Domain
}

func (s *Scanner) step() float64 {
	if s.Step <= 0 {
		return DefaultStep
	}
	return s.Step
}

func (s *Scanner) tolerance() float64 {
	if s.Tolerance <= 0 {
		return DefaultTolerance
	}
	return s.Tolerance
}

// Samples returns the grid Min + i*Step, i = 0..n, computed from the index
// so the last sample lands on Max.
func (s *Scanner) Samples() []float64 {
	d, step := s.domain(), s.step()
	n := int(math.Round((d.Max - d.Min) / step))
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, d.Min+float64(i)*step)
	}
	return out
}

// CriticalPoints returns the zeros of f'. Failures yield no points.
func (s *Scanner) CriticalPoints(fn string) []float64 {
	d, ok := s.derive(fn, 1)
	if !ok {
		return nil
	}
	return s.zeros(fn, d)
}

// InflectionPoints returns the zeros of f''. Failures yield no points.
func (s *Scanner) InflectionPoints(fn string) []float64 {
	d2, ok := s.derive(fn, 2)
	if !ok {
		return nil
	}
	return s.zeros(fn, d2)
}

// Points lists critical points followed by inflection points.
func (s *Scanner) Points(fn string) []Point {
	var out []Point
	for _, x := range s.CriticalPoints(fn) {
		out = append(out, Point{X: x, Kind: Critical})
	}
	for _, x := range s.InflectionPoints(fn) {
		out = append(out, Point{X: x, Kind: Inflection})
	}
	return out
}

// Concavity classifies the sign of f''(x).
func (s *Scanner) Concavity(fn string, x float64) Concavity {
	v, ok := s.derivativeAt(fn, 2, x)
	tol := s.tolerance()
	switch {
	case !ok:
		return ConcaveNone
	case v > tol:
		return ConcaveUp
	case v < -tol:
		return ConcaveDown
	}
	return ConcaveNone
}

// Monotonicity classifies the sign of f'(x).
func (s *Scanner) Monotonicity(fn string, x float64) Monotonicity {
	v, ok := s.derivativeAt(fn, 1, x)
	tol := s.tolerance()
	switch {
	case !ok:
		return Constant
	case v > tol:
		return Increasing
	case v < -tol:
		return Decreasing
	}
	return Constant
}

func (s *Scanner) derive(fn string, order int) (string, bool) {
	d := fn
	for i := 0; i < order; i++ {
		next, err := s.differentiator().Derive(d)
		if err != nil {
			s.fail("differentiation failed", fn, err, "order", order)
			return "", false
		}
		d = next
	}
	return d, true
}

func (s *Scanner) derivativeAt(fn string, order int, x float64) (float64, bool) {
	d, ok := s.derive(fn, order)
	if !ok {
		return 0, false
	}
	v, err := s.evaluator().Evaluate(d, x)
	if err != nil {
		s.fail("derivative undefined", fn, err, "order", order, "x", x)
		return 0, false
	}
	return v, true
}

func (s *Scanner) zeros(fn, d string) []float64 {
	f, err := s.evaluator().Compile(d)
	if err != nil {
		s.fail("derivative not evaluable", fn, err, "derivative", d)
		return nil
	}
	if s.Mode == Bisection {
		return s.bisectZeros(f)
	}
	tol := s.tolerance()
	var out []float64
	for _, x := range s.Samples() {
		v, err := f(x)
		if err != nil {
			continue
		}
		if math.Abs(v) < tol {
			out = append(out, Round2(x))
		}
	}
	return out
}

// bisectZeros keeps exact zero samples and bisects every sign change
// between adjacent defined samples.
func (s *Scanner) bisectZeros(f evaluate.Func) []float64 {
	var out []float64
	last := math.NaN()
	add := func(x float64) {
		r := Round2(x)
		if math.IsNaN(last) || r != last {
			out = append(out, r)
			last = r
		}
	}

	var prevX, prevV float64
	prevOK := false
	for _, x := range s.Samples() {
		v, err := f(x)
		if err != nil {
			prevOK = false
			continue
		}
		if v == 0 {
			add(x)
			prevOK = false
			continue
		}
		if prevOK && (prevV < 0) != (v < 0) {
			if root, ok := bisect(f, prevX, x, prevV, s.tolerance()); ok {
				add(root)
			}
		}
		prevX, prevV, prevOK = x, v, true
	}
	return out
}

// bisect narrows a sign change to bisectTolerance. A bracket that
// converges onto a pole rather than a zero is rejected by the final
// |f(m)| <= tol check.
func bisect(f evaluate.Func, a, b, fa, tol float64) (float64, bool) {
	m := (a + b) / 2
	for iter := 0; iter < 128; iter++ {
		m = (a + b) / 2
		fm, err := f(m)
		if err != nil {
			return 0, false
		}
		if fm == 0 {
			return m, true
		}
		if b-a <= bisectTolerance {
			return m, math.Abs(fm) <= tol
		}
		if (fa < 0) != (fm < 0) {
			b = m
		} else {
			a, fa = m, fm
		}
	}
	return m, false
}

func (s *Scanner) fail(msg, fn string, err error, attrs ...any) {
	s.logger().Warn(msg, append([]any{"function", fn, "error", err}, attrs...)...)
	metrics.SoftFailures.WithLabelValues(metrics.StageScan).Inc()
}

// Round2 rounds to two decimals and folds -0 into 0.
func Round2(x float64) float64 {
	r := math.Round(x*100) / 100
	if r == 0 {
		return 0
	}
	return r
}
