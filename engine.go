// Package gorevolve computes the arc length, surface area and volume of
// the solid swept by rotating y = f(x) about the x-axis over [a, b], and
// exposes the supporting derivative, scan and sampling operations.
//
// Every numeric result is a fixed-step float64 approximation. Invalid
// input fails fast with a *validate.Error; a failure inside one quantity
// degrades that quantity to 0 and is logged.
package gorevolve

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/njchilds90/gorevolve/config"
	"github.com/njchilds90/gorevolve/evaluate"
	"github.com/njchilds90/gorevolve/history"
	"github.com/njchilds90/gorevolve/integrate"
	"github.com/njchilds90/gorevolve/metrics"
	"github.com/njchilds90/gorevolve/quantity"
	"github.com/njchilds90/gorevolve/scan"
	"github.com/njchilds90/gorevolve/solid"
	"github.com/njchilds90/gorevolve/symbolic"
	"github.com/njchilds90/gorevolve/validate"
)

// ============================================================
// Results
// ============================================================

// Steps are the intermediate formulas shown next to a result. An empty
// Derivative means differentiation failed; the dependent integrands are
// empty too.
type Steps struct {
	Derivative           string `json:"derivative"`
	ArcLengthIntegrand   string `json:"arcLengthIntegrand,omitempty"`
	SurfaceAreaIntegrand string `json:"surfaceAreaIntegrand,omitempty"`
	VolumeIntegrand      string `json:"volumeIntegrand"`
}

// Result is the outcome of ComputeAll. Function is the canonical form of
// the input. Error carries a non-fatal diagnostic such as a failed
// derivative or a history write that did not go through.
type Result struct {
	Function    string  `json:"function"`
	Lower       float64 `json:"lower"`
	Upper       float64 `json:"upper"`
	Derivative  string  `json:"derivative"`
	ArcLength   float64 `json:"arcLength"`
	SurfaceArea float64 `json:"surfaceArea"`
	Volume      float64 `json:"volume"`
	Steps       Steps   `json:"steps"`
	Error       string  `json:"error,omitempty"`
}

// Record converts r to a history record. ID and Timestamp are left for
// the store to assign.
func (r Result) Record() history.Record {
	return history.Record{
		Function:   r.Function,
		LowerBound: r.Lower,
		UpperBound: r.Upper,
		Results: history.Results{
			ArcLength:   r.ArcLength,
			SurfaceArea: r.SurfaceArea,
			Volume:      r.Volume,
		},
	}
}

// Recorder receives every successful computation. *history.Store
// implements it.
type Recorder interface {
	Append(ctx context.Context, rec history.Record) (history.Record, error)
}

// ============================================================
// Engine
// ============================================================

// Engine holds configuration only; it keeps no state between calls and
// is safe for concurrent use.
type Engine struct {
	evaluator  evaluate.Evaluator
	diff       symbolic.Differentiator
	integrator *integrate.Integrator
	calc       *quantity.Calculator
	scanner    *scan.Scanner
	solidSteps int
	locale     string
	recorder   Recorder
	logger     *slog.Logger
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithDifferentiator replaces the symbolic differentiator.
func WithDifferentiator(d symbolic.Differentiator) Option {
	return func(e *Engine) { e.diff = d }
}

// WithEvaluator replaces the backend named in the configuration.
func WithEvaluator(ev evaluate.Evaluator) Option {
	return func(e *Engine) { e.evaluator = ev }
}

// WithRecorder stores each successful ComputeAll result.
func WithRecorder(r Recorder) Option { return func(e *Engine) { e.recorder = r } }

// New builds an Engine from cfg.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ev, err := evaluate.New(cfg.Engine.Evaluator)
	if err != nil {
		return nil, err
	}
	rule, err := integrate.ParseRule(cfg.Engine.IntegrationRule)
	if err != nil {
		return nil, err
	}
	mode, err := scan.ParseMode(cfg.Scan.Mode)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		evaluator:  ev,
		diff:       symbolic.Symbolic{},
		solidSteps: cfg.Solid.Steps,
		locale:     cfg.Locale,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.diff == nil {
		e.diff = symbolic.Symbolic{}
	}
	if e.evaluator == nil {
		e.evaluator = ev
	}
	e.integrator = &integrate.Integrator{
		Evaluator: e.evaluator,
		Rule:      rule,
		Steps:     cfg.Engine.IntegrationSteps,
		Logger:    e.logger,
	}
	e.calc = &quantity.Calculator{Integrator: e.integrator, Differentiator: e.diff, Logger: e.logger}
	e.scanner = &scan.Scanner{
		Evaluator:      e.evaluator,
		Differentiator: e.diff,
		Domain:         scan.Domain{Min: cfg.Scan.Min, Max: cfg.Scan.Max},
		Step:           cfg.Scan.Step,
		Tolerance:      cfg.Scan.Tolerance,
		Mode:           mode,
		Logger:         e.logger,
	}
	return e, nil
}

// Default returns an Engine with the built-in configuration.
func Default() *Engine {
	e, err := New(config.Default())
	if err != nil {
		panic(err)
	}
	return e
}

// Locale is the configured language for validation messages.
func (e *Engine) Locale() string { return e.locale }

// ============================================================
// ComputeAll
// ============================================================

// ComputeAll validates the input, derives f once and computes the three
// quantities. See ComputeAllContext.
func (e *Engine) ComputeAll(fn string, lower, upper float64) (Result, error) {
	return e.ComputeAllContext(context.Background(), fn, lower, upper)
}

// ComputeAllContext is ComputeAll with a context for the recorder.
// Validation failures are returned as *validate.Error before anything is
// computed. A recorder failure is logged and reported in Result.Error.
func (e *Engine) ComputeAllContext(ctx context.Context, fn string, lower, upper float64) (Result, error) {
	start := time.Now()
	defer func() { metrics.ComputeDuration.Observe(time.Since(start).Seconds()) }()

	canonical, err := e.check(fn, lower, upper)
	if err != nil {
		metrics.Computations.WithLabelValues("invalid").Inc()
		return Result{}, err
	}

	res := Result{Function: canonical, Lower: lower, Upper: upper}
	d, derr := e.diff.Derive(canonical)
	if derr != nil {
		e.logger.Warn("differentiation failed", "function", canonical, "error", derr)
		metrics.SoftFailures.WithLabelValues(metrics.StageDerive).Inc()
		res.Error = derr.Error()
		d = ""
	}
	res.Derivative = d
	res.ArcLength = e.calc.ArcLengthWithDerivative(d, lower, upper)
	res.SurfaceArea = e.calc.SurfaceAreaWithDerivative(canonical, d, lower, upper)
	res.Volume = e.calc.Volume(canonical, lower, upper)
	res.Steps = stepsFor(canonical, d)

	outcome := "ok"
	if d == "" {
		outcome = "degraded"
	}
	metrics.Computations.WithLabelValues(outcome).Inc()
	e.logger.Debug("computed",
		"function", canonical,
		"lower", lower,
		"upper", upper,
		"arc_length", res.ArcLength,
		"surface_area", res.SurfaceArea,
		"volume", res.Volume)

	if e.recorder != nil {
		if _, err := e.recorder.Append(ctx, res.Record()); err != nil {
			e.logger.Warn("history append failed", "function", canonical, "error", err)
			metrics.SoftFailures.WithLabelValues(metrics.StageHistory).Inc()
			if res.Error == "" {
				res.Error = err.Error()
			}
		}
	}
	return res, nil
}

func stepsFor(fn, d string) Steps {
	s := Steps{Derivative: d, VolumeIntegrand: quantity.VolumeIntegrand(fn)}
	if d != "" {
		s.ArcLengthIntegrand = quantity.ArcLengthIntegrand(d)
		s.SurfaceAreaIntegrand = quantity.SurfaceAreaIntegrand(fn, d)
	}
	return s
}

// check validates fn and the bounds and returns the canonical function.
func (e *Engine) check(fn string, lower, upper float64) (string, error) {
	r := validate.Expression(fn)
	if !r.Valid {
		return "", r.AsError()
	}
	if b := validate.Bounds(lower, upper); !b.Valid {
		return "", b.AsError()
	}
	return r.Canonical, nil
}

// canonical validates fn only.
func (e *Engine) canonical(fn string) (string, error) {
	r := validate.Expression(fn)
	if !r.Valid {
		return "", r.AsError()
	}
	return r.Canonical, nil
}

// ============================================================
// Single operations
// ============================================================

// Validate checks a function string.
func (e *Engine) Validate(fn string) validate.Result { return validate.Expression(fn) }

// Derive returns f'. Unlike ComputeAll it reports the failure.
func (e *Engine) Derive(fn string) (string, error) {
	c, err := e.canonical(fn)
	if err != nil {
		return "", err
	}
	return e.diff.Derive(c)
}

// Derive2 returns f''.
func (e *Engine) Derive2(fn string) (string, error) {
	d, err := e.Derive(fn)
	if err != nil {
		return "", err
	}
	return e.diff.Derive(d)
}

// Evaluate returns f(x).
func (e *Engine) Evaluate(fn string, x float64) (float64, error) {
	c, err := e.canonical(fn)
	if err != nil {
		return 0, err
	}
	return e.evaluator.Evaluate(c, x)
}

// Integrate returns the fixed-step integral of fn over [lower, upper].
// Evaluation failures are returned rather than collapsed to 0.
func (e *Engine) Integrate(fn string, lower, upper float64) (float64, error) {
	c, err := e.check(fn, lower, upper)
	if err != nil {
		return 0, err
	}
	return e.integrator.IntegrateE(c, lower, upper)
}

// AreaBetween is the unsigned area between f1 and f2 over [lower, upper].
func (e *Engine) AreaBetween(f1, f2 string, lower, upper float64) (float64, error) {
	c1, err := e.check(f1, lower, upper)
	if err != nil {
		return 0, err
	}
	c2, err := e.canonical(f2)
	if err != nil {
		return 0, err
	}
	return e.calc.AreaBetween(c1, c2, lower, upper), nil
}

// CriticalPoints scans the configured domain for zeros of f'.
func (e *Engine) CriticalPoints(fn string) ([]float64, error) {
	c, err := e.canonical(fn)
	if err != nil {
		return nil, err
	}
	return e.scanner.CriticalPoints(c), nil
}

// InflectionPoints scans the configured domain for zeros of f''.
func (e *Engine) InflectionPoints(fn string) ([]float64, error) {
	c, err := e.canonical(fn)
	if err != nil {
		return nil, err
	}
	return e.scanner.InflectionPoints(c), nil
}

// Points returns critical points followed by inflection points.
func (e *Engine) Points(fn string) ([]scan.Point, error) {
	c, err := e.canonical(fn)
	if err != nil {
		return nil, err
	}
	return e.scanner.Points(c), nil
}

func (e *Engine) Concavity(fn string, x float64) (scan.Concavity, error) {
	c, err := e.canonical(fn)
	if err != nil {
		return scan.ConcaveNone, err
	}
	return e.scanner.Concavity(c, x), nil
}

func (e *Engine) Monotonicity(fn string, x float64) (scan.Monotonicity, error) {
	c, err := e.canonical(fn)
	if err != nil {
		return scan.Constant, err
	}
	return e.scanner.Monotonicity(c, x), nil
}

// Solid samples the surface of revolution. steps <= 0 uses the configured
// resolution.
func (e *Engine) Solid(fn string, lower, upper float64, steps int) (solid.Profile, error) {
	c, err := e.check(fn, lower, upper)
	if err != nil {
		return solid.Profile{}, err
	}
	if steps <= 0 {
		steps = e.solidSteps
	}
	p, err := solid.Sample(e.evaluator, c, lower, upper, steps)
	if err != nil {
		e.logger.Warn("solid sampling failed", "function", c, "error", err)
		metrics.SoftFailures.WithLabelValues(metrics.StageSolid).Inc()
		return solid.Profile{}, fmt.Errorf("gorevolve: solid: %w", err)
	}
	return p, nil
}
