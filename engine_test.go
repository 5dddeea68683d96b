package gorevolve_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gorevolve"
	"github.com/njchilds90/gorevolve/config"
	"github.com/njchilds90/gorevolve/history"
	"github.com/njchilds90/gorevolve/scan"
	"github.com/njchilds90/gorevolve/symbolic"
	"github.com/njchilds90/gorevolve/validate"
)

type brokenDiff struct{}

func (brokenDiff) Derive(string) (string, error) {
	return "", symbolic.ErrDifferentiation
}

type brokenRecorder struct{}

func (brokenRecorder) Append(context.Context, history.Record) (history.Record, error) {
	return history.Record{}, errors.New("disk full")
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func newEngine(t *testing.T, opts ...gorevolve.Option) *gorevolve.Engine {
	t.Helper()
	e, err := gorevolve.New(config.Default(), opts...)
	require.NoError(t, err)
	return e
}

func TestComputeAll_Identity(t *testing.T) {
	res, err := gorevolve.Default().ComputeAll("x", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "x", res.Function)
	assert.Equal(t, "1", res.Derivative)
	assert.InDelta(t, math.Sqrt2, res.ArcLength, 1e-9)
	assert.InDelta(t, 4.44288, res.SurfaceArea, 0.01)
	assert.InDelta(t, math.Pi/3, res.Volume, 0.01)
	assert.Empty(t, res.Error)

	assert.Equal(t, gorevolve.Steps{
		Derivative:           "1",
		ArcLengthIntegrand:   "sqrt(1 + (1)^2)",
		SurfaceAreaIntegrand: "2*pi*(x)*sqrt(1 + (1)^2)",
		VolumeIntegrand:      "pi*(x)^2",
	}, res.Steps)
}

func TestComputeAll_Canonicalizes(t *testing.T) {
	res, err := gorevolve.Default().ComputeAll("e^x", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "exp(x)", res.Function)
	assert.Equal(t, "exp(x)", res.Derivative)
}

func TestComputeAll_ValidationFailsFast(t *testing.T) {
	e := gorevolve.Default()
	cases := []struct {
		fn           string
		lower, upper float64
		code         validate.Code
	}{
		{"", 0, 1, validate.CodeEmptyExpression},
		{"x +", 0, 1, validate.CodeUnparseableExpression},
		{"x", 1, 0, validate.CodeInvertedBounds},
		{"x", 1, 1, validate.CodeInvertedBounds},
		{"x", math.NaN(), 1, validate.CodeNonNumericBounds},
		{"x", 0, math.Inf(1), validate.CodeNonFiniteBounds},
	}
	for _, tc := range cases {
		_, err := e.ComputeAll(tc.fn, tc.lower, tc.upper)
		require.Error(t, err, tc.fn)
		assert.ErrorIs(t, err, &validate.Error{Code: tc.code}, tc.fn)
	}
}

func TestComputeAll_DifferentiationFailure(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, gorevolve.WithDifferentiator(brokenDiff{}), gorevolve.WithLogger(quietLogger(&buf)))
	res, err := e.ComputeAll("x", 0, 1)
	require.NoError(t, err)
	assert.Empty(t, res.Derivative)
	assert.Zero(t, res.ArcLength)
	assert.Zero(t, res.SurfaceArea)
	assert.InDelta(t, math.Pi/3, res.Volume, 0.01)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, res.Steps.ArcLengthIntegrand)
	assert.Contains(t, buf.String(), "differentiation failed")
}

func TestComputeAll_UndefinedDomainDegrades(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, gorevolve.WithLogger(quietLogger(&buf)))
	res, err := e.ComputeAll("ln(x)", -2, -1)
	require.NoError(t, err)
	assert.Equal(t, "1/x", res.Derivative)
	assert.Greater(t, res.ArcLength, 1.0)
	assert.Zero(t, res.SurfaceArea)
	assert.Zero(t, res.Volume)
	assert.Contains(t, buf.String(), "integration failed")
}

func TestComputeAll_FractionalPowersKeepDomain(t *testing.T) {
	for _, backend := range []string{"tree", "govaluate"} {
		cfg := config.Default()
		cfg.Engine.Evaluator = backend
		e, err := gorevolve.New(cfg, gorevolve.WithLogger(quietLogger(&bytes.Buffer{})))
		require.NoError(t, err)
		for _, fn := range []string{"x^0.5*x^0.5", "(x^0.5)^2", "sqrt(x)^2"} {
			res, err := e.ComputeAll(fn, -2, -1)
			require.NoError(t, err, fn)
			assert.NotEqual(t, "x", res.Function, fn)
			assert.Zero(t, res.SurfaceArea, "%s on %s", fn, backend)
			assert.Zero(t, res.Volume, "%s on %s", fn, backend)
		}
	}
}

func TestComputeAll_Records(t *testing.T) {
	store, err := history.Open(history.Options{InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	e := newEngine(t, gorevolve.WithRecorder(store))
	_, err = e.ComputeAll("x^2", 0, 2)
	require.NoError(t, err)
	_, err = e.ComputeAll("", 0, 2)
	require.Error(t, err)

	recs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "x^2", recs[0].Function)
	assert.Equal(t, 2.0, recs[0].UpperBound)
	assert.Greater(t, recs[0].Results.Volume, 0.0)
}

func TestComputeAll_RecorderFailureIsSoft(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, gorevolve.WithRecorder(brokenRecorder{}), gorevolve.WithLogger(quietLogger(&buf)))
	res, err := e.ComputeAll("x", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "disk full", res.Error)
	assert.InDelta(t, math.Sqrt2, res.ArcLength, 1e-9)
	assert.Contains(t, buf.String(), "history append failed")
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Evaluator = "mathjs"
	_, err := gorevolve.New(cfg)
	require.Error(t, err)
}

func TestEngine_GovaluateBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Evaluator = "govaluate"
	e, err := gorevolve.New(cfg)
	require.NoError(t, err)
	res, err := e.ComputeAll("x", 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, res.ArcLength, 1e-9)
	assert.InDelta(t, 4.44288, res.SurfaceArea, 0.01)
}

func TestEngine_Integrate(t *testing.T) {
	e := gorevolve.Default()
	v, err := e.Integrate("x", 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.4995, v, 1e-9)

	_, err = e.Integrate("ln(x)", -2, -1)
	require.ErrorIs(t, err, symbolic.ErrUndefined)

	cfg := config.Default()
	cfg.Engine.IntegrationSteps = 2000
	e, err = gorevolve.New(cfg)
	require.NoError(t, err)
	v, err = e.Integrate("x", 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.49975, v, 1e-9)
}

func TestEngine_DeriveAndEvaluate(t *testing.T) {
	e := gorevolve.Default()
	d, err := e.Derive("x^2 + 2*x")
	require.NoError(t, err)
	assert.Equal(t, "2*x + 2", d)

	d2, err := e.Derive2("x^3")
	require.NoError(t, err)
	assert.Equal(t, "6*x", d2)

	v, err := e.Evaluate("x^2", 3)
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)

	_, err = e.Evaluate("sqrt(x)", -1)
	require.ErrorIs(t, err, symbolic.ErrUndefined)

	_, err = e.Derive("")
	assert.ErrorIs(t, err, &validate.Error{Code: validate.CodeEmptyExpression})
}

func TestEngine_AreaBetween(t *testing.T) {
	e := gorevolve.Default()
	v, err := e.AreaBetween("x", "x^2", 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/6, v, 0.01)

	_, err = e.AreaBetween("x", "", 0, 1)
	require.Error(t, err)
}

func TestEngine_Scan(t *testing.T) {
	e := gorevolve.Default()
	xs, err := e.CriticalPoints("x^2")
	require.NoError(t, err)
	assert.Contains(t, xs, 0.0)
	for _, x := range xs {
		assert.Less(t, math.Abs(x), 0.1)
	}

	ps, err := e.Points("x^3")
	require.NoError(t, err)
	assert.Contains(t, ps, scan.Point{X: 0, Kind: scan.Inflection})

	c, err := e.Concavity("x^2", 0)
	require.NoError(t, err)
	assert.Equal(t, scan.ConcaveUp, c)

	m, err := e.Monotonicity("x^2", -1)
	require.NoError(t, err)
	assert.Equal(t, scan.Decreasing, m)

	_, err = e.InflectionPoints("")
	require.Error(t, err)
}

func TestEngine_Solid(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, gorevolve.WithLogger(quietLogger(&buf)))
	p, err := e.Solid("x", 0, 1, 0)
	require.NoError(t, err)
	assert.Len(t, p.X, 50)
	assert.Len(t, p.Theta, 50)
	assert.InDelta(t, 1.0, p.MaxRadius(), 1e-12)

	_, err = e.Solid("ln(x)", -2, -1, 10)
	require.ErrorIs(t, err, symbolic.ErrUndefined)
	assert.Contains(t, buf.String(), "solid sampling failed")
}
