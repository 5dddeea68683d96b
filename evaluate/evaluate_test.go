package evaluate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gorevolve/evaluate"
	"github.com/njchilds90/gorevolve/symbolic"
)

var backends = []struct {
	name string
	ev   evaluate.Evaluator
}{
	{"tree", evaluate.Tree{}},
	{"govaluate", evaluate.Govaluate{}},
}

func TestEvaluate_Values(t *testing.T) {
	cases := []struct {
		expr string
		x    float64
		want float64
	}{
		{"x^2 + 1", 2, 5},
		{"2*pi*x", 1, 2 * math.Pi},
		{"sin(x)^2 + cos(x)^2", 0.4, 1},
		{"e^x", 1, math.E},
		{"sqrt(1 + (2*x)^2)", 1, math.Sqrt(5)},
		{"ln(x)/x", 2, math.Log(2) / 2},
		{"-x^2 + 3", 2, -1},
		{"abs(x - 3)", 1, 2},
		{"x/2", 3, 1.5},
	}
	for _, b := range backends {
		for _, c := range cases {
			t.Run(b.name+"/"+c.expr, func(t *testing.T) {
				got, err := b.ev.Evaluate(c.expr, c.x)
				require.NoError(t, err)
				assert.InDelta(t, c.want, got, 1e-12)
			})
		}
	}
}

func TestEvaluate_Undefined(t *testing.T) {
	cases := []struct {
		expr string
		x    float64
	}{
		{"1/x", 0},
		{"ln(x)", -1},
		{"sqrt(x)", -4},
		{"asin(x)", 1.5},
		{"x^(1/2)", -1},
	}
	for _, b := range backends {
		for _, c := range cases {
			t.Run(b.name+"/"+c.expr, func(t *testing.T) {
				_, err := b.ev.Evaluate(c.expr, c.x)
				require.Error(t, err)
				assert.True(t, errors.Is(err, symbolic.ErrUndefined), "got %v", err)
			})
		}
	}
}

func TestEvaluate_ParseError(t *testing.T) {
	for _, b := range backends {
		_, err := b.ev.Compile("2x")
		var pe *symbolic.ParseError
		assert.True(t, errors.As(err, &pe), "%s: got %v", b.name, err)
	}
}

func TestCompile_Reusable(t *testing.T) {
	for _, b := range backends {
		f, err := b.ev.Compile("x^3")
		require.NoError(t, err)
		for _, x := range []float64{-2, 0, 1.5} {
			got, err := f(x)
			require.NoError(t, err)
			assert.InDelta(t, x*x*x, got, 1e-12)
		}
	}
}

func TestRender(t *testing.T) {
	s, err := evaluate.Render(symbolic.MustParse("x^2 + 1"))
	require.NoError(t, err)
	assert.Equal(t, "((x ** (2)) + (1))", s)
}

func TestNew(t *testing.T) {
	ev, err := evaluate.New("")
	require.NoError(t, err)
	assert.IsType(t, evaluate.Tree{}, ev)

	ev, err = evaluate.New(evaluate.BackendGovaluate)
	require.NoError(t, err)
	assert.IsType(t, evaluate.Govaluate{}, ev)

	_, err = evaluate.New("mathjs")
	require.Error(t, err)
}
