package solid_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/njchilds90/gorevolve/evaluate"
	"github.com/njchilds90/gorevolve/solid"
	"github.com/njchilds90/gorevolve/symbolic"
)

func TestSample_Shape(t *testing.T) {
	p, err := solid.Sample(evaluate.Tree{}, "x", 0, 1, 50)
	require.NoError(t, err)
	require.Len(t, p.X, 50)
	require.Len(t, p.Grid, 50)
	require.Len(t, p.Grid[0], 50)
	assert.Equal(t, 0.0, p.X[0])
	assert.Equal(t, 1.0, p.X[49])
	assert.Equal(t, 0.0, p.Theta[0])
	assert.Less(t, p.Theta[49], 2*math.Pi)
}

func TestSample_PointsLieOnCircle(t *testing.T) {
	p, err := solid.Sample(nil, "x^2 + 1", -1, 1, 10)
	require.NoError(t, err)
	for i := range p.Grid {
		for j, v := range p.Grid[i] {
			assert.InDelta(t, p.X[i], v.X, 1e-12)
			assert.InDelta(t, p.Radius[i], math.Hypot(v.Y, v.Z), 1e-12)
			assert.Equal(t, v.Y, p.YS[i][j])
		}
	}
	// theta = 0 lies in the xy plane
	assert.InDelta(t, 0, r3.Norm(r3.Sub(p.Grid[0][0], r3.Vec{X: -1, Y: 2})), 1e-12)
	assert.InDelta(t, 2, p.MaxRadius(), 1e-12)
}

func TestSample_RotationDirection(t *testing.T) {
	p, err := solid.Sample(nil, "2", 0, 1, 4)
	require.NoError(t, err)
	// a quarter turn carries +y onto +z, a half turn onto -y
	assert.InDelta(t, 0, r3.Norm(r3.Sub(p.Grid[0][1], r3.Vec{X: 0, Z: 2})), 1e-12)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(p.Grid[3][2], r3.Vec{X: 1, Y: -2})), 1e-12)
	assert.Equal(t, p.ZS[0][1], p.Grid[0][1].Z)
}

func TestSample_Govaluate(t *testing.T) {
	p, err := solid.Sample(evaluate.Govaluate{}, "sqrt(x)", 0, 4, 5)
	require.NoError(t, err)
	assert.InDelta(t, 2, p.Radius[4], 1e-12)
}

func TestSample_FailsWhole(t *testing.T) {
	_, err := solid.Sample(nil, "1/x", -1, 1, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, symbolic.ErrUndefined))
}

func TestSample_Invalid(t *testing.T) {
	_, err := solid.Sample(nil, "x", 0, 1, 1)
	assert.True(t, errors.Is(err, solid.ErrInvalidSample))
	_, err = solid.Sample(nil, "x", 1, 0, 10)
	assert.True(t, errors.Is(err, solid.ErrInvalidSample))
	_, err = solid.Sample(nil, "2x", 0, 1, 10)
	var pe *symbolic.ParseError
	assert.True(t, errors.As(err, &pe))
}
