// Package solid samples the surface swept by rotating y = f(x) about the
// x-axis.
package solid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/njchilds90/gorevolve/evaluate"
)

// DefaultSteps is the per-axis resolution used by callers that have no
// configured value.
const DefaultSteps = 50

// xAxis is the axis of revolution.
var xAxis = r3.Vec{X: 1}

// ErrInvalidSample reports unusable bounds or resolution.
var ErrInvalidSample = errors.New("solid: invalid sample request")

// Profile is the sampled surface. Grid[i][j] is the point at X[i] rotated
// by Theta[j]; XS, YS and ZS hold the same points split by coordinate.
type Profile struct {
	X      []float64   `json:"x"`
	Radius []float64   `json:"radius"`
	Theta  []float64   `json:"theta"`
	Grid   [][]r3.Vec  `json:"-"`
	XS     [][]float64 `json:"xs"`
	YS     [][]float64 `json:"ys"`
	ZS     [][]float64 `json:"zs"`
}

// Sample evaluates f at steps points spanning [a, b] inclusive and sweeps
// each profile point (x, f(x), 0) about the x-axis through steps angles
// 2*pi*j/steps. A single undefined point fails the whole sample.
func Sample(ev evaluate.Evaluator, fn string, a, b float64, steps int) (Profile, error) {
	if steps < 2 {
		return Profile{}, fmt.Errorf("%w: steps must be at least 2, got %d", ErrInvalidSample, steps)
	}
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) || a >= b {
		return Profile{}, fmt.Errorf("%w: bounds [%g, %g]", ErrInvalidSample, a, b)
	}
	if ev == nil {
		ev = evaluate.Tree{}
	}
	f, err := ev.Compile(fn)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		X:      make([]float64, steps),
		Radius: make([]float64, steps),
		Theta:  make([]float64, steps),
		Grid:   make([][]r3.Vec, steps),
		XS:     make([][]float64, steps),
		YS:     make([][]float64, steps),
		ZS:     make([][]float64, steps),
	}
	dx := (b - a) / float64(steps-1)
	for i := range p.X {
		x := a + float64(i)*dx
		if i == steps-1 {
			x = b
		}
		r, err := f(x)
		if err != nil {
			return Profile{}, fmt.Errorf("solid: radius at x=%g: %w", x, err)
		}
		p.X[i], p.Radius[i] = x, r
	}
	rots := make([]r3.Rotation, steps)
	for j := range p.Theta {
		p.Theta[j] = 2 * math.Pi * float64(j) / float64(steps)
		rots[j] = r3.NewRotation(p.Theta[j], xAxis)
	}
	for i, x := range p.X {
		row := make([]r3.Vec, steps)
		xs, ys, zs := make([]float64, steps), make([]float64, steps), make([]float64, steps)
		profile := r3.Vec{X: x, Y: p.Radius[i]}
		for j, rot := range rots {
			v := rot.Rotate(profile)
			row[j] = v
			xs[j], ys[j], zs[j] = v.X, v.Y, v.Z
		}
		p.Grid[i], p.XS[i], p.YS[i], p.ZS[i] = row, xs, ys, zs
	}
	return p, nil
}

// MaxRadius is the largest |f(x)| over the sampled points.
func (p Profile) MaxRadius() float64 {
	m := 0.0
	for _, r := range p.Radius {
		m = math.Max(m, math.Abs(r))
	}
	return m
}
