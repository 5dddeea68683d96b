package gorevolve_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gorevolve"
)

func TestConvertUnits(t *testing.T) {
	cases := []struct {
		kind     gorevolve.UnitKind
		value    float64
		from, to string
		want     float64
	}{
		{gorevolve.Length, 1, "km", "m", 1000},
		{gorevolve.Length, 12, "in", "ft", 1},
		{gorevolve.Length, 1, "mi", "km", 1.609344},
		{gorevolve.Area, 1, "m2", "cm2", 10000},
		{gorevolve.Volume, 1, "m3", "cm3", 1e6},
		{gorevolve.Volume, 2.5, "ft3", "ft3", 2.5},
	}
	for _, tc := range cases {
		got, err := gorevolve.ConvertUnits(tc.kind, tc.value, tc.from, tc.to)
		require.NoError(t, err)
		assert.InEpsilon(t, tc.want, got, 1e-9, "%g %s -> %s", tc.value, tc.from, tc.to)
	}
}

func TestConvertUnits_Errors(t *testing.T) {
	_, err := gorevolve.ConvertUnits("mass", 1, "kg", "g")
	require.ErrorIs(t, err, gorevolve.ErrUnknownUnit)

	_, err = gorevolve.ConvertUnits(gorevolve.Area, 1, "m", "cm2")
	require.ErrorIs(t, err, gorevolve.ErrUnknownUnit)

	_, err = gorevolve.ConvertUnits(gorevolve.Length, math.Inf(1), "m", "cm")
	require.Error(t, err)
}

func TestUnits(t *testing.T) {
	assert.Equal(t, []string{"cm", "ft", "in", "km", "m", "mi", "mm", "yd"}, gorevolve.Units(gorevolve.Length))
	assert.Empty(t, gorevolve.Units("mass"))
}

func TestQuantityKind(t *testing.T) {
	k, ok := gorevolve.QuantityKind("surfaceArea")
	require.True(t, ok)
	assert.Equal(t, gorevolve.Area, k)
	_, ok = gorevolve.QuantityKind("mass")
	assert.False(t, ok)
}

func TestPresets(t *testing.T) {
	ps := gorevolve.Presets()
	require.Len(t, ps, 12)
	assert.Equal(t, gorevolve.Preset{Name: "Quadratic", Function: "x^2"}, ps[0])

	// every preset is valid input
	for _, p := range ps {
		assert.True(t, gorevolve.Default().Validate(p.Function).Valid, p.Name)
	}

	ps[0].Function = "mutated"
	p, ok := gorevolve.PresetByName("Quadratic")
	require.True(t, ok)
	assert.Equal(t, "x^2", p.Function)

	_, ok = gorevolve.PresetByName("Nope")
	assert.False(t, ok)
}
