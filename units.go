package gorevolve

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// UnitKind groups units that convert into each other.
type UnitKind string

const (
	Length UnitKind = "length"
	Area   UnitKind = "area"
	Volume UnitKind = "volume"
)

// ErrUnknownUnit is returned for a kind or unit missing from the tables.
var ErrUnknownUnit = errors.New("gorevolve: unknown unit")

// unitFactors maps each unit to its size in the kind's SI base unit.
var unitFactors = map[UnitKind]map[string]float64{
	Length: {
		"m":  1,
		"cm": 0.01,
		"mm": 0.001,
		"km": 1000,
		"in": 0.0254,
		"ft": 0.3048,
		"yd": 0.9144,
		"mi": 1609.344,
	},
	Area: {
		"m2":  1,
		"cm2": 0.0001,
		"mm2": 0.000001,
		"km2": 1000000,
		"in2": 0.00064516,
		"ft2": 0.092903,
		"yd2": 0.836127,
		"mi2": 2589988.11,
	},
	Volume: {
		"m3":  1,
		"cm3": 0.000001,
		"mm3": 1e-9,
		"km3": 1e9,
		"in3": 1.63871e-5,
		"ft3": 0.0283168,
		"yd3": 0.764555,
		"mi3": 4.168e9,
	},
}

// ConvertUnits converts value between two units of the same kind.
func ConvertUnits(kind UnitKind, value float64, from, to string) (float64, error) {
	table, ok := unitFactors[kind]
	if !ok {
		return 0, fmt.Errorf("%w: kind %q", ErrUnknownUnit, kind)
	}
	f, ok := table[from]
	if !ok {
		return 0, fmt.Errorf("%w: %s unit %q", ErrUnknownUnit, kind, from)
	}
	t, ok := table[to]
	if !ok {
		return 0, fmt.Errorf("%w: %s unit %q", ErrUnknownUnit, kind, to)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("gorevolve: cannot convert non-finite value %g", value)
	}
	return value * f / t, nil
}

// Units lists the unit names of kind in sorted order.
func Units(kind UnitKind) []string {
	table := unitFactors[kind]
	out := make([]string, 0, len(table))
	for name := range table {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// QuantityKind is the unit kind of a named result quantity.
func QuantityKind(quantity string) (UnitKind, bool) {
	switch quantity {
	case "arcLength":
		return Length, true
	case "surfaceArea":
		return Area, true
	case "volume":
		return Volume, true
	}
	return "", false
}
