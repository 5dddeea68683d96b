package gorevolve

// Preset is a named example function.
type Preset struct {
	Name     string `json:"name"`
	Function string `json:"function"`
}

var presets = []Preset{
	{"Quadratic", "x^2"},
	{"Cubic", "x^3"},
	{"Sine", "sin(x)"},
	{"Cosine", "cos(x)"},
	{"Exponential", "exp(x)"},
	{"Linear", "2*x + 1"},
	{"Polynomial", "x^4 - 2*x^2 + 1"},
	{"Logarithmic", "ln(x + 1)"},
	{"Trigonometric", "sin(x) + cos(x)"},
	{"Rational", "1/(x^2 + 1)"},
	{"Absolute", "abs(x)"},
	{"Hyperbolic", "sinh(x)"},
}

// Presets returns the example functions in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetByName looks a preset up by its exact name.
func PresetByName(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
