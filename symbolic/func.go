package symbolic

import (
	"math"
	"sort"
)

// ============================================================
// Func — named unary function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

// funcDef describes one supported function: its float64 rule (which
// reports its own domain violations), the outer derivative f'(u), and
// the LaTeX operator used for display.
type funcDef struct {
	eval  func(v float64) (float64, error)
	outer func(u Expr) Expr
	latex string
}

var funcs map[string]funcDef

func init() {
	funcs = map[string]funcDef{
		"sin": {eval: plain(math.Sin), latex: `\sin`,
			outer: func(u Expr) Expr { return CosOf(u) }},
		"cos": {eval: plain(math.Cos), latex: `\cos`,
			outer: func(u Expr) Expr { return MulOf(N(-1), SinOf(u)) }},
		"tan": {eval: notPole("tan", math.Tan, math.Cos), latex: `\tan`,
			outer: func(u Expr) Expr { return PowOf(SecOf(u), N(2)) }},
		"csc": {eval: notPole("csc", func(v float64) float64 { return 1 / math.Sin(v) }, math.Sin), latex: `\csc`,
			outer: func(u Expr) Expr { return MulOf(N(-1), CscOf(u), CotOf(u)) }},
		"sec": {eval: notPole("sec", func(v float64) float64 { return 1 / math.Cos(v) }, math.Cos), latex: `\sec`,
			outer: func(u Expr) Expr { return MulOf(SecOf(u), TanOf(u)) }},
		"cot": {eval: notPole("cot", func(v float64) float64 { return math.Cos(v) / math.Sin(v) }, math.Sin), latex: `\cot`,
			outer: func(u Expr) Expr { return MulOf(N(-1), PowOf(CscOf(u), N(2))) }},
		"asin": {eval: unitInterval("asin", math.Asin), latex: `\arcsin`,
			outer: func(u Expr) Expr { return PowOf(SqrtOf(oneMinusSquare(u)), N(-1)) }},
		"acos": {eval: unitInterval("acos", math.Acos), latex: `\arccos`,
			outer: func(u Expr) Expr { return MulOf(N(-1), PowOf(SqrtOf(oneMinusSquare(u)), N(-1))) }},
		"atan": {eval: plain(math.Atan), latex: `\arctan`,
			outer: func(u Expr) Expr { return PowOf(AddOf(PowOf(u, N(2)), N(1)), N(-1)) }},
		"exp": {eval: plain(math.Exp), latex: `\exp`,
			outer: func(u Expr) Expr { return ExpOf(u) }},
		"ln": {eval: positive("ln", math.Log), latex: `\ln`,
			outer: func(u Expr) Expr { return PowOf(u, N(-1)) }},
		"log": {eval: positive("log", math.Log), latex: `\log`,
			outer: func(u Expr) Expr { return PowOf(u, N(-1)) }},
		"sqrt": {eval: nonNegative("sqrt", math.Sqrt), latex: `\sqrt`,
			outer: func(u Expr) Expr { return MulOf(F(1, 2), PowOf(SqrtOf(u), N(-1))) }},
		"abs": {eval: plain(math.Abs), latex: "",
			outer: func(u Expr) Expr { return MulOf(u, PowOf(AbsOf(u), N(-1))) }},
		"sinh": {eval: plain(math.Sinh), latex: `\sinh`,
			outer: func(u Expr) Expr { return CoshOf(u) }},
		"cosh": {eval: plain(math.Cosh), latex: `\cosh`,
			outer: func(u Expr) Expr { return SinhOf(u) }},
		"tanh": {eval: plain(math.Tanh), latex: `\tanh`,
			outer: func(u Expr) Expr { return AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(u), N(2)))) }},
	}
}

// FuncNames returns the supported function names in sorted order.
func FuncNames() []string {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsFunc reports whether name is a supported function.
func IsFunc(name string) bool { _, ok := funcs[name]; return ok }

// EvalFunc applies the float rule of the named function with the same
// domain checks Eval uses.
func EvalFunc(name string, v float64) (float64, error) {
	def, ok := funcs[name]
	if !ok {
		return 0, &EvalError{Op: name, Arg: v, Reason: "unknown function"}
	}
	r, err := def.eval(v)
	if err != nil {
		return 0, err
	}
	return finite(name, v, r)
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

// FuncOf applies the named function. It returns false for unknown names.
func FuncOf(name string, arg Expr) (Expr, bool) {
	if !IsFunc(name) {
		return nil, false
	}
	return funcOf(name, arg).Simplify(), true
}

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func CscOf(arg Expr) Expr  { return funcOf("csc", arg).Simplify() }
func SecOf(arg Expr) Expr  { return funcOf("sec", arg).Simplify() }
func CotOf(arg Expr) Expr  { return funcOf("cot", arg).Simplify() }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr   { return funcOf("ln", arg).Simplify() }
func LogOf(arg Expr) Expr  { return funcOf("log", arg).Simplify() }
func SqrtOf(arg Expr) Expr { return funcOf("sqrt", arg).Simplify() }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg).Simplify() }

// Simplify only applies exact identities. Transcendental values of
// numeric arguments stay symbolic so coefficients remain rational.
func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	switch f.name {
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cos", "cosh", "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "sqrt":
		if isNumEqual(arg, 0) || isNumEqual(arg, 1) {
			return arg
		}
	case "ln", "log":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if arg.Equal(E) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			if n.IsNegative() {
				return numNeg(n)
			}
			return n
		}
		if c, rest := splitCoefficient(arg); c.IsNegative() {
			return MulOf(numNeg(c), AbsOf(rest))
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return asciiPrinter.expr(f) }
func (f *Func) LaTeX() string  { return latexPrinter.expr(f) }

// Diff applies the chain rule: f'(u) * du.
func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	if n, ok := du.(*Num); ok && n.IsZero() {
		return N(0)
	}
	def, ok := funcs[f.name]
	if !ok {
		panic("symbolic: no derivative rule for " + f.name)
	}
	return MulOf(def.outer(f.arg), du)
}

func (f *Func) Eval(s Scope) (float64, error) {
	v, err := f.arg.Eval(s)
	if err != nil {
		return 0, err
	}
	return EvalFunc(f.name, v)
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

func oneMinusSquare(u Expr) Expr { return AddOf(MulOf(N(-1), PowOf(u, N(2))), N(1)) }

// ============================================================
// Domain-checked float rules
// ============================================================

func plain(fn func(float64) float64) func(float64) (float64, error) {
	return func(v float64) (float64, error) { return fn(v), nil }
}

func positive(op string, fn func(float64) float64) func(float64) (float64, error) {
	return func(v float64) (float64, error) {
		if v <= 0 {
			return 0, &EvalError{Op: op, Arg: v, Reason: "argument must be positive"}
		}
		return fn(v), nil
	}
}

func nonNegative(op string, fn func(float64) float64) func(float64) (float64, error) {
	return func(v float64) (float64, error) {
		if v < 0 {
			return 0, &EvalError{Op: op, Arg: v, Reason: "argument must be non-negative"}
		}
		return fn(v), nil
	}
}

func unitInterval(op string, fn func(float64) float64) func(float64) (float64, error) {
	return func(v float64) (float64, error) {
		if v < -1 || v > 1 {
			return 0, &EvalError{Op: op, Arg: v, Reason: "argument outside [-1, 1]"}
		}
		return fn(v), nil
	}
}

// notPole rejects arguments where the denominator function vanishes.
func notPole(op string, fn, denom func(float64) float64) func(float64) (float64, error) {
	return func(v float64) (float64, error) {
		if denom(v) == 0 {
			return 0, &EvalError{Op: op, Arg: v, Reason: "division by zero"}
		}
		return fn(v), nil
	}
}
