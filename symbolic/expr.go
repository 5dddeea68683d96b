// Package symbolic is the expression kernel of gorevolve.
//
// Design goals:
//   - Single free variable (x), real-valued, float64 evaluation
//   - Exact rational coefficients (math/big.Rat) during construction
//   - Deterministic simplification and stable, re-parseable output
//   - Symbolic differentiation through every supported function
package symbolic

import (
	"math"
	"math/big"
	"sort"
)

// Var is the only free variable the grammar accepts.
const Var = "x"

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Diff(varName string) Expr
	Eval(s Scope) (float64, error)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// Scope binds variable names to values for one Eval call.
type Scope map[string]float64

// At returns the scope binding x to v.
func At(v float64) Scope { return Scope{Var: v} }

// ============================================================
// Num — exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NRat(r *big.Rat) *Num  { return &Num{val: new(big.Rat).Set(r)} }
func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }

func (n *Num) Simplify() Expr             { return n }
func (n *Num) Diff(string) Expr           { return N(0) }
func (n *Num) Eval(Scope) (float64, error) { return finite("num", 0, n.Float64()) }
func (n *Num) Equal(other Expr) bool      { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string           { return "num" }
func (n *Num) Float64() float64           { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool               { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool                { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsInteger() bool            { return n.val.IsInt() }
func (n *Num) IsNegative() bool           { return n.val.Sign() < 0 }
func (n *Num) Rat() *big.Rat              { return new(big.Rat).Set(n.val) }
func (n *Num) String() string             { return asciiPrinter.expr(n) }
func (n *Num) LaTeX() string              { return latexPrinter.expr(n) }

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.val.RatString()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}

// ============================================================
// Sym — symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func X() *Sym                 { return S(Var) }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return s.name }
func (s *Sym) Name() string   { return s.name }
func (s *Sym) Eval(sc Scope) (float64, error) {
	v, ok := sc[s.name]
	if !ok {
		return 0, &EvalError{Op: s.name, Reason: "unbound variable"}
	}
	return v, nil
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Const — named real constants (pi, e)
// ============================================================

type Const struct {
	name string
	val  float64
}

var (
	Pi = &Const{name: "pi", val: math.Pi}
	E  = &Const{name: "e", val: math.E}
)

func (c *Const) Simplify() Expr              { return c }
func (c *Const) String() string              { return c.name }
func (c *Const) LaTeX() string               { return latexPrinter.expr(c) }
func (c *Const) Diff(string) Expr            { return N(0) }
func (c *Const) Eval(Scope) (float64, error) { return c.val, nil }
func (c *Const) Equal(other Expr) bool       { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) Name() string                { return c.name }
func (c *Const) exprType() string            { return "const" }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums, folds numeric terms into one trailing
// constant and combines like terms (c1*t + c2*t). Terms keep their first
// occurrence order so printed output parses back to the same sum.
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	constant := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		c, rest := splitCoefficient(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], c)
	}
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		c := coeffs[key]
		switch {
		case c.IsZero():
		case c.IsOne():
			result = append(result, rests[key])
		default:
			result = append(result, MulOf(c, rests[key]))
		}
	}
	if !constant.IsZero() {
		result = append(result, constant)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string { return asciiPrinter.expr(a) }
func (a *Add) LaTeX() string  { return latexPrinter.expr(a) }

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval(s Scope) (float64, error) {
	acc := 0.0
	for _, t := range a.terms {
		v, err := t.Eval(s)
		if err != nil {
			return 0, err
		}
		acc += v
	}
	return finite("+", acc, acc)
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// splitCoefficient separates a leading numeric factor from a term.
func splitCoefficient(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) < 2 {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), e
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return c, rest[0]
	}
	return c, &Mul{factors: rest}
}

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Simplify flattens nested products, folds numeric factors into a leading
// coefficient and merges equal bases by adding exponents (x*x -> x^2)
// where canMergeExponents allows it.
func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	type power struct{ base, exp Expr }
	coeff := N(1)
	powers := []power{}
	index := map[string][]int{}
outer:
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		for _, i := range index[key] {
			if canMergeExponents(base, powers[i].exp, exp) {
				powers[i].exp = AddOf(powers[i].exp, exp)
				continue outer
			}
		}
		index[key] = append(index[key], len(powers))
		powers = append(powers, power{base: base, exp: exp})
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := []Expr{}
	again := false
	for _, pw := range powers {
		f := PowOf(pw.base, pw.exp)
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			// an integer power distributed over a product
			others = append(others, v.factors...)
			again = true
		default:
			others = append(others, f)
		}
	}
	if again {
		return MulOf(append([]Expr{coeff}, others...)...)
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(sorted) == 1 {
			return sorted[0]
		}
		return &Mul{factors: sorted}
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...)}
}

func (m *Mul) String() string { return asciiPrinter.expr(m) }
func (m *Mul) LaTeX() string  { return latexPrinter.expr(m) }

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors))
		others = append(others, dfi)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		terms[i] = MulOf(others...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval(s Scope) (float64, error) {
	acc := 1.0
	for _, f := range m.factors {
		v, err := f.Eval(s)
		if err != nil {
			return 0, err
		}
		acc *= v
	}
	return finite("*", acc, acc)
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	if bn, ok := base.(*Num); ok {
		switch {
		case bn.IsZero():
			// 0^negative is a division by zero and stays unevaluated.
			if expIsNum && !en.IsNegative() {
				return N(0)
			}
			return &Pow{base: base, exp: exp}
		case bn.IsOne():
			return N(1)
		case expIsNum && en.IsInteger() && en.val.Num().IsInt64():
			e := en.val.Num().Int64()
			if e >= -20 && e <= 20 {
				result := N(1)
				for i := int64(0); i < absInt(e); i++ {
					result = numMul(result, bn)
				}
				if e < 0 {
					return numRecip(result)
				}
				return result
			}
		}
	}

	// Integer exponents distribute over products. They merge into an
	// inner power only when that keeps the domain: (x^(1/2))^2 is
	// undefined for x < 0 while x is not.
	if expIsNum && en.IsInteger() {
		switch b := base.(type) {
		case *Pow:
			if canMergeExponents(b.base, b.exp, en) {
				return PowOf(b.base, MulOf(b.exp, en))
			}
		case *Mul:
			factors := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				factors[i] = PowOf(f, en)
			}
			return MulOf(factors...)
		}
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string { return asciiPrinter.expr(p) }
func (p *Pow) LaTeX() string  { return latexPrinter.expr(p) }

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if !DependsOn(p.exp, varName) {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if !DependsOn(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval(s Scope) (float64, error) {
	b, err := p.base.Eval(s)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.Eval(s)
	if err != nil {
		return 0, err
	}
	if b == 0 && e < 0 {
		return 0, &EvalError{Op: "^", Arg: b, Reason: "division by zero"}
	}
	return finite("^", b, math.Pow(b, e))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// canMergeExponents reports whether base^a combined with base^b into a
// single power is defined wherever the original was. That holds for
// integer exponents and for positive constant bases.
func canMergeExponents(base, a, b Expr) bool {
	switch v := base.(type) {
	case *Const:
		return true
	case *Num:
		if v.val.Sign() > 0 {
			return true
		}
	}
	return isInteger(a) && isInteger(b)
}

func isInteger(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsInteger()
}

func absInt(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// ============================================================
// Free symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	collectSymbols(e, out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// DependsOn reports whether varName occurs free in e.
func DependsOn(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}
