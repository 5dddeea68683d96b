package symbolic

import (
	"math/big"
	"strings"
)

// ============================================================
// Printing
// ============================================================

// printer renders a tree either as plain ASCII (the canonical form, which
// Parse accepts back) or as LaTeX for display.
type printer struct{ latex bool }

var (
	asciiPrinter = printer{}
	latexPrinter = printer{latex: true}
	bigOne       = big.NewInt(1)
)

func (p printer) expr(e Expr) string {
	switch v := e.(type) {
	case *Num:
		return p.num(v)
	case *Sym:
		return v.name
	case *Const:
		if p.latex && v.name == "pi" {
			return `\pi`
		}
		return v.name
	case *Add:
		return p.add(v)
	case *Mul:
		return p.mul(v)
	case *Pow:
		return p.pow(v)
	case *Func:
		return p.fn(v)
	}
	return e.String()
}

func (p printer) num(n *Num) string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	if !p.latex {
		return n.val.RatString()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return sign + `\frac{` + v.Num().String() + "}{" + v.Denom().String() + "}"
}

func (p printer) add(a *Add) string {
	var sb strings.Builder
	for i, t := range a.terms {
		neg, s := p.term(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case i > 0 && neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// term splits the sign off a summand so sums print as "a - b".
func (p printer) term(t Expr) (bool, string) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return true, p.num(numNeg(v))
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			return true, p.product(numNeg(c), v.factors[1:])
		}
	}
	return false, p.expr(t)
}

func (p printer) mul(m *Mul) string {
	if c, ok := m.factors[0].(*Num); ok {
		if c.IsNegative() {
			return "-" + p.product(numNeg(c), m.factors[1:])
		}
		return p.product(c, m.factors[1:])
	}
	return p.product(N(1), m.factors)
}

// product prints coeff*factors for a positive coeff. The coefficient's
// denominator and factors with negative numeric exponents go below the
// fraction bar.
func (p printer) product(coeff *Num, factors []Expr) string {
	var num, den []string
	if n := coeff.val.Num(); n.Cmp(bigOne) != 0 {
		num = append(num, n.String())
	}
	if d := coeff.val.Denom(); d.Cmp(bigOne) != 0 {
		den = append(den, d.String())
	}
	for _, f := range factors {
		if pw, ok := f.(*Pow); ok {
			if en, ok := pw.exp.(*Num); ok && en.IsNegative() {
				den = append(den, p.factor(PowOf(pw.base, numNeg(en))))
				continue
			}
		}
		num = append(num, p.factor(f))
	}

	sep := "*"
	if p.latex {
		sep = " "
	}
	numStr := "1"
	if len(num) > 0 {
		numStr = strings.Join(num, sep)
	}
	if len(den) == 0 {
		return numStr
	}
	denStr := strings.Join(den, sep)
	if p.latex {
		return `\frac{` + numStr + "}{" + denStr + "}"
	}
	if len(den) > 1 {
		denStr = "(" + denStr + ")"
	}
	return numStr + "/" + denStr
}

func (p printer) factor(f Expr) string {
	switch f.(type) {
	case *Add, *Mul:
		return p.paren(p.expr(f))
	}
	return p.expr(f)
}

func (p printer) pow(v *Pow) string {
	if en, ok := v.exp.(*Num); ok && en.IsNegative() {
		flipped := PowOf(v.base, numNeg(en))
		if p.latex {
			return `\frac{1}{` + p.expr(flipped) + "}"
		}
		return "1/" + p.factor(flipped)
	}
	base := p.expr(v.base)
	if !atomic(v.base) {
		base = p.paren(base)
	}
	exp := p.expr(v.exp)
	if p.latex {
		return base + "^{" + exp + "}"
	}
	if !atomic(v.exp) {
		exp = "(" + exp + ")"
	}
	return base + "^" + exp
}

func (p printer) fn(f *Func) string {
	arg := p.expr(f.arg)
	if !p.latex {
		return f.name + "(" + arg + ")"
	}
	switch f.name {
	case "sqrt":
		return `\sqrt{` + arg + "}"
	case "abs":
		return `\left|` + arg + `\right|`
	}
	return funcs[f.name].latex + p.paren(arg)
}

func (p printer) paren(s string) string {
	if p.latex {
		return `\left(` + s + `\right)`
	}
	return "(" + s + ")"
}

// atomic reports whether e prints without needing grouping as a power
// base or exponent.
func atomic(e Expr) bool {
	switch v := e.(type) {
	case *Sym, *Const, *Func:
		return true
	case *Num:
		return v.IsInteger() && !v.IsNegative()
	}
	return false
}
