package symbolic

import (
	"fmt"
	"math/big"
	"strings"
)

// ============================================================
// Parsing
// ============================================================

// ParseError reports the byte offset of the first offending token.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("symbolic: parse error at %d: %s", e.Pos, e.Msg)
}

// maxDepth bounds parenthesis and unary nesting.
const maxDepth = 256

type tokenType int

const (
	tokEOF tokenType = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	typ tokenType
	val string
	pos int
}

func (t token) describe() string {
	if t.typ == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.val)
}

// Parse reads an infix expression in x. Supported: + - * / ^ (and ** as a
// synonym for ^), unary signs, parentheses, the functions listed by
// FuncNames, pow(a, b), log(a, b) and the constants pi and e. Number
// literals may carry an exponent (1e-3, 2.5E4). Multiplication must be
// written explicitly.
func Parse(input string) (Expr, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.typ != tokEOF {
		if t.typ == tokRParen {
			return nil, &ParseError{Pos: t.pos, Msg: "unbalanced )"}
		}
		return nil, &ParseError{Pos: t.pos, Msg: "unexpected " + t.describe() + " (missing operator?)"}
	}
	return e, nil
}

// MustParse is Parse for known-good literals; it panics on error.
func MustParse(input string) Expr {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || c == '.':
			start := i
			dots := 0
			for i < len(input) && (isDigit(input[i]) || input[i] == '.') {
				if input[i] == '.' {
					dots++
				}
				i++
			}
			if n := exponentLen(input[i:]); n > 0 {
				if n > maxExponentLen {
					return nil, &ParseError{Pos: i, Msg: fmt.Sprintf("exponent %q is too large", input[i:i+n])}
				}
				i += n
			}
			lit := input[start:i]
			if dots > 1 || strings.HasPrefix(lit, ".e") || strings.HasPrefix(lit, ".E") || lit == "." {
				return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("malformed number %q", lit)}
			}
			tokens = append(tokens, token{typ: tokNum, val: lit, pos: start})
		case isLetter(c):
			start := i
			for i < len(input) && (isLetter(input[i]) || isDigit(input[i]) || input[i] == '_') {
				i++
			}
			tokens = append(tokens, token{typ: tokIdent, val: input[start:i], pos: start})
		case c == '*' && i+1 < len(input) && input[i+1] == '*':
			tokens = append(tokens, token{typ: tokOp, val: "^", pos: i})
			i += 2
		case strings.IndexByte("+-*/^", c) >= 0:
			tokens = append(tokens, token{typ: tokOp, val: string(c), pos: i})
			i++
		case c == '(':
			tokens = append(tokens, token{typ: tokLParen, val: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{typ: tokRParen, val: ")", pos: i})
			i++
		case c == ',':
			tokens = append(tokens, token{typ: tokComma, val: ",", pos: i})
			i++
		default:
			return nil, &ParseError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	tokens = append(tokens, token{typ: tokEOF, pos: len(input)})
	return tokens, nil
}

// maxExponentLen bounds a scientific-notation suffix such as e-300, so a
// literal cannot expand into an arbitrarily large exact rational.
const maxExponentLen = 5

// exponentLen returns the length of a leading e[+-]digits suffix, or 0
// when s does not start with one. A bare e stays the constant.
func exponentLen(s string) int {
	if len(s) < 2 || (s[0] != 'e' && s[0] != 'E') {
		return 0
	}
	i := 1
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return 0
	}
	return i
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

type parser struct {
	tokens  []token
	current int
	depth   int
}

func (p *parser) peek() token { return p.tokens[p.current] }

func (p *parser) next() token {
	t := p.tokens[p.current]
	if t.typ != tokEOF {
		p.current++
	}
	return t
}

func (p *parser) isOp(ops string) bool {
	t := p.peek()
	return t.typ == tokOp && strings.Contains(ops, t.val)
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return &ParseError{Pos: p.peek().pos, Msg: "expression nested too deeply"}
	}
	return nil
}

// expr := term { ("+" | "-") term }
func (p *parser) parseExpression() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+-") {
		op := p.next().val
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			right = negate(right)
		}
		left = AddOf(left, right)
	}
	return left, nil
}

// term := unary { ("*" | "/") unary }
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*/") {
		op := p.next().val
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "/" {
			right = PowOf(right, N(-1))
		}
		left = MulOf(left, right)
	}
	return left, nil
}

// unary := ("-" | "+") unary | power
func (p *parser) parseUnary() (Expr, error) {
	if p.isOp("+-") {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer func() { p.depth-- }()
		op := p.next().val
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return negate(operand), nil
		}
		return operand, nil
	}
	return p.parsePower()
}

// power := primary [ "^" unary ], right-associative.
func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return PowOf(base, exp), nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.typ {
	case tokNum:
		r, ok := new(big.Rat).SetString(t.val)
		if !ok {
			return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("malformed number %q", t.val)}
		}
		return NRat(r), nil

	case tokIdent:
		if p.peek().typ == tokLParen {
			return p.parseCall(t)
		}
		switch t.val {
		case Var:
			return X(), nil
		case "pi":
			return Pi, nil
		case "e":
			return E, nil
		}
		if IsFunc(t.val) || t.val == "pow" {
			return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("function %s needs an argument list", t.val)}
		}
		return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unknown identifier %q", t.val)}

	case tokLParen:
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.typ != tokRParen {
			return nil, &ParseError{Pos: c.pos, Msg: "expected ), found " + c.describe()}
		}
		return e, nil
	}
	return nil, &ParseError{Pos: t.pos, Msg: "unexpected " + t.describe()}
}

func (p *parser) parseCall(name token) (Expr, error) {
	p.next() // (
	var args []Expr
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t := p.next()
		if t.typ == tokRParen {
			break
		}
		if t.typ != tokComma {
			return nil, &ParseError{Pos: t.pos, Msg: "expected , or ) in call to " + name.val + ", found " + t.describe()}
		}
	}

	switch {
	case name.val == "pow" && len(args) == 2:
		return PowOf(args[0], args[1]), nil
	case name.val == "log" && len(args) == 2:
		// log(a, b) is the logarithm of a to base b.
		return MulOf(LnOf(args[0]), PowOf(LnOf(args[1]), N(-1))), nil
	case name.val == "pow":
		return nil, &ParseError{Pos: name.pos, Msg: "pow takes 2 arguments"}
	}
	if len(args) != 1 {
		if IsFunc(name.val) {
			return nil, &ParseError{Pos: name.pos, Msg: fmt.Sprintf("%s takes 1 argument, got %d", name.val, len(args))}
		}
	}
	e, ok := FuncOf(name.val, args[0])
	if !ok {
		return nil, &ParseError{Pos: name.pos, Msg: fmt.Sprintf("unknown function %q", name.val)}
	}
	return e, nil
}

func negate(e Expr) Expr {
	if n, ok := e.(*Num); ok {
		return numNeg(n)
	}
	return MulOf(N(-1), e)
}
