// Package validate checks user input before any computation runs: the
// function string must parse, and the bounds must be finite with
// lower < upper.
package validate

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/njchilds90/gorevolve/symbolic"
)

// Code identifies a validation failure.
type Code string

const (
	CodeEmptyExpression       Code = "empty_expression"
	CodeUnparseableExpression Code = "unparseable_expression"
	CodeNonNumericBounds      Code = "non_numeric_bounds"
	CodeInvertedBounds        Code = "inverted_bounds"
	CodeNonFiniteBounds       Code = "non_finite_bounds"
)

// Error is a validation failure. Pos is the byte offset of a parse
// failure in the normalized input, or -1.
type Error struct {
	Code   Code   `json:"code"`
	Detail string `json:"detail,omitempty"`
	Pos    int    `json:"pos"`
	Err    error  `json:"-"`
}

func (e *Error) Error() string {
	msg := "validate: " + e.Message(LocaleEN)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Code, so callers can test
// errors.Is(err, &validate.Error{Code: validate.CodeInvertedBounds}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Result is the outcome of one check. Canonical is set for valid
// expressions only.
type Result struct {
	Valid     bool   `json:"valid"`
	Err       *Error `json:"error,omitempty"`
	Canonical string `json:"canonical,omitempty"`
}

// AsError returns the failure as an error value, or nil.
func (r Result) AsError() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

func invalid(code Code, detail string, pos int, err error) Result {
	return Result{Err: &Error{Code: code, Detail: detail, Pos: pos, Err: err}}
}

// Interval is a validated pair of bounds.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

var expOfX = regexp.MustCompile(`\be\s*\^\s*x\b`)

// Normalize rewrites a literal e^x as exp(x), unless the x carries its own
// exponent, then maps ** to ^.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	var sb strings.Builder
	last := 0
	for _, m := range expOfX.FindAllStringIndex(s, -1) {
		rest := strings.TrimLeft(s[m[1]:], " \t")
		if strings.HasPrefix(rest, "^") || strings.HasPrefix(rest, "**") {
			continue
		}
		sb.WriteString(s[last:m[0]])
		sb.WriteString("exp(x)")
		last = m[1]
	}
	sb.WriteString(s[last:])
	return strings.ReplaceAll(sb.String(), "**", "^")
}

// Expression validates and canonicalizes a function string. Input that
// does not parse is rejected with CodeUnparseableExpression.
func Expression(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return invalid(CodeEmptyExpression, "", -1, nil)
	}
	e, err := symbolic.Parse(Normalize(raw))
	if err != nil {
		pos := -1
		detail := err.Error()
		var pe *symbolic.ParseError
		if errors.As(err, &pe) {
			pos, detail = pe.Pos, pe.Msg
		}
		return invalid(CodeUnparseableExpression, detail, pos, err)
	}
	return Result{Valid: true, Canonical: e.String()}
}

// Bounds checks, in order: NaN, lower >= upper, infinities.
func Bounds(lower, upper float64) Result {
	switch {
	case math.IsNaN(lower) || math.IsNaN(upper):
		return invalid(CodeNonNumericBounds, "", -1, nil)
	case lower >= upper:
		return invalid(CodeInvertedBounds, "", -1, nil)
	case math.IsInf(lower, 0) || math.IsInf(upper, 0):
		return invalid(CodeNonFiniteBounds, "", -1, nil)
	}
	return Result{Valid: true}
}

// ParseBounds parses textual bounds and then applies Bounds. Overflowing
// literals parse as infinities and fail as non-finite.
func ParseBounds(lower, upper string) (Interval, Result) {
	lo, ok := parseBound(lower)
	if !ok {
		return Interval{}, invalid(CodeNonNumericBounds, strconv.Quote(lower), -1, nil)
	}
	hi, ok := parseBound(upper)
	if !ok {
		return Interval{}, invalid(CodeNonNumericBounds, strconv.Quote(upper), -1, nil)
	}
	r := Bounds(lo, hi)
	if !r.Valid {
		return Interval{}, r
	}
	return Interval{Lower: lo, Upper: hi}, r
}

func parseBound(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}
