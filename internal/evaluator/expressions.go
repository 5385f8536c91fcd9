package evaluator

import (
	"errors"
	"strconv"

	"github.com/funvibe/funcalc/internal/builtins"
	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/lexer"
	"github.com/funvibe/funcalc/internal/operators"
	"github.com/funvibe/funcalc/internal/value"
)

// expression evaluates a full expression and resolves the result.
func (in *Interpreter) expression() (value.Value, error) {
	v, err := in.evalLevel(0)
	if err != nil {
		return nil, err
	}
	return value.Resolve(v), nil
}

func (in *Interpreter) rest() string {
	return in.cur.Input()[in.cur.Pos():]
}

// evalLevel is the precedence climber. Levels past the last binary level
// parse unary operators and primaries.
func (in *Interpreter) evalLevel(i int) (value.Value, error) {
	if i >= in.ops.NumLevels() {
		return in.unary()
	}
	c := in.cur
	level := in.ops.Level(i)

	left, err := in.evalLevel(i + 1)
	if err != nil {
		return nil, err
	}
	for {
		c.SkipWhitespace()
		at := c.Mark()
		tok, cands := in.ops.LookupBinary(in.rest(), i)
		if tok == "" {
			return left, nil
		}
		c.Advance(len(tok))

		next := i + 1
		if level.Assoc == operators.BinaryRtoL {
			next = i
		}
		right, err := in.evalLevel(next)
		if err != nil {
			return nil, err
		}
		if left, err = in.apply(at, tok, cands, left, right); err != nil {
			return nil, err
		}
	}
}

func (in *Interpreter) unary() (value.Value, error) {
	c := in.cur
	c.SkipWhitespace()
	at := c.Mark()

	var v value.Value
	if tok, cands := in.ops.Lookup(in.rest(), operators.LeftUnary); tok != "" {
		c.Advance(len(tok))
		operand, err := in.unary()
		if err != nil {
			return nil, err
		}
		if v, err = in.apply(at, tok, cands, operand, nil); err != nil {
			return nil, err
		}
	} else {
		var err error
		if v, err = in.primary(); err != nil {
			return nil, err
		}
		if v == nil && c.Pos() == at.Pos {
			return nil, in.errorAt(at, diagnostics.ErrP002, "Expected a value!")
		}
	}

	for {
		c.SkipWhitespace()
		at := c.Mark()
		tok, cands := in.ops.Lookup(in.rest(), operators.RightUnary)
		if tok == "" {
			return v, nil
		}
		c.Advance(len(tok))
		var err error
		if v, err = in.apply(at, tok, cands, v, nil); err != nil {
			return nil, err
		}
	}
}

// apply runs the overloads of tok in registration order until one accepts
// the operands.
func (in *Interpreter) apply(at lexer.Mark, tok string, cands []*operators.Entry, left, right value.Value) (value.Value, error) {
	binary := cands[0].Assoc.IsBinary()
	for _, e := range cands {
		l, r := left, value.Resolve(right)
		if !e.LValue {
			l = value.Resolve(l)
		}
		if l == nil || (binary && r == nil) {
			return nil, in.errorAt(at, diagnostics.ErrP002, "Expected a value!")
		}
		v, err := e.Eval(tok, l, r, in.settings)
		if errors.Is(err, operators.ErrIncompatible) {
			continue
		}
		if err != nil {
			var de *diagnostics.DiagnosticError
			switch {
			case errors.As(err, &de):
				return nil, de
			case errors.Is(err, builtins.ErrNotAssignable):
				return nil, in.errorAt(at, diagnostics.ErrS008, err.Error())
			}
			return nil, in.errorAt(at, diagnostics.ErrM002, err.Error())
		}
		return v, nil
	}
	return nil, in.errorAt(at, diagnostics.ErrM001, "Cannot compute with given values.")
}

// primary parses a literal, a name or a bracketed list. It returns nil
// without moving when nothing at the cursor starts a value.
func (in *Interpreter) primary() (value.Value, error) {
	c := in.cur
	c.SkipWhitespace()
	at := c.Mark()

	var v value.Value
	var err error
	switch ch := c.Peek(); {
	case c.AtEnd():
		return nil, nil
	case ch == '(' || ch == '{' || ch == '[':
		c.Advance(1)
		v, err = in.list(at, ch)
	case ch == '"' || ch == '\'':
		var s string
		if s, err = c.ReadQuotedString(); err != nil {
			return nil, in.lexical(at, err)
		}
		v = value.String(s)
	case lexer.IsDigit(ch) || ch == '.' && lexer.IsDigit(c.PeekAt(1)):
		v, err = in.number()
	case lexer.IsNameStart(ch):
		v, err = in.name()
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return in.deref(v)
}

// list parses the elements of a set, vector or array whose opening
// bracket was consumed. Parenthesized lists of two or three numbers are
// vectors; a parenthesized single element is the element itself.
func (in *Interpreter) list(at lexer.Mark, open byte) (value.Value, error) {
	c := in.cur
	closer := byte(')')
	switch open {
	case '{':
		closer = '}'
	case '[':
		closer = ']'
	}

	var elems []value.Value
	if c.MatchChar(closer) {
		if open != '{' {
			return nil, in.errorAt(at, diagnostics.ErrP002, "Expected a value!")
		}
		return value.NewSet(), nil
	}
	for {
		c.SkipWhitespace()
		elemAt := c.Mark()
		v, err := in.expression()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, in.errorAt(elemAt, diagnostics.ErrP002, "Expected a value!")
		}
		elems = append(elems, v)
		if c.MatchChar(',') {
			continue
		}
		if c.MatchChar(closer) {
			break
		}
		return nil, in.expected(closer)
	}

	switch open {
	case '[':
		return value.NewArray(elems...), nil
	case '{':
		return value.NewSet(elems...), nil
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	if xs, ok := numbers(elems); ok {
		switch len(xs) {
		case 2:
			return value.FlatVector{X: xs[0], Y: xs[1]}, nil
		case 3:
			return value.SpaceVector{X: xs[0], Y: xs[1], Z: xs[2]}, nil
		}
	}
	return value.NewSet(elems...), nil
}

func numbers(vs []value.Value) ([]float64, bool) {
	out := make([]float64, len(vs))
	for i, v := range vs {
		switch n := v.(type) {
		case value.Int:
			out[i] = float64(n)
		case value.Real:
			out[i] = float64(n)
		default:
			return nil, false
		}
	}
	return out, true
}

// number parses an integer, a hexadecimal integer or a real.
func (in *Interpreter) number() (value.Value, error) {
	c := in.cur
	at := c.Mark()
	text := in.rest()

	if len(text) > 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') && isHexDigit(text[2]) {
		end := 2
		for end < len(text) && isHexDigit(text[end]) {
			end++
		}
		n, err := strconv.ParseInt(text[2:end], 16, 64)
		if err != nil {
			return nil, in.errorAt(at, diagnostics.ErrP005, "Malformed number!")
		}
		c.Advance(end)
		return value.Int(n), nil
	}

	end := digits(text, 0)
	isReal := false
	if end < len(text) && text[end] == '.' {
		isReal = true
		end = digits(text, end+1)
	}
	if end < len(text) && (text[end] == 'e' || text[end] == 'E') {
		exp := end + 1
		if exp < len(text) && (text[exp] == '+' || text[exp] == '-') {
			exp++
		}
		if exp < len(text) && lexer.IsDigit(text[exp]) {
			isReal = true
			end = digits(text, exp)
		}
	}

	lit := text[:end]
	c.Advance(end)
	if !isReal {
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return value.Int(n), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		var ne *strconv.NumError
		if !errors.As(err, &ne) || !errors.Is(ne.Err, strconv.ErrRange) {
			return nil, in.errorAt(at, diagnostics.ErrP005, "Malformed number!")
		}
	}
	return value.Real(f), nil
}

func digits(s string, i int) int {
	for i < len(s) && lexer.IsDigit(s[i]) {
		i++
	}
	return i
}

func isHexDigit(ch byte) bool {
	return lexer.IsDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

// deref applies .member and [index] suffixes written directly after a value.
func (in *Interpreter) deref(v value.Value) (value.Value, error) {
	c := in.cur
	for {
		at := c.Mark()
		switch {
		case c.Peek() == '.' && lexer.IsNameStart(c.PeekAt(1)):
			c.Advance(1)
			name := c.ReadName()
			c.Advance(len(name))
			m, ok := member(value.Resolve(v), name)
			if !ok {
				return nil, in.errorAt(at, diagnostics.ErrS001, "Unknown member "+name+"!")
			}
			v = m
		case c.Peek() == '[':
			c.Advance(1)
			c.SkipWhitespace()
			idxAt := c.Mark()
			idx, err := in.expression()
			if err != nil {
				return nil, err
			}
			if !c.MatchChar(']') {
				return nil, in.expected(']')
			}
			n, ok := idx.(value.Int)
			if !ok {
				return nil, in.errorAt(idxAt, diagnostics.ErrS004, "Index must be an integer!")
			}
			e, ok := element(value.Resolve(v), int(n))
			if !ok {
				return nil, in.errorAt(idxAt, diagnostics.ErrS004, "Index out of range!")
			}
			v = e
		default:
			return v, nil
		}
	}
}

func member(v value.Value, name string) (value.Value, bool) {
	switch x := v.(type) {
	case value.FlatVector:
		switch name {
		case "x":
			return value.Real(x.X), true
		case "y":
			return value.Real(x.Y), true
		}
	case value.SpaceVector:
		switch name {
		case "x":
			return value.Real(x.X), true
		case "y":
			return value.Real(x.Y), true
		case "z":
			return value.Real(x.Z), true
		}
	case value.Collection:
		if name == "n" {
			return value.Int(x.Len()), true
		}
	case value.String:
		if name == "n" {
			return value.Int(len(x)), true
		}
	}
	return nil, false
}

func element(v value.Value, i int) (value.Value, bool) {
	switch x := v.(type) {
	case value.Collection:
		return x.Index(i)
	case value.FlatVector:
		return vectorElement([]float64{x.X, x.Y}, i)
	case value.SpaceVector:
		return vectorElement([]float64{x.X, x.Y, x.Z}, i)
	case value.String:
		if i < 0 || i >= len(x) {
			return nil, false
		}
		return x[i : i+1], true
	}
	return nil, false
}

func vectorElement(xs []float64, i int) (value.Value, bool) {
	if i < 0 || i >= len(xs) {
		return nil, false
	}
	return value.Real(xs[i]), true
}
