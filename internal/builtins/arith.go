package builtins

import (
	"errors"
	"math"
	"math/bits"
	"strings"

	"github.com/funvibe/funcalc/internal/operators"
	"github.com/funvibe/funcalc/internal/value"
)

var (
	ErrDivisionByZero = errors.New("Division by zero!")
	ErrZeroPower      = errors.New("Cannot compute 0^x")
	ErrComplexPower   = errors.New("(-x)^(non int): Complex not allowed")
	ErrNotAssignable  = errors.New("Cannot assign to that!")
)

var errIncompatible = operators.ErrIncompatible

// number extracts an Int or Real operand.
func number(v value.Value) (f float64, isInt bool, ok bool) {
	switch n := v.(type) {
	case value.Int:
		return float64(n), true, true
	case value.Real:
		return float64(n), false, true
	}
	return 0, false, false
}

// addInt, subInt and mulInt report false when the result does not fit in
// an int64; the operators then fall back to a real result.
func addInt(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func subInt(a, b int64) (int64, bool) {
	c := a - b
	return c, (c < a) == (b > 0)
}

func mulInt(a, b int64) (int64, bool) {
	hi, lo := bits.Mul64(absInt(a), absInt(b))
	if hi != 0 {
		return 0, false
	}
	if (a < 0) != (b < 0) {
		if lo > 1<<63 {
			return 0, false
		}
		return -int64(lo), true
	}
	if lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

func absInt(a int64) uint64 {
	if a < 0 {
		return uint64(-a)
	}
	return uint64(a)
}

func Add(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	if a, ok := l.(value.Int); ok {
		if b, ok := r.(value.Int); ok {
			if c, ok := addInt(int64(a), int64(b)); ok {
				return value.Int(c), nil
			}
		}
	}
	if a, _, ok := number(l); ok {
		if b, _, ok := number(r); ok {
			return value.Real(a + b), nil
		}
		return nil, errIncompatible
	}
	switch a := l.(type) {
	case value.String:
		if b, ok := r.(value.String); ok {
			return a + b, nil
		}
	case value.FlatVector:
		if b, ok := r.(value.FlatVector); ok {
			return value.FlatVector{X: a.X + b.X, Y: a.Y + b.Y}, nil
		}
	case value.SpaceVector:
		if b, ok := r.(value.SpaceVector); ok {
			return value.SpaceVector{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}, nil
		}
	case *value.Set:
		if b, ok := r.(*value.Set); ok {
			return a.Concat(b), nil
		}
	case *value.Array:
		if b, ok := r.(*value.Array); ok {
			return a.Concat(b), nil
		}
	}
	return nil, errIncompatible
}

func Subtract(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	if a, ok := l.(value.Int); ok {
		if b, ok := r.(value.Int); ok {
			if c, ok := subInt(int64(a), int64(b)); ok {
				return value.Int(c), nil
			}
		}
	}
	if a, _, ok := number(l); ok {
		if b, _, ok := number(r); ok {
			return value.Real(a - b), nil
		}
		return nil, errIncompatible
	}
	switch a := l.(type) {
	case value.FlatVector:
		if b, ok := r.(value.FlatVector); ok {
			return value.FlatVector{X: a.X - b.X, Y: a.Y - b.Y}, nil
		}
	case value.SpaceVector:
		if b, ok := r.(value.SpaceVector); ok {
			return value.SpaceVector{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}, nil
		}
	}
	return nil, errIncompatible
}

func Multiply(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	if a, ok := l.(value.Int); ok {
		if b, ok := r.(value.Int); ok {
			if c, ok := mulInt(int64(a), int64(b)); ok {
				return value.Int(c), nil
			}
		}
	}
	a, _, lnum := number(l)
	b, _, rnum := number(r)
	switch {
	case lnum && rnum:
		return value.Real(a * b), nil
	case lnum:
		return scale(r, a)
	case rnum:
		return scale(l, b)
	}
	switch x := l.(type) {
	case value.FlatVector:
		if y, ok := r.(value.FlatVector); ok {
			return value.Real(x.X*y.X + x.Y*y.Y), nil
		}
	case value.SpaceVector:
		if y, ok := r.(value.SpaceVector); ok {
			return value.Real(x.X*y.X + x.Y*y.Y + x.Z*y.Z), nil
		}
	}
	return nil, errIncompatible
}

func scale(v value.Value, k float64) (value.Value, error) {
	switch x := v.(type) {
	case value.FlatVector:
		return value.FlatVector{X: x.X * k, Y: x.Y * k}, nil
	case value.SpaceVector:
		return value.SpaceVector{X: x.X * k, Y: x.Y * k, Z: x.Z * k}, nil
	}
	return nil, errIncompatible
}

func Divide(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	d, _, ok := number(r)
	if !ok {
		return nil, errIncompatible
	}
	if _, isNum := value.Number(l); !isNum {
		if _, ok := l.(value.FlatVector); !ok {
			if _, ok := l.(value.SpaceVector); !ok {
				return nil, errIncompatible
			}
		}
	}
	if d == 0 || s.IsZero(d) {
		return nil, ErrDivisionByZero
	}
	if a, ok := l.(value.Int); ok {
		if b, ok := r.(value.Int); ok && a%b == 0 {
			return a / b, nil
		}
	}
	if a, _, ok := number(l); ok {
		return value.Real(a / d), nil
	}
	return scale(l, 1/d)
}

func Power(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	base, baseInt, ok := number(l)
	if !ok {
		return nil, errIncompatible
	}
	expon, exponInt, ok := number(r)
	if !ok {
		return nil, errIncompatible
	}
	if base == 0 && expon <= 0 {
		return nil, ErrZeroPower
	}
	if base < 0 && !exponInt {
		return nil, ErrComplexPower
	}
	if baseInt && exponInt && expon >= 0 {
		if p, ok := intPow(int64(l.(value.Int)), int64(r.(value.Int))); ok {
			return value.Int(p), nil
		}
	}
	return value.Real(math.Pow(base, expon)), nil
}

// intPow reports false when b^e does not fit in an int64.
func intPow(b, e int64) (int64, bool) {
	result := int64(1)
	for e > 0 {
		var ok bool
		if e&1 == 1 {
			if result, ok = mulInt(result, b); !ok {
				return 0, false
			}
		}
		e >>= 1
		if e > 0 {
			if b, ok = mulInt(b, b); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

// Compare implements == != < <= > >=.
func Compare(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	if op == "==" {
		return value.Bool(value.Equal(l, r)), nil
	}
	if op == "!=" {
		return value.Bool(!value.Equal(l, r)), nil
	}

	var c int
	if a, ok := value.Number(l); ok {
		b, ok := value.Number(r)
		if !ok {
			return nil, errIncompatible
		}
		switch {
		case a < b:
			c = -1
		case a > b:
			c = 1
		}
	} else if a, ok := l.(value.String); ok {
		b, ok := r.(value.String)
		if !ok {
			return nil, errIncompatible
		}
		c = strings.Compare(string(a), string(b))
	} else {
		return nil, errIncompatible
	}

	switch op {
	case "<":
		return value.Bool(c < 0), nil
	case "<=":
		return value.Bool(c <= 0), nil
	case ">":
		return value.Bool(c > 0), nil
	case ">=":
		return value.Bool(c >= 0), nil
	}
	return nil, errIncompatible
}

// Logic implements && and ||. Both operands are already evaluated.
func Logic(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	a, ok := value.Truth(l)
	if !ok {
		return nil, errIncompatible
	}
	b, ok := value.Truth(r)
	if !ok {
		return nil, errIncompatible
	}
	if op == "&&" {
		return value.Bool(a && b), nil
	}
	return value.Bool(a || b), nil
}

// Assign implements = and the compound assignments. The left operand
// arrives unresolved.
func Assign(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	lv, ok := l.(*value.LValue)
	if !ok || lv.Assign == nil {
		return nil, ErrNotAssignable
	}
	v := r
	if op != "=" {
		if lv.Current == nil {
			return nil, errors.New("Variable has no value!")
		}
		var err error
		switch op {
		case "+=":
			v, err = Add("+", lv.Current, r, s)
		case "-=":
			v, err = Subtract("-", lv.Current, r, s)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := lv.Assign(v); err != nil {
		return nil, err
	}
	return v, nil
}

func Negate(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	switch x := l.(type) {
	case value.Int:
		if x == math.MinInt64 {
			return -value.Real(x), nil
		}
		return -x, nil
	case value.Real:
		return -x, nil
	case value.FlatVector:
		return value.FlatVector{X: -x.X, Y: -x.Y}, nil
	case value.SpaceVector:
		return value.SpaceVector{X: -x.X, Y: -x.Y, Z: -x.Z}, nil
	}
	return nil, errIncompatible
}

func Positive(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	switch l.(type) {
	case value.Int, value.Real, value.FlatVector, value.SpaceVector:
		return l, nil
	}
	return nil, errIncompatible
}

func Not(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	t, ok := value.Truth(l)
	if !ok {
		return nil, errIncompatible
	}
	return value.Bool(!t), nil
}

func Factorial(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	n, ok := l.(value.Int)
	if !ok {
		return nil, errIncompatible
	}
	if n < 0 {
		return nil, errors.New("Factorial needs a non-negative integer!")
	}
	if n > 20 {
		return value.Real(math.Gamma(float64(n) + 1)), nil
	}
	f := value.Int(1)
	for i := value.Int(2); i <= n; i++ {
		f *= i
	}
	return f, nil
}
