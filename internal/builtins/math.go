// Package builtins provides the Math module every interpreter starts with:
// the arithmetic operators, the numeric constants and the innate functions.
package builtins

import (
	"math"
	"math/rand/v2"

	"github.com/funvibe/funcalc/internal/config"
	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/modules"
	"github.com/funvibe/funcalc/internal/operators"
	"github.com/funvibe/funcalc/internal/value"
)

// Operator ranks of the Math module. Higher binds tighter.
const (
	RankAssign     = 50
	RankOr         = 100
	RankAnd        = 200
	RankComparison = 300
	RankAdditive   = 400
	RankMultiply   = 500
	RankPower      = 600
)

// Math builds a fresh Math module.
func Math() *modules.Module {
	m := modules.NewModule(config.MathModuleName, "Basic math operators and functions")
	addOperators(m)
	addConstants(m)
	addFunctions(m)
	return m
}

func addOperators(m *modules.Module) {
	binary := func(token string, assoc operators.Assoc, rank int, desc string, eval operators.Evaluator) {
		m.AddOperator(modules.OperatorSpec{Token: token, Assoc: assoc, Rank: rank, Description: desc, Eval: eval})
	}
	for _, tok := range []string{"=", "+=", "-="} {
		m.AddOperator(modules.OperatorSpec{
			Token: tok, Assoc: operators.BinaryRtoL, Rank: RankAssign,
			Description: "Assignment", Eval: Assign, LValue: true,
		})
	}
	binary("||", operators.BinaryLtoR, RankOr, "Logical or", Logic)
	binary("&&", operators.BinaryLtoR, RankAnd, "Logical and", Logic)
	for _, tok := range []string{"==", "!=", "<", "<=", ">", ">="} {
		binary(tok, operators.BinaryLtoR, RankComparison, "Comparison", Compare)
	}
	binary("+", operators.BinaryLtoR, RankAdditive, "Addition", Add)
	binary("-", operators.BinaryLtoR, RankAdditive, "Subtraction", Subtract)
	binary("*", operators.BinaryLtoR, RankMultiply, "Multiplication", Multiply)
	binary("/", operators.BinaryLtoR, RankMultiply, "Division", Divide)
	binary("^", operators.BinaryRtoL, RankPower, "Power", Power)

	m.AddOperator(modules.OperatorSpec{Token: "-", Assoc: operators.LeftUnary, Description: "Negation", Eval: Negate})
	m.AddOperator(modules.OperatorSpec{Token: "+", Assoc: operators.LeftUnary, Description: "Identity", Eval: Positive})
	m.AddOperator(modules.OperatorSpec{Token: "!", Assoc: operators.LeftUnary, Description: "Logical not", Eval: Not})
	m.AddOperator(modules.OperatorSpec{Token: "!", Assoc: operators.RightUnary, Description: "Factorial", Eval: Factorial})
}

func addConstants(m *modules.Module) {
	m.AddConstant("pi", "Pi", value.Real(math.Pi))
	m.AddConstant("e", "Euler's number", value.Real(math.E))
	m.AddConstant("E", "Euler's number", value.Real(math.E))
	m.AddConstant("tau", "Golden ratio", value.Real((1+math.Sqrt(5))/2))
	m.AddConstant(config.TrueName, "Boolean true", value.Bool(true))
	m.AddConstant(config.FalseName, "Boolean false", value.Bool(false))
}

var (
	paramD  = []modules.Param{{Name: "d", Type: "real"}}
	paramI  = []modules.Param{{Name: "i", Type: "int"}}
	paramXY = []modules.Param{{Name: "y", Type: "real"}, {Name: "x", Type: "real"}}
)

// real1 wraps a one-argument real function. check, when set, returns a
// domain error message for bad input.
func real1(f func(s value.EvalSettings, d float64) float64, check func(d float64) string) modules.Function {
	return func(ctx *modules.CallContext, args modules.Args, log *diagnostics.Log) (value.Value, modules.Status) {
		d, err := args.Number(0)
		if err != nil {
			log.Fail(err.Error())
			return nil, modules.StatusFail
		}
		if check != nil {
			if msg := check(d); msg != "" {
				log.Fail(msg)
				return nil, modules.StatusFail
			}
		}
		return value.Real(f(ctx.Settings, d)), modules.StatusOk
	}
}

// int1 wraps a rounding function whose result is an integer.
func int1(f func(float64) float64) modules.Function {
	return func(ctx *modules.CallContext, args modules.Args, log *diagnostics.Log) (value.Value, modules.Status) {
		if i, ok := args.At(0).(value.Int); ok {
			return i, modules.StatusOk
		}
		d, err := args.Number(0)
		if err != nil {
			log.Fail(err.Error())
			return nil, modules.StatusFail
		}
		return value.Int(int64(f(d))), modules.StatusOk
	}
}

func nonNegative(d float64) string {
	if d < 0 {
		return "Parameter must be greater than or equal to 0"
	}
	return ""
}

func positive(d float64) string {
	if d <= 0 {
		return "Parameter must be greater than 0"
	}
	return ""
}

func unitRange(d float64) string {
	if d < -1 || d > 1 {
		return "Parameter must be in range [-1,1]"
	}
	return ""
}

func addFunctions(m *modules.Module) {
	trig := func(name, desc string, f func(float64) float64) {
		m.AddFunction(name, desc, paramD, real1(func(s value.EvalSettings, d float64) float64 {
			return f(s.AngleIn(d))
		}, nil))
	}
	trig("sin", "Sine", math.Sin)
	trig("cos", "Cosine", math.Cos)
	trig("tan", "Tangent", math.Tan)

	arc := func(name, desc string, f func(float64) float64, check func(float64) string) {
		m.AddFunction(name, desc, paramD, real1(func(s value.EvalSettings, d float64) float64 {
			return s.AngleOut(f(d))
		}, check))
	}
	arc("asin", "Arc sine", math.Asin, unitRange)
	arc("acos", "Arc cosine", math.Acos, unitRange)
	arc("atan", "Arc tangent", math.Atan, nil)

	m.AddFunction("atan2", "Arc tangent of y/x", paramXY, func(ctx *modules.CallContext, args modules.Args, log *diagnostics.Log) (value.Value, modules.Status) {
		y, err := args.Number(0)
		if err != nil {
			log.Fail(err.Error())
			return nil, modules.StatusFail
		}
		x, err := args.Number(1)
		if err != nil {
			log.Fail(err.Error())
			return nil, modules.StatusFail
		}
		return value.Real(ctx.Settings.AngleOut(math.Atan2(y, x))), modules.StatusOk
	})

	plain := func(f func(float64) float64) func(value.EvalSettings, float64) float64 {
		return func(_ value.EvalSettings, d float64) float64 { return f(d) }
	}
	m.AddFunction("sinh", "Hyperbolic sine", paramD, real1(plain(math.Sinh), nil))
	m.AddFunction("cosh", "Hyperbolic cosine", paramD, real1(plain(math.Cosh), nil))
	m.AddFunction("tanh", "Hyperbolic tangent", paramD, real1(plain(math.Tanh), nil))
	m.AddFunction("sqrt", "Square root", paramD, real1(plain(math.Sqrt), nonNegative))
	m.AddFunction("exp", "Natural exponent", paramD, real1(plain(math.Exp), nil))
	m.AddFunction("log", "Base 10 logarithm", paramD, real1(plain(math.Log10), positive))
	m.AddFunction("ln", "Natural logarithm", paramD, real1(plain(math.Log), positive))

	m.AddFunction("abs", "Absolute value", paramD, func(ctx *modules.CallContext, args modules.Args, log *diagnostics.Log) (value.Value, modules.Status) {
		if i, ok := args.At(0).(value.Int); ok {
			if i < 0 {
				i = -i
			}
			return i, modules.StatusOk
		}
		d, err := args.Number(0)
		if err != nil {
			log.Fail(err.Error())
			return nil, modules.StatusFail
		}
		return value.Real(math.Abs(d)), modules.StatusOk
	})
	m.AddFunction("sgn", "Sign", paramD, int1(func(d float64) float64 {
		switch {
		case d > 0:
			return 1
		case d < 0:
			return -1
		}
		return 0
	}))
	m.AddFunction("int", "Integer part", paramD, int1(math.Trunc))
	m.AddFunction("gint", "Greatest integer not above", paramD, int1(math.Floor))
	m.AddFunction("floor", "Greatest integer not above", paramD, int1(math.Floor))
	m.AddFunction("lint", "Least integer not below", paramD, int1(math.Ceil))
	m.AddFunction("ceiling", "Least integer not below", paramD, int1(math.Ceil))
	m.AddFunction("round", "Nearest integer", paramD, int1(math.Round))

	m.AddFunction("factor", "Prime factors", paramI, func(ctx *modules.CallContext, args modules.Args, log *diagnostics.Log) (value.Value, modules.Status) {
		n, err := args.Int(0)
		if err != nil {
			log.Fail(err.Error())
			return nil, modules.StatusFail
		}
		return Factor(n), modules.StatusOk
	})

	m.AddFunction("random", "Random number in [0,1)", nil, func(ctx *modules.CallContext, args modules.Args, log *diagnostics.Log) (value.Value, modules.Status) {
		return value.Real(rand.Float64()), modules.StatusOk
	})
	m.AddFunction("randomint", "Random integer in [min,max]", []modules.Param{{Name: "min", Type: "int"}, {Name: "max", Type: "int"}},
		func(ctx *modules.CallContext, args modules.Args, log *diagnostics.Log) (value.Value, modules.Status) {
			lo, err := args.Int(0)
			if err != nil {
				log.Fail(err.Error())
				return nil, modules.StatusFail
			}
			hi, err := args.Int(1)
			if err != nil {
				log.Fail(err.Error())
				return nil, modules.StatusFail
			}
			if hi < lo {
				log.Fail("Parameter max must not be less than min")
				return nil, modules.StatusFail
			}
			// The width of the range may not fit in an int64; it wraps to 0
			// only for the full int64 range.
			var off uint64
			if width := uint64(hi-lo) + 1; width == 0 {
				off = rand.Uint64()
			} else {
				off = rand.Uint64N(width)
			}
			return value.Int(lo + int64(off)), modules.StatusOk
		})

	m.AddFunction("length", "Length of a vector, set, array or string", []modules.Param{{Name: "v"}}, length)
	m.AddFunction("det", "Determinant of a square matrix", []modules.Param{{Name: "m", Type: "array"}}, matrixFunc(det))
	m.AddFunction("transpose", "Transposed matrix", []modules.Param{{Name: "m", Type: "array"}}, matrixFunc(transpose))
	m.AddFunction("inverse", "Inverse of a square matrix", []modules.Param{{Name: "m", Type: "array"}}, matrixFunc(inverse))
}

// Factor returns the prime factors of n in ascending order. Negative
// numbers start with -1; 0 factors to {0}.
func Factor(n int64) *value.Set {
	out := value.NewSet()
	if n == 0 {
		return out.Append(value.Int(0))
	}
	if n < 0 {
		out = out.Append(value.Int(-1))
		n = -n
	}
	for p := int64(2); p*p <= n; p++ {
		for n%p == 0 {
			out = out.Append(value.Int(p))
			n /= p
		}
	}
	if n > 1 {
		out = out.Append(value.Int(n))
	}
	return out
}

func length(ctx *modules.CallContext, args modules.Args, log *diagnostics.Log) (value.Value, modules.Status) {
	switch v := args.At(0).(type) {
	case value.FlatVector:
		return value.Real(math.Hypot(v.X, v.Y)), modules.StatusOk
	case value.SpaceVector:
		return value.Real(math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)), modules.StatusOk
	case value.String:
		return value.Int(len(v)), modules.StatusOk
	case value.Collection:
		return value.Int(v.Len()), modules.StatusOk
	case nil:
		log.Fail("Missing parameter v!")
	default:
		log.Fail("Cannot measure a " + value.TypeName(v) + "!")
	}
	return nil, modules.StatusFail
}
