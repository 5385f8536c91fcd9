package value

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	KindInt Kind = iota
	KindReal
	KindBool
	KindString
	KindFlatVector
	KindSpaceVector
	KindSet
	KindArray
	KindObject
	KindLValue
)

var kindNames = [...]string{
	KindInt:         "int",
	KindReal:        "real",
	KindBool:        "boolean",
	KindString:      "string",
	KindFlatVector:  "flatvector",
	KindSpaceVector: "spacevector",
	KindSet:         "set",
	KindArray:       "array",
	KindObject:      "object",
	KindLValue:      "lvalue",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a runtime value. The set of implementations is closed:
// Int, Real, Bool, String, FlatVector, SpaceVector, Set, Array, Object, LValue.
type Value interface {
	Kind() Kind
	String() string
}

type Int int64

type Real float64

type Bool bool

type String string

type FlatVector struct {
	X, Y float64
}

type SpaceVector struct {
	X, Y, Z float64
}

// Object is an opaque handle owned by the host.
type Object struct {
	TypeName string
	Handle   any
}

// LValue names an assignable slot. Current is the slot's value at the time
// the name was resolved; Assign stores a new value into the slot.
type LValue struct {
	Name    string
	Current Value
	Assign  func(Value) error
}

func (Int) Kind() Kind          { return KindInt }
func (Real) Kind() Kind         { return KindReal }
func (Bool) Kind() Kind         { return KindBool }
func (String) Kind() Kind       { return KindString }
func (FlatVector) Kind() Kind   { return KindFlatVector }
func (SpaceVector) Kind() Kind  { return KindSpaceVector }
func (*Object) Kind() Kind      { return KindObject }
func (*LValue) Kind() Kind      { return KindLValue }
func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Real) String() string   { return formatReal(float64(v)) }
func (v String) String() string { return Quote(string(v)) }

func (v Bool) String() string {
	if v {
		return "true"
	}
	return "false"
}

func (v FlatVector) String() string {
	return "(" + formatReal(v.X) + "," + formatReal(v.Y) + ")"
}

func (v SpaceVector) String() string {
	return "(" + formatReal(v.X) + "," + formatReal(v.Y) + "," + formatReal(v.Z) + ")"
}

func (o *Object) String() string { return "<" + o.TypeName + ">" }

func (l *LValue) String() string {
	if l.Current == nil {
		return l.Name
	}
	return l.Current.String()
}

func formatReal(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Resolve returns the value an LValue currently holds, or v itself.
func Resolve(v Value) Value {
	if lv, ok := v.(*LValue); ok {
		return lv.Current
	}
	return v
}

// Number returns v as a float64 if it is numeric. Booleans count as 0 or 1.
func Number(v Value) (float64, bool) {
	switch n := Resolve(v).(type) {
	case Int:
		return float64(n), true
	case Real:
		return float64(n), true
	case Bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Truth reports whether v is a usable condition and whether it holds.
func Truth(v Value) (truth bool, ok bool) {
	f, ok := Number(v)
	return f != 0, ok
}

// TypeName is the name typeof reports.
func TypeName(v Value) string {
	v = Resolve(v)
	if v == nil {
		return "null"
	}
	if o, ok := v.(*Object); ok {
		return o.TypeName
	}
	return v.Kind().String()
}

// Display renders v for humans: strings unquoted, everything else as String.
func Display(v Value) string {
	v = Resolve(v)
	if s, ok := v.(String); ok {
		return string(s)
	}
	if v == nil {
		return ""
	}
	return v.String()
}

// FormatInt renders an integer in base 10 or 16.
func FormatInt(i Int, base int) string {
	if base == 16 {
		if i < 0 {
			return "-0x" + strconv.FormatInt(-int64(i), 16)
		}
		return "0x" + strconv.FormatInt(int64(i), 16)
	}
	return i.String()
}

// Format renders v with integers in the given base, recursing into
// sets and arrays.
func Format(v Value, base int) string {
	switch x := Resolve(v).(type) {
	case nil:
		return ""
	case Int:
		return FormatInt(x, base)
	case *Set:
		return formatSeq("{", "}", x.seq, base)
	case *Array:
		return formatSeq("[", "]", x.seq, base)
	default:
		return x.String()
	}
}

// Quote renders s as a double-quoted literal that reads back as s.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Equal compares values structurally. Ints and reals compare numerically.
func Equal(a, b Value) bool {
	a, b = Resolve(a), Resolve(b)
	if fa, ok := Number(a); ok {
		if fb, ok := Number(b); ok {
			return fa == fb
		}
		return false
	}
	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		return ok && x == y
	case FlatVector:
		y, ok := b.(FlatVector)
		return ok && x == y
	case SpaceVector:
		y, ok := b.(SpaceVector)
		return ok && x == y
	case *Set:
		y, ok := b.(*Set)
		return ok && seqEqual(x.seq, y.seq)
	case *Array:
		y, ok := b.(*Array)
		return ok && seqEqual(x.seq, y.seq)
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	}
	return false
}

// Describe is a short debugging form: kind and value.
func Describe(v Value) string {
	return fmt.Sprintf("%s %s", TypeName(v), Format(v, 10))
}
