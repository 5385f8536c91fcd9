package value

import (
	"strings"

	"src.elv.sh/pkg/persistent/vector"
)

// Set is an insertion-ordered sequence. The backing vector is persistent,
// so a Set can be shared by any number of holders without copying.
type Set struct {
	seq vector.Vector
}

// Array is a fixed-arity sequence with the same storage as Set.
type Array struct {
	seq vector.Vector
}

func NewSet(elems ...Value) *Set { return &Set{seq: fromSlice(elems)} }

func NewArray(elems ...Value) *Array { return &Array{seq: fromSlice(elems)} }

func (*Set) Kind() Kind   { return KindSet }
func (*Array) Kind() Kind { return KindArray }

func (s *Set) String() string   { return formatSeq("{", "}", s.seq, 10) }
func (a *Array) String() string { return formatSeq("[", "]", a.seq, 10) }

func (s *Set) Len() int   { return s.seq.Len() }
func (a *Array) Len() int { return a.seq.Len() }

func (s *Set) Index(i int) (Value, bool)   { return index(s.seq, i) }
func (a *Array) Index(i int) (Value, bool) { return index(a.seq, i) }

// Append returns a new set with v added at the end.
func (s *Set) Append(v Value) *Set { return &Set{seq: s.seq.Conj(v)} }

// Concat returns a new set holding s followed by other.
func (s *Set) Concat(other *Set) *Set { return &Set{seq: concat(s.seq, other.seq)} }

func (a *Array) Concat(other *Array) *Array { return &Array{seq: concat(a.seq, other.seq)} }

func (s *Set) Elements() []Value   { return toSlice(s.seq) }
func (a *Array) Elements() []Value { return toSlice(a.seq) }

// Collection is implemented by Set and Array.
type Collection interface {
	Value
	Len() int
	Index(i int) (Value, bool)
	Elements() []Value
}

func fromSlice(elems []Value) vector.Vector {
	seq := vector.Empty
	for _, e := range elems {
		seq = seq.Conj(e)
	}
	return seq
}

func toSlice(seq vector.Vector) []Value {
	out := make([]Value, 0, seq.Len())
	for it := seq.Iterator(); it.HasElem(); it.Next() {
		out = append(out, it.Elem().(Value))
	}
	return out
}

func index(seq vector.Vector, i int) (Value, bool) {
	if i < 0 || i >= seq.Len() {
		return nil, false
	}
	e, ok := seq.Index(i)
	if !ok {
		return nil, false
	}
	return e.(Value), true
}

func concat(a, b vector.Vector) vector.Vector {
	for it := b.Iterator(); it.HasElem(); it.Next() {
		a = a.Conj(it.Elem())
	}
	return a
}

func seqEqual(a, b vector.Vector) bool {
	if a.Len() != b.Len() {
		return false
	}
	ia, ib := a.Iterator(), b.Iterator()
	for ; ia.HasElem(); ia.Next() {
		if !Equal(ia.Elem().(Value), ib.Elem().(Value)) {
			return false
		}
		ib.Next()
	}
	return true
}

func formatSeq(open, close string, seq vector.Vector, base int) string {
	var sb strings.Builder
	sb.WriteString(open)
	i := 0
	for it := seq.Iterator(); it.HasElem(); it.Next() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(Format(it.Elem().(Value), base))
		i++
	}
	sb.WriteString(close)
	return sb.String()
}
