package operators

import (
	"errors"
	"fmt"
	"sort"

	"github.com/funvibe/funcalc/internal/lexer"
	"github.com/funvibe/funcalc/internal/value"
)

type Assoc int

const (
	LeftUnary Assoc = iota
	RightUnary
	BinaryLtoR
	BinaryRtoL
)

func (a Assoc) String() string {
	switch a {
	case LeftUnary:
		return "left"
	case RightUnary:
		return "right"
	case BinaryLtoR:
		return "ltor"
	case BinaryRtoL:
		return "rtol"
	}
	return "unknown"
}

func (a Assoc) IsBinary() bool { return a == BinaryLtoR || a == BinaryRtoL }

// ErrIncompatible is returned by an Evaluator that does not handle the
// operand types it was given. The caller tries the next overload.
var ErrIncompatible = errors.New("incompatible operands")

// Evaluator computes an operator. Unary operators receive their operand
// as left and a nil right.
type Evaluator func(op string, left, right value.Value, settings value.EvalSettings) (value.Value, error)

// Entry is one registered operator. Entries are not modified after
// registration.
type Entry struct {
	Token       string
	Assoc       Assoc
	Owner       string
	Description string
	Eval        Evaluator
	// LValue entries receive their left operand unresolved.
	LValue bool
}

// Level groups binary operators that share a rank and direction.
type Level struct {
	Rank  int
	Assoc Assoc
	Ops   []*Entry
}

// Table holds the operators of one interpreter.
type Table struct {
	left   []*Entry
	right  []*Entry
	levels []*Level
	maxLen int
}

func NewTable() *Table { return &Table{} }

// Register adds e. Binary operators go to the level for rank, which is
// created in sorted position if missing.
func (t *Table) Register(e *Entry, rank int) error {
	if e.Token == "" {
		return fmt.Errorf("empty operator token")
	}
	for i := 0; i < len(e.Token); i++ {
		if !lexer.IsOperatorChar(e.Token[i]) {
			return fmt.Errorf("operator %q: character %q cannot be used in operators", e.Token, e.Token[i])
		}
	}
	if e.Eval == nil {
		return fmt.Errorf("operator %q: no evaluator", e.Token)
	}

	switch e.Assoc {
	case LeftUnary:
		t.left = append(t.left, e)
	case RightUnary:
		t.right = append(t.right, e)
	case BinaryLtoR, BinaryRtoL:
		lvl, err := t.levelFor(rank, e.Assoc)
		if err != nil {
			return fmt.Errorf("operator %q: %w", e.Token, err)
		}
		lvl.Ops = append(lvl.Ops, e)
	default:
		return fmt.Errorf("operator %q: bad associativity %d", e.Token, e.Assoc)
	}
	if len(e.Token) > t.maxLen {
		t.maxLen = len(e.Token)
	}
	return nil
}

func (t *Table) levelFor(rank int, assoc Assoc) (*Level, error) {
	i := sort.Search(len(t.levels), func(i int) bool { return t.levels[i].Rank >= rank })
	if i < len(t.levels) && t.levels[i].Rank == rank {
		if t.levels[i].Assoc != assoc {
			return nil, fmt.Errorf("rank %d is already %s", rank, t.levels[i].Assoc)
		}
		return t.levels[i], nil
	}
	lvl := &Level{Rank: rank, Assoc: assoc}
	t.levels = append(t.levels, nil)
	copy(t.levels[i+1:], t.levels[i:])
	t.levels[i] = lvl
	return lvl, nil
}

// RemoveOwner drops every operator registered by owner. Levels left
// empty are removed.
func (t *Table) RemoveOwner(owner string) {
	t.left = without(t.left, owner)
	t.right = without(t.right, owner)
	levels := t.levels[:0]
	for _, lvl := range t.levels {
		lvl.Ops = without(lvl.Ops, owner)
		if len(lvl.Ops) > 0 {
			levels = append(levels, lvl)
		}
	}
	for i := len(levels); i < len(t.levels); i++ {
		t.levels[i] = nil
	}
	t.levels = levels
	t.recomputeMaxLen()
}

func without(ops []*Entry, owner string) []*Entry {
	out := ops[:0]
	for _, e := range ops {
		if e.Owner != owner {
			out = append(out, e)
		}
	}
	for i := len(out); i < len(ops); i++ {
		ops[i] = nil
	}
	return out
}

func (t *Table) recomputeMaxLen() {
	t.maxLen = 0
	t.each(func(e *Entry) {
		if len(e.Token) > t.maxLen {
			t.maxLen = len(e.Token)
		}
	})
}

func (t *Table) each(fn func(*Entry)) {
	for _, e := range t.left {
		fn(e)
	}
	for _, e := range t.right {
		fn(e)
	}
	for _, lvl := range t.levels {
		for _, e := range lvl.Ops {
			fn(e)
		}
	}
}

func (t *Table) NumLevels() int     { return len(t.levels) }
func (t *Table) Level(i int) *Level { return t.levels[i] }
func (t *Table) Levels() []*Level   { return t.levels }
func (t *Table) LeftOps() []*Entry  { return t.left }
func (t *Table) RightOps() []*Entry { return t.right }
func (t *Table) Owned(owner string) []*Entry {
	var out []*Entry
	t.each(func(e *Entry) {
		if e.Owner == owner {
			out = append(out, e)
		}
	})
	return out
}

// longest returns the longest registered token that prefixes text,
// looking at every pool.
func (t *Table) longest(text string) string {
	n := len(text)
	if n > t.maxLen {
		n = t.maxLen
	}
	for ; n > 0; n-- {
		tok := text[:n]
		found := false
		t.each(func(e *Entry) {
			if e.Token == tok {
				found = true
			}
		})
		if found {
			return tok
		}
	}
	return ""
}

// Lookup matches the longest registered token at the start of text and
// returns it with its entries in pool, or "" if the longest token has no
// entry there.
func (t *Table) Lookup(text string, pool Assoc) (string, []*Entry) {
	switch pool {
	case LeftUnary:
		return t.match(text, t.left)
	case RightUnary:
		return t.match(text, t.right)
	}
	return "", nil
}

// LookupBinary is Lookup restricted to the operators at level i.
func (t *Table) LookupBinary(text string, i int) (string, []*Entry) {
	if i < 0 || i >= len(t.levels) {
		return "", nil
	}
	return t.match(text, t.levels[i].Ops)
}

func (t *Table) match(text string, pool []*Entry) (string, []*Entry) {
	tok := t.longest(text)
	if tok == "" {
		return "", nil
	}
	var cands []*Entry
	for _, e := range pool {
		if e.Token == tok {
			cands = append(cands, e)
		}
	}
	if len(cands) == 0 {
		return "", nil
	}
	return tok, cands
}

// HasBinary reports whether token is registered as a binary operator anywhere.
func (t *Table) HasBinary(token string) bool {
	for _, lvl := range t.levels {
		for _, e := range lvl.Ops {
			if e.Token == token {
				return true
			}
		}
	}
	return false
}
