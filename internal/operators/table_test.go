package operators

import (
	"testing"

	"github.com/funvibe/funcalc/internal/value"
)

func nop(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) {
	return l, nil
}

func mustRegister(t *testing.T, tbl *Table, tok string, assoc Assoc, rank int, owner string) *Entry {
	t.Helper()
	e := &Entry{Token: tok, Assoc: assoc, Owner: owner, Eval: nop}
	if err := tbl.Register(e, rank); err != nil {
		t.Fatalf("Register(%q): %v", tok, err)
	}
	return e
}

func TestRegister_LevelsSorted(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "*", BinaryLtoR, 500, "m")
	mustRegister(t, tbl, "+", BinaryLtoR, 400, "m")
	mustRegister(t, tbl, "^", BinaryRtoL, 600, "m")
	mustRegister(t, tbl, "-", BinaryLtoR, 400, "m")

	if tbl.NumLevels() != 3 {
		t.Fatalf("NumLevels() = %d, want 3", tbl.NumLevels())
	}
	wantRanks := []int{400, 500, 600}
	for i, want := range wantRanks {
		if got := tbl.Level(i).Rank; got != want {
			t.Errorf("Level(%d).Rank = %d, want %d", i, got, want)
		}
	}
	if n := len(tbl.Level(0).Ops); n != 2 {
		t.Errorf("rank 400 has %d operators, want 2", n)
	}
	if tbl.Level(2).Assoc != BinaryRtoL {
		t.Errorf("rank 600 assoc = %s, want rtol", tbl.Level(2).Assoc)
	}
}

func TestRegister_Invalid(t *testing.T) {
	tbl := NewTable()
	tests := []struct {
		name string
		e    *Entry
	}{
		{"empty", &Entry{Token: "", Assoc: BinaryLtoR, Eval: nop}},
		{"reserved paren", &Entry{Token: "+(", Assoc: BinaryLtoR, Eval: nop}},
		{"reserved dot", &Entry{Token: ".", Assoc: BinaryLtoR, Eval: nop}},
		{"letters", &Entry{Token: "and", Assoc: BinaryLtoR, Eval: nop}},
		{"no evaluator", &Entry{Token: "+", Assoc: BinaryLtoR}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tbl.Register(tt.e, 100); err == nil {
				t.Errorf("Register(%q) succeeded, want error", tt.e.Token)
			}
		})
	}

	mustRegister(t, tbl, "+", BinaryLtoR, 400, "m")
	if err := tbl.Register(&Entry{Token: "#", Assoc: BinaryRtoL, Eval: nop}, 400); err == nil {
		t.Error("expected error for reserved character")
	}
	if err := tbl.Register(&Entry{Token: "~", Assoc: BinaryRtoL, Eval: nop}, 400); err == nil {
		t.Error("expected error for direction mismatch at an existing rank")
	}
}

func TestLookup_MaximalMunch(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "=", BinaryRtoL, 50, "m")
	mustRegister(t, tbl, "==", BinaryLtoR, 300, "m")
	mustRegister(t, tbl, "<", BinaryLtoR, 300, "m")
	mustRegister(t, tbl, "<=", BinaryLtoR, 300, "m")
	mustRegister(t, tbl, "!", RightUnary, 0, "m")
	mustRegister(t, tbl, "!=", BinaryLtoR, 300, "m")
	mustRegister(t, tbl, "-", LeftUnary, 0, "m")

	tests := []struct {
		name  string
		text  string
		level int
		want  string
	}{
		{"assign", "=", 0, "="},
		{"equality not assign", "==", 0, ""},
		{"equality", "==", 1, "=="},
		{"less equal", "<=-", 1, "<="},
		{"less", "<-", 1, "<"},
		{"none", "?", 1, ""},
		{"not equal after a value", "!=4", 1, "!="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := tbl.LookupBinary(tt.text, tt.level)
			if got != tt.want {
				t.Errorf("LookupBinary(%q, %d) = %q, want %q", tt.text, tt.level, got, tt.want)
			}
		})
	}

	if tok, _ := tbl.Lookup("!=", RightUnary); tok != "" {
		t.Errorf("Lookup(!=, right) = %q, want no match", tok)
	}
	if tok, _ := tbl.Lookup("!+", RightUnary); tok != "!" {
		t.Errorf("Lookup(!+, right) = %q, want !", tok)
	}
	if tok, _ := tbl.Lookup("-", LeftUnary); tok != "-" {
		t.Errorf("Lookup(-, left) = %q, want -", tok)
	}
}

func TestLookup_Overloads(t *testing.T) {
	tbl := NewTable()
	a := mustRegister(t, tbl, "+", BinaryLtoR, 400, "a")
	b := mustRegister(t, tbl, "+", BinaryLtoR, 400, "b")
	_, cands := tbl.LookupBinary("+", 0)
	if len(cands) != 2 || cands[0] != a || cands[1] != b {
		t.Errorf("overloads not in registration order: %v", cands)
	}
}

func TestRemoveOwner(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "+", BinaryLtoR, 400, "core")
	mustRegister(t, tbl, "<+>", BinaryLtoR, 450, "ext")
	mustRegister(t, tbl, "+", BinaryLtoR, 400, "ext")
	mustRegister(t, tbl, "~", LeftUnary, 0, "ext")
	mustRegister(t, tbl, "%%", RightUnary, 0, "ext")

	tbl.RemoveOwner("ext")

	if tbl.NumLevels() != 1 {
		t.Fatalf("NumLevels() = %d, want 1", tbl.NumLevels())
	}
	if n := len(tbl.Level(0).Ops); n != 1 {
		t.Errorf("rank 400 has %d operators, want 1", n)
	}
	if len(tbl.LeftOps()) != 0 || len(tbl.RightOps()) != 0 {
		t.Error("unary operators of the removed owner remain")
	}
	if len(tbl.Owned("ext")) != 0 {
		t.Error("Owned(ext) not empty")
	}
	if tok, _ := tbl.LookupBinary("<+>", 0); tok != "" {
		t.Errorf("after removal <+> matched %q", tok)
	}
	if tok, _ := tbl.LookupBinary("+<", 0); tok != "+" {
		t.Errorf("LookupBinary(+<) = %q, want +", tok)
	}
}
