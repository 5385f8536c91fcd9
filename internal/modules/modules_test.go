package modules

import (
	"strings"
	"sync"
	"testing"

	"github.com/funvibe/funcalc/internal/operators"
	"github.com/funvibe/funcalc/internal/value"
)

func TestMapParameters(t *testing.T) {
	params := []Param{{Name: "x"}, {Name: "y"}, {Name: "z", Default: value.Int(9)}}

	tests := []struct {
		name    string
		args    []Arg
		want    string
		wantErr string
	}{
		{"positional", []Arg{{"", value.Int(1)}, {"", value.Int(2)}, {"", value.Int(3)}}, "x=1 y=2 z=3", ""},
		{"named out of order", []Arg{{"y", value.Int(2)}, {"x", value.Int(1)}}, "x=1 y=2 z=9", ""},
		{"mixed", []Arg{{"z", value.Int(3)}, {"", value.Int(1)}, {"", value.Int(2)}}, "x=1 y=2 z=3", ""},
		{"named then positional", []Arg{{"x", value.Int(1)}, {"", value.Int(2)}}, "x=1 y=2 z=9", ""},
		{"missing without default", []Arg{{"", value.Int(1)}}, "x=1 y=<nil> z=9", ""},
		{"extra positional", []Arg{{"", value.Int(1)}, {"", value.Int(2)}, {"", value.Int(3)}, {"", value.Int(4)}}, "", "#4"},
		{"unknown name", []Arg{{"w", value.Int(1)}}, "", "w"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapParameters(params, tt.args)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var parts []string
			for _, a := range got {
				s := "<nil>"
				if a.Value != nil {
					s = a.Value.String()
				}
				parts = append(parts, a.Name+"="+s)
			}
			if s := strings.Join(parts, " "); s != tt.want {
				t.Errorf("MapParameters = %q, want %q", s, tt.want)
			}
		})
	}
}

func TestPositionalFor(t *testing.T) {
	params := []Param{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	parsed := []Arg{{Name: "a"}, {Name: ""}}
	p := PositionalFor(params, parsed)
	if p == nil || p.Name != "c" {
		t.Errorf("PositionalFor = %v, want c", p)
	}
	if p := PositionalFor(params, []Arg{{}, {}, {}}); p != nil {
		t.Errorf("PositionalFor with all filled = %v, want nil", p)
	}
}

func TestArgsAccessors(t *testing.T) {
	args := Args{{"n", value.Real(2.5)}, {"s", value.String("hi")}, {"m", nil}}
	if f, err := args.Number(0); err != nil || f != 2.5 {
		t.Errorf("Number(0) = %v, %v", f, err)
	}
	if i, err := args.Int(0); err != nil || i != 2 {
		t.Errorf("Int(0) = %v, %v", i, err)
	}
	if _, err := args.Number(1); err == nil {
		t.Error("Number(1) of a string should fail")
	}
	if _, err := args.Number(2); err == nil || !strings.Contains(err.Error(), "Missing parameter m") {
		t.Errorf("Number(2) err = %v", err)
	}
	if s, err := args.String(1); err != nil || s != "hi" {
		t.Errorf("String(1) = %q, %v", s, err)
	}
}

func TestModuleInstall(t *testing.T) {
	m := NewModule("Vec", "vector helpers")
	if m.ID == "" {
		t.Fatal("module has no id")
	}
	eval := func(op string, l, r value.Value, s value.EvalSettings) (value.Value, error) { return l, nil }
	m.AddOperator(OperatorSpec{Token: "<+>", Assoc: operators.BinaryLtoR, Rank: 450, Eval: eval})
	m.AddOperator(OperatorSpec{Token: "~", Assoc: operators.LeftUnary, Eval: eval})

	tbl := operators.NewTable()
	if err := m.Install(tbl); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if n := len(tbl.Owned(m.ID)); n != 2 {
		t.Errorf("Owned = %d entries, want 2", n)
	}

	bad := NewModule("Bad", "")
	bad.AddOperator(OperatorSpec{Token: "+", Assoc: operators.BinaryLtoR, Rank: 1, Eval: eval})
	bad.AddOperator(OperatorSpec{Token: "(", Assoc: operators.BinaryLtoR, Rank: 1, Eval: eval})
	if err := bad.Install(tbl); err == nil {
		t.Error("expected error installing a reserved token")
	}
	if n := len(tbl.Owned(bad.ID)); n != 0 {
		t.Errorf("failed install left %d operators", n)
	}

	dotted := NewModule("Dot", "")
	dotted.AddOperator(OperatorSpec{Token: "<.>", Assoc: operators.BinaryLtoR, Rank: 450, Eval: eval})
	if err := dotted.Install(tbl); err == nil {
		t.Error("expected error installing a token containing '.'")
	}
}

func TestDefinitionMembers(t *testing.T) {
	m := NewModule("Doc", "")
	m.AddConstant("pages", "", value.Int(3))
	enum := m.AddEnum("Units", "", "inch", "cm", "mm")
	m.AddVariable("pages", "", value.Int(4))

	if len(m.Def.Fields) != 2 {
		t.Fatalf("fields = %d, want 2 (pages replaced)", len(m.Def.Fields))
	}
	if d := m.Find("pages"); d == nil || d.Value != value.Int(4) || d.ReadOnly {
		t.Errorf("pages = %+v", d)
	}
	if i, ok := enum.EnumIndex("mm"); !ok || i != 2 {
		t.Errorf("EnumIndex(mm) = %d, %v", i, ok)
	}
	if !m.Def.Remove("Units") || m.Find("Units") != nil {
		t.Error("Remove(Units) failed")
	}
}

func TestRegistry(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	var wg sync.WaitGroup
	for _, name := range []string{"B", "A", "C"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			Register(NewModule(name, ""))
		}(name)
	}
	wg.Wait()

	if got := strings.Join(Registered(), ","); got != "A,B,C" {
		t.Errorf("Registered() = %s, want A,B,C", got)
	}
	if Lookup("B") == nil {
		t.Error("Lookup(B) = nil")
	}
	if !Unregister("B") || Lookup("B") != nil {
		t.Error("Unregister(B) failed")
	}
	if Unregister("B") {
		t.Error("second Unregister(B) reported success")
	}
}
