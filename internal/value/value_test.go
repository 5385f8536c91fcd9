package value

import "testing"

func TestString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"int", Int(-42), "-42"},
		{"real", Real(2.5), "2.5"},
		{"bool", Bool(true), "true"},
		{"string escapes", String("a\tb\n\"c\"\\"), `"a\tb\n\"c\"\\"`},
		{"flat vector", FlatVector{1, 2}, "(1,2)"},
		{"space vector", SpaceVector{1, 2.5, 3}, "(1,2.5,3)"},
		{"set", NewSet(Int(1), String("x")), `{1,"x"}`},
		{"empty set", NewSet(), "{}"},
		{"array", NewArray(Int(1), NewArray(Int(2))), "[1,[2]]"},
		{"object", &Object{TypeName: "Document"}, "<Document>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatBase16(t *testing.T) {
	v := NewSet(Int(255), Int(-16), Real(0.5))
	if got, want := Format(v, 16), "{0xff,-0x10,0.5}"; got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestSetIsPersistent(t *testing.T) {
	a := NewSet(Int(1))
	b := a.Append(Int(2))
	if a.Len() != 1 {
		t.Errorf("original set changed: len %d", a.Len())
	}
	if b.Len() != 2 {
		t.Errorf("appended set len = %d, want 2", b.Len())
	}
	c := b.Concat(a)
	if got := c.String(); got != "{1,2,1}" {
		t.Errorf("Concat = %s, want {1,2,1}", got)
	}
	if _, ok := c.Index(3); ok {
		t.Error("Index(3) should be out of range")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{Int(2), Real(2), true},
		{Int(1), Bool(true), true},
		{String("a"), String("a"), true},
		{String("a"), Int(1), false},
		{NewSet(Int(1), Int(2)), NewSet(Int(1), Real(2)), true},
		{NewSet(Int(1)), NewArray(Int(1)), false},
		{FlatVector{1, 2}, FlatVector{1, 2}, true},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestResolveAndTruth(t *testing.T) {
	lv := &LValue{Name: "x", Current: Int(3)}
	if Resolve(lv) != Int(3) {
		t.Errorf("Resolve = %v, want 3", Resolve(lv))
	}
	if truth, ok := Truth(lv); !ok || !truth {
		t.Errorf("Truth(x=3) = %v, %v", truth, ok)
	}
	if _, ok := Truth(String("yes")); ok {
		t.Error("a string should not be a usable condition")
	}
	if TypeName(lv) != "int" {
		t.Errorf("TypeName = %q, want int", TypeName(lv))
	}
}

func TestAngles(t *testing.T) {
	s := DefaultSettings()
	s.Degrees = true
	if got := s.AngleIn(180); got < 3.14159 || got > 3.1416 {
		t.Errorf("AngleIn(180) = %v", got)
	}
	if got := s.AngleOut(s.AngleIn(45)); got < 44.9999 || got > 45.0001 {
		t.Errorf("round trip 45 = %v", got)
	}
}
