package lexer

import (
	"errors"
	"testing"
)

func TestSkipWhitespace(t *testing.T) {
	c := New("  # comment\n\t # another\n  x")
	c.SkipWhitespace()
	if c.Peek() != 'x' {
		t.Fatalf("Peek() = %q, want 'x'", c.Peek())
	}
	if c.Line() != 3 {
		t.Errorf("Line() = %d, want 3", c.Line())
	}

	c = New("   # only a comment")
	c.SkipWhitespace()
	if !c.AtEnd() {
		t.Errorf("expected cursor at end, pos %d", c.Pos())
	}
}

func TestMatchWord(t *testing.T) {
	tests := []struct {
		input string
		word  string
		want  bool
		pos   int
	}{
		{"if (x)", "if", true, 2},
		{"  if(x)", "if", true, 4},
		{"iffy", "if", false, 0},
		{"if_x", "if", false, 0},
		{"if2", "if", false, 0},
		{"  else", "if", false, 2},
		{"?", "?", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := New(tt.input)
			if got := c.MatchWord(tt.word); got != tt.want {
				t.Errorf("MatchWord(%q) = %v, want %v", tt.word, got, tt.want)
			}
			if c.Pos() != tt.pos {
				t.Errorf("Pos() = %d, want %d", c.Pos(), tt.pos)
			}
		})
	}
}

func TestMatchChar(t *testing.T) {
	c := New("  ; x")
	if c.MatchChar(',') {
		t.Error("MatchChar(',') should not match")
	}
	if c.Pos() != 2 {
		t.Errorf("after failed match Pos() = %d, want 2", c.Pos())
	}
	if !c.MatchChar(';') {
		t.Error("MatchChar(';') should match")
	}
}

func TestReadName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abc+1", "abc"},
		{"_a1 b", "_a1"},
		{"1abc", ""},
		{"+x", ""},
		{"", ""},
	}
	for _, tt := range tests {
		c := New(tt.input)
		if got := c.ReadName(); got != tt.want {
			t.Errorf("ReadName(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if c.Pos() != 0 {
			t.Errorf("ReadName(%q) moved the cursor", tt.input)
		}
	}
}

func TestReadOperator(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"+=1", "+="},
		{"<=>x", "<=>"},
		{"*(2)", "*"},
		{"-'a'", "-"},
		{"+ 1", "+"},
		{"!;", "!"},
		{"#c", ""},
		{".5", ""},
		{"a+", ""},
	}
	for _, tt := range tests {
		c := New(tt.input)
		if got := c.ReadOperator(); got != tt.want {
			t.Errorf("ReadOperator(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestReadQuotedString(t *testing.T) {
	tests := []struct {
		input string
		want  string
		rest  string
	}{
		{`"abc" x`, "abc", " x"},
		{`'it''s'`, "it", "'s'"},
		{`"a\nb\tc\\d\'e\"f"`, "a\nb\tc\\d'e\"f", ""},
		{`'say "hi"'`, `say "hi"`, ""},
		{"\"one \\\ntwo\"", "one two", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := New(tt.input)
			got, err := c.ReadQuotedString()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadQuotedString() = %q, want %q", got, tt.want)
			}
			if rest := tt.input[c.Pos():]; rest != tt.rest {
				t.Errorf("rest = %q, want %q", rest, tt.rest)
			}
		})
	}
}

func TestReadQuotedString_Unterminated(t *testing.T) {
	c := New(`x = 'abc`)
	c.Advance(4)
	_, err := c.ReadQuotedString()
	if !errors.Is(err, ErrUnterminatedString) {
		t.Fatalf("err = %v, want ErrUnterminatedString", err)
	}
	if c.Pos() != 4 {
		t.Errorf("Pos() = %d, want 4 (the opening quote)", c.Pos())
	}
}

func TestSkipBalancedBlock(t *testing.T) {
	tests := []struct {
		input   string
		closer  byte
		rest    string
		wantErr error
	}{
		{"a(b)[c]{d} } tail", '}', " tail", nil},
		{"'}' \"}\" } tail", '}', " tail", nil},
		{"# } in comment\n} tail", '}', " tail", nil},
		{"x + (1, 2) ) + 3", ')', " + 3", nil},
		{"x ( y", ')', "", ErrMissingEnd},
		{"x ] y", ')', "", ErrUnexpectedEnd},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := New(tt.input)
			err := c.SkipBalancedBlock(tt.closer)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rest := tt.input[c.Pos():]; rest != tt.rest {
				t.Errorf("rest = %q, want %q", rest, tt.rest)
			}
		})
	}
}

func TestScanExpression(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x*x; y", "x*x"},
		{"f(a; b) + 1\nnext", "f(a; b) + 1"},
		{"'a;b' + c } rest", "'a;b' + c "},
		{"x # comment", "x "},
		{"x", "x"},
	}
	for _, tt := range tests {
		c := New(tt.input)
		end, err := c.ScanExpression()
		if err != nil {
			t.Fatalf("ScanExpression(%q): %v", tt.input, err)
		}
		if got := tt.input[:end]; got != tt.want {
			t.Errorf("ScanExpression(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if c.Pos() != 0 {
			t.Errorf("ScanExpression(%q) moved the cursor", tt.input)
		}
	}
}

func TestMarkRestore(t *testing.T) {
	c := New("a\nb\nc")
	m := c.Mark()
	c.Advance(4)
	if c.Line() != 3 {
		t.Errorf("Line() = %d, want 3", c.Line())
	}
	c.Restore(m)
	if c.Pos() != 0 || c.Line() != 1 {
		t.Errorf("after Restore pos=%d line=%d", c.Pos(), c.Line())
	}
}

func TestUnclosed(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1 + 2", false},
		{"if (x) {", true},
		{"if (x) { y }", false},
		{"f(1,", true},
		{"'abc", true},
		{"'{'", false},
		{"x # {", false},
		{"}", false},
	}
	for _, tt := range tests {
		if got := Unclosed(tt.input); got != tt.want {
			t.Errorf("Unclosed(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
