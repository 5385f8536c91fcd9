package diagnostics

import "testing"

func TestSurround(t *testing.T) {
	tests := []struct {
		src      string
		pos      int
		surround int
		want     string
	}{
		{"1+2", 1, 5, "1<*>+2"},
		{"1+2", 0, 5, "<*>1+2"},
		{"1+2", 3, 5, "1+2<*>"},
		{"abcdefghij", 5, 2, "...de<*>fg..."},
		{"abcdefghij", 1, 2, "a<*>bc..."},
		{"abcdefghij", 9, 2, "...hi<*>j"},
		{"", 0, 3, "<*>"},
		{"abc", 10, 1, "...c<*>"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Surround(tt.src, tt.pos, tt.surround); got != tt.want {
				t.Errorf("Surround(%q, %d, %d) = %q, want %q", tt.src, tt.pos, tt.surround, got, tt.want)
			}
		})
	}
}

func TestDiagnosticError_Error(t *testing.T) {
	err := NewError(ErrS001, "1+foo", 2, 1, 20, "Unknown name!")
	want := "Unknown name!:\n1+<*>foo  pos:2  line: 1"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Code != ErrS001 {
		t.Errorf("Code = %s, want %s", err.Code, ErrS001)
	}
}

func TestLog(t *testing.T) {
	var l Log
	if l.Worst() != SeverityOk {
		t.Errorf("empty log worst = %v, want ok", l.Worst())
	}
	l.Warn("careful")
	l.Add(SeverityOk, "fine")
	if l.Worst() != SeverityWarning {
		t.Errorf("worst = %v, want warning", l.Worst())
	}
	l.Fail("broken")
	if l.Worst() != SeverityFail {
		t.Errorf("worst = %v, want fail", l.Worst())
	}
	if got := l.Text(SeverityWarning); got != "careful\nbroken" {
		t.Errorf("Text(warning) = %q", got)
	}
	if l.Len() != 3 {
		t.Errorf("Len = %d, want 3", l.Len())
	}
	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", l.Len())
	}
}
