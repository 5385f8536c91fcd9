package history

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T, limit int) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path, limit)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, path
}

func TestWriteAndReload(t *testing.T) {
	s, path := openTemp(t, 0)
	for _, line := range []string{"1+1", "x = 2", "x = 2", "", "show x"} {
		if _, err := s.Write(line); err != nil {
			t.Fatalf("Write(%q): %v", line, err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	want := []string{"1+1", "x = 2", "show x"}
	for i, w := range want {
		got, err := s.GetLine(i)
		if err != nil || got != w {
			t.Errorf("GetLine(%d) = %q, %v, want %q", i, got, err, w)
		}
	}
	if _, err := s.GetLine(3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("GetLine(3) error = %v", err)
	}
}

func TestLimit(t *testing.T) {
	s, path := openTemp(t, 2)
	for _, line := range []string{"a", "b", "c"} {
		s.Write(line)
	}
	if got := s.Dump().([]string); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("Dump() = %v", got)
	}
	s.Close()

	s, err := Open(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if got, _ := s.GetLine(0); got != "b" {
		t.Errorf("first line after reload = %q", got)
	}
	all, err := s.Last(0)
	if err != nil || len(all) != 3 {
		t.Errorf("Last(0) = %v, %v", all, err)
	}
}

func TestClear(t *testing.T) {
	s, _ := openTemp(t, 0)
	defer s.Close()
	s.Write("1")
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d", s.Len())
	}
	if lines, _ := s.Last(0); len(lines) != 0 {
		t.Errorf("stored lines after Clear = %v", lines)
	}
}
