package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lmorg/readline"

	"github.com/funvibe/funcalc/internal/evaluator"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr, false)
	return stdout.String(), stderr.String(), code
}

func TestRunExpressions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
		code int
	}{
		{"single", []string{"-e", "2+3*4"}, "14\n", 0},
		{"sequence shares state", []string{"-e", "x = 2", "-e", "x^10"}, "2\n1024\n", 0},
		{"error sets status", []string{"-e", "5/0", "-e", "1"}, "Division by zero!:\n5<*>/0  pos:1  line: 1\n1\n", 1},
		{"degrees flag", []string{"-degrees", "-e", "asin(1)"}, "90\n", 0},
		{"quit stops", []string{"-e", "quit", "-e", "1"}, "Ok.\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, code := runCLI(t, "", tt.args...)
			if out != tt.want || code != tt.code {
				t.Errorf("run(%v) = %q, %d (stderr %q), want %q, %d", tt.args, out, code, errOut, tt.want, tt.code)
			}
		})
	}
}

func TestRunFileAndStdin(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "sum.calc")
	os.WriteFile(script, []byte("s = 0\nforeach v in {1,2,3} { s += v }\nprint s\n"), 0644)

	out, _, code := runCLI(t, "", script)
	if out != "6\n" || code != 0 {
		t.Errorf("file run = %q, %d", out, code)
	}

	out, _, code = runCLI(t, "function sq(x) = x*x\nsq(9)\n")
	if out != "81\n" || code != 0 {
		t.Errorf("stdin run = %q, %d", out, code)
	}

	_, errOut, code := runCLI(t, "", filepath.Join(dir, "missing.calc"))
	if code != 1 || !strings.Contains(errOut, "Error reading file") {
		t.Errorf("missing file = %q, %d", errOut, code)
	}
}

func TestRunOptions(t *testing.T) {
	out, _, code := runCLI(t, "", "-help")
	if code != 0 || !strings.HasPrefix(out, "Usage: funcalc") {
		t.Errorf("-help = %q, %d", out, code)
	}

	_, errOut, code := runCLI(t, "", "-bogus")
	if code != 2 || !strings.Contains(errOut, "unknown option -bogus") {
		t.Errorf("-bogus = %q, %d", errOut, code)
	}

	_, _, code = runCLI(t, "", "-e")
	if code != 2 {
		t.Errorf("-e without argument exited %d", code)
	}

	cfg := filepath.Join(t.TempDir(), "funcalc.yaml")
	os.WriteFile(cfg, []byte("base: 16\n"), 0644)
	out, _, _ = runCLI(t, "", "-config", cfg, "-e", "255")
	if out != "0xff\n" {
		t.Errorf("base 16 config = %q", out)
	}

	os.WriteFile(cfg, []byte("base: 7\n"), 0644)
	_, errOut, code = runCLI(t, "", "-config", cfg, "-e", "1")
	if code != 1 || !strings.Contains(errOut, "base must be 10 or 16") {
		t.Errorf("bad config = %q, %d", errOut, code)
	}
}

func TestCompleter(t *testing.T) {
	in := evaluator.New()
	complete := completer(in)

	line := []rune("1 + sq")
	prefix, suggestions, _, _ := complete(line, len(line), readline.DelayedTabContext{})
	if prefix != "sq" || !reflect.DeepEqual(suggestions, []string{"rt"}) {
		t.Errorf("complete(%q) = %q, %v", string(line), prefix, suggestions)
	}

	line = []rune("1 + ")
	if _, suggestions, _, _ = complete(line, len(line), readline.DelayedTabContext{}); len(suggestions) != 0 {
		t.Errorf("complete after space = %v", suggestions)
	}
}

func TestPainter(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if p := newPainter(os.Stdout); p.err("x") != "x" {
		t.Error("NO_COLOR did not disable colour")
	}
	if p := (painter{enabled: true}); p.err("x") != "\x1b[31mx\x1b[0m" {
		t.Errorf("coloured = %q", p.err("x"))
	}
}

func TestInterrupted(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New(readline.ErrCtrlC), true},
		{io.EOF, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := interrupted(tt.err); got != tt.want {
			t.Errorf("interrupted(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
