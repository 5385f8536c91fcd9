package funcalc_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	funcalc "github.com/funvibe/funcalc/pkg/embed"
)

// Account is a Go struct passed to scripts as a host object.
type Account struct {
	Owner   string
	Balance float64
}

func newCalc(t *testing.T, opts ...funcalc.Option) *funcalc.Calculator {
	t.Helper()
	calc, err := funcalc.New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return calc
}

func TestEmbedAPI(t *testing.T) {
	calc := newCalc(t)

	// 1. Bind simple functions
	if err := calc.Bind("double", func(x int) int { return x * 2 }); err != nil {
		t.Fatal(err)
	}
	calc.Bind("greet", func(name string) string { return "Hello, " + name })

	// 2. Bind a host object and a function that works on it
	acct := &Account{Owner: "Alice", Balance: 10}
	calc.Bind("acct", acct)
	calc.Bind("deposit", func(a *Account, amount float64) float64 {
		a.Balance += amount
		return a.Balance
	})

	// 3. Eval script using bound values
	res, err := calc.Eval(`
		doubled = double(21)
		deposit(acct, 5.5)
		[doubled, greet("Bob"), deposit(acct, 0)]
	`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}

	// 4. Verify results
	want := []interface{}{42, "Hello, Bob", 15.5}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("result = %#v, want %#v", res, want)
	}

	// 5. Verify side effect on Go struct
	if acct.Balance != 15.5 {
		t.Errorf("Go struct not updated! Balance is %v, expected 15.5", acct.Balance)
	}
}

func TestSetGet(t *testing.T) {
	calc := newCalc(t)
	calc.Set("rate", 0.25)
	calc.Set("names", []string{"a", "b"})

	if got, err := calc.Eval("rate * 4"); err != nil || got != 1.0 {
		t.Errorf("rate * 4 = %v, %v", got, err)
	}
	calc.Set("rate", 2)
	if got, _ := calc.Eval("rate * 4"); got != 8 {
		t.Errorf("after Set: rate * 4 = %v", got)
	}
	if got, _ := calc.Get("names"); !reflect.DeepEqual(got, []interface{}{"a", "b"}) {
		t.Errorf("names = %#v", got)
	}

	calc.Eval("total = 3 + 4")
	if got, err := calc.Get("total"); err != nil || got != 7 {
		t.Errorf("Get(total) = %v, %v", got, err)
	}
	if _, err := calc.Get("missing"); err == nil {
		t.Error("Get of an unknown name succeeded")
	}
}

func TestCall(t *testing.T) {
	calc := newCalc(t)
	calc.Bind("hyp", func(a, b float64) float64 { return a*a + b*b })
	if _, err := calc.Eval("function twice(x) = 2 * x"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []interface{}
		want interface{}
	}{
		{"twice", []interface{}{21}, 42},
		{"hyp", []interface{}{3, 4}, 25.0},
		{"sqrt", []interface{}{16}, 4.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Call(tt.name, tt.args...)
			if err != nil {
				t.Fatalf("Call(%s) error: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Call(%s) = %#v, want %#v", tt.name, got, tt.want)
			}
		})
	}
}

func TestBoundErrors(t *testing.T) {
	calc := newCalc(t)
	calc.Bind("checked", func(n int) (int, error) {
		if n < 0 {
			return 0, errors.New("negative input")
		}
		return n, nil
	})
	calc.Bind("withContext", func(ctx context.Context, n int) int {
		if ctx == nil {
			return -1
		}
		return n + 1
	})

	if got, err := calc.Eval("checked(3)"); err != nil || got != 3 {
		t.Errorf("checked(3) = %v, %v", got, err)
	}
	_, err := calc.Eval("checked(-1)")
	if err == nil || !strings.Contains(err.Error(), "negative input") {
		t.Fatalf("checked(-1) error = %v", err)
	}
	if code := funcalc.ErrorCode(err); code != "H001" {
		t.Errorf("ErrorCode = %q", code)
	}
	if got, _ := calc.Eval("withContext(1)"); got != 2 {
		t.Errorf("withContext(1) = %v", got)
	}
	if _, err := calc.Eval(`checked("x")`); err == nil {
		t.Error("string argument to int parameter succeeded")
	}

	if err := calc.Bind("bad", func(xs ...int) int { return 0 }); err == nil {
		t.Error("variadic bind succeeded")
	}
	if err := calc.Bind("bad", func() (int, int) { return 0, 0 }); err == nil {
		t.Error("two value results bind succeeded")
	}
}

func TestHostContext(t *testing.T) {
	calc := newCalc(t, funcalc.WithHost(func() any { return "doc-1" }), funcalc.WithDegrees())
	if got, _ := calc.Eval("sin(30)"); fmt.Sprintf("%.6f", got) != "0.500000" {
		t.Errorf("sin(30) in degrees = %v", got)
	}
	if got := calc.In("show Host"); !strings.HasPrefix(got, "Host: module") {
		t.Errorf("show Host = %q", got)
	}
}

func TestLoopLimitOption(t *testing.T) {
	calc := newCalc(t, funcalc.WithLoopLimit(5))
	_, err := calc.Eval("while (1) { }")
	if code := funcalc.ErrorCode(err); code != "R002" {
		t.Errorf("ErrorCode = %q (%v)", code, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = calc.EvalContext(ctx, "1")
	if code := funcalc.ErrorCode(err); code != "R001" {
		t.Errorf("cancelled ErrorCode = %q", code)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	mainPath := filepath.Join(tmpDir, "main.calc")
	code := `
	function greeting(name) = "Hello from " + name
	message = greeting("file")
	`
	if err := os.WriteFile(mainPath, []byte(code), 0644); err != nil {
		t.Fatal(err)
	}

	calc := newCalc(t)
	if err := calc.LoadFile(mainPath); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	res, err := calc.Get("message")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if res != "Hello from file" {
		t.Errorf("message = %#v", res)
	}

	if err := calc.LoadFile(filepath.Join(tmpDir, "missing.calc")); err == nil {
		t.Error("LoadFile of a missing file succeeded")
	}
}

func TestSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcalc.yaml")
	if err := os.WriteFile(path, []byte("degrees: true\nloop_limit: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	calc := newCalc(t, funcalc.WithSettingsFile(path))
	if got, _ := calc.Eval("asin(1)"); got != 90.0 {
		t.Errorf("asin(1) = %v", got)
	}
	if _, err := funcalc.New(funcalc.WithSettingsFile(filepath.Join(t.TempDir(), "none.yaml"))); err == nil {
		t.Error("missing settings file accepted")
	}
}
