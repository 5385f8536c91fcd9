// Package funcalc embeds the calculator in Go programs. Go functions and
// values are bound into a host module that every script sees unqualified.
package funcalc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"reflect"

	"github.com/funvibe/funcalc/internal/config"
	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/evaluator"
	"github.com/funvibe/funcalc/internal/modules"
	"github.com/funvibe/funcalc/internal/value"
)

// HostModuleName is the module bound Go values live in.
const HostModuleName = "Host"

// Calculator wraps an interpreter and provides a high-level embedding API.
type Calculator struct {
	in         *evaluator.Interpreter
	marshaller *Marshaller
	host       *modules.Module
}

type options struct {
	settings config.Settings
	eval     []evaluator.Option
}

// Option configures a Calculator.
type Option func(*options) error

// WithSettingsFile applies a funcalc.yaml file.
func WithSettingsFile(path string) Option {
	return func(o *options) error {
		s, err := config.LoadSettings(path)
		if err != nil {
			return err
		}
		o.settings = *s
		return nil
	}
}

func WithDegrees() Option {
	return func(o *options) error {
		o.settings.Degrees = true
		return nil
	}
}

// WithLoopLimit caps loop re-entries per evaluation. A negative limit
// disables the cap.
func WithLoopLimit(n int) Option {
	return func(o *options) error {
		o.settings.LoopLimit = n
		return nil
	}
}

// WithHost sets the function whose result bound functions receive as
// their host context.
func WithHost(fn func() any) Option {
	return func(o *options) error {
		o.eval = append(o.eval, evaluator.WithContextBuilder(fn))
		return nil
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) error {
		o.eval = append(o.eval, evaluator.WithLogger(l))
		return nil
	}
}

// New creates a calculator with an empty host module installed and
// imported.
func New(opts ...Option) (*Calculator, error) {
	o := &options{settings: *config.Default()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	in := evaluator.New(append([]evaluator.Option{evaluator.WithSettings(o.settings)}, o.eval...)...)
	host := modules.NewModule(HostModuleName, "Values bound by the embedding program")
	if err := in.InstallModule(host, true); err != nil {
		return nil, err
	}
	return &Calculator{in: in, marshaller: NewMarshaller(), host: host}, nil
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Bind registers a Go function or value under name. Functions may take a
// context.Context first and may return a value, an error, or both.
func (c *Calculator) Bind(name string, val interface{}) error {
	fn := reflect.ValueOf(val)
	if fn.Kind() != reflect.Func {
		return c.Set(name, val)
	}
	if fn.Type().IsVariadic() {
		return fmt.Errorf("bind %s: variadic functions are not supported", name)
	}
	if n := fn.Type().NumOut(); n > 2 || (n == 2 && fn.Type().Out(1) != errorType) {
		return fmt.Errorf("bind %s: results must be (value), (error) or (value, error)", name)
	}
	c.host.Def.Remove(name)
	c.host.AddFunction(name, "Go function "+fn.Type().String(), params(fn.Type()), c.hostCall(fn))
	return nil
}

// params describes the script-visible parameters of a Go function.
func params(t reflect.Type) []modules.Param {
	var out []modules.Param
	for i := 0; i < t.NumIn(); i++ {
		if i == 0 && t.In(0) == contextType {
			continue
		}
		out = append(out, modules.Param{Name: fmt.Sprintf("p%d", len(out)+1), Type: typeName(t.In(i))})
	}
	return out
}

// typeName maps a Go type to the calculator type name shown by show.
func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "real"
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	}
	return ""
}

func (c *Calculator) hostCall(fn reflect.Value) modules.Function {
	fnType := fn.Type()
	return func(ctx *modules.CallContext, args modules.Args, log *diagnostics.Log) (value.Value, modules.Status) {
		var goArgs []reflect.Value
		offset := 0
		if fnType.NumIn() > 0 && fnType.In(0) == contextType {
			goCtx := ctx.Context
			if goCtx == nil {
				goCtx = context.Background()
			}
			goArgs = append(goArgs, reflect.ValueOf(goCtx))
			offset = 1
		}
		for i, arg := range args {
			targetType := fnType.In(i + offset)
			if arg.Value == nil {
				log.Fail(fmt.Sprintf("Missing parameter %s!", arg.Name))
				return nil, modules.StatusFail
			}
			val, err := c.marshaller.FromValue(arg.Value, targetType)
			if err != nil {
				log.Fail(fmt.Sprintf("Parameter %s: %v", arg.Name, err))
				return nil, modules.StatusFail
			}
			if val == nil {
				goArgs = append(goArgs, reflect.Zero(targetType))
			} else {
				goArgs = append(goArgs, reflect.ValueOf(val))
			}
		}

		results := fn.Call(goArgs)
		if n := len(results); n > 0 && fnType.Out(n-1) == errorType {
			if err, _ := results[n-1].Interface().(error); err != nil {
				log.Fail(err.Error())
				return nil, modules.StatusFail
			}
			results = results[:n-1]
		}
		if len(results) == 0 {
			return nil, modules.StatusOk
		}
		v, err := c.marshaller.ToValue(results[0].Interface())
		if err != nil {
			log.Fail(err.Error())
			return nil, modules.StatusFail
		}
		return v, modules.StatusOk
	}
}

// Set sets a variable in the host module. Use this for data; for
// functions, prefer Bind.
func (c *Calculator) Set(name string, val interface{}) error {
	v, err := c.marshaller.ToValue(val)
	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	if d := c.host.Find(name); d != nil && d.Kind == modules.KindVariable {
		d.Value = v
		return nil
	}
	c.host.Def.Remove(name)
	c.host.AddVariable(name, "", v)
	return nil
}

// Get retrieves the value of a name visible at the top level of a script.
func (c *Calculator) Get(name string) (interface{}, error) {
	v, err := c.in.Eval(name)
	if err != nil {
		return nil, err
	}
	return c.marshaller.FromValue(v, nil)
}

// Call calls a function defined in a script or bound from Go by name.
func (c *Calculator) Call(name string, args ...interface{}) (interface{}, error) {
	vals := make([]value.Value, len(args))
	for i, arg := range args {
		v, err := c.marshaller.ToValue(arg)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	result, err := c.in.Call(name, vals...)
	if err != nil {
		return nil, err
	}
	return c.marshaller.FromValue(result, nil)
}

// Eval runs code and returns the value of its last expression.
func (c *Calculator) Eval(code string) (interface{}, error) {
	return c.EvalContext(context.Background(), code)
}

// EvalContext is Eval with cancellation.
func (c *Calculator) EvalContext(ctx context.Context, code string) (interface{}, error) {
	v, _, derr := c.in.EvaluateContext(ctx, code)
	if derr != nil {
		return nil, derr
	}
	return c.marshaller.FromValue(v, nil)
}

// In evaluates text and returns what a console would print for it.
func (c *Calculator) In(text string) string { return c.in.In(text) }

// Messages returns the lines printed by the last evaluation.
func (c *Calculator) Messages() []string { return c.in.Messages() }

// LoadFile runs the script in path.
func (c *Calculator) LoadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, _, derr := c.in.Evaluate(string(content)); derr != nil {
		return fmt.Errorf("%s: %w", path, derr)
	}
	return nil
}

// ErrorCode returns the diagnostic code carried by err, or "".
func ErrorCode(err error) string {
	var de *diagnostics.DiagnosticError
	if errors.As(err, &de) {
		return string(de.Code)
	}
	return ""
}
