// Package evaluator runs calculator scripts. It reads statements straight
// from the source text: loops re-enter their bodies by moving the cursor
// back, so no syntax tree is ever built.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/funvibe/funcalc/internal/builtins"
	"github.com/funvibe/funcalc/internal/config"
	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/lexer"
	"github.com/funvibe/funcalc/internal/modules"
	"github.com/funvibe/funcalc/internal/operators"
	"github.com/funvibe/funcalc/internal/value"
)

// Status is the outcome of one Evaluate call.
type Status int

const (
	StatusOk Status = iota
	// StatusWarning means evaluation finished but a function reported warnings.
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	}
	return "ok"
}

// TwistyPassages is what In answers for input that holds no statement.
const TwistyPassages = "You are surrounded by twisty passages, all alike."

// Interpreter evaluates text against an operator table, a frame stack and
// a set of installed modules. It is not safe for concurrent use.
type Interpreter struct {
	cur    *lexer.Cursor
	ops    *operators.Table
	frames []*Frame
	// base is the frame count the running statement loop started with.
	base int

	math      *modules.Module
	session   *modules.Module
	installed []*modules.Module
	scripts   map[*modules.Definition]*script

	settings  value.EvalSettings
	surround  int
	loopLimit int
	version   string

	ctx            context.Context
	contextBuilder func() any
	onQuit         func()
	logger         *log.Logger

	messages   []string
	warned     bool
	lastErr    *diagnostics.DiagnosticError
	lastAnswer value.Value

	steps int
	depth int
	// scriptErr carries the error of a scripted function out through the
	// host function signature.
	scriptErr *diagnostics.DiagnosticError
	returning bool
	retVal    value.Value

	autoImport []string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithSettings applies a settings file.
func WithSettings(s config.Settings) Option {
	return func(in *Interpreter) {
		in.surround = s.Surround
		in.loopLimit = s.LoopLimit
		in.settings.Degrees = s.Degrees
		in.settings.Base = s.Base
		in.autoImport = append(in.autoImport, s.Modules...)
	}
}

func WithLogger(l *log.Logger) Option {
	return func(in *Interpreter) { in.logger = l }
}

// WithVersion sets the text the about command prints.
func WithVersion(v string) Option {
	return func(in *Interpreter) { in.version = v }
}

// WithQuit sets the hook the quit command calls.
func WithQuit(fn func()) Option {
	return func(in *Interpreter) { in.onQuit = fn }
}

// WithContextBuilder sets the function whose result is attached to every
// function call as CallContext.Host.
func WithContextBuilder(fn func() any) Option {
	return func(in *Interpreter) { in.contextBuilder = fn }
}

// New creates an interpreter with the Math module installed and imported.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		cur:       lexer.New(""),
		ops:       operators.NewTable(),
		math:      builtins.Math(),
		session:   modules.NewModule(config.SessionModuleName, "Names defined in this session"),
		scripts:   make(map[*modules.Definition]*script),
		settings:  value.DefaultSettings(),
		surround:  config.DefaultSurround,
		loopLimit: config.DefaultLoopLimit,
		version:   config.Version,
		ctx:       context.Background(),
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.settings.Base == 0 {
		in.settings.Base = config.DefaultBase
	}
	if err := in.math.Install(in.ops); err != nil {
		// The Math module only registers valid tokens.
		panic(err)
	}
	in.frames = []*Frame{{Kind: FrameGlobal, Space: in.session.Def}}

	for _, name := range in.autoImport {
		if err := in.ImportModule(name); err != nil {
			in.logger.Printf("auto-import %s: %v", name, err)
		}
	}
	return in
}

// Evaluate runs text and returns the value of its last expression.
func (in *Interpreter) Evaluate(text string) (value.Value, Status, *diagnostics.DiagnosticError) {
	return in.EvaluateContext(context.Background(), text)
}

// EvaluateContext is Evaluate with cancellation. ctx is checked before
// every statement and every loop iteration.
func (in *Interpreter) EvaluateContext(ctx context.Context, text string) (value.Value, Status, *diagnostics.DiagnosticError) {
	in.ctx = ctx
	in.messages = nil
	in.warned = false
	in.lastErr = nil
	in.steps = 0
	in.depth = 0
	in.returning = false
	in.frames = in.frames[:1]
	in.cur.Reset(text, 1)

	v, err := in.run(1)
	if err != nil {
		in.frames = in.frames[:1]
		in.lastErr = asDiagnostic(err, in.cur, in.surround)
		return nil, StatusError, in.lastErr
	}
	if v != nil {
		in.lastAnswer = v
	}
	if in.warned {
		return v, StatusWarning, nil
	}
	return v, StatusOk, nil
}

// In evaluates text and renders the outcome for a human: any printed
// messages followed by the value or the error.
func (in *Interpreter) In(text string) string {
	v, _, derr := in.Evaluate(text)

	var sb strings.Builder
	for _, m := range in.messages {
		sb.WriteString(m)
		sb.WriteByte('\n')
	}
	switch {
	case derr != nil:
		sb.WriteString(derr.Error())
	case v != nil:
		sb.WriteString(in.format(v))
	case len(in.messages) > 0:
		return strings.TrimSuffix(sb.String(), "\n")
	case isBlank(text):
		return TwistyPassages
	default:
		sb.WriteString("Ok.")
	}
	return sb.String()
}

func isBlank(text string) bool {
	c := lexer.New(text)
	c.SkipWhitespace()
	return c.AtEnd()
}

// Message returns the text of the last error, or "Ok.".
func (in *Interpreter) Message() string {
	if in.lastErr != nil {
		return in.lastErr.Error()
	}
	return "Ok."
}

// Messages returns the lines printed by the last evaluation.
func (in *Interpreter) Messages() []string { return in.messages }

// LastError returns the error of the last evaluation, or nil.
func (in *Interpreter) LastError() *diagnostics.DiagnosticError { return in.lastErr }

// LastAnswer returns the most recent value any evaluation produced.
func (in *Interpreter) LastAnswer() value.Value { return in.lastAnswer }

// Settings returns the current evaluation settings.
func (in *Interpreter) Settings() value.EvalSettings { return in.settings }

// Operators exposes the interpreter's operator table.
func (in *Interpreter) Operators() *operators.Table { return in.ops }

// Eval evaluates a single expression without disturbing a running
// evaluation.
func (in *Interpreter) Eval(expr string) (value.Value, error) {
	saved := in.cur
	in.cur = lexer.New(expr)
	defer func() { in.cur = saved }()

	v, err := in.expression()
	if err != nil {
		return nil, asDiagnostic(err, in.cur, in.surround)
	}
	in.cur.MatchChar(';')
	in.cur.SkipWhitespace()
	if !in.cur.AtEnd() {
		return nil, in.errorf(diagnostics.ErrP001, "Expected end of expression!")
	}
	return v, nil
}

// Call invokes the function called name, which may be qualified, with
// positional arguments.
func (in *Interpreter) Call(name string, args ...value.Value) (value.Value, error) {
	saved := in.cur
	in.cur = lexer.New(name)
	defer func() { in.cur = saved }()

	at := in.cur.Mark()
	def := in.lookupPath(strings.Split(name, "."))
	if def == nil {
		return nil, in.errorAt(at, diagnostics.ErrS001, "Unknown name!")
	}
	if def.Kind != modules.KindFunction || def.Call == nil {
		return nil, in.errorAt(at, diagnostics.ErrS007, "Not a function!")
	}
	parsed := make([]modules.Arg, len(args))
	for i, a := range args {
		parsed[i].Value = a
	}
	mapped, err := modules.MapParameters(def.Params, parsed)
	if err != nil {
		return nil, in.errorAt(at, diagnostics.ErrS004, err.Error())
	}
	return in.invoke(at, def, mapped)
}

// InstallModule registers m's operators and makes its name resolvable.
// With autoImport its top-level names become resolvable unqualified.
func (in *Interpreter) InstallModule(m *modules.Module, autoImport bool) error {
	if m.Name() == in.math.Name() || in.installedModule(m.Name()) != nil {
		return fmt.Errorf("module %s is already installed", m.Name())
	}
	if err := m.Install(in.ops); err != nil {
		return err
	}
	in.installed = append(in.installed, m)
	if autoImport {
		in.frames[0].use(m.Def)
	}
	in.logger.Printf("installed module %s (%d operators)", m.Name(), len(m.Operators))
	return nil
}

// RemoveModule uninstalls the module called name together with every
// operator it owns.
func (in *Interpreter) RemoveModule(name string) error {
	if name == in.math.Name() {
		return fmt.Errorf("module %s is built in", name)
	}
	for i, m := range in.installed {
		if m.Name() != name {
			continue
		}
		in.ops.RemoveOwner(m.ID)
		in.installed = append(in.installed[:i], in.installed[i+1:]...)
		for _, f := range in.frames {
			f.unuse(m.Def)
		}
		in.logger.Printf("removed module %s", name)
		return nil
	}
	return fmt.Errorf("module %s is not installed", name)
}

// ImportModule makes the top-level names of a module resolvable
// unqualified in the global scope. A module that is registered process-wide
// but not installed yet is installed first.
func (in *Interpreter) ImportModule(name string) error {
	return in.importInto(in.frames[0], name)
}

var errUnknownModule = errors.New("Unknown module!")

func (in *Interpreter) importInto(f *Frame, name string) error {
	if name == in.math.Name() {
		f.use(in.math.Def)
		return nil
	}
	m := in.installedModule(name)
	if m == nil {
		m = modules.Lookup(name)
		if m == nil {
			return errUnknownModule
		}
		if err := in.InstallModule(m, false); err != nil {
			return err
		}
	}
	f.use(m.Def)
	return nil
}

func (in *Interpreter) installedModule(name string) *modules.Module {
	for _, m := range in.installed {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

func (in *Interpreter) message(s string) {
	in.messages = append(in.messages, s)
}

func (in *Interpreter) format(v value.Value) string {
	return value.Format(v, in.settings.Base)
}

// tick is called before every statement and loop re-entry.
func (in *Interpreter) tick(reentry bool) error {
	if err := in.ctx.Err(); err != nil {
		in.logger.Printf("evaluation cancelled: %v", err)
		return in.errorf(diagnostics.ErrR001, "Evaluation cancelled!")
	}
	if !reentry {
		return nil
	}
	in.steps++
	if in.loopLimit > 0 && in.steps > in.loopLimit {
		return in.errorf(diagnostics.ErrR002, "Loop limit exceeded!")
	}
	return nil
}
