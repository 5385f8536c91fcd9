package evaluator

import (
	"fmt"
	"strconv"

	"github.com/funvibe/funcalc/internal/config"
	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/lexer"
	"github.com/funvibe/funcalc/internal/modules"
	"github.com/funvibe/funcalc/internal/operators"
	"github.com/funvibe/funcalc/internal/value"
)

// script is the source of a user defined function or operator.
type script struct {
	name   string
	params []string
	body   string
	line   int
	// expr bodies are a single expression, block bodies are statements.
	expr bool
}

// zeroValues maps the declarable variable types to their initial values.
var zeroValues = map[string]value.Value{
	"int":     value.Int(0),
	"real":    value.Real(0),
	"boolean": value.Bool(false),
	"string":  value.String(""),
	"set":     value.NewSet(),
	"array":   value.NewArray(),
}

// coerce converts v to the declared type typ. An empty type accepts
// anything.
func coerce(typ string, v value.Value) (value.Value, error) {
	if typ == "" || v == nil || value.TypeName(v) == typ {
		return v, nil
	}
	switch typ {
	case "int":
		if f, ok := value.Number(v); ok {
			return value.Int(int64(f)), nil
		}
	case "real":
		if f, ok := value.Number(v); ok {
			return value.Real(f), nil
		}
	case "boolean":
		if t, ok := value.Truth(v); ok {
			return value.Bool(t), nil
		}
	case "string":
		return value.String(value.Format(v, 10)), nil
	}
	return nil, fmt.Errorf("Cannot convert %s to %s!", value.TypeName(v), typ)
}

// paramList reads "(a, b, ...)" with the opening paren already consumed.
func (in *Interpreter) paramList() ([]string, error) {
	c := in.cur
	var params []string
	if c.MatchChar(')') {
		return params, nil
	}
	for {
		c.SkipWhitespace()
		name := c.ReadName()
		if name == "" {
			return nil, in.errorf(diagnostics.ErrP003, "Expecting name!")
		}
		c.Advance(len(name))
		params = append(params, name)
		if c.MatchChar(',') {
			continue
		}
		if c.MatchChar(')') {
			return params, nil
		}
		return nil, in.expected(')')
	}
}

// scriptBody reads "{ statements }" or "= expression".
func (in *Interpreter) scriptBody(s *script) error {
	c := in.cur
	if c.MatchChar('{') {
		start := c.Mark()
		if err := c.SkipBalancedBlock('}'); err != nil {
			return in.lexical(start, err)
		}
		s.body = c.Slice(start.Pos, c.Pos()-1)
		s.line = start.Line
		return nil
	}
	if in.assignmentAhead() {
		c.MatchChar('=')
		c.SkipWhitespace()
		start := c.Mark()
		end, err := c.ScanExpression()
		if err != nil {
			return in.lexical(start, err)
		}
		s.body = c.Slice(start.Pos, end)
		s.line = start.Line
		s.expr = true
		c.Advance(end - start.Pos)
		return nil
	}
	return in.expected('{')
}

// functionCommand defines "function name(params) { body }" or
// "function name(params) = expr" in the innermost scope.
func (in *Interpreter) functionCommand() error {
	c := in.cur
	c.SkipWhitespace()
	name := c.ReadName()
	if name == "" {
		return in.errorf(diagnostics.ErrP003, "Expecting name!")
	}
	c.Advance(len(name))
	if !c.MatchChar('(') {
		return in.expected('(')
	}
	params, err := in.paramList()
	if err != nil {
		return err
	}
	s := &script{name: name, params: params}
	if err := in.scriptBody(s); err != nil {
		return err
	}

	d := &modules.Definition{Name: name, Description: "User function", Kind: modules.KindFunction}
	for _, p := range params {
		d.Params = append(d.Params, modules.Param{Name: p})
	}
	d.Call = func(ctx *modules.CallContext, args modules.Args, log *diagnostics.Log) (value.Value, modules.Status) {
		vals := make([]value.Value, len(args))
		for i, a := range args {
			vals[i] = a.Value
		}
		v, err := in.callScript(s, vals)
		if err != nil {
			in.scriptErr = err
			log.Fail(err.Message)
			return nil, modules.StatusFail
		}
		return v, modules.StatusOk
	}
	in.scripts[d] = s
	in.top().Space.Set(d)
	return nil
}

// operatorCommand defines
// "operator [ltor|rtol|left|right] [rank] token (params) body".
func (in *Interpreter) operatorCommand(at lexer.Mark) error {
	c := in.cur
	assoc := operators.BinaryLtoR
	switch {
	case c.MatchWord("ltor"):
	case c.MatchWord("rtol"):
		assoc = operators.BinaryRtoL
	case c.MatchWord("left"):
		assoc = operators.LeftUnary
	case c.MatchWord("right"):
		assoc = operators.RightUnary
	}

	rank := config.DefaultOpRank
	c.SkipWhitespace()
	if lexer.IsDigit(c.Peek()) {
		text := c.Input()[c.Pos():]
		n := digits(text, 0)
		r, err := strconv.Atoi(text[:n])
		if err != nil {
			return in.errorf(diagnostics.ErrP005, "Malformed number!")
		}
		rank = r
		c.Advance(n)
		c.SkipWhitespace()
	}

	tok := c.ReadOperator()
	if tok == "" {
		return in.errorf(diagnostics.ErrP004, "Expected operator!")
	}
	c.Advance(len(tok))
	if !c.MatchChar('(') {
		return in.expected('(')
	}
	params, err := in.paramList()
	if err != nil {
		return err
	}
	want := 1
	if assoc.IsBinary() {
		want = 2
	}
	if len(params) != want {
		return in.errorAt(at, diagnostics.ErrS004, fmt.Sprintf("Operator %s needs %d parameters!", tok, want))
	}
	s := &script{name: tok, params: params}
	if err := in.scriptBody(s); err != nil {
		return err
	}

	eval := func(op string, l, r value.Value, settings value.EvalSettings) (value.Value, error) {
		args := []value.Value{l}
		if want == 2 {
			args = append(args, r)
		}
		if in.depth >= config.MaxCallDepth {
			return nil, in.errorf(diagnostics.ErrR002, "Too many nested calls!")
		}
		in.depth++
		v, err := in.callScript(s, args)
		in.depth--
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	spec := modules.OperatorSpec{Token: tok, Assoc: assoc, Rank: rank, Description: "User operator", Eval: eval}
	entry := &operators.Entry{Token: tok, Assoc: assoc, Owner: in.session.ID, Description: spec.Description, Eval: eval}
	if err := in.ops.Register(entry, rank); err != nil {
		return in.errorAt(at, diagnostics.ErrS004, err.Error())
	}
	in.session.AddOperator(spec)
	return nil
}

// callScript runs a user function body with its parameters bound in a
// fresh function frame. The cursor is swapped for the body and restored.
// Callers account for the call depth.
func (in *Interpreter) callScript(s *script, args []value.Value) (value.Value, *diagnostics.DiagnosticError) {
	f := newFrame(FrameFunction)
	f.Space.Name = s.name
	for i, p := range s.params {
		f.bind(p, args[i])
	}

	saved, savedFrames := in.cur, len(in.frames)
	in.cur = lexer.New("")
	in.cur.Reset(s.body, s.line)
	in.push(f)
	defer func() {
		in.cur = saved
		in.frames = in.frames[:savedFrames]
		in.returning = false
		in.retVal = nil
	}()

	var v value.Value
	var err error
	if s.expr {
		v, err = in.expression()
	} else {
		v, err = in.run(len(in.frames))
		if in.returning {
			v = in.retVal
		}
	}
	if err != nil {
		return nil, asDiagnostic(err, in.cur, in.surround)
	}
	return v, nil
}
