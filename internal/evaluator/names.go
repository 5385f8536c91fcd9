package evaluator

import (
	"github.com/funvibe/funcalc/internal/builtins"
	"github.com/funvibe/funcalc/internal/config"
	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/lexer"
	"github.com/funvibe/funcalc/internal/modules"
	"github.com/funvibe/funcalc/internal/value"
)

// lookup resolves a bare name: the frame chain from the innermost block
// outwards (declared names, then namespaces in use), installed modules by
// name, and finally the innate Math definitions.
func (in *Interpreter) lookup(name string) *modules.Definition {
	for i := len(in.frames) - 1; i >= 0; i-- {
		f := in.frames[i]
		if d := f.Space.Find(name); d != nil {
			return d
		}
		for j := len(f.Using) - 1; j >= 0; j-- {
			if d := f.Using[j].Find(name); d != nil {
				return d
			}
		}
	}
	if m := in.installedModule(name); m != nil {
		return m.Def
	}
	if name == in.math.Name() {
		return in.math.Def
	}
	return in.math.Find(name)
}

// lookupPath resolves a qualified name given as its parts.
func (in *Interpreter) lookupPath(parts []string) *modules.Definition {
	d := in.lookup(parts[0])
	for _, p := range parts[1:] {
		if d == nil || !hasMembers(d) {
			return nil
		}
		d = d.Find(p)
	}
	return d
}

func hasMembers(d *modules.Definition) bool {
	return d.IsNamespace() || d.Kind == modules.KindEnum
}

// qualified reads name(.member)* at the cursor and resolves it. It
// returns nil and the cursor after the first name when the name is
// unknown.
func (in *Interpreter) qualified() (string, *modules.Definition, error) {
	c := in.cur
	name := c.ReadName()
	c.Advance(len(name))
	d := in.lookup(name)
	for d != nil && hasMembers(d) && c.Peek() == '.' && lexer.IsNameStart(c.PeekAt(1)) {
		c.Advance(1)
		at := c.Mark()
		member := c.ReadName()
		c.Advance(len(member))
		if d = d.Find(member); d == nil {
			return member, nil, in.errorAt(at, diagnostics.ErrS001, "Unknown name!")
		}
		name = member
	}
	return name, d, nil
}

// name evaluates a name at the cursor.
func (in *Interpreter) name() (value.Value, error) {
	c := in.cur
	at := c.Mark()

	switch word := c.ReadName(); word {
	case config.TypeOfName, config.StringName:
		if in.followedByParen(len(word)) {
			c.Advance(len(word))
			return in.intrinsic(at, word)
		}
	}

	name, d, err := in.qualified()
	if err != nil {
		return nil, err
	}
	if d == nil {
		if in.assignmentAhead() {
			d = &modules.Definition{Name: name, Kind: modules.KindVariable}
			in.top().Space.Set(d)
			return in.lvalue(d), nil
		}
		return nil, in.errorAt(at, diagnostics.ErrS001, "Unknown name!")
	}

	switch d.Kind {
	case modules.KindVariable:
		if d.ReadOnly {
			return d.Value, nil
		}
		return in.lvalue(d), nil
	case modules.KindEnumValue:
		return value.Int(d.Index), nil
	case modules.KindFunction:
		return in.callFunction(at, d)
	}
	return nil, in.errorAt(at, diagnostics.ErrS007, "Not a value!")
}

func (in *Interpreter) followedByParen(n int) bool {
	c := in.cur
	m := c.Mark()
	defer c.Restore(m)
	c.Advance(n)
	return c.MatchChar('(')
}

// intrinsic evaluates typeof(expr) and string(expr).
func (in *Interpreter) intrinsic(at lexer.Mark, word string) (value.Value, error) {
	c := in.cur
	if !c.MatchChar('(') {
		return nil, in.expected('(')
	}
	v, err := in.expression()
	if err != nil {
		return nil, err
	}
	if !c.MatchChar(')') {
		return nil, in.expected(')')
	}
	if word == config.TypeOfName {
		return value.String(value.TypeName(v)), nil
	}
	if s, ok := v.(value.String); ok {
		return s, nil
	}
	return value.String(in.format(v)), nil
}

// assignmentAhead reports whether the next operator token is a plain "=".
func (in *Interpreter) assignmentAhead() bool {
	c := in.cur
	m := c.Mark()
	defer c.Restore(m)
	c.SkipWhitespace()
	rest := in.rest()
	for i := 0; i < in.ops.NumLevels(); i++ {
		if tok, cands := in.ops.LookupBinary(rest, i); tok == "=" && cands[0].LValue {
			return true
		}
	}
	return false
}

func (in *Interpreter) lvalue(d *modules.Definition) *value.LValue {
	return &value.LValue{
		Name:    d.Name,
		Current: d.Value,
		Assign: func(v value.Value) error {
			if d.ReadOnly || d.Kind != modules.KindVariable {
				return builtins.ErrNotAssignable
			}
			cv, err := coerce(d.Type, v)
			if err != nil {
				return err
			}
			d.Value = cv
			return nil
		},
	}
}

// callFunction parses an optional argument list and calls d.
func (in *Interpreter) callFunction(at lexer.Mark, d *modules.Definition) (value.Value, error) {
	c := in.cur
	var parsed []modules.Arg
	if in.followedByParen(0) {
		c.MatchChar('(')
		if !c.MatchChar(')') {
			for {
				arg, err := in.argument(d.Params, parsed)
				if err != nil {
					return nil, err
				}
				parsed = append(parsed, arg)
				if c.MatchChar(',') {
					continue
				}
				if c.MatchChar(')') {
					break
				}
				return nil, in.expected(')')
			}
		}
	}
	args, err := modules.MapParameters(d.Params, parsed)
	if err != nil {
		return nil, in.errorAt(at, diagnostics.ErrS004, err.Error())
	}
	return in.invoke(at, d, args)
}

// argument parses one call argument: "name = expr", a bare enum member
// name for an enum parameter, or an expression.
func (in *Interpreter) argument(params []modules.Param, parsed []modules.Arg) (modules.Arg, error) {
	c := in.cur
	c.SkipWhitespace()
	m := c.Mark()

	target := modules.PositionalFor(params, parsed)
	if word := c.ReadName(); word != "" {
		c.Advance(len(word))
		// "name = expr" always names a parameter; an unknown name is
		// rejected by MapParameters rather than assigned.
		if in.assignmentAhead() {
			c.MatchChar('=')
			v, err := in.expression()
			return modules.Arg{Name: word, Value: v}, err
		}
		if target != nil && target.Enum != nil {
			if idx, ok := target.Enum.EnumIndex(word); ok {
				c.SkipWhitespace()
				if ch := c.Peek(); ch == ',' || ch == ')' {
					return modules.Arg{Value: value.Int(idx)}, nil
				}
			}
		}
		c.Restore(m)
	}
	v, err := in.expression()
	return modules.Arg{Value: v}, err
}

// invoke calls a function definition and turns its status and log into a
// value, warnings in the message buffer, or an error.
func (in *Interpreter) invoke(at lexer.Mark, d *modules.Definition, args modules.Args) (value.Value, error) {
	if d.Call == nil {
		return nil, in.errorAt(at, diagnostics.ErrS007, "Not a function!")
	}
	if in.depth >= config.MaxCallDepth {
		return nil, in.errorAt(at, diagnostics.ErrR002, "Too many nested calls!")
	}

	cc := &modules.CallContext{Context: in.ctx, Settings: in.settings}
	if in.contextBuilder != nil {
		cc.Host = in.contextBuilder()
	}
	log := &diagnostics.Log{}

	in.depth++
	v, status := d.Call(cc, args, log)
	in.depth--

	if err := in.scriptErr; err != nil {
		in.scriptErr = nil
		return nil, err
	}
	if status == modules.StatusFail || log.Worst() == diagnostics.SeverityFail {
		msg := log.Text(diagnostics.SeverityFail)
		if msg == "" {
			msg = "Function " + d.Name + " failed!"
		}
		code := diagnostics.ErrH001
		if in.math.Find(d.Name) == d {
			code = diagnostics.ErrM002
		}
		return nil, in.errorAt(at, code, msg)
	}
	for _, e := range log.Entries() {
		if e.Severity == diagnostics.SeverityWarning {
			in.message("Warning: " + e.Message)
			in.warned = true
		} else {
			in.message(e.Message)
		}
	}
	if status == modules.StatusWarning {
		in.warned = true
	}
	return v, nil
}
