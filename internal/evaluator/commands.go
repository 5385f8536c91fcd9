package evaluator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/funcalc/internal/config"
	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/lexer"
	"github.com/funvibe/funcalc/internal/modules"
	"github.com/funvibe/funcalc/internal/value"
)

// sessionCommands are listed by help, in this order.
var sessionCommands = []struct{ name, desc string }{
	{config.CmdShow, "Give information about something"},
	{config.CmdAbout, "Show version information"},
	{config.CmdUnset, "Remove a name from the current namespace"},
	{config.CmdPrint, "Print out something to the console"},
	{config.TypeOfName, "Return the type of an object"},
	{config.CmdDegrees, "Numbers for angle inputs are assumed to be degrees"},
	{config.CmdRadians, "Numbers for angle inputs are assumed to be radians"},
	{config.CmdImport, "Make a module available in the current scope"},
	{config.CmdUsing, "Make the names of a namespace directly accessible"},
	{config.CmdVar, "Declare a variable, optionally typed"},
	{config.CmdFunction, "Define a function"},
	{config.CmdOperator, "Define an operator"},
	{config.CmdHelp, "Show a quick help"},
	{config.CmdHelpMark, "Show a quick help"},
	{config.CmdQuit, "Quit"},
}

// command runs a session command at the cursor, if there is one.
func (in *Interpreter) command() (bool, error) {
	c := in.cur
	c.SkipWhitespace()
	at := c.Mark()

	switch {
	case c.MatchChar('?') || c.MatchWord(config.CmdHelp):
		in.help()
	case c.MatchWord(config.CmdAbout):
		in.message(in.version)
	case c.MatchWord(config.CmdQuit):
		if in.onQuit != nil {
			in.onQuit()
		}
		c.Advance(len(c.Input()) - c.Pos())
	case c.MatchWord(config.CmdRadians):
		in.settings.Degrees = false
	case c.MatchWord(config.CmdDegrees):
		in.settings.Degrees = true
	case c.MatchWord(config.CmdPrint):
		return true, in.printCommand()
	case c.MatchWord(config.CmdImport):
		return true, in.importCommand(false)
	case c.MatchWord(config.CmdUsing):
		return true, in.importCommand(true)
	case c.MatchWord(config.CmdUnset):
		return true, in.unsetCommand()
	case c.MatchWord(config.CmdShow):
		return true, in.showCommand()
	case c.MatchWord(config.CmdVar):
		return true, in.varCommand()
	case c.MatchWord(config.CmdFunction):
		return true, in.functionCommand()
	case c.MatchWord(config.CmdOperator):
		return true, in.operatorCommand(at)
	default:
		return false, nil
	}
	return true, nil
}

func (in *Interpreter) help() {
	in.message("The very basic commands are:")
	for _, cmd := range sessionCommands {
		in.message(fmt.Sprintf("%10s  %s", cmd.name, cmd.desc))
	}
}

func (in *Interpreter) printCommand() error {
	v, err := in.expression()
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if s, ok := v.(value.String); ok {
		in.message(string(s))
	} else {
		in.message(in.format(v))
	}
	return nil
}

// nameArg reads the name a command operates on, with its dotted path.
func (in *Interpreter) nameArg() (string, error) {
	c := in.cur
	c.SkipWhitespace()
	start := c.Pos()
	for {
		name := c.ReadName()
		if name == "" {
			break
		}
		c.Advance(len(name))
		if c.Peek() != '.' || !lexer.IsNameStart(c.PeekAt(1)) {
			break
		}
		c.Advance(1)
	}
	if c.Pos() == start {
		return "", in.errorf(diagnostics.ErrP003, "Expecting name!")
	}
	return c.Slice(start, c.Pos()), nil
}

// importCommand handles import (a module becomes reachable in the current
// scope) and using (the members of a namespace become reachable
// unqualified).
func (in *Interpreter) importCommand(using bool) error {
	c := in.cur
	c.SkipWhitespace()
	at := c.Mark()
	name, err := in.nameArg()
	if err != nil {
		return err
	}
	if !using {
		if err := in.importInto(in.top(), name); err != nil {
			if errors.Is(err, errUnknownModule) {
				return in.errorAt(at, diagnostics.ErrS001, err.Error())
			}
			return in.errorAt(at, diagnostics.ErrH001, err.Error())
		}
		return nil
	}
	d := in.lookupPath(strings.Split(name, "."))
	if d == nil {
		if err := in.importInto(in.top(), name); err == nil {
			return nil
		}
		return in.errorAt(at, diagnostics.ErrS001, "Unknown name!")
	}
	if !hasMembers(d) {
		return in.errorAt(at, diagnostics.ErrS002, "Not a namespace!")
	}
	in.top().use(d)
	return nil
}

// unsetCommand removes a name declared in an open scope, or stops using
// a namespace.
func (in *Interpreter) unsetCommand() error {
	c := in.cur
	c.SkipWhitespace()
	at := c.Mark()
	name, err := in.nameArg()
	if err != nil {
		return err
	}
	for i := len(in.frames) - 1; i >= 0; i-- {
		f := in.frames[i]
		if f.Space.Remove(name) {
			return nil
		}
		for _, u := range f.Using {
			if u.Name == name {
				f.unuse(u)
				return nil
			}
		}
	}
	return in.errorAt(at, diagnostics.ErrS001, "Unknown name!")
}

// varCommand declares "var [type] name [= expr]" in the innermost scope.
func (in *Interpreter) varCommand() error {
	c := in.cur
	c.SkipWhitespace()
	first := c.ReadName()
	if first == "" {
		return in.errorf(diagnostics.ErrP003, "Expecting name!")
	}
	c.Advance(len(first))

	typ, name := "", first
	if _, isType := zeroValues[first]; isType {
		m := c.Mark()
		c.SkipWhitespace()
		if second := c.ReadName(); second != "" {
			c.Advance(len(second))
			typ, name = first, second
		} else {
			c.Restore(m)
		}
	}

	d := &modules.Definition{Name: name, Kind: modules.KindVariable, Type: typ}
	if typ != "" {
		d.Value = zeroValues[typ]
	}
	if in.assignmentAhead() {
		c.MatchChar('=')
		c.SkipWhitespace()
		at := c.Mark()
		v, err := in.expression()
		if err != nil {
			return err
		}
		cv, err := coerce(typ, v)
		if err != nil {
			return in.errorAt(at, diagnostics.ErrS008, err.Error())
		}
		d.Value = cv
	}
	in.top().Space.Set(d)
	return nil
}
