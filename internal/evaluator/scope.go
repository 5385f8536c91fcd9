package evaluator

import (
	"github.com/funvibe/funcalc/internal/config"
	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/lexer"
	"github.com/funvibe/funcalc/internal/modules"
	"github.com/funvibe/funcalc/internal/value"
)

type FrameKind int

const (
	FrameGlobal FrameKind = iota
	FrameIf
	FrameFor
	FrameForeach
	FrameWhile
	FrameNamespace
	FrameFunction
)

var frameKindNames = [...]string{
	FrameGlobal:    "global",
	FrameIf:        "if",
	FrameFor:       "for",
	FrameForeach:   "foreach",
	FrameWhile:     "while",
	FrameNamespace: "namespace",
	FrameFunction:  "function",
}

func (k FrameKind) String() string { return frameKindNames[k] }

func (k FrameKind) isLoop() bool {
	return k == FrameFor || k == FrameForeach || k == FrameWhile
}

// Frame is one open block. Loops keep the marks they rewind to.
type Frame struct {
	Kind FrameKind
	// Space receives the names declared inside the block.
	Space *modules.Definition
	// Using lists namespaces whose members resolve unqualified here.
	Using []*modules.Definition

	cond    lexer.Mark // for, while: start of the condition
	advance lexer.Mark // for: start of the advance expressions
	body    lexer.Mark // loops: first byte after '{'

	loopVar string
	items   []value.Value
	index   int
}

func newFrame(kind FrameKind) *Frame {
	return &Frame{Kind: kind, Space: modules.NewNamespace("", "")}
}

func (f *Frame) use(d *modules.Definition) {
	for _, u := range f.Using {
		if u == d {
			return
		}
	}
	f.Using = append(f.Using, d)
}

func (f *Frame) unuse(d *modules.Definition) {
	for i, u := range f.Using {
		if u == d {
			f.Using = append(f.Using[:i], f.Using[i+1:]...)
			return
		}
	}
}

func (f *Frame) bind(name string, v value.Value) {
	if d := f.Space.Find(name); d != nil && d.Kind == modules.KindVariable {
		d.Value = v
		return
	}
	f.Space.Set(&modules.Definition{Name: name, Kind: modules.KindVariable, Value: v})
}

func (in *Interpreter) top() *Frame { return in.frames[len(in.frames)-1] }

func (in *Interpreter) push(f *Frame) { in.frames = append(in.frames, f) }

func (in *Interpreter) pop() { in.frames = in.frames[:len(in.frames)-1] }

// run evaluates statements until the buffer ends. base is the frame count
// the buffer starts with; a different count at the end means an open block.
func (in *Interpreter) run(base int) (value.Value, error) {
	savedBase := in.base
	in.base = base
	defer func() { in.base = savedBase }()

	c := in.cur
	var result value.Value
	c.SkipWhitespace()
	for !c.AtEnd() {
		if err := in.tick(false); err != nil {
			return nil, err
		}
		start := c.Pos()

		handled, err := in.command()
		if err != nil {
			return nil, err
		}
		if !handled {
			handled, err = in.controlFlow()
			if err != nil {
				return nil, err
			}
		}
		// The value of a buffer is that of its last statement, so commands
		// and blocks leave none.
		result = nil
		if !handled {
			v, err := in.expression()
			if err != nil {
				return nil, err
			}
			result = v
			if c.Pos() == start {
				return nil, in.errorf(diagnostics.ErrP002, "Expected a value!")
			}
		}
		c.MatchChar(';')
		c.SkipWhitespace()
	}
	if len(in.frames) != base {
		return nil, in.errorf(diagnostics.ErrS006, "Unterminated scope!")
	}
	return result, nil
}

// controlFlow handles a block keyword or a closing brace at the cursor.
func (in *Interpreter) controlFlow() (bool, error) {
	c := in.cur
	c.SkipWhitespace()
	at := c.Mark()
	switch {
	case c.MatchChar('}'):
		if len(in.frames) <= in.base {
			return true, in.errorAt(at, diagnostics.ErrP006, "Unexpected '}'!")
		}
		return true, in.closeBlock()
	case c.MatchWord(config.KeywordIf):
		return true, in.ifStatement()
	case c.MatchWord(config.KeywordForeach):
		return true, in.foreachStatement()
	case c.MatchWord(config.KeywordFor):
		return true, in.forStatement()
	case c.MatchWord(config.KeywordWhile):
		return true, in.whileStatement()
	case c.MatchWord(config.KeywordNamespace):
		return true, in.namespaceStatement()
	case c.MatchWord(config.KeywordBreak):
		return true, in.breakStatement(at)
	case c.MatchWord(config.KeywordReturn):
		return true, in.returnStatement(at)
	}
	return false, nil
}

// condition reads "(expr)" and reports whether it holds.
func (in *Interpreter) condition() (bool, error) {
	c := in.cur
	if !c.MatchChar('(') {
		return false, in.expected('(')
	}
	truth, err := in.truth()
	if err != nil {
		return false, err
	}
	if !c.MatchChar(')') {
		return false, in.expected(')')
	}
	return truth, nil
}

func (in *Interpreter) truth() (bool, error) {
	c := in.cur
	c.SkipWhitespace()
	at := c.Mark()
	v, err := in.expression()
	if err != nil {
		return false, err
	}
	t, ok := value.Truth(v)
	if !ok {
		return false, in.errorAt(at, diagnostics.ErrS003, "Condition must be a number!")
	}
	return t, nil
}

func (in *Interpreter) openBrace() error {
	if !in.cur.MatchChar('{') {
		return in.expected('{')
	}
	return nil
}

// skipBlock moves past the '}' closing the block the cursor is in.
func (in *Interpreter) skipBlock() error {
	at := in.cur.Mark()
	if err := in.cur.SkipBalancedBlock('}'); err != nil {
		return in.lexical(at, err)
	}
	return nil
}

func (in *Interpreter) ifStatement() error {
	c := in.cur
	for {
		truth, err := in.condition()
		if err != nil {
			return err
		}
		if err := in.openBrace(); err != nil {
			return err
		}
		if truth {
			in.push(newFrame(FrameIf))
			return nil
		}
		if err := in.skipBlock(); err != nil {
			return err
		}
		if !c.MatchWord(config.KeywordElse) {
			return nil
		}
		if c.MatchWord(config.KeywordIf) {
			continue
		}
		if err := in.openBrace(); err != nil {
			return err
		}
		in.push(newFrame(FrameIf))
		return nil
	}
}

// skipElse passes over the else branches following a finished if block.
func (in *Interpreter) skipElse() error {
	c := in.cur
	for {
		m := c.Mark()
		if !c.MatchWord(config.KeywordElse) {
			c.Restore(m)
			return nil
		}
		if c.MatchWord(config.KeywordIf) {
			if !c.MatchChar('(') {
				return in.expected('(')
			}
			at := c.Mark()
			if err := c.SkipBalancedBlock(')'); err != nil {
				return in.lexical(at, err)
			}
		}
		if err := in.openBrace(); err != nil {
			return err
		}
		if err := in.skipBlock(); err != nil {
			return err
		}
	}
}

// expressionList evaluates comma separated expressions up to stop, which
// is left unconsumed.
func (in *Interpreter) expressionList(stop byte) error {
	c := in.cur
	c.SkipWhitespace()
	if c.Peek() == stop {
		return nil
	}
	for {
		if _, err := in.expression(); err != nil {
			return err
		}
		if !c.MatchChar(',') {
			break
		}
	}
	c.SkipWhitespace()
	if c.Peek() != stop {
		return in.expected(stop)
	}
	return nil
}

func (in *Interpreter) forStatement() error {
	c := in.cur
	if !c.MatchChar('(') {
		return in.expected('(')
	}
	f := newFrame(FrameFor)
	in.push(f)

	if err := in.expressionList(';'); err != nil {
		return err
	}
	c.Advance(1)

	c.SkipWhitespace()
	f.cond = c.Mark()
	truth := true
	if c.Peek() != ';' {
		var err error
		if truth, err = in.truth(); err != nil {
			return err
		}
	}
	if !c.MatchChar(';') {
		return in.expected(';')
	}

	f.advance = c.Mark()
	at := c.Mark()
	if err := c.SkipBalancedBlock(')'); err != nil {
		return in.lexical(at, err)
	}
	if err := in.openBrace(); err != nil {
		return err
	}
	f.body = c.Mark()
	if !truth {
		in.pop()
		return in.skipBlock()
	}
	return nil
}

func (in *Interpreter) foreachStatement() error {
	c := in.cur
	c.SkipWhitespace()
	name := c.ReadName()
	if name == "" {
		return in.errorf(diagnostics.ErrP003, "Expecting name!")
	}
	c.Advance(len(name))
	c.MatchWord(config.KeywordIn)

	c.SkipWhitespace()
	at := c.Mark()
	v, err := in.expression()
	if err != nil {
		return err
	}
	coll, ok := v.(value.Collection)
	if !ok {
		return in.errorAt(at, diagnostics.ErrS007, "Expected a set or array!")
	}
	if err := in.openBrace(); err != nil {
		return err
	}
	if coll.Len() == 0 {
		return in.skipBlock()
	}

	f := newFrame(FrameForeach)
	f.loopVar = name
	f.items = coll.Elements()
	f.body = c.Mark()
	f.bind(name, f.items[0])
	in.push(f)
	return nil
}

func (in *Interpreter) whileStatement() error {
	c := in.cur
	c.SkipWhitespace()
	cond := c.Mark()
	truth, err := in.condition()
	if err != nil {
		return err
	}
	if err := in.openBrace(); err != nil {
		return err
	}
	if !truth {
		return in.skipBlock()
	}
	f := newFrame(FrameWhile)
	f.cond = cond
	f.body = c.Mark()
	in.push(f)
	return nil
}

func (in *Interpreter) namespaceStatement() error {
	c := in.cur
	c.SkipWhitespace()
	at := c.Mark()
	space := modules.NewNamespace("", "")
	if name := c.ReadName(); name != "" {
		c.Advance(len(name))
		outer := in.top().Space
		switch d := outer.Find(name); {
		case d == nil:
			space = modules.NewNamespace(name, "")
			outer.Set(space)
		case d.IsNamespace():
			space = d
		default:
			return in.errorAt(at, diagnostics.ErrS002, "Not a namespace!")
		}
	}
	if err := in.openBrace(); err != nil {
		return err
	}
	in.push(&Frame{Kind: FrameNamespace, Space: space})
	return nil
}

// closeBlock handles the '}' ending the innermost block. Loops either
// rewind to their body or fall through past the brace.
func (in *Interpreter) closeBlock() error {
	c := in.cur
	f := in.top()
	end := c.Mark()

	switch f.Kind {
	case FrameIf:
		in.pop()
		return in.skipElse()

	case FrameFor:
		c.Restore(f.advance)
		if err := in.expressionList(')'); err != nil {
			return err
		}
		truth := true
		c.Restore(f.cond)
		c.SkipWhitespace()
		if c.Peek() != ';' {
			var err error
			if truth, err = in.truth(); err != nil {
				return err
			}
		}
		return in.loopAgain(truth, end)

	case FrameForeach:
		f.index++
		more := f.index < len(f.items)
		if more {
			f.bind(f.loopVar, f.items[f.index])
		}
		return in.loopAgain(more, end)

	case FrameWhile:
		c.Restore(f.cond)
		truth, err := in.condition()
		if err != nil {
			return err
		}
		return in.loopAgain(truth, end)
	}

	in.pop()
	return nil
}

func (in *Interpreter) loopAgain(again bool, end lexer.Mark) error {
	if !again {
		in.cur.Restore(end)
		in.pop()
		return nil
	}
	if err := in.tick(true); err != nil {
		return err
	}
	in.cur.Restore(in.top().body)
	return nil
}

// breakStatement leaves the nearest loop, closing the if blocks in between.
func (in *Interpreter) breakStatement(at lexer.Mark) error {
	depth := -1
	for i := len(in.frames) - 1; i >= in.base; i-- {
		k := in.frames[i].Kind
		if k.isLoop() {
			depth = len(in.frames) - i
			break
		}
		if k != FrameIf {
			break
		}
	}
	if depth < 0 {
		return in.errorAt(at, diagnostics.ErrS005, "Cannot break from there!")
	}
	for ; depth > 0; depth-- {
		if err := in.skipBlock(); err != nil {
			return err
		}
		in.pop()
	}
	return nil
}

// returnStatement ends the running function body with an optional value.
func (in *Interpreter) returnStatement(at lexer.Mark) error {
	fn := -1
	for i := len(in.frames) - 1; i > 0; i-- {
		if in.frames[i].Kind == FrameFunction {
			fn = i
			break
		}
	}
	if fn < 0 {
		return in.errorAt(at, diagnostics.ErrS005, "Cannot return!")
	}

	c := in.cur
	c.SkipWhitespace()
	var v value.Value
	if ch := c.Peek(); !c.AtEnd() && ch != ';' && ch != '}' {
		var err error
		if v, err = in.expression(); err != nil {
			return err
		}
	}
	in.frames = in.frames[:fn+1]
	in.returning = true
	in.retVal = v
	c.Advance(len(c.Input()) - c.Pos())
	return nil
}
