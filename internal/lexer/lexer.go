package lexer

import (
	"errors"
	"strings"
)

var (
	ErrUnterminatedString = errors.New("String not closed")
	ErrMissingEnd         = errors.New("Missing end!")
	ErrUnexpectedEnd      = errors.New("Unexpected end!")
)

// reserved characters can never appear in an operator token.
const reserved = "#;\"'.()[]{}"

// Cursor walks one source buffer. Every lexical primitive works on the
// shared offset, so callers can save and restore positions freely.
type Cursor struct {
	input string
	pos   int // offset of the next unread byte
	line  int // line number at pos, starting from 1
}

// Mark is a saved cursor position.
type Mark struct {
	Pos  int
	Line int
}

func New(input string) *Cursor {
	return &Cursor{input: input, line: 1}
}

// Reset installs a new buffer. line is the line number at offset 0.
func (c *Cursor) Reset(input string, line int) {
	c.input = input
	c.pos = 0
	c.line = line
}

func (c *Cursor) Input() string { return c.input }
func (c *Cursor) Pos() int      { return c.pos }
func (c *Cursor) Line() int     { return c.line }
func (c *Cursor) AtEnd() bool   { return c.pos >= len(c.input) }
func (c *Cursor) Mark() Mark    { return Mark{Pos: c.pos, Line: c.line} }

func (c *Cursor) Restore(m Mark) {
	c.pos = m.Pos
	c.line = m.Line
}

// Peek returns the byte at the cursor, or 0 at the end.
func (c *Cursor) Peek() byte { return c.PeekAt(0) }

// PeekAt returns the byte n bytes past the cursor, or 0 past the end.
func (c *Cursor) PeekAt(n int) byte {
	if c.pos+n >= len(c.input) || c.pos+n < 0 {
		return 0
	}
	return c.input[c.pos+n]
}

// Advance moves the cursor n bytes forward, counting newlines.
func (c *Cursor) Advance(n int) {
	end := c.pos + n
	if end > len(c.input) {
		end = len(c.input)
	}
	c.line += strings.Count(c.input[c.pos:end], "\n")
	c.pos = end
}

// Slice returns input[from:to].
func (c *Cursor) Slice(from, to int) string { return c.input[from:to] }

// SkipWhitespace advances past whitespace and #-to-end-of-line comments.
func (c *Cursor) SkipWhitespace() {
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		switch {
		case ch == '\n':
			c.line++
			c.pos++
		case isSpace(ch):
			c.pos++
		case ch == '#':
			for c.pos < len(c.input) && c.input[c.pos] != '\n' {
				c.pos++
			}
		default:
			return
		}
	}
}

// MatchChar consumes ch if it is the next significant character.
func (c *Cursor) MatchChar(ch byte) bool {
	c.SkipWhitespace()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		if ch == '\n' {
			c.line++
		}
		return true
	}
	return false
}

// MatchWord consumes w if it is next and not the prefix of a longer name.
func (c *Cursor) MatchWord(w string) bool {
	c.SkipWhitespace()
	if !strings.HasPrefix(c.input[c.pos:], w) {
		return false
	}
	if next := c.PeekAt(len(w)); IsNameChar(next) {
		return false
	}
	c.pos += len(w)
	return true
}

// ReadName returns the name starting at the cursor without consuming it.
// Returns "" if the next character cannot start a name.
func (c *Cursor) ReadName() string {
	if c.pos >= len(c.input) || !IsNameStart(c.input[c.pos]) {
		return ""
	}
	end := c.pos + 1
	for end < len(c.input) && IsNameChar(c.input[end]) {
		end++
	}
	return c.input[c.pos:end]
}

// ReadOperator returns the run of operator characters at the cursor without
// consuming it.
func (c *Cursor) ReadOperator() string {
	end := c.pos
	for end < len(c.input) && IsOperatorChar(c.input[end]) {
		end++
	}
	return c.input[c.pos:end]
}

// ReadQuotedString reads a ' or " delimited string at the cursor and returns
// its unescaped contents. On failure the cursor is left at the opening quote.
func (c *Cursor) ReadQuotedString() (string, error) {
	start := c.Mark()
	quote := c.Peek()
	if quote != '"' && quote != '\'' {
		return "", ErrUnterminatedString
	}
	c.pos++

	var sb strings.Builder
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == quote {
			c.pos++
			return sb.String(), nil
		}
		if ch == '\n' {
			c.line++
		}
		if ch == '\\' && c.pos+1 < len(c.input) {
			c.pos++
			esc := c.input[c.pos]
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '\'', '"':
				sb.WriteByte(esc)
			case '\n':
				c.line++ // line continuation
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
			c.pos++
			continue
		}
		sb.WriteByte(ch)
		c.pos++
	}
	c.Restore(start)
	return "", ErrUnterminatedString
}

// SkipBalancedBlock advances past the bracket that closes an already opened
// block, skipping nested brackets, strings and comments.
func (c *Cursor) SkipBalancedBlock(closer byte) error {
	stack := []byte{closer}
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		switch ch {
		case '\n':
			c.line++
			c.pos++
		case '#':
			for c.pos < len(c.input) && c.input[c.pos] != '\n' {
				c.pos++
			}
		case '"', '\'':
			if _, err := c.ReadQuotedString(); err != nil {
				return err
			}
		case '(':
			stack = append(stack, ')')
			c.pos++
		case '[':
			stack = append(stack, ']')
			c.pos++
		case '{':
			stack = append(stack, '}')
			c.pos++
		case ')', ']', '}':
			if ch != stack[len(stack)-1] {
				return ErrUnexpectedEnd
			}
			stack = stack[:len(stack)-1]
			c.pos++
			if len(stack) == 0 {
				return nil
			}
		default:
			c.pos++
		}
	}
	return ErrMissingEnd
}

// ScanExpression returns the offset where an expression starting at the
// cursor ends: the first ';', newline, or unmatched closing bracket outside
// of strings and nested brackets. The cursor does not move.
func (c *Cursor) ScanExpression() (int, error) {
	saved := c.Mark()
	defer c.Restore(saved)
	for c.pos < len(c.input) {
		switch ch := c.input[c.pos]; ch {
		case ';', '\n', ')', ']', '}':
			return c.pos, nil
		case '#':
			return c.pos, nil
		case '"', '\'':
			if _, err := c.ReadQuotedString(); err != nil {
				return 0, err
			}
		case '(', '[', '{':
			c.pos++
			if err := c.SkipBalancedBlock(closerFor(ch)); err != nil {
				return 0, err
			}
		default:
			c.pos++
		}
	}
	return c.pos, nil
}

// Unclosed reports whether input ends inside a bracket or a string, so a
// line editor should ask for more text before evaluating it.
func Unclosed(input string) bool {
	c := New(input)
	depth := 0
	for c.pos < len(c.input) {
		switch ch := c.input[c.pos]; ch {
		case '#':
			for c.pos < len(c.input) && c.input[c.pos] != '\n' {
				c.pos++
			}
		case '"', '\'':
			if _, err := c.ReadQuotedString(); err != nil {
				return true
			}
		case '(', '[', '{':
			depth++
			c.pos++
		case ')', ']', '}':
			depth--
			c.pos++
		default:
			c.pos++
		}
	}
	return depth > 0
}

func closerFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	}
	return '}'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v'
}

func IsDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

func IsLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func IsNameStart(ch byte) bool { return IsLetter(ch) || ch == '_' }

func IsNameChar(ch byte) bool { return IsLetter(ch) || IsDigit(ch) || ch == '_' }

// IsOperatorChar reports whether ch may be part of an operator token.
func IsOperatorChar(ch byte) bool {
	if ch <= ' ' || ch >= 0x7f || IsNameChar(ch) {
		return false
	}
	return strings.IndexByte(reserved, ch) < 0
}
