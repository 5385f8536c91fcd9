package diagnostics

import (
	"fmt"
	"strings"
)

type ErrorCode string

// Lexical errors
const (
	ErrL001 ErrorCode = "L001" // unterminated string
	ErrL002 ErrorCode = "L002" // missing end of block
	ErrL003 ErrorCode = "L003" // unexpected closing bracket
)

// Syntactic errors
const (
	ErrP001 ErrorCode = "P001" // expected punctuation
	ErrP002 ErrorCode = "P002" // expected a value
	ErrP003 ErrorCode = "P003" // expected a name
	ErrP004 ErrorCode = "P004" // expected an operator
	ErrP005 ErrorCode = "P005" // malformed number
	ErrP006 ErrorCode = "P006" // unexpected '}'
)

// Semantic errors
const (
	ErrS001 ErrorCode = "S001" // unknown name
	ErrS002 ErrorCode = "S002" // not a namespace
	ErrS003 ErrorCode = "S003" // bad condition
	ErrS004 ErrorCode = "S004" // bad arguments
	ErrS005 ErrorCode = "S005" // misplaced break/return
	ErrS006 ErrorCode = "S006" // unterminated scope
	ErrS007 ErrorCode = "S007" // not a value
	ErrS008 ErrorCode = "S008" // bad assignment
)

// Arithmetic and domain errors
const (
	ErrM001 ErrorCode = "M001" // no operator overload accepts the operands
	ErrM002 ErrorCode = "M002" // runtime failure inside an operator or function
)

// Host and runtime errors
const (
	ErrH001 ErrorCode = "H001" // host function reported failure
	ErrR001 ErrorCode = "R001" // evaluation cancelled
	ErrR002 ErrorCode = "R002" // loop limit exceeded
)

// DiagnosticError is an error at a position in the evaluated text.
type DiagnosticError struct {
	Code    ErrorCode
	Message string
	Pos     int
	Line    int
	// Context is the surrounding text with <*> marking Pos.
	Context string
}

// NewError builds an error for msg at pos in src, showing surround
// characters on either side of the error point.
func NewError(code ErrorCode, src string, pos, line, surround int, msg string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Message: msg,
		Pos:     clamp(pos, len(src)),
		Line:    line,
		Context: Surround(src, pos, surround),
	}
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s:\n%s  pos:%d  line: %d", e.Message, e.Context, e.Pos, e.Line)
}

// Surround renders src around pos as "...before<*>after...". The ellipses
// appear only where the window is cut short of the buffer boundary.
func Surround(src string, pos, surround int) string {
	pos = clamp(pos, len(src))
	before, after := pos-surround, pos+surround
	leading, trailing := true, true
	if before <= 0 {
		before, leading = 0, false
	}
	if after >= len(src) {
		after, trailing = len(src), false
	}

	var sb strings.Builder
	if before < pos {
		if leading {
			sb.WriteString("...")
		}
		sb.WriteString(src[before:pos])
	}
	sb.WriteString("<*>")
	if after > pos {
		sb.WriteString(src[pos:after])
		if trailing {
			sb.WriteString("...")
		}
	}
	return sb.String()
}

func clamp(pos, n int) int {
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}
