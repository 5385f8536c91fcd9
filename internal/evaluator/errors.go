package evaluator

import (
	"errors"
	"fmt"

	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/lexer"
)

// errorAt builds a positioned error at m in the current buffer.
func (in *Interpreter) errorAt(m lexer.Mark, code diagnostics.ErrorCode, msg string) *diagnostics.DiagnosticError {
	return diagnostics.NewError(code, in.cur.Input(), m.Pos, m.Line, in.surround, msg)
}

// errorf builds a positioned error at the cursor.
func (in *Interpreter) errorf(code diagnostics.ErrorCode, format string, args ...any) *diagnostics.DiagnosticError {
	return in.errorAt(in.cur.Mark(), code, fmt.Sprintf(format, args...))
}

func (in *Interpreter) expected(ch byte) *diagnostics.DiagnosticError {
	return in.errorf(diagnostics.ErrP001, "Expected '%c'!", ch)
}

// lexical converts a lexer failure into a positioned error.
func (in *Interpreter) lexical(m lexer.Mark, err error) *diagnostics.DiagnosticError {
	code := diagnostics.ErrL001
	switch {
	case errors.Is(err, lexer.ErrMissingEnd):
		code = diagnostics.ErrL002
	case errors.Is(err, lexer.ErrUnexpectedEnd):
		code = diagnostics.ErrL003
	}
	return in.errorAt(m, code, err.Error())
}

// asDiagnostic returns err as a DiagnosticError, positioning plain errors
// at the cursor.
func asDiagnostic(err error, c *lexer.Cursor, surround int) *diagnostics.DiagnosticError {
	var de *diagnostics.DiagnosticError
	if errors.As(err, &de) {
		return de
	}
	return diagnostics.NewError(diagnostics.ErrH001, c.Input(), c.Pos(), c.Line(), surround, err.Error())
}
