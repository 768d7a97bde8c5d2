// Package errors formats the single diagnostic line this compiler ever
// prints. There is no recovery and no warning path (spec §7): the first
// lexical, syntax, or semantic error aborts compilation, so one error
// type covers all three.
package errors

import (
	"fmt"

	"github.com/skx/subc/token"
)

// CompileError is a fatal compilation error tied to a source position.
type CompileError struct {
	Pos     token.Pos
	Message string
}

// New builds a CompileError at pos with the given formatted message.
func New(pos token.Pos, format string, args ...any) *CompileError {
	return &CompileError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Error renders exactly the wire format spec §7 requires:
// "Error at line L, col C: <message>".
func (e *CompileError) Error() string {
	return fmt.Sprintf("Error at line %d, col %d: %s", e.Pos.Line, e.Pos.Col, e.Message)
}
