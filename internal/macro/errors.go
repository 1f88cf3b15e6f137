package macro

import (
	"errors"
	"fmt"
	"go/token"
)

// Sentinel errors for malformed call sites. Expansion errors wrap one of these.
var (
	ErrNoArguments         = errors.New("call has no arguments")
	ErrTooManyArguments    = errors.New("call takes at most 3 arguments")
	ErrVariadicCall        = errors.New("call cannot spread a slice with ...")
	ErrNotExpression       = errors.New("first argument is a type, not an expression")
	ErrNotCalled           = errors.New("marker function must be called directly")
	ErrDotImport           = errors.New("marker package cannot be dot-imported")
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

// Error is an expansion error tied to a source position.
type Error struct {
	Pos   token.Position
	Cause error
}

func newError(fset *token.FileSet, pos token.Pos, cause error) *Error {
	var p token.Position
	if fset != nil && pos.IsValid() {
		p = fset.Position(pos)
	}
	return &Error{Pos: p, Cause: cause}
}

// Position returns where the error occurred.
func (e *Error) Position() token.Position { return e.Pos }

func (e *Error) Error() string {
	if !e.Pos.IsValid() {
		return e.Cause.Error()
	}
	if e.Pos.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %v", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Cause)
	}
	return fmt.Sprintf("%d:%d: %v", e.Pos.Line, e.Pos.Column, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
