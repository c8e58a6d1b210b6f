package pl0parser

import (
	"fmt"

	"github.com/reusee/plzero/pl0lexer"
)

// SyntaxError reports an unexpected token.
type SyntaxError struct {
	Token   pl0lexer.Token
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Token.Kind == pl0lexer.TokenEndProgram && e.Token.Text == "" {
		return fmt.Sprintf("line %d: %s, got end of input", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s, got %q", e.Line, e.Message, e.Token.Text)
}

type UndeclaredIdentifierError struct {
	Name string
	Line int
}

func (e *UndeclaredIdentifierError) Error() string {
	return fmt.Sprintf("line %d: undeclared identifier %s", e.Line, e.Name)
}
