package parser

import "github.com/ali01/graphd/internal/query/ast"

// Error is the parser's sole error type, matching SPEC_FULL 4.1's
// "Fails with ParseError(message, span)".
type Error struct {
	Message string
	Span    ast.Span
}

func (e *Error) Error() string { return e.Message }
