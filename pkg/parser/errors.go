package parser

import (
	"fmt"

	"github.com/customfm/fmlint/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken       = "unexpected token %s, expected %s"
	ErrUnexpectedInput       = "unexpected %s"
	ErrUnterminatedString    = "unterminated string literal"
	ErrUnterminatedQuoted    = "unterminated quoted identifier"
	ErrUnterminatedComment   = "unterminated block comment"
	ErrUnterminatedTemplate  = "unterminated template tag %q"
	ErrUnexpectedCharacter   = "unexpected character %q"
	ErrExpectedExpression    = "expected expression, got %s"
	ErrExpectedStatement     = "expected SELECT or WITH, got %s"
	ErrExpectedTableOrSubqry = "expected table name or subquery, got %s"
)
