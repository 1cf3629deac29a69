// Package parser implements a hand-written recursive-descent parser that
// turns a token stream into an authorization model Document.
//
// The grammar is small and unambiguous enough that panic-mode error
// recovery buys nothing: the parser reports the first syntax error it
// encounters and stops. Callers that want a best-effort diagnostic list
// (the language server, for instance) re-run the parser after the caller
// has fixed the reported location, rather than receiving a batch of
// possibly-cascading errors from a single pass.
package parser

import (
	"fmt"

	"github.com/openfga-dslc/openfga-dslc/internal/compiler/lexer"
)

// ErrorKind identifies which of the three syntax error shapes a ParserError
// represents. It is a closed variant: every ParserError is exactly one of
// these.
type ErrorKind int

const (
	// ErrUnexpectedToken means the parser required a specific token type at
	// this position and found a different one.
	ErrUnexpectedToken ErrorKind = iota
	// ErrUnexpectedKeyword means the parser required either `self` or an
	// identifier and instead found a reserved word.
	ErrUnexpectedKeyword
	// ErrUnexpectedEOF means the input ended while the parser still
	// expected more tokens.
	ErrUnexpectedEOF
)

// ParserError is the single error type the parser can return. Distinct
// syntax problems produce distinct ErrorKind values rather than separate
// Go error types, mirroring the closed error enum the grammar was designed
// around.
type ParserError struct {
	Kind     ErrorKind
	Expected lexer.TokenType // meaningful only when Kind == ErrUnexpectedToken
	Actual   lexer.TokenType // meaningful when Kind is ErrUnexpectedToken or ErrUnexpectedKeyword
	Token    lexer.Token     // the offending token, for position reporting
}

// Error implements the error interface.
func (e *ParserError) Error() string {
	switch e.Kind {
	case ErrUnexpectedToken:
		return fmt.Sprintf("%d:%d: unexpected token: expected %s, got %s",
			e.Token.Line, e.Token.Column, e.Expected, e.Actual)
	case ErrUnexpectedKeyword:
		return fmt.Sprintf("%d:%d: unexpected keyword: %s", e.Token.Line, e.Token.Column, e.Actual)
	case ErrUnexpectedEOF:
		return fmt.Sprintf("%d:%d: received an unexpected EOF", e.Token.Line, e.Token.Column)
	default:
		return "unknown parser error"
	}
}

func errUnexpectedToken(expected, actual lexer.TokenType, tok lexer.Token) *ParserError {
	return &ParserError{Kind: ErrUnexpectedToken, Expected: expected, Actual: actual, Token: tok}
}

func errUnexpectedKeyword(actual lexer.TokenType, tok lexer.Token) *ParserError {
	return &ParserError{Kind: ErrUnexpectedKeyword, Actual: actual, Token: tok}
}

func errUnexpectedEOF(tok lexer.Token) *ParserError {
	return &ParserError{Kind: ErrUnexpectedEOF, Token: tok}
}
