// Package lexer turns an authorization model document into a stream of
// tokens for the parser.
package lexer

import "fmt"

// TokenType identifies the lexical category of a Token. The DSL has a small,
// closed set of keywords plus generic identifiers, so TokenType is a short
// enum rather than Conduit's general-purpose token set.
type TokenType int

const (
	// TOKEN_TYPE is the `type` keyword.
	TOKEN_TYPE TokenType = iota
	// TOKEN_RELATIONS is the `relations` keyword.
	TOKEN_RELATIONS
	// TOKEN_DEFINE is the `define` keyword.
	TOKEN_DEFINE
	// TOKEN_AS is the `as` keyword.
	TOKEN_AS
	// TOKEN_SELF is the `self` keyword.
	TOKEN_SELF
	// TOKEN_OR is the `or` keyword.
	TOKEN_OR
	// TOKEN_AND is the `and` keyword, reserved for future intersection support.
	TOKEN_AND
	// TOKEN_BUT is the `but` keyword, used in the `but not` exclusion combinator.
	TOKEN_BUT
	// TOKEN_NOT is the `not` keyword.
	TOKEN_NOT
	// TOKEN_FROM is the `from` keyword.
	TOKEN_FROM
	// TOKEN_TEXT is any identifier: a type name, relation name, or alias target.
	TOKEN_TEXT
	// TOKEN_EOF marks the end of input. The scanner returns it forever once reached.
	TOKEN_EOF
	// TOKEN_ILLEGAL marks a byte that cannot begin any valid token.
	TOKEN_ILLEGAL
)

// tokenTypeNames gives the String() representation for each TokenType.
var tokenTypeNames = map[TokenType]string{
	TOKEN_TYPE:      "TYPE",
	TOKEN_RELATIONS: "RELATIONS",
	TOKEN_DEFINE:    "DEFINE",
	TOKEN_AS:        "AS",
	TOKEN_SELF:      "SELF",
	TOKEN_OR:        "OR",
	TOKEN_AND:       "AND",
	TOKEN_BUT:       "BUT",
	TOKEN_NOT:       "NOT",
	TOKEN_FROM:      "FROM",
	TOKEN_TEXT:      "TEXT",
	TOKEN_EOF:       "EOF",
	TOKEN_ILLEGAL:   "ILLEGAL",
}

// String returns the token type's name, used in error messages and tests.
func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// keywords maps reserved words to their token type. Anything not found here
// is scanned as TOKEN_TEXT.
var keywords = map[string]TokenType{
	"type":      TOKEN_TYPE,
	"relations": TOKEN_RELATIONS,
	"define":    TOKEN_DEFINE,
	"as":        TOKEN_AS,
	"self":      TOKEN_SELF,
	"or":        TOKEN_OR,
	"and":       TOKEN_AND,
	"but":       TOKEN_BUT,
	"not":       TOKEN_NOT,
	"from":      TOKEN_FROM,
}

// Token is a single lexical unit: its type, the literal text it was scanned
// from, and its position in the source for error reporting.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String renders the token for debugging and test failure messages.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}
