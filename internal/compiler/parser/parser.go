package parser

import (
	"github.com/openfga-dslc/openfga-dslc/internal/compiler/ast"
	"github.com/openfga-dslc/openfga-dslc/internal/compiler/lexer"
)

// Parser consumes a pre-scanned token slice and produces a Document via
// recursive descent with two-token lookahead (curr/peek).
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a Parser over the given tokens. tokens must end with a
// TOKEN_EOF, as returned by lexer.Lexer.ScanTokens.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// Parse parses the entire token stream into a Document. It returns the
// first syntax error encountered, if any; there is no error recovery.
func (p *Parser) Parse() (*ast.Document, error) {
	return p.parseDocument()
}

func (p *Parser) parseDocument() (*ast.Document, error) {
	var types []*ast.Type

	for p.curr().Type != lexer.TOKEN_EOF {
		if p.curr().Type != lexer.TOKEN_TYPE {
			return nil, errUnexpectedToken(lexer.TOKEN_TYPE, p.curr().Type, p.curr())
		}

		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		types = append(types, ty)
		p.advance()
	}

	return &ast.Document{Types: types}, nil
}

func (p *Parser) parseType() (*ast.Type, error) {
	if err := p.expectPeek(lexer.TOKEN_TEXT); err != nil {
		return nil, err
	}
	loc := tokenLocation(p.curr())
	kind := p.curr().Literal

	var relations []*ast.Relation

	if p.peek().Type != lexer.TOKEN_EOF && p.peek().Type != lexer.TOKEN_TYPE {
		if err := p.expectPeek(lexer.TOKEN_RELATIONS); err != nil {
			return nil, err
		}

		for p.peek().Type == lexer.TOKEN_DEFINE {
			p.advance()
			rel, err := p.parseRelation()
			if err != nil {
				return nil, err
			}
			relations = append(relations, rel)
		}
	}

	return &ast.Type{Kind: kind, Relations: relations, Loc: loc}, nil
}

func (p *Parser) parseRelation() (*ast.Relation, error) {
	if err := p.expectPeek(lexer.TOKEN_TEXT); err != nil {
		return nil, err
	}
	loc := tokenLocation(p.curr())
	kind := p.curr().Literal

	p.advance()
	if p.curr().Type != lexer.TOKEN_AS {
		// A relation with no `as` clause has no aliases; this mirrors a
		// permissive corner of the grammar rather than a hard error.
		return &ast.Relation{Kind: kind, Loc: loc}, nil
	}

	p.advance()
	first, err := p.parseAlias()
	if err != nil {
		return nil, err
	}
	aliases := []*ast.Alias{first}

	for p.peek().Type == lexer.TOKEN_OR || p.peek().Type == lexer.TOKEN_BUT {
		var alias *ast.Alias
		if p.peek().Type == lexer.TOKEN_BUT {
			p.advance()
			alias, err = p.parseButNot()
		} else {
			p.advance()
			p.advance()
			alias, err = p.parseAlias()
		}
		if err != nil {
			return nil, err
		}
		aliases = append(aliases, alias)
	}

	return &ast.Relation{Kind: kind, Aliases: aliases, Loc: loc}, nil
}

func (p *Parser) parseAlias() (*ast.Alias, error) {
	loc := tokenLocation(p.curr())

	var kind ast.AliasKind
	var name string
	switch p.curr().Type {
	case lexer.TOKEN_SELF:
		kind = ast.AliasThis
	case lexer.TOKEN_TEXT:
		kind = ast.AliasNamed
		name = p.curr().Literal
	case lexer.TOKEN_EOF:
		return nil, errUnexpectedEOF(p.curr())
	default:
		return nil, errUnexpectedKeyword(p.curr().Type, p.curr())
	}

	parent, err := p.parseAliasParent()
	if err != nil {
		return nil, err
	}

	return &ast.Alias{Kind: kind, Name: name, Parent: parent, Loc: loc}, nil
}

func (p *Parser) parseButNot() (*ast.Alias, error) {
	loc := tokenLocation(p.curr())

	if err := p.expectPeek(lexer.TOKEN_NOT); err != nil {
		return nil, err
	}
	if err := p.expectPeek(lexer.TOKEN_TEXT); err != nil {
		return nil, err
	}
	name := p.curr().Literal

	parent, err := p.parseAliasParent()
	if err != nil {
		return nil, err
	}

	return &ast.Alias{Kind: ast.AliasNegative, Name: name, Parent: parent, Loc: loc}, nil
}

func (p *Parser) parseAliasParent() (*string, error) {
	if p.peek().Type != lexer.TOKEN_FROM {
		return nil, nil
	}

	p.advance()
	if err := p.expectPeek(lexer.TOKEN_TEXT); err != nil {
		return nil, err
	}
	parent := p.curr().Literal
	return &parent, nil
}

// curr returns the current lookahead-0 token.
func (p *Parser) curr() lexer.Token {
	return p.tokens[p.clamp(p.pos)]
}

// peek returns the lookahead-1 token without consuming it.
func (p *Parser) peek() lexer.Token {
	return p.tokens[p.clamp(p.pos+1)]
}

// advance moves the current position forward by one token.
func (p *Parser) advance() {
	p.pos = p.clamp(p.pos + 1)
}

// expectPeek advances past the lookahead-1 token if it matches expected,
// or returns an UnexpectedToken error otherwise.
func (p *Parser) expectPeek(expected lexer.TokenType) error {
	if p.peek().Type == expected {
		p.advance()
		return nil
	}
	return errUnexpectedToken(expected, p.peek().Type, p.peek())
}

// clamp keeps an index within bounds of the token slice, which always ends
// in a single TOKEN_EOF; reading past the end keeps returning that EOF.
func (p *Parser) clamp(idx int) int {
	if idx >= len(p.tokens) {
		return len(p.tokens) - 1
	}
	return idx
}

func tokenLocation(tok lexer.Token) ast.SourceLocation {
	return ast.SourceLocation{Line: tok.Line, Column: tok.Column}
}
