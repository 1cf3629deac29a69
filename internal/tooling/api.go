// Package tooling provides a programmatic API for IDE integration via the
// language server. It exposes the scanner and parser in a thread-safe,
// document-oriented form suitable for diagnostics-on-edit.
package tooling

import (
	"sync"

	"github.com/openfga-dslc/openfga-dslc/internal/compiler/ast"
	"github.com/openfga-dslc/openfga-dslc/internal/compiler/lexer"
	"github.com/openfga-dslc/openfga-dslc/internal/compiler/parser"
)

// API provides thread-safe access to the compiler for IDE integration. It
// tracks one Document per open URI and re-parses on every update.
type API struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// Document is a cached, parsed .fga source file.
type Document struct {
	URI        string
	Content    string
	Version    int
	AST        *ast.Document
	ParseError *parser.ParserError
}

// Position is a zero-based LSP position.
type Position struct {
	Line      int
	Character int
}

// Range is a zero-based LSP range.
type Range struct {
	Start Position
	End   Position
}

// Diagnostic is a single reported problem in a document.
type Diagnostic struct {
	Range    Range
	Severity DiagnosticSeverity
	Code     string
	Source   string
	Message  string
}

// DiagnosticSeverity indicates the severity of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticSeverityError DiagnosticSeverity = iota
	DiagnosticSeverityWarning
	DiagnosticSeverityInfo
	DiagnosticSeverityHint
)

// NewAPI creates an empty tooling API.
func NewAPI() *API {
	return &API{documents: make(map[string]*Document)}
}

// ParseFile parses content and caches it under uri as version 0.
func (a *API) ParseFile(uriStr, content string) (*Document, error) {
	return a.UpdateDocument(uriStr, content, 0)
}

// UpdateDocument re-parses content and replaces the cached Document for uri.
func (a *API) UpdateDocument(uriStr, content string, version int) (*Document, error) {
	tokens := lexer.New(content).ScanTokens()
	doc, err := parser.New(tokens).Parse()

	cached := &Document{
		URI:     uriStr,
		Content: content,
		Version: version,
	}

	if err != nil {
		if perr, ok := err.(*parser.ParserError); ok {
			cached.ParseError = perr
		}
	} else {
		cached.AST = doc
	}

	a.mu.Lock()
	a.documents[uriStr] = cached
	a.mu.Unlock()

	return cached, err
}

// CloseDocument evicts the cached Document for uri.
func (a *API) CloseDocument(uriStr string) {
	a.mu.Lock()
	delete(a.documents, uriStr)
	a.mu.Unlock()
}

// GetDiagnostics returns the diagnostics for the cached document at uri. The
// grammar reports at most one syntax error per parse, so this returns at
// most one diagnostic.
func (a *API) GetDiagnostics(uriStr string) []Diagnostic {
	a.mu.RLock()
	doc, ok := a.documents[uriStr]
	a.mu.RUnlock()

	if !ok || doc.ParseError == nil {
		return nil
	}

	perr := doc.ParseError
	line := perr.Token.Line - 1
	if line < 0 {
		line = 0
	}
	col := perr.Token.Column - 1
	if col < 0 {
		col = 0
	}

	return []Diagnostic{{
		Range: Range{
			Start: Position{Line: line, Character: col},
			End:   Position{Line: line, Character: col + len(perr.Token.Literal)},
		},
		Severity: DiagnosticSeverityError,
		Code:     "syntax-error",
		Source:   "fgac",
		Message:  perr.Error(),
	}}
}
