package lexer

import "testing"

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func checkTypes(t *testing.T, tokens []Token, expected []TokenType) {
	t.Helper()

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d (%v)", len(expected), len(tokens), tokenTypes(tokens))
	}

	for i, tok := range tokens {
		if tok.Type != expected[i] {
			t.Errorf("token %d: expected %s, got %s", i, expected[i], tok.Type)
		}
	}
}

func TestParseType(t *testing.T) {
	tokens := New("type document").ScanTokens()
	checkTypes(t, tokens, []TokenType{TOKEN_TYPE, TOKEN_TEXT, TOKEN_EOF})

	if tokens[1].Literal != "document" {
		t.Errorf("expected literal %q, got %q", "document", tokens[1].Literal)
	}
}

func TestParseTypeNewline(t *testing.T) {
	tokens := New("type document\ntype org").ScanTokens()
	checkTypes(t, tokens, []TokenType{
		TOKEN_TYPE, TOKEN_TEXT,
		TOKEN_TYPE, TOKEN_TEXT,
		TOKEN_EOF,
	})
}

func TestFull(t *testing.T) {
	src := "type document\n  relations\n    define parent as self or thing or other_thing from parent"
	tokens := New(src).ScanTokens()

	checkTypes(t, tokens, []TokenType{
		TOKEN_TYPE, TOKEN_TEXT,
		TOKEN_RELATIONS,
		TOKEN_DEFINE, TOKEN_TEXT, TOKEN_AS, TOKEN_SELF,
		TOKEN_OR, TOKEN_TEXT,
		TOKEN_OR, TOKEN_TEXT,
		TOKEN_FROM, TOKEN_TEXT,
		TOKEN_EOF,
	})

	wantLiterals := []string{"", "document", "", "", "parent", "", "", "", "thing", "", "other_thing", "", "parent", ""}
	for i, want := range wantLiterals {
		if want == "" {
			continue
		}
		if tokens[i].Literal != want {
			t.Errorf("token %d: expected literal %q, got %q", i, want, tokens[i].Literal)
		}
	}
}

func TestButNotKeywords(t *testing.T) {
	tokens := New("define write as self but not owner from parent").ScanTokens()
	checkTypes(t, tokens, []TokenType{
		TOKEN_DEFINE, TOKEN_TEXT, TOKEN_AS, TOKEN_SELF,
		TOKEN_BUT, TOKEN_NOT, TOKEN_TEXT,
		TOKEN_FROM, TOKEN_TEXT,
		TOKEN_EOF,
	})
}

func TestIdentifierWithUnderscoreAndHyphen(t *testing.T) {
	tokens := New("repo_admin repo-admin").ScanTokens()
	checkTypes(t, tokens, []TokenType{TOKEN_TEXT, TOKEN_TEXT, TOKEN_EOF})

	if tokens[0].Literal != "repo_admin" {
		t.Errorf("expected %q, got %q", "repo_admin", tokens[0].Literal)
	}
	if tokens[1].Literal != "repo-admin" {
		t.Errorf("expected %q, got %q", "repo-admin", tokens[1].Literal)
	}
}

func TestIdentifierWithLeadingDigitOrHyphen(t *testing.T) {
	tokens := New("0af-doc_owner -parent").ScanTokens()
	checkTypes(t, tokens, []TokenType{TOKEN_TEXT, TOKEN_TEXT, TOKEN_EOF})

	if tokens[0].Literal != "0af-doc_owner" {
		t.Errorf("expected %q, got %q", "0af-doc_owner", tokens[0].Literal)
	}
	if tokens[1].Literal != "-parent" {
		t.Errorf("expected %q, got %q", "-parent", tokens[1].Literal)
	}
}

func TestIllegalCharacter(t *testing.T) {
	tokens := New("type $ document").ScanTokens()
	checkTypes(t, tokens, []TokenType{TOKEN_TYPE, TOKEN_ILLEGAL, TOKEN_TEXT, TOKEN_EOF})

	if tokens[1].Literal != "$" {
		t.Errorf("expected illegal literal %q, got %q", "$", tokens[1].Literal)
	}
}

func TestEOFRepeatsAtEndOfStream(t *testing.T) {
	lex := New("type")
	tokens := lex.ScanTokens()
	last := tokens[len(tokens)-1]
	if last.Type != TOKEN_EOF {
		t.Fatalf("expected final token to be EOF, got %s", last.Type)
	}

	// Pulling a further token directly from the lexer after ScanTokens has
	// already consumed the source must keep returning EOF rather than panic.
	again := lex.nextToken()
	if again.Type != TOKEN_EOF {
		t.Errorf("expected EOF after end of stream, got %s", again.Type)
	}
}

func TestEmptyDocument(t *testing.T) {
	tokens := New("").ScanTokens()
	checkTypes(t, tokens, []TokenType{TOKEN_EOF})
}

func TestWhitespaceOnly(t *testing.T) {
	tokens := New("   \n\t\n  ").ScanTokens()
	checkTypes(t, tokens, []TokenType{TOKEN_EOF})
}
