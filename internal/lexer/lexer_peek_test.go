package lexer

import (
	"fmt"
	"testing"

	"github.com/aerojs/aerojs/internal/token"
)

func TestPeekToken(t *testing.T) {
	l := New("var x = 5;")

	tok := l.Peek(0)
	if tok.Type != token.VAR || tok.Literal != "var" {
		t.Fatalf("Peek(0) expected VAR(var), got %s(%s)", tok.Type, tok.Literal)
	}

	tok2 := l.Peek(0)
	if tok2.Type != token.VAR {
		t.Fatalf("Peek(0) second call expected VAR, got %s", tok2.Type)
	}

	tok3 := l.Peek(1)
	if tok3.Type != token.IDENT || tok3.Literal != "x" {
		t.Fatalf("Peek(1) expected IDENT(x), got %s(%s)", tok3.Type, tok3.Literal)
	}

	if tok4 := l.Peek(0); tok4.Type != token.VAR {
		t.Fatalf("Peek(0) after Peek(1) expected VAR, got %s", tok4.Type)
	}

	consumed := l.Next()
	if consumed.Type != token.VAR {
		t.Fatalf("Next() expected VAR, got %s", consumed.Type)
	}

	if tok5 := l.Peek(0); tok5.Type != token.IDENT {
		t.Fatalf("Peek(0) after Next() expected IDENT, got %s", tok5.Type)
	}
}

func TestPeekMultipleTokens(t *testing.T) {
	l := New("var x = 5;")

	tests := []struct {
		lit  string
		n    int
		typ  token.Type
	}{
		{"var", 0, token.VAR},
		{"x", 1, token.IDENT},
		{"=", 2, token.ASSIGN},
		{"5", 3, token.NUMBER},
		{";", 4, token.SEMICOLON},
		{"", 5, token.EOF},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("Peek(%d)", tt.n), func(t *testing.T) {
			tok := l.Peek(tt.n)
			if tok.Type != tt.typ {
				t.Errorf("Peek(%d) type: expected %s, got %s", tt.n, tt.typ, tok.Type)
			}
			if tok.Literal != tt.lit {
				t.Errorf("Peek(%d) literal: expected %q, got %q", tt.n, tt.lit, tok.Literal)
			}
		})
	}

	if tok := l.Next(); tok.Type != token.VAR {
		t.Errorf("after all Peeks, Next() expected VAR, got %s", tok.Type)
	}
}

func TestSaveRestoreState(t *testing.T) {
	l := New("a => b")

	saved := l.SaveState()
	first := l.Next()
	if first.Literal != "a" {
		t.Fatalf("expected 'a', got %q", first.Literal)
	}
	second := l.Next()
	if second.Type != token.ARROW {
		t.Fatalf("expected ARROW, got %s", second.Type)
	}

	l.RestoreState(saved)
	replay := l.Next()
	if replay.Literal != "a" {
		t.Fatalf("after restore expected 'a' again, got %q", replay.Literal)
	}
}

func TestSaveRestorePreservesRegexContext(t *testing.T) {
	// Speculatively scan past an identifier (which forbids a following
	// '/' from starting a regex), then rewind: the regex-context decision
	// for the rewound position must also be restored, not left stuck in
	// the "division" state.
	l := New("x/y/")
	l.Next() // x
	saved := l.SaveState()
	l.Next() // '/'
	l.RestoreState(saved)
	tok := l.Next()
	if tok.Type != token.SLASH {
		t.Fatalf("expected SLASH after restoring identifier context, got %s", tok.Type)
	}
}
