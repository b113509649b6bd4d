package lexer

import (
	"testing"

	"github.com/aerojs/aerojs/internal/token"
)

func TestIdentifiers(t *testing.T) {
	tests := []string{"x", "_private", "$jquery", "camelCase", "π", "naïve", "变量"}
	for _, ident := range tests {
		t.Run(ident, func(t *testing.T) {
			l := New(ident)
			tok := l.Next()
			if tok.Type != token.IDENT {
				t.Fatalf("expected IDENT, got %s", tok.Type)
			}
			if tok.Literal != ident {
				t.Fatalf("expected literal %q, got %q", ident, tok.Literal)
			}
		})
	}
}

func TestUnicodeEscapedIdentifier(t *testing.T) {
	// abc decodes to "abc".
	l := New("\\u0061\\u0062\\u0063")
	tok := l.Next()
	if tok.Type != token.IDENT {
		t.Fatalf("expected IDENT, got %s", tok.Type)
	}
	if tok.Value != "abc" {
		t.Fatalf("expected decoded name \"abc\", got %v", tok.Value)
	}
	if !tok.HasFlag(token.FlagEscaped) {
		t.Fatalf("expected FlagEscaped to be set")
	}
}

func TestEscapedKeywordClassifiesAsKeywordType(t *testing.T) {
	// var decodes to "var". The lexer classifies by decoded name
	// and marks the token with FlagEscaped; it does not reject it.
	l := New("\\u0076ar x")
	tok := l.Next()
	if tok.Type != token.VAR {
		t.Fatalf("expected VAR, got %s", tok.Type)
	}
	if !tok.HasFlag(token.FlagEscaped) {
		t.Fatalf("expected FlagEscaped to be set on escaped keyword spelling")
	}
}

func TestBraceUnicodeEscape(t *testing.T) {
	l := New("\\u{48}i")
	tok := l.Next()
	if tok.Value != "Hi" {
		t.Fatalf("expected decoded name \"Hi\", got %v", tok.Value)
	}
}
