package lexer

import (
	"testing"

	"github.com/aerojs/aerojs/internal/token"
)

func TestRegexLiteral(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"/abc/", "/abc/"},
		{"/abc/gi", "/abc/gi"},
		{`/a\/b/`, `/a\/b/`},
		{"/[/]/", "/[/]/"}, // '/' inside a character class does not terminate the literal
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			tok := l.Next()
			if tok.Type != token.REGEX {
				t.Fatalf("expected REGEX, got %s", tok.Type)
			}
			if tok.Literal != tt.literal {
				t.Fatalf("literal mismatch: expected %q, got %q", tt.literal, tok.Literal)
			}
			if len(l.Errors()) != 0 {
				t.Fatalf("unexpected lex errors: %v", l.Errors())
			}
		})
	}
}

func TestUnterminatedRegex(t *testing.T) {
	l := New("/abc")
	tok := l.Next()
	if !tok.HasFlag(token.FlagUnterminated) {
		t.Fatalf("expected FlagUnterminated on unterminated regex")
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected a lex error for unterminated regex")
	}
}
