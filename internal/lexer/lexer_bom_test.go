package lexer

import (
	"testing"

	"github.com/aerojs/aerojs/internal/token"
)

func TestBOMHandling(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectFirst token.Type
		expectLit   string
	}{
		{
			name:        "UTF-8 BOM followed by var",
			input:       "\xEF\xBB\xBFvar x = 5;",
			expectFirst: token.VAR,
			expectLit:   "var",
		},
		{
			name:        "UTF-8 BOM followed by comment then identifier",
			input:       "\xEF\xBB\xBF// comment\nvar x = 5;",
			expectFirst: token.VAR,
			expectLit:   "var",
		},
		{
			name:        "no BOM, no regression",
			input:       "var x = 5;",
			expectFirst: token.VAR,
			expectLit:   "var",
		},
		{
			name:        "empty source with just a BOM",
			input:       "\xEF\xBB\xBF",
			expectFirst: token.EOF,
			expectLit:   "",
		},
		{
			name:        "BOM followed by a number",
			input:       "\xEF\xBB\xBF42",
			expectFirst: token.NUMBER,
			expectLit:   "42",
		},
		{
			name:        "BOM followed by a string",
			input:       "\xEF\xBB\xBF\"hello\"",
			expectFirst: token.STRING,
			expectLit:   "\"hello\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			tok := l.Next()
			if tok.Type != tt.expectFirst {
				t.Errorf("expected first token type %s, got %s", tt.expectFirst, tok.Type)
			}
			if tok.Literal != tt.expectLit {
				t.Errorf("expected first token literal %q, got %q", tt.expectLit, tok.Literal)
			}
		})
	}
}
