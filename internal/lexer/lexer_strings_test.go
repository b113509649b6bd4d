package lexer

import (
	"testing"

	"github.com/aerojs/aerojs/internal/token"
)

func TestStringLiteralEscapes(t *testing.T) {
	tests := []struct {
		input   string
		literal string
		decoded string
	}{
		{`'hello'`, `'hello'`, "hello"},
		{`"hello"`, `"hello"`, "hello"},
		{`'a\nb'`, `'a\nb'`, "a\nb"},
		{`'a\tb'`, `'a\tb'`, "a\tb"},
		{`'\x41'`, `'\x41'`, "A"},
		{`'A'`, `'A'`, "A"},
		{`'\u{1F600}'`, `'\u{1F600}'`, "\U0001F600"},
		{`'it\'s'`, `'it\'s'`, "it's"},
		{`"she said \"hi\""`, `"she said \"hi\""`, `she said "hi"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			tok := l.Next()
			if tok.Type != token.STRING {
				t.Fatalf("expected STRING, got %s", tok.Type)
			}
			if tok.Literal != tt.literal {
				t.Fatalf("literal mismatch: expected %q, got %q", tt.literal, tok.Literal)
			}
			if tok.Value != tt.decoded {
				t.Fatalf("decoded mismatch: expected %q, got %q", tt.decoded, tok.Value)
			}
			if len(l.Errors()) != 0 {
				t.Fatalf("unexpected lex errors: %v", l.Errors())
			}
		})
	}
}

func TestStringLineContinuation(t *testing.T) {
	l := New("'a\\\nb'")
	tok := l.Next()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Value != "ab" {
		t.Fatalf("expected line continuation to elide the newline, got %q", tok.Value)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New("'abc")
	tok := l.Next()
	if !tok.HasFlag(token.FlagUnterminated) {
		t.Fatalf("expected FlagUnterminated on unterminated string")
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected a lex error for unterminated string")
	}
}

func TestLegacyOctalStringEscape(t *testing.T) {
	l := New(`'\101'`)
	tok := l.Next()
	if tok.Value != "A" {
		t.Fatalf("expected octal escape \\101 to decode to 'A', got %q", tok.Value)
	}
	if !tok.HasFlag(token.FlagOctalEscape) {
		t.Fatalf("expected FlagOctalEscape to be set")
	}
}
