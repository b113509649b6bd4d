package lexer

import (
	"testing"

	"github.com/aerojs/aerojs/internal/token"
)

func TestPrecededByNewlineFlag(t *testing.T) {
	l := New("a\nb")
	first := l.Next()
	if first.HasFlag(token.FlagPrecededByNewline) {
		t.Fatalf("first token should not report a preceding newline")
	}
	second := l.Next()
	if !second.HasFlag(token.FlagPrecededByNewline) {
		t.Fatalf("second token should report a preceding newline for ASI")
	}
}

func TestTriviaLenCoversCommentsAndWhitespace(t *testing.T) {
	l := New("a   /* c */  b")
	l.Next() // a
	tok := l.Next()
	if tok.TriviaLen != len("   /* c */  ") {
		t.Fatalf("expected TriviaLen %d, got %d", len("   /* c */  "), tok.TriviaLen)
	}
}

func TestPositionOfRecomputesLineColumn(t *testing.T) {
	src := "line one\nline two\nline three"
	pos := token.PositionOf(src, len("line one\nline "))
	if pos.Line != 2 {
		t.Fatalf("expected line 2, got %d", pos.Line)
	}
	if pos.Column != 6 {
		t.Fatalf("expected column 6, got %d", pos.Column)
	}
}

func TestUnterminatedBlockCommentReportsError(t *testing.T) {
	l := New("a /* never closed")
	l.Next() // a
	tok := l.Next()
	if tok.Type != token.EOF {
		t.Fatalf("expected EOF after an unterminated comment, got %s", tok.Type)
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected a lex error for the unterminated comment")
	}
}

func TestLineSeparatorCountsAsLineTerminator(t *testing.T) {
	l := New("a b")
	l.Next() // a
	tok := l.Next()
	if !tok.HasFlag(token.FlagPrecededByNewline) {
		t.Fatalf("U+2028 LINE SEPARATOR must count as a line terminator for ASI")
	}
}
