package lexer

import (
	"testing"

	"github.com/aerojs/aerojs/internal/token"
)

func TestTemplateNoSubstitution(t *testing.T) {
	l := New("`hello world`")
	tok := l.Next()
	if tok.Type != token.TEMPLATE_NOSUB {
		t.Fatalf("expected TEMPLATE_NOSUB, got %s", tok.Type)
	}
	if tok.Value != "hello world" {
		t.Fatalf("expected cooked value %q, got %v", "hello world", tok.Value)
	}
}

func TestTemplateWithSubstitution(t *testing.T) {
	// `a${x}b` should lex as HEAD("a"), IDENT(x), TAIL("b"), with the
	// lexer's brace-depth stack resuming template mode at the matching '}'.
	l := New("`a${x}b`")

	head := l.Next()
	if head.Type != token.TEMPLATE_HEAD || head.Value != "a" {
		t.Fatalf("expected TEMPLATE_HEAD(\"a\"), got %s(%v)", head.Type, head.Value)
	}

	ident := l.Next()
	if ident.Type != token.IDENT || ident.Literal != "x" {
		t.Fatalf("expected IDENT(x), got %s(%q)", ident.Type, ident.Literal)
	}

	tail := l.Next()
	if tail.Type != token.TEMPLATE_TAIL || tail.Value != "b" {
		t.Fatalf("expected TEMPLATE_TAIL(\"b\"), got %s(%v)", tail.Type, tail.Value)
	}
}

func TestTemplateNestedBraceNotMistakenForClose(t *testing.T) {
	// The '}' that closes the object literal `{y:1}` must NOT be treated
	// as resuming the template, since it sits one level deeper than the
	// '${' that opened substitution mode.
	l := New("`a${ ({y:1}).y }b`")

	head := l.Next()
	if head.Type != token.TEMPLATE_HEAD {
		t.Fatalf("expected TEMPLATE_HEAD, got %s", head.Type)
	}

	var sawTail bool
	for i := 0; i < 20; i++ {
		tok := l.Next()
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.TEMPLATE_TAIL {
			sawTail = true
			if tok.Value != "b" {
				t.Fatalf("expected tail cooked value \"b\", got %v", tok.Value)
			}
			break
		}
	}
	if !sawTail {
		t.Fatalf("expected to reach a TEMPLATE_TAIL token")
	}
}

func TestUnterminatedTemplate(t *testing.T) {
	l := New("`abc")
	tok := l.Next()
	if !tok.HasFlag(token.FlagUnterminated) {
		t.Fatalf("expected FlagUnterminated on unterminated template")
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected a lex error for unterminated template")
	}
}
