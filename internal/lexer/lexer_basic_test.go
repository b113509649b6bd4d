package lexer

import (
	"testing"

	"github.com/aerojs/aerojs/internal/token"
)

func TestNextTokenBasic(t *testing.T) {
	input := `var x = 5;
	x = x + 10;
	`

	tests := []struct {
		expectedLiteral string
		expectedType    token.Type
	}{
		{"var", token.VAR},
		{"x", token.IDENT},
		{"=", token.ASSIGN},
		{"5", token.NUMBER},
		{";", token.SEMICOLON},
		{"x", token.IDENT},
		{"=", token.ASSIGN},
		{"x", token.IDENT},
		{"+", token.PLUS},
		{"10", token.NUMBER},
		{";", token.SEMICOLON},
		{"", token.EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.Next()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `break case catch class const continue debugger default delete do else
		export extends finally for function if import in instanceof new return
		super switch this throw try typeof var void while with`

	l := New(input)
	for {
		tok := l.Next()
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.IDENT {
			t.Fatalf("keyword %q was tokenized as IDENT", tok.Literal)
		}
		if !tok.Type.IsKeyword() {
			t.Fatalf("keyword %q not classified as a reserved word, got %s", tok.Literal, tok.Type)
		}
	}
}

func TestContextualKeywordsLexAsIdentLike(t *testing.T) {
	// Contextual keywords classify to their own token type from the
	// lexer's point of view; only the parser decides whether that
	// position accepts the keyword meaning or a plain identifier.
	input := `async await of from as get set`
	want := []token.Type{token.ASYNC, token.AWAIT, token.OF, token.FROM, token.AS, token.GET, token.SET}

	l := New(input)
	for i, wt := range want {
		tok := l.Next()
		if tok.Type != wt {
			t.Fatalf("tests[%d]: expected %s, got %s", i, wt, tok.Type)
		}
		if !tok.Type.IsContextual() {
			t.Fatalf("tests[%d]: %s not classified as contextual", i, tok.Type)
		}
	}
}

func TestPunctuators(t *testing.T) {
	input := `{ } ( ) [ ] . ... ; , : ? ?. ?? => < > <= >= == != === !== + - * ) / % **
		++ -- << >> >>> & | ^ ~ ! && || = += -= *= ) /= %= **= <<= >>= >>>= &= |= ^= &&= ||= ??=`

	want := []token.Type{
		token.LBRACE, token.RBRACE, token.LPAREN, token.RPAREN, token.LBRACKET, token.RBRACKET,
		token.DOT, token.ELLIPSIS, token.SEMICOLON, token.COMMA, token.COLON, token.QUESTION,
		token.QUESTION_DOT, token.QUESTION_QUESTION, token.ARROW,
		token.LT, token.GT, token.LE, token.GE, token.EQ, token.NEQ, token.EQ_STRICT, token.NEQ_STRICT,
		token.PLUS, token.MINUS, token.STAR, token.RPAREN, token.SLASH, token.PERCENT, token.STAR_STAR,
		token.INC, token.DEC,
		token.SHL, token.SHR, token.USHR, token.AMP, token.PIPE, token.CARET, token.TILDE, token.BANG,
		token.AND_AND, token.OR_OR,
		token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.RPAREN, token.SLASH_ASSIGN,
		token.PERCENT_ASSIGN, token.STAR_STAR_ASSIGN, token.SHL_ASSIGN, token.SHR_ASSIGN, token.USHR_ASSIGN,
		token.AMP_ASSIGN, token.PIPE_ASSIGN, token.CARET_ASSIGN, token.AND_AND_ASSIGN, token.OR_OR_ASSIGN,
		token.QUESTION_QUESTION_ASSIGN,
	}

	l := New(input)
	for i, wt := range want {
		tok := l.Next()
		if tok.Type != wt {
			t.Fatalf("tests[%d]: expected %s, got %s (literal=%q)", i, wt, tok.Type, tok.Literal)
		}
	}
	if eof := l.Next(); eof.Type != token.EOF {
		t.Fatalf("expected EOF, got %s", eof.Type)
	}
}

func TestRegexVsDivisionDisambiguation(t *testing.T) {
	// After an identifier, '/' is division.
	l := New(`x / y`)
	want := []token.Type{token.IDENT, token.SLASH, token.IDENT, token.EOF}
	for i, wt := range want {
		if tok := l.Next(); tok.Type != wt {
			t.Fatalf("tests[%d]: expected %s, got %s", i, wt, tok.Type)
		}
	}

	// After '(', '/' begins a regex literal.
	l2 := New(`(/abc/g)`)
	want2 := []token.Type{token.LPAREN, token.REGEX, token.RPAREN, token.EOF}
	for i, wt := range want2 {
		if tok := l2.Next(); tok.Type != wt {
			t.Fatalf("tests2[%d]: expected %s, got %s", i, wt, tok.Type)
		}
	}
}
