// Package parser implements a recursive-descent, Pratt-style parser that
// turns a lexer.Lexer token stream into an internal/ast.Program, per
// spec §4.2. The curToken/peekToken cursor follows the teacher's
// internal/parser (Pratt parsing over lexer.Token), with prefix and infix
// forms dispatched by switch statements rather than parse-function
// tables, adapted from DWScript's keyword-
// heavy grammar to ECMAScript's punctuator-heavy one; panic-mode
// recovery (synchronize to a statement boundary) is the same idea as
// the teacher's synchronize(), narrowed to the sync set ECMAScript
// needs.
package parser

import (
	"fmt"

	"github.com/aerojs/aerojs/internal/ast"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/lexer"
	"github.com/aerojs/aerojs/internal/token"
)

// Precedence levels, lowest to highest, per §4.2's operator table.
const (
	_ int = iota
	LOWEST
	COMMA_PREC
	ASSIGN_PREC
	CONDITIONAL
	NULLISH
	LOGICAL_OR
	LOGICAL_AND
	BITWISE_OR
	BITWISE_XOR
	BITWISE_AND
	EQUALITY
	RELATIONAL
	SHIFT
	ADDITIVE
	MULTIPLICATIVE
	EXPONENT
	UNARY
	POSTFIX
	CALL_PREC
	MEMBER_PREC
)

var precedences = map[token.Type]int{
	token.COMMA:                    COMMA_PREC,
	token.ASSIGN:                   ASSIGN_PREC,
	token.PLUS_ASSIGN:              ASSIGN_PREC,
	token.MINUS_ASSIGN:             ASSIGN_PREC,
	token.STAR_ASSIGN:              ASSIGN_PREC,
	token.SLASH_ASSIGN:             ASSIGN_PREC,
	token.PERCENT_ASSIGN:           ASSIGN_PREC,
	token.STAR_STAR_ASSIGN:         ASSIGN_PREC,
	token.SHL_ASSIGN:               ASSIGN_PREC,
	token.SHR_ASSIGN:               ASSIGN_PREC,
	token.USHR_ASSIGN:              ASSIGN_PREC,
	token.AMP_ASSIGN:               ASSIGN_PREC,
	token.PIPE_ASSIGN:              ASSIGN_PREC,
	token.CARET_ASSIGN:             ASSIGN_PREC,
	token.AND_AND_ASSIGN:           ASSIGN_PREC,
	token.OR_OR_ASSIGN:             ASSIGN_PREC,
	token.QUESTION_QUESTION_ASSIGN: ASSIGN_PREC,
	token.QUESTION:                 CONDITIONAL,
	token.QUESTION_QUESTION:        NULLISH,
	token.OR_OR:                    LOGICAL_OR,
	token.AND_AND:                  LOGICAL_AND,
	token.PIPE:                     BITWISE_OR,
	token.CARET:                    BITWISE_XOR,
	token.AMP:                      BITWISE_AND,
	token.EQ:                       EQUALITY,
	token.NEQ:                      EQUALITY,
	token.EQ_STRICT:                EQUALITY,
	token.NEQ_STRICT:               EQUALITY,
	token.LT:                       RELATIONAL,
	token.GT:                       RELATIONAL,
	token.LE:                       RELATIONAL,
	token.GE:                       RELATIONAL,
	token.INSTANCEOF:               RELATIONAL,
	token.IN:                       RELATIONAL,
	token.SHL:                      SHIFT,
	token.SHR:                      SHIFT,
	token.USHR:                     SHIFT,
	token.PLUS:                     ADDITIVE,
	token.MINUS:                    ADDITIVE,
	token.STAR:                     MULTIPLICATIVE,
	token.SLASH:                    MULTIPLICATIVE,
	token.PERCENT:                  MULTIPLICATIVE,
	token.STAR_STAR:                EXPONENT,
	token.LPAREN:                   CALL_PREC,
	token.LBRACKET:                 MEMBER_PREC,
	token.DOT:                      MEMBER_PREC,
	token.QUESTION_DOT:             MEMBER_PREC,
	token.INC:                     POSTFIX,
	token.DEC:                     POSTFIX,
}

func precedenceOf(t token.Type) int {
	if p, ok := precedences[t]; ok {
		return p
	}
	return LOWEST
}

var assignOps = map[token.Type]bool{
	token.ASSIGN: true, token.PLUS_ASSIGN: true, token.MINUS_ASSIGN: true,
	token.STAR_ASSIGN: true, token.SLASH_ASSIGN: true, token.PERCENT_ASSIGN: true,
	token.STAR_STAR_ASSIGN: true, token.SHL_ASSIGN: true, token.SHR_ASSIGN: true,
	token.USHR_ASSIGN: true, token.AMP_ASSIGN: true, token.PIPE_ASSIGN: true,
	token.CARET_ASSIGN: true, token.AND_AND_ASSIGN: true, token.OR_OR_ASSIGN: true,
	token.QUESTION_QUESTION_ASSIGN: true,
}

// Parser turns a token stream into an *ast.Program.
type Parser struct {
	l      *lexer.Lexer
	source string

	cur  token.Token
	peek token.Token

	errors   []*diag.ParseError
	inLoop   int
	inSwitch int
	inFunc   int
	strict   bool
}

// New creates a Parser over source.
func New(source string) *Parser {
	p := &Parser{l: lexer.New(source), source: source}
	p.advance()
	p.advance()
	return p
}

// Errors returns the accumulated parse errors; lexical errors are
// available separately via the underlying lexer.
func (p *Parser) Errors() []*diag.ParseError { return p.errors }

// LexErrors returns lexical errors accumulated while scanning.
func (p *Parser) LexErrors() []*diag.LexError { return p.l.Errors() }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.Next()
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

// expect ensures the token t is the one the cursor is now resting on,
// advancing past a matching peek if needed. Several constructs (empty
// parameter/argument lists, trailing commas) already leave cur sitting
// on the closing token by the time expect is called, so a cur match is
// accepted without consuming anything further.
func (p *Parser) expect(t token.Type) bool {
	if p.curIs(t) {
		return true
	}
	if p.peekIs(t) {
		p.advance()
		return true
	}
	p.errorf(p.peek.Span, diag.CodeExpectedToken, fmt.Sprintf(diag.MsgExpectedToken, t.String(), p.peek.Type.String()))
	return false
}

func (p *Parser) errorf(span token.Span, code, msg string) {
	pos := token.PositionOf(p.source, span.Offset)
	p.errors = append(p.errors, diag.NewParseError(code, pos, msg, ""))
}

// Parse runs a full parse and returns the program plus accumulated
// parse (and, via LexErrors, lexical) diagnostics.
func Parse(source string) (*ast.Program, []*diag.ParseError) {
	p := New(source)
	prog := p.ParseProgram()
	return prog, p.errors
}

// ParseProgram parses the entire token stream as a Program.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.cur.Span
	var body []ast.Statement
	for !p.curIs(token.EOF) {
		errsBefore := len(p.errors)
		stmt := p.parseStatement()
		if len(p.errors) > errsBefore {
			p.synchronize()
		}
		if stmt != nil {
			body = append(body, stmt)
		}
		p.advance()
	}
	end := p.cur.Span
	span := token.Span{Offset: start.Offset, Length: end.Offset - start.Offset}
	return ast.NewProgram(span, body, false, p.strict)
}

// synchronize discards tokens until a likely statement boundary, for
// panic-mode recovery after a parse error.
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) {
			return
		}
		switch p.peek.Type {
		case token.VAR, token.LET, token.CONST, token.FUNCTION, token.CLASS,
			token.IF, token.FOR, token.WHILE, token.DO, token.RETURN,
			token.TRY, token.THROW, token.SWITCH, token.BREAK, token.CONTINUE,
			token.RBRACE:
			return
		}
		p.advance()
	}
}

func span(start, end token.Span) token.Span {
	return token.Span{Offset: start.Offset, Length: end.End() - start.Offset}
}
