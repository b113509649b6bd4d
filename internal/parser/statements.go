package parser

import (
	"fmt"

	"github.com/aerojs/aerojs/internal/ast"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/token"
)

// parseStatement dispatches on the current token to one of the
// Statement productions, leaving cur on the statement's last token
// (its closing ';', '}', or otherwise final token) so the caller's
// loop can advance cleanly onto the next statement.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.VAR, token.LET, token.CONST:
		return p.parseVariableStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	case token.CLASS:
		return p.parseClassDeclaration()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.WITH:
		return p.parseWithStatement()
	case token.SEMICOLON:
		return &ast.EmptyStatement{}
	case token.DEBUGGER:
		p.consumeSemicolon()
		return &ast.DebuggerStatement{}
	case token.IDENT:
		if p.peekIs(token.COLON) {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// consumeSemicolon implements ASI: an explicit ';' is consumed, but its
// absence is only an error when neither a newline, '}', nor EOF could
// have inserted one implicitly.
func (p *Parser) consumeSemicolon() {
	if p.peekIs(token.SEMICOLON) {
		p.advance()
		return
	}
	if p.peekIs(token.RBRACE) || p.peekIs(token.EOF) {
		return
	}
	if p.peek.HasFlag(token.FlagPrecededByNewline) {
		return
	}
	p.errorf(p.peek.Span, diag.CodeExpectedToken, fmt.Sprintf(diag.MsgExpectedToken, token.SEMICOLON.String(), p.peek.Type.String()))
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	p.advance() // consume '{'
	var body []ast.Statement
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
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
	return &ast.BlockStatement{Body: body}
}

func (p *Parser) parseVariableStatement() ast.Statement {
	decl := p.parseVariableDeclaration()
	p.consumeSemicolon()
	return decl
}

// parseVariableDeclaration parses `var|let|const decl, decl, ...` with
// cur positioned on the var/let/const keyword, leaving cur on the last
// token of the final declarator.
func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	kind := ast.VarVar
	switch p.cur.Type {
	case token.LET:
		kind = ast.VarLet
	case token.CONST:
		kind = ast.VarConst
	}
	var decls []ast.VariableDeclarator
	for {
		p.advance()
		target := p.parseBindingTarget()
		var init ast.Expression
		if p.peekIs(token.ASSIGN) {
			p.advance()
			p.advance()
			init = p.parseAssignExpr()
		}
		decls = append(decls, ast.VariableDeclarator{ID: target, Init: init})
		if p.peekIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return &ast.VariableDeclaration{Kind: kind, Declarations: decls}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	expr := p.parseExpression(LOWEST)
	p.consumeSemicolon()
	return &ast.ExpressionStatement{Expression: expr}
}

func (p *Parser) parseIfStatement() ast.Statement {
	p.advance() // consume 'if'
	p.expect(token.LPAREN)
	p.advance()
	test := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	p.advance()
	cons := p.parseStatement()
	var alt ast.Statement
	if p.peekIs(token.ELSE) {
		p.advance()
		p.advance()
		alt = p.parseStatement()
	}
	return &ast.IfStatement{Test: test, Consequent: cons, Alternate: alt}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	p.advance() // consume 'while'
	p.expect(token.LPAREN)
	p.advance()
	test := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	p.advance()
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	return &ast.WhileStatement{Test: test, Body: body}
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	p.advance() // consume 'do'
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	p.advance()
	test := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	// A do-while's trailing semicolon is always subject to ASI, even
	// without a preceding newline.
	if p.peekIs(token.SEMICOLON) {
		p.advance()
	}
	return &ast.DoWhileStatement{Body: body, Test: test}
}

// parseForStatement handles the three `for` forms: classic C-style,
// for-in, and for-of, disambiguating after the opening clause.
func (p *Parser) parseForStatement() ast.Statement {
	p.advance() // consume 'for'
	p.expect(token.LPAREN)
	p.advance() // cur: first token inside the parens, or ';'

	if p.curIs(token.VAR) || p.curIs(token.LET) || p.curIs(token.CONST) {
		kindTok := p.cur.Type
		p.advance() // cur: first token of the binding target
		target := p.parseBindingTarget()
		if p.peekIs(token.IN) || p.peekIs(token.OF) {
			isOf := p.peek.Type == token.OF
			p.advance()
			p.advance()
			right := p.parseAssignExpr()
			p.expect(token.RPAREN)
			p.advance()
			p.inLoop++
			body := p.parseStatement()
			p.inLoop--
			decl := &ast.VariableDeclaration{Kind: varKindOf(kindTok), Declarations: []ast.VariableDeclarator{{ID: target}}}
			return &ast.ForInStatement{Left: decl, Right: right, Body: body, Of: isOf}
		}
		// Classic for: finish this declarator (and any siblings), then
		// fall through to the shared test/update/body parsing.
		var decls []ast.VariableDeclarator
		var firstInit ast.Expression
		if p.peekIs(token.ASSIGN) {
			p.advance()
			p.advance()
			firstInit = p.parseAssignExpr()
		}
		decls = append(decls, ast.VariableDeclarator{ID: target, Init: firstInit})
		for p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
			t2 := p.parseBindingTarget()
			var i2 ast.Expression
			if p.peekIs(token.ASSIGN) {
				p.advance()
				p.advance()
				i2 = p.parseAssignExpr()
			}
			decls = append(decls, ast.VariableDeclarator{ID: t2, Init: i2})
		}
		decl := &ast.VariableDeclaration{Kind: varKindOf(kindTok), Declarations: decls}
		return p.finishClassicFor(decl)
	}

	if p.curIs(token.SEMICOLON) {
		return p.finishClassicFor(nil)
	}

	// A bare expression (possibly a pattern reinterpreted for for-in/of).
	lhs := p.parseExpression(RELATIONAL)
	if p.peekIs(token.IN) || p.peekIs(token.OF) {
		isOf := p.peek.Type == token.OF
		p.advance()
		p.advance()
		right := p.parseAssignExpr()
		p.expect(token.RPAREN)
		p.advance()
		p.inLoop++
		body := p.parseStatement()
		p.inLoop--
		return &ast.ForInStatement{Left: lhs, Right: right, Body: body, Of: isOf}
	}
	// lhs might continue as a full expression (e.g. comma-joined) before
	// the loop's leading semicolon.
	full := lhs
	if p.peekIs(token.COMMA) {
		full = p.continueSequence(lhs)
	}
	return p.finishClassicForExpr(full)
}

func (p *Parser) continueSequence(left ast.Expression) ast.Expression {
	exprs := []ast.Expression{left}
	for p.peekIs(token.COMMA) {
		p.advance()
		p.advance()
		exprs = append(exprs, p.parseAssignExpr())
	}
	return &ast.SequenceExpression{Expressions: exprs}
}

func varKindOf(t token.Type) ast.VarKind {
	switch t {
	case token.LET:
		return ast.VarLet
	case token.CONST:
		return ast.VarConst
	default:
		return ast.VarVar
	}
}

// finishClassicFor parses `; test ; update ) body` with cur sitting on
// the first ';' (classic for with a declaration init, or none).
func (p *Parser) finishClassicFor(init *ast.VariableDeclaration) ast.Statement {
	p.expect(token.SEMICOLON)
	var test ast.Expression
	if !p.peekIs(token.SEMICOLON) {
		p.advance()
		test = p.parseExpression(LOWEST)
	}
	p.expect(token.SEMICOLON)
	var update ast.Expression
	if !p.peekIs(token.RPAREN) {
		p.advance()
		update = p.parseExpression(LOWEST)
	}
	p.expect(token.RPAREN)
	p.advance()
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	var initNode ast.Node
	if init != nil {
		initNode = init
	}
	return &ast.ForStatement{Init: initNode, Test: test, Update: update, Body: body}
}

// finishClassicForExpr is finishClassicFor's counterpart when the
// initializer is a bare expression rather than a declaration.
func (p *Parser) finishClassicForExpr(init ast.Expression) ast.Statement {
	p.expect(token.SEMICOLON)
	var test ast.Expression
	if !p.peekIs(token.SEMICOLON) {
		p.advance()
		test = p.parseExpression(LOWEST)
	}
	p.expect(token.SEMICOLON)
	var update ast.Expression
	if !p.peekIs(token.RPAREN) {
		p.advance()
		update = p.parseExpression(LOWEST)
	}
	p.expect(token.RPAREN)
	p.advance()
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	var initNode ast.Node
	if init != nil {
		initNode = init
	}
	return &ast.ForStatement{Init: initNode, Test: test, Update: update, Body: body}
}

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	p.advance() // consume 'function'
	fn := p.parseFunctionValue(true, false)
	return &ast.FunctionDeclaration{Fn: fn}
}

func (p *Parser) parseClassDeclaration() ast.Statement {
	cls := p.parseClassValue()
	return &ast.ClassDeclaration{Class: cls}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	var arg ast.Expression
	if !p.peekIs(token.SEMICOLON) && !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) &&
		!p.peek.HasFlag(token.FlagPrecededByNewline) {
		p.advance()
		arg = p.parseExpression(LOWEST)
	}
	p.consumeSemicolon()
	return &ast.ReturnStatement{Argument: arg}
}

func (p *Parser) parseThrowStatement() ast.Statement {
	if p.peek.HasFlag(token.FlagPrecededByNewline) {
		p.errorf(p.peek.Span, diag.CodeUnexpectedToken, "illegal newline after throw")
	}
	p.advance()
	arg := p.parseExpression(LOWEST)
	p.consumeSemicolon()
	return &ast.ThrowStatement{Argument: arg}
}

func (p *Parser) parseTryStatement() ast.Statement {
	p.advance() // consume 'try'
	p.expect(token.LBRACE)
	block := p.parseBlockStatement()
	var handler *ast.CatchClause
	var finally *ast.BlockStatement
	if p.peekIs(token.CATCH) {
		p.advance()
		var param ast.Pattern
		if p.peekIs(token.LPAREN) {
			p.advance()
			p.advance()
			param = p.parseBindingTarget()
			p.expect(token.RPAREN)
		}
		p.expect(token.LBRACE)
		body := p.parseBlockStatement()
		handler = &ast.CatchClause{Param: param, Body: body}
	}
	if p.peekIs(token.FINALLY) {
		p.advance()
		p.expect(token.LBRACE)
		finally = p.parseBlockStatement()
	}
	return &ast.TryStatement{Block: block, Handler: handler, Finally: finally}
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	p.advance() // consume 'switch'
	p.expect(token.LPAREN)
	p.advance()
	disc := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	p.advance()
	p.inSwitch++
	var cases []ast.SwitchCase
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		var test ast.Expression
		if p.curIs(token.CASE) {
			p.advance()
			test = p.parseExpression(LOWEST)
			p.expect(token.COLON)
		} else if p.curIs(token.DEFAULT) {
			p.expect(token.COLON)
		} else {
			p.errorf(p.cur.Span, diag.CodeExpectedToken, "expected 'case' or 'default'")
			p.advance()
			continue
		}
		var body []ast.Statement
		for !p.curIs(token.CASE) && !p.curIs(token.DEFAULT) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			p.advance()
			if p.curIs(token.CASE) || p.curIs(token.DEFAULT) || p.curIs(token.RBRACE) {
				break
			}
			stmt := p.parseStatement()
			if stmt != nil {
				body = append(body, stmt)
			}
		}
		cases = append(cases, ast.SwitchCase{Test: test, Consequent: body})
	}
	p.inSwitch--
	return &ast.SwitchStatement{Discriminant: disc, Cases: cases}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	var label *ast.Identifier
	if p.peekIs(token.IDENT) && !p.peek.HasFlag(token.FlagPrecededByNewline) {
		p.advance()
		label = ast.NewIdentifier(p.cur.Span, p.cur.Literal)
	} else if p.inLoop == 0 && p.inSwitch == 0 {
		p.errorf(p.cur.Span, diag.CodeIllegalBreak, "illegal break statement")
	}
	p.consumeSemicolon()
	return &ast.BreakStatement{Label: label}
}

func (p *Parser) parseContinueStatement() ast.Statement {
	var label *ast.Identifier
	if p.peekIs(token.IDENT) && !p.peek.HasFlag(token.FlagPrecededByNewline) {
		p.advance()
		label = ast.NewIdentifier(p.cur.Span, p.cur.Literal)
	} else if p.inLoop == 0 {
		p.errorf(p.cur.Span, diag.CodeIllegalContinue, "illegal continue statement")
	}
	p.consumeSemicolon()
	return &ast.ContinueStatement{Label: label}
}

func (p *Parser) parseWithStatement() ast.Statement {
	p.advance() // consume 'with'
	p.expect(token.LPAREN)
	p.advance()
	obj := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	p.advance()
	body := p.parseStatement()
	return &ast.WithStatement{Object: obj, Body: body}
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	label := ast.NewIdentifier(p.cur.Span, p.cur.Literal)
	p.advance() // consume ':'
	p.advance()
	body := p.parseStatement()
	return &ast.LabeledStatement{Label: label, Body: body}
}
