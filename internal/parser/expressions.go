package parser

import (
	"fmt"

	"github.com/aerojs/aerojs/internal/ast"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/token"
)

// parseExpression is the Pratt-parsing core: it loops consuming infix
// operators whose precedence is strictly greater than precMin. Callers
// restrict which operators are visible by choosing precMin — LOWEST
// admits the comma operator, parseAssignExpr's threshold excludes it.
func (p *Parser) parseExpression(precMin int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for precMin < precedenceOf(p.peek.Type) {
		op := p.peek.Type
		switch {
		case op == token.COMMA:
			left = p.parseSequence(left)
		case assignOps[op]:
			left = p.parseAssignment(left)
		case op == token.QUESTION:
			left = p.parseConditional(left)
		case op == token.LPAREN:
			left = p.parseCall(left)
		case op == token.LBRACKET:
			left = p.parseIndex(left)
		case op == token.DOT || op == token.QUESTION_DOT:
			left = p.parseMember(left)
		case op == token.AND_AND || op == token.OR_OR || op == token.QUESTION_QUESTION:
			left = p.parseLogical(left)
		case op == token.INC || op == token.DEC:
			left = p.parsePostfixUpdate(left)
		default:
			left = p.parseBinary(left)
		}
		if left == nil {
			return nil
		}
	}
	return left
}

// parseAssignExpr parses one AssignmentExpression-level expression: an
// assignment, conditional, or anything lower, but never a bare comma.
func (p *Parser) parseAssignExpr() ast.Expression {
	return p.parseExpression(COMMA_PREC)
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.cur.Type {
	case token.IDENT, token.ASYNC, token.OF, token.FROM, token.AS, token.GET, token.SET, token.STATIC, token.YIELD, token.AWAIT:
		return p.parseIdentifierOrArrow()
	case token.NUMBER:
		return p.parseNumberLiteral()
	case token.BIGINT:
		return p.parseBigIntLiteral()
	case token.STRING:
		return p.parseStringLiteral()
	case token.TRUE, token.FALSE:
		return p.parseBooleanLiteral()
	case token.NULL_LIT:
		return &ast.NullLiteral{}
	case token.THIS:
		return &ast.ThisExpression{}
	case token.SUPER:
		return &ast.SuperExpression{}
	case token.REGEX:
		return p.parseRegexLiteral()
	case token.TEMPLATE_NOSUB, token.TEMPLATE_HEAD:
		return p.parseTemplateLiteral()
	case token.LPAREN:
		return p.parseParenOrArrow()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.FUNCTION:
		return p.parseFunctionExpression()
	case token.CLASS:
		return p.parseClassExpression()
	case token.NEW:
		return p.parseNew()
	case token.BANG, token.MINUS, token.PLUS, token.TILDE, token.TYPEOF, token.DELETE, token.VOID:
		return p.parseUnary()
	case token.INC, token.DEC:
		return p.parsePrefixUpdate()
	default:
		p.errorf(p.cur.Span, diag.CodeUnexpectedToken, fmt.Sprintf(diag.MsgUnexpectedToken, p.cur.Type.String()))
		return nil
	}
}

func (p *Parser) parseIdentifierOrArrow() ast.Expression {
	name := p.cur.Literal
	startSpan := p.cur.Span
	if p.peekIs(token.ARROW) {
		id := ast.NewIdentifier(startSpan, name)
		p.advance() // consume =>
		return p.finishArrow([]ast.Pattern{id}, startSpan, false)
	}
	if name == "async" && p.peekIs(token.LPAREN) {
		// tentatively an async arrow function; fall back to a plain
		// identifier reference if it doesn't pan out.
		save := p.l.SaveState()
		savedCur, savedPeek := p.cur, p.peek
		p.advance() // cur == '('
		p.advance() // cur == first token past '('
		if fn := p.tryParseArrowFromParen(startSpan, true); fn != nil {
			return fn
		}
		p.l.RestoreState(save)
		p.cur, p.peek = savedCur, savedPeek
	}
	return ast.NewIdentifier(startSpan, name)
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	v, _ := p.cur.Value.(float64)
	return &ast.NumberLiteral{Value: v}
}

func (p *Parser) parseBigIntLiteral() ast.Expression {
	digits, ok := p.cur.Value.(string)
	if !ok {
		digits = p.cur.Literal
	}
	return &ast.BigIntLiteral{Digits: digits, Radix: 10}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	v, ok := p.cur.Value.(string)
	if !ok {
		v = p.cur.Literal
	}
	return &ast.StringLiteral{Value: v}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Value: p.cur.Type == token.TRUE}
}

func (p *Parser) parseRegexLiteral() ast.Expression {
	pattern, flags := p.cur.Literal, ""
	if v, ok := p.cur.Value.([2]string); ok {
		pattern, flags = v[0], v[1]
	}
	return &ast.RegexLiteral{Pattern: pattern, Flags: flags}
}

func (p *Parser) parseTemplateLiteral() ast.Expression {
	var quasis []ast.TemplateElement
	var exprs []ast.Expression

	addQuasi := func(tail bool) {
		cooked, ok := p.cur.Value.(string)
		quasis = append(quasis, ast.TemplateElement{Raw: p.cur.Literal, Cooked: cooked, CookedOK: ok, Tail: tail})
	}

	if p.curIs(token.TEMPLATE_NOSUB) {
		addQuasi(true)
		return &ast.TemplateLiteral{Quasis: quasis, Expressions: exprs}
	}

	addQuasi(false) // TEMPLATE_HEAD
	for {
		p.advance() // move onto the embedded expression's first token
		exprs = append(exprs, p.parseAssignExpr())
		if p.peekIs(token.TEMPLATE_TAIL) {
			p.advance()
			addQuasi(true)
			break
		}
		if !p.expect(token.TEMPLATE_MIDDLE) {
			break
		}
		addQuasi(false)
	}
	return &ast.TemplateLiteral{Quasis: quasis, Expressions: exprs}
}

func (p *Parser) parseParenOrArrow() ast.Expression {
	startSpan := p.cur.Span
	save := p.l.SaveState()
	savedCur, savedPeek := p.cur, p.peek
	errsBefore := len(p.errors)
	p.advance() // consume '('
	if fn := p.tryParseArrowFromParen(startSpan, false); fn != nil {
		return fn
	}
	p.l.RestoreState(save)
	p.cur, p.peek = savedCur, savedPeek
	p.errors = p.errors[:errsBefore]
	p.advance() // consume '(' for real this time
	inner := p.parseExpression(LOWEST)
	if !p.expect(token.RPAREN) {
		return inner
	}
	return inner
}

// tryParseArrowFromParen attempts to parse `(params) => body` with cur
// positioned just past the opening '('. Returns nil (without consuming
// anything durable, since callers restore lexer state on failure) if
// the parameter list doesn't resolve into an arrow function.
func (p *Parser) tryParseArrowFromParen(startSpan token.Span, isAsync bool) ast.Expression {
	var params []ast.Pattern
	if !p.curIs(token.RPAREN) {
		for {
			pat := p.parseBindingTarget()
			if pat == nil {
				return nil
			}
			if p.peekIs(token.ASSIGN) {
				p.advance()
				p.advance()
				def := p.parseAssignExpr()
				pat = &ast.AssignmentPattern{Left: pat, Right: def}
			}
			params = append(params, pat)
			if p.peekIs(token.COMMA) {
				p.advance()
				p.advance()
				continue
			}
			break
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
	}
	if !p.peekIs(token.ARROW) {
		return nil
	}
	p.advance() // now cur == '=>'
	return p.finishArrow(params, startSpan, isAsync)
}

func (p *Parser) finishArrow(params []ast.Pattern, startSpan token.Span, isAsync bool) ast.Expression {
	p.advance() // move past '=>' onto the body's first token
	var body ast.Node
	if p.curIs(token.LBRACE) {
		body = p.parseBlockStatement()
	} else {
		body = p.parseAssignExpr()
	}
	fn := &ast.Function{Params: params, Body: body, Arrow: true, Async: isAsync, IsStrict: p.strict}
	return &ast.ArrowFunctionExpression{Fn: fn}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	var elems []ast.Expression
	p.advance() // consume '['
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			elems = append(elems, nil)
			p.advance()
			continue
		}
		var el ast.Expression
		if p.curIs(token.ELLIPSIS) {
			p.advance()
			arg := p.parseAssignExpr()
			el = &ast.SpreadElement{Argument: arg}
		} else {
			el = p.parseAssignExpr()
		}
		elems = append(elems, el)
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACKET)
	return &ast.ArrayLiteral{Elements: elems}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	var props []ast.ObjectProperty
	p.advance() // consume '{'
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.ELLIPSIS) {
			p.advance()
			arg := p.parseAssignExpr()
			props = append(props, ast.ObjectProperty{Kind: ast.PropSpread, Key: arg})
		} else {
			props = append(props, p.parseObjectProperty())
		}
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return &ast.ObjectLiteral{Properties: props}
}

func (p *Parser) parseObjectProperty() ast.ObjectProperty {
	kind := ast.PropInit
	if (p.curIs(token.GET) || p.curIs(token.SET)) && !p.peekIs(token.COLON) && !p.peekIs(token.COMMA) && !p.peekIs(token.RBRACE) && !p.peekIs(token.LPAREN) {
		if p.curIs(token.GET) {
			kind = ast.PropGet
		} else {
			kind = ast.PropSet
		}
		p.advance()
	}

	computed := false
	var key ast.Expression
	switch {
	case p.curIs(token.LBRACKET):
		computed = true
		p.advance()
		key = p.parseAssignExpr()
		p.expect(token.RBRACKET)
	case p.curIs(token.STRING):
		key = p.parseStringLiteral()
	case p.curIs(token.NUMBER):
		key = p.parseNumberLiteral()
	default:
		key = ast.NewIdentifier(p.cur.Span, p.cur.Literal)
	}

	if p.peekIs(token.LPAREN) {
		p.advance()
		fn := p.parseFunctionValue(false, false)
		if kind == ast.PropInit {
			kind = ast.PropMethod
		}
		return ast.ObjectProperty{Kind: kind, Key: key, Computed: computed, Value: &ast.FunctionExpression{Fn: fn}}
	}

	if p.peekIs(token.COLON) {
		p.advance()
		p.advance()
		val := p.parseAssignExpr()
		return ast.ObjectProperty{Kind: ast.PropInit, Key: key, Computed: computed, Value: val}
	}

	// Shorthand { x } or { x = default } (the latter only valid when
	// reinterpreted as an object pattern; kept here as an
	// AssignmentPattern value so pattern conversion can recover it).
	id, _ := key.(*ast.Identifier)
	var val ast.Expression = id
	if p.peekIs(token.ASSIGN) {
		p.advance()
		p.advance()
		def := p.parseAssignExpr()
		val = &ast.AssignmentExpression{Operator: token.ASSIGN, Left: id, Right: def}
	}
	return ast.ObjectProperty{Kind: ast.PropInit, Key: key, Computed: computed, Shorthand: true, Value: val}
}

func (p *Parser) parseFunctionExpression() ast.Expression {
	p.advance() // consume 'function'
	fn := p.parseFunctionValue(true, false)
	return &ast.FunctionExpression{Fn: fn}
}

// parseFunctionValue parses the remainder of a function after the
// `function` keyword (and optional name) has been consumed by the
// caller up to (but not including) the parameter list's '('. When
// namedOK is true an optional identifier name is read first.
func (p *Parser) parseFunctionValue(namedOK, generator bool) *ast.Function {
	var id *ast.Identifier
	if p.curIs(token.STAR) {
		generator = true
		p.advance()
	}
	if namedOK && (p.curIs(token.IDENT) || p.cur.Type.IsContextual()) {
		id = ast.NewIdentifier(p.cur.Span, p.cur.Literal)
		p.advance()
	}
	if !p.curIs(token.LPAREN) {
		p.expect(token.LPAREN)
	}
	params := p.parseParamList()
	p.expect(token.LBRACE)
	body := p.parseBlockStatement()
	return &ast.Function{ID: id, Params: params, Body: body, Generator: generator, IsStrict: p.strict}
}

func (p *Parser) parseParamList() []ast.Pattern {
	var params []ast.Pattern
	for !p.peekIs(token.RPAREN) {
		p.advance()
		if p.curIs(token.ELLIPSIS) {
			p.advance()
			target := p.parseBindingTarget()
			params = append(params, &ast.RestElement{Argument: target})
			break
		}
		pat := p.parseBindingTarget()
		if p.peekIs(token.ASSIGN) {
			p.advance()
			p.advance()
			def := p.parseAssignExpr()
			pat = &ast.AssignmentPattern{Left: pat, Right: def}
		}
		params = append(params, pat)
		if p.peekIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return params
}

// parseBindingTarget parses a single binding form (identifier, array
// pattern, or object pattern) with cur positioned at its first token.
func (p *Parser) parseBindingTarget() ast.Pattern {
	switch p.cur.Type {
	case token.LBRACKET:
		return p.parseArrayPattern()
	case token.LBRACE:
		return p.parseObjectPattern()
	default:
		return ast.NewIdentifier(p.cur.Span, p.cur.Literal)
	}
}

func (p *Parser) parseArrayPattern() ast.Pattern {
	var elems []ast.Pattern
	p.advance() // consume '['
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			elems = append(elems, nil)
			p.advance()
			continue
		}
		if p.curIs(token.ELLIPSIS) {
			p.advance()
			elems = append(elems, &ast.RestElement{Argument: p.parseBindingTarget()})
			break
		}
		el := p.parseBindingTarget()
		if p.peekIs(token.ASSIGN) {
			p.advance()
			p.advance()
			el = &ast.AssignmentPattern{Left: el, Right: p.parseAssignExpr()}
		}
		elems = append(elems, el)
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACKET)
	return &ast.ArrayPattern{Elements: elems}
}

func (p *Parser) parseObjectPattern() ast.Pattern {
	var props []ast.ObjectPatternProperty
	p.advance() // consume '{'
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.ELLIPSIS) {
			p.advance()
			props = append(props, ast.ObjectPatternProperty{Value: &ast.RestElement{Argument: p.parseBindingTarget()}})
			break
		}
		var key ast.Expression
		computed := false
		if p.curIs(token.LBRACKET) {
			computed = true
			p.advance()
			key = p.parseAssignExpr()
			p.expect(token.RBRACKET)
		} else if p.curIs(token.STRING) {
			key = p.parseStringLiteral()
		} else {
			key = ast.NewIdentifier(p.cur.Span, p.cur.Literal)
		}
		var val ast.Pattern
		if p.peekIs(token.COLON) {
			p.advance()
			p.advance()
			val = p.parseBindingTarget()
		} else if id, ok := key.(*ast.Identifier); ok {
			val = id
		}
		if p.peekIs(token.ASSIGN) {
			p.advance()
			p.advance()
			val = &ast.AssignmentPattern{Left: val, Right: p.parseAssignExpr()}
		}
		props = append(props, ast.ObjectPatternProperty{Key: key, Computed: computed, Value: val})
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return &ast.ObjectPattern{Properties: props}
}

func (p *Parser) parseClassExpression() ast.Expression {
	cls := p.parseClassValue()
	return &ast.ClassExpression{Class: cls}
}

func (p *Parser) parseClassValue() *ast.Class {
	p.advance() // consume 'class'
	var id *ast.Identifier
	if p.curIs(token.IDENT) {
		id = ast.NewIdentifier(p.cur.Span, p.cur.Literal)
		p.advance()
	}
	var super ast.Expression
	if p.curIs(token.EXTENDS) {
		p.advance()
		super = p.parseExpression(CALL_PREC)
		p.advance()
	}
	p.expect(token.LBRACE)
	p.advance()
	var members []ast.ClassMember
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) {
			p.advance()
			continue
		}
		members = append(members, p.parseClassMember())
		p.advance()
	}
	return &ast.Class{ID: id, SuperClass: super, Body: &ast.ClassBody{Members: members}}
}

func (p *Parser) parseClassMember() ast.ClassMember {
	static := false
	if p.curIs(token.STATIC) && !p.peekIs(token.LPAREN) && !p.peekIs(token.ASSIGN) {
		static = true
		p.advance()
	}
	kind := ast.MethodKind
	if (p.curIs(token.GET) || p.curIs(token.SET)) && !p.peekIs(token.LPAREN) && !p.peekIs(token.ASSIGN) && !p.peekIs(token.SEMICOLON) {
		if p.curIs(token.GET) {
			kind = ast.GetterKind
		} else {
			kind = ast.SetterKind
		}
		p.advance()
	}
	generator := false
	if p.curIs(token.STAR) {
		generator = true
		p.advance()
	}
	computed := false
	var key ast.Expression
	if p.curIs(token.LBRACKET) {
		computed = true
		p.advance()
		key = p.parseAssignExpr()
		p.expect(token.RBRACKET)
	} else if p.curIs(token.STRING) {
		key = p.parseStringLiteral()
	} else if p.curIs(token.NUMBER) {
		key = p.parseNumberLiteral()
	} else {
		key = ast.NewIdentifier(p.cur.Span, p.cur.Literal)
	}

	if p.peekIs(token.LPAREN) {
		p.advance()
		fn := p.parseFunctionValue(false, generator)
		return ast.ClassMember{Kind: kind, Key: key, Computed: computed, Static: static, Value: fn}
	}

	// Field declaration, with an optional initializer.
	var init ast.Expression
	if p.peekIs(token.ASSIGN) {
		p.advance()
		p.advance()
		init = p.parseAssignExpr()
	}
	if p.peekIs(token.SEMICOLON) {
		p.advance()
	}
	return ast.ClassMember{Kind: ast.FieldKind, Key: key, Computed: computed, Static: static, Value: init}
}

func (p *Parser) parseNew() ast.Expression {
	p.advance() // consume 'new'
	if p.curIs(token.NEW) {
		// nested `new new Foo()` callee
		inner := p.parseNew()
		return inner
	}
	// CALL_PREC admits member access (DOT/LBRACKET, at MEMBER_PREC) into
	// the callee but stops short of consuming the call's own '(' args,
	// since those belong to this `new`, not to the callee expression.
	callee := p.parseExpression(CALL_PREC)
	var args []ast.Expression
	if p.peekIs(token.LPAREN) {
		p.advance()
		p.advance()
		args = p.parseArgumentList()
	}
	return &ast.NewExpression{Callee: callee, Arguments: args}
}

func (p *Parser) parseUnary() ast.Expression {
	op := p.cur.Type
	p.advance()
	arg := p.parseExpression(UNARY)
	return &ast.UnaryExpression{Operator: op, Argument: arg, Prefix: true}
}

func (p *Parser) parsePrefixUpdate() ast.Expression {
	op := p.cur.Type
	p.advance()
	arg := p.parseExpression(UNARY)
	return &ast.UpdateExpression{Operator: op, Argument: arg, Prefix: true}
}

func (p *Parser) parsePostfixUpdate(left ast.Expression) ast.Expression {
	op := p.peek.Type
	if p.peek.HasFlag(token.FlagPrecededByNewline) {
		return left // ASI: no line terminator allowed before postfix ++/--
	}
	p.advance()
	return &ast.UpdateExpression{Operator: op, Argument: left, Prefix: false}
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	op := p.peek.Type
	prec := precedenceOf(op)
	p.advance()
	p.advance()
	rightPrec := prec
	if op == token.STAR_STAR {
		rightPrec = prec - 1
	}
	right := p.parseExpression(rightPrec)
	return &ast.BinaryExpression{Operator: op, Left: left, Right: right}
}

func (p *Parser) parseLogical(left ast.Expression) ast.Expression {
	op := p.peek.Type
	prec := precedenceOf(op)
	p.advance()
	p.advance()
	right := p.parseExpression(prec)
	return &ast.LogicalExpression{Operator: op, Left: left, Right: right}
}

func (p *Parser) parseSequence(left ast.Expression) ast.Expression {
	exprs := []ast.Expression{left}
	for p.peekIs(token.COMMA) {
		p.advance()
		p.advance()
		exprs = append(exprs, p.parseAssignExpr())
	}
	return &ast.SequenceExpression{Expressions: exprs}
}

func (p *Parser) parseAssignment(left ast.Expression) ast.Expression {
	op := p.peek.Type
	p.advance()
	p.advance()
	right := p.parseExpression(ASSIGN_PREC - 1)
	return &ast.AssignmentExpression{Operator: op, Left: left, Right: right}
}

func (p *Parser) parseConditional(left ast.Expression) ast.Expression {
	p.advance() // consume '?'
	p.advance()
	cons := p.parseAssignExpr()
	if !p.expect(token.COLON) {
		return &ast.ConditionalExpression{Test: left, Consequent: cons, Alternate: cons}
	}
	p.advance()
	alt := p.parseExpression(CONDITIONAL - 1)
	return &ast.ConditionalExpression{Test: left, Consequent: cons, Alternate: alt}
}

// parseCall is entered with peek == '(' (cur still on whatever token,
// or punctuator, precedes the call); it advances onto and then past
// the opening paren before reading the argument list.
func (p *Parser) parseCall(left ast.Expression) ast.Expression {
	p.advance() // cur == '('
	p.advance() // cur == first arg token, or ')'
	args := p.parseArgumentList()
	return &ast.CallExpression{Callee: left, Arguments: args}
}

func (p *Parser) parseArgumentList() []ast.Expression {
	var args []ast.Expression
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.curIs(token.ELLIPSIS) {
			p.advance()
			args = append(args, &ast.SpreadElement{Argument: p.parseAssignExpr()})
		} else {
			args = append(args, p.parseAssignExpr())
		}
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) parseIndex(left ast.Expression) ast.Expression {
	p.advance() // consume '['
	p.advance()
	idx := p.parseExpression(LOWEST)
	p.expect(token.RBRACKET)
	return &ast.MemberExpression{Object: left, Property: idx, Computed: true}
}

func (p *Parser) parseMember(left ast.Expression) ast.Expression {
	optional := p.peek.Type == token.QUESTION_DOT
	p.advance() // consume '.' or '?.'
	if optional && p.peekIs(token.LBRACKET) {
		p.advance()
		p.advance()
		idx := p.parseExpression(LOWEST)
		p.expect(token.RBRACKET)
		return &ast.MemberExpression{Object: left, Property: idx, Computed: true, Optional: true}
	}
	if optional && p.peekIs(token.LPAREN) {
		return p.parseCall(left)
	}
	p.advance()
	prop := ast.NewIdentifier(p.cur.Span, p.cur.Literal)
	return &ast.MemberExpression{Object: left, Property: prop, Computed: false, Optional: optional}
}

