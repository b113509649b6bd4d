package bytecode

import (
	"github.com/aerojs/aerojs/internal/ast"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/token"
	"github.com/aerojs/aerojs/internal/value"
)

// compileExpr compiles e into a freshly allocated register holding its
// result and returns that register. Callers free it (and any registers
// allocated after it) once they're done, per the stack-discipline
// allocator described on Compiler.
func (c *Compiler) compileExpr(e ast.Expression) uint8 {
	switch ex := e.(type) {
	case *ast.Identifier:
		r := c.alloc()
		if ex.Name == "undefined" {
			c.fn.Emit(ABC(OpLoadUndefined, r, 0, 0), ex.Span())
			return r
		}
		idx := c.nameConst(ex.Name)
		c.fn.Emit(ABx(OpGetScope, r, idx), ex.Span())
		return r
	case *ast.NumberLiteral:
		r := c.alloc()
		if ex.Value == 0 {
			c.fn.Emit(ABC(OpLoadZero, r, 0, 0), ex.Span())
			return r
		}
		idx := c.fn.AddConstant(value.Number(ex.Value))
		c.fn.Emit(ABx(OpLoadConst, r, idx), ex.Span())
		return r
	case *ast.StringLiteral:
		r := c.alloc()
		idx := c.fn.AddConstant(value.String(ex.Value))
		c.fn.Emit(ABx(OpLoadConst, r, idx), ex.Span())
		return r
	case *ast.BooleanLiteral:
		r := c.alloc()
		op := OpLoadFalse
		if ex.Value {
			op = OpLoadTrue
		}
		c.fn.Emit(ABC(op, r, 0, 0), ex.Span())
		return r
	case *ast.NullLiteral:
		r := c.alloc()
		c.fn.Emit(ABC(OpLoadNull, r, 0, 0), ex.Span())
		return r
	case *ast.TemplateLiteral:
		return c.compileTemplate(ex)
	case *ast.ArrayLiteral:
		return c.compileArrayLiteral(ex)
	case *ast.ObjectLiteral:
		return c.compileObjectLiteral(ex)
	case *ast.FunctionExpression:
		return c.compileFunctionValue(ex.Fn)
	case *ast.ArrowFunctionExpression:
		return c.compileFunctionValue(ex.Fn)
	case *ast.ClassExpression:
		return c.compileClassValue(ex.Class)
	case *ast.ThisExpression:
		r := c.alloc()
		idx := c.nameConst("this")
		c.fn.Emit(ABx(OpGetScope, r, idx), ex.Span())
		return r
	case *ast.UnaryExpression:
		return c.compileUnary(ex)
	case *ast.UpdateExpression:
		return c.compileUpdate(ex)
	case *ast.BinaryExpression:
		return c.compileBinary(ex)
	case *ast.LogicalExpression:
		return c.compileLogical(ex)
	case *ast.ConditionalExpression:
		return c.compileConditional(ex)
	case *ast.AssignmentExpression:
		return c.compileAssignment(ex)
	case *ast.SequenceExpression:
		var r uint8
		for i, sub := range ex.Expressions {
			if i > 0 {
				c.freeTo(r)
			}
			r = c.compileExpr(sub)
		}
		return r
	case *ast.MemberExpression:
		return c.compileMemberGet(ex)
	case *ast.CallExpression:
		return c.compileCall(ex)
	case *ast.NewExpression:
		return c.compileNew(ex)
	case *ast.SpreadElement:
		return c.compileExpr(ex.Argument)
	default:
		c.errorf(e.Span(), diag.CodeUnsupportedFeature, "unsupported expression")
		r := c.alloc()
		c.fn.Emit(ABC(OpLoadUndefined, r, 0, 0), e.Span())
		return r
	}
}

func (c *Compiler) compileTemplate(ex *ast.TemplateLiteral) uint8 {
	r := c.alloc()
	idx := c.fn.AddConstant(value.String(ex.Quasis[0].Cooked))
	c.fn.Emit(ABx(OpLoadConst, r, idx), ex.Span())
	for i, e := range ex.Expressions {
		part := c.compileExpr(e)
		c.fn.Emit(ABC(OpAdd, r, r, part), ex.Span())
		c.freeTo(part)
		quasi := ex.Quasis[i+1]
		if quasi.Cooked != "" {
			sreg := c.alloc()
			sidx := c.fn.AddConstant(value.String(quasi.Cooked))
			c.fn.Emit(ABx(OpLoadConst, sreg, sidx), ex.Span())
			c.fn.Emit(ABC(OpAdd, r, r, sreg), ex.Span())
			c.freeTo(sreg)
		}
	}
	return r
}

func (c *Compiler) compileArrayLiteral(ex *ast.ArrayLiteral) uint8 {
	r := c.alloc()
	c.fn.Emit(ABC(OpNewArray, r, 0, 0), ex.Span())
	for _, el := range ex.Elements {
		if el == nil {
			u := c.alloc()
			c.fn.Emit(ABC(OpLoadUndefined, u, 0, 0), ex.Span())
			c.fn.Emit(ABC(OpArrayPush, r, u, 0), ex.Span())
			c.freeTo(u)
			continue
		}
		v := c.compileExpr(el)
		c.fn.Emit(ABC(OpArrayPush, r, v, 0), ex.Span())
		c.freeTo(v)
	}
	return r
}

func (c *Compiler) compileObjectLiteral(ex *ast.ObjectLiteral) uint8 {
	r := c.alloc()
	c.fn.Emit(ABC(OpNewObject, r, 0, 0), ex.Span())
	for _, p := range ex.Properties {
		if p.Computed {
			c.errorf(ex.Span(), diag.CodeUnsupportedFeature, "computed object literal keys are not supported")
			continue
		}
		name := propertyKeyName(p.Key)
		nameIdx := c.nameConst(name)
		slot := c.fn.AllocICSlot(nameIdx)
		val := c.compileExpr(p.Value)
		c.fn.Emit(ABC(OpSetProp, r, val, uint8(slot)), ex.Span())
		c.freeTo(val)
	}
	return r
}

func propertyKeyName(k ast.Expression) string {
	switch key := k.(type) {
	case *ast.Identifier:
		return key.Name
	case *ast.StringLiteral:
		return key.Value
	case *ast.NumberLiteral:
		return value.Number(key.Value).String()
	default:
		return ""
	}
}

func (c *Compiler) compileUnary(ex *ast.UnaryExpression) uint8 {
	if ex.Operator == token.DELETE {
		if m, ok := ex.Argument.(*ast.MemberExpression); ok {
			obj := c.compileExpr(m.Object)
			var key uint8
			if m.Computed {
				key = c.compileExpr(m.Property)
			} else {
				key = c.alloc()
				idx := c.fn.AddConstant(value.String(propertyKeyName(m.Property)))
				c.fn.Emit(ABx(OpLoadConst, key, idx), ex.Span())
			}
			res := c.alloc()
			c.fn.Emit(ABC(OpDeleteProp, res, obj, key), ex.Span())
			c.freeTo(obj + 1)
			c.fn.Emit(ABC(OpMove, obj, res, 0), ex.Span())
			c.freeTo(obj + 1)
			return obj
		}
		c.errorf(ex.Span(), diag.CodeDeleteUnqualified, "delete of an unqualified identifier in strict mode")
		r := c.alloc()
		c.fn.Emit(ABC(OpLoadTrue, r, 0, 0), ex.Span())
		return r
	}

	r := c.compileExpr(ex.Argument)
	switch ex.Operator {
	case token.MINUS:
		c.fn.Emit(ABC(OpNeg, r, r, 0), ex.Span())
	case token.BANG:
		c.fn.Emit(ABC(OpNot, r, r, 0), ex.Span())
	case token.TILDE:
		c.fn.Emit(ABC(OpBitNot, r, r, 0), ex.Span())
	case token.TYPEOF:
		c.fn.Emit(ABC(OpTypeof, r, r, 0), ex.Span())
	case token.PLUS:
		// unary plus: ToNumber, modeled as adding zero via OpAdd with a
		// zero constant is wasteful; the interpreter's NEG/NOT family
		// doesn't have a dedicated unary-plus op, so reuse NEG twice.
		c.fn.Emit(ABC(OpNeg, r, r, 0), ex.Span())
		c.fn.Emit(ABC(OpNeg, r, r, 0), ex.Span())
	default:
		c.errorf(ex.Span(), diag.CodeUnsupportedFeature, "unsupported unary operator")
	}
	return r
}

func (c *Compiler) compileUpdate(ex *ast.UpdateExpression) uint8 {
	id, ok := ex.Argument.(*ast.Identifier)
	if !ok {
		c.errorf(ex.Span(), diag.CodeUnsupportedFeature, "update expression target must be an identifier")
		return c.compileExpr(ex.Argument)
	}
	cur := c.compileExpr(id)
	old := c.alloc()
	c.fn.Emit(ABC(OpMove, old, cur, 0), ex.Span())

	one := c.alloc()
	idx := c.fn.AddConstant(value.Number(1))
	c.fn.Emit(ABx(OpLoadConst, one, idx), ex.Span())
	op := OpAdd
	if ex.Operator == token.DEC {
		op = OpSub
	}
	c.fn.Emit(ABC(op, cur, cur, one), ex.Span())
	c.freeTo(one)

	nameIdx := c.nameConst(id.Name)
	c.fn.Emit(ABx(OpSetScope, cur, nameIdx), ex.Span())

	if ex.Prefix {
		c.freeTo(old)
		return cur
	}
	c.freeTo(cur)
	return old
}

func binOpcode(op token.Type) (OpCode, bool) {
	switch op {
	case token.PLUS:
		return OpAdd, true
	case token.MINUS:
		return OpSub, true
	case token.STAR:
		return OpMul, true
	case token.SLASH:
		return OpDiv, true
	case token.PERCENT:
		return OpMod, true
	case token.STAR_STAR:
		return OpPow, true
	case token.AMP:
		return OpBitAnd, true
	case token.PIPE:
		return OpBitOr, true
	case token.CARET:
		return OpBitXor, true
	case token.SHL:
		return OpShl, true
	case token.SHR:
		return OpShr, true
	case token.USHR:
		return OpUShr, true
	case token.EQ:
		return OpEq, true
	case token.NEQ:
		return OpNeq, true
	case token.EQ_STRICT:
		return OpSEq, true
	case token.NEQ_STRICT:
		return OpSNeq, true
	case token.LT:
		return OpLt, true
	case token.LE:
		return OpLe, true
	case token.GT:
		return OpGt, true
	case token.GE:
		return OpGe, true
	case token.INSTANCEOF:
		return OpInstanceof, true
	case token.IN:
		return OpIn, true
	default:
		return 0, false
	}
}

func (c *Compiler) compileBinary(ex *ast.BinaryExpression) uint8 {
	l := c.compileExpr(ex.Left)
	r := c.compileExpr(ex.Right)
	op, ok := binOpcode(ex.Operator)
	if !ok {
		c.errorf(ex.Span(), diag.CodeUnsupportedFeature, "unsupported binary operator")
		c.freeTo(l + 1)
		return l
	}
	c.fn.Emit(ABC(op, l, l, r), ex.Span())
	c.freeTo(l + 1)
	return l
}

func (c *Compiler) compileLogical(ex *ast.LogicalExpression) uint8 {
	l := c.compileExpr(ex.Left)
	var skipPC int
	switch ex.Operator {
	case token.AND_AND:
		skipPC = c.fn.Emit(AsBx(OpJumpIfFalse, l, 0), ex.Span())
	case token.OR_OR:
		skipPC = c.fn.Emit(AsBx(OpJumpIfTrue, l, 0), ex.Span())
	default: // QUESTION_QUESTION: short-circuit only when l is undefined/null
		nn := c.alloc()
		c.fn.Emit(ABC(OpIsNullish, nn, l, 0), ex.Span())
		c.freeTo(nn)
		skipPC = c.fn.Emit(AsBx(OpJumpIfFalse, nn, 0), ex.Span())
	}
	c.freeTo(l + 1)
	r := c.compileExpr(ex.Right)
	c.fn.Emit(ABC(OpMove, l, r, 0), ex.Span())
	c.freeTo(l + 1)
	c.patchJump(skipPC)
	return l
}

func (c *Compiler) compileConditional(ex *ast.ConditionalExpression) uint8 {
	test := c.compileExpr(ex.Test)
	jfPC := c.fn.Emit(AsBx(OpJumpIfFalse, test, 0), ex.Span())
	c.freeTo(test)
	r := c.compileExpr(ex.Consequent)
	jEndPC := c.fn.Emit(AsBx(OpJump, 0, 0), ex.Span())
	c.freeTo(test)
	c.patchJump(jfPC)
	r2 := c.compileExpr(ex.Alternate)
	c.fn.Emit(ABC(OpMove, r, r2, 0), ex.Span())
	c.freeTo(r + 1)
	c.patchJump(jEndPC)
	return r
}

func (c *Compiler) compileAssignment(ex *ast.AssignmentExpression) uint8 {
	if ex.Operator == token.ASSIGN {
		r := c.compileExpr(ex.Right)
		c.assignPattern(ex.Left, r)
		return r
	}
	op, ok := compoundOp(ex.Operator)
	if !ok {
		c.errorf(ex.Span(), diag.CodeUnsupportedFeature, "unsupported compound assignment")
		return c.compileExpr(ex.Right)
	}
	cur := c.compileExpr(ex.Left)
	rhs := c.compileExpr(ex.Right)
	c.fn.Emit(ABC(op, cur, cur, rhs), ex.Span())
	c.freeTo(cur + 1)
	c.assignPattern(ex.Left, cur)
	return cur
}

func compoundOp(t token.Type) (OpCode, bool) {
	switch t {
	case token.PLUS_ASSIGN:
		return OpAdd, true
	case token.MINUS_ASSIGN:
		return OpSub, true
	case token.STAR_ASSIGN:
		return OpMul, true
	case token.SLASH_ASSIGN:
		return OpDiv, true
	case token.PERCENT_ASSIGN:
		return OpMod, true
	case token.STAR_STAR_ASSIGN:
		return OpPow, true
	case token.AMP_ASSIGN:
		return OpBitAnd, true
	case token.PIPE_ASSIGN:
		return OpBitOr, true
	case token.CARET_ASSIGN:
		return OpBitXor, true
	case token.SHL_ASSIGN:
		return OpShl, true
	case token.SHR_ASSIGN:
		return OpShr, true
	case token.USHR_ASSIGN:
		return OpUShr, true
	default:
		return 0, false
	}
}

func (c *Compiler) compileMemberGet(ex *ast.MemberExpression) uint8 {
	obj := c.compileExpr(ex.Object)
	r := c.alloc()
	if ex.Computed {
		key := c.compileExpr(ex.Property)
		c.fn.Emit(ABC(OpGetIndex, r, obj, key), ex.Span())
		c.freeTo(r + 1)
		c.fn.Emit(ABC(OpMove, obj, r, 0), ex.Span())
		c.freeTo(obj + 1)
		return obj
	}
	name := propertyKeyName(ex.Property)
	nameIdx := c.nameConst(name)
	slot := c.fn.AllocICSlot(nameIdx)
	c.fn.Emit(ABC(OpGetProp, r, obj, uint8(slot)), ex.Span())
	c.freeTo(r + 1)
	c.fn.Emit(ABC(OpMove, obj, r, 0), ex.Span())
	c.freeTo(obj + 1)
	return obj
}

func (c *Compiler) compileMemberAssign(m *ast.MemberExpression, val uint8) {
	obj := c.compileExpr(m.Object)
	if m.Computed {
		key := c.compileExpr(m.Property)
		c.fn.Emit(ABC(OpSetIndex, obj, key, val), m.Span())
		c.freeTo(obj)
		return
	}
	name := propertyKeyName(m.Property)
	nameIdx := c.nameConst(name)
	slot := c.fn.AllocICSlot(nameIdx)
	c.fn.Emit(ABC(OpSetProp, obj, val, uint8(slot)), m.Span())
	c.freeTo(obj)
}

// compileCall always reserves the register immediately below the callee
// for the receiver ("this"): OpCall's interpreter reads it from R(A-1).
// For a plain call (`f()`) that register holds undefined; for a method
// call (`obj.method()`) it holds obj itself, compiled without the
// self-clobbering OpMove compileMemberGet otherwise uses, so the
// receiver survives to be passed as `this` instead of being discarded.
func (c *Compiler) compileCall(ex *ast.CallExpression) uint8 {
	var callee uint8
	if m, ok := ex.Callee.(*ast.MemberExpression); ok {
		callee = c.compileMemberCallee(m)
	} else {
		thisReg := c.alloc()
		c.fn.Emit(ABC(OpLoadUndefined, thisReg, 0, 0), ex.Span())
		callee = c.compileExpr(ex.Callee)
	}
	for _, a := range ex.Arguments {
		arg := c.compileExpr(a)
		_ = arg // arguments occupy contiguous registers after callee by construction
	}
	argc := uint8(len(ex.Arguments))
	slot := c.fn.AllocICSlot(c.nameConst(""))
	c.fn.Emit(ABC(OpCall, callee, argc+1, uint8(slot)), ex.Span())
	c.freeTo(callee + 1)
	return callee
}

// compileMemberCallee evaluates m as a call's callee, keeping the
// receiver alive in the register immediately below the result (unlike
// compileMemberGet, which collapses both into one register since an
// ordinary property read has no need to keep the receiver around).
func (c *Compiler) compileMemberCallee(m *ast.MemberExpression) uint8 {
	thisReg := c.compileExpr(m.Object)
	r := c.alloc()
	if m.Computed {
		key := c.compileExpr(m.Property)
		c.fn.Emit(ABC(OpGetIndex, r, thisReg, key), m.Span())
		c.freeTo(r + 1)
		return r
	}
	name := propertyKeyName(m.Property)
	nameIdx := c.nameConst(name)
	slot := c.fn.AllocICSlot(nameIdx)
	c.fn.Emit(ABC(OpGetProp, r, thisReg, uint8(slot)), m.Span())
	c.freeTo(r + 1)
	return r
}

func (c *Compiler) compileNew(ex *ast.NewExpression) uint8 {
	callee := c.compileExpr(ex.Callee)
	for _, a := range ex.Arguments {
		c.compileExpr(a)
	}
	argc := uint8(len(ex.Arguments))
	slot := c.fn.AllocICSlot(c.nameConst(""))
	c.fn.Emit(ABC(OpNew, callee, argc+1, uint8(slot)), ex.Span())
	c.freeTo(callee + 1)
	return callee
}

// compileFunctionValue compiles fn as a nested Function body and emits
// the closure-creation instruction, returning the register holding the
// new function object.
func (c *Compiler) compileFunctionValue(fn *ast.Function) uint8 {
	inner := NewFunction(functionName(fn), len(fn.Params))
	inner.IsArrow = fn.Arrow
	inner.IsStrict = fn.IsStrict

	sub := &Compiler{fn: inner, source: c.source}
	for _, p := range fn.Params {
		// Register i is parameter i by construction (a fresh sub-Compiler
		// allocates from 0): the interpreter pre-loads the call's argument
		// values (or undefined, short of that many) into registers
		// 0..ParamCount-1 before running this body, so binding directly
		// from r here — with no OpLoadUndefined first — picks up the
		// actual argument instead of discarding it.
		r := sub.alloc()
		sub.bindPattern(p, r, true)
	}
	switch body := fn.Body.(type) {
	case *ast.BlockStatement:
		sub.hoist(body.Body)
		for _, s := range body.Body {
			sub.compileStmt(s)
		}
		sub.fn.Emit(ABC(OpReturnUndefined, 0, 0, 0), fn.Span())
	case ast.Expression:
		r := sub.compileExpr(body)
		sub.fn.Emit(ABC(OpReturn, r, 0, 0), fn.Span())
	default:
		// A synthesized default constructor (no explicit `constructor`
		// method in the class body) has no body at all: just return.
		sub.fn.Emit(ABC(OpReturnUndefined, 0, 0, 0), fn.Span())
	}
	sub.fn.NumRegisters = sub.maxReg
	c.errors = append(c.errors, sub.errors...)

	idx := c.fn.AddInner(inner)
	r := c.alloc()
	c.fn.Emit(ABx(OpNewFunction, r, idx), fn.Span())
	return r
}

func functionName(fn *ast.Function) string {
	if fn.ID != nil {
		return fn.ID.Name
	}
	return ""
}

// compileClassValue compiles a class declaration/expression into a
// runtime NEWCLASS instruction. The constructor method (if any) becomes
// the class's callable body; every other method compiles as an ordinary
// nested function assigned onto the produced object via IC-slotted
// OpSetProp, the same path an object literal's methods take. When the
// class extends a superclass, OpNewClass additionally takes the
// superclass register so the interpreter can link prototypes — the
// compiler itself does no inheritance-specific codegen.
func (c *Compiler) compileClassValue(cls *ast.Class) uint8 {
	var ctorFn *ast.Function
	for _, m := range cls.Body.Members {
		if m.Kind == ast.MethodKind && !m.Static && propertyKeyName(m.Key) == "constructor" {
			if fn, ok := m.Value.(*ast.Function); ok {
				ctorFn = fn
			}
		}
	}
	if ctorFn == nil {
		ctorFn = &ast.Function{}
	}
	if ctorFn.ID == nil {
		ctorFn.ID = cls.ID
	}

	hasSuper := cls.SuperClass != nil
	var superReg uint8
	if hasSuper {
		superReg = c.compileExpr(cls.SuperClass)
	}

	r := c.compileFunctionValue(ctorFn)
	superArg := uint8(0)
	hasSuperFlag := uint8(0)
	if hasSuper {
		superArg = superReg
		hasSuperFlag = 1
	}
	c.fn.Emit(ABC(OpNewClass, r, superArg, hasSuperFlag), cls.Span())
	if hasSuper {
		c.freeTo(superReg)
	}

	for _, m := range cls.Body.Members {
		fn, isFn := m.Value.(*ast.Function)
		if !isFn || (m.Kind == ast.MethodKind && !m.Static && propertyKeyName(m.Key) == "constructor") {
			continue
		}
		methodReg := c.compileFunctionValue(fn)
		nameIdx := c.nameConst(propertyKeyName(m.Key))
		slot := c.fn.AllocICSlot(nameIdx)
		c.fn.Emit(ABC(OpSetProp, r, methodReg, uint8(slot)), cls.Span())
		c.freeTo(methodReg)
	}
	return r
}

