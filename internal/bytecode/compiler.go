package bytecode

import (
	"github.com/aerojs/aerojs/internal/ast"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/token"
	"github.com/aerojs/aerojs/internal/value"
)

// Compiler lowers an AST (built by internal/parser) into a register-VM
// Function body, per §4.3. Variable bindings are resolved at run time by
// name through the interpreter's lexical Scope chain — adapted directly
// from the teacher's internal/interp/runtime.Environment — rather than
// through compile-time register/upvalue allocation; the register file
// here holds only expression-evaluation temporaries, allocated and freed
// with simple stack discipline (not a linear-scan allocator). This is a
// deliberate simplification: it forgoes fast local-variable register
// slots in exchange for a compiler small enough to implement and trust
// by inspection; see DESIGN.md.
type Compiler struct {
	fn     *Function
	source string
	next   uint8
	maxReg int
	loops  []*loopCtx
	errors []*diag.CompileError
}

type loopCtx struct {
	label        string
	breakJumps   []int
	continueJumps []int
}

// Compile lowers a parsed Program into its top-level Function body. The
// top-level Function returns the value of the last top-level expression
// statement it ran (undefined if none); expression statements nested in
// blocks, loops or other statements do not update that value.
func Compile(prog *ast.Program, source string) (*Function, []*diag.CompileError) {
	c := &Compiler{fn: NewFunction("", 0), source: source}
	c.fn.IsStrict = prog.IsStrict
	completion := c.alloc()
	c.fn.Emit(ABC(OpLoadUndefined, completion, 0, 0), token.Span{})
	c.hoist(prog.Body)
	for _, s := range prog.Body {
		if es, ok := s.(*ast.ExpressionStatement); ok {
			r := c.compileExpr(es.Expression)
			c.fn.Emit(ABC(OpMove, completion, r, 0), es.Span())
			c.freeTo(r)
			continue
		}
		c.compileStmt(s)
	}
	c.fn.Emit(ABC(OpReturn, completion, 0, 0), token.Span{})
	c.fn.NumRegisters = c.maxReg
	return c.fn, c.errors
}

func (c *Compiler) errorf(span token.Span, code, msg string) {
	pos := token.PositionOf(c.source, span.Offset)
	c.errors = append(c.errors, diag.NewCompileError(code, pos, msg))
}

func (c *Compiler) alloc() uint8 {
	r := c.next
	c.next++
	if int(c.next) > c.maxReg {
		c.maxReg = int(c.next)
	}
	return r
}

func (c *Compiler) freeTo(r uint8) { c.next = r }

func (c *Compiler) nameConst(name string) uint16 {
	return c.fn.AddConstant(value.String(name))
}

// hoist pre-declares function declarations and `var` bindings in the
// current scope before executing any statement, matching §4.2's
// hoisting semantics (functions are fully hoisted with their value;
// var bindings are hoisted as `undefined`).
func (c *Compiler) hoist(body []ast.Statement) {
	for _, s := range body {
		switch st := s.(type) {
		case *ast.FunctionDeclaration:
			r := c.compileFunctionValue(st.Fn)
			idx := c.nameConst(st.Fn.ID.Name)
			c.fn.Emit(ABx(OpDeclareScope, r, idx), st.Span())
			c.freeTo(r)
		case *ast.VariableDeclaration:
			if st.Kind == ast.VarVar {
				for _, d := range st.Declarations {
					c.hoistPattern(d.ID, st.Span())
				}
			}
		}
	}
}

func (c *Compiler) hoistPattern(p ast.Pattern, span token.Span) {
	switch pt := p.(type) {
	case *ast.Identifier:
		r := c.alloc()
		c.fn.Emit(ABC(OpLoadUndefined, r, 0, 0), span)
		idx := c.nameConst(pt.Name)
		c.fn.Emit(ABx(OpDeclareScope, r, idx), span)
		c.freeTo(r)
	case *ast.ArrayPattern:
		for _, e := range pt.Elements {
			if e != nil {
				c.hoistPattern(e, span)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range pt.Properties {
			c.hoistPattern(prop.Value, span)
		}
	case *ast.AssignmentPattern:
		c.hoistPattern(pt.Left, span)
	case *ast.RestElement:
		c.hoistPattern(pt.Argument, span)
	}
}

// ---- Statements -------------------------------------------------------

func (c *Compiler) compileStmt(s ast.Statement) {
	switch st := s.(type) {
	case *ast.VariableDeclaration:
		c.compileVarDecl(st)
	case *ast.FunctionDeclaration:
		// already hoisted
	case *ast.ExpressionStatement:
		r := c.compileExpr(st.Expression)
		c.freeTo(r)
	case *ast.BlockStatement:
		for _, inner := range st.Body {
			c.compileStmt(inner)
		}
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		// no-op
	case *ast.IfStatement:
		c.compileIf(st)
	case *ast.WhileStatement:
		c.compileWhile(st, "")
	case *ast.DoWhileStatement:
		c.compileDoWhile(st, "")
	case *ast.ForStatement:
		c.compileFor(st, "")
	case *ast.ForInStatement:
		c.compileForInOf(st, "")
	case *ast.ReturnStatement:
		if st.Argument == nil {
			c.fn.Emit(ABC(OpReturnUndefined, 0, 0, 0), st.Span())
			return
		}
		r := c.compileExpr(st.Argument)
		c.fn.Emit(ABC(OpReturn, r, 0, 0), st.Span())
		c.freeTo(r)
	case *ast.ThrowStatement:
		r := c.compileExpr(st.Argument)
		c.fn.Emit(ABC(OpThrow, r, 0, 0), st.Span())
		c.freeTo(r)
	case *ast.TryStatement:
		c.compileTry(st)
	case *ast.BreakStatement:
		c.compileBreak(st)
	case *ast.ContinueStatement:
		c.compileContinue(st)
	case *ast.SwitchStatement:
		c.compileSwitch(st)
	case *ast.LabeledStatement:
		c.compileLabeled(st)
	case *ast.ClassDeclaration:
		r := c.compileClassValue(st.Class)
		idx := c.nameConst(st.Class.ID.Name)
		c.fn.Emit(ABx(OpDeclareScope, r, idx), st.Span())
		c.freeTo(r)
	case *ast.WithStatement:
		c.errorf(st.Span(), diag.CodeUnsupportedFeature, "'with' statements are not supported")
	default:
		c.errorf(s.Span(), diag.CodeUnsupportedFeature, "unsupported statement")
	}
}

func (c *Compiler) compileVarDecl(st *ast.VariableDeclaration) {
	for _, d := range st.Declarations {
		var r uint8
		if d.Init != nil {
			r = c.compileExpr(d.Init)
		} else {
			r = c.alloc()
			c.fn.Emit(ABC(OpLoadUndefined, r, 0, 0), st.Span())
		}
		c.bindPattern(d.ID, r, st.Kind != ast.VarVar || d.Init != nil)
		c.freeTo(r)
	}
}

// bindPattern destructures value register r into pattern p. declare, when
// true, emits OpDeclareScope (a fresh binding); var re-declarations with
// no initializer are skipped since hoisting already declared them.
func (c *Compiler) bindPattern(p ast.Pattern, r uint8, declare bool) {
	switch pt := p.(type) {
	case *ast.Identifier:
		if !declare {
			return
		}
		idx := c.nameConst(pt.Name)
		c.fn.Emit(ABx(OpDeclareScope, r, idx), pt.Span())
	case *ast.AssignmentPattern:
		// Defaulted binding (`x = 1`): only the target is bound. The
		// default expression is not compiled, so the target receives the
		// incoming value as it is, undefined included.
		c.bindPattern(pt.Left, r, declare)
	default:
		c.errorf(p.Span(), diag.CodeUnsupportedFeature, "unsupported destructuring pattern")
	}
}

func (c *Compiler) compileIf(st *ast.IfStatement) {
	test := c.compileExpr(st.Test)
	jfPC := c.fn.Emit(AsBx(OpJumpIfFalse, test, 0), st.Span())
	c.freeTo(test)
	c.compileStmt(st.Consequent)
	if st.Alternate == nil {
		c.patchJump(jfPC)
		return
	}
	jEndPC := c.fn.Emit(AsBx(OpJump, 0, 0), st.Span())
	c.patchJump(jfPC)
	c.compileStmt(st.Alternate)
	c.patchJump(jEndPC)
}

func (c *Compiler) patchJump(pc int) {
	target := len(c.fn.Code)
	ins := c.fn.Code[pc]
	c.fn.Patch(pc, AsBx(ins.Op(), ins.A(), int32(target-pc)))
}

func (c *Compiler) patchJumpTo(pc, target int) {
	ins := c.fn.Code[pc]
	c.fn.Patch(pc, AsBx(ins.Op(), ins.A(), int32(target-pc)))
}

func (c *Compiler) compileWhile(st *ast.WhileStatement, label string) {
	loop := &loopCtx{label: label}
	c.loops = append(c.loops, loop)

	start := len(c.fn.Code)
	test := c.compileExpr(st.Test)
	jfPC := c.fn.Emit(AsBx(OpJumpIfFalse, test, 0), st.Span())
	c.freeTo(test)
	c.compileStmt(st.Body)
	backPC := c.fn.Emit(AsBx(OpJump, 0, 0), st.Span())
	c.patchJumpTo(backPC, start)
	c.patchJump(jfPC)

	c.finishLoop(loop, start, len(c.fn.Code))
}

func (c *Compiler) compileDoWhile(st *ast.DoWhileStatement, label string) {
	loop := &loopCtx{label: label}
	c.loops = append(c.loops, loop)

	start := len(c.fn.Code)
	c.compileStmt(st.Body)
	contTarget := len(c.fn.Code)
	test := c.compileExpr(st.Test)
	jtPC := c.fn.Emit(AsBx(OpJumpIfTrue, test, 0), st.Span())
	c.freeTo(test)
	c.patchJumpTo(jtPC, start)

	c.finishLoopAt(loop, contTarget, len(c.fn.Code))
}

func (c *Compiler) compileFor(st *ast.ForStatement, label string) {
	if st.Init != nil {
		switch init := st.Init.(type) {
		case *ast.VariableDeclaration:
			c.compileVarDecl(init)
		case ast.Expression:
			r := c.compileExpr(init)
			c.freeTo(r)
		}
	}
	loop := &loopCtx{label: label}
	c.loops = append(c.loops, loop)

	start := len(c.fn.Code)
	var jfPC int
	hasTest := st.Test != nil
	if hasTest {
		test := c.compileExpr(st.Test)
		jfPC = c.fn.Emit(AsBx(OpJumpIfFalse, test, 0), st.Span())
		c.freeTo(test)
	}
	c.compileStmt(st.Body)
	contTarget := len(c.fn.Code)
	if st.Update != nil {
		r := c.compileExpr(st.Update)
		c.freeTo(r)
	}
	backPC := c.fn.Emit(AsBx(OpJump, 0, 0), st.Span())
	c.patchJumpTo(backPC, start)
	if hasTest {
		c.patchJump(jfPC)
	}

	c.finishLoopAt(loop, contTarget, len(c.fn.Code))
}

func (c *Compiler) compileForInOf(st *ast.ForInStatement, label string) {
	rhs := c.compileExpr(st.Right)
	iter := c.alloc()
	of := uint8(0)
	if st.Of {
		of = 1
	}
	c.fn.Emit(ABC(OpIterInit, iter, rhs, of), st.Span())
	c.freeTo(iter + 1)

	loop := &loopCtx{label: label}
	c.loops = append(c.loops, loop)

	start := len(c.fn.Code)
	item := c.alloc()
	nextPC := c.fn.Emit(AsBx(OpIterNext, item, 0), st.Span())
	// item now holds the next value, or control falls through to `done`
	// jump target patched below once the body and loop tail are known.
	switch left := st.Left.(type) {
	case *ast.VariableDeclaration:
		c.bindPattern(left.Declarations[0].ID, item, true)
	case ast.Pattern:
		c.assignPattern(left, item)
	}
	c.freeTo(item)
	c.compileStmt(st.Body)
	backPC := c.fn.Emit(AsBx(OpJump, 0, 0), st.Span())
	c.patchJumpTo(backPC, start)
	donePC := len(c.fn.Code)
	c.patchJumpTo(nextPC, donePC)

	c.finishLoopAt(loop, start, donePC)
	c.freeTo(iter)
}

func (c *Compiler) finishLoop(loop *loopCtx, continueTarget, end int) {
	c.finishLoopAt(loop, continueTarget, end)
}

func (c *Compiler) finishLoopAt(loop *loopCtx, continueTarget, end int) {
	c.loops = c.loops[:len(c.loops)-1]
	for _, pc := range loop.breakJumps {
		c.patchJumpTo(pc, end)
	}
	for _, pc := range loop.continueJumps {
		c.patchJumpTo(pc, continueTarget)
	}
}

func (c *Compiler) compileBreak(st *ast.BreakStatement) {
	loop := c.findLoop(st.Label)
	if loop == nil {
		c.errorf(st.Span(), diag.CodeIllegalBreak, "'break' outside a loop or switch")
		return
	}
	pc := c.fn.Emit(AsBx(OpJump, 0, 0), st.Span())
	loop.breakJumps = append(loop.breakJumps, pc)
}

func (c *Compiler) compileContinue(st *ast.ContinueStatement) {
	loop := c.findLoop(st.Label)
	if loop == nil {
		c.errorf(st.Span(), diag.CodeIllegalContinue, "'continue' outside a loop")
		return
	}
	pc := c.fn.Emit(AsBx(OpJump, 0, 0), st.Span())
	loop.continueJumps = append(loop.continueJumps, pc)
}

func (c *Compiler) findLoop(label *ast.Identifier) *loopCtx {
	if len(c.loops) == 0 {
		return nil
	}
	if label == nil {
		return c.loops[len(c.loops)-1]
	}
	for i := len(c.loops) - 1; i >= 0; i-- {
		if c.loops[i].label == label.Name {
			return c.loops[i]
		}
	}
	return nil
}

func (c *Compiler) compileLabeled(st *ast.LabeledStatement) {
	switch body := st.Body.(type) {
	case *ast.WhileStatement:
		c.compileWhile(body, st.Label.Name)
	case *ast.DoWhileStatement:
		c.compileDoWhile(body, st.Label.Name)
	case *ast.ForStatement:
		c.compileFor(body, st.Label.Name)
	case *ast.ForInStatement:
		c.compileForInOf(body, st.Label.Name)
	default:
		c.compileStmt(st.Body)
	}
}

func (c *Compiler) compileSwitch(st *ast.SwitchStatement) {
	disc := c.compileExpr(st.Discriminant)
	loop := &loopCtx{}
	c.loops = append(c.loops, loop)

	type pending struct {
		jfPC int
		case_ *ast.SwitchCase
	}
	var jumps []pending
	defaultIdx := -1
	for i := range st.Cases {
		cs := &st.Cases[i]
		if cs.Test == nil {
			defaultIdx = i
			continue
		}
		testVal := c.compileExpr(cs.Test)
		cmp := c.alloc()
		c.fn.Emit(ABC(OpSEq, cmp, disc, testVal), st.Span())
		c.freeTo(testVal)
		jtPC := c.fn.Emit(AsBx(OpJumpIfTrue, cmp, 0), st.Span())
		c.freeTo(cmp)
		jumps = append(jumps, pending{jtPC, cs})
	}
	jDefault := c.fn.Emit(AsBx(OpJump, 0, 0), st.Span())
	c.freeTo(disc)

	caseStarts := make(map[*ast.SwitchCase]int, len(st.Cases))
	for i := range st.Cases {
		caseStarts[&st.Cases[i]] = len(c.fn.Code)
		for _, s := range st.Cases[i].Consequent {
			c.compileStmt(s)
		}
	}
	end := len(c.fn.Code)
	for _, j := range jumps {
		c.patchJumpTo(j.jfPC, caseStarts[j.case_])
	}
	if defaultIdx >= 0 {
		c.patchJumpTo(jDefault, caseStarts[&st.Cases[defaultIdx]])
	} else {
		c.patchJumpTo(jDefault, end)
	}
	c.finishLoopAt(loop, end, end)
}

func (c *Compiler) compileTry(st *ast.TryStatement) {
	tryStart := len(c.fn.Code)
	c.compileStmt(st.Block)
	tryEnd := len(c.fn.Code)

	var handlers []ExceptionHandler
	jEndPCs := []int{}

	if st.Handler != nil {
		jEndPCs = append(jEndPCs, c.fn.Emit(AsBx(OpJump, 0, 0), st.Span()))
		catchStart := len(c.fn.Code)
		catchReg := c.alloc()
		if st.Handler.Param != nil {
			c.bindPattern(st.Handler.Param, catchReg, true)
		}
		c.freeTo(catchReg)
		c.compileStmt(st.Handler.Body)
		handlers = append(handlers, ExceptionHandler{
			TryStart: tryStart, TryEnd: tryEnd, Target: catchStart,
			Kind: HandlerCatch, Register: int(catchReg),
		})
	}

	for _, pc := range jEndPCs {
		c.patchJump(pc)
	}

	if st.Finally != nil {
		finallyStart := len(c.fn.Code)
		c.compileStmt(st.Finally)
		finallyEnd := len(c.fn.Code)
		// TryEnd is finallyStart, not finallyEnd: the protected range
		// covers the try block and any catch clause above (so an
		// exception escaping either still runs finally) but must stop
		// before the finally body itself, or a throw inside finally would
		// re-enter this same handler and loop forever. FinallyEnd marks
		// where the finally body's own code ends, so the interpreter can
		// re-raise an exception that had no catch once finally completes.
		handlers = append(handlers, ExceptionHandler{
			TryStart: tryStart, TryEnd: finallyStart, Target: finallyStart,
			Kind: HandlerFinally, Register: -1, FinallyEnd: finallyEnd,
		})
	}
	for i := range handlers {
		if handlers[i].Kind == HandlerCatch {
			handlers[i].FinallyEnd = -1
		}
	}

	c.fn.Handlers = append(c.fn.Handlers, handlers...)
}

// assignPattern assigns value register r into an existing pattern/lvalue
// (as opposed to bindPattern, which declares a fresh binding).
func (c *Compiler) assignPattern(p ast.Node, r uint8) {
	switch t := p.(type) {
	case *ast.Identifier:
		idx := c.nameConst(t.Name)
		c.fn.Emit(ABx(OpSetScope, r, idx), t.Span())
	case *ast.MemberExpression:
		c.compileMemberAssign(t, r)
	case *ast.ArrayPattern, *ast.ObjectPattern:
		c.errorf(p.Span(), diag.CodeUnsupportedFeature, "unsupported destructuring assignment target")
	default:
		c.errorf(p.Span(), diag.CodeInvalidAssignTarget, "invalid assignment target")
	}
}
