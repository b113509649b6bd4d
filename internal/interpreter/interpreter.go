// Package interpreter executes compiled bytecode.Function bodies via a
// register-machine dispatch loop, per §4.4. Nested JS calls are modeled
// as recursive Go calls (CallFunction calling back into itself through
// run's OpCall/OpNew handling) rather than a flat bytecode call stack:
// the Go call stack doubles as the JS call stack, which keeps exception
// propagation uniform — a RuntimeError returned from a nested call
// surfaces at the calling frame's own pc, where the same handler-table
// lookup applies whether the error originated locally or propagated up
// from a callee. This mirrors the teacher's tree-walking evaluator's
// structure (internal/interp.Interpreter.Eval recursing through nested
// AST nodes) more closely than a flat VM stack would, adapted to a
// bytecode dispatch loop instead of an AST walk.
package interpreter

import (
	"fmt"

	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/deopt"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/profiler"
	"github.com/aerojs/aerojs/internal/value"
)

// Tuner is the subset of internal/jit's Manager the interpreter consults
// to request tier-up compilation and read back installed guards. Defined
// locally so internal/interpreter never imports internal/jit (which
// itself imports internal/interpreter's sibling packages only indirectly
// through bytecode/profiler/value) — *jit.Manager satisfies this
// structurally.
type Tuner interface {
	CompileAsync(fn *bytecode.Function, tier int)
	Guards(fn *bytecode.Function) (map[int]bytecode.Guard, int, bool)
}

const (
	// maxCallDepth bounds recursive CallFunction nesting, grounded on the
	// teacher's internal/interp/runtime.CallStack default depth of 1024.
	maxCallDepth = 1024

	tierBaseline   = 1
	tierOptimizing = 2
)

// Frame is one activation record: a function body, its register file,
// its lexical scope, and in-flight exception/finally bookkeeping.
type Frame struct {
	fn    *bytecode.Function
	regs  []value.Value
	scope *Scope
	this  value.Value
	pc    int

	// finallyPending/finallyPendingEnd implement re-raising an uncaught
	// exception once an intervening finally block finishes running; see
	// recover in exceptions.go and the top of run's dispatch loop.
	finallyPending    *diag.RuntimeError
	finallyPendingEnd int
}

// Interpreter executes bytecode.Function bodies, feeding the profiler and
// consulting the JIT tuner and deoptimizer along the way, per §4.4/§4.6/§4.7.
type Interpreter struct {
	prof  *profiler.Profiler
	tuner Tuner
	deopt *deopt.Deoptimizer
	depth int
}

// New creates an Interpreter. tuner/dp may be nil, in which case tier-up
// requests and guard checks are simply skipped (useful for unit-testing
// the interpreter's bytecode semantics in isolation).
func New(prof *profiler.Profiler, tuner Tuner, dp *deopt.Deoptimizer) *Interpreter {
	return &Interpreter{prof: prof, tuner: tuner, deopt: dp}
}

// RunProgram executes fn as a top-level script against global, which is
// used directly (not wrapped in a further enclosed scope) so that
// top-level var/let/const bindings land in the scope the caller passed
// in. Unlike CallFunction, this bypasses call-depth and profiler
// call-count bookkeeping, which don't apply to a program's single
// top-level invocation.
func (it *Interpreter) RunProgram(fn *bytecode.Function, global *Scope) (value.Value, error) {
	frame := &Frame{
		fn:                fn,
		regs:              make([]value.Value, fn.NumRegisters),
		scope:             global,
		this:              value.Undefined,
		finallyPendingEnd: -1,
	}
	for i := range frame.regs {
		frame.regs[i] = value.Undefined
	}
	return it.run(frame)
}

// CallFunction invokes fn as an ordinary or constructor call: this is the
// receiver, args the argument list (padded with undefined if short of
// fn.ParamCount), and closure the lexical scope the function closed over.
func (it *Interpreter) CallFunction(fn *bytecode.Function, this value.Value, args []value.Value, closure *Scope) (value.Value, error) {
	if it.depth >= maxCallDepth {
		return value.Undefined, runtimeError(diag.KindRangeError, "Maximum call stack size exceeded")
	}
	it.depth++
	defer func() { it.depth-- }()

	regs := make([]value.Value, fn.NumRegisters)
	for i := range regs {
		regs[i] = value.Undefined
	}
	n := fn.ParamCount
	if n > len(args) {
		n = len(args)
	}
	copy(regs[:n], args[:n])

	frame := &Frame{
		fn:                fn,
		regs:              regs,
		scope:             NewEnclosedScope(closure),
		this:              this,
		finallyPendingEnd: -1,
	}
	if !fn.IsArrow {
		frame.scope.Declare("this", this)
	}

	if it.prof != nil {
		it.prof.RecordCall(fn)
		if it.tuner != nil {
			if it.prof.RequestTier(fn, tierBaseline) {
				it.tuner.CompileAsync(fn, tierBaseline)
			}
			if it.prof.ShouldOptimize(fn) && it.prof.RequestTier(fn, tierOptimizing) {
				it.tuner.CompileAsync(fn, tierOptimizing)
			}
		}
	}

	return it.run(frame)
}

// run is the main bytecode dispatch loop for one frame.
func (it *Interpreter) run(frame *Frame) (value.Value, error) {
	for {
		if frame.finallyPending != nil && frame.pc == frame.finallyPendingEnd {
			pending := frame.finallyPending
			frame.finallyPending = nil
			frame.finallyPendingEnd = -1
			if it.recover(frame, pending) {
				continue
			}
			return value.Undefined, pending
		}

		if frame.pc < 0 || frame.pc >= len(frame.fn.Code) {
			return value.Undefined, nil
		}
		ins := frame.fn.Code[frame.pc]
		op := ins.Op()
		pc := frame.pc
		frame.pc++

		var (
			result value.Value
			err    error
		)

		switch op {
		case bytecode.OpMove:
			frame.regs[ins.A()] = frame.regs[ins.B()]
		case bytecode.OpLoadConst:
			frame.regs[ins.A()] = frame.fn.Constants[ins.Bx()]
		case bytecode.OpLoadUndefined:
			frame.regs[ins.A()] = value.Undefined
		case bytecode.OpLoadNull:
			frame.regs[ins.A()] = value.Null
		case bytecode.OpLoadTrue:
			frame.regs[ins.A()] = value.Boolean(true)
		case bytecode.OpLoadFalse:
			frame.regs[ins.A()] = value.Boolean(false)
		case bytecode.OpLoadZero:
			frame.regs[ins.A()] = value.Number(0)

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod,
			bytecode.OpPow, bytecode.OpBitAnd, bytecode.OpBitOr, bytecode.OpBitXor,
			bytecode.OpShl, bytecode.OpShr, bytecode.OpUShr:
			err = it.execBinary(frame, ins, op)

		case bytecode.OpNeg, bytecode.OpNot, bytecode.OpBitNot:
			it.execUnary(frame, ins, op)

		case bytecode.OpEq, bytecode.OpNeq, bytecode.OpSEq, bytecode.OpSNeq,
			bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
			err = it.execCompare(frame, ins, op)

		case bytecode.OpTypeof:
			frame.regs[ins.A()] = value.String(value.TypeOf(frame.regs[ins.B()]))

		case bytecode.OpInstanceof:
			var b bool
			b, err = execInstanceof(frame.regs[ins.B()], frame.regs[ins.C()])
			frame.regs[ins.A()] = value.Boolean(b)

		case bytecode.OpIn:
			var b bool
			b, err = execIn(frame.regs[ins.B()], frame.regs[ins.C()])
			frame.regs[ins.A()] = value.Boolean(b)

		case bytecode.OpIsNullish:
			frame.regs[ins.A()] = value.Boolean(value.IsNullish(frame.regs[ins.B()]))

		case bytecode.OpDeclareScope:
			name := string(frame.fn.Constants[ins.Bx()].(value.String))
			frame.scope.Declare(name, frame.regs[ins.A()])

		case bytecode.OpGetScope:
			name := string(frame.fn.Constants[ins.Bx()].(value.String))
			v, ok := frame.scope.Get(name)
			if !ok {
				err = runtimeError(diag.KindReferenceError, name+" is not defined")
				break
			}
			frame.regs[ins.A()] = v

		case bytecode.OpSetScope:
			name := string(frame.fn.Constants[ins.Bx()].(value.String))
			v := frame.regs[ins.A()]
			if !frame.scope.Set(name, v) {
				if frame.fn.IsStrict {
					err = runtimeError(diag.KindReferenceError, name+" is not defined")
					break
				}
				frame.scope.root().Declare(name, v)
			}

		case bytecode.OpGetProp:
			err = it.getProp(frame, ins)
		case bytecode.OpSetProp:
			err = it.setProp(frame, ins)
		case bytecode.OpGetIndex:
			err = it.getIndex(frame, ins)
		case bytecode.OpSetIndex:
			err = it.setIndex(frame, ins)
		case bytecode.OpDeleteProp:
			err = it.deleteProp(frame, ins)
		case bytecode.OpArrayPush:
			err = arrayPush(frame, ins)

		case bytecode.OpNewObject:
			frame.regs[ins.A()] = value.NewObject(nil)
		case bytecode.OpNewArray:
			frame.regs[ins.A()] = value.NewArray(nil)
		case bytecode.OpNewFunction:
			inner := frame.fn.Inner[ins.Bx()]
			frame.regs[ins.A()] = makeClosure(frame, inner)
		case bytecode.OpNewClass:
			err = newClass(frame, ins)

		case bytecode.OpJump:
			if sbx := int(ins.SBx()); sbx < 0 {
				if it.prof != nil {
					it.prof.RecordLoopBackEdge(frame.fn, pc)
				}
				frame.pc = pc + sbx
			} else {
				frame.pc = pc + sbx
			}
		case bytecode.OpJumpIfFalse:
			taken := !value.ToBoolean(frame.regs[ins.A()])
			it.recordBranch(frame.fn, pc, taken)
			if taken {
				frame.pc = pc + int(ins.SBx())
			}
		case bytecode.OpJumpIfTrue:
			taken := value.ToBoolean(frame.regs[ins.A()])
			it.recordBranch(frame.fn, pc, taken)
			if taken {
				frame.pc = pc + int(ins.SBx())
			}

		case bytecode.OpCall:
			result, err = it.execCall(frame, ins)
			if err == nil {
				frame.regs[ins.A()] = result
			}
		case bytecode.OpNew:
			result, err = it.execNew(frame, ins)
			if err == nil {
				frame.regs[ins.A()] = result
			}

		case bytecode.OpReturn:
			return frame.regs[ins.A()], nil
		case bytecode.OpReturnUndefined:
			return value.Undefined, nil

		case bytecode.OpThrow:
			err = it.execThrow(frame.regs[ins.A()])

		case bytecode.OpPushTry, bytecode.OpPopTry, bytecode.OpNop:
			// No-op: the handler table (Function.Handlers) is the sole
			// mechanism driving try/catch/finally; the compiler never
			// actually emits these two.

		case bytecode.OpIterInit:
			err = iterInit(frame, ins)
		case bytecode.OpIterNext:
			var done bool
			done, err = iterNext(frame, ins)
			if err == nil && done {
				frame.pc = pc + int(ins.SBx())
			}

		default:
			err = &diag.InternalError{Reason: fmt.Sprintf("unhandled opcode %s", op)}
		}

		if err != nil {
			rtErr, ok := err.(*diag.RuntimeError)
			if !ok {
				return value.Undefined, err
			}
			frame.finallyPending = nil
			frame.pc = pc
			if !it.recover(frame, rtErr) {
				return value.Undefined, rtErr
			}
		}
	}
}

// recordBranch feeds the profiler's branch-taken ratio tracking for the
// conditional jump at pc.
func (it *Interpreter) recordBranch(fn *bytecode.Function, pc int, taken bool) {
	if it.prof == nil {
		return
	}
	it.prof.RecordBranch(fn, pc, taken)
}

// execThrow builds the RuntimeError a catch clause or the caller will
// see, unwrapping an object payload's .name/.message into the error's
// Kind/Message when present so a caught `err.message` and the engine's
// own diagnostic text agree.
func (it *Interpreter) execThrow(v value.Value) error {
	kind := diag.KindUserThrown
	message := value.ToString(v)
	if o, ok := v.(*value.Object); ok {
		if nameVal, _ := o.Get(value.StringKey("name")); nameVal != value.Undefined {
			if k, ok := nameVal.(value.String); ok {
				switch diag.RuntimeErrorKind(k) {
				case diag.KindTypeError, diag.KindReferenceError, diag.KindRangeError, diag.KindSyntaxError:
					kind = diag.RuntimeErrorKind(k)
				}
			}
		}
		if msgVal, _ := o.Get(value.StringKey("message")); msgVal != value.Undefined {
			message = value.ToString(msgVal)
		}
	}
	return &diag.RuntimeError{Kind: kind, Message: message, Payload: v}
}
