package interpreter

import (
	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/value"
)

// callValue invokes a callable value with the given receiver and
// arguments, dispatching to a native Go function or recursing into the
// bytecode interpreter, per the call-stack-is-the-Go-stack model (see
// DESIGN.md). Accessor invocation (getProp/setProp) and OpCall/OpNew both
// funnel through here.
func (it *Interpreter) callValue(callee value.Value, this value.Value, args []value.Value) (value.Value, error) {
	obj, ok := callee.(*value.Object)
	if !ok || obj.Class != value.ClassFunction || obj.Callable == nil {
		return value.Undefined, runtimeError(diag.KindTypeError, value.ToString(callee)+" is not a function")
	}
	c := obj.Callable
	if c.IsNative {
		v, err := c.Native(this, args)
		if err != nil {
			if _, ok := err.(*diag.RuntimeError); ok {
				return value.Undefined, err
			}
			return value.Undefined, runtimeError(diag.KindTypeError, err.Error())
		}
		return v, nil
	}
	fn, ok := c.Body.(*bytecode.Function)
	if !ok {
		return value.Undefined, &diag.InternalError{Reason: "native-less callable missing bytecode body"}
	}
	closure, _ := c.Closure.(*Scope)
	return it.CallFunction(fn, this, args, closure)
}

// execCall implements OpCall: R(A) = R(A)(R(A+1)..R(A+B-1)), this = R(A-1).
func (it *Interpreter) execCall(frame *Frame, ins bytecode.Instruction) (value.Value, error) {
	calleeReg := ins.A()
	this := frame.regs[calleeReg-1]
	callee := frame.regs[calleeReg]
	argc := int(ins.B()) - 1
	args := make([]value.Value, argc)
	for i := 0; i < argc; i++ {
		args[i] = frame.regs[int(calleeReg)+1+i]
	}
	if obj, ok := callee.(*value.Object); ok {
		it.prof.RecordCallSite(frame.fn, int(ins.C()), obj)
	}
	return it.callValue(callee, this, args)
}

// execNew implements OpNew: R(A) = new R(A)(R(A+1)..R(A+B-1)).
func (it *Interpreter) execNew(frame *Frame, ins bytecode.Instruction) (value.Value, error) {
	calleeReg := ins.A()
	ctorVal := frame.regs[calleeReg]
	ctor, ok := ctorVal.(*value.Object)
	if !ok || ctor.Class != value.ClassFunction {
		return value.Undefined, runtimeError(diag.KindTypeError, value.ToString(ctorVal)+" is not a constructor")
	}
	argc := int(ins.B()) - 1
	args := make([]value.Value, argc)
	for i := 0; i < argc; i++ {
		args[i] = frame.regs[int(calleeReg)+1+i]
	}

	instance := value.NewObject(ctor)
	result, err := it.callValue(ctorVal, instance, args)
	if err != nil {
		return value.Undefined, err
	}
	if ro, ok := result.(*value.Object); ok {
		return ro, nil
	}
	return instance, nil
}

// makeClosure wraps inner together with frame's current lexical scope
// into a callable function value, implementing OpNewFunction.
func makeClosure(frame *Frame, inner *bytecode.Function) value.Value {
	c := &value.Callable{
		Name:       inner.Name,
		ParamCount: inner.ParamCount,
		Body:       inner,
		Closure:    frame.scope,
	}
	return value.NewFunction(c, nil)
}

// newClass implements OpNewClass: turns the constructor closure already
// in R(A) into a class by linking it to its superclass's prototype chain
// when C != 0, per the extends clause. Methods are attached directly to
// the constructor object by preceding OpSetProp instructions (see
// compileClassValue), so there is no separate .prototype object to wire
// up here.
func newClass(frame *Frame, ins bytecode.Instruction) error {
	if ins.C() == 0 {
		return nil
	}
	ctorVal := frame.regs[ins.A()]
	superVal := frame.regs[ins.B()]
	ctor, ok := ctorVal.(*value.Object)
	if !ok {
		return &diag.InternalError{Reason: "OpNewClass target is not a function object"}
	}
	super, ok := superVal.(*value.Object)
	if !ok {
		return runtimeError(diag.KindTypeError, "Class extends value is not a constructor")
	}
	if err := ctor.SetPrototype(super); err != nil {
		return runtimeError(diag.KindTypeError, err.Error())
	}
	return nil
}
