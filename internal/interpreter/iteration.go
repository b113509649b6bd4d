package interpreter

import (
	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/value"
)

// iterState is the runtime iterator OpIterInit produces and OpIterNext
// consumes. It implements value.Value minimally so it can occupy a
// register like any other runtime value, but it is never constructed
// from or exposed to user code.
type iterState struct {
	keys []value.Value
	idx  int
}

func (*iterState) Kind() value.Kind  { return value.KindUndefined }
func (*iterState) String() string    { return "[iterator]" }

// iterInit implements OpIterInit: R(A) = iterator over R(B), Of flag in
// C. Per the documented for-in/for-of scope cuts: for-in enumerates only
// R(B)'s own keys (no prototype-chain walk, unlike real JS for-in);
// for-of only iterates ClassArray objects over a snapshot of Elements,
// since no Symbol.iterator protocol exists in this engine.
func iterInit(frame *Frame, ins bytecode.Instruction) error {
	src := frame.regs[ins.B()]
	ofFlag := ins.C() != 0

	var keys []value.Value
	if ofFlag {
		obj, ok := src.(*value.Object)
		if !ok || obj.Class != value.ClassArray {
			return runtimeError(diag.KindTypeError, value.ToString(src)+" is not iterable")
		}
		keys = make([]value.Value, len(obj.Elements))
		copy(keys, obj.Elements)
	} else {
		obj, ok := src.(*value.Object)
		if !ok {
			keys = nil
		} else {
			for _, k := range obj.OwnKeys() {
				if k.IsSymbol() {
					continue
				}
				keys = append(keys, value.String(k.String()))
			}
		}
	}
	frame.regs[ins.A()] = &iterState{keys: keys}
	return nil
}

// iterNext implements OpIterNext: R(A) = iterator.next(), reading the
// live iterator from R(A-1) per the A-1 companion-register convention
// OpIterInit/the compiler's register allocation establishes (see
// opcode.go). Returns done=true (and sets the sBx jump) once exhausted.
func iterNext(frame *Frame, ins bytecode.Instruction) (bool, error) {
	it, ok := frame.regs[ins.A()-1].(*iterState)
	if !ok {
		return false, &diag.InternalError{Reason: "OpIterNext with no preceding OpIterInit"}
	}
	if it.idx >= len(it.keys) {
		return true, nil
	}
	frame.regs[ins.A()] = it.keys[it.idx]
	it.idx++
	return false, nil
}
