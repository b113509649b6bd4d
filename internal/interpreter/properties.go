package interpreter

import (
	"strconv"

	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/deopt"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/value"
)

// toPropertyKey converts a value to the key used for property lookup,
// per §3's rule that an array index and its decimal string denote the
// same slot (value.PropertyKey already normalizes on the string form).
func toPropertyKey(v value.Value) value.PropertyKey {
	if s, ok := v.(value.String); ok {
		return value.StringKey(string(s))
	}
	if sym, ok := v.(*value.Symbol); ok {
		return value.SymbolKey(sym)
	}
	return value.StringKey(value.ToString(v))
}

// arrayIndex reports whether v denotes a valid array element index.
func arrayIndex(v value.Value) (int, bool) {
	var s string
	switch t := v.(type) {
	case value.Number:
		f := float64(t)
		if f < 0 || f != float64(int(f)) {
			return 0, false
		}
		return int(f), true
	case value.String:
		s = string(t)
	default:
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// checkGuard consults the tuner's installed guard for fn at site, if any,
// against obj, deoptimizing on mismatch; with no tuner or no deoptimizer
// installed it does nothing. Per the documented scope cut, guard
// consultation only happens at OpGetProp sites: arithmetic and call
// instructions don't carry a Shape to speculate on the way property reads
// do, OpSetProp does not consult guards either, and wiring a guard into
// every opcode would add bulk for no functional benefit here.
func (it *Interpreter) checkGuard(fn *bytecode.Function, site int, obj *value.Object) {
	if it.tuner == nil || it.deopt == nil {
		return
	}
	guards, tier, ok := it.tuner.Guards(fn)
	if !ok || tier == 0 {
		return
	}
	g, ok := guards[site]
	if !ok {
		return
	}
	if !g.Satisfies(obj) {
		reason := deopt.ReasonTypeMismatch
		if g.Shape != nil && (obj.IsDictionaryMode() || obj.Shape() != g.Shape) {
			reason = deopt.ReasonShapeMismatch
		}
		it.deopt.Deoptimize(fn, deopt.Descriptor{Site: site, Reason: reason})
	}
}

// getProp implements OpGetProp: R(A) = R(B)[name of ICNames[C]].
func (it *Interpreter) getProp(frame *Frame, ins bytecode.Instruction) error {
	objVal := frame.regs[ins.B()]
	name := frame.fn.Constants[frame.fn.ICNames[ins.C()]].(value.String)
	key := value.StringKey(string(name))
	site := int(ins.C())

	obj, ok := objVal.(*value.Object)
	if !ok {
		if s, ok := objVal.(value.String); ok && string(name) == "length" {
			frame.regs[ins.A()] = value.Number(float64(len(s)))
			return nil
		}
		return runtimeError(diag.KindTypeError, "Cannot read properties of "+value.ToString(objVal)+" (reading '"+string(name)+"')")
	}

	it.checkGuard(frame.fn, site, obj)
	it.prof.RecordShape(frame.fn, site, obj.Shape())

	if obj.Class == value.ClassArray && string(name) == "length" {
		frame.regs[ins.A()] = value.Number(float64(len(obj.Elements)))
		return nil
	}
	if idx, ok := arrayIndex(name); ok && obj.Class == value.ClassArray {
		if idx >= 0 && idx < len(obj.Elements) {
			frame.regs[ins.A()] = obj.Elements[idx]
		} else {
			frame.regs[ins.A()] = value.Undefined
		}
		return nil
	}

	v, desc := obj.Get(key)
	if desc != nil && desc.IsAccessor {
		if desc.Get == nil {
			frame.regs[ins.A()] = value.Undefined
			return nil
		}
		result, err := it.callValue(desc.Get, objVal, nil)
		if err != nil {
			return err
		}
		frame.regs[ins.A()] = result
		return nil
	}
	frame.regs[ins.A()] = v
	return nil
}

// setProp implements OpSetProp: R(A)[name of ICNames[C]] = R(B).
func (it *Interpreter) setProp(frame *Frame, ins bytecode.Instruction) error {
	objVal := frame.regs[ins.A()]
	v := frame.regs[ins.B()]
	name := frame.fn.Constants[frame.fn.ICNames[ins.C()]].(value.String)
	key := value.StringKey(string(name))

	obj, ok := objVal.(*value.Object)
	if !ok {
		return runtimeError(diag.KindTypeError, "Cannot set properties of "+value.ToString(objVal))
	}

	if obj.Class == value.ClassArray {
		if idx, ok := arrayIndex(name); ok {
			growArray(obj, idx)
			obj.Elements[idx] = v
			return nil
		}
		if string(name) == "length" {
			n, ok := arrayIndex(v)
			if !ok {
				return runtimeError(diag.KindRangeError, "Invalid array length")
			}
			resizeArray(obj, n)
			return nil
		}
	}

	if _, desc := obj.Get(key); desc != nil && desc.IsAccessor {
		if desc.Set != nil {
			_, err := it.callValue(desc.Set, objVal, []value.Value{v})
			return err
		}
		return nil
	}
	obj.Set(key, v)
	return nil
}

// getIndex implements OpGetIndex: R(A) = R(B)[R(C)], a computed-key read.
func (it *Interpreter) getIndex(frame *Frame, ins bytecode.Instruction) error {
	objVal := frame.regs[ins.B()]
	keyVal := frame.regs[ins.C()]

	if s, ok := objVal.(value.String); ok {
		if idx, ok := arrayIndex(keyVal); ok {
			runes := []rune(string(s))
			if idx >= 0 && idx < len(runes) {
				frame.regs[ins.A()] = value.String(string(runes[idx]))
			} else {
				frame.regs[ins.A()] = value.Undefined
			}
			return nil
		}
	}

	obj, ok := objVal.(*value.Object)
	if !ok {
		return runtimeError(diag.KindTypeError, "Cannot read properties of "+value.ToString(objVal))
	}
	if obj.Class == value.ClassArray {
		if idx, ok := arrayIndex(keyVal); ok {
			if idx >= 0 && idx < len(obj.Elements) {
				frame.regs[ins.A()] = obj.Elements[idx]
			} else {
				frame.regs[ins.A()] = value.Undefined
			}
			return nil
		}
	}
	v, desc := obj.Get(toPropertyKey(keyVal))
	if desc != nil && desc.IsAccessor {
		if desc.Get == nil {
			frame.regs[ins.A()] = value.Undefined
			return nil
		}
		result, err := it.callValue(desc.Get, objVal, nil)
		if err != nil {
			return err
		}
		frame.regs[ins.A()] = result
		return nil
	}
	frame.regs[ins.A()] = v
	return nil
}

// setIndex implements OpSetIndex: R(A)[R(B)] = R(C).
func (it *Interpreter) setIndex(frame *Frame, ins bytecode.Instruction) error {
	objVal := frame.regs[ins.A()]
	keyVal := frame.regs[ins.B()]
	v := frame.regs[ins.C()]

	obj, ok := objVal.(*value.Object)
	if !ok {
		return runtimeError(diag.KindTypeError, "Cannot set properties of "+value.ToString(objVal))
	}
	if obj.Class == value.ClassArray {
		if idx, ok := arrayIndex(keyVal); ok {
			growArray(obj, idx)
			obj.Elements[idx] = v
			return nil
		}
	}
	key := toPropertyKey(keyVal)
	if _, desc := obj.Get(key); desc != nil && desc.IsAccessor {
		if desc.Set != nil {
			_, err := it.callValue(desc.Set, objVal, []value.Value{v})
			return err
		}
		return nil
	}
	obj.Set(key, v)
	return nil
}

// deleteProp implements OpDeleteProp: R(A) = delete R(B)[R(C)].
func (it *Interpreter) deleteProp(frame *Frame, ins bytecode.Instruction) error {
	objVal := frame.regs[ins.B()]
	keyVal := frame.regs[ins.C()]
	obj, ok := objVal.(*value.Object)
	if !ok {
		frame.regs[ins.A()] = value.Boolean(true)
		return nil
	}
	if obj.Class == value.ClassArray {
		if idx, ok := arrayIndex(keyVal); ok && idx >= 0 && idx < len(obj.Elements) {
			obj.Elements[idx] = value.Undefined
			frame.regs[ins.A()] = value.Boolean(true)
			return nil
		}
	}
	frame.regs[ins.A()] = value.Boolean(obj.Delete(toPropertyKey(keyVal)))
	return nil
}

// arrayPush implements OpArrayPush: append R(B) to array R(A).
func arrayPush(frame *Frame, ins bytecode.Instruction) error {
	objVal := frame.regs[ins.A()]
	obj, ok := objVal.(*value.Object)
	if !ok || obj.Class != value.ClassArray {
		return runtimeError(diag.KindTypeError, "Array push target is not an array")
	}
	obj.Elements = append(obj.Elements, frame.regs[ins.B()])
	return nil
}

func growArray(obj *value.Object, idx int) {
	if idx < len(obj.Elements) {
		return
	}
	grown := make([]value.Value, idx+1)
	copy(grown, obj.Elements)
	for i := len(obj.Elements); i < idx; i++ {
		grown[i] = value.Undefined
	}
	obj.Elements = grown
}

func resizeArray(obj *value.Object, n int) {
	if n <= len(obj.Elements) {
		obj.Elements = obj.Elements[:n]
		return
	}
	growArray(obj, n-1)
}
