package interpreter

import (
	"math"
	"math/big"

	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/value"
)

// toDisplayString stringifies v for string concatenation and the loose-
// equality object fallback below. Real ToPrimitive (valueOf/
// Symbol.toPrimitive invocation) would call back into user code; AeroJS
// settles for Object.String()'s fixed "[object Object]"/array rendering,
// a documented simplification given no builtin library is in scope.
func toDisplayString(v value.Value) string {
	if o, ok := v.(*value.Object); ok {
		return o.String()
	}
	return value.ToString(v)
}

// execBinary implements the arithmetic/bitwise opcodes. Per compileBinary,
// every binary instruction is ABC(op, a, b, c) with a == b (the result
// overwrites the left operand's register) and c the right operand.
func (it *Interpreter) execBinary(frame *Frame, ins bytecode.Instruction, op bytecode.OpCode) error {
	left := frame.regs[ins.B()]
	right := frame.regs[ins.C()]
	site := int(ins.A())

	var result value.Value
	switch op {
	case bytecode.OpAdd:
		switch {
		case isString(left) || isString(right):
			result = value.String(toDisplayString(left) + toDisplayString(right))
		case isBigInt(left) || isBigInt(right):
			lb, lok := left.(value.BigInt)
			rb, rok := right.(value.BigInt)
			if !lok || !rok {
				return runtimeError(diag.KindTypeError, "Cannot mix BigInt and other types")
			}
			result = value.NewBigInt(new(big.Int).Add(lb.Int, rb.Int))
		default:
			result = value.Number(value.ToNumber(left) + value.ToNumber(right))
		}
	case bytecode.OpSub:
		result = value.Number(value.ToNumber(left) - value.ToNumber(right))
	case bytecode.OpMul:
		result = value.Number(value.ToNumber(left) * value.ToNumber(right))
	case bytecode.OpDiv:
		result = value.Number(value.ToNumber(left) / value.ToNumber(right))
	case bytecode.OpMod:
		result = value.Number(math.Mod(value.ToNumber(left), value.ToNumber(right)))
	case bytecode.OpPow:
		result = value.Number(math.Pow(value.ToNumber(left), value.ToNumber(right)))
	case bytecode.OpBitAnd:
		result = value.Number(float64(value.ToInt32(left) & value.ToInt32(right)))
	case bytecode.OpBitOr:
		result = value.Number(float64(value.ToInt32(left) | value.ToInt32(right)))
	case bytecode.OpBitXor:
		result = value.Number(float64(value.ToInt32(left) ^ value.ToInt32(right)))
	case bytecode.OpShl:
		result = value.Number(float64(value.ToInt32(left) << (value.ToUint32(right) & 31)))
	case bytecode.OpShr:
		result = value.Number(float64(value.ToInt32(left) >> (value.ToUint32(right) & 31)))
	case bytecode.OpUShr:
		result = value.Number(float64(value.ToUint32(left) >> (value.ToUint32(right) & 31)))
	}
	frame.regs[ins.A()] = result
	it.prof.RecordType(frame.fn, site, result)
	return nil
}

func isString(v value.Value) bool { _, ok := v.(value.String); return ok }
func isBigInt(v value.Value) bool { _, ok := v.(value.BigInt); return ok }

// execUnary implements NEG/NOT/BITNOT, all emitted as ABC(op,r,r,0).
func (it *Interpreter) execUnary(frame *Frame, ins bytecode.Instruction, op bytecode.OpCode) {
	v := frame.regs[ins.B()]
	var result value.Value
	switch op {
	case bytecode.OpNeg:
		result = value.Number(-value.ToNumber(v))
	case bytecode.OpNot:
		result = value.Boolean(!value.ToBoolean(v))
	case bytecode.OpBitNot:
		result = value.Number(float64(^value.ToInt32(v)))
	}
	frame.regs[ins.A()] = result
}

// execCompare implements EQ/NEQ/SEQ/SNEQ/LT/LE/GT/GE, same a==b operand
// convention as execBinary.
func (it *Interpreter) execCompare(frame *Frame, ins bytecode.Instruction, op bytecode.OpCode) error {
	left := frame.regs[ins.B()]
	right := frame.regs[ins.C()]

	var result bool
	var err error
	switch op {
	case bytecode.OpSEq:
		result = value.StrictEquals(left, right)
	case bytecode.OpSNeq:
		result = !value.StrictEquals(left, right)
	case bytecode.OpEq:
		result, err = it.looseEquals(left, right)
	case bytecode.OpNeq:
		var eq bool
		eq, err = it.looseEquals(left, right)
		result = !eq
	case bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
		result, err = relationalCompare(left, right, op)
	}
	if err != nil {
		return err
	}
	frame.regs[ins.A()] = value.Boolean(result)
	return nil
}

// looseEquals extends value.Equals with the object/ToPrimitive case it
// explicitly punts on. Without a valueOf/Symbol.toPrimitive call-back
// into user code (out of scope), an object compares loosely equal to a
// primitive by falling back to Object.String(), and to another object
// only by identity.
func (it *Interpreter) looseEquals(a, b value.Value) (bool, error) {
	if value.Equals(a, b) {
		return true, nil
	}
	ao, aIsObj := a.(*value.Object)
	bo, bIsObj := b.(*value.Object)
	switch {
	case aIsObj && bIsObj:
		return ao == bo, nil
	case aIsObj:
		return value.Equals(value.String(ao.String()), b), nil
	case bIsObj:
		return value.Equals(a, value.String(bo.String())), nil
	default:
		return false, nil
	}
}

// relationalCompare implements the abstract relational comparison: string
// comparison when both sides are strings, numeric comparison (with NaN
// always false) otherwise.
func relationalCompare(a, b value.Value, op bytecode.OpCode) (bool, error) {
	as, aIsStr := a.(value.String)
	bs, bIsStr := b.(value.String)
	if aIsStr && bIsStr {
		switch op {
		case bytecode.OpLt:
			return as < bs, nil
		case bytecode.OpLe:
			return as <= bs, nil
		case bytecode.OpGt:
			return as > bs, nil
		default:
			return as >= bs, nil
		}
	}
	af, bf := value.ToNumber(a), value.ToNumber(b)
	if math.IsNaN(af) || math.IsNaN(bf) {
		return false, nil
	}
	switch op {
	case bytecode.OpLt:
		return af < bf, nil
	case bytecode.OpLe:
		return af <= bf, nil
	case bytecode.OpGt:
		return af > bf, nil
	default:
		return af >= bf, nil
	}
}

// execInstanceof walks obj's prototype chain looking for ctor's identity,
// matching the model the compiler's class codegen already commits to: a
// class's methods live directly on the constructor object (no separate
// .prototype indirection), and `new` sets the instance's Proto straight
// to the constructor, so "is-a" is exactly prototype-chain membership.
func execInstanceof(obj, ctorVal value.Value) (bool, error) {
	ctor, ok := ctorVal.(*value.Object)
	if !ok || ctor.Class != value.ClassFunction {
		return false, runtimeError(diag.KindTypeError, "Right-hand side of 'instanceof' is not callable")
	}
	o, ok := obj.(*value.Object)
	if !ok {
		return false, nil
	}
	for cur := o.Proto; cur != nil; cur = cur.Proto {
		if cur == ctor {
			return true, nil
		}
	}
	return false, nil
}

// execIn implements `key in obj`, walking the prototype chain for own
// properties and, for arrays, dense element indices.
func execIn(keyVal, objVal value.Value) (bool, error) {
	obj, ok := objVal.(*value.Object)
	if !ok {
		return false, runtimeError(diag.KindTypeError, "Cannot use 'in' operator to search for a property in a non-object")
	}
	key := toPropertyKey(keyVal)
	for cur := obj; cur != nil; cur = cur.Proto {
		if cur.HasOwnProperty(key) {
			return true, nil
		}
	}
	if obj.Class == value.ClassArray {
		if idx, ok := arrayIndex(keyVal); ok && idx >= 0 && idx < len(obj.Elements) {
			return true, nil
		}
	}
	return false, nil
}
