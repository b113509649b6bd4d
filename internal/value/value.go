// Package value implements the AeroJS runtime value and object model:
// the tagged Value union, the Object property table, and the Shape
// (hidden class) used to give inline caches and the JIT a cheap
// identity for an object's property layout.
//
// The teacher's DWScript runtime (internal/interp/value.go) models its
// values the same general way — a small interface implemented by many
// concrete value structs, plus Go-side coercion helpers — but has no
// hidden-class concept at all: DWScript is statically typed, so a
// record's layout never changes shape at runtime. Shape has no teacher
// analogue; it is grounded directly in the JS object model the engine
// targets (see original_source's object/shape headers).
package value

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which alternative of the tagged union a Value holds.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindSymbol
	KindBigInt
	KindObject
	KindArray
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindBigInt:
		return "bigint"
	case KindObject, KindArray, KindFunction:
		return "object"
	default:
		return "unknown"
	}
}

// Value is implemented by every runtime value. Object, Array and
// Function are all represented by *Object (distinguished by its Class
// field) so the property-table and shape machinery is shared between
// them, mirroring how V8-family engines unify arrays and functions with
// plain objects.
type Value interface {
	Kind() Kind
	String() string
}

// Undefined is the engine-wide singleton for the `undefined` value.
type undefinedValue struct{}

func (undefinedValue) Kind() Kind     { return KindUndefined }
func (undefinedValue) String() string { return "undefined" }

var Undefined Value = undefinedValue{}

// Null is the engine-wide singleton for the `null` value.
type nullValue struct{}

func (nullValue) Kind() Kind     { return KindNull }
func (nullValue) String() string { return "null" }

var Null Value = nullValue{}

// Boolean is a JS boolean.
type Boolean bool

func (Boolean) Kind() Kind { return KindBoolean }
func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number is a JS number: an IEEE-754 double, per §3 "Data model".
type Number float64

func (Number) Kind() Kind { return KindNumber }
func (n Number) String() string {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "0" // -0 prints as "0"; IsNegativeZero distinguishes it internally
		}
		return "0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// IsNegativeZero reports whether n is the distinguished -0 value; §3 and
// §4.5 both require this to be tracked separately from ordinary zero.
func (n Number) IsNegativeZero() bool {
	return float64(n) == 0 && math.Signbit(float64(n))
}

// String is a JS string.
type String string

func (String) Kind() Kind     { return KindString }
func (s String) String() string { return string(s) }

// Symbol is a unique, non-string property key. Identity is pointer
// identity: two Symbols with the same Description are distinct.
type Symbol struct {
	Description string
}

func NewSymbol(description string) *Symbol { return &Symbol{Description: description} }

func (*Symbol) Kind() Kind { return KindSymbol }
func (s *Symbol) String() string {
	return fmt.Sprintf("Symbol(%s)", s.Description)
}

// BigInt is an arbitrary-precision JS bigint.
type BigInt struct{ *big.Int }

func NewBigInt(i *big.Int) BigInt { return BigInt{i} }

func (BigInt) Kind() Kind       { return KindBigInt }
func (b BigInt) String() string { return b.Int.String() }

// ---- Type predicates, per §3 "Values expose type predicates" -------------

func IsNullish(v Value) bool { return v.Kind() == KindUndefined || v.Kind() == KindNull }
func IsCallable(v Value) bool {
	o, ok := v.(*Object)
	return ok && o.Class == ClassFunction && o.Callable != nil
}
func IsArrayValue(v Value) bool {
	o, ok := v.(*Object)
	return ok && o.Class == ClassArray
}

// ---- Coercions, per §3 -----------------------------------------------------

// ToBoolean implements the abstract ToBoolean operation.
func ToBoolean(v Value) bool {
	switch t := v.(type) {
	case undefinedValue, nullValue:
		return false
	case Boolean:
		return bool(t)
	case Number:
		f := float64(t)
		return f != 0 && !math.IsNaN(f)
	case String:
		return len(t) > 0
	case BigInt:
		return t.Sign() != 0
	default:
		return true // objects, arrays, functions, symbols
	}
}

// ToNumber implements the abstract ToNumber operation. BigInt has no
// implicit ToNumber conversion in real JS (it throws a TypeError); the
// interpreter checks for BigInt explicitly before calling ToNumber.
func ToNumber(v Value) float64 {
	switch t := v.(type) {
	case undefinedValue:
		return math.NaN()
	case nullValue:
		return 0
	case Boolean:
		if t {
			return 1
		}
		return 0
	case Number:
		return float64(t)
	case String:
		s := strings.TrimSpace(string(t))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// ToString implements the abstract ToString operation for primitives;
// object-to-string (via toString/Symbol.toPrimitive) is an interpreter
// concern since it may invoke user code.
func ToString(v Value) string {
	switch t := v.(type) {
	case undefinedValue:
		return "undefined"
	case nullValue:
		return "null"
	default:
		return t.String()
	}
}

// ToInt32 implements the abstract ToInt32 operation.
func ToInt32(v Value) int32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	m := math.Mod(math.Trunc(f), 4294967296)
	if m < 0 {
		m += 4294967296
	}
	if m >= 2147483648 {
		m -= 4294967296
	}
	return int32(m)
}

// ToUint32 implements the abstract ToUint32 operation.
func ToUint32(v Value) uint32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	m := math.Mod(math.Trunc(f), 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m)
}

// StrictEquals implements `===`: no type coercion, NaN !== NaN, and -0
// === 0, per §3/§8.
func StrictEquals(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case undefinedValue, nullValue:
		return true
	case Boolean:
		return av == b.(Boolean)
	case Number:
		bf := b.(Number)
		return float64(av) == float64(bf)
	case String:
		return av == b.(String)
	case BigInt:
		return av.Cmp(b.(BigInt).Int) == 0
	case *Symbol:
		return av == b.(*Symbol)
	case *Object:
		return av == b.(*Object)
	default:
		return false
	}
}

// Equals implements `==`, the loose-equality abstract algorithm.
// StrictEquals(a, b) always implies Equals(a, b), per §8.
func Equals(a, b Value) bool {
	if a.Kind() == b.Kind() {
		return StrictEquals(a, b)
	}
	if IsNullish(a) && IsNullish(b) {
		return true
	}
	if IsNullish(a) || IsNullish(b) {
		return false
	}
	// Both sides are primitives/objects of different kinds: coerce
	// toward Number, except when an Object is involved, which requires
	// ToPrimitive and is handled by the interpreter calling back in.
	if _, aIsObj := a.(*Object); aIsObj {
		return false // interpreter replaces this path after ToPrimitive
	}
	if _, bIsObj := b.(*Object); bIsObj {
		return false
	}
	if ab, ok := a.(BigInt); ok {
		return ab.Int.Cmp(big.NewInt(int64(ToNumber(b)))) == 0
	}
	if bb, ok := b.(BigInt); ok {
		return bb.Int.Cmp(big.NewInt(int64(ToNumber(a)))) == 0
	}
	return ToNumber(a) == ToNumber(b)
}

// TypeOf implements the `typeof` operator.
func TypeOf(v Value) string {
	if IsCallable(v) {
		return "function"
	}
	return v.Kind().String()
}

// sortedKeyStrings is a small helper used by object enumeration to put
// array-index keys first in ascending numeric order, per the
// OrdinaryOwnPropertyKeys integer-index-first rule.
func sortedKeyStrings(keys []string) []string {
	sort.SliceStable(keys, func(i, j int) bool {
		ii, iok := indexOf(keys[i])
		jj, jok := indexOf(keys[j])
		if iok && jok {
			return ii < jj
		}
		return iok && !jok
	})
	return keys
}

func indexOf(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] == '0' {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
