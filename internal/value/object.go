package value

import "fmt"

// PropertyKey is either a string name or a Symbol identity. Per §3, an
// array-index key and its decimal-string form denote the same slot: "0"
// and the index 0 are the same PropertyKey.
type PropertyKey struct {
	name string
	sym  *Symbol
}

func StringKey(s string) PropertyKey { return PropertyKey{name: s} }
func SymbolKey(s *Symbol) PropertyKey { return PropertyKey{sym: s} }

func (k PropertyKey) IsSymbol() bool { return k.sym != nil }
func (k PropertyKey) String() string {
	if k.sym != nil {
		return k.sym.String()
	}
	return k.name
}

// ObjectClass distinguishes the JS-visible "kind" of an Object beyond
// its shared property-table implementation.
type ObjectClass uint8

const (
	ClassOrdinary ObjectClass = iota
	ClassArray
	ClassFunction
)

// PropertyDescriptor is a data or accessor property, per §3.
type PropertyDescriptor struct {
	Value      Value // valid when !IsAccessor
	Get        *Object
	Set        *Object
	IsAccessor bool
	Writable   bool
	Enumerable bool
	Configurable bool
}

// Callable is the function-specific payload of a ClassFunction Object.
// Body/Closure are stored as `any` so internal/value has no import-cycle
// dependency on internal/bytecode (which compiles a Function) or
// internal/interpreter (which owns the closure's lexical Scope type);
// the interpreter type-asserts them back on call.
type Callable struct {
	Name       string
	ParamCount int
	IsNative   bool
	Native     func(this Value, args []Value) (Value, error)
	Body       any // *bytecode.Function for non-native callables
	Closure    any // interpreter-owned lexical scope
}

// Object is the single heap representation behind KindObject, KindArray
// and KindFunction: a property table plus a Shape used as a fast-path
// layout identity for inline caches and the JIT, per §3/§9. Arrays carry
// dense Elements alongside the property table for named/extra
// properties; functions carry a Callable.
type Object struct {
	Class      ObjectClass
	shape      *Shape
	props      map[PropertyKey]*PropertyDescriptor
	ownOrder   []PropertyKey
	dictionary bool // true once a delete has made Shape tracking unreliable
	Proto      *Object
	Extensible bool

	Elements []Value // dense storage for ClassArray; len(Elements) is array .length
	Callable *Callable
}

// NewObject creates a plain ordinary object with the given prototype
// (nil for no prototype) attached to the process-wide shape registry.
func NewObject(proto *Object) *Object {
	return &Object{
		Class:      ClassOrdinary,
		shape:      RootShape(),
		props:      make(map[PropertyKey]*PropertyDescriptor),
		Proto:      proto,
		Extensible: true,
	}
}

// NewArray creates an array object with the given initial elements.
func NewArray(elements []Value) *Object {
	o := NewObject(nil)
	o.Class = ClassArray
	o.Elements = elements
	return o
}

// NewFunction creates a function object wrapping c.
func NewFunction(c *Callable, proto *Object) *Object {
	o := NewObject(proto)
	o.Class = ClassFunction
	o.Callable = c
	return o
}

// Kind returns the precise tagged-union Kind (Object, Array, or
// Function) for o, since the three JS-visible kinds share this Go type.
func (o *Object) Kind() Kind {
	switch o.Class {
	case ClassArray:
		return KindArray
	case ClassFunction:
		return KindFunction
	default:
		return KindObject
	}
}

func (o *Object) String() string {
	switch o.Class {
	case ClassArray:
		return fmt.Sprintf("[object Array(%d)]", len(o.Elements))
	case ClassFunction:
		name := ""
		if o.Callable != nil {
			name = o.Callable.Name
		}
		return fmt.Sprintf("function %s() { [native code] }", name)
	default:
		return "[object Object]"
	}
}

// Shape returns the object's current hidden-class shape. It is only a
// valid fast-path identity while !dictionary; callers doing IC lookups
// must check IsDictionaryMode first.
func (o *Object) Shape() *Shape { return o.shape }

// IsDictionaryMode reports whether o has fallen out of shape tracking
// (a property was deleted), per the inline-cache "megamorphic" fallback.
func (o *Object) IsDictionaryMode() bool { return o.dictionary }

// HasOwnProperty reports whether key is an own property of o.
func (o *Object) HasOwnProperty(key PropertyKey) bool {
	_, ok := o.props[key]
	return ok
}

// GetOwn returns o's own property descriptor for key, if any.
func (o *Object) GetOwn(key PropertyKey) (*PropertyDescriptor, bool) {
	d, ok := o.props[key]
	return d, ok
}

// Get walks the prototype chain per OrdinaryGet, returning Undefined
// when the property is absent anywhere in the chain. Accessor
// properties are not invoked here (that requires calling back into the
// interpreter); callers must check IsAccessor themselves when needed.
func (o *Object) Get(key PropertyKey) (Value, *PropertyDescriptor) {
	for cur := o; cur != nil; cur = cur.Proto {
		if d, ok := cur.props[key]; ok {
			return d.Value, d
		}
	}
	return Undefined, nil
}

// DefineOwnProperty installs or replaces an own property, creating the
// shape transition on first definition of a new key (per §9's
// process-wide shape registry). Returns false if o is non-extensible
// and key is not already present.
func (o *Object) DefineOwnProperty(key PropertyKey, desc PropertyDescriptor) bool {
	if _, exists := o.props[key]; !exists {
		if !o.Extensible {
			return false
		}
		o.ownOrder = append(o.ownOrder, key)
		if !o.dictionary {
			o.shape = o.shape.Transition(key)
		}
	}
	d := desc
	o.props[key] = &d
	return true
}

// Set performs an ordinary data-property assignment, creating the
// property as writable/enumerable/configurable if absent. Non-
// configurable/non-writable data properties reject the write per §3's
// "non-configurable can't change kind" invariant (the caller surfaces
// this as a silent no-op in sloppy mode or a TypeError in strict mode;
// internal/value stays policy-free and just reports the outcome).
func (o *Object) Set(key PropertyKey, v Value) bool {
	if d, ok := o.props[key]; ok {
		if d.IsAccessor || !d.Writable {
			return false
		}
		d.Value = v
		return true
	}
	return o.DefineOwnProperty(key, PropertyDescriptor{
		Value: v, Writable: true, Enumerable: true, Configurable: true,
	})
}

// Delete removes an own property. Once any property is deleted the
// object falls into dictionary mode: its Shape no longer changes, so
// shape-keyed inline caches must treat it as megamorphic.
func (o *Object) Delete(key PropertyKey) bool {
	d, ok := o.props[key]
	if !ok {
		return true
	}
	if !d.Configurable {
		return false
	}
	delete(o.props, key)
	for i, k := range o.ownOrder {
		if k == key {
			o.ownOrder = append(o.ownOrder[:i], o.ownOrder[i+1:]...)
			break
		}
	}
	o.dictionary = true
	return true
}

// OwnKeys returns o's own property keys in insertion order (array
// indices first in ascending order, per OrdinaryOwnPropertyKeys).
func (o *Object) OwnKeys() []PropertyKey {
	strs := make([]string, 0, len(o.ownOrder))
	bySym := make([]PropertyKey, 0)
	byStr := make(map[string]PropertyKey, len(o.ownOrder))
	for _, k := range o.ownOrder {
		if k.IsSymbol() {
			bySym = append(bySym, k)
			continue
		}
		strs = append(strs, k.name)
		byStr[k.name] = k
	}
	strs = sortedKeyStrings(strs)
	out := make([]PropertyKey, 0, len(o.ownOrder))
	for _, s := range strs {
		out = append(out, byStr[s])
	}
	out = append(out, bySym...)
	return out
}

// SetPrototype reassigns o's prototype, rejecting the change (returning
// an error) if it would introduce a cycle in the prototype chain, per
// §8 scenario 6: "a.__proto__=b; b.__proto__=a" must reject the second
// assignment and leave b's prototype unchanged. internal/value reports
// the invariant violation as a plain error; the interpreter is
// responsible for surfacing it as a TypeError RuntimeError, since
// RuntimeError.Payload is a value.Value and diag must not import value.
func (o *Object) SetPrototype(proto *Object) error {
	for cur := proto; cur != nil; cur = cur.Proto {
		if cur == o {
			return fmt.Errorf("cyclic __proto__ chain rejected")
		}
	}
	o.Proto = proto
	return nil
}
