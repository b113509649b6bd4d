package value

import (
	"math"
	"testing"
)

func TestToBoolean(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Undefined, false},
		{Null, false},
		{Number(0), false},
		{Number(1), true},
		{String(""), false},
		{String("x"), true},
		{Boolean(false), false},
	}
	for _, c := range cases {
		if got := ToBoolean(c.v); got != c.want {
			t.Errorf("ToBoolean(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestStrictEqualsNaNAndNegativeZero(t *testing.T) {
	nan := Number(nanValue())
	if StrictEquals(nan, nan) {
		t.Fatalf("NaN === NaN must be false")
	}
	negZero := Number(math.Copysign(0, -1))
	if !StrictEquals(negZero, Number(0)) {
		t.Fatalf("-0 === 0 must be true")
	}
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}

func TestObjectGetSetPrototypeChain(t *testing.T) {
	proto := NewObject(nil)
	proto.Set(StringKey("greeting"), String("hi"))

	child := NewObject(proto)
	v, _ := child.Get(StringKey("greeting"))
	if v != String("hi") {
		t.Fatalf("expected inherited property, got %v", v)
	}

	child.Set(StringKey("greeting"), String("yo"))
	v, _ = child.Get(StringKey("greeting"))
	if v != String("yo") {
		t.Fatalf("expected own property to shadow prototype, got %v", v)
	}
}

func TestSetPrototypeRejectsCycle(t *testing.T) {
	a := NewObject(nil)
	b := NewObject(nil)

	if err := a.SetPrototype(b); err != nil {
		t.Fatalf("a.__proto__ = b should succeed: %v", err)
	}
	if err := b.SetPrototype(a); err == nil {
		t.Fatalf("b.__proto__ = a should be rejected as a cycle")
	}
	if b.Proto != nil {
		t.Fatalf("rejected assignment must leave b's prototype unchanged, got %v", b.Proto)
	}
}

func TestShapeTransitionsAreShared(t *testing.T) {
	o1 := NewObject(nil)
	o2 := NewObject(nil)

	o1.Set(StringKey("x"), Number(1))
	o2.Set(StringKey("x"), Number(2))

	if o1.Shape() != o2.Shape() {
		t.Fatalf("objects with the same property-addition history should share a shape")
	}

	o1.Set(StringKey("y"), Number(3))
	if o1.Shape() == o2.Shape() {
		t.Fatalf("adding a distinct property should transition to a distinct shape")
	}
}

func TestDeleteEntersDictionaryMode(t *testing.T) {
	o := NewObject(nil)
	o.Set(StringKey("a"), Number(1))
	if o.IsDictionaryMode() {
		t.Fatalf("fresh object should not be in dictionary mode")
	}
	o.Delete(StringKey("a"))
	if !o.IsDictionaryMode() {
		t.Fatalf("deleting a property should enter dictionary mode")
	}
}

func TestOwnKeysOrdersArrayIndicesFirst(t *testing.T) {
	o := NewObject(nil)
	o.Set(StringKey("b"), Number(1))
	o.Set(StringKey("2"), Number(1))
	o.Set(StringKey("0"), Number(1))
	o.Set(StringKey("a"), Number(1))
	o.Set(StringKey("1"), Number(1))

	keys := o.OwnKeys()
	want := []string{"0", "1", "2", "b", "a"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range keys {
		if k.String() != want[i] {
			t.Fatalf("key %d: expected %q, got %q", i, want[i], k.String())
		}
	}
}
