package bytecode

import "github.com/aerojs/aerojs/internal/value"

// Guard is a speculation the JIT has attached to one instruction site
// (keyed the same way an inline-cache slot is, by its position in the
// function's IC slot table): the optimizing tier assumes the named
// register holds a value of Type (a value.Kind.String() tag) or, for
// property accesses, that the object carries Shape. The interpreter
// checks the guard before running the instruction's specialized path and
// falls back to the ordinary bytecode handling — invalidating the guard
// through internal/deopt — on a mismatch, per §4.6/§4.7.
type Guard struct {
	Type  string
	Shape *value.Shape
}

// Satisfies reports whether v matches g. A zero Guard (no Type, no
// Shape) is unconstrained and always satisfied.
func (g Guard) Satisfies(v value.Value) bool {
	if g.Shape != nil {
		o, ok := v.(*value.Object)
		if !ok || o.IsDictionaryMode() || o.Shape() != g.Shape {
			return false
		}
	}
	if g.Type != "" && value.TypeOf(v) != g.Type {
		return false
	}
	return true
}
