package interpreter

import (
	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/value"
)

// newErrorObject builds a plain {name, message} object for an internally
// raised exception. AeroJS carries no builtin Error constructor (that's a
// library concern, out of scope here), so a thrown TypeError/RangeError/
// ReferenceError is just an ordinary object shaped like one, which is
// enough for a catch clause to inspect .name/.message.
func newErrorObject(kind diag.RuntimeErrorKind, message string) *value.Object {
	name := string(kind)
	if name == "" {
		name = "Error"
	}
	o := value.NewObject(nil)
	o.Set(value.StringKey("name"), value.String(name))
	o.Set(value.StringKey("message"), value.String(message))
	return o
}

// runtimeError constructs a RuntimeError whose Payload is the thrown
// value a catch clause will see.
func runtimeError(kind diag.RuntimeErrorKind, message string) *diag.RuntimeError {
	return &diag.RuntimeError{Kind: kind, Message: message, Payload: value.Value(newErrorObject(kind, message))}
}

// thrownValue extracts the value.Value payload from a RuntimeError,
// falling back to undefined if Payload wasn't set to one (shouldn't
// happen for errors this package constructs, but keeps a catch binding
// from panicking on a malformed error from elsewhere).
func thrownValue(err *diag.RuntimeError) value.Value {
	if v, ok := err.Payload.(value.Value); ok {
		return v
	}
	return value.Undefined
}

// findHandler returns the innermost ExceptionHandler whose [TryStart,
// TryEnd) range contains pc, per the nested-try disambiguation rule: an
// outer try's handler range always encloses an inner try's, so the
// narrowest containing range is the correct match.
func findHandler(handlers []bytecode.ExceptionHandler, pc int) (bytecode.ExceptionHandler, bool) {
	var best bytecode.ExceptionHandler
	found := false
	bestSpan := -1
	for _, h := range handlers {
		if pc < h.TryStart || pc >= h.TryEnd {
			continue
		}
		span := h.TryEnd - h.TryStart
		if !found || span < bestSpan {
			best, bestSpan, found = h, span, true
		}
	}
	return best, found
}

// recover looks up a handler for frame's current pc and, if found, directs
// execution there: a catch handler binds the thrown value and resumes at
// its target; a finally handler remembers the in-flight exception (to be
// re-raised once the finally body completes, unless superseded by a
// return or a new throw inside it — see Frame.finallyPending) and resumes
// there too. Returns false if nothing in this frame catches err, meaning
// the caller must propagate it to whichever Go frame called CallFunction.
func (it *Interpreter) recover(frame *Frame, err *diag.RuntimeError) bool {
	h, ok := findHandler(frame.fn.Handlers, frame.pc)
	if !ok {
		return false
	}
	switch h.Kind {
	case bytecode.HandlerCatch:
		if h.Register >= 0 {
			frame.regs[h.Register] = thrownValue(err)
		}
		frame.pc = h.Target
		return true
	case bytecode.HandlerFinally:
		frame.finallyPending = err
		frame.finallyPendingEnd = h.FinallyEnd
		frame.pc = h.Target
		return true
	default:
		return false
	}
}
