package bytecode

import (
	"github.com/aerojs/aerojs/internal/token"
	"github.com/aerojs/aerojs/internal/value"
)

// HandlerKind distinguishes a catch handler from a finally handler in an
// exception table entry.
type HandlerKind uint8

const (
	HandlerCatch HandlerKind = iota
	HandlerFinally
)

// ExceptionHandler covers a [TryStart, TryEnd) instruction range with a
// handler entry point, per §4.3/§4.4's exception-handler table.
type ExceptionHandler struct {
	TryStart int
	TryEnd   int
	Target   int
	Kind     HandlerKind
	// Register is where the thrown value is stored for a catch handler,
	// or is unused (-1) for a finally handler.
	Register int
	// FinallyEnd is the instruction index just past the finally block's
	// own code (unused, -1, for a catch handler). When an exception with
	// no catch reaches a finally handler, the interpreter runs the
	// finally body and, on reaching FinallyEnd with nothing having
	// superseded it (no return/throw inside finally), re-raises the
	// original exception instead of falling through to whatever code
	// follows the try statement.
	FinallyEnd int
}

// Function is a single compiled function body: constants, instructions,
// a source map, the register file size, exception handlers, and
// reserved inline-cache slots, per §4.3's bytecode function shape.
type Function struct {
	Name         string
	ParamCount   int
	NumRegisters int
	IsArrow      bool
	IsStrict     bool

	Constants []value.Value
	Code      []Instruction
	// Spans is parallel to Code: Spans[pc] is the source span that
	// produced Code[pc].
	Spans []token.Span

	Handlers []ExceptionHandler

	// ICNames is indexed by inline-cache slot; ICNames[slot] is the
	// constant-pool index of the property name accessed at that call
	// site. The interpreter uses the slot number as the site key for the
	// profiler's shape observations and for JIT guard lookups; it keeps
	// no per-slot shape/offset cache. ICNames is fixed once the function
	// is compiled.
	ICNames []uint16

	// Inner holds nested function bodies (function/arrow expressions,
	// methods) referenced by OpNewFunction's Bx operand as an index into
	// this slice.
	Inner []*Function
}

// NewFunction creates an empty function body ready for a compiler to
// append to.
func NewFunction(name string, paramCount int) *Function {
	return &Function{Name: name, ParamCount: paramCount}
}

// AddConstant appends v to the constant pool, returning its index.
// Constants are not deduplicated: JS values of the same printed form
// (e.g. two 1.0 literals) are allowed to be distinct pool slots, which
// keeps the compiler simple and matches how most bytecode compilers in
// the reference set behave.
func (f *Function) AddConstant(v value.Value) uint16 {
	f.Constants = append(f.Constants, v)
	return uint16(len(f.Constants) - 1)
}

// Emit appends an instruction, recording its source span, and returns
// its program-counter index.
func (f *Function) Emit(ins Instruction, span token.Span) int {
	f.Code = append(f.Code, ins)
	f.Spans = append(f.Spans, span)
	return len(f.Code) - 1
}

// Patch overwrites an already-emitted instruction, used to back-patch
// forward jump targets once they're known.
func (f *Function) Patch(pc int, ins Instruction) { f.Code[pc] = ins }

// AllocICSlot reserves one inline-cache slot bound to the given
// constant-pool name index and returns its slot number.
func (f *Function) AllocICSlot(nameConstIdx uint16) int {
	f.ICNames = append(f.ICNames, nameConstIdx)
	return len(f.ICNames) - 1
}

// NumICSlots returns how many inline-cache slots f reserves.
func (f *Function) NumICSlots() int { return len(f.ICNames) }

// AddInner registers a nested function body, returning its index for
// use as an OpNewFunction Bx operand.
func (f *Function) AddInner(inner *Function) uint16 {
	f.Inner = append(f.Inner, inner)
	return uint16(len(f.Inner) - 1)
}
