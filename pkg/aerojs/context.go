package aerojs

import (
	"fmt"
	goruntime "runtime"

	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/interpreter"
	"github.com/aerojs/aerojs/internal/parser"
	"github.com/aerojs/aerojs/internal/value"
)

// contextDataEntry is one context-local key/value slot, carrying an
// optional disposer run when the entry is overwritten or the Context is
// closed, mirroring original_source/src/core/context.cpp's
// contextData_/cleaner destructor pattern.
type contextDataEntry struct {
	data     any
	disposer func(any)
}

// Context is one isolated execution environment: its own global scope
// and last-thrown-exception slot, sharing its parent Engine's profiler,
// JIT workers, and deoptimizer. A Context is not safe for concurrent use
// from multiple goroutines, matching the teacher's single-threaded VM
// contract (see DESIGN.md).
type Context struct {
	engine *Engine
	interp *interpreter.Interpreter
	global *interpreter.Scope

	lastException *diag.RuntimeError
	data          map[string]contextDataEntry
}

// NewContext creates a Context against e, pre-populated with any
// WithGlobal bindings configured on the Engine.
func (e *Engine) NewContext() *Context {
	ctx := &Context{
		engine: e,
		interp: e.newInterpreter(),
		global: interpreter.NewScope(),
		data:   make(map[string]contextDataEntry),
	}
	for name, v := range e.opts.globals {
		ctx.RegisterGlobal(name, v)
	}
	return ctx
}

// RegisterGlobal binds name in the Context's global scope. v is
// converted to a value.Value via toValue when it isn't one already, so
// embedders can pass plain Go strings/numbers/bools directly.
func (c *Context) RegisterGlobal(name string, v any) {
	c.global.Declare(name, toValue(v))
}

// RegisterFunction binds name to a native function callable from
// script, per original_source/src/core/context.cpp's
// registerGlobalFunction.
func (c *Context) RegisterFunction(name string, paramCount int, fn func(this value.Value, args []value.Value) (value.Value, error)) {
	callable := &value.Callable{Name: name, ParamCount: paramCount, IsNative: true, Native: fn}
	c.global.Declare(name, value.NewFunction(callable, nil))
}

func toValue(v any) value.Value {
	switch t := v.(type) {
	case value.Value:
		return t
	case string:
		return value.String(t)
	case float64:
		return value.Number(t)
	case int:
		return value.Number(float64(t))
	case bool:
		return value.Boolean(t)
	case nil:
		return value.Null
	default:
		return value.Undefined
	}
}

// Evaluate parses and runs source as a top-level program, returning its
// completion value. A lex or parse failure is reported via the returned
// error, never via LastException (which is reserved for runtime
// exceptions thrown by executing script, per §4.4/§6).
func (c *Context) Evaluate(source string) (value.Value, error) {
	fn, err := c.compile(source)
	if err != nil {
		return value.Undefined, err
	}
	return c.run(fn)
}

// Compile parses and bytecode-compiles source without running it,
// primarily for cmd/aerojs's compile/disasm subcommands.
func (c *Context) Compile(source string) (*bytecode.Function, error) {
	return c.compile(source)
}

func (c *Context) compile(source string) (*bytecode.Function, error) {
	p := parser.New(source)
	prog := p.ParseProgram()
	if lexErrs := p.LexErrors(); len(lexErrs) > 0 {
		return nil, lexErrs[0]
	}
	if parseErrs := p.Errors(); len(parseErrs) > 0 {
		return nil, parseErrs[0]
	}
	fn, compileErrs := bytecode.Compile(prog, source)
	if len(compileErrs) > 0 {
		return nil, compileErrs[0]
	}
	return fn, nil
}

// Run executes an already-compiled top-level Function against this
// Context's global scope, as Evaluate does internally after compiling.
func (c *Context) Run(fn *bytecode.Function) (value.Value, error) {
	return c.run(fn)
}

func (c *Context) run(fn *bytecode.Function) (value.Value, error) {
	result, err := c.interp.RunProgram(fn, c.global)
	if err != nil {
		if rtErr, ok := err.(*diag.RuntimeError); ok {
			c.lastException = rtErr
			c.engine.logger.Debugf("uncaught exception: %s", rtErr.Error())
		}
		return value.Undefined, err
	}
	return result, nil
}

// CallFunction invokes a script-visible function value with the given
// receiver and arguments, for host code driving callbacks into script
// (e.g. an array's user-supplied comparator).
func (c *Context) CallFunction(fn value.Value, this value.Value, args []value.Value) (value.Value, error) {
	obj, ok := fn.(*value.Object)
	if !ok || !value.IsCallable(obj) {
		return value.Undefined, fmt.Errorf("aerojs: value is not callable")
	}
	body, ok := obj.Callable.Body.(*bytecode.Function)
	if !ok {
		if !obj.Callable.IsNative {
			return value.Undefined, fmt.Errorf("aerojs: callable has no body")
		}
		return obj.Callable.Native(this, args)
	}
	closure, _ := obj.Callable.Closure.(*interpreter.Scope)
	return c.interp.CallFunction(body, this, args, closure)
}

// LastException returns the most recently thrown, uncaught runtime
// exception, or nil if none occurred since the last ClearException.
func (c *Context) LastException() *diag.RuntimeError { return c.lastException }

// ClearException discards any pending LastException, matching
// original_source/src/core/context.cpp's clearLastException.
func (c *Context) ClearException() { c.lastException = nil }

// SetContextData stores data under key, running the previous entry's
// disposer (if any) first. disposer may be nil.
func (c *Context) SetContextData(key string, data any, disposer func(any)) {
	if prev, ok := c.data[key]; ok && prev.disposer != nil {
		prev.disposer(prev.data)
	}
	c.data[key] = contextDataEntry{data: data, disposer: disposer}
}

// ContextData retrieves a value previously stored with SetContextData.
func (c *Context) ContextData(key string) (any, bool) {
	entry, ok := c.data[key]
	return entry.data, ok
}

// Close disposes every remaining context-data entry, per
// original_source/src/core/context.cpp's destructor sweep over
// contextData_ under lock; a single-threaded Context needs no mutex of
// its own here.
func (c *Context) Close() {
	for key, entry := range c.data {
		if entry.disposer != nil {
			entry.disposer(entry.data)
		}
		delete(c.data, key)
	}
}

// CollectGarbage is a thin hint to the Go runtime's own collector;
// AeroJS has no separate object heap or manual allocator to sweep the
// way original_source/src/core/context.cpp's collectGarbage(bool) does,
// so there is nothing tier-specific to force here beyond what runtime.GC
// already does (see DESIGN.md).
func (c *Context) CollectGarbage() {
	goruntime.GC()
}
