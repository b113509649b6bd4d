package aerojs

import (
	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/deopt"
	"github.com/aerojs/aerojs/internal/interpreter"
	"github.com/aerojs/aerojs/internal/jit"
	"github.com/aerojs/aerojs/internal/profiler"
	"github.com/aerojs/aerojs/internal/runtime"
)

// noopInvalidator backs the Deoptimizer when JIT compilation is
// disabled; the interpreter never reports a tier above 0 in that mode,
// so Invalidate is unreachable here, but this avoids handing the
// Deoptimizer a nil *jit.Manager.
type noopInvalidator struct{}

func (noopInvalidator) Invalidate(*bytecode.Function) {}

// Engine holds the process-wide state every Context created from it
// shares: the profiler's function feedback tables, the background JIT
// compile-worker pool, the deoptimizer wired to invalidate that pool's
// installed code, a string interner, and a logger. Grounded on
// original_source/src/core/context.cpp's Engine/Context split (Engine
// owns shared tables, Context owns one isolated global scope and
// exception slot) but deliberately not a singleton — embedders construct
// as many independent Engines as they need, matching AeroJS's no-global-
// state design note.
type Engine struct {
	opts     *Options
	prof     *profiler.Profiler
	jit      *jit.Manager
	deopt    *deopt.Deoptimizer
	interner *runtime.StringInterner
	logger   runtime.Logger
}

// NewEngine constructs an Engine and starts its background JIT compile
// workers. Call Close when done to stop them.
func NewEngine(opts ...Option) *Engine {
	o := defaultOptions()
	for _, apply := range opts {
		apply(o)
	}

	e := &Engine{
		opts:     o,
		prof:     profiler.New(),
		interner: runtime.NewStringInterner(),
		logger:   o.logger,
	}
	if o.jitEnabled {
		e.jit = jit.NewManager(e.prof, o.jitWorkers, o.jitQueueSize)
		e.deopt = deopt.New(e.jit)
		e.logger.Infof("jit enabled: %d worker(s), queue depth %d", o.jitWorkers, o.jitQueueSize)
	} else {
		e.deopt = deopt.New(noopInvalidator{})
		e.logger.Infof("jit disabled: running baseline interpreter only")
	}
	return e
}

// Close stops the Engine's background JIT workers. Contexts created
// from a closed Engine continue to run correctly in baseline-only mode;
// pending CompileAsync requests are simply never serviced.
func (e *Engine) Close() {
	if e.jit != nil {
		e.jit.Shutdown()
		e.logger.Debugf("jit workers stopped")
	}
}

// HeapBudget reports the advisory byte budget configured via
// WithMaxHeap, or 0 if none was set.
func (e *Engine) HeapBudget() int64 { return e.opts.maxHeapBytes }

// tuner returns e.jit as the interpreter's Tuner interface, or nil when
// JIT compilation is disabled; Interpreter.CallFunction skips tier-up
// requests entirely when its tuner is nil.
func (e *Engine) tuner() interpreter.Tuner {
	if e.jit == nil {
		return nil
	}
	return e.jit
}

// newInterpreter builds an Interpreter sharing this Engine's profiler,
// JIT tuner, and deoptimizer, one per Context (frames/call-depth are not
// safe to share across concurrent Contexts).
func (e *Engine) newInterpreter() *interpreter.Interpreter {
	return interpreter.New(e.prof, e.tuner(), e.deopt)
}
