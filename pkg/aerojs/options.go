// Package aerojs is the embedding surface: Engine owns process-wide
// shared state (profiler, string interner, JIT worker pool) and
// Context is one isolated execution environment (global scope, last
// exception, context-local data) running scripts against it, grounded on
// the teacher's pkg/dwscript embedding surface and AeroJS's own
// original_source/src/core/context.cpp (see SPEC_FULL.md §6).
package aerojs

import (
	"os"

	"github.com/aerojs/aerojs/internal/runtime"
)

// StderrLogger returns a debug-level Logger writing to stderr, for
// WithLogger and cmd/aerojs's --trace flag.
func StderrLogger() runtime.Logger {
	return runtime.NewLogger(os.Stderr, runtime.LevelDebug)
}

// Options configures an Engine, mirroring the teacher's functional-
// options idiom (lexer.go's LexerOption, parser/context.go's
// ParserOption) rather than a config struct with exported fields.
type Options struct {
	jitEnabled   bool
	jitWorkers   int
	jitQueueSize int
	maxHeapBytes int64
	logger       runtime.Logger
	globals      map[string]any
}

// Option mutates an in-progress Options value.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		jitEnabled:   true,
		jitWorkers:   1,
		jitQueueSize: 16,
		globals:      make(map[string]any),
		logger:       runtime.NoopLogger(),
	}
}

// WithJIT enables or disables tier-up compilation. Disabled, the
// interpreter still runs correctly; it just never installs optimizing-
// tier guards.
func WithJIT(enabled bool) Option {
	return func(o *Options) { o.jitEnabled = enabled }
}

// WithJITWorkers sets the background compile-worker pool size and queue
// depth backing the Engine's jit.Manager.
func WithJITWorkers(workers, queueSize int) Option {
	return func(o *Options) { o.jitWorkers, o.jitQueueSize = workers, queueSize }
}

// WithMaxHeap sets an advisory heap budget in bytes, surfaced to
// Context.CollectGarbage callers via Engine.HeapBudget; AeroJS relies on
// the Go garbage collector itself rather than implementing a second
// collector, so this is a budget the embedder can poll against, not an
// enforced ceiling (see DESIGN.md).
func WithMaxHeap(bytes int64) Option {
	return func(o *Options) { o.maxHeapBytes = bytes }
}

// WithLogger installs a runtime.Logger for engine lifecycle messages (JIT
// enabled or disabled, JIT workers stopped) and uncaught script
// exceptions. JIT tier transitions and deopt events are not logged.
// Defaults to a no-op logger.
func WithLogger(l runtime.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithGlobal pre-registers a global binding every Context created from
// this Engine starts with, in addition to whatever Context.RegisterGlobal
// calls add later.
func WithGlobal(name string, value any) Option {
	return func(o *Options) { o.globals[name] = value }
}
