package aerojs_test

import (
	"errors"
	"testing"

	"github.com/aerojs/aerojs/internal/value"
	"github.com/aerojs/aerojs/pkg/aerojs"
)

func TestEvaluateArithmetic(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false))
	defer engine.Close()
	ctx := engine.NewContext()
	defer ctx.Close()

	result, err := ctx.Evaluate("1 + 2;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.ToString(result) != "3" {
		t.Fatalf("expected 3, got %s", value.ToString(result))
	}
}

func TestEvaluateSetsLastExceptionOnUncaughtThrow(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false))
	defer engine.Close()
	ctx := engine.NewContext()
	defer ctx.Close()

	if ctx.LastException() != nil {
		t.Fatalf("expected no exception before running anything")
	}

	_, err := ctx.Evaluate(`throw "boom";`)
	if err == nil {
		t.Fatalf("expected an error from an uncaught throw")
	}
	exc := ctx.LastException()
	if exc == nil {
		t.Fatalf("expected LastException to be set")
	}

	ctx.ClearException()
	if ctx.LastException() != nil {
		t.Fatalf("expected ClearException to discard the exception")
	}
}

func TestEvaluateSyntaxErrorDoesNotSetLastException(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false))
	defer engine.Close()
	ctx := engine.NewContext()
	defer ctx.Close()

	_, err := ctx.Evaluate("let x = ;")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	if ctx.LastException() != nil {
		t.Fatalf("a lex/parse failure must not populate LastException")
	}
}

func TestRegisterGlobalIsVisibleToScript(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false))
	defer engine.Close()
	ctx := engine.NewContext()
	defer ctx.Close()

	ctx.RegisterGlobal("greeting", "hello")
	result, err := ctx.Evaluate("greeting;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.ToString(result) != "hello" {
		t.Fatalf("expected 'hello', got %s", value.ToString(result))
	}
}

func TestWithGlobalPrePopulatesEveryContext(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false), aerojs.WithGlobal("VERSION", "1.0"))
	defer engine.Close()
	ctx := engine.NewContext()
	defer ctx.Close()

	result, err := ctx.Evaluate("VERSION;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.ToString(result) != "1.0" {
		t.Fatalf("expected '1.0', got %s", value.ToString(result))
	}
}

func TestRegisterFunctionIsCallableFromScript(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false))
	defer engine.Close()
	ctx := engine.NewContext()
	defer ctx.Close()

	ctx.RegisterFunction("double", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Undefined, errors.New("double: missing argument")
		}
		return value.Number(value.ToNumber(args[0]) * 2), nil
	})

	result, err := ctx.Evaluate("double(21);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.ToString(result) != "42" {
		t.Fatalf("expected 42, got %s", value.ToString(result))
	}
}

func TestContextDataSetGetAndDisposeOnClose(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false))
	defer engine.Close()
	ctx := engine.NewContext()

	disposed := false
	ctx.SetContextData("conn", 42, func(v any) {
		if v.(int) != 42 {
			t.Fatalf("disposer received wrong value: %v", v)
		}
		disposed = true
	})

	got, ok := ctx.ContextData("conn")
	if !ok || got.(int) != 42 {
		t.Fatalf("expected ContextData to return the stored value")
	}

	ctx.Close()
	if !disposed {
		t.Fatalf("expected Close to run the disposer")
	}
}

func TestContextDataOverwriteRunsPreviousDisposer(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false))
	defer engine.Close()
	ctx := engine.NewContext()
	defer ctx.Close()

	firstDisposed := false
	ctx.SetContextData("k", "first", func(any) { firstDisposed = true })
	ctx.SetContextData("k", "second", nil)

	if !firstDisposed {
		t.Fatalf("expected overwriting an entry to dispose the previous one")
	}
	got, ok := ctx.ContextData("k")
	if !ok || got.(string) != "second" {
		t.Fatalf("expected the new value to replace the old one")
	}
}

func TestCompileAndRunSeparately(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false))
	defer engine.Close()
	ctx := engine.NewContext()
	defer ctx.Close()

	fn, err := ctx.Compile("6 * 7;")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	result, err := ctx.Run(fn)
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if value.ToString(result) != "42" {
		t.Fatalf("expected 42, got %s", value.ToString(result))
	}
}

func TestEngineRunsWithJITEnabled(t *testing.T) {
	// JIT enabled exercises the real jit.Manager/deopt.Deoptimizer wiring
	// rather than the noopInvalidator path WithJIT(false) takes.
	engine := aerojs.NewEngine(aerojs.WithJIT(true), aerojs.WithJITWorkers(1, 4))
	defer engine.Close()
	ctx := engine.NewContext()
	defer ctx.Close()

	result, err := ctx.Evaluate(`
		function square(n) { return n * n; }
		let total = 0;
		for (let i = 0; i < 5; i = i + 1) {
			total = total + square(i);
		}
		total;
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.ToString(result) != "30" {
		t.Fatalf("expected 30, got %s", value.ToString(result))
	}
}

func TestCallFunctionInvokesScriptCallback(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false))
	defer engine.Close()
	ctx := engine.NewContext()
	defer ctx.Close()

	ctx.RegisterGlobal("double", nil) // placeholder binding replaced by Evaluate below
	result, err := ctx.Evaluate("function double(n) { return n * 2; } double;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	called, err := ctx.CallFunction(result, value.Undefined, []value.Value{value.Number(21)})
	if err != nil {
		t.Fatalf("unexpected error calling function value: %v", err)
	}
	if value.ToString(called) != "42" {
		t.Fatalf("expected 42, got %s", value.ToString(called))
	}
}

func TestHeapBudgetReportsConfiguredValue(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false), aerojs.WithMaxHeap(1<<20))
	defer engine.Close()
	if got := engine.HeapBudget(); got != 1<<20 {
		t.Fatalf("expected heap budget %d, got %d", 1<<20, got)
	}
}

func TestCollectGarbageDoesNotPanic(t *testing.T) {
	engine := aerojs.NewEngine(aerojs.WithJIT(false))
	defer engine.Close()
	ctx := engine.NewContext()
	defer ctx.Close()
	ctx.CollectGarbage()
}
