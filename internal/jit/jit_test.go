package jit_test

import (
	"testing"

	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/jit"
	"github.com/aerojs/aerojs/internal/profiler"
	"github.com/aerojs/aerojs/internal/value"
)

// compileSync submits fn for compilation and waits for every worker to
// drain its queue, avoiding a sleep-based race: Shutdown blocks until
// the in-flight job finishes.
func compileSync(t *testing.T, prof *profiler.Profiler, fn *bytecode.Function, tier int) (map[int]bytecode.Guard, int, bool) {
	t.Helper()
	m := jit.NewManager(prof, 1, 4)
	m.CompileAsync(fn, tier)
	m.Shutdown()
	return m.Guards(fn)
}

func TestCompileAsyncInstallsGuardForStableType(t *testing.T) {
	prof := profiler.New()
	fn := bytecode.NewFunction("f", 0)

	for i := 0; i < profiler.TypeStabilityObs; i++ {
		prof.RecordType(fn, 0, value.Number(1))
	}

	guards, tier, ok := compileSync(t, prof, fn, jit.TierBaseline)
	if !ok {
		t.Fatalf("expected installed code to be present after compiling")
	}
	if tier != jit.TierBaseline {
		t.Fatalf("expected tier %d, got %d", jit.TierBaseline, tier)
	}
	g, ok := guards[0]
	if !ok {
		t.Fatalf("expected a guard installed at site 0")
	}
	if g.Type != "number" {
		t.Fatalf("expected guard type %q, got %q", "number", g.Type)
	}
}

func TestCompileAsyncOptimizingTierAddsShapeGuard(t *testing.T) {
	prof := profiler.New()
	fn := bytecode.NewFunction("f", 0)
	shape := value.RootShape()

	prof.RecordShape(fn, 0, shape)
	prof.RecordShape(fn, 0, shape)

	guards, _, ok := compileSync(t, prof, fn, jit.TierOptimizing)
	if !ok {
		t.Fatalf("expected installed code to be present")
	}
	g, ok := guards[0]
	if !ok || g.Shape != shape {
		t.Fatalf("expected a shape guard pinned to the monomorphic shape, got %+v (ok=%v)", g, ok)
	}
}

func TestGuardsReportsNoInstalledCodeBeforeCompiling(t *testing.T) {
	prof := profiler.New()
	fn := bytecode.NewFunction("f", 0)
	m := jit.NewManager(prof, 1, 4)
	defer m.Shutdown()

	_, tier, ok := m.Guards(fn)
	if ok {
		t.Fatalf("expected no installed code before any compile request")
	}
	if tier != jit.TierInterpreter {
		t.Fatalf("expected tier %d, got %d", jit.TierInterpreter, tier)
	}
}

func TestInvalidateClearsInstalledCodeAndProfile(t *testing.T) {
	prof := profiler.New()
	fn := bytecode.NewFunction("f", 0)
	prof.RecordCall(fn)
	prof.SetTier(fn, jit.TierOptimizing)

	m := jit.NewManager(prof, 1, 4)
	defer m.Shutdown()

	m.Invalidate(fn)

	if _, _, ok := m.Guards(fn); ok {
		t.Fatalf("expected installed code to be cleared after Invalidate")
	}
	if prof.CurrentTier(fn) != jit.TierInterpreter {
		t.Fatalf("expected profile tier reset after Invalidate")
	}
}
