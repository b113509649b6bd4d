package profiler_test

import (
	"testing"

	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/profiler"
	"github.com/aerojs/aerojs/internal/value"
)

func newFn() *bytecode.Function {
	return bytecode.NewFunction("f", 0)
}

func TestRecordCallIncrementsAndReturnsCount(t *testing.T) {
	p := profiler.New()
	fn := newFn()

	if got := p.RecordCall(fn); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := p.RecordCall(fn); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestShouldOptimizeRequiresThresholdAndStability(t *testing.T) {
	p := profiler.New()
	fn := newFn()

	for i := 0; i < profiler.OptimizeCallThreshold-1; i++ {
		p.RecordCall(fn)
	}
	if p.ShouldOptimize(fn) {
		t.Fatalf("should not optimize before the call threshold is reached")
	}

	p.RecordCall(fn)
	for i := 0; i < profiler.TypeStabilityObs; i++ {
		p.RecordType(fn, 0, value.Number(1))
	}
	if !p.ShouldOptimize(fn) {
		t.Fatalf("expected ShouldOptimize once threshold is reached and the only observed type is stable")
	}
}

func TestShouldOptimizeFalseWhenTypeUnstable(t *testing.T) {
	p := profiler.New()
	fn := newFn()

	for i := 0; i < profiler.OptimizeCallThreshold; i++ {
		p.RecordCall(fn)
	}
	for i := 0; i < profiler.TypeStabilityObs; i++ {
		if i%2 == 0 {
			p.RecordType(fn, 0, value.Number(1))
		} else {
			p.RecordType(fn, 0, value.String("x"))
		}
	}
	if p.ShouldOptimize(fn) {
		t.Fatalf("expected ShouldOptimize to stay false for a polymorphic type site")
	}
}

func TestRequestTierIsOneShotPerTier(t *testing.T) {
	p := profiler.New()
	fn := newFn()

	if !p.RequestTier(fn, 1) {
		t.Fatalf("expected the first request for tier 1 to succeed")
	}
	if p.RequestTier(fn, 1) {
		t.Fatalf("expected a repeated request for the same tier to be rejected")
	}
	if !p.RequestTier(fn, 2) {
		t.Fatalf("expected a request for a higher tier to succeed")
	}
}

func TestResetDiscardsProfile(t *testing.T) {
	p := profiler.New()
	fn := newFn()

	p.RecordCall(fn)
	p.SetTier(fn, 2)
	if p.CurrentTier(fn) != 2 {
		t.Fatalf("expected tier 2 before reset")
	}

	p.Reset(fn)
	if p.CurrentTier(fn) != 0 {
		t.Fatalf("expected tier 0 after reset")
	}
}

func TestRecordCallSiteTracksPrimaryCallee(t *testing.T) {
	p := profiler.New()
	fn := newFn()
	callee := value.NewObject(nil)

	p.RecordCallSite(fn, 0, callee)
	got, ok := p.PrimaryCallee(fn, 0)
	if !ok || got != callee {
		t.Fatalf("expected PrimaryCallee to report the recorded callee")
	}
}

func TestRecordBranchTakenRatio(t *testing.T) {
	p := profiler.New()
	fn := newFn()

	p.RecordBranch(fn, 0, true)
	p.RecordBranch(fn, 0, true)
	p.RecordBranch(fn, 0, false)

	data := p.For(fn)
	branch, ok := data.Branches[0]
	if !ok {
		t.Fatalf("expected branch data recorded at site 0")
	}
	if got := branch.TakenRatio(); got < 0.66 || got > 0.67 {
		t.Fatalf("expected a taken ratio of 2/3, got %v", got)
	}
}
