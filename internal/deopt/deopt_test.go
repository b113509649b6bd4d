package deopt_test

import (
	"testing"

	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/deopt"
)

// fakeInvalidator records every fn it was asked to invalidate, standing
// in for *jit.Manager so this package's tests don't need to import jit.
type fakeInvalidator struct {
	invalidated []*bytecode.Function
}

func (f *fakeInvalidator) Invalidate(fn *bytecode.Function) {
	f.invalidated = append(f.invalidated, fn)
}

func TestDeoptimizeInvalidatesAndRecordsHistory(t *testing.T) {
	inv := &fakeInvalidator{}
	dp := deopt.New(inv)
	fn := bytecode.NewFunction("f", 0)

	d := deopt.Descriptor{Site: 3, Reason: deopt.ReasonShapeMismatch, Register: 1}
	dp.Deoptimize(fn, d)

	if len(inv.invalidated) != 1 || inv.invalidated[0] != fn {
		t.Fatalf("expected Deoptimize to invalidate fn exactly once, got %v", inv.invalidated)
	}

	hist := dp.History(fn)
	if len(hist) != 1 || hist[0] != d {
		t.Fatalf("expected history to contain the recorded descriptor, got %v", hist)
	}
}

func TestHistoryIsOldestFirstAndCapped(t *testing.T) {
	inv := &fakeInvalidator{}
	dp := deopt.New(inv)
	fn := bytecode.NewFunction("f", 0)

	const total = 40
	for i := 0; i < total; i++ {
		dp.Deoptimize(fn, deopt.Descriptor{Site: i, Reason: deopt.ReasonTypeMismatch})
	}

	hist := dp.History(fn)
	if len(hist) != 32 {
		t.Fatalf("expected history capped at 32 entries, got %d", len(hist))
	}
	if hist[0].Site != total-32 {
		t.Fatalf("expected oldest retained entry to be site %d, got %d", total-32, hist[0].Site)
	}
	if hist[len(hist)-1].Site != total-1 {
		t.Fatalf("expected newest entry to be site %d, got %d", total-1, hist[len(hist)-1].Site)
	}
}

func TestHistoryIsIndependentPerFunction(t *testing.T) {
	inv := &fakeInvalidator{}
	dp := deopt.New(inv)
	a := bytecode.NewFunction("a", 0)
	b := bytecode.NewFunction("b", 0)

	dp.Deoptimize(a, deopt.Descriptor{Site: 1, Reason: deopt.ReasonArityMismatch})

	if len(dp.History(a)) != 1 {
		t.Fatalf("expected one entry for a")
	}
	if len(dp.History(b)) != 0 {
		t.Fatalf("expected no entries for b, got %v", dp.History(b))
	}
}

func TestReasonString(t *testing.T) {
	cases := map[deopt.Reason]string{
		deopt.ReasonTypeMismatch:   "type-mismatch",
		deopt.ReasonShapeMismatch:  "shape-mismatch",
		deopt.ReasonCalleeMismatch: "callee-mismatch",
		deopt.ReasonArityMismatch:  "arity-mismatch",
	}
	for reason, want := range cases {
		if got := reason.String(); got != want {
			t.Fatalf("Reason(%d).String() = %q, want %q", reason, got, want)
		}
	}
}

func TestHistoryReturnsACopy(t *testing.T) {
	inv := &fakeInvalidator{}
	dp := deopt.New(inv)
	fn := bytecode.NewFunction("f", 0)
	dp.Deoptimize(fn, deopt.Descriptor{Site: 0, Reason: deopt.ReasonTypeMismatch})

	hist := dp.History(fn)
	hist[0].Site = 999

	if dp.History(fn)[0].Site != 0 {
		t.Fatalf("expected mutating the returned slice not to affect internal history")
	}
}
