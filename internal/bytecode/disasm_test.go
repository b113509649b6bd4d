package bytecode_test

import (
	"testing"

	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/parser"
	"github.com/gkampitakis/go-snaps/snaps"
)

func compileSource(t *testing.T, source string) *bytecode.Function {
	t.Helper()
	prog, errs := parser.Parse(source)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", source, errs)
	}
	fn, compileErrs := bytecode.Compile(prog, source)
	if len(compileErrs) > 0 {
		t.Fatalf("unexpected compile errors for %q: %v", source, compileErrs)
	}
	return fn
}

func TestDisassembleSnapshots(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"arithmetic", "1 + 2 * 3;"},
		{"if_else", "if (x) { y(); } else { z(); }"},
		{"while_loop", "while (x < 10) { x = x + 1; }"},
		{"function_call", "function add(a, b) { return a + b; } add(1, 2);"},
		{"try_catch_finally", "try { risky(); } catch (e) { handle(e); } finally { cleanup(); }"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fn := compileSource(t, tc.source)
			snaps.MatchSnapshot(t, tc.name+"_disasm", bytecode.Disassemble(fn))
		})
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	fn := compileSource(t, "let x = 1 + 2; function f(a) { return a * 2; }")

	data := bytecode.Marshal(fn)
	got, ok, err := bytecode.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if !ok {
		t.Fatalf("Unmarshal reported !ok for data produced by Marshal")
	}

	if bytecode.Disassemble(got) != bytecode.Disassemble(fn) {
		t.Fatalf("round-tripped function disassembles differently:\noriginal:\n%s\ngot:\n%s",
			bytecode.Disassemble(fn), bytecode.Disassemble(got))
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, ok, err := bytecode.Unmarshal([]byte("not a bytecode file"))
	if ok {
		t.Fatalf("expected Unmarshal to reject garbage input, got ok=true")
	}
	if err != nil {
		t.Fatalf("expected a nil error for unrecognized-but-not-truncated input, got %v", err)
	}
}
