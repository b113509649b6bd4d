package ast_test

import (
	"testing"

	"github.com/aerojs/aerojs/internal/ast"
	"github.com/aerojs/aerojs/internal/parser"
	"github.com/gkampitakis/go-snaps/snaps"
)

func TestPrintSnapshots(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"binary_expr", "1 + 2 * 3;"},
		{"var_decl", "let x = 1, y = 2;"},
		{"if_else", "if (x) { y(); } else { z(); }"},
		{"function_decl", "function add(a, b) { return a + b; }"},
		{"class_decl", "class Point extends Base { constructor(x) { super(x); } }"},
		{"try_catch_finally", "try { risky(); } catch (e) { handle(e); } finally { cleanup(); }"},
		{"for_of", "for (const v of items) { use(v); }"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prog, errs := parser.Parse(tc.source)
			if len(errs) > 0 {
				t.Fatalf("unexpected parse errors for %q: %v", tc.source, errs)
			}
			snaps.MatchSnapshot(t, tc.name+"_ast", ast.Print(prog))
		})
	}
}
