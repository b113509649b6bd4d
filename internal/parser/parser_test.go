package parser_test

import (
	"testing"

	"github.com/aerojs/aerojs/internal/ast"
	"github.com/aerojs/aerojs/internal/parser"
	"github.com/aerojs/aerojs/internal/token"
)

func parseOK(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, errs := parser.Parse(source)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", source, errs)
	}
	return prog
}

func TestParseBinaryExpression(t *testing.T) {
	prog := parseOK(t, "1 + 2 * 3;")
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Body))
	}
	stmt, ok := prog.Body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected ExpressionStatement, got %T", prog.Body[0])
	}
	bin, ok := stmt.Expression.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expected top-level BinaryExpression (addition binds loosest), got %T", stmt.Expression)
	}
	if bin.Operator != token.PLUS {
		t.Fatalf("expected '+' at the top, got %s", bin.Operator)
	}
	if _, ok := bin.Right.(*ast.BinaryExpression); !ok {
		t.Fatalf("expected right operand to be the '*' subexpression, got %T", bin.Right)
	}
}

func TestParseVarDeclarationWithMultipleDeclarators(t *testing.T) {
	prog := parseOK(t, "let x = 1, y = 2;")
	decl, ok := prog.Body[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("expected VariableDeclaration, got %T", prog.Body[0])
	}
	if decl.Kind != ast.VarLet {
		t.Fatalf("expected 'let', got %v", decl.Kind)
	}
	if len(decl.Declarations) != 2 {
		t.Fatalf("expected 2 declarators, got %d", len(decl.Declarations))
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parseOK(t, "if (x) { y(); } else { z(); }")
	ifStmt, ok := prog.Body[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected IfStatement, got %T", prog.Body[0])
	}
	if ifStmt.Alternate == nil {
		t.Fatalf("expected an else branch")
	}
}

func TestParseFunctionDeclaration(t *testing.T) {
	prog := parseOK(t, "function add(a, b) { return a + b; }")
	decl, ok := prog.Body[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", prog.Body[0])
	}
	if decl.Fn.ID == nil || decl.Fn.ID.Name != "add" {
		t.Fatalf("expected function named 'add', got %+v", decl.Fn.ID)
	}
	if len(decl.Fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(decl.Fn.Params))
	}
}

func TestParseCallExpressionArguments(t *testing.T) {
	prog := parseOK(t, "add(1, 2, 3);")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	call, ok := stmt.Expression.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected CallExpression, got %T", stmt.Expression)
	}
	if len(call.Arguments) != 3 {
		t.Fatalf("expected 3 arguments, got %d", len(call.Arguments))
	}
}

func TestParseErrorRecoverySynchronizesOnNextStatement(t *testing.T) {
	// A stray token before a clean statement should produce a parse
	// error but not prevent the following statement from parsing.
	prog, errs := parser.Parse("let x = ;\nlet y = 2;")
	if len(errs) == 0 {
		t.Fatalf("expected at least one parse error")
	}
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 statements after recovery, got %d", len(prog.Body))
	}
	if _, ok := prog.Body[1].(*ast.VariableDeclaration); !ok {
		t.Fatalf("expected the statement after the error to parse as a VariableDeclaration, got %T", prog.Body[1])
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	prog := parseOK(t, "try { risky(); } catch (e) { handle(e); } finally { cleanup(); }")
	tryStmt, ok := prog.Body[0].(*ast.TryStatement)
	if !ok {
		t.Fatalf("expected TryStatement, got %T", prog.Body[0])
	}
	if tryStmt.Handler == nil {
		t.Fatalf("expected a catch handler")
	}
	if tryStmt.Finally == nil {
		t.Fatalf("expected a finally block")
	}
}
