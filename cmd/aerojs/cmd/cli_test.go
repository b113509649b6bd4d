package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything written to it, following the teacher's run_unit_test.go
// idiom of swapping os.Stdout/os.Stderr around a direct RunE call rather
// than shelling out to a built binary.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String(), runErr
}

func TestLexScriptPrintsTokens(t *testing.T) {
	oldEval, oldShowType, oldShowPos, oldOnlyErrors := evalExpr, showType, showPos, onlyErrors
	defer func() { evalExpr, showType, showPos, onlyErrors = oldEval, oldShowType, oldShowPos, oldOnlyErrors }()

	evalExpr = "1 + 2"
	showType, showPos, onlyErrors = false, false, false

	out, err := captureStdout(t, func() error { return lexScript(lexCmd, nil) })
	if err != nil {
		t.Fatalf("lexScript failed: %v", err)
	}
	if !strings.Contains(out, "1") || !strings.Contains(out, "+") || !strings.Contains(out, "2") {
		t.Fatalf("expected token output to contain '1', '+' and '2', got: %s", out)
	}
	if !strings.Contains(out, "EOF") {
		t.Fatalf("expected an EOF token at the end, got: %s", out)
	}
}

func TestLexScriptOnlyErrorsReportsIllegalTokens(t *testing.T) {
	oldEval, oldOnlyErrors := evalExpr, onlyErrors
	defer func() { evalExpr, onlyErrors = oldEval, oldOnlyErrors }()

	evalExpr = "1 @ 2"
	onlyErrors = true

	_, err := captureStdout(t, func() error { return lexScript(lexCmd, nil) })
	if err == nil {
		t.Fatalf("expected lexScript to report an error for an illegal token")
	}
}

func TestParseScriptReportsSyntaxError(t *testing.T) {
	oldEval, oldDump := evalExpr, dumpAST
	defer func() { evalExpr, dumpAST = oldEval, oldDump }()

	evalExpr = "let x = ;"
	dumpAST = false

	_, err := captureStdout(t, func() error { return parseScript(parseCmd, nil) })
	if err == nil {
		t.Fatalf("expected parseScript to report a parse error")
	}
}

func TestParseScriptDumpASTSucceedsOnValidProgram(t *testing.T) {
	oldEval, oldDump := evalExpr, dumpAST
	defer func() { evalExpr, dumpAST = oldEval, oldDump }()

	evalExpr = "let x = 1 + 2;"
	dumpAST = true

	out, err := captureStdout(t, func() error { return parseScript(parseCmd, nil) })
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}
	if !strings.Contains(out, "VariableDeclaration") && !strings.Contains(out, "Var") {
		t.Fatalf("expected AST dump to mention the declaration, got: %s", out)
	}
}

func TestCompileAndDisasmRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	scriptPath := filepath.Join(tempDir, "main.js")
	if err := os.WriteFile(scriptPath, []byte("let x = 1 + 2; x;"), 0o644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	oldOut, oldDisasm := compileOut, disassemble
	defer func() { compileOut, disassemble = oldOut, oldDisasm }()
	compileOut = ""
	disassemble = false

	if err := compileCmd.RunE(compileCmd, []string{scriptPath}); err != nil {
		t.Fatalf("compileScript failed: %v", err)
	}

	aocPath := filepath.Join(tempDir, "main.aoc")
	if _, err := os.Stat(aocPath); err != nil {
		t.Fatalf("expected %s to be written: %v", aocPath, err)
	}

	out, err := captureStdout(t, func() error { return disasmFile(disasmCmd, []string{aocPath}) })
	if err != nil {
		t.Fatalf("disasmFile failed: %v", err)
	}
	if !strings.Contains(out, "LOADK") && !strings.Contains(out, "ADD") {
		t.Fatalf("expected disassembly to mention bytecode instructions, got: %s", out)
	}
}

func TestDisasmFromSourceFile(t *testing.T) {
	tempDir := t.TempDir()
	scriptPath := filepath.Join(tempDir, "main.js")
	if err := os.WriteFile(scriptPath, []byte("1 + 2;"), 0o644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	out, err := captureStdout(t, func() error { return disasmFile(disasmCmd, []string{scriptPath}) })
	if err != nil {
		t.Fatalf("disasmFile failed: %v", err)
	}
	if out == "" {
		t.Fatalf("expected non-empty disassembly output")
	}
}

func TestRunScriptPrintsCompletionValue(t *testing.T) {
	oldEval, oldTrace := evalExpr, traceExec
	defer func() { evalExpr, traceExec = oldEval, oldTrace }()

	evalExpr = "20 + 22"
	traceExec = false

	out, err := captureStdout(t, func() error { return runScript(runCmd, nil) })
	if err != nil {
		t.Fatalf("runScript failed: %v", err)
	}
	if strings.TrimSpace(out) != "42" {
		t.Fatalf("expected output '42', got %q", out)
	}
}

func TestRunScriptSurfacesUncaughtException(t *testing.T) {
	oldEval := evalExpr
	defer func() { evalExpr = oldEval }()

	evalExpr = `throw "kaboom";`

	_, err := captureStdout(t, func() error { return runScript(runCmd, nil) })
	if err == nil {
		t.Fatalf("expected runScript to report the uncaught exception as an error")
	}
	if !strings.Contains(err.Error(), "kaboom") {
		t.Fatalf("expected error to mention the thrown value, got: %v", err)
	}
}

func TestReadInputRequiresFileOrEvalFlag(t *testing.T) {
	if _, _, err := readInput("", nil); err == nil {
		t.Fatalf("expected an error when neither a file nor -e is given")
	}
}

func TestReadInputPrefersEvalExpression(t *testing.T) {
	input, filename, err := readInput("1+1", []string{"ignored.js"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input != "1+1" || filename != "<eval>" {
		t.Fatalf("expected eval expression to take priority, got input=%q filename=%q", input, filename)
	}
}
