// Command aerojs is a CLI front end for the AeroJS execution engine:
// lex, parse, compile, disasm, run, and version subcommands over the
// internal lexer/parser/bytecode/interpreter pipeline and the
// pkg/aerojs embedding surface.
package main

import (
	"os"

	"github.com/aerojs/aerojs/cmd/aerojs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
