package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/aerojs/aerojs/internal/parser"
	"github.com/spf13/cobra"
)

var (
	compileOut  string
	disassemble bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a JavaScript file to AeroJS bytecode",
	Long: `Parse and bytecode-compile a JavaScript program, writing the
serialized Function to disk (.aoc by default) for later loading by the
disasm subcommand.

Examples:
  aerojs compile script.js
  aerojs compile script.js -o script.aoc --disassemble`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOut, "output", "o", "", "output path (default: input path with .aoc extension)")
	compileCmd.Flags().BoolVar(&disassemble, "disassemble", false, "print disassembly after compiling")
}

func compileScript(cmd *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	source := string(content)

	fn, err := compileSource(source)
	if err != nil {
		return err
	}

	if disassemble {
		fmt.Println(bytecode.Disassemble(fn))
	}

	out := compileOut
	if out == "" {
		out = strings.TrimSuffix(filename, filepathExt(filename)) + ".aoc"
	}
	if err := os.WriteFile(out, bytecode.Marshal(fn), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Compiled %s -> %s\n", filename, out)
	}
	return nil
}

// compileSource runs the lex/parse/compile pipeline shared by compile
// and disasm, surfacing the first diagnostic of whichever stage
// fails first.
func compileSource(source string) (*bytecode.Function, error) {
	p := parser.New(source)
	prog := p.ParseProgram()

	if lexErrs := p.LexErrors(); len(lexErrs) > 0 {
		return nil, lexErrs[0]
	}
	if parseErrs := p.Errors(); len(parseErrs) > 0 {
		return nil, parseErrs[0]
	}
	fn, compileErrs := bytecode.Compile(prog, source)
	if len(compileErrs) > 0 {
		return nil, compileErrs[0]
	}
	return fn, nil
}

func filepathExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
