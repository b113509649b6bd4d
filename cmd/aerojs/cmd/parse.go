package cmd

import (
	"fmt"

	"github.com/aerojs/aerojs/internal/ast"
	"github.com/aerojs/aerojs/internal/parser"
	"github.com/spf13/cobra"
)

var dumpAST bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a JavaScript file or expression and report diagnostics",
	Long: `Parse a JavaScript program and print its AST, or just report
syntax errors when --dump-ast is not given.

Examples:
  aerojs parse script.js
  aerojs parse -e "let x = 1 + 2;" --dump-ast`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "parse inline code instead of reading from file")
	parseCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed AST")
}

func parseScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(evalExpr, args)
	if err != nil {
		return err
	}

	p := parser.New(input)
	prog := p.ParseProgram()

	for _, le := range p.LexErrors() {
		fmt.Println(le.Format(input, false))
	}
	for _, pe := range p.Errors() {
		fmt.Println(pe.Format(input, false))
	}

	if dumpAST {
		fmt.Println(ast.Print(prog))
	}

	if len(p.LexErrors()) > 0 || len(p.Errors()) > 0 {
		return fmt.Errorf("%s: parse failed", filename)
	}
	return nil
}
