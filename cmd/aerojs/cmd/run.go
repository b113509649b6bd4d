package cmd

import (
	"fmt"

	"github.com/aerojs/aerojs/internal/value"
	"github.com/aerojs/aerojs/pkg/aerojs"
	"github.com/spf13/cobra"
)

var traceExec bool

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Compile and execute a JavaScript file or expression",
	Long: `Lex, parse, bytecode-compile, and interpret a JavaScript program,
printing its completion value.

Examples:
  aerojs run script.js
  aerojs run -e "1 + 2"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "run inline code instead of reading from file")
	runCmd.Flags().BoolVar(&traceExec, "trace", false, "log engine lifecycle messages and uncaught exceptions to stderr")
}

func runScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(evalExpr, args)
	if err != nil {
		return err
	}

	var opts []aerojs.Option
	if traceExec {
		opts = append(opts, aerojs.WithLogger(aerojs.StderrLogger()))
	}
	engine := aerojs.NewEngine(opts...)
	defer engine.Close()

	ctx := engine.NewContext()
	defer ctx.Close()

	result, err := ctx.Evaluate(input)
	if err != nil {
		if exc := ctx.LastException(); exc != nil {
			return fmt.Errorf("%s: uncaught %s", filename, exc.Error())
		}
		return fmt.Errorf("%s: %w", filename, err)
	}

	if result != value.Undefined {
		fmt.Println(value.ToString(result))
	}
	return nil
}
