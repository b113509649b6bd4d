// Package cmd implements the aerojs command-line tool's subcommands,
// structured after the teacher's cmd/dwscript/cmd package: a package-
// level rootCmd with persistent flags, one file per subcommand, each
// registering itself with rootCmd from its own init.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "aerojs",
	Short: "AeroJS: a JavaScript lexer, parser, bytecode compiler and interpreter",
	Long: `aerojs drives the AeroJS execution engine core from the command line.

It exposes each pipeline stage as its own subcommand so the lexer,
parser, bytecode compiler, and interpreter can be exercised and
inspected independently of an embedding program.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

// readInput resolves a subcommand's source: either evalExpr (when set)
// or the single file argument, matching every teacher pipeline-stage
// subcommand's convention.
func readInput(evalExpr string, args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, rerr := os.ReadFile(args[0])
		if rerr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], rerr)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}
