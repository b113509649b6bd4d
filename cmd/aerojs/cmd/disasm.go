package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/aerojs/aerojs/internal/bytecode"
	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <file>",
	Short: "Disassemble a .aoc bytecode file or a JavaScript source file",
	Long: `Disassemble an AeroJS bytecode Function, per §4.3's instruction
listing format. Source files (.js) are lexed, parsed and compiled first;
.aoc files are loaded directly via internal/bytecode's binary format.`,
	Args: cobra.ExactArgs(1),
	RunE: disasmFile,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}

func disasmFile(cmd *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var fn *bytecode.Function
	if strings.HasSuffix(filename, ".aoc") {
		f, ok, uerr := bytecode.Unmarshal(content)
		if uerr != nil {
			return fmt.Errorf("failed to decode %s: %w", filename, uerr)
		}
		if !ok {
			return fmt.Errorf("%s is not a valid aerojs bytecode file", filename)
		}
		fn = f
	} else {
		fn, err = compileSource(string(content))
		if err != nil {
			return err
		}
	}

	fmt.Println(bytecode.Disassemble(fn))
	return nil
}
