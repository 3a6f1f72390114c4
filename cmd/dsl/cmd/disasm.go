package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-dsl/internal/lexer"
	"github.com/cwbudde/go-dsl/internal/runner"
	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [file]",
	Short: "Compile a script and print its disassembly",
	Long: `Compile a script to bytecode and print the full instruction listing,
one line per instruction, with jump targets and operands resolved.

If no file is given, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDisasm,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}

func runDisasm(_ *cobra.Command, args []string) error {
	source, name, err := readSource(args)
	if err != nil {
		return noInputs("reading input: %v", err)
	}

	mod := runner.Single(name, source)
	lr, cr := runner.Compile(mod, lexer.WarnLevel(warnLevel), runner.Externals{})
	if lr.HasErrors() {
		for _, e := range lr.Errors[name] {
			fmt.Fprintln(os.Stderr, e)
		}
		return runFailed("lexing failed")
	}
	if len(cr.Errors) > 0 {
		for _, e := range cr.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return runFailed("compilation failed with %d error(s)", len(cr.Errors))
	}

	fmt.Print(disassembleListing(cr.Program))
	return nil
}
