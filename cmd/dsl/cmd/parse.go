package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-dsl/internal/bytecode"
	"github.com/cwbudde/go-dsl/internal/lexer"
	"github.com/cwbudde/go-dsl/internal/runner"
	"github.com/spf13/cobra"
)

var parseDetail int

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Compile a script and print the resulting instruction stream",
	Long: `Compile a script to bytecode and print it (spec §6.4's -p).

This language has no separate parse tree: parsing and code generation happen
in the same pass, so "parser output" is the compiled instruction listing.

  -p0  (default) just report success/failure
  -p1  print the instruction listing
  -p2  also print the function and global tables

If no file is given, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().IntVarP(&parseDetail, "detail", "p", 0, "0 silent, 1 instruction listing, 2 +tables")
}

func runParse(_ *cobra.Command, args []string) error {
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

	if parseDetail >= 1 {
		fmt.Print(disassembleListing(cr.Program))
	}
	if parseDetail >= 2 {
		printTables(cr.Program)
	}
	return nil
}

func printTables(prog *bytecode.Program) {
	fmt.Println("functions:")
	for name, fn := range prog.Functions {
		fmt.Printf("  %-20s entry=%d params=%d\n", name, fn.EntryPoint, fn.ParamCount)
	}
	fmt.Println("globals:")
	for idx, name := range prog.Globals {
		fmt.Printf("  %3d  %s\n", idx, name)
	}
}

// disassembleListing renders prog the same way disasm does, shared so
// parse -p1/-p2 and disasm never drift apart.
func disassembleListing(prog *bytecode.Program) string {
	return bytecode.Disassemble(prog)
}
