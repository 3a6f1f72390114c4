package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-dsl/internal/lexer"
	"github.com/cwbudde/go-dsl/internal/runner"
	"github.com/cwbudde/go-dsl/internal/token"
	"github.com/spf13/cobra"
)

var (
	showTokens int
	showPos    bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a script and print the resulting token list",
	Long: `Tokenize (lex) a script (spec §6.4's -l).

  -l0  lex only, report success/failure
  -l1  (default) also print the resulting token list

If no file is given, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().IntVarP(&showTokens, "list", "l", 1, "0 silent, 1 print token list")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
}

func runLex(_ *cobra.Command, args []string) error {
	source, name, err := readSource(args)
	if err != nil {
		return noInputs("reading input: %v", err)
	}

	lr := runner.Lex(runner.Single(name, source), lexer.WarnLevel(warnLevel), runner.Externals{})
	if showTokens >= 1 {
		for _, tok := range lr.Tokens[name] {
			printToken(tok)
		}
	}

	if errs := lr.Errors[name]; len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return runFailed("lexing failed with %d error(s)", len(errs))
	}
	return nil
}

func printToken(tok token.Token) {
	out := fmt.Sprintf("[%-20s]", tok.Type)
	if tok.Identifier != "" {
		out += fmt.Sprintf(" %q", tok.Identifier)
	} else if tok.Value != nil {
		out += fmt.Sprintf(" %v", tok.Value)
	}
	if showPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}
