package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-dsl/internal/config"
	"github.com/cwbudde/go-dsl/internal/lexer"
	"github.com/spf13/cobra"
)

// Version information (set by build flags).
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Exit codes (spec §6.4).
const (
	exitSuccess   = 0
	exitBadArgs   = -1
	exitNoInputs  = -2
	exitRunFailed = -3
)

var (
	warnLevel int
	unitPath  string
)

var rootCmd = &cobra.Command{
	Use:   "dsl",
	Short: "Interpreter and toolchain for the stack-based scripting language",
	Long: `dsl is a Go implementation of a stack-based bytecode scripting language:
a marker-framed lexer, a shunting-yard compiler, and a bytecode VM with
address-cell addressing and module-scoped on_error/on_tick event handlers.

Subcommands mirror the pipeline stages: lex tokenizes, parse compiles to
bytecode, disasm shows the compiled listing, and run executes it.`,
	Version: Version,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if warnLevel < 0 || warnLevel > 3 {
			return badArgs("-w must be 0, 1, 2 or 3, got %d", warnLevel)
		}
		return nil
	},
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if ec, ok := err.(exitCodeError); ok {
			return ec.code
		}
		return exitBadArgs
	}
	return exitSuccess
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	defaults, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		defaults = &config.Defaults{}
	}

	rootCmd.PersistentFlags().IntVarP(&warnLevel, "warn", "w", config.ApplyInt(defaults.Warn, int(lexer.WarnIgnore)),
		"warning policy: 0 ignore, 1 info, 2 all, 3 as-errors")
	rootCmd.PersistentFlags().StringVar(&unitPath, "unit-path", "", "additional module search path (accepted; not read by any command)")
}

// exitCodeError lets a subcommand's RunE request a specific spec §6.4 exit
// code instead of cobra's default (1 on any error).
type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string { return e.err.Error() }

func badArgs(format string, args ...any) error {
	return exitCodeError{code: exitBadArgs, err: fmt.Errorf(format, args...)}
}

func noInputs(format string, args ...any) error {
	return exitCodeError{code: exitNoInputs, err: fmt.Errorf(format, args...)}
}

func runFailed(format string, args ...any) error {
	return exitCodeError{code: exitRunFailed, err: fmt.Errorf(format, args...)}
}
