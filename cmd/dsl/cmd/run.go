package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cwbudde/go-dsl/internal/lexer"
	"github.com/cwbudde/go-dsl/internal/runner"
	"github.com/spf13/cobra"
)

var (
	timingMode int
	runMode    int
	traceMode  int
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Execute a script",
	Long: `Execute a script through the full lex -> compile -> VM pipeline (spec §6.4).

  -d{0,1,2}  timing display: off, seconds, milliseconds
  -r{0,1,2}  0 run, 1 lex+parse only, 2 lex only
  -t{0,1}    VM instruction trace

If no file is given, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVarP(&timingMode, "timing", "d", 0, "timing display: 0 off, 1 seconds, 2 milliseconds")
	runCmd.Flags().IntVarP(&runMode, "run-mode", "r", 0, "0 run, 1 lex+parse only, 2 lex only")
	runCmd.Flags().IntVarP(&traceMode, "trace", "t", 0, "VM instruction trace: 0 off, 1 on")
}

func runScript(_ *cobra.Command, args []string) error {
	source, name, err := readSource(args)
	if err != nil {
		return noInputs("reading input: %v", err)
	}

	start := time.Now()
	defer reportTiming(start)

	mod := runner.Single(name, source)
	wl := lexer.WarnLevel(warnLevel)

	lr := runner.Lex(mod, wl, runner.Externals{})
	if lr.HasErrors() {
		for _, e := range lr.Errors[name] {
			fmt.Fprintln(os.Stderr, e)
		}
		return runFailed("lexing failed")
	}
	if runMode == 2 {
		return nil
	}

	prog, errs := compileProgram(lr, mod)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return runFailed("compilation failed with %d error(s)", len(errs))
	}
	if runMode == 1 {
		return nil
	}

	var trace io.Writer
	if traceMode != 0 {
		trace = os.Stderr
	}
	v, err := runner.Run(prog, runner.RunOptions{Output: os.Stdout, Trace: trace})
	if err != nil {
		return runFailed("vm error: %v", err)
	}
	if v.ExitCode() != 0 {
		return runFailed("program exited with code %d", v.ExitCode())
	}
	return nil
}

func reportTiming(start time.Time) {
	if timingMode == 0 {
		return
	}
	elapsed := time.Since(start)
	if timingMode == 2 {
		fmt.Fprintf(os.Stderr, "time: %dms\n", elapsed.Milliseconds())
		return
	}
	fmt.Fprintf(os.Stderr, "time: %.3fs\n", elapsed.Seconds())
}
