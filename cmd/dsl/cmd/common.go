package cmd

import (
	"io"
	"os"

	"github.com/cwbudde/go-dsl/internal/bytecode"
	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/runner"
)

// readSource resolves the single positional file argument, falling back to
// stdin when none is given.
func readSource(args []string) (source, name string, err error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return string(data), args[0], nil
}

// compileProgram parses an already-lexed compile unit; the CLI never
// registers host FFI functions, so externals is always empty.
func compileProgram(lr runner.LexResult, mod runner.Modules) (*bytecode.Program, []*dslerrors.CompileError) {
	cr := runner.CompileTokens(lr, mod.SortedModules(), runner.Externals{})
	return cr.Program, cr.Errors
}
