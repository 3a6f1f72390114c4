// Package runner drives the lex -> parse -> vm pipeline shared by the CLI
// (cmd/dsl/cmd) and the embeddable facade (pkg/dsl), so neither has to
// re-derive the declare/real two-pass lexing or the forward-call compile
// unit wiring on its own (spec §4.2.4, §4.3).
package runner

import (
	"io"
	"sort"

	"github.com/cwbudde/go-dsl/internal/builtins"
	"github.com/cwbudde/go-dsl/internal/bytecode"
	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/lexer"
	"github.com/cwbudde/go-dsl/internal/parser"
	"github.com/cwbudde/go-dsl/internal/token"
	"github.com/cwbudde/go-dsl/internal/vm"
)

// Modules is a compile unit: named source texts plus the order they should
// be lexed/compiled in (spec §4.2.4's module-switch ordering).
type Modules struct {
	Sources map[string]string
	Order   []string
}

// Single wraps one source string as a one-module compile unit, the shape
// every CLI subcommand and the facade's simple Eval both need.
func Single(name, source string) Modules {
	return Modules{Sources: map[string]string{name: source}, Order: []string{name}}
}

// LexResult is the outcome of lexing every module of a compile unit.
type LexResult struct {
	Tokens map[string][]token.Token
	Errors map[string][]error
}

// HasErrors reports whether any module produced lexical errors.
func (r LexResult) HasErrors() bool {
	for _, errs := range r.Errors {
		if len(errs) > 0 {
			return true
		}
	}
	return false
}

// SortedModules returns mod.Order if non-empty, else the map keys sorted,
// so callers that only populated Sources still get a deterministic walk.
func (m Modules) SortedModules() []string {
	if len(m.Order) > 0 {
		return m.Order
	}
	names := make([]string, 0, len(m.Sources))
	for name := range m.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Externals describes the host-registered FFI functions an embedding
// pkg/dsl.Engine has added beyond the fixed built-in table (spec §3.5's
// table is "fixed ordered", but an embedding host may extend it with its
// own Go functions). Entries keeps the lexer's arity-checked view and
// Index keeps the parser's JBF-dispatch-index view in lockstep, since both
// must agree on the same name -> slot assignment.
type Externals struct {
	Entries []lexer.BuiltinEntry
	Index   map[string]int
}

// Lex runs the declare/real two-pass lex (spec §4.2.4) over every module.
func Lex(m Modules, warnLevel lexer.WarnLevel, ext Externals) LexResult {
	order := m.SortedModules()
	entries := append(append([]lexer.BuiltinEntry(nil), builtins.LexerEntries()...), ext.Entries...)
	ctx := lexer.NewCompileCtx(entries)
	toks, errs := lexer.LexModules(ctx, m.Sources, order, warnLevel)
	return LexResult{Tokens: toks, Errors: errs}
}

// CompileResult is the outcome of compiling a lexed compile unit to
// bytecode.
type CompileResult struct {
	Program *bytecode.Program
	Errors  []*dslerrors.CompileError
}

// Compile lexes and then parses m into a single *bytecode.Program (spec
// §4.3). It stops after lexing if any module has lexical errors, since the
// parser assumes a clean token stream.
func Compile(m Modules, warnLevel lexer.WarnLevel, ext Externals) (LexResult, CompileResult) {
	lr := Lex(m, warnLevel, ext)
	if lr.HasErrors() {
		return lr, CompileResult{}
	}
	return lr, CompileTokens(lr, m.SortedModules(), ext)
}

// CompileTokens parses an already-lexed result, letting a caller that needs
// both the token stream (e.g. the CLI's lex/parse subcommands) and the
// compiled program avoid lexing twice.
func CompileTokens(lr LexResult, order []string, ext Externals) CompileResult {
	prog, errs := parser.Compile(lr.Tokens, order, ext.Index)
	return CompileResult{Program: prog, Errors: errs}
}

// RunOptions configures Run beyond the bare program (spec §6.4's `-t`/output
// redirection flags, plus an optional Host carrying RegisterFunction's FFI
// dispatch table for an embedding pkg/dsl.Engine).
type RunOptions struct {
	Output io.Writer
	Trace  io.Writer
	Host   *builtins.Host
}

// Run executes a compiled program to completion (or to an unhandled runtime
// error) and returns the VM so callers can inspect its ExitCode(). A
// *dslerrors.RuntimeError is routed to on_error and then ExitCode, never
// returned; the returned error is a program-counter failure or an operation
// error that lexval reports as a plain error (such as ++/-- on a String).
func Run(prog *bytecode.Program, opts RunOptions) (*vm.VM, error) {
	var vmOpts []vm.Option
	if opts.Host != nil {
		vmOpts = append(vmOpts, vm.WithHost(opts.Host))
	}
	if opts.Output != nil {
		vmOpts = append(vmOpts, vm.WithOutput(opts.Output))
	}
	if opts.Trace != nil {
		vmOpts = append(vmOpts, vm.WithTrace(opts.Trace))
	}
	v := vm.New(prog, vmOpts...)
	err := v.Run()
	return v, err
}
