package lexer

import "github.com/cwbudde/go-dsl/internal/token"

// VarRecord is a declared variable's scope/mutability, keyed by its fully
// qualified name (spec §4.2.3).
type VarRecord struct {
	Scope    token.Scope
	ReadOnly bool
	Module   string
}

// FuncRecord is a declared script function's call-site arity, pre-declared
// in pass 1 so forward references resolve before the body is lexed
// (spec §4.2.4).
type FuncRecord struct {
	Name       string
	ParamCount int
	ModuleID   int
}

// BuiltinEntry is one row of the fixed builtin-function table (spec §3.5).
type BuiltinEntry struct {
	Name     string
	MinArity int
}

// CompileCtx is shared by every module-level Lexer in a single compile unit:
// the global variable table, the function table, and module-name-to-id
// assignment all need to be visible across module boundaries.
type CompileCtx struct {
	Vars     map[string]*VarRecord
	Funcs    map[string]*FuncRecord
	Builtins []BuiltinEntry

	moduleIDs  map[string]int
	nextModule int
}

// NewCompileCtx builds an empty multi-module compile context seeded with the
// fixed builtin table.
func NewCompileCtx(builtins []BuiltinEntry) *CompileCtx {
	return &CompileCtx{
		Vars:      make(map[string]*VarRecord),
		Funcs:     make(map[string]*FuncRecord),
		Builtins:  builtins,
		moduleIDs: make(map[string]int),
	}
}

// ModuleID assigns (or returns the already-assigned) numeric id for a
// module name; CID opcodes reference modules by this id (spec §6.2).
func (c *CompileCtx) ModuleID(name string) int {
	if id, ok := c.moduleIDs[name]; ok {
		return id
	}
	id := c.nextModule
	c.moduleIDs[name] = id
	c.nextModule++
	return id
}

// LookupBuiltin returns the builtin table entry for name, if any.
func (c *CompileCtx) LookupBuiltin(name string) (BuiltinEntry, bool) {
	for _, b := range c.Builtins {
		if b.Name == name {
			return b, true
		}
	}
	return BuiltinEntry{}, false
}

// LexModules lexes every module of a compile unit, running ALL modules'
// declare pass before ANY module's real pass: a function defined in one
// module can then be called from another module regardless of which is
// lexed "first" in source order (spec §4.2.4).
func LexModules(ctx *CompileCtx, modules map[string]string, order []string, warnLevel WarnLevel) (map[string][]token.Token, map[string][]error) {
	lexers := make([]*Lexer, len(order))
	for i, name := range order {
		lexers[i] = New(ctx, name, modules[name], warnLevel)
	}
	for _, l := range lexers {
		l.DeclarePass()
		l.resetCursor()
	}
	for _, l := range lexers {
		l.RealPass()
	}

	tokensByModule := make(map[string][]token.Token, len(order))
	errsByModule := make(map[string][]error, len(order))
	for i, name := range order {
		tokensByModule[name] = lexers[i].tokens
		if errs := lexers[i].errors; len(errs) > 0 {
			converted := make([]error, len(errs))
			for j, e := range errs {
				converted[j] = e
			}
			errsByModule[name] = converted
		}
	}
	return tokensByModule, errsByModule
}
