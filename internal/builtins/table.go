// Package builtins holds the fixed, ordered built-in function table (spec
// §3.5): each entry's index in the table IS its JBF dispatch id, so the
// slice order here is load-bearing and must never be reordered once a
// program has been compiled against it.
//
// Names and minimum arities are ported from the original engine's standard
// function table (original_source/Source/ParseData.cpp's
// standardFunctionNames/standardFunctionParams), which the spec's §3.5
// "fixed ordered table" and §6.1 JBF opcode describe only abstractly.
package builtins

import "github.com/cwbudde/go-dsl/internal/lexer"

// Entry is one row of the built-in table: a name and the minimum argument
// count a call site must supply (spec §4.2.7 "builtin min-param-count
// checks").
type Entry struct {
	Name     string
	MinArity int
}

// Table is the fixed, ordered built-in function list.
var Table = []Entry{
	{"string.find", 3},
	{"string.len", 1},
	{"string.sub", 3},
	{"string.replace", 3},
	{"string.tolower", 1},
	{"string.toupper", 1},
	{"string.trimEnd", 2},
	{"string.trimStart", 2},
	{"string.toCollection", 1},
	{"string.fromCollection", 1},
	{"abs", 1},
	{"acos", 1},
	{"asin", 1},
	{"atan", 1},
	{"atan2", 2},
	{"cos", 1},
	{"sin", 1},
	{"tan", 1},
	{"cosh", 1},
	{"sinh", 1},
	{"tanh", 1},
	{"exp", 1},
	{"log", 1},
	{"log10", 1},
	{"sqrt", 1},
	{"ceil", 1},
	{"fabs", 1},
	{"floor", 1},
	{"fmod", 2},
	{"print", 1},
	{"printf", 1},
	{"input", 0},
	{"read", 1},
	{"write", 2},
	{"files", 1},
	{"delete", 1},
	{"random", 2},
	{"seed", 1},
}

// IndexOf returns a builtin's dispatch id (its Table index) and whether it
// exists.
func IndexOf(name string) (int, bool) {
	for i, e := range Table {
		if e.Name == name {
			return i, true
		}
	}
	return 0, false
}

// LexerEntries adapts Table to the shape lexer.CompileCtx consults while
// validating call sites (spec §4.2.7).
func LexerEntries() []lexer.BuiltinEntry {
	out := make([]lexer.BuiltinEntry, len(Table))
	for i, e := range Table {
		out[i] = lexer.BuiltinEntry{Name: e.Name, MinArity: e.MinArity}
	}
	return out
}
