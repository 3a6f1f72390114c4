package lexer

import (
	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/token"
)

// scanParenGroup consumes a `( ... )` group, calling scanOne for every token
// inside it, stopping exactly at the matching close paren (nested parens
// are handled transparently since scanOne re-enters for them). It assumes
// the current position is at the opening '(' and leaves it consumed.
func (l *Lexer) scanParenGroup() bool {
	l.skipTrivia()
	if l.peek() != '(' {
		l.errorf(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter, "expected '('")
		return false
	}
	target := l.parenDepth
	l.advance()
	for l.parenDepth > target {
		l.skipTrivia()
		if l.atEnd() {
			l.fatalf("unterminated parenthesized group")
			return false
		}
		if l.peek() == ')' && l.parenDepth == target+1 {
			l.advance()
			return true
		}
		l.scanOne()
	}
	return true
}

// scanBraceGroup consumes a `{ ... }` block the same way scanParenGroup
// consumes a paren group.
func (l *Lexer) scanBraceGroup() bool {
	l.skipTrivia()
	if l.peek() != '{' {
		l.errorf(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter, "expected '{'")
		return false
	}
	target := l.braceDepth
	l.advance()
	for l.braceDepth > target {
		l.skipTrivia()
		if l.atEnd() {
			l.fatalf("unterminated block")
			return false
		}
		if l.peek() == '}' && l.braceDepth == target+1 {
			l.advance()
			return true
		}
		l.scanOne()
	}
	return true
}

func (l *Lexer) scanIf() {
	l.emit(token.IF_COND_BEGIN, "", nil)
	l.scanParenGroup()
	l.emit(token.IF_COND_END, "", nil)
	l.emit(token.IF_BLOCK_BEGIN, "", nil)
	l.scanBraceGroup()
	l.emit(token.IF_BLOCK_END, "", nil)

	l.skipTrivia()
	if l.matchKeyword("else") {
		l.skipTrivia()
		if l.matchKeyword("if") {
			l.emit(token.ELSE_BLOCK_BEGIN, "", nil)
			l.scanIf()
			l.emit(token.ELSE_BLOCK_END, "", nil)
			return
		}
		l.emit(token.ELSE_BLOCK_BEGIN, "", nil)
		l.scanBraceGroup()
		l.emit(token.ELSE_BLOCK_END, "", nil)
	}
}

// matchKeyword consumes word if it appears next (as a whole identifier),
// used for the optional trailing `else`/`if` lookahead.
func (l *Lexer) matchKeyword(word string) bool {
	save := l.pos
	for _, want := range word {
		if l.peek() != want {
			l.pos = save
			return false
		}
		l.advance()
	}
	if isIdentPart(l.peek()) {
		l.pos = save
		return false
	}
	return true
}

func (l *Lexer) scanWhile() {
	l.emit(token.WHILE_COND_BEGIN, "", nil)
	l.scanParenGroup()
	l.emit(token.WHILE_COND_END, "", nil)
	l.emit(token.WHILE_BLOCK_BEGIN, "", nil)
	l.scanBraceGroup()
	l.emit(token.WHILE_BLOCK_END, "", nil)
}

// scanFor frames each of the three `for (init; cond; update)` clauses
// separately; the parser, which holds the fully materialized token slice,
// is responsible for emitting bytecode in init/cond/block/update order even
// though that differs from source order (spec §4.2.6).
func (l *Lexer) scanFor() {
	l.skipTrivia()
	if l.peek() != '(' {
		l.errorf(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter, "expected '(' after 'for'")
		return
	}
	target := l.parenDepth
	l.advance()

	l.emit(token.FOR_INIT_BEGIN, "", nil)
	l.scanForClause(target, ';')
	l.emit(token.FOR_INIT_END, "", nil)

	l.emit(token.FOR_COND_BEGIN, "", nil)
	l.scanForClause(target, ';')
	l.emit(token.FOR_COND_END, "", nil)

	l.emit(token.FOR_UPDATE_BEGIN, "", nil)
	l.scanForClause(target, ')')
	l.emit(token.FOR_UPDATE_END, "", nil)

	l.emit(token.FOR_BLOCK_BEGIN, "", nil)
	l.scanBraceGroup()
	l.emit(token.FOR_BLOCK_END, "", nil)
}

// scanForClause scans until the next `;` or the closing `)` at the for
// statement's own paren depth, consuming the delimiter.
func (l *Lexer) scanForClause(target int, delim rune) {
	for {
		l.skipTrivia()
		if l.atEnd() {
			l.fatalf("unterminated for-statement")
			return
		}
		if l.parenDepth == target+1 && l.peek() == delim {
			l.advance()
			return
		}
		l.scanOne()
	}
}

func (l *Lexer) scanSwitch() {
	l.emit(token.SWITCH_BEGIN, "", nil)
	l.scanParenGroup()
	l.skipTrivia()
	if l.peek() != '{' {
		l.errorf(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter, "expected '{' after switch condition")
		return
	}
	target := l.braceDepth
	l.advance()
	for l.braceDepth > target {
		l.skipTrivia()
		if l.atEnd() {
			l.fatalf("unterminated switch body")
			return
		}
		if l.peek() == '}' && l.braceDepth == target+1 {
			l.advance()
			break
		}
		l.scanOne()
	}
	l.emit(token.SWITCH_END, "", nil)
}

// scanCase frames `case EXPR: stmts...` up to (not including) the next
// case/default/closing-brace at the same depth. Cases fall through by
// default (spec §9): no implicit break is inserted between cases.
func (l *Lexer) scanCase() {
	l.emit(token.CASE_COND_BEGIN, "", nil)
	target := l.braceDepth
	for {
		l.skipTrivia()
		if l.peek() == ':' {
			l.advance()
			break
		}
		if l.atEnd() {
			l.fatalf("unterminated case label")
			return
		}
		l.scanOne()
	}
	l.emit(token.CASE_COND_END, "", nil)
	l.emit(token.CASE_BLOCK_BEGIN, "", nil)
	l.scanSwitchBody(target)
	l.emit(token.CASE_BLOCK_END, "", nil)
}

func (l *Lexer) scanDefault() {
	l.skipTrivia()
	if l.peek() != ':' {
		l.errorf(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter, "expected ':' after default")
		return
	}
	l.advance()
	l.emit(token.DEFAULT_BLOCK_BEGIN, "", nil)
	l.scanSwitchBody(l.braceDepth)
	l.emit(token.DEFAULT_BLOCK_END, "", nil)
}

// scanSwitchBody scans statements until the next case/default keyword or
// the enclosing switch's closing brace, without consuming that delimiter.
func (l *Lexer) scanSwitchBody(target int) {
	for {
		l.skipTrivia()
		if l.atEnd() {
			return
		}
		if l.braceDepth == target && l.peek() == '}' {
			return
		}
		if l.peekIsWord("case") || l.peekIsWord("default") {
			return
		}
		l.scanOne()
	}
}

func (l *Lexer) peekIsWord(word string) bool {
	save := l.pos
	ok := l.matchKeyword(word)
	l.pos = save
	return ok
}

// scanEventHandler frames `on_error { ... }` / `on_tick { ... }` (spec
// §4.6): a module-level, unnamed, parameterless block whose body becomes a
// system event handler. kind is ON_ERROR or ON_TICK; the lexer tags the
// EVENT_BLOCK_BEGIN marker's Identifier with the keyword spelling so the
// parser knows which event.Kind to register without re-deriving it from
// surrounding context.
func (l *Lexer) scanEventHandler(kind token.Type) {
	name := "on_error"
	if kind == token.ON_TICK {
		name = "on_tick"
	}
	prevFunction := l.currentFunction
	l.currentFunction = name
	defer func() { l.currentFunction = prevFunction }()

	l.emit(token.EVENT_BLOCK_BEGIN, name, nil)
	l.scanBraceGroup()
	l.emit(token.EVENT_BLOCK_END, name, nil)
}

// scanFunctionDef frames `var NAME(params) { body }` (spec §4.2.7). All
// functions are internally variadic: a hidden trailing parameter count is
// pushed by the caller, so the parameter list here only names the
// identifiers bound inside the body.
func (l *Lexer) scanFunctionDef(name string) {
	prevFunction := l.currentFunction
	l.currentFunction = name
	defer func() { l.currentFunction = prevFunction }()

	if !l.declareOnly {
		if _, exists := l.ctx.Funcs[name]; !exists {
			// Pass 1 should already have declared it; if not (nested
			// function-like forms), register it now.
			l.ctx.Funcs[name] = &FuncRecord{Name: name, ParamCount: 0, ModuleID: l.moduleID}
		}
	}

	l.emit(token.FUNCTION_DEF_BEGIN, name, nil)

	l.skipTrivia()
	if l.peek() != '(' {
		l.errorf(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter, "expected '(' in function definition")
		return
	}
	l.advance()
	paramCount := 0
	for {
		l.skipTrivia()
		if l.peek() == ')' {
			l.advance()
			break
		}
		pname, ok := l.expectIdentName()
		if !ok {
			return
		}
		paramCount++
		fqn := token.FullyQualifiedName(token.Local, l.moduleName, name, pname)
		if !l.declareOnly {
			l.ctx.Vars[fqn] = &VarRecord{Scope: token.Local, Module: l.moduleName}
		}
		l.emit(token.VARIABLE_DEF, fqn, nil)
		l.skipTrivia()
		if l.peek() == ',' {
			l.advance()
		}
	}
	if l.declareOnly {
		l.ctx.Funcs[name] = &FuncRecord{Name: name, ParamCount: paramCount, ModuleID: l.moduleID}
	} else if rec, ok := l.ctx.Funcs[name]; ok {
		rec.ParamCount = paramCount
	}

	// Marks where the parameter run ends, so the parser never has to guess
	// whether a VARIABLE_DEF token is a parameter or the function body's
	// first local declaration (both look identical otherwise).
	l.emit(token.FUNCTION_PARAMS_END, "", nil)

	l.scanBraceGroup()
	l.emit(token.FUNCTION_DEF_END, name, nil)
}

// scanFunctionCall frames `NAME(args...)` call sites (spec §4.2.7). The
// callee may be a forward-declared script function (resolved via ctx.Funcs,
// populated in pass 1) or a builtin (resolved via ctx.Builtins); either way
// the lexer only needs to validate a minimum argument count here.
func (l *Lexer) scanFunctionCall(name string) {
	l.emit(token.FUNCTION_CALL_BEGIN, name, nil)
	l.skipTrivia()
	if l.peek() != '(' {
		l.errorf(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter, "expected '(' in call to %q", name)
		return
	}
	l.advance()
	argCount := 0
	for {
		l.skipTrivia()
		if l.peek() == ')' {
			l.advance()
			break
		}
		l.emit(token.FUNCTION_PARAM_BEGIN, "", nil)
		depth := l.parenDepth
		for {
			l.skipTrivia()
			if l.parenDepth == depth && (l.peek() == ',' || l.peek() == ')') {
				break
			}
			if l.atEnd() {
				l.fatalf("unterminated call to %q", name)
				return
			}
			l.scanOne()
		}
		argCount++
		l.emit(token.FUNCTION_PARAM_END, "", nil)
		l.skipTrivia()
		if l.peek() == ',' {
			l.advance()
		}
	}

	if !l.declareOnly {
		if b, ok := l.ctx.LookupBuiltin(name); ok {
			if argCount < b.MinArity {
				l.errorf(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter,
					"call to builtin %q needs at least %d argument(s), got %d", name, b.MinArity, argCount)
			}
		} else if _, ok := l.ctx.Funcs[name]; !ok {
			l.errorf(dslerrors.KindLexical, dslerrors.CodeUnknownIdentifier, "call to undeclared function %q", name)
		}
	}

	l.emit(token.FUNCTION_CALL_END, name, nil)
}
