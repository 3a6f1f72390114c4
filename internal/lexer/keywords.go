package lexer

import (
	"strings"

	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/token"
)

// peekSkipSpace looks past horizontal/vertical whitespace (but not comments)
// to classify what follows an identifier, without consuming input.
func (l *Lexer) peekSkipSpace() rune {
	i := l.pos
	for i < len(l.src) {
		switch l.src[i] {
		case ' ', '\t', '\r', '\n':
			i++
			continue
		}
		return l.src[i]
	}
	return 0
}

// scanKeyword dispatches a recognized keyword to its framing handler.
func (l *Lexer) scanKeyword(tt token.Type, spelling string) {
	switch tt {
	case token.VAR:
		l.scanVarOrFunctionDecl(token.Script, false)
	case token.LOCAL:
		l.scanVarOrFunctionDecl(token.Local, false)
	case token.SCRIPT:
		l.scanVarOrFunctionDecl(token.Script, false)
	case token.GLOBAL:
		l.scanVarOrFunctionDecl(token.Global, false)
	case token.CONST:
		l.scanConstDecl()
	case token.TRUE:
		l.emit(token.TRUE, "", true)
	case token.FALSE:
		l.emit(token.FALSE, "", false)
	case token.IF:
		l.scanIf()
	case token.ELSE:
		l.emit(token.ELSE, "", nil)
	case token.WHILE:
		l.scanWhile()
	case token.FOR:
		l.scanFor()
	case token.SWITCH:
		l.scanSwitch()
	case token.CASE:
		l.scanCase()
	case token.DEFAULT:
		l.scanDefault()
	case token.BREAK, token.BRK:
		l.emit(tt, spelling, nil)
	case token.CONTINUE:
		l.emit(token.CONTINUE, "", nil)
	case token.RETURN:
		l.emit(token.RETURN, "", nil)
	case token.STOP:
		l.emit(token.STOP, "", nil)
	case token.BLOCK:
		l.emit(token.BLOCK, "", nil)
	case token.END:
		l.emit(token.END, "", nil)
	case token.ON_ERROR:
		l.scanEventHandler(token.ON_ERROR)
	case token.ON_TICK:
		l.scanEventHandler(token.ON_TICK)
	default:
		l.emit(tt, spelling, nil)
	}
}

// scanVarOrFunctionDecl handles `var|local|script|global NAME ...`. If NAME
// is immediately followed by '(' it is a function definition (spec §4.2.7);
// otherwise it is a variable declaration (spec §4.2.3), optionally with a
// static initializer.
func (l *Lexer) scanVarOrFunctionDecl(scope token.Scope, readOnly bool) {
	name, ok := l.expectIdentName()
	if !ok {
		return
	}
	if l.peekSkipSpace() == '(' {
		l.scanFunctionDef(name)
		return
	}
	l.declareVariable(scope, name, readOnly)
}

func (l *Lexer) scanConstDecl() {
	// `const` prefixes one of var/local/script/global.
	l.skipTrivia()
	ch := l.peek()
	switch {
	case isIdentStart(ch):
		start := l.pos
		for isIdentPart(l.peek()) {
			l.advance()
		}
		word := string(l.src[start:l.pos])
		switch word {
		case "var", "script":
			l.scanVarOrFunctionDecl(token.Script, true)
		case "local":
			l.scanVarOrFunctionDecl(token.Local, true)
		case "global":
			l.scanVarOrFunctionDecl(token.Global, true)
		default:
			l.errorf(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter, "'const' must be followed by var/local/script/global")
		}
	default:
		l.errorf(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter, "'const' must be followed by var/local/script/global")
	}
}

func (l *Lexer) expectIdentName() (string, bool) {
	l.skipTrivia()
	if !isIdentStart(l.peek()) {
		l.errorf(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter, "expected identifier")
		return "", false
	}
	start := l.pos
	for isIdentPart(l.peek()) {
		l.advance()
	}
	for l.peek() == '.' && isIdentStart(l.peekAt(1)) {
		l.advance()
		for isIdentPart(l.peek()) {
			l.advance()
		}
	}
	return string(l.src[start:l.pos]), true
}

// declareVariable registers name into ctx.Vars under its fully qualified
// name, validating the scope rules of spec §4.2.3, then emits a
// VARIABLE_DEF marker followed by a static-initializer evaluation if one is
// present.
func (l *Lexer) declareVariable(scope token.Scope, name string, readOnly bool) {
	if (scope == token.Local || scope == token.Script) && strings.ContainsRune(name, '.') {
		l.errorf(dslerrors.KindScope, dslerrors.CodeForbiddenDottedName, "local/script variable name %q cannot contain '.'", name)
		return
	}
	if scope == token.Local && l.currentFunction == "" {
		l.errorf(dslerrors.KindScope, dslerrors.CodeWrongScope, "'local' is illegal outside a function body")
		return
	}
	if scope == token.Global && strings.ContainsRune(name, '.') {
		first := name[:strings.IndexByte(name, '.')]
		if first != l.moduleName {
			l.errorf(dslerrors.KindScope, dslerrors.CodeWrongScope,
				"global dotted name %q must begin with the declaring module name %q", name, l.moduleName)
		}
	}

	fqn := token.FullyQualifiedName(scope, l.moduleName, l.currentFunction, name)
	if !l.declareOnly {
		if _, exists := l.ctx.Vars[fqn]; exists {
			l.errorf(dslerrors.KindScope, dslerrors.CodeRedefinition, "variable %q redeclared", fqn)
		}
		l.ctx.Vars[fqn] = &VarRecord{Scope: scope, ReadOnly: readOnly, Module: l.moduleName}
	}

	l.emitTok(token.Token{Type: token.VARIABLE_DEF, Identifier: fqn, Modifier: scope, ReadOnly: readOnly})

	l.skipTrivia()
	if l.peek() == '=' && l.peekAt(1) != '=' {
		l.advance()
		l.scanStaticInitializer()
	}
	l.skipTrivia()
	if l.peek() == ';' {
		l.advance()
	}
}

// scanIdentifierUse resolves a bare identifier reference against the
// Local -> Script -> Global lookup chain (spec §4.2.3), then emits either a
// FUNCTION_CALL_BEGIN frame (if '(' follows) or a plain IDENT reference.
func (l *Lexer) scanIdentifierUse(name string) {
	if l.peekSkipSpace() == '(' {
		l.scanFunctionCall(name)
		return
	}

	fqn, scope, ok := l.resolveReference(name)
	if !ok {
		if !l.declareOnly {
			l.errorf(dslerrors.KindLexical, dslerrors.CodeUnknownIdentifier, "unknown identifier %q", name)
		}
		fqn = name
	}
	l.emitTok(token.Token{Type: token.IDENT, Identifier: fqn, Modifier: scope})
}

func (l *Lexer) resolveReference(name string) (fqn string, scope token.Scope, ok bool) {
	if l.currentFunction != "" {
		local := token.FullyQualifiedName(token.Local, l.moduleName, l.currentFunction, name)
		if _, found := l.ctx.Vars[local]; found {
			return local, token.Local, true
		}
	}
	script := token.FullyQualifiedName(token.Script, l.moduleName, l.currentFunction, name)
	if _, found := l.ctx.Vars[script]; found {
		return script, token.Script, true
	}
	global := token.FullyQualifiedName(token.Global, l.moduleName, l.currentFunction, name)
	if _, found := l.ctx.Vars[global]; found {
		return global, token.Global, true
	}
	if strings.HasPrefix(name, "Global.") {
		if _, found := l.ctx.Vars[name]; found {
			return name, token.Global, true
		}
	}
	return "", token.Script, false
}
