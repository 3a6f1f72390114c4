// Package lexer turns UTF-8 module source into the flat ordered Token
// stream of spec §4.2: it performs identifier/function scoping across
// modules, evaluates fully-static initializer expressions at lex time, and
// frames every control structure with synthetic marker tokens so the
// parser never re-parses syntax (spec §4.2.6).
package lexer

import (
	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/token"
)

// WarnLevel is the `-w` CLI warning policy of spec §6.4.
type WarnLevel int

const (
	WarnIgnore WarnLevel = iota
	WarnInfo
	WarnAll
	WarnAsError
)

// Lexer scans a single module's source text into tokens, sharing symbol
// and function tables with the rest of the compile unit via ctx.
type Lexer struct {
	ctx        *CompileCtx
	moduleName string
	moduleID   int
	src        []rune

	pos        int
	line       int
	column     int
	offset     int
	parenDepth int
	braceDepth int

	currentFunction string // "" outside any function body
	warnLevel       WarnLevel

	tokens []token.Token
	errors []*dslerrors.CompileError

	// declareOnly is set during pass 1 (spec §4.2.4): function
	// declarations are registered into ctx.Funcs, everything else is
	// scanned but discarded, and no errors are reported.
	declareOnly bool
}

// New creates a Lexer for one module's source, sharing ctx across the
// whole multi-module compile unit.
func New(ctx *CompileCtx, moduleName, source string, warnLevel WarnLevel) *Lexer {
	runes, valid := decodeString(source)
	l := &Lexer{
		ctx:        ctx,
		moduleName: moduleName,
		moduleID:   ctx.ModuleID(moduleName),
		src:        runes,
		line:       1,
		column:     1,
		warnLevel:  warnLevel,
	}
	if !valid {
		l.errorf(dslerrors.KindLexical, dslerrors.CodeBadUTF8, "module %s contains invalid UTF-8", moduleName)
	}
	return l
}

// Lex runs both passes of spec §4.2.4 against this module in isolation and
// returns its token stream. Prefer LexModules for multi-module compile
// units, since it runs every module's declare pass before any module's real
// pass so cross-module forward calls resolve regardless of module order.
func (l *Lexer) Lex() ([]token.Token, []*dslerrors.CompileError) {
	l.DeclarePass()
	l.resetCursor()
	l.RealPass()
	return l.tokens, l.errors
}

// DeclarePass runs pass 1 (spec §4.2.4): it registers every function
// definition's fully qualified name and arity into the shared CompileCtx so
// forward references resolve, discarding everything else it scans.
func (l *Lexer) DeclarePass() { l.runPass(true) }

// RealPass runs pass 2: the module's real token stream, consulting
// whatever DeclarePass (run across every module in the compile unit) has
// already registered.
func (l *Lexer) RealPass() { l.runPass(false) }

func (l *Lexer) resetCursor() {
	l.pos, l.line, l.column, l.offset = 0, 1, 1, 0
	l.parenDepth, l.braceDepth = 0, 0
	l.currentFunction = ""
	l.tokens = nil
}

func (l *Lexer) runPass(declareOnly bool) {
	l.declareOnly = declareOnly
	for {
		l.skipTrivia()
		if l.atEnd() {
			return
		}
		l.scanOne()
	}
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	idx := l.pos + offset
	if idx < 0 || idx >= len(l.src) {
		return 0
	}
	return l.src[idx]
}

func (l *Lexer) advance() rune {
	if l.atEnd() {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	l.offset++
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	switch r {
	case '(':
		l.parenDepth++
	case ')':
		l.parenDepth--
	case '{':
		l.braceDepth++
	case '}':
		l.braceDepth--
	}
	return r
}

func (l *Lexer) pos_() token.Position {
	return token.Position{
		Line: l.line, Column: l.column, Offset: l.offset,
		ParenDepth: l.parenDepth, BraceDepth: l.braceDepth,
	}
}

// skipTrivia skips whitespace, `//` line comments, and nestable `/* ... */`
// block comments uniformly, so every higher-level scan can assume it starts
// on meaningful source (spec §4.2.1).
func (l *Lexer) skipTrivia() {
	for {
		switch {
		case l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\r' || l.peek() == '\n':
			l.advance()
		case l.peek() == '/' && l.peekAt(1) == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		case l.peek() == '/' && l.peekAt(1) == '*':
			l.advance()
			l.advance()
			depth := 1
			for !l.atEnd() && depth > 0 {
				if l.peek() == '/' && l.peekAt(1) == '*' {
					depth++
					l.advance()
					l.advance()
				} else if l.peek() == '*' && l.peekAt(1) == '/' {
					depth--
					l.advance()
					l.advance()
				} else {
					l.advance()
				}
			}
		default:
			return
		}
	}
}

func (l *Lexer) emit(tt token.Type, identifier string, value any) {
	if l.declareOnly {
		return
	}
	l.tokens = append(l.tokens, token.Token{
		Type: tt, Identifier: identifier, Value: value,
		Pos: l.pos_(), ModuleID: l.moduleID,
	})
}

func (l *Lexer) emitTok(t token.Token) {
	if l.declareOnly {
		return
	}
	t.ModuleID = l.moduleID
	l.tokens = append(l.tokens, t)
}

func (l *Lexer) errorf(kind dslerrors.Kind, code dslerrors.Code, format string, args ...any) {
	if l.declareOnly {
		return
	}
	l.errors = append(l.errors, dslerrors.NewCompileError(kind, code, format, args...))
}

func (l *Lexer) fatalf(format string, args ...any) {
	l.errors = append(l.errors, dslerrors.NewCompileError(dslerrors.KindFatal, dslerrors.CodeInternalInvariant, format, args...))
}

// scanOne dispatches on the next meaningful rune.
func (l *Lexer) scanOne() {
	ch := l.peek()
	switch {
	case isDigit(ch):
		l.scanNumber()
	case ch == '\'':
		l.scanChar()
	case ch == '"':
		l.scanString()
	case ch == '$' && l.peekAt(1) == '"':
		l.scanRawString()
	case isIdentStart(ch):
		l.scanIdentifierOrKeyword()
	case ch == '(':
		l.scanParenOrCast()
	default:
		l.scanOperator()
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || r >= 0x80 || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
