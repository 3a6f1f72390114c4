package lexer

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/lexval"
	"github.com/cwbudde/go-dsl/internal/token"
)

// scanStaticInitializer evaluates a fully-constant initializer expression
// at lex time (spec §4.2.5) using a small embedded precedence-climbing
// evaluator over lexval.Value, then emits the folded literal (or collection)
// directly into the token stream in place of the source expression. This
// lets `var x = 3 + 4;` reach the parser exactly as `var x = 7;` would.
//
// Only literals, unary/binary operators over literals, and collection
// literals are supported here; an initializer that reads another variable
// is rejected as non-static (spec §4.2.5: "a static-evaluation error for any
// non-pure collection literal or identifier reference").
func (l *Lexer) scanStaticInitializer() {
	e := &staticEval{l: l, anonIndex: 0}
	v, ok := e.parseExpr(0)
	if !ok {
		return
	}
	l.skipTrivia()
	if l.peek() == ';' {
		l.advance()
	}
	l.emitValueLiteral(v)
}

func (l *Lexer) emitValueLiteral(v lexval.Value) {
	switch v.Kind {
	case lexval.Integer:
		l.emit(token.INT, "", v.I)
	case lexval.Double:
		l.emit(token.DOUBLE, "", v.D)
	case lexval.Char:
		l.emit(token.CHAR, "", v.C)
	case lexval.String:
		l.emit(token.STRING, "", v.S)
	case lexval.Bool:
		if v.B {
			l.emit(token.TRUE, "", true)
		} else {
			l.emit(token.FALSE, "", false)
		}
	case lexval.CollectionKind:
		l.emit(token.STRING, "", v.Col.String()) // materialized collection literal dump
	}
}

// staticEval is a precedence-climbing evaluator reading directly from the
// enclosing Lexer's rune cursor; it shares the Lexer's error sink so
// malformed static expressions surface through the ordinary diagnostics
// path.
type staticEval struct {
	l         *Lexer
	anonIndex int
}

func (e *staticEval) parseExpr(minPower int) (lexval.Value, bool) {
	e.l.skipTrivia()
	left, ok := e.parseUnary()
	if !ok {
		return lexval.Value{}, false
	}
	for {
		e.l.skipTrivia()
		op, power, ok2 := e.peekBinOp()
		if !ok2 || power < minPower {
			return left, true
		}
		e.consumeBinOp(op)
		e.l.skipTrivia()
		right, ok3 := e.parseExpr(power + 1)
		if !ok3 {
			return lexval.Value{}, false
		}
		res, err := lexval.Apply(op, left, right)
		if err != nil {
			e.l.errorf(dslerrors.KindStatic, dslerrors.CodeStaticDivByZero, "static initializer: %v", err)
			return lexval.Value{}, false
		}
		left = res
	}
}

// binOpDesc is one row of peekBinOp's spelling tables: the lexval.BinOp a
// two/one-character spelling maps to, its precedence (spec §4.1's operator
// table, condensed), and the spelling's width.
type binOpDesc struct {
	op    lexval.BinOp
	power int
	width int
}

func (e *staticEval) peekBinOp() (lexval.BinOp, int, bool) {
	l := e.l
	c0, c1 := l.peek(), l.peekAt(1)
	two := string(c0) + string(c1)
	table := map[string]binOpDesc{
		"**": {lexval.OpExp, 9, 2},
		"==": {lexval.OpEq, 5, 2},
		"!=": {lexval.OpNeq, 5, 2},
		"<=": {lexval.OpLte, 6, 2},
		">=": {lexval.OpGte, 6, 2},
		"&&": {lexval.OpAnd, 3, 2},
		"||": {lexval.OpLor, 2, 2},
		"<<": {lexval.OpSvl, 7, 2},
		">>": {lexval.OpSvr, 7, 2},
	}
	if d, ok := table[two]; ok {
		return d.op, d.power, true
	}
	single := map[rune]binOpDesc{
		'+': {lexval.OpAdd, 8, 1},
		'-': {lexval.OpSub, 8, 1},
		'*': {lexval.OpMul, 9, 1},
		'/': {lexval.OpDiv, 9, 1},
		'%': {lexval.OpMod, 9, 1},
		'&': {lexval.OpBnd, 4, 1},
		'|': {lexval.OpBor, 4, 1},
		'^': {lexval.OpXor, 4, 1},
		'<': {lexval.OpLt, 6, 1},
		'>': {lexval.OpGt, 6, 1},
	}
	if d, ok := single[c0]; ok {
		return d.op, d.power, true
	}
	return 0, 0, false
}

func (e *staticEval) consumeBinOp(op lexval.BinOp) {
	c0, c1 := e.l.peek(), e.l.peekAt(1)
	two := string(c0) + string(c1)
	switch two {
	case "**", "==", "!=", "<=", ">=", "&&", "||", "<<", ">>":
		e.l.advance()
		e.l.advance()
	default:
		e.l.advance()
	}
}

func (e *staticEval) parseUnary() (lexval.Value, bool) {
	l := e.l
	l.skipTrivia()
	switch l.peek() {
	case '-':
		l.advance()
		v, ok := e.parseUnary()
		if !ok {
			return lexval.Value{}, false
		}
		res, err := lexval.ApplyUnary(lexval.OpNeg, v)
		if err != nil {
			l.errorf(dslerrors.KindStatic, dslerrors.CodeInvalidStaticExpr, "static initializer: %v", err)
			return lexval.Value{}, false
		}
		return res, true
	case '!':
		l.advance()
		v, ok := e.parseUnary()
		if !ok {
			return lexval.Value{}, false
		}
		res, _ := lexval.ApplyUnary(lexval.OpNot, v)
		return res, true
	case '+':
		l.advance()
		return e.parseUnary()
	default:
		return e.parsePrimary()
	}
}

func (e *staticEval) parsePrimary() (lexval.Value, bool) {
	l := e.l
	l.skipTrivia()
	switch {
	case l.peek() == '(':
		l.advance()
		v, ok := e.parseExpr(0)
		if !ok {
			return lexval.Value{}, false
		}
		l.skipTrivia()
		if l.peek() == ')' {
			l.advance()
		}
		return v, true
	case l.peek() == '{':
		return e.parseCollection()
	case l.peek() == '"':
		return e.parseStringLiteral()
	case l.peek() == '$' && l.peekAt(1) == '"':
		l.advance()
		l.advance()
		var sb strings.Builder
		for {
			if l.atEnd() {
				l.fatalf("unterminated raw string in static initializer")
				return lexval.Value{}, false
			}
			if l.peek() == '"' && l.peekAt(1) == '$' {
				l.advance()
				l.advance()
				return lexval.Str(sb.String()), true
			}
			sb.WriteRune(l.advance())
		}
	case l.peek() == '\'':
		return e.parseCharLiteral()
	case isDigit(l.peek()):
		return e.parseNumberLiteral()
	case l.matchKeyword("true"):
		return lexval.Boolean(true), true
	case l.matchKeyword("false"):
		return lexval.Boolean(false), true
	default:
		l.errorf(dslerrors.KindStatic, dslerrors.CodeInvalidStaticExpr,
			"static initializer must be a constant expression (identifiers are not allowed)")
		return lexval.Value{}, false
	}
}

func (e *staticEval) parseNumberLiteral() (lexval.Value, bool) {
	l := e.l
	start := l.pos
	for isDigit(l.peek()) {
		l.advance()
	}
	isDouble := false
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		isDouble = true
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	text := string(l.src[start:l.pos])
	if isDouble {
		d, _ := strconv.ParseFloat(text, 64)
		return lexval.Dbl(d), true
	}
	i, _ := strconv.ParseInt(text, 10, 64)
	return lexval.Int(i), true
}

func (e *staticEval) parseStringLiteral() (lexval.Value, bool) {
	l := e.l
	l.advance()
	var sb strings.Builder
	for {
		if l.atEnd() {
			l.fatalf("unterminated string in static initializer")
			return lexval.Value{}, false
		}
		if l.peek() == '"' {
			l.advance()
			break
		}
		if l.peek() == '\\' {
			sb.WriteRune(l.scanEscape())
			continue
		}
		sb.WriteRune(l.advance())
	}
	return lexval.Str(sb.String()), true
}

func (e *staticEval) parseCharLiteral() (lexval.Value, bool) {
	l := e.l
	l.advance()
	var r rune
	if l.peek() == '\\' {
		r = l.scanEscape()
	} else {
		r = l.advance()
	}
	if l.peek() == '\'' {
		l.advance()
	}
	return lexval.Chr(r), true
}

// parseCollection parses `{ key: value, value, ... }` (spec §4.2.5):
// entries without an explicit key get an auto-generated numeric key.
func (e *staticEval) parseCollection() (lexval.Value, bool) {
	l := e.l
	l.advance() // '{'
	col := lexval.NewCollection()
	for {
		l.skipTrivia()
		if l.peek() == '}' {
			l.advance()
			break
		}
		key := ""
		save := l.pos
		if isIdentStart(l.peek()) || isDigit(l.peek()) {
			startTok := l.pos
			for isIdentPart(l.peek()) {
				l.advance()
			}
			candidate := string(l.src[startTok:l.pos])
			l.skipTrivia()
			if l.peek() == ':' {
				l.advance()
				key = candidate
			} else {
				l.pos = save
			}
		}
		val, ok := e.parseExpr(0)
		if !ok {
			return lexval.Value{}, false
		}
		if key == "" {
			key = strconv.Itoa(e.anonIndex)
			e.anonIndex++
		}
		if _, dup := col.Get(key); dup {
			l.errorf(dslerrors.KindLexical, dslerrors.CodeDuplicateKey, "duplicate collection key %q", key)
		}
		col.Set(key, val)
		l.skipTrivia()
		if l.peek() == ',' {
			l.advance()
		}
	}
	return lexval.Coll(col), true
}
