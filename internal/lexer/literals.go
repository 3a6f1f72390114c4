package lexer

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/token"
)

// scanNumber scans an Integer or Double literal. A second '.' after the
// fractional part is tolerated but emits a level-1 diagnostic (spec §4.2.1):
// it is parsed as the end of the number, not folded into it.
func (l *Lexer) scanNumber() {
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
		if l.peek() == '.' {
			l.warnf(WarnInfo, "extra '.' after numeric literal is ignored")
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		save := l.pos
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if isDigit(l.peek()) {
			isDouble = true
			for isDigit(l.peek()) {
				l.advance()
			}
		} else {
			l.pos = save
		}
	}
	text := string(l.src[start:l.pos])
	if isDouble {
		d, err := strconv.ParseFloat(text, 64)
		if err != nil {
			l.errorf(dslerrors.KindLexical, dslerrors.CodeMalformedNumber, "malformed double literal %q", text)
			return
		}
		l.emit(token.DOUBLE, "", d)
		return
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		l.errorf(dslerrors.KindLexical, dslerrors.CodeMalformedNumber, "malformed integer literal %q", text)
		return
	}
	l.emit(token.INT, "", i)
}

// scanChar scans a 'c' literal with the same escape table as strings.
func (l *Lexer) scanChar() {
	l.advance() // opening '
	var r rune
	if l.peek() == '\\' {
		r = l.scanEscape()
	} else {
		r = l.advance()
	}
	if l.peek() != '\'' {
		l.errorf(dslerrors.KindLexical, dslerrors.CodeUnterminatedString, "unterminated character literal")
		return
	}
	l.advance() // closing '
	l.emit(token.CHAR, "", r)
}

// scanString scans a "..." literal with backslash escapes; an EOF before the
// closing quote is fatal (spec §4.2.1: "unterminated string is fatal").
func (l *Lexer) scanString() {
	l.advance() // opening "
	var sb strings.Builder
	for {
		if l.atEnd() {
			l.fatalf("unterminated string literal")
			return
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
	l.emit(token.STRING, "", sb.String())
}

// scanRawString scans the $"...  "$ raw-string form (spec §4.2.1 / S-tests):
// no escape processing occurs between the delimiters.
func (l *Lexer) scanRawString() {
	l.advance() // '$'
	l.advance() // '"'
	var sb strings.Builder
	for {
		if l.atEnd() {
			l.fatalf("unterminated raw string literal")
			return
		}
		if l.peek() == '"' && l.peekAt(1) == '$' {
			l.advance()
			l.advance()
			break
		}
		sb.WriteRune(l.advance())
	}
	l.emit(token.STRING, "", sb.String())
}

// scanEscape handles \\ \' \" \n \r \t \b \f \{ \} plus \DDD (decimal) and
// \xHH / \XHH (hex) numeric escapes.
func (l *Lexer) scanEscape() rune {
	l.advance() // backslash
	c := l.peek()
	switch c {
	case '\\', '\'', '"', '{', '}':
		l.advance()
		return c
	case 'n':
		l.advance()
		return '\n'
	case 'r':
		l.advance()
		return '\r'
	case 't':
		l.advance()
		return '\t'
	case 'b':
		l.advance()
		return '\b'
	case 'f':
		l.advance()
		return '\f'
	case 'x', 'X':
		l.advance()
		start := l.pos
		for isHexDigit(l.peek()) && l.pos-start < 2 {
			l.advance()
		}
		v, _ := strconv.ParseInt(string(l.src[start:l.pos]), 16, 32)
		return rune(v)
	default:
		if isDigit(c) {
			start := l.pos
			for isDigit(l.peek()) && l.pos-start < 3 {
				l.advance()
			}
			v, _ := strconv.ParseInt(string(l.src[start:l.pos]), 10, 32)
			return rune(v)
		}
		l.errorf(dslerrors.KindLexical, dslerrors.CodeBadEscape, "unknown escape sequence \\%c", c)
		l.advance()
		return c
	}
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanIdentifierOrKeyword scans `[A-Za-z_+][A-Za-z0-9_+]*`
// (possibly dotted for Global-scope references), resolving keywords against
// token.Keywords first.
func (l *Lexer) scanIdentifierOrKeyword() {
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
	name := string(l.src[start:l.pos])

	if tt, ok := token.Keywords[name]; ok {
		l.scanKeyword(tt, name)
		return
	}
	l.scanIdentifierUse(name)
}

func (l *Lexer) warnf(level WarnLevel, format string, args ...any) {
	if l.declareOnly || level > l.warnLevel {
		return
	}
	l.errorf(dslerrors.KindLexical, dslerrors.CodeMalformedNumber, format, args...)
}
