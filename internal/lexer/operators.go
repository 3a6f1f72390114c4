package lexer

import "github.com/cwbudde/go-dsl/internal/token"

// scanParenOrCast recognizes the five atomic casts `(int) (double) (char)
// (string) (bool)` before falling back to a plain '(' token (spec §4.2.1).
func (l *Lexer) scanParenOrCast() {
	for spelling, tt := range token.Casts {
		if l.matchLiteral(spelling) {
			l.emit(tt, "", nil)
			return
		}
	}
	l.advance()
	l.emit(token.LPAREN, "", nil)
}

// matchLiteral consumes exactly the given rune sequence if it appears next,
// rolling back on mismatch.
func (l *Lexer) matchLiteral(s string) bool {
	save, saveLine, saveCol, saveOff := l.pos, l.line, l.column, l.offset
	saveParen, saveBrace := l.parenDepth, l.braceDepth
	for _, want := range s {
		if l.peek() != want {
			l.pos, l.line, l.column, l.offset = save, saveLine, saveCol, saveOff
			l.parenDepth, l.braceDepth = saveParen, saveBrace
			return false
		}
		l.advance()
	}
	return true
}

// scanOperator scans delimiters and one/two-character operators with
// maximal-munch lookahead.
func (l *Lexer) scanOperator() {
	c := l.advance()
	switch c {
	case ')':
		l.emit(token.RPAREN, "", nil)
	case '{':
		l.emit(token.LBRACE, "", nil)
	case '}':
		l.emit(token.RBRACE, "", nil)
	case ';':
		l.emit(token.SEMICOLON, "", nil)
	case ',':
		l.emit(token.COMMA, "", nil)
	case ':':
		l.emit(token.COLON, "", nil)
	case '.':
		l.emit(token.DOT, "", nil)
	case '+':
		switch l.peek() {
		case '+':
			l.advance()
			l.emit(token.INCR, "", nil)
		case '=':
			l.advance()
			l.emit(token.PLUS_ASSIGN, "", nil)
		default:
			l.emit(token.PLUS, "", nil)
		}
	case '-':
		switch l.peek() {
		case '-':
			l.advance()
			l.emit(token.DECR, "", nil)
		case '=':
			l.advance()
			l.emit(token.MINUS_ASSIGN, "", nil)
		default:
			l.emit(token.MINUS, "", nil)
		}
	case '*':
		switch l.peek() {
		case '*':
			l.advance()
			l.emit(token.POWER, "", nil)
		case '=':
			l.advance()
			l.emit(token.STAR_ASSIGN, "", nil)
		default:
			l.emit(token.STAR, "", nil)
		}
	case '/':
		if l.peek() == '=' {
			l.advance()
			l.emit(token.SLASH_ASSIGN, "", nil)
		} else {
			l.emit(token.SLASH, "", nil)
		}
	case '%':
		if l.peek() == '=' {
			l.advance()
			l.emit(token.PERCENT_ASSIGN, "", nil)
		} else {
			l.emit(token.PERCENT, "", nil)
		}
	case '&':
		if l.peek() == '&' {
			l.advance()
			l.emit(token.ANDAND, "", nil)
		} else {
			l.emit(token.AMP, "", nil)
		}
	case '|':
		if l.peek() == '|' {
			l.advance()
			l.emit(token.OROR, "", nil)
		} else {
			l.emit(token.PIPE, "", nil)
		}
	case '^':
		l.emit(token.CARET, "", nil)
	case '<':
		switch l.peek() {
		case '<':
			l.advance()
			l.emit(token.SHL, "", nil)
		case '=':
			l.advance()
			l.emit(token.LTE, "", nil)
		default:
			l.emit(token.LT, "", nil)
		}
	case '>':
		switch l.peek() {
		case '>':
			l.advance()
			l.emit(token.SHR, "", nil)
		case '=':
			l.advance()
			l.emit(token.GTE, "", nil)
		default:
			l.emit(token.GT, "", nil)
		}
	case '=':
		if l.peek() == '=' {
			l.advance()
			l.emit(token.EQ, "", nil)
		} else {
			l.emit(token.ASSIGN, "", nil)
		}
	case '!':
		if l.peek() == '=' {
			l.advance()
			l.emit(token.NEQ, "", nil)
		} else {
			l.emit(token.BANG, "", nil)
		}
	default:
		l.emit(token.ILLEGAL, string(c), nil)
	}
}
