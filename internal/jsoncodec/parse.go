// Package jsoncodec implements the JSON reader/writer of spec §4.5: parsing
// JSON text into a lexval Collection value and serializing a Value back to
// JSON text, both operating directly on Values rather than going through an
// intermediate Go-native representation.
package jsoncodec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/go-dsl/internal/lexval"
)

type parser struct {
	s      string
	pos    int
	errs   []string
	nextID int
}

// Parse decodes JSON text into a Value. Per spec §4.5, a malformed document
// yields a single String Value containing a concatenation of one-line
// diagnostics, which is what the `string.toCollection` built-in surfaces to
// the script; the same diagnostics are also returned as a non-nil error.
func Parse(src string) (lexval.Value, error) {
	p := &parser{s: src}
	p.skipWhitespace()
	v := p.parseValue()
	p.skipWhitespace()
	if p.pos < len(p.s) {
		p.errf("unexpected trailing data at byte %d", p.pos)
	}
	if len(p.errs) > 0 {
		return lexval.Str(strings.Join(p.errs, "; ")), fmt.Errorf("jsoncodec: %s", strings.Join(p.errs, "; "))
	}
	return v, nil
}

func (p *parser) errf(format string, args ...any) {
	p.errs = append(p.errs, fmt.Sprintf(format, args...))
}

func (p *parser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseValue() lexval.Value {
	p.skipWhitespace()
	switch p.peek() {
	case '"':
		return lexval.Str(p.parseString())
	case '{':
		return p.parseObject()
	case '[':
		return p.parseArray()
	case 't':
		p.expectLiteral("true")
		return lexval.Boolean(true)
	case 'f':
		p.expectLiteral("false")
		return lexval.Boolean(false)
	case 'n':
		p.expectLiteral("null")
		return lexval.Value{}
	default:
		if p.peek() == '-' || isJSONDigit(p.peek()) {
			return p.parseNumber()
		}
		p.errf("unexpected byte %q at position %d", p.peek(), p.pos)
		return lexval.Value{}
	}
}

func (p *parser) expectLiteral(lit string) {
	if p.pos+len(lit) > len(p.s) || p.s[p.pos:p.pos+len(lit)] != lit {
		p.errf("expected %q at position %d", lit, p.pos)
		return
	}
	p.pos += len(lit)
}

func isJSONDigit(b byte) bool { return b >= '0' && b <= '9' }

// parseNumber validates at most one '.' and at most one 'e'/'E' (optionally
// signed), storing the result as Double if '.'/'e'/'E' appeared, else
// Integer (spec §4.5).
func (p *parser) parseNumber() lexval.Value {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for isJSONDigit(p.peek()) {
		p.pos++
	}
	isDouble := false
	if p.peek() == '.' {
		isDouble = true
		p.pos++
		for isJSONDigit(p.peek()) {
			p.pos++
		}
	}
	if p.peek() == 'e' || p.peek() == 'E' {
		isDouble = true
		p.pos++
		if p.peek() == '+' || p.peek() == '-' {
			p.pos++
		}
		for isJSONDigit(p.peek()) {
			p.pos++
		}
	}
	text := p.s[start:p.pos]
	if isDouble {
		d, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.errf("malformed number %q at position %d", text, start)
			return lexval.Value{}
		}
		return lexval.Dbl(d)
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		p.errf("malformed number %q at position %d", text, start)
		return lexval.Value{}
	}
	return lexval.Int(i)
}

func (p *parser) parseString() string {
	p.pos++ // opening quote
	var sb strings.Builder
	for {
		if p.pos >= len(p.s) {
			p.errf("unterminated string starting before position %d", p.pos)
			return sb.String()
		}
		c := p.s[p.pos]
		if c == '"' {
			p.pos++
			return sb.String()
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.s) {
				p.errf("unterminated escape at position %d", p.pos)
				return sb.String()
			}
			switch p.s[p.pos] {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case '/':
				sb.WriteByte('/')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'u':
				if p.pos+4 < len(p.s) {
					v, err := strconv.ParseInt(p.s[p.pos+1:p.pos+5], 16, 32)
					if err == nil {
						sb.WriteRune(rune(v))
						p.pos += 4
					}
				}
			default:
				p.errf("unknown escape \\%c at position %d", p.s[p.pos], p.pos)
			}
			p.pos++
			continue
		}
		sb.WriteByte(c)
		p.pos++
	}
}

func (p *parser) parseObject() lexval.Value {
	p.pos++ // '{'
	col := lexval.NewCollection()
	p.skipWhitespace()
	if p.peek() == '}' {
		p.pos++
		return lexval.Coll(col)
	}
	for {
		p.skipWhitespace()
		if p.peek() != '"' {
			p.errf("expected object key at position %d", p.pos)
			return lexval.Coll(col)
		}
		key := p.parseString()
		p.skipWhitespace()
		if p.peek() != ':' {
			p.errf("expected ':' after object key at position %d", p.pos)
			return lexval.Coll(col)
		}
		p.pos++
		val := p.parseValue()
		col.Set(key, val)
		p.skipWhitespace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if p.peek() == '}' {
			p.pos++
			return lexval.Coll(col)
		}
		p.errf("expected ',' or '}' at position %d", p.pos)
		return lexval.Coll(col)
	}
}

func (p *parser) parseArray() lexval.Value {
	p.pos++ // '['
	col := lexval.NewCollection()
	p.skipWhitespace()
	if p.peek() == ']' {
		p.pos++
		return lexval.Coll(col)
	}
	idx := 0
	for {
		val := p.parseValue()
		col.Set(strconv.Itoa(idx), val)
		idx++
		p.skipWhitespace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if p.peek() == ']' {
			p.pos++
			return lexval.Coll(col)
		}
		p.errf("expected ',' or ']' at position %d", p.pos)
		return lexval.Coll(col)
	}
}
