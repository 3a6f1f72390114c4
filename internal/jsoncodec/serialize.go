package jsoncodec

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-dsl/internal/lexval"
)

// Serialize renders v as JSON text (spec §4.5). Collections always
// serialize as objects keyed by their (string) keys, since a
// originally-positional array is just a Collection with "0","1",... keys
// at runtime; there is no separate array encoding. Formatting matches
// scenario S6 exactly: one space after '{' and before '}', no space around
// ':'.
func Serialize(v lexval.Value) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

func writeValue(sb *strings.Builder, v lexval.Value) {
	switch v.Kind {
	case lexval.Integer:
		fmt.Fprintf(sb, "%d", v.I)
	case lexval.Double:
		fmt.Fprintf(sb, "%g", v.D)
	case lexval.Bool:
		if v.B {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case lexval.Char:
		writeString(sb, string(v.C))
	case lexval.String:
		writeString(sb, v.S)
	case lexval.CollectionKind:
		writeCollection(sb, v.Col)
	default:
		sb.WriteString("null")
	}
}

func writeCollection(sb *strings.Builder, col *lexval.Collection) {
	keys := col.Keys()
	if len(keys) == 0 {
		sb.WriteString("{}")
		return
	}
	sb.WriteString("{ ")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeString(sb, k)
		sb.WriteByte(':')
		elem, _ := col.Get(k)
		writeValue(sb, elem)
	}
	sb.WriteString(" }")
}

func writeString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '/':
			sb.WriteString(`\/`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r > 0x7e {
				fmt.Fprintf(sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
}
