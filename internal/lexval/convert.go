package lexval

import (
	"strconv"
	"strings"
)

// Convert returns v coerced to target, following spec §4.1's table exactly,
// including the documented oddities of spec §9: Char→Bool is true iff the
// char is NOT 'T' (not "is a truthy letter"), and numeric→String is decimal
// text.
//
// On a Collection, coercion applies element-wise (spec §4.1 last bullet).
func Convert(v Value, target Kind) Value {
	if v.Kind == target {
		return v
	}
	if v.Kind == CollectionKind {
		out := NewCollection()
		for _, k := range v.Col.Keys() {
			elem, _ := v.Col.Get(k)
			out.Set(k, Convert(elem, target))
		}
		return Coll(out)
	}
	switch target {
	case Integer:
		return Int(toInteger(v))
	case Double:
		return Dbl(toDouble(v))
	case Char:
		return Chr(toChar(v))
	case String:
		return Str(toString(v))
	case Bool:
		return Boolean(toBool(v))
	default:
		return v
	}
}

func toInteger(v Value) int64 {
	switch v.Kind {
	case Double:
		return int64(v.D)
	case Char:
		return int64(v.C)
	case String:
		return parseLeadingInt(v.S)
	case Bool:
		if v.B {
			return 1
		}
		return 0
	default:
		return v.I
	}
}

func toDouble(v Value) float64 {
	switch v.Kind {
	case Integer:
		return float64(v.I)
	case Char:
		return float64(v.C)
	case String:
		d, err := strconv.ParseFloat(strings.TrimSpace(v.S), 64)
		if err != nil {
			return 0
		}
		return d
	case Bool:
		if v.B {
			return 1.0
		}
		return 0.0
	default:
		return v.D
	}
}

func toChar(v Value) rune {
	switch v.Kind {
	case Integer:
		return rune(uint32(v.I))
	case Double:
		return rune(uint32(int64(v.D)))
	case String:
		for _, r := range v.S {
			return r
		}
		return 0
	case Bool:
		if v.B {
			return 'T'
		}
		return 'F'
	default:
		return v.C
	}
}

func toString(v Value) string {
	switch v.Kind {
	case Integer:
		return strconv.FormatInt(v.I, 10)
	case Double:
		return strconv.FormatFloat(v.D, 'g', -1, 64)
	case Char:
		return string(v.C)
	case Bool:
		if v.B {
			return "T"
		}
		return "F"
	default:
		return v.S
	}
}

func toBool(v Value) bool {
	switch v.Kind {
	case Integer:
		return v.I != 0
	case Double:
		return v.D != 0
	case Char:
		// Preserved quirk: 'T' -> false, every other char -> true.
		return v.C != 'T'
	case String:
		return v.S == "true"
	default:
		return v.B
	}
}

// parseLeadingInt parses the leading run of an optionally-signed decimal
// integer from s, returning 0 if none is present (spec §4.1: "String ->
// parse leading integer (0 on parse failure)").
func parseLeadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0
	}
	n, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
