// Package lexval implements the runtime value model of spec §3.1/§4.1: a
// tagged union over {Integer, Double, Char, Bool, String, Collection} with
// value-preserving-where-possible coercions and the binary/unary operation
// table.
//
// The representation follows the same shape as the teacher's jsonvalue.Value
// (a Kind tag plus per-kind payload fields rather than interface{}), so
// zero-value Values are always well-formed and comparisons don't need type
// assertions on every access.
package lexval

import (
	"fmt"
	"math"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	Integer Kind = iota
	Double
	Char
	Bool
	String
	CollectionKind
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "Integer"
	case Double:
		return "Double"
	case Char:
		return "Char"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case CollectionKind:
		return "Collection"
	default:
		return "Unknown"
	}
}

// Value is the tagged union described in spec §3.1. Every Value may
// additionally carry a script-visible Name and an owning ModuleID for
// diagnostics; these are metadata, not part of the value's identity for
// comparison/coercion purposes.
type Value struct {
	Kind Kind

	I int64
	D float64
	C rune
	B bool
	S string
	Col *Collection

	Name     string
	ModuleID int
}

// Int builds an Integer value.
func Int(i int64) Value { return Value{Kind: Integer, I: i} }

// Dbl builds a Double value.
func Dbl(d float64) Value { return Value{Kind: Double, D: d} }

// Chr builds a Char value.
func Chr(c rune) Value { return Value{Kind: Char, C: c} }

// Boolean builds a Bool value.
func Boolean(b bool) Value { return Value{Kind: Bool, B: b} }

// Str builds a String value.
func Str(s string) Value { return Value{Kind: String, S: s} }

// Coll builds a Collection value.
func Coll(c *Collection) Value { return Value{Kind: CollectionKind, Col: c} }

// Zero returns the default-initialised Value for a Kind, used when a
// collection is extended past its current size (spec §4.4.3) or when a
// DEF/DFL opcode materialises a variable with no explicit initializer.
func Zero(k Kind) Value {
	switch k {
	case Integer:
		return Int(0)
	case Double:
		return Dbl(0)
	case Char:
		return Chr(0)
	case Bool:
		return Boolean(false)
	case String:
		return Str("")
	case CollectionKind:
		return Coll(NewCollection())
	default:
		return Value{}
	}
}

func (v Value) String() string {
	switch v.Kind {
	case Integer:
		return fmt.Sprintf("%d", v.I)
	case Double:
		return fmt.Sprintf("%g", v.D)
	case Char:
		return string(v.C)
	case Bool:
		if v.B {
			return "T"
		}
		return "F"
	case String:
		return v.S
	case CollectionKind:
		return v.Col.String()
	default:
		return "<invalid>"
	}
}

// epsilon is the relative tolerance for Double equality (spec §3.1).
const epsilon = 1e-5

func approximately(x, y float64) bool {
	return math.Abs(x-y) <= epsilon*math.Abs(x)
}
