package lexval

import (
	"fmt"
	"math"

	"github.com/cwbudde/go-dsl/internal/dslerrors"
)

// BinOp identifies a binary operation understood by Apply. It mirrors the
// bytecode opcodes of spec §6.1 that operate on two Values.
type BinOp int

const (
	OpExp BinOp = iota
	OpMul
	OpDiv
	OpAdd
	OpSub
	OpMod
	OpXor
	OpBnd
	OpBor
	OpSvl
	OpSvr
	OpEq
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpAnd
	OpLor
)

// Apply performs the binary operation described in spec §4.1: "right
// operand is coerced to left operand's tag, then the operation runs in that
// tag" (exponent is the exception; see exponent). Collection operands
// recurse element-wise (Collection⊕Collection
// requires identical cardinality/tags; Collection⊕Scalar broadcasts).
func Apply(op BinOp, left, right Value) (Value, error) {
	if left.Kind == CollectionKind {
		if right.Kind != CollectionKind {
			out := NewCollection()
			for _, k := range left.Col.Keys() {
				elem, _ := left.Col.Get(k)
				res, err := Apply(op, elem, right)
				if err != nil {
					return Value{}, err
				}
				out.Set(k, res)
			}
			return Coll(out), nil
		}
		if left.Col.Len() != right.Col.Len() {
			return Value{}, dslerrors.NewRuntimeError(dslerrors.CodeCollectionMismatch,
				"collection %s is not the same size as collection %s", left.Name, right.Name)
		}
		out := NewCollection()
		lk, rk := left.Col.Keys(), right.Col.Keys()
		for i := range lk {
			lv, _ := left.Col.Get(lk[i])
			rv, _ := right.Col.Get(rk[i])
			if lv.Kind != rv.Kind {
				return Value{}, dslerrors.NewRuntimeError(dslerrors.CodeCollectionMismatch,
					"collection element %s differs in type from %s", lk[i], rk[i])
			}
			res, err := Apply(op, lv, rv)
			if err != nil {
				return Value{}, err
			}
			out.Set(lk[i], res)
		}
		return Coll(out), nil
	}

	// String '+' concatenates, coercing the right side to string rather
	// than coercing the left side to anything else (spec §4.1).
	if op == OpAdd && left.Kind == String {
		return Str(left.S + toString(right)), nil
	}

	r := Convert(right, left.Kind)

	switch op {
	case OpAdd:
		return arith(left, r, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
	case OpSub:
		return arith(left, r, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	case OpMul:
		return arith(left, r, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
	case OpDiv:
		return divide(left, r)
	case OpMod:
		return modulo(left, r)
	case OpExp:
		return exponent(left, right)
	case OpBnd:
		return intOnly(left, r, func(a, b int64) int64 { return a & b })
	case OpBor:
		return intOnly(left, r, func(a, b int64) int64 { return a | b })
	case OpXor:
		return intOnly(left, r, func(a, b int64) int64 { return a ^ b })
	case OpSvl:
		return intOnly(left, r, func(a, b int64) int64 { return a << uint(b) })
	case OpSvr:
		return intOnly(left, r, func(a, b int64) int64 { return a >> uint(b) })
	case OpEq:
		return Boolean(Equal(left, r)), nil
	case OpNeq:
		return Boolean(!Equal(left, r)), nil
	case OpGt:
		return compare(left, r, func(c int) bool { return c > 0 })
	case OpGte:
		return compare(left, r, func(c int) bool { return c >= 0 })
	case OpLt:
		return compare(left, r, func(c int) bool { return c < 0 })
	case OpLte:
		return compare(left, r, func(c int) bool { return c <= 0 })
	case OpAnd:
		return Boolean(toBool(left) && toBool(r)), nil
	case OpLor:
		return Boolean(toBool(left) || toBool(r)), nil
	default:
		return Value{}, fmt.Errorf("lexval: unknown binary op %d", op)
	}
}

// arith implements +, -, * following the original engine's fallthrough:
// String/Bool operands are first coerced to Integer (original_source's
// DslValue::MUL etc. fall through "case STRING_VALUE: case BOOL_VALUE:
// ToInteger();" before the arithmetic switch), only '+' on a string is
// concatenation, and that is special-cased by the caller before arith runs.
func arith(left, right Value, fi func(a, b int64) int64, fd func(a, b float64) float64) (Value, error) {
	switch left.Kind {
	case Integer, String, Bool:
		return Int(fi(toInteger(left), toInteger(right))), nil
	case Double:
		return Dbl(fd(left.D, right.D)), nil
	case Char:
		return Chr(rune(fi(int64(left.C), int64(right.C)))), nil
	default:
		return Int(fi(toInteger(left), toInteger(right))), nil
	}
}

func divide(left, right Value) (Value, error) {
	switch left.Kind {
	case Integer, Char:
		li, ri := toInteger(left), toInteger(right)
		if ri == 0 {
			return Value{}, dslerrors.NewRuntimeError(dslerrors.CodeRuntimeDivByZero, "divide by zero")
		}
		if left.Kind == Char {
			return Chr(rune(li / ri)), nil
		}
		return Int(li / ri), nil
	case Double:
		if right.D == 0 {
			return Value{}, dslerrors.NewRuntimeError(dslerrors.CodeRuntimeDivByZero, "divide by zero")
		}
		return Dbl(left.D / right.D), nil
	default:
		li, ri := toInteger(left), toInteger(right)
		if ri == 0 {
			return Value{}, dslerrors.NewRuntimeError(dslerrors.CodeRuntimeDivByZero, "divide by zero")
		}
		return Int(li / ri), nil
	}
}

func modulo(left, right Value) (Value, error) {
	switch left.Kind {
	case Double:
		if right.D == 0 {
			return Value{}, dslerrors.NewRuntimeError(dslerrors.CodeRuntimeDivByZero, "modulo by zero")
		}
		return Dbl(math.Mod(left.D, right.D)), nil
	default:
		li, ri := toInteger(left), toInteger(right)
		if ri == 0 {
			return Value{}, dslerrors.NewRuntimeError(dslerrors.CodeRuntimeDivByZero, "modulo by zero")
		}
		if left.Kind == Char {
			return Chr(rune(li % ri)), nil
		}
		return Int(li % ri), nil
	}
}

// exponent produces an Integer result when both operands are integer-typed,
// Double otherwise (spec §4.1: "operand types drive the result tag"). Unlike
// the other operators, it receives the right operand unconverted.
func exponent(left, right Value) (Value, error) {
	if left.Kind == Integer && right.Kind == Integer {
		return Int(int64(math.Pow(float64(left.I), float64(right.I)))), nil
	}
	return Dbl(math.Pow(toDouble(left), toDouble(right))), nil
}

func intOnly(left, right Value, f func(a, b int64) int64) (Value, error) {
	return Int(f(toInteger(left), toInteger(right))), nil
}

// Equal reports whether two same-kind-coerced values are equal, using the
// relative epsilon for Double (spec §3.1).
func Equal(a, b Value) bool {
	switch a.Kind {
	case Integer:
		return a.I == b.I
	case Double:
		if a.D == b.D {
			return true
		}
		return approximately(a.D, b.D)
	case Char:
		return a.C == b.C
	case Bool:
		return a.B == b.B
	case String:
		return a.S == b.S
	case CollectionKind:
		if a.Col.Len() != b.Col.Len() {
			return false
		}
		for _, k := range a.Col.Keys() {
			av, _ := a.Col.Get(k)
			bv, ok := b.Col.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func compare(a, b Value, pred func(int) bool) (Value, error) {
	switch a.Kind {
	case Integer:
		return Boolean(pred(cmpInt(a.I, b.I))), nil
	case Double:
		return Boolean(pred(cmpFloat(a.D, b.D))), nil
	case Char:
		return Boolean(pred(cmpInt(int64(a.C), int64(b.C)))), nil
	case String:
		return Boolean(pred(cmpString(a.S, b.S))), nil
	case Bool:
		return Boolean(pred(cmpInt(boolInt(a.B), boolInt(b.B)))), nil
	default:
		return Boolean(false), nil
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// UnOp identifies a unary operation (spec §4.1 "Unary").
type UnOp int

const (
	OpNot UnOp = iota
	OpNeg
	OpIncr
	OpDecr
)

// ApplyUnary performs a unary operation, returning an error for the
// documented-forbidden cases (negate on string/bool).
func ApplyUnary(op UnOp, v Value) (Value, error) {
	switch op {
	case OpNot:
		return Boolean(!toBool(v)), nil
	case OpNeg:
		switch v.Kind {
		case Integer:
			return Int(-v.I), nil
		case Double:
			return Dbl(-v.D), nil
		case Char:
			return Chr(-v.C), nil
		case String, Bool:
			return Value{}, dslerrors.NewRuntimeError(dslerrors.CodeNegateForbidden,
				"cannot negate a %s value", v.Kind)
		default:
			return Value{}, fmt.Errorf("lexval: cannot negate %s", v.Kind)
		}
	case OpIncr:
		return step(v, 1)
	case OpDecr:
		return step(v, -1)
	default:
		return Value{}, fmt.Errorf("lexval: unknown unary op %d", op)
	}
}

func step(v Value, delta int64) (Value, error) {
	switch v.Kind {
	case Integer:
		return Int(v.I + delta), nil
	case Double:
		return Dbl(v.D + float64(delta)), nil
	case Char:
		return Chr(v.C + rune(delta)), nil
	default:
		return Value{}, fmt.Errorf("lexval: ++/-- not valid on %s", v.Kind)
	}
}
