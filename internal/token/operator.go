package token

// Assoc is operator associativity.
type Assoc int

const (
	LeftAssoc Assoc = iota
	RightAssoc
)

// Arity distinguishes unary from binary operators.
type Arity int

const (
	Unary Arity = iota
	Binary
)

// Class is the specific-use class an operator token type belongs to, per
// spec §3.3: "operator, keyword, value, function, parser-marker,
// lexer-marker".
type Class int

const (
	ClassOperator Class = iota
	ClassKeyword
	ClassValue
	ClassFunction
	ClassParserMarker
	ClassLexerMarker
)

// OpInfo packs the per-operator metadata spec §3.3 requires: binding power
// 0-15, associativity, arity, and use-class.
type OpInfo struct {
	Power  int
	Assoc  Assoc
	Arity  Arity
	Class  Class
}

// opTable is a pure function (keyed lookup table) from operator Type to its
// metadata, per design note in spec §9 ("derive binding-power/associativity
// via a pure function table keyed on the variant").
var opTable = map[Type]OpInfo{
	ASSIGN:         {Power: 1, Assoc: RightAssoc, Arity: Binary, Class: ClassOperator},
	PLUS_ASSIGN:    {Power: 1, Assoc: RightAssoc, Arity: Binary, Class: ClassOperator},
	MINUS_ASSIGN:   {Power: 1, Assoc: RightAssoc, Arity: Binary, Class: ClassOperator},
	STAR_ASSIGN:    {Power: 1, Assoc: RightAssoc, Arity: Binary, Class: ClassOperator},
	SLASH_ASSIGN:   {Power: 1, Assoc: RightAssoc, Arity: Binary, Class: ClassOperator},
	PERCENT_ASSIGN: {Power: 1, Assoc: RightAssoc, Arity: Binary, Class: ClassOperator},

	OROR: {Power: 2, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},

	ANDAND: {Power: 3, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},

	PIPE: {Power: 4, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},
	CARET: {Power: 5, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},
	AMP:  {Power: 6, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},

	EQ:  {Power: 7, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},
	NEQ: {Power: 7, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},

	LT:  {Power: 8, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},
	LTE: {Power: 8, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},
	GT:  {Power: 8, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},
	GTE: {Power: 8, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},

	SHL: {Power: 9, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},
	SHR: {Power: 9, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},

	PLUS:  {Power: 10, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},
	MINUS: {Power: 10, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},

	STAR:    {Power: 11, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},
	SLASH:   {Power: 11, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},
	PERCENT: {Power: 11, Assoc: LeftAssoc, Arity: Binary, Class: ClassOperator},

	POWER: {Power: 12, Assoc: RightAssoc, Arity: Binary, Class: ClassOperator},

	NOT:  {Power: 13, Assoc: RightAssoc, Arity: Unary, Class: ClassOperator},
	BANG: {Power: 13, Assoc: RightAssoc, Arity: Unary, Class: ClassOperator},

	INCR: {Power: 14, Assoc: RightAssoc, Arity: Unary, Class: ClassOperator},
	DECR: {Power: 14, Assoc: RightAssoc, Arity: Unary, Class: ClassOperator},

	CAST_INT:    {Power: 15, Assoc: RightAssoc, Arity: Unary, Class: ClassOperator},
	CAST_DOUBLE: {Power: 15, Assoc: RightAssoc, Arity: Unary, Class: ClassOperator},
	CAST_CHAR:   {Power: 15, Assoc: RightAssoc, Arity: Unary, Class: ClassOperator},
	CAST_STRING: {Power: 15, Assoc: RightAssoc, Arity: Unary, Class: ClassOperator},
	CAST_BOOL:   {Power: 15, Assoc: RightAssoc, Arity: Unary, Class: ClassOperator},
}

// Info returns the operator metadata for tt and whether tt is a known
// operator.
func Info(tt Type) (OpInfo, bool) {
	info, ok := opTable[tt]
	return info, ok
}

// Power returns tt's binding power, or -1 if tt is not an operator. Used by
// the shunting-yard core (spec §4.3) to decide when to pop the operator
// stack.
func Power(tt Type) int {
	if info, ok := opTable[tt]; ok {
		return info.Power
	}
	return -1
}

// UnaryMinusPower is the binding power used for unary minus/negate, which
// binds tighter than any binary arithmetic operator but looser than a cast.
const UnaryMinusPower = 13
