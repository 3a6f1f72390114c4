package bytecode

import "github.com/cwbudde/go-dsl/internal/lexval"

// AddressKind distinguishes a global symbol-table slot from a frame-local
// (stack-relative) slot. Instructions never carry raw pointers (spec §3.4):
// every reachable storage location is one of these two tagged forms, plus
// an optional Collection key path for element access.
type AddressKind byte

const (
	AddrGlobal AddressKind = iota
	AddrFrame
)

// AddressCell is the tagged-index abstraction the assignment opcodes (SAV,
// SLV, PVA, ADA/SUA/MUA/DIA/MOA) operate on (spec §3.4, §4.4.3). KeyPath is
// non-empty when the address names an element inside a Collection rather
// than the whole variable.
type AddressCell struct {
	Kind    AddressKind
	Index   int
	KeyPath []string
}

// CaseEntry is one row of a switch statement's jump table (spec §4.4.2's
// JTB instruction): the case's folded constant value and the instruction
// index its block starts at.
type CaseEntry struct {
	Value  lexval.Value
	Target int64
}

// Instruction is one bytecode instruction (spec §3.4). Not every field is
// used by every opcode; which ones apply is determined by Opcode alone.
type Instruction struct {
	Opcode OpCode

	// Value carries literal operands (PSI) and folded case labels.
	Value lexval.Value

	// Operand carries jump targets (JMP/JIF/JIT/JSR, and JTB's exit
	// target), the built-in dispatch index (JBF), frame slots
	// (PSL/PSP/INL/DEL), the key count (PCV), the module id (CID) and the
	// event kind (EFI). Argument and parameter counts travel on the value
	// stack, not here.
	Operand int64

	// Location is the instruction's own index within Program.Instructions,
	// filled in once the program is fully assembled; it lets disassembly
	// and error reporting refer back to source position via the token that
	// produced the instruction.
	Location int64

	// VariableName is the callee name of a JSR whose target is not yet
	// known (a forward call); the parser patches such calls by this name
	// once the function is defined. Serializer and disassembler carry it
	// for any instruction.
	VariableName string

	// Address is the resolved storage location for instructions that write
	// through an AddressCell rather than the top-of-stack value alone.
	Address *AddressCell

	// CaseTable is populated only on a JTB instruction.
	CaseTable []CaseEntry

	// DefaultTarget is the switch's default-case instruction index (JTB),
	// or -1 if the switch body had no default.
	DefaultTarget int
}
