package bytecode

// FunctionEntry records a script function's entry point and arity so JSR
// can resolve a call site even when the call was lexed before the function
// body (spec §4.2.4, §4.3).
type FunctionEntry struct {
	Name       string
	EntryPoint int64
	ParamCount int
}

// Program is the fully assembled output of the parser: a flat instruction
// stream plus the tables JSR/CID/global-variable access need at VM startup
// (spec §3.4, §6.2).
type Program struct {
	Instructions []Instruction
	Functions    map[string]FunctionEntry
	Globals      []string // global symbol-table names, indexed by AddressCell.Index
	ModuleNames  []string // indexed by module id, for CID instructions
}

// NewProgram returns an empty, ready-to-append Program.
func NewProgram() *Program {
	return &Program{Functions: make(map[string]FunctionEntry)}
}

// Emit appends an instruction, stamping its own index into Location, and
// returns that index (used by the parser for backpatching jump targets).
func (p *Program) Emit(ins Instruction) int64 {
	ins.Location = int64(len(p.Instructions))
	p.Instructions = append(p.Instructions, ins)
	return ins.Location
}

// Patch overwrites the Operand of an already-emitted instruction, used to
// back-patch forward jump targets (spec §4.3's "fix-up pass").
func (p *Program) Patch(index int64, operand int64) {
	p.Instructions[index].Operand = operand
}

// Len returns the current instruction count, i.e. the index the next
// Emit call will occupy.
func (p *Program) Len() int64 { return int64(len(p.Instructions)) }

// GlobalIndex returns (creating if necessary) the slot index for a global
// variable name.
func (p *Program) GlobalIndex(name string) int {
	for i, n := range p.Globals {
		if n == name {
			return i
		}
	}
	p.Globals = append(p.Globals, name)
	return len(p.Globals) - 1
}

// ModuleIndex returns (creating if necessary) the id for a module name,
// used to emit CID instructions (spec §6.2).
func (p *Program) ModuleIndex(name string) int {
	for i, n := range p.ModuleNames {
		if n == name {
			return i
		}
	}
	p.ModuleNames = append(p.ModuleNames, name)
	return len(p.ModuleNames) - 1
}
