package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a Program as a human-readable instruction listing, one
// line per instruction, for the CLI's `-p`/`disasm` output.
func Disassemble(p *Program) string {
	var sb strings.Builder
	for i, ins := range p.Instructions {
		sb.WriteString(InstructionLine(i, ins, p.ModuleNames))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// InstructionLine formats a single instruction the same way Disassemble
// does, without a trailing newline; the VM's `-t` trace mode reuses this so
// trace output and static disassembly never drift apart.
func InstructionLine(i int, ins Instruction, moduleNames []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%6d  %-4s", i, ins.Opcode)
	switch ins.Opcode {
	case PSI:
		fmt.Fprintf(&sb, " %s", ins.Value)
	case JMP, JIF, JIT, JBF, JSR:
		fmt.Fprintf(&sb, " -> %d", ins.Operand)
	case DEF, PSV, PSL, PSP, PCV, PVA, SAV, SLV, ADA, SUA, MUA, DIA, MOA:
		fmt.Fprintf(&sb, " %s", ins.VariableName)
	case CID:
		moduleName := "?"
		if int(ins.Operand) < len(moduleNames) {
			moduleName = moduleNames[ins.Operand]
		}
		fmt.Fprintf(&sb, " %s", moduleName)
	case JTB:
		fmt.Fprintf(&sb, " cases=%d default=%d", len(ins.CaseTable), ins.DefaultTarget)
	}
	return sb.String()
}
