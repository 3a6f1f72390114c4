package bytecode

import (
	"bytes"
	"testing"

	"github.com/cwbudde/go-dsl/internal/lexval"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	p := NewProgram()
	p.ModuleNames = []string{"main"}
	p.Emit(Instruction{Opcode: PSI, Value: lexval.Int(42)})
	p.Emit(Instruction{Opcode: PSI, Value: lexval.Str("hello")})
	p.Emit(Instruction{Opcode: SAV, VariableName: "Script.main.x"})
	p.Emit(Instruction{Opcode: JMP, Operand: 0})
	p.Emit(Instruction{Opcode: CID, Operand: 0})
	p.Emit(Instruction{Opcode: END})

	var buf bytes.Buffer
	if err := NewSerializer(&buf).WriteProgram(p); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewDeserializer(&buf).ReadProgram()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Instructions) != len(p.Instructions) {
		t.Fatalf("instruction count mismatch: got %d want %d", len(got.Instructions), len(p.Instructions))
	}
	if got.Instructions[0].Value.I != 42 {
		t.Fatalf("PSI int lost: %+v", got.Instructions[0])
	}
	if got.Instructions[1].Value.S != "hello" {
		t.Fatalf("PSI string lost: %+v", got.Instructions[1])
	}
	if got.Instructions[2].VariableName != "Script.main.x" {
		t.Fatalf("SAV variable name lost: %+v", got.Instructions[2])
	}
	if got.ModuleNames[0] != "main" {
		t.Fatalf("module name lost: %+v", got.ModuleNames)
	}
}

func TestWriteVarintLargeValue(t *testing.T) {
	var buf bytes.Buffer
	if err := writeVarint(&buf, 1<<40); err != nil {
		t.Fatal(err)
	}
	got, err := readVarint(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1<<40 {
		t.Fatalf("got %d", got)
	}
}

func TestDisassembleProducesOneLinePerInstruction(t *testing.T) {
	p := NewProgram()
	p.Emit(Instruction{Opcode: PSI, Value: lexval.Int(1)})
	p.Emit(Instruction{Opcode: END})
	out := Disassemble(p)
	if len(out) == 0 {
		t.Fatal("expected non-empty disassembly")
	}
}
