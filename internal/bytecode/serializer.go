package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/go-dsl/internal/lexval"
)

// Value block type tags (spec §6.2).
const (
	tagCollection byte = 1
	tagInt        byte = 2
	tagDouble     byte = 3
	tagChar       byte = 4
	tagString     byte = 5
	tagBool       byte = 6
)

// Serializer writes a Program in the binary wire format of spec §6.2.
type Serializer struct{ w io.Writer }

// NewSerializer returns a Serializer writing to w.
func NewSerializer(w io.Writer) *Serializer { return &Serializer{w: w} }

// WriteProgram writes the program header (module names) followed by every
// instruction in order.
func (s *Serializer) WriteProgram(p *Program) error {
	if err := writeVarint(s.w, int64(len(p.ModuleNames))); err != nil {
		return err
	}
	for _, m := range p.ModuleNames {
		if err := s.writeString(m); err != nil {
			return err
		}
	}
	if err := writeVarint(s.w, int64(len(p.Instructions))); err != nil {
		return err
	}
	for _, ins := range p.Instructions {
		if err := s.writeInstruction(ins); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) writeString(str string) error {
	b := []byte(str)
	if err := writeVarint(s.w, int64(len(b))); err != nil {
		return err
	}
	_, err := s.w.Write(b)
	return err
}

func (s *Serializer) writeInstruction(ins Instruction) error {
	if _, err := s.w.Write([]byte{byte(ins.Opcode)}); err != nil {
		return err
	}
	switch ins.Opcode {
	case PSI:
		if err := s.writeValue(ins.Value); err != nil {
			return err
		}
	case JMP, JIF, JIT, JBF, JSR, JTB:
		if err := writeVarint(s.w, ins.Operand); err != nil {
			return err
		}
	case DEF, PSV, PSL, PSP, PCV, PVA, SAV, SLV, ADA, SUA, MUA, DIA, MOA:
		if err := s.writeString(ins.VariableName); err != nil {
			return err
		}
	case CID:
		if err := writeVarint(s.w, ins.Operand); err != nil {
			return err
		}
	}
	if ins.Opcode == JTB {
		if err := writeVarint(s.w, int64(len(ins.CaseTable))); err != nil {
			return err
		}
		for _, c := range ins.CaseTable {
			if err := s.writeValue(c.Value); err != nil {
				return err
			}
			if err := writeVarint(s.w, c.Target); err != nil {
				return err
			}
		}
		if err := writeVarint(s.w, int64(ins.DefaultTarget)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) writeValue(v lexval.Value) error {
	switch v.Kind {
	case lexval.Integer:
		if _, err := s.w.Write([]byte{tagInt}); err != nil {
			return err
		}
		return writeVarint(s.w, v.I)
	case lexval.Double:
		if _, err := s.w.Write([]byte{tagDouble}); err != nil {
			return err
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v.D))
		_, err := s.w.Write(buf[:])
		return err
	case lexval.Char:
		if _, err := s.w.Write([]byte{tagChar}); err != nil {
			return err
		}
		return writeVarint(s.w, int64(v.C))
	case lexval.String:
		if _, err := s.w.Write([]byte{tagString}); err != nil {
			return err
		}
		return s.writeString(v.S)
	case lexval.Bool:
		b := byte(0)
		if v.B {
			b = 1
		}
		_, err := s.w.Write([]byte{tagBool, b})
		return err
	case lexval.CollectionKind:
		if _, err := s.w.Write([]byte{tagCollection}); err != nil {
			return err
		}
		keys := v.Col.Keys()
		if err := writeVarint(s.w, int64(len(keys))); err != nil {
			return err
		}
		for _, k := range keys {
			if err := s.writeString(k); err != nil {
				return err
			}
			elem, _ := v.Col.Get(k)
			if err := s.writeValue(elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("bytecode: cannot serialize value kind %v", v.Kind)
	}
}

// Deserializer reads a Program back from the wire format.
type Deserializer struct{ r io.Reader }

// NewDeserializer returns a Deserializer reading from r.
func NewDeserializer(r io.Reader) *Deserializer { return &Deserializer{r: r} }

// ReadProgram reads a full program previously written by WriteProgram.
func (d *Deserializer) ReadProgram() (*Program, error) {
	p := NewProgram()
	moduleCount, err := readVarint(d.r)
	if err != nil {
		return nil, err
	}
	for i := int64(0); i < moduleCount; i++ {
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		p.ModuleNames = append(p.ModuleNames, name)
	}
	insCount, err := readVarint(d.r)
	if err != nil {
		return nil, err
	}
	for i := int64(0); i < insCount; i++ {
		ins, err := d.readInstruction()
		if err != nil {
			return nil, err
		}
		p.Emit(ins)
	}
	return p, nil
}

func (d *Deserializer) readString() (string, error) {
	n, err := readVarint(d.r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *Deserializer) readInstruction() (Instruction, error) {
	var opByte [1]byte
	if _, err := io.ReadFull(d.r, opByte[:]); err != nil {
		return Instruction{}, err
	}
	op := OpCode(opByte[0])
	if !op.Valid() {
		return Instruction{}, fmt.Errorf("bytecode: unknown opcode byte %#x", opByte[0])
	}
	ins := Instruction{Opcode: op, DefaultTarget: -1}
	switch op {
	case PSI:
		v, err := d.readValue()
		if err != nil {
			return Instruction{}, err
		}
		ins.Value = v
	case JMP, JIF, JIT, JBF, JSR:
		n, err := readVarint(d.r)
		if err != nil {
			return Instruction{}, err
		}
		ins.Operand = n
	case DEF, PSV, PSL, PSP, PCV, PVA, SAV, SLV, ADA, SUA, MUA, DIA, MOA:
		s, err := d.readString()
		if err != nil {
			return Instruction{}, err
		}
		ins.VariableName = s
	case CID:
		n, err := readVarint(d.r)
		if err != nil {
			return Instruction{}, err
		}
		ins.Operand = n
	case JTB:
		n, err := readVarint(d.r)
		if err != nil {
			return Instruction{}, err
		}
		ins.Operand = n
	}
	if op == JTB {
		count, err := readVarint(d.r)
		if err != nil {
			return Instruction{}, err
		}
		for i := int64(0); i < count; i++ {
			v, err := d.readValue()
			if err != nil {
				return Instruction{}, err
			}
			target, err := readVarint(d.r)
			if err != nil {
				return Instruction{}, err
			}
			ins.CaseTable = append(ins.CaseTable, CaseEntry{Value: v, Target: target})
		}
		def, err := readVarint(d.r)
		if err != nil {
			return Instruction{}, err
		}
		ins.DefaultTarget = int(def)
	}
	return ins, nil
}

func (d *Deserializer) readValue() (lexval.Value, error) {
	var tagByte [1]byte
	if _, err := io.ReadFull(d.r, tagByte[:]); err != nil {
		return lexval.Value{}, err
	}
	switch tagByte[0] {
	case tagInt:
		n, err := readVarint(d.r)
		return lexval.Int(n), err
	case tagDouble:
		var buf [8]byte
		if _, err := io.ReadFull(d.r, buf[:]); err != nil {
			return lexval.Value{}, err
		}
		return lexval.Dbl(math.Float64frombits(binary.BigEndian.Uint64(buf[:]))), nil
	case tagChar:
		n, err := readVarint(d.r)
		return lexval.Chr(rune(n)), err
	case tagString:
		s, err := d.readString()
		return lexval.Str(s), err
	case tagBool:
		var b [1]byte
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			return lexval.Value{}, err
		}
		return lexval.Boolean(b[0] != 0), nil
	case tagCollection:
		count, err := readVarint(d.r)
		if err != nil {
			return lexval.Value{}, err
		}
		col := lexval.NewCollection()
		for i := int64(0); i < count; i++ {
			key, err := d.readString()
			if err != nil {
				return lexval.Value{}, err
			}
			elem, err := d.readValue()
			if err != nil {
				return lexval.Value{}, err
			}
			col.Set(key, elem)
		}
		return lexval.Coll(col), nil
	default:
		return lexval.Value{}, fmt.Errorf("bytecode: unknown value tag %#x", tagByte[0])
	}
}
