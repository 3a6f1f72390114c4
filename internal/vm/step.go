package vm

import (
	"strconv"

	"github.com/cwbudde/go-dsl/internal/bytecode"
	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/event"
	"github.com/cwbudde/go-dsl/internal/lexval"
)

// step executes one instruction that isn't handled specially by the outer
// dispatch loop in runFrom (spec §4.4.2).
func (v *VM) step(ins bytecode.Instruction) error {
	switch ins.Opcode {
	case bytecode.PSI:
		v.push(ins.Value)
	case bytecode.PSV:
		addr, err := requireAddress(ins)
		if err != nil {
			return err
		}
		v.push(v.readAddr(addr))
	case bytecode.PSL:
		v.push(v.params[v.bp+int(ins.Operand)])
	case bytecode.PSP:
		v.push(v.params[v.bp+int(ins.Operand)])
	case bytecode.DEF:
		addr, err := requireAddress(ins)
		if err != nil {
			return err
		}
		v.setBase(addr, lexval.Zero(lexval.Integer))
	case bytecode.DFL:
		// Pushed (not index-written) so the local occupies the next frame
		// slot above bp and every later push() in this call lands above it
		// (spec §4.4.1: locals and temporaries share one growable stack).
		v.push(lexval.Zero(lexval.Integer))

	case bytecode.PVA:
		addr, err := requireAddress(ins)
		if err != nil {
			return err
		}
		v.pushAddr(&bytecode.AddressCell{Kind: addr.Kind, Index: addr.Index})
	case bytecode.PCV:
		base, err := requireAddress(ins)
		if err != nil {
			return err
		}
		n := int(ins.Operand)
		keys := make([]string, n)
		for i := n - 1; i >= 0; i-- {
			keys[i] = keyString(v.pop())
		}
		v.pushAddr(&bytecode.AddressCell{Kind: base.Kind, Index: base.Index, KeyPath: keys})

	case bytecode.SAV, bytecode.SLV:
		val := v.pop()
		addr := v.popAddr()
		v.writeAddr(addr, val)
		v.a = val

	case bytecode.ADA, bytecode.SUA, bytecode.MUA, bytecode.DIA, bytecode.MOA:
		rhs := v.pop()
		addr := v.popAddr()
		cur := v.readAddr(addr)
		op := compoundOp(ins.Opcode)
		res, err := lexval.Apply(op, cur, rhs)
		if err != nil {
			return err
		}
		v.writeAddr(addr, res)
		v.push(res)

	case bytecode.INC, bytecode.DEC:
		addr, err := requireAddress(ins)
		if err != nil {
			return err
		}
		delta := unaryDelta(ins.Opcode)
		res, err := lexval.ApplyUnary(delta, v.readAddr(addr))
		if err != nil {
			return err
		}
		v.writeAddr(addr, res)
		v.push(res)
	case bytecode.INL, bytecode.DEL:
		slot := v.bp + int(ins.Operand)
		delta := unaryDeltaLocal(ins.Opcode)
		res, err := lexval.ApplyUnary(delta, v.params[slot])
		if err != nil {
			return err
		}
		v.params[slot] = res
		v.push(res)

	case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV, bytecode.MOD, bytecode.EXP,
		bytecode.BND, bytecode.BOR, bytecode.XOR, bytecode.SVL, bytecode.SVR,
		bytecode.TEQ, bytecode.TNE, bytecode.TGR, bytecode.TGE, bytecode.TLS, bytecode.TLE,
		bytecode.AND, bytecode.LOR:
		right := v.pop()
		left := v.pop()
		res, err := lexval.Apply(binOpFor(ins.Opcode), left, right)
		if err != nil {
			return err
		}
		v.push(res)

	case bytecode.NOT:
		res, _ := lexval.ApplyUnary(lexval.OpNot, v.pop())
		v.push(res)
	case bytecode.NEG:
		res, err := lexval.ApplyUnary(lexval.OpNeg, v.pop())
		if err != nil {
			return err
		}
		v.push(res)

	case bytecode.CTI:
		v.push(lexval.Convert(v.pop(), lexval.Integer))
	case bytecode.CTD:
		v.push(lexval.Convert(v.pop(), lexval.Double))
	case bytecode.CTC:
		v.push(lexval.Convert(v.pop(), lexval.Char))
	case bytecode.CTS:
		v.push(lexval.Convert(v.pop(), lexval.String))
	case bytecode.CTB:
		v.push(lexval.Convert(v.pop(), lexval.Bool))

	case bytecode.JMP:
		v.pc = ins.Operand
	case bytecode.JIF:
		cond := v.pop()
		if !truthy(cond) {
			v.pc = ins.Operand
		} else {
			v.pc++
		}
	case bytecode.JIT:
		cond := v.pop()
		if truthy(cond) {
			v.pc = ins.Operand
		} else {
			v.pc++
		}
	case bytecode.JTB:
		return v.execJumpTable(ins)

	case bytecode.JBF:
		argCount := int(v.pop().I)
		args := make([]lexval.Value, argCount)
		for i := argCount - 1; i >= 0; i-- {
			args[i] = v.pop()
		}
		res, err := v.host.Call(int(ins.Operand), args)
		if err != nil {
			return dslerrors.NewRuntimeError(dslerrors.CodeRuntimeDivByZero, "builtin call failed: %v", err)
		}
		v.a = res
		v.push(res)

	case bytecode.JSR:
		return v.execCall(ins)

	case bytecode.DCS:
		val := v.pop()
		key := keyString(v.pop())
		base, err := requireAddress(ins)
		if err != nil {
			return err
		}
		v.writeAddr(&bytecode.AddressCell{Kind: base.Kind, Index: base.Index, KeyPath: []string{key}}, val)

	case bytecode.CID:
		v.lastModuleID = int(ins.Operand)
	case bytecode.EFI:
		v.events.Register(v.lastModuleID, event.Kind(ins.Operand), ins.Location+1)

	default:
		return dslerrors.NewRuntimeError(dslerrors.CodeInternalInvariant, "unimplemented opcode %s", ins.Opcode)
	}
	return nil
}

func truthy(v lexval.Value) bool {
	b := lexval.Convert(v, lexval.Bool)
	return b.B
}

func keyString(v lexval.Value) string {
	if v.Kind == lexval.Integer {
		return strconv.FormatInt(v.I, 10)
	}
	return v.String()
}

func binOpFor(op bytecode.OpCode) lexval.BinOp {
	switch op {
	case bytecode.ADD:
		return lexval.OpAdd
	case bytecode.SUB:
		return lexval.OpSub
	case bytecode.MUL:
		return lexval.OpMul
	case bytecode.DIV:
		return lexval.OpDiv
	case bytecode.MOD:
		return lexval.OpMod
	case bytecode.EXP:
		return lexval.OpExp
	case bytecode.BND:
		return lexval.OpBnd
	case bytecode.BOR:
		return lexval.OpBor
	case bytecode.XOR:
		return lexval.OpXor
	case bytecode.SVL:
		return lexval.OpSvl
	case bytecode.SVR:
		return lexval.OpSvr
	case bytecode.TEQ:
		return lexval.OpEq
	case bytecode.TNE:
		return lexval.OpNeq
	case bytecode.TGR:
		return lexval.OpGt
	case bytecode.TGE:
		return lexval.OpGte
	case bytecode.TLS:
		return lexval.OpLt
	case bytecode.TLE:
		return lexval.OpLte
	case bytecode.AND:
		return lexval.OpAnd
	case bytecode.LOR:
		return lexval.OpLor
	default:
		return lexval.OpAdd
	}
}

func compoundOp(op bytecode.OpCode) lexval.BinOp {
	switch op {
	case bytecode.ADA:
		return lexval.OpAdd
	case bytecode.SUA:
		return lexval.OpSub
	case bytecode.MUA:
		return lexval.OpMul
	case bytecode.DIA:
		return lexval.OpDiv
	default:
		return lexval.OpMod
	}
}

func unaryDelta(op bytecode.OpCode) lexval.UnOp {
	if op == bytecode.INC {
		return lexval.OpIncr
	}
	return lexval.OpDecr
}

func unaryDeltaLocal(op bytecode.OpCode) lexval.UnOp {
	if op == bytecode.INL {
		return lexval.OpIncr
	}
	return lexval.OpDecr
}

// execJumpTable implements JTB (spec §4.4.2): compare top-of-stack against
// every case literal in order, first match wins, else default, else the
// switch's exit target (ins.Operand).
func (v *VM) execJumpTable(ins bytecode.Instruction) error {
	top := v.pop()
	for _, c := range ins.CaseTable {
		if lexval.Equal(top, c.Value) {
			v.pc = c.Target
			return nil
		}
	}
	if ins.DefaultTarget >= 0 {
		v.pc = int64(ins.DefaultTarget)
		return nil
	}
	v.pc = ins.Operand
	return nil
}

// execCall implements JSR (spec §4.4.2): save pc/bp, set bp to the start of
// the argument region (found via the last-pushed param-count value), then
// recursively drive the dispatch loop until a matching RET.
func (v *VM) execCall(ins bytecode.Instruction) error {
	paramCount := int(v.pop().I)
	newBP := v.top - paramCount + 1
	savedBP := v.bp
	v.bp = newBP
	if err := v.runFrom(ins.Operand, v.pc+1); err != nil {
		return err
	}
	v.bp = savedBP
	return nil
}
