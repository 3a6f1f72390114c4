package parser

import (
	"github.com/cwbudde/go-dsl/internal/bytecode"
	"github.com/cwbudde/go-dsl/internal/lexval"
	"github.com/cwbudde/go-dsl/internal/token"
)

// binOpcodes maps a binary operator token to its opcode (spec §4.1/§6.1).
var binOpcodes = map[token.Type]bytecode.OpCode{
	token.PLUS: bytecode.ADD, token.MINUS: bytecode.SUB,
	token.STAR: bytecode.MUL, token.SLASH: bytecode.DIV, token.PERCENT: bytecode.MOD,
	token.POWER: bytecode.EXP,
	token.AMP:   bytecode.BND, token.PIPE: bytecode.BOR, token.CARET: bytecode.XOR,
	token.SHL: bytecode.SVL, token.SHR: bytecode.SVR,
	token.EQ: bytecode.TEQ, token.NEQ: bytecode.TNE,
	token.LT: bytecode.TLS, token.LTE: bytecode.TLE, token.GT: bytecode.TGR, token.GTE: bytecode.TGE,
	token.ANDAND: bytecode.AND, token.OROR: bytecode.LOR,
}

var castOpcodes = map[token.Type]bytecode.OpCode{
	token.CAST_INT: bytecode.CTI, token.CAST_DOUBLE: bytecode.CTD, token.CAST_CHAR: bytecode.CTC,
	token.CAST_STRING: bytecode.CTS, token.CAST_BOOL: bytecode.CTB,
}

func isAssignOp(tt token.Type) bool {
	switch tt {
	case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN:
		return true
	default:
		return false
	}
}

var compoundOpcodes = map[token.Type]bytecode.OpCode{
	token.PLUS_ASSIGN: bytecode.ADA, token.MINUS_ASSIGN: bytecode.SUA,
	token.STAR_ASSIGN: bytecode.MUA, token.SLASH_ASSIGN: bytecode.DIA, token.PERCENT_ASSIGN: bytecode.MOA,
}

// parseExpr is the shunting-yard core (spec §4.3): parse one primary, then
// keep folding in binary operators whose binding power meets minPower.
// Assignment-family tokens are never climbed here (spec §4.3 treats
// assignment as a statement-level form, since SAV/SLV consume their value
// without producing one for further use) — the loop simply stops there,
// same as it stops at any other non-operator token (END-of-clause markers,
// SEMICOLON, commas, closing parens).
func (p *Parser) parseExpr(minPower int) {
	p.parseUnary()
	for {
		tt := p.curType()
		if isAssignOp(tt) {
			return
		}
		info, ok := token.Info(tt)
		if !ok || info.Arity != token.Binary || info.Power < minPower {
			return
		}
		p.advance()
		next := info.Power + 1
		if info.Assoc == token.RightAssoc {
			next = info.Power
		}
		p.parseExpr(next)
		p.emit(bytecode.Instruction{Opcode: binOpcodes[tt]})
	}
}

// parseUnary handles prefix NOT/BANG, unary MINUS, casts, and prefix
// INCR/DECR, then falls through to a primary.
func (p *Parser) parseUnary() {
	switch p.curType() {
	case token.NOT, token.BANG:
		p.advance()
		p.parseUnary()
		p.emit(bytecode.Instruction{Opcode: bytecode.NOT})
	case token.MINUS:
		p.advance()
		p.parseUnary()
		p.emit(bytecode.Instruction{Opcode: bytecode.NEG})
	case token.PLUS:
		p.advance()
		p.parseUnary()
	case token.CAST_INT, token.CAST_DOUBLE, token.CAST_CHAR, token.CAST_STRING, token.CAST_BOOL:
		op := castOpcodes[p.curType()]
		p.advance()
		p.parseUnary()
		p.emit(bytecode.Instruction{Opcode: op})
	case token.INCR, token.DECR:
		p.parsePrefixIncDec()
	default:
		p.parsePrimary()
	}
}

// parsePrefixIncDec compiles `++x` / `--x`: bump the variable and leave the
// new value on the stack (spec §4.3's prefix timing).
func (p *Parser) parsePrefixIncDec() {
	isIncr := p.curType() == token.INCR
	p.advance()
	name := p.cur()
	if name.Type != token.IDENT {
		p.errorf("expected identifier after prefix %s", map[bool]string{true: "++", false: "--"}[isIncr])
		return
	}
	p.advance()
	p.emitIncDec(name, isIncr)
}

func (p *Parser) emitIncDec(name token.Token, isIncr bool) {
	if name.Modifier == token.Local {
		slot := p.localSlot(name.Identifier)
		op := bytecode.DEL
		if isIncr {
			op = bytecode.INL
		}
		p.emit(bytecode.Instruction{Opcode: op, Operand: int64(slot)})
		return
	}
	addr := p.globalAddr(name)
	op := bytecode.DEC
	if isIncr {
		op = bytecode.INC
	}
	p.emit(bytecode.Instruction{Opcode: op, Address: addr})
}

// parsePrimary handles literals, identifiers (including postfix ++/--),
// parenthesized sub-expressions, and function calls.
func (p *Parser) parsePrimary() {
	tok := p.cur()
	switch {
	case isLiteralType(tok.Type):
		p.advance()
		p.emit(bytecode.Instruction{Opcode: bytecode.PSI, Value: literalValue(tok)})
	case tok.Type == token.LPAREN:
		p.advance()
		p.parseExpr(0)
		p.expect(token.RPAREN)
	case tok.Type == token.FUNCTION_CALL_BEGIN:
		p.parseCall()
	case tok.Type == token.IDENT:
		p.advance()
		if p.curType() == token.DOT {
			p.errorf("reading a collection element directly in an expression is not supported; assign it to a variable first")
			p.emitRead(tok)
			p.skipDotChain()
			break
		}
		if p.curType() == token.INCR || p.curType() == token.DECR {
			// INC/DEL already push the updated value (step.go), so a bare
			// read here would leave two values on the stack for one token.
			isIncr := p.curType() == token.INCR
			p.advance()
			p.emitIncDec(tok, isIncr)
			break
		}
		p.emitRead(tok)
	default:
		p.errorf("unexpected token %s in expression", tok.Type)
		p.advance()
	}
}

func (p *Parser) skipDotChain() {
	for p.curType() == token.DOT {
		p.advance()
		if isLiteralType(p.curType()) {
			p.advance()
		}
	}
}

// emitRead pushes a variable's current value: PSL/PSP for locals/params
// (direct slot index), PSV for script/global names (via AddressCell).
func (p *Parser) emitRead(name token.Token) {
	if name.Modifier == token.Local {
		slot := p.localSlot(name.Identifier)
		p.emit(bytecode.Instruction{Opcode: bytecode.PSL, Operand: int64(slot)})
		return
	}
	addr := p.globalAddr(name)
	p.emit(bytecode.Instruction{Opcode: bytecode.PSV, Address: addr})
}

// globalAddr resolves a Script/Global-scope name to its AddressCell,
// creating the global slot on first use.
func (p *Parser) globalAddr(name token.Token) *bytecode.AddressCell {
	idx := p.prog.GlobalIndex(name.Identifier)
	return &bytecode.AddressCell{Kind: bytecode.AddrGlobal, Index: idx}
}

// localSlot resolves a Local-scope name to its frame slot, registering a
// fresh slot if this is the first time the body sees it (should not
// normally happen — declarations register slots up front — but guards
// against a malformed token stream rather than panicking).
func (p *Parser) localSlot(name string) int {
	if p.fn == nil {
		p.errorf("local variable %q referenced outside a function", name)
		return 0
	}
	if slot, ok := p.fn.locals[name]; ok {
		return slot
	}
	slot := p.fn.nextSlot
	p.fn.locals[name] = slot
	p.fn.nextSlot++
	return slot
}

// parseCall compiles a FUNCTION_CALL_BEGIN..FUNCTION_CALL_END span: args in
// source order, then the argument count, then JBF (builtin) or JSR (script
// function), per spec §4.3.
func (p *Parser) parseCall() {
	begin := p.advance() // FUNCTION_CALL_BEGIN
	name := begin.Identifier

	argCount := 0
	for p.curType() == token.FUNCTION_PARAM_BEGIN {
		p.advance()
		p.parseExpr(0)
		p.expect(token.FUNCTION_PARAM_END)
		argCount++
	}
	p.expect(token.FUNCTION_CALL_END)

	p.emit(bytecode.Instruction{Opcode: bytecode.PSI, Value: lexval.Int(int64(argCount))})

	if idx, ok := p.builtinIndex(name); ok {
		p.emit(bytecode.Instruction{Opcode: bytecode.JBF, Operand: int64(idx)})
		return
	}
	p.emitCall(name)
}

// emitCall emits a JSR to a script function, patching immediately if the
// function is already known (a backward call) or registering a forward-call
// fixup otherwise (spec §4.3's "forward JSR targets patched after the whole
// program is emitted").
func (p *Parser) emitCall(name string) {
	if fn, ok := p.prog.Functions[name]; ok {
		p.emit(bytecode.Instruction{Opcode: bytecode.JSR, Operand: fn.EntryPoint})
		return
	}
	if p.buf != nil {
		// A buffer-local index isn't meaningful outside the buffer (it gets
		// renumbered once flush splices the slice into the live program), so
		// tag the instruction instead and let flush re-home it to the real
		// forwardCalls index once it knows the absolute position.
		p.emit(bytecode.Instruction{Opcode: bytecode.JSR, Operand: 0, VariableName: name})
		return
	}
	idx := p.prog.Emit(bytecode.Instruction{Opcode: bytecode.JSR, Operand: 0})
	p.forwardCalls[name] = append(p.forwardCalls[name], idx)
}

// emitTracked emits straight to the live program (never buffered) and
// returns the instruction's final index, for callers that need to patch it
// later (JIF/JIT/JMP/JTB placeholders). These never occur inside a buffered
// while/for condition span in this grammar (conditions are plain
// expressions with no nested control structure), so bypassing p.buf here is
// safe.
func (p *Parser) emitTracked(ins bytecode.Instruction) int64 {
	return p.prog.Emit(ins)
}
