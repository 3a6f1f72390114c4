package parser

import (
	"github.com/cwbudde/go-dsl/internal/bytecode"
	"github.com/cwbudde/go-dsl/internal/event"
	"github.com/cwbudde/go-dsl/internal/lexval"
	"github.com/cwbudde/go-dsl/internal/token"
)

// parseStatement dispatches on the leading token of the current statement
// (spec §4.3). Control-structure markers consume their whole framed span;
// everything else falls through to the expression/assignment path.
func (p *Parser) parseStatement() {
	switch p.curType() {
	case token.SEMICOLON:
		p.advance()
	case token.VARIABLE_DEF:
		p.parseVarDecl()
	case token.IF_COND_BEGIN:
		p.parseIf()
	case token.WHILE_COND_BEGIN:
		p.parseWhile()
	case token.FOR_INIT_BEGIN:
		p.parseFor()
	case token.SWITCH_BEGIN:
		p.parseSwitch()
	case token.FUNCTION_DEF_BEGIN:
		p.parseFuncDef()
	case token.EVENT_BLOCK_BEGIN:
		p.parseEventHandler()
	case token.RETURN:
		p.parseReturn()
	case token.BREAK, token.BRK:
		p.parseBreak()
	case token.CONTINUE:
		p.parseContinue()
	case token.STOP:
		p.parseStop()
	case token.BLOCK:
		p.advance()
		p.emit(bytecode.Instruction{Opcode: bytecode.NOP})
	case token.END:
		p.advance()
	default:
		p.parseSimpleStatement()
	}
}

// parseVarDecl compiles `VARIABLE_DEF` (spec §4.2.3/§4.2.5): DEF/DFL always
// zero-initializes storage; a literal token immediately following the
// VARIABLE_DEF token is the lexer's already-folded static initializer
// (spec §4.2.5), which the parser compiles as a separate assignment right
// after the zero-init.
func (p *Parser) parseVarDecl() {
	decl := p.advance()

	if decl.Modifier == token.Local {
		slot := p.fn.nextSlot
		p.fn.locals[decl.Identifier] = slot
		p.fn.nextSlot++
		p.emit(bytecode.Instruction{Opcode: bytecode.DFL})
	} else {
		addr := p.globalAddr(decl)
		p.emit(bytecode.Instruction{Opcode: bytecode.DEF, Address: addr})
	}

	if isLiteralType(p.curType()) {
		lit := p.advance()
		p.emitLvalueAddr(decl)
		p.emit(bytecode.Instruction{Opcode: bytecode.PSI, Value: literalValue(lit)})
		p.emit(assignOpcodeFor(decl))
	}
}

// emitLvalueAddr pushes the address cell for a plain (non-indexed)
// assignment target named by an IDENT or VARIABLE_DEF token.
func (p *Parser) emitLvalueAddr(name token.Token) {
	p.emit(bytecode.Instruction{Opcode: bytecode.PVA, Address: p.baseAddr(name)})
}

// assignOpcodeFor picks SLV for a local target and SAV for a script/global
// target; step.go treats the two identically, but the naming keeps the
// emitted program legible relative to PSL/PVA's own local-vs-global split.
func assignOpcodeFor(name token.Token) bytecode.Instruction {
	if name.Modifier == token.Local {
		return bytecode.Instruction{Opcode: bytecode.SLV}
	}
	return bytecode.Instruction{Opcode: bytecode.SAV}
}

func (p *Parser) parseIf() {
	p.advance() // IF_COND_BEGIN
	p.parseExpr(0)
	p.expect(token.IF_COND_END)

	jif := p.emitTracked(bytecode.Instruction{Opcode: bytecode.JIF})

	p.expect(token.IF_BLOCK_BEGIN)
	p.parseBlockUntil(token.IF_BLOCK_END)
	p.expect(token.IF_BLOCK_END)

	if p.curType() == token.ELSE_BLOCK_BEGIN {
		p.advance()
		jmpEnd := p.emitTracked(bytecode.Instruction{Opcode: bytecode.JMP})
		p.patch(jif, p.here())
		if p.curType() == token.IF_COND_BEGIN {
			p.parseIf()
		} else {
			p.parseBlockUntil(token.ELSE_BLOCK_END)
		}
		p.expect(token.ELSE_BLOCK_END)
		p.patch(jmpEnd, p.here())
		return
	}

	p.patch(jif, p.here())
}

// parseBlockUntil compiles statements until the next token is end, without
// consuming end itself.
func (p *Parser) parseBlockUntil(end token.Type) {
	for p.curType() != end && !p.atEnd() {
		p.parseStatement()
	}
}

// parseWhile compiles `WHILE_COND_BEGIN cond WHILE_COND_END WHILE_BLOCK_BEGIN
// body WHILE_BLOCK_END` into runtime order `JMP test; body: BODY; test:
// COND; JIT body` (spec §4.2.6/§4.3): the condition is buffered while the
// body compiles, then spliced in afterward so a false condition skips the
// loop entirely on first entry.
func (p *Parser) parseWhile() {
	p.advance() // WHILE_COND_BEGIN
	cond := p.withBuffer(func() {
		p.parseExpr(0)
	})
	p.expect(token.WHILE_COND_END)
	p.expect(token.WHILE_BLOCK_BEGIN)

	jmpTest := p.emitTracked(bytecode.Instruction{Opcode: bytecode.JMP})
	bodyStart := p.here()

	p.loops = append(p.loops, loopCtx{})
	p.parseBlockUntil(token.WHILE_BLOCK_END)
	p.expect(token.WHILE_BLOCK_END)

	testStart := p.here()
	p.patch(jmpTest, testStart)
	p.flush(cond)
	p.emit(bytecode.Instruction{Opcode: bytecode.JIT, Operand: bodyStart})

	loopEnd := p.here()
	lc := p.loops[len(p.loops)-1]
	p.loops = p.loops[:len(p.loops)-1]
	for _, idx := range lc.breakFixups {
		p.patch(idx, loopEnd)
	}
	for _, idx := range lc.continueFixups {
		p.patch(idx, testStart)
	}
}

// parseFor compiles `FOR_INIT_BEGIN init FOR_INIT_END FOR_COND_BEGIN cond
// FOR_COND_END FOR_UPDATE_BEGIN update FOR_UPDATE_END FOR_BLOCK_BEGIN body
// FOR_BLOCK_END` into runtime order `init; test: COND; JIF exit; BODY;
// UPDATE; JMP test; exit:` (spec §4.2.6/§4.3). Only the update clause needs
// buffering, since it alone appears before BODY in token order but after it
// at runtime.
func (p *Parser) parseFor() {
	p.advance() // FOR_INIT_BEGIN
	p.parseForClauseStatements(token.FOR_INIT_END)
	p.expect(token.FOR_INIT_END)

	testStart := p.here()
	p.expect(token.FOR_COND_BEGIN)
	hasCond := p.curType() != token.FOR_COND_END
	if hasCond {
		p.parseExpr(0)
	}
	p.expect(token.FOR_COND_END)

	var jifExit int64 = -1
	if hasCond {
		jifExit = p.emitTracked(bytecode.Instruction{Opcode: bytecode.JIF})
	}

	p.expect(token.FOR_UPDATE_BEGIN)
	update := p.withBuffer(func() {
		p.parseForClauseStatements(token.FOR_UPDATE_END)
	})
	p.expect(token.FOR_UPDATE_END)

	p.expect(token.FOR_BLOCK_BEGIN)
	p.loops = append(p.loops, loopCtx{})
	p.parseBlockUntil(token.FOR_BLOCK_END)
	p.expect(token.FOR_BLOCK_END)

	updateStart := p.here()
	p.flush(update)
	p.emit(bytecode.Instruction{Opcode: bytecode.JMP, Operand: testStart})

	loopEnd := p.here()
	if jifExit >= 0 {
		p.patch(jifExit, loopEnd)
	}

	lc := p.loops[len(p.loops)-1]
	p.loops = p.loops[:len(p.loops)-1]
	for _, idx := range lc.breakFixups {
		p.patch(idx, loopEnd)
	}
	for _, idx := range lc.continueFixups {
		p.patch(idx, updateStart)
	}
}

// parseForClauseStatements compiles zero or more comma-joined
// expression/assignment forms inside a for-header clause, stopping at end
// without consuming it. The lexer frames each clause as a flat token run, so
// a comma here just separates sibling expression-statements rather than
// nesting as a binary operator.
func (p *Parser) parseForClauseStatements(end token.Type) {
	for p.curType() != end && !p.atEnd() {
		if p.curType() == token.COMMA {
			p.advance()
			continue
		}
		p.parseSimpleExprForm()
	}
}

func (p *Parser) parseSwitch() {
	p.advance() // SWITCH_BEGIN
	p.parseExpr(0)

	jtbIdx := p.emitTracked(bytecode.Instruction{Opcode: bytecode.JTB, DefaultTarget: -1})

	p.loops = append(p.loops, loopCtx{})

	var cases []bytecode.CaseEntry
	defaultTarget := int64(-1)

	for p.curType() == token.CASE_COND_BEGIN || p.curType() == token.DEFAULT_BLOCK_BEGIN {
		if p.curType() == token.CASE_COND_BEGIN {
			p.advance()
			labelTok := p.cur()
			if !isLiteralType(labelTok.Type) {
				p.errorf("case label must be a literal, got %s", labelTok.Type)
			} else {
				p.advance()
			}
			p.expect(token.CASE_COND_END)
			p.expect(token.CASE_BLOCK_BEGIN)
			target := p.here()
			if isLiteralType(labelTok.Type) {
				cases = append(cases, bytecode.CaseEntry{Value: literalValue(labelTok), Target: target})
			}
			p.parseBlockUntil(token.CASE_BLOCK_END)
			p.expect(token.CASE_BLOCK_END)
		} else {
			p.advance()
			p.expect(token.DEFAULT_BLOCK_BEGIN)
			defaultTarget = p.here()
			p.parseBlockUntil(token.DEFAULT_BLOCK_END)
			p.expect(token.DEFAULT_BLOCK_END)
		}
	}
	p.expect(token.SWITCH_END)

	exit := p.here()
	p.prog.Instructions[jtbIdx].CaseTable = cases
	p.prog.Instructions[jtbIdx].DefaultTarget = int(defaultTarget)
	p.prog.Instructions[jtbIdx].Operand = exit

	lc := p.loops[len(p.loops)-1]
	p.loops = p.loops[:len(p.loops)-1]
	for _, idx := range lc.breakFixups {
		p.patch(idx, exit)
	}
}

// parseFuncDef compiles a `FUNCTION_DEF_BEGIN params FUNCTION_PARAMS_END
// body FUNCTION_DEF_END` span (spec §4.2.7): it jumps over its own body at
// the call site's natural fall-through position, registers the
// FunctionEntry at the body's first instruction, binds every parameter to
// its slot (0..ParamCount-1, no DFL since execCall's newBP convention means
// the caller's pushed args already occupy them), then compiles the body
// with a trailing RET guard for scripts that fall off the end without an
// explicit return.
func (p *Parser) parseFuncDef() {
	def := p.advance() // FUNCTION_DEF_BEGIN, Identifier = function name
	name := def.Identifier

	skip := p.emitTracked(bytecode.Instruction{Opcode: bytecode.JMP})
	entry := p.here()

	savedFn := p.fn
	p.fn = &funcCtx{name: name, locals: make(map[string]int)}

	paramCount := 0
	for p.curType() == token.VARIABLE_DEF {
		param := p.advance()
		p.fn.locals[param.Identifier] = paramCount
		paramCount++
	}
	p.fn.nextSlot = paramCount
	p.expect(token.FUNCTION_PARAMS_END)

	p.prog.Functions[name] = bytecode.FunctionEntry{Name: name, EntryPoint: entry, ParamCount: paramCount}

	p.parseBlockUntil(token.FUNCTION_DEF_END)
	p.expect(token.FUNCTION_DEF_END)

	p.emit(bytecode.Instruction{Opcode: bytecode.RET})

	p.fn = savedFn
	p.patch(skip, p.here())

	if pending, ok := p.forwardCalls[name]; ok {
		for _, idx := range pending {
			if p.prog.Instructions[idx].Operand == 0 {
				p.prog.Instructions[idx].Operand = entry
			}
		}
		delete(p.forwardCalls, name)
	}
}

func (p *Parser) parseReturn() {
	p.advance() // RETURN
	if p.curType() != token.SEMICOLON {
		p.parseExpr(0)
	}
	p.expect(token.SEMICOLON)
	if p.fn != nil && p.fn.isEventHandler {
		p.emit(bytecode.Instruction{Opcode: bytecode.RFE})
		return
	}
	p.emit(bytecode.Instruction{Opcode: bytecode.RET})
}

// parseEventHandler compiles an `EVENT_BLOCK_BEGIN body EVENT_BLOCK_END`
// span (spec §4.6) into an EFI announcing the handler's entry point to the
// VM's event.Table, followed by the body and a trailing RFE, skipped over
// at the module's normal fall-through position exactly like a function
// definition (parseFuncDef's JMP-over-body shape).
func (p *Parser) parseEventHandler() {
	begin := p.advance() // EVENT_BLOCK_BEGIN, Identifier = "on_error" | "on_tick"

	kind := event.KindError
	if begin.Identifier == "on_tick" {
		kind = event.KindTick
	}

	skip := p.emitTracked(bytecode.Instruction{Opcode: bytecode.JMP})
	p.emit(bytecode.Instruction{Opcode: bytecode.EFI, Operand: int64(kind)})

	savedFn := p.fn
	p.fn = &funcCtx{name: begin.Identifier, locals: make(map[string]int), isEventHandler: true}

	p.parseBlockUntil(token.EVENT_BLOCK_END)
	p.expect(token.EVENT_BLOCK_END)

	p.emit(bytecode.Instruction{Opcode: bytecode.RFE})

	p.fn = savedFn
	p.patch(skip, p.here())
}

func (p *Parser) parseBreak() {
	p.advance()
	p.expect(token.SEMICOLON)
	idx := p.emitTracked(bytecode.Instruction{Opcode: bytecode.JMP})
	if len(p.loops) == 0 {
		p.errorf("'break' outside a loop or switch")
		return
	}
	top := len(p.loops) - 1
	p.loops[top].breakFixups = append(p.loops[top].breakFixups, idx)
}

func (p *Parser) parseContinue() {
	p.advance()
	p.expect(token.SEMICOLON)
	idx := p.emitTracked(bytecode.Instruction{Opcode: bytecode.JMP})
	if len(p.loops) == 0 {
		p.errorf("'continue' outside a loop")
		return
	}
	top := len(p.loops) - 1
	p.loops[top].continueFixups = append(p.loops[top].continueFixups, idx)
}

// parseStop compiles `stop;` as an unconditional jump to the program's
// trailing END, patched by Compile's finalFixup pass once the whole program
// has been emitted and the END's final index is known (a plain JMP with
// Operand left at 0 always means "jump to END" there).
func (p *Parser) parseStop() {
	p.advance()
	p.expect(token.SEMICOLON)
	p.emit(bytecode.Instruction{Opcode: bytecode.JMP, Operand: 0})
}

// parseSimpleStatement compiles an ordinary expression-statement: an
// assignment, a bare call, a bare inc/dec, or a bare compound assignment.
// Any form whose compiled value leaves a residual stack entry (spec §4.4.1
// has no POP opcode) is wrapped with a discard so RET's
// "is there a pending result" heuristic never misreads loop debris as a
// return value.
func (p *Parser) parseSimpleStatement() {
	p.parseSimpleExprForm()
	p.expect(token.SEMICOLON)
}

// parseSimpleExprForm compiles one assignment-or-expression form without
// consuming a trailing delimiter, shared between ordinary statements and
// for-header clauses (which separate sibling forms with commas instead of
// semicolons).
func (p *Parser) parseSimpleExprForm() {
	if p.tryParseAssignment() {
		return
	}
	leavesResidue := p.parseExprStatementValue()
	if leavesResidue {
		p.emitDiscard()
	}
}

// tryParseAssignment looks ahead for `IDENT [DOT LITERAL]* ASSIGN-FAMILY`
// and, if found, compiles the lvalue address and the assignment/compound
// opcode; otherwise it rewinds and reports no match.
func (p *Parser) tryParseAssignment() bool {
	if p.curType() != token.IDENT {
		return false
	}
	save := p.pos
	name := p.advance()

	var keys []lexval.Value
	for p.curType() == token.DOT {
		p.advance()
		if !isLiteralType(p.curType()) {
			p.pos = save
			return false
		}
		keys = append(keys, literalValue(p.advance()))
	}

	if !isAssignOp(p.curType()) {
		p.pos = save
		return false
	}
	op := p.advance()

	p.emitLvalueTarget(name, keys)
	p.parseExpr(0)

	if op.Type == token.ASSIGN {
		p.emit(assignOpcodeFor(name))
		return true
	}
	p.emit(bytecode.Instruction{Opcode: compoundOpcodes[op.Type]})
	p.emitDiscard() // ADA/SUA/MUA/DIA/MOA push their result; a statement form discards it
	return true
}

// emitLvalueTarget pushes the address cell for a (possibly indexed)
// assignment target. Indexed targets are restricted to literal dot-chains
// (`x.0 = ...`), compiled via PCV (spec §4.4.3's keyed-write path): PCV
// reads its base straight from Instruction.Address (like PVA does), pops
// the key values pushed ahead of it, and pushes the combined keyed address
// — so a PCV target must never also go through PVA, which would push a
// second, unwanted plain address underneath it on the address stack.
// Reading an indexed element back out as an expression value has no
// supporting opcode and is rejected separately in parsePrimary.
func (p *Parser) emitLvalueTarget(name token.Token, keys []lexval.Value) {
	if len(keys) == 0 {
		p.emitLvalueAddr(name)
		return
	}
	base := p.baseAddr(name)
	for _, k := range keys {
		p.emit(bytecode.Instruction{Opcode: bytecode.PSI, Value: k})
	}
	p.emit(bytecode.Instruction{Opcode: bytecode.PCV, Address: base, Operand: int64(len(keys))})
}

// baseAddr resolves name to its AddressCell without emitting anything,
// for use as an instruction's Address field (PVA/PCV/DEF all read their
// base this way rather than via a stack pop).
func (p *Parser) baseAddr(name token.Token) *bytecode.AddressCell {
	if name.Modifier == token.Local {
		slot := p.localSlot(name.Identifier)
		return &bytecode.AddressCell{Kind: bytecode.AddrFrame, Index: slot}
	}
	return p.globalAddr(name)
}

// parseExprStatementValue compiles one bare expression used as a full
// statement (a call, a prefix/postfix inc-dec, or any other expression form
// a malformed-but-parseable script might contain) and reports whether it
// left a value on the stack needing a discard.
func (p *Parser) parseExprStatementValue() bool {
	p.parseExpr(0)
	return true
}

// emitDiscard throws away the value on top of the stack by routing it
// through a dedicated scratch global nothing else ever reads (spec §4.4.1's
// stack has no dedicated POP instruction).
func (p *Parser) emitDiscard() {
	idx := p.prog.GlobalIndex("__discard")
	p.emit(bytecode.Instruction{Opcode: bytecode.PVA, Address: &bytecode.AddressCell{Kind: bytecode.AddrGlobal, Index: idx}})
	p.emit(bytecode.Instruction{Opcode: bytecode.SAV})
}
