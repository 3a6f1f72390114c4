// Package parser implements the shunting-yard/recursive-descent compiler of
// spec §4.3: it walks the flat, marker-framed token stream the lexer
// produces for each module and emits a *bytecode.Program. The lexer has
// already done all scoping and identifier resolution (every IDENT/
// VARIABLE_DEF token already carries its fully qualified name and scope);
// the parser's only remaining job is to turn that stream into instructions
// and resolve every jump target, including the for-loop and switch
// reorderings the lexer's source-order framing can't express on its own.
package parser

import (
	"github.com/cwbudde/go-dsl/internal/bytecode"
	"github.com/cwbudde/go-dsl/internal/builtins"
	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/lexval"
	"github.com/cwbudde/go-dsl/internal/token"
)

// funcCtx tracks the frame-slot allocation for one function body: params
// occupy slots 0..ParamCount-1 (populated by the caller before JSR, never
// pushed by the callee), and each body-local declaration claims the next
// slot in the order its DFL is emitted (step.go's DFL pushes rather than
// index-writes, so slot order must match declaration order exactly).
type funcCtx struct {
	name           string
	locals         map[string]int
	nextSlot       int
	isEventHandler bool
}

// loopCtx tracks the backpatch state of one enclosing loop or switch:
// break jumps to the exit, continue jumps to the re-test/update point.
type loopCtx struct {
	breakFixups    []int64
	continueFixups []int64
}

// instBuf is a scratch instruction sink used to compile a token span out of
// its eventual emission order (the while/for loop reorderings of spec
// §4.3) before splicing it into the real program at the right position.
type instBuf struct {
	list []bytecode.Instruction
}

// Parser compiles one module's token slice into a shared *bytecode.Program.
// Multiple modules share the same Parser (and Program) across a compile
// unit so forward function calls across modules still resolve.
type Parser struct {
	prog       *bytecode.Program
	toks       []token.Token
	pos        int
	moduleName string

	fn *funcCtx

	buf *instBuf

	loops []loopCtx

	forwardCalls map[string][]int64 // function name -> JSR instruction indices awaiting patch

	externals map[string]int // host-registered FFI function name -> JBF dispatch index (pkg/dsl.RegisterFunction)

	errors []*dslerrors.CompileError
}

// New creates a Parser sharing prog and the forward-call table across an
// entire compile unit; pass the same forwardCalls map to every module's
// Parser (or use Compile, which does this for you).
func newParser(prog *bytecode.Program, toks []token.Token, moduleName string, forwardCalls map[string][]int64, externals map[string]int) *Parser {
	return &Parser{
		prog:         prog,
		toks:         toks,
		moduleName:   moduleName,
		forwardCalls: forwardCalls,
		externals:    externals,
	}
}

// Compile assembles every module's token stream (in order) into a single
// *bytecode.Program: it emits a CID instruction ahead of each module's
// statements (spec §4.3 "module switch"), then appends a trailing END and
// runs the final fix-up pass (spec §4.3's last paragraph). externals maps
// names an embedding host registered (pkg/dsl.Engine.RegisterFunction) to
// their JBF dispatch index, beyond the fixed built-in table; pass nil when
// compiling without a host.
func Compile(tokensByModule map[string][]token.Token, order []string, externals map[string]int) (*bytecode.Program, []*dslerrors.CompileError) {
	prog := bytecode.NewProgram()
	forwardCalls := make(map[string][]int64)
	var allErrors []*dslerrors.CompileError

	for _, name := range order {
		prog.ModuleIndex(name)
	}

	for _, name := range order {
		p := newParser(prog, tokensByModule[name], name, forwardCalls, externals)
		p.prog.Emit(bytecode.Instruction{Opcode: bytecode.CID, Operand: int64(prog.ModuleIndex(name))})
		p.compileModule()
		allErrors = append(allErrors, p.errors...)
	}

	endIdx := prog.Emit(bytecode.Instruction{Opcode: bytecode.END})

	finalFixup(prog, endIdx, forwardCalls, &allErrors)

	return prog, allErrors
}

// finalFixup implements spec §4.3's closing paragraph: any JSR whose target
// is still 0 (a call to a function that, despite the lexer's two-pass
// declare/use guarantee, the parser never got around to patching) resolves
// from the function table; any JMP whose target is still 0 is rewritten to
// the program's last instruction.
func finalFixup(prog *bytecode.Program, lastIndex int64, forwardCalls map[string][]int64, errs *[]*dslerrors.CompileError) {
	for name, idxs := range forwardCalls {
		fn, ok := prog.Functions[name]
		for _, idx := range idxs {
			if prog.Instructions[idx].Operand != 0 {
				continue
			}
			if !ok {
				*errs = append(*errs, dslerrors.NewCompileError(dslerrors.KindScope, dslerrors.CodeRedefinition,
					"call to undefined function %q never resolved", name))
				continue
			}
			prog.Patch(idx, fn.EntryPoint)
		}
	}
	for i := range prog.Instructions {
		ins := &prog.Instructions[i]
		if ins.Opcode == bytecode.JMP && ins.Operand == 0 && int64(i) != lastIndex {
			ins.Operand = lastIndex
		}
	}
}

func (p *Parser) compileModule() {
	for !p.atEnd() {
		p.parseStatement()
	}
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *Parser) cur() token.Token {
	if p.atEnd() {
		return token.Token{Type: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) curType() token.Type { return p.cur().Type }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

// expect consumes and returns the current token if it matches tt, else
// records a syntax error and returns the zero Token without advancing.
func (p *Parser) expect(tt token.Type) token.Token {
	if p.curType() != tt {
		p.errorf("expected %s, got %s", tt, p.curType())
		return token.Token{}
	}
	return p.advance()
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, dslerrors.NewCompileError(dslerrors.KindSyntactic, dslerrors.CodeMissingDelimiter, format, args...))
}

// emit routes an instruction to the current scratch buffer if one is
// active (while/for condition and update clauses that must be relocated),
// or straight to the live program otherwise.
func (p *Parser) emit(ins bytecode.Instruction) {
	if p.buf != nil {
		p.buf.list = append(p.buf.list, ins)
		return
	}
	p.prog.Emit(ins)
}

// withBuffer compiles fn into a fresh scratch slice instead of the live
// program and returns it for later splicing via flush.
func (p *Parser) withBuffer(fn func()) []bytecode.Instruction {
	saved := p.buf
	p.buf = &instBuf{}
	fn()
	out := p.buf.list
	p.buf = saved
	return out
}

// flush appends a previously buffered instruction slice to the live
// program in order, letting Program.Emit stamp correct final Locations. A
// JSR left unresolved while buffered (Operand 0, VariableName set to the
// callee by emitCall) only gets a meaningful forwardCalls index now, since a
// buffer-local slice index is meaningless once spliced into the live
// program at a different position.
func (p *Parser) flush(list []bytecode.Instruction) {
	for _, ins := range list {
		idx := p.prog.Emit(ins)
		if ins.Opcode == bytecode.JSR && ins.Operand == 0 && ins.VariableName != "" {
			p.forwardCalls[ins.VariableName] = append(p.forwardCalls[ins.VariableName], idx)
		}
	}
}

func (p *Parser) here() int64 { return p.prog.Len() }

func (p *Parser) patch(idx int64, target int64) { p.prog.Patch(idx, target) }

// literalValue converts a literal token (INT/DOUBLE/CHAR/STRING/TRUE/FALSE)
// into its runtime Value, the form PSI and case labels both need.
func literalValue(tok token.Token) lexval.Value {
	switch tok.Type {
	case token.INT:
		return lexval.Int(tok.Value.(int64))
	case token.DOUBLE:
		return lexval.Dbl(tok.Value.(float64))
	case token.CHAR:
		return lexval.Chr(tok.Value.(rune))
	case token.STRING:
		return lexval.Str(tok.Value.(string))
	case token.TRUE:
		return lexval.Boolean(true)
	case token.FALSE:
		return lexval.Boolean(false)
	default:
		return lexval.Value{}
	}
}

func isLiteralType(tt token.Type) bool {
	switch tt {
	case token.INT, token.DOUBLE, token.CHAR, token.STRING, token.TRUE, token.FALSE:
		return true
	default:
		return false
	}
}

// builtinIndex looks a name up in the fixed built-in table (spec §3.5)
// first, then in this compile unit's host-registered externals, if any.
func (p *Parser) builtinIndex(name string) (int, bool) {
	if idx, ok := builtins.IndexOf(name); ok {
		return idx, true
	}
	if p.externals != nil {
		if idx, ok := p.externals[name]; ok {
			return idx, true
		}
	}
	return 0, false
}
