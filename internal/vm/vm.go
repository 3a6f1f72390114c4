// Package vm implements the stack-based bytecode interpreter of spec §4.4:
// a parameter/locals stack, a base-pointer-indexed call frame, a
// symbol-indexed global table, and a fixed built-in dispatch table.
package vm

import (
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/go-dsl/internal/builtins"
	"github.com/cwbudde/go-dsl/internal/bytecode"
	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/event"
	"github.com/cwbudde/go-dsl/internal/lexval"
)

// VM holds all the mutable state of a running program (spec §4.4.1).
type VM struct {
	prog *bytecode.Program

	globals []lexval.Value
	params  []lexval.Value
	top     int
	bp      int
	a       lexval.Value
	pc      int64

	addrStack []*bytecode.AddressCell

	host *builtins.Host

	lastModuleID int
	events       *event.Table     // module id -> EFI-recorded handler entries
	ticker       *event.Scheduler // on_tick dispatch deadline (spec §4.6)

	errorCode    dslerrors.Code
	errorActive  bool
	errorMessage string

	output io.Writer
	halted bool
	exit   int

	trace io.Writer // non-nil enables the `-t` instruction trace
}

// Option configures a VM at construction time, following the teacher's
// functional-options constructor style.
type Option func(*VM)

// WithOutput redirects print/printf output (and is what tests use to
// capture stdout instead of the real process stdio).
func WithOutput(w io.Writer) Option {
	return func(v *VM) { v.output = w }
}

// WithHost overrides the builtins.Host (stdin/stdout/RNG) used for
// print/input/random/etc.
func WithHost(h *builtins.Host) Option {
	return func(v *VM) { v.host = h }
}

// WithTrace enables the `-t` instruction trace (spec §6.4): every dispatched
// instruction is written to w in the same format bytecode.Disassemble uses.
func WithTrace(w io.Writer) Option {
	return func(v *VM) { v.trace = w }
}

// New builds a VM ready to run prog.
func New(prog *bytecode.Program, opts ...Option) *VM {
	v := &VM{
		prog:    prog,
		globals: make([]lexval.Value, len(prog.Globals)),
		params:  make([]lexval.Value, 1024),
		top:     -1,
		events:  event.NewTable(),
		ticker:  event.NewScheduler(time.Now()),
	}
	v.host = builtins.NewHost()
	for _, o := range opts {
		o(v)
	}
	if v.output != nil {
		v.host.Stdout = v.output
	} else {
		v.output = v.host.Stdout
	}
	return v
}

// ExitCode returns 0 if the program ran to completion, or a nonzero
// internal status if it halted on an unhandled runtime error (no on_error
// handler registered, or a handler that returned a directive other than
// 100/continue). The CLI (spec §6.4) maps any nonzero value here to its own
// exit code -3 ("compile or run error").
func (v *VM) ExitCode() int { return v.exit }

func (v *VM) push(val lexval.Value) {
	v.top++
	if v.top >= len(v.params) {
		grown := make([]lexval.Value, len(v.params)*2)
		copy(grown, v.params)
		v.params = grown
	}
	v.params[v.top] = val
}

func (v *VM) pop() lexval.Value {
	val := v.params[v.top]
	v.top--
	return val
}

func (v *VM) pushAddr(a *bytecode.AddressCell) { v.addrStack = append(v.addrStack, a) }

func (v *VM) popAddr() *bytecode.AddressCell {
	n := len(v.addrStack)
	a := v.addrStack[n-1]
	v.addrStack = v.addrStack[:n-1]
	return a
}

// Run executes prog starting at pc 0 until an END instruction (or an
// unhandled runtime error) is reached.
func (v *VM) Run() error {
	return v.runFrom(0, -1)
}

// runFrom drives the dispatch loop from a given pc. returnTo, when >= 0,
// is the pc a matching RET should return control to (spec §4.4.2's "JSR
// re-enters Run until a matching RET"); -1 means "run to END" for the
// top-level program.
func (v *VM) runFrom(start int64, returnTo int64) error {
	v.pc = start
	for {
		if v.halted {
			return nil
		}
		if v.pc < 0 || v.pc >= int64(len(v.prog.Instructions)) {
			return fmt.Errorf("vm: program counter %d out of range", v.pc)
		}
		ins := v.prog.Instructions[v.pc]

		if v.trace != nil {
			fmt.Fprintln(v.trace, bytecode.InstructionLine(int(v.pc), ins, v.prog.ModuleNames))
		}

		if v.errorActive {
			if err := v.dispatchError(); err != nil {
				return err
			}
			if v.halted {
				return nil
			}
			continue
		}

		if now := time.Now(); v.ticker.Due(now) {
			v.ticker.Reset(now)
			if entry, ok := v.events.Lookup(v.lastModuleID, event.KindTick); ok {
				if err := v.dispatchTick(entry); err != nil {
					return err
				}
				if v.halted {
					return nil
				}
			}
		}

		advance := true
		switch ins.Opcode {
		case bytecode.NOP:
		case bytecode.END:
			return nil
		case bytecode.RET:
			if v.top >= v.bp {
				v.a = v.pop()
			}
			if returnTo >= 0 {
				v.pc = returnTo
				return nil
			}
			return nil
		case bytecode.RFE:
			v.errorActive = false
			if v.top >= v.bp {
				v.a = v.pop()
			}
			if returnTo >= 0 {
				v.pc = returnTo
				return nil
			}
			return nil
		default:
			if err := v.step(ins); err != nil {
				if re, ok := err.(*dslerrors.RuntimeError); ok {
					v.raiseError(re)
					advance = true
					break
				}
				return err
			}
			if ins.Opcode == bytecode.JMP || ins.Opcode == bytecode.JIF || ins.Opcode == bytecode.JIT ||
				ins.Opcode == bytecode.JSR || ins.Opcode == bytecode.JTB {
				advance = false
			}
		}
		if advance {
			v.pc++
		}
	}
}

func (v *VM) raiseError(re *dslerrors.RuntimeError) {
	v.errorActive = true
	v.errorCode = re.Code
	v.errorMessage = re.Message
}

// dispatchError implements spec §4.4.4: on an active error, dispatch to the
// current module's on_error handler if one was recorded via EFI; otherwise
// print the message and halt cleanly.
func (v *VM) dispatchError() error {
	entry, ok := v.events.Lookup(v.lastModuleID, event.KindError)
	if !ok {
		fmt.Fprintln(v.output, v.errorMessage)
		v.halted = true
		v.exit = -2
		return nil
	}
	v.errorActive = false
	savedTop := v.top
	resumePC := v.pc
	if err := v.runFrom(entry, -1); err != nil {
		return err
	}
	directive := int(v.a.I)
	switch directive {
	case 100:
		v.top = savedTop
		v.pc = resumePC
	default:
		v.halted = true
		v.exit = -2
	}
	return nil
}

// dispatchTick implements spec §4.6's on_tick dispatch: save pc/bp/top and a
// snapshot of the param stack, run the handler to its RFE, then restore
// everything so the interrupted instruction's own stack state is untouched.
func (v *VM) dispatchTick(entry int64) error {
	savedPC := v.pc
	savedBP := v.bp
	savedTop := v.top
	snapshot := append([]lexval.Value(nil), v.params[:v.top+1]...)

	if err := v.runFrom(entry, -1); err != nil {
		return err
	}

	v.pc = savedPC
	v.bp = savedBP
	v.top = savedTop
	copy(v.params, snapshot)
	return nil
}
