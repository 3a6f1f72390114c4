package vm

import (
	"github.com/cwbudde/go-dsl/internal/bytecode"
	"github.com/cwbudde/go-dsl/internal/dslerrors"
	"github.com/cwbudde/go-dsl/internal/lexval"
)

// base returns a pointer-free reference to the Value an AddressCell's base
// (ignoring KeyPath) names: a global table entry or a frame-relative local.
func (v *VM) base(addr *bytecode.AddressCell) lexval.Value {
	if addr.Kind == bytecode.AddrGlobal {
		return v.globals[addr.Index]
	}
	return v.params[v.bp+addr.Index]
}

func (v *VM) setBase(addr *bytecode.AddressCell, val lexval.Value) {
	if addr.Kind == bytecode.AddrGlobal {
		v.globals[addr.Index] = val
		return
	}
	v.params[v.bp+addr.Index] = val
}

// readAddr dereferences an AddressCell, walking KeyPath through nested
// Collections (spec §4.4.3). A missing key or non-collection intermediate
// reads as a zero-valued Integer rather than erroring, mirroring the
// extend-on-write semantics the same section documents for writes.
func (v *VM) readAddr(addr *bytecode.AddressCell) lexval.Value {
	cur := v.base(addr)
	for _, key := range addr.KeyPath {
		if cur.Kind != lexval.CollectionKind {
			return lexval.Zero(lexval.Integer)
		}
		elem, ok := cur.Col.Get(key)
		if !ok {
			return lexval.Zero(lexval.Integer)
		}
		cur = elem
	}
	return cur
}

// writeAddr stores val at the AddressCell, extending collections along the
// way when an intermediate key is missing (spec §4.4.3: "if the key is a
// string that is absent, a default entry is inserted").
func (v *VM) writeAddr(addr *bytecode.AddressCell, val lexval.Value) {
	if len(addr.KeyPath) == 0 {
		v.setBase(addr, val)
		return
	}
	root := v.base(addr)
	if root.Kind != lexval.CollectionKind {
		root = lexval.Coll(lexval.NewCollection())
	}
	cur := root
	for i, key := range addr.KeyPath {
		last := i == len(addr.KeyPath)-1
		if last {
			cur.Col.Set(key, val)
			break
		}
		elem, ok := cur.Col.Get(key)
		if !ok || elem.Kind != lexval.CollectionKind {
			elem = lexval.Coll(lexval.NewCollection())
			cur.Col.Set(key, elem)
		}
		cur = elem
	}
	v.setBase(addr, root)
}

// requireAddress guards opcodes that assume the parser always attaches an
// Address (spec §3.4); a nil Address here is an internal-invariant failure,
// not a runtime error a script can catch.
func requireAddress(ins bytecode.Instruction) (*bytecode.AddressCell, error) {
	if ins.Address == nil {
		return nil, dslerrors.NewRuntimeError(dslerrors.CodeMissingAddress,
			"%s instruction at %d has no resolved address", ins.Opcode, ins.Location)
	}
	return ins.Address, nil
}
