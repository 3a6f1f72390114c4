package bytecode

import "io"

// SymbolEntry is one row of the symbol file (spec §6.3): a global
// variable's fully qualified name and the slot index instructions address
// it by.
type SymbolEntry struct {
	Name  string
	Index int
}

// WriteSymbols serializes a Program's Globals table using the same
// varint/length-prefixed-string primitives as the instruction stream.
func WriteSymbols(w io.Writer, p *Program) error {
	if err := writeVarint(w, int64(len(p.Globals))); err != nil {
		return err
	}
	for i, name := range p.Globals {
		b := []byte(name)
		if err := writeVarint(w, int64(len(b))); err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
		if err := writeVarint(w, int64(i)); err != nil {
			return err
		}
	}
	return nil
}

// ReadSymbols reads back a symbol table written by WriteSymbols.
func ReadSymbols(r io.Reader) ([]SymbolEntry, error) {
	count, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]SymbolEntry, 0, count)
	for i := int64(0); i < count; i++ {
		nlen, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, nlen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		idx, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		out = append(out, SymbolEntry{Name: string(buf), Index: int(idx)})
	}
	return out, nil
}
