package lexer

// decodeRune is the canonical branchless 4-byte UTF-8 decoder spec §4.2.1
// and §9 call for (grounded on the public-domain decoder duplicated in
// original_source/Includes/Utf8.h). It always reads all 4 bytes s[0]..s[3]
// regardless of the true length of the encoded scalar, then shifts the
// unused bits back out; callers must ensure at least 4 bytes are readable
// (the caller pads short reads with zero bytes).
//
// It returns the decoded rune, the number of bytes actually consumed, and
// whether the encoding was valid. Surrogate halves and out-of-range scalars
// are rejected, per spec §9 ("reject surrogate halves and out-of-range
// scalars").
func decodeRune(s [4]byte) (r rune, size int, ok bool) {
	lengths := [32]byte{
		1, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1,
		0, 0, 0, 0, 0, 0, 0, 0,
		2, 2, 2, 2, 3, 3, 4, 0,
	}
	masks := [5]uint32{0x00, 0x7f, 0x1f, 0x0f, 0x07}
	minimumValues := [5]uint32{4194304, 0, 128, 2048, 65536}
	shiftConsts := [5]uint32{0, 18, 12, 6, 0}
	shiftExtras := [5]uint32{0, 6, 4, 2, 0}

	length := int(lengths[s[0]>>3])

	ch := uint32(s[0]&byte(masks[length])) << 18
	ch |= uint32(s[1]&0x3f) << 12
	ch |= uint32(s[2]&0x3f) << 6
	ch |= uint32(s[3]&0x3f) << 0
	ch >>= shiftConsts[length]

	var e uint32
	e = b2u32(ch < minimumValues[length]) << 6 // non-canonical encoding
	e |= b2u32((ch>>11) == 0x1b) << 7           // surrogate half?
	e |= b2u32(ch > 0x10FFFF) << 8              // out of range?
	e |= uint32(s[1]&0xc0) >> 2
	e |= uint32(s[2]&0xc0) >> 4
	e |= uint32(s[3]) >> 6
	e ^= 0x2a
	e >>= shiftExtras[length]

	if length == 0 {
		return 0xFFFD, 1, false
	}
	if e != 0 {
		return 0xFFFD, length, false
	}
	return rune(ch), length, true
}

func b2u32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// decodeString walks src fully, returning the decoded runes and whether
// every scalar in src was validly encoded.
func decodeString(src string) (runes []rune, ok bool) {
	b := []byte(src)
	ok = true
	for i := 0; i < len(b); {
		var window [4]byte
		end := i + 4
		if end > len(b) {
			end = len(b)
		}
		copy(window[:], b[i:end])
		r, size, valid := decodeRune(window)
		if !valid {
			ok = false
		}
		runes = append(runes, r)
		if size < 1 {
			size = 1
		}
		i += size
	}
	return runes, ok
}

