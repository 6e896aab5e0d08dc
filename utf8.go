package mt

// RuneInvalid replaces undecodable input (U+FFFD).
const RuneInvalid rune = 0xFFFD

// utfSize is the maximum number of bytes in one encoded code point.
const utfSize = 4

var (
	utfByte = [utfSize + 1]byte{0x80, 0, 0xC0, 0xE0, 0xF0}
	utfMask = [utfSize + 1]byte{0xC0, 0x80, 0xE0, 0xF0, 0xF8}
	utfMin  = [utfSize + 1]rune{0, 0, 0x80, 0x800, 0x10000}
	utfMax  = [utfSize + 1]rune{0x10FFFF, 0x7F, 0x7FF, 0xFFFF, 0x10FFFF}
)

// DecodeRune decodes one code point from the head of b.
//
// It returns (RuneInvalid, 1) for an invalid leading byte, (RuneInvalid, i)
// when byte i is not the continuation byte the sequence needs (the bytes
// before it are consumed), and (0, 0) when b holds a valid but incomplete
// prefix, in which case the caller must retain the bytes and retry with
// more input.
// Overlong forms, surrogates, and values above U+10FFFF decode to
// RuneInvalid with their full length consumed.
func DecodeRune(b []byte) (u rune, size int) {
	if len(b) == 0 {
		return 0, 0
	}
	decoded, length := decodeByte(b[0])
	if length < 1 || length > utfSize {
		return RuneInvalid, 1
	}
	i := 1
	for ; i < len(b) && i < length; i++ {
		var typ int
		var bits rune
		bits, typ = decodeByte(b[i])
		if typ != 0 {
			return RuneInvalid, i
		}
		decoded = decoded<<6 | bits
	}
	if i < length {
		return 0, 0
	}
	return validateRune(decoded, length), length
}

// decodeByte strips the UTF-8 framing from one byte and reports which frame
// it matched: 0 for a continuation byte, 1-4 for a leading byte of that
// sequence length, and a value past utfSize when nothing matched.
func decodeByte(b byte) (bits rune, typ int) {
	for typ = 0; typ < len(utfMask); typ++ {
		if b&utfMask[typ] == utfByte[typ] {
			return rune(b &^ utfMask[typ]), typ
		}
	}
	return 0, typ
}

// validateRune rejects overlong encodings, surrogates, and out-of-range
// values, replacing them with RuneInvalid.
func validateRune(u rune, length int) rune {
	if u < utfMin[length] || u > utfMax[length] || (u >= 0xD800 && u <= 0xDFFF) {
		return RuneInvalid
	}
	return u
}

// runeLen returns the encoded length of u, assuming u is valid.
func runeLen(u rune) int {
	i := 1
	for u > utfMax[i] {
		i++
	}
	return i
}

// EncodeRune appends the UTF-8 encoding of u to dst and returns the
// extended slice. Surrogates and out-of-range values encode as RuneInvalid.
func EncodeRune(dst []byte, u rune) []byte {
	if u < 0 || u > 0x10FFFF || (u >= 0xD800 && u <= 0xDFFF) {
		u = RuneInvalid
	}
	length := runeLen(u)
	var enc [utfSize]byte
	for i := length - 1; i != 0; i-- {
		enc[i] = utfByte[0] | byte(u)&^utfMask[0]
		u >>= 6
	}
	enc[0] = utfByte[length] | byte(u)&^utfMask[length]
	return append(dst, enc[:length]...)
}
