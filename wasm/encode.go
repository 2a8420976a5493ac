package wasm

var (
	wasmMagic   = []byte{0x00, 0x61, 0x73, 0x6d}
	wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}
)

const (
	sectionType     = 0x01
	sectionImport   = 0x02
	sectionFunction = 0x03
	sectionExport   = 0x07
	sectionCode     = 0x0a
)

const (
	valF32 = 0x7d

	typeFunc   = 0x60
	importFunc = 0x00
	exportFunc = 0x00
)

const (
	opIf         = 0x04
	opElse       = 0x05
	opEnd        = 0x0b
	opCall       = 0x10
	opLocalGet   = 0x20
	opLocalSet   = 0x21
	opLocalTee   = 0x22
	opF32Const   = 0x43
	opF32Eq      = 0x5b
	opF32Ne      = 0x5c
	opF32Lt      = 0x5d
	opF32Gt      = 0x5e
	opF32Le      = 0x5f
	opF32Ge      = 0x60
	opI32Or      = 0x72
	opF32Add     = 0x92
	opF32Sub     = 0x93
	opF32Mul     = 0x94
	opF32Div     = 0x95
	opF32FromU32 = 0xb3
)

// encodeLEB128U encodes an unsigned integer in LEB128.
func encodeLEB128U(v uint64) []byte {
	var r []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		r = append(r, b)
		if v == 0 {
			return r
		}
	}
}

// encodeString encodes a name as a length-prefixed byte vector.
func encodeString(s string) []byte {
	r := encodeLEB128U(uint64(len(s)))
	return append(r, s...)
}

// encodeVector prefixes already-encoded contents with their element count.
func encodeVector(n int, contents []byte) []byte {
	r := encodeLEB128U(uint64(n))
	return append(r, contents...)
}

// encodeSection wraps a section body with its id and byte length.
func encodeSection(id byte, body []byte) []byte {
	r := []byte{id}
	r = append(r, encodeLEB128U(uint64(len(body)))...)
	return append(r, body...)
}
