package wire

// The encoder below exists only so the wire codec's round-trip
// properties (spec §8, properties 1-4) are checkable in this
// package's own tests. Writing a full PBF file is out of scope
// (spec.md §1 Non-goals); this is purely the inverse of reader.go,
// scoped to a single Field or Message at a time.

// EncodeVarint appends x to buf in base-128 little-endian form.
func EncodeVarint(buf []byte, x uint64) []byte {
	for x >= 0x80 {
		buf = append(buf, byte(x&0x7f|0x80))
		x >>= 7
	}
	return append(buf, byte(x))
}

func encodeFixed64(buf []byte, x uint64) []byte {
	return append(buf,
		byte(x), byte(x>>8), byte(x>>16), byte(x>>24),
		byte(x>>32), byte(x>>40), byte(x>>48), byte(x>>56))
}

func encodeFixed32(buf []byte, x uint32) []byte {
	return append(buf, byte(x), byte(x>>8), byte(x>>16), byte(x>>24))
}

// EncodeTag appends the tag varint for (num, wt) to buf.
func EncodeTag(buf []byte, num int32, wt WireType) []byte {
	return EncodeVarint(buf, uint64(num)<<3|uint64(wt&7))
}

// EncodeField appends f, tag and value, to buf.
func EncodeField(buf []byte, f Field) []byte {
	buf = EncodeTag(buf, f.Num, f.Type)
	switch f.Type {
	case Varint:
		return EncodeVarint(buf, f.Value.Number)
	case I64:
		return encodeFixed64(buf, f.Value.Number)
	case I32:
		return encodeFixed32(buf, uint32(f.Value.Number))
	case Len:
		buf = EncodeVarint(buf, uint64(len(f.Value.Bytes)))
		return append(buf, f.Value.Bytes...)
	default:
		return buf
	}
}

// EncodeMessage appends every field of m to buf in order.
func EncodeMessage(buf []byte, m *Message) []byte {
	for _, f := range m.fields {
		buf = EncodeField(buf, f)
	}
	return buf
}
