package wire

import "bytes"

// ExpandPacked finds every LEN field numbered fnum in m, reinterprets
// its bytes as a concatenation of values encoded with the primitive
// wire type t (Varint, I32, or I64), and replaces that one field with
// the resulting sequence of t-typed fields, preserving the position
// and relative order of everything else in m.
//
// If no field numbered fnum exists, ExpandPacked succeeds without
// changing m. If any contained value is ill-formed, m is left
// unmodified and an ErrMalformed-wrapped error is returned: expansion
// is all-or-nothing per call.
//
// Calling ExpandPacked twice in a row for the same (fnum, t) is a
// no-op the second time, since by then there is no LEN field left at
// that number to expand.
func ExpandPacked(m *Message, fnum int32, t WireType) error {
	if t != Varint && t != I32 && t != I64 {
		return malformed("field %d: cannot unpack wire type %v", fnum, t)
	}

	type replacement struct {
		at     int
		values []Field
	}
	var repls []replacement

	for i, f := range m.fields {
		if f.Num != fnum || f.Type != Len {
			continue
		}
		values, err := unpackValues(fnum, t, f.Value.Bytes)
		if err != nil {
			return err
		}
		repls = append(repls, replacement{at: i, values: values})
	}
	if len(repls) == 0 {
		return nil
	}

	out := make([]Field, 0, len(m.fields)+len(repls[0].values))
	ri := 0
	for i, f := range m.fields {
		if ri < len(repls) && repls[ri].at == i {
			out = append(out, repls[ri].values...)
			ri++
			continue
		}
		out = append(out, f)
	}
	m.fields = out
	return nil
}

func unpackValues(fnum int32, t WireType, buf []byte) ([]Field, error) {
	r := newReader(bytes.NewReader(buf))
	var out []Field
	for r.consumed < len(buf) {
		val, err := r.decodeValue(fnum, t)
		if err != nil {
			return nil, err
		}
		out = append(out, Field{Num: fnum, Type: t, Value: val})
	}
	if r.consumed != len(buf) {
		return nil, malformed("packed field %d: trailing %d bytes", fnum, len(buf)-r.consumed)
	}
	return out, nil
}
