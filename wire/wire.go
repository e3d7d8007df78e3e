// Package wire reads Protocol Buffers wire-format messages without
// knowledge of any particular .proto schema. It decodes a byte stream
// into an ordered sequence of fields, each tagged with a field number
// and a wire type, and provides navigation over that sequence.
//
// The code here is grounded in the varint/zigzag/tag decoding in
// github.com/jhump/protoreflect/v2/codec's Buffer, reworked into an
// owned field-list with cursor navigation instead of a byte cursor
// that callers interpret by hand.
package wire

import (
	"errors"
	"fmt"
	"io"
)

// WireType is one of the six wire types defined by the protobuf
// binary encoding. SGROUP and EGROUP are deprecated; they are decoded
// (so a tag that names them doesn't fail) but carry no payload.
type WireType int8

const (
	Varint WireType = 0
	I64    WireType = 1
	Len    WireType = 2
	SGroup WireType = 3
	EGroup WireType = 4
	I32    WireType = 5

	// Any is not a real wire type; it is passed to GetField/NextField
	// to mean "match the field number regardless of wire type".
	Any WireType = -1
)

func (t WireType) String() string {
	switch t {
	case Varint:
		return "VARINT"
	case I64:
		return "I64"
	case Len:
		return "LEN"
	case SGroup:
		return "SGROUP"
	case EGroup:
		return "EGROUP"
	case I32:
		return "I32"
	case Any:
		return "ANY"
	default:
		return fmt.Sprintf("WireType(%d)", int8(t))
	}
}

// ErrOverflow reports a varint that is too large to fit in 64 bits or
// is encoded in more than ten bytes. It is returned wrapped together
// with ErrMalformed, so errors.Is matches either.
var ErrOverflow = errors.New("wire: varint overflow")

// ErrMalformed wraps any wire-format violation: a bad tag, a length
// that doesn't fit the remaining input, an invalid wire type, or a
// message that didn't consume exactly its declared length.
var ErrMalformed = errors.New("wire: malformed input")

// ErrEndOfInput is returned by ReadField-style callers (via io.EOF)
// to distinguish "no more fields, cleanly" from a real error. It is
// an alias for io.EOF so callers can use errors.Is(err, io.EOF).
var ErrEndOfInput = io.EOF

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrMalformed}, args...)...)
}

// FieldValue is the decoded payload of a Field. Exactly one of the
// following is meaningful, selected by the owning Field's WireType:
// Varint/I32 both use Number (I32 never exceeding 32 bits); I64 uses
// Number in full; Len uses Bytes. SGROUP/EGROUP fields carry neither.
type FieldValue struct {
	Number uint64
	Bytes  []byte
}

// Field is a single (field number, wire type, value) triple, in the
// order it was read from the input.
type Field struct {
	Num   int32
	Type  WireType
	Value FieldValue
}

// Message is an ordered, traversable list of Fields that preserves
// source order and permits duplicate field numbers. It is the owned
// sequence described in spec §9 in place of the source's circular
// doubly-linked list: fields live in a slice, and a Cursor is a stable
// index into that slice plus a sentinel "head" position (-1) used to
// mark "before the first field" / "iteration exhausted".
type Message struct {
	fields []Field
}

// Cursor identifies a position within a Message: either the sentinel
// head (before the first field, and after the last) or a specific
// field by index.
type Cursor struct {
	msg *Message
	idx int // -1 is the sentinel head
}

// Head returns the sentinel cursor for m: the position before the
// first field and after the last, from which iteration in either
// direction begins.
func (m *Message) Head() Cursor {
	return Cursor{msg: m, idx: -1}
}

// Len returns the number of fields in m.
func (m *Message) Len() int {
	return len(m.fields)
}

// Fields returns the underlying field slice in insertion order. The
// caller must not mutate it.
func (m *Message) Fields() []Field {
	return m.fields
}

// At returns a cursor to the field at the given index and a copy of
// that field's current value, or false if idx is out of range.
func (m *Message) At(idx int) (Cursor, Field, bool) {
	if idx < 0 || idx >= len(m.fields) {
		return Cursor{}, Field{}, false
	}
	return Cursor{msg: m, idx: idx}, m.fields[idx], true
}

func (c Cursor) field() (Field, bool) {
	if c.msg == nil || c.idx < 0 || c.idx >= len(c.msg.fields) {
		return Field{}, false
	}
	return c.msg.fields[c.idx], true
}

// Direction controls which way NextField advances from a cursor.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// GetField returns the last field matching fnum (protobuf "last value
// wins" semantics), or false if none exists. If want is Any the wire
// type is not checked; otherwise a field with a matching number but a
// different wire type is skipped.
func GetField(m *Message, fnum int32, want WireType) (Field, bool) {
	for i := len(m.fields) - 1; i >= 0; i-- {
		f := m.fields[i]
		if f.Num == fnum && (want == Any || f.Type == want) {
			return f, true
		}
	}
	return Field{}, false
}

// NextField advances from cursor in the given direction to the next
// field whose number matches fnum (or ANY), returning its cursor and
// value. Reaching the sentinel head again terminates iteration (ok is
// false); NextField does not wrap past it.
func NextField(cursor Cursor, fnum int32, want WireType, dir Direction) (Cursor, Field, bool) {
	m := cursor.msg
	if m == nil {
		return Cursor{}, Field{}, false
	}
	step := 1
	if dir == Backward {
		step = -1
	}
	i := cursor.idx + step
	for i >= 0 && i < len(m.fields) {
		f := m.fields[i]
		if f.Num == fnum && (want == Any || f.Type == want) {
			return Cursor{msg: m, idx: i}, f, true
		}
		i += step
	}
	return Cursor{}, Field{}, false
}
