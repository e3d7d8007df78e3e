package wire

import (
	"bytes"
	"io"
)

// byteReader is the minimal surface the wire reader needs from its
// input. Both bytes.Reader and bufio.Reader satisfy it.
type byteReader interface {
	io.Reader
	io.ByteReader
}

// reader decodes a wire-format byte stream into Fields. It has no
// notion of a Message; ReadMessage below drives it to build one.
type reader struct {
	r byteReader
	// consumed counts bytes read from r, so ReadMessage can enforce
	// the "exactly L bytes" invariant of spec §4.1.
	consumed int
}

func newReader(r byteReader) *reader {
	return &reader{r: r}
}

// readByte reads a single byte, counting it toward consumed.
func (d *reader) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err == nil {
		d.consumed++
	}
	return b, err
}

// readFull reads exactly len(buf) bytes, counting them toward
// consumed. A short read is reported as ErrMalformed, since in every
// caller here the length came from the stream itself (a declared
// message or field length), not from end of input being acceptable.
func (d *reader) readFull(buf []byte) error {
	n, err := io.ReadFull(d.r, buf)
	d.consumed += n
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return malformed("unexpected end of input reading %d bytes", len(buf))
		}
		return err
	}
	return nil
}

// decodeVarint reads a base-128 little-endian varint of at most ten
// bytes. atStart indicates this is the first byte of a field the
// caller is optionally expecting (a tag): a clean EOF here is
// reported via io.EOF rather than ErrMalformed, per spec §4.1.
func (d *reader) decodeVarint(atStart bool) (uint64, error) {
	var x uint64
	for shift := uint(0); shift < 70; shift += 7 {
		b, err := d.readByte()
		if err != nil {
			if err == io.EOF {
				if atStart && shift == 0 {
					return 0, io.EOF
				}
				return 0, malformed("unexpected end of input in varint")
			}
			return 0, err
		}
		if shift == 63 && b > 1 {
			// Only the lowest bit of the tenth byte may be set; any
			// more would overflow 64 bits.
			return 0, malformed("%w", ErrOverflow)
		}
		x |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return x, nil
		}
	}
	return 0, malformed("%w", ErrOverflow)
}

// decodeTag reads a field tag: a varint whose low three bits are the
// wire type and whose remaining bits are the field number. The varint
// backing a tag is capped at five bytes (it can encode at most a
// 32-bit number shifted left three), matching spec §4.1.
func (d *reader) decodeTag() (num int32, wt WireType, err error) {
	start := d.consumed
	v, err := d.decodeVarint(true)
	if err != nil {
		return 0, 0, err
	}
	if d.consumed-start > 5 {
		return 0, 0, malformed("tag varint longer than 5 bytes")
	}
	rawType := int8(v & 7)
	if rawType > 5 {
		return 0, 0, malformed("wire type %d out of range", rawType)
	}
	num = int32(v >> 3)
	return num, WireType(rawType), nil
}

// decodeValue reads the payload for wt, given a field number only for
// error messages.
func (d *reader) decodeValue(num int32, wt WireType) (FieldValue, error) {
	switch wt {
	case Varint:
		v, err := d.decodeVarint(false)
		if err != nil {
			return FieldValue{}, err
		}
		return FieldValue{Number: v}, nil

	case I64:
		var buf [8]byte
		if err := d.readFull(buf[:]); err != nil {
			return FieldValue{}, err
		}
		return FieldValue{Number: le64(buf[:])}, nil

	case I32:
		var buf [4]byte
		if err := d.readFull(buf[:]); err != nil {
			return FieldValue{}, err
		}
		return FieldValue{Number: uint64(le32(buf[:]))}, nil

	case Len:
		n, err := d.decodeVarint(false)
		if err != nil {
			return FieldValue{}, err
		}
		if lr, ok := d.r.(interface{ Len() int }); ok && n > uint64(lr.Len()) {
			return FieldValue{}, malformed("field %d: length %d exceeds remaining %d bytes", num, n, lr.Len())
		}
		buf := make([]byte, n)
		if n > 0 {
			if err := d.readFull(buf); err != nil {
				return FieldValue{}, err
			}
		}
		return FieldValue{Bytes: buf}, nil

	case SGroup, EGroup:
		return FieldValue{}, nil

	default:
		return FieldValue{}, malformed("field %d: unhandled wire type %v", num, wt)
	}
}

func le64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// ReadMessage reads fields from r until exactly length bytes have
// been consumed, per spec §4.1. length == 0 yields the empty message.
// Consuming fewer or more bytes than length is ErrMalformed.
func ReadMessage(r byteReader, length int) (*Message, error) {
	d := newReader(r)
	m := &Message{}
	for d.consumed < length {
		num, wt, err := d.decodeTag()
		if err != nil {
			if err == io.EOF {
				return nil, malformed("message ended mid-field at %d/%d bytes", d.consumed, length)
			}
			return nil, err
		}
		val, err := d.decodeValue(num, wt)
		if err != nil {
			return nil, err
		}
		if d.consumed > length {
			return nil, malformed("field overran message length (%d > %d)", d.consumed, length)
		}
		m.fields = append(m.fields, Field{Num: num, Type: wt, Value: val})
	}
	if d.consumed != length {
		return nil, malformed("message consumed %d bytes, expected %d", d.consumed, length)
	}
	return m, nil
}

// ReadEmbeddedMessage wraps buf as a byte source and reads it as a
// message of exactly len(buf) bytes.
func ReadEmbeddedMessage(buf []byte) (*Message, error) {
	return ReadMessage(bytes.NewReader(buf), len(buf))
}
