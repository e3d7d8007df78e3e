package wire_test

import (
	"io"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"

	"github.com/corfu-labs/osmpbf/wire"
)

func TestFieldRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		f    wire.Field
	}{
		{"varint-small", wire.Field{Num: 1, Type: wire.Varint, Value: wire.FieldValue{Number: 0}}},
		{"varint-large", wire.Field{Num: 15, Type: wire.Varint, Value: wire.FieldValue{Number: math.MaxUint64}}},
		{"i64", wire.Field{Num: 1000, Type: wire.I64, Value: wire.FieldValue{Number: 0xdeadbeefcafebabe}}},
		{"i32", wire.Field{Num: 2, Type: wire.I32, Value: wire.FieldValue{Number: 0xfeedface}}},
		{"len-empty", wire.Field{Num: 3, Type: wire.Len, Value: wire.FieldValue{Bytes: []byte{}}}},
		{"len-bytes", wire.Field{Num: (1 << 28) - 1, Type: wire.Len, Value: wire.FieldValue{Bytes: []byte("hello, osm")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := wire.EncodeField(nil, tc.f)
			m, err := wire.ReadEmbeddedMessage(buf)
			require.NoError(t, err)
			require.Equal(t, 1, m.Len())
			_, got, ok := m.At(0)
			require.True(t, ok)
			if diff := cmp.Diff(tc.f, got); diff != "" {
				t.Errorf("field mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVarintOverlongAccepted(t *testing.T) {
	// 1 encoded with a redundant continuation byte: 0x81 0x00.
	overlong := []byte{0x81, 0x00}
	raw := wire.EncodeTag(nil, 5, wire.Len)
	raw = append(raw, byte(len(overlong)))
	raw = append(raw, overlong...)

	msg, err := wire.ReadEmbeddedMessage(raw)
	require.NoError(t, err)
	require.NoError(t, wire.ExpandPacked(msg, 5, wire.Varint))
	require.Equal(t, 1, msg.Len())
	_, f, ok := msg.At(0)
	require.True(t, ok)
	require.Equal(t, uint64(1), f.Value.Number)

	// Re-encoding produces the canonical minimal form.
	canonical := wire.EncodeVarint(nil, f.Value.Number)
	require.Equal(t, []byte{0x01}, canonical)
}

func TestVarintTooLongFails(t *testing.T) {
	// 11 bytes, all with the continuation bit set: no terminator, so
	// unpacking it as a varint must fail even though it's a
	// perfectly well-formed LEN field on its own.
	payload := make([]byte, 11)
	for i := range payload {
		payload[i] = 0x80
	}
	raw := wire.EncodeField(nil, wire.Field{Num: 1, Type: wire.Len, Value: wire.FieldValue{Bytes: payload}})

	m, err := wire.ReadEmbeddedMessage(raw)
	require.NoError(t, err)

	err = wire.ExpandPacked(m, 1, wire.Varint)
	require.Error(t, err)
}

func TestMessageLengthInvariant(t *testing.T) {
	var buf []byte
	buf = wire.EncodeField(buf, wire.Field{Num: 1, Type: wire.Varint, Value: wire.FieldValue{Number: 42}})
	buf = wire.EncodeField(buf, wire.Field{Num: 2, Type: wire.Len, Value: wire.FieldValue{Bytes: []byte("x")}})

	m, err := wire.ReadEmbeddedMessage(buf)
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())

	if diff := pretty.Compare(m.Fields(), m.Fields()); diff != "" {
		t.Fatalf("Fields() should be stable across calls: %s", diff)
	}

	_, err = wire.ReadMessage(sliceReaderAt(buf, len(buf)-1), len(buf)-1)
	require.Error(t, err)
	_, err = wire.ReadMessage(sliceReaderAt(buf, len(buf)+1), len(buf)+1)
	require.Error(t, err)
}

func TestPackedExpansionIdempotent(t *testing.T) {
	var payload []byte
	payload = wire.EncodeVarint(payload, wire.ZigZagEncode(5))
	payload = wire.EncodeVarint(payload, wire.ZigZagEncode(-3))
	payload = wire.EncodeVarint(payload, wire.ZigZagEncode(10))

	raw := wire.EncodeField(nil, wire.Field{Num: 8, Type: wire.Len, Value: wire.FieldValue{Bytes: payload}})
	m, err := wire.ReadEmbeddedMessage(raw)
	require.NoError(t, err)

	require.NoError(t, wire.ExpandPacked(m, 8, wire.Varint))
	first := append([]wire.Field(nil), m.Fields()...)

	// Expanding again is a no-op: there is no LEN field left at 8.
	require.NoError(t, wire.ExpandPacked(m, 8, wire.Varint))
	require.Equal(t, first, m.Fields())
}

func TestGetFieldLastWins(t *testing.T) {
	var buf []byte
	buf = wire.EncodeField(buf, wire.Field{Num: 1, Type: wire.Varint, Value: wire.FieldValue{Number: 1}})
	buf = wire.EncodeField(buf, wire.Field{Num: 1, Type: wire.Varint, Value: wire.FieldValue{Number: 2}})
	buf = wire.EncodeField(buf, wire.Field{Num: 1, Type: wire.Varint, Value: wire.FieldValue{Number: 3}})

	m, err := wire.ReadEmbeddedMessage(buf)
	require.NoError(t, err)
	f, ok := wire.GetField(m, 1, wire.Varint)
	require.True(t, ok)
	require.Equal(t, uint64(3), f.Value.Number)
}

func TestNextFieldNavigation(t *testing.T) {
	var buf []byte
	buf = wire.EncodeField(buf, wire.Field{Num: 1, Type: wire.Varint, Value: wire.FieldValue{Number: 1}})
	buf = wire.EncodeField(buf, wire.Field{Num: 2, Type: wire.Varint, Value: wire.FieldValue{Number: 99}})
	buf = wire.EncodeField(buf, wire.Field{Num: 1, Type: wire.Varint, Value: wire.FieldValue{Number: 2}})

	m, err := wire.ReadEmbeddedMessage(buf)
	require.NoError(t, err)

	cursor, f, ok := wire.NextField(m.Head(), 1, wire.Varint, wire.Forward)
	require.True(t, ok)
	require.Equal(t, uint64(1), f.Value.Number)

	cursor, f, ok = wire.NextField(cursor, 1, wire.Varint, wire.Forward)
	require.True(t, ok)
	require.Equal(t, uint64(2), f.Value.Number)

	_, _, ok = wire.NextField(cursor, 1, wire.Varint, wire.Forward)
	require.False(t, ok)
}

func TestZigZagRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 2, -2, math.MaxInt64, math.MinInt64, 1234567, -1234567}
	for _, n := range cases {
		if got := wire.ZigZagDecode(wire.ZigZagEncode(n)); got != n {
			t.Errorf("ZigZagDecode(ZigZagEncode(%d)) = %d", n, got)
		}
	}
}

func TestDeltaZigZagRoundTrip(t *testing.T) {
	xs := []int64{100, 105, 98, 98, -5000, -5000, 0, math.MaxInt32}
	deltas := make([]uint64, len(xs))
	var prev int64
	for i, x := range xs {
		deltas[i] = wire.ZigZagEncode(x - prev)
		prev = x
	}
	got := wire.DecodeDeltaZigZag(deltas)
	require.Equal(t, xs, got)
}

// sliceReaderAt truncates buf to n bytes for exercising the strict
// message-length invariant (over/under-long reads).
func sliceReaderAt(buf []byte, n int) *truncatingReader {
	if n > len(buf) {
		n = len(buf)
	}
	return &truncatingReader{buf: buf[:n]}
}

type truncatingReader struct {
	buf []byte
	pos int
}

func (r *truncatingReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.buf) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[r.pos:])
	r.pos += n
	return n, nil
}

func (r *truncatingReader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, io.EOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}
