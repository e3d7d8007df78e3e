package pbf

import (
	"encoding/binary"
	"io"

	"github.com/corfu-labs/osmpbf/internal/xlog"
	"github.com/corfu-labs/osmpbf/osm"
	"github.com/corfu-labs/osmpbf/wire"
)

// Field numbers for BlobHeader and Blob, per fileformat.proto as
// reduced in spec §4.3.
const (
	fieldBlobHeaderType      = 1
	fieldBlobHeaderIndexData = 2
	fieldBlobHeaderDataSize  = 3

	fieldBlobRaw      = 1
	fieldBlobRawSize  = 2
	fieldBlobZlibData = 3
	// fieldBlobLZMA, fieldBlobOBSDeprecated, fieldBlobLZ4 = 4, 5, 6;
	// any of 4-6 present means a compression scheme this core does
	// not implement.
)

// Defensive framing ceilings, matching the constants sapk-osmpbf uses
// to reject a corrupt or hostile length before allocating for it
// (spec.md doesn't name a figure; SPEC_FULL.md §13 adopts theirs).
const (
	maxBlobHeaderSize = 64 * 1024
	maxBlobSize       = 32 * 1024 * 1024
)

var log = xlog.New("pbf")

// Decode reads r as a sequence of (length, BlobHeader, Blob) frames
// (spec §4.3, §6) and materializes the resulting HeaderBlock and
// PrimitiveBlock contents into an *osm.Map. A clean end of input
// between frames ends the loop successfully; anything else is
// reported as an *Error.
func Decode(r io.Reader) (*osm.Map, error) {
	m := &osm.Map{}
	for {
		hlen, err := readFrameLen(r)
		if err == io.EOF {
			return m, nil
		}
		if err != nil {
			return nil, err
		}

		header, err := readBlobHeader(r, hlen)
		if err != nil {
			return nil, err
		}

		blob, err := readBlob(r, header.dataSize)
		if err != nil {
			return nil, err
		}

		if header.kind != "OSMHeader" && header.kind != "OSMData" {
			log.Warning("skipping blob of unknown type %q", header.kind)
			continue
		}

		inner, err := materializeBlob(blob)
		if err != nil {
			return nil, err
		}

		switch header.kind {
		case "OSMHeader":
			if err := decodeHeaderBlock(inner, m); err != nil {
				return nil, err
			}
		case "OSMData":
			if err := decodePrimitiveBlock(inner, m); err != nil {
				return nil, err
			}
		}
	}
}

// readFrameLen reads the 4-byte big-endian blob-header length that
// precedes every frame. A clean EOF (zero bytes read) is reported as
// io.EOF so Decode's loop can terminate; input that ends after 1-3
// bytes is Malformed, and any other read failure is IO.
func readFrameLen(r io.Reader) (int, error) {
	var buf [4]byte
	n, err := io.ReadFull(r, buf[:])
	if n == 0 && err == io.EOF {
		return 0, io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		return 0, wrapErr(Malformed, "short read of blob header length: %w", err)
	}
	if err != nil {
		return 0, wrapErr(IO, "reading blob header length: %w", err)
	}
	hlen := binary.BigEndian.Uint32(buf[:])
	if hlen > maxBlobHeaderSize {
		return 0, wrapErr(Malformed, "BlobHeader length %d exceeds %d", hlen, maxBlobHeaderSize)
	}
	return int(hlen), nil
}

type blobHeader struct {
	kind     string
	dataSize int
}

func readBlobHeader(r io.Reader, hlen int) (blobHeader, error) {
	buf := make([]byte, hlen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return blobHeader{}, wrapErr(IO, "reading BlobHeader: %w", err)
	}
	msg, err := wire.ReadEmbeddedMessage(buf)
	if err != nil {
		return blobHeader{}, wrapErr(Malformed, "BlobHeader: %w", err)
	}

	typeField, ok := wire.GetField(msg, fieldBlobHeaderType, wire.Len)
	if !ok {
		return blobHeader{}, wrapErr(Malformed, "BlobHeader missing type")
	}
	sizeField, ok := wire.GetField(msg, fieldBlobHeaderDataSize, wire.Varint)
	if !ok {
		return blobHeader{}, wrapErr(Malformed, "BlobHeader missing datasize")
	}
	dataSize := sizeField.Value.Number
	if dataSize > maxBlobSize {
		return blobHeader{}, wrapErr(Malformed, "Blob datasize %d exceeds %d", dataSize, maxBlobSize)
	}
	return blobHeader{kind: string(typeField.Value.Bytes), dataSize: int(dataSize)}, nil
}

type blob struct {
	raw      []byte
	rawSize  int
	zlibData []byte
}

func readBlob(r io.Reader, dataSize int) (blob, error) {
	buf := make([]byte, dataSize)
	if dataSize > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return blob{}, wrapErr(IO, "reading Blob: %w", err)
		}
	}
	msg, err := wire.ReadEmbeddedMessage(buf)
	if err != nil {
		return blob{}, wrapErr(Malformed, "Blob: %w", err)
	}

	for _, f := range msg.Fields() {
		if f.Num >= 4 && f.Num <= 6 {
			return blob{}, wrapErr(Malformed, "Blob uses unsupported compression (field %d)", f.Num)
		}
	}

	b := blob{}
	if f, ok := wire.GetField(msg, fieldBlobRaw, wire.Len); ok {
		b.raw = f.Value.Bytes
	}
	if f, ok := wire.GetField(msg, fieldBlobRawSize, wire.Varint); ok {
		b.rawSize = int(f.Value.Number)
	}
	if f, ok := wire.GetField(msg, fieldBlobZlibData, wire.Len); ok {
		b.zlibData = f.Value.Bytes
	}
	return b, nil
}

// materializeBlob produces the inner message a Blob carries, either
// by inflating zlib_data or parsing raw directly (spec §4.3 step 4).
func materializeBlob(b blob) (*wire.Message, error) {
	switch {
	case b.zlibData != nil:
		return inflate(b.zlibData, b.rawSize)
	case b.raw != nil:
		msg, err := wire.ReadEmbeddedMessage(b.raw)
		if err != nil {
			return nil, wrapErr(Malformed, "raw blob: %w", err)
		}
		return msg, nil
	default:
		return nil, wrapErr(Malformed, "Blob has neither raw nor zlib_data")
	}
}
