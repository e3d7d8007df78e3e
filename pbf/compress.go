package pbf

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/corfu-labs/osmpbf/wire"
)

// inflate decompresses zlib-deflated data into a buffer sized to
// sizeHint (the Blob's declared raw_size), growing as needed, then
// reads the result as an embedded message of exactly the inflated
// length (which is not checked against sizeHint).
// Any status from the zlib reader other than a clean end of stream is
// reported as Decompress (spec §4.2, §7).
//
// No third-party zlib implementation in the retrieved pack offers a
// decompression API that fits here (see SPEC_FULL.md §12); this is
// the one deliberate standard-library choice in the domain stack.
func inflate(data []byte, sizeHint int) (*wire.Message, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, wrapErr(Decompress, "zlib: %w", err)
	}
	defer zr.Close()

	if sizeHint < 0 {
		sizeHint = 0
	}
	out := bytes.NewBuffer(make([]byte, 0, sizeHint))
	if _, err := io.Copy(out, zr); err != nil {
		return nil, wrapErr(Decompress, "zlib: %w", err)
	}
	if err := zr.Close(); err != nil {
		return nil, wrapErr(Decompress, "zlib: %w", err)
	}

	buf := out.Bytes()
	msg, err := wire.ReadEmbeddedMessage(buf)
	if err != nil {
		return nil, wrapErr(Malformed, "inflated blob: %w", err)
	}
	return msg, nil
}
