// Package pbf implements the OSM PBF-specific layers on top of wire:
// zlib decompression of blob payloads, the length-framed blob loop,
// and the domain decoders that turn HeaderBlock/PrimitiveBlock
// messages into an osm.Map (spec §4.2, §4.3, §4.4).
package pbf

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the errors Decode can return (spec §7).
type ErrorKind int

const (
	// IO means the underlying byte source failed or ended prematurely
	// outside of a well-formed framing boundary.
	IO ErrorKind = iota
	// Malformed means the input violated the wire or PBF framing
	// format: bad varint, length overrun, unsupported compression,
	// a required field missing.
	Malformed
	// Decompress means zlib reported a non-success status.
	Decompress
	// OOM means an allocation failed.
	OOM
)

func (k ErrorKind) String() string {
	switch k {
	case IO:
		return "IO"
	case Malformed:
		return "MALFORMED"
	case Decompress:
		return "DECOMPRESS"
	case OOM:
		return "OOM"
	default:
		return "UNKNOWN"
	}
}

// Error wraps an underlying cause with the ErrorKind spec §7 requires
// callers to be able to distinguish.
type Error struct {
	Kind  ErrorKind
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pbf: %s: %v", e.Kind, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func wrapErr(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, cause: fmt.Errorf(format, args...)}
}

// KindOf reports the ErrorKind of err, or false if err did not
// originate from this package.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
