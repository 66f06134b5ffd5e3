package ogg

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned when the source ends mid-page.
var ErrUnexpectedEOF = errors.New("ogg: unexpected eof")

// ErrUnsupportedSeek is returned when SeekAndReadPage needs random access
// to a page already in the table but the underlying source can't seek.
var ErrUnsupportedSeek = errors.New("ogg: source does not support seeking")

// CorruptPageError reports a CRC mismatch for a page at a known offset.
type CorruptPageError struct {
	Offset   int64
	Want, Got uint32
}

func (e *CorruptPageError) Error() string {
	return fmt.Sprintf("ogg: corrupt page at offset %d: crc mismatch (want %#08x, got %#08x)", e.Offset, e.Want, e.Got)
}
