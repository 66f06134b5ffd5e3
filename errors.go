package vorbisogg

import (
	"errors"
	"fmt"

	"github.com/philipch07/vorbisogg/internal/ogg"
	"github.com/philipch07/vorbisogg/internal/vorbis"
)

// Kind classifies a decode error for caller dispatch (spec.md §7).
type Kind int

const (
	// KindUnexpectedEOF means the source ended mid-structure.
	KindUnexpectedEOF Kind = iota
	// KindCorruptPage means a page CRC mismatch or invalid lacing total.
	KindCorruptPage
	// KindInvalidData means a violated spec invariant (bad version,
	// duplicate header, reserved bits nonzero, out-of-range index, bad
	// codebook signature, incomplete Huffman tree).
	KindInvalidData
	// KindUnsupported means a floor type outside {0,1}, residue type
	// outside {0,1,2}, or a non-zero vorbis_version.
	KindUnsupported
	// KindNonContiguity classifies a page resync that skipped bytes before
	// finding the next capture pattern. Recoverable: delivered only as the
	// observable NonContiguityEvent (LastNonContiguity), never as a
	// returned *Error, since decoding continues uninterrupted.
	KindNonContiguity
	// KindOutOfRange means a seek target fell outside the stream, or a
	// negative relative offset was given with an absolute origin.
	KindOutOfRange
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedEOF:
		return "unexpected-eof"
	case KindCorruptPage:
		return "corrupt-page"
	case KindInvalidData:
		return "invalid-data"
	case KindUnsupported:
		return "unsupported"
	case KindNonContiguity:
		return "non-contiguity"
	case KindOutOfRange:
		return "out-of-range"
	default:
		return "unknown"
	}
}

// Error is a decode error carrying a Kind for caller dispatch, following
// the teacher's plain-struct, stdlib-only error style (no error-wrapping
// library appears anywhere in the retrieval pack's go.mod files; see
// DESIGN.md).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vorbisogg: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("vorbisogg: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrOutOfRange is returned by Decoder.Seek when the target sample
// position lies outside the stream, or a negative relative offset was
// given with an absolute origin.
var ErrOutOfRange = errors.New("vorbisogg: seek target out of range")

// wrapOgg translates an internal/ogg error into a package Error with the
// appropriate Kind.
func wrapOgg(op string, err error) error {
	if err == nil {
		return nil
	}
	var corrupt *ogg.CorruptPageError
	switch {
	case errors.As(err, &corrupt):
		return &Error{Kind: KindCorruptPage, Op: op, Err: err}
	case errors.Is(err, ogg.ErrUnexpectedEOF):
		return &Error{Kind: KindUnexpectedEOF, Op: op, Err: err}
	case errors.Is(err, ogg.ErrUnsupportedSeek):
		return &Error{Kind: KindOutOfRange, Op: op, Err: err}
	default:
		return &Error{Kind: KindInvalidData, Op: op, Err: err}
	}
}

// wrapVorbis translates an internal/vorbis error into a package Error.
func wrapVorbis(op string, err error) error {
	if err == nil {
		return nil
	}
	var verr *vorbis.Error
	if errors.As(err, &verr) {
		var k Kind
		switch verr.Kind {
		case vorbis.KindUnsupported:
			k = KindUnsupported
		case vorbis.KindUnexpectedEOF:
			k = KindUnexpectedEOF
		default:
			k = KindInvalidData
		}
		return &Error{Kind: k, Op: op, Err: err}
	}
	return &Error{Kind: KindInvalidData, Op: op, Err: err}
}
