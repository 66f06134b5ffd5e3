package vorbis

// Kind classifies a decode error (spec.md §7). The root vorbisogg package
// maps these onto its own exported Kind enum.
type Kind int

const (
	KindInvalidData Kind = iota
	KindUnsupported
	KindUnexpectedEOF
)

// Error is a Vorbis-domain decode error carrying a Kind for caller
// dispatch, grounded on the teacher's plain-struct error style (no
// third-party error library; see DESIGN.md).
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return "vorbis: " + e.Msg }
