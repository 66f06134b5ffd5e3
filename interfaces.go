package vorbisogg

import "context"

// ByteSource is the minimum contract a decoder consumes bytes through
// (spec.md §6). Implementations may or may not support seeking.
type ByteSource interface {
	Read(p []byte) (n int, err error)
	CanSeek() bool
	Seek(offset int64, whence int) (int64, error)
	Position() int64
}

// BufferPool rents page payload buffers; a nil pool falls back to plain
// allocation (spec.md §6).
type BufferPool interface {
	Rent(minBytes int) []byte
}

// Sink is the caller-supplied destination for decoded PCM frames (spec.md
// §6, SPEC_FULL.md §6). GetWritable returns per-channel slices (len ==
// channels), each with capacity for at least minSamples frames; Advance
// reports how many of those frames were actually written.
type Sink interface {
	GetWritable(minSamples int) [][]float32
	Advance(samplesWritten int)
}

// PacketGranuleCountFunc computes the sample count a packet would
// contribute without mutating decoder state, used by seek accounting
// (spec.md §4.10, §6).
type PacketGranuleCountFunc func(packet []byte, isLastInPage bool) (int, error)

// GranuleSeekable is the collaborator a Decoder delegates granule-position
// seeking to (spec.md §6, SPEC_FULL.md §6).
type GranuleSeekable interface {
	SeekTo(ctx context.Context, target int64, preRollPackets int, granuleCount PacketGranuleCountFunc) (int64, error)
	TotalGranules() (int64, bool)
}

// SeekOrigin mirrors bitio.SeekOrigin for the public Seek API.
type SeekOrigin int

const (
	SeekBegin SeekOrigin = iota
	SeekCurrent
	SeekEnd
)
