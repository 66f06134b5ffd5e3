package vorbisogg

import (
	"context"
	"io"

	"github.com/philipch07/vorbisogg/internal/bitio"
	"github.com/philipch07/vorbisogg/internal/ogg"
	"github.com/philipch07/vorbisogg/internal/vorbis"
)

// Seek moves playback to an absolute or relative sample (granule) position,
// per spec.md §4.10 "Seek". A target of 0 relative to SeekBegin
// short-circuits to the first audio page rather than delegating to the
// granule-seekable collaborator. Returns the granule position actually
// reached, which may differ slightly from target (seeking lands on a
// packet boundary, not an arbitrary sample).
func (d *Decoder) Seek(ctx context.Context, target int64, origin SeekOrigin) (int64, error) {
	if !d.hasSetup {
		if err := d.ReadHeaders(); err != nil {
			return 0, err
		}
	}
	if !d.src.CanSeek() {
		return 0, ErrOutOfRange
	}

	abs := target
	switch origin {
	case SeekCurrent:
		abs = d.samplePosition + target
	case SeekEnd:
		total, ok := d.granuleSeeker().TotalGranules()
		if !ok {
			return 0, ErrOutOfRange
		}
		abs = total + target
	case SeekBegin:
		// abs already holds target.
	default:
		return 0, ErrOutOfRange
	}
	if abs < 0 {
		return 0, ErrOutOfRange
	}

	d.resetDecodeState()

	if abs == 0 {
		d.samplePosition = 0
		return 0, nil
	}

	reached, err := d.granuleSeeker().SeekTo(ctx, abs, 1, d.packetGranuleCount)
	if err != nil {
		return 0, err
	}
	d.samplePosition = reached
	return reached, nil
}

// resetDecodeState clears overlap-add and clipping state, matching
// spec.md §4.10's "resets decoder state (prev_packet_range = None,
// clipping flag cleared)".
func (d *Decoder) resetDecodeState() {
	d.havePrevRange = false
	d.prevStart, d.prevEnd = 0, 0
	d.hasClipped = false
	d.queue = nil
	d.framer.Reset()
}

func (d *Decoder) granuleSeeker() *granuleSeeker {
	return &granuleSeeker{d: d}
}

// packetGranuleCount implements PacketGranuleCountFunc for this stream: it
// peeks the packet's mode to compute the sample count it would contribute,
// without mutating any decoder state (spec.md §4.10
// "get_packet_granule_count"). Neighbor block-size flags aren't known
// in isolation, so this estimates using the packet's own block size (half
// of it); the caller (granuleSeeker.SeekTo) sums these estimates as-is, and
// Seek sets the decoder's sample position from that sum.
func (d *Decoder) packetGranuleCount(packet []byte, isLastInPage bool) (int, error) {
	br := bitio.NewReader(packet)
	ptype, err := vorbis.ReadPacketType(br)
	if err != nil {
		return 0, wrapVorbis("seek", err)
	}
	if ptype != vorbis.PacketAudio {
		return 0, nil
	}
	_, modeIdx, err := br.Read(d.setup.ModeBits)
	if err != nil {
		return 0, wrapVorbis("seek", err)
	}
	if int(modeIdx) >= len(d.setup.Modes) {
		return 0, &Error{Kind: KindInvalidData, Op: "seek", Err: ErrOutOfRange}
	}
	mode := d.setup.Modes[modeIdx]
	n := d.ident.BlockSize0
	if mode.BlockFlag {
		n = d.ident.BlockSize1
	}
	return n / 2, nil
}

// granuleSeeker implements GranuleSeekable over a Decoder's Ogg page table,
// per the Open Question decision recorded in DESIGN.md: bisect the page
// table by granule position to land near the target, then pre-roll one
// page and walk forward accumulating each packet's granule contribution.
// Grounded on ogg_opus_packet_reader.go's findOffsetFromPlaybackTime (linear
// granule-driven seek), generalized to binary search since internal/ogg.Reader
// retains a full page table once pages have been read.
type granuleSeeker struct {
	d *Decoder
}

// TotalGranules scans forward to the end of the stream if necessary and
// returns the final page's granule position.
func (s *granuleSeeker) TotalGranules() (int64, bool) {
	if !s.d.src.CanSeek() {
		return 0, false
	}
	if err := s.ensureFullPageTable(); err != nil {
		return 0, false
	}
	table := s.d.oggReader.PageTable()
	for i := len(table) - 1; i >= 0; i-- {
		if table[i].GranulePosition != ogg.NoGranulePosition {
			return int64(table[i].GranulePosition), true
		}
	}
	return 0, false
}

// ensureFullPageTable reads forward until the underlying source is
// exhausted, so the page table covers the whole stream for bisection. A
// clean end of stream is not an error here.
func (s *granuleSeeker) ensureFullPageTable() error {
	for {
		_, err := s.d.oggReader.ReadNextPage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			wrapped := wrapOgg("seek-scan", err)
			if e, ok := wrapped.(*Error); ok && e.Kind == KindUnexpectedEOF {
				return nil
			}
			return wrapped
		}
	}
}

// SeekTo bisects the page table for the first page whose granule position
// is >= target, rewinds by one page for pre-roll (the Reader's page table
// only supports page-granular repositioning, so packet-granular pre-roll
// widens to the enclosing page), then walks forward pushing every packet it
// encounters onto the Decoder's packet queue — so a subsequent ReadAudio
// resumes exactly where this leaves off, with nothing skipped — while
// accounting granule contributions via granuleCount until target is
// reached or the stream ends.
func (s *granuleSeeker) SeekTo(ctx context.Context, target int64, preRollPackets int, granuleCount PacketGranuleCountFunc) (int64, error) {
	d := s.d
	if err := s.ensureFullPageTable(); err != nil {
		return 0, err
	}

	table := d.oggReader.PageTable()
	idx := bisectPageTable(table, target)
	if idx < 0 {
		return 0, ErrOutOfRange
	}
	if preRollPackets > 0 && idx > 0 {
		idx--
	}

	var reached int64
	if idx > 0 {
		if g := table[idx-1].GranulePosition; g != ogg.NoGranulePosition {
			reached = int64(g)
		}
	}

	page, err := d.oggReader.SeekAndReadPage(idx)
	if err != nil {
		return 0, wrapOgg("seek", err)
	}
	d.framer.Reset()
	d.queue = nil

	for {
		select {
		case <-ctx.Done():
			return reached, ctx.Err()
		default:
		}

		pkts := d.framer.SubmitPage(page)
		for i, p := range pkts {
			isLast := i == len(pkts)-1
			d.queue = append(d.queue, pendingPacket{
				data:           p,
				isLastOfPage:   isLast,
				pageGranule:    page.GranulePosition,
				pageEndsStream: page.Flags.EndsStream(),
			})
			if n, err := granuleCount(p, isLast); err == nil {
				reached += int64(n)
			}
		}

		if reached >= target || page.Flags.EndsStream() {
			return reached, nil
		}
		page, err = d.oggReader.ReadNextPage()
		if err != nil {
			return reached, wrapOgg("seek", err)
		}
	}
}

// bisectPageTable returns the index of the first page whose granule
// position is both valid and >= target, or the last valid-granule page if
// none reaches target, or -1 if the table has no granule-bearing pages.
func bisectPageTable(table []ogg.Page, target int64) int {
	lo, hi := 0, len(table)-1
	best := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		v := mid
		for v <= hi && table[v].GranulePosition == ogg.NoGranulePosition {
			v++
		}
		if v > hi {
			hi = mid - 1
			continue
		}
		if int64(table[v].GranulePosition) >= target {
			best = v
			hi = mid - 1
		} else {
			lo = v + 1
		}
	}
	if best == -1 {
		for i := len(table) - 1; i >= 0; i-- {
			if table[i].GranulePosition != ogg.NoGranulePosition {
				return i
			}
		}
	}
	return best
}
