package vorbisogg

import (
	"fmt"
	"io"

	"github.com/philipch07/vorbisogg/internal/bitio"
	"github.com/philipch07/vorbisogg/internal/ogg"
	"github.com/philipch07/vorbisogg/internal/vorbis"
)

// Decoder decodes one logical Vorbis I bitstream carried in an Ogg
// container (spec.md §4.10 "VorbisDecoder orchestrator"). A Decoder is not
// safe for concurrent use and handles exactly one logical stream
// (spec.md §1 Non-goals).
//
// Structurally grounded on the teacher's OggOpusPacketReader.Next() pull
// loop (internal/audio/ogg_opus_packet_reader.go): a single method pulls
// the next decoded unit, reassembling carried-over state (here: header
// flags, overlap-add buffers, granule position) across calls exactly as
// the teacher reassembles partial Opus packets across page reads.
type Decoder struct {
	src  ByteSource
	opts *Options

	oggReader *ogg.Reader
	framer    *ogg.Framer
	queue     []pendingPacket

	hasIdent, hasComments, hasSetup bool
	ident                           *vorbis.Identification
	comments                        Comments
	setup                           *vorbis.Setup
	windows                         *vorbis.WindowSet
	mdct                            *vorbis.IMDCTEngine

	channels int

	packetBuf     [][]float32
	prevPacketBuf [][]float32
	havePrevRange bool
	prevStart     int
	prevEnd       int

	samplePosition int64
	eosSeen        bool
	hasClipped     bool
}

type pendingPacket struct {
	data           []byte
	isLastOfPage   bool
	pageGranule    uint64
	pageEndsStream bool
}

// New constructs a Decoder reading from src. ByteSource and BufferPool are
// structurally identical to their internal/ogg counterparts, so src and
// o.pool satisfy ogg.Reader's constructor directly without adapters.
func New(src ByteSource, opts ...Option) *Decoder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	var pool ogg.BufferPool
	if o.pool != nil {
		pool = o.pool
	}
	return &Decoder{
		src:       src,
		opts:      o,
		oggReader: ogg.NewReader(src, pool),
		framer:    ogg.NewFramer(),
	}
}

// Identification returns the stream's identification header, valid once
// ReadHeaders (or the first call that decodes headers) has completed.
func (d *Decoder) Identification() (channels int, sampleRate uint32, ok bool) {
	if d.ident == nil {
		return 0, 0, false
	}
	return d.ident.Channels, d.ident.SampleRate, true
}

// Comments returns the stream's parsed Vorbis comments, valid once headers
// have been read.
func (d *Decoder) Comments() (Comments, bool) {
	if !d.hasComments {
		return Comments{}, false
	}
	return d.comments, true
}

// ReadHeaders reads and parses the identification, comment and setup
// packets in order, as required before any audio packet can be decoded
// (spec.md §4.10).
func (d *Decoder) ReadHeaders() error {
	for !d.hasSetup {
		pkt, err := d.nextRawPacket()
		if err != nil {
			return err
		}
		if err := d.handleHeaderPacket(pkt); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) handleHeaderPacket(data []byte) error {
	br := bitio.NewReader(data)
	ptype, err := vorbis.ReadPacketType(br)
	if err != nil {
		return wrapVorbis("header", err)
	}

	switch ptype {
	case vorbis.PacketIdentification:
		if d.hasIdent {
			return &Error{Kind: KindInvalidData, Op: "header", Err: fmt.Errorf("duplicate identification header")}
		}
		ident, err := vorbis.ReadIdentification(br)
		if err != nil {
			return wrapVorbis("identification", err)
		}
		d.ident = ident
		d.channels = ident.Channels
		d.hasIdent = true

	case vorbis.PacketComment:
		if !d.hasIdent {
			return &Error{Kind: KindInvalidData, Op: "header", Err: fmt.Errorf("comment header before identification")}
		}
		if d.hasComments {
			return &Error{Kind: KindInvalidData, Op: "header", Err: fmt.Errorf("duplicate comment header")}
		}
		ch, err := vorbis.ReadComment(br)
		if err != nil {
			return wrapVorbis("comment", err)
		}
		fields := make([]CommentField, len(ch.Fields))
		for i, f := range ch.Fields {
			fields[i] = CommentField{Key: f.Key, Value: f.Value}
		}
		d.comments = Comments{vendor: ch.Vendor, fields: fields}
		d.hasComments = true

	case vorbis.PacketSetup:
		if !d.hasComments {
			return &Error{Kind: KindInvalidData, Op: "header", Err: fmt.Errorf("setup header before comment")}
		}
		if d.hasSetup {
			return &Error{Kind: KindInvalidData, Op: "header", Err: fmt.Errorf("duplicate setup header")}
		}
		setup, err := vorbis.ReadSetup(br, d.channels)
		if err != nil {
			return wrapVorbis("setup", err)
		}
		d.setup = setup
		d.hasSetup = true
		d.windows = vorbis.NewWindowSet(d.ident.BlockSize0, d.ident.BlockSize1)
		d.mdct = vorbis.NewIMDCTEngine()
		d.allocateBuffers()

	default:
		return &Error{Kind: KindInvalidData, Op: "header", Err: fmt.Errorf("unexpected audio packet before headers complete")}
	}
	return nil
}

func (d *Decoder) allocateBuffers() {
	d.packetBuf = make([][]float32, d.channels)
	d.prevPacketBuf = make([][]float32, d.channels)
	for ch := 0; ch < d.channels; ch++ {
		d.packetBuf[ch] = make([]float32, d.ident.BlockSize1)
		d.prevPacketBuf[ch] = make([]float32, d.ident.BlockSize1)
	}
}

// popPacket pulls the next reassembled packet off the queue, reading pages
// as necessary. Returns io.EOF, unwrapped, when the stream is exhausted.
func (d *Decoder) popPacket() (pendingPacket, error) {
	for len(d.queue) == 0 {
		page, err := d.oggReader.ReadNextPage()
		if err != nil {
			if err == io.EOF {
				return pendingPacket{}, io.EOF
			}
			return pendingPacket{}, wrapOgg("read-page", err)
		}
		if nc, ok := d.oggReader.LastNonContiguity(); ok {
			d.opts.logf("vorbisogg: non-contiguity: resynced at byte offset %d", nc.SeekOffset)
		}
		pkts := d.framer.SubmitPage(page)
		for i, p := range pkts {
			d.queue = append(d.queue, pendingPacket{
				data:           p,
				isLastOfPage:   i == len(pkts)-1,
				pageGranule:    page.GranulePosition,
				pageEndsStream: page.Flags.EndsStream(),
			})
		}
	}
	pkt := d.queue[0]
	d.queue = d.queue[1:]
	if pkt.pageEndsStream && pkt.isLastOfPage {
		d.eosSeen = true
	}
	return pkt, nil
}

// nextRawPacket pulls the next reassembled packet's bytes, treating a
// clean end of stream as an error (headers must all be present).
func (d *Decoder) nextRawPacket() ([]byte, error) {
	pkt, err := d.popPacket()
	if err != nil {
		if err == io.EOF {
			return nil, &Error{Kind: KindUnexpectedEOF, Op: "header", Err: io.ErrUnexpectedEOF}
		}
		return nil, err
	}
	return pkt.data, nil
}

// ReadAudio decodes audio packets and writes decoded PCM frames into sink
// until the stream ends, then returns io.EOF. It does not stop early when
// the sink returns shorter slices than requested, and the overlap-add tail
// of the last packet is not written out.
func (d *Decoder) ReadAudio(sink Sink) error {
	if !d.hasSetup {
		if err := d.ReadHeaders(); err != nil {
			return err
		}
	}

	for {
		pkt, err := d.nextPendingAudioPacket()
		if err != nil {
			return err
		}
		if pkt == nil {
			return io.EOF
		}
		if err := d.decodeAudioPacket(*pkt, sink); err != nil {
			d.opts.logf("vorbisogg: audio packet decode error (skipped): %v", err)
			continue
		}
	}
}

// nextPendingAudioPacket pulls the next packet, reporting a clean end of
// stream with a nil packet and nil error.
func (d *Decoder) nextPendingAudioPacket() (*pendingPacket, error) {
	pkt, err := d.popPacket()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return &pkt, nil
}

func (d *Decoder) decodeAudioPacket(pkt pendingPacket, sink Sink) error {
	br := bitio.NewReader(pkt.data)
	ptype, err := vorbis.ReadPacketType(br)
	if err != nil {
		return wrapVorbis("audio", err)
	}
	if ptype != vorbis.PacketAudio {
		return &Error{Kind: KindInvalidData, Op: "audio", Err: fmt.Errorf("unexpected header packet mid-stream")}
	}

	_, modeIdx, err := br.Read(d.setup.ModeBits)
	if err != nil {
		return wrapVorbis("audio", err)
	}
	if int(modeIdx) >= len(d.setup.Modes) {
		return &Error{Kind: KindInvalidData, Op: "audio", Err: fmt.Errorf("mode index out of range")}
	}
	mode := d.setup.Modes[modeIdx]

	var prevLong, nextLong bool
	if mode.BlockFlag {
		pl, err := br.ReadBit()
		if err != nil {
			return wrapVorbis("audio", err)
		}
		nl, err := br.ReadBit()
		if err != nil {
			return wrapVorbis("audio", err)
		}
		prevLong, nextLong = pl, nl
	}

	info := vorbis.ComputeBlockInfo(mode.BlockFlag, prevLong, nextLong, d.ident.BlockSize0, d.ident.BlockSize1)

	if pkt.isLastOfPage && mode.BlockFlag && !nextLong {
		info.PacketValidLength -= (d.ident.BlockSize1 - d.ident.BlockSize0) / 4
	}

	if int(mode.Mapping) >= len(d.setup.Mappings) {
		return &Error{Kind: KindInvalidData, Op: "audio", Err: fmt.Errorf("mapping index out of range")}
	}
	mapping := d.setup.Mappings[mode.Mapping]

	out := make([][]float32, d.channels)
	for ch := range out {
		out[ch] = d.packetBuf[ch][:info.N]
	}

	if err := mapping.DecodePacket(br, d.setup.Codebooks, d.setup.Floors, d.setup.Residues, d.channels, info.N, out, d.mdct); err != nil {
		return wrapVorbis("audio", err)
	}

	for ch := 0; ch < d.channels; ch++ {
		d.windows.ApplyWindow(d.packetBuf[ch][:info.N], info.N, info.LeftLong, info.RightLong)
	}

	oldStart, oldEnd := d.prevStart, d.prevEnd
	hadPrev := d.havePrevRange
	if hadPrev {
		height := oldEnd - oldStart
		for ch := 0; ch < d.channels; ch++ {
			for i := 0; i < height && i < info.N; i++ {
				d.packetBuf[ch][i] += d.prevPacketBuf[ch][oldStart+i]
			}
		}
	}

	d.packetBuf, d.prevPacketBuf = d.prevPacketBuf, d.packetBuf
	d.prevStart, d.prevEnd = info.PacketStartIndex, info.PacketTotalLength
	d.havePrevRange = true

	if !hadPrev {
		return nil
	}

	rangeLength := oldEnd - oldStart
	length := info.PacketValidLength - oldStart
	if length > rangeLength {
		length = rangeLength
	}
	if length < 0 {
		length = 0
	}

	if pkt.isLastOfPage && pkt.pageEndsStream && pkt.pageGranule != ogg.NoGranulePosition {
		naturalEnd := d.samplePosition + int64(length)
		if naturalEnd > int64(pkt.pageGranule) {
			trimmed := int64(pkt.pageGranule) - d.samplePosition
			if trimmed < 0 {
				trimmed = 0
			}
			length = int(trimmed)
		}
	}

	if length > 0 {
		d.writeFrames(sink, d.prevPacketBuf, 0, length)
		d.samplePosition += int64(length)
	}

	return nil
}

// writeFrames copies length frames starting at offset in each channel's
// buffer into the sink's per-channel slices.
func (d *Decoder) writeFrames(sink Sink, buf [][]float32, offset, length int) {
	dst := sink.GetWritable(length)
	n := length
	for _, ch := range dst {
		if len(ch) < n {
			n = len(ch)
		}
	}
	for ch := 0; ch < d.channels; ch++ {
		for i := 0; i < n; i++ {
			s := buf[ch][offset+i]
			if d.opts.clipSamples {
				clamped := clampSample(s)
				if clamped != s {
					d.hasClipped = true
				}
				s = clamped
			}
			dst[ch][i] = s
		}
	}
	sink.Advance(n)
}

// HasClipped reports whether any sample has been clamped to the output
// range since the decoder was constructed.
func (d *Decoder) HasClipped() bool { return d.hasClipped }

// SamplePosition returns the number of per-channel frames emitted so far.
func (d *Decoder) SamplePosition() int64 { return d.samplePosition }

// clampSample limits a decoded sample to libvorbis's output range (spec.md
// §4.10).
func clampSample(v float32) float32 {
	const limit = 0.99999994
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
