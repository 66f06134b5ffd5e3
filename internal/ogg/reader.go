// Package ogg implements Ogg page resynchronization, parsing and
// cross-page packet reassembly (spec.md §4.2, §4.3).
package ogg

import (
	"bufio"
	"encoding/binary"
	"io"
)

// ByteSource is the minimum contract this package needs from a byte
// source (spec.md §6). It is satisfied structurally — no import of the
// root package is required.
type ByteSource interface {
	Read(p []byte) (n int, err error)
	CanSeek() bool
	Seek(offset int64, whence int) (int64, error)
	Position() int64
}

// BufferPool rents page payload buffers. A nil pool falls back to plain
// make([]byte, n) allocation, matching the teacher's
// ogg_opus_packet_reader.go habit of growing its own buffer when nothing
// else is supplied.
type BufferPool interface {
	Rent(minBytes int) []byte
}

// Reader resynchronizes on the Ogg capture pattern, validates page CRCs,
// and maintains an append-only page table for seeking.
type Reader struct {
	src  ByteSource
	br   *bufio.Reader
	pool BufferPool

	pageTable []Page
	pos       int64 // logical byte offset consumed from src so far

	nonContig   Page
	hasNonContig bool
}

// NewReader constructs a Reader over src. pool may be nil.
func NewReader(src ByteSource, pool BufferPool) *Reader {
	return &Reader{
		src: src,
		br:  bufio.NewReaderSize(src, 64*1024),
		pool: pool,
		pos: src.Position(),
	}
}

// PageTable returns the pages read so far, indexed by PageIndex.
func (r *Reader) PageTable() []Page { return r.pageTable }

// LastNonContiguity reports the most recent non-contiguity signal (a page
// resync that had to skip bytes before finding "OggS"), cleared by the
// next ReadNextPage/SeekAndReadPage call. See spec.md §9.
func (r *Reader) LastNonContiguity() (Page, bool) {
	return r.nonContig, r.hasNonContig
}

func (r *Reader) readByte() (byte, error) {
	b, err := r.br.ReadByte()
	if err == nil {
		r.pos++
	}
	return b, err
}

func (r *Reader) readFull(buf []byte) error {
	n, err := io.ReadFull(r.br, buf)
	r.pos += int64(n)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return ErrUnexpectedEOF
	}
	return err
}

// syncToCapture consumes bytes until the 4-byte pattern "OggS" has just
// been read, returning the number of bytes discarded before it.
func (r *Reader) syncToCapture() (skipped int64, err error) {
	var win [4]byte
	filled := 0
	for {
		b, e := r.readByte()
		if e != nil {
			if e == io.EOF {
				return skipped, io.EOF
			}
			return skipped, ErrUnexpectedEOF
		}
		if filled < 4 {
			win[filled] = b
			filled++
			if filled == 4 && win == capturePattern {
				return skipped, nil
			}
			continue
		}
		win[0], win[1], win[2] = win[1], win[2], win[3]
		win[3] = b
		skipped++
		if win == capturePattern {
			return skipped, nil
		}
	}
}

// readRawPage resyncs, parses, and CRC-validates exactly one page,
// without touching the page table.
func (r *Reader) readRawPage() (Page, error) {
	r.hasNonContig = false
	offsetBefore := r.pos
	skipped, err := r.syncToCapture()
	if err != nil {
		return Page{}, err
	}
	pageStart := offsetBefore + skipped

	var rest [PageHeaderSize - 4]byte
	if err := r.readFull(rest[:]); err != nil {
		return Page{}, err
	}

	header := make([]byte, PageHeaderSize)
	copy(header[0:4], capturePattern[:])
	copy(header[4:], rest[:])

	flags := header[5]
	granule := binary.LittleEndian.Uint64(header[6:14])
	serial := binary.LittleEndian.Uint32(header[14:18])
	seq := binary.LittleEndian.Uint32(header[18:22])
	crcField := binary.LittleEndian.Uint32(header[22:26])
	numSegs := int(header[26])

	segTable := make([]byte, numSegs)
	if numSegs > 0 {
		if err := r.readFull(segTable); err != nil {
			return Page{}, err
		}
	}

	total := 0
	for _, s := range segTable {
		total += int(s)
	}

	var payload []byte
	if r.pool != nil {
		payload = r.pool.Rent(total)[:total]
	} else {
		payload = make([]byte, total)
	}
	if total > 0 {
		if err := r.readFull(payload); err != nil {
			return Page{}, err
		}
	}

	headerForCRC := make([]byte, PageHeaderSize)
	copy(headerForCRC, header)
	headerForCRC[22], headerForCRC[23], headerForCRC[24], headerForCRC[25] = 0, 0, 0, 0
	crc := Checksum(headerForCRC, segTable, payload)
	if crc != crcField {
		return Page{}, &CorruptPageError{Offset: pageStart, Want: crcField, Got: crc}
	}

	lengths, finalComplete := lengthsFromLacing(segTable)

	if skipped > 0 {
		r.nonContig = Page{SeekOffset: pageStart}
		r.hasNonContig = true
	} else {
		r.hasNonContig = false
	}

	return Page{
		GranulePosition:       granule,
		BitstreamSerial:       serial,
		PageSequence:          seq,
		CRC32:                 crcField,
		SeekOffset:            pageStart,
		Flags:                 Flags(flags),
		PacketLengths:         lengths,
		FinalPacketIsComplete: finalComplete,
		Payload:               payload,
	}, nil
}

// ReadNextPage reads, validates and appends the next page to the page
// table, resynchronizing on the capture pattern if necessary.
func (r *Reader) ReadNextPage() (Page, error) {
	p, err := r.readRawPage()
	if err != nil {
		return Page{}, err
	}
	p.PageIndex = int32(len(r.pageTable))
	r.pageTable = append(r.pageTable, p)
	return p, nil
}

// SeekAndReadPage returns the page at index, either by re-seeking to its
// known offset (re-validating the CRC) or, if it has not been read yet,
// by reading forward from the last known page and discarding the pages in
// between.
func (r *Reader) SeekAndReadPage(index int) (Page, error) {
	if index < len(r.pageTable) {
		known := r.pageTable[index]
		if !r.src.CanSeek() {
			return Page{}, ErrUnsupportedSeek
		}
		if _, err := r.src.Seek(known.SeekOffset, io.SeekStart); err != nil {
			return Page{}, err
		}
		r.br.Reset(r.src)
		r.pos = known.SeekOffset
		p, err := r.readRawPage()
		if err != nil {
			return Page{}, err
		}
		p.PageIndex = int32(index)
		return p, nil
	}

	if len(r.pageTable) > 0 && r.src.CanSeek() {
		last := r.pageTable[len(r.pageTable)-1]
		resumeAt := last.SeekOffset + int64(last.wireLength())
		if _, err := r.src.Seek(resumeAt, io.SeekStart); err != nil {
			return Page{}, err
		}
		r.br.Reset(r.src)
		r.pos = resumeAt
	}

	for len(r.pageTable) <= index {
		if _, err := r.ReadNextPage(); err != nil {
			return Page{}, err
		}
	}
	return r.pageTable[index], nil
}

// wireLength is the total on-wire size of the page (header + lacing table
// + payload), reconstructed from the decoded packet lengths since the raw
// lacing bytes are not retained.
func (p Page) wireLength() int {
	lacing := lacingFromLengths(p.PacketLengths, p.FinalPacketIsComplete)
	total := 0
	for _, l := range p.PacketLengths {
		total += int(l)
	}
	return PageHeaderSize + len(lacing) + total
}
