package ogg

// Packet is one reassembled codec packet's bytes.
type Packet = []byte

// Framer reassembles codec packets spanning one or more pages of a single
// logical bitstream (spec.md §4.3). Grounded directly on
// ogg_opus_packet_reader.go's carry/queue loop, generalized from
// Opus-specific header discarding to plain packet emission.
type Framer struct {
	buf []byte
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer { return &Framer{} }

// SubmitPage feeds one page's lacing-delimited segments through the
// framer, returning every packet completed by this page, in order. At
// most one packet is left in progress afterwards.
func (f *Framer) SubmitPage(p Page) []Packet {
	if len(p.PacketLengths) == 0 {
		if !p.Flags.ContinuesPacket() {
			f.buf = nil
		}
		return nil
	}

	var out []Packet
	offset := 0
	last := len(p.PacketLengths) - 1

	for i, length := range p.PacketLengths {
		if i == 0 && !p.Flags.ContinuesPacket() {
			f.buf = nil
		}

		end := offset + int(length)
		f.buf = append(f.buf, p.Payload[offset:end]...)
		offset = end

		if i != last {
			out = append(out, f.buf)
			f.buf = nil
			continue
		}
		if p.FinalPacketIsComplete {
			out = append(out, f.buf)
			f.buf = nil
		}
	}

	return out
}

// Reset discards any in-progress packet, releasing its bytes.
func (f *Framer) Reset() { f.buf = nil }
