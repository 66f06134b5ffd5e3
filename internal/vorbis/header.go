package vorbis

import "fmt"

const vorbisSignature = 0x736962726F76 // "vorbis" as a 48-bit little-endian integer

// PacketType identifies which of the three header packets (or an audio
// packet) a packet is (spec.md §4.10).
type PacketType int

const (
	PacketAudio PacketType = iota
	PacketIdentification
	PacketComment
	PacketSetup
)

// ReadPacketType reads the packet-type dispatch byte (spec.md §4.10: bit 0
// == 0 means audio; otherwise 7 more bits give type = 2N+1).
func ReadPacketType(r bitReader) (PacketType, error) {
	audioBit, err := r.ReadBit()
	if err != nil {
		return 0, err
	}
	if !audioBit {
		return PacketAudio, nil
	}
	_, rest, err := r.Read(7)
	if err != nil {
		return 0, err
	}
	n := 2*int(rest) + 1
	switch n {
	case 1:
		return PacketIdentification, nil
	case 3:
		return PacketComment, nil
	case 5:
		return PacketSetup, nil
	default:
		return 0, &Error{Kind: KindInvalidData, Msg: fmt.Sprintf("header: unknown packet type %d", n)}
	}
}

func expectSignature(r bitReader) error {
	_, sig, err := r.Read(48)
	if err != nil {
		return err
	}
	if sig != vorbisSignature {
		return &Error{Kind: KindInvalidData, Msg: "header: missing 'vorbis' signature"}
	}
	return nil
}

// Identification is the parsed identification header (Vorbis I spec §4.2.2).
type Identification struct {
	Version      uint32
	Channels     int
	SampleRate   uint32
	BitrateMax   int32
	BitrateNom   int32
	BitrateMin   int32
	BlockSize0   int
	BlockSize1   int
}

// ReadIdentification parses the identification header packet (spec.md §4.10).
func ReadIdentification(r bitReader) (*Identification, error) {
	if err := expectSignature(r); err != nil {
		return nil, err
	}

	_, version, err := r.Read(32)
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, &Error{Kind: KindUnsupported, Msg: "identification: unsupported vorbis_version"}
	}

	_, channels, err := r.Read(8)
	if err != nil {
		return nil, err
	}
	if channels == 0 {
		return nil, &Error{Kind: KindInvalidData, Msg: "identification: zero channels"}
	}

	_, sampleRate, err := r.Read(32)
	if err != nil {
		return nil, err
	}
	if sampleRate == 0 {
		return nil, &Error{Kind: KindInvalidData, Msg: "identification: zero sample_rate"}
	}

	_, bitrateMax, err := r.Read(32)
	if err != nil {
		return nil, err
	}
	_, bitrateNom, err := r.Read(32)
	if err != nil {
		return nil, err
	}
	_, bitrateMin, err := r.Read(32)
	if err != nil {
		return nil, err
	}

	_, bs0, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	_, bs1, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	blockSize0 := 1 << uint(bs0)
	blockSize1 := 1 << uint(bs1)
	if blockSize0 > blockSize1 {
		return nil, &Error{Kind: KindInvalidData, Msg: "identification: block_size_0 > block_size_1"}
	}
	if blockSize0 < 64 || blockSize1 > 8192 {
		return nil, &Error{Kind: KindInvalidData, Msg: "identification: block size out of range"}
	}

	framingBit, err := r.ReadBit()
	if err != nil {
		return nil, err
	}
	if !framingBit {
		return nil, &Error{Kind: KindInvalidData, Msg: "identification: framing bit unset"}
	}

	return &Identification{
		Version:    uint32(version),
		Channels:   int(channels),
		SampleRate: uint32(sampleRate),
		BitrateMax: int32(bitrateMax),
		BitrateNom: int32(bitrateNom),
		BitrateMin: int32(bitrateMin),
		BlockSize0: blockSize0,
		BlockSize1: blockSize1,
	}, nil
}

// CommentField is one raw (key, value) pair before case folding, in
// declaration order.
type CommentField struct {
	Key   string
	Value string
}

// CommentHeader is the parsed comment header (Vorbis I spec §4.2.3).
type CommentHeader struct {
	Vendor string
	Fields []CommentField
}

// ReadComment parses the comment header packet (spec.md §4.10).
func ReadComment(r bitReader) (*CommentHeader, error) {
	if err := expectSignature(r); err != nil {
		return nil, err
	}

	vendor, err := readLengthPrefixedUTF8(r)
	if err != nil {
		return nil, err
	}

	_, countRaw, err := r.Read(32)
	if err != nil {
		return nil, err
	}
	count := int(countRaw)

	fields := make([]CommentField, 0, count)
	for i := 0; i < count; i++ {
		raw, err := readLengthPrefixedUTF8(r)
		if err != nil {
			return nil, err
		}
		key, value := splitComment(raw)
		fields = append(fields, CommentField{Key: key, Value: value})
	}

	framingBit, err := r.ReadBit()
	if err != nil {
		return nil, err
	}
	if !framingBit {
		return nil, &Error{Kind: KindInvalidData, Msg: "comment: framing bit unset"}
	}

	return &CommentHeader{Vendor: vendor, Fields: fields}, nil
}

func readLengthPrefixedUTF8(r bitReader) (string, error) {
	_, lenRaw, err := r.Read(32)
	if err != nil {
		return "", err
	}
	n := int(lenRaw)
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		_, b, err := r.Read(8)
		if err != nil {
			return "", err
		}
		buf[i] = byte(b)
	}
	return string(buf), nil
}

func splitComment(raw string) (key, value string) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '=' {
			return raw[:i], raw[i+1:]
		}
	}
	return raw, ""
}

// Setup is the fully parsed setup header: every arena-indexed table needed
// to decode audio packets (spec.md §4.10, §9 arena storage design note).
type Setup struct {
	Codebooks []*Codebook
	Floors    []FloorEntry
	Residues  []*Residue
	Mappings  []*Mapping
	Modes     []*Mode
	ModeBits  int
}

// ReadSetup parses the setup header packet (spec.md §4.10).
func ReadSetup(r bitReader, channels int) (*Setup, error) {
	if err := expectSignature(r); err != nil {
		return nil, err
	}

	_, cbCountRaw, err := r.Read(8)
	if err != nil {
		return nil, err
	}
	codebooks := make([]*Codebook, int(cbCountRaw)+1)
	for i := range codebooks {
		cb, err := ReadCodebook(r)
		if err != nil {
			return nil, fmt.Errorf("setup: codebook %d: %w", i, err)
		}
		codebooks[i] = cb
	}

	_, timeCountRaw, err := r.Read(6)
	if err != nil {
		return nil, err
	}
	for i := 0; i <= int(timeCountRaw); i++ {
		_, placeholder, err := r.Read(16)
		if err != nil {
			return nil, err
		}
		if placeholder != 0 {
			return nil, &Error{Kind: KindInvalidData, Msg: "setup: nonzero time placeholder"}
		}
	}

	_, floorCountRaw, err := r.Read(6)
	if err != nil {
		return nil, err
	}
	floors := make([]FloorEntry, int(floorCountRaw)+1)
	for i := range floors {
		_, floorType, err := r.Read(16)
		if err != nil {
			return nil, err
		}
		switch floorType {
		case 0:
			f0, err := ReadFloor0(r)
			if err != nil {
				return nil, fmt.Errorf("setup: floor %d: %w", i, err)
			}
			floors[i] = FloorEntry{Kind: FloorKind0, F0: f0}
		case 1:
			f1, err := ReadFloor1(r)
			if err != nil {
				return nil, fmt.Errorf("setup: floor %d: %w", i, err)
			}
			floors[i] = FloorEntry{Kind: FloorKind1, F1: f1}
		default:
			return nil, &Error{Kind: KindUnsupported, Msg: fmt.Sprintf("setup: unsupported floor type %d", floorType)}
		}
	}

	_, resCountRaw, err := r.Read(6)
	if err != nil {
		return nil, err
	}
	residues := make([]*Residue, int(resCountRaw)+1)
	for i := range residues {
		_, resType, err := r.Read(16)
		if err != nil {
			return nil, err
		}
		if resType > 2 {
			return nil, &Error{Kind: KindUnsupported, Msg: fmt.Sprintf("setup: unsupported residue type %d", resType)}
		}
		res, err := ReadResidue(r, int(resType))
		if err != nil {
			return nil, fmt.Errorf("setup: residue %d: %w", i, err)
		}
		residues[i] = res
	}

	_, mapCountRaw, err := r.Read(6)
	if err != nil {
		return nil, err
	}
	mappings := make([]*Mapping, int(mapCountRaw)+1)
	for i := range mappings {
		m, err := ReadMapping(r, channels)
		if err != nil {
			return nil, fmt.Errorf("setup: mapping %d: %w", i, err)
		}
		mappings[i] = m
	}

	_, modeCountRaw, err := r.Read(6)
	if err != nil {
		return nil, err
	}
	modes := make([]*Mode, int(modeCountRaw)+1)
	for i := range modes {
		m, err := ReadMode(r)
		if err != nil {
			return nil, fmt.Errorf("setup: mode %d: %w", i, err)
		}
		modes[i] = m
	}

	framingBit, err := r.ReadBit()
	if err != nil {
		return nil, err
	}
	if !framingBit {
		return nil, &Error{Kind: KindInvalidData, Msg: "setup: framing bit unset"}
	}

	return &Setup{
		Codebooks: codebooks,
		Floors:    floors,
		Residues:  residues,
		Mappings:  mappings,
		Modes:     modes,
		ModeBits:  ilog(uint32(len(modes) - 1)),
	}, nil
}
