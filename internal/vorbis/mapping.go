package vorbis

// Coupling is one magnitude/angle channel pair (spec.md §4.8).
type Coupling struct {
	Magnitude int
	Angle     int
}

// Mapping links channels to floors/residues and expresses channel coupling
// (spec.md §4.8, Vorbis I spec §8.7).
type Mapping struct {
	Couplings     []Coupling
	SubmapFloor   []int
	SubmapResidue []int
	ChannelSubmap []int
}

// ReadMapping parses a mapping header (Vorbis I spec §8.7.1). Only mapping
// type 0 exists in Vorbis I.
func ReadMapping(r bitReader, channels int) (*Mapping, error) {
	_, mapType, err := r.Read(16)
	if err != nil {
		return nil, err
	}
	if mapType != 0 {
		return nil, &Error{Kind: KindUnsupported, Msg: "mapping: unsupported mapping type"}
	}

	hasSubmaps, err := r.ReadBit()
	if err != nil {
		return nil, err
	}
	submaps := 1
	if hasSubmaps {
		_, n, err := r.Read(4)
		if err != nil {
			return nil, err
		}
		submaps = int(n) + 1
	}

	m := &Mapping{
		SubmapFloor:   make([]int, submaps),
		SubmapResidue: make([]int, submaps),
		ChannelSubmap: make([]int, channels),
	}

	hasCoupling, err := r.ReadBit()
	if err != nil {
		return nil, err
	}
	if hasCoupling {
		_, stepsRaw, err := r.Read(8)
		if err != nil {
			return nil, err
		}
		steps := int(stepsRaw) + 1
		bits := ilog(uint32(channels - 1))
		m.Couplings = make([]Coupling, steps)
		for i := range m.Couplings {
			_, mag, err := r.Read(bits)
			if err != nil {
				return nil, err
			}
			_, ang, err := r.Read(bits)
			if err != nil {
				return nil, err
			}
			if int(mag) == int(ang) || int(mag) >= channels || int(ang) >= channels {
				return nil, &Error{Kind: KindInvalidData, Msg: "mapping: invalid coupling channels"}
			}
			m.Couplings[i] = Coupling{Magnitude: int(mag), Angle: int(ang)}
		}
	}

	_, reserved, err := r.Read(2)
	if err != nil {
		return nil, err
	}
	if reserved != 0 {
		return nil, &Error{Kind: KindInvalidData, Msg: "mapping: reserved bits nonzero"}
	}

	if submaps > 1 {
		for ch := 0; ch < channels; ch++ {
			_, s, err := r.Read(4)
			if err != nil {
				return nil, err
			}
			m.ChannelSubmap[ch] = int(s)
		}
	}

	for i := 0; i < submaps; i++ {
		_, _, err := r.Read(8) // reserved per-submap field, unused
		if err != nil {
			return nil, err
		}
		_, floorIdx, err := r.Read(8)
		if err != nil {
			return nil, err
		}
		_, resIdx, err := r.Read(8)
		if err != nil {
			return nil, err
		}
		m.SubmapFloor[i] = int(floorIdx)
		m.SubmapResidue[i] = int(resIdx)
	}

	return m, nil
}

// FloorKind tags which floor variant a channel uses (spec.md §9 Polymorphic
// floors design note).
type FloorKind int

const (
	FloorKind0 FloorKind = iota
	FloorKind1
)

// FloorEntry is one arena-indexed floor, tagged by kind.
type FloorEntry struct {
	Kind FloorKind
	F0   *Floor0
	F1   *Floor1
}

func (f FloorEntry) unpack(r bitReader, codebooks []*Codebook) (interface{}, error) {
	switch f.Kind {
	case FloorKind0:
		return f.F0.Unpack(r, codebooks)
	default:
		return f.F1.Unpack(r, codebooks)
	}
}

func (f FloorEntry) hasEnergy(data interface{}) bool {
	switch f.Kind {
	case FloorKind0:
		return !data.(*floor0Data).silent
	default:
		return data.(*floor1Data).active
	}
}

func (f FloorEntry) apply(data interface{}, n int, residue []float32) {
	switch f.Kind {
	case FloorKind0:
		f.F0.Apply(data.(*floor0Data), n, residue)
	default:
		f.F1.Apply(data.(*floor1Data), n, residue)
	}
}

// DecodePacket runs the full per-channel floor unpack, coupling, residue
// decode, inverse coupling and IMDCT pipeline for one audio packet
// (spec.md §4.8).
func (m *Mapping) DecodePacket(
	r bitReader,
	codebooks []*Codebook,
	floors []FloorEntry,
	residues []*Residue,
	channels int,
	n int, // full block size
	out [][]float32, // channels x n, pre-zeroed residue/output buffer
	mdct *IMDCTEngine,
) error {
	half := n / 2

	floorData := make([]interface{}, channels)
	hasEnergy := make([]bool, channels)

	for ch := 0; ch < channels; ch++ {
		sub := m.ChannelSubmap[ch]
		fe := floors[m.SubmapFloor[sub]]
		data, err := fe.unpack(r, codebooks)
		if err != nil {
			return err
		}
		floorData[ch] = data
		hasEnergy[ch] = fe.hasEnergy(data)
	}

	for _, c := range m.Couplings {
		if hasEnergy[c.Magnitude] || hasEnergy[c.Angle] {
			hasEnergy[c.Magnitude] = true
			hasEnergy[c.Angle] = true
		}
	}

	residueBuf := make([][]float32, channels)
	for ch := range residueBuf {
		residueBuf[ch] = out[ch][:half]
		for i := range residueBuf[ch] {
			residueBuf[ch][i] = 0
		}
	}

	for sub := 0; sub < len(m.SubmapResidue); sub++ {
		doNotDecode := make([]bool, channels)
		any := false
		for ch := 0; ch < channels; ch++ {
			if m.ChannelSubmap[ch] != sub || !hasEnergy[ch] {
				doNotDecode[ch] = true
			} else {
				any = true
			}
		}
		if !any {
			continue
		}
		res := residues[m.SubmapResidue[sub]]
		res.Decode(r, codebooks, residueBuf, doNotDecode)
	}

	for i := len(m.Couplings) - 1; i >= 0; i-- {
		c := m.Couplings[i]
		magRow := residueBuf[c.Magnitude]
		angRow := residueBuf[c.Angle]
		for s := range magRow {
			mVal, aVal := magRow[s], angRow[s]
			var newM, newA float32
			switch {
			case mVal > 0 && aVal > 0:
				newM, newA = mVal, mVal-aVal
			case mVal > 0 && aVal <= 0:
				newM, newA = mVal+aVal, mVal
			case mVal <= 0 && aVal > 0:
				newM, newA = mVal, mVal+aVal
			default:
				newM, newA = mVal-aVal, mVal
			}
			magRow[s] = newM
			angRow[s] = newA
		}
	}

	for ch := 0; ch < channels; ch++ {
		if !hasEnergy[ch] {
			for i := half; i < n; i++ {
				out[ch][i] = 0
			}
			continue
		}
		sub := m.ChannelSubmap[ch]
		fe := floors[m.SubmapFloor[sub]]
		fe.apply(floorData[ch], half, out[ch][:half])
		mdct.Inverse(out[ch][:n])
	}

	return nil
}
