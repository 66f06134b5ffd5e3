package vorbis

import (
	"fmt"
)

const codebookSignature = 0x564342 // "BCV" reversed, 24-bit magic per spec.md §4.4

// Codebook is a Huffman-coded VQ table: bit sequences decode to scalar
// indices, and indices optionally expand into vectors of floats via the
// lookup matrix (spec.md §3 Codebook).
type Codebook struct {
	Dimensions int
	Entries    int
	MapType    int

	huffman *huffmanTable

	// Lookup is the dense entries x Dimensions row-major VQ matrix. Empty
	// when MapType == 0.
	Lookup []float32
}

// DecodeScalar performs one Huffman scalar decode, returning -1 on
// underflow or no match.
func (c *Codebook) DecodeScalar(r peeker) int32 {
	return c.huffman.decode(r)
}

// Vector returns the dimensions-length VQ row for the given scalar entry.
func (c *Codebook) Vector(entry int32) []float32 {
	if entry < 0 || c.MapType == 0 {
		return nil
	}
	off := int(entry) * c.Dimensions
	return c.Lookup[off : off+c.Dimensions]
}

// ReadCodebook parses one codebook header packet segment (Vorbis I spec
// §9.2.1, spec.md §4.4).
func ReadCodebook(r bitReader) (*Codebook, error) {
	_, sig, err := r.Read(24)
	if err != nil {
		return nil, fmt.Errorf("vorbis: codebook signature: %w", err)
	}
	if uint32(sig) != codebookSignature {
		return nil, &Error{Kind: KindInvalidData, Msg: "codebook: bad signature"}
	}

	_, dimBits, err := r.Read(16)
	if err != nil {
		return nil, err
	}
	dimensions := int(dimBits)

	_, entBits, err := r.Read(24)
	if err != nil {
		return nil, err
	}
	entries := int(entBits)

	_, orderedBit, err := r.Read(1)
	if err != nil {
		return nil, err
	}

	lengths := make([]int, entries)
	if orderedBit != 0 {
		_, lenBits, err := r.Read(5)
		if err != nil {
			return nil, err
		}
		curLen := int(lenBits) + 1
		idx := 0
		for idx < entries {
			_, numBits, err := r.Read(ilog(uint32(entries - idx)))
			if err != nil {
				return nil, err
			}
			num := int(numBits)
			for i := 0; i < num; i++ {
				if idx >= entries {
					return nil, &Error{Kind: KindInvalidData, Msg: "codebook: ordered length overrun"}
				}
				lengths[idx] = curLen
				idx++
			}
			curLen++
		}
	} else {
		for i := 0; i < entries; i++ {
			_, flagBit, err := r.Read(1)
			if err != nil {
				return nil, err
			}
			if flagBit != 0 {
				_, lenBits, err := r.Read(5)
				if err != nil {
					return nil, err
				}
				lengths[i] = int(lenBits) + 1
			} else {
				lengths[i] = 0
			}
		}
	}

	table, err := buildHuffmanTable(lengths)
	if err != nil {
		return nil, err
	}

	_, mapBits, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	mapType := int(mapBits)
	if mapType > 2 {
		return nil, &Error{Kind: KindUnsupported, Msg: fmt.Sprintf("codebook: unsupported map_type %d", mapType)}
	}

	cb := &Codebook{
		Dimensions: dimensions,
		Entries:    entries,
		MapType:    mapType,
		huffman:    table,
	}

	if mapType == 0 {
		return cb, nil
	}

	_, minBits, err := r.Read(32)
	if err != nil {
		return nil, err
	}
	_, deltaBits, err := r.Read(32)
	if err != nil {
		return nil, err
	}
	minValue := float32Unpack(uint32(minBits))
	deltaValue := float32Unpack(uint32(deltaBits))

	_, valueBitsField, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	valueBits := int(valueBitsField) + 1

	_, seqBit, err := r.Read(1)
	if err != nil {
		return nil, err
	}
	sequenceP := seqBit != 0

	var quantVals int
	if mapType == 1 {
		quantVals = lookup1Values(entries, dimensions)
	} else {
		quantVals = entries * dimensions
	}

	multiplicands := make([]uint32, quantVals)
	for i := range multiplicands {
		_, v, err := r.Read(valueBits)
		if err != nil {
			return nil, err
		}
		multiplicands[i] = uint32(v)
	}

	cb.Lookup = make([]float32, entries*dimensions)
	for e := 0; e < entries; e++ {
		var last float32
		indexDiv := 1
		for d := 0; d < dimensions; d++ {
			var mOff int
			if mapType == 1 {
				mOff = (e / indexDiv) % quantVals
				indexDiv *= quantVals
			} else {
				mOff = e*dimensions + d
			}
			val := float32(multiplicands[mOff])*deltaValue + minValue + last
			if sequenceP {
				last = val
			}
			cb.Lookup[e*dimensions+d] = val
		}
	}

	return cb, nil
}

// bitReader is the subset of *bitio.Reader codebook/header parsing needs.
type bitReader interface {
	Peek(n int) (int, uint64, error)
	TryAdvance(n int) bool
	Read(n int) (int, uint64, error)
	ReadBit() (bool, error)
}
