package vorbis

// Residue implements partitioned VQ residue decoding, types 0/1/2
// (spec.md §4.7, Vorbis I spec §8).
type Residue struct {
	Type          int
	Begin         int
	End           int
	PartitionSize int
	Classifications int
	ClassBook     int
	Cascade       []int // per classification, a stage bitmask
	Books         [][]int // [classification][stage] -> book index, -1 if stage not coded

	MaxStages int
}

// ReadResidue parses a residue header (Vorbis I spec §8.6.1).
func ReadResidue(r bitReader, resType int) (*Residue, error) {
	_, begin, err := r.Read(24)
	if err != nil {
		return nil, err
	}
	_, end, err := r.Read(24)
	if err != nil {
		return nil, err
	}
	_, partSizeRaw, err := r.Read(24)
	if err != nil {
		return nil, err
	}
	_, classRaw, err := r.Read(6)
	if err != nil {
		return nil, err
	}
	_, classBookRaw, err := r.Read(8)
	if err != nil {
		return nil, err
	}

	classifications := int(classRaw) + 1
	res := &Residue{
		Type:            resType,
		Begin:           int(begin),
		End:             int(end),
		PartitionSize:   int(partSizeRaw) + 1,
		Classifications: classifications,
		ClassBook:       int(classBookRaw),
	}

	cascade := make([]int, classifications)
	for i := range cascade {
		_, lowBits, err := r.Read(3)
		if err != nil {
			return nil, err
		}
		bits := int(lowBits)
		hasMore, err := r.ReadBit()
		if err != nil {
			return nil, err
		}
		if hasMore {
			_, highBits, err := r.Read(5)
			if err != nil {
				return nil, err
			}
			bits |= int(highBits) << 3
		}
		cascade[i] = bits
	}
	res.Cascade = cascade

	maxStages := 0
	books := make([][]int, classifications)
	for i, bits := range cascade {
		stageBooks := make([]int, 8)
		for s := 0; s < 8; s++ {
			stageBooks[s] = -1
			if bits&(1<<uint(s)) != 0 {
				_, b, err := r.Read(8)
				if err != nil {
					return nil, err
				}
				stageBooks[s] = int(b)
				if s+1 > maxStages {
					maxStages = s + 1
				}
			}
		}
		books[i] = stageBooks
	}
	res.Books = books
	res.MaxStages = maxStages

	return res, nil
}

// Decode runs the partitioned VQ residue decode for the given channels into
// residue[ch][Begin:End) (or, for type 2, the single interleaved virtual
// channel), following spec.md §4.7.
func (r *Residue) Decode(br bitReader, codebooks []*Codebook, residue [][]float32, doNotDecode []bool) {
	if r.Type == 2 {
		r.decodeType2(br, codebooks, residue, doNotDecode)
		return
	}

	channels := len(residue)
	actualSize := r.End
	if actualSize <= r.Begin {
		return
	}

	classBook := codebooks[r.ClassBook]
	classDim := classBook.Dimensions

	n := actualSize - r.Begin
	partitionsTotal := n / r.PartitionSize

	classifications := make([][]int, channels)
	for ch := range classifications {
		if doNotDecode[ch] {
			continue
		}
		classifications[ch] = make([]int, partitionsTotal+classDim)
	}

	for pass := 0; pass < r.MaxStages; pass++ {
		partition := 0
		for partition < partitionsTotal {
			if pass == 0 {
				for ch := 0; ch < channels; ch++ {
					if doNotDecode[ch] {
						continue
					}
					if partition%classDim == 0 {
						entry := classBook.DecodeScalar(br)
						if entry < 0 {
							return
						}
						temp := int(entry)
						for i := classDim - 1; i >= 0; i-- {
							classifications[ch][partition+i] = temp % classDim
							temp /= classDim
						}
					}
				}
			}

			for ch := 0; ch < channels; ch++ {
				if doNotDecode[ch] {
					continue
				}
				cls := classifications[ch][partition]
				if cls >= len(r.Cascade) {
					return
				}
				if r.Cascade[cls]&(1<<uint(pass)) == 0 {
					continue
				}
				bookIdx := r.Books[cls][pass]
				if bookIdx < 0 {
					continue
				}
				book := codebooks[bookIdx]
				offset := r.Begin + partition*r.PartitionSize
				ok := r.writeVectors(book, br, residue[ch], offset, r.PartitionSize)
				if !ok {
					return
				}
			}
			partition++
		}
	}
}

// writeVectors implements the type-0/type-1 differences in how a decoded
// codebook entry's vector is scattered into the residue buffer.
func (r *Residue) writeVectors(book *Codebook, br bitReader, out []float32, offset, size int) bool {
	dim := book.Dimensions
	steps := size / dim
	if r.Type == 0 {
		for s := 0; s < steps; s++ {
			entry := book.DecodeScalar(br)
			if entry < 0 {
				return false
			}
			vec := book.Vector(entry)
			for d := 0; d < dim; d++ {
				out[offset+d*steps+s] += vec[d]
			}
		}
		return true
	}

	// Type 1: contiguous.
	pos := offset
	for s := 0; s < steps; s++ {
		entry := book.DecodeScalar(br)
		if entry < 0 {
			return false
		}
		vec := book.Vector(entry)
		for d := 0; d < dim; d++ {
			out[pos] += vec[d]
			pos++
		}
	}
	return true
}

// decodeType2 interleaves all channels into one virtual channel of size
// channels*blockSize, then de-interleaves on write (spec.md §4.7).
func (r *Residue) decodeType2(br bitReader, codebooks []*Codebook, residue [][]float32, doNotDecode []bool) {
	channels := len(residue)
	anyActive := false
	for _, skip := range doNotDecode {
		if !skip {
			anyActive = true
		}
	}
	if !anyActive || channels == 0 {
		return
	}

	blockSize := len(residue[0])
	virtual := make([]float32, channels*blockSize)

	actualSize := r.End
	if actualSize <= r.Begin {
		return
	}
	n := actualSize - r.Begin
	partitionsTotal := n / r.PartitionSize

	classBook := codebooks[r.ClassBook]
	classDim := classBook.Dimensions
	classifications := make([]int, partitionsTotal+classDim)

	for pass := 0; pass < r.MaxStages; pass++ {
		partition := 0
		for partition < partitionsTotal {
			if pass == 0 {
				if partition%classDim == 0 {
					entry := classBook.DecodeScalar(br)
					if entry < 0 {
						goto done
					}
					temp := int(entry)
					for i := classDim - 1; i >= 0; i-- {
						classifications[partition+i] = temp % classDim
						temp /= classDim
					}
				}
			}

			cls := classifications[partition]
			if cls < len(r.Cascade) && r.Cascade[cls]&(1<<uint(pass)) != 0 {
				bookIdx := r.Books[cls][pass]
				if bookIdx >= 0 {
					book := codebooks[bookIdx]
					offset := r.Begin*channels + partition*r.PartitionSize
					ok := r.writeVectorsFlat(book, br, virtual, offset, r.PartitionSize)
					if !ok {
						goto done
					}
				}
			}
			partition++
		}
	}
done:
	for ch := 0; ch < channels; ch++ {
		if doNotDecode[ch] {
			continue
		}
		for i := 0; i < blockSize; i++ {
			residue[ch][i] += virtual[i*channels+ch]
		}
	}
}

func (r *Residue) writeVectorsFlat(book *Codebook, br bitReader, out []float32, offset, size int) bool {
	dim := book.Dimensions
	steps := size / dim
	pos := offset
	for s := 0; s < steps; s++ {
		entry := book.DecodeScalar(br)
		if entry < 0 {
			return false
		}
		vec := book.Vector(entry)
		for d := 0; d < dim; d++ {
			out[pos] += vec[d]
			pos++
		}
	}
	return true
}
