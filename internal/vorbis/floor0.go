package vorbis

import "math"

// Floor0 implements the LSP-based spectral envelope (spec.md §4.5, Vorbis I
// spec §7.2). Floor0 is rare in the wild (used mainly for experimental
// low-bitrate speech configurations) but remains part of the format.
type Floor0 struct {
	Order    int
	Rate     int
	BarkMapSize int
	AmpBits  int
	AmpOfs   int
	AmpDiv   int
	Books    []int

	barkMapCache map[int][]int32
	wDelCache    map[int][]float32
}

// ReadFloor0 parses a floor 0 header (Vorbis I spec §7.2.1).
func ReadFloor0(r bitReader) (*Floor0, error) {
	_, order, err := r.Read(8)
	if err != nil {
		return nil, err
	}
	_, rate, err := r.Read(16)
	if err != nil {
		return nil, err
	}
	_, barkMapSize, err := r.Read(16)
	if err != nil {
		return nil, err
	}
	_, ampBits, err := r.Read(6)
	if err != nil {
		return nil, err
	}
	_, ampOfs, err := r.Read(8)
	if err != nil {
		return nil, err
	}
	_, numBooks, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	books := make([]int, numBooks+1)
	for i := range books {
		_, b, err := r.Read(8)
		if err != nil {
			return nil, err
		}
		books[i] = int(b)
	}
	return &Floor0{
		Order:       int(order),
		Rate:        int(rate),
		BarkMapSize: int(barkMapSize),
		AmpBits:     int(ampBits),
		AmpOfs:      int(ampOfs),
		Books:       books,
	}, nil
}

// floor0Data is the unpacked per-channel floor0 state for one audio packet.
type floor0Data struct {
	silent bool
	amp    float32
	coeff  []float32 // LSP coefficients, length Order
}

// Unpack decodes one channel's floor0 data from the packet bitstream using
// the setup's codebooks.
func (f *Floor0) Unpack(r bitReader, codebooks []*Codebook) (*floor0Data, error) {
	_, ampRaw, err := r.Read(f.AmpBits)
	if err != nil {
		return nil, err
	}
	if ampRaw == 0 {
		return &floor0Data{silent: true}, nil
	}

	maxAmp := float32((uint64(1) << uint(f.AmpBits)) - 1)
	amp := float32(ampRaw) / maxAmp * float32(f.AmpOfs)

	_, bookIdxRaw, err := r.Read(ilog(uint32(len(f.Books))))
	if err != nil {
		return nil, err
	}
	bookIdx := int(bookIdxRaw)
	if bookIdx >= len(f.Books) {
		return nil, &Error{Kind: KindInvalidData, Msg: "floor0: book index out of range"}
	}
	book := codebooks[f.Books[bookIdx]]

	coeff := make([]float32, 0, f.Order)
	for len(coeff) < f.Order {
		entry := book.DecodeScalar(r)
		if entry < 0 {
			return nil, &Error{Kind: KindInvalidData, Msg: "floor0: codebook underflow"}
		}
		coeff = append(coeff, book.Vector(entry)...)
	}
	coeff = coeff[:f.Order]

	return &floor0Data{amp: amp, coeff: coeff}, nil
}

// barkMap returns (building once, then caching) the per-frequency-bin Bark
// scale map for the given half-block size n.
func (f *Floor0) barkMap(n int) []int32 {
	if f.barkMapCache == nil {
		f.barkMapCache = make(map[int][]int32)
	}
	if m, ok := f.barkMapCache[n]; ok {
		return m
	}
	m := make([]int32, n+1)
	barkTotal := toBark(float64(f.Rate) / 2)
	for i := 0; i < n; i++ {
		freq := float64(i) * float64(f.Rate) / 2 / float64(n)
		v := toBark(freq) * float64(f.BarkMapSize) / barkTotal
		iv := int32(v)
		if int(iv) >= f.BarkMapSize {
			iv = int32(f.BarkMapSize - 1)
		}
		m[i] = iv
	}
	m[n] = -1
	f.barkMapCache[n] = m
	return m
}

func toBark(hz float64) float64 {
	return 13.1*math.Atan(0.00074*hz) + 2.24*math.Atan(0.0000000185*hz*hz) + 0.0001*hz
}

// wDelMap returns (building once, then caching) the per-bin
// 2*cos(pi*k/bark_map_size) table for the given half-block size n.
func (f *Floor0) wDelMap(n int) []float32 {
	if f.wDelCache == nil {
		f.wDelCache = make(map[int][]float32)
	}
	if m, ok := f.wDelCache[n]; ok {
		return m
	}
	m := make([]float32, f.BarkMapSize)
	for k := range m {
		m[k] = float32(2 * math.Cos(math.Pi*float64(k)/float64(f.BarkMapSize)))
	}
	f.wDelCache[n] = m
	return m
}

// Apply evaluates the LSP filter response across the half-block and
// multiplies it into residue (spec.md §4.5).
func (f *Floor0) Apply(data *floor0Data, n int, residue []float32) {
	if data.silent {
		for i := 0; i < n; i++ {
			residue[i] = 0
		}
		return
	}

	barkMap := f.barkMap(n)
	cosTable := f.wDelMap(n)

	for i := 0; i < n; i++ {
		k := barkMap[i]
		if k < 0 {
			continue
		}
		w := float64(cosTable[k])

		p := 0.5
		q := 0.5
		halfOrder := f.Order / 2
		for j := 0; j < halfOrder; j++ {
			c0 := float64(data.coeff[2*j])
			c1 := float64(data.coeff[2*j+1])
			p *= w - math.Cos(c0)
			q *= w - math.Cos(c1)
		}
		if f.Order%2 == 1 {
			p *= w - math.Cos(float64(data.coeff[f.Order-1]))
		} else {
			p *= 1 - w*w
			q *= 1 - w*w
		}

		linear := math.Exp(float64(data.amp)*0.11512925464970228420089957273422 - 0.5*math.Log(p*p+q*q))
		residue[i] *= float32(linear)
	}
}
