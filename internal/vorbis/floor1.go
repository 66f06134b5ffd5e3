package vorbis

import (
	"math"
	"sort"
)

// Floor1 implements the line-based spectral envelope (spec.md §4.6, Vorbis
// I spec §7.3).
type Floor1 struct {
	PartitionClass   []int
	ClassDimensions  []int
	ClassSubclasses  []int
	ClassMasterbooks []int
	SubclassBooks    [][]int // [class][subclass] -> book index, -1 means none
	XList            []int
	Multiplier       int

	sortIdx    []int // XList indices sorted by X ascending, excluding the two fixed endpoints
	allSortIdx []int // all XList indices (including the two fixed endpoints) sorted by X ascending
	lowNeigh   []int
	highNeigh  []int
}

// ReadFloor1 parses a floor 1 header (Vorbis I spec §7.3.1).
func ReadFloor1(r bitReader) (*Floor1, error) {
	_, partitionsRaw, err := r.Read(5)
	if err != nil {
		return nil, err
	}
	partitions := int(partitionsRaw)

	f := &Floor1{PartitionClass: make([]int, partitions)}
	maxClass := -1
	for i := 0; i < partitions; i++ {
		_, c, err := r.Read(4)
		if err != nil {
			return nil, err
		}
		f.PartitionClass[i] = int(c)
		if int(c) > maxClass {
			maxClass = int(c)
		}
	}

	numClasses := maxClass + 1
	f.ClassDimensions = make([]int, numClasses)
	f.ClassSubclasses = make([]int, numClasses)
	f.ClassMasterbooks = make([]int, numClasses)
	f.SubclassBooks = make([][]int, numClasses)

	for c := 0; c < numClasses; c++ {
		_, dimRaw, err := r.Read(3)
		if err != nil {
			return nil, err
		}
		f.ClassDimensions[c] = int(dimRaw) + 1

		_, subRaw, err := r.Read(2)
		if err != nil {
			return nil, err
		}
		f.ClassSubclasses[c] = int(subRaw)

		if f.ClassSubclasses[c] != 0 {
			_, mb, err := r.Read(8)
			if err != nil {
				return nil, err
			}
			f.ClassMasterbooks[c] = int(mb)
		} else {
			f.ClassMasterbooks[c] = -1
		}

		books := make([]int, 1<<uint(f.ClassSubclasses[c]))
		for s := range books {
			_, bk, err := r.Read(8)
			if err != nil {
				return nil, err
			}
			books[s] = int(bk) - 1
		}
		f.SubclassBooks[c] = books
	}

	_, multRaw, err := r.Read(2)
	if err != nil {
		return nil, err
	}
	f.Multiplier = int(multRaw) + 1

	_, rangeBitsRaw, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	rangeBits := int(rangeBitsRaw)

	f.XList = append(f.XList, 0, 1<<uint(rangeBits))
	for i := 0; i < partitions; i++ {
		class := f.PartitionClass[i]
		for j := 0; j < f.ClassDimensions[class]; j++ {
			_, x, err := r.Read(rangeBits)
			if err != nil {
				return nil, err
			}
			f.XList = append(f.XList, int(x))
		}
	}

	f.precomputeNeighbors()
	return f, nil
}

// precomputeNeighbors derives, for every post after the first two fixed
// endpoints, the low/high X-neighbor indices and the ascending sort order
// used for line rendering (Vorbis I spec §7.3.1 low_neighbor/high_neighbor).
func (f *Floor1) precomputeNeighbors() {
	n := len(f.XList)
	f.lowNeigh = make([]int, n)
	f.highNeigh = make([]int, n)
	for i := 2; i < n; i++ {
		lo, hi := 0, 1
		for j := 2; j < i; j++ {
			if f.XList[j] > f.XList[lo] && f.XList[j] < f.XList[i] {
				lo = j
			}
			if f.XList[j] < f.XList[hi] && f.XList[j] > f.XList[i] {
				hi = j
			}
		}
		f.lowNeigh[i] = lo
		f.highNeigh[i] = hi
	}

	idx := make([]int, n-2)
	for i := range idx {
		idx[i] = i + 2
	}
	sort.Slice(idx, func(a, b int) bool { return f.XList[idx[a]] < f.XList[idx[b]] })
	f.sortIdx = idx

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	sort.Slice(all, func(a, b int) bool { return f.XList[all[a]] < f.XList[all[b]] })
	f.allSortIdx = all
}

// floor1Data is the unpacked per-channel floor1 state: Y values (or -1 for
// pinned/inactive posts) in XList order, plus whether this channel has any
// energy at all.
type floor1Data struct {
	active bool
	y      []int
}

var rangeTable = [4]int{256, 128, 86, 64}

// Unpack decodes one channel's floor1 posts (Vorbis I spec §7.3.2).
func (f *Floor1) Unpack(r bitReader, codebooks []*Codebook) (*floor1Data, error) {
	nonzero, err := r.ReadBit()
	if err != nil {
		return nil, err
	}
	if !nonzero {
		return &floor1Data{active: false}, nil
	}

	rng := rangeTable[f.Multiplier-1]
	yBits := ilog(uint32(rng - 1))

	y := make([]int, len(f.XList))
	for i := range y {
		y[i] = -1
	}

	read := func() (int, error) {
		_, v, err := r.Read(yBits)
		return int(v), err
	}

	y0, err := read()
	if err != nil {
		return nil, err
	}
	y1, err := read()
	if err != nil {
		return nil, err
	}
	y[0], y[1] = y0, y1

	offset := 2
	for _, class := range f.PartitionClass {
		cdim := f.ClassDimensions[class]
		csub := f.ClassSubclasses[class]
		cbits := 0
		var book *Codebook
		if csub != 0 {
			mb := f.ClassMasterbooks[class]
			book = codebooks[mb]
			entry := book.DecodeScalar(r)
			if entry < 0 {
				return nil, &Error{Kind: KindInvalidData, Msg: "floor1: class subclass underflow"}
			}
			cbits = int(entry)
		}
		for j := 0; j < cdim; j++ {
			bookIdx := f.SubclassBooks[class][cbits]
			if bookIdx < 0 {
				offset++
				continue
			}
			sub := codebooks[bookIdx]
			v := sub.DecodeScalar(r)
			if v < 0 {
				return nil, &Error{Kind: KindInvalidData, Msg: "floor1: subclass book underflow"}
			}
			y[offset] = int(v)
			offset++
		}
	}

	// Unwrap predicted values into absolute Y values (Vorbis I spec
	// §7.3.3 render_point / amplitude unwrap).
	for _, i := range f.sortIdx {
		lo, hi := f.lowNeigh[i], f.highNeigh[i]
		predicted := renderPoint(f.XList[lo], y[lo], f.XList[hi], y[hi], f.XList[i])

		val := y[i]
		highroom := rng - predicted
		lowroom := predicted
		var room int
		if highroom < lowroom {
			room = highroom * 2
		} else {
			room = lowroom * 2
		}

		if val == 0 {
			y[i] = predicted
			continue
		}

		if val >= room {
			if highroom > lowroom {
				y[i] = val - lowroom + predicted
			} else {
				y[i] = predicted - val + highroom - 1
			}
		} else if val&1 != 0 {
			y[i] = predicted - (val+1)/2
		} else {
			y[i] = predicted + val/2
		}
	}

	return &floor1Data{active: true, y: y}, nil
}

func renderPoint(x0, y0, x1, y1, x int) int {
	dy := y1 - y0
	adx := x1 - x0
	ady := dy
	if ady < 0 {
		ady = -ady
	}
	err := ady * (x - x0)
	off := err / adx
	if dy < 0 {
		return y0 - off
	}
	return y0 + off
}

var inverseDBTable = buildInverseDBTable()

// buildInverseDBTable precomputes the 256-entry dB-to-linear lookup used to
// render floor1 line segments. Index 255 is unity gain (0 dB); each step
// down covers the ~140 dB dynamic range specified for the floor curve.
func buildInverseDBTable() [256]float32 {
	var t [256]float32
	for i := range t {
		db := float64(i-255) * (140.0 / 255.0)
		t[i] = float32(math.Pow(10, db/20))
	}
	return t
}

// Apply draws the DDA line segments between active posts and multiplies the
// resulting curve into residue (spec.md §4.6).
func (f *Floor1) Apply(data *floor1Data, n int, residue []float32) {
	if !data.active {
		for i := 0; i < n; i++ {
			residue[i] = 0
		}
		return
	}

	step2 := make([]bool, len(f.XList))
	finalY := make([]int, len(f.XList))
	finalY[0], finalY[1] = data.y[0], data.y[1]
	step2[0], step2[1] = true, true

	for _, i := range f.sortIdx {
		lo, hi := f.lowNeigh[i], f.highNeigh[i]
		if step2[lo] && step2[hi] {
			step2[i] = true
			finalY[i] = data.y[i]
		}
	}

	lx, ly := 0, finalY[0]*multiplier(f.Multiplier)
	first := true
	for _, i := range f.allSortIdx {
		if !step2[i] {
			continue
		}
		if first {
			first = false
			lx, ly = f.XList[i], finalY[i]*multiplier(f.Multiplier)
			continue
		}
		hx := f.XList[i]
		hy := finalY[i] * multiplier(f.Multiplier)
		renderLine(lx, ly, hx, hy, residue, n)
		lx, ly = hx, hy
	}
}

func multiplier(m int) int {
	switch m {
	case 1:
		return 1
	case 2:
		return 2
	case 3:
		return 3
	default:
		return 4
	}
}

// renderLine draws a DDA line from (x0,y0) to (x1,y1) in dB-ish Y units,
// converting each step through inverse_dB and multiplying into residue
// (Vorbis I spec §9.2.4 render_line).
func renderLine(x0, y0, x1, y1 int, residue []float32, n int) {
	if x0 >= n {
		return
	}
	dx := x1 - x0
	if dx <= 0 {
		return
	}
	dy := y1 - y0
	adx := dx
	ady := dy
	if ady < 0 {
		ady = -ady
	}
	base := dy / adx
	if adx == 0 {
		base = 0
	}
	var sy int
	if dy < 0 {
		sy = base - 1
	} else {
		sy = base + 1
	}
	ady -= absInt(base) * adx
	y := y0
	errAcc := 0
	x1c := x1
	if x1c > n {
		x1c = n
	}
	for x := x0; x < x1c; x++ {
		residue[x] *= dbToLinear(y)
		errAcc += ady
		if errAcc >= adx {
			errAcc -= adx
			y += sy
		} else {
			y += base
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func dbToLinear(y int) float32 {
	idx := y
	if idx < 0 {
		idx = 0
	}
	if idx > 255 {
		idx = 255
	}
	return inverseDBTable[idx]
}
