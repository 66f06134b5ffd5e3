package vorbis

import "math"

// ilog returns the position of the highest set bit, i.e. the number of bits
// required to represent x (ilog(0) == 0, ilog(1) == 1, ilog(7) == 3).
func ilog(x uint32) int {
	n := 0
	for x != 0 {
		n++
		x >>= 1
	}
	return n
}

// lookup1Values returns the largest integer v such that v^dimensions <=
// entries, used to size a codebook's type-1 (cartesian) VQ lookup.
func lookup1Values(entries, dimensions int) int {
	v := int(math.Floor(math.Pow(float64(entries), 1.0/float64(dimensions))))
	for {
		if pow(v+1, dimensions) <= entries {
			v++
			continue
		}
		if pow(v, dimensions) > entries {
			v--
			continue
		}
		return v
	}
}

func pow(base, exp int) int {
	r := 1
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}

// float32Unpack decodes a Vorbis-packed 32-bit float as used by codebook
// min_value/delta_value fields (Vorbis I spec §9.2.2).
func float32Unpack(bits uint32) float32 {
	sign := bits & 0x80000000
	exponent := int32((bits>>21)&0x3FF) - 788
	mantissa := int64(bits & 0x1FFFFF)
	if sign != 0 {
		mantissa = -mantissa
	}
	return float32(float64(mantissa) * math.Pow(2, float64(exponent)))
}

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

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
