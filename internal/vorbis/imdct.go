package vorbis

import "math"

// imdctEngine computes the inverse modified discrete cosine transform and
// memoizes per-N coefficient tables across calls (spec.md §4.9, §9 "IMDCT
// twiddle cache" design note).
//
// The Vorbis I spec's reference implementation uses a 4-step split-radix
// schedule for speed; spec.md explicitly permits any implementation
// strategy so long as output matches a double-precision reference to
// within 1e-5 per sample. This engine instead evaluates the direct
// definition in double precision per output sample, trading the
// split-radix fast path for a direct sum that is straightforward to verify
// by inspection; the coefficient table is memoized per block size N so
// repeated calls at the same N (the common case: a stream has at most two
// distinct block sizes) do not re-derive trigonometric constants.
type IMDCTEngine struct {
	cache map[int]*imdctPlan
}

type imdctPlan struct {
	n    int
	cos  []float64 // n*(n/2) flattened cosine coefficients
	half int
}

// NewIMDCTEngine returns an IMDCTEngine with an empty coefficient cache.
func NewIMDCTEngine() *IMDCTEngine {
	return &IMDCTEngine{cache: make(map[int]*imdctPlan)}
}

func (e *IMDCTEngine) plan(n int) *imdctPlan {
	if p, ok := e.cache[n]; ok {
		return p
	}
	half := n / 2
	p := &imdctPlan{n: n, half: half, cos: make([]float64, n*half)}
	for i := 0; i < n; i++ {
		for k := 0; k < half; k++ {
			angle := (2 * math.Pi / float64(n)) * (float64(i) + 0.5 + float64(n)/4) * (float64(k) + 0.5)
			p.cos[i*half+k] = math.Cos(angle)
		}
	}
	e.cache[n] = p
	return p
}

// Inverse overwrites buf (length n) with the IMDCT of its leading n/2
// coefficients (Vorbis I spec §9.1, "Inverse N-point MDCT").
func (e *IMDCTEngine) Inverse(buf []float32) {
	n := len(buf)
	half := n / 2
	p := e.plan(n)

	in := make([]float64, half)
	for k := 0; k < half; k++ {
		in[k] = float64(buf[k])
	}

	for i := 0; i < n; i++ {
		row := p.cos[i*half : i*half+half]
		var sum float64
		for k := 0; k < half; k++ {
			sum += in[k] * row[k]
		}
		buf[i] = float32(sum)
	}
}
