package vorbis

import "math"

// window holds a precomputed Vorbis window curve of a given length, shaped
// sin(pi/2 * sin^2(pi*(i+0.5)/L)) on each slope with a flat interior of 1
// (spec.md §4.9).
type window []float32

// buildWindow constructs a symmetric length-n window whose rising and
// falling slopes each span n/2 samples. ApplyWindow combines the short and
// long curves built here for blocks with neighbors of the other size.
func buildWindow(n int) window {
	w := make(window, n)
	for i := 0; i < n; i++ {
		w[i] = float32(math.Sin(math.Pi / 2 * sq(math.Sin(math.Pi*(float64(i)+0.5)/float64(n)))))
	}
	return w
}

func sq(x float64) float64 { return x * x }

// WindowSet holds the short and long window curves, precomputed once after
// setup (spec.md §9 Per-instance caches). The four overlap configurations
// (short/short, long/short, short/long, long/long) are not stored;
// ApplyWindow composes them from these two curves on each call.
type WindowSet struct {
	shortWin window // length blockSize0
	longWin  window // length blockSize1
}

// NewWindowSet precomputes the short and long window curves for a stream's
// two block sizes.
func NewWindowSet(blockSize0, blockSize1 int) *WindowSet {
	return &WindowSet{
		shortWin: buildWindow(blockSize0),
		longWin:  buildWindow(blockSize1),
	}
}

// ApplyWindow multiplies buf (length n) by the appropriate window slopes
// for a block of size n whose previous/next neighbors may be long or short,
// per Vorbis I spec §9.1.2. leftLong/rightLong only matter when n ==
// blockSize1 (the block itself is long); for a short block (n ==
// blockSize0) the whole window is the short window.
func (ws *WindowSet) ApplyWindow(buf []float32, n int, leftLong, rightLong bool) {
	if n == len(ws.shortWin) {
		for i, w := range ws.shortWin {
			buf[i] *= w
		}
		return
	}

	half := n / 2
	long := ws.longWin
	short := ws.shortWin
	bs0 := len(short)
	quarterBS0 := bs0 / 4
	n4 := n / 4

	// Left slope. When the previous block is short (Vorbis I spec
	// §1.3.2), the window is zero up to n/4 - bs0/4, follows the short
	// window's left-hand slope for bs0/2 samples, then is 1 out to n/2 —
	// not the short slope jammed against sample 0 with no zero region.
	if leftLong {
		for i := 0; i < half; i++ {
			buf[i] *= long[i]
		}
	} else {
		zeroEnd := n4 - quarterBS0
		slopeEnd := n4 + quarterBS0
		for i := 0; i < zeroEnd; i++ {
			buf[i] = 0
		}
		for i := zeroEnd; i < slopeEnd; i++ {
			buf[i] *= short[i-zeroEnd]
		}
		for i := slopeEnd; i < half; i++ {
			buf[i] *= 1
		}
	}

	// Right slope, mirrored: 1 out to 3n/4 - bs0/4, the short window's
	// right-hand slope for bs0/2 samples, then zero to n.
	if rightLong {
		for i := half; i < n; i++ {
			buf[i] *= long[i]
		}
	} else {
		threeN4 := 3 * n4
		slopeStart := threeN4 - quarterBS0
		slopeEnd := threeN4 + quarterBS0
		for i := half; i < slopeStart; i++ {
			buf[i] *= 1
		}
		for i := slopeStart; i < slopeEnd; i++ {
			buf[i] *= short[bs0/2+(i-slopeStart)]
		}
		for i := slopeEnd; i < n; i++ {
			buf[i] = 0
		}
	}
}
