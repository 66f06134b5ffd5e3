package vorbis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildWindowEndpointsAndSymmetry(t *testing.T) {
	w := buildWindow(64)
	require.Len(t, w, 64)
	// Endpoints of the slope curve approach (but never reach) zero.
	require.Less(t, float64(w[0]), 0.01)
	require.Less(t, float64(w[len(w)-1]), 0.01)
	// Midpoint of a symmetric raised-cosine-like window is near unity.
	mid := w[len(w)/2-1]
	require.InDelta(t, 1.0, float64(mid), 0.01)
	// Symmetric about the center.
	for i := 0; i < len(w)/2; i++ {
		require.InDelta(t, float64(w[i]), float64(w[len(w)-1-i]), 1e-5)
	}
}

func TestApplyWindowShortBlock(t *testing.T) {
	ws := NewWindowSet(64, 512)
	buf := make([]float32, 64)
	for i := range buf {
		buf[i] = 1.0
	}
	ws.ApplyWindow(buf, 64, false, false)
	for i, v := range buf {
		require.InDelta(t, float64(ws.shortWin[i]), float64(v), 1e-6)
	}
}

func TestApplyWindowLongBlockLongNeighbors(t *testing.T) {
	ws := NewWindowSet(64, 512)
	buf := make([]float32, 512)
	for i := range buf {
		buf[i] = 1.0
	}
	ws.ApplyWindow(buf, 512, true, true)
	for i, v := range buf {
		require.InDelta(t, float64(ws.longWin[i]), float64(v), 1e-6)
	}
}

func TestApplyWindowLongBlockShortNeighborsHasFlatInterior(t *testing.T) {
	ws := NewWindowSet(64, 512)
	buf := make([]float32, 512)
	for i := range buf {
		buf[i] = 1.0
	}
	ws.ApplyWindow(buf, 512, false, false)

	// Interior samples (beyond the short taper, before the flat-to-taper
	// transition back down) must be untouched (multiplied by 1).
	require.InDelta(t, 1.0, float64(buf[256]), 1e-6)
}

func TestApplyWindowLongBlockShortLeftNeighborHasZeroEdgeAndPositionedSlope(t *testing.T) {
	ws := NewWindowSet(64, 512)
	buf := make([]float32, 512)
	for i := range buf {
		buf[i] = 1.0
	}
	ws.ApplyWindow(buf, 512, false, true)

	n4 := 512 / 4
	quarterBS0 := 64 / 4
	zeroEnd := n4 - quarterBS0
	slopeEnd := n4 + quarterBS0

	// Zero out to n/4 - bs0/4, per Vorbis I §1.3.2 (no early full-gain
	// region preceding the slope).
	for i := 0; i < zeroEnd; i++ {
		require.Equal(t, float32(0), buf[i], "index %d", i)
	}
	// Slope region matches the short window's left half exactly.
	for i := zeroEnd; i < slopeEnd; i++ {
		require.InDelta(t, float64(ws.shortWin[i-zeroEnd]), float64(buf[i]), 1e-6, "index %d", i)
	}
	// Flat unity out to n/2.
	for i := slopeEnd; i < 256; i++ {
		require.Equal(t, float32(1), buf[i], "index %d", i)
	}
}

func TestApplyWindowLongBlockShortRightNeighborHasZeroEdgeAndPositionedSlope(t *testing.T) {
	ws := NewWindowSet(64, 512)
	buf := make([]float32, 512)
	for i := range buf {
		buf[i] = 1.0
	}
	ws.ApplyWindow(buf, 512, true, false)

	n4 := 512 / 4
	quarterBS0 := 64 / 4
	threeN4 := 3 * n4
	slopeStart := threeN4 - quarterBS0
	slopeEnd := threeN4 + quarterBS0

	for i := 256; i < slopeStart; i++ {
		require.Equal(t, float32(1), buf[i], "index %d", i)
	}
	for i := slopeStart; i < slopeEnd; i++ {
		require.InDelta(t, float64(ws.shortWin[32+(i-slopeStart)]), float64(buf[i]), 1e-6, "index %d", i)
	}
	for i := slopeEnd; i < 512; i++ {
		require.Equal(t, float32(0), buf[i], "index %d", i)
	}
}

func TestSq(t *testing.T) {
	require.InDelta(t, 4.0, sq(2.0), 1e-9)
	require.InDelta(t, math.Pi*math.Pi, sq(math.Pi), 1e-9)
}
