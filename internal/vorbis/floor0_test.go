package vorbis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/philipch07/vorbisogg/internal/bitio"
)

func TestReadFloor0(t *testing.T) {
	bits := bitsOf(8, 8)    // order
	bits += bitsOf(44100, 16) // rate
	bits += bitsOf(64, 16)    // bark_map_size
	bits += bitsOf(6, 6)      // amp_bits
	bits += bitsOf(100, 8)    // amp_ofs
	bits += bitsOf(0, 4)      // number_of_books - 1 == 0 -> one book
	bits += bitsOf(3, 8)      // book index

	r := bitio.NewReader(packBits(bits))
	f0, err := ReadFloor0(r)
	require.NoError(t, err)
	require.Equal(t, 8, f0.Order)
	require.Equal(t, 44100, f0.Rate)
	require.Equal(t, 64, f0.BarkMapSize)
	require.Equal(t, 6, f0.AmpBits)
	require.Equal(t, 100, f0.AmpOfs)
	require.Equal(t, []int{3}, f0.Books)
}

func TestFloor0ApplySilentZeroesResidue(t *testing.T) {
	f0 := &Floor0{Order: 4, Rate: 44100, BarkMapSize: 64}
	residue := []float32{1, 2, 3, 4}
	f0.Apply(&floor0Data{silent: true}, 4, residue)
	require.Equal(t, []float32{0, 0, 0, 0}, residue)
}

func TestToBarkMonotonic(t *testing.T) {
	require.Less(t, toBark(100), toBark(1000))
	require.Less(t, toBark(1000), toBark(10000))
	require.Equal(t, 0.0, toBark(0))
}
