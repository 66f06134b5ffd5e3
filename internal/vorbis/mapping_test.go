package vorbis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/philipch07/vorbisogg/internal/bitio"
)

func TestReadMappingSimpleStereoNoCoupling(t *testing.T) {
	bits := bitsOf(0, 16) // mapping type 0
	bits += "0"           // no submaps
	bits += "0"           // no coupling
	bits += bitsOf(0, 2)  // reserved
	bits += bitsOf(0, 8)  // submap 0 reserved field
	bits += bitsOf(1, 8)  // submap 0 floor index
	bits += bitsOf(2, 8)  // submap 0 residue index

	r := bitio.NewReader(packBits(bits))
	m, err := ReadMapping(r, 2)
	require.NoError(t, err)

	require.Empty(t, m.Couplings)
	require.Equal(t, []int{1}, m.SubmapFloor)
	require.Equal(t, []int{2}, m.SubmapResidue)
	require.Equal(t, []int{0, 0}, m.ChannelSubmap)
}

func TestReadMappingWithCoupling(t *testing.T) {
	bits := bitsOf(0, 16) // mapping type 0
	bits += "0"           // no submaps
	bits += "1"           // has coupling
	bits += bitsOf(0, 8)  // coupling_steps - 1 -> 1 step
	// channels=2 -> ilog(channels-1) = ilog(1) = 1 bit per channel field
	bits += "1" // magnitude = 1
	bits += "0" // angle = 0
	bits += bitsOf(0, 2) // reserved
	bits += bitsOf(0, 8) // submap 0 reserved
	bits += bitsOf(0, 8) // submap 0 floor index
	bits += bitsOf(0, 8) // submap 0 residue index

	r := bitio.NewReader(packBits(bits))
	m, err := ReadMapping(r, 2)
	require.NoError(t, err)

	require.Len(t, m.Couplings, 1)
	require.Equal(t, 1, m.Couplings[0].Magnitude)
	require.Equal(t, 0, m.Couplings[0].Angle)
}

func TestReadMappingRejectsSameMagnitudeAngleChannel(t *testing.T) {
	bits := bitsOf(0, 16)
	bits += "0"
	bits += "1"
	bits += bitsOf(0, 8)
	bits += "0" // magnitude = 0
	bits += "0" // angle = 0 (same channel: invalid)

	r := bitio.NewReader(packBits(bits))
	_, err := ReadMapping(r, 2)
	require.Error(t, err)
}

func TestReadMappingRejectsUnsupportedType(t *testing.T) {
	bits := bitsOf(1, 16)
	r := bitio.NewReader(packBits(bits))
	_, err := ReadMapping(r, 2)
	require.Error(t, err)
}
