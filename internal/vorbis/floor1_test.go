package vorbis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/philipch07/vorbisogg/internal/bitio"
	"github.com/philipch07/vorbisogg/internal/fixture"
)

// buildFloor1Bits constructs a minimal floor 1 header: one partition, one
// class with two dimensions, no subclasses, range_bits small enough to keep
// the encoding short.
func buildFloor1Bits() string {
	bits := bitsOf(1, 5)  // partitions = 1
	bits += bitsOf(0, 4)  // partition_class[0] = 0

	// class 0: dimensions-1 = 1 (2 dims), subclasses = 0, masterbook implicit
	bits += bitsOf(1, 3) // class_dimensions - 1
	bits += bitsOf(0, 2) // class_subclasses
	bits += bitsOf(1, 8) // subclass book (only one slot since 2^0 subclasses)

	bits += bitsOf(0, 2) // floor1_multiplier - 1 == 0 -> multiplier 1
	bits += bitsOf(4, 4) // range_bits = 4 -> max X = 16

	// two X values for class 0's two dimensions.
	bits += bitsOf(3, 4)
	bits += bitsOf(9, 4)
	return bits
}

func TestReadFloor1(t *testing.T) {
	r := bitio.NewReader(packBits(buildFloor1Bits()))
	f1, err := ReadFloor1(r)
	require.NoError(t, err)

	require.Equal(t, []int{0}, f1.PartitionClass)
	require.Equal(t, 1, f1.Multiplier)
	require.Equal(t, []int{0, 16, 3, 9}, f1.XList)
}

// buildSingleEntryCodebookBits builds a scalar-only (map_type 0) codebook
// with `entries` slots where only the entry at wantEntry is present, coded
// as a single one-bit codeword — enough to force Floor1.Unpack's amplitude
// unwrap to decode an exact, chosen post value.
func buildSingleEntryCodebookBits(entries, wantEntry int) string {
	bits := bitsOf(0x564342, 24) // signature
	bits += bitsOf(1, 16)        // dimensions
	bits += bitsOf(uint64(entries), 24)
	bits += bitsOf(0, 1) // ordered = false

	for i := 0; i < entries; i++ {
		if i == wantEntry {
			bits += bitsOf(1, 1) // flag: present
			bits += bitsOf(0, 5) // length - 1 == 0 -> length 1
		} else {
			bits += bitsOf(0, 1) // flag: absent
		}
	}
	bits += bitsOf(0, 4) // map_type = 0
	return bits
}

// TestFloor1UnpackAmplitudeUnwrapAtRoomBoundary guards the Vorbis I §7.3.3
// unwrap boundary: when a decoded post value exactly equals room, the
// one-sided extension branch applies, not the two-sided halving branch.
func TestFloor1UnpackAmplitudeUnwrapAtRoomBoundary(t *testing.T) {
	const entries = 113
	const wantVal = 112 // == room, computed below

	cbBits := buildSingleEntryCodebookBits(entries, wantVal)
	cb, err := ReadCodebook(bitio.NewReader(packBits(cbBits)))
	require.NoError(t, err)

	headerBits := bitsOf(1, 5) // partitions = 1
	headerBits += bitsOf(0, 4) // partition_class[0] = 0
	headerBits += bitsOf(0, 3) // class_dimensions - 1 == 0 -> 1 dim
	headerBits += bitsOf(0, 2) // class_subclasses = 0
	headerBits += bitsOf(1, 8) // subclass book (stored index 0)
	headerBits += bitsOf(0, 2) // multiplier - 1 == 0 -> multiplier 1
	headerBits += bitsOf(8, 4) // range_bits = 8 -> rng via multiplier table, max X 256
	headerBits += bitsOf(128, 8)

	f1, err := ReadFloor1(bitio.NewReader(packBits(headerBits)))
	require.NoError(t, err)
	require.Equal(t, []int{0, 256, 128}, f1.XList)

	// y0 = y1 = 200 -> predicted == 200 for the single interior post
	// regardless of its X. rng = 256 (multiplier 1), so highroom = 56,
	// lowroom = 200, room = 2*highroom = 112 (highroom <= lowroom branch).
	payload := bitsOf(1, 1)   // nonzero
	payload += bitsOf(200, 8) // y0
	payload += bitsOf(200, 8) // y1
	payload += bitsOf(0, 1)   // codeword for entry 112 (the post's raw value)

	data, err := f1.Unpack(bitio.NewReader(packBits(payload)), []*Codebook{cb})
	require.NoError(t, err)
	require.True(t, data.active)

	// Correct (val >= room, highroom <= lowroom): predicted - val + highroom - 1.
	require.Equal(t, 143, data.y[2])
}

func TestInverseDBTableFixtures(t *testing.T) {
	m, err := fixture.Load("../../testdata/fixtures.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, m.InvDB)

	for _, c := range m.InvDB {
		t.Run(c.Name, func(t *testing.T) {
			got := inverseDBTable[c.Index]
			require.InDelta(t, c.Value, float64(got), c.Tol)
		})
	}
}
