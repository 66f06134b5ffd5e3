package vorbis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/philipch07/vorbisogg/internal/bitio"
)

// bitsOf renders the low n bits of v as a stream-order '0'/'1' string (first
// character is bit 0, matching bitio.Reader's LSb-first convention).
func bitsOf(v uint64, n int) string {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		if v&(1<<uint(i)) != 0 {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

func TestReadPacketType(t *testing.T) {
	cases := []struct {
		name string
		bits string
		want PacketType
	}{
		{"audio", "0", PacketAudio},
		{"identification", "1" + bitsOf(0, 7), PacketIdentification},
		{"comment", "1" + bitsOf(1, 7), PacketComment},
		{"setup", "1" + bitsOf(2, 7), PacketSetup},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := bitio.NewReader(packBits(c.bits))
			got, err := ReadPacketType(r)
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestReadPacketTypeRejectsUnknownType(t *testing.T) {
	r := bitio.NewReader(packBits("1" + bitsOf(3, 7)))
	_, err := ReadPacketType(r)
	require.Error(t, err)
}

// buildIdentificationBits constructs a valid identification header bitstream
// (Vorbis I spec §4.2.2) with the given fields.
func buildIdentificationBits(channels, sampleRate uint32, bs0Exp, bs1Exp int) string {
	bits := bitsOf(vorbisSignature, 48)
	bits += bitsOf(0, 32) // version
	bits += bitsOf(uint64(channels), 8)
	bits += bitsOf(uint64(sampleRate), 32)
	bits += bitsOf(0, 32) // bitrate_max
	bits += bitsOf(0, 32) // bitrate_nominal
	bits += bitsOf(0, 32) // bitrate_min
	bits += bitsOf(uint64(bs0Exp), 4)
	bits += bitsOf(uint64(bs1Exp), 4)
	bits += "1" // framing bit
	return bits
}

func TestReadIdentification(t *testing.T) {
	bits := buildIdentificationBits(2, 44100, 8, 11) // 2^8=256, 2^11=2048
	r := bitio.NewReader(packBits(bits))

	ident, err := ReadIdentification(r)
	require.NoError(t, err)
	require.Equal(t, 2, ident.Channels)
	require.Equal(t, uint32(44100), ident.SampleRate)
	require.Equal(t, 256, ident.BlockSize0)
	require.Equal(t, 2048, ident.BlockSize1)
}

func TestReadIdentificationRejectsZeroChannels(t *testing.T) {
	bits := buildIdentificationBits(0, 44100, 8, 11)
	r := bitio.NewReader(packBits(bits))
	_, err := ReadIdentification(r)
	require.Error(t, err)
}

func TestReadIdentificationRejectsInvertedBlockSizes(t *testing.T) {
	bits := buildIdentificationBits(2, 44100, 11, 8) // bs0 > bs1
	r := bitio.NewReader(packBits(bits))
	_, err := ReadIdentification(r)
	require.Error(t, err)
}

func TestReadIdentificationRejectsMissingFramingBit(t *testing.T) {
	bits := buildIdentificationBits(2, 44100, 8, 11)
	bits = bits[:len(bits)-1] + "0"
	r := bitio.NewReader(packBits(bits))
	_, err := ReadIdentification(r)
	require.Error(t, err)
}

func TestReadCommentRoundTrip(t *testing.T) {
	vendor := "vorbisogg"
	field := "TITLE=test"

	bits := bitsOf(vorbisSignature, 48)
	bits += bitsOf(uint64(len(vendor)), 32)
	for _, b := range []byte(vendor) {
		bits += bitsOf(uint64(b), 8)
	}
	bits += bitsOf(1, 32) // comment count
	bits += bitsOf(uint64(len(field)), 32)
	for _, b := range []byte(field) {
		bits += bitsOf(uint64(b), 8)
	}
	bits += "1" // framing bit

	r := bitio.NewReader(packBits(bits))
	ch, err := ReadComment(r)
	require.NoError(t, err)
	require.Equal(t, vendor, ch.Vendor)
	require.Len(t, ch.Fields, 1)
	require.Equal(t, "TITLE", ch.Fields[0].Key)
	require.Equal(t, "test", ch.Fields[0].Value)
}

func TestSplitComment(t *testing.T) {
	k, v := splitComment("ARTIST=Someone")
	require.Equal(t, "ARTIST", k)
	require.Equal(t, "Someone", v)

	k2, v2 := splitComment("NOEQUALSIGN")
	require.Equal(t, "NOEQUALSIGN", k2)
	require.Equal(t, "", v2)
}
