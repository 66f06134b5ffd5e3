package vorbis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/philipch07/vorbisogg/internal/fixture"
)

func loadFixtures(t *testing.T) *fixture.Manifest {
	t.Helper()
	m, err := fixture.Load("../../testdata/fixtures.yaml")
	require.NoError(t, err)
	return m
}

func TestFloat32UnpackFixtures(t *testing.T) {
	m := loadFixtures(t)
	require.NotEmpty(t, m.Float32)
	for _, c := range m.Float32 {
		t.Run(c.Name, func(t *testing.T) {
			got := float32Unpack(c.Bits)
			require.InDelta(t, c.Value, float64(got), 1e-4)
		})
	}
}

func TestIlog(t *testing.T) {
	cases := []struct {
		in   uint32
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{7, 3},
		{8, 4},
	}
	for _, c := range cases {
		require.Equal(t, c.want, ilog(c.in))
	}
}

func TestLookup1Values(t *testing.T) {
	// 256 entries, 2 dimensions: largest v with v^2 <= 256 is 16.
	require.Equal(t, 16, lookup1Values(256, 2))
	// 243 entries, 5 dimensions: 3^5 == 243.
	require.Equal(t, 3, lookup1Values(243, 5))
}

func TestClampSample(t *testing.T) {
	require.Equal(t, float32(0.99999994), clampSample(2.0))
	require.Equal(t, float32(-0.99999994), clampSample(-2.0))
	require.Equal(t, float32(0.5), clampSample(0.5))
}
