package bitio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderReadSimple(t *testing.T) {
	r := NewReader([]byte{0xFA, 0x23, 0x34, 0x51, 0x25, 0x8F, 0x40, 0x01, 0xF7})

	n, v, err := r.Read(5)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, uint64(0x1A), v)
	require.Equal(t, int64(5), r.Position())
}

func TestReaderPeekThenBigAdvance(t *testing.T) {
	r := NewReader([]byte{0xFA, 0x23, 0x34, 0x51, 0x25, 0x8F, 0x40, 0x01, 0xF7})

	require.NoError(t, r.Advance(5))

	n, v, err := r.Peek(63)
	require.NoError(t, err)
	require.Equal(t, 63, n)
	require.Equal(t, uint64(0x380A04792A89A11F), v)

	require.NoError(t, r.Advance(1))
	require.NoError(t, r.Advance(64))
	require.Equal(t, int64(70), r.Position())

	target, err := r.Seek(-69, SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(1), target)
	require.Equal(t, int64(1), r.Position())

	n, v, err = r.Peek(4)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, uint64(0xD), v)

	_, err = r.Seek(1, SeekCurrent)
	require.NoError(t, err)

	bit, err := r.ReadBit()
	require.NoError(t, err)
	require.False(t, bit)
}

func TestReaderOutOfRange(t *testing.T) {
	r := NewReader([]byte{0x00, 0x00})

	_, _, err := r.Peek(65)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, _, err = r.Read(65)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, _, err = r.Peek(-1)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, _, err = r.Read(-1)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestReaderPeekIdempotent(t *testing.T) {
	r := NewReader([]byte{0xFA, 0x23, 0x34, 0x51})

	n1, v1, err := r.Peek(20)
	require.NoError(t, err)
	pos := r.Position()

	n2, v2, err := r.Peek(20)
	require.NoError(t, err)

	require.Equal(t, n1, n2)
	require.Equal(t, v1, v2)
	require.Equal(t, pos, r.Position())
}

func TestReaderReadThenSeekBackRestores(t *testing.T) {
	r := NewReader([]byte{0xFA, 0x23, 0x34, 0x51, 0x25})

	_, before, err := r.Peek(17)
	require.NoError(t, err)

	n, _, err := r.Read(17)
	require.NoError(t, err)
	require.Equal(t, 17, n)

	_, err = r.Seek(-17, SeekCurrent)
	require.NoError(t, err)

	_, after, err := r.Peek(17)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestReaderEndOfStreamTruncates(t *testing.T) {
	r := NewReader([]byte{0xFF})

	n, _, err := r.Peek(16)
	require.NoError(t, err)
	require.Equal(t, 8, n)
}

func TestReaderSeekForwardFromEndIsError(t *testing.T) {
	r := NewReader([]byte{0x00, 0x00})

	_, err := r.Seek(1, SeekEnd)
	require.ErrorIs(t, err, ErrOutOfRange)

	target, err := r.Seek(-8, SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(8), target)
}
