package vorbisogg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommentsGetIsCaseInsensitive(t *testing.T) {
	c := Comments{
		vendor: "test-encoder",
		fields: []CommentField{
			{Key: "TITLE", Value: "Song One"},
			{Key: "artist", Value: "Someone"},
			{Key: "ARTIST", Value: "Someone Else"},
		},
	}

	require.Equal(t, "test-encoder", c.Vendor())

	v, ok := c.Get("title")
	require.True(t, ok)
	require.Equal(t, "Song One", v)

	all := c.All("Artist")
	require.Equal(t, []string{"Someone", "Someone Else"}, all)

	_, ok = c.Get("missing")
	require.False(t, ok)
}

func TestCommentsFieldsReturnsCopy(t *testing.T) {
	c := Comments{fields: []CommentField{{Key: "A", Value: "1"}}}
	fields := c.Fields()
	fields[0].Value = "mutated"
	require.Equal(t, "1", c.fields[0].Value)
}
