package vorbisogg

import "strings"

// Comments is a case-insensitive Vorbis comment multimap: one key may have
// several values, and the original declaration order is preserved.
// Grounded on dhowden-tag's vorbis-comment map idiom (ogg.go's
// ReadOGGTags), generalized from a single-value map to a multimap per the
// Vorbis I comment field spec (spec.md §4.10 Comment; a key may repeat).
type Comments struct {
	vendor string
	fields []CommentField
}

// CommentField is one (key, value) pair in declaration order, with Key
// exactly as it appeared in the stream (not case-folded).
type CommentField struct {
	Key   string
	Value string
}

// Vendor returns the encoder-supplied vendor string.
func (c Comments) Vendor() string { return c.vendor }

// Get returns the first value for key (case-insensitive), and whether any
// value was found.
func (c Comments) Get(key string) (string, bool) {
	for _, f := range c.fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return "", false
}

// All returns every value for key (case-insensitive), in declaration order.
func (c Comments) All(key string) []string {
	var out []string
	for _, f := range c.fields {
		if strings.EqualFold(f.Key, key) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Fields returns every (key, value) pair in declaration order.
func (c Comments) Fields() []CommentField {
	out := make([]CommentField, len(c.fields))
	copy(out, c.fields)
	return out
}
