package vorbis

import (
	"fmt"
	"sort"
)

// huffmanEntry is one decode-table slot: a code's length and the value it
// resolves to.
type huffmanEntry struct {
	length uint8
	value  int32
}

// huffmanTable is a canonical Huffman decode table built by
// buildHuffmanTable (spec.md §4.4). Grounded on the general idea of a
// prefix-indexed fast path with an overflow scan, generalized here from the
// teacher's buffered resync loop pattern (small fast table, linear
// fallback).
type huffmanTable struct {
	prefixBits int
	maxBits    int
	prefix     []huffmanEntry // size 2^prefixBits; length 0 means empty
	overflow   []overflowEntry
}

type overflowEntry struct {
	code   uint32
	length uint8
	value  int32
}

// buildHuffmanTable assigns canonical codewords to entries by ascending
// length (entries with length <= 0 are unused) and constructs the
// prefix/overflow decode table. Returns an error if the lengths cannot form
// a complete or singleton code.
func buildHuffmanTable(lengths []int) (*huffmanTable, error) {
	type codeLen struct {
		value  int32
		length int
	}
	var used []codeLen
	maxLen := 0
	for i, l := range lengths {
		if l <= 0 {
			continue
		}
		used = append(used, codeLen{value: int32(i), length: l})
		if l > maxLen {
			maxLen = l
		}
	}
	if len(used) == 0 {
		return &huffmanTable{prefixBits: 0, maxBits: 0}, nil
	}

	sort.Slice(used, func(i, j int) bool {
		if used[i].length != used[j].length {
			return used[i].length < used[j].length
		}
		return used[i].value < used[j].value
	})

	// Canonical assignment: walk lengths, maintaining a running code that
	// advances by 1 after every entry and is left-shifted when length
	// increases, per Vorbis I spec §3.2.1.
	codes := make([]uint32, len(used))
	var code uint32
	curLen := used[0].length
	for i, e := range used {
		if e.length > curLen {
			code <<= uint(e.length - curLen)
			curLen = e.length
		}
		if len(used) > 1 && code >= 1<<uint(e.length) {
			return nil, fmt.Errorf("vorbis: codebook lengths overflow available codespace")
		}
		codes[i] = code
		code++
	}
	if len(used) > 1 {
		// After the last assignment, the tree must be exactly full: the
		// running code must equal 1<<maxUsedLength once fully carried.
		full := code
		full <<= uint(maxLen - curLen)
		if full != 1<<uint(maxLen) {
			return nil, fmt.Errorf("vorbis: codebook lengths under-specify a complete code")
		}
	}

	prefixBits := minInt(maxLen, 10)
	table := &huffmanTable{
		prefixBits: prefixBits,
		maxBits:    maxLen,
		prefix:     make([]huffmanEntry, 1<<uint(prefixBits)),
	}

	for i, e := range used {
		bitRev := bitReverse(codes[i], e.length)
		if e.length <= prefixBits {
			step := 1 << uint(e.length)
			for slot := int(bitRev); slot < len(table.prefix); slot += step {
				table.prefix[slot] = huffmanEntry{length: uint8(e.length), value: e.value}
			}
		} else {
			table.overflow = append(table.overflow, overflowEntry{
				code:   bitRev,
				length: uint8(e.length),
				value:  e.value,
			})
		}
	}

	return table, nil
}

// bitReverse reverses the low n bits of v (Vorbis codewords are stored and
// matched bit-reversed relative to canonical assignment order).
func bitReverse(v uint32, n int) uint32 {
	var out uint32
	for i := 0; i < n; i++ {
		out = (out << 1) | (v & 1)
		v >>= 1
	}
	return out
}

// peeker is the minimum bit-reading contract huffmanTable.decode needs.
type peeker interface {
	Peek(n int) (int, uint64, error)
	TryAdvance(n int) bool
}

// decode performs one scalar Huffman decode, returning -1 on underflow or
// no match (spec.md §4.4: caller treats this as a corrupt packet signal).
func (h *huffmanTable) decode(r peeker) int32 {
	if h.prefixBits == 0 {
		return -1
	}
	n, bits, err := r.Peek(h.prefixBits)
	if err != nil || n < h.prefixBits {
		return -1
	}
	if e := h.prefix[bits]; e.length != 0 {
		r.TryAdvance(int(e.length))
		return e.value
	}

	n, bits, err = r.Peek(h.maxBits)
	if err != nil {
		return -1
	}
	for _, e := range h.overflow {
		if int(e.length) > n {
			continue
		}
		mask := uint64(1)<<uint(e.length) - 1
		if bits&mask == uint64(e.code) {
			r.TryAdvance(int(e.length))
			return e.value
		}
	}
	return -1
}
