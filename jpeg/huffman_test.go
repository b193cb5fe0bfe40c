package jpeg

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

// bitsToBytes packs a string of '0'/'1' characters into bytes, MSB first,
// zero-padding the final byte. It lets tests spell out canonical Huffman
// codes the way Annex K tables are usually quoted in documentation.
func bitsToBytes(bits string) []byte {
	out := make([]byte, 0, (len(bits)+7)/8)
	var cur byte
	var n int
	for _, r := range bits {
		cur <<= 1
		if r == '1' {
			cur |= 1
		}
		n++
		if n == 8 {
			out = append(out, cur)
			cur, n = 0, 0
		}
	}
	if n > 0 {
		cur <<= uint(8 - n)
		out = append(out, cur)
	}
	return out
}

func TestHuffmanAllocateRejectsOverfullTable(t *testing.T) {
	c := qt.New(t)
	var counts [16]byte
	counts[0] = 3 // three length-1 codes: impossible, only two fit
	_, err := NewHuffmanTree(counts, []byte{0, 1, 2})
	c.Assert(err, qt.Equals, ErrMalformedTable)
}

func TestHuffmanDCCanonicalCodes(t *testing.T) {
	c := qt.New(t)
	tree, err := NewHuffmanTree(lumaDCCounts, lumaDCSymbols)
	c.Assert(err, qt.IsNil)

	cases := []struct {
		code   string
		symbol int
	}{
		{"00", 0},
		{"010", 1},
		{"011", 2},
		{"100", 3},
		{"101", 4},
		{"110", 5},
		{"1110", 6},
		{"11110", 7},
		{"111110", 8},
		{"1111110", 9},
		{"11111110", 10},
		{"111111110", 11},
	}
	for _, tc := range cases {
		bits := NewBitSource(byteFeed(bitsToBytes(tc.code)))
		value, consumed, err := decode(bits, tree)
		c.Assert(err, qt.IsNil, qt.Commentf("code %s", tc.code))
		c.Assert(value, qt.Equals, tc.symbol, qt.Commentf("code %s", tc.code))
		c.Assert(consumed, qt.Equals, len(tc.code), qt.Commentf("code %s", tc.code))
	}
}

func TestHuffmanACEndOfBlockAndZRL(t *testing.T) {
	c := qt.New(t)
	tree, err := NewHuffmanTree(lumaACCounts, lumaACSymbols)
	c.Assert(err, qt.IsNil)

	bits := NewBitSource(byteFeed(bitsToBytes("1010")))
	value, consumed, err := decode(bits, tree)
	c.Assert(err, qt.IsNil)
	c.Assert(value, qt.Equals, 0x00) // EOB
	c.Assert(consumed, qt.Equals, 4)

	bits = NewBitSource(byteFeed(bitsToBytes("11111111001")))
	value, consumed, err = decode(bits, tree)
	c.Assert(err, qt.IsNil)
	c.Assert(value, qt.Equals, 0xF0) // ZRL
	c.Assert(consumed, qt.Equals, 11)
}

func TestHuffmanDecodeStreamEndsMidSymbol(t *testing.T) {
	c := qt.New(t)
	tree, err := NewHuffmanTree(lumaDCCounts, lumaDCSymbols)
	c.Assert(err, qt.IsNil)

	// "11111110" is a 9-bit code (symbol 11) truncated to its first 8 bits.
	bits := NewBitSource(byteFeed(bitsToBytes("11111110")))
	_, consumed, err := decode(bits, tree)
	c.Assert(err, qt.Equals, errStreamEnded)
	c.Assert(consumed, qt.Equals, 8)
}
