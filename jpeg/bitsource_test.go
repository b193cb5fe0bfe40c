package jpeg

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

// byteFeed turns a byte slice into a ByteSource that returns eof once
// exhausted, the shape every camera frame reader (and test) feeds into
// NewBitSource.
func byteFeed(data []byte) ByteSource {
	i := 0
	return func() int {
		if i >= len(data) {
			return eof
		}
		b := data[i]
		i++
		return int(b)
	}
}

func readBits(b *BitSource, n int) []int {
	bits := make([]int, n)
	for i := range bits {
		bits[i] = b.NextBit()
	}
	return bits
}

func TestBitSourceMSBFirst(t *testing.T) {
	c := qt.New(t)
	b := NewBitSource(byteFeed([]byte{0xA5})) // 1010 0101
	c.Assert(readBits(b, 8), qt.DeepEquals, []int{1, 0, 1, 0, 0, 1, 0, 1})
}

func TestBitSourceByteStuffing(t *testing.T) {
	c := qt.New(t)
	// 0xFF 0x00 is a literal 0xFF data byte (stuffed), not a marker.
	b := NewBitSource(byteFeed([]byte{0xFF, 0x00, 0x0F}))
	got := readBits(b, 16)
	c.Assert(got, qt.DeepEquals, []int{1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 1, 1, 1, 1})
}

func TestBitSourceMarkerTerminates(t *testing.T) {
	c := qt.New(t)
	b := NewBitSource(byteFeed([]byte{0xFF, 0xD9}))
	c.Assert(b.NextBit(), qt.Equals, eof)
	// Once done, stays done rather than re-reading next().
	c.Assert(b.NextBit(), qt.Equals, eof)
}

func TestBitSourceTrueEOF(t *testing.T) {
	c := qt.New(t)
	b := NewBitSource(byteFeed(nil))
	c.Assert(b.NextBit(), qt.Equals, eof)
}

func TestBitSourceMixedDataThenMarker(t *testing.T) {
	c := qt.New(t)
	b := NewBitSource(byteFeed([]byte{0x2B, 0xFF, 0xD9}))
	got := readBits(b, 8)
	c.Assert(got, qt.DeepEquals, []int{0, 0, 1, 0, 1, 0, 1, 1})
	c.Assert(b.NextBit(), qt.Equals, eof)
}
