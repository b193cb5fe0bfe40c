// Package jpeg implements a baseline-style entropy decoder specialized for
// the polaroid-320 camera's non-standard JPEG variant: reused luminance
// Huffman tables for chroma, 1:1:1:1 subsampling with two independent luma
// components, and raw entropy data with no SOI/DHT/DQT/SOS framing.
package jpeg

// eof is the sentinel returned by a ByteSource at end of stream.
const eof = -1

// EOF is the sentinel a ByteSource should return once its data is
// exhausted — exported so callers outside this package (camera's picture
// data reader, tests) can construct one without a magic number.
const EOF = eof

// ByteSource yields successive bytes of the entropy stream, 0-255 for a
// data byte or a negative value at end of stream. It has no seek or
// pushback; BitSource is its only caller.
type ByteSource func() int

// BitSource delivers the bits of an entropy stream one at a time, MSB
// first within each byte, transparently absorbing 0xFF00 byte-stuffing.
//
// Any 0xFF byte followed by something other than 0x00 is a JPEG marker
// and ends the stream: the 0xFF is not returned, and the marker byte
// itself is consumed and not pushed back (the stream is not resumable).
type BitSource struct {
	next ByteSource

	cur  byte // current byte being shifted out
	left uint // bits remaining in cur, 0 means cur needs reloading
	done bool // true once a marker or true EOF has been seen
}

// NewBitSource wraps a byte source for bit-at-a-time reading.
func NewBitSource(next ByteSource) *BitSource {
	return &BitSource{next: next}
}

// NextBit returns 0, 1, or eof.
func (b *BitSource) NextBit() int {
	if b.left == 0 {
		if b.done {
			return eof
		}
		c := b.next()
		if c < 0 {
			b.done = true
			return eof
		}
		if c == 0xFF {
			follower := b.next()
			if follower == 0x00 {
				c = 0xFF // literal 0xFF data byte, 0x00 stuffing consumed
			} else {
				b.done = true
				return eof // marker (or real EOF): terminates the stream
			}
		}
		b.cur = byte(c)
		b.left = 8
	}
	b.left--
	bit := (b.cur >> b.left) & 1
	return int(bit)
}
