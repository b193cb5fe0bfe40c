package jpeg

import "errors"

// ErrOverflow is returned when an AC run (zero-run plus the coefficient
// that follows it) would advance past the 64th coefficient of a block.
var ErrOverflow = errors.New("jpeg: AC run overflow")

// ErrTruncated is returned when the bit stream ends unexpectedly in the
// middle of a block: during magnitude receive, or anywhere in the AC loop.
var ErrTruncated = errors.New("jpeg: unexpected end of stream mid-block")

// errNormalEOF is a private sentinel meaning "end of image reached
// cleanly at a block boundary" — not an error condition at all, but
// decodeBlock returns it through the error channel so its caller's loop
// can tell "stop" from "produced a vector" without an extra bool.
var errNormalEOF = errors.New("jpeg: normal end of image")

// CoefficientVector holds the 64 coefficients of one block in zig-zag
// order, position 0 being the DC coefficient.
type CoefficientVector [64]int

// dcPredictor holds the four independent per-slot DC running sums, one
// per block_index mod 4 (spec.md §3's DCPredictorState): each group of
// four consecutive blocks is one macroblock (Y1, Cb, Cr, Y2), and each
// component predicts independently off its own previous value.
type dcPredictor [4]int

// receive reads category bits as a big-endian unsigned integer. category
// must be in [0,15]; category == 0 yields 0 with no bits consumed.
func receive(b *BitSource, category int) (int, error) {
	if category == 0 {
		return 0, nil
	}
	value := 0
	for i := 0; i < category; i++ {
		bit := b.NextBit()
		if bit == eof {
			return 0, ErrTruncated
		}
		value = (value << 1) | bit
	}
	return value, nil
}

// extend converts an unsigned magnitude plus its category into a signed
// coefficient difference, per ISO/IEC 10918-1 section F.2.2.1.
func extend(value, category int) int {
	if category == 0 {
		return 0
	}
	threshold := 1 << uint(category-1)
	if value < threshold {
		return value + 1 - (1 << uint(category))
	}
	return value
}

// decodeBlock decodes one 64-coefficient vector: a DC symbol (predicted
// off predictor[blockIndex%4]) followed by the AC run/ZRL/EOB loop.
// Returns errNormalEOF when the bit stream ends cleanly before the DC
// symbol of a new block — a normal, non-fatal end of image.
func decodeBlock(b *BitSource, dcTree, acTree *HuffmanTree, predictor *dcPredictor, blockIndex int) (CoefficientVector, error) {
	var vec CoefficientVector

	category, _, err := decode(b, dcTree)
	if err != nil {
		if err == errStreamEnded {
			// Matches original_source/jpeg.c: decode() returns -1 uniformly
			// whether zero or partial bits were read for this symbol, and
			// jpeg_decode() treats any such EOF on the DC symbol as the end
			// of the image, not a truncation — a real encoder pads the last
			// byte of the entropy segment with 1-bits before its marker, so
			// the next DC attempt routinely consumes a few of those padding
			// bits before running out.
			return vec, errNormalEOF
		}
		return vec, err // internal invariant violation (missing tree child)
	}

	value, err := receive(b, category)
	if err != nil {
		return vec, err
	}
	diff := extend(value, category)

	slot := blockIndex % 4
	dc := predictor[slot] + diff
	predictor[slot] = dc
	vec[0] = dc

	n := 1
	for n < 64 {
		rs, _, err := decode(b, acTree)
		if err != nil {
			if err == errStreamEnded {
				return vec, ErrTruncated
			}
			return vec, err // internal invariant violation (missing tree child)
		}
		zeroes := rs >> 4
		category := rs & 0x0F

		if category == 0 {
			if zeroes == 15 {
				n += 16 // ZRL: sixteen zero coefficients
				continue
			}
			break // EOB: remaining coefficients stay zero
		}

		n += zeroes
		if n >= 64 {
			return vec, ErrOverflow
		}
		acValue, err := receive(b, category)
		if err != nil {
			return vec, err
		}
		vec[n] = extend(acValue, category)
		n++
	}

	return vec, nil
}
