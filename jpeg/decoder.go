package jpeg

// Decode runs the full pipeline described in spec.md §2 over one image:
// BitSource -> (DC, AC) HuffmanTree -> EntropyDecoder -> BlockPipeline,
// handing each resulting block to recv in strict entropy-stream order.
//
// next yields the raw entropy bytes (no SOI/DHT/DQT/SOS framing — see
// spec.md §6). yq, cbq, crq are the per-component dequantization scalars;
// typical values are {4,2,2} for color, {4,0,0} for greyscale, and
// {1,1,1} for an assembler that wants raw, unquantized components.
//
// Both Huffman trees and all decoder state are owned by this single call
// and discarded when it returns, so a process may call Decode repeatedly
// for successive images without any cross-image state leaking (spec.md
// §5's redesign requirement away from the reference's process-level
// statics).
func Decode(next ByteSource, recv BlockReceiver, yq, cbq, crq int) error {
	dcTree, acTree, err := newLumaTrees()
	if err != nil {
		return err
	}

	bits := NewBitSource(next)
	var predictor dcPredictor
	q := quantization{Y: yq, Cb: cbq, Cr: crq}

	blockIndex := 0
	for {
		vec, err := decodeBlock(bits, dcTree, acTree, &predictor, blockIndex)
		if err == errNormalEOF {
			return nil
		}
		if err != nil {
			return err
		}

		block := process(vec, blockIndex, q)
		if err := recv.Block(&block, blockIndex); err != nil {
			return err
		}
		blockIndex++
	}
}
