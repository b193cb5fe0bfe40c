package jpeg

// Block is an 8x8 sample matrix indexed as row*8+col, with every entry in
// [0,255] after BlockPipeline processing.
type Block [64]byte

// BlockReceiver consumes one decoded block at a time, identified by its
// monotonically increasing index (block_index mod 4 gives the component,
// per spec.md §3's BlockIndex). Implementations must not retain block past
// the call; copy it if it is needed later.
type BlockReceiver interface {
	Block(block *Block, blockIndex int) error
}

// BlockReceiverFunc adapts a plain function to BlockReceiver.
type BlockReceiverFunc func(block *Block, blockIndex int) error

func (f BlockReceiverFunc) Block(block *Block, blockIndex int) error {
	return f(block, blockIndex)
}

// quantization holds the three per-component dequantization scalars
// (spec.md §6's yq, cbq, crq).
type quantization struct {
	Y, Cb, Cr int
}

// process runs the BlockPipeline (spec.md §4.4) on one freshly entropy
// decoded coefficient vector: dequantize, inverse zig-zag, inverse DCT,
// level shift, clamp — producing the 8x8 sample block to hand to recv.
func process(vec CoefficientVector, blockIndex int, q quantization) Block {
	dq := dequantize(vec, blockIndex, q.Y, q.Cb, q.Cr)
	natural := unzigzag(dq)

	var floatBlock [64]float64
	for i, v := range natural {
		floatBlock[i] = float64(v)
	}

	spatial := inverseDCT(floatBlock)

	var block Block
	for i, v := range spatial {
		block[i] = clamp(roundHalfAwayFromZero(v) + 128)
	}
	return block
}
