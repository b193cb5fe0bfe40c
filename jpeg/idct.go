package jpeg

import "math"

// zigzagToNatural maps a zig-zag scan position (0..63) to its natural
// row-major index (row*8+col), per ISO/IEC 10918-1 Figure A.6. It is the
// direct table-driven equivalent of original_source/jpeg.c's
// zig_zag_reorder, which walks the same traversal procedurally.
var zigzagToNatural = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// unzigzag permutes a zig-zag ordered vector into natural row-major order.
// It is an involution composed with its own inverse (spec.md §8): applying
// the natural-to-zigzag permutation undoes it.
func unzigzag(in CoefficientVector) CoefficientVector {
	var out CoefficientVector
	for n, natural := range zigzagToNatural {
		out[natural] = in[n]
	}
	return out
}

// Component identifies which per-component dequantization scalar applies,
// matching the block_index mod 4 -> {Y,Cb,Cr,Y} mapping of spec.md §4.4.
type Component int

const (
	ComponentY1 Component = iota
	ComponentCb
	ComponentCr
	ComponentY2
)

// componentFor maps a block index to the component its dequantization
// scalar is drawn from, per original_source/jpeg.c's quantization_component:
// block_no%4 of {0,3} share Y, 1 is Cb, 2 is Cr.
func componentFor(blockIndex int) Component {
	switch blockIndex % 4 {
	case 0:
		return ComponentY1
	case 3:
		return ComponentY2
	case 1:
		return ComponentCb
	default:
		return ComponentCr
	}
}

// dequantize multiplies every coefficient by the scalar for blockIndex's
// component (spec.md §4.4 step 1, applied before un-zig-zag as the
// original does — harmless since per-index scaling commutes with
// permutation, see spec.md §9).
func dequantize(vec CoefficientVector, blockIndex int, yq, cbq, crq int) CoefficientVector {
	var scale int
	switch componentFor(blockIndex) {
	case ComponentY1, ComponentY2:
		scale = yq
	case ComponentCb:
		scale = cbq
	default:
		scale = crq
	}
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// idctScale holds the c(u) normalization factors: 1/sqrt(2) at frequency
// 0, 1 otherwise.
func idctScale(freq int) float64 {
	if freq == 0 {
		return 1.0 / math.Sqrt2
	}
	return 1.0
}

// inverseDCT applies the 8x8 type-II IDCT described in spec.md §4.4 step
// 3, using naive O(N^4) double-precision cosines — a direct port of
// original_source/jpeg.c's idct, chosen over a faster AAN-style transform
// (as used by image/jpeg's reconstructBlock) because the testable contract
// here is fidelity against that exact double-precision reference, not
// speed (see DESIGN.md).
func inverseDCT(block [64]float64) [64]float64 {
	var out [64]float64
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			var sum float64
			for v := 0; v < 8; v++ {
				var rowSum float64
				for u := 0; u < 8; u++ {
					rowSum += block[v*8+u] * idctScale(u) *
						math.Cos(float64((2*x+1)*u) * math.Pi / 16.0)
				}
				sum += rowSum * idctScale(v) *
					math.Cos(float64((2*y+1)*v) * math.Pi / 16.0)
			}
			out[y*8+x] = sum / 4.0
		}
	}
	return out
}

// roundHalfAwayFromZero implements the reference's rounding rule:
// (int)(v < 0.0) ? -(0.5 - v) : v + 0.5, i.e. round half away from zero.
func roundHalfAwayFromZero(v float64) int {
	if v < 0.0 {
		return -int(0.5 - v)
	}
	return int(v + 0.5)
}

// clamp saturates a sample to [0,255].
func clamp(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
