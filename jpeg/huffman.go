package jpeg

import "errors"

// ErrMalformedTable is returned when a 16+N Huffman table has no slot left
// for a symbol at its required code length — a malformed table.
var ErrMalformedTable = errors.New("jpeg: malformed huffman table")

// errStreamEnded is an internal sentinel: the bit stream ran out while
// decoding a Huffman symbol. Callers decide, based on where in the block
// they are, whether that is a normal end-of-image or a fatal truncation
// (spec.md §4.3, §7).
var errStreamEnded = errors.New("jpeg: bit stream ended")

// unassigned marks a leaf node that has not yet been given a symbol.
const unassigned = -1

// hcnode is one node of a HuffmanTree: a leaf once symbol is no longer
// unassigned, an internal node otherwise. allocate gives every node it
// visits both children, leaves included; descent stops at a leaf.
// Naming follows the zero/one (left/right) convention used throughout the
// camera's Huffman decoder.
type hcnode struct {
	zero, one *hcnode
	symbol    int
}

// HuffmanTree is a binary tree built from the 16-length-count + symbol-list
// table format (ISO/IEC 10918-1 Annex C). Every root-to-leaf path has
// length 1..16; a symbol occupies the shallowest unassigned slot reachable
// by left(zero)-preferring depth-first descent, matching the camera
// firmware's huffman_allocate.
type HuffmanTree struct {
	root *hcnode
}

// NewHuffmanTree builds a tree from 16 length-counts followed by the
// concatenated symbols in canonical order. counts[i] gives the number of
// codes of length i+1; len(symbols) must equal sum(counts).
func NewHuffmanTree(counts [16]byte, symbols []byte) (*HuffmanTree, error) {
	root := &hcnode{symbol: unassigned}
	n := 0
	for length := 1; length <= 16; length++ {
		for i := 0; i < int(counts[length-1]); i++ {
			if n >= len(symbols) {
				return nil, ErrMalformedTable
			}
			if !allocate(root, length, int(symbols[n])) {
				return nil, ErrMalformedTable
			}
			n++
		}
	}
	return &HuffmanTree{root: root}, nil
}

// allocate places value in the shallowest unassigned slot exactly depth
// steps below node, reachable by zero-first (left-preferring) depth-first
// descent, lazily creating children as it goes. It is the direct port of
// original_source/huffman.c's huffman_allocate.
func allocate(node *hcnode, depth int, value int) bool {
	if node.zero == nil {
		node.zero = &hcnode{symbol: unassigned}
	}
	if node.one == nil {
		node.one = &hcnode{symbol: unassigned}
	}

	if depth > 0 {
		if node.symbol != unassigned {
			return false // this node is already a leaf, no room beneath it
		}
		if allocate(node.zero, depth-1, value) {
			return true
		}
		return allocate(node.one, depth-1, value)
	}

	// depth == 0: node itself is the candidate slot.
	if node.symbol == unassigned {
		node.symbol = value
		return true
	}
	return false
}

// descend consumes one bit from node and returns either the child to
// continue at, or the decoded leaf value (done == true).
func descend(node *hcnode, bit int) (next *hcnode, leaf int, done bool, err error) {
	var child *hcnode
	if bit == 0 {
		child = node.zero
	} else {
		child = node.one
	}
	if child == nil {
		return nil, 0, false, errors.New("jpeg: huffman lookup on missing child")
	}
	if child.symbol != unassigned {
		return nil, child.symbol, true, nil
	}
	return child, 0, false, nil
}

// decode walks bits from b through tree, starting at its root, until a
// leaf is reached, returning the leaf's symbol. If the bit stream ends
// before a leaf is reached, it returns errStreamEnded; consumed reports
// how many bits were read before that happened, for callers that care
// (entropy.go does not: both zero and partial consumption on the DC
// symbol mean the same thing, a clean end of image).
func decode(b *BitSource, tree *HuffmanTree) (value int, consumed int, err error) {
	node := tree.root
	for {
		bit := b.NextBit()
		if bit == eof {
			return 0, consumed, errStreamEnded
		}
		consumed++
		next, leaf, done, derr := descend(node, bit)
		if derr != nil {
			return 0, consumed, derr
		}
		if done {
			return leaf, consumed, nil
		}
		node = next
	}
}
