package pnm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kobolt/polaroid-320/jpeg"
)

// ComponentWidth and ComponentHeight are the single-component PGM's fixed
// dimensions: half the PPM's size along each axis, since a
// component band is 8 pixel rows instead of 16 and carries no horizontal
// doubling.
const (
	ComponentWidth  = 160
	ComponentHeight = 120

	componentBandHeightPixels = 8
)

// PGMAssembler implements jpeg.BlockReceiver, selecting a single component
// (spec.md's ComponentBuffer) out of every four blocks and flushing its
// buffered band of 20 macroblocks as 8 pixel rows once full.
type PGMAssembler struct {
	w         *bufio.Writer
	component jpeg.Component
	band      [bandWidthMacroblocks]jpeg.Block
	column    int
}

// NewPGMAssembler writes the PGM header and returns an assembler that keeps
// only blocks whose blockIndex%4 matches component, discarding the rest.
func NewPGMAssembler(w io.Writer, component jpeg.Component) (*PGMAssembler, error) {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P2\n%d %d\n255\n", ComponentWidth, ComponentHeight); err != nil {
		return nil, err
	}
	return &PGMAssembler{w: bw, component: component}, nil
}

// Block stores the block if it belongs to the selected component, flushing
// the band once 20 have accumulated.
func (p *PGMAssembler) Block(block *jpeg.Block, blockIndex int) error {
	if jpeg.Component(blockIndex%4) != p.component {
		return nil
	}
	p.band[p.column] = *block
	p.column++

	if p.column < bandWidthMacroblocks {
		return nil
	}
	p.column = 0
	return p.flushBand()
}

// flushBand renders the buffered band as 8 pixel rows of 160 samples,
// row-major within each block, blocks laid out left to right, matching
// original_source/pnm.c's pnm_component_to_pgm.
func (p *PGMAssembler) flushBand() error {
	for row := 0; row < componentBandHeightPixels; row++ {
		for col := 0; col < bandWidthMacroblocks; col++ {
			block := p.band[col]
			for i := 0; i < 8; i++ {
				if _, err := fmt.Fprintf(p.w, "%d ", block[row*8+i]); err != nil {
					return err
				}
			}
		}
		if _, err := p.w.WriteString("\n"); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes any buffered output, same partial-band caveat as
// PPMAssembler.Close.
func (p *PGMAssembler) Close() error {
	return p.w.Flush()
}
