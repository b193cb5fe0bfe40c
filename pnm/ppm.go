// Package pnm assembles decoded JPEG blocks (see the jpeg package) into
// portable anymap images, mirroring original_source/pnm.c's two output
// converters: a full-color PPM and a single-component PGM.
package pnm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kobolt/polaroid-320/jpeg"
)

// Width and Height are the full-color PPM's fixed dimensions: the camera's
// sensor always produces a 320x240 image, so neither the header nor the
// band geometry below is ever parameterized.
const (
	Width  = 320
	Height = 240

	bandWidthMacroblocks = 20
	bandHeightPixels     = 16
)

// PPMAssembler implements jpeg.BlockReceiver, buffering one horizontal band
// of macroblocks (spec.md's ImageBuffer: 4 components x 20 columns x 64
// samples) and flushing it as 16 pixel rows the moment a full band of
// macroblocks has arrived. It owns its own state per image, never package
// statics, so nothing stops a process from assembling two images at once.
type PPMAssembler struct {
	w      *bufio.Writer
	band   [4][bandWidthMacroblocks]jpeg.Block
	column int
}

// NewPPMAssembler writes the PPM header and returns an assembler ready to
// receive blocks in entropy-stream order.
func NewPPMAssembler(w io.Writer) (*PPMAssembler, error) {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", Width, Height); err != nil {
		return nil, err
	}
	return &PPMAssembler{w: bw}, nil
}

// Block stores one decoded block in the current band, flushing the band to
// the writer once all 20 macroblocks (80 blocks) have arrived.
func (p *PPMAssembler) Block(block *jpeg.Block, blockIndex int) error {
	slot := blockIndex % 4
	p.band[slot][p.column] = *block

	if slot == 3 {
		p.column++
	}
	if p.column < bandWidthMacroblocks {
		return nil
	}
	p.column = 0
	return p.flushBand()
}

// flushBand renders the buffered band as 16 pixel rows of 320 RGB triples,
// chess-boarding the two luma sources (Y1 at slot 0, Y2 at slot 3) the way
// original_source/pnm.c's pnm_block_to_ppm does: even output rows put Y1 on
// the left sample of each pair and Y2 on the right, odd rows the reverse.
func (p *PPMAssembler) flushBand() error {
	for r := 0; r < bandHeightPixels; r++ {
		y1, y2 := 0, 3
		if r%2 != 0 {
			y1, y2 = 3, 0
		}
		sampleIndex := (r / 2) * 8

		for col := 0; col < bandWidthMacroblocks; col++ {
			cb := p.band[1][col]
			cr := p.band[2][col]
			for i := 0; i < 8; i++ {
				idx := sampleIndex + i
				if err := writeRGB(p.w, p.band[y1][col][idx], cb[idx], cr[idx]); err != nil {
					return err
				}
				if err := writeRGB(p.w, p.band[y2][col][idx], cb[idx], cr[idx]); err != nil {
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

// Close flushes any buffered output. It does not attempt to emit a partial
// band: an image that ends mid-band, same as the original converter,
// simply loses whatever rows never reached a full band of macroblocks.
func (p *PPMAssembler) Close() error {
	return p.w.Flush()
}

// writeRGB converts one YCbCr sample triple to RGB using the BT.601-like
// full-range formula of original_source/pnm.c's print_rgb and writes it as
// three space-separated decimal tokens, each followed by a trailing space
// (matching the reference's fprintf format exactly).
func writeRGB(w *bufio.Writer, y, cb, cr byte) error {
	fy, fcb, fcr := float64(y), float64(cb)-128.0, float64(cr)-128.0

	red := clampToByteRange(int(fy + 1.402*fcr))
	green := clampToByteRange(int(fy - 0.34414*fcb - 0.71414*fcr))
	blue := clampToByteRange(int(fy + 1.772*fcb))

	_, err := fmt.Fprintf(w, "%d %d %d ", red, green, blue)
	return err
}

func clampToByteRange(v int) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return v
}
