package pnm

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kobolt/polaroid-320/jpeg"
)

func constantBlock(v byte) jpeg.Block {
	var b jpeg.Block
	for i := range b {
		b[i] = v
	}
	return b
}

func feedMacroblock(c *qt.C, a *PPMAssembler, blockIndex int, y1, cb, cr, y2 byte) int {
	blocks := []jpeg.Block{constantBlock(y1), constantBlock(cb), constantBlock(cr), constantBlock(y2)}
	for _, b := range blocks {
		b := b
		err := a.Block(&b, blockIndex)
		c.Assert(err, qt.IsNil)
		blockIndex++
	}
	return blockIndex
}

func TestPPMAssemblerWritesHeaderImmediately(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	a, err := NewPPMAssembler(&buf)
	c.Assert(err, qt.IsNil)
	c.Assert(a.Close(), qt.IsNil)
	c.Assert(buf.String(), qt.Equals, "P3\n320 240\n255\n")
}

func TestPPMAssemblerFlushesOnlyOnFullBand(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	a, err := NewPPMAssembler(&buf)
	c.Assert(err, qt.IsNil)

	blockIndex := 0
	for col := 0; col < bandWidthMacroblocks-1; col++ {
		blockIndex = feedMacroblock(c, a, blockIndex, 100, 128, 128, 150)
	}
	c.Assert(a.Close(), qt.IsNil)
	// Header only: one full band (20 macroblocks) never arrived.
	c.Assert(buf.String(), qt.Equals, "P3\n320 240\n255\n")
}

func TestPPMAssemblerFlatBandColors(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	a, err := NewPPMAssembler(&buf)
	c.Assert(err, qt.IsNil)

	blockIndex := 0
	for col := 0; col < bandWidthMacroblocks; col++ {
		blockIndex = feedMacroblock(c, a, blockIndex, 100, 128, 128, 150)
	}
	c.Assert(a.Close(), qt.IsNil)

	lines := strings.Split(strings.TrimPrefix(buf.String(), "P3\n320 240\n255\n"), "\n")
	// 16 data rows plus the trailing empty string after the final newline.
	c.Assert(len(lines), qt.Equals, bandHeightPixels+1)

	row0 := strings.Fields(lines[0])
	c.Assert(len(row0), qt.Equals, Width*3)
	// Even row: Y1 (100) on the left sample of each pair, Y2 (150) on the right.
	c.Assert(row0[0:3], qt.DeepEquals, []string{"100", "100", "100"})
	c.Assert(row0[3:6], qt.DeepEquals, []string{"150", "150", "150"})

	row1 := strings.Fields(lines[1])
	// Odd row: the chess-board pattern reverses.
	c.Assert(row1[0:3], qt.DeepEquals, []string{"150", "150", "150"})
	c.Assert(row1[3:6], qt.DeepEquals, []string{"100", "100", "100"})
}

func TestPPMAssemblerFullImageRowCount(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	a, err := NewPPMAssembler(&buf)
	c.Assert(err, qt.IsNil)

	const bandsPerImage = Height / bandHeightPixels
	blockIndex := 0
	for band := 0; band < bandsPerImage; band++ {
		for col := 0; col < bandWidthMacroblocks; col++ {
			blockIndex = feedMacroblock(c, a, blockIndex, 100, 128, 128, 150)
		}
	}
	c.Assert(a.Close(), qt.IsNil)

	lines := strings.Split(strings.TrimPrefix(buf.String(), "P3\n320 240\n255\n"), "\n")
	c.Assert(len(lines), qt.Equals, Height+1) // + trailing empty string
}

func TestWriteRGBClampsOutOfRange(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	// Y=255, Cr=255 pushes the red channel well past 255; must clamp, not
	// wrap or overflow.
	c.Assert(writeRGB(bw, 255, 128, 255), qt.IsNil)
	c.Assert(bw.Flush(), qt.IsNil)
	c.Assert(strings.Fields(buf.String()), qt.DeepEquals, []string{"255", "164", "255"})
}
