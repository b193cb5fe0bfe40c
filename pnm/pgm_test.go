package pnm

import (
	"bytes"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kobolt/polaroid-320/jpeg"
)

func TestPGMAssemblerWritesHeaderImmediately(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	a, err := NewPGMAssembler(&buf, jpeg.ComponentY1)
	c.Assert(err, qt.IsNil)
	c.Assert(a.Close(), qt.IsNil)
	c.Assert(buf.String(), qt.Equals, "P2\n160 120\n255\n")
}

func TestPGMAssemblerKeepsOnlySelectedComponent(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	a, err := NewPGMAssembler(&buf, jpeg.ComponentCb)
	c.Assert(err, qt.IsNil)

	blockIndex := 0
	for col := 0; col < bandWidthMacroblocks; col++ {
		blocks := []jpeg.Block{
			constantBlock(10), // Y1, discarded
			constantBlock(20), // Cb, kept
			constantBlock(30), // Cr, discarded
			constantBlock(40), // Y2, discarded
		}
		for _, b := range blocks {
			b := b
			c.Assert(a.Block(&b, blockIndex), qt.IsNil)
			blockIndex++
		}
	}
	c.Assert(a.Close(), qt.IsNil)

	lines := strings.Split(strings.TrimPrefix(buf.String(), "P2\n160 120\n255\n"), "\n")
	c.Assert(len(lines), qt.Equals, componentBandHeightPixels+1)

	row0 := strings.Fields(lines[0])
	c.Assert(len(row0), qt.Equals, ComponentWidth)
	for _, tok := range row0 {
		c.Assert(tok, qt.Equals, "20")
	}
}

func TestPGMAssemblerNoFlushBeforeFullBand(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	a, err := NewPGMAssembler(&buf, jpeg.ComponentY1)
	c.Assert(err, qt.IsNil)

	blockIndex := 0
	for col := 0; col < bandWidthMacroblocks-1; col++ {
		b := constantBlock(77)
		c.Assert(a.Block(&b, blockIndex), qt.IsNil)
		blockIndex += 4 // only component Y1 (slot 0) blocks are fed
	}
	c.Assert(a.Close(), qt.IsNil)
	c.Assert(buf.String(), qt.Equals, "P2\n160 120\n255\n")
}
