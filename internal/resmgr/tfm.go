// tfm.go - TeX font metrics (TFM) decoding (§4.2, §4.3.4)
package resmgr

import (
	"fmt"
	"io"

	"github.com/texpresso-go/texpresso/internal/fixed"
)

const (
	paramSpace        = 1
	paramSpaceStretch = 2
	paramSpaceShrink  = 3
	paramQuad         = 5
)

// TFM is a loaded TeX font metrics file: per-character width/height/depth/
// italic indices packed into a 4-byte char-info word, resolved against
// four fixed-point tables, plus scaled design parameters.
type TFM struct {
	Checksum   uint32
	DesignSize fixed.T
	FirstChar  uint16
	LastChar   uint16

	charTable   []uint32
	widthTable  []fixed.T
	heightTable []fixed.T
	depthTable  []fixed.T
	italicTable []fixed.T
	params      [8]fixed.T
	ascent      fixed.T
	descent     fixed.T
}

// LoadTFM parses the classic TFM binary layout: a 24-byte header
// of table-length counts, followed by the checksum/design-size header
// body, the packed tables, and the scaled parameters (original_source
// src/dvi/tex_tfm.c).
func LoadTFM(r io.Reader) (*TFM, error) {
	var hdr [24]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("resmgr: tfm: cannot read header: %w", err)
	}
	u16 := func(i int) uint16 { return uint16(hdr[i])<<8 | uint16(hdr[i+1]) }
	lf := u16(0)
	lh := u16(2)
	bc := u16(4)
	ec := u16(6)
	nw := u16(8)
	nh := u16(10)
	nd := u16(12)
	ni := u16(14)
	nl := u16(16)
	nk := u16(18)
	ne := u16(20)
	np := u16(22)

	expected := 6 + int(lh) + (int(ec) - int(bc) + 1) + int(nw) + int(nh) + int(nd) + int(ni) + int(nl) + int(nk) + int(ne) + int(np)
	if expected != int(lf) {
		return nil, fmt.Errorf("resmgr: tfm: inconsistent length %d, expected %d", lf, expected)
	}
	if lh < 2 {
		return nil, fmt.Errorf("resmgr: tfm: header too small")
	}
	if bc > ec+1 || ec > 255 || ne > 256 { // an empty font (bc = ec+1) is legal
		return nil, fmt.Errorf("resmgr: tfm: character codes out of range")
	}

	body := make([]byte, 4*(int(lf)-6))
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("resmgr: tfm: cannot read body: %w", err)
	}

	t := &TFM{
		FirstChar: bc,
		LastChar:  ec,
	}
	t.Checksum = fixed.DecodeU32(body[0:4])
	t.DesignSize = fixed.DecodeFixed(body[4:8])

	charCount := int(ec) - int(bc) + 1
	tableStart := int(lh) * 4
	pos := tableStart

	t.charTable = make([]uint32, charCount)
	for i := 0; i < charCount; i++ {
		t.charTable[i] = fixed.DecodeU32(body[pos:])
		pos += 4
	}
	t.widthTable = decodeFixedTable(body, &pos, int(nw))
	t.heightTable = decodeFixedTable(body, &pos, int(nh))
	t.depthTable = decodeFixedTable(body, &pos, int(nd))
	t.italicTable = decodeFixedTable(body, &pos, int(ni))

	var ascent, descent int32
	for _, h := range t.heightTable {
		if h.Repr() > ascent {
			ascent = h.Repr()
		}
	}
	for _, d := range t.depthTable {
		if d.Repr() > descent {
			descent = d.Repr()
		}
	}
	t.ascent = fixed.Make(ascent)
	t.descent = fixed.Make(descent)

	paramsAt := 4 * (int(lf) - 6 - int(np))
	for i := 0; i < int(np) && i < len(t.params); i++ {
		t.params[i] = fixed.DecodeFixed(body[paramsAt+4*i:])
	}

	return t, nil
}

func decodeFixedTable(body []byte, pos *int, n int) []fixed.T {
	out := make([]fixed.T, n)
	for i := 0; i < n; i++ {
		out[i] = fixed.DecodeFixed(body[*pos:])
		*pos += 4
	}
	return out
}

func (t *TFM) charIndex(c int) int {
	if c < int(t.FirstChar) || c > int(t.LastChar) {
		return -1
	}
	return c - int(t.FirstChar)
}

// Ascent and Descent return the font's scaled ascent/descent (max over the
// height/depth tables, times design size).
func (t *TFM) Ascent() fixed.T  { return fixed.Mul(t.ascent, t.DesignSize) }
func (t *TFM) Descent() fixed.T { return fixed.Mul(t.descent, t.DesignSize) }

func (t *TFM) scaledParam(p int) fixed.T { return fixed.Mul(t.params[p], t.DesignSize) }

func (t *TFM) Space() fixed.T        { return t.scaledParam(paramSpace) }
func (t *TFM) SpaceStretch() fixed.T { return t.scaledParam(paramSpaceStretch) }
func (t *TFM) SpaceShrink() fixed.T  { return t.scaledParam(paramSpaceShrink) }

func (t *TFM) Quad() fixed.T {
	q := t.scaledParam(paramQuad)
	if q.Repr() == 0 {
		return t.DesignSize
	}
	return q
}

// CharWidth, CharHeight, CharDepth return the (unscaled by design size,
// matching the original's deliberate choice) table-relative dimensions of
// character c; ItalicCorr is scaled by design size.
func (t *TFM) CharWidth(c int) fixed.T {
	i := t.charIndex(c)
	if i == -1 {
		return fixed.Make(0)
	}
	idx := (t.charTable[i] >> 24) & 0xFF
	return t.widthTable[idx]
}

func (t *TFM) CharHeight(c int) fixed.T {
	i := t.charIndex(c)
	if i == -1 {
		return fixed.Make(0)
	}
	idx := (t.charTable[i] >> 20) & 0x0F
	return t.heightTable[idx]
}

func (t *TFM) CharDepth(c int) fixed.T {
	i := t.charIndex(c)
	if i == -1 {
		return fixed.Make(0)
	}
	idx := (t.charTable[i] >> 16) & 0x0F
	return t.depthTable[idx]
}

func (t *TFM) ItalicCorr(c int) fixed.T {
	i := t.charIndex(c)
	if i == -1 {
		return fixed.Make(0)
	}
	idx := (t.charTable[i] >> 10) & 0x3F
	return fixed.Mul(t.italicTable[idx], t.DesignSize)
}
