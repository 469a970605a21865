// sfnt.go - minimal TrueType/OpenType table directory + cmap reader (§4.2)
package resmgr

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// sfntHeader is the offset subtable plus table directory, matching the
// classic sfnt layout (grounded on the table-directory shape of
// seehuhn.de/go/pdf's font/truetype reader).
type sfntHeader struct {
	scalerType uint32
	tables     map[string]sfntTableRecord
	data       []byte
}

type sfntTableRecord struct {
	offset uint32
	length uint32
}

func parseSFNT(data []byte) (*sfntHeader, error) {
	if len(data) < 12 {
		return nil, errors.New("resmgr: sfnt: file too short")
	}
	scaler := binary.BigEndian.Uint32(data[0:4])
	if scaler != 0x00010000 && scaler != 0x4F54544F && scaler != 0x74727565 {
		return nil, fmt.Errorf("resmgr: sfnt: unsupported scaler type %#x", scaler)
	}
	numTables := binary.BigEndian.Uint16(data[4:6])

	h := &sfntHeader{scalerType: scaler, tables: make(map[string]sfntTableRecord, numTables), data: data}
	pos := 12
	for i := 0; i < int(numTables); i++ {
		if pos+16 > len(data) {
			return nil, errors.New("resmgr: sfnt: truncated table directory")
		}
		tag := string(data[pos : pos+4])
		off := binary.BigEndian.Uint32(data[pos+8 : pos+12])
		length := binary.BigEndian.Uint32(data[pos+12 : pos+16])
		h.tables[tag] = sfntTableRecord{offset: off, length: length}
		pos += 16
	}
	return h, nil
}

func (h *sfntHeader) table(tag string) ([]byte, bool) {
	rec, ok := h.tables[tag]
	if !ok {
		return nil, false
	}
	if int(rec.offset+rec.length) > len(h.data) {
		return nil, false
	}
	return h.data[rec.offset : rec.offset+rec.length], true
}

// cmapSubtable locates the (platform, encoding) subtable within the
// font's "cmap" table, if present.
func (h *sfntHeader) cmapSubtable(platform, encoding uint16) ([]byte, bool) {
	cmap, ok := h.table("cmap")
	if !ok || len(cmap) < 4 {
		return nil, false
	}
	numTables := binary.BigEndian.Uint16(cmap[2:4])
	pos := 4
	for i := 0; i < int(numTables); i++ {
		if pos+8 > len(cmap) {
			return nil, false
		}
		plat := binary.BigEndian.Uint16(cmap[pos : pos+2])
		enc := binary.BigEndian.Uint16(cmap[pos+2 : pos+4])
		off := binary.BigEndian.Uint32(cmap[pos+4 : pos+8])
		if plat == platform && enc == encoding {
			if int(off) > len(cmap) {
				return nil, false
			}
			return cmap[off:], true
		}
		pos += 8
	}
	return nil, false
}

// HasAATCharmap reports whether data (a raw .ttf/.otf buffer) carries a
// platform=7 encoding=2 cmap subtable — the AAT glyph-name charmap XeTeX
// prefers, forced after loading an outline font (§4.2).
func HasAATCharmap(data []byte) bool {
	h, err := parseSFNT(data)
	if err != nil {
		return false
	}
	_, ok := h.cmapSubtable(7, 2)
	return ok
}

// PreferredCharmapPlatform reports which (platform, encoding) pair should
// be used for byte-code-to-glyph mapping: the AAT glyph-name charmap if
// present, else the default Unicode BMP charmap (platform 3, encoding 1).
func PreferredCharmapPlatform(data []byte) (platform, encoding uint16) {
	if HasAATCharmap(data) {
		return 7, 2
	}
	return 3, 1
}

// GlyphForCodepoint maps cp through the font's (platform, encoding) cmap
// subtable, supporting the two formats an AAT byte-encoding table or a
// Unicode BMP table actually shows up as (format 0 and format 4). Other
// formats (6, 12, ...) are rare enough in TeX-produced fonts that they are
// out of scope here; when this reports false, the DVI interpreter draws no
// glyph for that code.
func GlyphForCodepoint(data []byte, platform, encoding uint16, cp uint32) (uint32, bool) {
	h, err := parseSFNT(data)
	if err != nil {
		return 0, false
	}
	sub, ok := h.cmapSubtable(platform, encoding)
	if !ok || len(sub) < 2 {
		return 0, false
	}
	switch binary.BigEndian.Uint16(sub[0:2]) {
	case 0:
		return cmapFormat0Lookup(sub, cp)
	case 4:
		return cmapFormat4Lookup(sub, cp)
	default:
		return 0, false
	}
}

// cmapFormat0Lookup reads the classic byte-encoding table: a 6-byte header
// followed by 256 glyph-index bytes, one per code point 0..255.
func cmapFormat0Lookup(sub []byte, cp uint32) (uint32, bool) {
	if cp > 255 || len(sub) < 6+256 {
		return 0, false
	}
	return uint32(sub[6+cp]), true
}

// cmapFormat4Lookup reads a segmented Unicode BMP table (endCode/startCode/
// idDelta/idRangeOffset segment arrays followed by the glyph ID array).
func cmapFormat4Lookup(sub []byte, cp uint32) (uint32, bool) {
	if cp > 0xFFFF || len(sub) < 14 {
		return 0, false
	}
	segCountX2 := int(binary.BigEndian.Uint16(sub[6:8]))
	segCount := segCountX2 / 2
	endCodes := 14
	startCodes := endCodes + segCountX2 + 2 // +2 skips reservedPad
	idDeltas := startCodes + segCountX2
	idRangeOffsets := idDeltas + segCountX2

	c := uint16(cp)
	for i := 0; i < segCount; i++ {
		end := binary.BigEndian.Uint16(sub[endCodes+2*i:])
		if c > end {
			continue
		}
		start := binary.BigEndian.Uint16(sub[startCodes+2*i:])
		if c < start {
			return 0, false
		}
		delta := binary.BigEndian.Uint16(sub[idDeltas+2*i:])
		rangeOffsetPos := idRangeOffsets + 2*i
		rangeOffset := binary.BigEndian.Uint16(sub[rangeOffsetPos:])
		if rangeOffset == 0 {
			return uint32(c + delta), true
		}
		glyphPos := rangeOffsetPos + int(rangeOffset) + 2*int(c-start)
		if glyphPos+2 > len(sub) {
			return 0, false
		}
		g := binary.BigEndian.Uint16(sub[glyphPos:])
		if g == 0 {
			return 0, false
		}
		return uint32(g + delta), true
	}
	return 0, false
}
