// font.go - DviFont binding: TFM + encoding + outline (§4.2, §4.3.4)
package resmgr

// DviFont is the fully bound font a DVI FNT_DEF resolves to: metrics,
// optionally an encoding vector (for glyph-name lookups) and/or an
// outline face (TrueType/OpenType/Type1), optionally a virtual font.
type DviFont struct {
	Name string

	TFM      *TFM
	Encoding *Encoding
	Outline  *OutlineFont
	VF       *VF

	// glyphCache is the 256-slot lazy byte-code-to-glyph-index map
	// (§4.3.4): built once per font, not per character.
	glyphCache [256]int32
	glyphKnown [256]bool
}

// OutlineFont is a loaded outline face's raw sfnt bytes plus the charmap
// platform/encoding chosen at load time (§4.2's "force the AAT charmap"
// step).
type OutlineFont struct {
	Data            []byte
	Index           int
	CharmapPlatform uint16
	CharmapEncoding uint16
}

// GlyphForCode resolves a DVI byte code to an outline glyph index,
// consulting the encoding vector first (by PostScript glyph name) and
// falling back to treating the code as a direct Unicode scalar (§4.3.4).
// The actual glyph-name-to-index and codepoint-to-index table lookups are
// supplied by the caller (the DVI interpreter owns the loaded sfnt
// font's cmap/post tables); this just owns the per-font memoization.
func (f *DviFont) GlyphForCode(code byte, resolve func(code byte) (int32, bool)) (int32, bool) {
	if f.glyphKnown[code] {
		return f.glyphCache[code], f.glyphCache[code] >= 0
	}
	idx, ok := resolve(code)
	f.glyphKnown[code] = true
	if !ok {
		f.glyphCache[code] = -1
		return 0, false
	}
	f.glyphCache[code] = idx
	return idx, true
}
