// incdvi.go - incremental page index over a growing DVI/XDV byte buffer (§4.3.3, §4.5)
package dvi

import (
	"github.com/texpresso-go/texpresso/internal/render"
	"github.com/texpresso-go/texpresso/internal/resmgr"
	"github.com/texpresso-go/texpresso/internal/texlog"
)

// IncDvi tracks BOP/EOP byte offsets within a buffer that only ever grows
// by appending or shrinks back to a previously-seen prefix (the executor's
// edit/replay model, §4.7), so a page once indexed never needs to be
// re-scanned unless the edit truncated past it (incdvi_t).
type IncDvi struct {
	ctx *Context

	offset        int
	fontdefOffset int
	pages         []int // BOP,EOP,BOP,EOP,... offsets
}

// NewIncDvi builds an index driving interpretation through mgr/dev.
func NewIncDvi(mgr *resmgr.Manager, dev render.Device) *IncDvi {
	return &IncDvi{ctx: NewContext(mgr, dev)}
}

// Context exposes the underlying interpreter context (e.g. to install a
// SpecialHandler or Sync callback before the first Update).
func (d *IncDvi) Context() *Context { return d.ctx }

// Reset clears the index back to "nothing parsed yet" (incdvi_reset).
func (d *IncDvi) Reset() {
	d.offset = 0
	d.fontdefOffset = 0
	d.pages = d.pages[:0]
	d.ctx.Root = NewState(NewFontTable())
}

// Update extends the index to cover buf, rewinding past any BOP/EOP whose
// offset no longer fits (a truncating edit) before resuming the forward
// scan from the last known-good offset (incdvi_update).
func (d *IncDvi) Update(buf []byte) {
	if buf == nil {
		d.Reset()
		return
	}
	n := len(buf)

	if d.offset > n {
		for len(d.pages) > 0 && d.pages[len(d.pages)-1] >= n {
			d.pages = d.pages[:len(d.pages)-1]
		}
		if len(d.pages) == 0 {
			d.offset = 0
		} else {
			d.offset = d.pages[len(d.pages)-1]
			d.pages = d.pages[:len(d.pages)-1]
		}
	}

	if d.offset == 0 {
		if len(d.pages) != 0 {
			texlog.Fatal("dvi: incdvi: page index non-empty at offset 0")
		}
		if plen := PreambleSize(buf); plen > 0 {
			if parsePreamble(d.ctx, d.ctx.Root, buf) {
				d.offset = plen
			}
		}
	}

	if d.offset > 0 {
		version := d.ctx.Root.Version
		for d.offset < n {
			ilen := InstrSize(buf[d.offset:], version)
			if ilen <= 0 {
				break
			}
			if buf[d.offset] == BOP || buf[d.offset] == EOP {
				isBOP := buf[d.offset] == BOP
				if (len(d.pages)%2 == 0) != isBOP {
					texlog.Fatal("dvi: incdvi: BOP/EOP parity mismatch")
				}
				d.pages = append(d.pages, d.offset)
			}
			d.offset += ilen
		}
	}

	if d.fontdefOffset > d.offset {
		d.fontdefOffset = d.offset
	}
}

// parsePreamble reads and executes the PRE record at buf[0] (dvi_preamble_parse).
func parsePreamble(ctx *Context, st *State, buf []byte) bool {
	if buf[0] != PRE {
		texlog.Warn("dvi:preamble:opcode", "dvi: parse_preamble: invalid opcode (expecting PRE)")
		return false
	}
	r := preambleReader{buf: buf[1:]}
	i := r.u8()
	num := r.u32()
	den := r.u32()
	mag := r.u32()
	r.u8() // comment length; the comment text itself isn't interpreted
	ExecPre(ctx, st, i, num, den, mag)
	return true
}

type preambleReader struct {
	buf []byte
	pos int
}

func (r *preambleReader) u8() uint8 {
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *preambleReader) u32() uint32 {
	v := uint32(r.buf[r.pos])<<24 | uint32(r.buf[r.pos+1])<<16 | uint32(r.buf[r.pos+2])<<8 | uint32(r.buf[r.pos+3])
	r.pos += 4
	return v
}

// PageCount reports how many complete BOP/EOP pairs have been indexed
// (incdvi_page_count).
func (d *IncDvi) PageCount() int { return len(d.pages) / 2 }

// PageDim pre-scans page's opening specials to learn its dimensions without
// a full replay (incdvi_page_dim).
func (d *IncDvi) PageDim(buf []byte, page int) (width, height float64, landscape bool) {
	if page < 0 || page >= d.PageCount() {
		texlog.Fatal("dvi: incdvi: page %d out of range", page)
	}
	bop := d.pages[page*2]
	width, height, landscape, consumed := InterpBOP(buf[bop:], prescanSpecial)
	if consumed <= 0 {
		texlog.Fatal("dvi: incdvi: page %d: malformed BOP run", page)
	}
	if landscape {
		width, height = height, width
	}
	return width, height, landscape
}

// prescanSpecial looks for \special{landscape} and \special{pdf: pagesize
// width W height H} (or "pdf: pagesize default") ahead of the full `pdf:`
// special grammar internal/pdfops owns, matching dvi_prescan_special
// exactly, plus \special{papersize=W,H} as a supplementary dvips-style
// convention dvi_prescan_special itself doesn't recognize but that real
// documents in the wild emit.
func prescanSpecial(text string, width, height *float64, landscape *bool) {
	switch {
	case hasPrefix(text, "landscape"):
		*landscape = true
	case hasPrefix(text, "pdf:"):
		rest := skipWS(text[len("pdf:"):])
		if hasPrefix(rest, "pagesize") {
			rest = skipWS(rest[len("pagesize"):])
			if hasPrefix(rest, "default") {
				*width, *height = 612, 792
				return
			}
			if hasPrefix(rest, "width") {
				rest = skipWS(rest[len("width"):])
				w, n, ok := parsePDFDim(rest)
				if !ok || !hasPrefix(skipWS(rest[n:]), "height") {
					return
				}
				rest = skipWS(skipWS(rest[n:])[len("height"):])
				h, _, ok := parsePDFDim(rest)
				if ok {
					*width, *height = w, h
				}
			}
		}
	case hasPrefix(text, "papersize="):
		w, h, ok := parsePaperSize(text[len("papersize="):])
		if ok {
			*width, *height = w, h
		}
	}
}

func skipWS(s string) string {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return s[i:]
}

// parsePDFDim parses one pdim token ("<float><unit>") from the front of s,
// applying the same 800/803 TeX-to-PDF point correction dvi_special.c's
// pdim applies, and returns how many bytes of s it consumed.
func parsePDFDim(s string) (v float64, consumed int, ok bool) {
	i, neg := 0, false
	if i < len(s) && s[i] == '-' {
		neg, i = true, i+1
	}
	start := i
	var intPart float64
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		intPart = intPart*10 + float64(s[i]-'0')
		i++
	}
	if i == start && (i >= len(s) || s[i] != '.') {
		return 0, 0, false
	}
	frac, scale := 0.0, 1.0
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			scale *= 10
			frac += float64(s[i]-'0') / scale
			i++
		}
	}
	v = intPart + frac
	unitStart := i
	for i < len(s) && s[i] != ' ' {
		i++
	}
	v *= punit(s[unitStart:i]) * 800 / 803
	if neg {
		v = -v
	}
	return v, i, true
}

// punit returns the point-per-unit factor dvi_special.c's punit table
// uses, defaulting to 1.0 (points) for an unrecognized unit. A "true"
// prefix is dropped before the unit is looked up.
func punit(unit string) float64 {
	if hasPrefix(unit, "true") {
		unit = unit[len("true"):]
	}
	switch unit {
	case "mm":
		return 2.845274
	case "cm":
		return 28.45274
	case "in":
		return 72.27
	default:
		return 1.0
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// parsePaperSize reads the "WWWunit,HHHunit" pair a papersize special
// carries, in points/mm/cm/in (dvi_prescan_special's dim grammar, a subset
// of what internal/pdfops/dim.go also parses for the `pdf:` grammar).
func parsePaperSize(s string) (w, h float64, ok bool) {
	comma := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			comma = i
			break
		}
	}
	if comma < 0 {
		return 0, 0, false
	}
	w, ok1 := parseDim(s[:comma])
	h, ok2 := parseDim(s[comma+1:])
	return w, h, ok1 && ok2
}

func parseDim(s string) (float64, bool) {
	i, neg := 0, false
	if i < len(s) && s[i] == '-' {
		neg, i = true, i+1
	}
	start := i
	var intPart float64
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		intPart = intPart*10 + float64(s[i]-'0')
		i++
	}
	if i == start && (i >= len(s) || s[i] != '.') {
		return 0, false
	}
	frac, scale := 0.0, 1.0
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			scale *= 10
			frac += float64(s[i]-'0') / scale
			i++
		}
	}
	v := intPart + frac
	unit := s[i:]
	if hasPrefix(unit, "true") {
		unit = unit[len("true"):]
	}
	switch unit {
	case "mm":
		v *= 2.845274
	case "cm":
		v *= 28.45274
	case "in":
		v *= 72.27
	case "pt", "":
	default:
		// unknown unit: treat as points, matching punit's fallback.
	}
	if neg {
		v = -v
	}
	return v, true
}

// RenderPage lazily replays only the fontdefs and specials between the last
// point they were parsed to and page's BOP, then fully replays the page's
// BOP..EOP span against dev (incdvi_parse_fontdef / incdvi_render_page).
func (d *IncDvi) RenderPage(buf []byte, page int) {
	if page < 0 || page >= d.PageCount() {
		texlog.Fatal("dvi: incdvi: page %d out of range", page)
	}
	offset := d.pages[page*2]
	eop := d.pages[page*2+1]
	d.parseFontdefs(buf, offset)

	version := d.ctx.Root.Version
	width, height, _ := d.PageDim(buf, page)
	d.ctx.ResetFrame()
	if d.ctx.Device != nil {
		d.ctx.Device.BeginFrame(width, height)
	}
	for offset < eop {
		ilen := InstrSize(buf[offset:], version)
		if ilen <= 0 {
			texlog.Fatal("dvi: incdvi: page %d: malformed instruction at offset %d", page, offset)
		}
		Interp(d.ctx, buf[offset:])
		offset += ilen
	}
	if d.ctx.Device != nil {
		d.ctx.Device.EndFrame()
	}
}

// parseFontdefs replays only the page-size prescan specials and font
// bindings up to offset, without drawing anything (incdvi_parse_fontdef).
func (d *IncDvi) parseFontdefs(buf []byte, offset int) {
	if offset > len(buf) {
		texlog.Fatal("dvi: incdvi: fontdef replay past end of buffer")
	}
	version := d.ctx.Root.Version
	for d.fontdefOffset < offset {
		ilen := InstrSize(buf[d.fontdefOffset:offset], version)
		if ilen <= 0 {
			break
		}
		op := buf[d.fontdefOffset]
		if op >= XXX1 && op <= XXX4 {
			InterpInit(d.ctx, d.ctx.Root, buf[d.fontdefOffset:offset])
		}
		if IsFontDef(op) {
			Interp(d.ctx, buf[d.fontdefOffset:])
		}
		d.fontdefOffset += ilen
	}
}

// TexScaleFactor reports the page-to-device scale derived from the last
// parsed preamble, or 1 before any page has been indexed
// (incdvi_tex_scale_factor).
func (d *IncDvi) TexScaleFactor() float64 {
	if len(d.pages) == 0 {
		return 1
	}
	return d.ctx.Scale
}
