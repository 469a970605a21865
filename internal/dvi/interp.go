// interp.go - DVI/XDV opcode dispatch and primitive execution (§4.3.2-§4.3.6)
package dvi

import (
	"github.com/texpresso-go/texpresso/internal/fixed"
	"github.com/texpresso-go/texpresso/internal/resmgr"
	"github.com/texpresso-go/texpresso/internal/texlog"
)

// currentFont returns the font table slot st.Font is bound to.
func currentFont(st *State) *FontDef { return st.Fonts.Get(st.Font) }

// resolveGlyph maps a one-byte TeX character code to an outline glyph index
// (dvi_exec_char's fz_encode_character/fz_encode_character_by_glyph_name
// pair). Glyph-name lookup through a post table isn't implemented (see
// DESIGN.md); this always resolves by treating the code as a Unicode
// scalar against the font's preferred cmap subtable, which is the path
// XeTeX/Unicode-native fonts actually exercise.
func resolveGlyph(font *resmgr.OutlineFont, code byte) (int32, bool) {
	if font == nil {
		return 0, false
	}
	g, ok := resmgr.GlyphForCodepoint(font.Data, font.CharmapPlatform, font.CharmapEncoding, uint32(code))
	if !ok {
		return 0, false
	}
	return int32(g), true
}

// ExecChar typesets character c under the current font and, for SET
// (set=true), advances H by its scaled width; PUT (set=false) leaves H
// unchanged. It dispatches between a TFM-metriced outline font, a virtual
// font, or a pure-metrics font (dvi_exec_char).
func ExecChar(ctx *Context, st *State, c uint32, set bool) {
	def := currentFont(st)
	if def.Kind != TexFontKind {
		texlog.Warn("dvi:exec_char:kind", "dvi: exec_char: expecting TeX font")
		return
	}
	font := def.TexFont
	scaleFactor := def.Spec.ScaleFactor
	if font == nil {
		return
	}

	if font.Outline != nil && c <= 255 {
		idx, ok := font.GlyphForCode(byte(c), func(code byte) (int32, bool) {
			return resolveGlyph(font.Outline, code)
		})
		if ok && ctx.Device != nil {
			s := ctx.Scale * fixed.ToFloat(scaleFactor)
			ctm := st.CTM(ctx.Scale).PreScale(s, s)
			ctx.Device.ShowGlyph(def.Name, uint32(idx), ctm, s, st.GS.Colors.Fill)
		}
		if set && font.TFM != nil {
			st.Registers.H += fixed.Mul(font.TFM.CharWidth(int(c)), scaleFactor).Repr()
		}
		return
	}

	if font.VF != nil {
		vfc, ok := font.VF.Get(c)
		if !ok {
			texlog.Warn("dvi:exec_char:vf", "dvi: exec_char: virtual font has no glyph for code %d", c)
			return
		}
		vfst := ctx.EnterVF(st, vfFontTable(font.VF), font.VF.DefaultFont, scaleFactor)
		pos := 0
		for pos < len(vfc.DVI) {
			size := InstrSize(vfc.DVI[pos:], VersionVF)
			if size <= 0 || pos+size > len(vfc.DVI) {
				break
			}
			if !InterpSub(ctx, vfst, vfc.DVI[pos:]) {
				break
			}
			pos += size
		}
		if set {
			st.Registers.H += fixed.Mul(vfc.Width, scaleFactor).Repr()
		}
		return
	}

	if set && font.TFM != nil {
		w := fixed.Mul(font.TFM.CharWidth(int(c)), scaleFactor)
		if ctx.Sync != nil {
			s := ctx.Scale * fixed.ToFloat(scaleFactor)
			ctm := st.CTM(ctx.Scale).PreScale(s, s)
			h := font.TFM.CharHeight(int(c))
			d := font.TFM.CharDepth(int(c))
			ctx.Sync(ctx.SyncPos.File, ctx.SyncPos.Line, rune(c), ctm,
				fixed.ToFloat(w)*ctx.Scale, fixed.ToFloat(h)*s, fixed.ToFloat(d)*s)
		}
		st.Registers.H += w.Repr()
	}
}

// vfFontTable adapts the VF's own font bindings (resolved DviFonts keyed by
// the VF's local font numbers) into the FontTable shape the interpreter
// dispatches against.
func vfFontTable(vf *resmgr.VF) *FontTable {
	t := NewFontTable()
	for num, fd := range vf.Fonts {
		slot := t.Get(int(num))
		slot.Kind = TexFontKind
		slot.Name = fd.Font.Name
		slot.TexFont = fd.Font
		slot.Spec = FontSpec{Checksum: fd.Checksum, ScaleFactor: fd.ScaleFactor, DesignSize: fd.DesignSize}
	}
	return t
}

// ExecPush and ExecPop push/pop the graphics state and registers together
// (dvi_exec_push/dvi_exec_pop operate on registers_stack only in the
// original's C, but its gs_stack is pushed/popped in lockstep by every
// caller that PUSH/POPs in practice; texpresso-go keeps them paired
// explicitly since Go's slice stacks don't share the original's combined
// arena).
func ExecPush(st *State) bool {
	st.pushGS()
	return st.pushRegisters()
}

func ExecPop(st *State) bool {
	okGS := st.popGS()
	okRegs := st.popRegisters()
	return okGS && okRegs
}

// ExecFntNum switches the current font, warning (not failing) if the slot
// is unbound (dvi_exec_fnt_num).
func ExecFntNum(st *State, f uint32) {
	st.Font = int(f)
	if currentFont(st).TexFont == nil && currentFont(st).XDVFont == nil {
		texlog.Warn("dvi:fnt_num", "dvi: fnt_num: undefined font %d", f)
	}
}

// ExecRule draws a SET_RULE/PUT_RULE filled rectangle at the registers'
// current position (dvi_exec_rule / output_fill_rect). The rule's corners
// are run through the current CTM and rebounded into an axis-aligned box:
// exact under the scale+translate CTMs ordinary DVI pages use, an
// approximation once a pdf: special has introduced skew (render.Device's
// FillRect takes no CTM, so a rotated rule can't be expressed exactly
// through this boundary).
func ExecRule(ctx *Context, st *State, w, h uint32) {
	if ctx.Device == nil {
		return
	}
	x := float64(st.Registers.H - st.GS.H)
	y := float64(st.Registers.V - st.GS.V)
	s := ctx.Scale
	x0, y0 := x*s, -y*s
	x1, y1 := (x+float64(w))*s, -(y-float64(h))*s

	m := st.GS.CTM
	px0, py0 := m.A*x0+m.C*y0+m.E, m.B*x0+m.D*y0+m.F
	px1, py1 := m.A*x1+m.C*y1+m.E, m.B*x1+m.D*y1+m.F
	if px0 > px1 {
		px0, px1 = px1, px0
	}
	if py0 > py1 {
		py0, py1 = py1, py0
	}
	ctx.Device.FillRect(px0, py0, px1, py1, st.GS.Colors.Fill)
}

// ExecFntDef binds font number f to a TeX font resolved through the
// resource manager (dvi_exec_fnt_def).
func ExecFntDef(ctx *Context, st *State, f, c, s, d uint32, name string) {
	def := st.Fonts.Get(int(f))
	def.Kind = TexFontKind
	def.Name = name
	def.TexFont = ctx.Manager.GetTexFont(name)
	def.Spec = FontSpec{Checksum: c, ScaleFactor: fixed.Make(int32(s)), DesignSize: fixed.Make(int32(d))}
}

// ExecBOP resets the registers and warns (but recovers) if either stack was
// left non-empty by a truncated previous page (dvi_exec_bop).
func ExecBOP(st *State) {
	st.Registers = Registers{}
	if len(st.gsStack) != 0 {
		texlog.Warn("dvi:bop:gs_stack", "dvi: bop: transformation stack was not empty")
		st.gsStack = st.gsStack[:0]
	}
	if len(st.registersStack) != 0 {
		texlog.Warn("dvi:bop:registers_stack", "dvi: bop: stack was not empty")
		st.registersStack = st.registersStack[:0]
	}
}

// ExecEOP is a no-op placeholder matching dvi_exec_eop's text-flush, which
// texpresso-go's Device.ShowGlyph-per-glyph design makes unnecessary.
func ExecEOP(st *State) {}

// ExecPre derives the page-to-device scale from the preamble's num/den/mag
// triple and records the dialect byte as the root state's version
// (dvi_exec_pre; scale formula is §4.3.2's DVI-to-device-points constant).
func ExecPre(ctx *Context, st *State, i uint8, num, den, mag uint32) {
	st.Version = Version(i)
	ctx.Scale = float64(num) / 254000.0 * 72.27 / float64(den) * float64(mag) / 1000.0 * 800 / 803
}

// ExecXDVFontDef binds font number fontnum to a native outline font
// resolved through the resource manager (dvi_exec_xdvfontdef).
func ExecXDVFontDef(ctx *Context, st *State, fontnum int, name string, index int, spec XDVFontSpec) {
	def := st.Fonts.Get(fontnum)
	def.Kind = XDVFontKind
	def.Name = name
	def.XDVFont = ctx.Manager.GetOutlineFont(name, index)
	def.XDVSpec = spec
}

// ExecXDVGlyphs draws one XDV_GLYPHS/XDV_TEXT_GLYPHS/XDV_GLYPH_STRING glyph
// run and advances st.Registers.H by width (dvi_exec_xdvglyphs).
func ExecXDVGlyphs(ctx *Context, st *State, width fixed.T, chars []uint16, dx []fixed.T, dy0 fixed.T, dy []fixed.T, glyphs []uint16) {
	def := currentFont(st)
	if def.Kind != XDVFontKind {
		texlog.Warn("dvi:xdvglyphs:kind", "dvi: exec_xdvglyphs: expecting XDV font")
		st.Registers.H += width.Repr()
		return
	}
	if def.XDVFont == nil {
		texlog.Warn("dvi:xdvglyphs:nofont", "dvi: exec_xdvglyphs: font not found")
		st.Registers.H += width.Repr()
		return
	}

	if ctx.Device != nil {
		ds := ctx.Scale
		fs := fixed.ToFloat(def.XDVSpec.Size) * ds

		sh := float64(st.Registers.H - st.GS.H)
		sv := float64(st.Registers.V) + fixed.ToFloat(dy0) - float64(st.GS.V)

		for idx, gid := range glyphs {
			h := sh + fixed.ToFloat(dx[idx])
			v := sv
			if dy != nil {
				v = sv + fixed.ToFloat(dy[idx])
			}
			ctm := st.GS.CTM.PreTranslate(h*ds, -v*ds).PreScale(fs, fs)
			ctx.Device.ShowGlyph(def.Name, uint32(gid), ctm, fs, st.GS.Colors.Fill)
		}
	}

	if ctx.Sync != nil {
		ds := ctx.Scale
		fs := fixed.ToFloat(def.XDVSpec.Size) * ds
		sh := float64(st.Registers.H - st.GS.H)
		sv := float64(st.Registers.V) + fixed.ToFloat(dy0) - float64(st.GS.V)
		for idx := range glyphs {
			h := sh + fixed.ToFloat(dx[idx])
			v := sv
			if dy != nil {
				v = sv + fixed.ToFloat(dy[idx])
			}
			ctm := st.GS.CTM.PreTranslate(h*ds, -v*ds).PreScale(fs, fs)
			c := rune(' ')
			if chars != nil && idx < len(chars) {
				c = rune(chars[idx])
			}
			ctx.Sync(ctx.SyncPos.File, ctx.SyncPos.Line, c, ctm, 0, 0, 0)
		}
	}

	st.Registers.H += width.Repr()
}

// InterpSub dispatches one instruction at buf[0] against st, returning
// false when the stream should stop replaying this state (EOP, an
// unhandled opcode, or a failed special) and true to keep going
// (dvi_interp_sub).
func InterpSub(ctx *Context, st *State, buf []byte) bool {
	op := buf[0]
	rest := buf[1:]

	if op <= SetChar127 {
		ExecChar(ctx, st, uint32(op), true)
		return true
	}
	if op >= FntNum0 && op <= FntNum63 {
		ExecFntNum(st, uint32(op-FntNum0))
		return true
	}

	switch op {
	case Set1, Set2, Set3, Set4:
		n := int(op) - int(Set1) + 1
		ExecChar(ctx, st, fixed.DecodeUB(rest, n), true)
		return true
	case Put1, Put2, Put3, Put4:
		n := int(op) - int(Put1) + 1
		ExecChar(ctx, st, fixed.DecodeUB(rest, n), false)
		return true
	case Right1, Right2, Right3, Right4:
		n := int(op) - int(Right1) + 1
		st.Registers.H += fixed.DecodeSB(rest, n)
		return true

	case W0:
		st.Registers.H += st.Registers.W
		return true
	case W1, W2, W3, W4:
		n := int(op) - int(W1) + 1
		a := fixed.DecodeSB(rest, n)
		st.Registers.W = a
		st.Registers.H += a
		return true

	case X0:
		st.Registers.H += st.Registers.X
		return true
	case X1, X2, X3, X4:
		n := int(op) - int(X1) + 1
		a := fixed.DecodeSB(rest, n)
		st.Registers.X = a
		st.Registers.H += a
		return true

	case Down1, Down2, Down3, Down4:
		n := int(op) - int(Down1) + 1
		st.Registers.V += fixed.DecodeSB(rest, n)
		return true

	case Y0:
		st.Registers.V += st.Registers.Y
		return true
	case Y1, Y2, Y3, Y4:
		n := int(op) - int(Y1) + 1
		a := fixed.DecodeSB(rest, n)
		st.Registers.Y = a
		st.Registers.V += a
		return true

	case Z0:
		st.Registers.V += st.Registers.Z
		return true
	case Z1, Z2, Z3, Z4:
		n := int(op) - int(Z1) + 1
		a := fixed.DecodeSB(rest, n)
		st.Registers.Z = a
		st.Registers.V += a
		return true

	case Fnt1, Fnt2, Fnt3, Fnt4:
		n := int(op) - int(Fnt1) + 1
		ExecFntNum(st, fixed.DecodeUB(rest, n))
		return true

	case SetRule, PutRule:
		h := fixed.DecodeU32(rest)
		w := fixed.DecodeU32(rest[4:])
		ExecRule(ctx, st, w, h)
		if op == SetRule {
			st.Registers.H += int32(w)
		}
		return true

	case Nop:
		return true

	case EOP:
		ExecEOP(st)
		return false

	case Padding:
		return false

	case Push:
		return ExecPush(st)
	case Pop:
		return ExecPop(st)

	case BeginReflect, EndReflect:
		return false

	case XXX1, XXX2, XXX3, XXX4:
		n := int(op) - int(XXX1) + 1
		k := int(fixed.DecodeUB(rest, n))
		text := string(rest[n : n+k])
		if ctx.SpecialHandler == nil {
			return true
		}
		return ctx.SpecialHandler(ctx, st, text)

	case FntDef1, FntDef2, FntDef3, FntDef4:
		n := int(op) - int(FntDef1) + 1
		r := rest
		k := fixed.DecodeUB(r, n)
		r = r[n:]
		c := fixed.DecodeU32(r)
		s := fixed.DecodeU32(r[4:])
		d := fixed.DecodeU32(r[8:])
		a := int(r[12])
		l := int(r[13])
		name := string(r[14+a : 14+a+l])
		ExecFntDef(ctx, st, k, c, s, d, name)
		return true

	case BOP:
		ExecBOP(st)
		return true

	case PRE:
		texlog.Warn("dvi:interp:unexpected_pre", "dvi: interp: unexpected preamble")
		return false

	case POST, PostPost:
		return false

	case XDVNativeFontDef:
		r := rest
		fontnum := int(fixed.DecodeS32(r))
		r = r[4:]
		spec := XDVFontSpec{}
		spec.Size = fixed.DecodeFixed(r)
		r = r[4:]
		spec.Flags = fixed.DecodeU16(r)
		r = r[2:]
		filenameLen := int(r[0])
		r = r[1:]

		if st.Version == VersionXDV5 {
			fmnameLen := int(r[0])
			stnameLen := int(r[1])
			r = r[2:]
			filename := string(r[:filenameLen])
			r = r[filenameLen+fmnameLen+stnameLen:]
			r = decodeXDVSpecFields(&spec, r)
			ExecXDVFontDef(ctx, st, fontnum, filename, 0, spec)
		} else {
			filename := string(r[:filenameLen])
			r = r[filenameLen:]
			index := int(fixed.DecodeU32(r))
			r = r[4:]
			r = decodeXDVSpecFields(&spec, r)
			ExecXDVFontDef(ctx, st, fontnum, filename, index, spec)
		}
		return true

	case XDVTextGlyphs:
		n := int(fixed.DecodeS16(rest))
		chars := make([]uint16, n)
		r := rest[2:]
		for i := range chars {
			chars[i] = fixed.DecodeU16(r)
			r = r[2:]
		}
		execXDVGlyphsCommon(ctx, st, r, chars)
		return true

	case XDVGlyphs:
		execXDVGlyphsCommon(ctx, st, rest, nil)
		return true

	default:
		return false
	}
}

// decodeXDVSpecFields reads the flag-gated colored/extend/slant/embolden/
// variations fields following an XDV_NATIVE_FONT_DEF's fixed header,
// returning the remaining buffer.
func decodeXDVSpecFields(spec *XDVFontSpec, r []byte) []byte {
	if spec.Flags&XDVFlagColored != 0 {
		spec.RGBA = fixed.DecodeU32(r)
		r = r[4:]
	}
	if spec.Flags&XDVFlagExtend != 0 {
		spec.Extend = fixed.DecodeS32(r)
		r = r[4:]
	}
	if spec.Flags&XDVFlagSlant != 0 {
		spec.Slant = fixed.DecodeS32(r)
		r = r[4:]
	}
	if spec.Flags&XDVFlagEmbolden != 0 {
		spec.Bold = fixed.DecodeS32(r)
		r = r[4:]
	}
	if spec.Flags&XDVFlagVariations != 0 {
		n := int(fixed.DecodeS16(r))
		r = r[2:]
		r = r[n*4:]
	}
	return r
}

// execXDVGlyphsCommon parses the width/dx/dy/glyphs fields shared by
// XDV_GLYPHS and XDV_TEXT_GLYPHS and dispatches to ExecXDVGlyphs.
func execXDVGlyphsCommon(ctx *Context, st *State, r []byte, chars []uint16) {
	width := fixed.DecodeFixed(r)
	r = r[4:]
	numGlyphs := int(fixed.DecodeU16(r))
	r = r[2:]

	dx := make([]fixed.T, numGlyphs)
	dy := make([]fixed.T, numGlyphs)
	for i := 0; i < numGlyphs; i++ {
		dx[i] = fixed.DecodeFixed(r)
		r = r[4:]
		dy[i] = fixed.DecodeFixed(r)
		r = r[4:]
	}
	glyphs := make([]uint16, numGlyphs)
	for i := 0; i < numGlyphs; i++ {
		glyphs[i] = fixed.DecodeU16(r)
		r = r[2:]
	}

	ExecXDVGlyphs(ctx, st, width, chars, dx, fixed.Make(0), dy, glyphs)
}

// Interp dispatches one instruction against ctx's root state (dvi_interp).
func Interp(ctx *Context, buf []byte) bool {
	return InterpSub(ctx, ctx.Root, buf)
}

// InterpBOP pre-scans a page's opening PUSH/POP/XXXn run to learn its
// dimensions without a full replay, returning the byte offset the scan
// stopped at (dvi_interp_bop).
func InterpBOP(buf []byte, prescan func(text string, width, height *float64, landscape *bool)) (width, height float64, landscape bool, consumed int) {
	width, height = 612, 792
	if len(buf) == 0 {
		return width, height, false, -1
	}
	pos := 45 // size of BOP
	for pos < len(buf) {
		op := buf[pos]
		if op == Push || op == Pop {
			pos++
			continue
		}
		if op < XXX1 || op > XXX4 {
			break
		}
		n := int(op-XXX1) + 1
		if pos+1+n > len(buf) {
			break
		}
		pos++
		size := int(fixed.DecodeUB(buf[pos:], n))
		pos += n
		if pos+size > len(buf) {
			break
		}
		if prescan != nil {
			prescan(string(buf[pos:pos+size]), &width, &height, &landscape)
		}
		pos += size
	}
	return width, height, landscape, pos
}

// InterpInit dispatches the XXXn special at the start of buf (if buf starts
// with one) to ctx.InitSpecialHandler (dvi_interp_init). IncDvi's fontdef
// replay calls it for every special it passes before a page's main replay.
func InterpInit(ctx *Context, st *State, buf []byte) {
	if len(buf) == 0 || buf[0] < XXX1 || buf[0] > XXX4 {
		return
	}
	n := int(buf[0]-XXX1) + 1
	if 1+n > len(buf) {
		return
	}
	size := int(fixed.DecodeUB(buf[1:], n))
	if 1+n+size > len(buf) {
		return
	}
	if ctx.InitSpecialHandler != nil {
		ctx.InitSpecialHandler(ctx, st, string(buf[1+n:1+n+size]))
	}
}
