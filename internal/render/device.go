// device.go - renderer-binding interface: the boundary the DVI interpreter
// draws through (§4.3.4, §4.3.5, component 8)
package render

// Matrix is a 2D affine transform in PDF/DVI convention: x' = a*x + c*y + e,
// y' = b*x + d*y + f.
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity is the neutral transform.
var Identity = Matrix{A: 1, D: 1}

// PreTranslate returns m composed with a translation applied before m.
func (m Matrix) PreTranslate(tx, ty float64) Matrix {
	return Matrix{
		A: m.A, B: m.B, C: m.C, D: m.D,
		E: m.A*tx + m.C*ty + m.E,
		F: m.B*tx + m.D*ty + m.F,
	}
}

// PreScale returns m composed with a scale applied before m.
func (m Matrix) PreScale(sx, sy float64) Matrix {
	return Matrix{A: m.A * sx, B: m.B * sx, C: m.C * sy, D: m.D * sy, E: m.E, F: m.F}
}

// PreConcat returns the general composition of pre applied before m, i.e.
// the matrix of the mapping (x,y) -> m(pre(x,y)); PreTranslate and PreScale
// are the axis-aligned special cases of this (PDF content streams' `cm`
// operator needs the general form, §4.4).
func (m Matrix) PreConcat(pre Matrix) Matrix {
	return Matrix{
		A: m.A*pre.A + m.C*pre.B,
		B: m.B*pre.A + m.D*pre.B,
		C: m.A*pre.C + m.C*pre.D,
		D: m.B*pre.C + m.D*pre.D,
		E: m.A*pre.E + m.C*pre.F + m.E,
		F: m.B*pre.E + m.D*pre.F + m.F,
	}
}

// Color is a device-RGB fill or stroke color (§4.3.6 color specials).
type Color struct{ R, G, B float64 }

// Black is the default fill/stroke color DVI pages start with.
var Black = Color{}

// Glyph is one positioned outline glyph: a font-relative glyph index, the
// code point that produced it (for SyncTeX/copy-paste, §4.3.5), and the CTM
// to draw it under.
type Glyph struct {
	GlyphID uint32
	Char    rune
	CTM     Matrix
}

// Device is the display-list consumer the incremental DVI interpreter draws
// through. It is an external boundary (component 8): texpresso-go never
// implements a concrete GPU/rasterizer Device, only this interface and a
// headless recording implementation for tests.
type Device interface {
	BeginFrame(width, height float64)
	EndFrame()

	// FillRect and StrokeRect draw a DVI rule (§4.3's SET_RULE/PUT_RULE) in
	// unscaled page-space coordinates; x0<=x1, y0<=y1.
	FillRect(x0, y0, x1, y1 float64, color Color)
	StrokeRect(x0, y0, x1, y1 float64, color Color, lineWidth float64)

	// ShowGlyph draws one glyph of fontKey (the resource manager's font
	// cache key) at the given size (in points) and color.
	ShowGlyph(fontKey string, glyphID uint32, ctm Matrix, size float64, color Color)

	// ShowImage draws a raster or embedded-PDF-page image filling the unit
	// square under ctm (§4.3.6 pdf:image).
	ShowImage(imageKey string, ctm Matrix)
}

// SyncCallback receives one rendered character's backward-search coordinates
// (§4.3.4 "If SyncTeX callback is registered..."), invoked in addition to
// (not instead of) any Device glyph emission.
type SyncCallback func(file string, line int, char rune, ctm Matrix, width, height, depth float64)
