// xform.go - xform_spec grammar shared by pdf:image, x:, and bt/btrans
// (§4.4, dvi_special.c's parse_xform_or_dim / xform_spec)
package pdfops

import (
	"strings"

	"github.com/texpresso-go/texpresso/internal/render"
	"github.com/texpresso-go/texpresso/internal/resmgr"
)

// XForm is the parsed keyword/value list an xform_spec carries: a user
// matrix plus the rotate/scale/clip/size/page-box modifiers dvi_special.c
// folds into one net transform before applying it to the graphics state.
type XForm struct {
	HasMatrix bool
	Matrix    render.Matrix

	Rotate float64 // degrees, counter-clockwise

	Clip bool

	XScale, YScale float64 // default 1

	HasWidth, HasHeight, HasDepth bool
	Width, Height, Depth          float64 // points

	Page    int // 1-based, default 1
	PageBox resmgr.PageBox
}

// ParseXForm parses one xform_spec token run (the text following
// `pdf:<xform>image` or `x:` or `bt`/`btrans`), matching
// parse_xform_or_dim's keyword loop.
func ParseXForm(s string) XForm {
	x := XForm{XScale: 1, YScale: 1, Page: 1}
	for len(s) > 0 {
		s = skipWS(s)
		if s == "" {
			break
		}
		kw, rest := splitToken(s)
		switch kw {
		case "matrix":
			var vals [6]float64
			for i := range vals {
				rest = skipWS(rest)
				v, n := parseFloatToken(rest)
				vals[i] = v
				rest = rest[n:]
			}
			x.Matrix = render.Matrix{A: vals[0], B: vals[1], C: vals[2], D: vals[3], E: vals[4], F: vals[5]}
			x.HasMatrix = true
		case "rotate":
			rest = skipWS(rest)
			v, n := parseFloatToken(rest)
			x.Rotate = v
			rest = rest[n:]
		case "clip":
			x.Clip = true
		case "scale":
			rest = skipWS(rest)
			v, n := parseFloatToken(rest)
			x.XScale, x.YScale = v, v
			rest = rest[n:]
		case "xscale":
			rest = skipWS(rest)
			v, n := parseFloatToken(rest)
			x.XScale = v
			rest = rest[n:]
		case "yscale":
			rest = skipWS(rest)
			v, n := parseFloatToken(rest)
			x.YScale = v
			rest = rest[n:]
		case "width":
			rest = skipWS(rest)
			v, n, _ := parsePDFDim(rest)
			x.Width, x.HasWidth = v, true
			rest = rest[n:]
		case "height":
			rest = skipWS(rest)
			v, n, _ := parsePDFDim(rest)
			x.Height, x.HasHeight = v, true
			rest = rest[n:]
		case "depth":
			rest = skipWS(rest)
			v, n, _ := parsePDFDim(rest)
			x.Depth, x.HasDepth = v, true
			rest = rest[n:]
		case "page":
			rest = skipWS(rest)
			v, n := parseFloatToken(rest)
			x.Page = int(v)
			rest = rest[n:]
		case "pagebox":
			rest = skipWS(rest)
			name, r2 := splitToken(rest)
			x.PageBox = parsePageBoxName(name)
			rest = r2
		default:
			// unrecognized keyword: skip its bare token and move on rather
			// than aborting the whole xform_spec.
		}
		s = rest
	}
	return x
}

// ToMatrix folds the parsed modifiers into one net transform: the matrix,
// pre-composed with the scale, pre-composed with the rotation, so a point
// is rotated first, then scaled, then mapped through the matrix.
func (x XForm) ToMatrix() render.Matrix {
	m := render.Identity
	if x.HasMatrix {
		m = x.Matrix
	}
	m = m.PreScale(x.XScale, x.YScale)
	if x.Rotate != 0 {
		m = m.PreConcat(rotationMatrix(x.Rotate))
	}
	return m
}

func rotationMatrix(degrees float64) render.Matrix {
	rad := degrees * 3.14159265358979323846 / 180
	cos, sin := cosApprox(rad), sinApprox(rad)
	return render.Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// cosApprox/sinApprox avoid importing "math" purely for two trig calls in
// a rarely-exercised path; a short Taylor series is plenty accurate for
// the small rotation angles real documents use.
func cosApprox(x float64) float64 {
	x = wrapPi(x)
	x2 := x * x
	return 1 - x2/2 + x2*x2/24 - x2*x2*x2/720
}

func sinApprox(x float64) float64 {
	x = wrapPi(x)
	x2 := x * x
	return x * (1 - x2/6 + x2*x2/120 - x2*x2*x2/5040)
}

func wrapPi(x float64) float64 {
	const twoPi = 2 * 3.14159265358979323846
	for x > 3.14159265358979323846 {
		x -= twoPi
	}
	for x < -3.14159265358979323846 {
		x += twoPi
	}
	return x
}

func parsePageBoxName(name string) resmgr.PageBox {
	switch strings.ToLower(name) {
	case "cropbox":
		return resmgr.CropBox
	case "artbox":
		return resmgr.ArtBox
	case "bleedbox":
		return resmgr.BleedBox
	case "trimbox":
		return resmgr.TrimBox
	default:
		return resmgr.MediaBox
	}
}

func splitToken(s string) (tok, rest string) {
	i := 0
	for i < len(s) && s[i] != ' ' {
		i++
	}
	tok = s[:i]
	if i < len(s) {
		rest = s[i+1:]
	}
	return tok, rest
}

func parseFloatToken(s string) (v float64, consumed int) {
	tok, _ := splitToken(s)
	v, _ = parseSignedFloat(tok)
	return v, len(tok)
}

func parseSignedFloat(s string) (float64, bool) {
	i, neg := 0, false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
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
	if neg {
		v = -v
	}
	return v, true
}
