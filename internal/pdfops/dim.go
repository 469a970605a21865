// dim.go - dimension literal parsing shared by xform_spec and pdf: specials
// (§4.4, dvi_special.c's pdim/punit; mirrors internal/dvi/incdvi.go's
// prescan-only copy of the same grammar, duplicated rather than exported
// because the two packages parse dimensions embedded in otherwise
// unrelated grammars and neither should import the other for it)
package pdfops

func skipWS(s string) string {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return s[i:]
}

// parsePDFDim parses one pdim token ("<float><unit>") from the front of s
// and returns how many bytes it consumed, applying the same 800/803
// TeX-to-PDF point correction dvi_special.c's pdim applies.
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
	if len(unit) >= 4 && unit[:4] == "true" {
		unit = unit[4:]
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
