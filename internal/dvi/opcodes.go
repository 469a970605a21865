// opcodes.go - DVI/XDV opcode table (§4.3.1)
package dvi

// Opcode is one byte of DVI/XDV bytecode.
type Opcode = uint8

const (
	SetChar0   Opcode = 0
	SetChar127 Opcode = 127
	Set1       Opcode = 128
	Set2       Opcode = 129
	Set3       Opcode = 130
	Set4       Opcode = 131
	SetRule    Opcode = 132
	Put1       Opcode = 133
	Put2       Opcode = 134
	Put3       Opcode = 135
	Put4       Opcode = 136
	PutRule    Opcode = 137
	Nop        Opcode = 138
	BOP        Opcode = 139
	EOP        Opcode = 140
	Push       Opcode = 141
	Pop        Opcode = 142
	Right1     Opcode = 143
	Right2     Opcode = 144
	Right3     Opcode = 145
	Right4     Opcode = 146
	W0         Opcode = 147
	W1         Opcode = 148
	W2         Opcode = 149
	W3         Opcode = 150
	W4         Opcode = 151
	X0         Opcode = 152
	X1         Opcode = 153
	X2         Opcode = 154
	X3         Opcode = 155
	X4         Opcode = 156
	Down1      Opcode = 157
	Down2      Opcode = 158
	Down3      Opcode = 159
	Down4      Opcode = 160
	Y0         Opcode = 161
	Y1         Opcode = 162
	Y2         Opcode = 163
	Y3         Opcode = 164
	Y4         Opcode = 165
	Z0         Opcode = 166
	Z1         Opcode = 167
	Z2         Opcode = 168
	Z3         Opcode = 169
	Z4         Opcode = 170
	FntNum0    Opcode = 171
	FntNum63   Opcode = 234
	Fnt1       Opcode = 235
	Fnt2       Opcode = 236
	Fnt3       Opcode = 237
	Fnt4       Opcode = 238
	XXX1       Opcode = 239
	XXX2       Opcode = 240
	XXX3       Opcode = 241
	XXX4       Opcode = 242
	FntDef1    Opcode = 243
	FntDef2    Opcode = 244
	FntDef3    Opcode = 245
	FntDef4    Opcode = 246
	PRE        Opcode = 247
	POST       Opcode = 248
	PostPost   Opcode = 249
	Padding    Opcode = 223
	BeginReflect Opcode = 250
	EndReflect   Opcode = 251

	XDVNativeFontDef Opcode = 252
	XDVGlyphs        Opcode = 253
	XDVTextGlyphs    Opcode = 254
	PTEXDir          Opcode = 255
)

// XDVGlyphString is out of the single-byte opcode range (the original C
// enum gives it 1000 as a internal marker, never an actual wire byte); it is
// never produced by instr_size/dvi_interp_sub's opcode switch in practice,
// kept only for symmetry with the reference opcode table.
const XDVGlyphString = 1000

// XDV native-font-def flag bits gating variable-length fields (§4.3.1).
const (
	XDVFlagVertical   uint16 = 0x0100
	XDVFlagColored    uint16 = 0x0200
	XDVFlagVariations uint16 = 0x0800
	XDVFlagExtend     uint16 = 0x1000
	XDVFlagSlant      uint16 = 0x2000
	XDVFlagEmbolden   uint16 = 0x4000
	XDVFlagAll        = XDVFlagSlant | XDVFlagEmbolden | XDVFlagVariations |
		XDVFlagExtend | XDVFlagColored | XDVFlagVertical
)

// IsFontDef reports whether op introduces a font binding (TeX FNT_DEFn or
// XDV's native font def).
func IsFontDef(op Opcode) bool {
	return (op >= FntDef1 && op <= FntDef4) || op == XDVNativeFontDef
}

// OpName returns a debug name for op, mirroring dvi_opname.
func OpName(op Opcode) string {
	if op <= SetChar127 {
		return "SET_CHAR"
	}
	if op >= FntNum0 && op <= FntNum63 {
		return "FNT_NUM"
	}
	switch op {
	case Set1, Set2, Set3, Set4:
		return "SET"
	case Put1, Put2, Put3, Put4:
		return "PUT"
	case Right1, Right2, Right3, Right4:
		return "RIGHT"
	case Down1, Down2, Down3, Down4:
		return "DOWN"
	case W0, W1, W2, W3, W4:
		return "W"
	case X0, X1, X2, X3, X4:
		return "X"
	case Y0, Y1, Y2, Y3, Y4:
		return "Y"
	case Z0, Z1, Z2, Z3, Z4:
		return "Z"
	case Fnt1, Fnt2, Fnt3, Fnt4:
		return "FNT"
	case XXX1, XXX2, XXX3, XXX4:
		return "XXX"
	case FntDef1, FntDef2, FntDef3, FntDef4:
		return "FNT_DEF"
	case SetRule:
		return "SET_RULE"
	case PutRule:
		return "PUT_RULE"
	case Nop:
		return "NOP"
	case BOP:
		return "BOP"
	case EOP:
		return "EOP"
	case Push:
		return "PUSH"
	case Pop:
		return "POP"
	case PRE:
		return "PRE"
	case POST:
		return "POST"
	case PostPost:
		return "POST_POST"
	case Padding:
		return "PADDING"
	case BeginReflect:
		return "BEGIN_REFLECT"
	case EndReflect:
		return "END_REFLECT"
	case XDVNativeFontDef:
		return "XDV_NATIVE_FONT_DEF"
	case XDVGlyphs:
		return "XDV_GLYPHS"
	case XDVTextGlyphs:
		return "XDV_TEXT_GLYPHS"
	case PTEXDir:
		return "PTEXDIR"
	default:
		return "(unknown bytecode)"
	}
}
