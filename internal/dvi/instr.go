// instr.go - instruction-length decoder and preamble scan (§4.3.1, §4.3.3)
package dvi

import "github.com/texpresso-go/texpresso/internal/fixed"

// Version identifies the DVI/XDV/VF dialect in play (original_source
// src/dvi/mydvi.h's dvi_version enum).
type Version int

const (
	VersionNone     Version = 0
	VersionStandard Version = 2
	VersionPTeX     Version = 3
	VersionXDV5     Version = 5
	VersionXDV6     Version = 6
	VersionXDV7     Version = 7
	VersionVF       Version = 202
)

// PreambleSize returns the byte length of the PRE record at buf[0], 0 if
// buf doesn't start with PRE, or a negative "need at least n more bytes"
// sentinel (mirrors dvi_preamble_size's CHECK_LEN convention).
func PreambleSize(buf []byte) int {
	if len(buf) <= 0 {
		return -1
	}
	if buf[0] != PRE {
		return 0
	}
	if len(buf) <= 14 {
		return -15
	}
	return 15 + int(buf[14])
}

// InstrSize returns the byte length of the instruction at buf[0] for the
// given dialect version, or a negative "need at least n more bytes" value
// when buf is too short to tell, or 0 for an opcode this decoder doesn't
// understand (PTEXDIR, an unrecognized XDV flag combination, ...).
func InstrSize(buf []byte, version Version) int {
	if len(buf) <= 0 {
		return -1
	}
	op := buf[0]

	if op <= SetChar127 {
		return 1
	}
	if op >= FntNum0 && op <= FntNum63 {
		return 1
	}

	switch op {
	case Set1, Put1, Right1, Down1, Fnt1, W1, X1, Y1, Z1:
		return 2
	case Set2, Put2, Right2, Down2, Fnt2, W2, X2, Y2, Z2:
		return 3
	case Set3, Put3, Right3, Down3, Fnt3, W3, X3, Y3, Z3:
		return 4
	case Set4, Put4, Right4, Down4, Fnt4, W4, X4, Y4, Z4:
		return 5

	case SetRule, PutRule:
		return 9

	case Nop, EOP, Push, Pop, W0, X0, Y0, Z0, Padding, BeginReflect, EndReflect:
		return 1

	case BOP:
		return 45

	case XXX1:
		if len(buf) <= 1 {
			return -2
		}
		return 2 + int(buf[1])
	case XXX2:
		if len(buf) <= 2 {
			return -3
		}
		return 3 + int(fixed.DecodeU16(buf[1:]))
	case XXX3:
		if len(buf) <= 3 {
			return -4
		}
		return 4 + int(fixed.DecodeU24(buf[1:]))
	case XXX4:
		if len(buf) <= 4 {
			return -5
		}
		return 5 + int(fixed.DecodeU32(buf[1:]))

	case FntDef1, FntDef2, FntDef3, FntDef4:
		offset := 14 + int(op) - int(FntDef1)
		if len(buf) <= offset+1 {
			return -(offset + 2)
		}
		return 2 + offset + int(fixed.DecodeU16(buf[offset:]))

	case PRE:
		return PreambleSize(buf)

	case POST:
		return 29

	case PostPost:
		return 6

	case XDVNativeFontDef:
		return xdvNativeFontDefSize(buf, version)

	case XDVGlyphs:
		if len(buf) <= 6 {
			return -7
		}
		n := fixed.DecodeU16(buf[5:])
		return 7 + 10*int(n)

	case XDVTextGlyphs:
		if len(buf) <= 3 {
			return -4
		}
		size := 3
		l := fixed.DecodeU16(buf[1:])
		size += 2 * int(l)
		size += 4
		if len(buf) <= size+2 {
			return -(size + 3)
		}
		n := fixed.DecodeU16(buf[size:])
		size += 2
		size += 10 * int(n)
		return size

	default:
		return 0
	}
}

func xdvNativeFontDefSize(buf []byte, version Version) int {
	if len(buf) <= 11 {
		return -12
	}
	flags := fixed.DecodeU16(buf[9:])
	psnameLen := int(buf[11])

	size := 16 + psnameLen

	if flags&^XDVFlagAll != 0 {
		return 0
	}
	if flags&XDVFlagColored != 0 {
		size += 4
	}
	if flags&XDVFlagExtend != 0 {
		size += 4
	}
	if flags&XDVFlagSlant != 0 {
		size += 4
	}
	if flags&XDVFlagEmbolden != 0 {
		size += 4
	}
	if flags&XDVFlagVariations != 0 {
		if version != VersionXDV5 {
			return 0
		}
		if len(buf) <= size+2 {
			return -(size + 3)
		}
		numVariations := fixed.DecodeU16(buf[size:])
		size += 2
		size += int(numVariations) * 4
	}
	return size
}
