// vf.go - virtual font decoding (§4.2, §4.3.4 "Enter VF")
package resmgr

import (
	"fmt"

	"github.com/texpresso-go/texpresso/internal/fixed"
)

const (
	vfLongChar = 242
	vfFntDef1  = 243
	vfFntDef4  = 246
	vfPre      = 247
	vfPost     = 248
	dviVF      = 202 // preamble identification byte for a VF file
)

// VFChar is one character's embedded DVI program.
type VFChar struct {
	DVI   []byte
	Width fixed.T
}

// VFFontDef is one font this VF references by its own local font number,
// resolved to a concrete DviFont by the resource manager at load time.
type VFFontDef struct {
	Checksum    uint32
	ScaleFactor fixed.T
	DesignSize  fixed.T
	Font        *DviFont
}

// VF is a loaded virtual font: a design size, a local font table, and a
// sparse table of byte-code to embedded-DVI-program bindings.
type VF struct {
	DesignSize  fixed.T
	Fonts       map[uint32]*VFFontDef
	Chars       map[uint32]VFChar
	DefaultFont int
}

// vfFontResolver fetches the DviFont for a given font name, used by the
// resource manager while parsing FNT_DEF records embedded in a VF file.
type vfFontResolver func(name string) (*DviFont, error)

// LoadVF parses the PRE/FNT_DEFn/CHAR/POST opcode stream (original_source
// src/dvi/tex_vf.c). resolve binds each referenced font name to a fully
// loaded DviFont via the owning resource manager, so fonts nested inside
// a VF still go through the shared typed caches.
func LoadVF(data []byte, resolve vfFontResolver) (*VF, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("resmgr: vf: file too small")
	}
	if data[0] != vfPre {
		return nil, fmt.Errorf("resmgr: vf: file doesn't start with preamble")
	}
	if data[1] != dviVF {
		return nil, fmt.Errorf("resmgr: vf: invalid preamble id %d", data[1])
	}
	commentLen := int(data[2])
	r := fixed.NewReader(data)
	r.Pos = 3 + commentLen

	vf := &VF{
		Fonts:       make(map[uint32]*VFFontDef),
		Chars:       make(map[uint32]VFChar),
		DefaultFont: -1,
	}
	_ = r.ReadU32() // checksum, unused downstream
	vf.DesignSize = r.ReadFixed()

	for r.Len() > 0 {
		op := r.ReadU8()
		if op == vfPost {
			break
		}
		switch {
		case op <= vfLongChar:
			var length, code, width uint32
			if op == vfLongChar {
				if r.Len() < 12 {
					return nil, fmt.Errorf("resmgr: vf: truncated file")
				}
				length = r.ReadU32()
				code = r.ReadU32()
				width = r.ReadU32()
			} else {
				if r.Len() < 4 {
					return nil, fmt.Errorf("resmgr: vf: truncated file")
				}
				length = uint32(op)
				code = uint32(r.ReadU8())
				width = r.ReadU24()
			}
			if r.Len() < int(length) {
				return nil, fmt.Errorf("resmgr: vf: dvi program runs past end of file")
			}
			start := r.Pos
			r.Pos += int(length)
			vf.Chars[code] = VFChar{DVI: data[start:r.Pos], Width: fixed.Make(int32(width))}

		case op >= vfFntDef1 && op <= vfFntDef4:
			n := int(op) - vfFntDef1 + 1
			if r.Len() < n+13 {
				return nil, fmt.Errorf("resmgr: vf: truncated file")
			}
			fontID := r.ReadUB(n)
			if vf.DefaultFont == -1 {
				vf.DefaultFont = int(fontID)
			}
			checksum := r.ReadU32()
			scaleFactor := r.ReadFixed()
			designSize := r.ReadFixed()
			areaLen := int(r.ReadU8())
			nameLen := areaLen + int(r.ReadU8())
			if r.Len() < nameLen {
				return nil, fmt.Errorf("resmgr: vf: truncated file")
			}
			name := string(data[r.Pos : r.Pos+nameLen])
			r.Pos += nameLen

			font, err := resolve(name)
			if err != nil {
				return nil, fmt.Errorf("resmgr: vf: font %q: %w", name, err)
			}
			vf.Fonts[fontID] = &VFFontDef{
				Checksum:    checksum,
				ScaleFactor: scaleFactor,
				DesignSize:  designSize,
				Font:        font,
			}

		default:
			return nil, fmt.Errorf("resmgr: vf: invalid opcode %d", op)
		}
	}

	return vf, nil
}

// Get returns the embedded DVI program for code, if the VF defines one.
func (vf *VF) Get(code uint32) (VFChar, bool) {
	c, ok := vf.Chars[code]
	return c, ok
}
