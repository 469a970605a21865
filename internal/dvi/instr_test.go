package dvi

import "testing"

func TestInstrSizeFixedWidthOpcodes(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want int
	}{
		{"SET_CHAR_0", []byte{SetChar0}, 1},
		{"SET_CHAR_127", []byte{SetChar127}, 1},
		{"SET1", []byte{Set1, 'A'}, 2},
		{"SET4", []byte{Set4, 0, 0, 0, 1}, 5},
		{"SET_RULE", append([]byte{SetRule}, make([]byte, 8)...), 9},
		{"NOP", []byte{Nop}, 1},
		{"PUSH", []byte{Push}, 1},
		{"BOP", append([]byte{BOP}, make([]byte, 44)...), 45},
		{"POST", append([]byte{POST}, make([]byte, 28)...), 29},
		{"POST_POST", append([]byte{PostPost}, make([]byte, 5)...), 6},
		{"FNT_NUM_0", []byte{FntNum0}, 1},
		{"FNT_NUM_63", []byte{FntNum63}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := InstrSize(c.buf, VersionStandard)
			if got != c.want {
				t.Fatalf("InstrSize(%s) = %d, want %d", c.name, got, c.want)
			}
		})
	}
}

func TestInstrSizeXXXIncludesOperandLength(t *testing.T) {
	buf := []byte{XXX1, 5, 'h', 'e', 'l', 'l', 'o'}
	if got := InstrSize(buf, VersionStandard); got != 7 {
		t.Fatalf("InstrSize(XXX1) = %d, want 7", got)
	}
}

func TestInstrSizeNeedsMoreBytes(t *testing.T) {
	buf := []byte{XXX1}
	got := InstrSize(buf, VersionStandard)
	if got >= 0 {
		t.Fatalf("InstrSize(truncated XXX1) = %d, want a negative need-more sentinel", got)
	}
}

func TestInstrSizeFntDefCombinesAreaAndNameAsU16(t *testing.T) {
	buf := make([]byte, 16)
	buf[0] = FntDef1
	buf[14] = 0 // area length
	buf[15] = 5 // name length
	// area=0, so decode_u16(buf[14:]) == name length exactly (§4.3.1 quirk).
	buf = append(buf, []byte("cmr10")...)
	if got := InstrSize(buf, VersionStandard); got != 2+14+5 {
		t.Fatalf("InstrSize(FNT_DEF1) = %d, want %d", got, 2+14+5)
	}
}

func TestInstrSizePTEXDirIsUnrecognized(t *testing.T) {
	if got := InstrSize([]byte{PTEXDir}, VersionStandard); got != 0 {
		t.Fatalf("InstrSize(PTEXDIR) = %d, want 0 (not dispatched by this decoder)", got)
	}
}

func TestPreambleSize(t *testing.T) {
	buf := append([]byte{PRE, byte(VersionStandard)}, make([]byte, 12)...)
	buf = append(buf, 0) // comment length 0
	if got := PreambleSize(buf); got != 15 {
		t.Fatalf("PreambleSize = %d, want 15", got)
	}
}

func TestXDVGlyphsInstrSize(t *testing.T) {
	buf := make([]byte, 7)
	buf[0] = XDVGlyphs
	buf[5] = 0
	buf[6] = 2 // 2 glyphs
	if got := InstrSize(buf, VersionXDV6); got != 7+20 {
		t.Fatalf("InstrSize(XDV_GLYPHS) = %d, want %d", got, 7+20)
	}
}
