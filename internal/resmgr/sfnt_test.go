package resmgr

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildSFNT constructs a minimal sfnt buffer with a single "cmap" table
// containing one (platform, encoding) subtable entry. The subtable itself
// is never parsed by cmapSubtable (it only needs the offset to exist), so
// no subtable body is written: the offset points at the end of the buffer.
func buildSFNT(t *testing.T, platform, encoding uint16) []byte {
	t.Helper()

	const numTables = 1
	header := &bytes.Buffer{}
	binary.Write(header, binary.BigEndian, uint32(0x00010000)) // scaler type
	binary.Write(header, binary.BigEndian, uint16(numTables))
	binary.Write(header, binary.BigEndian, uint16(0)) // searchRange
	binary.Write(header, binary.BigEndian, uint16(0)) // entrySelector
	binary.Write(header, binary.BigEndian, uint16(0)) // rangeShift

	cmapOffset := uint32(12 + 16) // right after the one table directory record

	dir := &bytes.Buffer{}
	dir.WriteString("cmap")
	binary.Write(dir, binary.BigEndian, uint32(0)) // checksum, unchecked
	binary.Write(dir, binary.BigEndian, cmapOffset)
	binary.Write(dir, binary.BigEndian, uint32(12)) // length

	cmap := &bytes.Buffer{}
	binary.Write(cmap, binary.BigEndian, uint16(0)) // version
	binary.Write(cmap, binary.BigEndian, uint16(1)) // numTables
	binary.Write(cmap, binary.BigEndian, platform)
	binary.Write(cmap, binary.BigEndian, encoding)
	binary.Write(cmap, binary.BigEndian, uint32(4+8)) // subtable offset, relative to cmap start

	out := &bytes.Buffer{}
	out.Write(header.Bytes())
	out.Write(dir.Bytes())
	out.Write(cmap.Bytes())
	return out.Bytes()
}

func TestHasAATCharmap(t *testing.T) {
	if !HasAATCharmap(buildSFNT(t, 7, 2)) {
		t.Fatal("expected an AAT (platform=7, encoding=2) charmap to be detected")
	}
	if HasAATCharmap(buildSFNT(t, 3, 1)) {
		t.Fatal("a Unicode BMP charmap should not be reported as AAT")
	}
}

func TestPreferredCharmapPlatform(t *testing.T) {
	plat, enc := PreferredCharmapPlatform(buildSFNT(t, 7, 2))
	if plat != 7 || enc != 2 {
		t.Fatalf("got (%d, %d), want (7, 2)", plat, enc)
	}
	plat, enc = PreferredCharmapPlatform(buildSFNT(t, 3, 1))
	if plat != 3 || enc != 1 {
		t.Fatalf("got (%d, %d), want default (3, 1)", plat, enc)
	}
}

func TestParseSFNTRejectsShortBuffer(t *testing.T) {
	if _, err := parseSFNT([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for a too-short buffer")
	}
}
