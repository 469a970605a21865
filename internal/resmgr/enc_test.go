package resmgr

import (
	"strings"
	"testing"
)

func TestLoadEncoding(t *testing.T) {
	src := `% comment
/TeXBase1Encoding [
/space /exclam /quotedbl
% a mid-table comment
/numbersign
] def
`
	enc, err := LoadEncoding(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if enc.Name != "TeXBase1Encoding" {
		t.Fatalf("Name = %q", enc.Name)
	}
	if enc.Get(0) != "space" || enc.Get(1) != "exclam" || enc.Get(3) != "numbersign" {
		t.Fatalf("entries = %v", enc.Entries[:4])
	}
	if idx := enc.LookupByGlyphName("numbersign"); idx != 3 {
		t.Fatalf("LookupByGlyphName(numbersign) = %d, want 3", idx)
	}
	if idx := enc.LookupByGlyphName("nonexistent"); idx != -1 {
		t.Fatalf("LookupByGlyphName(nonexistent) = %d, want -1", idx)
	}
}
