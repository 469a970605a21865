package resmgr

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseLSRHeader(t *testing.T) {
	cases := []struct {
		line    string
		wantSub string
		wantOK  bool
	}{
		{".:", "", true},
		{"./fonts/tfm:", "fonts/tfm", true},
		{"./fonts/tfm/:", "fonts/tfm", true},
		{"cmr10.tfm", "", false},
		{".", "", false},
	}
	for _, c := range cases {
		sub, ok := parseLSRHeader(c.line)
		if ok != c.wantOK || (ok && sub != c.wantSub) {
			t.Fatalf("parseLSRHeader(%q) = (%q, %v), want (%q, %v)", c.line, sub, ok, c.wantSub, c.wantOK)
		}
	}
}

func TestIndexLSRFileBuildsNameTable(t *testing.T) {
	dir := t.TempDir()
	lsr := filepath.Join(dir, "ls-R")
	content := ".:\nREADME\n./fonts/tfm/cm:\ncmr10.tfm\ncmr12.tfm\n./tex/plain:\nplain.tex\n"
	if err := os.WriteFile(lsr, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	b := &TeXLiveBackend{table: make(map[string]string)}
	b.indexLSRFile(lsr)

	want := map[string]string{
		"README":    filepath.Join(dir, "README"),
		"cmr10.tfm": filepath.Join(dir, "fonts/tfm/cm", "cmr10.tfm"),
		"cmr12.tfm": filepath.Join(dir, "fonts/tfm/cm", "cmr12.tfm"),
		"plain.tex": filepath.Join(dir, "tex/plain", "plain.tex"),
	}
	for name, path := range want {
		got, ok := b.table[name]
		if !ok {
			t.Fatalf("table missing %q", name)
		}
		if got != path {
			t.Fatalf("table[%q] = %q, want %q", name, got, path)
		}
	}
}

func TestIndexLSRFileFirstOccurrenceWins(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	lsr1 := filepath.Join(dir1, "ls-R")
	lsr2 := filepath.Join(dir2, "ls-R")
	if err := os.WriteFile(lsr1, []byte(".:\ncmr10.tfm\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(lsr2, []byte(".:\ncmr10.tfm\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := &TeXLiveBackend{table: make(map[string]string)}
	b.indexLSRFile(lsr1)
	b.indexLSRFile(lsr2)

	if got := b.table["cmr10.tfm"]; got != filepath.Join(dir1, "cmr10.tfm") {
		t.Fatalf("expected the first tree's entry to win, got %q", got)
	}
}

func TestResolveMissingNameReportsNotOK(t *testing.T) {
	b := &TeXLiveBackend{table: map[string]string{}}
	b.once.Do(func() {}) // pretend load already ran with an empty table
	if _, ok := b.Resolve("nonexistent.tfm"); ok {
		t.Fatal("expected Resolve to report not-found for an unindexed name")
	}
}

func TestOpenFilePDFComesFromDocumentDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "doc.pdf"), []byte("%PDF-1.5"), 0o644); err != nil {
		t.Fatal(err)
	}
	b := NewTeXLiveBackend(dir)
	rc, err := b.OpenFile(ResPDF, "doc.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc == nil {
		t.Fatal("expected the document PDF to open without touching kpsewhich")
	}
	rc.Close()
}

func TestOpenFileLooksUpIndexedName(t *testing.T) {
	dir := t.TempDir()
	tfmDir := filepath.Join(dir, "fonts")
	if err := os.MkdirAll(tfmDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tfmDir, "cmr10.tfm"), []byte("tfm-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := &TeXLiveBackend{documentDir: t.TempDir(), table: map[string]string{
		"cmr10.tfm": filepath.Join(tfmDir, "cmr10.tfm"),
	}}
	b.once.Do(func() {})

	rc, err := b.OpenFile(ResTFM, "cmr10.tfm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc == nil {
		t.Fatal("expected the indexed tfm to open")
	}
	rc.Close()

	rc, err = b.OpenFile(ResTFM, "nowhere.tfm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc != nil {
		t.Fatal("expected a nil ReadCloser for an unindexed name")
	}
}
