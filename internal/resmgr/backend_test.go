package resmgr

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDirBackendResolvesPDFRelativeToDocumentDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "figure.pdf"), []byte("%PDF-fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	b := NewDirBackend(dir)
	defer b.Close()

	rc, err := b.OpenFile(ResPDF, "figure.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if rc == nil {
		t.Fatal("expected figure.pdf to be found")
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-fake" {
		t.Fatalf("content = %q", data)
	}
}

func TestDirBackendMissingFileReturnsNilNotError(t *testing.T) {
	b := NewDirBackend(t.TempDir())
	rc, err := b.OpenFile(ResPDF, "nonexistent.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc != nil {
		t.Fatal("expected a nil stream for a missing resource")
	}
}

func TestDirBackendNonPDFKindIsLiteral(t *testing.T) {
	dir := t.TempDir()
	// a non-PDF kind is taken literally, not resolved against documentDir
	literalPath := filepath.Join(dir, "cmr10.tfm")
	if err := os.WriteFile(literalPath, []byte("tfm-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	b := NewDirBackend("/some/unrelated/dir")
	rc, err := b.OpenFile(ResTFM, literalPath)
	if err != nil {
		t.Fatal(err)
	}
	if rc == nil {
		t.Fatal("expected the literal absolute path to resolve")
	}
	rc.Close()
}
