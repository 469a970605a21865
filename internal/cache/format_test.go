package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatCachePaths(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	fc, err := NewFormatCache()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fmtPath, depsPath := fc.Paths("texlive-", "plain")
	if filepath.Base(fmtPath) != "texlive-plain.fmt" {
		t.Fatalf("fmtPath = %q", fmtPath)
	}
	if filepath.Base(depsPath) != "texlive-plain.deps" {
		t.Fatalf("depsPath = %q", depsPath)
	}
}

func TestValidateTeXLiveAcceptsUnchangedDependencies(t *testing.T) {
	dir := t.TempDir()
	depFile := filepath.Join(dir, "a.tex")
	if err := os.WriteFile(depFile, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := os.Stat(depFile)
	if err != nil {
		t.Fatal(err)
	}
	resolve := func(name string) (string, bool) {
		if name == "a.tex" {
			return depFile, true
		}
		return "", false
	}

	depsPath := filepath.Join(dir, "x.deps")
	deps := []Dependency{{Name: "a.tex", Size: st.Size(), ModTime: st.ModTime().Unix()}}
	if err := RecordTeXLive(depsPath, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ValidateTeXLive(depsPath, resolve) {
		t.Fatal("expected validation to succeed: dependency unchanged on disk")
	}
}

func TestValidateTeXLiveRejectsModifiedDependency(t *testing.T) {
	dir := t.TempDir()
	depFile := filepath.Join(dir, "a.tex")
	if err := os.WriteFile(depFile, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := os.Stat(depFile)
	if err != nil {
		t.Fatal(err)
	}
	resolve := func(name string) (string, bool) {
		if name == "a.tex" {
			return depFile, true
		}
		return "", false
	}

	depsPath := filepath.Join(dir, "x.deps")
	deps := []Dependency{{Name: "a.tex", Size: st.Size(), ModTime: st.ModTime().Unix()}}
	if err := RecordTeXLive(depsPath, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	later := time.Unix(st.ModTime().Unix()+3600, 0)
	if err := os.Chtimes(depFile, later, later); err != nil {
		t.Fatal(err)
	}

	if ValidateTeXLive(depsPath, resolve) {
		t.Fatal("expected validation to fail: dependency's mtime changed")
	}
}

func TestValidateTeXLiveRejectsMissingDependency(t *testing.T) {
	dir := t.TempDir()
	depsPath := filepath.Join(dir, "x.deps")
	deps := []Dependency{{Name: "gone.tex", Size: 1, ModTime: 0}}
	if err := RecordTeXLive(depsPath, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolve := func(name string) (string, bool) { return "", false }
	if ValidateTeXLive(depsPath, resolve) {
		t.Fatal("expected validation to fail: dependency no longer resolves")
	}
}

func TestValidateTeXLiveRejectsDependencyThatMovedOnDisk(t *testing.T) {
	dir := t.TempDir()
	depFile := filepath.Join(dir, "a.tex")
	if err := os.WriteFile(depFile, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := os.Stat(depFile)
	if err != nil {
		t.Fatal(err)
	}

	depsPath := filepath.Join(dir, "x.deps")
	deps := []Dependency{{Name: "a.tex", Size: st.Size(), ModTime: st.ModTime().Unix()}}
	if err := RecordTeXLive(depsPath, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	moved := filepath.Join(dir, "a-moved.tex")
	if err := os.WriteFile(moved, []byte("hello, but different size"), 0o644); err != nil {
		t.Fatal(err)
	}
	resolve := func(name string) (string, bool) { return moved, true }

	if ValidateTeXLive(depsPath, resolve) {
		t.Fatal("expected validation to fail: name now resolves to a differently-sized file")
	}
}

func TestValidateTeXLiveMissingSidecarIsInvalid(t *testing.T) {
	resolve := func(name string) (string, bool) { return "", false }
	if ValidateTeXLive(filepath.Join(t.TempDir(), "nonexistent.deps"), resolve) {
		t.Fatal("expected validation to fail: no sidecar file")
	}
}

func TestTectonicVersionRoundTrip(t *testing.T) {
	depsPath := filepath.Join(t.TempDir(), "x.deps")
	sum := []byte("abcdef0123456789")

	if err := RecordTectonic(depsPath, sum); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ValidateTectonic(depsPath, sum) {
		t.Fatal("expected validation to succeed against the recorded checksum")
	}
	if ValidateTectonic(depsPath, []byte("different")) {
		t.Fatal("expected validation to fail against a different checksum")
	}
}

func TestTectonicVersionAbsentMarker(t *testing.T) {
	depsPath := filepath.Join(t.TempDir(), "x.deps")
	if err := RecordTectonic(depsPath, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ValidateTectonic(depsPath, nil) {
		t.Fatal("expected the absent marker to validate against a nil checksum")
	}
	if ValidateTectonic(depsPath, []byte("anything")) {
		t.Fatal("expected the absent marker not to validate against a real checksum")
	}
}

func TestFormatCacheValid(t *testing.T) {
	dir := t.TempDir()
	fmtPath := filepath.Join(dir, "x.fmt")
	depsPath := filepath.Join(dir, "x.deps")

	fc := &FormatCache{dir: dir}
	if fc.Valid(fmtPath, depsPath, func(string) bool { return true }) {
		t.Fatal("expected invalid: neither file exists yet")
	}

	os.WriteFile(fmtPath, []byte("fmt"), 0o644)
	os.WriteFile(depsPath, []byte("deps"), 0o644)

	if !fc.Valid(fmtPath, depsPath, func(string) bool { return true }) {
		t.Fatal("expected valid: both files exist and dependency check passes")
	}
	if fc.Valid(fmtPath, depsPath, func(string) bool { return false }) {
		t.Fatal("expected invalid: dependency check itself failed")
	}
}
