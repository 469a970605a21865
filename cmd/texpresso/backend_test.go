package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// withFakeExecutable puts an executable stub named name on PATH for the
// duration of the test, without actually needing the real tool installed.
func withFakeExecutable(t *testing.T, name string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake executables via PATH aren't portable to windows in this test")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)
}

func TestSelectBackendTexliveRequestedButUnavailable(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := selectBackend(options{texlive: true}, t.TempDir())
	if err == nil {
		t.Fatal("expected an error: -texlive requested but kpsewhich not on PATH")
	}
}

func TestSelectBackendNeitherAvailableFails(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := selectBackend(options{tectonicPath: "tectonic"}, t.TempDir())
	if err == nil {
		t.Fatal("expected an error: neither kpsewhich nor tectonic is on PATH")
	}
}

func TestTexliveAvailableReflectsPATH(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if texliveAvailable() {
		t.Fatal("expected kpsewhich to be reported unavailable with an empty PATH")
	}

	withFakeExecutable(t, "kpsewhich")
	if !texliveAvailable() {
		t.Fatal("expected kpsewhich to be reported available once it's on PATH")
	}
}

func TestTectonicAvailableReflectsPATH(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if tectonicAvailable("tectonic") {
		t.Fatal("expected tectonic to be reported unavailable with an empty PATH")
	}

	withFakeExecutable(t, "tectonic")
	if !tectonicAvailable("tectonic") {
		t.Fatal("expected tectonic to be reported available once it's on PATH")
	}
}
