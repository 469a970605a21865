package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRootUsesXDGCacheHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	got, err := Root()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(dir, "texpresso")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if st, err := os.Stat(got); err != nil || !st.IsDir() {
		t.Fatalf("Root() did not create %q", got)
	}
}

func TestRootFallsBackToHomeCache(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", home)

	got, err := Root()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(home, ".cache", "texpresso")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
