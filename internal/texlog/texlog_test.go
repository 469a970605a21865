package texlog

import (
	"os"
	"testing"
)

func TestWarnDedupesByKey(t *testing.T) {
	Reset()
	// Warn writes to stderr; this test points os.Stderr at a pipe and
	// counts the warnings written, expecting one per distinct key.
	old := os.Stderr
	defer func() { os.Stderr = old }()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w

	Warn("missing:foo.tfm", "could not load %s", "foo.tfm")
	Warn("missing:foo.tfm", "could not load %s", "foo.tfm")
	Warn("missing:bar.tfm", "could not load %s", "bar.tfm")

	w.Close()
	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	out := string(buf[:n])

	count := 0
	for i := 0; i+len("could not load") <= len(out); i++ {
		if out[i:i+len("could not load")] == "could not load" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 distinct warnings written, got %d in %q", count, out)
	}
}

func TestHadWarningTracksAcrossDedupedCalls(t *testing.T) {
	Reset()
	if HadWarning() {
		t.Fatal("expected no warning recorded right after Reset")
	}

	old := os.Stderr
	defer func() { os.Stderr = old }()
	_, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w

	Warn("dup-key", "first")
	Warn("dup-key", "deduped repeat")
	w.Close()

	if !HadWarning() {
		t.Fatal("expected HadWarning to report true even for a deduped key")
	}

	Reset()
	if HadWarning() {
		t.Fatal("expected Reset to clear the warning flag")
	}
}
