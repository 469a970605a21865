package resmgr

import (
	"bytes"
	"io"
	"testing"
)

// fakeBackend is a minimal in-memory Backend for exercising Manager without
// touching the filesystem.
type fakeBackend struct {
	files map[ResKind]map[string][]byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{files: map[ResKind]map[string][]byte{}}
}

func (b *fakeBackend) put(kind ResKind, name string, data []byte) {
	m, ok := b.files[kind]
	if !ok {
		m = map[string][]byte{}
		b.files[kind] = m
	}
	m[name] = data
}

func (b *fakeBackend) OpenFile(kind ResKind, name string) (io.ReadCloser, error) {
	m, ok := b.files[kind]
	if !ok {
		return nil, nil
	}
	data, ok := m[name]
	if !ok {
		return nil, nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *fakeBackend) Close() error { return nil }

func TestManagerGetTexFontLoadsTFM(t *testing.T) {
	backend := newFakeBackend()
	backend.put(ResTFM, "cmr10.tfm", buildTFM(t))

	m := New(backend)
	defer m.Close()

	font := m.GetTexFont("cmr10")
	if font.TFM == nil {
		t.Fatal("expected TFM metrics to be loaded")
	}
	if font.Outline != nil || font.VF != nil {
		t.Fatal("expected no outline or VF binding without a fontmap entry")
	}

	// a second call must return the cached instance, not reload
	if m.GetTexFont("cmr10") != font {
		t.Fatal("expected GetTexFont to cache by name")
	}
}

func TestManagerGetEncodingAndInvalidate(t *testing.T) {
	backend := newFakeBackend()
	backend.put(ResENC, "8r.enc", []byte("/TeXBase1Encoding [ /space /exclam ] def\n"))

	m := New(backend)
	defer m.Close()

	enc := m.GetEncoding("8r")
	if enc == nil || enc.Name != "TeXBase1Encoding" {
		t.Fatalf("GetEncoding(8r) = %+v", enc)
	}

	m.Invalidate(ResENC, "8r")
	// the backend file is still there, so a post-invalidation load succeeds again
	enc2 := m.GetEncoding("8r")
	if enc2 == nil || enc2 == enc {
		t.Fatal("expected invalidation to force a fresh load")
	}
}

func TestManagerGetEncodingMissingReturnsNil(t *testing.T) {
	m := New(newFakeBackend())
	defer m.Close()
	if m.GetEncoding("nonexistent") != nil {
		t.Fatal("expected a nil Encoding for a missing resource")
	}
}
