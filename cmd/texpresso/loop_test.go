package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/texpresso-go/texpresso/internal/editorproto"
)

// stubSource replays a fixed list of S-expression commands, then io.EOF.
type stubSource struct {
	p   editorproto.SexpParser
	buf []byte
}

func newStubSource(program string) *stubSource {
	return &stubSource{buf: []byte(program)}
}

func (s *stubSource) Next() (editorproto.Value, error) {
	for len(s.buf) > 0 {
		n, v, ok, err := s.p.Feed(s.buf)
		s.buf = s.buf[n:]
		if err != nil {
			return editorproto.Value{}, err
		}
		if ok {
			return v, nil
		}
	}
	return editorproto.Value{}, io.EOF
}

func TestDriveLoopAppliesOpenAndClose(t *testing.T) {
	eng := newTestEngine(t)
	sess := editorproto.NewSession(eng)

	var out bytes.Buffer
	enc := editorproto.NewEncoder(&out, false, false)

	source := newStubSource(`(open "main.tex" "hello") (close "main.tex")`)

	if err := driveLoop(sess, enc, source, false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDriveLoopContinuesPastMalformedCommand(t *testing.T) {
	eng := newTestEngine(t)
	sess := editorproto.NewSession(eng)

	var out bytes.Buffer
	enc := editorproto.NewEncoder(&out, false, false)

	// "bogus-verb" parses fine as an s-expression but ParseCommand rejects
	// the unknown verb; the loop should log it and keep going rather than
	// aborting the whole session.
	source := newStubSource(`(bogus-verb 1 2) (rescan)`)

	if err := driveLoop(sess, enc, source, false, false); err != nil {
		t.Fatalf("expected the loop to survive an unknown verb, got error: %v", err)
	}
}

func TestDriveLoopMirrorsStdoutGrowth(t *testing.T) {
	eng := newTestEngine(t)
	entry := eng.FindFile("stdout")
	eng.VFS().SetEditBytes(entry, []byte("compiling\n"))

	sess := editorproto.NewSession(eng)

	var out bytes.Buffer
	enc := editorproto.NewEncoder(&out, false, false)

	source := newStubSource(`(rescan)`)
	if err := driveLoop(sess, enc, source, false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), `(append out 0 "compiling\n")`) {
		t.Fatalf("expected stdout growth to be mirrored, got %q", out.String())
	}
}

func TestDriveLoopReturnsNilOnEOF(t *testing.T) {
	eng := newTestEngine(t)
	sess := editorproto.NewSession(eng)
	var out bytes.Buffer
	enc := editorproto.NewEncoder(&out, false, false)

	if err := driveLoop(sess, enc, newStubSource(""), false, false); err != nil {
		t.Fatalf("expected nil on immediate EOF, got %v", err)
	}
}
