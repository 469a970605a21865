package main

import (
	"bytes"
	"testing"

	"github.com/texpresso-go/texpresso/internal/editorproto"
	"github.com/texpresso-go/texpresso/internal/executor"
	"github.com/texpresso-go/texpresso/internal/render"
	"github.com/texpresso-go/texpresso/internal/resmgr"
)

func newTestEngine(t *testing.T) *executor.Engine {
	t.Helper()
	mgr := resmgr.New(resmgr.NewDirBackend(t.TempDir()))
	return executor.New("test", "", "", mgr, render.NewRecorder())
}

func TestMirrorBufferNilEntryIsNoOp(t *testing.T) {
	var buf bytes.Buffer
	enc := editorproto.NewEncoder(&buf, false, false)
	reported := 0
	if err := mirrorBuffer(enc, editorproto.BufOut, nil, &reported, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 || reported != 0 {
		t.Fatalf("expected no output for a nil entry, got %q", buf.String())
	}
}

func TestMirrorBufferReportsGrowthByteMode(t *testing.T) {
	eng := newTestEngine(t)
	entry := eng.FindFile("stdout")
	eng.VFS().SetEditBytes(entry, []byte("hello"))

	var buf bytes.Buffer
	enc := editorproto.NewEncoder(&buf, false, false)
	reported := 0
	if err := mirrorBuffer(enc, editorproto.BufOut, entry, &reported, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reported != 5 {
		t.Fatalf("reported = %d, want 5", reported)
	}
	if got, want := buf.String(), "(append out 0 \"hello\")\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	buf.Reset()
	eng.VFS().SetEditBytes(entry, []byte("hello world"))
	if err := mirrorBuffer(enc, editorproto.BufOut, entry, &reported, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := buf.String(), "(append out 5 \" world\")\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMirrorBufferReportsTruncation(t *testing.T) {
	eng := newTestEngine(t)
	entry := eng.FindFile("log")
	eng.VFS().SetEditBytes(entry, []byte("one\ntwo\n"))

	var buf bytes.Buffer
	enc := editorproto.NewEncoder(&buf, false, false)
	reported := 8

	eng.VFS().SetEditBytes(entry, []byte("on"))
	if err := mirrorBuffer(enc, editorproto.BufLog, entry, &reported, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reported != 2 {
		t.Fatalf("reported = %d, want 2", reported)
	}
	if got, want := buf.String(), "(truncate log 2)\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMirrorBufferLineModeHoldsBackIncompleteLine(t *testing.T) {
	eng := newTestEngine(t)
	entry := eng.FindFile("stdout")
	eng.VFS().SetEditBytes(entry, []byte("partial"))

	var buf bytes.Buffer
	enc := editorproto.NewEncoder(&buf, false, true)
	reported := 0
	if err := mirrorBuffer(enc, editorproto.BufOut, entry, &reported, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing reported for an incomplete line, got %q", buf.String())
	}
	if reported != 0 {
		t.Fatalf("reported = %d, want 0 (line not yet complete)", reported)
	}

	eng.VFS().SetEditBytes(entry, []byte("partial line\nmore"))
	if err := mirrorBuffer(enc, editorproto.BufOut, entry, &reported, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reported != len("partial line\n") {
		t.Fatalf("reported = %d, want %d", reported, len("partial line\n"))
	}
}
