package editorproto

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncoderAppendSexp(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, false, false)
	if err := e.Append(BufOut, 0, []byte("hi \"there\"")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()
	want := `(append out 0 "hi \"there\"")` + "\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncoderAppendJSON(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, true, false)
	if err := e.Append(BufLog, 3, []byte("ok")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()
	want := `["append", "log", 3, "ok"]` + "\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncoderTruncateByteMode(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, false, false)
	if err := e.Truncate(BufOut, []byte("abcde")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := buf.String(), "(truncate out 5)\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncoderTruncateLineMode(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, false, true)
	if err := e.Truncate(BufOut, []byte("a\nb\nc")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := buf.String(), "(truncate-lines out 2)\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncoderAppendLinesOnlyEmitsCompletedLines(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, false, true)
	buffer := []byte("partial, no newline yet")
	if e.AppendLines(BufOut, buffer, 0) {
		t.Fatal("expected false: no completed line yet")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", buf.String())
	}
}

func TestEncoderAppendLinesEmitsEachCompletedLine(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, false, true)
	buffer := []byte("one\ntwo\nthree")
	if !e.AppendLines(BufOut, buffer, 0) {
		t.Fatal("expected true: two completed lines are available")
	}
	got := buf.String()
	// The second segment starts at the first segment's end (the '\n'
	// itself), so it carries a leading escaped newline - matching
	// editor_append's own pos = next carry-over.
	want := "(append-lines out \"one\" \"\\ntwo\")\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if strings.Contains(got, "three") {
		t.Fatalf("incomplete trailing line must not be emitted, got %q", got)
	}
}

func TestEncoderSynctexSexp(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, false, false)
	if err := e.Synctex("main.tex", 12, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := buf.String(), "(synctex \"main.tex\" 12 3)\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncoderResetSyncAndFlush(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, true, false)
	if err := e.ResetSync(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.FlushMsg(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()
	if got != "[\"reset-sync\"]\n[\"flush\"]\n" {
		t.Fatalf("got %q", got)
	}
}
