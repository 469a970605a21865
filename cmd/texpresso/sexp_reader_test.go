package main

import (
	"io"
	"reflect"
	"testing"

	"github.com/texpresso-go/texpresso/internal/editorproto"
)

// chunkReader hands back one chunk per Read call, then io.EOF, mimicking a
// pipe that delivers a command at a time instead of all at once.
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func TestSexpReaderReadsOneCommandPerChunk(t *testing.T) {
	r := &chunkReader{chunks: [][]byte{[]byte(`(close "main.tex")`)}}
	sr := newSexpReader(r)

	v, err := sr.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := editorproto.Value{Kind: editorproto.KindArray, Arr: []editorproto.Value{
		{Kind: editorproto.KindName, Str: "close"},
		{Kind: editorproto.KindString, Str: "main.tex"},
	}}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %+v, want %+v", v, want)
	}

	if _, err := sr.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after the stream is exhausted, got %v", err)
	}
}

func TestSexpReaderSurvivesSingleByteReads(t *testing.T) {
	src := `(close "main.tex")`
	chunks := make([][]byte, len(src))
	for i, c := range []byte(src) {
		chunks[i] = []byte{c}
	}
	sr := newSexpReader(&chunkReader{chunks: chunks})

	v, err := sr.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsArray() || len(v.Arr) != 2 || v.Arr[0].Str != "close" || v.Arr[1].Str != "main.tex" {
		t.Fatalf("got %+v", v)
	}
}

func TestSexpReaderReadsSuccessiveCommands(t *testing.T) {
	r := &chunkReader{chunks: [][]byte{[]byte(`(flush) (flush)`)}}
	sr := newSexpReader(r)

	for i := 0; i < 2; i++ {
		v, err := sr.Next()
		if err != nil {
			t.Fatalf("command %d: unexpected error: %v", i, err)
		}
		if !v.IsArray() || len(v.Arr) != 1 || v.Arr[0].Str != "flush" {
			t.Fatalf("command %d: got %+v", i, v)
		}
	}

	if _, err := sr.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
