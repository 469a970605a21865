// sexp_reader.go - adapts the incremental internal/editorproto.SexpParser
// (which consumes one []byte chunk at a time) to the same blocking
// "Next() (Value, error)" shape internal/editorproto.JSONParser already
// has, so driveLoop can read either framing through one interface.
package main

import (
	"bufio"
	"io"

	"github.com/texpresso-go/texpresso/internal/editorproto"
)

// commandSource yields successive top-level protocol values, blocking
// until one is available.
type commandSource interface {
	Next() (editorproto.Value, error)
}

type sexpReader struct {
	r       *bufio.Reader
	p       editorproto.SexpParser
	pending []byte
}

func newSexpReader(r io.Reader) *sexpReader {
	return &sexpReader{r: bufio.NewReader(r)}
}

func (s *sexpReader) Next() (editorproto.Value, error) {
	for {
		for len(s.pending) > 0 {
			n, v, ok, err := s.p.Feed(s.pending)
			s.pending = s.pending[n:]
			if err != nil {
				return editorproto.Value{}, err
			}
			if ok {
				return v, nil
			}
		}

		chunk := make([]byte, 4096)
		n, err := s.r.Read(chunk)
		if n > 0 {
			s.pending = append(s.pending, chunk[:n]...)
		}
		if n == 0 && err != nil {
			return editorproto.Value{}, err
		}
	}
}
