// enc.go - TeX encoding vector (.enc) decoding (§4.2, §4.3.4)
package resmgr

import (
	"bufio"
	"io"
)

// Encoding maps a 256-slot byte code to a PostScript glyph name, parsed
// from the `/Name [ /glyph1 /glyph2 ... ] def`-shaped .enc files TeX
// distributions ship (original_source src/dvi/tex_enc.c).
type Encoding struct {
	Name    string
	Entries [256]string
}

// LoadEncoding is a direct translation of tex_enc_load's scanner: skip to
// the next delimiter, treat '%' as a line comment, '[' opens the entry
// list, '/' introduces a PostScript name, ']' ends it. The first name
// seen outside brackets is the encoding's own name.
func LoadEncoding(r io.Reader) (*Encoding, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	enc := &Encoding{}
	entry := -1
	i := 0
	n := len(data)

	isDelim := func(c byte) bool { return c == '/' || c == '%' || c == '[' || c == ']' }
	isDelimOrWS := func(c byte) bool { return isDelim(c) || c == ' ' || c == '\t' }

	for i < n {
		for i < n && data[i] != '\n' && !isDelim(data[i]) {
			i++
		}
		if i >= n {
			break
		}
		switch data[i] {
		case '%':
			for i < n && data[i] != '\n' {
				i++
			}
			continue
		case '[':
			entry = 0
			i++
			continue
		case ']':
			i = n
			continue
		case '\n':
			i++
			continue
		case '/':
			i++
			start := i
			for i < n && data[i] != '\n' && !isDelimOrWS(data[i]) {
				i++
			}
			name := string(data[start:i])
			if entry == -1 {
				if enc.Name == "" {
					enc.Name = name
				}
			} else if entry <= 255 {
				enc.Entries[entry] = name
				entry++
			}
		}
	}
	return enc, nil
}

func (e *Encoding) Get(code byte) string { return e.Entries[code] }

// LookupByGlyphName finds the byte code whose entry equals name, or -1.
func (e *Encoding) LookupByGlyphName(name string) int {
	for i, n := range e.Entries {
		if n == name && n != "" {
			return i
		}
	}
	return -1
}
