// fontmap.go - PDFTeX-style fontmap table (§4.2)
package resmgr

import (
	"bufio"
	"io"
)

// FontMapEntry binds a PK/TeX font name to a PostScript outline, an
// optional encoding file, and an optional PostScript snippet.
type FontMapEntry struct {
	PKFontName   string
	PSFontName   string
	PSSnippet    string
	EncFileName  string
	FontFileName string
	hash         uint64
}

// FontMap is an open-addressed linear-probing table over the concatenated
// contents of pdftex.map/kanjix.map/ckx.map, keyed by PK font name
// (original_source src/dvi/tex_fontmap.c). Robin-Hood-style insertion
// keeps positive lookups short: an entry whose home slot comes before the
// occupant's (so it has probed farther) displaces the occupant.
type FontMap struct {
	mask  int
	table []FontMapEntry
}

// LoadFontMap concatenates the given readers (skipping nils, matching the
// three-name eager load of §4.2) and parses the combined text.
func LoadFontMap(readers []io.Reader) (*FontMap, error) {
	var all []byte
	for _, r := range readers {
		if r == nil {
			continue
		}
		data, err := io.ReadAll(bufio.NewReader(r))
		if err != nil {
			return nil, err
		}
		all = append(all, data...)
		all = append(all, '\n')
	}

	entries := parseFontMapLines(all)
	capacity := 128
	for capacity < len(entries)+len(entries)/4 {
		capacity *= 2
	}
	mask := capacity - 1
	table := make([]FontMapEntry, capacity)

	for _, e := range entries {
		e.hash = sdbmHash(e.PKFontName)
		idx := int(e.hash) & mask
		for table[idx].PKFontName != "" {
			if int(e.hash)&mask < int(table[idx].hash)&mask {
				table[idx], e = e, table[idx]
			}
			idx = (idx + 1) & mask
		}
		table[idx] = e
	}

	return &FontMap{mask: mask, table: table}, nil
}

func sdbmHash(s string) uint64 {
	var h uint64
	for i := 0; i < len(s); i++ {
		c := uint64(s[i])
		h = c + (h << 6) + (h << 16) - h
	}
	return h * 2654435761
}

// Lookup returns the entry for name, or nil if absent.
func (m *FontMap) Lookup(name string) *FontMapEntry {
	if m == nil {
		return nil
	}
	hash := sdbmHash(name)
	idx := int(hash) & m.mask
	for m.table[idx].PKFontName != "" {
		if m.table[idx].hash == hash && m.table[idx].PKFontName == name {
			return &m.table[idx]
		}
		idx = (idx + 1) & m.mask
	}
	return nil
}

// parseFontMapLines is a line-oriented translation of tex_fontmap_load's
// scanner: first bare word is the PK name, an optional second bare word
// (not starting '<') is the PS name, then any mixture of a quoted
// PostScript snippet and '<'-prefixed file references (.enc vs. outline
// decided by a trailing ".enc").
func parseFontMapLines(data []byte) []FontMapEntry {
	var out []FontMapEntry
	lines := splitLines(data)
	for _, line := range lines {
		fields := tokenizeFontMapLine(line)
		if len(fields) == 0 || fields[0] == "" {
			continue
		}
		if fields[0][0] == '%' {
			continue
		}
		e := FontMapEntry{PKFontName: fields[0]}
		rest := fields[1:]
		if len(rest) > 0 && rest[0][0] != '<' && rest[0][0] != '"' {
			e.PSFontName = rest[0]
			rest = rest[1:]
		}
		for _, tok := range rest {
			switch {
			case len(tok) >= 2 && tok[0] == '"':
				e.PSSnippet = tok[1 : len(tok)-1]
			case tok[0] == '<':
				ref := tok[1:]
				if len(ref) > 0 && ref[0] == '[' {
					ref = ref[1:]
				}
				if hasSuffix(ref, ".enc") {
					e.EncFileName = ref
				} else {
					e.FontFileName = ref
				}
			}
		}
		out = append(out, e)
	}
	return out
}

func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}

func tokenizeFontMapLine(line string) []string {
	var fields []string
	i := 0
	n := len(line)
	for i < n {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}
		if line[i] == '"' {
			start := i
			i++
			for i < n && line[i] != '"' {
				i++
			}
			if i < n {
				i++
			}
			fields = append(fields, line[start:i])
			continue
		}
		start := i
		for i < n && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		fields = append(fields, line[start:i])
	}
	return fields
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
