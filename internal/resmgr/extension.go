// extension.go - extension policy and MAP triple concatenation (§4.2)
package resmgr

import (
	"io"
	"path/filepath"
	"strings"
)

func extensionsFor(kind ResKind) []string {
	switch kind {
	case ResENC:
		return []string{".enc"}
	case ResMAP:
		return []string{".map"}
	case ResTFM:
		return []string{".tfm"}
	case ResVF:
		return []string{".vf"}
	case ResFONT:
		return []string{".pfb", ".otf", ".ttf"}
	default:
		return []string{""}
	}
}

// hasExtension mirrors dvi_resmanager_open_file: a name is taken literally
// once it already contains a '.'.
func hasExtension(name string) bool {
	return strings.ContainsRune(filepath.Base(name), '.')
}

// isLiteralFont reports whether a FONT-kind name should bypass the
// extension/candidate loop entirely (absolute or relative path).
func isLiteralFont(name string) bool {
	return strings.HasPrefix(name, "/") || strings.HasPrefix(name, ".")
}

// openWithExtensions tries each candidate extension in order against
// backend, returning the first stream that opens successfully.
func openWithExtensions(backend Backend, kind ResKind, name string) (io.ReadCloser, error) {
	if kind == ResFONT && isLiteralFont(name) {
		return backend.OpenFile(kind, name)
	}
	if hasExtension(name) {
		return backend.OpenFile(kind, name)
	}
	for _, ext := range extensionsFor(kind) {
		rc, err := backend.OpenFile(kind, name+ext)
		if err != nil {
			return nil, err
		}
		if rc != nil {
			return rc, nil
		}
	}
	return nil, nil
}

// fontMapNames are the up-to-three standard fontmap files concatenated
// eagerly at resource-manager startup (§4.2).
var fontMapNames = []string{"pdftex.map", "kanjix.map", "ckx.map"}
